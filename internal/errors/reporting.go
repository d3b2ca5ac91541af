// Package errors - error reporting hook
package errors

import "sync/atomic"

// Reporter receives every error produced by ErrorBuilder.Build.
type Reporter interface {
	ReportError(ee *EnhancedError)
}

type reporterHolder struct{ r Reporter }

var globalReporter atomic.Pointer[reporterHolder]

// SetReporter installs r as the process-wide reporter. nil disables reporting.
func SetReporter(r Reporter) {
	if r == nil {
		globalReporter.Store(nil)
		return
	}
	globalReporter.Store(&reporterHolder{r: r})
}

// report hands ee to the installed reporter. The component is resolved here
// so stack detection sees the caller of Build.
func report(ee *EnhancedError) {
	h := globalReporter.Load()
	if h == nil {
		return
	}
	ee.GetComponent()
	h.r.ReportError(ee)
}
