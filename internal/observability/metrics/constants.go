// Package metrics provides custom Prometheus metrics for the advisor's components.
package metrics

// Status label values shared by the operation counters.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Store operation label values.
const (
	OpAppend  = "append"
	OpReadAll = "read_all"
	OpCount   = "count"
)

// Notification outcome label values.
const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

// Submission stage label values for failed submissions.
const (
	StageValidate = "validate"
	StagePredict  = "predict"
	StageEvaluate = "evaluate"
	StageStore    = "store"
)

// durationBuckets cover 1ms to ~16s.
var durationBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 16}
