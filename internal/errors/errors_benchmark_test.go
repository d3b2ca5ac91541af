package errors

import (
	"fmt"
	"testing"
)

// BenchmarkErrorCreationNoReporter tests error creation when reporting is disabled
func BenchmarkErrorCreationNoReporter(b *testing.B) {
	SetReporter(nil)

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Build()
	}
}

// BenchmarkErrorCreationAutoDetect tests error creation with auto-detection
func BenchmarkErrorCreationAutoDetect(b *testing.B) {
	SetReporter(nil)

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).Build()
	}
}

// BenchmarkErrorCreationWithContext tests error creation with context fields
func BenchmarkErrorCreationWithContext(b *testing.B) {
	SetReporter(nil)

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Context("operation", "test_op").
			Context("count", 42).
			Build()
	}
}

type countingReporter struct{ n int }

func (c *countingReporter) ReportError(*EnhancedError) { c.n++ }

// BenchmarkErrorCreationWithReporter tests error creation when a reporter is installed
func BenchmarkErrorCreationWithReporter(b *testing.B) {
	SetReporter(&countingReporter{})
	defer SetReporter(nil)

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("publish failed")
		_ = New(err).
			Component("mqtt").
			Category(CategoryMQTTPublish).
			Build()
	}
}
