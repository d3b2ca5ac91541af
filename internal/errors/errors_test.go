package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("something broke")).Component("history").Build()

	assert.Equal(t, "something broke", ee.Error())
	assert.Equal(t, "history", ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.GetTimestamp().IsZero())
}

func TestCategoryDetectionFromComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		component string
		want      ErrorCategory
	}{
		{"predictor", CategoryPrediction},
		{"datastore", CategoryDatabase},
		{"notification", CategoryNotification},
		{"httpcontroller", CategoryHTTP},
		{"", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			t.Parallel()
			ee := New(fmt.Errorf("something broke")).Component(tt.component).Build()
			assert.Equal(t, tt.want, ee.Category)
		})
	}
}

func TestCategoryDetectionFromMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"model load", fmt.Errorf("failed to load model file"), CategoryModelLoad},
		{"schema mismatch", fmt.Errorf("feature schema mismatch"), CategoryValidation},
		{"network", fmt.Errorf("connection refused"), CategoryNetwork},
		{"plain", fmt.Errorf("oops"), CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.err).Build().Category)
		})
	}
}

func TestExplicitCategoryWins(t *testing.T) {
	t.Parallel()

	ee := Newf("failed to load model").Category(CategoryDatabase).Build()
	assert.Equal(t, CategoryDatabase, ee.Category)
	assert.True(t, IsCategory(ee, CategoryDatabase))
	assert.False(t, IsCategory(ee, CategoryModelLoad))
}

func TestContextIsCopied(t *testing.T) {
	t.Parallel()

	ee := Newf("bad input").
		Category(CategoryValidation).
		Context("field", "humidity").
		Build()

	ctx := ee.GetContext()
	require.Equal(t, "humidity", ctx["field"])

	ctx["field"] = "changed"
	assert.Equal(t, "humidity", ee.GetContext()["field"])
}

func TestUnwrapPreservesSentinel(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("sentinel")
	ee := New(fmt.Errorf("wrapped: %w", sentinel)).Build()

	assert.ErrorIs(t, ee, sentinel)
	assert.True(t, Is(ee, sentinel))
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	t.Parallel()

	ee := Newf("x").Priority("urgent").Build()
	assert.Equal(t, PriorityMedium, ee.GetPriority())

	ee = Newf("x").Priority(PriorityHigh).Build()
	assert.Equal(t, PriorityHigh, ee.GetPriority())
}

type recordingReporter struct{ got []*EnhancedError }

func (r *recordingReporter) ReportError(ee *EnhancedError) { r.got = append(r.got, ee) }

func TestReporterReceivesBuiltErrors(t *testing.T) {
	r := &recordingReporter{}
	SetReporter(r)
	defer SetReporter(nil)

	New(fmt.Errorf("relay refused")).Component("notification").Category(CategoryNotification).Build()
	_ = NewStd("plain errors are not reported")

	require.Len(t, r.got, 1)
	assert.Equal(t, CategoryNotification, r.got[0].Category)
	assert.Equal(t, "notification", r.got[0].GetComponent())

	SetReporter(nil)
	Newf("after reset").Build()
	assert.Len(t, r.got, 1)
}
