package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveResolution(10*time.Millisecond, OutcomePartial, 3)
	r.CountDiagnostic("CyclicDependency", "error")
	r.CountDiagnostic("CyclicDependency", "error")
	r.LoadStarted()
	r.ObserveLoad(time.Millisecond, OutcomeLoaded)
	r.CountSkipped(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolutionsTotal.WithLabelValues(OutcomePartial)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.diagnosticsTotal.WithLabelValues("CyclicDependency", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.graphNodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.loadsTotal.WithLabelValues(OutcomeLoaded)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.loadsTotal.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.workersBusy))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveResolution(time.Second, OutcomeOK, 1)
		r.CountDiagnostic("x", "warning")
		r.LoadStarted()
		r.ObserveLoad(time.Second, OutcomeFailed)
		r.CountSkipped(1)
	})
}

func TestNewRecorder_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
	assert.NotPanics(t, func() { NewRecorder(nil) })
}
