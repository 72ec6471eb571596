// Package observe records pipeline metrics. Recorders are passed in at
// pipeline construction; there is no process-wide default.
package observe

import (
	"time"
)

// MetricsRecorder receives step timings and load volumes from the
// orchestrator.
type MetricsRecorder interface {
	// ObserveStep records one orchestrator step outcome.
	ObserveStep(step string, success bool, duration time.Duration)
	// AddRowsLoaded records rows accepted by a destination.
	AddRowsLoaded(destination string, rows int)
	// ObserveRun records one whole pipeline run outcome.
	ObserveRun(success bool, duration time.Duration)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

var _ MetricsRecorder = NopRecorder{}

func (NopRecorder) ObserveStep(string, bool, time.Duration) {}
func (NopRecorder) AddRowsLoaded(string, int)               {}
func (NopRecorder) ObserveRun(bool, time.Duration)          {}
