package observe

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// ExpvarRecorder publishes aggregate timing and result counters via
// expvar, for deployments that prefer process-local metrics without an
// external scrape target. Totals are kept in milliseconds per step.
type ExpvarRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
	rows      map[string]int64
}

var _ MetricsRecorder = (*ExpvarRecorder)(nil)

// ExpvarSnapshot captures a read-only view of the recorded metrics.
type ExpvarSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RowsLoaded  map[string]int64            `json:"rows_loaded_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder constructs an expvar-backed recorder published
// under the supplied name. When name is empty, a unique identifier is
// generated.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("pipeline_metrics_%d", id)
	}
	rec := &ExpvarRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
		rows:      make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for step, total := range r.durations {
		durations[step] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for step, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for st, count := range statusCounts {
			cpy[st] = count
		}
		results[step] = cpy
	}
	rows := make(map[string]int64, len(r.rows))
	for dest, n := range r.rows {
		rows[dest] = n
	}
	return ExpvarSnapshot{
		DurationsMS: durations,
		Results:     results,
		RowsLoaded:  rows,
		RecordedAt:  time.Now().UTC(),
	}
}

// ObserveStep implements MetricsRecorder.
func (r *ExpvarRecorder) ObserveStep(step string, success bool, duration time.Duration) {
	if step == "" {
		return
	}
	r.observe(step, success, duration)
}

// ObserveRun implements MetricsRecorder.
func (r *ExpvarRecorder) ObserveRun(success bool, duration time.Duration) {
	r.observe("run", success, duration)
}

// AddRowsLoaded implements MetricsRecorder.
func (r *ExpvarRecorder) AddRowsLoaded(destination string, rows int) {
	r.mu.Lock()
	r.rows[destination] += int64(rows)
	r.mu.Unlock()
}

func (r *ExpvarRecorder) observe(key string, success bool, duration time.Duration) {
	ms := float64(duration) / float64(time.Millisecond)
	r.mu.Lock()
	r.durations[key] += ms
	if _, ok := r.results[key]; !ok {
		r.results[key] = make(map[string]int64, 2)
	}
	r.results[key][status(success)]++
	r.mu.Unlock()
}
