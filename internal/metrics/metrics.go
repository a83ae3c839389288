// Package metrics records operational metrics for the pipeline stages behind
// a small backend interface.
//
// The global backend defaults to a no-op, so every Record* helper is safe to
// call when nothing is configured. Concrete systems live in subpackages
// (prompush, datadog) and are installed with SetBackend.
package metrics

import "time"

// Metric names shared by the helpers and the backends.
const (
	StageTotal    = "tripetl_stage_total"
	StageDuration = "tripetl_stage_duration_seconds"
	FilesTotal    = "tripetl_files_total"
	RowsTotal     = "tripetl_rows_total"
	BatchesTotal  = "tripetl_export_batches_total"
)

// File outcomes reported through RecordFile.
const (
	OutcomeStaged  = "staged"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeWritten = "written"
	OutcomeIgnored = "ignored"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset puts the no-op backend back in place.
func Reset() { backend = nopBackend{} }

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one run of a pipeline stage and its latency, labelled
// with success or failure.
func RecordStep(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}

	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordFile counts one input file handled by a stage with the given outcome
// (OutcomeStaged, OutcomeSkipped, ...).
func RecordFile(job, stage, outcome string) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":     job,
		"stage":   stage,
		"outcome": outcome,
	})
}

// RecordRow increments a row-level counter for the given job and kind, e.g.
// "staged", "transformed", "loaded", "exported".
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the warehouse export batch counter.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job})
}
