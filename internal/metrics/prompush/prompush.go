// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch pipeline exits long before a scraper would see it, so collected
// series are pushed to a Pushgateway on Flush instead of being served over
// HTTP. The metrics "job" label becomes the Pushgateway grouping key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"tripetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // tripetl_stage_total
	stageDuration *prometheus.SummaryVec // tripetl_stage_duration_seconds
	fileCounter   *prometheus.CounterVec // tripetl_files_total
	rowCounter    *prometheus.CounterVec // tripetl_rows_total
	batchCounter  prometheus.Counter     // tripetl_export_batches_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName defaults to "tripetl"; gatewayURL is required.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tripetl"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stageCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Pipeline stage runs, partitioned by stage and status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Pipeline stage duration in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"stage", "status"}),
		fileCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.FilesTotal,
			Help: "Files handled per stage, partitioned by outcome.",
		}, []string{"stage", "outcome"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row counts per kind (staged, transformed, loaded, exported).",
		}, []string{"kind"}),
		batchCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Warehouse export batches flushed.",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"stage counter": b.stageCounter,
		"stage summary": b.stageDuration,
		"file counter":  b.fileCounter,
		"row counter":   b.rowCounter,
		"batch counter": b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter == nil {
			return
		}
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)

	case metrics.FilesTotal:
		if b.fileCounter == nil {
			return
		}
		b.fileCounter.WithLabelValues(labels["stage"], labels["outcome"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDuration || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
