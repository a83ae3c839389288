// Package pipeline runs the extract, transform and load stages from a
// config.Pipeline. Each run gets a random run id that is attached to every
// log line; each stage run is metered with metrics.RecordStep.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tripetl/internal/config"
	"tripetl/internal/extract"
	"tripetl/internal/loader"
	"tripetl/internal/metrics"
	"tripetl/internal/metrics/datadog"
	"tripetl/internal/metrics/prompush"
	_ "tripetl/internal/storage/all"
	"tripetl/internal/transformer"
)

// Stage names a runnable unit.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
	StageAll       Stage = "all"
)

// ParseStage accepts the stage names case-insensitively.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(strings.ToLower(strings.TrimSpace(s))); st {
	case StageExtract, StageTransform, StageLoad, StageAll:
		return st, nil
	}
	return "", fmt.Errorf("pipeline: unknown stage %q", s)
}

// Result collects the stats of the stages that ran.
type Result struct {
	Extract   *extract.Stats
	Transform *transformer.Stats
	Load      *loader.Stats
}

// Runner executes stages for one configuration.
type Runner struct {
	Config config.Pipeline
	RunID  string
	Log    zerolog.Logger

	// Report receives the rendered load summary. Optional.
	Report io.Writer
}

// New returns a Runner with a fresh run id bound into its logger.
func New(cfg config.Pipeline, log zerolog.Logger) *Runner {
	id := uuid.NewString()
	return &Runner{
		Config: cfg,
		RunID:  id,
		Log:    log.With().Str("run_id", id).Str("job", cfg.Job).Logger(),
	}
}

func (r *Runner) stageLog(s Stage) zerolog.Logger {
	return r.Log.With().Str("stage", string(s)).Logger()
}

// step meters one stage run and logs its outcome.
func (r *Runner) step(s Stage, fn func(zerolog.Logger) error) error {
	log := r.stageLog(s)
	start := time.Now()
	err := fn(log)
	d := time.Since(start)
	metrics.RecordStep(r.Config.Job, string(s), err, d)
	if err != nil {
		log.Error().Err(err).Dur("took", d).Msg("pipeline: stage failed")
		return err
	}
	log.Info().Dur("took", d).Msg("pipeline: stage finished")
	return nil
}

// RunExtract stages InputDir into StagingDir.
func (r *Runner) RunExtract(ctx context.Context) (extract.Stats, error) {
	var st extract.Stats
	err := r.step(StageExtract, func(log zerolog.Logger) error {
		e := &extract.Extractor{
			InputDir:   r.Config.InputDir,
			StagingDir: r.Config.StagingDir,
			Job:        r.Config.Job,
			Log:        log,
		}
		var err error
		st, err = e.ExtractAndStage(ctx)
		return err
	})
	return st, err
}

// RunTransform rewrites every staged file into ResultDir.
func (r *Runner) RunTransform(ctx context.Context) (transformer.Stats, error) {
	var st transformer.Stats
	err := r.step(StageTransform, func(log zerolog.Logger) error {
		s := &transformer.Stage{
			StagingDir: r.Config.StagingDir,
			OutputDir:  r.Config.ResultDir,
			Job:        r.Config.Job,
			Log:        log,
		}
		var err error
		st, err = s.Transform(ctx)
		return err
	})
	return st, err
}

// RunLoad builds the final dataset. An empty format uses FinalFormat.
func (r *Runner) RunLoad(ctx context.Context, format string) (loader.Stats, error) {
	if format == "" {
		format = r.Config.FinalFormat
	}
	var st loader.Stats
	err := r.step(StageLoad, func(log zerolog.Logger) error {
		l := r.loader(log)
		var err error
		st, err = l.Run(ctx, format)
		return err
	})
	return st, err
}

func (r *Runner) loader(log zerolog.Logger) *loader.Loader {
	sink := r.Config.Sink
	return &loader.Loader{
		ResultDir:  r.Config.ResultDir,
		LookupFile: r.Config.LookupFile,
		Job:        r.Config.Job,
		Log:        log,
		Report:     r.Report,
		Sink: loader.Sink{
			Kind:            sink.Kind,
			DSN:             sink.DSN,
			Table:           sink.Table,
			AutoCreateTable: sink.AutoCreateTable,
			BatchSize:       sink.BatchSize,
		},
	}
}

// RunAll runs extract, transform and load in order and stops at the first
// stage that returns an error.
func (r *Runner) RunAll(ctx context.Context, format string) (Result, error) {
	var res Result

	es, err := r.RunExtract(ctx)
	res.Extract = &es
	if err != nil {
		return res, err
	}
	ts, err := r.RunTransform(ctx)
	res.Transform = &ts
	if err != nil {
		return res, err
	}
	ls, err := r.RunLoad(ctx, format)
	res.Load = &ls
	return res, err
}

// Run dispatches to the runner for s.
func (r *Runner) Run(ctx context.Context, s Stage, format string) (Result, error) {
	var res Result
	switch s {
	case StageExtract:
		st, err := r.RunExtract(ctx)
		res.Extract = &st
		return res, err
	case StageTransform:
		st, err := r.RunTransform(ctx)
		res.Transform = &st
		return res, err
	case StageLoad:
		st, err := r.RunLoad(ctx, format)
		res.Load = &st
		return res, err
	case StageAll:
		return r.RunAll(ctx, format)
	}
	return res, fmt.Errorf("pipeline: unknown stage %q", s)
}

// DefaultDogstatsdAddr is used when the datadog backend has no address.
const DefaultDogstatsdAddr = "127.0.0.1:8125"

// SetupMetrics installs the backend selected by m. The returned function
// flushes it and restores the no-op backend.
func SetupMetrics(m config.Metrics, job string) (func() error, error) {
	done := func() error {
		err := metrics.Flush()
		metrics.Reset()
		return err
	}
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "", "none":
		metrics.Reset()
		return func() error { return nil }, nil
	case "pushgateway", "prom", "prometheus":
		b, err := prompush.NewBackend(job, m.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		metrics.SetBackend(b)
		return done, nil
	case "datadog", "dogstatsd":
		addr := m.DogstatsdAddr
		if addr == "" {
			addr = DefaultDogstatsdAddr
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "tripetl.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			return nil, err
		}
		metrics.SetBackend(b)
		return done, nil
	}
	return nil, fmt.Errorf("pipeline: unknown metrics backend %q", m.Backend)
}
