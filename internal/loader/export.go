package loader

import (
	"context"
	"fmt"
	"time"

	"tripetl/internal/metrics"
	"tripetl/internal/storage"
	"tripetl/internal/table"
)

// DefaultBatchSize is used when Sink.BatchSize is not positive.
const DefaultBatchSize = 500

// Sink selects the warehouse table the final dataset is copied into.
type Sink struct {
	Kind            string // storage kind, e.g. "sqlite"; empty disables export
	DSN             string
	Table           string
	AutoCreateTable bool
	BatchSize       int
}

// Enabled reports whether an export is configured.
func (s Sink) Enabled() bool { return s.Kind != "" }

// textTypes overrides the TEXT column type per storage kind.
var textTypes = map[string]string{
	"mssql": "NVARCHAR(MAX)",
}

func textType(kind string) string {
	if t, ok := textTypes[kind]; ok {
		return t
	}
	return "TEXT"
}

// Export copies t into the configured sink table. The columns are the
// dataset's columns, every value is sent as text and Missing as NULL.
func (l *Loader) Export(ctx context.Context, t *table.Table) (storage.LoadResult, error) {
	var res storage.LoadResult
	if !l.Sink.Enabled() {
		return res, nil
	}
	start := time.Now()
	log := l.Log.With().Str("sink", l.Sink.Kind).Str("table", l.Sink.Table).Logger()

	cols := append([]string(nil), t.Columns...)
	repo, err := storage.New(ctx, storage.Config{
		Kind:    l.Sink.Kind,
		DSN:     l.Sink.DSN,
		Table:   l.Sink.Table,
		Columns: cols,
	})
	if err != nil {
		return res, fmt.Errorf("load: export: %w", err)
	}
	defer repo.Close()

	if l.Sink.AutoCreateTable {
		td := storage.TextTable(l.Sink.Table, cols, textType(l.Sink.Kind))
		if err := storage.EnsureTable(ctx, l.Sink.Kind, repo, td); err != nil {
			return res, fmt.Errorf("load: export: ensure table: %w", err)
		}
	}

	batch := l.Sink.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	res, err = storage.LoadBatches(ctx, cols, exportRows(t), batch, repo.CopyFrom, log)
	metrics.RecordBatches(l.Job, res.Batches)
	metrics.RecordRow(l.Job, "exported", res.Rows)
	if err != nil {
		return res, fmt.Errorf("load: export: %w", err)
	}
	log.Info().
		Int64("rows", res.Rows).
		Int64("batches", res.Batches).
		Dur("took", time.Since(start)).
		Msg("load: exported")
	return res, nil
}

func exportRows(t *table.Table) [][]any {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		vals := make([]any, len(row))
		for j, v := range row {
			if !v.IsMissing() {
				vals[j] = v.String()
			}
		}
		rows[i] = vals
	}
	return rows
}
