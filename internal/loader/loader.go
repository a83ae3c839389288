// Package loader consolidates the per-file results into the final dataset,
// reports on it, saves it as CSV or Excel and optionally exports it to a
// warehouse table.
//
// The final dataset is created once: when final_data.csv or final_data.xlsx
// already exists in the result directory, LoadData refuses to run and
// nothing is read or written.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tripetl/internal/fsutil"
	"tripetl/internal/lookup"
	"tripetl/internal/metrics"
	pcsv "tripetl/internal/parser/csv"
	"tripetl/internal/report"
	"tripetl/internal/table"
)

const stageName = "load"

// FinalBase is the file name, without extension, of the final dataset.
const FinalBase = "final_data"

var (
	ErrFinalExists       = errors.New("loader: final dataset already exists")
	ErrNoResults         = errors.New("loader: no result csv files found")
	ErrNothingLoaded     = errors.New("loader: no result file could be read")
	ErrUnsupportedFormat = errors.New("loader: unsupported output format")
)

// Stats describes one Run.
type Stats struct {
	Files    int   // result files read
	Failed   int   // result files that could not be read
	Rows     int   // rows in the final dataset
	Output   string
	Exported int64 // rows copied to the warehouse sink
}

// Loader turns ResultDir/*.csv into the final dataset.
type Loader struct {
	ResultDir  string
	LookupFile string
	Job        string
	Sink       Sink
	Log        zerolog.Logger

	// Report receives the rendered summary in addition to the log. Optional.
	Report io.Writer
}

// FinalPaths lists every final dataset path the load guard checks.
func (l *Loader) FinalPaths() []string {
	return []string{
		filepath.Join(l.ResultDir, FinalBase+".csv"),
		filepath.Join(l.ResultDir, FinalBase+".xlsx"),
	}
}

// LoadData reads every *.csv in ResultDir, in lexical order, and
// concatenates them. Unreadable files are logged and skipped.
func (l *Loader) LoadData(ctx context.Context) (*table.Table, error) {
	t, _, err := l.loadData(ctx)
	return t, err
}

func (l *Loader) loadData(ctx context.Context) (*table.Table, Stats, error) {
	var st Stats
	for _, p := range l.FinalPaths() {
		if fsutil.Exists(p) {
			l.Log.Warn().Str("path", p).Msg("load: final dataset exists, nothing to do")
			return nil, st, ErrFinalExists
		}
	}

	matches, err := filepath.Glob(filepath.Join(l.ResultDir, "*.csv"))
	if err != nil {
		return nil, st, fmt.Errorf("load: list result dir: %w", err)
	}
	if len(matches) == 0 {
		l.Log.Warn().Str("dir", l.ResultDir).Msg("load: no result files")
		return nil, st, ErrNoResults
	}

	tables := make([]*table.Table, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, st, fmt.Errorf("load: %w", err)
		}
		t, err := readResult(path)
		if err != nil {
			st.Failed++
			metrics.RecordFile(l.Job, stageName, metrics.OutcomeFailed)
			l.Log.Error().Err(err).Str("path", path).Msg("load: read failed, skipping")
			continue
		}
		st.Files++
		tables = append(tables, t)
		l.Log.Debug().Str("path", path).Int("rows", t.Len()).Msg("load: read")
	}
	if len(tables) == 0 {
		return nil, st, ErrNothingLoaded
	}

	out := table.Concat(tables...)
	st.Rows = out.Len()
	metrics.RecordRow(l.Job, "loaded", int64(out.Len()))
	l.Log.Info().Int("files", st.Files).Int("failed", st.Failed).Int("rows", st.Rows).Msg("load: dataset assembled")
	return out, st, nil
}

// Summarize reports on t using the zone lookup. A lookup that cannot be
// loaded is logged; the location rankings are then left out.
func (l *Loader) Summarize(t *table.Table) report.Report {
	var zones *lookup.Zones
	if l.LookupFile != "" {
		z, err := lookup.Load(l.LookupFile)
		if err != nil {
			l.Log.Warn().Err(err).Str("path", l.LookupFile).Msg("load: zone lookup unavailable")
		} else {
			zones = z
		}
	}
	return report.Summarize(t, zones, l.Log)
}

// Run performs the whole load stage: guard, concat, summary, save and the
// optional warehouse export.
func (l *Loader) Run(ctx context.Context, format string) (Stats, error) {
	start := time.Now()
	f, err := ParseFormat(format)
	if err != nil {
		l.Log.Error().Err(err).Str("format", format).Msg("load: refusing to write")
		return Stats{}, err
	}

	t, st, err := l.loadData(ctx)
	if err != nil {
		return st, err
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, l.Summarize(t)); err != nil {
		l.Log.Warn().Err(err).Msg("load: render summary")
	} else {
		l.Log.Info().Msg("load: summary\n" + strings.TrimRight(buf.String(), "\n"))
		if l.Report != nil {
			_, _ = l.Report.Write(buf.Bytes())
		}
	}

	out, err := l.save(t, f)
	if err != nil {
		return st, err
	}
	st.Output = out

	if l.Sink.Enabled() {
		res, err := l.Export(ctx, t)
		st.Exported = res.Rows
		if err != nil {
			return st, err
		}
	}

	l.Log.Info().
		Str("target", st.Output).
		Int("rows", st.Rows).
		Int64("exported", st.Exported).
		Dur("took", time.Since(start)).
		Msg("load: done")
	return st, nil
}

func readResult(path string) (*table.Table, error) {
	f, err := fsutil.OpenSequential(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmpty)
	}
	t, _, err := pcsv.NewParser(pcsv.Options{}).Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

var errEmpty = errors.New("empty file")
