// Package extract stages raw source files: every .csv and .json file under
// the input directory is parsed, reconciled to the canonical trip schema and
// written once to the staging directory as <base>.csv.
package extract

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tripetl/internal/fsutil"
	"tripetl/internal/metrics"
	"tripetl/internal/schema"
	"tripetl/internal/table"
)

const stageName = "extract"

// Stats counts what one ExtractAndStage run did.
type Stats struct {
	Staged  int // files parsed and written
	Skipped int // target already staged
	Failed  int // read, parse or write failures
	Ignored int // unsupported extensions
	Rows    int // rows written across staged files
}

// Extractor walks InputDir and stages supported files into StagingDir.
type Extractor struct {
	InputDir   string
	StagingDir string
	Job        string
	Log        zerolog.Logger
}

// ExtractAndStage walks InputDir recursively in lexical order. A source whose
// staged target already exists is skipped without being read; staged files
// are never rewritten. Per-file failures are logged and counted and the walk
// continues; the returned error covers setup problems and cancellation only.
func (e *Extractor) ExtractAndStage(ctx context.Context) (Stats, error) {
	var st Stats
	if err := os.MkdirAll(e.StagingDir, 0o755); err != nil {
		return st, fmt.Errorf("extract: create staging dir: %w", err)
	}
	if _, err := os.Stat(e.InputDir); err != nil {
		return st, fmt.Errorf("extract: input dir: %w", err)
	}
	stagingAbs, _ := filepath.Abs(e.StagingDir)

	err := filepath.WalkDir(e.InputDir, func(path string, d fs.DirEntry, werr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if werr != nil {
			e.Log.Error().Err(werr).Str("path", path).Msg("extract: walk failed")
			st.Failed++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == stagingAbs && path != e.InputDir {
				return fs.SkipDir
			}
			return nil
		}
		e.stageFile(path, &st)
		return nil
	})
	if err != nil {
		return st, fmt.Errorf("extract: %w", err)
	}

	e.Log.Info().
		Int("staged", st.Staged).
		Int("skipped", st.Skipped).
		Int("failed", st.Failed).
		Int("ignored", st.Ignored).
		Int("rows", st.Rows).
		Msg("extract: done")
	return st, nil
}

func (e *Extractor) stageFile(path string, st *Stats) {
	ext := filepath.Ext(path)
	read, ok := readerFor(ext)
	if !ok {
		st.Ignored++
		metrics.RecordFile(e.Job, stageName, metrics.OutcomeIgnored)
		e.Log.Debug().Str("path", path).Msg("extract: unsupported extension")
		return
	}

	target := TargetPath(e.StagingDir, path)
	if fsutil.Exists(target) {
		st.Skipped++
		metrics.RecordFile(e.Job, stageName, metrics.OutcomeSkipped)
		e.Log.Info().Str("path", path).Str("target", target).Msg("extract: already staged, skipping")
		return
	}

	start := time.Now()
	t, err := read(path)
	if err != nil {
		e.failed(path, err, st)
		return
	}
	staged := schema.Reconcile(t)

	sum, err := fsutil.WriteAtomic(target, func(w io.Writer) error {
		return table.WriteCSV(w, staged)
	})
	if err != nil {
		e.failed(path, fmt.Errorf("write %s: %w", target, err), st)
		return
	}

	st.Staged++
	st.Rows += staged.Len()
	metrics.RecordFile(e.Job, stageName, metrics.OutcomeStaged)
	metrics.RecordRow(e.Job, "staged", int64(staged.Len()))
	e.Log.Info().
		Str("path", path).
		Str("target", target).
		Int("rows", staged.Len()).
		Str("xxh3", fmt.Sprintf("%016x", sum)).
		Dur("took", time.Since(start)).
		Msg("extract: staged")
}

func (e *Extractor) failed(path string, err error, st *Stats) {
	st.Failed++
	metrics.RecordFile(e.Job, stageName, metrics.OutcomeFailed)
	e.Log.Error().Err(err).Str("path", path).Msg("extract: failed")
}

// TargetPath returns the staged file for a source: StagingDir/<base>.csv,
// where base is the source file name without its extension.
func TargetPath(stagingDir, source string) string {
	base := filepath.Base(source)
	return filepath.Join(stagingDir, strings.TrimSuffix(base, filepath.Ext(base))+".csv")
}
