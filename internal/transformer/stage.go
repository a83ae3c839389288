package transformer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"tripetl/internal/fsutil"
	"tripetl/internal/metrics"
	pcsv "tripetl/internal/parser/csv"
	"tripetl/internal/table"
)

const stageName = "transform"

// Stats counts what one Transform run did.
type Stats struct {
	Written int
	Skipped int // directories, empty files and zero-row tables
	Failed  int
	Rows    int
}

// Stage transforms every file in StagingDir into OutputDir.
type Stage struct {
	StagingDir string
	OutputDir  string
	Job        string
	Chain      Chain // Default() when nil
	Log        zerolog.Logger
}

// Transform reads the files directly under StagingDir in lexical order,
// applies the chain and writes OutputDir/<same name>, replacing any earlier
// output. Per-file problems are logged and counted; the returned error
// covers setup problems and cancellation only.
func (s *Stage) Transform(ctx context.Context) (Stats, error) {
	var st Stats
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return st, fmt.Errorf("transform: create output dir: %w", err)
	}
	entries, err := os.ReadDir(s.StagingDir)
	if err != nil {
		return st, fmt.Errorf("transform: list staging dir: %w", err)
	}
	chain := s.Chain
	if chain == nil {
		chain = Default()
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return st, fmt.Errorf("transform: %w", err)
		}
		if e.IsDir() {
			st.Skipped++
			continue
		}
		s.transformFile(chain, e.Name(), &st)
	}

	s.Log.Info().
		Int("written", st.Written).
		Int("skipped", st.Skipped).
		Int("failed", st.Failed).
		Int("rows", st.Rows).
		Msg("transform: done")
	return st, nil
}

func (s *Stage) transformFile(chain Chain, name string, st *Stats) {
	src := filepath.Join(s.StagingDir, name)
	log := s.Log.With().Str("path", src).Logger()

	fi, err := os.Stat(src)
	if err != nil {
		s.fail(log, err, st)
		return
	}
	if fi.Size() == 0 {
		st.Skipped++
		metrics.RecordFile(s.Job, stageName, metrics.OutcomeSkipped)
		log.Warn().Msg("transform: empty file, skipping")
		return
	}

	start := time.Now()
	t, err := readStaged(src)
	if err != nil {
		s.fail(log, fmt.Errorf("read: %w", err), st)
		return
	}
	if t.Len() == 0 {
		st.Skipped++
		metrics.RecordFile(s.Job, stageName, metrics.OutcomeSkipped)
		log.Warn().Msg("transform: no rows after read, skipping")
		return
	}

	out, err := chain.Apply(t)
	if err != nil {
		s.fail(log, err, st)
		return
	}

	dst := filepath.Join(s.OutputDir, name)
	sum, err := fsutil.WriteAtomic(dst, func(w io.Writer) error {
		return table.WriteCSV(w, out)
	})
	if err != nil {
		s.fail(log, err, st)
		return
	}

	st.Written++
	st.Rows += out.Len()
	metrics.RecordFile(s.Job, stageName, metrics.OutcomeWritten)
	metrics.RecordRow(s.Job, "transformed", int64(out.Len()))
	log.Info().
		Str("target", dst).
		Int("rows", out.Len()).
		Str("xxh3", fmt.Sprintf("%016x", sum)).
		Dur("took", time.Since(start)).
		Msg("transform: written")
}

func (s *Stage) fail(log zerolog.Logger, err error, st *Stats) {
	st.Failed++
	metrics.RecordFile(s.Job, stageName, metrics.OutcomeFailed)
	log.Error().Err(err).Msg("transform: failed")
}

func readStaged(path string) (*table.Table, error) {
	f, err := fsutil.OpenSequential(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, _, err := pcsv.NewParser(pcsv.Options{}).Parse(f)
	return t, err
}
