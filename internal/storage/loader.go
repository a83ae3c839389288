package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CopyFn abstracts a backend's bulk insert. It returns the number of rows
// reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadResult summarizes a LoadBatches run.
type LoadResult struct {
	Rows    int64
	Batches int64
}

// LoadBatches sends rows to copyFn in slices of at most batchSize. It stops
// at the first copy error or when ctx is cancelled between batches; the
// result counts what was written before that. Progress is logged after each
// successful batch.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
	log zerolog.Logger,
) (LoadResult, error) {
	var res LoadResult
	if batchSize <= 0 {
		return res, fmt.Errorf("storage: batchSize must be > 0")
	}
	if copyFn == nil {
		return res, fmt.Errorf("storage: copyFn must not be nil")
	}

	start := time.Now()
	last := start
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}

		n, err := copyFn(ctx, columns, rows[lo:hi])
		res.Rows += n
		if err != nil {
			log.Error().Err(err).Int64("batch_rows", n).Int64("total", res.Rows).Msg("loader: copy failed")
			return res, err
		}
		res.Batches++

		now := time.Now()
		rps := float64(0)
		if d := now.Sub(last); d > 0 {
			rps = float64(n) / d.Seconds()
		}
		log.Debug().
			Int64("batch", res.Batches).
			Int64("inserted", n).
			Int64("total", res.Rows).
			Float64("rps", rps).
			Dur("elapsed", now.Sub(start).Truncate(time.Millisecond)).
			Msg("loader: batch flushed")
		last = now
	}
	return res, nil
}
