package storage

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func rowsOf(n int) [][]any {
	out := make([][]any, n)
	for i := range out {
		out[i] = []any{i}
	}
	return out
}

/*
TestLoadBatches_Batching verifies that rows are split into batches of at most
batchSize and that the totals add up, including an uneven tail batch.
*/
func TestLoadBatches_Batching(t *testing.T) {
	tests := []struct {
		name        string
		rows        int
		batchSize   int
		wantBatches int64
	}{
		{"empty", 0, 3, 0},
		{"exact", 6, 3, 2},
		{"tail", 7, 3, 3},
		{"single_large_batch", 5, 500, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			res, err := LoadBatches(context.Background(), []string{"a"}, rowsOf(tc.rows), tc.batchSize, repo.CopyFrom, zerolog.Nop())
			if err != nil {
				t.Fatalf("LoadBatches: %v", err)
			}
			if res.Rows != int64(tc.rows) || res.Batches != tc.wantBatches {
				t.Fatalf("res = %+v, want rows=%d batches=%d", res, tc.rows, tc.wantBatches)
			}
			for i, b := range repo.copies {
				if len(b) > tc.batchSize {
					t.Fatalf("batch %d has %d rows > %d", i, len(b), tc.batchSize)
				}
			}
		})
	}
}

func TestLoadBatches_StopsOnError(t *testing.T) {
	repo := &fakeRepo{failAt: 2}
	res, err := LoadBatches(context.Background(), []string{"a"}, rowsOf(10), 3, repo.CopyFrom, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected copy error")
	}
	if res.Rows != 3 || res.Batches != 1 || len(repo.copies) != 2 {
		t.Fatalf("res = %+v copies=%d", res, len(repo.copies))
	}
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	repo := &fakeRepo{}
	if _, err := LoadBatches(context.Background(), nil, nil, 0, repo.CopyFrom, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), nil, nil, 1, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}
}

func TestLoadBatches_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := &fakeRepo{}
	if _, err := LoadBatches(ctx, []string{"a"}, rowsOf(2), 1, repo.CopyFrom, zerolog.Nop()); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(repo.copies) != 0 {
		t.Fatalf("copied after cancel")
	}
}
