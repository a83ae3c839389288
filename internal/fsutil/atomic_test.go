package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/xxh3"
)

func TestWriteAtomic_WritesAndHashes(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.csv")

	sum, err := WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n1,2\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("content=%q", got)
	}
	if want := xxh3.Hash(got); sum != want {
		t.Fatalf("sum=%x want %x", sum, want)
	}
}

func TestWriteAtomic_FailureLeavesTargetUntouched(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("boom")
	_, err := WriteAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "old" {
		t.Fatalf("target overwritten on failure: %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestReadAll_Missing(t *testing.T) {
	t.Parallel()
	if _, err := ReadAll(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v want ErrNotExist", err)
	}
}

func TestExists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if !Exists(dir) {
		t.Fatalf("Exists(dir) = false")
	}
	if Exists(filepath.Join(dir, "nope")) {
		t.Fatalf("Exists(missing) = true")
	}
}
