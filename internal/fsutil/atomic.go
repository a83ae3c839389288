// Package fsutil holds the small file-system helpers shared by the pipeline
// stages: atomic, checksummed writes and sequential-read opens.
package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
)

// WriteAtomic writes the output of fn to path through a temporary file in the
// same directory and renames it into place only when fn and the flush
// succeed, so a reader never observes a half-written file. It returns the
// xxh3 hash of the bytes written.
func WriteAtomic(path string, fn func(w io.Writer) error) (uint64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	h := xxh3.New()
	bw := bufio.NewWriterSize(io.MultiWriter(tmp, h), 64*1024)
	if err := fn(bw); err != nil {
		cleanup()
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return 0, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename into %s: %w", path, err)
	}
	return h.Sum64(), nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadAll reads a whole file opened with OpenSequential.
func ReadAll(path string) ([]byte, error) {
	f, err := OpenSequential(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
