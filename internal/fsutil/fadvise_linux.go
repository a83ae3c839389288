//go:build linux

package fsutil

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenSequential opens path for reading and tells the kernel the file will
// be read front to back once.
func OpenSequential(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	return f, nil
}
