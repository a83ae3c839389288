//go:build !linux

package fsutil

import (
	"fmt"
	"os"
)

// OpenSequential opens path for reading.
func OpenSequential(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
