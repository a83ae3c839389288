package extract

import (
	"errors"
	"fmt"
)

// ErrEmptyFile is the cause of a Failure for a zero-byte structured file.
var ErrEmptyFile = errors.New("file is empty")

// Failure reports a source file that could not be read or parsed.
type Failure struct {
	Path  string
	Cause error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("extract: %s: %v", f.Path, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

func fail(path string, cause error) error {
	return &Failure{Path: path, Cause: cause}
}
