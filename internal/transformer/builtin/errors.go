// Package builtin contains the transformation steps applied to every staged
// trip table.
package builtin

import "fmt"

// MissingFieldError reports that a column a step needs is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing column %q", e.Field)
}

// ParseError reports a present value that could not be interpreted. Row is
// the 1-based data row.
type ParseError struct {
	Field string
	Row   int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot parse %q: %v", e.Field, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
