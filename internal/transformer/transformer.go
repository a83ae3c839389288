// Package transformer applies an ordered chain of table steps to staged trip
// files and writes the results.
package transformer

import (
	"fmt"

	"tripetl/internal/table"
	"tripetl/internal/transformer/builtin"
)

// Step mutates a table in place.
type Step interface {
	Name() string
	Apply(t *table.Table) error
}

// Chain is an ordered list of steps.
type Chain []Step

// Default returns the standard chain: column normalization, trip duration,
// distance conversion and payment labels, in that order.
func Default() Chain {
	return Chain{
		builtin.NormalizeColumns{},
		builtin.TripDuration{},
		builtin.DistanceKM{},
		builtin.PaymentLabel{},
	}
}

// Apply runs every step on a copy of in. On error the copy is discarded and
// in is left untouched.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in.Clone()
	for _, s := range c {
		if err := s.Apply(out); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return out, nil
}
