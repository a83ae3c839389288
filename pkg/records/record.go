// Package records defines the loosely typed key/value record produced by
// parsers that have no intrinsic column order (JSON objects).
package records

import "sort"

// Record is one parsed object. Values are whatever the parser produced
// (string, json.Number, bool, nil, nested maps/slices).
type Record map[string]any

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
