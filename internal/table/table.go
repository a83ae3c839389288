// Package table holds the ordered, in-memory tabular value passed between
// pipeline stages: a header of unique column names and rows of nullable
// cells aligned to it.
package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tripetl/pkg/records"
)

// Value is a nullable cell. The zero Value is Missing.
type Value struct {
	s  string
	ok bool
}

// Missing is the explicit "no value" sentinel.
var Missing = Value{}

// Present wraps s as a non-missing value.
func Present(s string) Value { return Value{s: s, ok: true} }

// Float wraps f using the shortest representation that round-trips.
func Float(f float64) Value { return Present(strconv.FormatFloat(f, 'f', -1, 64)) }

// IsMissing reports whether v is the Missing sentinel.
func (v Value) IsMissing() bool { return !v.ok }

// String returns the cell text; Missing renders as "".
func (v Value) String() string { return v.s }

// Float64 parses the cell as a finite number. ok is false for Missing cells
// and cells that are not numeric.
func (v Value) Float64() (float64, bool) {
	if !v.ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// GoString keeps test failure output readable.
func (v Value) GoString() string {
	if !v.ok {
		return "table.Missing"
	}
	return fmt.Sprintf("table.Present(%q)", v.s)
}

// FromAny converts a decoded JSON value into a cell: nil becomes Missing,
// strings and numbers are kept verbatim, nested values are re-encoded as
// compact JSON text.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Missing
	case string:
		if x == "" {
			return Missing
		}
		return Present(x)
	case json.Number:
		return Present(x.String())
	case bool:
		return Present(strconv.FormatBool(x))
	case float64:
		return Float(x)
	case int:
		return Present(strconv.Itoa(x))
	case int64:
		return Present(strconv.FormatInt(x, 10))
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Present(fmt.Sprint(x))
		}
		return Present(string(b))
	}
}

// Table is an ordered set of columns and the rows aligned to them.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// New returns an empty table with a copy of columns as its header.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// FromRecords builds a table from unordered records. Columns are the union
// of all keys, ordered by first appearance (keys within one record sorted).
func FromRecords(recs []records.Record) *Table {
	t := &Table{}
	idx := map[string]int{}
	for _, r := range recs {
		for _, k := range r.Keys() {
			if _, ok := idx[k]; !ok {
				idx[k] = len(t.Columns)
				t.Columns = append(t.Columns, k)
			}
		}
	}
	t.Rows = make([][]Value, 0, len(recs))
	for _, r := range recs {
		row := make([]Value, len(t.Columns))
		for k, v := range r {
			row[idx[k]] = FromAny(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Append adds a row. The row must be aligned to t.Columns.
func (t *Table) Append(row []Value) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table: row has %d cells, header has %d", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// AddColumn appends a column filled with Missing and returns its index. If
// the column already exists its index is returned unchanged.
func (t *Table) AddColumn(name string) int {
	if i := t.Index(name); i >= 0 {
		return i
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], Missing)
	}
	return len(t.Columns) - 1
}

// Column returns the cells of column name (nil, false when absent).
func (t *Table) Column(name string) ([]Value, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Clone returns a deep copy so callers can mutate it freely.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]Value(nil), row...)
	}
	return c
}

// Concat stacks tables vertically. The header is the union of all headers in
// first-seen order; cells for columns a table lacks are Missing.
func Concat(ts ...*Table) *Table {
	out := &Table{}
	idx := map[string]int{}
	total := 0
	for _, t := range ts {
		total += len(t.Rows)
		for _, c := range t.Columns {
			if _, ok := idx[c]; !ok {
				idx[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	out.Rows = make([][]Value, 0, total)
	for _, t := range ts {
		pos := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			pos[i] = idx[c]
		}
		for _, row := range t.Rows {
			dst := make([]Value, len(out.Columns))
			for i, v := range row {
				dst[pos[i]] = v
			}
			out.Rows = append(out.Rows, dst)
		}
	}
	return out
}
