// Package csv parses delimited text with a header row into a table.Table,
// keeping the header order and mapping empty fields to table.Missing.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tripetl/internal/table"
)

// ErrTooManyFields is returned (wrapped) when a data row is wider than the
// header and the parser is not lenient.
var ErrTooManyFields = errors.New("too many fields")

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap renames source header names. Unmapped headers are kept
	// verbatim (only trimmed and BOM-stripped).
	HeaderMap map[string]string

	// Lenient skips rows wider than the header (counting them) instead of
	// failing the whole parse.
	Lenient bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads a header row and all data rows from r. Rows shorter than the
// header are padded with Missing. It returns the table and the number of rows
// skipped in lenient mode.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1 // width is enforced below against the header

	h, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	t := table.New(normalizeHeaders(h, p.opt))
	width := len(t.Columns)

	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read csv: %w", err)
		}
		if len(row) > width {
			if p.opt.Lenient {
				skipped++
				continue
			}
			line, _ := cr.FieldPos(0)
			return nil, skipped, fmt.Errorf("line %d: expected %d fields, saw %d: %w", line, width, len(row), ErrTooManyFields)
		}

		cells := make([]table.Value, width)
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			cells[i] = emptyToMissing(val)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, skipped, nil
}

// emptyToMissing converts an empty string to Missing; all other values are kept.
func emptyToMissing(s string) table.Value {
	if s == "" {
		return table.Missing
	}
	return table.Present(s)
}

// StripHeaderBOM returns headers with a UTF-8 byte order mark removed from
// the first cell. The input slice is not modified.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	out := append([]string(nil), headers...)
	out[0] = strings.TrimPrefix(out[0], "\uFEFF")
	return out
}

// normalizeHeaders trims header cells, strips a leading BOM, applies the
// HeaderMap and de-duplicates repeated names as name.1, name.2, ...
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	used := make(map[string]bool, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if m, ok := opt.HeaderMap[c]; ok && m != "" {
			c = m
		}
		if c == "" {
			c = "Unnamed: " + strconv.Itoa(i)
		}
		name := c
		for n := 1; used[name]; n++ {
			name = c + "." + strconv.Itoa(n)
		}
		used[name] = true
		res[i] = name
	}
	return res
}
