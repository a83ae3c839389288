package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes t as comma-separated text with a header row. Missing cells
// are written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j := range rec {
			rec[j] = row[j].String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("table: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
