package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tripetl/internal/fsutil"
	"tripetl/internal/metrics"
	"tripetl/internal/table"
)

// Format is a final dataset file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// SheetName is the worksheet the Excel output is written to.
const SheetName = "Sheet1"

// ParseFormat maps "csv", "excel" and "xlsx" (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	if f == FormatExcel {
		return ".xlsx"
	}
	return ".csv"
}

// Save writes t to ResultDir/final_data.<ext>. An unknown format is logged
// and returns ErrUnsupportedFormat without touching the disk.
func (l *Loader) Save(t *table.Table, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		l.Log.Error().Err(err).Str("format", format).Msg("load: refusing to write")
		return err
	}
	_, err = l.save(t, f)
	return err
}

func (l *Loader) save(t *table.Table, f Format) (string, error) {
	dst := filepath.Join(l.ResultDir, FinalBase+f.Ext())
	write := func(w io.Writer) error { return table.WriteCSV(w, t) }
	if f == FormatExcel {
		write = func(w io.Writer) error { return writeExcel(w, t) }
	}

	sum, err := fsutil.WriteAtomic(dst, write)
	if err != nil {
		metrics.RecordFile(l.Job, stageName, metrics.OutcomeFailed)
		return "", fmt.Errorf("load: save %s: %w", dst, err)
	}
	metrics.RecordFile(l.Job, stageName, metrics.OutcomeWritten)
	l.Log.Info().
		Str("target", dst).
		Str("format", string(f)).
		Int("rows", t.Len()).
		Str("xxh3", fmt.Sprintf("%016x", sum)).
		Msg("load: final dataset written")
	return dst, nil
}

// writeExcel streams t into a single-sheet workbook: the header on row 1,
// then one row per record. Cells that parse as numbers are stored as
// numbers, Missing cells are left empty.
func writeExcel(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("excel: stream writer: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("excel: header: %w", err)
	}

	cells := make([]any, len(t.Columns))
	for r, row := range t.Rows {
		for i, v := range row {
			cells[i] = excelValue(v)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("excel: row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("excel: flush: %w", err)
	}
	return f.Write(w)
}

func excelValue(v table.Value) any {
	if v.IsMissing() {
		return nil
	}
	if f, ok := v.Float64(); ok {
		return f
	}
	return v.String()
}
