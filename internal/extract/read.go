package extract

import (
	"tripetl/internal/fsutil"
	pcsv "tripetl/internal/parser/csv"
	pjson "tripetl/internal/parser/json"
	"tripetl/internal/table"
)

// ReadTabular parses a comma-separated file with a header row. Rows wider
// than the header fail the whole file; shorter rows are padded with Missing.
func ReadTabular(path string) (*table.Table, error) {
	f, err := fsutil.OpenSequential(path)
	if err != nil {
		return nil, fail(path, err)
	}
	defer f.Close()

	t, _, err := pcsv.NewParser(pcsv.Options{}).Parse(f)
	if err != nil {
		return nil, fail(path, err)
	}
	return t, nil
}

// ReadStructured parses a JSON Lines file, falling back to a whole JSON
// document (array of objects, envelope object or single object). Scalars are
// kept as text, null becomes Missing and nested values compact JSON.
func ReadStructured(path string) (*table.Table, error) {
	data, err := fsutil.ReadAll(path)
	if err != nil {
		return nil, fail(path, err)
	}
	if len(data) == 0 {
		return nil, fail(path, ErrEmptyFile)
	}
	recs, err := pjson.Decode(data)
	if err != nil {
		return nil, fail(path, err)
	}
	return table.FromRecords(recs), nil
}

// readerFor picks the reader for a source extension; ok is false for
// extensions the extractor ignores.
func readerFor(ext string) (read func(string) (*table.Table, error), ok bool) {
	switch ext {
	case ".csv":
		return ReadTabular, true
	case ".json":
		return ReadStructured, true
	}
	return nil, false
}
