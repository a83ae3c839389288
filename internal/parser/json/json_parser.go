// Package json turns JSON input into records.Record maps.
//
// Two shapes are accepted:
//
//   - JSON Lines: one object per non-blank line
//     {"VendorID":2,"trip_distance":1.1}
//     {"VendorID":1,"trip_distance":3.0}
//   - a whole document: a top-level array of objects, an envelope object
//     holding such an array ({"records":[...]}), or a single object.
//
// Decode tries JSON Lines first and falls back to whole-document parsing.
// Numbers are decoded as json.Number so values keep their source text.
package json

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tripetl/pkg/records"
)

// Options tunes DecodeDocument.
type Options struct {
	// AllowArrays accepts a top-level JSON array of objects.
	AllowArrays bool

	// AllowEnvelope accepts a top-level object whose first array-of-objects
	// field holds the records.
	AllowEnvelope bool
}

// DefaultOptions is what Decode uses for its whole-document fallback.
var DefaultOptions = Options{AllowArrays: true, AllowEnvelope: true}

// Decode parses data as JSON Lines and, when that fails, as a single JSON
// document. The JSON Lines error is discarded once the fallback succeeds;
// when both fail the document error is returned.
func Decode(data []byte) ([]records.Record, error) {
	recs, err := DecodeLines(data)
	if err == nil {
		return recs, nil
	}
	recs, derr := DecodeDocument(bytes.NewReader(data), DefaultOptions)
	if derr != nil {
		return nil, derr
	}
	return recs, nil
}

// DecodeLines parses data as JSON Lines. Blank lines are ignored; every other
// line must hold exactly one JSON object.
func DecodeLines(data []byte) ([]records.Record, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	var out []records.Record
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		rec, err := decodeObject(b)
		if err != nil {
			return nil, fmt.Errorf("json parser: line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("json parser: scan: %w", err)
	}
	return out, nil
}

// decodeObject decodes b as exactly one JSON object.
func decodeObject(b []byte) (records.Record, error) {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	var raw any
	if err := d.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after object")
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is %s, not an object", kindOf(raw))
	}
	return records.Record(m), nil
}

// DecodeDocument reads a single JSON document from r. Empty input yields
// (nil, nil).
func DecodeDocument(r io.Reader, opt Options) ([]records.Record, error) {
	d := json.NewDecoder(r)
	d.UseNumber()

	var root any
	if err := d.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("json parser: decode root: %w", err)
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("json parser: trailing data after document")
	}

	switch v := root.(type) {
	case map[string]any:
		if opt.AllowEnvelope {
			if slice := findObjectSlice(v); slice != nil {
				return slice, nil
			}
		}
		return []records.Record{records.Record(v)}, nil

	case []any:
		if !opt.AllowArrays {
			return nil, fmt.Errorf("json parser: top-level array encountered but arrays are not allowed")
		}
		out := make([]records.Record, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("json parser: element %d in array is %s, not an object", i, kindOf(elem))
			}
			out = append(out, records.Record(obj))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("json parser: unsupported top-level JSON type %s", kindOf(v))
	}
}

// findObjectSlice returns the first field of root (in key order) whose value
// is a non-empty array made only of objects; nulls inside it are skipped.
func findObjectSlice(root map[string]any) []records.Record {
	for _, k := range records.Record(root).Keys() {
		rawSlice, ok := root[k].([]any)
		if !ok || len(rawSlice) == 0 {
			continue
		}
		objects := make([]records.Record, 0, len(rawSlice))
		valid := true
		for _, elem := range rawSlice {
			if elem == nil {
				continue
			}
			m, ok := elem.(map[string]any)
			if !ok {
				valid = false
				break
			}
			objects = append(objects, records.Record(m))
		}
		if valid && len(objects) > 0 {
			return objects
		}
	}
	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
