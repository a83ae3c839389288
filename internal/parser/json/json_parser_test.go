package json

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"tripetl/pkg/records"
)

/*
TestDecode_Shapes verifies that Decode accepts every supported input shape
and yields one record per logical object:

  - JSON Lines (with blank lines),
  - a pretty-printed top-level array (JSON Lines fails, fallback succeeds),
  - a one-line array,
  - an envelope object,
  - a single pretty-printed object.
*/
func TestDecode_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantIDs []string
	}{
		{
			name:    "json_lines",
			data:    "{\"id\":1}\n\n{\"id\":2}\n",
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "pretty_array",
			data:    "[\n  {\"id\": 1},\n  {\"id\": 2}\n]\n",
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "one_line_array",
			data:    `[{"id":3},{"id":4}]`,
			wantIDs: []string{"3", "4"},
		},
		{
			name:    "envelope",
			data:    "{\n \"meta\": {\"n\": 1},\n \"records\": [{\"id\": 5}, null, {\"id\": 6}]\n}",
			wantIDs: []string{"5", "6"},
		},
		{
			name:    "single_pretty_object",
			data:    "{\n  \"id\": 7\n}\n",
			wantIDs: []string{"7"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := Decode([]byte(tc.data))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			var got []string
			for _, r := range recs {
				got = append(got, r["id"].(json.Number).String())
			}
			if !reflect.DeepEqual(got, tc.wantIDs) {
				t.Fatalf("ids=%v want %v", got, tc.wantIDs)
			}
		})
	}
}

/*
TestDecode_Failures ensures that inputs which are neither JSON Lines nor a
valid document fail after the fallback.
*/
func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"primitive_root", "42"},
		{"array_of_primitives", "[1, 2]"},
		{"truncated_object", "{\"id\": 1,"},
		{"two_documents", "[{\"a\":1}]\n[{\"a\":2}]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := Decode([]byte(tc.data))
			if err == nil {
				t.Fatalf("Decode(%q) = %#v, nil; want error", tc.data, recs)
			}
		})
	}
}

func TestDecodeLines_RejectsTrailingData(t *testing.T) {
	if _, err := DecodeLines([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected error for two objects on one line")
	}
}

func TestDecodeLines_WhitespaceOnly(t *testing.T) {
	recs, err := DecodeLines([]byte("\n  \n"))
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("len(recs)=%d want 0", len(recs))
	}
}

/*
TestDecodeDocument_ObjectRoot verifies that a single top-level JSON object is
decoded into one records.Record with matching fields, numbers kept as
json.Number.
*/
func TestDecodeDocument_ObjectRoot(t *testing.T) {
	recs, err := DecodeDocument(strings.NewReader(`{"id":1,"name":"a"}`), Options{})
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	want := []records.Record{{"id": json.Number("1"), "name": "a"}}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("got %#v want %#v", recs, want)
	}
}

func TestDecodeDocument_ArrayDisallowed(t *testing.T) {
	if _, err := DecodeDocument(strings.NewReader(`[{"id":1}]`), Options{}); err == nil {
		t.Fatalf("expected error when arrays are not allowed")
	}
}

func TestDecodeDocument_EmptyInput(t *testing.T) {
	recs, err := DecodeDocument(strings.NewReader(""), DefaultOptions)
	if err != nil || recs != nil {
		t.Fatalf("DecodeDocument(empty) = %#v, %v; want nil, nil", recs, err)
	}
}

func TestDecodeDocument_EnvelopeDisabled(t *testing.T) {
	recs, err := DecodeDocument(strings.NewReader(`{"records":[{"id":1}]}`), Options{AllowArrays: true})
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if len(recs) != 1 || recs[0]["records"] == nil {
		t.Fatalf("envelope should be kept as a single record, got %#v", recs)
	}
}
