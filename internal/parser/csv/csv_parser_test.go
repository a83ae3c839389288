package csv_test

import (
	"errors"
	"strings"
	"testing"

	pcsv "tripetl/internal/parser/csv"
)

func TestParse_HeaderOrderAndMissing(t *testing.T) {
	in := "\uFEFFVendorID, trip_distance ,payment_type\n2,1.5,\n1,,3\n"
	tb, skipped, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped=%d want 0", skipped)
	}
	wantCols := []string{"VendorID", "trip_distance", "payment_type"}
	if strings.Join(tb.Columns, "|") != strings.Join(wantCols, "|") {
		t.Fatalf("columns=%v want %v", tb.Columns, wantCols)
	}
	if tb.Len() != 2 {
		t.Fatalf("rows=%d want 2", tb.Len())
	}
	if !tb.Rows[0][2].IsMissing() || !tb.Rows[1][1].IsMissing() {
		t.Fatalf("empty fields must be Missing: %#v", tb.Rows)
	}
	if got := tb.Rows[1][2].String(); got != "3" {
		t.Fatalf("payment_type=%q want 3", got)
	}
}

func TestParse_ShortRowsArePadded(t *testing.T) {
	tb, _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader("a,b,c\n1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tb.Rows[0]) != 3 || !tb.Rows[0][1].IsMissing() || !tb.Rows[0][2].IsMissing() {
		t.Fatalf("short row not padded: %#v", tb.Rows[0])
	}
}

func TestParse_WideRow(t *testing.T) {
	in := "a,b\n1,2\n1,2,3\n4,5\n"

	_, _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if !errors.Is(err, pcsv.ErrTooManyFields) {
		t.Fatalf("strict parse err=%v; want ErrTooManyFields", err)
	}

	tb, skipped, err := pcsv.NewParser(pcsv.Options{Lenient: true}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if skipped != 1 || tb.Len() != 2 {
		t.Fatalf("lenient: skipped=%d rows=%d; want 1, 2", skipped, tb.Len())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty_input", ""},
		{"bad_quote", "a,b\n\"1,2\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(tc.in)); err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
		})
	}
}

func TestParse_DuplicateAndMappedHeaders(t *testing.T) {
	opt := pcsv.Options{
		Comma:     ';',
		TrimSpace: true,
		HeaderMap: map[string]string{"Fare": "fare_amount"},
	}
	tb, _, err := pcsv.NewParser(opt).Parse(strings.NewReader("x;x;Fare;\n1; 2 ;3;4\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"x", "x.1", "fare_amount", "Unnamed: 3"}
	if strings.Join(tb.Columns, "|") != strings.Join(want, "|") {
		t.Fatalf("columns=%v want %v", tb.Columns, want)
	}
	if got := tb.Rows[0][1].String(); got != "2" {
		t.Fatalf("trimmed value=%q want 2", got)
	}
}

func TestStripHeaderBOM(t *testing.T) {
	h := pcsv.StripHeaderBOM([]string{"\uFEFFa", "b"})
	if h[0] != "a" {
		t.Fatalf("StripHeaderBOM=%q want a", h[0])
	}
	if got := pcsv.StripHeaderBOM(nil); got != nil {
		t.Fatalf("StripHeaderBOM(nil)=%v", got)
	}
}
