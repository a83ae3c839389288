package lookup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `"LocationID","Borough","Zone","service_zone"
1,"EWR","Newark Airport","EWR"
132,"Queens","JFK Airport","Airports"
132,"Dup","Ignored","x"
,"Nowhere","Blank",""
`

func TestParse_LookupAndKeys(t *testing.T) {
	z, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if z.Len() != 2 {
		t.Fatalf("Len = %d, want 2", z.Len())
	}

	tests := []struct {
		id   string
		want Zone
		ok   bool
	}{
		{"132", Zone{"Queens", "JFK Airport"}, true},
		{"132.0", Zone{"Queens", "JFK Airport"}, true},
		{" 1 ", Zone{"EWR", "Newark Airport"}, true},
		{"264", Zone{}, false},
	}
	for _, tc := range tests {
		got, ok := z.Lookup(tc.id)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Lookup(%q) = %+v, %v; want %+v, %v", tc.id, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParse_CaseInsensitiveHeaders(t *testing.T) {
	z, err := Parse(strings.NewReader("locationid,BOROUGH,zone\n7,Queens,Astoria\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, ok := z.Lookup("7"); !ok || got.Zone != "Astoria" {
		t.Fatalf("Lookup(7) = %+v, %v", got, ok)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	if _, err := Parse(strings.NewReader("LocationID,Borough\n1,EWR\n")); err == nil {
		t.Fatalf("expected error for missing Zone column")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.csv")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}

	path := filepath.Join(dir, "zones.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	z, err := Load(path)
	if err != nil || z.Len() != 2 {
		t.Fatalf("Load = %v, %v", z, err)
	}
}

func TestNilZones(t *testing.T) {
	var z *Zones
	if _, ok := z.Lookup("1"); ok || z.Len() != 0 {
		t.Fatalf("nil Zones must be empty")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"132":   "132",
		"132.0": "132",
		"+7":    "7",
		"7.5":   "7.5",
		"abc":   "abc",
		" 42 ":  "42",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
