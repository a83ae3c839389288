// Package lookup loads the taxi zone table that maps a LocationID to its
// borough and zone name.
package lookup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"tripetl/internal/fsutil"
	pcsv "tripetl/internal/parser/csv"
)

// Header names matched case-insensitively.
const (
	idHeader      = "LocationID"
	boroughHeader = "Borough"
	zoneHeader    = "Zone"
)

// Zone is one lookup entry.
type Zone struct {
	Borough string
	Zone    string
}

// Zones maps normalized location keys to zones.
type Zones struct {
	byID map[string]Zone
}

// Load reads a zone lookup CSV. Errors wrap the underlying cause, so a
// missing file satisfies errors.Is(err, fs.ErrNotExist).
func Load(path string) (*Zones, error) {
	f, err := fsutil.OpenSequential(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	defer f.Close()
	z, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("lookup: %s: %w", path, err)
	}
	return z, nil
}

// Parse reads a zone lookup CSV with at least LocationID, Borough and Zone
// columns. When an id repeats, the first row wins.
func Parse(r io.Reader) (*Zones, error) {
	t, _, err := pcsv.NewParser(pcsv.Options{TrimSpace: true, Lenient: true}).Parse(r)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	col := map[string]int{}
	for i, c := range t.Columns {
		key := fold.String(c)
		if _, dup := col[key]; !dup {
			col[key] = i
		}
	}
	idx := make([]int, 3)
	for i, h := range []string{idHeader, boroughHeader, zoneHeader} {
		j, ok := col[fold.String(h)]
		if !ok {
			return nil, fmt.Errorf("missing column %q", h)
		}
		idx[i] = j
	}

	z := &Zones{byID: make(map[string]Zone, t.Len())}
	for _, row := range t.Rows {
		id := row[idx[0]]
		if id.IsMissing() {
			continue
		}
		key := NormalizeKey(id.String())
		if _, seen := z.byID[key]; seen {
			continue
		}
		z.byID[key] = Zone{Borough: row[idx[1]].String(), Zone: row[idx[2]].String()}
	}
	return z, nil
}

// Lookup returns the zone for a location id in any of its textual forms
// ("132", "132.0", " 132 ").
func (z *Zones) Lookup(id string) (Zone, bool) {
	if z == nil {
		return Zone{}, false
	}
	zone, ok := z.byID[NormalizeKey(id)]
	return zone, ok
}

// Len is the number of distinct ids.
func (z *Zones) Len() int {
	if z == nil {
		return 0
	}
	return len(z.byID)
}

// NormalizeKey trims s and rewrites integral numbers without a fraction, so
// float-typed ids ("132.0") match integer ones ("132").
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strings.TrimLeft(s, "+")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
