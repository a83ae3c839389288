package builtin

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tripetl/internal/table"
)

// columnFixups repairs names the upper-case splitting mangles.
var columnFixups = map[string]string{
	"p_u_location_i_d": "pu_location_id",
	"d_o_location_i_d": "do_location_id",
}

// NormalizeName turns a source column name into snake case: diacritics are
// folded, an underscore is inserted before every upper-case ASCII letter
// except a leading one, the result is lower-cased and spaces and hyphens
// become underscores. VendorID becomes vendor_i_d; PULocationID becomes
// pu_location_id through the fixup table.
func NormalizeName(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	out := strings.ToLower(b.String())
	out = strings.NewReplacer(" ", "_", "-", "_").Replace(out)

	if fixed, ok := columnFixups[out]; ok {
		return fixed
	}
	return out
}

// NormalizeColumns renames every column with NormalizeName. Two names that
// collapse to the same result keep the first as is and suffix the rest with
// .1, .2, ...
type NormalizeColumns struct{}

func (NormalizeColumns) Name() string { return "normalize_columns" }

func (NormalizeColumns) Apply(t *table.Table) error {
	used := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		base := NormalizeName(c)
		name := base
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		t.Columns[i] = name
	}
	return nil
}
