package builtin

import (
	"strconv"
	"strings"

	"tripetl/internal/table"
)

const (
	DistanceColumn = "trip_distance"

	// MilesToKM converts statute miles to kilometres.
	MilesToKM = 1.60934
)

// DistanceKM converts trip_distance from miles to kilometres in place.
type DistanceKM struct{}

func (DistanceKM) Name() string { return "distance_km" }

func (DistanceKM) Apply(t *table.Table) error {
	col := t.Index(DistanceColumn)
	if col < 0 {
		return &MissingFieldError{Field: DistanceColumn}
	}
	conv := make([]table.Value, t.Len())
	for i, row := range t.Rows {
		v := row[col]
		if v.IsMissing() {
			conv[i] = table.Missing
			continue
		}
		miles, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return &ParseError{Field: DistanceColumn, Row: i + 1, Value: v.String(), Err: err}
		}
		conv[i] = table.Float(miles * MilesToKM)
	}
	for i, v := range conv {
		t.Rows[i][col] = v
	}
	return nil
}
