package builtin

import (
	"errors"
	"strings"
	"time"

	"tripetl/internal/table"
)

const (
	PickupColumn   = "lpep_pickup_datetime"
	DropoffColumn  = "lpep_dropoff_datetime"
	DurationColumn = "trip_durasi"
)

// timeLayouts are tried in order. time.Parse accepts a fractional second
// after the seconds field even when the layout has none.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04",
	"2006-01-02",
}

var errNoLayout = errors.New("no accepted timestamp layout")

// ParseTimestamp parses s with the first matching accepted layout. Values
// without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errNoLayout
}

// TripDuration appends trip_durasi, the dropoff minus pickup time in
// fractional minutes. A row with either timestamp Missing gets a Missing
// duration; an unparseable timestamp fails the whole table.
type TripDuration struct{}

func (TripDuration) Name() string { return "trip_duration" }

func (TripDuration) Apply(t *table.Table) error {
	pick, ok := t.Column(PickupColumn)
	if !ok {
		return &MissingFieldError{Field: PickupColumn}
	}
	drop, ok := t.Column(DropoffColumn)
	if !ok {
		return &MissingFieldError{Field: DropoffColumn}
	}

	out := make([]table.Value, t.Len())
	for i := range out {
		start, err := timestampAt(PickupColumn, pick[i], i)
		if err != nil {
			return err
		}
		end, err := timestampAt(DropoffColumn, drop[i], i)
		if err != nil {
			return err
		}
		if start == nil || end == nil {
			out[i] = table.Missing
			continue
		}
		out[i] = table.Float(end.Sub(*start).Minutes())
	}

	col := t.AddColumn(DurationColumn)
	for i, v := range out {
		t.Rows[i][col] = v
	}
	return nil
}

// timestampAt returns nil for a Missing cell.
func timestampAt(field string, v table.Value, row int) (*time.Time, error) {
	if v.IsMissing() {
		return nil, nil
	}
	ts, err := ParseTimestamp(v.String())
	if err != nil {
		return nil, &ParseError{Field: field, Row: row + 1, Value: v.String(), Err: err}
	}
	return &ts, nil
}
