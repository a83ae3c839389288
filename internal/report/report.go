// Package report computes the summary printed after the final dataset is
// loaded: travel, duration and cost statistics, the payment distribution and
// the most frequent pickup and dropoff zones.
package report

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tripetl/internal/lookup"
	"tripetl/internal/table"
)

// TopN is the number of locations kept per ranking.
const TopN = 10

// Columns read from the final dataset.
const (
	DistanceColumn = "trip_distance"
	DurationColumn = "trip_durasi"
	AmountColumn   = "total_amount"
	PaymentColumn  = "payment_type"
	PickupColumn   = "pu_location_id"
	DropoffColumn  = "do_location_id"
)

// Stat is a statistic that may be unavailable when no cell could be used.
type Stat struct {
	Value float64
	OK    bool
}

func stat(v float64) Stat { return Stat{Value: v, OK: true} }

type Travel struct {
	Trips          int
	MeanDistanceKM Stat
	MaxDistanceKM  Stat
}

type Duration struct {
	TotalMinutes Stat
	MeanMinutes  Stat
	MaxMinutes   Stat
}

type Cost struct {
	Total Stat
	Max   Stat
	Mean  Stat
}

type PaymentCount struct {
	Label string
	Count int
}

// LocationCount is one ranked location joined to the zone lookup. Borough
// and Zone are empty when the id is not in the lookup.
type LocationCount struct {
	ID      string
	Borough string
	Zone    string
	Count   int
}

// Report is the full summary. A nil Payments, TopPickup or TopDropoff means
// the sub-report could not be produced.
type Report struct {
	Travel     Travel
	Duration   Duration
	Cost       Cost
	Payments   []PaymentCount
	TopPickup  []LocationCount
	TopDropoff []LocationCount
}

// Summarize builds the report for t. Missing and non-numeric cells are left
// out of every statistic. zones may be nil, in which case the location
// rankings are skipped with a warning.
func Summarize(t *table.Table, zones *lookup.Zones, log zerolog.Logger) Report {
	var r Report

	r.Travel.Trips = t.Len()
	dist := floats(t, DistanceColumn)
	r.Travel.MeanDistanceKM = mean(dist)
	r.Travel.MaxDistanceKM = maximum(dist)

	dur := floats(t, DurationColumn)
	r.Duration.TotalMinutes = sum(dur)
	r.Duration.MeanMinutes = mean(dur)
	r.Duration.MaxMinutes = maximum(dur)

	r.Cost = cost(t)

	if vals, ok := t.Column(PaymentColumn); ok {
		r.Payments = []PaymentCount{}
		for _, c := range rank(vals, strings.TrimSpace) {
			r.Payments = append(r.Payments, PaymentCount{Label: c.key, Count: c.n})
		}
	} else {
		log.Warn().Str("column", PaymentColumn).Msg("report: column not found, payment distribution skipped")
	}

	r.TopPickup = topLocations(t, PickupColumn, zones, log)
	r.TopDropoff = topLocations(t, DropoffColumn, zones, log)
	return r
}

func topLocations(t *table.Table, column string, zones *lookup.Zones, log zerolog.Logger) []LocationCount {
	vals, ok := t.Column(column)
	if !ok || zones == nil {
		log.Warn().
			Str("column", column).
			Bool("column_found", ok).
			Bool("lookup_loaded", zones != nil).
			Msg("report: location ranking skipped")
		return nil
	}
	ranked := rank(vals, lookup.NormalizeKey)
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	out := make([]LocationCount, 0, len(ranked))
	for _, c := range ranked {
		lc := LocationCount{ID: c.key, Count: c.n}
		if z, ok := zones.Lookup(c.key); ok {
			lc.Borough, lc.Zone = z.Borough, z.Zone
		}
		out = append(out, lc)
	}
	return out
}

type counted struct {
	key string
	n   int
}

// rank counts the non-missing values under key, most frequent first; equal
// counts keep first-seen order.
func rank(vals []table.Value, key func(string) string) []counted {
	idx := map[string]int{}
	var out []counted
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		k := key(v.String())
		if i, ok := idx[k]; ok {
			out[i].n++
			continue
		}
		idx[k] = len(out)
		out = append(out, counted{key: k, n: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].n > out[j].n })
	return out
}

// floats returns the usable numeric cells of column; nil when absent.
func floats(t *table.Table, column string) []float64 {
	vals, ok := t.Column(column)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := v.Float64(); ok {
			out = append(out, f)
		}
	}
	return out
}

func sum(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return stat(s)
}

func mean(xs []float64) Stat {
	s := sum(xs)
	if !s.OK {
		return s
	}
	return stat(s.Value / float64(len(xs)))
}

func maximum(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return stat(m)
}

// cost sums amounts as decimals so a long column of cents adds up exactly.
func cost(t *table.Table) Cost {
	vals, ok := t.Column(AmountColumn)
	if !ok {
		return Cost{}
	}
	var (
		total decimal.Decimal
		max   decimal.Decimal
		n     int64
	)
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(v.String()))
		if err != nil {
			continue
		}
		if n == 0 || d.GreaterThan(max) {
			max = d
		}
		total = total.Add(d)
		n++
	}
	if n == 0 {
		return Cost{}
	}
	return Cost{
		Total: stat(total.InexactFloat64()),
		Max:   stat(max.InexactFloat64()),
		Mean:  stat(total.Div(decimal.NewFromInt(n)).InexactFloat64()),
	}
}
