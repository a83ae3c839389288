package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// String formats s with thousands separators and two decimals, or "n/a".
func (s Stat) String() string {
	if !s.OK {
		return "n/a"
	}
	return humanize.CommafWithDigits(s.Value, 2)
}

// Render writes every section of r as an aligned table. Sections whose data
// is unavailable are printed with a short note instead.
func Render(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.Debug)

	section(tw, "Trips",
		[]string{"total trips", "mean distance (km)", "longest trip (km)"},
		[][]string{{humanize.Comma(int64(r.Travel.Trips)), r.Travel.MeanDistanceKM.String(), r.Travel.MaxDistanceKM.String()}})

	section(tw, "Duration",
		[]string{"total (min)", "mean (min)", "longest (min)"},
		[][]string{{r.Duration.TotalMinutes.String(), r.Duration.MeanMinutes.String(), r.Duration.MaxMinutes.String()}})

	section(tw, "Cost",
		[]string{"total ($)", "highest ($)", "mean ($)"},
		[][]string{{r.Cost.Total.String(), r.Cost.Max.String(), r.Cost.Mean.String()}})

	if r.Payments == nil {
		note(tw, "Payment methods", "payment_type column not found")
	} else {
		rows := make([][]string, 0, len(r.Payments))
		for _, p := range r.Payments {
			rows = append(rows, []string{p.Label, humanize.Comma(int64(p.Count))})
		}
		section(tw, "Payment methods", []string{"method", "trips"}, rows)
	}

	locations(tw, fmt.Sprintf("Top %d pickup locations", TopN), r.TopPickup)
	locations(tw, fmt.Sprintf("Top %d dropoff locations", TopN), r.TopDropoff)

	return tw.Flush()
}

func locations(w io.Writer, title string, ls []LocationCount) {
	if ls == nil {
		note(w, title, "location column or zone lookup not available")
		return
	}
	rows := make([][]string, 0, len(ls))
	for _, l := range ls {
		rows = append(rows, []string{l.ID, l.Borough, l.Zone, humanize.Comma(int64(l.Count))})
	}
	section(w, title, []string{"location", "borough", "zone", "trips"}, rows)
}

func section(w io.Writer, title string, header []string, rows [][]string) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
}

func note(w io.Writer, title, msg string) {
	fmt.Fprintf(w, "\n%s\n(%s)\n", title, msg)
}
