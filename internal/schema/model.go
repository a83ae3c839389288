// Package schema defines the canonical trip-record shape every staged file
// carries and the reconciler that maps arbitrary tabular input onto it.
package schema

import "tripetl/internal/table"

// FieldCount is the number of canonical columns.
const FieldCount = 20

// Trip is the canonical record. Fields a source does not provide hold
// table.Missing.
type Trip struct {
	VendorID             table.Value
	PickupDatetime       table.Value
	DropoffDatetime      table.Value
	StoreAndFwdFlag      table.Value
	RatecodeID           table.Value
	PULocationID         table.Value
	DOLocationID         table.Value
	PassengerCount       table.Value
	TripDistance         table.Value
	FareAmount           table.Value
	Extra                table.Value
	MTATax               table.Value
	TipAmount            table.Value
	TollsAmount          table.Value
	EhailFee             table.Value
	ImprovementSurcharge table.Value
	TotalAmount          table.Value
	PaymentType          table.Value
	TripType             table.Value
	CongestionSurcharge  table.Value
}

// field binds a canonical column name to its slot in Trip.
type field struct {
	name string
	slot func(*Trip) *table.Value
}

// fields is the canonical column order.
var fields = [FieldCount]field{
	{"VendorID", func(t *Trip) *table.Value { return &t.VendorID }},
	{"lpep_pickup_datetime", func(t *Trip) *table.Value { return &t.PickupDatetime }},
	{"lpep_dropoff_datetime", func(t *Trip) *table.Value { return &t.DropoffDatetime }},
	{"store_and_fwd_flag", func(t *Trip) *table.Value { return &t.StoreAndFwdFlag }},
	{"RatecodeID", func(t *Trip) *table.Value { return &t.RatecodeID }},
	{"PULocationID", func(t *Trip) *table.Value { return &t.PULocationID }},
	{"DOLocationID", func(t *Trip) *table.Value { return &t.DOLocationID }},
	{"passenger_count", func(t *Trip) *table.Value { return &t.PassengerCount }},
	{"trip_distance", func(t *Trip) *table.Value { return &t.TripDistance }},
	{"fare_amount", func(t *Trip) *table.Value { return &t.FareAmount }},
	{"extra", func(t *Trip) *table.Value { return &t.Extra }},
	{"mta_tax", func(t *Trip) *table.Value { return &t.MTATax }},
	{"tip_amount", func(t *Trip) *table.Value { return &t.TipAmount }},
	{"tolls_amount", func(t *Trip) *table.Value { return &t.TollsAmount }},
	{"ehail_fee", func(t *Trip) *table.Value { return &t.EhailFee }},
	{"improvement_surcharge", func(t *Trip) *table.Value { return &t.ImprovementSurcharge }},
	{"total_amount", func(t *Trip) *table.Value { return &t.TotalAmount }},
	{"payment_type", func(t *Trip) *table.Value { return &t.PaymentType }},
	{"trip_type", func(t *Trip) *table.Value { return &t.TripType }},
	{"congestion_surcharge", func(t *Trip) *table.Value { return &t.CongestionSurcharge }},
}

// Columns returns the canonical column names in order.
func Columns() []string {
	out := make([]string, FieldCount)
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// Values returns the record's cells in canonical column order.
func (t Trip) Values() []table.Value {
	out := make([]table.Value, FieldCount)
	for i, f := range fields {
		out[i] = *f.slot(&t)
	}
	return out
}
