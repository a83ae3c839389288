package schema

import "tripetl/internal/table"

// binding maps source column positions onto canonical slots. A slot index of
// -1 means the source lacks that column.
type binding [FieldCount]int

func bind(columns []string) binding {
	var b binding
	for i, f := range fields {
		b[i] = -1
		for j, c := range columns {
			if c == f.name {
				b[i] = j
				break
			}
		}
	}
	return b
}

func (b binding) trip(row []table.Value) Trip {
	var t Trip
	for i, f := range fields {
		if j := b[i]; j >= 0 && j < len(row) {
			*f.slot(&t) = row[j]
		}
	}
	return t
}

// FromRow maps one source row, aligned to columns, onto a Trip. Columns that
// are not canonical are ignored; canonical columns the source lacks are left
// Missing. When a name repeats, its first occurrence wins.
func FromRow(columns []string, row []table.Value) Trip {
	return bind(columns).trip(row)
}

// Reconcile returns a table with exactly the canonical columns, in order,
// and one row per input row. It never fails and reconciling its own output
// yields an equal table.
func Reconcile(t *table.Table) *table.Table {
	out := table.New(Columns())
	out.Rows = make([][]table.Value, 0, len(t.Rows))
	b := bind(t.Columns)
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, b.trip(row).Values())
	}
	return out
}

// Trips maps every row of t onto a Trip.
func Trips(t *table.Table) []Trip {
	b := bind(t.Columns)
	out := make([]Trip, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = b.trip(row)
	}
	return out
}
