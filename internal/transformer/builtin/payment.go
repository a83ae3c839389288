package builtin

import (
	"strconv"
	"strings"

	"tripetl/internal/table"
)

const (
	PaymentColumn = "payment_type"
	UnknownLabel  = "Unknown"
)

var paymentLabels = map[int64]string{
	1: "Credit Card",
	2: "Cash",
	3: "No Charge",
	4: "Dispute",
	5: "Unknown",
	6: "Voided Trip",
}

// PaymentLabel replaces numeric payment_type codes with their labels. Codes
// outside the table, non-numeric values and Missing cells become Unknown.
type PaymentLabel struct{}

func (PaymentLabel) Name() string { return "payment_label" }

func (PaymentLabel) Apply(t *table.Table) error {
	col := t.Index(PaymentColumn)
	if col < 0 {
		return &MissingFieldError{Field: PaymentColumn}
	}
	for _, row := range t.Rows {
		row[col] = table.Present(LabelFor(row[col]))
	}
	return nil
}

// LabelFor maps one payment_type cell to its label.
func LabelFor(v table.Value) string {
	if v.IsMissing() {
		return UnknownLabel
	}
	code, ok := paymentCode(strings.TrimSpace(v.String()))
	if !ok {
		return UnknownLabel
	}
	if label, ok := paymentLabels[code]; ok {
		return label
	}
	return UnknownLabel
}

// paymentCode parses an integer code and falls back to float parsing only
// when the field contains a '.', so "1.0" reads as 1.
func paymentCode(s string) (int64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if strings.IndexByte(s, '.') >= 0 {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
	}
	return 0, false
}
