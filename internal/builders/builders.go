// Package builders produces the rows for each sheet of the GSTR-1
// workbook. Every builder filters the enriched records to its category,
// validates row by row, and keys output cells by the literal template
// headers so the writer can place them regardless of template column
// order. Validation failures skip the row and are collected, never fatal.
package builders

import (
	"strings"

	"github.com/shopspring/decimal"

	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/models"
)

// OutputRow holds one output sheet row keyed by template header. Values
// are strings, float64 or int depending on the column.
type OutputRow map[string]interface{}

// RowError records a per-row validation failure. SourceRow refers to the
// input table, not the output sheet.
type RowError struct {
	SourceRow int
	Sheet     string
	Message   string
}

// Builder is one sheet producer. Headers come from the template's header
// row; a header the builder does not know is left blank.
type Builder interface {
	SheetName() string
	Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError)
}

// headerSet answers "does the template have this column" lookups.
type headerSet map[string]bool

func newHeaderSet(headers []string) headerSet {
	set := make(headerSet, len(headers))
	for _, h := range headers {
		if h != "" {
			set[h] = true
		}
	}
	return set
}

// put writes a value only when the template actually has the column.
func (s headerSet) put(row OutputRow, header string, value interface{}) {
	if s[header] {
		row[header] = value
	}
}

// money renders a rounded amount for a cell.
func money(d decimal.Decimal) float64 {
	return models.RoundMoney(d).InexactFloat64()
}

// moneyOrNil renders an optional amount, leaving absent values blank.
func moneyOrNil(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return money(d.Decimal)
}

// allowedInvoiceTypes are the template's B2B invoice type dropdown values.
var allowedInvoiceTypes = map[string]bool{
	"Regular B2B":                          true,
	"SEZ supplies with payment":            true,
	"SEZ supplies without payment":         true,
	"Deemed Exp":                           true,
	"Intra-State supplies attracting IGST": true,
}

// mapInvoiceType converts the internal invoice type to the template's
// dropdown value.
func mapInvoiceType(value string) string {
	if value == "" {
		return "Regular B2B"
	}
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "sez") && strings.Contains(v, "without"):
		return "SEZ supplies without payment"
	case strings.Contains(v, "sez"):
		return "SEZ supplies with payment"
	case strings.Contains(v, "deemed"):
		return "Deemed Exp"
	case strings.Contains(v, "intra"):
		return "Intra-State supplies attracting IGST"
	default:
		return "Regular B2B"
	}
}

func validatePOS(pos string) (bool, string) {
	if pos == "" || !strings.Contains(pos, "-") {
		return false, "invalid place of supply"
	}
	return true, ""
}

func validateNonNegative(d decimal.NullDecimal, field string) (bool, string) {
	if !d.Valid {
		return false, "missing " + field
	}
	if d.Decimal.IsNegative() {
		return false, field + " < 0"
	}
	return true, ""
}
