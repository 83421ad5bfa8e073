// Package colmap infers which spreadsheet columns carry which semantic
// fields. Sellers export registers with wildly different headers; the
// engine scores every header against a keyword table and falls back to
// content sniffing for GSTIN and date columns.
package colmap

import (
	"gst-filing-service/internal/models"

	"regexp"
	"strings"
)

// FieldKeywords binds a semantic field to its header keywords, ordered
// from most to least preferred.
type FieldKeywords struct {
	Field    string
	Keywords []string
}

// DataColumnKeywords is the full keyword table. Order matters twice: the
// field order fixes iteration, and within a field earlier keywords win
// ties over later ones.
var DataColumnKeywords = []FieldKeywords{
	{"gstin", []string{"customer gstin", "customer gstn", "recipient gstin", "gstin", "gstn"}},
	{"customer_name", []string{"customer name", "receiver name", "trade name", "buyer name"}},
	{"invoice_number", []string{"invoice number", "invoice no", "invoice id", "order id", "document number"}},
	{"invoice_date", []string{"invoice date", "date of invoice", "invoice dt", "document date"}},
	{"invoice_value", []string{"invoice value", "invoice amount", "value of invoice"}},
	{"tax_total", []string{"tax total", "total tax", "tax amount", "tax total amount"}},
	{"gross_amount", []string{"gross sales", "gross sales after discount", "gross value"}},
	{"mrp_value", []string{"mrp total", "mrp value"}},
	{"taxable_value", []string{"taxable value", "net sales", "net sales amount", "taxable amount"}},
	{"place_of_supply", []string{"place of supply", "pos", "customer state"}},
	{"source_of_supply", []string{"source of supply", "source state", "state of supply"}},
	{"sales_channel", []string{"sales channel", "channel"}},
	{"doc_type", []string{"doc type", "document type"}},
	{"supply_type", []string{"supply type", "transaction type", "unique", "unique type"}},
	{"note_number", []string{"cn number", "dn number", "credit note number", "debit note number", "note number"}},
	{"note_date", []string{"note date", "cn date", "dn date", "credit note date", "debit note date"}},
	{"note_value", []string{"note value", "credit amount", "debit amount", "dr./ cr. value", "dr./ cr. note value", "gross sales after discount"}},
	{"igst_rate", []string{"igst tax%", "igst%", "igst rate"}},
	{"cgst_rate", []string{"cgst tax%", "cgst%", "cgst rate"}},
	{"sgst_rate", []string{"sgst tax%", "sgst%", "sgst rate"}},
	{"rate", []string{"total tax%", "tax rate", "tax percent", "rate"}},
	{"igst_amount", []string{"igst amount"}},
	{"cgst_amount", []string{"cgst amount"}},
	{"sgst_amount", []string{"sgst amount"}},
	{"cess_amount", []string{"cess amount", "cess"}},
	{"ecommerce_gstin", []string{"e-commerce gstin", "ecommerce gstin", "eco gstin"}},
	{"unique_type", []string{"unique", "transaction type"}},
	{"export_flag", []string{"export"}},
	{"export_type", []string{"export type", "exp type", "type of export", "wpay", "wopay"}},
	{"port_code", []string{"port code", "shipping port", "port"}},
	{"shipping_bill_number", []string{"shipping bill number", "sb number", "shipping bill no"}},
	{"shipping_bill_date", []string{"shipping bill date", "sb date"}},
	{"hsn", []string{"hsn", "hsn code"}},
	{"description", []string{"description", "product name", "item name"}},
	{"uqc", []string{"uqc", "unit", "unit quantity", "quantity unit"}},
	{"quantity", []string{"quantity", "item quantity", "qty"}},
	{"total_value", []string{"total value", "value", "invoice line total"}},
}

// FieldMap maps semantic field keys to the original column header chosen
// for them. Absent fields simply have no entry.
type FieldMap map[string]string

// Value pulls the raw cell for a semantic field out of a row, or nil when
// the field was never mapped.
func (m FieldMap) Value(row models.Row, field string) interface{} {
	col, ok := m[field]
	if !ok {
		return nil
	}
	v, ok := row[col]
	if !ok {
		return nil
	}
	return v
}

// String reads a field as a cleaned string.
func (m FieldMap) String(row models.Row, field string) string {
	return models.SafeString(m.Value(row, field))
}

var normalizeRegex = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeHeader(value string) string {
	return normalizeRegex.ReplaceAllString(strings.ToLower(value), "")
}

// Engine infers the FieldMap for one input table.
type Engine struct {
	table *models.Table
}

// NewEngine creates an inference engine over a table.
func NewEngine(table *models.Table) *Engine {
	return &Engine{table: table}
}

// matchScore orders candidate matches. Lower is better, compared
// lexicographically: exact beats prefix beats substring, then keyword
// priority, then leftmost column.
type matchScore struct {
	level    int
	priority int
	column   int
}

func (s matchScore) less(other matchScore) bool {
	if s.level != other.level {
		return s.level < other.level
	}
	if s.priority != other.priority {
		return s.priority < other.priority
	}
	return s.column < other.column
}

// matchColumn picks the best header for one keyword list, or "" when no
// header matches at all.
func matchColumn(columns []string, keywords []string) string {
	normalized := make([]string, len(columns))
	for i, col := range columns {
		normalized[i] = normalizeHeader(col)
	}

	best := ""
	var bestScore matchScore
	found := false

	for priority, keyword := range keywords {
		nk := normalizeHeader(keyword)
		if nk == "" {
			continue
		}
		for idx, label := range normalized {
			level := -1
			switch {
			case label == nk:
				level = 0
			case strings.HasPrefix(label, nk):
				level = 1
			case strings.Contains(label, nk):
				level = 2
			}
			if level < 0 {
				continue
			}
			score := matchScore{level: level, priority: priority, column: idx}
			if !found || score.less(bestScore) {
				found = true
				bestScore = score
				best = columns[idx]
			}
		}
	}
	return best
}

// BuildMap resolves every semantic field against the table headers, then
// applies content-based fallbacks for the GSTIN and invoice date columns.
// The result is deterministic for a given header set and sample content.
func (e *Engine) BuildMap() FieldMap {
	mapping := make(FieldMap, len(DataColumnKeywords))
	for _, fk := range DataColumnKeywords {
		if col := matchColumn(e.table.Columns, fk.Keywords); col != "" {
			mapping[fk.Field] = col
		}
	}

	if _, ok := mapping["gstin"]; !ok {
		if col := e.detectGSTINColumn(); col != "" {
			mapping["gstin"] = col
		}
	}
	if _, ok := mapping["invoice_date"]; !ok {
		if col := e.detectDateColumn(); col != "" {
			mapping["invoice_date"] = col
		}
	}
	return mapping
}

const (
	gstinSampleSize = 30
	dateSampleSize  = 20
)

// detectGSTINColumn finds a column whose content looks like GSTINs: in a
// sample of up to 30 non-empty cells, at least 60% and at least 3 values
// must match the GSTIN format.
func (e *Engine) detectGSTINColumn() string {
	for _, col := range e.table.Columns {
		sample := e.sampleColumn(col, gstinSampleSize)
		if len(sample) == 0 {
			continue
		}
		matches := 0
		for _, v := range sample {
			if models.GSTINRegex.MatchString(strings.ToUpper(v)) {
				matches++
			}
		}
		threshold := len(sample) * 6 / 10
		if threshold < 3 {
			threshold = 3
		}
		if matches >= threshold {
			return col
		}
	}
	return ""
}

// detectDateColumn finds a column where at least 70% of a 20-cell sample
// parses as a date (textual formats or Excel serials).
func (e *Engine) detectDateColumn() string {
	for _, col := range e.table.Columns {
		sample := e.sampleColumn(col, dateSampleSize)
		if len(sample) == 0 {
			continue
		}
		count := 0
		for _, v := range sample {
			if _, ok := models.ParseDate(v); ok {
				count++
			}
		}
		if float64(count)/float64(len(sample)) >= 0.70 {
			return col
		}
	}
	return ""
}

// sampleColumn collects up to limit non-empty string renderings of a
// column's cells, in row order.
func (e *Engine) sampleColumn(col string, limit int) []string {
	var sample []string
	for _, row := range e.table.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		s := models.SafeString(v)
		if s == "" {
			continue
		}
		sample = append(sample, s)
		if len(sample) >= limit {
			break
		}
	}
	return sample
}
