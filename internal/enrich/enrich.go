// Package enrich turns raw register rows into normalized filing records.
// Derivation is best-effort: every field has a fallback chain and anything
// unresolvable is left absent rather than guessed.
package enrich

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gst-filing-service/internal/colmap"
	"gst-filing-service/internal/models"
	"gst-filing-service/internal/states"
)

// Record is one enriched register row. Optional amounts use NullDecimal
// so "absent" stays distinct from "zero" through the fallback chains.
type Record struct {
	SourceRow int // zero-based index into the input table

	GSTIN         string
	HasValidGSTIN bool
	ReceiverName  string

	InvoiceNumber string
	InvoiceDate   time.Time

	InvoiceValue decimal.NullDecimal
	TaxableValue decimal.NullDecimal
	TaxTotal     decimal.NullDecimal
	Rate         decimal.NullDecimal
	CessAmount   decimal.Decimal

	NoteNumber string
	NoteDate   time.Time
	NoteValue  decimal.NullDecimal
	NoteType   string // "C", "D" or ""
	IsNote     bool

	EcommerceGSTIN string
	TypeFlag       string // "E" when sold through an operator, else "OE"

	SupplyText  string
	DocType     string
	IsSEZ       bool
	InvoiceType string

	POSCode         string
	SourceStateCode string
	IsInterstate    bool
	IsLargeB2CL     bool

	IsExport   bool
	ExportType string // WPAY or WOPAY
	PortCode   string

	IsCancelled bool

	HSN         string
	Description string
	UQC         string
	Quantity    decimal.Decimal
	TotalValue  decimal.Decimal
	IGSTAmount  decimal.Decimal
	CGSTAmount  decimal.Decimal
	SGSTAmount  decimal.Decimal
}

// b2clThresholdChange is the period from which the interstate B2CL
// reporting threshold dropped from 2.5 lakh to 1 lakh.
var b2clThresholdChange = time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)

var (
	thresholdBefore = decimal.NewFromInt(250000)
	thresholdAfter  = decimal.NewFromInt(100000)
)

// IsLargeInterstate reports whether an interstate consumer invoice crosses
// the B2CL threshold in force on the invoice date. The comparison is
// strict: a value exactly at the threshold is not large.
func IsLargeInterstate(invoiceValue decimal.NullDecimal, interstate bool, invoiceDate time.Time) bool {
	if !invoiceValue.Valid || !interstate {
		return false
	}
	threshold := thresholdBefore
	if !invoiceDate.IsZero() && !invoiceDate.Before(b2clThresholdChange) {
		threshold = thresholdAfter
	}
	return invoiceValue.Decimal.Abs().GreaterThan(threshold)
}

// Enricher derives filing records from a raw table using an inferred
// column map and the jurisdiction registry.
type Enricher struct {
	registry *states.Registry
}

// NewEnricher creates an enricher backed by the given registry.
func NewEnricher(registry *states.Registry) *Enricher {
	return &Enricher{registry: registry}
}

// Enrich maps every row of the table to a Record. The column map is
// inferred once per table; rows never fail here, field-level problems
// surface later as builder validation errors.
func (e *Enricher) Enrich(table *models.Table) []Record {
	if table.IsEmpty() {
		return nil
	}

	fieldMap := colmap.NewEngine(table).BuildMap()
	records := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		records = append(records, e.enrichRow(i, row, fieldMap))
	}
	return records
}

func (e *Enricher) enrichRow(idx int, row models.Row, m colmap.FieldMap) Record {
	rec := Record{SourceRow: idx}

	rec.GSTIN = models.CleanGSTIN(m.Value(row, "gstin"))
	rec.HasValidGSTIN = models.IsValidGSTIN(rec.GSTIN)
	rec.ReceiverName = models.Truncate(m.String(row, "customer_name"), 100)

	rec.InvoiceNumber = m.String(row, "invoice_number")
	rec.InvoiceDate, _ = models.ParseDate(m.Value(row, "invoice_date"))

	rec.TaxTotal = e.resolveTaxTotal(row, m)
	rec.InvoiceValue = e.resolveInvoiceValue(row, m, rec.TaxTotal)
	rec.TaxableValue = e.resolveTaxableValue(row, m, rec.InvoiceValue, rec.TaxTotal)
	rec.Rate = e.resolveRate(row, m, rec.TaxTotal)
	rec.CessAmount = e.resolveCess(row, m)

	rec.EcommerceGSTIN = models.CleanGSTIN(m.Value(row, "ecommerce_gstin"))
	if rec.EcommerceGSTIN != "" {
		rec.TypeFlag = "E"
	} else {
		rec.TypeFlag = "OE"
	}

	rec.SupplyText = firstNonEmpty(m.String(row, "supply_type"), m.String(row, "unique_type"))
	rec.IsSEZ = detectSEZ(rec.SupplyText)
	rec.InvoiceType = determineInvoiceType(rec.IsSEZ, rec.SupplyText)

	rec.POSCode = e.resolveState(m.Value(row, "place_of_supply"))
	rec.SourceStateCode = e.resolveState(m.Value(row, "source_of_supply"))
	rec.IsInterstate = rec.POSCode != "" && rec.SourceStateCode != "" && rec.POSCode != rec.SourceStateCode

	rec.DocType = firstNonEmpty(m.String(row, "doc_type"), m.String(row, "unique_type"))
	rec.NoteNumber = firstNonEmpty(m.String(row, "note_number"), rec.InvoiceNumber)
	rec.NoteDate, _ = models.ParseDate(m.Value(row, "note_date"))
	if rec.NoteDate.IsZero() {
		rec.NoteDate = rec.InvoiceDate
	}
	rec.NoteValue = e.resolveNoteValue(row, m, rec.TaxableValue, rec.TaxTotal, rec.InvoiceValue)
	rec.NoteType = determineNoteType(rec.DocType, rec.SupplyText)
	rec.IsNote = isCreditOrDebit(rec.DocType, rec.SupplyText) || rec.NoteType != ""

	rec.IsExport = detectExport(&rec, row, m)
	rec.ExportType = resolveExportType(rec.SupplyText)
	rec.PortCode = strings.ToUpper(m.String(row, "port_code"))

	rec.IsLargeB2CL = IsLargeInterstate(rec.InvoiceValue, rec.IsInterstate, rec.InvoiceDate)
	rec.IsCancelled = detectCancelled(rec.DocType, m.String(row, "supply_type"))

	rec.HSN = m.String(row, "hsn")
	rec.Description = m.String(row, "description")
	rec.UQC = m.String(row, "uqc")
	rec.Quantity = decimalOrZero(m.Value(row, "quantity"))
	rec.TotalValue = decimalOrZero(m.Value(row, "total_value"))
	rec.IGSTAmount = decimalOrZero(m.Value(row, "igst_amount"))
	rec.CGSTAmount = decimalOrZero(m.Value(row, "cgst_amount"))
	rec.SGSTAmount = decimalOrZero(m.Value(row, "sgst_amount"))

	return rec
}

// ---------------- amount chains ----------------

func (e *Enricher) resolveTaxTotal(row models.Row, m colmap.FieldMap) decimal.NullDecimal {
	if v := models.ToNullDecimal(m.Value(row, "tax_total")); v.Valid {
		return v
	}
	sum := decimal.Zero
	found := false
	for _, field := range []string{"igst_amount", "cgst_amount", "sgst_amount"} {
		if v, ok := models.ToDecimal(m.Value(row, field)); ok {
			sum = sum.Add(v)
			found = true
		}
	}
	return decimal.NullDecimal{Decimal: sum, Valid: found}
}

func (e *Enricher) resolveInvoiceValue(row models.Row, m colmap.FieldMap, taxTotal decimal.NullDecimal) decimal.NullDecimal {
	if v := models.ToNullDecimal(m.Value(row, "invoice_value")); v.Valid {
		return v
	}
	for _, field := range []string{"gross_amount", "mrp_value"} {
		if v := models.ToNullDecimal(m.Value(row, field)); v.Valid {
			return v
		}
	}
	taxable := models.ToNullDecimal(m.Value(row, "taxable_value"))
	if taxable.Valid && taxTotal.Valid {
		return decimal.NullDecimal{Decimal: taxable.Decimal.Add(taxTotal.Decimal), Valid: true}
	}
	return taxable
}

func (e *Enricher) resolveTaxableValue(row models.Row, m colmap.FieldMap, invoiceValue, taxTotal decimal.NullDecimal) decimal.NullDecimal {
	if v := models.ToNullDecimal(m.Value(row, "taxable_value")); v.Valid {
		return v
	}
	if !invoiceValue.Valid {
		return decimal.NullDecimal{}
	}
	if !taxTotal.Valid {
		return invoiceValue
	}
	return decimal.NullDecimal{Decimal: invoiceValue.Decimal.Sub(taxTotal.Decimal), Valid: true}
}

func (e *Enricher) resolveRate(row models.Row, m colmap.FieldMap, taxTotal decimal.NullDecimal) decimal.NullDecimal {
	if v, ok := models.ToDecimal(m.Value(row, "igst_rate")); ok && !v.IsZero() {
		return decimal.NullDecimal{Decimal: v, Valid: true}
	}
	cgst, _ := models.ToDecimal(m.Value(row, "cgst_rate"))
	sgst, _ := models.ToDecimal(m.Value(row, "sgst_rate"))
	if !cgst.IsZero() || !sgst.IsZero() {
		return decimal.NullDecimal{Decimal: cgst.Add(sgst), Valid: true}
	}
	if v, ok := models.ToDecimal(m.Value(row, "rate")); ok && !v.IsZero() {
		return decimal.NullDecimal{Decimal: v, Valid: true}
	}
	taxable, ok := models.ToDecimal(m.Value(row, "taxable_value"))
	if ok && !taxable.IsZero() && taxTotal.Valid && !taxTotal.Decimal.IsZero() {
		rate := taxTotal.Decimal.Div(taxable).Mul(decimal.NewFromInt(100)).Round(2)
		return decimal.NullDecimal{Decimal: rate, Valid: true}
	}
	return decimal.NullDecimal{}
}

func (e *Enricher) resolveCess(row models.Row, m colmap.FieldMap) decimal.Decimal {
	if v, ok := models.ToDecimal(m.Value(row, "cess_amount")); ok {
		return v
	}
	return decimal.Zero
}

func (e *Enricher) resolveNoteValue(row models.Row, m colmap.FieldMap, taxable, taxTotal, invoiceValue decimal.NullDecimal) decimal.NullDecimal {
	if v := models.ToNullDecimal(m.Value(row, "note_value")); v.Valid {
		return v
	}
	sum := decimal.Zero
	if taxable.Valid {
		sum = sum.Add(taxable.Decimal.Abs())
	}
	if taxTotal.Valid {
		sum = sum.Add(taxTotal.Decimal.Abs())
	}
	if !sum.IsZero() {
		return decimal.NullDecimal{Decimal: sum, Valid: true}
	}
	if invoiceValue.Valid {
		return decimal.NullDecimal{Decimal: invoiceValue.Decimal.Abs(), Valid: true}
	}
	return decimal.NullDecimal{}
}

// ---------------- text classifiers ----------------

func (e *Enricher) resolveState(value interface{}) string {
	s := models.SafeString(value)
	if s == "" {
		return ""
	}
	code, ok := e.registry.Resolve(s)
	if !ok {
		return ""
	}
	return code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func decimalOrZero(value interface{}) decimal.Decimal {
	d, ok := models.ToDecimal(value)
	if !ok {
		return decimal.Zero
	}
	return d
}

func detectSEZ(supplyText string) bool {
	lowered := strings.ToLower(supplyText)
	for _, k := range []string{"sez", "special economic zone", "deemed export"} {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

func determineInvoiceType(isSEZ bool, supplyText string) string {
	if !isSEZ {
		return "Regular"
	}
	lowered := strings.ToLower(supplyText)
	if strings.Contains(lowered, "without") && strings.Contains(lowered, "payment") {
		return "SEZ supplies without payment"
	}
	return "SEZ supplies with payment"
}

func determineNoteType(docType, supplyText string) string {
	lowered := strings.ToLower(docType + " " + supplyText)
	if strings.Contains(lowered, "credit") || strings.Contains(lowered, "cn") {
		return "C"
	}
	if strings.Contains(lowered, "debit") || strings.Contains(lowered, "dn") {
		return "D"
	}
	return ""
}

func isCreditOrDebit(docType, supplyText string) bool {
	lowered := strings.ToLower(docType + " " + supplyText)
	for _, k := range []string{"credit", "debit", "cn", "dn"} {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

func detectExport(rec *Record, row models.Row, m colmap.FieldMap) bool {
	if rec.IsNote {
		return false
	}
	candidates := []string{
		m.String(row, "sales_channel"),
		rec.DocType,
		m.String(row, "source_of_supply"),
		m.String(row, "unique_type"),
		rec.SupplyText,
	}
	for _, value := range candidates {
		lowered := strings.ToLower(value)
		if strings.HasPrefix(lowered, "exp ") || strings.Contains(lowered, "export") {
			return true
		}
	}
	return false
}

func resolveExportType(supplyText string) string {
	lowered := strings.ToLower(supplyText)
	if strings.Contains(lowered, "with payment") || strings.Contains(lowered, "wpay") {
		return "WPAY"
	}
	return "WOPAY"
}

func detectCancelled(docType, supplyType string) bool {
	lowered := strings.ToLower(docType + " " + supplyType)
	return strings.Contains(lowered, "cancel")
}
