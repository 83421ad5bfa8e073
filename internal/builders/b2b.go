package builders

import (
	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/models"
	"gst-filing-service/internal/states"
)

// B2BBuilder fills the "b2b,sez,de" sheet: registered recipients,
// excluding notes and exports. This is the strictest sheet; every field
// the portal validates is checked here.
type B2BBuilder struct {
	registry *states.Registry
}

func NewB2BBuilder(registry *states.Registry) *B2BBuilder {
	return &B2BBuilder{registry: registry}
}

func (b *B2BBuilder) SheetName() string { return "b2b,sez,de" }

func (b *B2BBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	h := newHeaderSet(headers)
	var rows []OutputRow
	var errs []RowError

	fail := func(rec *enrich.Record, msg string) {
		errs = append(errs, RowError{SourceRow: rec.SourceRow, Sheet: b.SheetName(), Message: msg})
	}

	for i := range records {
		rec := &records[i]
		if enrich.Classify(rec) != enrich.CategoryB2B {
			continue
		}

		if !models.IsValidGSTIN(rec.GSTIN) {
			fail(rec, "invalid GSTIN")
			continue
		}
		if ok, msg := models.ValidateDocNumber(rec.InvoiceNumber); !ok {
			fail(rec, msg)
			continue
		}
		if rec.InvoiceDate.IsZero() {
			fail(rec, "invoice date required")
			continue
		}
		pos := b.registry.FormatPlaceOfSupply(rec.POSCode)
		if ok, msg := validatePOS(pos); !ok {
			fail(rec, msg)
			continue
		}
		invoiceType := mapInvoiceType(rec.InvoiceType)
		if !allowedInvoiceTypes[invoiceType] {
			fail(rec, "invalid invoice type")
			continue
		}
		if !rec.Rate.Valid || !models.IsValidRate(rec.Rate.Decimal) {
			fail(rec, "invalid GST rate")
			continue
		}
		if ok, msg := validateNonNegative(rec.TaxableValue, "taxable value"); !ok {
			fail(rec, msg)
			continue
		}
		if rec.CessAmount.IsNegative() {
			fail(rec, "cess < 0")
			continue
		}

		row := OutputRow{}
		h.put(row, "GSTIN/UIN of Recipient", rec.GSTIN)
		h.put(row, "Receiver Name", rec.ReceiverName)
		h.put(row, "Invoice Number", rec.InvoiceNumber)
		h.put(row, "Invoice date", models.FormatDate(rec.InvoiceDate))
		h.put(row, "Invoice Value", moneyOrNil(rec.InvoiceValue))
		h.put(row, "Place Of Supply", pos)
		h.put(row, "Reverse Charge", "N")
		h.put(row, "Invoice Type", invoiceType)
		h.put(row, "E-Commerce GSTIN", rec.EcommerceGSTIN)
		h.put(row, "Rate", money(rec.Rate.Decimal))
		h.put(row, "Taxable Value", money(rec.TaxableValue.Decimal))
		h.put(row, "Cess Amount", money(rec.CessAmount.Abs()))
		rows = append(rows, row)
	}

	return rows, errs
}
