package builders

import (
	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/models"
)

// EXPBuilder fills the "exp" sheet: export invoices. Shipping bill
// details are rarely present in sales registers, so the port code is
// emitted only when it survives validation and the bill fields stay
// blank for manual completion on the portal.
type EXPBuilder struct{}

func NewEXPBuilder() *EXPBuilder { return &EXPBuilder{} }

func (b *EXPBuilder) SheetName() string { return "exp" }

func (b *EXPBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	h := newHeaderSet(headers)
	var rows []OutputRow
	var errs []RowError

	for i := range records {
		rec := &records[i]
		if enrich.Classify(rec) != enrich.CategoryExport {
			continue
		}

		row := OutputRow{}
		h.put(row, "Export Type", rec.ExportType)
		h.put(row, "Invoice Number", rec.InvoiceNumber)
		h.put(row, "Invoice date", models.FormatDate(rec.InvoiceDate))
		h.put(row, "Invoice Value", moneyOrNil(rec.InvoiceValue))
		if rec.PortCode != "" {
			if ok, msg := models.ValidatePortCode(rec.PortCode); ok {
				h.put(row, "Port Code", rec.PortCode)
			} else {
				errs = append(errs, RowError{SourceRow: rec.SourceRow, Sheet: b.SheetName(), Message: msg})
			}
		}
		h.put(row, "Rate", moneyOrNil(rec.Rate))
		h.put(row, "Taxable Value", moneyOrNil(rec.TaxableValue))
		rows = append(rows, row)
	}

	return rows, errs
}
