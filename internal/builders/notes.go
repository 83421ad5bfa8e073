package builders

import (
	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/models"
	"gst-filing-service/internal/states"
)

// CDNRBuilder fills the "cdnr" sheet: credit and debit notes against
// registered recipients.
type CDNRBuilder struct {
	registry *states.Registry
}

func NewCDNRBuilder(registry *states.Registry) *CDNRBuilder {
	return &CDNRBuilder{registry: registry}
}

func (b *CDNRBuilder) SheetName() string { return "cdnr" }

func (b *CDNRBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	h := newHeaderSet(headers)
	var rows []OutputRow

	for i := range records {
		rec := &records[i]
		if enrich.Classify(rec) != enrich.CategoryCDNR {
			continue
		}

		row := OutputRow{}
		h.put(row, "GSTIN/UIN of Recipient", rec.GSTIN)
		h.put(row, "Receiver Name", rec.ReceiverName)
		h.put(row, "Note Number", rec.NoteNumber)
		h.put(row, "Note Date", models.FormatDate(rec.NoteDate))
		h.put(row, "Note Type", rec.NoteType)
		h.put(row, "Place Of Supply", b.registry.FormatPlaceOfSupply(rec.POSCode))
		h.put(row, "Reverse Charge", "N")
		// Note supply type is not inferable from register data; left blank.
		if rec.NoteValue.Valid {
			h.put(row, "Note Value", money(rec.NoteValue.Decimal.Abs()))
		}
		h.put(row, "Rate", moneyOrNil(rec.Rate))
		if rec.TaxableValue.Valid {
			h.put(row, "Taxable Value", money(rec.TaxableValue.Decimal.Abs()))
		}
		h.put(row, "Cess Amount", money(rec.CessAmount.Abs()))
		rows = append(rows, row)
	}

	return rows, nil
}

// CDNURBuilder fills the "cdnur" sheet: notes without a valid recipient
// GSTIN. UR Type follows the same large-invoice threshold as B2CL.
type CDNURBuilder struct {
	registry *states.Registry
}

func NewCDNURBuilder(registry *states.Registry) *CDNURBuilder {
	return &CDNURBuilder{registry: registry}
}

func (b *CDNURBuilder) SheetName() string { return "cdnur" }

func (b *CDNURBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	h := newHeaderSet(headers)
	var rows []OutputRow

	for i := range records {
		rec := &records[i]
		if enrich.Classify(rec) != enrich.CategoryCDNUR {
			continue
		}

		urType := "B2CS"
		if rec.IsLargeB2CL {
			urType = "B2CL"
		}

		row := OutputRow{}
		h.put(row, "UR Type", urType)
		h.put(row, "Note Number", rec.NoteNumber)
		h.put(row, "Note Date", models.FormatDate(rec.NoteDate))
		h.put(row, "Note Type", rec.NoteType)
		h.put(row, "Place Of Supply", b.registry.FormatPlaceOfSupply(rec.POSCode))
		if rec.NoteValue.Valid {
			h.put(row, "Note Value", money(rec.NoteValue.Decimal.Abs()))
		}
		h.put(row, "Rate", moneyOrNil(rec.Rate))
		if rec.TaxableValue.Valid {
			h.put(row, "Taxable Value", money(rec.TaxableValue.Decimal.Abs()))
		}
		h.put(row, "Cess Amount", money(rec.CessAmount.Abs()))
		rows = append(rows, row)
	}

	return rows, nil
}
