package builders

import (
	"gst-filing-service/internal/enrich"
)

// DOCSBuilder fills the "docs" sheet: one summary row per document
// nature with the serial range, distinct count and distinct cancelled
// count. Ranges are min/max over document numbers as strings, matching
// how the portal compares serials.
type DOCSBuilder struct{}

func NewDOCSBuilder() *DOCSBuilder { return &DOCSBuilder{} }

func (b *DOCSBuilder) SheetName() string { return "docs" }

type docTally struct {
	nature    string
	min       string
	max       string
	numbers   map[string]bool
	cancelled map[string]bool
}

func newDocTally(nature string) *docTally {
	return &docTally{nature: nature, numbers: make(map[string]bool), cancelled: make(map[string]bool)}
}

func (t *docTally) add(number string, cancelled bool) {
	if number == "" {
		return
	}
	if len(t.numbers) == 0 || number < t.min {
		t.min = number
	}
	if len(t.numbers) == 0 || number > t.max {
		t.max = number
	}
	t.numbers[number] = true
	if cancelled {
		t.cancelled[number] = true
	}
}

func (b *DOCSBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	invoices := newDocTally("Invoices for outward supply")
	creditNotes := newDocTally("Credit Note")
	debitNotes := newDocTally("Debit Note")

	for i := range records {
		rec := &records[i]
		switch {
		case !rec.IsNote:
			invoices.add(rec.InvoiceNumber, rec.IsCancelled)
		case rec.NoteType == "C":
			creditNotes.add(rec.NoteNumber, rec.IsCancelled)
		case rec.NoteType == "D":
			debitNotes.add(rec.NoteNumber, rec.IsCancelled)
		}
	}

	h := newHeaderSet(headers)
	var rows []OutputRow
	for _, t := range []*docTally{invoices, creditNotes, debitNotes} {
		if len(t.numbers) == 0 {
			continue
		}
		row := OutputRow{}
		h.put(row, "Nature of Document", t.nature)
		h.put(row, "Sr. No. From", t.min)
		h.put(row, "Sr. No. To", t.max)
		h.put(row, "Total Number", len(t.numbers))
		h.put(row, "Cancelled", len(t.cancelled))
		rows = append(rows, row)
	}

	return rows, nil
}
