package builders

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"gst-filing-service/internal/enrich"
)

// HSNBuilder fills the "hsn(b2b)" and "hsn(b2c)" summary sheets. Both
// aggregate line items by HSN code, description, unit and rate; they
// differ only in which side of the registered/unregistered split they
// summarize. Notes and exports are excluded from both.
type HSNBuilder struct {
	sheetName  string
	registered bool
	defaultUQC string
}

// NewHSNB2BBuilder summarizes supplies to registered recipients.
func NewHSNB2BBuilder(defaultUQC string) *HSNBuilder {
	return &HSNBuilder{sheetName: "hsn(b2b)", registered: true, defaultUQC: defaultUQC}
}

// NewHSNB2CBuilder summarizes consumer supplies (B2CL and B2CS together).
func NewHSNB2CBuilder(defaultUQC string) *HSNBuilder {
	return &HSNBuilder{sheetName: "hsn(b2c)", registered: false, defaultUQC: defaultUQC}
}

func (b *HSNBuilder) SheetName() string { return b.sheetName }

type hsnKey struct {
	hsn         string
	description string
	uqc         string
	rate        string
}

type hsnGroup struct {
	key      hsnKey
	rate     decimal.Decimal
	quantity decimal.Decimal
	total    decimal.Decimal
	taxable  decimal.Decimal
	igst     decimal.Decimal
	cgst     decimal.Decimal
	sgst     decimal.Decimal
	cess     decimal.Decimal
}

func (b *HSNBuilder) include(rec *enrich.Record) bool {
	switch enrich.Classify(rec) {
	case enrich.CategoryB2B:
		return b.registered
	case enrich.CategoryB2CL, enrich.CategoryB2CS:
		return !b.registered
	default:
		return false
	}
}

func (b *HSNBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	groups := make(map[hsnKey]*hsnGroup)

	for i := range records {
		rec := &records[i]
		if !b.include(rec) {
			continue
		}

		rate := decimal.Zero
		if rec.Rate.Valid {
			rate = rec.Rate.Decimal
		}
		key := hsnKey{hsn: rec.HSN, description: rec.Description, uqc: rec.UQC, rate: rate.String()}

		g, ok := groups[key]
		if !ok {
			g = &hsnGroup{key: key, rate: rate}
			groups[key] = g
		}
		g.quantity = g.quantity.Add(rec.Quantity)
		g.total = g.total.Add(rec.TotalValue)
		if rec.TaxableValue.Valid {
			g.taxable = g.taxable.Add(rec.TaxableValue.Decimal)
		}
		g.igst = g.igst.Add(rec.IGSTAmount)
		g.cgst = g.cgst.Add(rec.CGSTAmount)
		g.sgst = g.sgst.Add(rec.SGSTAmount)
		g.cess = g.cess.Add(rec.CessAmount)
	}

	order := make([]hsnKey, 0, len(groups))
	for key := range groups {
		order = append(order, key)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.hsn != b.hsn {
			return a.hsn < b.hsn
		}
		if a.description != b.description {
			return a.description < b.description
		}
		if a.uqc != b.uqc {
			return a.uqc < b.uqc
		}
		return a.rate < b.rate
	})

	h := newHeaderSet(headers)
	rows := make([]OutputRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := OutputRow{}
		h.put(row, "HSN", hsnCell(g.key.hsn))
		h.put(row, "Description", g.key.description)
		h.put(row, "UQC", b.defaultUQC)
		h.put(row, "Total Quantity", money(g.quantity))
		h.put(row, "Total Value", money(g.total))
		h.put(row, "Rate", money(g.rate))
		h.put(row, "Taxable Value", money(g.taxable))
		h.put(row, "Integrated Tax Amount", money(g.igst))
		h.put(row, "Central Tax Amount", money(g.cgst))
		h.put(row, "State/UT Tax Amount", money(g.sgst))
		h.put(row, "Cess Amount", money(g.cess))
		rows = append(rows, row)
	}

	return rows, nil
}

// hsnCell renders the HSN code as an integer when possible; the portal
// rejects codes with decimal artifacts like "8471.0".
func hsnCell(hsn string) interface{} {
	if hsn == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(hsn, 64); err == nil {
		return int64(f)
	}
	return hsn
}
