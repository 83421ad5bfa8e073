package builders

import (
	"sort"

	"github.com/shopspring/decimal"

	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/models"
	"gst-filing-service/internal/states"
)

// B2CLBuilder fills the "b2cl" sheet: interstate consumer invoices above
// the period's large-invoice threshold, one row per invoice.
type B2CLBuilder struct {
	registry *states.Registry
}

func NewB2CLBuilder(registry *states.Registry) *B2CLBuilder {
	return &B2CLBuilder{registry: registry}
}

func (b *B2CLBuilder) SheetName() string { return "b2cl" }

func (b *B2CLBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	h := newHeaderSet(headers)
	var rows []OutputRow

	for i := range records {
		rec := &records[i]
		if enrich.Classify(rec) != enrich.CategoryB2CL {
			continue
		}

		row := OutputRow{}
		h.put(row, "Invoice Number", rec.InvoiceNumber)
		h.put(row, "Invoice date", models.FormatDate(rec.InvoiceDate))
		h.put(row, "Invoice Value", moneyOrNil(rec.InvoiceValue))
		h.put(row, "Place Of Supply", b.registry.FormatPlaceOfSupply(rec.POSCode))
		h.put(row, "Rate", moneyOrNil(rec.Rate))
		h.put(row, "Taxable Value", moneyOrNil(rec.TaxableValue))
		h.put(row, "Cess Amount", money(rec.CessAmount.Abs()))
		h.put(row, "E-Commerce GSTIN", rec.EcommerceGSTIN)
		rows = append(rows, row)
	}

	return rows, nil
}

// B2CSBuilder fills the "b2cs" sheet: the small consumer remainder,
// aggregated by type flag, place of supply, rate and operator GSTIN.
type B2CSBuilder struct {
	registry *states.Registry
}

func NewB2CSBuilder(registry *states.Registry) *B2CSBuilder {
	return &B2CSBuilder{registry: registry}
}

func (b *B2CSBuilder) SheetName() string { return "b2cs" }

type b2csKey struct {
	typeFlag       string
	posDisplay     string
	rate           string // canonical decimal string; "" when rate absent
	ecommerceGSTIN string
}

type b2csGroup struct {
	key     b2csKey
	rate    decimal.NullDecimal
	taxable decimal.Decimal
	cess    decimal.Decimal
}

func (b *B2CSBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	groups := make(map[b2csKey]*b2csGroup)
	var order []b2csKey

	for i := range records {
		rec := &records[i]
		if enrich.Classify(rec) != enrich.CategoryB2CS {
			continue
		}

		key := b2csKey{
			typeFlag:       rec.TypeFlag,
			posDisplay:     b.registry.FormatPlaceOfSupply(rec.POSCode),
			ecommerceGSTIN: rec.EcommerceGSTIN,
		}
		if rec.Rate.Valid {
			key.rate = rec.Rate.Decimal.String()
		}

		g, ok := groups[key]
		if !ok {
			g = &b2csGroup{key: key, rate: rec.Rate}
			groups[key] = g
			order = append(order, key)
		}
		if rec.TaxableValue.Valid {
			g.taxable = g.taxable.Add(rec.TaxableValue.Decimal)
		}
		g.cess = g.cess.Add(rec.CessAmount)
	}

	// First-seen order is already deterministic for a given input; the
	// sort keeps output stable across inputs that differ only in row order.
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.typeFlag != b.typeFlag {
			return a.typeFlag < b.typeFlag
		}
		if a.posDisplay != b.posDisplay {
			return a.posDisplay < b.posDisplay
		}
		if a.rate != b.rate {
			return a.rate < b.rate
		}
		return a.ecommerceGSTIN < b.ecommerceGSTIN
	})

	h := newHeaderSet(headers)
	rows := make([]OutputRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := OutputRow{}
		typeFlag := g.key.typeFlag
		if typeFlag == "" {
			typeFlag = "OE"
		}
		h.put(row, "Type", typeFlag)
		h.put(row, "Place Of Supply", g.key.posDisplay)
		h.put(row, "Rate", moneyOrNil(g.rate))
		h.put(row, "Taxable Value", money(g.taxable))
		h.put(row, "Cess Amount", money(g.cess))
		h.put(row, "E-Commerce GSTIN", g.key.ecommerceGSTIN)
		rows = append(rows, row)
	}

	return rows, nil
}
