package builders

import (
	"sort"

	"github.com/shopspring/decimal"

	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/models"
	"gst-filing-service/internal/states"
)

// defaultNatureOfSupply is assumed when the register gives no explicit
// section 9(5) flag; marketplace sales are section 52 TCS by default.
const defaultNatureOfSupply = "Liable to collect tax u/s 52(TCS)"

var validNatures = map[string]bool{
	"Liable to collect tax u/s 52(TCS)": true,
	"Liable to pay tax u/s 9(5)":        true,
}

// ECOBuilder fills the "eco" sheet: supplies made through e-commerce
// operators, aggregated per nature of supply, operator GSTIN and name.
type ECOBuilder struct{}

func NewECOBuilder() *ECOBuilder { return &ECOBuilder{} }

func (b *ECOBuilder) SheetName() string { return "eco" }

// includeECO selects non-note, non-export rows sold through an operator.
// The split cuts across the B2B/B2C categories on purpose; the eco sheets
// report the operator dimension, not the recipient one.
func includeECO(rec *enrich.Record) bool {
	return rec.EcommerceGSTIN != "" && !rec.IsNote && !rec.IsExport
}

type ecoKey struct {
	nature   string
	operator string
	name     string
}

type ecoGroup struct {
	key          ecoKey
	invoiceValue decimal.Decimal
	igst         decimal.Decimal
	cgst         decimal.Decimal
	sgst         decimal.Decimal
	cess         decimal.Decimal
}

func (b *ECOBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	groups := make(map[ecoKey]*ecoGroup)

	for i := range records {
		rec := &records[i]
		if !includeECO(rec) {
			continue
		}

		key := ecoKey{nature: defaultNatureOfSupply, operator: rec.EcommerceGSTIN, name: rec.ReceiverName}
		g, ok := groups[key]
		if !ok {
			g = &ecoGroup{key: key}
			groups[key] = g
		}
		if rec.InvoiceValue.Valid {
			g.invoiceValue = g.invoiceValue.Add(rec.InvoiceValue.Decimal)
		}
		g.igst = g.igst.Add(rec.IGSTAmount)
		g.cgst = g.cgst.Add(rec.CGSTAmount)
		g.sgst = g.sgst.Add(rec.SGSTAmount)
		g.cess = g.cess.Add(rec.CessAmount)
	}

	order := make([]ecoKey, 0, len(groups))
	for key := range groups {
		order = append(order, key)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.operator != b.operator {
			return a.operator < b.operator
		}
		return a.name < b.name
	})

	h := newHeaderSet(headers)
	var rows []OutputRow
	var errs []RowError

	for _, key := range order {
		g := groups[key]

		if !validNatures[g.key.nature] {
			errs = append(errs, RowError{Sheet: b.SheetName(), Message: "invalid nature of supply"})
			continue
		}
		if !models.OperatorGSTINRegex.MatchString(g.key.operator) {
			errs = append(errs, RowError{Sheet: b.SheetName(), Message: "invalid e-commerce operator GSTIN"})
			continue
		}
		if g.invoiceValue.IsNegative() || g.igst.IsNegative() || g.cgst.IsNegative() ||
			g.sgst.IsNegative() || g.cess.IsNegative() {
			errs = append(errs, RowError{Sheet: b.SheetName(), Message: "negative aggregate amount"})
			continue
		}

		row := OutputRow{}
		h.put(row, "Nature of Supply", g.key.nature)
		h.put(row, "GSTIN of E-Commerce Operator", g.key.operator)
		h.put(row, "E-Commerce Operator Name", g.key.name)
		h.put(row, "Net value of supplies", money(g.invoiceValue))
		h.put(row, "Integrated tax", money(g.igst))
		h.put(row, "Central tax", money(g.cgst))
		h.put(row, "State/UT tax", money(g.sgst))
		h.put(row, "Cess", money(g.cess))
		rows = append(rows, row)
	}

	return rows, errs
}

// ECOB2BBuilder fills the "ecob2b" sheet: one detail row per invoice
// routed through an operator, reported from the filer's side. Supplier
// identity comes from the filing profile.
type ECOB2BBuilder struct {
	registry      *states.Registry
	supplierGSTIN string
	supplierName  string
}

func NewECOB2BBuilder(registry *states.Registry, supplierGSTIN, supplierName string) *ECOB2BBuilder {
	return &ECOB2BBuilder{registry: registry, supplierGSTIN: supplierGSTIN, supplierName: supplierName}
}

func (b *ECOB2BBuilder) SheetName() string { return "ecob2b" }

func (b *ECOB2BBuilder) Build(records []enrich.Record, headers []string) ([]OutputRow, []RowError) {
	h := newHeaderSet(headers)
	var rows []OutputRow
	var errs []RowError

	fail := func(rec *enrich.Record, msg string) {
		errs = append(errs, RowError{SourceRow: rec.SourceRow, Sheet: b.SheetName(), Message: msg})
	}

	for i := range records {
		rec := &records[i]
		if !includeECO(rec) {
			continue
		}

		if len(rec.EcommerceGSTIN) != 15 {
			fail(rec, "invalid operator GSTIN")
			continue
		}
		if rec.InvoiceNumber == "" || len(rec.InvoiceNumber) > 16 {
			fail(rec, "invalid document number")
			continue
		}
		if rec.InvoiceDate.IsZero() {
			fail(rec, "document date required")
			continue
		}
		if ok, msg := validateNonNegative(rec.InvoiceValue, "invoice value"); !ok {
			fail(rec, msg)
			continue
		}
		if ok, msg := validateNonNegative(rec.TaxableValue, "taxable value"); !ok {
			fail(rec, msg)
			continue
		}

		row := OutputRow{}
		h.put(row, "Supplier GSTIN/UIN", b.supplierGSTIN)
		h.put(row, "Supplier Name", b.supplierName)
		h.put(row, "Recipient GSTIN/UIN", rec.EcommerceGSTIN)
		h.put(row, "Recipient Name", rec.ReceiverName)
		h.put(row, "Document Number", rec.InvoiceNumber)
		h.put(row, "Document Date", models.FormatDate(rec.InvoiceDate))
		h.put(row, "Value of supplies made", money(rec.InvoiceValue.Decimal))
		h.put(row, "Place Of Supply", b.registry.FormatPlaceOfSupply(rec.POSCode))
		h.put(row, "Document type", "Regular")
		h.put(row, "Rate", moneyOrNil(rec.Rate))
		h.put(row, "Taxable Value", money(rec.TaxableValue.Decimal))
		h.put(row, "Cess Amount", money(rec.CessAmount))
		rows = append(rows, row)
	}

	return rows, errs
}
