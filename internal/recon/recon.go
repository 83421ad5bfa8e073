// Package recon compares a GSTR-2B statement against the buyer's
// purchase register. Identity is supplier GSTIN plus invoice number;
// the compared quantity is the taxable value.
package recon

import (
	"time"

	"github.com/shopspring/decimal"

	"gst-filing-service/internal/models"
	apperrors "gst-filing-service/pkg/errors"
	"gst-filing-service/pkg/logger"
)

// Status classifies one reconciled invoice.
type Status string

const (
	StatusMatched    Status = "Matched"
	StatusNotMatched Status = "Not Matched"
	StatusNotInBooks Status = "Not in Books"
	StatusNotIn2B    Status = "Not Found in 2B"
)

// Row is one invoice-level input row from either side.
type Row struct {
	GSTIN        string
	InvoiceNo    string
	InvoiceDate  time.Time
	TaxableValue decimal.NullDecimal
	POSState     string
}

// ResultRow is one reconciled output row. Exactly one row is emitted per
// statement invoice, plus one per book invoice never seen in the
// statement.
type ResultRow struct {
	Sheet          string              `json:"sheet"`
	SupplierGSTIN  string              `json:"supplier_gstin"`
	InvoiceNo      string              `json:"invoice_no"`
	InvoiceDate    string              `json:"invoice_date,omitempty"`
	StatementValue decimal.NullDecimal `json:"gstr2b_taxable_value"`
	BookValue      decimal.NullDecimal `json:"book_taxable_value"`
	Status         Status              `json:"comment"`
}

// Summary counts reconciliation outcomes.
type Summary struct {
	TotalRows  int `json:"total_rows"`
	Matched    int `json:"matched"`
	NotMatched int `json:"not_matched"`
	NotInBooks int `json:"not_in_books"`
	NotIn2B    int `json:"not_in_2b"`
}

// Options tunes the value comparison. The default is exact equality of
// rounded decimals; a tolerance can be set to absorb paise-level noise
// but stays off unless asked for.
type Options struct {
	Tolerance decimal.Decimal
}

type identity struct {
	gstin     string
	invoiceNo string
}

type bookEntry struct {
	row     Row
	taxable decimal.Decimal
}

// Engine reconciles one statement scope against a purchase register.
type Engine struct {
	opts Options
	log  logger.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts: opts,
		log:  logger.GetGlobalLogger().WithComponent("recon"),
	}
}

// Reconcile runs the two-pass comparison. Pass one walks the statement:
// each invoice is matched, mismatched or flagged as missing from the
// books. Pass two emits every book invoice the statement never claimed.
// Book rows sharing an identity are summed before comparison.
func (e *Engine) Reconcile(statement, book []Row) ([]ResultRow, Summary, error) {
	if err := checkSingleScope(statement); err != nil {
		return nil, Summary{}, err
	}

	bookIndex := make(map[identity]*bookEntry, len(book))
	var bookOrder []identity
	for _, row := range book {
		key := identity{gstin: row.GSTIN, invoiceNo: row.InvoiceNo}
		entry, ok := bookIndex[key]
		if !ok {
			entry = &bookEntry{row: row}
			bookIndex[key] = entry
			bookOrder = append(bookOrder, key)
		}
		if row.TaxableValue.Valid {
			entry.taxable = entry.taxable.Add(row.TaxableValue.Decimal)
		}
	}

	e.log.WithFields(logger.Fields{
		"statement_rows": len(statement),
		"book_invoices":  len(bookIndex),
	}).Info("Starting reconciliation")

	results := make([]ResultRow, 0, len(statement)+len(bookIndex))
	claimed := make(map[identity]bool, len(statement))
	var summary Summary

	for _, row := range statement {
		key := identity{gstin: row.GSTIN, invoiceNo: row.InvoiceNo}

		result := ResultRow{
			Sheet:          "B2B",
			SupplierGSTIN:  row.GSTIN,
			InvoiceNo:      row.InvoiceNo,
			InvoiceDate:    models.FormatDate(row.InvoiceDate),
			StatementValue: roundNull(row.TaxableValue),
		}

		entry, found := bookIndex[key]
		if !found {
			result.Status = StatusNotInBooks
			summary.NotInBooks++
		} else {
			claimed[key] = true
			result.BookValue = decimal.NullDecimal{Decimal: models.RoundMoney(entry.taxable), Valid: true}
			if e.valuesMatch(result.StatementValue, result.BookValue) {
				result.Status = StatusMatched
				summary.Matched++
			} else {
				result.Status = StatusNotMatched
				summary.NotMatched++
			}
		}
		results = append(results, result)
	}

	for _, key := range bookOrder {
		if claimed[key] {
			continue
		}
		entry := bookIndex[key]
		results = append(results, ResultRow{
			Sheet:         "B2B",
			SupplierGSTIN: key.gstin,
			InvoiceNo:     key.invoiceNo,
			InvoiceDate:   models.FormatDate(entry.row.InvoiceDate),
			BookValue:     decimal.NullDecimal{Decimal: models.RoundMoney(entry.taxable), Valid: true},
			Status:        StatusNotIn2B,
		})
		summary.NotIn2B++
	}

	summary.TotalRows = len(results)
	e.log.WithFields(logger.Fields{
		"total":       summary.TotalRows,
		"matched":     summary.Matched,
		"not_matched": summary.NotMatched,
	}).Info("Reconciliation completed")

	return results, summary, nil
}

func (e *Engine) valuesMatch(a, b decimal.NullDecimal) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	if e.opts.Tolerance.IsPositive() {
		return a.Decimal.Sub(b.Decimal).Abs().LessThanOrEqual(e.opts.Tolerance)
	}
	return a.Decimal.Equal(b.Decimal)
}

func roundNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NullDecimal{Decimal: models.RoundMoney(d.Decimal), Valid: true}
}

// checkSingleScope rejects statements spanning more than one place of
// supply. Each run covers a single state; mixed files must be split.
func checkSingleScope(statement []Row) error {
	seen := ""
	for _, row := range statement {
		if row.POSState == "" {
			continue
		}
		if seen == "" {
			seen = row.POSState
			continue
		}
		if row.POSState != seen {
			return apperrors.ReconciliationError(apperrors.CodeScopeConflict, "statement scope check", nil).
				WithContext("states", []string{seen, row.POSState})
		}
	}
	return nil
}
