package enrich

// Category is the single routing decision for a record. Every record
// lands in exactly one category; the sheet builders consume the
// classification instead of re-deriving their own row masks.
type Category int

const (
	// CategoryNone marks rows with no routable content (no document
	// number and no resolvable amounts). They are skipped entirely.
	CategoryNone Category = iota
	CategoryB2B
	CategoryB2CL
	CategoryB2CS
	CategoryExport
	CategoryCDNR
	CategoryCDNUR
)

// String returns the category name used in logs.
func (c Category) String() string {
	switch c {
	case CategoryB2B:
		return "B2B"
	case CategoryB2CL:
		return "B2CL"
	case CategoryB2CS:
		return "B2CS"
	case CategoryExport:
		return "EXP"
	case CategoryCDNR:
		return "CDNR"
	case CategoryCDNUR:
		return "CDNUR"
	default:
		return "NONE"
	}
}

// Classify routes a record. Notes split on GSTIN validity, exports take
// precedence over the consumer split, and the B2CL/B2CS boundary follows
// the date-aware interstate threshold already computed on the record.
func Classify(rec *Record) Category {
	if rec.InvoiceNumber == "" && rec.NoteNumber == "" &&
		!rec.InvoiceValue.Valid && !rec.TaxableValue.Valid {
		return CategoryNone
	}

	if rec.IsNote {
		if rec.HasValidGSTIN {
			return CategoryCDNR
		}
		return CategoryCDNUR
	}
	if rec.IsExport {
		return CategoryExport
	}
	if rec.HasValidGSTIN {
		return CategoryB2B
	}
	if rec.IsLargeB2CL {
		return CategoryB2CL
	}
	return CategoryB2CS
}
