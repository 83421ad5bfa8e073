// Package models holds the shared data model of the filing engine: the
// generic table read from seller spreadsheets, GSTIN validation, money and
// date coercion helpers, and the field-level validators shared by the
// GSTR-1 sheet builders.
package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Table is one tabular sheet read from an input file: ordered column
// headers plus rows keyed by the original header strings.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row maps an original column header to its raw cell value. Cell values
// are strings, numbers, time.Time or nil depending on the reader.
type Row map[string]interface{}

// IsEmpty returns true if the table has no data rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// GSTINRegex matches a recipient/supplier GSTIN: 2 digits, 5 letters,
// 4 digits, 1 letter, 1 alphanumeric entity code, literal 'Z', checksum.
var GSTINRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// OperatorGSTINRegex matches an e-commerce operator registration, which
// does not carry the fixed 'Z' at position 14.
var OperatorGSTINRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z][0-9A-Z][0-9A-Z]$`)

var (
	docNumberRegex = regexp.MustCompile(`^[A-Za-z0-9/-]+$`)
	portCodeRegex  = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)
)

// OutputDateFormat is the short-month date format used across the GSTR-1
// template sheets (e.g. "01-Aug-2024").
const OutputDateFormat = "02-Jan-2006"

// inputDateFormats are tried in order when coercing cell values to dates.
var inputDateFormats = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"02-Jan-2006",
	"02-January-2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// excelSerialCutoff guards against treating small integers as dates.
// Serials below this are bogus for any modern filing period.
const excelSerialCutoff = 20000

// excelEpoch is the base date of the 1900 serial system, adjusted for the
// Lotus leap-year bug.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SafeString coerces any cell value to a trimmed string. Nil, NaN and the
// textual artifacts "nan"/"none" all become the empty string.
func SafeString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		switch strings.ToLower(s) {
		case "nan", "none":
			return ""
		}
		return s
	case float64:
		if math.IsNaN(v) {
			return ""
		}
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return fmt.Sprintf("%d", int64(v))
		}
		return strings.TrimSpace(decimal.NewFromFloat(v).String())
	case float32:
		return SafeString(float64(v))
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(OutputDateFormat)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// ToDecimal coerces a cell value to a decimal amount. Returns false for
// nil, NaN, empty strings and unparseable text. Thousand separators and
// currency symbols are stripped before parsing.
func ToDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		return ToDecimal(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		s := strings.TrimSpace(v)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimPrefix(s, "₹")
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// ToNullDecimal is ToDecimal with the lib's nullable wrapper, used by the
// enricher's fallback chains where "absent" and "zero" must stay distinct.
func ToNullDecimal(value interface{}) decimal.NullDecimal {
	d, ok := ToDecimal(value)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// RoundMoney rounds an amount to 2 decimal places. Applied exactly once,
// at the point a value is written to an output row.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseDate coerces a cell value to a calendar date. Handles native
// time.Time cells, Excel serial numbers above the serial cutoff, and the
// common textual day-month-year variants. Returns false when the value
// does not look like a date.
func ParseDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.Truncate(24 * time.Hour), true
	case float64:
		return excelSerialToDate(v)
	case float32:
		return excelSerialToDate(float64(v))
	case int:
		return excelSerialToDate(float64(v))
	case int64:
		return excelSerialToDate(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if serial, err := decimal.NewFromString(s); err == nil && serial.IsInteger() && len(s) <= 5 {
			return excelSerialToDate(serial.InexactFloat64())
		}
		for _, format := range inputDateFormats {
			if t, err := time.Parse(format, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func excelSerialToDate(serial float64) (time.Time, bool) {
	if serial <= excelSerialCutoff {
		return time.Time{}, false
	}
	return excelEpoch.AddDate(0, 0, int(serial)), true
}

// FormatDate renders a date in the template's short-month format, or ""
// for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(OutputDateFormat)
}

// CleanGSTIN uppercases and trims a candidate GSTIN. Anything that is not
// exactly 15 characters is treated as absent, not merely invalid.
func CleanGSTIN(value interface{}) string {
	s := strings.ToUpper(SafeString(value))
	if len(s) != 15 {
		return ""
	}
	return s
}

// IsValidGSTIN reports whether a cleaned GSTIN matches the positional format.
func IsValidGSTIN(gstin string) bool {
	if gstin == "" {
		return false
	}
	return GSTINRegex.MatchString(gstin)
}

// Truncate limits a string to maxLen characters. It counts runes, not
// bytes, so multibyte party names are never cut mid-character.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// validGSTRates is the closed set of GST rates accepted by the template.
var validGSTRates = map[string]bool{
	"0": true, "0.1": true, "0.25": true, "1": true, "1.5": true,
	"3": true, "5": true, "12": true, "18": true, "28": true,
}

// IsValidRate reports whether a rate belongs to the fixed GST rate set.
func IsValidRate(rate decimal.Decimal) bool {
	return validGSTRates[rate.String()]
}

// ValidateDocNumber checks the template's document number constraints:
// at most 16 characters, alphanumeric plus slash and hyphen.
func ValidateDocNumber(number string) (bool, string) {
	if number == "" {
		return false, "document number required"
	}
	if len(number) > 16 {
		return false, "document number > 16 characters"
	}
	if !docNumberRegex.MatchString(number) {
		return false, "invalid characters in document number"
	}
	return true, ""
}

// ValidatePortCode checks the 6-character alphanumeric port code shape.
// An empty port code is acceptable (the field is optional).
func ValidatePortCode(code string) (bool, string) {
	if code == "" {
		return true, ""
	}
	if !portCodeRegex.MatchString(code) {
		return false, "port code must be exactly 6 alphanumeric characters"
	}
	return true, ""
}

// ValidateOutputDate checks that a formatted date string parses against
// the template's short-month format.
func ValidateOutputDate(value string) (bool, string) {
	if value == "" {
		return false, "date required"
	}
	if len(value) < 11 {
		if _, err := time.Parse(OutputDateFormat, value); err != nil {
			return false, "invalid date"
		}
		return true, ""
	}
	if _, err := time.Parse(OutputDateFormat, value[:11]); err != nil {
		return false, "invalid date"
	}
	return true, ""
}
