package models

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func TestSafeString(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"plain string", "  Acme Traders  ", "Acme Traders"},
		{"nan artifact", "NaN", ""},
		{"none artifact", "None", ""},
		{"integral float", 42.0, "42"},
		{"fractional float", 12.5, "12.5"},
		{"int", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeString(tt.input); got != tt.expected {
				t.Errorf("SafeString(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
		ok       bool
	}{
		{"nil", nil, "0", false},
		{"empty string", "  ", "0", false},
		{"plain number", "1234.56", "1234.56", true},
		{"thousand separators", "1,00,000.50", "100000.5", true},
		{"rupee prefix", "₹250.00", "250", true},
		{"float", 99.9, "99.9", true},
		{"int", 5, "5", true},
		{"garbage", "abc", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToDecimal(tt.input)
			if ok != tt.ok {
				t.Fatalf("ToDecimal(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("ToDecimal(%v) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRoundMoneyIdempotent(t *testing.T) {
	values := []string{"100.005", "99.994", "-12.345", "0", "250000.01"}
	for _, v := range values {
		d := decimal.RequireFromString(v)
		once := RoundMoney(d)
		twice := RoundMoney(once)
		if !once.Equal(twice) {
			t.Errorf("RoundMoney not idempotent for %s: %s vs %s", v, once, twice)
		}
		if once.Exponent() < -2 {
			t.Errorf("RoundMoney(%s) = %s, more than 2 decimal places", v, once)
		}
	}
}

func TestParseDate(t *testing.T) {
	expected := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input interface{}
		ok    bool
	}{
		{"dd-mm-yyyy", "01-08-2024", true},
		{"dd/mm/yyyy", "01/08/2024", true},
		{"iso", "2024-08-01", true},
		{"short month", "01-Aug-2024", true},
		{"long month", "01-August-2024", true},
		{"dotted", "01.08.2024", true},
		{"excel serial", 45505.0, true},
		{"small serial rejected", 123.0, false},
		{"empty", "", false},
		{"garbage", "not a date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(expected) {
				t.Errorf("ParseDate(%v) = %s, want %s", tt.input, got, expected)
			}
		})
	}
}

func TestCleanGSTINAndValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		cleaned string
		valid   bool
	}{
		{"valid", "27AAAAA0000A1Z5", "27AAAAA0000A1Z5", true},
		{"lowercase", "27aaaaa0000a1z5", "27AAAAA0000A1Z5", true},
		{"padded", " 27AAAAA0000A1Z5 ", "27AAAAA0000A1Z5", true},
		{"too short", "27AAAAA0000A1Z", "", false},
		{"too long", "27AAAAA0000A1Z55", "", false},
		{"missing Z", "27AAAAA0000A1X5", "27AAAAA0000A1X5", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := CleanGSTIN(tt.input)
			if cleaned != tt.cleaned {
				t.Errorf("CleanGSTIN(%v) = %q, want %q", tt.input, cleaned, tt.cleaned)
			}
			if got := IsValidGSTIN(cleaned); got != tt.valid {
				t.Errorf("IsValidGSTIN(%q) = %v, want %v", cleaned, got, tt.valid)
			}
		})
	}
}

func TestValidateDocNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		ok     bool
	}{
		{"simple", "INV-001", true},
		{"with slash", "2024/08/001", true},
		{"max length", "ABCDEFGH12345678", true},
		{"too long", "ABCDEFGH123456789", false},
		{"empty", "", false},
		{"bad characters", "INV 001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := ValidateDocNumber(tt.number)
			if ok != tt.ok {
				t.Errorf("ValidateDocNumber(%q) = %v, want %v", tt.number, ok, tt.ok)
			}
		})
	}
}

func TestIsValidRate(t *testing.T) {
	valid := []string{"0", "0.1", "0.25", "1", "1.5", "3", "5", "12", "18", "28"}
	for _, v := range valid {
		if !IsValidRate(decimal.RequireFromString(v)) {
			t.Errorf("rate %s should be valid", v)
		}
	}
	invalid := []string{"2", "10", "17.5", "-5", "100"}
	for _, v := range invalid {
		if IsValidRate(decimal.RequireFromString(v)) {
			t.Errorf("rate %s should be invalid", v)
		}
	}
}

func TestValidatePortCode(t *testing.T) {
	if ok, _ := ValidatePortCode(""); !ok {
		t.Error("empty port code should be acceptable")
	}
	if ok, _ := ValidatePortCode("INMAA1"); !ok {
		t.Error("INMAA1 should be a valid port code")
	}
	if ok, _ := ValidatePortCode("INMAA"); ok {
		t.Error("5-character port code should be rejected")
	}
	if ok, _ := ValidatePortCode("IN-MA1"); ok {
		t.Error("port code with punctuation should be rejected")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate = %q, want unchanged", got)
	}
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate = %q, want abc", got)
	}

	// Receiver names are frequently non-ASCII; cutting must never split
	// a rune into invalid bytes.
	name := "श्री ट्रेडर्स"
	got := Truncate(name, 4)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate produced invalid UTF-8: %q", got)
	}
	if got != "श्री" {
		t.Errorf("Truncate = %q, want first 4 runes", got)
	}
	if got := Truncate(name, 50); got != name {
		t.Errorf("Truncate = %q, want unchanged when under the rune limit", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "01-Aug-2024" {
		t.Errorf("FormatDate = %q, want 01-Aug-2024", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}
}
