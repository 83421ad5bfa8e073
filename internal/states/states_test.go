package states

import "testing"

func TestResolve(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"abbreviation", "MH", "MH", true},
		{"lowercase abbreviation", "mh", "MH", true},
		{"full name", "Maharashtra", "MH", true},
		{"name with noise", "TAMIL-NADU", "TN", true},
		{"alias", "pondicherry", "PY", true},
		{"alias uttaranchal", "Uttaranchal", "UT", true},
		{"numeric", "27", "MH", true},
		{"formatted", "27-Maharashtra", "MH", true},
		{"formatted unknown name", "27-Bombay", "MH", true},
		{"digits embedded", "state 29", "KA", true},
		{"legacy andhra numeric", "28", "AP", true},
		{"current andhra numeric", "37", "AP", true},
		{"andhra spelling", "Andra", "AP", true},
		{"other territory", "OT", "OT", true},
		{"empty", "", "", false},
		{"unknown", "Atlantis", "", false},
		{"one digit", "7", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatPlaceOfSupply(t *testing.T) {
	r := NewRegistry()

	if got := r.FormatPlaceOfSupply("MH"); got != "27-Maharashtra" {
		t.Errorf("FormatPlaceOfSupply(MH) = %q", got)
	}
	if got := r.FormatPlaceOfSupply("OT"); got != "97-Other Territory" {
		t.Errorf("FormatPlaceOfSupply(OT) = %q", got)
	}
	if got := r.FormatPlaceOfSupply(""); got != "" {
		t.Errorf("FormatPlaceOfSupply empty = %q", got)
	}
	// Unknown codes pass through unchanged.
	if got := r.FormatPlaceOfSupply("XX"); got != "XX" {
		t.Errorf("FormatPlaceOfSupply(XX) = %q", got)
	}
}

// Resolving a formatted display value must return the same jurisdiction,
// so normalization can run repeatedly without drift.
func TestResolveFormatRoundTrip(t *testing.T) {
	r := NewRegistry()

	for _, j := range jurisdictionData {
		display := r.FormatPlaceOfSupply(j.Abbr)
		resolved, ok := r.Resolve(display)
		if !ok {
			t.Errorf("Resolve(%q) failed", display)
			continue
		}
		if resolved != j.Abbr {
			t.Errorf("Resolve(%q) = %q, want %q", display, resolved, j.Abbr)
		}
	}
}

func TestSameState(t *testing.T) {
	r := NewRegistry()

	if !r.SameState("MH", "Maharashtra") {
		t.Error("MH and Maharashtra should be the same state")
	}
	if !r.SameState("27", "mh") {
		t.Error("27 and mh should be the same state")
	}
	if r.SameState("MH", "KA") {
		t.Error("MH and KA are different states")
	}
	if r.SameState("", "MH") {
		t.Error("unresolvable input should never match")
	}
}
