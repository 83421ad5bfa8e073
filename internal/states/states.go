// Package states resolves free-form Indian state references (abbreviations,
// full names, aliases, numeric GST codes, formatted "27-Maharashtra" values)
// to canonical GST jurisdiction codes.
package states

import (
	"fmt"
	"regexp"
	"strings"
)

// Jurisdiction is one GST state or union territory.
type Jurisdiction struct {
	Abbr    string   // stable internal key, e.g. "MH"
	Numeric string   // 2-digit GST code, e.g. "27"
	Name    string   // display name, e.g. "Maharashtra"
	Aliases []string // lowercase spellings seen in the wild
}

// jurisdictionData is the authoritative table. Andhra Pradesh carries the
// post-bifurcation numeric "37"; the legacy "28" is mapped separately in
// the registry so old registers still resolve.
var jurisdictionData = []Jurisdiction{
	{"JK", "01", "Jammu & Kashmir", []string{"jammu and kashmir", "jk"}},
	{"HP", "02", "Himachal Pradesh", []string{"himachal pradesh", "hp"}},
	{"PB", "03", "Punjab", []string{"pb"}},
	{"CH", "04", "Chandigarh", []string{"ch"}},
	{"UT", "05", "Uttarakhand", []string{"uttaranchal", "uk", "uttarakhand"}},
	{"HR", "06", "Haryana", []string{"hr"}},
	{"DL", "07", "Delhi", []string{"new delhi", "dl"}},
	{"RJ", "08", "Rajasthan", []string{"rajasthan", "rj"}},
	{"UP", "09", "Uttar Pradesh", []string{"uttar pradesh", "up"}},
	{"BR", "10", "Bihar", []string{"bihar", "br"}},
	{"SK", "11", "Sikkim", []string{"sikkim", "sk"}},
	{"AR", "12", "Arunachal Pradesh", []string{"arunachal pradesh", "ar"}},
	{"NL", "13", "Nagaland", []string{"nagaland", "nl"}},
	{"MN", "14", "Manipur", []string{"manipur", "mn"}},
	{"MZ", "15", "Mizoram", []string{"mizoram", "mz"}},
	{"TR", "16", "Tripura", []string{"tripura", "tr"}},
	{"ML", "17", "Meghalaya", []string{"meghalaya", "ml"}},
	{"AS", "18", "Assam", []string{"assam", "as"}},
	{"WB", "19", "West Bengal", []string{"west bengal", "wb"}},
	{"JH", "20", "Jharkhand", []string{"jharkhand", "jh"}},
	{"OD", "21", "Odisha", []string{"odisha", "orissa", "od"}},
	{"CG", "22", "Chhattisgarh", []string{"chhattisgarh", "cg"}},
	{"MP", "23", "Madhya Pradesh", []string{"madhya pradesh", "mp"}},
	{"GJ", "24", "Gujarat", []string{"gujarat", "gj"}},
	{"DD", "25", "Daman & Diu", []string{"daman and diu", "dd"}},
	{"DN", "26", "Dadra & Nagar Haveli and Daman & Diu", []string{"dadra and nagar haveli", "dnhdd", "dn"}},
	{"MH", "27", "Maharashtra", []string{"maharashtra", "mh"}},
	{"AP", "37", "Andhra Pradesh", []string{"andhra pradesh", "ap", "ad", "a.p", "andra", "andhra"}},
	{"KA", "29", "Karnataka", []string{"karnataka", "ka"}},
	{"GA", "30", "Goa", []string{"goa", "ga"}},
	{"LD", "31", "Lakshadweep", []string{"lakshadweep", "ld"}},
	{"KL", "32", "Kerala", []string{"kerala", "kl"}},
	{"TN", "33", "Tamil Nadu", []string{"tamil nadu", "tn"}},
	{"PY", "34", "Puducherry", []string{"puducherry", "pondicherry", "py"}},
	{"AN", "35", "Andaman & Nicobar Islands", []string{"andaman", "andaman & nicobar islands", "an"}},
	{"TS", "36", "Telangana", []string{"telangana", "ts"}},
	{"LA", "38", "Ladakh", []string{"ladakh", "la"}},
	{"OT", "97", "Other Territory", []string{"other territory", "ot"}},
}

var normalizeRegex = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeLabel lowercases a label and strips everything that is not a
// letter or digit, so "Tamil Nadu", "tamil-nadu" and "TAMILNADU" collide.
func normalizeLabel(value string) string {
	return normalizeRegex.ReplaceAllString(strings.ToLower(value), "")
}

// Registry resolves state references to jurisdiction codes. It is built
// once and read-only afterwards, safe for concurrent use.
type Registry struct {
	byAbbr    map[string]Jurisdiction
	byLabel   map[string]string // normalized name/alias -> abbr
	byNumeric map[string]string // 2-digit code -> abbr
}

// NewRegistry builds the registry from the authoritative table, including
// the legacy "28" mapping for pre-bifurcation Andhra Pradesh.
func NewRegistry() *Registry {
	r := &Registry{
		byAbbr:    make(map[string]Jurisdiction, len(jurisdictionData)),
		byLabel:   make(map[string]string, len(jurisdictionData)*3),
		byNumeric: make(map[string]string, len(jurisdictionData)+1),
	}
	for _, j := range jurisdictionData {
		r.byAbbr[j.Abbr] = j
		r.byLabel[normalizeLabel(j.Name)] = j.Abbr
		r.byLabel[normalizeLabel(j.Abbr)] = j.Abbr
		r.byNumeric[j.Numeric] = j.Abbr
		for _, alias := range j.Aliases {
			r.byLabel[normalizeLabel(alias)] = j.Abbr
		}
	}
	if _, exists := r.byNumeric["28"]; !exists {
		r.byNumeric["28"] = "AP"
	}
	return r
}

// Resolve maps any state reference to its jurisdiction abbreviation.
// Resolution order: exact abbreviation, normalized name/alias, 2-digit
// prefix before a hyphen, any 2 digits in the value. Returns false when
// nothing matches.
func (r *Registry) Resolve(value string) (string, bool) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		return "", false
	}

	upper := strings.ToUpper(candidate)
	if _, ok := r.byAbbr[upper]; ok {
		return upper, true
	}

	if abbr, ok := r.byLabel[normalizeLabel(candidate)]; ok {
		return abbr, true
	}

	if strings.Contains(candidate, "-") {
		prefix := strings.SplitN(candidate, "-", 2)[0]
		if abbr, ok := r.resolveDigits(prefix); ok {
			return abbr, true
		}
	}

	return r.resolveDigits(candidate)
}

func (r *Registry) resolveDigits(value string) (string, bool) {
	var digits strings.Builder
	for _, ch := range value {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() != 2 {
		return "", false
	}
	abbr, ok := r.byNumeric[digits.String()]
	return abbr, ok
}

// FormatPlaceOfSupply renders a jurisdiction as the template's
// "NN-Name" display form. Unknown codes pass through unchanged and the
// empty string stays empty.
func (r *Registry) FormatPlaceOfSupply(abbr string) string {
	if abbr == "" {
		return ""
	}
	j, ok := r.byAbbr[abbr]
	if !ok {
		return abbr
	}
	return fmt.Sprintf("%s-%s", j.Numeric, j.Name)
}

// NumericCode returns the 2-digit GST code for an abbreviation.
func (r *Registry) NumericCode(abbr string) (string, bool) {
	j, ok := r.byAbbr[abbr]
	if !ok {
		return "", false
	}
	return j.Numeric, true
}

// SameState reports whether two state references resolve to the same
// jurisdiction. Unresolvable values never compare equal.
func (r *Registry) SameState(a, b string) bool {
	ja, okA := r.Resolve(a)
	jb, okB := r.Resolve(b)
	if !okA || !okB {
		return false
	}
	return ja == jb
}
