// Package rules loads the filing profile: per-filer settings that the
// register itself cannot supply, such as the supplier's own GSTIN for the
// operator detail sheet and which sheets the filer actually reports.
package rules

import (
	"os"

	"gopkg.in/yaml.v3"

	"gst-filing-service/internal/models"
	apperrors "gst-filing-service/pkg/errors"
)

// Profile is the YAML filing profile.
type Profile struct {
	SupplierGSTIN string   `yaml:"supplier_gstin"`
	SupplierName  string   `yaml:"supplier_name"`
	DefaultUQC    string   `yaml:"default_uqc"`
	EnabledSheets []string `yaml:"enabled_sheets"`
}

// DefaultProfile returns the profile used when no file is given: all
// sheets except the operator detail sheet (which needs a supplier GSTIN).
func DefaultProfile() *Profile {
	return &Profile{
		DefaultUQC: "PCS-PIECES",
		EnabledSheets: []string{
			"b2b,sez,de", "b2cl", "b2cs", "cdnr", "cdnur", "exp",
			"hsn(b2b)", "hsn(b2c)", "eco", "docs",
		},
	}
}

// Load reads and validates a profile file. Fields left empty fall back
// to the defaults.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, path, "invalid profile YAML", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks the cross-field constraints.
func (p *Profile) Validate() error {
	if p.SupplierGSTIN != "" && !models.IsValidGSTIN(p.SupplierGSTIN) {
		return apperrors.ValidationError(apperrors.CodeInvalidGSTIN, "supplier_gstin", p.SupplierGSTIN, nil)
	}
	if p.SheetEnabled("ecob2b") && p.SupplierGSTIN == "" {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "supplier_gstin", nil, nil).
			WithSuggestion("the ecob2b sheet requires supplier_gstin in the filing profile")
	}
	if p.DefaultUQC == "" {
		p.DefaultUQC = "PCS-PIECES"
	}
	return nil
}

// SheetEnabled reports whether a sheet is part of this filer's return.
func (p *Profile) SheetEnabled(name string) bool {
	for _, s := range p.EnabledSheets {
		if s == name {
			return true
		}
	}
	return false
}
