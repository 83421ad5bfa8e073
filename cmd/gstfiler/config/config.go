// Package config assembles runtime configuration for the CLI commands
// from flags, environment and profile files.
package config

import (
	"github.com/shopspring/decimal"

	"gst-filing-service/internal/recon"
	"gst-filing-service/internal/rules"
)

// LoadProfile resolves the filing profile: the given file when set,
// otherwise the built-in defaults.
func LoadProfile(path string) (*rules.Profile, error) {
	if path == "" {
		return rules.DefaultProfile(), nil
	}
	return rules.Load(path)
}

// CreateReconOptions builds reconciliation options from the CLI
// tolerance flag. Zero keeps the default exact-match behavior.
func CreateReconOptions(tolerance float64) recon.Options {
	opts := recon.Options{}
	if tolerance > 0 {
		opts.Tolerance = decimal.NewFromFloat(tolerance)
	}
	return opts
}
