package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gst-filing-service/cmd/gstfiler/config"
	"gst-filing-service/internal/parsers"
	"gst-filing-service/internal/recon"
	"gst-filing-service/internal/states"
)

// Flags for the reconcile command
var (
	reconOutputFormat string
	reconOutputFile   string
	valueTolerance    float64
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <purchase-register.xlsx> <gstr2b.xlsx>",
	Short: "Reconcile a GSTR-2B statement against a purchase register",
	Long: `Reconcile compares the B2B sheet of a GSTR-2B statement with the
buyer's purchase register. Invoices are matched by supplier GSTIN and
invoice number; taxable values are compared exactly after rounding.

Each statement invoice produces one output row; purchase invoices never
claimed by the statement are appended as "Not Found in 2B". The summary
and row-level results are printed as JSON by default.

Examples:
  # JSON results on stdout
  gstfiler reconcile purchases.xlsx gstr2b.xlsx

  # Human-readable summary
  gstfiler reconcile purchases.xlsx gstr2b.xlsx --output-format console

  # Absorb paise-level rounding noise
  gstfiler reconcile purchases.xlsx gstr2b.xlsx --value-tolerance 0.01 -o result.json`,

	Args:    cobra.ExactArgs(2),
	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&reconOutputFormat, "output-format", "f", "json", "output format: json, console")
	reconcileCmd.Flags().StringVarP(&reconOutputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().Float64Var(&valueTolerance, "value-tolerance", 0, "absolute taxable value tolerance (default exact match)")

	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("value-tolerance", reconcileCmd.Flags().Lookup("value-tolerance"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	reconOutputFormat = viper.GetString("output-format")
	reconOutputFile = viper.GetString("output-file")
	valueTolerance = viper.GetFloat64("value-tolerance")

	if err := validateFileExists(args[0], "purchase register"); err != nil {
		return err
	}
	if err := validateFileExists(args[1], "GSTR-2B statement"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[reconOutputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json", reconOutputFormat)
	}
	if valueTolerance < 0 {
		return fmt.Errorf("value tolerance cannot be negative")
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	purchasePath, statementPath := args[0], args[1]
	registry := states.NewRegistry()

	bookRows, err := parsers.ReadPurchaseRegister(purchasePath, registry)
	if err != nil {
		return err
	}
	statementRows, err := parsers.ReadGSTR2B(statementPath, registry)
	if err != nil {
		return err
	}

	engine := recon.NewEngine(config.CreateReconOptions(valueTolerance))
	results, summary, err := engine.Reconcile(statementRows, bookRows)
	if err != nil {
		return err
	}

	output := os.Stdout
	if reconOutputFile != "" {
		output, err = os.Create(reconOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch reconOutputFormat {
	case "json":
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(struct {
			Summary recon.Summary     `json:"summary"`
			Rows    []recon.ResultRow `json:"rows"`
		}{Summary: summary, Rows: results}); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
	default:
		fmt.Fprintf(output, "Reconciliation summary\n")
		fmt.Fprintf(output, "  Total rows:      %d\n", summary.TotalRows)
		fmt.Fprintf(output, "  Matched:         %d\n", summary.Matched)
		fmt.Fprintf(output, "  Not matched:     %d\n", summary.NotMatched)
		fmt.Fprintf(output, "  Not in books:    %d\n", summary.NotInBooks)
		fmt.Fprintf(output, "  Not found in 2B: %d\n", summary.NotIn2B)
	}

	return nil
}
