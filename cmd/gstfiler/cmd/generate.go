package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gst-filing-service/cmd/gstfiler/config"
	"gst-filing-service/internal/jobs"
	"gst-filing-service/internal/pipeline"
	"gst-filing-service/internal/states"
)

// Flags for the generate command
var (
	inputFile    string
	templateFile string
	outputFile   string
	profileFile  string
	showProgress bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a GSTR-1 workbook from a sales register",
	Long: `Generate reads a seller's sales register (XLSX or CSV), infers its
column layout, classifies every row into the GSTR-1 categories and
writes a populated copy of the official template.

Row-level validation problems are reported but never abort the run; an
input that yields no valid rows still produces an (empty) workbook.

Examples:
  # Basic conversion
  gstfiler generate -i sales.xlsx -t gstr1-template.xlsx -o gstr1-august.xlsx

  # CSV register with a filing profile
  gstfiler generate -i sales.csv -t template.xlsx -o out.xlsx --profile filer.yaml

  # With progress indicators
  gstfiler generate -i sales.xlsx -t template.xlsx -o out.xlsx --progress`,

	PreRunE: validateGenerateFlags,
	RunE:    runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to the sales register file (required)")
	generateCmd.Flags().StringVarP(&templateFile, "template", "t", "", "path to the official GSTR-1 template workbook (required)")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output workbook path (required)")
	generateCmd.Flags().StringVar(&profileFile, "profile", "", "filing profile YAML (optional)")
	generateCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	generateCmd.MarkFlagRequired("input")
	generateCmd.MarkFlagRequired("template")
	generateCmd.MarkFlagRequired("output")

	viper.BindPFlag("input", generateCmd.Flags().Lookup("input"))
	viper.BindPFlag("template", generateCmd.Flags().Lookup("template"))
	viper.BindPFlag("output", generateCmd.Flags().Lookup("output"))
	viper.BindPFlag("profile", generateCmd.Flags().Lookup("profile"))
	viper.BindPFlag("progress", generateCmd.Flags().Lookup("progress"))
}

func validateGenerateFlags(cmd *cobra.Command, args []string) error {
	inputFile = viper.GetString("input")
	templateFile = viper.GetString("template")
	outputFile = viper.GetString("output")
	profileFile = viper.GetString("profile")
	showProgress = viper.GetBool("progress")

	if err := validateFileExists(inputFile, "input register"); err != nil {
		return err
	}
	if err := validateFileExists(templateFile, "template workbook"); err != nil {
		return err
	}
	if profileFile != "" {
		if err := validateFileExists(profileFile, "filing profile"); err != nil {
			return err
		}
	}

	if outputFile == "" {
		return fmt.Errorf("output path is required")
	}
	dir := filepath.Dir(outputFile)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}

	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	profile, err := config.LoadProfile(profileFile)
	if err != nil {
		return err
	}

	p := pipeline.New(states.NewRegistry(), jobs.NewStore())
	if showProgress {
		p.OnProgress(func(percent int, stage string) {
			fmt.Fprintf(os.Stderr, "\r[%3d%%] %s", percent, stage)
		})
	}

	result, err := p.RunGSTR1(ctx, pipeline.Request{
		InputPath:    inputFile,
		TemplatePath: templateFile,
		OutputPath:   outputFile,
		Profile:      profile,
	})
	if showProgress {
		fmt.Fprintf(os.Stderr, "\n")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Workbook written: %s (%d register rows", result.OutputPath, result.RecordCount)
	if summary := result.ErrorSummary; summary != nil && summary.Total > 0 {
		fmt.Fprintf(os.Stderr, ", %d rows skipped by validation", summary.Total)
	}
	fmt.Fprintf(os.Stderr, ")\n")

	if summary := result.ErrorSummary; summary != nil && summary.Total > 0 && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Validation failures: %s\n", summary.Error())
		for _, rowErr := range result.RowErrors {
			fmt.Fprintf(os.Stderr, "  row %d [%s]: %s\n", rowErr.SourceRow+1, rowErr.Sheet, rowErr.Message)
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}
