package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	apperrors "gst-filing-service/pkg/errors"
	"gst-filing-service/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if filingErr, ok := apperrors.AsFilingError(err); ok {
		return h.handleFilingError(filingErr)
	}

	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleFilingError(err *apperrors.FilingError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "Run with --verbose for more details\n")
	}

	return 1
}

func (h *CLIErrorHandler) getCategoryHelp(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file`

	case apperrors.CategoryParse:
		return `Parse error help:
• Verify the file format and structure
• Check that the register has a recognizable header row
• Ensure XLSX files are not password protected
• Use 'gstfiler --help' for examples of accepted inputs`

	case apperrors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify dates use DD-Mon-YYYY (e.g. 01-Aug-2024)
• Ensure amounts are decimal numbers without currency symbols
• Check GSTINs are 15 characters in the standard format`

	case apperrors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and the filing profile YAML
• Use 'gstfiler generate --help' to see all available options
• Try running with default settings first`

	case apperrors.CategoryReconciliation:
		return `Reconciliation error help:
• Check data quality in both the statement and the register
• Each statement file must cover a single state
• Verify the GSTR-2B export contains a B2B sheet`

	default:
		return `For more help:
• Use 'gstfiler --help' for general help
• Use 'gstfiler generate --help' or 'gstfiler reconcile --help'
• Report bugs on the project repository`
	}
}
