package errors

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryTransform, 5},
		{CategoryReconciliation, 5},
		{CategoryInternal, 5},
		{ErrorCategory("other"), 1},
	}
	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "boom")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("%s exit code = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestAsFilingErrorThroughChain(t *testing.T) {
	base := ValidationError(CodeInvalidGSTIN, "gstin", "bad", nil)
	wrapped := fmt.Errorf("while validating row: %w", base)

	filingErr, ok := AsFilingError(wrapped)
	if !ok {
		t.Fatal("FilingError not found in wrapped chain")
	}
	if filingErr.Code != CodeInvalidGSTIN {
		t.Errorf("code = %s", filingErr.Code)
	}
}

func TestWrapIfNeeded(t *testing.T) {
	if WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "x") != nil {
		t.Error("nil error should stay nil")
	}

	existing := TransformError(CodeBuildFailed, "b2b", nil)
	got := WrapIfNeeded(fmt.Errorf("stage: %w", existing), CategoryInternal, CodeUnexpectedError, "x")
	if got != existing {
		t.Errorf("existing FilingError rewrapped: %+v", got)
	}

	plain := errors.New("disk full")
	got = WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "save failed")
	if got.Category != CategoryInternal || got.Code != CodeUnexpectedError {
		t.Errorf("wrapped = %s/%s", got.Category, got.Code)
	}
	if got.Unwrap() != plain {
		t.Error("cause not preserved")
	}
}

func TestErrorSummary(t *testing.T) {
	var errs []*FilingError
	for i := 0; i < 7; i++ {
		errs = append(errs, New(CategoryValidation, CodeInvalidData, fmt.Sprintf("row %d", i)))
	}
	errs = append(errs, FileError(CodeFileNotFound, "missing.xlsx", nil))

	summary := NewErrorSummary(errs)
	if summary.Total != 8 {
		t.Errorf("total = %d, want 8", summary.Total)
	}
	if summary.ByCategory[CategoryValidation] != 7 || summary.ByCategory[CategoryFile] != 1 {
		t.Errorf("by category = %v", summary.ByCategory)
	}
	if summary.ByCode[CodeInvalidData] != 7 {
		t.Errorf("by code = %v", summary.ByCode)
	}
	if len(summary.SampleErrors) != 5 {
		t.Errorf("samples = %d, want capped at 5", len(summary.SampleErrors))
	}
	if !summary.HasCategory(CategoryFile) || summary.HasCategory(CategoryParse) {
		t.Errorf("HasCategory wrong: %v", summary.ByCategory)
	}
	// The summary reports the highest exit code; validation (3) outranks file (2).
	if code := summary.GetExitCode(); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestErrorSummaryMessages(t *testing.T) {
	if msg := NewErrorSummary(nil).Error(); msg != "no errors" {
		t.Errorf("empty summary message = %q", msg)
	}

	single := NewErrorSummary([]*FilingError{New(CategoryValidation, CodeInvalidRate, "invalid GST rate")})
	if single.Error() != "invalid GST rate" {
		t.Errorf("single message = %q", single.Error())
	}
	if single.GetExitCode() != 3 {
		t.Errorf("single exit code = %d", single.GetExitCode())
	}

	if NewErrorSummary(nil).GetExitCode() != 0 {
		t.Error("empty summary should exit 0")
	}

	many := NewErrorSummary([]*FilingError{
		New(CategoryValidation, CodeInvalidRate, "a"),
		New(CategoryValidation, CodeInvalidDate, "b"),
	})
	if msg := many.Error(); msg != "2 errors occurred (validation: 2)" {
		t.Errorf("message = %q", msg)
	}
}
