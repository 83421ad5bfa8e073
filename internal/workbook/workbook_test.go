package workbook

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"gst-filing-service/internal/builders"
	"gst-filing-service/internal/enrich"
)

// stubBuilder emits fixed rows so the writer can be tested without a full
// enrichment run.
type stubBuilder struct {
	sheet string
	rows  []builders.OutputRow
}

func (b *stubBuilder) SheetName() string { return b.sheet }

func (b *stubBuilder) Build(_ []enrich.Record, _ []string) ([]builders.OutputRow, []builders.RowError) {
	return b.rows, nil
}

// makeTemplate writes a minimal template: a banner above the headers,
// headers in row 4, data expected from row 5.
func makeTemplate(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	const sheet = "b2cs"
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("creating sheet: %v", err)
	}
	f.SetCellValue(sheet, "A1", "Summary For B2CS")
	for i, header := range []string{"Type", "Place Of Supply", "Rate", "Taxable Value"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, header)
	}

	path := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving template: %v", err)
	}
	f.Close()
	return path
}

func TestWriterPopulatesTemplateCopy(t *testing.T) {
	dir := t.TempDir()
	template := makeTemplate(t, dir)
	output := filepath.Join(dir, "out.xlsx")

	w, err := NewWriter(template, output)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	stub := &stubBuilder{
		sheet: "b2cs",
		rows: []builders.OutputRow{
			{"Type": "OE", "Place Of Supply": "27-Maharashtra", "Rate": 18.0, "Taxable Value": 300.0},
			{"Type": "OE", "Place Of Supply": "29-Karnataka", "Rate": 12.0, "Taxable Value": 50.0},
		},
	}
	missing := &stubBuilder{sheet: "no-such-sheet", rows: []builders.OutputRow{{"Type": "OE"}}}

	rowErrors, err := w.WriteAll(nil, []builders.Builder{stub, missing})
	if err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if len(rowErrors) != 0 {
		t.Errorf("row errors = %v", rowErrors)
	}
	if err := w.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("reopening output: %v", err)
	}
	defer f.Close()

	// Template furniture above the headers stays intact.
	if got, _ := f.GetCellValue("b2cs", "A1"); got != "Summary For B2CS" {
		t.Errorf("banner cell = %q", got)
	}
	if got, _ := f.GetCellValue("b2cs", "B5"); got != "27-Maharashtra" {
		t.Errorf("B5 = %q", got)
	}
	if got, _ := f.GetCellValue("b2cs", "C6"); got != "12" {
		t.Errorf("C6 = %q", got)
	}
	if got, _ := f.GetCellValue("b2cs", "D5"); got != "300" {
		t.Errorf("D5 = %q", got)
	}
}

func TestWriterMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(filepath.Join(dir, "nope.xlsx"), filepath.Join(dir, "out.xlsx"))
	if err == nil {
		t.Fatal("expected an error for a missing template")
	}
}
