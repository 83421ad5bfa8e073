package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"gst-filing-service/internal/jobs"
	"gst-filing-service/internal/rules"
	"gst-filing-service/internal/states"
)

func saveWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	f.Close()
}

func TestRunProgressStaysWithItsJob(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "register.xlsx")
	saveWorkbook(t, input, [][]interface{}{
		{"Invoice Number", "Taxable Value"},
		{"INV-1", "100"},
	})
	template := filepath.Join(dir, "template.xlsx")
	saveWorkbook(t, template, nil)

	store := jobs.NewStore()
	p := New(states.NewRegistry(), store)

	_, err := p.RunGSTR1(context.Background(), Request{
		InputPath:    filepath.Join(dir, "missing.xlsx"),
		TemplatePath: template,
		OutputPath:   filepath.Join(dir, "out1.xlsx"),
	})
	if err == nil {
		t.Fatal("run with a missing input file should fail")
	}
	recorded := store.List()
	if len(recorded) != 1 {
		t.Fatalf("jobs = %d, want 1", len(recorded))
	}
	failed := recorded[0]
	if failed.Status != jobs.StatusFailed {
		t.Fatalf("first job status = %s, want failed", failed.Status)
	}

	if _, err := p.RunGSTR1(context.Background(), Request{
		InputPath:    input,
		TemplatePath: template,
		OutputPath:   filepath.Join(dir, "out2.xlsx"),
	}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	// The second run must not touch the first job's record.
	got, err := store.Get(failed.ID)
	if err != nil {
		t.Fatalf("Get failed job: %v", err)
	}
	if got.Status != jobs.StatusFailed {
		t.Errorf("first job status = %s, want failed", got.Status)
	}
	if got.Progress != failed.Progress || got.Stage != failed.Stage {
		t.Errorf("first job rewritten to progress %d stage %q, want %d %q",
			got.Progress, got.Stage, failed.Progress, failed.Stage)
	}
}

func TestSheetBuildersFollowProfile(t *testing.T) {
	p := New(states.NewRegistry(), nil)

	enabled := p.sheetBuilders(rules.DefaultProfile())
	names := make(map[string]bool, len(enabled))
	for _, b := range enabled {
		names[b.SheetName()] = true
	}
	if len(enabled) != 10 {
		t.Errorf("got %d builders, want 10: %v", len(enabled), names)
	}
	if names["ecob2b"] {
		t.Error("ecob2b should stay off without a profile enabling it")
	}
	for _, sheet := range []string{"b2b,sez,de", "b2cs", "exp", "docs"} {
		if !names[sheet] {
			t.Errorf("sheet %q missing from default builder set", sheet)
		}
	}

	profile := &rules.Profile{
		SupplierGSTIN: "27AAAAA0000A1Z5",
		DefaultUQC:    "PCS-PIECES",
		EnabledSheets: []string{"b2cs", "ecob2b"},
	}
	enabled = p.sheetBuilders(profile)
	if len(enabled) != 2 {
		t.Fatalf("got %d builders, want 2", len(enabled))
	}
	if enabled[0].SheetName() != "b2cs" || enabled[1].SheetName() != "ecob2b" {
		t.Errorf("builders = %s, %s", enabled[0].SheetName(), enabled[1].SheetName())
	}
}
