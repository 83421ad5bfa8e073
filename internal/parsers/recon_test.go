package parsers

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gst-filing-service/internal/states"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("create sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	f.Close()
}

func TestReadGSTR2BKeepsUnresolvablePlaceOfSupply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gstr2b.xlsx")
	writeWorkbook(t, path, "B2B", [][]interface{}{
		{"GSTIN of supplier", "Invoice number", "Invoice date", "Taxable value", "Place of supply"},
		{"27AAAAA0000A1Z5", "INV-1", "01-08-2024", "1000", "27-Maharashtra"},
		{"29BBBBB0000B1Z4", "INV-2", "02-08-2024", "500", "Atlantis"},
	})

	rows, err := ReadGSTR2B(path, states.NewRegistry())
	if err != nil {
		t.Fatalf("ReadGSTR2B failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want both statement rows kept", len(rows))
	}
	if rows[0].POSState != "MH" {
		t.Errorf("first row scope = %q, want MH", rows[0].POSState)
	}
	if rows[1].InvoiceNo != "INV-2" || rows[1].POSState != "" {
		t.Errorf("row with unresolvable place of supply = %+v, want kept with blank scope", rows[1])
	}
}

func TestReadPurchaseRegisterWithoutPlaceOfSupply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"Supplier GSTIN", "Invoice No", "Invoice Date", "Taxable Value"},
		{"27AAAAA0000A1Z5", "INV-1", "01-08-2024", "600"},
		{"27AAAAA0000A1Z5", "INV-1", "01-08-2024", "400"},
	})

	rows, err := ReadPurchaseRegister(path, states.NewRegistry())
	if err != nil {
		t.Fatalf("ReadPurchaseRegister failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want line items aggregated to one invoice", len(rows))
	}
	if !rows[0].TaxableValue.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("taxable = %s, want 1000", rows[0].TaxableValue.Decimal)
	}
	if rows[0].POSState != "" {
		t.Errorf("scope = %q, want blank when the register has no place of supply", rows[0].POSState)
	}
}
