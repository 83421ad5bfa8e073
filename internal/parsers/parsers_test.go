package parsers

import (
	"strings"
	"testing"

	apperrors "gst-filing-service/pkg/errors"
)

func TestDetectHeaderRow(t *testing.T) {
	rows := [][]string{
		{"Purchase Register FY 2024-25"},
		{},
		{"Supplier GSTIN", "Invoice No", "Invoice Date", "Taxable Value", "Place of Supply"},
		{"27AAAAA0000A1Z5", "INV-1", "01-08-2024", "1000", "MH"},
	}

	dataStart, colMap, err := detectHeaderRow(rows, purchaseHeaders, purchaseOptionalHeaders, "register.xlsx")
	if err != nil {
		t.Fatalf("detectHeaderRow failed: %v", err)
	}
	if dataStart != 3 {
		t.Errorf("data start = %d, want 3", dataStart)
	}
	expected := map[string]int{
		"gstin":           0,
		"invoice_no":      1,
		"invoice_date":    2,
		"taxable_value":   3,
		"place_of_supply": 4,
	}
	for field, idx := range expected {
		if colMap[field] != idx {
			t.Errorf("field %s at column %d, want %d", field, colMap[field], idx)
		}
	}
}

func TestDetectHeaderRowMergedCells(t *testing.T) {
	// Portal exports spread a header over a group row and a label row.
	rows := [][]string{
		{"Supplier Details", "Invoice Details", "", "", ""},
		{"GSTIN of supplier", "Invoice number", "Invoice date", "Taxable value", "Place of supply"},
		{"27AAAAA0000A1Z5", "INV-1", "01-08-2024", "1000", "MH"},
	}

	dataStart, colMap, err := detectHeaderRow(rows, gstr2bHeaders, nil, "gstr2b.xlsx")
	if err != nil {
		t.Fatalf("detectHeaderRow failed: %v", err)
	}
	// The group row wins; the label row below it is left to the value
	// parsers, which skip it for not parsing as data.
	if dataStart != 1 {
		t.Errorf("data start = %d, want 1", dataStart)
	}
	if colMap["gstin"] != 0 || colMap["invoice_no"] != 1 {
		t.Errorf("column map = %v", colMap)
	}
}

func TestDetectHeaderRowMissingHeaders(t *testing.T) {
	rows := [][]string{
		{"Supplier GSTIN", "Invoice No"},
		{"27AAAAA0000A1Z5", "INV-1"},
	}

	_, _, err := detectHeaderRow(rows, purchaseHeaders, purchaseOptionalHeaders, "register.xlsx")
	filingErr, ok := apperrors.AsFilingError(err)
	if !ok || filingErr.Code != apperrors.CodeHeaderNotFound {
		t.Fatalf("err = %v", err)
	}
	// Missing fields are listed sorted so the message is stable. Optional
	// columns never appear in the list.
	if !strings.Contains(filingErr.Message, "invoice_date, taxable_value") {
		t.Errorf("message = %q", filingErr.Message)
	}
	if strings.Contains(filingErr.Message, "place_of_supply") {
		t.Errorf("optional column reported missing: %q", filingErr.Message)
	}
}

func TestTableFromRows(t *testing.T) {
	table := tableFromRows([][]string{
		{"", ""},
		{"Invoice No", "Taxable Value", ""},
		{"INV-1", "100"},
		{"", ""},
		{"INV-2", "200", "stray"},
	})

	if len(table.Columns) != 3 {
		t.Fatalf("columns = %v", table.Columns)
	}
	if table.Columns[0] != "Invoice No" || table.Columns[1] != "Taxable Value" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want blank row dropped", len(table.Rows))
	}
	if table.Rows[0]["Invoice No"] != "INV-1" {
		t.Errorf("first row = %v", table.Rows[0])
	}
	if table.Rows[1]["Taxable Value"] != "200" {
		t.Errorf("second row = %v", table.Rows[1])
	}
	if _, ok := table.Rows[1][""]; ok {
		t.Error("cells under an empty header should be dropped")
	}
}

func TestTableFromRowsEmpty(t *testing.T) {
	table := tableFromRows([][]string{{"", ""}, {}})
	if !table.IsEmpty() {
		t.Errorf("table = %+v, want empty", table)
	}
}
