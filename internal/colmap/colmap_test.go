package colmap

import (
	"reflect"
	"testing"

	"gst-filing-service/internal/models"
)

func makeTable(columns []string, cells ...[]interface{}) *models.Table {
	table := &models.Table{Columns: columns}
	for _, c := range cells {
		row := models.Row{}
		for i, v := range c {
			if i < len(columns) {
				row[columns[i]] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func TestBuildMapHeaderMatching(t *testing.T) {
	table := makeTable([]string{"Customer GSTIN", "GSTN", "Invoice No", "Net Sales", "Place of Supply"})
	m := NewEngine(table).BuildMap()

	expected := map[string]string{
		"gstin":           "Customer GSTIN",
		"invoice_number":  "Invoice No",
		"taxable_value":   "Net Sales",
		"place_of_supply": "Place of Supply",
	}
	for field, col := range expected {
		if m[field] != col {
			t.Errorf("field %s mapped to %q, want %q", field, m[field], col)
		}
	}
}

func TestMatchColumnLevels(t *testing.T) {
	// Exact beats prefix beats substring.
	columns := []string{"Total Invoice Value", "Invoice Value"}
	if got := matchColumn(columns, []string{"invoice value"}); got != "Invoice Value" {
		t.Errorf("exact match: got %q, want Invoice Value", got)
	}

	columns = []string{"Total Invoice Value", "Invoice Value in INR"}
	if got := matchColumn(columns, []string{"invoice value"}); got != "Invoice Value in INR" {
		t.Errorf("prefix over substring: got %q", got)
	}

	// Earlier keywords win over later ones even at a worse level.
	columns = []string{"GSTN", "Customer GSTIN"}
	if got := matchColumn(columns, []string{"customer gstin", "gstn"}); got != "Customer GSTIN" {
		t.Errorf("keyword priority: got %q", got)
	}

	// Full tie goes to the leftmost column.
	columns = []string{"Rate A", "Rate B"}
	if got := matchColumn(columns, []string{"rate"}); got != "Rate A" {
		t.Errorf("leftmost tie-break: got %q", got)
	}
}

func TestBuildMapDeterministic(t *testing.T) {
	table := makeTable(
		[]string{"Customer GSTIN", "Invoice No", "Invoice Date", "Taxable Value", "Rate"},
		[]interface{}{"27AAAAA0000A1Z5", "INV-1", "01-08-2024", "100", "18"},
	)
	first := NewEngine(table).BuildMap()
	second := NewEngine(table).BuildMap()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("BuildMap not deterministic: %v vs %v", first, second)
	}
}

func TestGSTINContentFallback(t *testing.T) {
	table := makeTable(
		[]string{"Party Code", "Bill No", "Amount"},
		[]interface{}{"27AAAAA0000A1Z5", "B-1", "1234.56"},
		[]interface{}{"29BBBBB1111B2Z6", "B-2", "99.50"},
		[]interface{}{"33CCCCC2222C3Z7", "B-3", "10.25"},
	)
	m := NewEngine(table).BuildMap()
	if m["gstin"] != "Party Code" {
		t.Errorf("gstin fallback mapped %q, want Party Code", m["gstin"])
	}
}

func TestGSTINContentFallbackNeedsThreeMatches(t *testing.T) {
	table := makeTable(
		[]string{"Party Code", "Bill No"},
		[]interface{}{"27AAAAA0000A1Z5", "B-1"},
		[]interface{}{"29BBBBB1111B2Z6", "B-2"},
	)
	m := NewEngine(table).BuildMap()
	if col, ok := m["gstin"]; ok {
		t.Errorf("gstin mapped to %q from only two samples", col)
	}
}

func TestDateContentFallback(t *testing.T) {
	table := makeTable(
		[]string{"Booked On", "Bill No"},
		[]interface{}{"01-08-2024", "B-1"},
		[]interface{}{"15/08/2024", "B-2"},
		[]interface{}{"2024-08-20", "B-3"},
	)
	m := NewEngine(table).BuildMap()
	if m["invoice_date"] != "Booked On" {
		t.Errorf("invoice_date fallback mapped %q, want Booked On", m["invoice_date"])
	}
}

func TestFieldMapValue(t *testing.T) {
	table := makeTable(
		[]string{"Invoice No"},
		[]interface{}{"INV-7"},
	)
	m := NewEngine(table).BuildMap()
	row := table.Rows[0]

	if got := m.String(row, "invoice_number"); got != "INV-7" {
		t.Errorf("String(invoice_number) = %q", got)
	}
	if got := m.Value(row, "gstin"); got != nil {
		t.Errorf("unmapped field should read nil, got %v", got)
	}
}
