package imports

import (
	"reflect"
	"testing"
)

func TestMapColumns_ToleratesLabelDrift(t *testing.T) {
	header := []string{"Equipment Code", "WORK CATEGORY", "Type", "Stations", "Hourly Cost"}
	mapping, missing := MapColumns(header, equipmentMatrixFields)
	if len(missing) > 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	if mapping.Columns["equipment_code"] != 0 {
		t.Fatalf("equipment_code mapped to column %d", mapping.Columns["equipment_code"])
	}
	if mapping.Columns["work_category"] != 1 {
		t.Fatalf("work_category mapped to column %d", mapping.Columns["work_category"])
	}
	if len(mapping.Extra) != 0 {
		t.Fatalf("unexpected extra columns: %v", mapping.Extra)
	}
}

func TestMapColumns_AllMissingRequiredFieldsAtOnce(t *testing.T) {
	header := []string{"foo", "bar"}
	_, missing := MapColumns(header, equipmentMatrixFields)
	expected := []string{"equipment_code", "work_category"}
	if !reflect.DeepEqual(missing, expected) {
		t.Fatalf("expected missing %v, got %v", expected, missing)
	}
}

func TestMapColumns_UnclaimedColumnsBecomeExtra(t *testing.T) {
	header := []string{"Equipment Code", "Work Category", "Maria", "Ahmed", ""}
	mapping, missing := MapColumns(header, equipmentMatrixFields)
	if len(missing) > 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	// Blank headers are not worker columns.
	if !reflect.DeepEqual(mapping.Extra, []int{2, 3}) {
		t.Fatalf("expected extras [2 3], got %v", mapping.Extra)
	}
}

func TestMapColumns_ClaimedColumnNotReused(t *testing.T) {
	// The due_date field runs before work_date, so a header carrying
	// both "Due Date" and "Work Date" resolves them to distinct columns.
	header := []string{"Product", "Due Date", "Version", "Step", "Worker", "Work Date", "Start", "End", "Units"}
	mapping, missing := MapColumns(header, productionHistoryFields)
	if len(missing) > 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	if mapping.Columns["due_date"] != 1 {
		t.Fatalf("due_date mapped to column %d", mapping.Columns["due_date"])
	}
	if mapping.Columns["work_date"] != 5 {
		t.Fatalf("work_date mapped to column %d", mapping.Columns["work_date"])
	}
}

func TestColumnMapping_CellShortRow(t *testing.T) {
	mapping := ColumnMapping{Columns: map[string]int{"a": 0, "b": 5}}
	row := []string{"x"}
	if got := mapping.Cell(row, "a"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := mapping.Cell(row, "b"); got != "" {
		t.Fatalf("short row should read as empty, got %q", got)
	}
	if got := mapping.Cell(row, "missing"); got != "" {
		t.Fatalf("unmapped field should read as empty, got %q", got)
	}
}
