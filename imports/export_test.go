package imports

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEquipmentMatrixExportTable_RoundTrip(t *testing.T) {
	workers := []string{"Ahmed", "Maria"}
	costs := map[string]decimal.Decimal{
		"Maria": decimal.RequireFromString("12.5"),
	}
	rows := []EquipmentRow{
		{
			Code:             "STS-01",
			Category:         "Sewing",
			WorkType:         "Single Needle",
			StationCount:     3,
			HourlyCost:       decimal.RequireFromString("5.25"),
			CertifiedWorkers: []string{"Maria"},
		},
	}

	rendered := RenderTable(EquipmentMatrixExportTable(workers, costs, rows), DelimiterTab)
	payload, result := ValidateEquipmentMatrix(ParseDelimited(rendered, DelimiterTab), NewStoreSnapshot())
	if !result.Valid {
		t.Fatalf("exported matrix should re-import cleanly: %v", result.Errors)
	}
	if len(payload.Workers) != 2 {
		t.Fatalf("unexpected workers %v", payload.Workers)
	}
	if !payload.WorkerHourlyCosts["Maria"].Equal(costs["Maria"]) {
		t.Fatalf("Maria cost lost in round trip: %s", payload.WorkerHourlyCosts["Maria"])
	}
	if len(payload.Rows) != 1 || payload.Rows[0].Code != "STS-01" {
		t.Fatalf("unexpected rows %+v", payload.Rows)
	}
	if len(payload.Rows[0].CertifiedWorkers) != 1 || payload.Rows[0].CertifiedWorkers[0] != "Maria" {
		t.Fatalf("certification lost in round trip: %v", payload.Rows[0].CertifiedWorkers)
	}
}

func TestProductStepsExportTable_RoundTrip(t *testing.T) {
	entries := []StepEntry{
		{
			ProductName:   "Bag",
			VersionName:   "v1.0",
			VersionNumber: 1,
			IsDefault:     true,
			StepCode:      "SEW",
			Category:      "Sewing",
			Component:     "Body",
			TaskName:      "Sew body",
			TimeSeconds:   300,
			EquipmentCode: "STS-01",
			Dependencies:  []DependencyRef{{Code: "CUT", Type: DependencyTypeStart}},
		},
		{
			ProductName:   "Bag",
			VersionName:   "v1.0",
			VersionNumber: 1,
			IsDefault:     true,
			StepCode:      "CUT",
			Category:      "Cutting",
			TaskName:      "Cut panels",
			TimeSeconds:   120,
		},
	}

	snap := NewStoreSnapshot()
	snap.Equipment["STS-01"] = 1
	rendered := RenderTable(ProductStepsExportTable(entries), DelimiterComma)
	payload, result := ValidateProducts(ParseDelimited(rendered, DelimiterComma), snap)
	if !result.Valid {
		t.Fatalf("exported catalog should re-import cleanly: %v", result.Errors)
	}
	if len(payload.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(payload.Entries))
	}
	sew := payload.Entries[0]
	if !sew.IsDefault || sew.TimeSeconds != 300 || sew.EquipmentCode != "STS-01" {
		t.Fatalf("unexpected entry %+v", sew)
	}
	if len(sew.Dependencies) != 1 || sew.Dependencies[0].Type != DependencyTypeStart {
		t.Fatalf("dependency type lost in round trip: %+v", sew.Dependencies)
	}
}

func TestProductionHistoryExportTable(t *testing.T) {
	rows := []ProductionRow{
		{
			ProductName:   "Bag",
			DueDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			VersionName:   "v1.0",
			StepCode:      "SEW",
			WorkerName:    "Maria",
			WorkDate:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			StartMinutes:  8 * 60,
			EndMinutes:    9*60 + 30,
			UnitsProduced: 12,
		},
	}
	table := ProductionHistoryExportTable(rows)
	if len(table) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(table))
	}
	row := table[1]
	if row[1] != "2026-03-01" || row[5] != "2026-02-10" {
		t.Fatalf("unexpected dates in %v", row)
	}
	if row[6] != "08:00" || row[7] != "09:30" {
		t.Fatalf("unexpected clock rendering in %v", row)
	}
}

func TestRenderTable_CSVEscapes(t *testing.T) {
	out := RenderTable([][]string{{"a,b", `say "hi"`}}, DelimiterComma)
	if !strings.Contains(out, `"a,b"`) {
		t.Fatalf("comma cell not quoted: %q", out)
	}
	if !strings.Contains(out, `"say ""hi"""`) {
		t.Fatalf("quote cell not escaped: %q", out)
	}
}
