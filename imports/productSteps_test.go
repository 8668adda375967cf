package imports

import (
	"strings"
	"testing"
)

func TestParseDependencyCell(t *testing.T) {
	refs, err := ParseDependencyCell("  ")
	if err != nil || refs != nil {
		t.Fatalf("blank cell should parse to nil, got %v, %v", refs, err)
	}

	refs, err = ParseDependencyCell("CUT, SEW:start ,PRESS:finish")
	if err != nil {
		t.Fatalf("ParseDependencyCell error: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	if refs[0].Code != "CUT" || refs[0].Type != DependencyTypeFinish {
		t.Fatalf("bare code should default to finish: %+v", refs[0])
	}
	if refs[1].Code != "SEW" || refs[1].Type != DependencyTypeStart {
		t.Fatalf("unexpected start ref: %+v", refs[1])
	}
	if refs[2].Code != "PRESS" || refs[2].Type != DependencyTypeFinish {
		t.Fatalf("unexpected finish ref: %+v", refs[2])
	}
}

func TestParseDependencyCell_Rejections(t *testing.T) {
	if _, err := ParseDependencyCell("CUT:sideways"); err == nil {
		t.Fatal("expected error for unknown dependency type")
	}
	if _, err := ParseDependencyCell(":start"); err == nil {
		t.Fatal("expected error for empty dependency code")
	}
}

func TestFormatDependencyCell_RoundTrip(t *testing.T) {
	cell := "CUT,SEW:start"
	refs, err := ParseDependencyCell(cell)
	if err != nil {
		t.Fatalf("ParseDependencyCell error: %v", err)
	}
	if got := FormatDependencyCell(refs); got != cell {
		t.Fatalf("round trip expected %q, got %q", cell, got)
	}
}

func productStepsTable(rows ...string) RawTable {
	header := "product_name\tversion_name\tversion_number\tis_default\tstep_code\texternal_id\tcategory\tcomponent\ttask_name\ttime_seconds\tequipment_code\tdependencies"
	return ParseDelimited(header+"\n"+strings.Join(rows, "\n"), DelimiterTab)
}

func TestValidateProducts_DuplicateStepCodesListEveryOccurrence(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tCUT\t\tSewing\t\tCut panels\t120\t\t",
		"Bag\tv1.0\t1\tY\tCUT\t\tSewing\t\tCut lining\t90\t\t",
	)
	_, result := ValidateProducts(table, NewStoreSnapshot())
	if result.Valid {
		t.Fatal("expected validation to fail")
	}
	dupErrors := 0
	for _, issue := range result.Errors {
		if strings.Contains(issue.Message, "duplicate step code") {
			dupErrors++
		}
	}
	if dupErrors != 2 {
		t.Fatalf("expected both occurrences flagged, got %d errors: %v", dupErrors, result.Errors)
	}
}

func TestValidateProducts_SameCodeAcrossVersionsIsFine(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tCUT\t\tSewing\t\tCut panels\t120\t\t",
		"Bag\tv2.0\t2\t\tCUT\t\tSewing\t\tCut panels\t110\t\t",
	)
	_, result := ValidateProducts(table, NewStoreSnapshot())
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
}

func TestValidateProducts_DanglingDependencyIsWarning(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tSEW\t\tSewing\t\tSew body\t300\t\tCUT",
	)
	payload, result := ValidateProducts(table, NewStoreSnapshot())
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "not in this upload") {
		t.Fatalf("expected dangling dependency warning, got %v", result.Warnings)
	}
	if payload == nil || len(payload.Entries) != 1 {
		t.Fatalf("payload should still stage the row: %+v", payload)
	}
}

func TestValidateProducts_CycleIsError(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tA\t\tSewing\t\tStep A\t60\t\tB",
		"Bag\tv1.0\t1\tY\tB\t\tSewing\t\tStep B\t60\t\tA",
	)
	_, result := ValidateProducts(table, NewStoreSnapshot())
	if result.Valid {
		t.Fatal("expected validation to fail")
	}
	found := false
	for _, issue := range result.Errors {
		if strings.Contains(issue.Message, "dependency cycle detected") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cycle error, got %v", result.Errors)
	}
}

func TestValidateProducts_UnknownEquipmentIsError(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tCUT\t\tSewing\t\tCut panels\t120\tSTS-99\t",
	)
	snap := NewStoreSnapshot()
	_, result := ValidateProducts(table, snap)
	if result.Valid {
		t.Fatal("expected validation to fail for unknown equipment")
	}

	snap.Equipment["STS-99"] = 7
	_, result = ValidateProducts(table, snap)
	if !result.Valid {
		t.Fatalf("expected valid with known equipment, got %v", result.Errors)
	}
}

func TestValidateProducts_NonPositiveTimeIsError(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tCUT\t\tSewing\t\tCut panels\t0\t\t",
	)
	_, result := ValidateProducts(table, NewStoreSnapshot())
	if result.Valid {
		t.Fatal("expected validation to fail for zero time per piece")
	}
}

func TestValidateProducts_BlankCategoryAndTaskNameAreErrors(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tCUT\t\t\t\t\t120\t\t",
	)
	_, result := ValidateProducts(table, NewStoreSnapshot())
	if result.Valid {
		t.Fatal("expected validation to fail for blank category and task name")
	}
	fields := map[string]bool{}
	for _, issue := range result.Errors {
		fields[issue.Field] = true
	}
	if !fields["category"] {
		t.Fatalf("expected a category error, got %v", result.Errors)
	}
	if !fields["task_name"] {
		t.Fatalf("expected a task_name error, got %v", result.Errors)
	}
}

func TestValidateProductSteps_DefaultsVersion(t *testing.T) {
	header := "step_code\texternal_id\tcategory\tcomponent\ttask_name\ttime_seconds\tequipment_code\tdependencies"
	table := ParseDelimited(header+"\nCUT\t\tSewing\t\tCut panels\t120\t\t", DelimiterTab)

	snap := NewStoreSnapshot()
	snap.Products["Bag"] = 3
	snap.Versions[VersionKey("Bag", "v2.0")] = 5
	payload, result := ValidateProductSteps(table, snap, "Bag", "v2.0")
	if !result.Valid {
		t.Fatalf("expected valid, got %v", result.Errors)
	}
	entry := payload.Entries[0]
	if entry.ProductName != "Bag" || entry.VersionName != "v2.0" {
		t.Fatalf("version target should come from the request: %+v", entry)
	}
	if entry.VersionNumber != 1 {
		t.Fatalf("version number should default to 1, got %d", entry.VersionNumber)
	}
}

func TestValidateProductSteps_RequiresTarget(t *testing.T) {
	table := productStepsTable()
	_, result := ValidateProductSteps(table, NewStoreSnapshot(), "", "v1.0")
	if result.Valid {
		t.Fatal("expected validation to fail without a product name")
	}
}

func TestValidateProductSteps_UnknownVersionIsError(t *testing.T) {
	header := "step_code\texternal_id\tcategory\tcomponent\ttask_name\ttime_seconds\tequipment_code\tdependencies"
	table := ParseDelimited(header+"\nCUT\t\tSewing\t\tCut panels\t120\t\t", DelimiterTab)

	snap := NewStoreSnapshot()
	snap.Products["Bag"] = 3
	_, result := ValidateProductSteps(table, snap, "Bag", "v9.0")
	if result.Valid {
		t.Fatal("expected validation to fail for a version that does not exist")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "does not exist") {
		t.Fatalf("expected a missing-version error, got %v", result.Errors)
	}
}

func TestValidateProducts_PreviewCounts(t *testing.T) {
	table := productStepsTable(
		"Bag\tv1.0\t1\tY\tCUT\t\tSewing\tBody\tCut panels\t120\t\t",
		"Bag\tv1.0\t1\tY\tSEW\t\tSewing\tBody\tSew body\t300\t\tCUT",
	)
	snap := NewStoreSnapshot()
	snap.Products["Bag"] = 3
	_, result := ValidateProducts(table, snap)
	if !result.Valid {
		t.Fatalf("expected valid, got %v", result.Errors)
	}
	preview, ok := result.Preview.(ProductStepsPreview)
	if !ok {
		t.Fatalf("unexpected preview type %T", result.Preview)
	}
	if preview.Summary.ProductsToCreate != 0 {
		t.Fatalf("product already exists, got productsToCreate=%d", preview.Summary.ProductsToCreate)
	}
	if preview.Summary.VersionsToCreate != 1 {
		t.Fatalf("expected 1 version to create, got %d", preview.Summary.VersionsToCreate)
	}
	if preview.Summary.StepsToCreate != 2 {
		t.Fatalf("expected 2 steps to create, got %d", preview.Summary.StepsToCreate)
	}
	if preview.Summary.DependencyCount != 1 {
		t.Fatalf("expected 1 dependency, got %d", preview.Summary.DependencyCount)
	}
}
