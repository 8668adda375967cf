package imports

import (
	"fmt"
	"strconv"
	"strings"
)

var productCatalogFields = []FieldSpec{
	{Name: "product_name", Keywords: []string{"product"}, Required: true},
	{Name: "version_name", Keywords: []string{"version", "name"}},
	{Name: "version_number", Keywords: []string{"version", "number"}},
	{Name: "is_default", Keywords: []string{"default"}},
	{Name: "step_code", Keywords: []string{"step", "code"}, Required: true},
	{Name: "external_id", Keywords: []string{"external"}},
	{Name: "category", Keywords: []string{"categor"}, Required: true},
	{Name: "component", Keywords: []string{"component"}},
	{Name: "task_name", Keywords: []string{"task"}, Required: true},
	{Name: "time_seconds", Keywords: []string{"time"}, Required: true},
	{Name: "equipment_code", Keywords: []string{"equipment"}},
	{Name: "dependencies", Keywords: []string{"dependen"}},
}

// stepOnlyFields is the products layout minus the product/version
// columns; a product-steps upload names its target version in the
// request body instead.
var stepOnlyFields = productCatalogFields[4:]

// ParseDependencyCell parses the dependency micro-syntax: a
// comma-separated list of "CODE" (implicit finish type) or
// "CODE:start" / "CODE:finish".
func ParseDependencyCell(cell string) ([]DependencyRef, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	var refs []DependencyRef
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref := DependencyRef{Type: DependencyTypeFinish}
		if colon := strings.Index(part, ":"); colon >= 0 {
			ref.Code = strings.TrimSpace(part[:colon])
			switch strings.ToLower(strings.TrimSpace(part[colon+1:])) {
			case "start":
				ref.Type = DependencyTypeStart
			case "finish":
				ref.Type = DependencyTypeFinish
			default:
				return nil, fmt.Errorf("invalid dependency type in %q (want CODE, CODE:start or CODE:finish)", part)
			}
		} else {
			ref.Code = part
		}
		if ref.Code == "" {
			return nil, fmt.Errorf("empty dependency code in %q", cell)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

type ProductStepsSummary struct {
	ProductsToCreate   int `json:"productsToCreate"`
	VersionsToCreate   int `json:"versionsToCreate"`
	CategoriesToCreate int `json:"categoriesToCreate"`
	ComponentsToCreate int `json:"componentsToCreate"`
	StepsToCreate      int `json:"stepsToCreate"`
	DependencyCount    int `json:"dependencyCount"`
}

type ProductStepsPreview struct {
	Summary    ProductStepsSummary `json:"summary"`
	Products   Reconciliation      `json:"products"`
	Categories Reconciliation      `json:"categories"`
	Components Reconciliation      `json:"components"`
	RowCount   int                 `json:"rowCount"`
}

// ValidateProducts validates a full product catalog upload: product and
// version columns are in the table itself.
func ValidateProducts(table RawTable, snap *StoreSnapshot) (*ProductStepsPayload, *ValidationResult) {
	return validateStepBatch(table, snap, productCatalogFields, "", "")
}

// ValidateProductSteps validates a steps-only upload against one
// product version named by the caller.
func ValidateProductSteps(table RawTable, snap *StoreSnapshot, productName, versionName string) (*ProductStepsPayload, *ValidationResult) {
	result := newValidationResult()
	if strings.TrimSpace(productName) == "" {
		result.addError(0, "productName", "productName is required")
	}
	if strings.TrimSpace(versionName) == "" {
		result.addError(0, "versionName", "versionName is required")
	}
	if !result.Valid {
		return nil, result
	}
	if _, ok := snap.Versions[VersionKey(productName, versionName)]; !ok {
		result.addError(0, "versionName",
			fmt.Sprintf("version %q of product %q does not exist; import the product catalog first", versionName, productName))
		return nil, result
	}
	return validateStepBatch(table, snap, stepOnlyFields, productName, versionName)
}

func validateStepBatch(table RawTable, snap *StoreSnapshot, fields []FieldSpec, productName, versionName string) (*ProductStepsPayload, *ValidationResult) {
	result := newValidationResult()
	if len(table.Rows) == 0 {
		result.addError(0, "", "no rows found in upload")
		return nil, result
	}

	mapping, missing := MapColumns(table.Header(), fields)
	if len(missing) > 0 {
		missingColumnsError(result, missing)
		return nil, result
	}

	payload := &ProductStepsPayload{}
	for i, row := range table.DataRows() {
		rowNo := i + 1
		entry := StepEntry{
			ProductName: productName,
			VersionName: versionName,
			StepCode:    strings.TrimSpace(mapping.Cell(row, "step_code")),
			ExternalId:  strings.TrimSpace(mapping.Cell(row, "external_id")),
			Category:    strings.TrimSpace(mapping.Cell(row, "category")),
			Component:   strings.TrimSpace(mapping.Cell(row, "component")),
			TaskName:    strings.TrimSpace(mapping.Cell(row, "task_name")),
		}
		if entry.StepCode == "" {
			continue
		}
		if mapping.Has("product_name") {
			entry.ProductName = strings.TrimSpace(mapping.Cell(row, "product_name"))
			entry.VersionName = strings.TrimSpace(mapping.Cell(row, "version_name"))
			if cell := strings.TrimSpace(mapping.Cell(row, "version_number")); cell != "" {
				n, err := strconv.Atoi(cell)
				if err != nil {
					result.addError(rowNo, "version_number", fmt.Sprintf("invalid version number %q", cell))
				} else {
					entry.VersionNumber = n
				}
			}
			entry.IsDefault = isCertified(mapping.Cell(row, "is_default"))
			if entry.ProductName == "" {
				result.addError(rowNo, "product_name", "product name is required")
			}
		}
		if entry.VersionName == "" {
			entry.VersionName = "v1.0"
		}
		if entry.VersionNumber == 0 {
			entry.VersionNumber = 1
		}

		if entry.Category == "" {
			result.addError(rowNo, "category", "work category is required")
		}
		if entry.TaskName == "" {
			result.addError(rowNo, "task_name", "task name is required")
		}

		cell := strings.TrimSpace(mapping.Cell(row, "time_seconds"))
		n, err := strconv.Atoi(cell)
		if err != nil {
			result.addError(rowNo, "time_seconds", fmt.Sprintf("invalid time per piece %q", cell))
		} else if n <= 0 {
			result.addError(rowNo, "time_seconds", fmt.Sprintf("time per piece must be positive, got %d", n))
		} else {
			entry.TimeSeconds = n
		}

		if code := strings.TrimSpace(mapping.Cell(row, "equipment_code")); code != "" {
			entry.EquipmentCode = code
			if _, ok := snap.Equipment[code]; !ok {
				// Equipment is never implicitly created by a step upload.
				result.addError(rowNo, "equipment_code",
					fmt.Sprintf("equipment %q does not exist; import the equipment matrix first", code))
			}
		}

		deps, err := ParseDependencyCell(mapping.Cell(row, "dependencies"))
		if err != nil {
			result.addError(rowNo, "dependencies", err.Error())
		}
		entry.Dependencies = deps

		payload.Entries = append(payload.Entries, entry)
	}

	if len(payload.Entries) == 0 && result.Valid {
		result.addError(0, "", "no step rows found in upload")
	}

	validateStepGroups(payload, result)
	result.Preview = buildProductStepsPreview(payload, snap)
	if !result.Valid {
		return nil, result
	}
	return payload, result
}

// validateStepGroups runs the per-version checks: duplicate codes,
// cycles, and dangling dependency targets. Step code namespaces are
// per-version; distinct versions may reuse codes independently.
func validateStepGroups(payload *ProductStepsPayload, result *ValidationResult) {
	groups := map[string][]StepEntry{}
	rowOf := map[string]map[string][]int{}
	for i, entry := range payload.Entries {
		key := VersionKey(entry.ProductName, entry.VersionName)
		groups[key] = append(groups[key], entry)
		if rowOf[key] == nil {
			rowOf[key] = map[string][]int{}
		}
		rowOf[key][entry.StepCode] = append(rowOf[key][entry.StepCode], i+1)
	}

	for key, entries := range groups {
		inBatch := map[string]bool{}
		for _, e := range entries {
			inBatch[e.StepCode] = true
		}

		for code, rows := range rowOf[key] {
			if len(rows) > 1 {
				for _, rowNo := range rows {
					result.addError(rowNo, "step_code",
						fmt.Sprintf("duplicate step code %q within version %q", code, entries[0].VersionName))
				}
			}
		}

		for _, e := range entries {
			for _, dep := range e.Dependencies {
				if !inBatch[dep.Code] {
					result.addWarning(0, "dependencies",
						fmt.Sprintf("step %q depends on %q which is not in this upload", e.StepCode, dep.Code))
				}
			}
		}

		for _, cycle := range DetectCycles(entries) {
			result.addError(0, "dependencies", fmt.Sprintf("dependency cycle detected: %s", cycle))
		}
	}
}

func buildProductStepsPreview(payload *ProductStepsPayload, snap *StoreSnapshot) ProductStepsPreview {
	var products, categories, components []string
	versionsToCreate := map[string]bool{}
	stepsToCreate := 0
	dependencyCount := 0

	for _, e := range payload.Entries {
		products = append(products, e.ProductName)
		if e.Category != "" {
			categories = append(categories, e.Category)
		}
		if e.Component != "" {
			components = append(components, e.Component)
		}
		dependencyCount += len(e.Dependencies)

		versionKey := VersionKey(e.ProductName, e.VersionName)
		versionId, versionKnown := snap.Versions[versionKey]
		if !versionKnown {
			versionsToCreate[versionKey] = true
			stepsToCreate++
			continue
		}
		if _, ok := snap.Steps[versionId][e.StepCode]; !ok {
			stepsToCreate++
		}
	}

	preview := ProductStepsPreview{
		Products:   Classify(products, snap.Products),
		Categories: Classify(categories, snap.Categories),
		Components: Classify(components, snap.Components),
		RowCount:   len(payload.Entries),
	}
	preview.Summary = ProductStepsSummary{
		ProductsToCreate:   len(preview.Products.ToCreate),
		VersionsToCreate:   len(versionsToCreate),
		CategoriesToCreate: len(preview.Categories.ToCreate),
		ComponentsToCreate: len(preview.Components.ToCreate),
		StepsToCreate:      stepsToCreate,
		DependencyCount:    dependencyCount,
	}
	return preview
}
