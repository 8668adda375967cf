package imports

import (
	"fmt"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// productionHistoryFields is the converted canonical layout. due_date
// is mapped before work_date so the "due" column claims its header
// before the bare "date" keyword runs.
var productionHistoryFields = []FieldSpec{
	{Name: "product_name", Keywords: []string{"product"}, Required: true},
	{Name: "due_date", Keywords: []string{"due"}},
	{Name: "version_name", Keywords: []string{"version"}},
	{Name: "step_code", Keywords: []string{"step"}, Required: true},
	{Name: "worker_name", Keywords: []string{"worker"}, Required: true},
	{Name: "work_date", Keywords: []string{"date"}, Required: true},
	{Name: "start_time", Keywords: []string{"start"}, Required: true},
	{Name: "end_time", Keywords: []string{"end"}, Required: true},
	{Name: "units_produced", Keywords: []string{"unit"}, Required: true},
}

// productionDataFields matches the raw shop-floor sheet headers:
// Product, Date, Name, Task ID, Start Time, Finish Time, Completed Units.
var productionDataFields = []FieldSpec{
	{Name: "product_name", Keywords: []string{"product"}, Required: true},
	{Name: "work_date", Keywords: []string{"date"}, Required: true},
	{Name: "worker_name", Keywords: []string{"name"}, Required: true},
	{Name: "step_code", Keywords: []string{"task"}, Required: true},
	{Name: "start_time", Keywords: []string{"start"}, Required: true},
	{Name: "end_time", Keywords: []string{"finish"}, Required: true},
	{Name: "units_produced", Keywords: []string{"unit"}, Required: true},
}

type ProductionHistoryPreview struct {
	Summary  map[string]int `json:"summary"`
	Workers  Reconciliation `json:"workers"`
	RowCount int            `json:"rowCount"`
}

// ValidateProductionHistory validates the converted history layout,
// which carries an explicit version and order due date per row.
func ValidateProductionHistory(table RawTable, snap *StoreSnapshot) (*ProductionHistoryPayload, *ValidationResult) {
	return validateProductionRows(table, snap, productionHistoryFields, true)
}

// ValidateProductionData validates the raw shop-floor sheet. Rows
// resolve against the product's default version and carry no order
// linkage.
func ValidateProductionData(table RawTable, snap *StoreSnapshot) (*ProductionHistoryPayload, *ValidationResult) {
	return validateProductionRows(table, snap, productionDataFields, false)
}

func validateProductionRows(table RawTable, snap *StoreSnapshot, fields []FieldSpec, hasOrderLinkage bool) (*ProductionHistoryPayload, *ValidationResult) {
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

	payload := &ProductionHistoryPayload{HasOrderLinkage: hasOrderLinkage}
	recordsToCreate := 0
	duplicatesSkipped := 0
	seenKeys := map[string]bool{}
	var workers []string

	for i, row := range table.DataRows() {
		rowNo := i + 1
		entry := ProductionRow{
			ProductName: strings.TrimSpace(mapping.Cell(row, "product_name")),
			VersionName: strings.TrimSpace(mapping.Cell(row, "version_name")),
			StepCode:    strings.TrimSpace(mapping.Cell(row, "step_code")),
			WorkerName:  strings.TrimSpace(mapping.Cell(row, "worker_name")),
		}
		if entry.StepCode == "" && entry.WorkerName == "" {
			continue
		}
		workers = append(workers, entry.WorkerName)

		workerId, workerKnown := snap.Workers[entry.WorkerName]
		if !workerKnown {
			result.addError(rowNo, "worker_name",
				fmt.Sprintf("worker %q does not exist; import the equipment matrix first", entry.WorkerName))
		}

		var versionId int
		versionKnown := false
		if _, ok := snap.Products[entry.ProductName]; !ok {
			result.addError(rowNo, "product_name",
				fmt.Sprintf("product %q does not exist; import products first", entry.ProductName))
		} else if hasOrderLinkage {
			if entry.VersionName == "" {
				entry.VersionName = "v1.0"
			}
			versionId, versionKnown = snap.Versions[VersionKey(entry.ProductName, entry.VersionName)]
			if !versionKnown {
				result.addError(rowNo, "version_name",
					fmt.Sprintf("version %q of product %q does not exist", entry.VersionName, entry.ProductName))
			}
		} else {
			versionId, versionKnown = snap.DefaultVersions[entry.ProductName]
			if !versionKnown {
				result.addError(rowNo, "product_name",
					fmt.Sprintf("product %q has no default version", entry.ProductName))
			}
		}

		stepId := 0
		stepKnown := false
		if versionKnown {
			stepId, stepKnown = snap.Steps[versionId][entry.StepCode]
			if !stepKnown {
				result.addError(rowNo, "step_code",
					fmt.Sprintf("step %q does not exist for product %q", entry.StepCode, entry.ProductName))
			}
		}

		if mapping.Has("due_date") {
			if cell := strings.TrimSpace(mapping.Cell(row, "due_date")); cell != "" {
				due, err := utils.ParseWorkDate(cell)
				if err != nil {
					result.addError(rowNo, "due_date", err.Error())
				} else {
					entry.DueDate = due
				}
			}
		}

		workDate, err := utils.ParseWorkDate(mapping.Cell(row, "work_date"))
		if err != nil {
			result.addError(rowNo, "work_date", err.Error())
		} else {
			entry.WorkDate = workDate
		}

		start, startErr := utils.ParseClock(mapping.Cell(row, "start_time"))
		if startErr != nil {
			result.addError(rowNo, "start_time", startErr.Error())
		} else {
			entry.StartMinutes = start
		}
		end, endErr := utils.ParseClock(mapping.Cell(row, "end_time"))
		if endErr != nil {
			result.addError(rowNo, "end_time", endErr.Error())
		} else {
			entry.EndMinutes = end
		}
		if startErr == nil && endErr == nil && entry.EndMinutes <= entry.StartMinutes {
			result.addError(rowNo, "end_time",
				fmt.Sprintf("end time %s is not after start time %s",
					utils.ClockString(entry.EndMinutes), utils.ClockString(entry.StartMinutes)))
		}

		cell := strings.TrimSpace(mapping.Cell(row, "units_produced"))
		n, err := strconv.Atoi(cell)
		if err != nil || n < 0 {
			result.addError(rowNo, "units_produced", fmt.Sprintf("invalid units produced %q", cell))
		} else {
			entry.UnitsProduced = n
		}

		if workerKnown && stepKnown && !entry.WorkDate.IsZero() {
			key := ProductionKey(workerId, stepId, entry.WorkDate, entry.StartMinutes)
			if snap.ProductionKeys[key] || seenKeys[key] {
				result.addWarning(rowNo, "",
					fmt.Sprintf("production record for %s on step %s at %s %s already exists; it will be skipped",
						entry.WorkerName, entry.StepCode, entry.WorkDate.Format("2006-01-02"), utils.ClockString(entry.StartMinutes)))
				duplicatesSkipped++
			} else {
				seenKeys[key] = true
				recordsToCreate++
			}
		}

		payload.Rows = append(payload.Rows, entry)
	}

	if len(payload.Rows) == 0 && result.Valid {
		result.addError(0, "", "no production rows found in upload")
	}

	result.Preview = ProductionHistoryPreview{
		Summary: map[string]int{
			"recordsToCreate":   recordsToCreate,
			"duplicatesSkipped": duplicatesSkipped,
		},
		Workers:  Classify(workers, snap.Workers),
		RowCount: len(payload.Rows),
	}
	if !result.Valid {
		return nil, result
	}
	return payload, result
}
