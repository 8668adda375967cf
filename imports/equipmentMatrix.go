package imports

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CostRowMarker is the sentinel equipment code of the per-worker hourly
// cost row in the equipment matrix.
const CostRowMarker = "_COST"

var equipmentMatrixFields = []FieldSpec{
	{Name: "equipment_code", Keywords: []string{"equipment", "code"}, Required: true},
	{Name: "work_category", Keywords: []string{"work", "categor"}, Required: true},
	{Name: "work_type", Keywords: []string{"type"}},
	{Name: "station_count", Keywords: []string{"station"}},
	{Name: "hourly_cost", Keywords: []string{"cost"}},
}

var truthyCertificationValues = map[string]bool{
	"Y": true, "YES": true, "1": true, "TRUE": true, "X": true,
}

func isCertified(cell string) bool {
	return truthyCertificationValues[strings.ToUpper(strings.TrimSpace(cell))]
}

type EquipmentMatrixSummary struct {
	CategoriesToCreate     int `json:"categoriesToCreate"`
	EquipmentToCreate      int `json:"equipmentToCreate"`
	WorkersToCreate        int `json:"workersToCreate"`
	CertificationsToCreate int `json:"certificationsToCreate"`
}

type EquipmentMatrixPreview struct {
	Summary    EquipmentMatrixSummary `json:"summary"`
	Categories Reconciliation         `json:"categories"`
	Equipment  Reconciliation         `json:"equipment"`
	Workers    Reconciliation         `json:"workers"`
	RowCount   int                    `json:"rowCount"`
}

// ValidateEquipmentMatrix maps, parses and validates an equipment
// matrix table against the snapshot. Worker columns are whatever header
// columns the named fields did not claim; a data row whose equipment
// code is the _COST marker is diverted to per-worker hourly costs.
func ValidateEquipmentMatrix(table RawTable, snap *StoreSnapshot) (*EquipmentMatrixPayload, *ValidationResult) {
	result := newValidationResult()
	if len(table.Rows) == 0 {
		result.addError(0, "", "no rows found in upload")
		return nil, result
	}

	mapping, missing := MapColumns(table.Header(), equipmentMatrixFields)
	if len(missing) > 0 {
		missingColumnsError(result, missing)
		return nil, result
	}

	header := table.Header()
	payload := &EquipmentMatrixPayload{
		WorkerHourlyCosts: map[string]decimal.Decimal{},
	}
	for _, idx := range mapping.Extra {
		payload.Workers = append(payload.Workers, strings.TrimSpace(header[idx]))
	}

	seenCodes := map[string]int{}
	for i, row := range table.DataRows() {
		rowNo := i + 1
		code := strings.TrimSpace(mapping.Cell(row, "equipment_code"))
		if code == "" {
			continue
		}

		if code == CostRowMarker {
			for w, idx := range mapping.Extra {
				cell := ""
				if idx < len(row) {
					cell = strings.TrimSpace(row[idx])
				}
				if cell == "" {
					continue
				}
				cost, err := decimal.NewFromString(cell)
				if err != nil {
					result.addError(rowNo, payload.Workers[w], fmt.Sprintf("invalid hourly cost %q", cell))
					continue
				}
				payload.WorkerHourlyCosts[payload.Workers[w]] = cost
			}
			continue
		}

		if first, dup := seenCodes[code]; dup {
			result.addError(rowNo, "equipment_code",
				fmt.Sprintf("duplicate equipment code %q (first used on row %d)", code, first))
		} else {
			seenCodes[code] = rowNo
		}

		entry := EquipmentRow{
			Code:     code,
			Category: strings.TrimSpace(mapping.Cell(row, "work_category")),
			WorkType: strings.TrimSpace(mapping.Cell(row, "work_type")),
		}
		if cell := strings.TrimSpace(mapping.Cell(row, "station_count")); cell != "" {
			n, err := strconv.Atoi(cell)
			if err != nil || n < 0 {
				result.addError(rowNo, "station_count", fmt.Sprintf("invalid station count %q", cell))
			} else {
				entry.StationCount = n
			}
		}
		if cell := strings.TrimSpace(mapping.Cell(row, "hourly_cost")); cell != "" {
			cost, err := decimal.NewFromString(cell)
			if err != nil {
				result.addError(rowNo, "hourly_cost", fmt.Sprintf("invalid hourly cost %q", cell))
			} else {
				entry.HourlyCost = cost
			}
		}
		for w, idx := range mapping.Extra {
			if idx < len(row) && isCertified(row[idx]) {
				entry.CertifiedWorkers = append(entry.CertifiedWorkers, payload.Workers[w])
			}
		}
		payload.Rows = append(payload.Rows, entry)
	}

	if len(payload.Rows) == 0 && result.Valid {
		result.addError(0, "", "no equipment rows found in upload")
	}

	result.Preview = buildEquipmentMatrixPreview(payload, snap)
	if !result.Valid {
		return nil, result
	}
	return payload, result
}

func buildEquipmentMatrixPreview(payload *EquipmentMatrixPayload, snap *StoreSnapshot) EquipmentMatrixPreview {
	var categories, equipment []string
	for _, row := range payload.Rows {
		if row.Category != "" {
			categories = append(categories, row.Category)
		}
		equipment = append(equipment, row.Code)
	}

	preview := EquipmentMatrixPreview{
		Categories: Classify(categories, snap.Categories),
		Equipment:  Classify(equipment, snap.Equipment),
		Workers:    Classify(payload.Workers, snap.Workers),
		RowCount:   len(payload.Rows),
	}

	certsToCreate := 0
	for _, row := range payload.Rows {
		equipId, equipKnown := snap.Equipment[row.Code]
		for _, worker := range row.CertifiedWorkers {
			workerId, workerKnown := snap.Workers[worker]
			if equipKnown && workerKnown && snap.HasCertification(workerId, equipId) {
				continue
			}
			certsToCreate++
		}
	}

	preview.Summary = EquipmentMatrixSummary{
		CategoriesToCreate:     len(preview.Categories.ToCreate),
		EquipmentToCreate:      len(preview.Equipment.ToCreate),
		WorkersToCreate:        len(preview.Workers.ToCreate),
		CertificationsToCreate: certsToCreate,
	}
	return preview
}
