package imports

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

// EquipmentMatrixExportTable renders the inverse of the equipment
// matrix import: the _COST sentinel row first, then one row per
// equipment with Y cells for certified workers.
func EquipmentMatrixExportTable(workers []string, costs map[string]decimal.Decimal, rows []EquipmentRow) [][]string {
	header := []string{"equipment_code", "work_category", "work_type", "station_count", "hourly_cost"}
	header = append(header, workers...)
	table := [][]string{header}

	costRow := []string{CostRowMarker, "", "Worker Cost Per Hour", "0", "0"}
	for _, w := range workers {
		if cost, ok := costs[w]; ok {
			costRow = append(costRow, cost.String())
		} else {
			costRow = append(costRow, "0")
		}
	}
	table = append(table, costRow)

	for _, row := range rows {
		certified := map[string]bool{}
		for _, w := range row.CertifiedWorkers {
			certified[w] = true
		}
		cells := []string{
			row.Code,
			row.Category,
			row.WorkType,
			strconv.Itoa(row.StationCount),
			row.HourlyCost.String(),
		}
		for _, w := range workers {
			if certified[w] {
				cells = append(cells, "Y")
			} else {
				cells = append(cells, "")
			}
		}
		table = append(table, cells)
	}
	return table
}

// FormatDependencyCell is the inverse of ParseDependencyCell: finish
// edges render as a bare CODE, start edges as CODE:start.
func FormatDependencyCell(deps []DependencyRef) string {
	parts := make([]string, 0, len(deps))
	for _, dep := range deps {
		if dep.Type == DependencyTypeStart {
			parts = append(parts, dep.Code+":start")
		} else {
			parts = append(parts, dep.Code)
		}
	}
	return strings.Join(parts, ",")
}

func ProductStepsExportTable(entries []StepEntry) [][]string {
	table := [][]string{{
		"product_name", "version_name", "version_number", "is_default",
		"step_code", "external_id", "category", "component", "task_name",
		"time_seconds", "equipment_code", "dependencies",
	}}
	for _, e := range entries {
		isDefault := ""
		if e.IsDefault {
			isDefault = "Y"
		}
		table = append(table, []string{
			e.ProductName,
			e.VersionName,
			strconv.Itoa(e.VersionNumber),
			isDefault,
			e.StepCode,
			e.ExternalId,
			e.Category,
			e.Component,
			e.TaskName,
			strconv.Itoa(e.TimeSeconds),
			e.EquipmentCode,
			FormatDependencyCell(e.Dependencies),
		})
	}
	return table
}

func ProductionHistoryExportTable(rows []ProductionRow) [][]string {
	table := [][]string{{
		"product_name", "due_date", "version_name", "step_code",
		"worker_name", "work_date", "start_time", "end_time", "units_produced",
	}}
	for _, r := range rows {
		dueDate := ""
		if !r.DueDate.IsZero() {
			dueDate = r.DueDate.Format("2006-01-02")
		}
		table = append(table, []string{
			r.ProductName,
			dueDate,
			r.VersionName,
			r.StepCode,
			r.WorkerName,
			r.WorkDate.Format("2006-01-02"),
			utils.ClockString(r.StartMinutes),
			utils.ClockString(r.EndMinutes),
			strconv.Itoa(r.UnitsProduced),
		})
	}
	return table
}

// RenderTable serializes cells to delimited text. The comma form goes
// through encoding/csv so embedded delimiters and quotes are escaped;
// tab cells never legitimately contain tabs in these exports.
func RenderTable(cells [][]string, delimiter Delimiter) string {
	if delimiter == DelimiterTab {
		var b strings.Builder
		for _, row := range cells {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		return b.String()
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(cells)
	w.Flush()
	return buf.String()
}
