package main

import (
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/imports"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// exportTableFor assembles the export table for one kind. The tables
// are the exact inverse of the corresponding import layout, so an
// export-then-reimport round-trips.
func exportTableFor(c *gin.Context, kind string) ([][]string, error) {
	ctx := c.Request.Context()
	switch kind {
	case "equipment-matrix":
		workers, costs, rows, err := models.ExportEquipmentMatrix(ctx)
		if err != nil {
			return nil, err
		}
		return imports.EquipmentMatrixExportTable(workers, costs, rows), nil
	case "products":
		entries, err := models.ExportProductSteps(ctx)
		if err != nil {
			return nil, err
		}
		return imports.ProductStepsExportTable(entries), nil
	case "production-history":
		rows, err := models.ExportProductionHistory(ctx)
		if err != nil {
			return nil, err
		}
		return imports.ProductionHistoryExportTable(rows), nil
	}
	return nil, fmt.Errorf("unknown export kind %q", kind)
}

func exportHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		table, err := exportTableFor(c, kind)
		if err != nil {
			config.LogError(logger, "exportHandlers.go", "exportHandler", "exportTableFor", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}

		switch c.DefaultQuery("format", "csv") {
		case "xlsx":
			writeXlsx(c, kind, table)
		case "tsv":
			c.Header("Content-Type", "text/tab-separated-values")
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.tsv", kind))
			c.String(http.StatusOK, imports.RenderTable(table, imports.DelimiterTab))
		default:
			c.Header("Content-Type", "text/csv")
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", kind))
			c.String(http.StatusOK, imports.RenderTable(table, imports.DelimiterComma))
		}
	}
}

func writeXlsx(c *gin.Context, kind string, table [][]string) {
	logger := config.GetLogger()

	f := excelize.NewFile()
	for rowIdx, row := range table {
		for colIdx, cell := range row {
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				config.LogError(logger, "exportHandlers.go", "writeXlsx", "CoordinatesToCellName", kind, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
				return
			}
			f.SetCellValue("Sheet1", name, cell)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", kind))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		config.LogError(logger, "exportHandlers.go", "writeXlsx", "f.Write", kind, err)
	}
}
