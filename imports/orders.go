package imports

import (
	"fmt"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

var orderFields = []FieldSpec{
	{Name: "product_name", Keywords: []string{"product"}, Required: true},
	{Name: "quantity", Keywords: []string{"quantit"}, Required: true},
	{Name: "due_date", Keywords: []string{"due"}, Required: true},
	{Name: "status", Keywords: []string{"status"}},
}

var orderStatuses = map[string]bool{
	"pending": true, "in_progress": true, "completed": true, "cancelled": true,
}

type OrdersPreview struct {
	Summary  map[string]int `json:"summary"`
	RowCount int            `json:"rowCount"`
}

// ValidateOrders validates an orders upload. Products must already
// exist; an orders upload never creates them.
func ValidateOrders(table RawTable, snap *StoreSnapshot) (*OrdersPayload, *ValidationResult) {
	result := newValidationResult()
	if len(table.Rows) == 0 {
		result.addError(0, "", "no rows found in upload")
		return nil, result
	}

	mapping, missing := MapColumns(table.Header(), orderFields)
	if len(missing) > 0 {
		missingColumnsError(result, missing)
		return nil, result
	}

	payload := &OrdersPayload{}
	ordersToCreate := 0
	for i, row := range table.DataRows() {
		rowNo := i + 1
		entry := OrderRow{
			ProductName: strings.TrimSpace(mapping.Cell(row, "product_name")),
			Status:      strings.TrimSpace(mapping.Cell(row, "status")),
		}
		if entry.ProductName == "" {
			continue
		}

		productId, productKnown := snap.Products[entry.ProductName]
		if !productKnown {
			result.addError(rowNo, "product_name",
				fmt.Sprintf("product %q does not exist; import products first", entry.ProductName))
		}

		cell := strings.TrimSpace(mapping.Cell(row, "quantity"))
		n, err := strconv.Atoi(cell)
		if err != nil || n <= 0 {
			result.addError(rowNo, "quantity", fmt.Sprintf("invalid quantity %q", cell))
		} else {
			entry.Quantity = n
		}

		due, err := utils.ParseWorkDate(mapping.Cell(row, "due_date"))
		if err != nil {
			result.addError(rowNo, "due_date", err.Error())
		} else {
			entry.DueDate = due
		}

		if entry.Status == "" {
			entry.Status = "pending"
		} else if !orderStatuses[entry.Status] {
			result.addError(rowNo, "status", fmt.Sprintf("invalid order status %q", entry.Status))
		}

		if productKnown && !entry.DueDate.IsZero() {
			if snap.OrderKeys[OrderKey(productId, entry.DueDate)] {
				result.addWarning(rowNo, "",
					fmt.Sprintf("order for %q due %s already exists; it will be skipped", entry.ProductName, entry.DueDate.Format("2006-01-02")))
			} else {
				ordersToCreate++
			}
		}

		payload.Rows = append(payload.Rows, entry)
	}

	if len(payload.Rows) == 0 && result.Valid {
		result.addError(0, "", "no order rows found in upload")
	}

	result.Preview = OrdersPreview{
		Summary:  map[string]int{"ordersToCreate": ordersToCreate},
		RowCount: len(payload.Rows),
	}
	if !result.Valid {
		return nil, result
	}
	return payload, result
}
