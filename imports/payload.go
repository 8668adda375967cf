package imports

import (
	"time"

	"github.com/shopspring/decimal"
)

type DependencyType string

const (
	DependencyTypeStart  DependencyType = "start"
	DependencyTypeFinish DependencyType = "finish"
)

// EquipmentRow is one ordinary row of the equipment matrix.
type EquipmentRow struct {
	Code         string          `json:"code"`
	Category     string          `json:"category"`
	WorkType     string          `json:"workType"`
	StationCount int             `json:"stationCount"`
	HourlyCost   decimal.Decimal `json:"hourlyCost"`
	// CertifiedWorkers lists worker column names whose cell was truthy.
	CertifiedWorkers []string `json:"certifiedWorkers"`
}

// EquipmentMatrixPayload is the parsed equipment matrix. The _COST
// sentinel row lands in WorkerHourlyCosts instead of Rows.
type EquipmentMatrixPayload struct {
	Workers           []string                   `json:"workers"`
	Rows              []EquipmentRow             `json:"rows"`
	WorkerHourlyCosts map[string]decimal.Decimal `json:"workerHourlyCosts"`
}

// DependencyRef is one edge of the dependency cell micro-syntax:
// "CODE" (implicit finish) or "CODE:start" / "CODE:finish".
type DependencyRef struct {
	Code       string         `json:"code"`
	Type       DependencyType `json:"type"`
	LagSeconds int            `json:"lagSeconds"`
}

// StepEntry is one step definition row of a products or product-steps
// upload.
type StepEntry struct {
	ProductName   string          `json:"productName"`
	VersionName   string          `json:"versionName"`
	VersionNumber int             `json:"versionNumber"`
	IsDefault     bool            `json:"isDefault"`
	StepCode      string          `json:"stepCode"`
	ExternalId    string          `json:"externalId"`
	Category      string          `json:"category"`
	Component     string          `json:"component"`
	TaskName      string          `json:"taskName"`
	TimeSeconds   int             `json:"timeSeconds"`
	EquipmentCode string          `json:"equipmentCode"`
	Dependencies  []DependencyRef `json:"dependencies"`
}

type ProductStepsPayload struct {
	Entries []StepEntry `json:"entries"`
}

type OrderRow struct {
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
}

type OrdersPayload struct {
	Rows []OrderRow `json:"rows"`
}

// ProductionRow is one historical execution record. Start/End are
// minutes since midnight.
type ProductionRow struct {
	ProductName   string    `json:"productName"`
	VersionName   string    `json:"versionName"`
	DueDate       time.Time `json:"dueDate"`
	StepCode      string    `json:"stepCode"`
	WorkerName    string    `json:"workerName"`
	WorkDate      time.Time `json:"workDate"`
	StartMinutes  int       `json:"startMinutes"`
	EndMinutes    int       `json:"endMinutes"`
	UnitsProduced int       `json:"unitsProduced"`
}

type ProductionHistoryPayload struct {
	Rows []ProductionRow `json:"rows"`
	// HasOrderLinkage is false for raw production-data sheets, which
	// carry no due date to resolve an order by.
	HasOrderLinkage bool `json:"hasOrderLinkage"`
}
