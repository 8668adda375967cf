package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Worker struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Name       string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	HourlyCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hourly_cost"`
	IsActive   *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// WorkerCertification is the junction row saying a worker may run a
// piece of equipment. The unique index is what turns a concurrent
// duplicate insert into a benign error on commit.
type WorkerCertification struct {
	ID          int       `gorm:"primary_key" json:"id"`
	WorkerId    int       `gorm:"uniqueIndex:idx_worker_equipment;not null" json:"worker_id"`
	EquipmentId int       `gorm:"uniqueIndex:idx_worker_equipment;not null" json:"equipment_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
