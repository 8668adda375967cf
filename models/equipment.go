package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Equipment struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Code           string          `gorm:"uniqueIndex;size:50;not null" json:"code"`
	WorkCategoryId int             `gorm:"index" json:"work_category_id"`
	WorkType       string          `gorm:"size:200" json:"work_type"`
	StationCount   int             `gorm:"default:0" json:"station_count"`
	HourlyCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hourly_cost"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
