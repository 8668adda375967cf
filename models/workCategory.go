package models

import "time"

// WorkCategory groups steps and equipment by the kind of labor
// involved (Cutting, Sewing, ...). Looked up or created by exact name.
type WorkCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
