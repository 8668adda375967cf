package models

import "time"

// Step is one labor operation of a product version, with an expected
// time-per-piece and an optional equipment requirement.
type Step struct {
	ID                  int       `gorm:"primary_key" json:"id"`
	ProductVersionId    int       `gorm:"uniqueIndex:idx_version_code;not null" json:"product_version_id"`
	Code                string    `gorm:"uniqueIndex:idx_version_code;size:50;not null" json:"code"`
	ExternalId          string    `gorm:"size:50" json:"external_id"`
	WorkCategoryId      int       `gorm:"index" json:"work_category_id"`
	ComponentId         *int      `gorm:"index" json:"component_id"`
	TaskName            string    `gorm:"size:200" json:"task_name"`
	TimePerPieceSeconds int       `gorm:"not null" json:"time_per_piece_seconds"`
	EquipmentId         *int      `gorm:"index" json:"equipment_id"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StepDependency is one ordering edge: StepId depends on
// DependsOnStepId. Restricted to one version the edge set is acyclic;
// imports enforce that before anything is written.
type StepDependency struct {
	ID              int            `gorm:"primary_key" json:"id"`
	StepId          int            `gorm:"uniqueIndex:idx_step_dependency;not null" json:"step_id"`
	DependsOnStepId int            `gorm:"uniqueIndex:idx_step_dependency;not null" json:"depends_on_step_id"`
	Type            DependencyType `gorm:"type:enum('start','finish');default:'finish';not null" json:"type"`
	LagSeconds      int            `gorm:"default:0" json:"lag_seconds"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
