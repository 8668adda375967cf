package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"gorm.io/gorm"
)

// ProductionRecord is one historical execution: a worker ran a step for
// part of a day and produced some units. Natural key is
// (worker, step, work date, start time); records are never deduplicated
// by content.
type ProductionRecord struct {
	ID            int       `gorm:"primary_key" json:"id"`
	WorkerId      int       `gorm:"uniqueIndex:idx_production_natural;not null" json:"worker_id"`
	StepId        int       `gorm:"uniqueIndex:idx_production_natural;not null" json:"step_id"`
	OrderId       *int      `gorm:"index" json:"order_id"`
	WorkDate      time.Time `gorm:"uniqueIndex:idx_production_natural;type:date;not null" json:"work_date"`
	StartMinutes  int       `gorm:"uniqueIndex:idx_production_natural;not null" json:"start_minutes"`
	EndMinutes    int       `gorm:"not null" json:"end_minutes"`
	UnitsProduced int       `gorm:"not null" json:"units_produced"`
	// ExpectedSeconds is the step's time-per-piece times units;
	// ActualSeconds the clocked span. Efficiency above 100 means faster
	// than standard.
	ExpectedSeconds   int       `gorm:"not null" json:"expected_seconds"`
	ActualSeconds     int       `gorm:"not null" json:"actual_seconds"`
	EfficiencyPercent float64   `gorm:"not null" json:"efficiency_percent"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type TaskCompletionInput struct {
	WorkerId      int    `json:"workerId"`
	WorkerName    string `json:"workerName"`
	StepId        int    `json:"stepId" binding:"required"`
	OrderId       *int   `json:"orderId"`
	WorkDate      string `json:"workDate" binding:"required"`
	StartTime     string `json:"startTime" binding:"required,clock"`
	EndTime       string `json:"endTime" binding:"required,clock"`
	UnitsProduced int    `json:"unitsProduced" binding:"required,gt=0"`
}

// CompleteTask records a finished task and recomputes the pair's
// rolling performance aggregate.
func CompleteTask(ctx context.Context, input *TaskCompletionInput) (*ProductionRecord, error) {
	db := config.GetDB()

	var worker Worker
	if input.WorkerId > 0 {
		if err := db.WithContext(ctx).First(&worker, "id = ?", input.WorkerId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
	} else {
		if err := db.WithContext(ctx).First(&worker, "name = ?", input.WorkerName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
	}

	var step Step
	if err := db.WithContext(ctx).First(&step, "id = ?", input.StepId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	workDate, err := utils.ParseWorkDate(input.WorkDate)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseClock(input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseClock(input.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("end time %s is not after start time %s", input.EndTime, input.StartTime)
	}

	var existing int64
	err = db.WithContext(ctx).Model(&ProductionRecord{}).
		Where("worker_id = ? AND step_id = ? AND work_date = ? AND start_minutes = ?",
			worker.ID, step.ID, workDate, start).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("production record for worker %q step %q at %s %s already exists",
			worker.Name, step.Code, input.WorkDate, input.StartTime)
	}

	record := buildProductionRecord(worker.ID, step.ID, input.OrderId, workDate, start, end,
		input.UnitsProduced, step.TimePerPieceSeconds)
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	if err := UpdateWorkerStepPerformance(ctx, worker.ID, step.ID); err != nil {
		return nil, err
	}
	return record, nil
}

func buildProductionRecord(workerId, stepId int, orderId *int, workDate time.Time, startMinutes, endMinutes, units, timePerPieceSeconds int) *ProductionRecord {
	expected := timePerPieceSeconds * units
	actual := (endMinutes - startMinutes) * 60
	efficiency := 0.0
	if actual > 0 {
		efficiency = float64(expected) / float64(actual) * 100
	}
	return &ProductionRecord{
		WorkerId:          workerId,
		StepId:            stepId,
		OrderId:           orderId,
		WorkDate:          workDate,
		StartMinutes:      startMinutes,
		EndMinutes:        endMinutes,
		UnitsProduced:     units,
		ExpectedSeconds:   expected,
		ActualSeconds:     actual,
		EfficiencyPercent: efficiency,
	}
}
