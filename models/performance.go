package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"gorm.io/gorm"
)

// WorkerProficiency is the ordinal 1-5 classification of a worker's
// historical speed on a step, recomputed in bulk by
// DeriveProficiencies.
type WorkerProficiency struct {
	ID                int       `gorm:"primary_key" json:"id"`
	WorkerId          int       `gorm:"uniqueIndex:idx_proficiency_pair;not null" json:"worker_id"`
	StepId            int       `gorm:"uniqueIndex:idx_proficiency_pair;not null" json:"step_id"`
	Level             int       `gorm:"not null" json:"level"`
	EfficiencyPercent float64   `gorm:"not null" json:"efficiency_percent"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WorkerStepPerformance is the rolling per-pair aggregate maintained
// after each task completion.
type WorkerStepPerformance struct {
	ID                   int       `gorm:"primary_key" json:"id"`
	WorkerId             int       `gorm:"uniqueIndex:idx_performance_pair;not null" json:"worker_id"`
	StepId               int       `gorm:"uniqueIndex:idx_performance_pair;not null" json:"step_id"`
	TotalUnits           int       `gorm:"not null" json:"total_units"`
	TotalActualSeconds   int       `gorm:"not null" json:"total_actual_seconds"`
	TotalExpectedSeconds int       `gorm:"not null" json:"total_expected_seconds"`
	OverallEfficiency    float64   `gorm:"not null" json:"overall_efficiency"`
	RecentEfficiency     float64   `gorm:"not null" json:"recent_efficiency"`
	Trend                Trend     `gorm:"type:enum('improving','stable','declining');default:'stable';not null" json:"trend"`
	LastCalculatedAt     time.Time `gorm:"not null" json:"last_calculated_at"`
}

// ProficiencyLevelFor maps an efficiency percentage to the 1-5 ordinal
// scale. Thresholds are empirically tuned, not derived.
func ProficiencyLevelFor(efficiencyPercent float64) int {
	switch {
	case efficiencyPercent < 60:
		return 1
	case efficiencyPercent < 80:
		return 2
	case efficiencyPercent < 100:
		return 3
	case efficiencyPercent < 120:
		return 4
	default:
		return 5
	}
}

// classifyTrend compares the recent-window efficiency against the
// overall one. Fewer than 3 recent samples cannot move the needle.
func classifyTrend(recentSamples int, recentEfficiency, overallEfficiency float64) Trend {
	if recentSamples < 3 {
		return TrendStable
	}
	if recentEfficiency > overallEfficiency*1.05 {
		return TrendImproving
	}
	if recentEfficiency < overallEfficiency*0.95 {
		return TrendDeclining
	}
	return TrendStable
}

type proficiencyAggregate struct {
	WorkerId            int
	StepId              int
	TimePerPieceSeconds int
	TotalUnits          int
	TotalActualSeconds  int
}

// DeriveProficiencies recomputes the proficiency level of every
// (worker, step) pair that has at least one production record, and
// upserts one row per pair. Returns the number of pairs written.
func DeriveProficiencies(ctx context.Context) (int, error) {
	db := config.GetDB()

	sql := `
SELECT
    pr.worker_id,
    pr.step_id,
    s.time_per_piece_seconds,
    SUM(pr.units_produced) AS total_units,
    SUM(pr.actual_seconds) AS total_actual_seconds
FROM
    production_records pr
    JOIN steps s ON s.id = pr.step_id
GROUP BY
    pr.worker_id, pr.step_id, s.time_per_piece_seconds
`
	var aggregates []proficiencyAggregate
	if err := db.WithContext(ctx).Raw(sql).Scan(&aggregates).Error; err != nil {
		return 0, err
	}

	for _, agg := range aggregates {
		if agg.TotalActualSeconds <= 0 {
			continue
		}
		efficiency := float64(agg.TimePerPieceSeconds*agg.TotalUnits) / float64(agg.TotalActualSeconds) * 100

		var existing WorkerProficiency
		err := db.WithContext(ctx).
			Where("worker_id = ? AND step_id = ?", agg.WorkerId, agg.StepId).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := WorkerProficiency{
				WorkerId:          agg.WorkerId,
				StepId:            agg.StepId,
				Level:             ProficiencyLevelFor(efficiency),
				EfficiencyPercent: efficiency,
			}
			if err := db.WithContext(ctx).Create(&row).Error; err != nil {
				return 0, err
			}
		case err != nil:
			return 0, err
		default:
			existing.Level = ProficiencyLevelFor(efficiency)
			existing.EfficiencyPercent = efficiency
			if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
				return 0, err
			}
		}
	}
	return len(aggregates), nil
}

const (
	performanceWindow = 20
	recentWindow      = 5
)

// UpdateWorkerStepPerformance recomputes the rolling aggregate for one
// (worker, step) pair from its most recent production records. The
// trend is a recency-weighted heuristic, not a forecast.
func UpdateWorkerStepPerformance(ctx context.Context, workerId, stepId int) error {
	db := config.GetDB()

	var records []ProductionRecord
	err := db.WithContext(ctx).
		Where("worker_id = ? AND step_id = ?", workerId, stepId).
		Order("work_date DESC, start_minutes DESC").
		Limit(performanceWindow).
		Find(&records).Error
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var totalUnits, totalActual, totalExpected int
	for _, r := range records {
		totalUnits += r.UnitsProduced
		totalActual += r.ActualSeconds
		totalExpected += r.ExpectedSeconds
	}
	overall := 0.0
	if totalActual > 0 {
		overall = float64(totalExpected) / float64(totalActual) * 100
	}

	recentCount := len(records)
	if recentCount > recentWindow {
		recentCount = recentWindow
	}
	var recentActual, recentExpected int
	for _, r := range records[:recentCount] {
		recentActual += r.ActualSeconds
		recentExpected += r.ExpectedSeconds
	}
	recent := 0.0
	if recentActual > 0 {
		recent = float64(recentExpected) / float64(recentActual) * 100
	}

	performance := WorkerStepPerformance{
		WorkerId:             workerId,
		StepId:               stepId,
		TotalUnits:           totalUnits,
		TotalActualSeconds:   totalActual,
		TotalExpectedSeconds: totalExpected,
		OverallEfficiency:    overall,
		RecentEfficiency:     recent,
		Trend:                classifyTrend(recentCount, recent, overall),
		LastCalculatedAt:     time.Now(),
	}

	var existing WorkerStepPerformance
	err = db.WithContext(ctx).
		Where("worker_id = ? AND step_id = ?", workerId, stepId).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(&performance).Error
	case err != nil:
		return err
	default:
		performance.ID = existing.ID
		return db.WithContext(ctx).Save(&performance).Error
	}
}

// GetWorkerPerformance is the read side for the surrounding UI.
func GetWorkerPerformance(ctx context.Context, workerId int) ([]WorkerStepPerformance, error) {
	db := config.GetDB()
	var rows []WorkerStepPerformance
	err := db.WithContext(ctx).
		Where("worker_id = ?", workerId).
		Order("step_id ASC").
		Find(&rows).Error
	return rows, err
}
