package models

import (
	"context"
	"sort"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/imports"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/shopspring/decimal"
)

// ExportEquipmentMatrix assembles the inverse of the equipment matrix
// import from the store.
func ExportEquipmentMatrix(ctx context.Context) ([]string, map[string]decimal.Decimal, []imports.EquipmentRow, error) {
	db := config.GetDB()

	var workers []Worker
	if err := db.WithContext(ctx).Order("name ASC").Find(&workers).Error; err != nil {
		return nil, nil, nil, err
	}
	workerNames := make([]string, 0, len(workers))
	workerNameById := map[int]string{}
	costs := map[string]decimal.Decimal{}
	for _, w := range workers {
		workerNames = append(workerNames, w.Name)
		workerNameById[w.ID] = w.Name
		costs[w.Name] = w.HourlyCost
	}

	var categories []WorkCategory
	if err := db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, nil, nil, err
	}
	categoryNames := map[int]string{}
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	var certifications []WorkerCertification
	if err := db.WithContext(ctx).Find(&certifications).Error; err != nil {
		return nil, nil, nil, err
	}
	certifiedWorkers := map[int][]string{}
	for _, c := range certifications {
		if name, ok := workerNameById[c.WorkerId]; ok {
			certifiedWorkers[c.EquipmentId] = append(certifiedWorkers[c.EquipmentId], name)
		}
	}

	var equipment []Equipment
	if err := db.WithContext(ctx).Order("code ASC").Find(&equipment).Error; err != nil {
		return nil, nil, nil, err
	}
	rows := make([]imports.EquipmentRow, 0, len(equipment))
	for _, e := range equipment {
		certified := certifiedWorkers[e.ID]
		sort.Strings(certified)
		rows = append(rows, imports.EquipmentRow{
			Code:             e.Code,
			Category:         categoryNames[e.WorkCategoryId],
			WorkType:         e.WorkType,
			StationCount:     e.StationCount,
			HourlyCost:       e.HourlyCost,
			CertifiedWorkers: certified,
		})
	}
	return workerNames, costs, rows, nil
}

// ExportProductSteps assembles the product catalog with steps and
// dependency cells, the inverse of the products import.
func ExportProductSteps(ctx context.Context) ([]imports.StepEntry, error) {
	db := config.GetDB()

	var products []Product
	if err := db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	productNames := map[int]string{}
	for _, p := range products {
		productNames[p.ID] = p.Name
	}

	var versions []ProductVersion
	if err := db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}
	versionById := map[int]ProductVersion{}
	for _, v := range versions {
		versionById[v.ID] = v
	}

	var categories []WorkCategory
	if err := db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, err
	}
	categoryNames := map[int]string{}
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	var components []Component
	if err := db.WithContext(ctx).Find(&components).Error; err != nil {
		return nil, err
	}
	componentNames := map[int]string{}
	for _, c := range components {
		componentNames[c.ID] = c.Name
	}

	var equipment []Equipment
	if err := db.WithContext(ctx).Find(&equipment).Error; err != nil {
		return nil, err
	}
	equipmentCodes := map[int]string{}
	for _, e := range equipment {
		equipmentCodes[e.ID] = e.Code
	}

	var steps []Step
	if err := db.WithContext(ctx).Order("product_version_id ASC, code ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	stepById := map[int]Step{}
	for _, s := range steps {
		stepById[s.ID] = s
	}

	var edges []StepDependency
	if err := db.WithContext(ctx).Order("id ASC").Find(&edges).Error; err != nil {
		return nil, err
	}
	dependencies := map[int][]imports.DependencyRef{}
	for _, edge := range edges {
		target, ok := stepById[edge.DependsOnStepId]
		if !ok {
			continue
		}
		dependencies[edge.StepId] = append(dependencies[edge.StepId], imports.DependencyRef{
			Code:       target.Code,
			Type:       imports.DependencyType(edge.Type),
			LagSeconds: edge.LagSeconds,
		})
	}

	var entries []imports.StepEntry
	for _, s := range steps {
		version, ok := versionById[s.ProductVersionId]
		if !ok {
			continue
		}
		entry := imports.StepEntry{
			ProductName:   productNames[version.ProductId],
			VersionName:   version.Name,
			VersionNumber: version.Number,
			IsDefault:     utils.DereferencePtr(version.IsDefault),
			StepCode:      s.Code,
			ExternalId:    s.ExternalId,
			Category:      categoryNames[s.WorkCategoryId],
			TaskName:      s.TaskName,
			TimeSeconds:   s.TimePerPieceSeconds,
			Dependencies:  dependencies[s.ID],
		}
		if s.ComponentId != nil {
			entry.Component = componentNames[*s.ComponentId]
		}
		if s.EquipmentId != nil {
			entry.EquipmentCode = equipmentCodes[*s.EquipmentId]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ExportProductionHistory assembles production records in the converted
// history layout.
func ExportProductionHistory(ctx context.Context) ([]imports.ProductionRow, error) {
	db := config.GetDB()

	var workers []Worker
	if err := db.WithContext(ctx).Find(&workers).Error; err != nil {
		return nil, err
	}
	workerNames := map[int]string{}
	for _, w := range workers {
		workerNames[w.ID] = w.Name
	}

	var products []Product
	if err := db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	productNames := map[int]string{}
	for _, p := range products {
		productNames[p.ID] = p.Name
	}

	var versions []ProductVersion
	if err := db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}
	versionById := map[int]ProductVersion{}
	for _, v := range versions {
		versionById[v.ID] = v
	}

	var steps []Step
	if err := db.WithContext(ctx).Find(&steps).Error; err != nil {
		return nil, err
	}
	stepById := map[int]Step{}
	for _, s := range steps {
		stepById[s.ID] = s
	}

	var orders []Order
	if err := db.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, err
	}
	orderById := map[int]Order{}
	for _, o := range orders {
		orderById[o.ID] = o
	}

	var records []ProductionRecord
	err := db.WithContext(ctx).
		Order("work_date ASC, start_minutes ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	var rows []imports.ProductionRow
	for _, r := range records {
		step, ok := stepById[r.StepId]
		if !ok {
			continue
		}
		version := versionById[step.ProductVersionId]
		row := imports.ProductionRow{
			ProductName:   productNames[version.ProductId],
			VersionName:   version.Name,
			StepCode:      step.Code,
			WorkerName:    workerNames[r.WorkerId],
			WorkDate:      r.WorkDate,
			StartMinutes:  r.StartMinutes,
			EndMinutes:    r.EndMinutes,
			UnitsProduced: r.UnitsProduced,
		}
		if r.OrderId != nil {
			if order, ok := orderById[*r.OrderId]; ok {
				row.DueDate = order.DueDate
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
