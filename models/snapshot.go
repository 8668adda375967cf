package models

import (
	"context"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/imports"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// LoadStoreSnapshot reads every natural key the validators and the
// reconciler resolve against. Preview takes one for display; the commit
// executor takes a fresh one because other writers may have inserted
// rows since.
func LoadStoreSnapshot(ctx context.Context) (*imports.StoreSnapshot, error) {
	db := config.GetDB()
	snap := imports.NewStoreSnapshot()

	var categories []WorkCategory
	if err := db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, c := range categories {
		snap.Categories[c.Name] = c.ID
	}

	var equipment []Equipment
	if err := db.WithContext(ctx).Find(&equipment).Error; err != nil {
		return nil, err
	}
	for _, e := range equipment {
		snap.Equipment[e.Code] = e.ID
	}

	var workers []Worker
	if err := db.WithContext(ctx).Find(&workers).Error; err != nil {
		return nil, err
	}
	for _, w := range workers {
		snap.Workers[w.Name] = w.ID
	}

	var components []Component
	if err := db.WithContext(ctx).Find(&components).Error; err != nil {
		return nil, err
	}
	for _, c := range components {
		snap.Components[c.Name] = c.ID
	}

	var products []Product
	if err := db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	productNames := map[int]string{}
	for _, p := range products {
		snap.Products[p.Name] = p.ID
		productNames[p.ID] = p.Name
	}

	var versions []ProductVersion
	if err := db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}
	for _, v := range versions {
		name, ok := productNames[v.ProductId]
		if !ok {
			continue
		}
		snap.Versions[imports.VersionKey(name, v.Name)] = v.ID
		if utils.DereferencePtr(v.IsDefault) {
			snap.DefaultVersions[name] = v.ID
		}
	}

	var steps []Step
	if err := db.WithContext(ctx).Find(&steps).Error; err != nil {
		return nil, err
	}
	for _, s := range steps {
		if snap.Steps[s.ProductVersionId] == nil {
			snap.Steps[s.ProductVersionId] = map[string]int{}
		}
		snap.Steps[s.ProductVersionId][s.Code] = s.ID
	}

	var certifications []WorkerCertification
	if err := db.WithContext(ctx).Find(&certifications).Error; err != nil {
		return nil, err
	}
	for _, c := range certifications {
		if snap.Certifications[c.WorkerId] == nil {
			snap.Certifications[c.WorkerId] = map[int]bool{}
		}
		snap.Certifications[c.WorkerId][c.EquipmentId] = true
	}

	var orders []Order
	if err := db.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, o := range orders {
		snap.OrderKeys[imports.OrderKey(o.ProductId, o.DueDate)] = true
	}

	var records []ProductionRecord
	if err := db.WithContext(ctx).
		Select("worker_id", "step_id", "work_date", "start_minutes").
		Find(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		snap.ProductionKeys[imports.ProductionKey(r.WorkerId, r.StepId, r.WorkDate, r.StartMinutes)] = true
	}

	return snap, nil
}
