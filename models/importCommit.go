package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/imports"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/bsm/redislock"
	mysqlDriver "github.com/go-sql-driver/mysql"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// acquireCommitLock serializes concurrent commits of the same kind.
// Redis lock is a best-effort optimization: correctness does not depend
// on it, because unique indexes reject the loser of a create-create
// race and the executor treats that as "already exists".
func acquireCommitLock(ctx context.Context, kind string) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	lock, err := locker.Obtain(ctx, "import-commit:"+kind, 60*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(250*time.Millisecond), 8),
	})
	if err != nil {
		// Including ErrNotObtained: proceed unlocked.
		return func() {}
	}
	return func() { _ = lock.Release(context.Background()) }
}

type EquipmentMatrixResult struct {
	CategoriesCreated     int `json:"categoriesCreated"`
	EquipmentCreated      int `json:"equipmentCreated"`
	WorkersCreated        int `json:"workersCreated"`
	CertificationsCreated int `json:"certificationsCreated"`
}

// ExecuteEquipmentMatrixImport replays a validated equipment matrix
// into the store in dependency order: categories, equipment, workers,
// certifications. Every insert is preceded by an existence check
// against a freshly re-read snapshot, so re-running an identical
// import is a no-op.
func ExecuteEquipmentMatrixImport(ctx context.Context, payload *imports.EquipmentMatrixPayload) (*EquipmentMatrixResult, error) {
	db := config.GetDB()
	logger := config.GetLogger()
	release := acquireCommitLock(ctx, "equipment-matrix")
	defer release()

	snap, err := LoadStoreSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := &EquipmentMatrixResult{}

	// (1) work categories
	for _, row := range payload.Rows {
		if row.Category == "" {
			continue
		}
		if _, ok := snap.Categories[row.Category]; ok {
			continue
		}
		category := WorkCategory{Name: row.Category}
		if err := db.WithContext(ctx).Create(&category).Error; err != nil {
			if isDuplicateKeyErr(err) {
				continue
			}
			return result, err
		}
		snap.Categories[row.Category] = category.ID
		result.CategoriesCreated++
	}

	// (2) equipment
	for _, row := range payload.Rows {
		if _, ok := snap.Equipment[row.Code]; ok {
			continue
		}
		equipment := Equipment{
			Code:           row.Code,
			WorkCategoryId: snap.Categories[row.Category],
			WorkType:       row.WorkType,
			StationCount:   row.StationCount,
			HourlyCost:     row.HourlyCost,
		}
		if err := db.WithContext(ctx).Create(&equipment).Error; err != nil {
			if isDuplicateKeyErr(err) {
				continue
			}
			return result, err
		}
		snap.Equipment[row.Code] = equipment.ID
		result.EquipmentCreated++
	}

	// (3) workers
	for _, name := range payload.Workers {
		if _, ok := snap.Workers[name]; ok {
			continue
		}
		worker := Worker{
			Name:       name,
			HourlyCost: payload.WorkerHourlyCosts[name],
			IsActive:   utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&worker).Error; err != nil {
			if isDuplicateKeyErr(err) {
				continue
			}
			return result, err
		}
		snap.Workers[name] = worker.ID
		result.WorkersCreated++
	}

	// (4) certifications: junction rows are skipped, never
	// batch-failing, when either side fails to resolve or the unique
	// index rejects a duplicate.
	for _, row := range payload.Rows {
		equipmentId, ok := snap.Equipment[row.Code]
		if !ok {
			config.LogWarn(logger, "importCommit.go", "ExecuteEquipmentMatrixImport",
				fmt.Sprintf("skipping certifications for unresolved equipment %q", row.Code))
			continue
		}
		for _, workerName := range row.CertifiedWorkers {
			workerId, ok := snap.Workers[workerName]
			if !ok {
				config.LogWarn(logger, "importCommit.go", "ExecuteEquipmentMatrixImport",
					fmt.Sprintf("skipping certification for unresolved worker %q", workerName))
				continue
			}
			if snap.HasCertification(workerId, equipmentId) {
				continue
			}
			certification := WorkerCertification{WorkerId: workerId, EquipmentId: equipmentId}
			if err := db.WithContext(ctx).Create(&certification).Error; err != nil {
				if isDuplicateKeyErr(err) {
					continue
				}
				return result, err
			}
			if snap.Certifications[workerId] == nil {
				snap.Certifications[workerId] = map[int]bool{}
			}
			snap.Certifications[workerId][equipmentId] = true
			result.CertificationsCreated++
		}
	}

	return result, nil
}

type ProductStepsResult struct {
	ProductsCreated     int `json:"productsCreated"`
	VersionsCreated     int `json:"versionsCreated"`
	CategoriesCreated   int `json:"categoriesCreated"`
	ComponentsCreated   int `json:"componentsCreated"`
	StepsCreated        int `json:"stepsCreated"`
	DependenciesCreated int `json:"dependenciesCreated"`
}

// ExecuteProductStepsImport commits a validated products or
// product-steps payload: categories and components first, then
// products and versions, then steps, then dependency edges resolved by
// step code with ids minted earlier in this same run.
func ExecuteProductStepsImport(ctx context.Context, payload *imports.ProductStepsPayload) (*ProductStepsResult, error) {
	db := config.GetDB()
	logger := config.GetLogger()
	release := acquireCommitLock(ctx, "product-steps")
	defer release()

	snap, err := LoadStoreSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := &ProductStepsResult{}

	// (1) work categories and components
	for _, entry := range payload.Entries {
		if entry.Category != "" {
			if _, ok := snap.Categories[entry.Category]; !ok {
				category := WorkCategory{Name: entry.Category}
				if err := db.WithContext(ctx).Create(&category).Error; err != nil {
					if !isDuplicateKeyErr(err) {
						return result, err
					}
				} else {
					snap.Categories[entry.Category] = category.ID
					result.CategoriesCreated++
				}
			}
		}
		if entry.Component != "" {
			if _, ok := snap.Components[entry.Component]; !ok {
				component := Component{Name: entry.Component}
				if err := db.WithContext(ctx).Create(&component).Error; err != nil {
					if !isDuplicateKeyErr(err) {
						return result, err
					}
				} else {
					snap.Components[entry.Component] = component.ID
					result.ComponentsCreated++
				}
			}
		}
	}

	// (2) products and versions
	for _, entry := range payload.Entries {
		if _, ok := snap.Products[entry.ProductName]; !ok {
			product := Product{Name: entry.ProductName}
			if err := db.WithContext(ctx).Create(&product).Error; err != nil {
				if !isDuplicateKeyErr(err) {
					return result, err
				}
			} else {
				snap.Products[entry.ProductName] = product.ID
				result.ProductsCreated++
			}
		}
		versionKey := imports.VersionKey(entry.ProductName, entry.VersionName)
		if _, ok := snap.Versions[versionKey]; !ok {
			version := ProductVersion{
				ProductId: snap.Products[entry.ProductName],
				Name:      entry.VersionName,
				Number:    entry.VersionNumber,
			}
			if entry.IsDefault {
				version.IsDefault = utils.NewTrue()
			} else {
				version.IsDefault = utils.NewFalse()
			}
			if err := db.WithContext(ctx).Create(&version).Error; err != nil {
				if !isDuplicateKeyErr(err) {
					return result, err
				}
			} else {
				snap.Versions[versionKey] = version.ID
				if entry.IsDefault {
					snap.DefaultVersions[entry.ProductName] = version.ID
				}
				result.VersionsCreated++
			}
		}
	}

	// (3) steps, remapping names to ids seeded from the fresh read plus
	// ids created earlier in this run
	for _, entry := range payload.Entries {
		versionId, ok := snap.Versions[imports.VersionKey(entry.ProductName, entry.VersionName)]
		if !ok {
			return result, fmt.Errorf("version %q of product %q failed to resolve during commit",
				entry.VersionName, entry.ProductName)
		}
		if _, ok := snap.Steps[versionId][entry.StepCode]; ok {
			continue
		}
		step := Step{
			ProductVersionId:    versionId,
			Code:                entry.StepCode,
			ExternalId:          entry.ExternalId,
			WorkCategoryId:      snap.Categories[entry.Category],
			TaskName:            entry.TaskName,
			TimePerPieceSeconds: entry.TimeSeconds,
		}
		if entry.Component != "" {
			if componentId, ok := snap.Components[entry.Component]; ok {
				step.ComponentId = &componentId
			}
		}
		if entry.EquipmentCode != "" {
			equipmentId, ok := snap.Equipment[entry.EquipmentCode]
			if !ok {
				return result, fmt.Errorf("equipment %q failed to resolve during commit", entry.EquipmentCode)
			}
			step.EquipmentId = &equipmentId
		}
		if err := db.WithContext(ctx).Create(&step).Error; err != nil {
			if isDuplicateKeyErr(err) {
				continue
			}
			return result, err
		}
		if snap.Steps[versionId] == nil {
			snap.Steps[versionId] = map[string]int{}
		}
		snap.Steps[versionId][entry.StepCode] = step.ID
		result.StepsCreated++
	}

	// (4) dependency edges, by step code within the same batch (or
	// already persisted for the version); unresolvable targets were
	// flagged as warnings at validation and are skipped here.
	existingEdges, err := loadExistingEdges(ctx, snap, payload)
	if err != nil {
		return result, err
	}
	for _, entry := range payload.Entries {
		versionId := snap.Versions[imports.VersionKey(entry.ProductName, entry.VersionName)]
		stepId, ok := snap.Steps[versionId][entry.StepCode]
		if !ok {
			continue
		}
		for _, dep := range entry.Dependencies {
			targetId, ok := snap.Steps[versionId][dep.Code]
			if !ok {
				config.LogWarn(logger, "importCommit.go", "ExecuteProductStepsImport",
					fmt.Sprintf("skipping dependency %s -> %s: target not resolvable", entry.StepCode, dep.Code))
				continue
			}
			if existingEdges[[2]int{stepId, targetId}] {
				continue
			}
			edge := StepDependency{
				StepId:          stepId,
				DependsOnStepId: targetId,
				Type:            DependencyType(dep.Type),
				LagSeconds:      dep.LagSeconds,
			}
			if err := db.WithContext(ctx).Create(&edge).Error; err != nil {
				if isDuplicateKeyErr(err) {
					continue
				}
				return result, err
			}
			existingEdges[[2]int{stepId, targetId}] = true
			result.DependenciesCreated++
		}
	}

	return result, nil
}

func loadExistingEdges(ctx context.Context, snap *imports.StoreSnapshot, payload *imports.ProductStepsPayload) (map[[2]int]bool, error) {
	db := config.GetDB()
	var stepIds []int
	for _, entry := range payload.Entries {
		versionId := snap.Versions[imports.VersionKey(entry.ProductName, entry.VersionName)]
		if stepId, ok := snap.Steps[versionId][entry.StepCode]; ok {
			stepIds = append(stepIds, stepId)
		}
	}
	edges := map[[2]int]bool{}
	if len(stepIds) == 0 {
		return edges, nil
	}
	var rows []StepDependency
	if err := db.WithContext(ctx).Where("step_id IN ?", stepIds).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		edges[[2]int{row.StepId, row.DependsOnStepId}] = true
	}
	return edges, nil
}

type OrdersResult struct {
	OrdersCreated int `json:"ordersCreated"`
	OrdersSkipped int `json:"ordersSkipped"`
}

func ExecuteOrdersImport(ctx context.Context, payload *imports.OrdersPayload) (*OrdersResult, error) {
	db := config.GetDB()
	release := acquireCommitLock(ctx, "orders")
	defer release()

	snap, err := LoadStoreSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := &OrdersResult{}

	for _, row := range payload.Rows {
		productId, ok := snap.Products[row.ProductName]
		if !ok {
			return result, fmt.Errorf("product %q failed to resolve during commit", row.ProductName)
		}
		key := imports.OrderKey(productId, row.DueDate)
		if snap.OrderKeys[key] {
			result.OrdersSkipped++
			continue
		}
		order := Order{
			ProductId: productId,
			Quantity:  row.Quantity,
			DueDate:   row.DueDate,
			Status:    OrderStatus(row.Status),
		}
		if err := db.WithContext(ctx).Create(&order).Error; err != nil {
			return result, err
		}
		snap.OrderKeys[key] = true
		result.OrdersCreated++
	}
	return result, nil
}

type ProductionHistoryResult struct {
	RecordsCreated int `json:"recordsCreated"`
	RecordsSkipped int `json:"recordsSkipped"`
}

// ExecuteProductionHistoryImport commits validated production rows.
// Rows are per-run data: they are deduplicated only by the
// (worker, step, date, start) natural key, never by content.
func ExecuteProductionHistoryImport(ctx context.Context, payload *imports.ProductionHistoryPayload) (*ProductionHistoryResult, error) {
	db := config.GetDB()
	logger := config.GetLogger()
	release := acquireCommitLock(ctx, "production-history")
	defer release()

	snap, err := LoadStoreSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := &ProductionHistoryResult{}

	stepTimes := map[int]int{}
	var steps []Step
	if err := db.WithContext(ctx).Select("id", "time_per_piece_seconds").Find(&steps).Error; err != nil {
		return nil, err
	}
	for _, s := range steps {
		stepTimes[s.ID] = s.TimePerPieceSeconds
	}

	orderIds := map[string]int{}
	if payload.HasOrderLinkage {
		var orders []Order
		if err := db.WithContext(ctx).Find(&orders).Error; err != nil {
			return nil, err
		}
		for _, o := range orders {
			orderIds[imports.OrderKey(o.ProductId, o.DueDate)] = o.ID
		}
	}

	for _, row := range payload.Rows {
		workerId, ok := snap.Workers[row.WorkerName]
		if !ok {
			config.LogWarn(logger, "importCommit.go", "ExecuteProductionHistoryImport",
				fmt.Sprintf("skipping record for unresolved worker %q", row.WorkerName))
			result.RecordsSkipped++
			continue
		}
		var versionId int
		if payload.HasOrderLinkage {
			versionId, ok = snap.Versions[imports.VersionKey(row.ProductName, row.VersionName)]
		} else {
			versionId, ok = snap.DefaultVersions[row.ProductName]
		}
		if !ok {
			config.LogWarn(logger, "importCommit.go", "ExecuteProductionHistoryImport",
				fmt.Sprintf("skipping record for unresolved product %q", row.ProductName))
			result.RecordsSkipped++
			continue
		}
		stepId, ok := snap.Steps[versionId][row.StepCode]
		if !ok {
			config.LogWarn(logger, "importCommit.go", "ExecuteProductionHistoryImport",
				fmt.Sprintf("skipping record for unresolved step %q", row.StepCode))
			result.RecordsSkipped++
			continue
		}

		key := imports.ProductionKey(workerId, stepId, row.WorkDate, row.StartMinutes)
		if snap.ProductionKeys[key] {
			result.RecordsSkipped++
			continue
		}

		var orderId *int
		if payload.HasOrderLinkage && !row.DueDate.IsZero() {
			if productId, ok := snap.Products[row.ProductName]; ok {
				if id, ok := orderIds[imports.OrderKey(productId, row.DueDate)]; ok {
					orderId = &id
				}
			}
		}

		record := buildProductionRecord(workerId, stepId, orderId, row.WorkDate,
			row.StartMinutes, row.EndMinutes, row.UnitsProduced, stepTimes[stepId])
		if err := db.WithContext(ctx).Create(record).Error; err != nil {
			if isDuplicateKeyErr(err) {
				result.RecordsSkipped++
				continue
			}
			return result, err
		}
		snap.ProductionKeys[key] = true
		result.RecordsCreated++
	}
	return result, nil
}
