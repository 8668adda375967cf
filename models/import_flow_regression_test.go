package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/imports"
	"bitbucket.org/mmdatafocus/factory_backend/models"
)

// TestImportFlow_ColdStartAndRerun walks the cold-start path end to end:
// equipment matrix, product catalog, orders and production history, then
// re-runs each import to prove idempotency.
func TestImportFlow_ColdStartAndRerun(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "factory_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	// (1) equipment matrix
	matrixText := strings.Join([]string{
		"Equipment Code\tWork Category\tWork Type\tStation Count\tHourly Cost\tMaria\tAhmed",
		"_COST\t\tWorker Cost Per Hour\t0\t0\t12.50\t10",
		"STS-01\tSewing\tSingle Needle\t3\t5.25\tY\t",
		"OVR-01\tSewing\tOverlock\t2\t4\tY\tY",
	}, "\n")

	snap, err := models.LoadStoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadStoreSnapshot: %v", err)
	}
	matrixPayload, result := imports.ValidateEquipmentMatrix(imports.ParseDelimited(matrixText, imports.DelimiterTab), snap)
	if !result.Valid {
		t.Fatalf("equipment matrix validation failed: %v", result.Errors)
	}
	matrixResult, err := models.ExecuteEquipmentMatrixImport(ctx, matrixPayload)
	if err != nil {
		t.Fatalf("ExecuteEquipmentMatrixImport: %v", err)
	}
	if matrixResult.CategoriesCreated != 1 || matrixResult.EquipmentCreated != 2 ||
		matrixResult.WorkersCreated != 2 || matrixResult.CertificationsCreated != 3 {
		t.Fatalf("unexpected first-run result %+v", matrixResult)
	}

	// Re-running the identical matrix is a no-op.
	rerun, err := models.ExecuteEquipmentMatrixImport(ctx, matrixPayload)
	if err != nil {
		t.Fatalf("rerun ExecuteEquipmentMatrixImport: %v", err)
	}
	if rerun.CategoriesCreated != 0 || rerun.EquipmentCreated != 0 ||
		rerun.WorkersCreated != 0 || rerun.CertificationsCreated != 0 {
		t.Fatalf("rerun should create nothing, got %+v", rerun)
	}

	// A later matrix against the live store: Maria exists, STS-02 does
	// not, so the preview promises one equipment and one certification.
	snap, err = models.LoadStoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadStoreSnapshot: %v", err)
	}
	deltaText := "Equipment Code\tWork Category\tMaria\nSTS-02\tSewing\tY\n"
	deltaPayload, result := imports.ValidateEquipmentMatrix(imports.ParseDelimited(deltaText, imports.DelimiterTab), snap)
	if !result.Valid {
		t.Fatalf("delta matrix validation failed: %v", result.Errors)
	}
	preview := result.Preview.(imports.EquipmentMatrixPreview)
	if preview.Summary.EquipmentToCreate != 1 || preview.Summary.WorkersToCreate != 0 ||
		preview.Summary.CertificationsToCreate != 1 {
		t.Fatalf("unexpected delta preview %+v", preview.Summary)
	}
	deltaResult, err := models.ExecuteEquipmentMatrixImport(ctx, deltaPayload)
	if err != nil {
		t.Fatalf("delta ExecuteEquipmentMatrixImport: %v", err)
	}
	if deltaResult.EquipmentCreated != 1 || deltaResult.WorkersCreated != 0 ||
		deltaResult.CertificationsCreated != 1 {
		t.Fatalf("delta commit does not match its preview: %+v", deltaResult)
	}

	// (2) product catalog with steps and a dependency edge
	catalogText := strings.Join([]string{
		"product_name\tversion_name\tversion_number\tis_default\tstep_code\texternal_id\tcategory\tcomponent\ttask_name\ttime_seconds\tequipment_code\tdependencies",
		"Bag\tv1.0\t1\tY\tCUT\t\tCutting\tBody\tCut panels\t120\t\t",
		"Bag\tv1.0\t1\tY\tSEW\t\tSewing\tBody\tSew body\t300\tSTS-01\tCUT",
	}, "\n")

	snap, err = models.LoadStoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadStoreSnapshot: %v", err)
	}
	catalogPayload, result := imports.ValidateProducts(imports.ParseDelimited(catalogText, imports.DelimiterTab), snap)
	if !result.Valid {
		t.Fatalf("catalog validation failed: %v", result.Errors)
	}
	catalogResult, err := models.ExecuteProductStepsImport(ctx, catalogPayload)
	if err != nil {
		t.Fatalf("ExecuteProductStepsImport: %v", err)
	}
	if catalogResult.ProductsCreated != 1 || catalogResult.VersionsCreated != 1 ||
		catalogResult.StepsCreated != 2 || catalogResult.DependenciesCreated != 1 {
		t.Fatalf("unexpected catalog result %+v", catalogResult)
	}

	catalogRerun, err := models.ExecuteProductStepsImport(ctx, catalogPayload)
	if err != nil {
		t.Fatalf("rerun ExecuteProductStepsImport: %v", err)
	}
	if catalogRerun.StepsCreated != 0 || catalogRerun.DependenciesCreated != 0 {
		t.Fatalf("catalog rerun should create nothing, got %+v", catalogRerun)
	}

	// (3) orders
	ordersText := "Product Name\tQuantity\tDue Date\tStatus\nBag\t50\t2026-03-01\t\n"
	snap, err = models.LoadStoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadStoreSnapshot: %v", err)
	}
	ordersPayload, result := imports.ValidateOrders(imports.ParseDelimited(ordersText, imports.DelimiterTab), snap)
	if !result.Valid {
		t.Fatalf("orders validation failed: %v", result.Errors)
	}
	ordersResult, err := models.ExecuteOrdersImport(ctx, ordersPayload)
	if err != nil {
		t.Fatalf("ExecuteOrdersImport: %v", err)
	}
	if ordersResult.OrdersCreated != 1 {
		t.Fatalf("unexpected orders result %+v", ordersResult)
	}
	ordersRerun, err := models.ExecuteOrdersImport(ctx, ordersPayload)
	if err != nil {
		t.Fatalf("rerun ExecuteOrdersImport: %v", err)
	}
	if ordersRerun.OrdersCreated != 0 || ordersRerun.OrdersSkipped != 1 {
		t.Fatalf("orders rerun should skip, got %+v", ordersRerun)
	}

	// (4) production history linked to the order
	historyText := strings.Join([]string{
		"Product Name\tDue Date\tVersion Name\tStep Code\tWorker Name\tWork Date\tStart Time\tEnd Time\tUnits Produced",
		"Bag\t2026-03-01\tv1.0\tSEW\tMaria\t2026-02-10\t08:00\t09:30\t12",
		"Bag\t2026-03-01\tv1.0\tCUT\tAhmed\t2026-02-10\t08:00\t10:00\t40",
	}, "\n")
	snap, err = models.LoadStoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadStoreSnapshot: %v", err)
	}
	historyPayload, result := imports.ValidateProductionHistory(imports.ParseDelimited(historyText, imports.DelimiterTab), snap)
	if !result.Valid {
		t.Fatalf("history validation failed: %v", result.Errors)
	}
	historyResult, err := models.ExecuteProductionHistoryImport(ctx, historyPayload)
	if err != nil {
		t.Fatalf("ExecuteProductionHistoryImport: %v", err)
	}
	if historyResult.RecordsCreated != 2 || historyResult.RecordsSkipped != 0 {
		t.Fatalf("unexpected history result %+v", historyResult)
	}
	historyRerun, err := models.ExecuteProductionHistoryImport(ctx, historyPayload)
	if err != nil {
		t.Fatalf("rerun ExecuteProductionHistoryImport: %v", err)
	}
	if historyRerun.RecordsCreated != 0 || historyRerun.RecordsSkipped != 2 {
		t.Fatalf("history rerun should skip, got %+v", historyRerun)
	}

	db := config.GetDB()
	var record models.ProductionRecord
	if err := db.WithContext(ctx).First(&record, "units_produced = ?", 12).Error; err != nil {
		t.Fatalf("load production record: %v", err)
	}
	if record.OrderId == nil {
		t.Fatal("history row with a matching due date should link its order")
	}
	if record.ExpectedSeconds != 300*12 || record.ActualSeconds != 90*60 {
		t.Fatalf("unexpected record math %+v", record)
	}

	// (5) derived analytics
	pairs, err := models.DeriveProficiencies(ctx)
	if err != nil {
		t.Fatalf("DeriveProficiencies: %v", err)
	}
	if pairs != 2 {
		t.Fatalf("expected 2 proficiency pairs, got %d", pairs)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("factory-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=factory_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
