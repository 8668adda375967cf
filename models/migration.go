package models

import (
	"log"

	"bitbucket.org/mmdatafocus/factory_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&WorkCategory{}, &Equipment{}, &Worker{}, &WorkerCertification{}, &Component{},
		&Product{}, &ProductVersion{}, &Step{}, &StepDependency{},
		&Order{},
		&ProductionRecord{}, &WorkerProficiency{}, &WorkerStepPerformance{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
