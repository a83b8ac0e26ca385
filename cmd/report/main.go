// Command report serves only the read-only report app over a synthetic
// cohort or a configured workbook. Useful for reviewing analysis output
// without the full API server.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"viradsbench/adapters/excel"
	"viradsbench/app"
	"viradsbench/domain/study"
	"viradsbench/internal/config"
	"viradsbench/internal/testkit"
	"viradsbench/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	readers := testkit.NewInMemoryReaderRepository()
	evaluations := testkit.NewInMemoryEvaluationRepository()

	var cases []study.Case
	if cfg.Data.WorkbookFile != "" {
		cases, err = app.IngestStudy(ctx, excel.NewWorkbookSource(cfg.Data.WorkbookFile), readers, evaluations)
	} else {
		cases, err = app.SeedSyntheticCohort(ctx, readers, evaluations)
	}
	if err != nil {
		log.Fatalf("Failed to load study data: %v", err)
	}

	service := app.NewAnalysisService(readers, evaluations, cases)
	report := ui.NewReportApp(service)
	if err := report.Start("0.0.0.0:" + cfg.Report.Port); err != nil {
		log.Fatalf("Report app failed: %v", err)
	}
}
