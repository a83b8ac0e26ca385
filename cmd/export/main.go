// Command export runs a full analysis over a study workbook and writes
// the results workbook, without starting any server.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"viradsbench/adapters/excel"
	"viradsbench/app"
	"viradsbench/domain/analysis"
	"viradsbench/internal/config"
	"viradsbench/internal/testkit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	input := flag.String("in", cfg.Data.WorkbookFile, "study workbook to analyze")
	output := flag.String("out", cfg.Data.ExportFile, "results workbook to write")
	cutoff := flag.Int("cutoff", cfg.Analysis.Cutoff, "positivity cutoff (2-5)")
	prevalence := flag.Float64("prevalence", cfg.Analysis.Prevalence, "assumed prevalence for PPV/NPV")
	partial := flag.Int("partial", cfg.Analysis.PartialPercentage, "partial subset percentage")
	flag.Parse()

	if *input == "" {
		log.Fatal("No input workbook: pass -in or set WORKBOOK_FILE")
	}

	ctx := context.Background()
	readers := testkit.NewInMemoryReaderRepository()
	evaluations := testkit.NewInMemoryEvaluationRepository()

	cases, err := app.IngestStudy(ctx, excel.NewWorkbookSource(*input), readers, evaluations)
	if err != nil {
		log.Fatalf("Failed to ingest workbook: %v", err)
	}

	service := app.NewAnalysisService(readers, evaluations, cases)
	params := analysis.Params{
		Cutoff:            *cutoff,
		Prevalence:        *prevalence,
		PartialPercentage: *partial,
	}

	group, err := service.Recompute(ctx, params)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	timing, err := service.Timing(ctx, params)
	if err != nil {
		log.Fatalf("Timing analysis failed: %v", err)
	}

	if err := excel.NewExporter(*output).Export(*group, *timing); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Exported %d readers to %s", len(group.Readers), *output)
}
