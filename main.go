package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"viradsbench/adapters/excel"
	"viradsbench/adapters/postgres"
	"viradsbench/app"
	"viradsbench/domain/study"
	"viradsbench/internal/config"
	"viradsbench/internal/errors"
	"viradsbench/internal/testkit"
	"viradsbench/ports"
	"viradsbench/ui"
)

func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()
	if dsn == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL or DB_HOST is required")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := postgres.InitSchema(db); err != nil {
		return nil, errors.Wrap(err, "schema initialization failed")
	}
	return db, nil
}

// loadStudy assembles the case set, readers, and evaluations from the
// configured workbook, falling back to a synthetic cohort when no
// workbook is configured.
func loadStudy(ctx context.Context, cfg *config.Config, readers ports.ReaderRepository, evaluations ports.EvaluationRepository) ([]study.Case, error) {
	if cfg.Data.WorkbookFile != "" {
		log.Printf("Using workbook data source: %s", cfg.Data.WorkbookFile)
		return app.IngestStudy(ctx, excel.NewWorkbookSource(cfg.Data.WorkbookFile), readers, evaluations)
	}
	log.Printf("No workbook configured, using synthetic cohort")
	return app.SeedSyntheticCohort(ctx, readers, evaluations)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	var readers ports.ReaderRepository
	var evaluations ports.EvaluationRepository
	if cfg.Database.DSN() != "" {
		db, err := initDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		readers = postgres.NewReaderRepository(db)
		evaluations = postgres.NewEvaluationRepository(db)
		log.Printf("Using PostgreSQL storage")
	} else {
		readers = testkit.NewInMemoryReaderRepository()
		evaluations = testkit.NewInMemoryEvaluationRepository()
		log.Printf("No database configured, using in-memory storage")
	}

	cases, err := loadStudy(ctx, cfg, readers, evaluations)
	if err != nil {
		log.Fatalf("Failed to load study data: %v", err)
	}
	log.Printf("Loaded %d cases", len(cases))

	service := app.NewAnalysisService(readers, evaluations, cases)

	report := ui.NewReportApp(service)
	go func() {
		if err := report.Start("0.0.0.0:" + cfg.Report.Port); err != nil {
			log.Printf("Report app stopped: %v", err)
		}
	}()

	server := ui.NewServer(service, readers)
	if err := server.Start("0.0.0.0:" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
