package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/modules/analysis"
	"github.com/mburgan/gutcheck-backend/internal/services"
)

type Services struct {
	Correlation services.CorrelationService
	ML          services.MLService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catMap, err := loadCategoryMap(cfg, log)
	if err != nil {
		return Services{}, err
	}

	correlationService := services.NewCorrelationService(
		db, log, cfg.Engine, catMap,
		reposet.MealLog,
		reposet.MedicationLog,
		reposet.SymptomLog,
		reposet.BowelLog,
		reposet.SleepLog,
		reposet.Correlation,
		reposet.AnalysisRun,
	)

	mlService := services.NewMLService(
		db, log, cfg.Engine, catMap, clients.ReportCache,
		reposet.MealLog,
		reposet.MedicationLog,
		reposet.SymptomLog,
		reposet.BowelLog,
		reposet.SleepLog,
		reposet.AnalysisRun,
	)

	return Services{
		Correlation: correlationService,
		ML:          mlService,
	}, nil
}

func loadCategoryMap(cfg Config, log *logger.Logger) (*analysis.CategoryMap, error) {
	if cfg.CategoryMapPath != "" {
		catMap, err := analysis.LoadCategoryMap(cfg.CategoryMapPath)
		if err != nil {
			return nil, fmt.Errorf("load category map: %w", err)
		}
		log.Info("Loaded category map", "path", cfg.CategoryMapPath)
		return catMap, nil
	}
	catMap, err := analysis.DefaultCategoryMap()
	if err != nil {
		return nil, fmt.Errorf("parse embedded category map: %w", err)
	}
	return catMap, nil
}
