package app

import (
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/repos"
)

type Repos struct {
	MealLog       repos.MealLogRepo
	MedicationLog repos.MedicationLogRepo
	SymptomLog    repos.SymptomLogRepo
	BowelLog      repos.BowelLogRepo
	SleepLog      repos.SleepLogRepo
	Correlation   repos.CorrelationRepo
	AnalysisRun   repos.AnalysisRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		MealLog:       repos.NewMealLogRepo(db, log),
		MedicationLog: repos.NewMedicationLogRepo(db, log),
		SymptomLog:    repos.NewSymptomLogRepo(db, log),
		BowelLog:      repos.NewBowelLogRepo(db, log),
		SleepLog:      repos.NewSleepLogRepo(db, log),
		Correlation:   repos.NewCorrelationRepo(db, log),
		AnalysisRun:   repos.NewAnalysisRunRepo(db, log),
	}
}
