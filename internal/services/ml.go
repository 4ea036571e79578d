package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/clients/redis"
	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/modules/analysis"
	"github.com/mburgan/gutcheck-backend/internal/repos"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type MLService interface {
	// RunAnalysis recomputes model-quality reports for every outcome with
	// enough class balance, replacing the user's cached reports.
	RunAnalysis(ctx context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, error)
	// CachedResults returns the last run's reports, empty when none exist.
	CachedResults(ctx context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, error)
}

type mlService struct {
	db     *gorm.DB
	log    *logger.Logger
	cfg    EngineConfig
	catMap *analysis.CategoryMap
	cache  redis.ReportCache
	meals  repos.MealLogRepo
	meds   repos.MedicationLogRepo
	symp   repos.SymptomLogRepo
	bowel  repos.BowelLogRepo
	sleep  repos.SleepLogRepo
	runs   repos.AnalysisRunRepo
}

func NewMLService(
	db *gorm.DB,
	log *logger.Logger,
	cfg EngineConfig,
	catMap *analysis.CategoryMap,
	cache redis.ReportCache,
	meals repos.MealLogRepo,
	meds repos.MedicationLogRepo,
	symp repos.SymptomLogRepo,
	bowel repos.BowelLogRepo,
	sleep repos.SleepLogRepo,
	runs repos.AnalysisRunRepo,
) MLService {
	return &mlService{
		db:     db,
		log:    log.With("service", "MLService"),
		cfg:    cfg,
		catMap: catMap,
		cache:  cache,
		meals:  meals,
		meds:   meds,
		symp:   symp,
		bowel:  bowel,
		sleep:  sleep,
		runs:   runs,
	}
}

func (s *mlService) RunAnalysis(ctx context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, error) {
	started := time.Now().UTC()
	daysBack := s.cfg.MLDaysBack
	windowEnd := started
	windowStart := windowEnd.AddDate(0, 0, -daysBack)

	var (
		meals  []*types.MealLog
		meds   []*types.MedicationLog
		symp   []*types.SymptomLog
		bowels []*types.BowelLog
		sleeps []*types.SleepLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meals, err = s.meals.GetByUserInWindow(gctx, nil, userID, windowStart, windowEnd)
		return err
	})
	g.Go(func() error {
		var err error
		meds, err = s.meds.GetByUserInWindow(gctx, nil, userID, windowStart, windowEnd)
		return err
	})
	g.Go(func() error {
		var err error
		symp, err = s.symp.GetByUserInWindow(gctx, nil, userID, windowStart, windowEnd)
		return err
	})
	g.Go(func() error {
		var err error
		bowels, err = s.bowel.GetByUserInWindow(gctx, nil, userID, windowStart, windowEnd)
		return err
	})
	g.Go(func() error {
		var err error
		sleeps, err = s.sleep.GetByUserInWindow(gctx, nil, userID, windowStart, windowEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load raw logs: %w", err)
	}

	idx := analysis.BuildExposureIndex(meals, meds, s.catMap, windowStart, windowEnd, s.log)
	outcomes := analysis.ExtractOutcomes(symp, bowels, sleeps, windowStart, windowEnd)
	groups, outcomeIDs := analysis.GroupOutcomes(outcomes)

	params := analysis.MLParams{
		HighSeverityThreshold: s.cfg.HighSeverityThreshold,
		MinClassCount:         s.cfg.MLMinClassCount,
		TrainFraction:         s.cfg.MLTrainFraction,
	}

	var (
		mu      sync.Mutex
		reports []analysis.ModelQualityReport
	)
	sg, _ := errgroup.WithContext(ctx)
	sg.SetLimit(4)
	for _, outcomeID := range outcomeIDs {
		id := outcomeID
		occurrences := groups[id]
		sg.Go(func() error {
			report, ok := analysis.ScoreOutcome(idx, id, occurrences, params, s.log)
			if !ok {
				return nil
			}
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	_ = sg.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].SymptomID < reports[j].SymptomID })
	if reports == nil {
		reports = []analysis.ModelQualityReport{}
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("Failed to invalidate cached reports", "user_id", userID, "error", err)
	}
	if err := s.cache.Put(ctx, userID, reports); err != nil {
		s.log.Warn("Failed to cache reports", "user_id", userID, "error", err)
	}

	s.recordRun(ctx, userID, daysBack, len(reports), started)
	s.log.Info("ML analysis complete", "user_id", userID, "reports", len(reports))
	return reports, nil
}

func (s *mlService) CachedResults(ctx context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, error) {
	reports, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cached reports: %w", err)
	}
	if !ok {
		return []analysis.ModelQualityReport{}, nil
	}
	return reports, nil
}

func (s *mlService) recordRun(ctx context.Context, userID uuid.UUID, windowDays, reportCount int, started time.Time) {
	_, err := s.runs.Create(ctx, nil, &types.AnalysisRun{
		UserID:      userID,
		Kind:        types.AnalysisRunKindML,
		WindowDays:  windowDays,
		RecordCount: reportCount,
		DurationMs:  time.Since(started).Milliseconds(),
		StartedAt:   started,
	})
	if err != nil {
		s.log.Warn("Failed to record analysis run", "user_id", userID, "kind", types.AnalysisRunKindML, "error", err)
	}
}
