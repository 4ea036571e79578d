package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/modules/analysis"
	"github.com/mburgan/gutcheck-backend/internal/repos"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

// EngineConfig carries the tunables of the correlation engine. The
// smoothing constant and severity threshold are configuration, not
// hard-coded invariants.
type EngineConfig struct {
	DefaultDaysBack       int
	TimeWindowHours       int
	MinConfidence         float64
	MinSampleSize         int
	SmoothingK            float64
	HighSeverityThreshold float64
	MLMinClassCount       int
	MLTrainFraction       float64
	MLDaysBack            int
}

type CorrelationService interface {
	// Calculate recomputes and persists the full correlation set for a user.
	Calculate(ctx context.Context, userID uuid.UUID, daysBack, timeWindowHours int, minConfidence float64) ([]*types.Correlation, error)
	// GetStored returns the persisted records above a confidence floor.
	GetStored(ctx context.Context, userID uuid.UUID, minConfidence float64, limit int) ([]*types.Correlation, error)
	// Insights aggregates stored records into ranked triggers and guidance.
	Insights(ctx context.Context, userID uuid.UUID) (analysis.InsightSummary, error)
	// Trends produces the gap-free daily severity series.
	Trends(ctx context.Context, userID uuid.UUID, days int) ([]analysis.TrendPoint, error)
}

type correlationService struct {
	db      *gorm.DB
	log     *logger.Logger
	cfg     EngineConfig
	catMap  *analysis.CategoryMap
	meals   repos.MealLogRepo
	meds    repos.MedicationLogRepo
	symp    repos.SymptomLogRepo
	bowel   repos.BowelLogRepo
	sleep   repos.SleepLogRepo
	corr    repos.CorrelationRepo
	runs    repos.AnalysisRunRepo
}

func NewCorrelationService(
	db *gorm.DB,
	log *logger.Logger,
	cfg EngineConfig,
	catMap *analysis.CategoryMap,
	meals repos.MealLogRepo,
	meds repos.MedicationLogRepo,
	symp repos.SymptomLogRepo,
	bowel repos.BowelLogRepo,
	sleep repos.SleepLogRepo,
	corr repos.CorrelationRepo,
	runs repos.AnalysisRunRepo,
) CorrelationService {
	return &correlationService{
		db:     db,
		log:    log.With("service", "CorrelationService"),
		cfg:    cfg,
		catMap: catMap,
		meals:  meals,
		meds:   meds,
		symp:   symp,
		bowel:  bowel,
		sleep:  sleep,
		corr:   corr,
		runs:   runs,
	}
}

// rawLogs is everything one engine run reads from storage.
type rawLogs struct {
	meals  []*types.MealLog
	meds   []*types.MedicationLog
	symp   []*types.SymptomLog
	bowels []*types.BowelLog
	sleeps []*types.SleepLog
}

// loadRawLogs fans the five reads out concurrently; any storage failure
// fails the whole run.
func (s *correlationService) loadRawLogs(ctx context.Context, userID uuid.UUID, from, to time.Time) (*rawLogs, error) {
	raw := &rawLogs{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw.meals, err = s.meals.GetByUserInWindow(gctx, nil, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		raw.meds, err = s.meds.GetByUserInWindow(gctx, nil, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		raw.symp, err = s.symp.GetByUserInWindow(gctx, nil, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		raw.bowels, err = s.bowel.GetByUserInWindow(gctx, nil, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		raw.sleeps, err = s.sleep.GetByUserInWindow(gctx, nil, userID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load raw logs: %w", err)
	}
	return raw, nil
}

func (s *correlationService) Calculate(ctx context.Context, userID uuid.UUID, daysBack, timeWindowHours int, minConfidence float64) ([]*types.Correlation, error) {
	started := time.Now().UTC()
	if daysBack <= 0 {
		daysBack = s.cfg.DefaultDaysBack
	}
	if timeWindowHours <= 0 {
		timeWindowHours = s.cfg.TimeWindowHours
	}
	if minConfidence <= 0 {
		minConfidence = s.cfg.MinConfidence
	}
	windowEnd := started
	windowStart := windowEnd.AddDate(0, 0, -daysBack)

	raw, err := s.loadRawLogs(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	idx := analysis.BuildExposureIndex(raw.meals, raw.meds, s.catMap, windowStart, windowEnd, s.log)
	outcomes := analysis.ExtractOutcomes(raw.symp, raw.bowels, raw.sleeps, windowStart, windowEnd)

	pairs := analysis.CalculateCorrelations(idx, outcomes, analysis.CalculateParams{
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		TimeWindowHours: timeWindowHours,
		MinConfidence:   minConfidence,
		MinSampleSize:   s.cfg.MinSampleSize,
		SmoothingK:      s.cfg.SmoothingK,
	})

	rows := make([]*types.Correlation, 0, len(pairs))
	for _, p := range pairs {
		detail, _ := json.Marshal(map[string]any{
			"exposed_count":   p.ExposedCount,
			"unexposed_count": p.UnexposedN,
			"exposed_mean":    p.ExposedMean,
			"unexposed_mean":  p.UnexposedMean,
		})
		rows = append(rows, &types.Correlation{
			ID:               uuid.New(),
			UserID:           userID,
			ExposureCategory: p.Category,
			OutcomeID:        p.OutcomeID,
			Score:            p.Score,
			Confidence:       p.Confidence,
			SampleSize:       p.SampleSize,
			LagBucket:        p.LagBucket,
			Detail:           datatypes.JSON(detail),
			ComputedAt:       started,
		})
	}

	if err := s.corr.ReplaceForUser(ctx, userID, rows); err != nil {
		return nil, fmt.Errorf("persist correlations: %w", err)
	}

	s.recordRun(ctx, userID, types.AnalysisRunKindCorrelation, daysBack, len(rows), started)
	s.log.Info("Correlation run complete", "user_id", userID, "records", len(rows), "days_back", daysBack)
	return rows, nil
}

func (s *correlationService) GetStored(ctx context.Context, userID uuid.UUID, minConfidence float64, limit int) ([]*types.Correlation, error) {
	if minConfidence <= 0 {
		minConfidence = s.cfg.MinConfidence
	}
	records, err := s.corr.GetByUser(ctx, nil, userID, minConfidence, limit)
	if err != nil {
		return nil, fmt.Errorf("load correlations: %w", err)
	}
	return records, nil
}

func (s *correlationService) Insights(ctx context.Context, userID uuid.UUID) (analysis.InsightSummary, error) {
	records, err := s.corr.GetByUser(ctx, nil, userID, s.cfg.MinConfidence, 0)
	if err != nil {
		return analysis.InsightSummary{}, fmt.Errorf("load correlations: %w", err)
	}
	return analysis.BuildInsights(records), nil
}

func (s *correlationService) Trends(ctx context.Context, userID uuid.UUID, days int) ([]analysis.TrendPoint, error) {
	if days <= 0 {
		days = s.cfg.DefaultDaysBack
	}
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	var (
		symp   []*types.SymptomLog
		bowels []*types.BowelLog
		sleeps []*types.SleepLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		symp, err = s.symp.GetByUserInWindow(gctx, nil, userID, from, now)
		return err
	})
	g.Go(func() error {
		var err error
		bowels, err = s.bowel.GetByUserInWindow(gctx, nil, userID, from, now)
		return err
	})
	g.Go(func() error {
		var err error
		sleeps, err = s.sleep.GetByUserInWindow(gctx, nil, userID, from, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load outcome logs: %w", err)
	}

	outcomes := analysis.ExtractOutcomes(symp, bowels, sleeps, from, now)
	return analysis.GenerateTrends(outcomes, days, now), nil
}

// recordRun writes the audit row; a failure is logged, never fatal to the
// run that already succeeded.
func (s *correlationService) recordRun(ctx context.Context, userID uuid.UUID, kind string, windowDays, recordCount int, started time.Time) {
	_, err := s.runs.Create(ctx, nil, &types.AnalysisRun{
		UserID:      userID,
		Kind:        kind,
		WindowDays:  windowDays,
		RecordCount: recordCount,
		DurationMs:  time.Since(started).Milliseconds(),
		StartedAt:   started,
	})
	if err != nil {
		s.log.Warn("Failed to record analysis run", "user_id", userID, "kind", kind, "error", err)
	}
}
