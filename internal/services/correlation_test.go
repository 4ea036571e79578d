package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/modules/analysis"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// stubStore backs every repo interface with fixed slices so the service can
// run the whole pipeline without a database.
type stubStore struct {
	meals    []*types.MealLog
	meds     []*types.MedicationLog
	symptoms []*types.SymptomLog
	bowels   []*types.BowelLog
	sleeps   []*types.SleepLog

	correlations []*types.Correlation
	replaced     [][]*types.Correlation
	runs         []*types.AnalysisRun
}

func (s *stubStore) Create(ctx context.Context, tx *gorm.DB, logs []*types.MealLog) ([]*types.MealLog, error) {
	return logs, nil
}
func (s *stubStore) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.MealLog, error) {
	return s.meals, nil
}

type stubMeds struct{ store *stubStore }

func (s stubMeds) Create(ctx context.Context, tx *gorm.DB, logs []*types.MedicationLog) ([]*types.MedicationLog, error) {
	return logs, nil
}
func (s stubMeds) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.MedicationLog, error) {
	return s.store.meds, nil
}

type stubSymptoms struct{ store *stubStore }

func (s stubSymptoms) Create(ctx context.Context, tx *gorm.DB, logs []*types.SymptomLog) ([]*types.SymptomLog, error) {
	return logs, nil
}
func (s stubSymptoms) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.SymptomLog, error) {
	return s.store.symptoms, nil
}

type stubBowels struct{ store *stubStore }

func (s stubBowels) Create(ctx context.Context, tx *gorm.DB, logs []*types.BowelLog) ([]*types.BowelLog, error) {
	return logs, nil
}
func (s stubBowels) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.BowelLog, error) {
	return s.store.bowels, nil
}

type stubSleeps struct{ store *stubStore }

func (s stubSleeps) Create(ctx context.Context, tx *gorm.DB, logs []*types.SleepLog) ([]*types.SleepLog, error) {
	return logs, nil
}
func (s stubSleeps) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.SleepLog, error) {
	return s.store.sleeps, nil
}

type stubCorrelations struct{ store *stubStore }

func (s stubCorrelations) ReplaceForUser(ctx context.Context, userID uuid.UUID, rows []*types.Correlation) error {
	s.store.replaced = append(s.store.replaced, rows)
	s.store.correlations = rows
	return nil
}
func (s stubCorrelations) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, minConfidence float64, limit int) ([]*types.Correlation, error) {
	out := []*types.Correlation{}
	for _, c := range s.store.correlations {
		if c.Confidence >= minConfidence {
			out = append(out, c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubRuns struct{ store *stubStore }

func (s stubRuns) Create(ctx context.Context, tx *gorm.DB, run *types.AnalysisRun) (*types.AnalysisRun, error) {
	s.store.runs = append(s.store.runs, run)
	return run, nil
}
func (s stubRuns) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string, limit int) ([]*types.AnalysisRun, error) {
	return s.store.runs, nil
}

func newTestCorrelationService(t *testing.T, store *stubStore) CorrelationService {
	t.Helper()
	catMap, err := analysis.DefaultCategoryMap()
	if err != nil {
		t.Fatalf("category map: %v", err)
	}
	cfg := EngineConfig{
		DefaultDaysBack: 30,
		TimeWindowHours: 48,
		MinConfidence:   0.3,
		MinSampleSize:   3,
		SmoothingK:      5.0,
	}
	return NewCorrelationService(
		nil, testLogger(), cfg, catMap,
		store, stubMeds{store}, stubSymptoms{store}, stubBowels{store}, stubSleeps{store},
		stubCorrelations{store}, stubRuns{store},
	)
}

// seedDairyScenario populates six recent dairy meals, three of them followed
// within two hours by severe bloating.
func seedDairyScenario(store *stubStore, userID uuid.UUID) {
	base := time.Now().UTC().AddDate(0, 0, -10)
	for i := 0; i < 6; i++ {
		at := base.AddDate(0, 0, i).Add(12 * time.Hour)
		store.meals = append(store.meals, &types.MealLog{
			ID:         uuid.New(),
			UserID:     userID,
			Name:       "lunch",
			ConsumedAt: at,
			Foods:      []*types.MealFood{{ID: uuid.New(), Name: "cheese omelette"}},
		})
		if i < 3 {
			store.symptoms = append(store.symptoms, &types.SymptomLog{
				ID:         uuid.New(),
				UserID:     userID,
				Symptom:    "Bloating",
				Severity:   8,
				OccurredAt: at.Add(2 * time.Hour),
			})
		}
	}
}

func TestCorrelationService_CalculatePersistsAndRecordsRun(t *testing.T) {
	store := &stubStore{}
	userID := uuid.New()
	seedDairyScenario(store, userID)
	svc := newTestCorrelationService(t, store)

	rows, err := svc.Calculate(context.Background(), userID, 0, 0, 0)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(rows) == 0 {
		t.Fatalf("expected at least one persisted correlation")
	}
	if len(store.replaced) != 1 {
		t.Fatalf("expected one ReplaceForUser call, got %d", len(store.replaced))
	}

	var dairy *types.Correlation
	for _, r := range rows {
		if r.UserID != userID {
			t.Fatalf("row has wrong user: %v", r.UserID)
		}
		if r.ComputedAt.IsZero() {
			t.Fatalf("row missing computed_at")
		}
		if r.ExposureCategory == "dairy" && r.OutcomeID == "Bloating" {
			dairy = r
		}
	}
	if dairy == nil {
		t.Fatalf("expected a dairy/Bloating record, got %+v", rows)
	}
	if dairy.Score <= 0 {
		t.Fatalf("expected positive dairy score, got %f", dairy.Score)
	}
	if dairy.SampleSize != 6 {
		t.Fatalf("expected sample size 6 (3 occurrences + 3 quiet exposures), got %d", dairy.SampleSize)
	}
	if dairy.LagBucket != "0-6h" {
		t.Fatalf("expected nearest lag bucket to win, got %s", dairy.LagBucket)
	}
	if dairy.Confidence >= 1 {
		t.Fatalf("confidence must stay below 1, got %f", dairy.Confidence)
	}
	if len(dairy.Detail) == 0 {
		t.Fatalf("expected populated detail payload")
	}

	if len(store.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(store.runs))
	}
	run := store.runs[0]
	if run.Kind != types.AnalysisRunKindCorrelation {
		t.Fatalf("wrong run kind: %s", run.Kind)
	}
	if run.WindowDays != 30 || run.RecordCount != len(rows) {
		t.Fatalf("run audit mismatch: %+v", run)
	}
}

func TestCorrelationService_RecalculateReplacesOldRecords(t *testing.T) {
	store := &stubStore{}
	userID := uuid.New()
	seedDairyScenario(store, userID)
	svc := newTestCorrelationService(t, store)

	first, err := svc.Calculate(context.Background(), userID, 0, 0, 0)
	if err != nil {
		t.Fatalf("first Calculate: %v", err)
	}
	second, err := svc.Calculate(context.Background(), userID, 0, 0, 0)
	if err != nil {
		t.Fatalf("second Calculate: %v", err)
	}

	if len(store.replaced) != 2 {
		t.Fatalf("every run must replace the stored set, got %d calls", len(store.replaced))
	}
	if len(store.correlations) != len(second) {
		t.Fatalf("stored set must be the latest run only")
	}
	if len(first) != len(second) {
		t.Fatalf("identical inputs must give identical record counts: %d vs %d", len(first), len(second))
	}
}

func TestCorrelationService_InsightsFromStoredRecords(t *testing.T) {
	store := &stubStore{}
	userID := uuid.New()
	seedDairyScenario(store, userID)
	svc := newTestCorrelationService(t, store)

	if _, err := svc.Calculate(context.Background(), userID, 0, 0, 0); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	summary, err := svc.Insights(context.Background(), userID)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(summary.TopTriggers) == 0 {
		t.Fatalf("expected dairy to surface as a trigger")
	}
	if summary.TopTriggers[0].ExposureCategory != "dairy" {
		t.Fatalf("expected dairy first, got %s", summary.TopTriggers[0].ExposureCategory)
	}
	if len(summary.Recommendations) == 0 {
		t.Fatalf("expected at least one recommendation")
	}
}

func TestCorrelationService_TrendsCoverEveryDay(t *testing.T) {
	store := &stubStore{}
	userID := uuid.New()
	seedDairyScenario(store, userID)
	svc := newTestCorrelationService(t, store)

	points, err := svc.Trends(context.Background(), userID, 14)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(points) != 14 {
		t.Fatalf("expected 14 daily points, got %d", len(points))
	}
	sawBloating := false
	for _, p := range points {
		if _, ok := p.Outcomes["Bloating"]; ok && p.Outcomes["Bloating"] > 0 {
			sawBloating = true
		}
	}
	if !sawBloating {
		t.Fatalf("expected bloating severity to appear in the series")
	}
}
