package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mburgan/gutcheck-backend/internal/types"
)

func symptomAt(name string, severity int, at time.Time) *types.SymptomLog {
	return &types.SymptomLog{ID: uuid.New(), Symptom: name, Severity: severity, OccurredAt: at}
}

// dairyBloatingFixture builds the canonical scenario: three dairy meals each
// followed within 6h by severe bloating, and three dairy meals with nothing
// following.
func dairyBloatingFixture(t *testing.T) (*ExposureIndex, []OutcomeEvent, CalculateParams) {
	t.Helper()
	from, to := testWindow()

	meals := make([]*types.MealLog, 0, 6)
	symptoms := make([]*types.SymptomLog, 0, 3)
	for i := 0; i < 3; i++ {
		mealAt := from.Add(time.Duration(5+i) * 24 * time.Hour)
		meals = append(meals, mealWith(mealAt, "whole milk"))
		symptoms = append(symptoms, symptomAt("Bloating", 8, mealAt.Add(2*time.Hour)))
	}
	for i := 0; i < 3; i++ {
		mealAt := from.Add(time.Duration(15+i) * 24 * time.Hour)
		meals = append(meals, mealWith(mealAt, "whole milk"))
	}

	idx := BuildExposureIndex(meals, nil, mustCategoryMap(t), from, to, nil)
	outcomes := ExtractOutcomes(symptoms, nil, nil, from, to)
	params := CalculateParams{
		WindowStart:     from,
		WindowEnd:       to,
		TimeWindowHours: 6,
		MinConfidence:   0.3,
		MinSampleSize:   3,
		SmoothingK:      5,
	}
	return idx, outcomes, params
}

func TestCalculateCorrelations_DairyBloatingScenario(t *testing.T) {
	idx, outcomes, params := dairyBloatingFixture(t)

	results := CalculateCorrelations(idx, outcomes, params)
	if len(results) != 1 {
		t.Fatalf("expected exactly one pair, got %d: %+v", len(results), results)
	}
	pair := results[0]
	if pair.Category != "dairy" || pair.OutcomeID != "Bloating" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if pair.SampleSize != 6 {
		t.Fatalf("expected sample size 6 (3 with symptom + 3 without), got %d", pair.SampleSize)
	}
	if pair.Score <= 0 {
		t.Fatalf("expected positive correlation score, got %f", pair.Score)
	}
	if pair.Confidence >= 1.0 {
		t.Fatalf("expected confidence below 1 for small sample, got %f", pair.Confidence)
	}
	if pair.LagBucket != "0-6h" {
		t.Fatalf("expected 0-6h bucket, got %s", pair.LagBucket)
	}
}

// The same scenario must hold under the default association window: the
// cross-day lag buckets see the consecutive-day meals too, and must not
// outweigh the 0-6h bucket that actually explains the symptom.
func TestCalculateCorrelations_DairyBloatingScenarioDefaultWindow(t *testing.T) {
	idx, outcomes, _ := dairyBloatingFixture(t)
	from, to := testWindow()

	results := CalculateCorrelations(idx, outcomes, CalculateParams{WindowStart: from, WindowEnd: to})
	if len(results) != 1 {
		t.Fatalf("expected exactly one pair, got %d: %+v", len(results), results)
	}
	pair := results[0]
	if pair.Category != "dairy" || pair.OutcomeID != "Bloating" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if pair.Score <= 0 {
		t.Fatalf("expected positive correlation score at default window, got %+v", pair)
	}
	if pair.SampleSize != 6 {
		t.Fatalf("expected sample size 6 (3 with symptom + 3 quiet meals), got %d", pair.SampleSize)
	}
	if pair.LagBucket != "0-6h" {
		t.Fatalf("expected the 0-6h bucket to win, got %s", pair.LagBucket)
	}
	if pair.Confidence >= 1.0 {
		t.Fatalf("expected confidence below 1, got %f", pair.Confidence)
	}
}

// A bucket where the category never preceded the outcome carries no
// temporal evidence and must not produce a record, no matter how many
// quiet exposures exist.
func TestCalculateCorrelations_NoExposedOccurrenceNoRecord(t *testing.T) {
	from, to := testWindow()

	meals := []*types.MealLog{}
	for i := 0; i < 6; i++ {
		meals = append(meals, mealWith(from.Add(time.Duration(5+i)*24*time.Hour), "whole milk"))
	}
	// symptoms days before any meal: dairy never precedes them
	symptoms := []*types.SymptomLog{}
	for i := 0; i < 3; i++ {
		symptoms = append(symptoms, symptomAt("Headache", 8, from.Add(time.Duration(i)*24*time.Hour).Add(14*time.Hour)))
	}

	idx := BuildExposureIndex(meals, nil, mustCategoryMap(t), from, to, nil)
	outcomes := ExtractOutcomes(symptoms, nil, nil, from, to)
	results := CalculateCorrelations(idx, outcomes, CalculateParams{WindowStart: from, WindowEnd: to})
	if len(results) != 0 {
		t.Fatalf("expected no record without a single exposed occurrence, got %+v", results)
	}
}

// An association window narrower than the nearest bucket leaves no
// qualifying buckets and therefore no records.
func TestCalculateCorrelations_WindowBelowNearestBucket(t *testing.T) {
	idx, outcomes, params := dairyBloatingFixture(t)
	params.TimeWindowHours = 3

	results := CalculateCorrelations(idx, outcomes, params)
	if len(results) != 0 {
		t.Fatalf("expected no qualifying buckets below 6h, got %+v", results)
	}
}

func TestCalculateCorrelations_Deterministic(t *testing.T) {
	idx, outcomes, params := dairyBloatingFixture(t)

	first := CalculateCorrelations(idx, outcomes, params)
	second := CalculateCorrelations(idx, outcomes, params)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results on unchanged input:\n%+v\n%+v", first, second)
	}
}

func TestCalculateCorrelations_SampleSizeFloor(t *testing.T) {
	from, to := testWindow()

	// symptom logged on only 2 occasions: no record may involve it, even
	// though lone exposures could pad the sample past the floor
	meals := []*types.MealLog{}
	symptoms := []*types.SymptomLog{}
	for i := 0; i < 2; i++ {
		mealAt := from.Add(time.Duration(5+i) * 24 * time.Hour)
		meals = append(meals, mealWith(mealAt, "whole milk"))
		symptoms = append(symptoms, symptomAt("Cramps", 7, mealAt.Add(time.Hour)))
	}
	for i := 0; i < 5; i++ {
		meals = append(meals, mealWith(from.Add(time.Duration(10+i)*24*time.Hour), "whole milk"))
	}

	idx := BuildExposureIndex(meals, nil, mustCategoryMap(t), from, to, nil)
	outcomes := ExtractOutcomes(symptoms, nil, nil, from, to)
	results := CalculateCorrelations(idx, outcomes, CalculateParams{WindowStart: from, WindowEnd: to})

	for _, r := range results {
		if r.OutcomeID == "Cramps" {
			t.Fatalf("expected no record for under-sampled symptom, got %+v", r)
		}
	}
}

func TestCalculateCorrelations_ScoreBounded(t *testing.T) {
	idx, outcomes, params := dairyBloatingFixture(t)
	for _, r := range CalculateCorrelations(idx, outcomes, params) {
		if r.Score < -1 || r.Score > 1 {
			t.Fatalf("score out of bounds: %f", r.Score)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Fatalf("confidence out of bounds: %f", r.Confidence)
		}
	}
}

func TestCalculateCorrelations_EmptyInputs(t *testing.T) {
	from, to := testWindow()
	idx := BuildExposureIndex(nil, nil, mustCategoryMap(t), from, to, nil)

	results := CalculateCorrelations(idx, nil, CalculateParams{WindowStart: from, WindowEnd: to})
	if len(results) != 0 {
		t.Fatalf("expected empty result for empty history, got %d", len(results))
	}
}

func TestCalculateCorrelations_MinConfidenceFilters(t *testing.T) {
	idx, outcomes, params := dairyBloatingFixture(t)

	// n=6 with k=5 gives confidence ~0.545; a floor above that drops all
	params.MinConfidence = 0.9
	results := CalculateCorrelations(idx, outcomes, params)
	if len(results) != 0 {
		t.Fatalf("expected confidence floor to drop all pairs, got %d", len(results))
	}
}

func TestConfidenceMonotonicInSampleSize(t *testing.T) {
	prev := 0.0
	for n := 1; n <= 200; n++ {
		c := confidenceFor(n, 5)
		if c < prev {
			t.Fatalf("confidence decreased at n=%d: %f < %f", n, c, prev)
		}
		if c >= 1 {
			t.Fatalf("confidence reached 1 at n=%d", n)
		}
		prev = c
	}
}
