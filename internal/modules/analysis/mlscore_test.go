package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/mburgan/gutcheck-backend/internal/types"
)

// mlFixture builds 30 daily occurrences: even days get a dairy meal two
// hours before a severe symptom, odd days a mild symptom with no meal.
func mlFixture(t *testing.T) (*ExposureIndex, []OutcomeEvent) {
	t.Helper()
	from, to := testWindow()

	meals := []*types.MealLog{}
	symptoms := []*types.SymptomLog{}
	for i := 0; i < 30; i++ {
		day := from.AddDate(0, 0, i)
		occurredAt := day.Add(14 * time.Hour)
		if i%2 == 0 {
			meals = append(meals, mealWith(day.Add(12*time.Hour), "whole milk"))
			symptoms = append(symptoms, symptomAt("Bloating", 9, occurredAt))
		} else {
			symptoms = append(symptoms, symptomAt("Bloating", 2, occurredAt))
		}
	}

	idx := BuildExposureIndex(meals, nil, mustCategoryMap(t), from, to, nil)
	outcomes := ExtractOutcomes(symptoms, nil, nil, from, to)
	return idx, outcomes
}

func TestScoreOutcome_ReportsQualityMetrics(t *testing.T) {
	idx, outcomes := mlFixture(t)
	groups, _ := GroupOutcomes(outcomes)

	report, ok := ScoreOutcome(idx, "Bloating", groups["Bloating"], MLParams{}, nil)
	if !ok {
		t.Fatalf("expected outcome to qualify")
	}
	if report.TrainSize != 21 || report.TestSize != 9 {
		t.Fatalf("expected chronological 21/9 split, got %d/%d", report.TrainSize, report.TestSize)
	}
	if len(report.FeatureImportance) != 3 {
		t.Fatalf("expected top 3 features, got %d", len(report.FeatureImportance))
	}

	top := report.FeatureImportance[0]
	if top.FeatureName != "dairy@0-6h" {
		t.Fatalf("expected dairy@0-6h as strongest feature, got %+v", top)
	}
	if math.Abs(top.CorrelationCoefficient-1.0) > 1e-9 {
		t.Fatalf("expected perfect train correlation, got %f", top.CorrelationCoefficient)
	}
	if top.CorrelationImportance != math.Abs(top.CorrelationCoefficient) {
		t.Fatalf("importance must equal |coefficient|: %+v", top)
	}

	// test split holds 4 severe and 5 mild days; perfect features separate
	wantBaseline := 5.0 / 9.0
	if math.Abs(report.BaselineAccuracy-wantBaseline) > 1e-9 {
		t.Fatalf("baseline must be the majority-class share %f, got %f", wantBaseline, report.BaselineAccuracy)
	}
	if report.TestAccuracy != 1.0 {
		t.Fatalf("expected perfect test accuracy on separable data, got %f", report.TestAccuracy)
	}
	if report.TestPrecision != 1.0 || report.TestRecall != 1.0 {
		t.Fatalf("expected perfect precision/recall, got %f/%f", report.TestPrecision, report.TestRecall)
	}
	if math.Abs(report.PRAuc-1.0) > 1e-9 {
		t.Fatalf("expected PR AUC 1 for perfect ranking, got %f", report.PRAuc)
	}
}

func TestScoreOutcome_SkipsImbalancedClasses(t *testing.T) {
	from, to := testWindow()

	// 9 severe, 40 mild: under the 10-instance floor for the minority class
	symptoms := []*types.SymptomLog{}
	for i := 0; i < 49; i++ {
		severity := 2
		if i < 9 {
			severity = 9
		}
		symptoms = append(symptoms, symptomAt("Headache", severity, from.Add(time.Duration(i)*12*time.Hour)))
	}
	outcomes := ExtractOutcomes(symptoms, nil, nil, from, to)
	idx := BuildExposureIndex(nil, nil, mustCategoryMap(t), from, to, nil)

	_, ok := ScoreOutcome(idx, "Headache", outcomes, MLParams{}, nil)
	if ok {
		t.Fatalf("expected class-imbalanced outcome to be skipped")
	}
}

func TestScoreOutcome_ChronologicalSplitNotShuffled(t *testing.T) {
	idx, outcomes := mlFixture(t)
	groups, _ := GroupOutcomes(outcomes)
	occurrences := groups["Bloating"]

	report, ok := ScoreOutcome(idx, "Bloating", occurrences, MLParams{}, nil)
	if !ok {
		t.Fatalf("expected outcome to qualify")
	}

	// the split boundary is positional: train is exactly the oldest 70%
	boundary := occurrences[report.TrainSize-1].OccurredAt
	for _, occ := range occurrences[report.TrainSize:] {
		if occ.OccurredAt.Before(boundary) {
			t.Fatalf("test instance precedes train boundary: %v < %v", occ.OccurredAt, boundary)
		}
	}
}
