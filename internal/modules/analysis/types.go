package analysis

import (
	"fmt"
	"time"
)

// MaxSeverity is the top of the normalized severity scale; correlation
// scores are normalized against the full spread.
const MaxSeverity = 10.0

// ExposureEvent is one (category tag, hour) occurrence derived from a raw
// meal food or medication log. Events are regenerated from raw logs on each
// run and never persisted.
type ExposureEvent struct {
	Category   string
	OccurredAt time.Time
}

// OutcomeEvent is one symptom, bowel or sleep-disruption occurrence with a
// normalized severity. One raw log row yields exactly one event (sleep rows
// yield one per reported channel).
type OutcomeEvent struct {
	OutcomeID  string
	Severity   float64
	OccurredAt time.Time
}

// LagBucket is a fixed offset window before an outcome: the bucket covers
// [t-To, t-From) for an outcome at t.
type LagBucket struct {
	Label string
	From  time.Duration
	To    time.Duration
}

// DefaultLagBuckets are the windows tested for every category-outcome pair,
// nearest first.
var DefaultLagBuckets = []LagBucket{
	{Label: "0-6h", From: 0, To: 6 * time.Hour},
	{Label: "6-12h", From: 6 * time.Hour, To: 12 * time.Hour},
	{Label: "12-24h", From: 12 * time.Hour, To: 24 * time.Hour},
	{Label: "24-48h", From: 24 * time.Hour, To: 48 * time.Hour},
}

// PairCorrelation is the computed association for one (category, outcome)
// pair, carrying the winning lag bucket.
type PairCorrelation struct {
	Category      string  `json:"category"`
	OutcomeID     string  `json:"outcome_id"`
	Score         float64 `json:"score"`
	Confidence    float64 `json:"confidence"`
	SampleSize    int     `json:"sample_size"`
	LagBucket     string  `json:"lag_bucket"`
	ExposedCount  int     `json:"exposed_count"`
	UnexposedN    int     `json:"unexposed_count"`
	ExposedMean   float64 `json:"exposed_mean"`
	UnexposedMean float64 `json:"unexposed_mean"`
}

// TrendPoint is one calendar day of a trend series. Every requested day is
// present; days without occurrences carry zeros so charts need no gap
// handling.
type TrendPoint struct {
	Date     time.Time          `json:"date"`
	Outcomes map[string]float64 `json:"outcomes"`
}

// InsightSummary aggregates stored correlations into user-facing guidance.
type InsightSummary struct {
	RiskScore       float64           `json:"risk_score"`
	TopTriggers     []RankedRelation  `json:"top_triggers"`
	BeneficialItems []RankedRelation  `json:"beneficial_items"`
	Recommendations []string          `json:"recommendations"`
}

// RankedRelation is a stored correlation projected for ranking and display.
type RankedRelation struct {
	ExposureCategory string  `json:"exposure_category"`
	OutcomeID        string  `json:"outcome_id"`
	Score            float64 `json:"score"`
	Confidence       float64 `json:"confidence"`
	SampleSize       int     `json:"sample_size"`
	LagBucket        string  `json:"lag_bucket"`
}

// Weight orders relations by how well supported they are, not by raw
// magnitude: a moderate score with many samples outranks an extreme score
// from a handful of observations.
func (r RankedRelation) Weight() float64 {
	w := r.Score
	if w < 0 {
		w = -w
	}
	return w * r.Confidence
}

// FeatureImportance reports one lag-bucketed exposure feature's predictive
// signal. The correlation coefficient is the importance; no hidden model
// weights exist, which keeps the ranking auditable.
type FeatureImportance struct {
	FeatureName            string  `json:"feature_name"`
	CorrelationImportance  float64 `json:"correlation_importance"`
	CorrelationCoefficient float64 `json:"correlation_coefficient"`
}

// ModelQualityReport is the per-outcome result of the feature-importance
// scorer. BaselineAccuracy is the majority-class share of the test split;
// TestAccuracy is only meaningful when it exceeds the baseline.
type ModelQualityReport struct {
	SymptomID         string              `json:"symptom_id"`
	TestAccuracy      float64             `json:"test_accuracy"`
	BaselineAccuracy  float64             `json:"baseline_accuracy"`
	TestPrecision     float64             `json:"test_precision"`
	TestRecall        float64             `json:"test_recall"`
	PRAuc             float64             `json:"pr_auc"`
	TrainSize         int                 `json:"train_size"`
	TestSize          int                 `json:"test_size"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
}

func featureName(category string, bucket LagBucket) string {
	return fmt.Sprintf("%s@%s", category, bucket.Label)
}
