package analysis

import (
	"sort"

	"github.com/mburgan/gutcheck-backend/internal/logger"
)

// MLParams control the feature-importance scorer.
type MLParams struct {
	// HighSeverityThreshold binarizes severity into the positive class.
	HighSeverityThreshold float64
	// MinClassCount is the per-class floor; outcomes below it are skipped.
	MinClassCount int
	// TrainFraction of the chronologically ordered instances goes to train.
	TrainFraction float64
	// TopFeatures is how many ranked features each report retains.
	TopFeatures int
}

const (
	DefaultHighSeverityThreshold = 7.0
	DefaultMinClassCount         = 10
	DefaultTrainFraction         = 0.7
	DefaultTopFeatures           = 3
)

func (p *MLParams) applyDefaults() {
	if p.HighSeverityThreshold <= 0 {
		p.HighSeverityThreshold = DefaultHighSeverityThreshold
	}
	if p.MinClassCount <= 0 {
		p.MinClassCount = DefaultMinClassCount
	}
	if p.TrainFraction <= 0 || p.TrainFraction >= 1 {
		p.TrainFraction = DefaultTrainFraction
	}
	if p.TopFeatures <= 0 {
		p.TopFeatures = DefaultTopFeatures
	}
}

// ScoreOutcome ranks the predictive signal of every lag-bucketed exposure
// feature against a binarized high-severity label for one outcome, and
// reports test-split quality metrics alongside the baseline so callers can
// judge whether the ranking beats trivial prediction. Outcomes without
// enough instances in both classes return (report, false) and a warning is
// logged; skipping is expected, not an error.
//
// The train/test split is chronological, never shuffled: adjacent-day
// occurrences share correlated noise and a random split would leak it.
func ScoreOutcome(idx *ExposureIndex, outcomeID string, occurrences []OutcomeEvent, params MLParams, log *logger.Logger) (ModelQualityReport, bool) {
	params.applyDefaults()
	report := ModelQualityReport{SymptomID: outcomeID, FeatureImportance: []FeatureImportance{}}

	// occurrences arrive chronologically sorted from the extractor
	labels := make([]bool, len(occurrences))
	posCount := 0
	for i, occ := range occurrences {
		labels[i] = occ.Severity >= params.HighSeverityThreshold
		if labels[i] {
			posCount++
		}
	}
	negCount := len(occurrences) - posCount
	if posCount < params.MinClassCount || negCount < params.MinClassCount {
		if log != nil {
			log.Warn("outcome skipped: not enough instances in both severity classes",
				"outcome_id", outcomeID, "high_severity", posCount, "low_severity", negCount, "floor", params.MinClassCount)
		}
		return report, false
	}

	categories := idx.Categories()
	featureNames := make([]string, 0, len(categories)*len(DefaultLagBuckets))
	features := make(map[string][]float64)
	for _, cat := range categories {
		for _, bucket := range DefaultLagBuckets {
			name := featureName(cat, bucket)
			col := make([]float64, len(occurrences))
			for i, occ := range occurrences {
				if idx.PresentInBucket(cat, occ.OccurredAt, bucket) {
					col[i] = 1
				}
			}
			featureNames = append(featureNames, name)
			features[name] = col
		}
	}

	nTrain := int(float64(len(occurrences)) * params.TrainFraction)
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain >= len(occurrences) {
		nTrain = len(occurrences) - 1
	}
	report.TrainSize = nTrain
	report.TestSize = len(occurrences) - nTrain

	trainLabels := labelVector(labels[:nTrain])

	ranked := make([]FeatureImportance, 0, len(featureNames))
	for _, name := range featureNames {
		r := pearson(features[name][:nTrain], trainLabels)
		ranked = append(ranked, FeatureImportance{
			FeatureName:            name,
			CorrelationImportance:  abs(r),
			CorrelationCoefficient: r,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CorrelationImportance != ranked[j].CorrelationImportance {
			return ranked[i].CorrelationImportance > ranked[j].CorrelationImportance
		}
		return ranked[i].FeatureName < ranked[j].FeatureName
	})
	if len(ranked) > params.TopFeatures {
		ranked = ranked[:params.TopFeatures]
	}
	report.FeatureImportance = ranked

	evaluateTestSplit(&report, features, labels, nTrain)
	return report, true
}

// evaluateTestSplit scores each test instance as the sum of retained
// coefficients over present features; positive sum predicts the positive
// class. The decision weight of a feature is its train coefficient.
func evaluateTestSplit(report *ModelQualityReport, features map[string][]float64, labels []bool, nTrain int) {
	testLabels := labels[nTrain:]
	nTest := len(testLabels)
	if nTest == 0 {
		return
	}

	scores := make([]float64, nTest)
	for _, fi := range report.FeatureImportance {
		col := features[fi.FeatureName]
		for i := 0; i < nTest; i++ {
			scores[i] += fi.CorrelationCoefficient * col[nTrain+i]
		}
	}

	var tp, fp, tn, fn int
	testPos := 0
	for i, label := range testLabels {
		if label {
			testPos++
		}
		pred := scores[i] > 0
		switch {
		case pred && label:
			tp++
		case pred && !label:
			fp++
		case !pred && !label:
			tn++
		default:
			fn++
		}
	}

	report.TestAccuracy = float64(tp+tn) / float64(nTest)
	majority := testPos
	if nTest-testPos > majority {
		majority = nTest - testPos
	}
	report.BaselineAccuracy = float64(majority) / float64(nTest)
	if tp+fp > 0 {
		report.TestPrecision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		report.TestRecall = float64(tp) / float64(tp+fn)
	}
	report.PRAuc = prAUC(scores, testLabels)
}

func labelVector(labels []bool) []float64 {
	out := make([]float64, len(labels))
	for i, l := range labels {
		if l {
			out[i] = 1
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
