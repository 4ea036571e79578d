package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/mburgan/gutcheck-backend/internal/types"
)

const (
	strongTriggerWeight   = 0.35
	moderateTriggerWeight = 0.15
	insightTopN           = 5
)

var riskBlendWeights = []float64{0.5, 0.3, 0.2}

// BuildInsights aggregates stored correlation rows into ranked triggers,
// beneficial items, a 0-100 risk score and template recommendations. An
// empty record set produces an empty summary with keep-logging guidance,
// never an error: sparse history is the normal steady state for new users.
func BuildInsights(records []*types.Correlation) InsightSummary {
	summary := InsightSummary{
		TopTriggers:     []RankedRelation{},
		BeneficialItems: []RankedRelation{},
		Recommendations: []string{},
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		rel := RankedRelation{
			ExposureCategory: rec.ExposureCategory,
			OutcomeID:        rec.OutcomeID,
			Score:            rec.Score,
			Confidence:       rec.Confidence,
			SampleSize:       rec.SampleSize,
			LagBucket:        rec.LagBucket,
		}
		switch {
		case rec.Score > 0:
			summary.TopTriggers = append(summary.TopTriggers, rel)
		case rec.Score < 0:
			summary.BeneficialItems = append(summary.BeneficialItems, rel)
		}
	}

	sortByWeight(summary.TopTriggers)
	sortByWeight(summary.BeneficialItems)
	if len(summary.TopTriggers) > insightTopN {
		summary.TopTriggers = summary.TopTriggers[:insightTopN]
	}
	if len(summary.BeneficialItems) > insightTopN {
		summary.BeneficialItems = summary.BeneficialItems[:insightTopN]
	}

	summary.RiskScore = riskScore(summary.TopTriggers)
	summary.Recommendations = recommendations(summary)
	return summary
}

func sortByWeight(rels []RankedRelation) {
	sort.SliceStable(rels, func(i, j int) bool {
		wi, wj := rels[i].Weight(), rels[j].Weight()
		if wi != wj {
			return wi > wj
		}
		if rels[i].ExposureCategory != rels[j].ExposureCategory {
			return rels[i].ExposureCategory < rels[j].ExposureCategory
		}
		return rels[i].OutcomeID < rels[j].OutcomeID
	})
}

// riskScore blends the confidence-weighted magnitudes of the top triggers
// into a 0-100 scale. Fewer than three triggers just shortens the blend.
func riskScore(triggers []RankedRelation) float64 {
	if len(triggers) == 0 {
		return 0
	}
	var weighted, total float64
	for i, t := range triggers {
		if i >= len(riskBlendWeights) {
			break
		}
		weighted += t.Weight() * riskBlendWeights[i]
		total += riskBlendWeights[i]
	}
	if total == 0 {
		return 0
	}
	return math.Round(weighted/total*1000) / 10
}

func recommendations(summary InsightSummary) []string {
	recs := []string{}

	if len(summary.TopTriggers) == 0 && len(summary.BeneficialItems) == 0 {
		return []string{"Not enough correlated data yet. Keep logging meals, medications and symptoms to build up history."}
	}

	for _, t := range summary.TopTriggers {
		switch {
		case t.Weight() >= strongTriggerWeight:
			recs = append(recs, fmt.Sprintf("Strong trigger identified: %s is associated with worse %s within %s of intake. Consider an elimination trial.", t.ExposureCategory, t.OutcomeID, t.LagBucket))
		case t.Weight() >= moderateTriggerWeight:
			recs = append(recs, fmt.Sprintf("Possible trigger: %s may worsen %s (seen across %d occurrences). Keep logging to firm this up.", t.ExposureCategory, t.OutcomeID, t.SampleSize))
		}
	}

	for _, b := range summary.BeneficialItems {
		if b.Weight() >= moderateTriggerWeight {
			recs = append(recs, fmt.Sprintf("%s is associated with milder %s. It may be worth keeping in your routine.", b.ExposureCategory, b.OutcomeID))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Correlations found so far are weak. Keep logging so stronger patterns can emerge.")
	}
	return recs
}
