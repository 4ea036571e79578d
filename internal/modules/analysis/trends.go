package analysis

import (
	"time"
)

// GenerateTrends produces one TrendPoint per calendar day for the `days`
// days ending at `now`, oldest first. Every observed outcome id appears in
// every day's map, zero-filled when nothing was logged, so the series
// charts without gap handling. With no source data the series still has
// `days` entries.
func GenerateTrends(outcomes []OutcomeEvent, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		return []TrendPoint{}
	}

	_, outcomeIDs := GroupOutcomes(outcomes)

	type acc struct {
		sum   float64
		count int
	}
	daily := map[string]map[string]*acc{}
	for _, e := range outcomes {
		day := dayKey(e.OccurredAt)
		byOutcome := daily[day]
		if byOutcome == nil {
			byOutcome = map[string]*acc{}
			daily[day] = byOutcome
		}
		a := byOutcome[e.OutcomeID]
		if a == nil {
			a = &acc{}
			byOutcome[e.OutcomeID] = a
		}
		a.sum += e.Severity
		a.count++
	}

	start := startOfDay(now).AddDate(0, 0, -(days - 1))
	points := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		values := make(map[string]float64, len(outcomeIDs))
		byOutcome := daily[dayKey(date)]
		for _, id := range outcomeIDs {
			if a, ok := byOutcome[id]; ok && a.count > 0 {
				values[id] = a.sum / float64(a.count)
			} else {
				values[id] = 0
			}
		}
		points = append(points, TrendPoint{Date: date, Outcomes: values})
	}
	return points
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
