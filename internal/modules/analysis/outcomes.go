package analysis

import (
	"sort"
	"time"

	"github.com/mburgan/gutcheck-backend/internal/types"
)

// Outcome channel ids. Symptom outcomes use the logged symptom name as id.
const (
	OutcomeBowel        = "bowel:consistency"
	OutcomeSleepDryEye  = "sleep:dry_eye"
	OutcomeSleepFatigue = "sleep:fatigue"
)

// bristolSeverity maps Bristol stool types to a severity proxy: the
// extremes (constipation 1-2, diarrhea 6-7) read as high severity, the
// normal range 3-5 as low.
var bristolSeverity = map[int]float64{
	1: 8, 2: 7, 3: 4, 4: 3, 5: 4, 6: 7, 7: 9,
}

// ExtractOutcomes turns raw symptom, bowel and sleep logs inside [from, to]
// into outcome events with normalized severity. No aggregation happens
// here: one raw row yields one event per reported channel.
func ExtractOutcomes(symptoms []*types.SymptomLog, bowels []*types.BowelLog, sleeps []*types.SleepLog, from, to time.Time) []OutcomeEvent {
	events := make([]OutcomeEvent, 0, len(symptoms)+len(bowels)+2*len(sleeps))

	for _, s := range symptoms {
		if s == nil || s.Symptom == "" || !inWindow(s.OccurredAt, from, to) {
			continue
		}
		events = append(events, OutcomeEvent{
			OutcomeID:  s.Symptom,
			Severity:   clamp(float64(s.Severity), 0, MaxSeverity),
			OccurredAt: s.OccurredAt,
		})
	}

	for _, b := range bowels {
		if b == nil || !inWindow(b.OccurredAt, from, to) {
			continue
		}
		sev, ok := bristolSeverity[b.BristolType]
		if !ok {
			continue
		}
		events = append(events, OutcomeEvent{
			OutcomeID:  OutcomeBowel,
			Severity:   sev,
			OccurredAt: b.OccurredAt,
		})
	}

	for _, sl := range sleeps {
		if sl == nil || !inWindow(sl.SleptAt, from, to) {
			continue
		}
		if sl.DryEyeSeverity > 0 {
			events = append(events, OutcomeEvent{
				OutcomeID:  OutcomeSleepDryEye,
				Severity:   clamp(float64(sl.DryEyeSeverity), 0, MaxSeverity),
				OccurredAt: sl.SleptAt,
			})
		}
		if sl.NextDayFatigue > 0 {
			events = append(events, OutcomeEvent{
				OutcomeID:  OutcomeSleepFatigue,
				Severity:   clamp(float64(sl.NextDayFatigue), 0, MaxSeverity),
				OccurredAt: sl.SleptAt,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OutcomeID < events[j].OutcomeID
		}
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return events
}

// GroupOutcomes buckets events by outcome id, preserving chronological
// order inside each group, and returns the sorted id list.
func GroupOutcomes(events []OutcomeEvent) (map[string][]OutcomeEvent, []string) {
	groups := map[string][]OutcomeEvent{}
	for _, e := range events {
		groups[e.OutcomeID] = append(groups[e.OutcomeID], e)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return groups, ids
}
