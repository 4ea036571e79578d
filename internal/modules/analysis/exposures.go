package analysis

import (
	"sort"
	"time"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

// ExposureIndex is the sparse hour-indexed presence map shared by the
// correlation calculator and the feature-importance scorer. Exposure
// presence is hour-granular: a category is present at an hour when any
// contributing item was logged in that hour.
type ExposureIndex struct {
	hours  map[string]map[int64]bool
	events []ExposureEvent
}

// BuildExposureIndex converts raw meal and medication logs inside
// [from, to] into categorized exposure events. Items with no category
// mapping are skipped with a warning; zero-valued or out-of-window
// timestamps are excluded silently.
func BuildExposureIndex(meals []*types.MealLog, meds []*types.MedicationLog, catMap *CategoryMap, from, to time.Time, log *logger.Logger) *ExposureIndex {
	idx := &ExposureIndex{hours: map[string]map[int64]bool{}}

	for _, meal := range meals {
		if meal == nil || !inWindow(meal.ConsumedAt, from, to) {
			continue
		}
		for _, food := range meal.Foods {
			if food == nil {
				continue
			}
			tags := catMap.Tags(food.Name)
			if len(tags) == 0 {
				if log != nil {
					log.Warn("food item has no category mapping, skipping", "item", food.Name)
				}
				continue
			}
			for _, tag := range tags {
				idx.add(tag, meal.ConsumedAt)
			}
		}
	}

	for _, med := range meds {
		if med == nil || !inWindow(med.TakenAt, from, to) {
			continue
		}
		tags := catMap.Tags(med.Name)
		if len(tags) == 0 {
			if log != nil {
				log.Warn("medication has no category mapping, skipping", "item", med.Name)
			}
			continue
		}
		for _, tag := range tags {
			idx.add(tag, med.TakenAt)
		}
	}

	sort.Slice(idx.events, func(i, j int) bool {
		if idx.events[i].OccurredAt.Equal(idx.events[j].OccurredAt) {
			return idx.events[i].Category < idx.events[j].Category
		}
		return idx.events[i].OccurredAt.Before(idx.events[j].OccurredAt)
	})
	return idx
}

// add records presence, deduplicating by (category, hour) so several items
// resolving to the same tag in one meal count once.
func (idx *ExposureIndex) add(tag string, at time.Time) {
	hour := at.Truncate(time.Hour)
	hourKey := hour.Unix()
	byHour := idx.hours[tag]
	if byHour == nil {
		byHour = map[int64]bool{}
		idx.hours[tag] = byHour
	}
	if byHour[hourKey] {
		return
	}
	byHour[hourKey] = true
	idx.events = append(idx.events, ExposureEvent{Category: tag, OccurredAt: hour})
}

// Categories lists observed category tags in sorted order for deterministic
// iteration downstream.
func (idx *ExposureIndex) Categories() []string {
	cats := make([]string, 0, len(idx.hours))
	for tag := range idx.hours {
		cats = append(cats, tag)
	}
	sort.Strings(cats)
	return cats
}

// Events returns all deduplicated exposure events in chronological order.
func (idx *ExposureIndex) Events() []ExposureEvent {
	return idx.events
}

// EventsFor returns the events of one category in chronological order.
func (idx *ExposureIndex) EventsFor(category string) []ExposureEvent {
	out := make([]ExposureEvent, 0)
	for _, e := range idx.events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// PresentInBucket reports whether the category was logged in the lag window
// [t-bucket.To, t-bucket.From) before the outcome at t.
func (idx *ExposureIndex) PresentInBucket(category string, outcomeAt time.Time, bucket LagBucket) bool {
	byHour := idx.hours[category]
	if len(byHour) == 0 {
		return false
	}
	start := outcomeAt.Add(-bucket.To).Truncate(time.Hour)
	end := outcomeAt.Add(-bucket.From)
	for h := start; h.Before(end); h = h.Add(time.Hour) {
		if byHour[h.Unix()] {
			return true
		}
	}
	return false
}

func inWindow(t time.Time, from, to time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(from) && !t.After(to)
}
