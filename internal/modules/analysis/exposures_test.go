package analysis

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mburgan/gutcheck-backend/internal/types"
)

func testWindow() (time.Time, time.Time) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -30), end
}

func mealWith(at time.Time, foods ...string) *types.MealLog {
	meal := &types.MealLog{ID: uuid.New(), ConsumedAt: at, Name: "meal"}
	for _, f := range foods {
		meal.Foods = append(meal.Foods, &types.MealFood{ID: uuid.New(), Name: f})
	}
	return meal
}

func mustCategoryMap(t *testing.T) *CategoryMap {
	t.Helper()
	m, err := DefaultCategoryMap()
	if err != nil {
		t.Fatalf("category map: %v", err)
	}
	return m
}

func TestBuildExposureIndex_CategorizesAndDedupes(t *testing.T) {
	from, to := testWindow()
	at := from.Add(24 * time.Hour)

	// cheese and milk both resolve to dairy in the same hour: one event
	meals := []*types.MealLog{mealWith(at, "cheddar cheese", "whole milk")}
	idx := BuildExposureIndex(meals, nil, mustCategoryMap(t), from, to, nil)

	cats := idx.Categories()
	if len(cats) != 1 || cats[0] != "dairy" {
		t.Fatalf("expected single dairy category, got %v", cats)
	}
	if n := len(idx.EventsFor("dairy")); n != 1 {
		t.Fatalf("expected deduped single event, got %d", n)
	}
}

func TestBuildExposureIndex_MedicationsAndUnmappedItems(t *testing.T) {
	from, to := testWindow()
	at := from.Add(48 * time.Hour)

	meds := []*types.MedicationLog{
		{ID: uuid.New(), Name: "Ibuprofen 400mg", TakenAt: at},
		{ID: uuid.New(), Name: "mystery supplement", TakenAt: at},
	}
	idx := BuildExposureIndex(nil, meds, mustCategoryMap(t), from, to, nil)

	cats := idx.Categories()
	if len(cats) != 1 || cats[0] != "nsaid" {
		t.Fatalf("expected nsaid only (unmapped skipped), got %v", cats)
	}
}

func TestBuildExposureIndex_ExcludesOutOfWindow(t *testing.T) {
	from, to := testWindow()

	meals := []*types.MealLog{
		mealWith(from.Add(-time.Hour), "milk"),
		mealWith(to.Add(time.Hour), "milk"),
		mealWith(time.Time{}, "milk"),
	}
	idx := BuildExposureIndex(meals, nil, mustCategoryMap(t), from, to, nil)
	if n := len(idx.Events()); n != 0 {
		t.Fatalf("expected no events outside window, got %d", n)
	}
}

func TestPresentInBucket(t *testing.T) {
	from, to := testWindow()
	mealAt := from.Add(10 * 24 * time.Hour)
	idx := BuildExposureIndex([]*types.MealLog{mealWith(mealAt, "milk")}, nil, mustCategoryMap(t), from, to, nil)

	outcomeAt := mealAt.Add(3 * time.Hour)
	if !idx.PresentInBucket("dairy", outcomeAt, DefaultLagBuckets[0]) {
		t.Fatalf("expected dairy present in 0-6h bucket")
	}
	if idx.PresentInBucket("dairy", outcomeAt, DefaultLagBuckets[2]) {
		t.Fatalf("did not expect dairy present in 12-24h bucket")
	}
	if idx.PresentInBucket("gluten", outcomeAt, DefaultLagBuckets[0]) {
		t.Fatalf("did not expect unknown category present")
	}
}
