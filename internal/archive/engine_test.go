package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/AkshayAD/Cook-Commander/internal/draft"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

type fixture struct {
	store  *localstore.Store
	drafts draft.Repository
	sched  schedule.Repository
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "archive_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := localstore.NewStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}
	resolver := repository.NewResolver(false)
	drafts := draft.New(resolver, store, nil)
	sched := schedule.New(resolver, store, nil, nil, logger.NewNop())
	return &fixture{
		store:  store,
		drafts: drafts,
		sched:  sched,
		engine: NewEngine(drafts, sched, store, logger.NewNop()),
	}
}

func weekDraft() mealplan.WeeklyPlan {
	labels := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	plan := mealplan.WeeklyPlan{}
	for i, l := range labels {
		plan.Days = append(plan.Days, mealplan.DayPlan{
			Day:       l,
			Breakfast: fmt.Sprintf("Breakfast %d", i),
			Lunch:     fmt.Sprintf("Lunch %d", i),
			Dinner:    fmt.Sprintf("Dinner %d", i),
		})
	}
	return plan
}

func TestArchiveValidation(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	f := newFixture(t)

	t.Run("BadStartDate", func(t *testing.T) {
		err := f.engine.Archive(ctx, sess, weekDraft(), "05/01/2026", true)
		if !errors.Is(err, mealplan.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		short := mealplan.WeeklyPlan{Days: []mealplan.DayPlan{{Day: "Monday"}}}
		err := f.engine.Archive(ctx, sess, short, "2026-01-05", true)
		if !errors.Is(err, mealplan.ErrMalformedRecord) {
			t.Errorf("Expected ErrMalformedRecord, got %v", err)
		}
	})
}

func TestArchiveOverwrite(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	f := newFixture(t)

	// Pre-populate one day inside the target week and one outside it.
	if err := f.sched.UpsertDay(ctx, sess, "2026-01-06", mealplan.DayPlan{Lunch: "Old Lunch"}); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}
	if err := f.sched.UpsertDay(ctx, sess, "2026-02-01", mealplan.DayPlan{Dinner: "Outside"}); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}

	plan := weekDraft()
	if err := f.drafts.Save(ctx, sess, plan); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	if err := f.engine.Archive(ctx, sess, plan, "2026-01-05", true); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	// Every day in range equals the corresponding draft day, keyed by
	// ISO date instead of the weekday label.
	for i := 0; i < mealplan.DaysPerWeek; i++ {
		date := fmt.Sprintf("2026-01-%02d", 5+i)
		got, found, err := f.sched.Get(ctx, sess, date)
		if err != nil {
			t.Fatalf("Failed to get %s: %v", date, err)
		}
		if !found {
			t.Fatalf("Expected %s to be populated", date)
		}
		if got.Day != date {
			t.Errorf("Expected Day field '%s', got '%s'", date, got.Day)
		}
		if got.Breakfast != fmt.Sprintf("Breakfast %d", i) {
			t.Errorf("Expected breakfast for day %d, got '%s'", i, got.Breakfast)
		}
	}

	// The pre-existing 2026-01-06 lunch was overwritten.
	day, _, _ := f.sched.Get(ctx, sess, "2026-01-06")
	if day.Lunch != "Lunch 1" {
		t.Errorf("Expected overwrite to replace lunch, got '%s'", day.Lunch)
	}

	// Days outside the range are untouched.
	outside, _, _ := f.sched.Get(ctx, sess, "2026-02-01")
	if outside.Dinner != "Outside" {
		t.Errorf("Expected out-of-range day untouched, got '%s'", outside.Dinner)
	}

	// Archiving is a move: the draft is gone.
	current, err := f.drafts.Current(ctx, sess)
	if err != nil {
		t.Fatalf("Failed to read draft: %v", err)
	}
	if current != nil {
		t.Error("Expected draft to be cleared after archive")
	}
}

func TestArchivePreserve(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	f := newFixture(t)

	// A populated day, an all-empty day, and absent days.
	if err := f.sched.UpsertDay(ctx, sess, "2026-01-06", mealplan.DayPlan{Lunch: "Keep Me"}); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}
	if err := f.sched.UpsertDay(ctx, sess, "2026-01-07", mealplan.DayPlan{}); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}

	plan := weekDraft()
	if err := f.drafts.Save(ctx, sess, plan); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	if err := f.engine.Archive(ctx, sess, plan, "2026-01-05", false); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	// The populated day is untouched.
	kept, _, _ := f.sched.Get(ctx, sess, "2026-01-06")
	if kept.Lunch != "Keep Me" {
		t.Errorf("Expected populated day preserved, got '%s'", kept.Lunch)
	}
	if kept.Breakfast != "" {
		t.Errorf("Expected preserved day not merged, got breakfast '%s'", kept.Breakfast)
	}

	// The all-empty day and the absent days are filled.
	filled, _, _ := f.sched.Get(ctx, sess, "2026-01-07")
	if filled.Breakfast != "Breakfast 2" {
		t.Errorf("Expected empty day filled, got '%s'", filled.Breakfast)
	}
	absent, found, _ := f.sched.Get(ctx, sess, "2026-01-05")
	if !found || absent.Breakfast != "Breakfast 0" {
		t.Errorf("Expected absent day filled, got %+v", absent)
	}

	// Either policy clears the draft.
	current, err := f.drafts.Current(ctx, sess)
	if err != nil {
		t.Fatalf("Failed to read draft: %v", err)
	}
	if current != nil {
		t.Error("Expected draft to be cleared after archive")
	}
}

func TestArchiveScenarioFromEmptySchedule(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	f := newFixture(t)

	plan := weekDraft()
	plan.Days[0] = mealplan.DayPlan{Day: "Monday", Breakfast: "Idli", Lunch: "", Dinner: "Dal"}
	if err := f.drafts.Save(ctx, sess, plan); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}

	if err := f.engine.Archive(ctx, sess, plan, "2026-01-05", true); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	got, found, err := f.sched.Get(ctx, sess, "2026-01-05")
	if err != nil || !found {
		t.Fatalf("Expected 2026-01-05 to exist, found=%v err=%v", found, err)
	}
	want := mealplan.DayPlan{Day: "2026-01-05", Breakfast: "Idli", Lunch: "", Dinner: "Dal"}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestRevert(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	f := newFixture(t)

	t.Run("NothingToRevert", func(t *testing.T) {
		err := f.engine.Revert(ctx, sess)
		if !errors.Is(err, mealplan.ErrNotFound) {
			t.Errorf("Expected ErrNotFound before any archive, got %v", err)
		}
	})

	if err := f.sched.UpsertDay(ctx, sess, "2026-01-06", mealplan.DayPlan{Lunch: "Original"}); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}

	plan := weekDraft()
	if err := f.drafts.Save(ctx, sess, plan); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	if err := f.engine.Archive(ctx, sess, plan, "2026-01-05", true); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if err := f.engine.Revert(ctx, sess); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}

	// The previously populated day is back to its prior value.
	day, _, _ := f.sched.Get(ctx, sess, "2026-01-06")
	if day.Lunch != "Original" || day.Breakfast != "" {
		t.Errorf("Expected prior entry restored, got %+v", day)
	}

	// Previously absent days are blank again.
	blank, _, _ := f.sched.Get(ctx, sess, "2026-01-05")
	if !blank.Empty() {
		t.Errorf("Expected previously absent day blanked, got %+v", blank)
	}

	t.Run("SingleLevelOnly", func(t *testing.T) {
		err := f.engine.Revert(ctx, sess)
		if !errors.Is(err, mealplan.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second revert, got %v", err)
		}
	})
}

// One command per process: the engine that reverts is never the engine
// that archived, so the snapshot must round-trip through the store.
func TestRevertAcrossEngineInstances(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	f := newFixture(t)

	if err := f.sched.UpsertDay(ctx, sess, "2026-01-06", mealplan.DayPlan{Lunch: "Original"}); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}

	plan := weekDraft()
	if err := f.drafts.Save(ctx, sess, plan); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	if err := f.engine.Archive(ctx, sess, plan, "2026-01-05", true); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	fresh := NewEngine(f.drafts, f.sched, f.store, logger.NewNop())
	if err := fresh.Revert(ctx, sess); err != nil {
		t.Fatalf("Revert from a fresh engine failed: %v", err)
	}

	day, _, _ := f.sched.Get(ctx, sess, "2026-01-06")
	if day.Lunch != "Original" || day.Breakfast != "" {
		t.Errorf("Expected prior entry restored, got %+v", day)
	}
	blank, _, _ := f.sched.Get(ctx, sess, "2026-01-05")
	if !blank.Empty() {
		t.Errorf("Expected previously absent day blanked, got %+v", blank)
	}

	t.Run("SecondProcessSeesNothing", func(t *testing.T) {
		another := NewEngine(f.drafts, f.sched, f.store, logger.NewNop())
		err := another.Revert(ctx, sess)
		if !errors.Is(err, mealplan.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after the snapshot is consumed, got %v", err)
		}
	})
}
