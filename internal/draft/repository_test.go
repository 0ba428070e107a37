package draft

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

func testPlan() mealplan.WeeklyPlan {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	plan := mealplan.WeeklyPlan{}
	for _, d := range days {
		plan.Days = append(plan.Days, mealplan.DayPlan{
			Day:       d,
			Breakfast: "Idli",
			Lunch:     "Rajma Chawal",
			Dinner:    "Dal Tadka",
		})
	}
	return plan
}

func newOfflineRepo(t *testing.T) Repository {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "draft_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := localstore.NewStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}
	return New(repository.NewResolver(false), store, nil)
}

func TestOfflineDraft(t *testing.T) {
	ctx := context.Background()
	sess := session.Local()
	repo := newOfflineRepo(t)

	t.Run("CurrentNilWhenMissing", func(t *testing.T) {
		plan, err := repo.Current(ctx, sess)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if plan != nil {
			t.Errorf("Expected nil plan, got %+v", plan)
		}
	})

	t.Run("RejectsWrongLength", func(t *testing.T) {
		err := repo.Save(ctx, sess, mealplan.WeeklyPlan{Days: []mealplan.DayPlan{{Day: "Monday"}}})
		if !errors.Is(err, mealplan.ErrMalformedRecord) {
			t.Errorf("Expected ErrMalformedRecord for a 1-day draft, got %v", err)
		}
	})

	t.Run("SaveAndCurrent", func(t *testing.T) {
		in := testPlan()
		if err := repo.Save(ctx, sess, in); err != nil {
			t.Fatalf("Failed to save draft: %v", err)
		}
		out, err := repo.Current(ctx, sess)
		if err != nil {
			t.Fatalf("Failed to get draft: %v", err)
		}
		if out == nil {
			t.Fatal("Expected a draft, got nil")
		}
		if len(out.Days) != mealplan.DaysPerWeek {
			t.Fatalf("Expected 7 days, got %d", len(out.Days))
		}
		if out.Days[0].Day != "Monday" || out.Days[0].Breakfast != "Idli" {
			t.Errorf("Unexpected first day: %+v", out.Days[0])
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := repo.Clear(ctx, sess); err != nil {
			t.Fatalf("Failed to clear draft: %v", err)
		}
		plan, err := repo.Current(ctx, sess)
		if err != nil {
			t.Fatalf("Expected no error after clear, got %v", err)
		}
		if plan != nil {
			t.Error("Expected nil draft after clear")
		}
		// Clearing again is harmless.
		if err := repo.Clear(ctx, sess); err != nil {
			t.Errorf("Expected no error on double clear, got %v", err)
		}
	})
}
