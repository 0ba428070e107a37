package learning

import (
	"context"
	"sort"
	"time"

	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// DefaultMonthsBack is the trailing window used when the caller does
// not ask for a specific one.
const DefaultMonthsBack = 3

// Aggregator digests recent calendar history into a bounded summary
// that biases plan generation toward accepted meals and away from
// recent repeats.
//
// The aggregator is advisory: any store failure degrades to an empty
// summary instead of propagating, because generation must work without
// history.
type Aggregator struct {
	sched schedule.Repository
	log   *logger.Logger
	now   func() time.Time
}

// NewAggregator creates an Aggregator.
func NewAggregator(sched schedule.Repository, log *logger.Logger) *Aggregator {
	return &Aggregator{
		sched: sched,
		log:   log,
		now:   time.Now,
	}
}

// Summarize scans schedule entries from the trailing monthsBack months
// (default 3 when monthsBack <= 0) and produces the learning summary.
// An empty window yields an empty summary, never an error.
func (a *Aggregator) Summarize(ctx context.Context, sess session.Session, monthsBack int) mealplan.MealLearningSummary {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}
	cutoff := a.now().AddDate(0, -monthsBack, 0).Format(mealplan.DateFormat)

	window, err := a.sched.Since(ctx, sess, cutoff)
	if err != nil {
		a.log.Warn("Failed to load schedule window, using empty summary", "error", err)
		return emptySummary()
	}
	if len(window) == 0 {
		return emptySummary()
	}

	breakfasts := map[string]struct{}{}
	lunches := map[string]struct{}{}
	dinners := map[string]struct{}{}
	recent := []string{}
	total := 0

	// The window arrives newest first; each date contributes up to
	// three slot-events in breakfast, lunch, dinner order. The recency
	// sample keeps duplicates on purpose (it answers "what did I just
	// eat", not "what do I like"), unlike the accepted sets.
	for _, day := range window {
		for _, meal := range []struct {
			name string
			set  map[string]struct{}
		}{
			{day.Breakfast, breakfasts},
			{day.Lunch, lunches},
			{day.Dinner, dinners},
		} {
			if meal.name == "" {
				continue
			}
			meal.set[meal.name] = struct{}{}
			total++
			if len(recent) < mealplan.RecentMealsCap {
				recent = append(recent, meal.name)
			}
		}
	}

	return mealplan.MealLearningSummary{
		AcceptedBreakfasts: sortedKeys(breakfasts),
		AcceptedLunches:    sortedKeys(lunches),
		AcceptedDinners:    sortedKeys(dinners),
		RecentMeals:        recent,
		TotalMealCount:     total,
		OldestDate:         window[len(window)-1].Day,
		NewestDate:         window[0].Day,
	}
}

func emptySummary() mealplan.MealLearningSummary {
	return mealplan.MealLearningSummary{
		AcceptedBreakfasts: []string{},
		AcceptedLunches:    []string{},
		AcceptedDinners:    []string{},
		RecentMeals:        []string{},
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
