package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/AkshayAD/Cook-Commander/internal/archive"
	"github.com/AkshayAD/Cook-Commander/internal/draft"
	"github.com/AkshayAD/Cook-Commander/internal/generator"
	"github.com/AkshayAD/Cook-Commander/internal/grocery"
	"github.com/AkshayAD/Cook-Commander/internal/history"
	"github.com/AkshayAD/Cook-Commander/internal/learning"
	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/notify"
	"github.com/AkshayAD/Cook-Commander/internal/profile"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
	"github.com/AkshayAD/Cook-Commander/internal/settings"
)

// App holds the application's dependencies and exposes the operations
// the CLI drives.
type App struct {
	log        *logger.Logger
	settings   settings.Repository
	profiles   profile.Repository
	drafts     draft.Repository
	schedule   schedule.Repository
	grocery    grocery.Repository
	history    history.Store
	archiver   *archive.Engine
	aggregator *learning.Aggregator
	notifier   notify.Notifier
	planGen    *generator.PlanGenerator
}

// NewApp creates and initializes a new App instance.
func NewApp(
	log *logger.Logger,
	settingsRepo settings.Repository,
	profileRepo profile.Repository,
	draftRepo draft.Repository,
	scheduleRepo schedule.Repository,
	groceryRepo grocery.Repository,
	historyStore history.Store,
	archiver *archive.Engine,
	aggregator *learning.Aggregator,
	notifier notify.Notifier,
	planGen *generator.PlanGenerator,
) *App {
	return &App{
		log:        log,
		settings:   settingsRepo,
		profiles:   profileRepo,
		drafts:     draftRepo,
		schedule:   scheduleRepo,
		grocery:    groceryRepo,
		history:    historyStore,
		archiver:   archiver,
		aggregator: aggregator,
		notifier:   notifier,
		planGen:    planGen,
	}
}

// GenerateDraft builds a fresh weekly draft from the active profile's
// preferences, biased by the learning summary, and saves it as the
// current draft.
func (a *App) GenerateDraft(ctx context.Context, sess session.Session) error {
	if a.planGen == nil {
		return fmt.Errorf("no generation API key configured; set one with set-api-key or GEMINI_API_KEY")
	}

	prefs, err := a.activePreferences(ctx, sess)
	if err != nil {
		return err
	}

	summary := a.aggregator.Summarize(ctx, sess, learning.DefaultMonthsBack)

	fmt.Println("Generating weekly plan...")
	plan, err := a.planGen.GenerateWeeklyPlan(ctx, prefs, &summary)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	if err := a.drafts.Save(ctx, sess, plan); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	printPlan(plan)
	return nil
}

// activePreferences resolves the session's active profile, falling back
// to empty preferences when no profile is selected.
func (a *App) activePreferences(ctx context.Context, sess session.Session) (mealplan.UserPreferences, error) {
	id, err := a.profiles.CurrentID(ctx)
	if err != nil {
		return mealplan.UserPreferences{}, err
	}
	if id == "" {
		return mealplan.UserPreferences{}.Normalized(), nil
	}
	p, err := a.profiles.Get(ctx, sess, id)
	if err != nil {
		return mealplan.UserPreferences{}, fmt.Errorf("failed to load active profile: %w", err)
	}
	return p.Preferences, nil
}

// ShowDraft prints the current draft, if any.
func (a *App) ShowDraft(ctx context.Context, sess session.Session) error {
	plan, err := a.drafts.Current(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if plan == nil {
		fmt.Println("No draft plan. Run -generate first.")
		return nil
	}
	printPlan(*plan)
	return nil
}

// ArchiveDraft commits the current draft to the calendar at startDate.
func (a *App) ArchiveDraft(ctx context.Context, sess session.Session, startDate string, overwrite bool) error {
	plan, err := a.drafts.Current(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if plan == nil {
		return fmt.Errorf("no draft plan to archive: %w", mealplan.ErrNotFound)
	}
	if err := a.archiver.Archive(ctx, sess, *plan, startDate, overwrite); err != nil {
		return err
	}
	fmt.Printf("Archived week starting %s.\n", startDate)
	return nil
}

// RevertArchive restores the schedule to its pre-archive state.
func (a *App) RevertArchive(ctx context.Context, sess session.Session) error {
	if err := a.archiver.Revert(ctx, sess); err != nil {
		return err
	}
	fmt.Println("Reverted last archive.")
	return nil
}

// ShowSchedule prints the calendar, oldest date first.
func (a *App) ShowSchedule(ctx context.Context, sess session.Session) error {
	sched, err := a.schedule.All(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	if len(sched) == 0 {
		fmt.Println("The calendar is empty.")
		return nil
	}
	printSchedule(sched)
	return nil
}

// ShowSummary prints the learning summary for the default window.
func (a *App) ShowSummary(ctx context.Context, sess session.Session) error {
	s := a.aggregator.Summarize(ctx, sess, learning.DefaultMonthsBack)

	fmt.Println("=== LEARNING SUMMARY ===")
	fmt.Printf("Meals in window : %d\n", s.TotalMealCount)
	if s.OldestDate != "" {
		fmt.Printf("Window          : %s .. %s\n", s.OldestDate, s.NewestDate)
	}
	fmt.Printf("Breakfasts      : %s\n", strings.Join(s.AcceptedBreakfasts, ", "))
	fmt.Printf("Lunches         : %s\n", strings.Join(s.AcceptedLunches, ", "))
	fmt.Printf("Dinners         : %s\n", strings.Join(s.AcceptedDinners, ", "))
	fmt.Printf("Recent meals    : %s\n", strings.Join(s.RecentMeals, ", "))
	return nil
}

// RateMeal records acceptance feedback for one meal.
func (a *App) RateMeal(ctx context.Context, sess session.Session, date string, mealType mealplan.MealType, rating mealplan.Rating) error {
	day, found, err := a.schedule.Get(ctx, sess, date)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", date, err)
	}
	if !found {
		return fmt.Errorf("no meals on %s: %w", date, mealplan.ErrNotFound)
	}

	var name string
	switch mealType {
	case mealplan.MealBreakfast:
		name = day.Breakfast
	case mealplan.MealLunch:
		name = day.Lunch
	case mealplan.MealDinner:
		name = day.Dinner
	}
	if name == "" {
		return fmt.Errorf("no %s planned on %s: %w", mealType, date, mealplan.ErrNotFound)
	}

	err = a.history.Record(ctx, sess, mealplan.MealHistoryEntry{
		Date:     date,
		Type:     mealType,
		MealName: name,
		Rating:   rating,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s for %s (%s).\n", rating, name, date)
	return nil
}

// SetAPIKey stores the device-local generation credential.
func (a *App) SetAPIKey(ctx context.Context, sess session.Session, key string) error {
	if err := a.settings.SetAPIKey(ctx, sess, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	fmt.Println("API key saved.")
	return nil
}

// SetCookContact updates the syncable cook contact fields.
func (a *App) SetCookContact(ctx context.Context, sess session.Session, name, contact string) error {
	s, err := a.settings.Get(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.CookName = name
	s.CookContact = contact
	if err := a.settings.Save(ctx, sess, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Cook contact updated: %s (%s)\n", name, contact)
	return nil
}

// ShowProfiles prints all saved preference profiles, marking the active
// one.
func (a *App) ShowProfiles(ctx context.Context, sess session.Session) error {
	profiles, err := a.profiles.List(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Println("No preference profiles.")
		return nil
	}
	current, err := a.profiles.CurrentID(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %s  %s (%s)\n", marker, p.ID, p.Name, p.Preferences.DietType)
	}
	return nil
}

// SaveProfile creates or updates a preference profile from a JSON
// preferences document.
func (a *App) SaveProfile(ctx context.Context, sess session.Session, id, name string, prefsJSON []byte) error {
	var prefs mealplan.UserPreferences
	if err := json.Unmarshal(prefsJSON, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w: %w", mealplan.ErrMalformedRecord, err)
	}
	saved, err := a.profiles.Save(ctx, sess, mealplan.PreferenceProfile{
		ID:          id,
		Name:        name,
		Preferences: prefs.Normalized(),
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Printf("Saved profile %s (%s).\n", saved.ID, saved.Name)
	return nil
}

// DeleteProfile removes a profile. Deleting the active profile leaves
// no profile selected.
func (a *App) DeleteProfile(ctx context.Context, sess session.Session, id string) error {
	if err := a.profiles.Delete(ctx, sess, id); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	current, err := a.profiles.CurrentID(ctx)
	if err == nil && current == id {
		_ = a.profiles.SetCurrentID(ctx, "")
	}
	fmt.Printf("Deleted profile %s.\n", id)
	return nil
}

// DeleteGroceryList removes one saved list by ID.
func (a *App) DeleteGroceryList(ctx context.Context, sess session.Session, id string) error {
	if err := a.grocery.Delete(ctx, sess, id); err != nil {
		return fmt.Errorf("failed to delete grocery list %s: %w", id, err)
	}
	fmt.Printf("Deleted grocery list %s.\n", id)
	return nil
}

// UseProfile marks a profile as active for plan generation.
func (a *App) UseProfile(ctx context.Context, sess session.Session, id string) error {
	if _, err := a.profiles.Get(ctx, sess, id); err != nil {
		return fmt.Errorf("failed to load profile %s: %w", id, err)
	}
	if err := a.profiles.SetCurrentID(ctx, id); err != nil {
		return fmt.Errorf("failed to set active profile: %w", err)
	}
	fmt.Printf("Active profile: %s\n", id)
	return nil
}

// SaveGroceryList stores a named list of items.
func (a *App) SaveGroceryList(ctx context.Context, sess session.Session, name string, items []string, dateRange string) error {
	saved, err := a.grocery.Save(ctx, sess, mealplan.SavedGroceryList{
		Name:      name,
		Items:     items,
		DateRange: dateRange,
	})
	if err != nil {
		return fmt.Errorf("failed to save grocery list: %w", err)
	}
	fmt.Printf("Saved grocery list '%s' (%d items).\n", saved.Name, len(saved.Items))
	return nil
}

// ShowGroceryLists prints saved lists, newest first.
func (a *App) ShowGroceryLists(ctx context.Context, sess session.Session) error {
	lists, err := a.grocery.List(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load grocery history: %w", err)
	}
	if len(lists) == 0 {
		fmt.Println("No saved grocery lists.")
		return nil
	}
	for _, l := range lists {
		fmt.Printf("%s  %s (%d items)\n", l.CreatedAt.Format("2006-01-02"), l.Name, len(l.Items))
		for _, item := range l.Items {
			fmt.Printf("  - %s\n", item)
		}
	}
	return nil
}

// Watch subscribes to remote schedule changes and reprints the calendar
// on every push until the context is cancelled.
func (a *App) Watch(ctx context.Context, sess session.Session) error {
	sub, err := a.notifier.Subscribe(ctx, sess, func(sched mealplan.Schedule) {
		fmt.Println("\n=== SCHEDULE UPDATED ===")
		printSchedule(sched)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	fmt.Println("Watching for schedule changes (Ctrl+C to stop)...")
	<-ctx.Done()
	return nil
}

func printPlan(plan mealplan.WeeklyPlan) {
	fmt.Println("\n=== WEEKLY MEAL PLAN ===")
	for _, d := range plan.Days {
		fmt.Printf("%-10s breakfast: %-24s lunch: %-24s dinner: %s\n",
			d.Day, d.Breakfast, d.Lunch, d.Dinner)
	}
}

func printSchedule(sched mealplan.Schedule) {
	dates := make([]string, 0, len(sched))
	for d := range sched {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, date := range dates {
		d := sched[date]
		fmt.Printf("%s  breakfast: %-24s lunch: %-24s dinner: %s\n",
			date, d.Breakfast, d.Lunch, d.Dinner)
	}
}
