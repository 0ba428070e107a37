package mealplan

import "time"

// DateFormat is the ISO date layout used for all calendar keys.
const DateFormat = "2006-01-02"

// DaysPerWeek is the fixed length of a draft plan.
const DaysPerWeek = 7

// DayPlan holds the three meals for a single day.
//
// The Day field is overloaded on purpose: inside a draft plan it is a
// weekday label ("Monday"), inside the archived schedule it is the ISO
// date key ("2026-01-05"). Archiving rewrites the field from label to
// date.
type DayPlan struct {
	Day       string `json:"day"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// Empty reports whether all three meal slots are blank.
func (d DayPlan) Empty() bool {
	return d.Breakfast == "" && d.Lunch == "" && d.Dinner == ""
}

// WeeklyPlan is one unarchived draft of exactly seven days, indexed by
// weekday. Ephemeral: one at a time, overwritten or cleared on
// regenerate/archive.
type WeeklyPlan struct {
	Days []DayPlan `json:"days"`
}

// Schedule is the durable calendar: ISO date key to DayPlan. It grows
// per-entry and is never deleted wholesale.
type Schedule map[string]DayPlan

// MealType identifies one of the three daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// Rating is optional user feedback on a meal.
type Rating string

const (
	RatingLiked    Rating = "liked"
	RatingDisliked Rating = "disliked"
)

// UserPreferences is the dietary profile fed to plan generation.
type UserPreferences struct {
	DietType           string   `json:"diet_type"`
	Allergies          []string `json:"allergies"`
	Dislikes           []string `json:"dislikes"`
	BreakfastPrefs     []string `json:"breakfast_prefs"`
	LunchPrefs         []string `json:"lunch_prefs"`
	DinnerPrefs        []string `json:"dinner_prefs"`
	CustomInstructions string   `json:"custom_instructions"`
	PantryStaples      []string `json:"pantry_staples"`
}

// Normalized returns a copy with nil slices replaced by empty ones, so
// stored nulls always surface as empty collections.
func (p UserPreferences) Normalized() UserPreferences {
	fill := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	p.Allergies = fill(p.Allergies)
	p.Dislikes = fill(p.Dislikes)
	p.BreakfastPrefs = fill(p.BreakfastPrefs)
	p.LunchPrefs = fill(p.LunchPrefs)
	p.DinnerPrefs = fill(p.DinnerPrefs)
	p.PantryStaples = fill(p.PantryStaples)
	return p
}

// PreferenceProfile is a named, persisted set of preferences. Multiple
// profiles may coexist; which one is active is session-local and never
// synced.
type PreferenceProfile struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Preferences UserPreferences `json:"preferences"`
}

// MealHistoryEntry records one meal acceptance. Online it is stored as
// an independent fact; offline it is derived from the Schedule on read
// and must never be treated as authoritative.
type MealHistoryEntry struct {
	Date     string   `json:"date"`
	Type     MealType `json:"type"`
	MealName string   `json:"meal_name"`
	Rating   Rating   `json:"rating,omitempty"`
}

// RecentMealsCap bounds the recency sample in a learning summary:
// roughly three weeks of three meals a day.
const RecentMealsCap = 21

// MealLearningSummary is a derived digest of recent calendar history.
// Recomputed on demand, never persisted.
type MealLearningSummary struct {
	AcceptedBreakfasts []string `json:"accepted_breakfasts"`
	AcceptedLunches    []string `json:"accepted_lunches"`
	AcceptedDinners    []string `json:"accepted_dinners"`
	RecentMeals        []string `json:"recent_meals"`
	TotalMealCount     int      `json:"total_meal_count"`
	OldestDate         string   `json:"oldest_date,omitempty"`
	NewestDate         string   `json:"newest_date,omitempty"`
}

// SavedGroceryList is a persisted shopping list derived from a plan.
type SavedGroceryList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     []string  `json:"items"`
	DateRange string    `json:"date_range"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSettings is a split-ownership record: APIKey is device-local by
// design and never leaves the device; the cook contact fields sync.
type UserSettings struct {
	APIKey      string `json:"api_key,omitempty"`
	CookName    string `json:"cook_name"`
	CookContact string `json:"cook_contact"`
}
