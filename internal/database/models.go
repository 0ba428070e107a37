package database

import "time"

// Row models for the remote store. Columns are snake_case and nullable
// on the wire; translation to the camelCase domain representation lives
// in each entity repository. Every table carries a user_id owner column
// and every query must filter on it.

// SettingsRow is one user's synced settings. The device-local API key
// has no column here on purpose: the row type cannot represent it.
type SettingsRow struct {
	UserID      string    `gorm:"column:user_id;primaryKey"`
	CookName    string    `gorm:"column:cook_name"`
	CookContact string    `gorm:"column:cook_contact"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SettingsRow) TableName() string { return "user_settings" }

// ProfileRow stores one preference profile; preferences are a JSON
// document.
type ProfileRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id;index"`
	Name        string    `gorm:"column:name"`
	Preferences []byte    `gorm:"column:preferences;type:jsonb"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (ProfileRow) TableName() string { return "preference_profiles" }

// WeeklyPlanRow holds the single in-progress draft per user.
type WeeklyPlanRow struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	PlanData  []byte    `gorm:"column:plan_data;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (WeeklyPlanRow) TableName() string { return "weekly_plans" }

// ScheduledMealRow is one calendar day. (user_id, date) is unique and
// upserts target that constraint.
type ScheduledMealRow struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id"`
	Date      string    `gorm:"column:date"`
	Breakfast string    `gorm:"column:breakfast"`
	Lunch     string    `gorm:"column:lunch"`
	Dinner    string    `gorm:"column:dinner"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ScheduledMealRow) TableName() string { return "scheduled_meals" }

// GroceryListRow is one saved shopping list.
type GroceryListRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;index"`
	Name      string    `gorm:"column:name"`
	Items     []byte    `gorm:"column:items;type:jsonb"`
	DateRange string    `gorm:"column:date_range"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (GroceryListRow) TableName() string { return "grocery_list_history" }

// MealHistoryRow is one recorded meal acceptance.
type MealHistoryRow struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id"`
	Date      string    `gorm:"column:date"`
	MealType  string    `gorm:"column:meal_type"`
	MealName  string    `gorm:"column:meal_name"`
	Rating    string    `gorm:"column:rating"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (MealHistoryRow) TableName() string { return "meal_history" }
