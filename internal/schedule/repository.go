package schedule

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AkshayAD/Cook-Commander/internal/database"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Publisher announces that a user's schedule changed. The remote
// backend publishes after every write so other devices can refetch.
type Publisher interface {
	SchedulePublish(ctx context.Context, userID string) error
}

// Repository persists the durable, date-indexed calendar.
type Repository interface {
	// All returns the complete schedule map.
	All(ctx context.Context, sess session.Session) (mealplan.Schedule, error)
	// Get returns the entry for an ISO date, with found=false when the
	// day has never been written.
	Get(ctx context.Context, sess session.Session, date string) (mealplan.DayPlan, bool, error)
	// Since returns entries with date >= cutoff, newest first. The Day
	// field of each entry is the ISO date key.
	Since(ctx context.Context, sess session.Session, cutoff string) ([]mealplan.DayPlan, error)
	// UpsertDay writes one calendar entry. The entry's Day field is
	// forced to the date key.
	UpsertDay(ctx context.Context, sess session.Session, date string, plan mealplan.DayPlan) error
}

// New builds the mode-switching schedule repository. pub may be nil
// when realtime push is not configured.
func New(resolver *repository.Resolver, store *localstore.Store, db *gorm.DB, pub Publisher, log *logger.Logger) Repository {
	return &switcher{
		resolver: resolver,
		local:    &localRepository{store: store},
		remote:   &remoteRepository{db: db, pub: pub, log: log},
	}
}

type switcher struct {
	resolver *repository.Resolver
	local    *localRepository
	remote   *remoteRepository
}

func (r *switcher) All(ctx context.Context, sess session.Session) (mealplan.Schedule, error) {
	if r.resolver.Offline(sess) {
		return r.local.All(ctx, sess)
	}
	return r.remote.All(ctx, sess)
}

func (r *switcher) Get(ctx context.Context, sess session.Session, date string) (mealplan.DayPlan, bool, error) {
	if r.resolver.Offline(sess) {
		return r.local.Get(ctx, sess, date)
	}
	return r.remote.Get(ctx, sess, date)
}

func (r *switcher) Since(ctx context.Context, sess session.Session, cutoff string) ([]mealplan.DayPlan, error) {
	if r.resolver.Offline(sess) {
		return r.local.Since(ctx, sess, cutoff)
	}
	return r.remote.Since(ctx, sess, cutoff)
}

func (r *switcher) UpsertDay(ctx context.Context, sess session.Session, date string, plan mealplan.DayPlan) error {
	plan.Day = date
	if r.resolver.Offline(sess) {
		return r.local.UpsertDay(ctx, sess, date, plan)
	}
	return r.remote.UpsertDay(ctx, sess, date, plan)
}

type localRepository struct {
	store *localstore.Store
}

func (r *localRepository) load() (mealplan.Schedule, error) {
	sched := mealplan.Schedule{}
	if _, err := r.store.Read(localstore.KeySchedule, &sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (r *localRepository) All(_ context.Context, _ session.Session) (mealplan.Schedule, error) {
	return r.load()
}

func (r *localRepository) Get(_ context.Context, _ session.Session, date string) (mealplan.DayPlan, bool, error) {
	sched, err := r.load()
	if err != nil {
		return mealplan.DayPlan{}, false, err
	}
	plan, ok := sched[date]
	return plan, ok, nil
}

func (r *localRepository) Since(_ context.Context, _ session.Session, cutoff string) ([]mealplan.DayPlan, error) {
	sched, err := r.load()
	if err != nil {
		return nil, err
	}
	// ISO dates sort lexicographically, so string comparison is enough.
	var out []mealplan.DayPlan
	for date, plan := range sched {
		if date >= cutoff {
			plan.Day = date
			out = append(out, plan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

func (r *localRepository) UpsertDay(_ context.Context, _ session.Session, date string, plan mealplan.DayPlan) error {
	sched, err := r.load()
	if err != nil {
		return err
	}
	sched[date] = plan
	return r.store.Write(localstore.KeySchedule, sched)
}

type remoteRepository struct {
	db  *gorm.DB
	pub Publisher
	log *logger.Logger
}

func (r *remoteRepository) All(ctx context.Context, sess session.Session) (mealplan.Schedule, error) {
	var rows []database.ScheduledMealRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		Find(&rows).Error; err != nil {
		return nil, repository.RemoteFailure("load schedule", err)
	}

	sched := mealplan.Schedule{}
	for _, row := range rows {
		sched[row.Date] = fromRow(row)
	}
	return sched, nil
}

func (r *remoteRepository) Get(ctx context.Context, sess session.Session, date string) (mealplan.DayPlan, bool, error) {
	var rows []database.ScheduledMealRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", sess.UserID, date).
		Limit(1).
		Find(&rows).Error; err != nil {
		return mealplan.DayPlan{}, false, repository.RemoteFailure("get schedule entry", err)
	}
	if len(rows) == 0 {
		return mealplan.DayPlan{}, false, nil
	}
	return fromRow(rows[0]), true, nil
}

func (r *remoteRepository) Since(ctx context.Context, sess session.Session, cutoff string) ([]mealplan.DayPlan, error) {
	var rows []database.ScheduledMealRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", sess.UserID, cutoff).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, repository.RemoteFailure("load schedule window", err)
	}

	out := make([]mealplan.DayPlan, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (r *remoteRepository) UpsertDay(ctx context.Context, sess session.Session, date string, plan mealplan.DayPlan) error {
	row := toRow(sess.UserID, date, plan)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"breakfast", "lunch", "dinner", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return repository.RemoteFailure("upsert schedule entry", err)
	}

	if r.pub != nil {
		// Push is advisory: a failed publish never fails the write.
		if err := r.pub.SchedulePublish(ctx, sess.UserID); err != nil {
			r.log.Warn("Failed to publish schedule change", "date", date, "error", err)
		}
	}
	return nil
}

func toRow(userID, date string, plan mealplan.DayPlan) database.ScheduledMealRow {
	return database.ScheduledMealRow{
		UserID:    userID,
		Date:      date,
		Breakfast: plan.Breakfast,
		Lunch:     plan.Lunch,
		Dinner:    plan.Dinner,
		UpdatedAt: time.Now().UTC(),
	}
}

func fromRow(row database.ScheduledMealRow) mealplan.DayPlan {
	return mealplan.DayPlan{
		Day:       row.Date,
		Breakfast: row.Breakfast,
		Lunch:     row.Lunch,
		Dinner:    row.Dinner,
	}
}
