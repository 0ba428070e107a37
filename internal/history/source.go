// Package history exposes meal acceptance history through two named
// capabilities: a StoredSource backed by independent remote rows, and a
// DerivedSource that flattens the schedule on read. Keeping them as
// separate types makes the "offline history is not authoritative"
// invariant visible instead of hiding it behind a mode switch.
package history

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/AkshayAD/Cook-Commander/internal/database"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Source reads meal history entries with date >= since, newest first.
type Source interface {
	Entries(ctx context.Context, sess session.Session, since string) ([]mealplan.MealHistoryEntry, error)
}

// Recorder accepts new meal acceptance facts. Only the stored variant
// actually persists them; derived history has nothing to record because
// the schedule already holds the fact.
type Recorder interface {
	Record(ctx context.Context, sess session.Session, entry mealplan.MealHistoryEntry) error
}

// Store bundles both capabilities behind the per-operation mode switch.
type Store interface {
	Source
	Recorder
}

// New builds the mode-switching history store.
func New(resolver *repository.Resolver, sched schedule.Repository, db *gorm.DB) Store {
	return &switcher{
		resolver: resolver,
		derived:  &DerivedSource{sched: sched},
		stored:   &StoredSource{db: db},
	}
}

type switcher struct {
	resolver *repository.Resolver
	derived  *DerivedSource
	stored   *StoredSource
}

func (s *switcher) Entries(ctx context.Context, sess session.Session, since string) ([]mealplan.MealHistoryEntry, error) {
	if s.resolver.Offline(sess) {
		return s.derived.Entries(ctx, sess, since)
	}
	return s.stored.Entries(ctx, sess, since)
}

func (s *switcher) Record(ctx context.Context, sess session.Session, entry mealplan.MealHistoryEntry) error {
	if s.resolver.Offline(sess) {
		// Offline history is derived from the schedule on read; there
		// is no independent fact to store.
		return nil
	}
	return s.stored.Record(ctx, sess, entry)
}

// DerivedSource recomputes history from the current schedule on every
// read. It holds no state of its own, so a schedule mutation is
// reflected by the very next call.
type DerivedSource struct {
	sched schedule.Repository
}

// NewDerivedSource builds a schedule-backed history source.
func NewDerivedSource(sched schedule.Repository) *DerivedSource {
	return &DerivedSource{sched: sched}
}

func (d *DerivedSource) Entries(ctx context.Context, sess session.Session, since string) ([]mealplan.MealHistoryEntry, error) {
	window, err := d.sched.Since(ctx, sess, since)
	if err != nil {
		return nil, err
	}

	var entries []mealplan.MealHistoryEntry
	for _, day := range window {
		for _, slot := range []struct {
			t    mealplan.MealType
			name string
		}{
			{mealplan.MealBreakfast, day.Breakfast},
			{mealplan.MealLunch, day.Lunch},
			{mealplan.MealDinner, day.Dinner},
		} {
			if slot.name == "" {
				continue
			}
			entries = append(entries, mealplan.MealHistoryEntry{
				Date:     day.Day,
				Type:     slot.t,
				MealName: slot.name,
			})
		}
	}
	return entries, nil
}

// StoredSource reads and writes independently persisted history rows.
type StoredSource struct {
	db *gorm.DB
}

// NewStoredSource builds a remote-row history source.
func NewStoredSource(db *gorm.DB) *StoredSource {
	return &StoredSource{db: db}
}

func (s *StoredSource) Entries(ctx context.Context, sess session.Session, since string) ([]mealplan.MealHistoryEntry, error) {
	var rows []database.MealHistoryRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", sess.UserID, since).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, repository.RemoteFailure("load meal history", err)
	}

	entries := make([]mealplan.MealHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, mealplan.MealHistoryEntry{
			Date:     row.Date,
			Type:     mealplan.MealType(row.MealType),
			MealName: row.MealName,
			Rating:   mealplan.Rating(row.Rating),
		})
	}
	return entries, nil
}

func (s *StoredSource) Record(ctx context.Context, sess session.Session, entry mealplan.MealHistoryEntry) error {
	if entry.MealName == "" {
		return fmt.Errorf("meal history entry has no meal name: %w", mealplan.ErrMalformedRecord)
	}
	row := database.MealHistoryRow{
		UserID:    sess.UserID,
		Date:      entry.Date,
		MealType:  string(entry.Type),
		MealName:  entry.MealName,
		Rating:    string(entry.Rating),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return repository.RemoteFailure("record meal history", err)
	}
	return nil
}
