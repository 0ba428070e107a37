package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/AkshayAD/Cook-Commander/internal/draft"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Engine commits a draft plan's seven days into the calendar at a
// chosen start date. Archiving is a move, not a copy: the draft is
// cleared once every day has been written.
//
// The batch is best-effort, not a transaction. A day that fails to
// persist leaves the earlier days committed; re-running the archive
// with overwrite=true repairs a partial failure.
type Engine struct {
	drafts   draft.Repository
	schedule schedule.Repository
	store    *localstore.Store
	log      *logger.Logger
}

// snapshot is one generation of pre-archive state for a single-step
// revert. A nil entry value means the day was absent before the
// archive. It is persisted on the device so a revert works from a
// later process than the archive.
type snapshot map[string]*mealplan.DayPlan

// NewEngine creates an archive engine.
func NewEngine(drafts draft.Repository, sched schedule.Repository, store *localstore.Store, log *logger.Logger) *Engine {
	return &Engine{
		drafts:   drafts,
		schedule: sched,
		store:    store,
		log:      log,
	}
}

// Archive writes plan.Days[i] to startDate+i for i in 0..6.
//
// The overwrite policy is per-day: with overwrite=false a day that
// already holds any meal is left untouched while empty or absent days
// are filled, so one week can be partially overwritten and partially
// preserved. The policy itself is chosen once for the whole batch.
func (e *Engine) Archive(ctx context.Context, sess session.Session, plan mealplan.WeeklyPlan, startDate string, overwrite bool) error {
	start, err := time.Parse(mealplan.DateFormat, startDate)
	if err != nil {
		return fmt.Errorf("start date %q: %w", startDate, mealplan.ErrInvalidDateRange)
	}
	if len(plan.Days) != mealplan.DaysPerWeek {
		return fmt.Errorf("draft must have exactly %d days, got %d: %w",
			mealplan.DaysPerWeek, len(plan.Days), mealplan.ErrMalformedRecord)
	}

	// Snapshot the seven target days before touching any of them.
	prior := make(snapshot, mealplan.DaysPerWeek)
	for i := 0; i < mealplan.DaysPerWeek; i++ {
		date := start.AddDate(0, 0, i).Format(mealplan.DateFormat)
		existing, found, err := e.schedule.Get(ctx, sess, date)
		if err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", date, err)
		}
		if found {
			day := existing
			prior[date] = &day
		} else {
			prior[date] = nil
		}
	}
	if err := e.store.Write(localstore.KeyArchiveSnapshot, prior); err != nil {
		return fmt.Errorf("failed to store revert snapshot: %w", err)
	}

	for i := 0; i < mealplan.DaysPerWeek; i++ {
		date := start.AddDate(0, 0, i).Format(mealplan.DateFormat)
		entry := plan.Days[i]
		entry.Day = date

		if !overwrite {
			if p := prior[date]; p != nil && !p.Empty() {
				e.log.Debug("Keeping existing day", "date", date)
				continue
			}
		}
		if err := e.schedule.UpsertDay(ctx, sess, date, entry); err != nil {
			// Days already written stay committed.
			return fmt.Errorf("failed to archive day %d (%s): %w", i+1, date, err)
		}
	}

	if err := e.drafts.Clear(ctx, sess); err != nil {
		return fmt.Errorf("archived but failed to clear draft: %w", err)
	}
	e.log.Info("Archived draft plan", "start", startDate, "overwrite", overwrite)
	return nil
}

// Revert restores the schedule days captured by the last Archive call.
// Only one level of undo exists; calling Revert twice is an error.
func (e *Engine) Revert(ctx context.Context, sess session.Session) error {
	var prior snapshot
	found, err := e.store.Read(localstore.KeyArchiveSnapshot, &prior)
	if err != nil {
		return fmt.Errorf("failed to load revert snapshot: %w", err)
	}
	if !found {
		return fmt.Errorf("nothing to revert: %w", mealplan.ErrNotFound)
	}
	for date, p := range prior {
		restored := mealplan.DayPlan{Day: date}
		if p != nil {
			restored = *p
		}
		if err := e.schedule.UpsertDay(ctx, sess, date, restored); err != nil {
			return fmt.Errorf("failed to revert %s: %w", date, err)
		}
	}
	if err := e.store.Delete(localstore.KeyArchiveSnapshot); err != nil {
		return fmt.Errorf("reverted but failed to drop snapshot: %w", err)
	}
	e.log.Info("Reverted last archive")
	return nil
}
