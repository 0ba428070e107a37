package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AkshayAD/Cook-Commander/internal/database"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Repository persists the single in-progress weekly draft. There is at
// most one draft per identity; saving replaces it, archiving clears it.
type Repository interface {
	// Current returns the draft, or (nil, nil) when none exists. The
	// zero-rows outcome is deliberately not an error.
	Current(ctx context.Context, sess session.Session) (*mealplan.WeeklyPlan, error)
	Save(ctx context.Context, sess session.Session, plan mealplan.WeeklyPlan) error
	Clear(ctx context.Context, sess session.Session) error
}

// New builds the mode-switching draft repository.
func New(resolver *repository.Resolver, store *localstore.Store, db *gorm.DB) Repository {
	return &switcher{
		resolver: resolver,
		local:    &localRepository{store: store},
		remote:   &remoteRepository{db: db},
	}
}

type switcher struct {
	resolver *repository.Resolver
	local    *localRepository
	remote   *remoteRepository
}

func (r *switcher) Current(ctx context.Context, sess session.Session) (*mealplan.WeeklyPlan, error) {
	if r.resolver.Offline(sess) {
		return r.local.Current(ctx, sess)
	}
	return r.remote.Current(ctx, sess)
}

func (r *switcher) Save(ctx context.Context, sess session.Session, plan mealplan.WeeklyPlan) error {
	if err := validate(plan); err != nil {
		return err
	}
	if r.resolver.Offline(sess) {
		return r.local.Save(ctx, sess, plan)
	}
	return r.remote.Save(ctx, sess, plan)
}

func (r *switcher) Clear(ctx context.Context, sess session.Session) error {
	if r.resolver.Offline(sess) {
		return r.local.Clear(ctx, sess)
	}
	return r.remote.Clear(ctx, sess)
}

func validate(plan mealplan.WeeklyPlan) error {
	if len(plan.Days) != mealplan.DaysPerWeek {
		return fmt.Errorf("draft must have exactly %d days, got %d: %w",
			mealplan.DaysPerWeek, len(plan.Days), mealplan.ErrMalformedRecord)
	}
	return nil
}

type localRepository struct {
	store *localstore.Store
}

func (r *localRepository) Current(_ context.Context, _ session.Session) (*mealplan.WeeklyPlan, error) {
	var plan mealplan.WeeklyPlan
	found, err := r.store.Read(localstore.KeyCurrentPlan, &plan)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &plan, nil
}

func (r *localRepository) Save(_ context.Context, _ session.Session, plan mealplan.WeeklyPlan) error {
	return r.store.Write(localstore.KeyCurrentPlan, plan)
}

func (r *localRepository) Clear(_ context.Context, _ session.Session) error {
	return r.store.Delete(localstore.KeyCurrentPlan)
}

type remoteRepository struct {
	db *gorm.DB
}

func (r *remoteRepository) Current(ctx context.Context, sess session.Session) (*mealplan.WeeklyPlan, error) {
	var row database.WeeklyPlanRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		First(&row).Error
	if err != nil {
		// Zero rows means "no draft yet", never a failure.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repository.RemoteFailure("get current plan", err)
	}

	var plan mealplan.WeeklyPlan
	if err := json.Unmarshal(row.PlanData, &plan); err != nil {
		return nil, fmt.Errorf("current plan: %w: %w", mealplan.ErrMalformedRecord, err)
	}
	return &plan, nil
}

func (r *remoteRepository) Save(ctx context.Context, sess session.Session, plan mealplan.WeeklyPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal draft plan: %w", err)
	}
	row := database.WeeklyPlanRow{
		UserID:    sess.UserID,
		PlanData:  data,
		CreatedAt: time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan_data", "created_at"}),
	}).Create(&row).Error
	if err != nil {
		return repository.RemoteFailure("save draft plan", err)
	}
	return nil
}

func (r *remoteRepository) Clear(ctx context.Context, sess session.Session) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		Delete(&database.WeeklyPlanRow{}).Error
	if err != nil {
		return repository.RemoteFailure("clear draft plan", err)
	}
	return nil
}
