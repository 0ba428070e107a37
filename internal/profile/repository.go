package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AkshayAD/Cook-Commander/internal/database"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Repository persists preference profiles. Which profile is active is a
// session-local pointer and is therefore always kept on the device,
// even for authenticated sessions.
type Repository interface {
	List(ctx context.Context, sess session.Session) ([]mealplan.PreferenceProfile, error)
	Get(ctx context.Context, sess session.Session, id string) (mealplan.PreferenceProfile, error)
	Save(ctx context.Context, sess session.Session, p mealplan.PreferenceProfile) (mealplan.PreferenceProfile, error)
	Delete(ctx context.Context, sess session.Session, id string) error
	CurrentID(ctx context.Context) (string, error)
	SetCurrentID(ctx context.Context, id string) error
}

// New builds the mode-switching profile repository.
func New(resolver *repository.Resolver, store *localstore.Store, db *gorm.DB) Repository {
	return &switcher{
		resolver: resolver,
		store:    store,
		local:    &localRepository{store: store},
		remote:   &remoteRepository{db: db},
	}
}

type switcher struct {
	resolver *repository.Resolver
	store    *localstore.Store
	local    *localRepository
	remote   *remoteRepository
}

func (r *switcher) List(ctx context.Context, sess session.Session) ([]mealplan.PreferenceProfile, error) {
	if r.resolver.Offline(sess) {
		return r.local.List(ctx, sess)
	}
	return r.remote.List(ctx, sess)
}

func (r *switcher) Get(ctx context.Context, sess session.Session, id string) (mealplan.PreferenceProfile, error) {
	if r.resolver.Offline(sess) {
		return r.local.Get(ctx, sess, id)
	}
	return r.remote.Get(ctx, sess, id)
}

func (r *switcher) Save(ctx context.Context, sess session.Session, p mealplan.PreferenceProfile) (mealplan.PreferenceProfile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if r.resolver.Offline(sess) {
		return r.local.Save(ctx, sess, p)
	}
	return r.remote.Save(ctx, sess, p)
}

func (r *switcher) Delete(ctx context.Context, sess session.Session, id string) error {
	if r.resolver.Offline(sess) {
		return r.local.Delete(ctx, sess, id)
	}
	return r.remote.Delete(ctx, sess, id)
}

// CurrentID returns the active profile pointer, or "" when none is set.
func (r *switcher) CurrentID(_ context.Context) (string, error) {
	var id string
	if _, err := r.store.Read(localstore.KeyCurrentProfile, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *switcher) SetCurrentID(_ context.Context, id string) error {
	return r.store.Write(localstore.KeyCurrentProfile, id)
}

type localRepository struct {
	store *localstore.Store
}

func (r *localRepository) load() ([]mealplan.PreferenceProfile, error) {
	var profiles []mealplan.PreferenceProfile
	if _, err := r.store.Read(localstore.KeyProfiles, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *localRepository) List(_ context.Context, _ session.Session) ([]mealplan.PreferenceProfile, error) {
	profiles, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].Preferences = profiles[i].Preferences.Normalized()
	}
	return profiles, nil
}

func (r *localRepository) Get(ctx context.Context, sess session.Session, id string) (mealplan.PreferenceProfile, error) {
	profiles, err := r.load()
	if err != nil {
		return mealplan.PreferenceProfile{}, err
	}
	for _, p := range profiles {
		if p.ID == id {
			p.Preferences = p.Preferences.Normalized()
			return p, nil
		}
	}
	return mealplan.PreferenceProfile{}, fmt.Errorf("profile %s: %w", id, mealplan.ErrNotFound)
}

func (r *localRepository) Save(_ context.Context, _ session.Session, p mealplan.PreferenceProfile) (mealplan.PreferenceProfile, error) {
	profiles, err := r.load()
	if err != nil {
		return mealplan.PreferenceProfile{}, err
	}
	replaced := false
	for i := range profiles {
		if profiles[i].ID == p.ID {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}
	if err := r.store.Write(localstore.KeyProfiles, profiles); err != nil {
		return mealplan.PreferenceProfile{}, err
	}
	return p, nil
}

// Delete is a filter-and-rewrite of the whole collection: the blob
// store has no partial-delete primitive.
func (r *localRepository) Delete(_ context.Context, _ session.Session, id string) error {
	profiles, err := r.load()
	if err != nil {
		return err
	}
	kept := profiles[:0]
	found := false
	for _, p := range profiles {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("profile %s: %w", id, mealplan.ErrNoMatchingEntity)
	}
	return r.store.Write(localstore.KeyProfiles, kept)
}

type remoteRepository struct {
	db *gorm.DB
}

func (r *remoteRepository) List(ctx context.Context, sess session.Session) ([]mealplan.PreferenceProfile, error) {
	var rows []database.ProfileRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, repository.RemoteFailure("list profiles", err)
	}

	profiles := make([]mealplan.PreferenceProfile, 0, len(rows))
	for _, row := range rows {
		p, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (r *remoteRepository) Get(ctx context.Context, sess session.Session, id string) (mealplan.PreferenceProfile, error) {
	var row database.ProfileRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", sess.UserID, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mealplan.PreferenceProfile{}, fmt.Errorf("profile %s: %w", id, mealplan.ErrNotFound)
		}
		return mealplan.PreferenceProfile{}, repository.RemoteFailure("get profile", err)
	}
	return fromRow(row)
}

func (r *remoteRepository) Save(ctx context.Context, sess session.Session, p mealplan.PreferenceProfile) (mealplan.PreferenceProfile, error) {
	row, err := toRow(sess.UserID, p)
	if err != nil {
		return mealplan.PreferenceProfile{}, err
	}
	// Upsert on id, but only update rows the caller owns: an id held by
	// another user conflicts without matching the guard, so nothing is
	// written and ownership never changes hands.
	res := r.db.WithContext(ctx).Clauses(ownedUpsert()).Create(&row)
	if res.Error != nil {
		return mealplan.PreferenceProfile{}, repository.RemoteFailure("save profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return mealplan.PreferenceProfile{}, fmt.Errorf("profile %s: %w", p.ID, mealplan.ErrPermissionDenied)
	}
	return p, nil
}

// ownedUpsert builds the conflict clause for Save: insert, or update an
// existing row only when its user_id matches the incoming row's.
func ownedUpsert() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "preferences", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: "preference_profiles", Name: "user_id"},
				Value:  clause.Column{Table: "excluded", Name: "user_id"},
			},
		}},
	}
}

func (r *remoteRepository) Delete(ctx context.Context, sess session.Session, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", sess.UserID, id).
		Delete(&database.ProfileRow{})
	if res.Error != nil {
		return repository.RemoteFailure("delete profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile %s: %w", id, mealplan.ErrNoMatchingEntity)
	}
	return nil
}

func toRow(userID string, p mealplan.PreferenceProfile) (database.ProfileRow, error) {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return database.ProfileRow{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return database.ProfileRow{
		ID:          p.ID,
		UserID:      userID,
		Name:        p.Name,
		Preferences: prefs,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func fromRow(row database.ProfileRow) (mealplan.PreferenceProfile, error) {
	var prefs mealplan.UserPreferences
	if len(row.Preferences) > 0 {
		if err := json.Unmarshal(row.Preferences, &prefs); err != nil {
			return mealplan.PreferenceProfile{}, fmt.Errorf("profile %s preferences: %w: %w", row.ID, mealplan.ErrMalformedRecord, err)
		}
	}
	return mealplan.PreferenceProfile{
		ID:          row.ID,
		Name:        row.Name,
		Preferences: prefs.Normalized(),
	}, nil
}
