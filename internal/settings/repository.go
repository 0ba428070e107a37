package settings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AkshayAD/Cook-Commander/internal/database"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Repository persists user settings. The API key field is device-local
// regardless of mode: it is never part of a remote write and is merged
// back from local storage on remote reads.
type Repository interface {
	Get(ctx context.Context, sess session.Session) (mealplan.UserSettings, error)
	Save(ctx context.Context, sess session.Session, s mealplan.UserSettings) error
	SetAPIKey(ctx context.Context, sess session.Session, key string) error
}

// New builds the mode-switching settings repository. remote may be nil
// in offline-only deployments.
func New(resolver *repository.Resolver, store *localstore.Store, db *gorm.DB) Repository {
	return &switcher{
		resolver: resolver,
		local:    &localRepository{store: store},
		remote:   &remoteRepository{db: db, store: store},
	}
}

type switcher struct {
	resolver *repository.Resolver
	local    *localRepository
	remote   *remoteRepository
}

func (r *switcher) Get(ctx context.Context, sess session.Session) (mealplan.UserSettings, error) {
	if r.resolver.Offline(sess) {
		return r.local.Get(ctx, sess)
	}
	return r.remote.Get(ctx, sess)
}

func (r *switcher) Save(ctx context.Context, sess session.Session, s mealplan.UserSettings) error {
	if r.resolver.Offline(sess) {
		return r.local.Save(ctx, sess, s)
	}
	return r.remote.Save(ctx, sess, s)
}

func (r *switcher) SetAPIKey(ctx context.Context, sess session.Session, key string) error {
	// The key never leaves the device, so both modes write locally.
	return r.local.SetAPIKey(ctx, sess, key)
}

type localRepository struct {
	store *localstore.Store
}

func (r *localRepository) Get(_ context.Context, _ session.Session) (mealplan.UserSettings, error) {
	var s mealplan.UserSettings
	if _, err := r.store.Read(localstore.KeySettings, &s); err != nil {
		return mealplan.UserSettings{}, err
	}
	return s, nil
}

func (r *localRepository) Save(_ context.Context, _ session.Session, s mealplan.UserSettings) error {
	return r.store.Write(localstore.KeySettings, s)
}

func (r *localRepository) SetAPIKey(ctx context.Context, sess session.Session, key string) error {
	s, err := r.Get(ctx, sess)
	if err != nil {
		return err
	}
	s.APIKey = key
	return r.store.Write(localstore.KeySettings, s)
}

type remoteRepository struct {
	db    *gorm.DB
	store *localstore.Store
}

func (r *remoteRepository) Get(ctx context.Context, sess session.Session) (mealplan.UserSettings, error) {
	var row database.SettingsRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		First(&row).Error

	var s mealplan.UserSettings
	switch {
	case err == nil:
		s = fromRow(row)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No synced settings yet: not an error, just defaults.
	default:
		return mealplan.UserSettings{}, repository.RemoteFailure("get settings", err)
	}

	// Merge the device-local key back in.
	var local mealplan.UserSettings
	if _, err := r.store.Read(localstore.KeySettings, &local); err == nil {
		s.APIKey = local.APIKey
	}
	return s, nil
}

func (r *remoteRepository) Save(ctx context.Context, sess session.Session, s mealplan.UserSettings) error {
	row := toRow(sess.UserID, s)
	err := r.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return repository.RemoteFailure("save settings", err)
	}

	// The key, if present, still goes to the device.
	if s.APIKey != "" {
		var local mealplan.UserSettings
		if _, err := r.store.Read(localstore.KeySettings, &local); err != nil {
			return err
		}
		local.APIKey = s.APIKey
		return r.store.Write(localstore.KeySettings, local)
	}
	return nil
}

// toRow builds the remote write payload. The row type has no API-key
// column, so the credential cannot reach the remote store.
func toRow(userID string, s mealplan.UserSettings) database.SettingsRow {
	return database.SettingsRow{
		UserID:      userID,
		CookName:    s.CookName,
		CookContact: s.CookContact,
		UpdatedAt:   time.Now().UTC(),
	}
}

func fromRow(row database.SettingsRow) mealplan.UserSettings {
	return mealplan.UserSettings{
		CookName:    row.CookName,
		CookContact: row.CookContact,
	}
}
