package grocery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
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

// OfflineHistoryCap bounds the offline grocery history: only the most
// recent lists are kept on the device.
const OfflineHistoryCap = 10

// Repository persists saved grocery lists.
type Repository interface {
	List(ctx context.Context, sess session.Session) ([]mealplan.SavedGroceryList, error)
	Save(ctx context.Context, sess session.Session, list mealplan.SavedGroceryList) (mealplan.SavedGroceryList, error)
	Delete(ctx context.Context, sess session.Session, id string) error
}

// New builds the mode-switching grocery repository.
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

func (r *switcher) List(ctx context.Context, sess session.Session) ([]mealplan.SavedGroceryList, error) {
	if r.resolver.Offline(sess) {
		return r.local.List(ctx, sess)
	}
	return r.remote.List(ctx, sess)
}

func (r *switcher) Save(ctx context.Context, sess session.Session, list mealplan.SavedGroceryList) (mealplan.SavedGroceryList, error) {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}
	if list.Items == nil {
		list.Items = []string{}
	}
	if r.resolver.Offline(sess) {
		return r.local.Save(ctx, sess, list)
	}
	return r.remote.Save(ctx, sess, list)
}

func (r *switcher) Delete(ctx context.Context, sess session.Session, id string) error {
	if r.resolver.Offline(sess) {
		return r.local.Delete(ctx, sess, id)
	}
	return r.remote.Delete(ctx, sess, id)
}

type localRepository struct {
	store *localstore.Store
}

func (r *localRepository) load() ([]mealplan.SavedGroceryList, error) {
	var lists []mealplan.SavedGroceryList
	if _, err := r.store.Read(localstore.KeyGroceryHistory, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *localRepository) List(_ context.Context, _ session.Session) ([]mealplan.SavedGroceryList, error) {
	lists, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].CreatedAt.After(lists[j].CreatedAt) })
	return lists, nil
}

// Save inserts the list and trims the history to the cap, newest
// first: the device keeps a bounded ring, not the full history. The
// trim evicts the oldest by CreatedAt, so a backdated save never
// displaces a newer list.
func (r *localRepository) Save(_ context.Context, _ session.Session, list mealplan.SavedGroceryList) (mealplan.SavedGroceryList, error) {
	lists, err := r.load()
	if err != nil {
		return mealplan.SavedGroceryList{}, err
	}
	lists = append(lists, list)
	sort.Slice(lists, func(i, j int) bool { return lists[i].CreatedAt.After(lists[j].CreatedAt) })
	if len(lists) > OfflineHistoryCap {
		lists = lists[:OfflineHistoryCap]
	}
	if err := r.store.Write(localstore.KeyGroceryHistory, lists); err != nil {
		return mealplan.SavedGroceryList{}, err
	}
	return list, nil
}

// Delete is a filter-and-rewrite of the whole collection.
func (r *localRepository) Delete(_ context.Context, _ session.Session, id string) error {
	lists, err := r.load()
	if err != nil {
		return err
	}
	kept := lists[:0]
	found := false
	for _, l := range lists {
		if l.ID == id {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return fmt.Errorf("grocery list %s: %w", id, mealplan.ErrNoMatchingEntity)
	}
	return r.store.Write(localstore.KeyGroceryHistory, kept)
}

type remoteRepository struct {
	db *gorm.DB
}

func (r *remoteRepository) List(ctx context.Context, sess session.Session) ([]mealplan.SavedGroceryList, error) {
	var rows []database.GroceryListRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", sess.UserID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, repository.RemoteFailure("list grocery history", err)
	}

	lists := make([]mealplan.SavedGroceryList, 0, len(rows))
	for _, row := range rows {
		l, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, nil
}

func (r *remoteRepository) Save(ctx context.Context, sess session.Session, list mealplan.SavedGroceryList) (mealplan.SavedGroceryList, error) {
	row, err := toRow(sess.UserID, list)
	if err != nil {
		return mealplan.SavedGroceryList{}, err
	}
	// Upsert on id with the update guarded by ownership, so a foreign
	// id conflicts without being rewritten.
	res := r.db.WithContext(ctx).Clauses(ownedUpsert()).Create(&row)
	if res.Error != nil {
		return mealplan.SavedGroceryList{}, repository.RemoteFailure("save grocery list", res.Error)
	}
	if res.RowsAffected == 0 {
		return mealplan.SavedGroceryList{}, fmt.Errorf("grocery list %s: %w", list.ID, mealplan.ErrPermissionDenied)
	}
	return list, nil
}

// ownedUpsert builds the conflict clause for Save: insert, or update an
// existing row only when its user_id matches the incoming row's.
func ownedUpsert() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "items", "date_range", "created_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: "grocery_list_history", Name: "user_id"},
				Value:  clause.Column{Table: "excluded", Name: "user_id"},
			},
		}},
	}
}

func (r *remoteRepository) Delete(ctx context.Context, sess session.Session, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", sess.UserID, id).
		Delete(&database.GroceryListRow{})
	if res.Error != nil {
		return repository.RemoteFailure("delete grocery list", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("grocery list %s: %w", id, mealplan.ErrNoMatchingEntity)
	}
	return nil
}

func toRow(userID string, list mealplan.SavedGroceryList) (database.GroceryListRow, error) {
	items, err := json.Marshal(list.Items)
	if err != nil {
		return database.GroceryListRow{}, fmt.Errorf("failed to marshal grocery items: %w", err)
	}
	return database.GroceryListRow{
		ID:        list.ID,
		UserID:    userID,
		Name:      list.Name,
		Items:     items,
		DateRange: list.DateRange,
		CreatedAt: list.CreatedAt,
	}, nil
}

func fromRow(row database.GroceryListRow) (mealplan.SavedGroceryList, error) {
	items := []string{}
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &items); err != nil {
			return mealplan.SavedGroceryList{}, fmt.Errorf("grocery list %s items: %w: %w", row.ID, mealplan.ErrMalformedRecord, err)
		}
	}
	return mealplan.SavedGroceryList{
		ID:        row.ID,
		Name:      row.Name,
		Items:     items,
		DateRange: row.DateRange,
		CreatedAt: row.CreatedAt,
	}, nil
}
