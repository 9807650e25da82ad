package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type StoreRepo interface {
	Create(dbc dbctx.Context, stores []*types.Store) ([]*types.Store, error)
	GetByIDs(dbc dbctx.Context, storeIDs []uuid.UUID) ([]*types.Store, error)
	GetByIDForUpdate(dbc dbctx.Context, storeID uuid.UUID) (*types.Store, error)
	List(dbc dbctx.Context) ([]*types.Store, error)
	ListAccessible(dbc dbctx.Context, ownerID uuid.UUID, username string) ([]*types.Store, error)
	ListExpiredPremium(dbc dbctx.Context, now time.Time) ([]*types.Store, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, storeID uuid.UUID, updates map[string]interface{}) error

	AddStaff(dbc dbctx.Context, storeID uuid.UUID, username string) error
	RemoveStaff(dbc dbctx.Context, storeID uuid.UUID, username string) (bool, error)
	CountStaff(dbc dbctx.Context, storeID uuid.UUID) (int64, error)
}

type storeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	repoLog := baseLog.With("repo", "StoreRepo")
	return &storeRepo{db: db, log: repoLog}
}

func (sr *storeRepo) Create(dbc dbctx.Context, stores []*types.Store) ([]*types.Store, error) {
	if len(stores) == 0 {
		return []*types.Store{}, nil
	}
	if err := dbc.Resolve(sr.db).Omit("Staff").Create(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (sr *storeRepo) GetByIDs(dbc dbctx.Context, storeIDs []uuid.UUID) ([]*types.Store, error) {
	var results []*types.Store
	if len(storeIDs) == 0 {
		return results, nil
	}
	if err := dbc.Resolve(sr.db).
		Preload("Staff", orderStaff).
		Where("id IN ?", storeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIDForUpdate locks the store row where the dialect supports it, so
// limit checks and the inserts they guard see a consistent count.
func (sr *storeRepo) GetByIDForUpdate(dbc dbctx.Context, storeID uuid.UUID) (*types.Store, error) {
	q := dbc.Resolve(sr.db)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var s types.Store
	err := q.Preload("Staff", orderStaff).Where("id = ?", storeID).Limit(1).Find(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (sr *storeRepo) List(dbc dbctx.Context) ([]*types.Store, error) {
	var results []*types.Store
	if err := dbc.Resolve(sr.db).
		Preload("Staff", orderStaff).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListAccessible returns stores owned by ownerID or staffed by username, oldest first.
func (sr *storeRepo) ListAccessible(dbc dbctx.Context, ownerID uuid.UUID, username string) ([]*types.Store, error) {
	var results []*types.Store
	staffed := dbc.Resolve(sr.db).
		Model(&types.StoreStaff{}).
		Select("store_id").
		Where("username = ?", username)
	if err := dbc.Resolve(sr.db).
		Preload("Staff", orderStaff).
		Where("owner_id = ? OR id IN (?)", ownerID, staffed).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *storeRepo) ListExpiredPremium(dbc dbctx.Context, now time.Time) ([]*types.Store, error) {
	var results []*types.Store
	if err := dbc.Resolve(sr.db).
		Where("subscription = ? AND subscription_expiry IS NOT NULL AND subscription_expiry < ?", types.SubscriptionPremium, now).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *storeRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := dbc.Resolve(sr.db).Model(&types.Store{}).Count(&count).Error
	return count, err
}

func (sr *storeRepo) UpdateFields(dbc dbctx.Context, storeID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Resolve(sr.db).
		Model(&types.Store{}).
		Where("id = ?", storeID).
		Updates(updates).Error
}

func (sr *storeRepo) AddStaff(dbc dbctx.Context, storeID uuid.UUID, username string) error {
	return dbc.Resolve(sr.db).Create(&types.StoreStaff{StoreID: storeID, Username: username}).Error
}

func (sr *storeRepo) RemoveStaff(dbc dbctx.Context, storeID uuid.UUID, username string) (bool, error) {
	res := dbc.Resolve(sr.db).
		Where("store_id = ? AND username = ?", storeID, username).
		Delete(&types.StoreStaff{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (sr *storeRepo) CountStaff(dbc dbctx.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Resolve(sr.db).
		Model(&types.StoreStaff{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}

func orderStaff(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
