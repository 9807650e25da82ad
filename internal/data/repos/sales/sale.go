package sales

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type SaleRepo interface {
	Create(dbc dbctx.Context, sales []*types.Sale) ([]*types.Sale, error)
	GetByID(dbc dbctx.Context, storeID, saleID uuid.UUID) (*types.Sale, error)
	// ListByStore returns sales oldest first; limit <= 0 means all.
	ListByStore(dbc dbctx.Context, storeID uuid.UUID, limit int) ([]*types.Sale, error)
	// ListRecentByStore returns the newest sales, newest first.
	ListRecentByStore(dbc dbctx.Context, storeID uuid.UUID, limit int) ([]*types.Sale, error)
	Count(dbc dbctx.Context) (int64, error)
	SumTotal(dbc dbctx.Context) (float64, error)
}

type saleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSaleRepo(db *gorm.DB, baseLog *logger.Logger) SaleRepo {
	repoLog := baseLog.With("repo", "SaleRepo")
	return &saleRepo{db: db, log: repoLog}
}

func (sr *saleRepo) Create(dbc dbctx.Context, sales []*types.Sale) ([]*types.Sale, error) {
	if len(sales) == 0 {
		return []*types.Sale{}, nil
	}
	if err := dbc.Resolve(sr.db).Create(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (sr *saleRepo) GetByID(dbc dbctx.Context, storeID, saleID uuid.UUID) (*types.Sale, error) {
	var results []*types.Sale
	if err := dbc.Resolve(sr.db).
		Where("id = ? AND store_id = ?", saleID, storeID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *saleRepo) ListByStore(dbc dbctx.Context, storeID uuid.UUID, limit int) ([]*types.Sale, error) {
	var results []*types.Sale
	q := dbc.Resolve(sr.db).
		Where("store_id = ?", storeID).
		Order("date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *saleRepo) ListRecentByStore(dbc dbctx.Context, storeID uuid.UUID, limit int) ([]*types.Sale, error) {
	var results []*types.Sale
	q := dbc.Resolve(sr.db).
		Where("store_id = ?", storeID).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *saleRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := dbc.Resolve(sr.db).Model(&types.Sale{}).Count(&count).Error
	return count, err
}

func (sr *saleRepo) SumTotal(dbc dbctx.Context) (float64, error) {
	var total float64
	err := dbc.Resolve(sr.db).
		Model(&types.Sale{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}
