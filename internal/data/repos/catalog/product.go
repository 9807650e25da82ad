package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	Update(dbc dbctx.Context, product *types.Product) error
	GetByIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]*types.Product, error)
	GetByStoreAndCodes(dbc dbctx.Context, storeID uuid.UUID, codes []string) ([]*types.Product, error)
	ListByStore(dbc dbctx.Context, storeID uuid.UUID) ([]*types.Product, error)
	CountByStore(dbc dbctx.Context, storeID uuid.UUID) (int64, error)
	DecrementStock(dbc dbctx.Context, productID uuid.UUID, qty int) error
	UpdateImage(dbc dbctx.Context, productID uuid.UUID, imageURL string) error
	Delete(dbc dbctx.Context, storeID, productID uuid.UUID) (bool, error)
	DeleteByStore(dbc dbctx.Context, storeID uuid.UUID) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := dbc.Resolve(pr.db).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update overwrites the editable columns; id, store and created_at never change.
func (pr *productRepo) Update(dbc dbctx.Context, product *types.Product) error {
	return dbc.Resolve(pr.db).
		Model(&types.Product{}).
		Where("id = ? AND store_id = ?", product.ID, product.StoreID).
		Select("code", "name", "cost_price", "price", "wholesale_price", "stock", "min_stock", "category", "image").
		Updates(product).Error
}

func (pr *productRepo) GetByIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]*types.Product, error) {
	var results []*types.Product
	if len(productIDs) == 0 {
		return results, nil
	}
	if err := dbc.Resolve(pr.db).
		Where("id IN ?", productIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) GetByStoreAndCodes(dbc dbctx.Context, storeID uuid.UUID, codes []string) ([]*types.Product, error) {
	var results []*types.Product
	if len(codes) == 0 {
		return results, nil
	}
	if err := dbc.Resolve(pr.db).
		Where("store_id = ? AND code IN ?", storeID, codes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) ListByStore(dbc dbctx.Context, storeID uuid.UUID) ([]*types.Product, error) {
	var results []*types.Product
	if err := dbc.Resolve(pr.db).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) CountByStore(dbc dbctx.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Resolve(pr.db).
		Model(&types.Product{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}

// DecrementStock subtracts qty, never going below zero.
func (pr *productRepo) DecrementStock(dbc dbctx.Context, productID uuid.UUID, qty int) error {
	return dbc.Resolve(pr.db).
		Model(&types.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("CASE WHEN stock - ? < 0 THEN 0 ELSE stock - ? END", qty, qty)).Error
}

func (pr *productRepo) UpdateImage(dbc dbctx.Context, productID uuid.UUID, imageURL string) error {
	return dbc.Resolve(pr.db).
		Model(&types.Product{}).
		Where("id = ?", productID).
		Update("image", imageURL).Error
}

func (pr *productRepo) Delete(dbc dbctx.Context, storeID, productID uuid.UUID) (bool, error) {
	res := dbc.Resolve(pr.db).
		Where("id = ? AND store_id = ?", productID, storeID).
		Delete(&types.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (pr *productRepo) DeleteByStore(dbc dbctx.Context, storeID uuid.UUID) error {
	return dbc.Resolve(pr.db).
		Where("store_id = ?", storeID).
		Delete(&types.Product{}).Error
}
