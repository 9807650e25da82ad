package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/inventory"
	"github.com/betoojeda/tienda-facil/internal/normalization"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/gcp"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/tier"
)

// DefaultMinStock applies to new products saved without an alert level.
const DefaultMinStock = 5

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

type ProductInput struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	CostPrice      float64    `json:"cost_price"`
	Price          float64    `json:"price"`
	WholesalePrice float64    `json:"wholesale_price"`
	Stock          int        `json:"stock"`
	MinStock       *int       `json:"min_stock,omitempty"`
	Category       string     `json:"category"`
	Image          *string    `json:"image,omitempty"`
}

type ProductService interface {
	List(ctx context.Context, storeID uuid.UUID, q inventory.Query) (*inventory.Page, error)
	All(ctx context.Context, storeID uuid.UUID) ([]*types.Product, error)
	Get(ctx context.Context, storeID, productID uuid.UUID) (*types.Product, error)
	Categories(ctx context.Context, storeID uuid.UUID) ([]string, error)
	LowStock(ctx context.Context, storeID uuid.UUID) ([]*types.Product, error)
	Save(ctx context.Context, storeID uuid.UUID, in ProductInput) (*types.Product, error)
	Delete(ctx context.Context, storeID, productID uuid.UUID) error
	UploadImage(ctx context.Context, storeID, productID uuid.UUID, filename string, r io.Reader) (*types.Product, error)
}

type productService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       storeGuard
	productRepo repos.ProductRepo
	configRepo  repos.SystemConfigRepo
	bucket      gcp.BucketService
	events      realtime.Publisher
}

func NewProductService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	productRepo repos.ProductRepo,
	configRepo repos.SystemConfigRepo,
	bucket gcp.BucketService,
	events realtime.Publisher,
) ProductService {
	return &productService{
		db:          db,
		log:         log.With("service", "ProductService"),
		guard:       storeGuard{storeRepo: storeRepo},
		productRepo: productRepo,
		configRepo:  configRepo,
		bucket:      bucket,
		events:      events,
	}
}

func (ps *productService) List(ctx context.Context, storeID uuid.UUID, q inventory.Query) (*inventory.Page, error) {
	products, err := ps.All(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if q.Sort != "" && !q.Sort.Valid() {
		return nil, invalid("invalid_sort", fmt.Sprintf("cannot sort by %q", q.Sort))
	}
	page := inventory.List(products, q)
	return &page, nil
}

func (ps *productService) All(ctx context.Context, storeID uuid.UUID) ([]*types.Product, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ps.guard.load(dbc, storeID, accessRead, false); err != nil {
		return nil, err
	}
	products, err := ps.productRepo.ListByStore(dbc, storeID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (ps *productService) Get(ctx context.Context, storeID, productID uuid.UUID) (*types.Product, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ps.guard.load(dbc, storeID, accessRead, false); err != nil {
		return nil, err
	}
	return ps.find(dbc, storeID, productID)
}

func (ps *productService) Categories(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	products, err := ps.All(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return inventory.Categories(products), nil
}

func (ps *productService) LowStock(ctx context.Context, storeID uuid.UUID) ([]*types.Product, error) {
	products, err := ps.All(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return inventory.LowStock(products), nil
}

// Save creates the product when in.ID is empty and updates it otherwise.
// Only creation counts against the tier's product limit.
func (ps *productService) Save(ctx context.Context, storeID uuid.UUID, in ProductInput) (*types.Product, error) {
	code := normalization.Text(in.Code)
	name := normalization.Text(in.Name)
	switch {
	case code == "":
		return nil, invalid("missing_code", "code is required")
	case name == "":
		return nil, invalid("missing_name", "name is required")
	case in.Price < 0 || in.CostPrice < 0 || in.WholesalePrice < 0:
		return nil, invalid("invalid_price", "prices cannot be negative")
	case in.Stock < 0 || (in.MinStock != nil && *in.MinStock < 0):
		return nil, invalid("invalid_stock", "stock cannot be negative")
	}

	var saved *types.Product
	created := false
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		store, _, err := ps.guard.load(dbc, storeID, accessOwner, true)
		if err != nil {
			return err
		}
		clash, err := ps.productRepo.GetByStoreAndCodes(dbc, store.ID, []string{code})
		if err != nil {
			return fmt.Errorf("check code: %w", err)
		}

		var p *types.Product
		if in.ID != nil && *in.ID != uuid.Nil {
			p, err = ps.find(dbc, store.ID, *in.ID)
			if err != nil {
				return err
			}
		} else {
			cfg, err := ps.configRepo.Get(dbc)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			count, err := ps.productRepo.CountByStore(dbc, store.ID)
			if err != nil {
				return fmt.Errorf("count products: %w", err)
			}
			if err := tier.CheckProducts(store, cfg, int(count)); err != nil {
				return err
			}
			p = &types.Product{StoreID: store.ID, MinStock: DefaultMinStock}
			created = true
		}
		if len(clash) > 0 && clash[0].ID != p.ID {
			return conflict("product_code_taken", fmt.Sprintf("a product with code %q already exists", code))
		}

		p.Code = code
		p.Name = name
		p.CostPrice = in.CostPrice
		p.Price = in.Price
		p.WholesalePrice = in.WholesalePrice
		p.Stock = in.Stock
		if in.MinStock != nil {
			p.MinStock = *in.MinStock
		}
		p.Category = normalization.Text(in.Category)
		if p.Category == "" {
			p.Category = types.DefaultCategory
		}
		if in.Image != nil {
			p.Image = strings.TrimSpace(*in.Image)
		}

		if created {
			_, err = ps.productRepo.Create(dbc, []*types.Product{p})
		} else {
			err = ps.productRepo.Update(dbc, p)
		}
		if err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, limitReached(err)
	}
	ps.log.Debug("Product saved", "store_id", storeID, "product_id", saved.ID, "created", created)
	ps.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventProductSaved, saved))
	if saved.LowStock() {
		ps.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventStockLow, saved))
	}
	return saved, nil
}

func (ps *productService) Delete(ctx context.Context, storeID, productID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ps.guard.load(dbc, storeID, accessOwner, false); err != nil {
		return err
	}
	deleted, err := ps.productRepo.Delete(dbc, storeID, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return notFound("product_not_found", "product not found")
	}
	ps.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventProductDeleted, map[string]string{"id": productID.String()}))
	return nil
}

// UploadImage stores the picture in the bucket and points the product at it.
func (ps *productService) UploadImage(ctx context.Context, storeID, productID uuid.UUID, filename string, r io.Reader) (*types.Product, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return nil, invalid("invalid_image", "image must be png, jpg, webp or gif")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ps.guard.load(dbc, storeID, accessOwner, false); err != nil {
		return nil, err
	}
	p, err := ps.find(dbc, storeID, productID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("products/%s/%s-%s%s", storeID, productID, uuid.NewString()[:8], ext)
	if err := ps.bucket.UploadFile(dbc, key, r); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	p.Image = ps.bucket.GetPublicURL(key)
	if err := ps.productRepo.UpdateImage(dbc, p.ID, p.Image); err != nil {
		return nil, fmt.Errorf("save image url: %w", err)
	}
	ps.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventProductSaved, p))
	return p, nil
}

func (ps *productService) find(dbc dbctx.Context, storeID, productID uuid.UUID) (*types.Product, error) {
	products, err := ps.productRepo.GetByIDs(dbc, []uuid.UUID{productID})
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if len(products) == 0 || products[0].StoreID != storeID {
		return nil, notFound("product_not_found", "product not found")
	}
	return products[0], nil
}
