package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/realtime"
)

const DefaultSalesPageSize = 100

type SaleLineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type SaleInput struct {
	Items         []SaleLineInput `json:"items"`
	PaymentMethod string          `json:"payment_method"`
}

type SaleService interface {
	// Record prices the cart from the catalog, stores the sale and takes the
	// sold units out of stock.
	Record(ctx context.Context, storeID uuid.UUID, in SaleInput) (*types.Sale, error)
	List(ctx context.Context, storeID uuid.UUID, limit int) ([]*types.Sale, error)
	Get(ctx context.Context, storeID, saleID uuid.UUID) (*types.Sale, error)
	Receipt(ctx context.Context, storeID, saleID uuid.UUID) ([]byte, error)
}

type saleService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       storeGuard
	productRepo repos.ProductRepo
	saleRepo    repos.SaleRepo
	receipts    *ReceiptRenderer
	events      realtime.Publisher
}

func NewSaleService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	productRepo repos.ProductRepo,
	saleRepo repos.SaleRepo,
	receipts *ReceiptRenderer,
	events realtime.Publisher,
) SaleService {
	return &saleService{
		db:          db,
		log:         log.With("service", "SaleService"),
		guard:       storeGuard{storeRepo: storeRepo},
		productRepo: productRepo,
		saleRepo:    saleRepo,
		receipts:    receipts,
		events:      events,
	}
}

func (ss *saleService) Record(ctx context.Context, storeID uuid.UUID, in SaleInput) (*types.Sale, error) {
	method := types.PaymentMethod(in.PaymentMethod)
	if !method.Valid() {
		return nil, invalid("invalid_payment_method", "payment method must be cash, card, paypal or transfer")
	}
	if len(in.Items) == 0 {
		return nil, invalid("empty_cart", "cart is empty")
	}
	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return nil, invalid("invalid_quantity", "quantity must be at least 1")
		}
		ids = append(ids, line.ProductID)
	}

	var (
		sale *types.Sale
		low  []*types.Product
	)
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		store, rd, err := ss.guard.load(dbc, storeID, accessMember, false)
		if err != nil {
			return err
		}
		products, err := ss.productRepo.GetByIDs(dbc, ids)
		if err != nil {
			return fmt.Errorf("load cart products: %w", err)
		}
		byID := make(map[uuid.UUID]*types.Product, len(products))
		for _, p := range products {
			if p.StoreID == store.ID {
				byID[p.ID] = p
			}
		}

		sale = &types.Sale{StoreID: store.ID, PaymentMethod: method, SoldBy: rd.Username}
		for _, line := range in.Items {
			p, ok := byID[line.ProductID]
			if !ok {
				return notFound("product_not_found", fmt.Sprintf("product %s is not in this store", line.ProductID))
			}
			item := types.SaleItem{
				ProductID: p.ID,
				Code:      p.Code,
				Name:      p.Name,
				Category:  p.Category,
				Price:     p.Price,
				Quantity:  line.Quantity,
			}
			sale.Items = append(sale.Items, item)
			sale.Total += item.Subtotal()
		}
		sale.Total = math.Round(sale.Total*100) / 100
		if _, err := ss.saleRepo.Create(dbc, []*types.Sale{sale}); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		for _, it := range sale.Items {
			if err := ss.productRepo.DecrementStock(dbc, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		after, err := ss.productRepo.GetByIDs(dbc, uniqueIDs(ids))
		if err != nil {
			return fmt.Errorf("reload stock: %w", err)
		}
		for _, p := range after {
			if p.LowStock() {
				low = append(low, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ss.log.Info("Sale recorded", "store_id", storeID, "sale_id", sale.ID, "total", sale.Total, "items", sale.ItemCount())
	ss.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventSaleRecorded, sale))
	for _, p := range low {
		ss.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventStockLow, p))
	}
	return sale, nil
}

// List returns the newest sales first.
func (ss *saleService) List(ctx context.Context, storeID uuid.UUID, limit int) ([]*types.Sale, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ss.guard.load(dbc, storeID, accessRead, false); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSalesPageSize
	}
	sales, err := ss.saleRepo.ListRecentByStore(dbc, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (ss *saleService) Get(ctx context.Context, storeID, saleID uuid.UUID) (*types.Sale, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ss.guard.load(dbc, storeID, accessRead, false); err != nil {
		return nil, err
	}
	return ss.find(dbc, storeID, saleID)
}

func (ss *saleService) Receipt(ctx context.Context, storeID, saleID uuid.UUID) ([]byte, error) {
	dbc := dbctx.Context{Ctx: ctx}
	store, _, err := ss.guard.load(dbc, storeID, accessRead, false)
	if err != nil {
		return nil, err
	}
	sale, err := ss.find(dbc, storeID, saleID)
	if err != nil {
		return nil, err
	}
	return ss.receipts.Render(store.Name, sale)
}

func (ss *saleService) find(dbc dbctx.Context, storeID, saleID uuid.UUID) (*types.Sale, error) {
	sale, err := ss.saleRepo.GetByID(dbc, storeID, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale: %w", err)
	}
	if sale == nil {
		return nil, notFound("sale_not_found", "sale not found")
	}
	return sale, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
