package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/inventory"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/reports"
)

const recentSalesShown = 5

type Dashboard struct {
	reports.Summary
	TotalRevenueLabel  string           `json:"total_revenue_label"`
	AverageTicketLabel string           `json:"average_ticket_label"`
	LowStock           []*types.Product `json:"low_stock"`
	RecentSales        []*types.Sale    `json:"recent_sales"`
}

type DashboardService interface {
	Summary(ctx context.Context, storeID uuid.UUID) (*Dashboard, error)
}

type dashboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       storeGuard
	productRepo repos.ProductRepo
	saleRepo    repos.SaleRepo
	loc         *time.Location
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	productRepo repos.ProductRepo,
	saleRepo repos.SaleRepo,
	loc *time.Location,
) DashboardService {
	return &dashboardService{
		db:          db,
		log:         log.With("service", "DashboardService"),
		guard:       storeGuard{storeRepo: storeRepo},
		productRepo: productRepo,
		saleRepo:    saleRepo,
		loc:         loc,
	}
}

func (ds *dashboardService) Summary(ctx context.Context, storeID uuid.UUID) (*Dashboard, error) {
	if _, _, err := ds.guard.load(dbctx.Context{Ctx: ctx}, storeID, accessRead, false); err != nil {
		return nil, err
	}

	var (
		sales    []*types.Sale
		products []*types.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = ds.saleRepo.ListByStore(dbctx.Context{Ctx: gctx}, storeID, 0)
		if err != nil {
			return fmt.Errorf("list sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = ds.productRepo.ListByStore(dbctx.Context{Ctx: gctx}, storeID)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := reports.Summarize(sales, products, ds.loc)
	out := &Dashboard{
		Summary:            summary,
		TotalRevenueLabel:  reports.FormatMoney(summary.TotalRevenue),
		AverageTicketLabel: reports.FormatMoney(summary.AverageTicket),
		LowStock:           inventory.LowStock(products),
		RecentSales:        make([]*types.Sale, 0, recentSalesShown),
	}
	for i := len(sales) - 1; i >= 0 && len(out.RecentSales) < recentSalesShown; i-- {
		out.RecentSales = append(out.RecentSales, sales[i])
	}
	return out, nil
}
