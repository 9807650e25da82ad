package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/realtime"
)

// MaintenanceService holds the periodic housekeeping the worker runs.
type MaintenanceService interface {
	// DowngradeExpired returns PREMIUM stores past their expiry to the free plan.
	DowngradeExpired(ctx context.Context, now time.Time) (int, error)
	// PurgeExpiredSessions hard-deletes sessions whose refresh window closed.
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type maintenanceService struct {
	db            *gorm.DB
	log           *logger.Logger
	storeRepo     repos.StoreRepo
	userTokenRepo repos.UserTokenRepo
	events        realtime.Publisher
}

func NewMaintenanceService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	userTokenRepo repos.UserTokenRepo,
	events realtime.Publisher,
) MaintenanceService {
	return &maintenanceService{
		db:            db,
		log:           log.With("service", "MaintenanceService"),
		storeRepo:     storeRepo,
		userTokenRepo: userTokenRepo,
		events:        events,
	}
}

func (ms *maintenanceService) DowngradeExpired(ctx context.Context, now time.Time) (int, error) {
	var downgraded []*types.Store
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		expired, err := ms.storeRepo.ListExpiredPremium(dbc, now)
		if err != nil {
			return fmt.Errorf("list expired stores: %w", err)
		}
		for _, s := range expired {
			if err := ms.storeRepo.UpdateFields(dbc, s.ID, map[string]interface{}{
				"subscription":        types.SubscriptionFree,
				"plan_id":             system.PlanFree,
				"subscription_expiry": nil,
			}); err != nil {
				return fmt.Errorf("downgrade store %s: %w", s.ID, err)
			}
			s.Subscription = types.SubscriptionFree
			s.PlanID = system.PlanFree
			s.SubscriptionExpiry = nil
			downgraded = append(downgraded, s)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, s := range downgraded {
		ms.log.Info("Subscription expired", "store_id", s.ID)
		ms.events.Publish(ctx, realtime.StoreEvent(s.ID, realtime.SSEEventStoreUpdated, s))
	}
	return len(downgraded), nil
}

func (ms *maintenanceService) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	n, err := ms.userTokenRepo.FullDeleteExpired(dbctx.Context{Ctx: ctx}, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		ms.log.Debug("Expired sessions purged", "count", n)
	}
	return n, nil
}
