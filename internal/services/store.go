package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/normalization"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	pkgerrors "github.com/betoojeda/tienda-facil/internal/pkg/errors"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/apierr"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/tier"
)

// SubscriptionPeriod is how long one paid upgrade lasts.
const SubscriptionPeriod = 30 * 24 * time.Hour

// StoreView is a store as its members see it.
type StoreView struct {
	*types.Store
	Staff   []string `json:"staff"`
	IsOwner bool     `json:"is_owner"`
}

func newStoreView(s *types.Store, viewer uuid.UUID) *StoreView {
	return &StoreView{Store: s, Staff: s.StaffUsernames(), IsOwner: s.OwnerID == viewer}
}

type StoreService interface {
	ListUserStores(ctx context.Context) ([]*StoreView, error)
	GetStore(ctx context.Context, storeID uuid.UUID) (*StoreView, error)
	CreateStore(ctx context.Context, name string) (*StoreView, error)
	UpgradeSubscription(ctx context.Context, storeID uuid.UUID, planID string) (*StoreView, error)
	AddStaff(ctx context.Context, storeID uuid.UUID, username string) (*StoreView, error)
	CreateStaffAccount(ctx context.Context, storeID uuid.UUID, in RegisterInput) (*StoreView, error)
	RemoveStaff(ctx context.Context, storeID uuid.UUID, username string) (*StoreView, error)
	Usage(ctx context.Context, storeID uuid.UUID) (*tier.Usage, error)
}

type storeService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       storeGuard
	storeRepo   repos.StoreRepo
	userRepo    repos.UserRepo
	productRepo repos.ProductRepo
	configRepo  repos.SystemConfigRepo
	events      realtime.Publisher
	now         func() time.Time
}

func NewStoreService(
	db *gorm.DB,
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	userRepo repos.UserRepo,
	productRepo repos.ProductRepo,
	configRepo repos.SystemConfigRepo,
	events realtime.Publisher,
) StoreService {
	return &storeService{
		db:          db,
		log:         log.With("service", "StoreService"),
		guard:       storeGuard{storeRepo: storeRepo},
		storeRepo:   storeRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		configRepo:  configRepo,
		events:      events,
		now:         time.Now,
	}
}

// ListUserStores is every store for a super admin, otherwise the stores
// the caller owns or works in.
func (ss *storeService) ListUserStores(ctx context.Context) ([]*StoreView, error) {
	rd, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	var stores []*types.Store
	if types.Role(rd.Role) == types.RoleSuperAdmin {
		stores, err = ss.storeRepo.List(dbc)
	} else {
		stores, err = ss.storeRepo.ListAccessible(dbc, rd.UserID, rd.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	out := make([]*StoreView, 0, len(stores))
	for _, s := range stores {
		out = append(out, newStoreView(s, rd.UserID))
	}
	return out, nil
}

func (ss *storeService) GetStore(ctx context.Context, storeID uuid.UUID) (*StoreView, error) {
	store, rd, err := ss.guard.load(dbctx.Context{Ctx: ctx}, storeID, accessRead, false)
	if err != nil {
		return nil, err
	}
	return newStoreView(store, rd.UserID), nil
}

func (ss *storeService) CreateStore(ctx context.Context, name string) (*StoreView, error) {
	rd, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if types.Role(rd.Role) != types.RoleOwner {
		return nil, apierr.New(http.StatusForbidden, "owner_required", fmt.Errorf("only owners can create stores: %w", pkgerrors.ErrForbidden))
	}
	name = normalization.Text(name)
	if name == "" {
		return nil, invalid("missing_name", "store name is required")
	}
	store := &types.Store{
		Name:         name,
		OwnerID:      rd.UserID,
		Subscription: types.SubscriptionFree,
		PlanID:       system.PlanFree,
	}
	if _, err := ss.storeRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Store{store}); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	ss.log.Info("Store created", "store_id", store.ID, "owner_id", rd.UserID)
	return newStoreView(store, rd.UserID), nil
}

// UpgradeSubscription moves the store to a paid plan for one period.
// An empty planID means the top plan.
func (ss *storeService) UpgradeSubscription(ctx context.Context, storeID uuid.UUID, planID string) (*StoreView, error) {
	planID = normalization.ParseInputString(planID)
	if planID == "" {
		planID = system.PlanProMXN
	}
	var view *StoreView
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		store, rd, err := ss.guard.load(dbc, storeID, accessOwner, true)
		if err != nil {
			return err
		}
		cfg, err := ss.configRepo.Get(dbc)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if _, ok := cfg.Plan(planID); !ok || planID == system.PlanFree {
			return invalid("invalid_plan", fmt.Sprintf("unknown paid plan %q", planID))
		}
		expiry := ss.now().Add(SubscriptionPeriod)
		if err := ss.storeRepo.UpdateFields(dbc, store.ID, map[string]interface{}{
			"subscription":        types.SubscriptionPremium,
			"plan_id":             planID,
			"subscription_expiry": expiry,
		}); err != nil {
			return fmt.Errorf("upgrade store: %w", err)
		}
		store.Subscription = types.SubscriptionPremium
		store.PlanID = planID
		store.SubscriptionExpiry = &expiry
		view = newStoreView(store, rd.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ss.log.Info("Store upgraded", "store_id", storeID, "plan_id", planID)
	ss.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventStoreUpdated, view))
	return view, nil
}

func (ss *storeService) AddStaff(ctx context.Context, storeID uuid.UUID, username string) (*StoreView, error) {
	username = normalization.Username(username)
	if username == "" {
		return nil, invalid("missing_username", "username is required")
	}
	return ss.changeStaff(ctx, storeID, func(dbc dbctx.Context, store *types.Store) error {
		users, err := ss.userRepo.GetByUsernames(dbc, []string{username})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return notFound("user_not_found", "user not found")
		}
		return ss.addStaff(dbc, store, users[0])
	})
}

// CreateStaffAccount registers a new employee and puts them on the staff.
func (ss *storeService) CreateStaffAccount(ctx context.Context, storeID uuid.UUID, in RegisterInput) (*StoreView, error) {
	return ss.changeStaff(ctx, storeID, func(dbc dbctx.Context, store *types.Store) error {
		if err := ss.checkStaffLimit(dbc, store); err != nil {
			return err
		}
		user, err := createUser(dbc, ss.userRepo, in, types.RoleEmployee)
		if err != nil {
			return err
		}
		return ss.addStaff(dbc, store, user)
	})
}

func (ss *storeService) RemoveStaff(ctx context.Context, storeID uuid.UUID, username string) (*StoreView, error) {
	username = normalization.Username(username)
	return ss.changeStaff(ctx, storeID, func(dbc dbctx.Context, store *types.Store) error {
		removed, err := ss.storeRepo.RemoveStaff(dbc, store.ID, username)
		if err != nil {
			return fmt.Errorf("remove staff: %w", err)
		}
		if !removed {
			return notFound("staff_not_found", "user is not on the staff")
		}
		return nil
	})
}

func (ss *storeService) Usage(ctx context.Context, storeID uuid.UUID) (*tier.Usage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	store, _, err := ss.guard.load(dbc, storeID, accessRead, false)
	if err != nil {
		return nil, err
	}
	cfg, err := ss.configRepo.Get(dbc)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	products, err := ss.productRepo.CountByStore(dbc, store.ID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	usage := tier.Summarize(store, cfg, int(products), len(store.Staff))
	return &usage, nil
}

// changeStaff runs fn with the store locked for its owner, then returns
// the store as it looks afterwards.
func (ss *storeService) changeStaff(ctx context.Context, storeID uuid.UUID, fn func(dbc dbctx.Context, store *types.Store) error) (*StoreView, error) {
	var view *StoreView
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		store, rd, err := ss.guard.load(dbc, storeID, accessOwner, true)
		if err != nil {
			return err
		}
		if err := fn(dbc, store); err != nil {
			return err
		}
		fresh, err := ss.storeRepo.GetByIDs(dbc, []uuid.UUID{store.ID})
		if err != nil || len(fresh) == 0 {
			return fmt.Errorf("reload store: %w", err)
		}
		view = newStoreView(fresh[0], rd.UserID)
		return nil
	})
	if err != nil {
		return nil, limitReached(err)
	}
	ss.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventStoreUpdated, view))
	return view, nil
}

func (ss *storeService) addStaff(dbc dbctx.Context, store *types.Store, user *types.User) error {
	switch {
	case user.Role == types.RoleSuperAdmin:
		return invalid("invalid_staff", "super admins cannot join a store")
	case user.ID == store.OwnerID:
		return conflict("already_member", "the owner is already a member")
	case store.HasStaff(user.Username):
		return conflict("already_staff", "user is already on the staff")
	}
	if err := ss.checkStaffLimit(dbc, store); err != nil {
		return err
	}
	if err := ss.storeRepo.AddStaff(dbc, store.ID, user.Username); err != nil {
		return fmt.Errorf("add staff: %w", err)
	}
	ss.log.Info("Staff added", "store_id", store.ID, "user_id", user.ID)
	return nil
}

func (ss *storeService) checkStaffLimit(dbc dbctx.Context, store *types.Store) error {
	cfg, err := ss.configRepo.Get(dbc)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return tier.CheckStaff(store, cfg, len(store.Staff))
}
