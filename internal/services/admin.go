package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/normalization"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/reports"
)

const (
	AdminUsername        = "admin"
	DefaultAdminPassword = "admin"
	UnknownOwner         = "Desconocido"
)

type AdminStore struct {
	*types.Store
	OwnerUsername string   `json:"owner_username"`
	Staff         []string `json:"staff"`
}

type GlobalStats struct {
	TotalUsers        int64         `json:"total_users"`
	TotalStores       int64         `json:"total_stores"`
	TotalSales        int64         `json:"total_sales"`
	TotalRevenue      float64       `json:"total_revenue"`
	TotalRevenueLabel string        `json:"total_revenue_label"`
	FreeTierLimit     int           `json:"free_tier_limit"`
	Stores            []*AdminStore `json:"stores"`
}

// ConfigPatch leaves nil fields untouched; a non-nil Plans replaces the catalog.
type ConfigPatch struct {
	FreeTierLimit *int                     `json:"free_tier_limit,omitempty" yaml:"free_tier_limit"`
	Plans         []types.SubscriptionPlan `json:"plans,omitempty" yaml:"plans"`
}

type StorePatch struct {
	Name               *string    `json:"name,omitempty"`
	Subscription       *string    `json:"subscription,omitempty"`
	PlanID             *string    `json:"plan_id,omitempty"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
	ClearExpiry        bool       `json:"clear_expiry,omitempty"`
}

// AdminService backs the super admin console and the CLI. It does not check
// the caller; routes reach it only through the super admin gate.
type AdminService interface {
	EnsureSuperAdmin(ctx context.Context, password string) error
	LoadPlans(ctx context.Context, path string) error
	GlobalStats(ctx context.Context) (*GlobalStats, error)
	ListUsers(ctx context.Context) ([]*types.User, error)
	SetUserPassword(ctx context.Context, userID uuid.UUID, password string) error
	SetPasswordByUsername(ctx context.Context, username, password string) error
	GetConfig(ctx context.Context) (*types.SystemConfig, error)
	UpdateConfig(ctx context.Context, patch ConfigPatch) (*types.SystemConfig, error)
	UpdateStore(ctx context.Context, storeID uuid.UUID, patch StorePatch) (*AdminStore, error)
}

type adminService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	storeRepo  repos.StoreRepo
	saleRepo   repos.SaleRepo
	configRepo repos.SystemConfigRepo
	events     realtime.Publisher
}

func NewAdminService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	storeRepo repos.StoreRepo,
	saleRepo repos.SaleRepo,
	configRepo repos.SystemConfigRepo,
	events realtime.Publisher,
) AdminService {
	return &adminService{
		db:         db,
		log:        log.With("service", "AdminService"),
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		saleRepo:   saleRepo,
		configRepo: configRepo,
		events:     events,
	}
}

// EnsureSuperAdmin creates the admin account when no super admin exists.
// An existing account's password is left alone.
func (as *adminService) EnsureSuperAdmin(ctx context.Context, password string) error {
	if password == "" {
		password = DefaultAdminPassword
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		admins, err := as.userRepo.GetByRole(dbc, types.RoleSuperAdmin)
		if err != nil {
			return fmt.Errorf("look up super admins: %w", err)
		}
		if len(admins) > 0 {
			return nil
		}
		taken, err := as.userRepo.UsernameExists(dbc, AdminUsername)
		if err != nil {
			return fmt.Errorf("check admin username: %w", err)
		}
		if taken {
			as.log.Warn("Username admin belongs to a regular account; super admin not seeded")
			return nil
		}
		u, err := createUser(dbc, as.userRepo, RegisterInput{
			Username:  AdminUsername,
			Password:  password,
			FirstName: "Super",
			LastName:  "Admin",
			Email:     "admin@tiendafacil.local",
		}, types.RoleSuperAdmin)
		if err != nil {
			return fmt.Errorf("seed super admin: %w", err)
		}
		as.log.Info("Super admin seeded", "user_id", u.ID)
		return nil
	})
}

// LoadPlans merges a YAML plan catalog into the stored configuration.
func (as *adminService) LoadPlans(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plans file: %w", err)
	}
	var patch ConfigPatch
	if err := yaml.Unmarshal(raw, &patch); err != nil {
		return fmt.Errorf("parse plans file %s: %w", path, err)
	}
	if _, err := as.UpdateConfig(ctx, patch); err != nil {
		return err
	}
	as.log.Info("Plan catalog loaded", "path", path, "plans", len(patch.Plans))
	return nil
}

func (as *adminService) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	var (
		stats  GlobalStats
		cfg    *types.SystemConfig
		stores []*types.Store
		users  []*types.User
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		stats.TotalUsers, err = as.userRepo.Count(dbc)
		return wrap("count users", err)
	})
	g.Go(func() (err error) {
		stats.TotalStores, err = as.storeRepo.Count(dbc)
		return wrap("count stores", err)
	})
	g.Go(func() (err error) {
		stats.TotalSales, err = as.saleRepo.Count(dbc)
		return wrap("count sales", err)
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = as.saleRepo.SumTotal(dbc)
		return wrap("sum revenue", err)
	})
	g.Go(func() (err error) {
		cfg, err = as.configRepo.Get(dbc)
		return wrap("load config", err)
	})
	g.Go(func() (err error) {
		stores, err = as.storeRepo.List(dbc)
		return wrap("list stores", err)
	})
	g.Go(func() (err error) {
		users, err = as.userRepo.List(dbc)
		return wrap("list users", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	stats.FreeTierLimit = cfg.FreeTierLimit
	stats.TotalRevenueLabel = reports.FormatMoney(stats.TotalRevenue)
	stats.Stores = make([]*AdminStore, 0, len(stores))
	for _, s := range stores {
		stats.Stores = append(stats.Stores, adminStore(s, names))
	}
	return &stats, nil
}

func (as *adminService) ListUsers(ctx context.Context) ([]*types.User, error) {
	users, err := as.userRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (as *adminService) SetUserPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if password == "" {
		return invalid("missing_password", "password is required")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	ok, err := as.userRepo.UpdatePassword(dbctx.Context{Ctx: ctx}, userID, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !ok {
		return notFound("user_not_found", "user not found")
	}
	as.log.Info("Password updated by admin", "user_id", userID)
	return nil
}

func (as *adminService) SetPasswordByUsername(ctx context.Context, username, password string) error {
	users, err := as.userRepo.GetByUsernames(dbctx.Context{Ctx: ctx}, []string{normalization.Username(username)})
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return notFound("user_not_found", "user not found")
	}
	return as.SetUserPassword(ctx, users[0].ID, password)
}

func (as *adminService) GetConfig(ctx context.Context) (*types.SystemConfig, error) {
	cfg, err := as.configRepo.Get(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (as *adminService) UpdateConfig(ctx context.Context, patch ConfigPatch) (*types.SystemConfig, error) {
	if patch.FreeTierLimit != nil && *patch.FreeTierLimit < 1 {
		return nil, invalid("invalid_limit", "free tier limit must be at least 1")
	}
	if patch.Plans != nil {
		if err := validatePlans(patch.Plans); err != nil {
			return nil, err
		}
	}
	var out *types.SystemConfig
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cfg, err := as.configRepo.Get(dbc)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if patch.FreeTierLimit != nil {
			cfg.FreeTierLimit = *patch.FreeTierLimit
		}
		if patch.Plans != nil {
			cfg.Plans = patch.Plans
		}
		if err := as.configRepo.Save(dbc, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("System config updated", "free_tier_limit", out.FreeTierLimit, "plans", len(out.Plans))
	return out, nil
}

func (as *adminService) UpdateStore(ctx context.Context, storeID uuid.UUID, patch StorePatch) (*AdminStore, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := normalization.Text(*patch.Name)
		if name == "" {
			return nil, invalid("missing_name", "store name cannot be empty")
		}
		updates["name"] = name
	}
	if patch.Subscription != nil {
		sub := types.SubscriptionStatus(strings.ToUpper(strings.TrimSpace(*patch.Subscription)))
		if !sub.Valid() {
			return nil, invalid("invalid_subscription", "subscription must be FREE or PREMIUM")
		}
		updates["subscription"] = sub
	}
	switch {
	case patch.ClearExpiry:
		updates["subscription_expiry"] = nil
	case patch.SubscriptionExpiry != nil:
		updates["subscription_expiry"] = patch.SubscriptionExpiry.UTC()
	}

	var view *AdminStore
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		store, err := as.storeRepo.GetByIDForUpdate(dbc, storeID)
		if err != nil {
			return fmt.Errorf("load store: %w", err)
		}
		if store == nil {
			return errStoreNotFound
		}
		if patch.PlanID != nil {
			planID := strings.TrimSpace(*patch.PlanID)
			cfg, err := as.configRepo.Get(dbc)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if _, ok := cfg.Plan(planID); !ok {
				return invalid("invalid_plan", fmt.Sprintf("unknown plan %q", planID))
			}
			updates["plan_id"] = planID
		}
		if err := as.storeRepo.UpdateFields(dbc, store.ID, updates); err != nil {
			return fmt.Errorf("update store: %w", err)
		}
		fresh, err := as.storeRepo.GetByIDs(dbc, []uuid.UUID{store.ID})
		if err != nil || len(fresh) == 0 {
			return fmt.Errorf("reload store: %w", err)
		}
		owners, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{fresh[0].OwnerID})
		if err != nil {
			return fmt.Errorf("load owner: %w", err)
		}
		names := map[uuid.UUID]string{}
		for _, o := range owners {
			names[o.ID] = o.Username
		}
		view = adminStore(fresh[0], names)
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("Store updated by admin", "store_id", storeID, "fields", len(updates))
	as.events.Publish(ctx, realtime.StoreEvent(storeID, realtime.SSEEventStoreUpdated, view))
	return view, nil
}

func adminStore(s *types.Store, owners map[uuid.UUID]string) *AdminStore {
	owner, ok := owners[s.OwnerID]
	if !ok {
		owner = UnknownOwner
	}
	return &AdminStore{Store: s, OwnerUsername: owner, Staff: s.StaffUsernames()}
}

func validatePlans(plans []types.SubscriptionPlan) error {
	seen := map[string]bool{}
	for i, p := range plans {
		id := strings.TrimSpace(p.ID)
		switch {
		case id == "":
			return invalid("invalid_plan", fmt.Sprintf("plan %d has no id", i+1))
		case seen[id]:
			return invalid("invalid_plan", fmt.Sprintf("plan %q is listed twice", id))
		case p.Price < 0 || p.MaxEmployees < 0 || p.MaxProducts < 0:
			return invalid("invalid_plan", fmt.Sprintf("plan %q has negative values", id))
		}
		seen[id] = true
	}
	if !seen[system.PlanFree] {
		return invalid("invalid_plan", "the free plan must stay in the catalog")
	}
	return nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
