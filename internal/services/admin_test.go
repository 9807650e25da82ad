package services

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/pkg/pointers"
)

func newAdminSvc(f *fixture) AdminService {
	return NewAdminService(f.db, f.log, f.users, f.stores, f.sales, f.config, f.events)
}

func TestEnsureSuperAdmin(t *testing.T) {
	f := newFixture(t)
	svc := newAdminSvc(f)

	if err := svc.EnsureSuperAdmin(f.ctx, "primera"); err != nil {
		t.Fatalf("EnsureSuperAdmin: %v", err)
	}
	if err := svc.EnsureSuperAdmin(f.ctx, "segunda"); err != nil {
		t.Fatalf("EnsureSuperAdmin again: %v", err)
	}
	admins, err := f.users.GetByRole(dbcOf(f), types.RoleSuperAdmin)
	if err != nil || len(admins) != 1 || admins[0].Username != AdminUsername {
		t.Fatalf("admins = %v (%v)", admins, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("primera")) != nil {
		t.Fatalf("seeded password was reset")
	}
}

func TestGlobalStats(t *testing.T) {
	f := newFixture(t)
	svc := newAdminSvc(f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda Ana")
	orphan := testStoreWithoutOwner(t, f)
	for _, total := range []float64{10.5, 20} {
		if _, err := f.sales.Create(dbcOf(f), []*types.Sale{{StoreID: store.ID, Total: total, PaymentMethod: "cash", SoldBy: "ana"}}); err != nil {
			t.Fatalf("seed sale: %v", err)
		}
	}

	stats, err := svc.GlobalStats(f.ctx)
	if err != nil {
		t.Fatalf("GlobalStats: %v", err)
	}
	if stats.TotalUsers != 1 || stats.TotalStores != 2 || stats.TotalSales != 2 || stats.TotalRevenue != 30.5 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.FreeTierLimit != system.DefaultFreeTierLimit || stats.TotalRevenueLabel != "$30.50" {
		t.Fatalf("stats = %+v", stats)
	}
	owners := map[uuid.UUID]string{}
	for _, s := range stats.Stores {
		owners[s.ID] = s.OwnerUsername
	}
	if owners[store.ID] != "ana" || owners[orphan.ID] != UnknownOwner {
		t.Fatalf("owners = %v", owners)
	}
}

func testStoreWithoutOwner(t *testing.T, f *fixture) *types.Store {
	t.Helper()
	ghost := &types.User{ID: uuid.New()}
	return f.store(ghost, "Huérfana")
}

func TestUpdateConfig(t *testing.T) {
	f := newFixture(t)
	svc := newAdminSvc(f)

	limit := 50
	cfg, err := svc.UpdateConfig(f.ctx, ConfigPatch{FreeTierLimit: &limit})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if cfg.FreeTierLimit != 50 || len(cfg.Plans) != 3 {
		t.Fatalf("merge lost plans: %+v", cfg)
	}

	plans := []types.SubscriptionPlan{{ID: "free", Name: "Gratis", MaxEmployees: 2, MaxProducts: 50}}
	cfg, err = svc.UpdateConfig(f.ctx, ConfigPatch{Plans: plans})
	if err != nil {
		t.Fatalf("UpdateConfig plans: %v", err)
	}
	if cfg.FreeTierLimit != 50 || len(cfg.Plans) != 1 {
		t.Fatalf("merge lost limit: %+v", cfg)
	}

	negative := -1
	_, err = svc.UpdateConfig(f.ctx, ConfigPatch{FreeTierLimit: &negative})
	expectCode(t, err, http.StatusBadRequest, "invalid_limit")
	_, err = svc.UpdateConfig(f.ctx, ConfigPatch{FreeTierLimit: pointers.Int(0)})
	expectCode(t, err, http.StatusBadRequest, "invalid_limit")
	if cfg, err := svc.GetConfig(f.ctx); err != nil || cfg.FreeTierLimit != 50 {
		t.Fatalf("rejected patch changed config: %+v (%v)", cfg, err)
	}
	_, err = svc.UpdateConfig(f.ctx, ConfigPatch{Plans: []types.SubscriptionPlan{{ID: "pro"}}})
	expectCode(t, err, http.StatusBadRequest, "invalid_plan")
	_, err = svc.UpdateConfig(f.ctx, ConfigPatch{Plans: []types.SubscriptionPlan{{ID: "free"}, {ID: "free"}}})
	expectCode(t, err, http.StatusBadRequest, "invalid_plan")
}

func TestLoadPlans(t *testing.T) {
	f := newFixture(t)
	svc := newAdminSvc(f)
	path := filepath.Join(t.TempDir(), "plans.yaml")
	yamlDoc := `free_tier_limit: 250
plans:
  - id: free
    name: Gratis
    max_employees: 3
    max_products: 250
  - id: pro_mxn
    name: Plan Empresarial
    price: 599
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write plans: %v", err)
	}
	if err := svc.LoadPlans(f.ctx, path); err != nil {
		t.Fatalf("LoadPlans: %v", err)
	}
	cfg, err := svc.GetConfig(f.ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	pro, ok := cfg.Plan("pro_mxn")
	if cfg.FreeTierLimit != 250 || len(cfg.Plans) != 2 || !ok || pro.Price != 599 {
		t.Fatalf("config = %+v", cfg)
	}
	if err := svc.LoadPlans(f.ctx, ""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	f := newFixture(t)
	svc := newAdminSvc(f)
	u := f.user("ana", types.RoleOwner)

	if err := svc.SetPasswordByUsername(f.ctx, "ana", "nueva"); err != nil {
		t.Fatalf("SetPasswordByUsername: %v", err)
	}
	users, _ := f.users.GetByIDs(dbcOf(f), []uuid.UUID{u.ID})
	if bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("nueva")) != nil {
		t.Fatalf("password not updated")
	}
	expectCode(t, svc.SetUserPassword(f.ctx, uuid.New(), "x"), http.StatusNotFound, "user_not_found")
	expectCode(t, svc.SetPasswordByUsername(f.ctx, "nadie", "x"), http.StatusNotFound, "user_not_found")
	expectCode(t, svc.SetUserPassword(f.ctx, u.ID, ""), http.StatusBadRequest, "missing_password")
}

func TestAdminUpdateStore(t *testing.T) {
	f := newFixture(t)
	svc := newAdminSvc(f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")

	expiry := fixedNow.Add(72 * time.Hour)
	view, err := svc.UpdateStore(f.ctx, store.ID, StorePatch{
		Name:               pointers.String("Tienda Renombrada"),
		Subscription:       pointers.String("premium"),
		PlanID:             pointers.String("basic_mxn"),
		SubscriptionExpiry: pointers.Ptr(expiry),
	})
	if err != nil {
		t.Fatalf("UpdateStore: %v", err)
	}
	if view.Name != "Tienda Renombrada" || view.Subscription != types.SubscriptionPremium || view.PlanID != "basic_mxn" || view.OwnerUsername != "ana" {
		t.Fatalf("view = %+v", view)
	}
	if view.SubscriptionExpiry == nil || !view.SubscriptionExpiry.Equal(expiry) {
		t.Fatalf("expiry = %v", view.SubscriptionExpiry)
	}

	view, err = svc.UpdateStore(f.ctx, store.ID, StorePatch{ClearExpiry: true})
	if err != nil || view.SubscriptionExpiry != nil {
		t.Fatalf("clear expiry: %v %v", err, view.SubscriptionExpiry)
	}

	bad := "gold"
	_, err = svc.UpdateStore(f.ctx, store.ID, StorePatch{PlanID: &bad})
	expectCode(t, err, http.StatusBadRequest, "invalid_plan")
	_, err = svc.UpdateStore(f.ctx, store.ID, StorePatch{Subscription: &bad})
	expectCode(t, err, http.StatusBadRequest, "invalid_subscription")
	_, err = svc.UpdateStore(f.ctx, uuid.New(), StorePatch{Name: pointers.String("Otra")})
	expectCode(t, err, http.StatusNotFound, "store_not_found")
}
