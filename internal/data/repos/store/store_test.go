package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/data/repos/testutil"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
)

func TestStoreRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewStoreRepo(db, testutil.Logger(t))
	owner := testutil.SeedUser(t, ctx, tx, "duena", types.RoleOwner)
	other := testutil.SeedUser(t, ctx, tx, "otro", types.RoleOwner)

	created, err := repo.Create(dbc, []*types.Store{{Name: "Abarrotes Lupita", OwnerID: owner.ID}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s := created[0]
	if s.Subscription != types.SubscriptionFree || s.PlanID != "free" {
		t.Fatalf("Create: expected FREE/free defaults, got %s/%s", s.Subscription, s.PlanID)
	}
	foreign := testutil.SeedStore(t, ctx, tx, other.ID, "Ferreteria")

	if err := repo.AddStaff(dbc, s.ID, "cajero1"); err != nil {
		t.Fatalf("AddStaff: %v", err)
	}
	if err := repo.AddStaff(dbc, foreign.ID, "cajero1"); err != nil {
		t.Fatalf("AddStaff foreign: %v", err)
	}
	if n, err := repo.CountStaff(dbc, s.ID); err != nil || n != 1 {
		t.Fatalf("CountStaff: n=%d err=%v", n, err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{s.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(got))
	}
	if !got[0].HasStaff("cajero1") {
		t.Fatalf("expected preloaded staff, got %+v", got[0].Staff)
	}

	owned, err := repo.ListAccessible(dbc, owner.ID, owner.Username)
	if err != nil || len(owned) != 1 || owned[0].ID != s.ID {
		t.Fatalf("ListAccessible owner: err=%v stores=%+v", err, owned)
	}
	staffed, err := repo.ListAccessible(dbc, uuid.New(), "cajero1")
	if err != nil || len(staffed) != 2 {
		t.Fatalf("ListAccessible staff: err=%v len=%d", err, len(staffed))
	}

	removed, err := repo.RemoveStaff(dbc, s.ID, "cajero1")
	if err != nil || !removed {
		t.Fatalf("RemoveStaff: removed=%v err=%v", removed, err)
	}
	removed, err = repo.RemoveStaff(dbc, s.ID, "cajero1")
	if err != nil || removed {
		t.Fatalf("RemoveStaff twice: removed=%v err=%v", removed, err)
	}

	past := time.Now().Add(-time.Hour)
	if err := repo.UpdateFields(dbc, s.ID, map[string]interface{}{
		"subscription":        types.SubscriptionPremium,
		"plan_id":             "pro_mxn",
		"subscription_expiry": past,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	expired, err := repo.ListExpiredPremium(dbc, time.Now())
	if err != nil || len(expired) != 1 || expired[0].ID != s.ID {
		t.Fatalf("ListExpiredPremium: err=%v stores=%+v", err, expired)
	}

	locked, err := repo.GetByIDForUpdate(dbc, s.ID)
	if err != nil || locked == nil || locked.PlanID != "pro_mxn" {
		t.Fatalf("GetByIDForUpdate: err=%v store=%+v", err, locked)
	}
	missing, err := repo.GetByIDForUpdate(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByIDForUpdate missing: err=%v store=%+v", err, missing)
	}

	if n, err := repo.Count(dbc); err != nil || n != 2 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
}
