package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/realtime"
)

func TestDowngradeExpired(t *testing.T) {
	f := newFixture(t)
	svc := NewMaintenanceService(f.db, f.log, f.stores, f.tokens, f.events)
	owner := f.user("ana", types.RoleOwner)
	expired := f.store(owner, "Vencida")
	current := f.store(owner, "Vigente")
	free := f.store(owner, "Gratis")

	past, future := fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour)
	for id, exp := range map[uuid.UUID]time.Time{expired.ID: past, current.ID: future} {
		if err := f.stores.UpdateFields(dbcOf(f), id, map[string]interface{}{
			"subscription":        types.SubscriptionPremium,
			"plan_id":             system.PlanProMXN,
			"subscription_expiry": exp,
		}); err != nil {
			t.Fatalf("seed premium: %v", err)
		}
	}

	n, err := svc.DowngradeExpired(f.ctx, fixedNow)
	if err != nil || n != 1 {
		t.Fatalf("DowngradeExpired = %d (%v)", n, err)
	}
	got, err := f.stores.GetByIDs(dbcOf(f), []uuid.UUID{expired.ID, current.ID, free.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, s := range got {
		switch s.ID {
		case expired.ID:
			if s.Subscription != types.SubscriptionFree || s.PlanID != system.PlanFree || s.SubscriptionExpiry != nil {
				t.Fatalf("expired store not downgraded: %+v", s)
			}
		case current.ID:
			if s.Subscription != types.SubscriptionPremium {
				t.Fatalf("current store downgraded")
			}
		}
	}
	if f.events.count(realtime.SSEEventStoreUpdated) != 1 {
		t.Fatalf("expected one StoreUpdated event")
	}

	n, err = svc.DowngradeExpired(f.ctx, fixedNow)
	if err != nil || n != 0 {
		t.Fatalf("second sweep = %d (%v)", n, err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	f := newFixture(t)
	svc := NewMaintenanceService(f.db, f.log, f.stores, f.tokens, f.events)
	u := f.user("ana", types.RoleOwner)
	_, err := f.tokens.Create(dbcOf(f), []*types.UserToken{
		{UserID: u.ID, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: fixedNow.Add(-time.Minute)},
		{UserID: u.ID, AccessToken: "a2", RefreshToken: "r2", ExpiresAt: fixedNow.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
	n, err := svc.PurgeExpiredSessions(f.ctx, fixedNow)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredSessions = %d (%v)", n, err)
	}
}
