package system

import (
	"context"
	"testing"

	"github.com/betoojeda/tienda-facil/internal/data/repos/testutil"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
)

func TestSystemConfigRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewSystemConfigRepo(db, testutil.Logger(t))

	cfg, err := repo.Get(dbc)
	if err != nil {
		t.Fatalf("Get defaults: %v", err)
	}
	if cfg.FreeTierLimit != system.DefaultFreeTierLimit || len(cfg.Plans) != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg.FreeTierLimit = 250
	if err := repo.Save(dbc, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg.FreeTierLimit = 300
	if err := repo.Save(dbc, cfg); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := repo.Get(dbc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FreeTierLimit != 300 {
		t.Fatalf("expected 300, got %d", got.FreeTierLimit)
	}
	if p, ok := got.Plan(system.PlanBasicMXN); !ok || p.MaxEmployees != 15 {
		t.Fatalf("expected basic plan with 15 employees, got %+v ok=%v", p, ok)
	}
}
