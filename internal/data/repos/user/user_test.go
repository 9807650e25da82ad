package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/data/repos/testutil"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			Username:  "lupita",
			Password:  "pw",
			Role:      types.RoleOwner,
			FirstName: "Lupita",
			LastName:  "Reyes",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected 1 user with id, got %+v", created)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].Username != "lupita" {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByNames, err := repo.GetByUsernames(dbc, []string{"lupita", "nobody"})
	if err != nil {
		t.Fatalf("GetByUsernames: %v", err)
	}
	if len(gotByNames) != 1 {
		t.Fatalf("GetByUsernames: expected 1, got %d", len(gotByNames))
	}

	exists, err := repo.UsernameExists(dbc, "lupita")
	if err != nil || !exists {
		t.Fatalf("UsernameExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.UsernameExists(dbc, "nobody")
	if err != nil || exists {
		t.Fatalf("UsernameExists (missing): exists=%v err=%v", exists, err)
	}

	if _, err := repo.Create(dbc, []*types.User{{Username: "lupita", Password: "x", Role: types.RoleOwner}}); err == nil {
		t.Fatalf("Create duplicate username: expected error")
	}
}

func TestUserRepoUpdatePassword(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := testutil.SeedUser(t, context.Background(), db, "cajero1", types.RoleEmployee)

	changed, err := repo.UpdatePassword(dbc, u.ID, "new-hash")
	if err != nil || !changed {
		t.Fatalf("UpdatePassword: changed=%v err=%v", changed, err)
	}
	changed, err = repo.UpdatePassword(dbc, uuid.New(), "new-hash")
	if err != nil || changed {
		t.Fatalf("UpdatePassword (missing): changed=%v err=%v", changed, err)
	}

	admins, err := repo.GetByRole(dbc, types.RoleSuperAdmin)
	if err != nil || len(admins) != 0 {
		t.Fatalf("GetByRole: len=%d err=%v", len(admins), err)
	}
	n, err := repo.Count(dbc)
	if err != nil || n != 1 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
}
