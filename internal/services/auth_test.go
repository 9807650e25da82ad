package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/navigation"
	"github.com/betoojeda/tienda-facil/internal/pkg/ctxutil"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
)

func newAuth(f *fixture) AuthService {
	return NewAuthService(f.db, f.log, f.users, f.tokens, f.stores, "test-secret", time.Hour, 24*time.Hour)
}

func register(t *testing.T, f *fixture, svc AuthService, username string) *types.User {
	t.Helper()
	u, err := svc.RegisterUser(f.ctx, RegisterInput{
		Username:  username,
		Password:  "secreto",
		FirstName: "Ana",
		LastName:  "López",
		Email:     username + "@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return u
}

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)

	u := register(t, f, svc, "  ana ")
	if u.Username != "ana" || u.Role != types.RoleOwner {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.BusinessType != types.BusinessType("retail") {
		t.Fatalf("business type = %q, want retail", u.BusinessType)
	}
	if u.Password == "secreto" {
		t.Fatalf("password stored in clear")
	}

	_, err := svc.RegisterUser(f.ctx, RegisterInput{Username: "ana", Password: "x", FirstName: "A", LastName: "B", Email: "a@b.c"})
	expectCode(t, err, http.StatusConflict, "username_taken")

	_, err = svc.RegisterUser(f.ctx, RegisterInput{Username: "bob", Password: "x", FirstName: "B", LastName: "C", Email: "nope"})
	expectCode(t, err, http.StatusBadRequest, "invalid_email")

	_, err = svc.RegisterUser(f.ctx, RegisterInput{Username: "bob", FirstName: "B", Email: "b@b.c"})
	expectCode(t, err, http.StatusBadRequest, "missing_password")

	_, err = svc.RegisterUser(f.ctx, RegisterInput{Username: "bob", Password: "x", FirstName: "B", LastName: "  ", Email: "b@b.c"})
	expectCode(t, err, http.StatusBadRequest, "missing_last_name")
}

func TestRegisterUserKeepsNameCase(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, newAuth(f), "ana")
	if u.FirstName != "Ana" || u.LastName != "López" {
		t.Fatalf("names = %q %q", u.FirstName, u.LastName)
	}
}

func TestLoginUserErrors(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	register(t, f, svc, "ana")

	_, err := svc.LoginUser(f.ctx, "nadie", "secreto")
	expectCode(t, err, http.StatusNotFound, "user_not_found")

	_, err = svc.LoginUser(f.ctx, "ana", "otra")
	expectCode(t, err, http.StatusUnauthorized, "invalid_password")

	_, err = svc.LoginUser(f.ctx, "", "")
	expectCode(t, err, http.StatusBadRequest, "missing_credentials")
}

func TestLoginLanding(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	owner := register(t, f, svc, "ana")

	res, err := svc.LoginUser(f.ctx, "ana", "secreto")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if res.Landing.View != navigation.ViewStoreSettings || res.Landing.ActiveStore != nil {
		t.Fatalf("owner without stores landed on %+v", res.Landing)
	}

	store := f.store(owner, "Tienda Centro")
	res, err = svc.LoginUser(f.ctx, "ana", "secreto")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if res.Landing.View != navigation.ViewDashboard || res.Landing.ActiveStore == nil || res.Landing.ActiveStore.ID != store.ID {
		t.Fatalf("owner with store landed on %+v", res.Landing)
	}
	toks, err := f.tokens.GetByAccessTokens(dbctx.Context{Ctx: f.ctx}, []string{res.AccessToken})
	if err != nil || len(toks) != 1 {
		t.Fatalf("token lookup: %v (%d)", err, len(toks))
	}
	if toks[0].ActiveStoreID == nil || *toks[0].ActiveStoreID != store.ID {
		t.Fatalf("active store not saved on session")
	}
}

func TestLoginEmployeeWithoutStores(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	owner := register(t, f, svc, "ana")
	store := f.store(owner, "Tienda")
	_, err := NewStoreService(f.db, f.log, f.stores, f.users, f.products, f.config, f.events).
		CreateStaffAccount(as(owner), store.ID, RegisterInput{Username: "luis", Password: "pw", FirstName: "Luis", LastName: "Pérez", Email: "l@x.mx"})
	if err != nil {
		t.Fatalf("CreateStaffAccount: %v", err)
	}
	if _, err := svc.LoginUser(f.ctx, "luis", "pw"); err != nil {
		t.Fatalf("staffed employee should log in: %v", err)
	}
	if _, err := f.stores.RemoveStaff(dbctx.Context{Ctx: f.ctx}, store.ID, "luis"); err != nil {
		t.Fatalf("RemoveStaff: %v", err)
	}

	_, err = svc.LoginUser(f.ctx, "luis", "pw")
	expectCode(t, err, http.StatusForbidden, "no_stores")
}

func TestTokenLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	owner := register(t, f, svc, "ana")
	store := f.store(owner, "Tienda")

	res, err := svc.LoginUser(f.ctx, "ana", "secreto")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	ctx, err := svc.SetContextFromToken(f.ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != owner.ID || rd.Role != "owner" || rd.Username != "ana" {
		t.Fatalf("request data = %+v", rd)
	}

	if _, err := svc.SetContextFromToken(f.ctx, "not-a-jwt"); err == nil {
		t.Fatalf("garbage token accepted")
	}

	access, refresh, err := svc.RefreshUser(f.ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if access == res.AccessToken || refresh == res.RefreshToken {
		t.Fatalf("refresh did not rotate tokens")
	}
	if _, _, err := svc.RefreshUser(f.ctx, res.RefreshToken); err == nil {
		t.Fatalf("old refresh token reused")
	}
	toks, err := f.tokens.GetByAccessTokens(dbctx.Context{Ctx: f.ctx}, []string{access})
	if err != nil || len(toks) != 1 || toks[0].ActiveStoreID == nil || *toks[0].ActiveStoreID != store.ID {
		t.Fatalf("active store lost on refresh: %v", err)
	}

	ctx, err = svc.SetContextFromToken(f.ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := svc.LogoutUser(ctx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, err := svc.SetContextFromToken(f.ctx, access); err == nil {
		t.Fatalf("token still valid after logout")
	}
}

func TestRecoverPasswordIsGeneric(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	register(t, f, svc, "ana")

	if err := svc.RecoverPassword(f.ctx, "ana"); err != nil {
		t.Fatalf("known user: %v", err)
	}
	if err := svc.RecoverPassword(f.ctx, "ghost-"+uuid.NewString()); err != nil {
		t.Fatalf("unknown user must not be revealed: %v", err)
	}
	expectCode(t, svc.RecoverPassword(f.ctx, " "), http.StatusBadRequest, "missing_identifier")
}
