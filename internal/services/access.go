package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/pkg/ctxutil"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	pkgerrors "github.com/betoojeda/tienda-facil/internal/pkg/errors"
	"github.com/betoojeda/tienda-facil/internal/platform/apierr"
)

// accessLevel is how much of a store the caller needs.
type accessLevel int

const (
	// accessRead lets super admins look at any store, members at theirs.
	accessRead accessLevel = iota
	// accessMember is owners and staff; sales are recorded at this level.
	accessMember
	// accessOwner is the owning account, with the owner role.
	accessOwner
)

var (
	errStoreNotFound = apierr.New(http.StatusNotFound, "store_not_found", fmt.Errorf("store not found: %w", pkgerrors.ErrNotFound))
	errNotMember     = apierr.New(http.StatusForbidden, "store_forbidden", fmt.Errorf("no access to this store: %w", pkgerrors.ErrForbidden))
	errNotOwner      = apierr.New(http.StatusForbidden, "owner_required", fmt.Errorf("only the store owner can do this: %w", pkgerrors.ErrForbidden))
)

func requireUser(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", pkgerrors.ErrUnauthorized)
	}
	return rd, nil
}

func invalid(code, msg string) error {
	return apierr.New(http.StatusBadRequest, code, fmt.Errorf("%s: %w", msg, pkgerrors.ErrInvalidArgument))
}

func conflict(code, msg string) error {
	return apierr.New(http.StatusConflict, code, fmt.Errorf("%s: %w", msg, pkgerrors.ErrConflict))
}

func notFound(code, msg string) error {
	return apierr.New(http.StatusNotFound, code, fmt.Errorf("%s: %w", msg, pkgerrors.ErrNotFound))
}

// limitReached keeps the limit message readable while mapping to 402.
func limitReached(err error) error {
	if errors.Is(err, pkgerrors.ErrLimitReached) {
		return apierr.New(http.StatusPaymentRequired, "limit_reached", err)
	}
	return err
}

type storeGuard struct {
	storeRepo repos.StoreRepo
}

// load fetches the store and checks the caller against level. With lock set
// the row is read FOR UPDATE, so dbc must carry a transaction.
func (g storeGuard) load(dbc dbctx.Context, storeID uuid.UUID, level accessLevel, lock bool) (*types.Store, *ctxutil.RequestData, error) {
	rd, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, nil, err
	}
	var store *types.Store
	if lock {
		store, err = g.storeRepo.GetByIDForUpdate(dbc, storeID)
		if err != nil {
			return nil, nil, fmt.Errorf("load store: %w", err)
		}
	} else {
		stores, err := g.storeRepo.GetByIDs(dbc, []uuid.UUID{storeID})
		if err != nil {
			return nil, nil, fmt.Errorf("load store: %w", err)
		}
		if len(stores) > 0 {
			store = stores[0]
		}
	}
	if store == nil {
		return nil, nil, errStoreNotFound
	}
	if err := authorize(rd, store, level); err != nil {
		return nil, nil, err
	}
	return store, rd, nil
}

func authorize(rd *ctxutil.RequestData, store *types.Store, level accessLevel) error {
	isOwner := store.OwnerID == rd.UserID
	isMember := isOwner || store.HasStaff(rd.Username)
	switch level {
	case accessRead:
		if isMember || types.Role(rd.Role) == types.RoleSuperAdmin {
			return nil
		}
		return errNotMember
	case accessMember:
		if isMember {
			return nil
		}
		return errNotMember
	default:
		if isOwner && types.Role(rd.Role) == types.RoleOwner {
			return nil
		}
		if isMember {
			return errNotOwner
		}
		return errNotMember
	}
}
