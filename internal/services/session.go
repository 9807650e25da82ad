package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/navigation"
	"github.com/betoojeda/tienda-facil/internal/pkg/ctxutil"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	pkgerrors "github.com/betoojeda/tienda-facil/internal/pkg/errors"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/apierr"
)

type MenuItem struct {
	View  navigation.View `json:"view"`
	Label string          `json:"label"`
}

// SessionView is everything the client shell needs to draw itself.
type SessionView struct {
	User        *types.User      `json:"user"`
	Stores      []*StoreView     `json:"stores"`
	ActiveStore *StoreView       `json:"active_store,omitempty"`
	View        navigation.View  `json:"view"`
	Menu        []MenuItem       `json:"menu"`
	Terms       navigation.Terms `json:"terms"`
}

type SessionService interface {
	// Current restores the caller's session. requested may be empty, in
	// which case the landing view is returned.
	Current(ctx context.Context, requested navigation.View) (*SessionView, error)
	SelectStore(ctx context.Context, storeID uuid.UUID) (*SessionView, error)
}

type sessionService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	storeRepo     repos.StoreRepo
}

func NewSessionService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	storeRepo repos.StoreRepo,
) SessionService {
	return &sessionService{
		db:            db,
		log:           log.With("service", "SessionService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		storeRepo:     storeRepo,
	}
}

var errNoStores = apierr.New(http.StatusForbidden, "no_stores", fmt.Errorf("%w: %w", navigation.ErrNoStoresAssigned, pkgerrors.ErrForbidden))

func (ss *sessionService) Current(ctx context.Context, requested navigation.View) (*SessionView, error) {
	rd, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var (
		view *SessionView
		drop bool
	)
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, token, stores, err := ss.load(dbc, rd)
		if err != nil {
			return err
		}
		landing, err := navigation.Restore(user, stores, token.ActiveStoreID)
		if errors.Is(err, navigation.ErrNoStoresAssigned) {
			drop = true
			return nil
		}
		if err != nil {
			return err
		}
		if changed(token.ActiveStoreID, landing.ActiveStore) {
			var id *uuid.UUID
			if landing.ActiveStore != nil {
				id = &landing.ActiveStore.ID
			}
			if err := ss.userTokenRepo.SetActiveStore(dbc, token.ID, id); err != nil {
				return fmt.Errorf("save active store: %w", err)
			}
		}
		shown := landing.View
		if requested != "" {
			shown = navigation.Resolve(user, stores, landing.ActiveStore, requested)
		}
		view = buildSessionView(user, stores, landing.ActiveStore, shown)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if drop {
		if err := ss.userTokenRepo.SoftDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
			return nil, fmt.Errorf("drop session: %w", err)
		}
		ss.log.Info("Session dropped, no stores assigned", "user_id", rd.UserID)
		return nil, errNoStores
	}
	return view, nil
}

func (ss *sessionService) SelectStore(ctx context.Context, storeID uuid.UUID) (*SessionView, error) {
	rd, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if types.Role(rd.Role) == types.RoleSuperAdmin {
		return nil, apierr.New(http.StatusForbidden, "admin_no_store", fmt.Errorf("super admins do not work inside a store: %w", pkgerrors.ErrForbidden))
	}
	var view *SessionView
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, token, stores, err := ss.load(dbc, rd)
		if err != nil {
			return err
		}
		var active *types.Store
		for _, s := range stores {
			if s.ID == storeID {
				active = s
				break
			}
		}
		if active == nil {
			return errNotMember
		}
		if err := ss.userTokenRepo.SetActiveStore(dbc, token.ID, &active.ID); err != nil {
			return fmt.Errorf("save active store: %w", err)
		}
		view = buildSessionView(user, stores, active, navigation.ViewDashboard)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ss.log.Debug("Store selected", "user_id", rd.UserID, "store_id", storeID)
	return view, nil
}

func (ss *sessionService) load(dbc dbctx.Context, rd *ctxutil.RequestData) (*types.User, *types.UserToken, []*types.Store, error) {
	users, err := ss.userRepo.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil, nil, apierr.New(http.StatusUnauthorized, "user_not_found", pkgerrors.ErrUnauthorized)
	}
	tokens, err := ss.userTokenRepo.GetByIDs(dbc, []uuid.UUID{rd.SessionID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load session: %w", err)
	}
	if len(tokens) == 0 {
		return nil, nil, nil, apierr.New(http.StatusUnauthorized, "session_not_found", pkgerrors.ErrUnauthorized)
	}
	user := users[0]
	var stores []*types.Store
	if user.Role != types.RoleSuperAdmin {
		stores, err = ss.storeRepo.ListAccessible(dbc, user.ID, user.Username)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("list stores: %w", err)
		}
	}
	return user, tokens[0], stores, nil
}

func buildSessionView(user *types.User, stores []*types.Store, active *types.Store, shown navigation.View) *SessionView {
	view := &SessionView{
		User:   user,
		Stores: make([]*StoreView, 0, len(stores)),
		View:   shown,
		Terms:  navigation.TermsFor(user.BusinessType),
	}
	for _, s := range stores {
		view.Stores = append(view.Stores, newStoreView(s, user.ID))
	}
	if active != nil {
		view.ActiveStore = newStoreView(active, user.ID)
	}
	for _, v := range navigation.Menu(user.Role) {
		view.Menu = append(view.Menu, MenuItem{View: v, Label: navigation.Label(v, user.BusinessType)})
	}
	return view
}

func changed(saved *uuid.UUID, active *types.Store) bool {
	switch {
	case saved == nil && active == nil:
		return false
	case saved == nil || active == nil:
		return true
	}
	return *saved != active.ID
}
