package navigation

import (
	"errors"

	"github.com/google/uuid"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/user"
)

type View string

const (
	ViewLanding       View = "LANDING"
	ViewLogin         View = "LOGIN"
	ViewRegister      View = "REGISTER"
	ViewStoreSelect   View = "STORE_SELECT"
	ViewDashboard     View = "DASHBOARD"
	ViewPOS           View = "POS"
	ViewInventory     View = "INVENTORY"
	ViewStoreSettings View = "STORE_SETTINGS"
	ViewSuperAdmin    View = "SUPER_ADMIN"
)

var ErrNoStoresAssigned = errors.New("account has no stores assigned")

var anonymousViews = []View{ViewLanding, ViewLogin, ViewRegister}

// menus are the navbar entries per role, in display order.
var menus = map[types.Role][]View{
	user.RoleSuperAdmin: {ViewSuperAdmin},
	user.RoleOwner:      {ViewDashboard, ViewPOS, ViewInventory, ViewStoreSettings},
	user.RoleEmployee:   {ViewDashboard, ViewPOS},
}

// Menu is the navbar for a role; nil for anonymous callers.
func Menu(role types.Role) []View {
	return append([]View(nil), menus[role]...)
}

// Allowed lists every view a caller may reach. A nil user is anonymous.
func Allowed(u *types.User) []View {
	if u == nil {
		return append([]View(nil), anonymousViews...)
	}
	views := Menu(u.Role)
	if u.Role != user.RoleSuperAdmin {
		views = append(views, ViewStoreSelect)
	}
	return views
}

func IsAllowed(u *types.User, v View) bool {
	for _, a := range Allowed(u) {
		if a == v {
			return true
		}
	}
	return false
}

// NeedsStore reports views that only make sense inside an active store.
func NeedsStore(v View) bool {
	switch v {
	case ViewDashboard, ViewPOS, ViewInventory:
		return true
	}
	return false
}

// Home is the fallback view for a caller.
func Home(u *types.User, hasStore bool) View {
	switch {
	case u == nil:
		return ViewLanding
	case u.Role == user.RoleSuperAdmin:
		return ViewSuperAdmin
	case hasStore:
		return ViewDashboard
	case u.Role == user.RoleOwner:
		return ViewStoreSettings
	}
	return ViewStoreSelect
}

type Landing struct {
	View        View
	ActiveStore *types.Store
}

// AfterLogin decides where a fresh login lands. Super admins go to the
// console; anyone with stores works in the first one; owners without
// stores are sent to create one. An employee with no stores cannot log in.
func AfterLogin(u *types.User, stores []*types.Store) (Landing, error) {
	if u.Role == user.RoleSuperAdmin {
		return Landing{View: ViewSuperAdmin}, nil
	}
	if len(stores) > 0 {
		return Landing{View: ViewDashboard, ActiveStore: stores[0]}, nil
	}
	if u.Role == user.RoleOwner {
		return Landing{View: ViewStoreSettings}, nil
	}
	return Landing{}, ErrNoStoresAssigned
}

// Restore re-enters a saved session. The saved store is honored only when
// the user can still reach it and is not a super admin.
func Restore(u *types.User, stores []*types.Store, savedStoreID *uuid.UUID) (Landing, error) {
	landing, err := AfterLogin(u, stores)
	if err != nil || u.Role == user.RoleSuperAdmin || savedStoreID == nil {
		return landing, err
	}
	if s := find(stores, *savedStoreID); s != nil {
		return Landing{View: ViewDashboard, ActiveStore: s}, nil
	}
	return landing, nil
}

// Resolve returns the view actually shown for a request: the requested
// view when the caller may see it (with a store when one is needed),
// otherwise the caller's home.
func Resolve(u *types.User, stores []*types.Store, active *types.Store, requested View) View {
	if active != nil && u != nil && u.Role != user.RoleSuperAdmin && find(stores, active.ID) == nil {
		active = nil
	}
	hasStore := active != nil
	if IsAllowed(u, requested) && (!NeedsStore(requested) || hasStore) {
		return requested
	}
	return Home(u, hasStore)
}

func find(stores []*types.Store, id uuid.UUID) *types.Store {
	for _, s := range stores {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}
