package navigation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/betoojeda/tienda-facil/internal/domain"
)

var (
	admin    = &types.User{Username: "admin", Role: types.RoleSuperAdmin}
	owner    = &types.User{Username: "duena", Role: types.RoleOwner}
	employee = &types.User{Username: "cajero", Role: types.RoleEmployee}
)

func stores(n int) []*types.Store {
	out := make([]*types.Store, n)
	for i := range out {
		out[i] = &types.Store{ID: uuid.New(), Name: "Tienda"}
	}
	return out
}

func TestMenu(t *testing.T) {
	require.Equal(t, []View{ViewSuperAdmin}, Menu(types.RoleSuperAdmin))
	require.Equal(t, []View{ViewDashboard, ViewPOS, ViewInventory, ViewStoreSettings}, Menu(types.RoleOwner))
	require.Equal(t, []View{ViewDashboard, ViewPOS}, Menu(types.RoleEmployee))
	require.Empty(t, Menu(types.Role("")))
}

func TestAllowed(t *testing.T) {
	require.True(t, IsAllowed(nil, ViewLogin))
	require.False(t, IsAllowed(nil, ViewDashboard))
	require.False(t, IsAllowed(admin, ViewDashboard))
	require.False(t, IsAllowed(admin, ViewStoreSelect))
	require.True(t, IsAllowed(owner, ViewStoreSelect))
	require.False(t, IsAllowed(employee, ViewInventory))
	require.False(t, IsAllowed(employee, ViewStoreSettings))
}

func TestAfterLogin(t *testing.T) {
	l, err := AfterLogin(admin, stores(2))
	require.NoError(t, err)
	require.Equal(t, ViewSuperAdmin, l.View)
	require.Nil(t, l.ActiveStore)

	ss := stores(2)
	l, err = AfterLogin(employee, ss)
	require.NoError(t, err)
	require.Equal(t, ViewDashboard, l.View)
	require.Equal(t, ss[0], l.ActiveStore)

	l, err = AfterLogin(owner, nil)
	require.NoError(t, err)
	require.Equal(t, ViewStoreSettings, l.View)

	_, err = AfterLogin(employee, nil)
	require.True(t, errors.Is(err, ErrNoStoresAssigned))
}

func TestRestore(t *testing.T) {
	ss := stores(3)
	saved := ss[2].ID
	l, err := Restore(owner, ss, &saved)
	require.NoError(t, err)
	require.Equal(t, ss[2], l.ActiveStore)

	revoked := uuid.New()
	l, err = Restore(employee, ss, &revoked)
	require.NoError(t, err)
	require.Equal(t, ss[0], l.ActiveStore)

	l, err = Restore(admin, ss, &saved)
	require.NoError(t, err)
	require.Equal(t, ViewSuperAdmin, l.View)
	require.Nil(t, l.ActiveStore)
}

func TestResolve(t *testing.T) {
	ss := stores(1)
	cases := []struct {
		name      string
		user      *types.User
		active    *types.Store
		requested View
		want      View
	}{
		{"anonymous to dashboard", nil, nil, ViewDashboard, ViewLanding},
		{"anonymous to register", nil, nil, ViewRegister, ViewRegister},
		{"admin to pos", admin, nil, ViewPOS, ViewSuperAdmin},
		{"employee to inventory", employee, ss[0], ViewInventory, ViewDashboard},
		{"employee pos with store", employee, ss[0], ViewPOS, ViewPOS},
		{"owner pos without store", owner, nil, ViewPOS, ViewStoreSettings},
		{"owner settings without store", owner, nil, ViewStoreSettings, ViewStoreSettings},
		{"employee foreign store", employee, &types.Store{ID: uuid.New()}, ViewPOS, ViewStoreSelect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Resolve(tc.user, ss, tc.active, tc.requested))
		})
	}
}

func TestTerms(t *testing.T) {
	require.Equal(t, "Menú", Label(ViewInventory, "restaurant"))
	require.Equal(t, "Inventario", Label(ViewInventory, "retail"))
	require.Equal(t, "Producto", TermsFor("").Item)
}
