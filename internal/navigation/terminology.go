package navigation

import (
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/user"
)

// Terms are the labels a business type uses for its catalog.
type Terms struct {
	Item      string `json:"item"`
	Items     string `json:"items"`
	Inventory string `json:"inventory"`
}

func TermsFor(bt types.BusinessType) Terms {
	if bt == user.BusinessRestaurant {
		return Terms{Item: "Platillo", Items: "Platillos", Inventory: "Menú"}
	}
	return Terms{Item: "Producto", Items: "Productos", Inventory: "Inventario"}
}

// Label is the navbar caption of a view.
func Label(v View, bt types.BusinessType) string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewPOS:
		return "Punto de Venta"
	case ViewInventory:
		return TermsFor(bt).Inventory
	case ViewStoreSettings:
		return "Mis Tiendas"
	case ViewSuperAdmin:
		return "Super Admin"
	case ViewStoreSelect:
		return "Seleccionar Tienda"
	}
	return string(v)
}
