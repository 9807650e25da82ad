package domain

import (
	"github.com/betoojeda/tienda-facil/internal/domain/auth"
	"github.com/betoojeda/tienda-facil/internal/domain/catalog"
	"github.com/betoojeda/tienda-facil/internal/domain/sales"
	"github.com/betoojeda/tienda-facil/internal/domain/store"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/domain/user"
)

type (
	User         = user.User
	Role         = user.Role
	BusinessType = user.BusinessType
	UserToken    = auth.UserToken

	Store              = store.Store
	StoreStaff         = store.StoreStaff
	SubscriptionStatus = store.SubscriptionStatus

	Product = catalog.Product

	Sale          = sales.Sale
	SaleItem      = sales.SaleItem
	PaymentMethod = sales.PaymentMethod

	SystemConfig     = system.SystemConfig
	SubscriptionPlan = system.SubscriptionPlan
)

var ParseBusinessType = user.ParseBusinessType

const (
	RoleSuperAdmin = user.RoleSuperAdmin
	RoleOwner      = user.RoleOwner
	RoleEmployee   = user.RoleEmployee

	SubscriptionFree    = store.SubscriptionFree
	SubscriptionPremium = store.SubscriptionPremium

	DefaultCategory = catalog.DefaultCategory
)
