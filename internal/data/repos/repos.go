package repos

import (
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos/auth"
	"github.com/betoojeda/tienda-facil/internal/data/repos/catalog"
	"github.com/betoojeda/tienda-facil/internal/data/repos/sales"
	"github.com/betoojeda/tienda-facil/internal/data/repos/store"
	"github.com/betoojeda/tienda-facil/internal/data/repos/system"
	"github.com/betoojeda/tienda-facil/internal/data/repos/user"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type StoreRepo = store.StoreRepo
type ProductRepo = catalog.ProductRepo
type SaleRepo = sales.SaleRepo
type SystemConfigRepo = system.SystemConfigRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	return store.NewStoreRepo(db, baseLog)
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewSaleRepo(db *gorm.DB, baseLog *logger.Logger) SaleRepo {
	return sales.NewSaleRepo(db, baseLog)
}

func NewSystemConfigRepo(db *gorm.DB, baseLog *logger.Logger) SystemConfigRepo {
	return system.NewSystemConfigRepo(db, baseLog)
}
