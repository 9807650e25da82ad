package app

import (
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type Repos struct {
	User         repos.UserRepo
	UserToken    repos.UserTokenRepo
	Store        repos.StoreRepo
	Product      repos.ProductRepo
	Sale         repos.SaleRepo
	SystemConfig repos.SystemConfigRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserToken:    repos.NewUserTokenRepo(db, log),
		Store:        repos.NewStoreRepo(db, log),
		Product:      repos.NewProductRepo(db, log),
		Sale:         repos.NewSaleRepo(db, log),
		SystemConfig: repos.NewSystemConfigRepo(db, log),
	}
}
