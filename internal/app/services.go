package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/gcp"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Session     services.SessionService
	Store       services.StoreService
	Product     services.ProductService
	Import      services.ImportService
	Sale        services.SaleService
	Dashboard   services.DashboardService
	Admin       services.AdminService
	Maintenance services.MaintenanceService
	Assistant   services.AssistantService
}

type serviceDeps struct {
	cfg      Config
	loc      *time.Location
	events   realtime.Publisher
	bucket   gcp.BucketService
	receipts *services.ReceiptRenderer
	llm      services.TextGenerator
}

func wireServices(db *gorm.DB, log *logger.Logger, r Repos, d serviceDeps) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(db, log, r.User, r.UserToken, r.Store,
			d.cfg.JWTSecretKey, d.cfg.AccessTokenTTL, d.cfg.RefreshTokenTTL),
		Session:     services.NewSessionService(db, log, r.User, r.UserToken, r.Store),
		Store:       services.NewStoreService(db, log, r.Store, r.User, r.Product, r.SystemConfig, d.events),
		Product:     services.NewProductService(db, log, r.Store, r.Product, r.SystemConfig, d.bucket, d.events),
		Import:      services.NewImportService(db, log, r.Store, r.Product, r.SystemConfig, d.events),
		Sale:        services.NewSaleService(db, log, r.Store, r.Product, r.Sale, d.receipts, d.events),
		Dashboard:   services.NewDashboardService(db, log, r.Store, r.Product, r.Sale, d.loc),
		Admin:       services.NewAdminService(db, log, r.User, r.Store, r.Sale, r.SystemConfig, d.events),
		Maintenance: services.NewMaintenanceService(db, log, r.Store, r.UserToken, d.events),
		Assistant:   services.NewAssistantService(db, log, r.Store, r.Product, r.Sale, d.llm),
	}
}
