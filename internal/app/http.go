package app

import (
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/http"
	httpH "github.com/betoojeda/tienda-facil/internal/http/handlers"
	httpMW "github.com/betoojeda/tienda-facil/internal/http/middleware"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/gcp"
	"github.com/betoojeda/tienda-facil/internal/realtime"
)

func wireServer(db *gorm.DB, log *logger.Logger, cfg Config, s Services, hub *realtime.SSEHub) *http.Server {
	log.Info("Wiring handlers...")
	rc := http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.OtelServiceName,
		Tracing:        cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		HealthHandler:    httpH.NewHealthHandler(db),
		AuthHandler:      httpH.NewAuthHandler(s.Auth),
		SessionHandler:   httpH.NewSessionHandler(s.Session),
		StoreHandler:     httpH.NewStoreHandler(s.Store, s.Dashboard),
		ProductHandler:   httpH.NewProductHandler(s.Product),
		ImportHandler:    httpH.NewImportHandler(s.Import),
		SaleHandler:      httpH.NewSaleHandler(s.Sale),
		AssistantHandler: httpH.NewAssistantHandler(s.Assistant),
		AdminHandler:     httpH.NewAdminHandler(s.Admin),
		RealtimeHandler:  httpH.NewRealtimeHandler(log, hub, s.Store),
	}
	if storage, err := cfg.StorageConfig().Normalize(); err == nil && storage.Mode == gcp.ObjectStorageModeDisk {
		rc.MediaDir = storage.DiskDir
		rc.MediaPrefix = storage.DiskURLPrefix
	}
	return http.NewServer(rc)
}
