package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/betoojeda/tienda-facil/internal/http/handlers"
	httpMW "github.com/betoojeda/tienda-facil/internal/http/middleware"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

const roleSuperAdmin = "super_admin"

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	Tracing        bool
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	// MediaDir is served under MediaPrefix when product images live on disk.
	MediaDir    string
	MediaPrefix string

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	SessionHandler   *httpH.SessionHandler
	StoreHandler     *httpH.StoreHandler
	ProductHandler   *httpH.ProductHandler
	ImportHandler    *httpH.ImportHandler
	SaleHandler      *httpH.SaleHandler
	AssistantHandler *httpH.AssistantHandler
	AdminHandler     *httpH.AdminHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Product images (disk mode)
	if cfg.MediaDir != "" {
		prefix := "/" + strings.Trim(cfg.MediaPrefix, "/")
		if prefix == "/" {
			prefix = "/media"
		}
		r.Static(prefix, cfg.MediaDir)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
			api.POST("/recover", cfg.AuthHandler.Recover)
		}
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		stream := api.Group("/")
		if cfg.AuthMiddleware != nil {
			stream.Use(cfg.AuthMiddleware.RequireAuthSSE())
		}
		stream.GET("/stores/:storeId/events", cfg.RealtimeHandler.StoreStream)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Session
		if cfg.SessionHandler != nil {
			protected.GET("/session", cfg.SessionHandler.Current)
			protected.POST("/session/store", cfg.SessionHandler.SelectStore)
		}

		// Stores + staff
		if cfg.StoreHandler != nil {
			protected.GET("/stores", cfg.StoreHandler.List)
			protected.POST("/stores", cfg.StoreHandler.Create)
			protected.GET("/stores/:storeId", cfg.StoreHandler.Get)
			protected.POST("/stores/:storeId/upgrade", cfg.StoreHandler.Upgrade)
			protected.GET("/stores/:storeId/usage", cfg.StoreHandler.Usage)
			protected.GET("/stores/:storeId/dashboard", cfg.StoreHandler.Dashboard)
			protected.POST("/stores/:storeId/staff", cfg.StoreHandler.AddStaff)
			protected.POST("/stores/:storeId/staff/accounts", cfg.StoreHandler.CreateStaffAccount)
			protected.DELETE("/stores/:storeId/staff/:username", cfg.StoreHandler.RemoveStaff)
		}

		// Inventory
		if cfg.ProductHandler != nil {
			protected.GET("/stores/:storeId/products", cfg.ProductHandler.List)
			protected.GET("/stores/:storeId/products/categories", cfg.ProductHandler.Categories)
			protected.GET("/stores/:storeId/products/low-stock", cfg.ProductHandler.LowStock)
			protected.GET("/stores/:storeId/products/:productId", cfg.ProductHandler.Get)
			protected.POST("/stores/:storeId/products", cfg.ProductHandler.Create)
			protected.PUT("/stores/:storeId/products/:productId", cfg.ProductHandler.Update)
			protected.DELETE("/stores/:storeId/products/:productId", cfg.ProductHandler.Delete)
			protected.POST("/stores/:storeId/products/:productId/image", cfg.ProductHandler.UploadImage)
		}

		// Import
		if cfg.ImportHandler != nil {
			protected.POST("/stores/:storeId/import", cfg.ImportHandler.Import)
			protected.GET("/import/template", cfg.ImportHandler.Template)
		}

		// POS
		if cfg.SaleHandler != nil {
			protected.POST("/stores/:storeId/sales", cfg.SaleHandler.Record)
			protected.GET("/stores/:storeId/sales", cfg.SaleHandler.List)
			protected.GET("/stores/:storeId/sales/:saleId", cfg.SaleHandler.Get)
			protected.GET("/stores/:storeId/sales/:saleId/receipt", cfg.SaleHandler.Receipt)
		}

		// Assistant
		if cfg.AssistantHandler != nil {
			protected.POST("/stores/:storeId/assistant", cfg.AssistantHandler.Ask)
		}

		// Super admin console
		if cfg.AdminHandler != nil {
			admin := protected.Group("/admin", httpMW.RequireRole(roleSuperAdmin))
			admin.GET("/stats", cfg.AdminHandler.Stats)
			admin.GET("/users", cfg.AdminHandler.Users)
			admin.PUT("/users/:userId/password", cfg.AdminHandler.SetPassword)
			admin.GET("/config", cfg.AdminHandler.Config)
			admin.PATCH("/config", cfg.AdminHandler.UpdateConfig)
			admin.PATCH("/stores/:storeId", cfg.AdminHandler.UpdateStore)
		}
	}

	return r
}
