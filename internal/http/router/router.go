package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/mebel-backend/internal/config"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mebel-backend/internal/http/middleware"
	"github.com/ignatzorin/mebel-backend/internal/service"
)

// CatalogRoutes регистрирует маршруты одной сущности каталога.
type CatalogRoutes interface {
	Register(public, admin *gin.RouterGroup, resource string)
}

// Handlers — все HTTP хэндлеры приложения.
type Handlers struct {
	Auth            *handlers.AuthHandler
	Health          *handlers.HealthHandler
	Images          *handlers.ImageHandler
	Logos           *handlers.LogoHandler
	ServiceRequests *handlers.ServiceRequestHandler
	WS              *handlers.WSHandler
	// Catalog — ресурс (rubrics, brands, ...) → его хэндлер.
	Catalog map[string]CatalogRoutes
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser, limiterStore limiter.Store) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	common.UseJSONFieldNames()

	r := gin.Default()
	r.MaxMultipartMemory = cfg.Images.MaxUploadSizeMB << 20
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Storage.Driver == config.StorageDriverLocal {
		r.Static("/storage", cfg.Storage.LocalPath)
	}

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(limiterStore, 5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/login", h.Auth.Login)
	}

	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(service.RoleAdmin))

	// Изображения и логотипы
	images := api.Group("/images")
	{
		images.POST("/upload", h.Images.Upload)
		images.GET("", h.Images.Index)
		images.POST("/reorder", h.Images.Reorder)
		images.DELETE("/:id", middleware.ULIDValidator("id"), h.Images.Destroy)
		images.PATCH("/:id/toggle-active", middleware.ULIDValidator("id"), h.Images.ToggleActive)
	}
	logos := api.Group("/logos")
	{
		logos.POST("/upload", h.Logos.Upload)
		logos.DELETE("", h.Logos.Delete)
	}

	// Каталог
	for resource, ch := range h.Catalog {
		ch.Register(api, admin, resource)
	}

	// Заявки
	api.POST("/service-requests",
		middleware.RateLimitMiddleware(limiterStore, cfg.RateLimitLimit, cfg.RateLimitPeriod),
		h.ServiceRequests.Create)
	admin.GET("/service-requests", h.ServiceRequests.List)
	admin.GET("/service-requests/export", h.ServiceRequests.Export)
	admin.GET("/service-requests/:id", middleware.ULIDValidator("id"), h.ServiceRequests.Get)
	admin.PATCH("/service-requests/:id/status", middleware.ULIDValidator("id"), h.ServiceRequests.UpdateStatus)

	return r
}
