package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/appregistry-backend/internal/http/handlers"
	httpMW "github.com/yungbote/appregistry-backend/internal/http/middleware"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	ApplicationHandler *httpH.ApplicationHandler
	PermissionHandler  *httpH.PermissionHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}

	// Applications
	if h := cfg.ApplicationHandler; h != nil {
		apps := r.Group("/v2/applications")
		apps.GET("", h.List)
		apps.GET("/:name", h.Get)
		apps.POST("", requireAuth, h.Create)
		apps.PATCH("/:name", requireAuth, h.Update)
		apps.DELETE("/:name", requireAuth, h.Delete)
	}

	// Permissions
	if h := cfg.PermissionHandler; h != nil {
		perms := r.Group("/permissions")
		perms.GET("", h.List)
		perms.GET("/:name", h.Get)
		perms.PUT("/:name", requireAuth, h.Put)
		perms.DELETE("/:name", requireAuth, h.Delete)
	}

	return r
}
