package app

import (
	"github.com/yungbote/appregistry-backend/internal/data/db"
	apphttp "github.com/yungbote/appregistry-backend/internal/http"
	httpH "github.com/yungbote/appregistry-backend/internal/http/handlers"
	httpMW "github.com/yungbote/appregistry-backend/internal/http/middleware"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Application *httpH.ApplicationHandler
	Permission  *httpH.PermissionHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireHandlers(log *logger.Logger, services Services, dbs *db.Service) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{}
	if dbs != nil {
		checks["database"] = dbs.Ping
	}
	return Handlers{
		Health:      httpH.NewHealthHandler(checks),
		Application: httpH.NewApplicationHandler(log, services.Applications),
		Permission:  httpH.NewPermissionHandler(log, services.Permissions),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(cfg.HTTPAddr, apphttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSOrigins,
		AuthMiddleware:     middleware.Auth,
		ApplicationHandler: handlers.Application,
		PermissionHandler:  handlers.Permission,
		HealthHandler:      handlers.Health,
	})
}
