package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
	"github.com/yungbote/appregistry-backend/internal/services"
	"github.com/yungbote/appregistry-backend/internal/services/listeners"
	"github.com/yungbote/appregistry-backend/internal/validation"
)

type Services struct {
	Applications services.ApplicationService
	Permissions  services.PermissionService
	Listeners    *lifecycle.Registry[*application.Application]

	// EventSink is nil unless change events are published.
	EventSink listeners.Sink
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, repos Repos, metrics *observability.Metrics, clock func() time.Time) (Services, error) {
	log.Info("Wiring services...")
	reg := lifecycle.NewRegistry[*application.Application]()
	out := Services{Listeners: reg}

	if cfg.Listeners.Audit {
		for _, l := range listeners.AuditListeners(log) {
			reg.Register(l)
		}
	}
	if cfg.Listeners.PermissionCleanup {
		reg.Register(listeners.NewPermissionCleanup(log, repos.Permissions))
	}
	if cfg.Listeners.Events && cfg.RedisAddr != "" {
		sink, err := listeners.NewRedisSink(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return out, fmt.Errorf("init change event sink: %w", err)
		}
		out.EventSink = sink
		opts := listeners.EventOptions{FailOnError: cfg.Listeners.EventsFailOnError, Clock: clock}
		for _, l := range listeners.EventListeners(log, sink, metrics, opts) {
			reg.Register(l)
		}
	}
	log.Info("Lifecycle listeners registered", "count", reg.Len())

	validators := validation.DefaultSet(validation.Options{
		RequireEmail:  cfg.Validation.RequireEmail,
		MaxNameLength: cfg.Validation.MaxNameLength,
	})
	out.Applications = services.NewApplicationService(log, repos.Applications, validators, reg, metrics)
	out.Permissions = services.NewPermissionService(log, repos.Permissions, clock)
	return out, nil
}
