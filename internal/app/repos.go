package app

import (
	"time"

	"github.com/yungbote/appregistry-backend/internal/data/aggregates"
	"github.com/yungbote/appregistry-backend/internal/data/db"
	"github.com/yungbote/appregistry-backend/internal/data/memstore"
	"github.com/yungbote/appregistry-backend/internal/data/repos"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type Repos struct {
	Applications application.DAO
	Permissions  application.PermissionDAO
}

// wireRepos builds gorm-backed DAOs, or in-process stores when dbs is nil.
func wireRepos(dbs *db.Service, log *logger.Logger, metrics *observability.Metrics, clock func() time.Time) Repos {
	if dbs == nil {
		log.Info("Wiring in-memory repos...")
		return Repos{
			Applications: memstore.New(clock),
			Permissions:  memstore.NewPermissions(clock),
		}
	}
	log.Info("Wiring repos...")
	deps := aggregates.BaseDeps{
		DB:    dbs.DB(),
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
		Clock: clock,
	}
	return Repos{
		Applications: aggregates.NewApplicationDAO(deps, repos.NewApplicationRepo(dbs.DB(), log)),
		Permissions:  aggregates.NewPermissionDAO(deps, repos.NewPermissionRepo(dbs.DB(), log)),
	}
}
