// Package listeners holds the lifecycle listeners the registry ships with.
package listeners

import (
	"context"
	"strings"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/platform/ctxutil"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

// AuditListener logs one phase of a mutation and passes the candidate through.
type AuditListener struct {
	log   *logger.Logger
	phase lifecycle.Phase
}

// AuditListeners returns one audit listener per phase, in phase order.
func AuditListeners(log *logger.Logger) []lifecycle.Listener[*application.Application] {
	out := make([]lifecycle.Listener[*application.Application], 0, len(lifecycle.Phases))
	for _, p := range lifecycle.Phases {
		out = append(out, NewAuditListener(log, p))
	}
	return out
}

func NewAuditListener(log *logger.Logger, phase lifecycle.Phase) *AuditListener {
	return &AuditListener{log: log.With("listener", "audit", "phase", string(phase)), phase: phase}
}

func (l *AuditListener) Name() string { return "audit:" + strings.ToLower(string(l.phase)) }

func (l *AuditListener) Supports(phase lifecycle.Phase) bool { return phase == l.phase }

func (l *AuditListener) Apply(ctx context.Context, original, candidate *application.Application) (*application.Application, error) {
	l.log.Info("Application lifecycle",
		"application", subjectName(original, candidate),
		"subject", ctxutil.SubjectOr(ctx, "anonymous"),
	)
	return candidate, nil
}

func (l *AuditListener) Rollback(ctx context.Context, original *application.Application) error {
	kv := []interface{}{"subject", ctxutil.SubjectOr(ctx, "anonymous")}
	// Creates have no original to name.
	if original != nil {
		kv = append(kv, "application", application.NormalizeName(original.Name))
	}
	l.log.Warn("Application lifecycle rolled back", kv...)
	return nil
}

func subjectName(original, candidate *application.Application) string {
	if candidate != nil && strings.TrimSpace(candidate.Name) != "" {
		return application.NormalizeName(candidate.Name)
	}
	if original != nil {
		return application.NormalizeName(original.Name)
	}
	return ""
}
