package aggregates

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/dbctx"
)

func TestObservabilityHooksToleratesNilReceiver(t *testing.T) {
	var hooks *observabilityHooks
	deps := BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}
	err := executeWrite(context.Background(), deps, "application.create", func(dbctx.Context) error {
		return ConflictError("taken")
	})
	if err == nil {
		t.Fatalf("expected mapped conflict error")
	}
	(&observabilityHooks{}).IncRetry("application.update")
}

func TestObservabilityHooksRecordMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	deps := BaseDeps{Runner: spyTxRunner{}, Hooks: NewObservabilityHooks(metrics)}
	if err := executeWrite(context.Background(), deps, "application.create", func(dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("executeWrite: %v", err)
	}
	_ = executeWrite(context.Background(), deps, "application.create", func(dbctx.Context) error {
		return ConflictError("taken")
	})

	ops, err := testutil.GatherAndCount(metrics.Registry(), "appreg_aggregate_operations_total")
	if err != nil || ops != 2 {
		t.Fatalf("operation series: want=2 got=%d err=%v", ops, err)
	}
	conflicts, err := testutil.GatherAndCount(metrics.Registry(), "appreg_aggregate_conflicts_total")
	if err != nil || conflicts != 1 {
		t.Fatalf("conflict series: want=1 got=%d err=%v", conflicts, err)
	}
	if _, ok := NewObservabilityHooks(nil).(noopHooks); !ok {
		t.Fatalf("nil metrics must yield noop hooks")
	}
}
