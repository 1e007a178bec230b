package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordAggregateSignals(t *testing.T) {
	m := NewMetrics()
	m.ObserveAggregateOperation("application.create", "success", 3*time.Millisecond)
	m.ObserveAggregateOperation("application.create", "already_exists", time.Millisecond)
	m.IncAggregateConflict("application.create")
	m.ObserveRollback("application.update", "action", "failure")

	if got := testutil.ToFloat64(m.aggregateOps.WithLabelValues("application.create", "success")); got != 1 {
		t.Fatalf("success ops: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("application.create")); got != 1 {
		t.Fatalf("conflicts: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.rollbacks.WithLabelValues("application.update", "action", "failure")); got != 1 {
		t.Fatalf("rollbacks: want=1 got=%v", got)
	}
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/v2/applications", "200", 10*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "appreg_api_requests_total") {
		t.Fatalf("scrape output missing api counter")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveAggregateOperation("op", "success", time.Millisecond)
	m.IncAggregateConflict("op")
	m.IncAggregateRetry("op")
	m.ObserveRollback("op", "action", "success")
	m.IncListenerEvent("audit", "PRE_CREATE", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics handler: want=503 got=%d", rec.Code)
	}
}
