package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorderCapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("application.create", "success", 10*time.Millisecond)
	h.ObserveOperation("application.create", "already_exists", time.Millisecond)
	h.ObserveOperation("application.delete", "success", time.Millisecond)
	h.IncConflict("application.create")
	h.IncRetry("application.update")

	got := h.Statuses("application.create")
	if len(got) != 2 || got[0] != "success" || got[1] != "already_exists" {
		t.Fatalf("unexpected statuses: %v", got)
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "application.create" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "application.update" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}
