package lifecycle

import (
	"context"
	"testing"
)

type stubListener struct {
	PhaseSet
	name string
}

func (s stubListener) Name() string { return s.name }
func (s stubListener) Apply(_ context.Context, _, candidate string) (string, error) {
	return candidate, nil
}
func (s stubListener) Rollback(context.Context, string) error { return nil }

func TestRegistryFiltersByPhaseInOrder(t *testing.T) {
	r := NewRegistry[string](
		stubListener{PhaseSet: NewPhaseSet(PreCreate, PreUpdate), name: "a"},
		stubListener{PhaseSet: NewPhaseSet(PostCreate), name: "b"},
		stubListener{PhaseSet: NewPhaseSet(PreCreate), name: "c"},
	)
	got := r.For(PreCreate)
	if len(got) != 2 || NameOf(got[0]) != "a" || NameOf(got[1]) != "c" {
		t.Fatalf("PreCreate listeners: %+v", got)
	}
	if len(r.For(PreDelete)) != 0 {
		t.Fatalf("PreDelete should have no listeners")
	}
	if r.Len() != 3 {
		t.Fatalf("Len: want=3 got=%d", r.Len())
	}
	var nilReg *Registry[string]
	if nilReg.For(PreCreate) != nil || nilReg.Len() != 0 {
		t.Fatalf("nil registry must be empty")
	}
}

func TestParsePhase(t *testing.T) {
	cases := map[string]Phase{
		"PRE_CREATE":  PreCreate,
		"post-update": PostUpdate,
		" pre_delete": PreDelete,
	}
	for in, want := range cases {
		got, ok := ParsePhase(in)
		if !ok || got != want {
			t.Fatalf("ParsePhase(%q): want=%s got=%s ok=%v", in, want, got, ok)
		}
	}
	if _, ok := ParsePhase("during"); ok {
		t.Fatalf("unknown phase must not parse")
	}
	if !PreUpdate.IsPre() || PostDelete.IsPre() {
		t.Fatalf("IsPre mismatch")
	}
}
