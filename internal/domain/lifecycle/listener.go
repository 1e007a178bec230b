package lifecycle

import "context"

// Listener observes and may transform a mutation. Apply receives copies of the
// original snapshot and the current candidate and returns the next candidate.
// Rollback compensates for a successful Apply when a later step fails.
type Listener[T any] interface {
	Supports(phase Phase) bool
	Apply(ctx context.Context, original, candidate T) (T, error)
	Rollback(ctx context.Context, original T) error
}

// Named is implemented by listeners that want a stable name in logs and metrics.
type Named interface {
	Name() string
}

// PhaseSet is a small helper for listeners that support a fixed set of phases.
type PhaseSet map[Phase]struct{}

func NewPhaseSet(phases ...Phase) PhaseSet {
	s := make(PhaseSet, len(phases))
	for _, p := range phases {
		s[p] = struct{}{}
	}
	return s
}

func (s PhaseSet) Supports(phase Phase) bool {
	_, ok := s[phase]
	return ok
}
