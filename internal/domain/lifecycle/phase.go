package lifecycle

import "strings"

// Phase is the point in a mutation where a listener runs.
type Phase string

const (
	PreCreate  Phase = "PRE_CREATE"
	PostCreate Phase = "POST_CREATE"
	PreUpdate  Phase = "PRE_UPDATE"
	PostUpdate Phase = "POST_UPDATE"
	PreDelete  Phase = "PRE_DELETE"
	PostDelete Phase = "POST_DELETE"
)

// Phases lists every phase in execution order per operation.
var Phases = []Phase{PreCreate, PostCreate, PreUpdate, PostUpdate, PreDelete, PostDelete}

// ParsePhase accepts the canonical names case-insensitively ("pre_create", "PRE-CREATE").
func ParsePhase(s string) (Phase, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, p := range Phases {
		if string(p) == norm {
			return p, true
		}
	}
	return "", false
}

func (p Phase) IsPre() bool {
	return p == PreCreate || p == PreUpdate || p == PreDelete
}
