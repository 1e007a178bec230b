package application

import "strings"

// Permission lists the groups a caller must belong to in order to act on the
// application with the same name.
type Permission struct {
	Name                    string   `json:"name"`
	LastModified            int64    `json:"lastModified,omitempty"`
	LastModifiedBy          string   `json:"lastModifiedBy,omitempty"`
	RequiredGroupMembership []string `json:"requiredGroupMembership"`
}

func (p *Permission) ID() string {
	if p == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Name))
}

func (p *Permission) Clone() *Permission {
	if p == nil {
		return nil
	}
	c := *p
	c.RequiredGroupMembership = append([]string(nil), p.RequiredGroupMembership...)
	return &c
}

// NormalizedGroups trims, lower-cases and de-duplicates the group list, keeping order.
func (p *Permission) NormalizedGroups() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(p.RequiredGroupMembership))
	out := make([]string, 0, len(p.RequiredGroupMembership))
	for _, g := range p.RequiredGroupMembership {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
