package application

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	scoreExactName  = 100
	scorePrefixName = 50
	scoreNameMatch  = 10
	scoreAttribute  = 1
)

// Attribute resolves key against the fixed fields first, then Details. Keys are
// case-insensitive. A nil fixed field resolves to "" but still counts as present.
func (a *Application) Attribute(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "name":
		return a.Name, true
	case "description":
		return deref(a.Description), true
	case "email":
		return deref(a.Email), true
	case "accounts":
		return deref(a.Accounts), true
	case "createts":
		return a.CreateTs, true
	case "updatets":
		return a.UpdateTs, true
	}
	if v, ok := a.Details[key]; ok {
		return stringify(v), true
	}
	for dk, v := range a.Details {
		if strings.EqualFold(dk, k) {
			return stringify(v), true
		}
	}
	return "", false
}

// Matches reports whether every non-blank param is a case-insensitive substring
// of the corresponding attribute.
func Matches(a *Application, params map[string]string) bool {
	for k, want := range params {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		got, ok := a.Attribute(k)
		if !ok {
			return false
		}
		if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// Score ranks a match; the name param dominates.
func Score(a *Application, params map[string]string) int {
	score := 0
	for k, want := range params {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), "name") {
			name := strings.ToLower(a.Name)
			switch {
			case name == want:
				score += scoreExactName
			case strings.HasPrefix(name, want):
				score += scorePrefixName
			case strings.Contains(name, want):
				score += scoreNameMatch
			}
			continue
		}
		score += scoreAttribute
	}
	return score
}

// Filter returns the matching applications ordered by score, then name.
func Filter(apps []*Application, params map[string]string) []*Application {
	type ranked struct {
		app   *Application
		score int
	}
	hits := make([]ranked, 0, len(apps))
	for _, a := range apps {
		if a == nil || !Matches(a, params) {
			continue
		}
		hits = append(hits, ranked{app: a, score: Score(a, params)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].app.Name < hits[j].app.Name
	})
	out := make([]*Application, len(hits))
	for i := range hits {
		out[i] = hits[i].app
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
