package model

import (
	"strings"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
)

// DiscoverFilters is session-scoped: the client sends it with every feed
// request, nothing is persisted server-side. Empty slices mean "no filter".
type DiscoverFilters struct {
	LookingFor    []enums.LookingFor `json:"looking_for"`
	Skills        []string           `json:"skills"`
	MaxDistanceKM *float64           `json:"max_distance_km,omitempty"`
}

func (f DiscoverFilters) MatchesLookingFor(value enums.LookingFor) bool {
	if len(f.LookingFor) == 0 {
		return true
	}
	for _, v := range f.LookingFor {
		if v == value {
			return true
		}
	}
	return false
}

// MatchesSkills is an any-of intersection check, not all-of.
// Comparison ignores case and surrounding whitespace.
func (f DiscoverFilters) MatchesSkills(skills []string) bool {
	if len(f.Skills) == 0 {
		return true
	}
	for _, want := range f.Skills {
		for _, have := range skills {
			if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(have)) {
				return true
			}
		}
	}
	return false
}
