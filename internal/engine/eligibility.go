package engine

import (
	"strings"

	"districtlottery/internal/models"
)

// CheckTarget returns ErrNoScopeTarget when a ZONE or CLUB scope has no filter
// value, letting callers tell "no target selected" apart from "nobody eligible".
func CheckTarget(scope models.Scope, filter string) error {
	if scope.Filtered() && strings.TrimSpace(filter) == "" {
		return ErrNoScopeTarget
	}
	return nil
}

// Eligible returns the participants of roster that may be drawn at scope:
// narrowed to zone == filter (ZONE) or club == filter (CLUB), minus everyone
// holding an active record of the same scope in ledger. The filter is
// compared without surrounding whitespace. Records of other scopes are
// ignored. A filtered scope without a filter yields no candidates.
// The result keeps roster order; neither input is modified.
func Eligible(roster []models.Participant, ledger []models.WinnerRecord, scope models.Scope, filter string) []models.Participant {
	filter = strings.TrimSpace(filter)
	if !scope.Valid() || CheckTarget(scope, filter) != nil {
		return []models.Participant{}
	}

	won := make(map[string]struct{})
	for _, r := range ledger {
		if r.Scope == scope {
			won[r.ParticipantID] = struct{}{}
		}
	}

	out := make([]models.Participant, 0, len(roster))
	for _, p := range roster {
		switch scope {
		case models.ScopeZone:
			if p.Zone != filter {
				continue
			}
		case models.ScopeClub:
			if p.Club != filter {
				continue
			}
		}
		if _, ok := won[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ContextValue is the scope context string recorded on winner records:
// DistrictContext for DISTRICT, the filter value otherwise.
func ContextValue(scope models.Scope, filter string) string {
	if scope == models.ScopeDistrict {
		return models.DistrictContext
	}
	return strings.TrimSpace(filter)
}
