package models

import (
	"fmt"
	"strings"
)

// Scope is the draw tier ("layer"). Winning is tracked per scope: a participant
// who won at CLUB scope is still eligible at ZONE and DISTRICT scope.
type Scope string

const (
	ScopeDistrict Scope = "DISTRICT" // all participants, no filter
	ScopeZone     Scope = "ZONE"     // filtered by zone name
	ScopeClub     Scope = "CLUB"     // filtered by club name
)

// DistrictContext is the scope context value recorded for district-wide draws.
const DistrictContext = "全體"

// Scopes lists every scope in draw-stage order (club first, district last).
var Scopes = []Scope{ScopeClub, ScopeZone, ScopeDistrict}

// ParseScope accepts the canonical names as well as the legacy layer letters
// A (district), B (zone) and C (club).
func ParseScope(s string) (Scope, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DISTRICT", "A":
		return ScopeDistrict, nil
	case "ZONE", "B":
		return ScopeZone, nil
	case "CLUB", "C":
		return ScopeClub, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Valid reports whether s is one of the three known scopes.
func (s Scope) Valid() bool {
	return s == ScopeDistrict || s == ScopeZone || s == ScopeClub
}

// Filtered reports whether the scope needs a concrete zone or club target.
func (s Scope) Filtered() bool {
	return s == ScopeZone || s == ScopeClub
}

// Participant represents a person entering the lottery.
// Membership in club and zone is fixed for the lifetime of a roster snapshot.
// Required fields are checked per row by the engine's roster validation.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Club  string `json:"club"`
	Zone  string `json:"zone"`
	Title string `json:"title,omitempty"`
}

// Prize is a prize definition together with the scope context it belongs to.
// Context is the zone name for ZONE prizes, the club name for CLUB prizes and
// empty for DISTRICT prizes.
type Prize struct {
	ID           string `json:"id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Item         string `json:"itemDescription,omitempty"`
	TotalSlots   int    `json:"totalSlots" binding:"min=0"`
	Sponsor      string `json:"sponsor,omitempty"`
	SponsorTitle string `json:"sponsorTitle,omitempty"`
	Scope        Scope  `json:"scope"`
	Context      string `json:"context,omitempty"`
}

// WinnerRecord binds a participant to a prize within a scope. The ledger of
// winner records is the only source of truth for who has won what, where.
type WinnerRecord struct {
	ID              string `json:"id"`
	ParticipantID   string `json:"participantId"`
	ParticipantName string `json:"participantName"`
	ParticipantClub string `json:"participantClub"`
	ParticipantZone string `json:"participantZone"`
	Scope           Scope  `json:"scope"`
	PrizeID         string `json:"prizeId"`
	PrizeName       string `json:"prizeName"`
	PrizeItem       string `json:"prizeItem,omitempty"`
	Context         string `json:"context"`
	Timestamp       int64  `json:"timestamp"` // unix milliseconds
}

// DrawMode selects how many winners one draw produces.
type DrawMode string

const (
	DrawOne    DrawMode = "ONE"    // a single winner
	DrawAll    DrawMode = "ALL"    // every remaining slot
	DrawCustom DrawMode = "CUSTOM" // a caller-chosen batch size
)
