package engine

import (
	"fmt"
	"sort"
	"strings"

	"districtlottery/internal/models"
)

// RowError describes one invalid roster entry. Row is 1-based.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

// RosterError collects every invalid entry found by ValidateRoster.
type RosterError struct {
	Rows []RowError
}

func (e *RosterError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, fmt.Sprintf("第 %d 筆 %s：%s", r.Row, r.Column, r.Message))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRoster, strings.Join(parts, "; "))
}

func (e *RosterError) Unwrap() error { return ErrInvalidRoster }

// ValidateRoster checks that every participant has an id, name, club and zone
// and that ids are unique.
func ValidateRoster(roster []models.Participant) error {
	var rows []RowError
	seen := make(map[string]int, len(roster))
	for i, p := range roster {
		row := i + 1
		switch {
		case strings.TrimSpace(p.ID) == "":
			rows = append(rows, RowError{Row: row, Column: "編號", Message: "編號為必填"})
			continue
		case strings.TrimSpace(p.Name) == "":
			rows = append(rows, RowError{Row: row, Column: "姓名", Message: "姓名為必填"})
			continue
		case strings.TrimSpace(p.Club) == "":
			rows = append(rows, RowError{Row: row, Column: "社團", Message: "社團為必填"})
			continue
		case strings.TrimSpace(p.Zone) == "":
			rows = append(rows, RowError{Row: row, Column: "分區", Message: "分區為必填"})
			continue
		}
		if first, dup := seen[p.ID]; dup {
			rows = append(rows, RowError{Row: row, Column: "編號", Message: fmt.Sprintf("編號 %s 與第 %d 筆重複", p.ID, first)})
			continue
		}
		seen[p.ID] = row
	}
	if len(rows) > 0 {
		return &RosterError{Rows: rows}
	}
	return nil
}

// Zones returns the distinct zones of the roster, sorted.
func Zones(roster []models.Participant) []string {
	set := make(map[string]struct{})
	for _, p := range roster {
		set[p.Zone] = struct{}{}
	}
	return sortedKeys(set)
}

// Clubs returns the distinct clubs of the roster, sorted.
func Clubs(roster []models.Participant) []string {
	set := make(map[string]struct{})
	for _, p := range roster {
		set[p.Club] = struct{}{}
	}
	return sortedKeys(set)
}

// ClubsByZone returns the distinct clubs belonging to zone, sorted.
func ClubsByZone(roster []models.Participant, zone string) []string {
	set := make(map[string]struct{})
	for _, p := range roster {
		if p.Zone == zone {
			set[p.Club] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// ZoneClubs maps every zone to its sorted clubs.
func ZoneClubs(roster []models.Participant) map[string][]string {
	sets := make(map[string]map[string]struct{})
	for _, p := range roster {
		if sets[p.Zone] == nil {
			sets[p.Zone] = make(map[string]struct{})
		}
		sets[p.Zone][p.Club] = struct{}{}
	}
	out := make(map[string][]string, len(sets))
	for zone, clubs := range sets {
		out[zone] = sortedKeys(clubs)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
