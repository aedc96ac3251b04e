package engine

import "districtlottery/internal/models"

// SlotCalculator derives remaining slots of a prize from the ledger.
//
// Records match a prize by prize id. With LegacyNameMatch set, records that
// carry no prize id also match when scope, prize name and context string are
// all equal; this only exists for ledgers written before records had prize
// ids, and it conflates two same-named prizes sharing a context.
type SlotCalculator struct {
	LegacyNameMatch bool
}

// Matches reports whether record r counts against prize p drawn at scope
// within context.
func (c SlotCalculator) Matches(r models.WinnerRecord, p models.Prize, scope models.Scope, context string) bool {
	if r.PrizeID != "" {
		return r.PrizeID == p.ID
	}
	return c.LegacyNameMatch && r.Scope == scope && r.PrizeName == p.Name && r.Context == context
}

// Awarded counts the ledger records matching the prize.
func (c SlotCalculator) Awarded(p models.Prize, ledger []models.WinnerRecord, scope models.Scope, context string) int {
	n := 0
	for _, r := range ledger {
		if c.Matches(r, p, scope, context) {
			n++
		}
	}
	return n
}

// Remaining returns max(0, TotalSlots - matching records).
func (c SlotCalculator) Remaining(p models.Prize, ledger []models.WinnerRecord, scope models.Scope, context string) int {
	left := p.TotalSlots - c.Awarded(p, ledger, scope, context)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingSlots computes remaining slots matching by prize id only.
func RemainingSlots(p models.Prize, ledger []models.WinnerRecord, scope models.Scope, context string) int {
	return SlotCalculator{}.Remaining(p, ledger, scope, context)
}

// RequestedCount turns a draw mode into the number of winners asked for,
// bounded by remaining slots. CUSTOM batches below 1 are treated as 1.
func RequestedCount(mode models.DrawMode, batch, remaining int) int {
	if remaining <= 0 {
		return 0
	}
	switch mode {
	case models.DrawAll:
		return remaining
	case models.DrawCustom:
		if batch < 1 {
			batch = 1
		}
		return min(batch, remaining)
	default:
		return 1
	}
}
