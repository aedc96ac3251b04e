package engine

import (
	"fmt"
	"sort"

	"districtlottery/internal/models"
)

// Ledger is the append-mostly log of winner records. Eligibility and remaining
// slots are always derived from it on read; nothing is cached across mutations.
// It is not safe for concurrent use.
type Ledger struct {
	records []models.WinnerRecord
}

// NewLedger returns a ledger holding a copy of records, which must satisfy the
// same invariants Append enforces.
func NewLedger(records ...models.WinnerRecord) (*Ledger, error) {
	l := &Ledger{}
	if err := l.Append(records...); err != nil {
		return nil, err
	}
	return l, nil
}

// Records returns a snapshot of the ledger in append order.
func (l *Ledger) Records() []models.WinnerRecord {
	return append([]models.WinnerRecord(nil), l.records...)
}

// Len is the number of active records.
func (l *Ledger) Len() int { return len(l.records) }

// Append commits a batch. Either every record is appended or none is: the
// batch is rejected if any record id already exists, or if a participant
// would hold two active wins in the same scope.
func (l *Ledger) Append(batch ...models.WinnerRecord) error {
	ids := make(map[string]struct{}, len(l.records)+len(batch))
	wins := make(map[winKey]struct{}, len(l.records)+len(batch))
	for _, r := range l.records {
		ids[r.ID] = struct{}{}
		wins[winKey{r.Scope, r.ParticipantID}] = struct{}{}
	}
	for _, r := range batch {
		if _, dup := ids[r.ID]; dup || r.ID == "" {
			return fmt.Errorf("%w: %q", ErrDuplicateRecord, r.ID)
		}
		k := winKey{r.Scope, r.ParticipantID}
		if _, won := wins[k]; won {
			return fmt.Errorf("%w: %s (%s)", ErrAlreadyWon, r.ParticipantID, r.Scope)
		}
		ids[r.ID] = struct{}{}
		wins[k] = struct{}{}
	}
	l.records = append(l.records, batch...)
	return nil
}

// Delete removes one record, returning its slot and making its participant
// eligible again in that scope.
func (l *Ledger) Delete(id string) (models.WinnerRecord, error) {
	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i:i], l.records[i+1:]...)
			return r, nil
		}
	}
	return models.WinnerRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// ClearScope removes every record of scope and reports how many were removed.
func (l *Ledger) ClearScope(scope models.Scope) int {
	kept := l.records[:0:0]
	for _, r := range l.records {
		if r.Scope != scope {
			kept = append(kept, r)
		}
	}
	removed := len(l.records) - len(kept)
	l.records = kept
	return removed
}

// Clear removes every record.
func (l *Ledger) Clear() int {
	n := len(l.records)
	l.records = nil
	return n
}

// Newest returns the records of scope (all scopes when scope is empty),
// newest first.
func (l *Ledger) Newest(scope models.Scope) []models.WinnerRecord {
	var out []models.WinnerRecord
	for _, r := range l.records {
		if scope == "" || r.Scope == scope {
			out = append(out, r)
		}
	}
	// Records of one batch share a timestamp; reversing append order first keeps
	// the later batch ahead after the stable sort.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

type winKey struct {
	scope         models.Scope
	participantID string
}
