package engine

import (
	"fmt"
	"strings"

	"districtlottery/internal/models"
)

// Catalog holds the prize definitions of every scope context. It is not safe
// for concurrent use; the owning session serializes access.
type Catalog struct {
	prizes []models.Prize
}

// NewCatalog builds a catalog from prizes after validating them.
func NewCatalog(prizes []models.Prize) (*Catalog, error) {
	c := &Catalog{}
	if err := c.ReplaceAll(prizes); err != nil {
		return nil, err
	}
	return c, nil
}

// All returns a copy of every prize in catalog order.
func (c *Catalog) All() []models.Prize {
	return append([]models.Prize(nil), c.prizes...)
}

// ForContext returns the prizes of one scope context. For DISTRICT the context
// is ignored.
func (c *Catalog) ForContext(scope models.Scope, context string) []models.Prize {
	context = strings.TrimSpace(context)
	var out []models.Prize
	for _, p := range c.prizes {
		if p.Scope != scope {
			continue
		}
		if scope.Filtered() && p.Context != context {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Find returns the prize with the given id.
func (c *Catalog) Find(id string) (models.Prize, error) {
	for _, p := range c.prizes {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Prize{}, fmt.Errorf("%w: %s", ErrPrizeNotFound, id)
}

// Replace swaps every prize of one scope context for prizes. The scope and
// context of each incoming prize are overwritten with the target.
func (c *Catalog) Replace(scope models.Scope, context string, prizes []models.Prize) error {
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	context = strings.TrimSpace(context)
	if scope.Filtered() && context == "" {
		return ErrNoScopeTarget
	}
	if scope == models.ScopeDistrict {
		context = ""
	}

	kept := make([]models.Prize, 0, len(c.prizes)+len(prizes))
	for _, p := range c.prizes {
		if p.Scope == scope && (!scope.Filtered() || p.Context == context) {
			continue
		}
		kept = append(kept, p)
	}
	for _, p := range prizes {
		p.Scope = scope
		p.Context = context
		kept = append(kept, p)
	}
	if err := validatePrizes(kept); err != nil {
		return err
	}
	c.prizes = kept
	return nil
}

// ReplaceAll swaps the whole catalog.
func (c *Catalog) ReplaceAll(prizes []models.Prize) error {
	next := make([]models.Prize, 0, len(prizes))
	for _, p := range prizes {
		p.Context = strings.TrimSpace(p.Context)
		if p.Scope == models.ScopeDistrict {
			p.Context = ""
		}
		next = append(next, p)
	}
	if err := validatePrizes(next); err != nil {
		return err
	}
	c.prizes = next
	return nil
}

// AddSlots increases a prize's total slots by n ("bonus"). The new total is
// visible to the very next remaining-slot computation.
func (c *Catalog) AddSlots(id string, n int) (models.Prize, error) {
	if n < 1 {
		return models.Prize{}, fmt.Errorf("%w: bonus must be at least 1", ErrInvalidPrize)
	}
	for i := range c.prizes {
		if c.prizes[i].ID == id {
			c.prizes[i].TotalSlots += n
			return c.prizes[i], nil
		}
	}
	return models.Prize{}, fmt.Errorf("%w: %s", ErrPrizeNotFound, id)
}

// ScopeSummary is the total slot count of one scope.
type ScopeSummary struct {
	Scope  models.Scope `json:"scope"`
	Prizes int          `json:"prizes"`
	Slots  int          `json:"slots"`
}

// Summary reports prize and slot totals per scope, in draw-stage order.
type Summary struct {
	Scopes []ScopeSummary `json:"scopes"`
	Total  int            `json:"total"`
}

// Summary totals the catalog.
func (c *Catalog) Summary() Summary {
	var s Summary
	for _, scope := range models.Scopes {
		ss := ScopeSummary{Scope: scope}
		for _, p := range c.prizes {
			if p.Scope == scope {
				ss.Prizes++
				ss.Slots += p.TotalSlots
			}
		}
		s.Scopes = append(s.Scopes, ss)
		s.Total += ss.Slots
	}
	return s
}

func validatePrizes(prizes []models.Prize) error {
	seen := make(map[string]struct{}, len(prizes))
	for _, p := range prizes {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: prize id is required", ErrInvalidPrize)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate prize id %s", ErrInvalidPrize, p.ID)
		}
		seen[p.ID] = struct{}{}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: prize %s has no name", ErrInvalidPrize, p.ID)
		}
		if p.TotalSlots < 0 {
			return fmt.Errorf("%w: prize %s has negative slots", ErrInvalidPrize, p.ID)
		}
		if !p.Scope.Valid() {
			return fmt.Errorf("%w: prize %s: %s", ErrUnknownScope, p.ID, p.Scope)
		}
		if p.Scope.Filtered() && strings.TrimSpace(p.Context) == "" {
			return fmt.Errorf("%w: prize %s has no %s context", ErrInvalidPrize, p.ID, strings.ToLower(string(p.Scope)))
		}
	}
	return nil
}
