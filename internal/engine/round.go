package engine

import (
	"fmt"
	"strings"
	"time"

	"districtlottery/internal/models"

	"github.com/google/uuid"
)

// State is the draw lifecycle state of a Round.
type State string

const (
	StateIdle     State = "IDLE"
	StateArmed    State = "ARMED"    // prize and count chosen, candidates and slots left
	StateDrawing  State = "DRAWING"  // selection window open, no other change allowed
	StateRevealed State = "REVEALED" // winners committed to the ledger
)

// Engine bundles the injectable collaborators of a draw: randomness, clock,
// record id generator and slot matching rules.
type Engine struct {
	Rand  Source
	Now   func() time.Time
	NewID func() string
	Slots SlotCalculator
}

// New returns an Engine drawing from src with wall-clock timestamps and UUID
// record ids.
func New(src Source, slots SlotCalculator) *Engine {
	return &Engine{
		Rand:  src,
		Now:   time.Now,
		NewID: uuid.NewString,
		Slots: slots,
	}
}

// Inputs is the state a round reads at every transition. Nothing is cached
// between calls, so ledger deletions are visible on the next read.
type Inputs struct {
	Roster  []models.Participant
	Catalog *Catalog
	Ledger  *Ledger
}

// Plan is the derived view of a round at one moment.
type Plan struct {
	State        State                 `json:"state"`
	Scope        models.Scope          `json:"scope"`
	Filter       string                `json:"filter,omitempty"`
	Context      string                `json:"context"`
	Prize        *models.Prize         `json:"prize,omitempty"`
	Mode         models.DrawMode       `json:"mode"`
	BatchSize    int                   `json:"batchSize"`
	Eligible     int                   `json:"eligible"`
	Remaining    int                   `json:"remaining"`
	Requested    int                   `json:"requested"`
	DrawCount    int                   `json:"drawCount"`
	NeedsConfirm bool                  `json:"needsConfirm"`
	Block        error                 `json:"-"`
	Winners      []models.WinnerRecord `json:"winners,omitempty"`
}

// Round drives one scope/prize selection through IDLE, ARMED, DRAWING and
// REVEALED. It is not safe for concurrent use.
type Round struct {
	engine   *Engine
	scope    models.Scope
	filter   string
	prizeID  string
	mode     models.DrawMode
	batch    int
	state    State
	pending  int
	revealed []models.WinnerRecord
}

// NewRound starts an idle district round in ONE mode.
func (e *Engine) NewRound() *Round {
	return &Round{
		engine: e,
		scope:  models.ScopeDistrict,
		mode:   models.DrawOne,
		batch:  1,
		state:  StateIdle,
	}
}

// Select switches scope and filter. A change resets the prize selection and
// any revealed result.
func (r *Round) Select(scope models.Scope, filter string) error {
	if r.state == StateDrawing {
		return ErrAlreadyDrawing
	}
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	filter = strings.TrimSpace(filter)
	if scope == models.ScopeDistrict {
		filter = ""
	}
	if scope == r.scope && filter == r.filter {
		return nil
	}
	r.scope, r.filter = scope, filter
	r.reset("")
	return nil
}

// SelectPrize chooses the prize to draw. The prize must belong to the round's
// scope context. An empty id clears the selection.
func (r *Round) SelectPrize(catalog *Catalog, id string) error {
	if r.state == StateDrawing {
		return ErrAlreadyDrawing
	}
	if id != "" {
		if _, err := r.lookupPrize(catalog, id); err != nil {
			return err
		}
	}
	if id != r.prizeID {
		r.reset(id)
	}
	return nil
}

// SetMode chooses how many winners the next draw asks for.
func (r *Round) SetMode(mode models.DrawMode, batch int) error {
	if r.state == StateDrawing {
		return ErrAlreadyDrawing
	}
	switch mode {
	case models.DrawOne, models.DrawAll:
	case models.DrawCustom:
		if batch < 1 {
			return fmt.Errorf("%w: batch size must be at least 1", ErrInvalidMode)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	r.mode = mode
	if batch >= 1 {
		r.batch = batch
	}
	return nil
}

// Selection is a change to what a round draws. Nil fields keep their value.
type Selection struct {
	Scope     *models.Scope
	Filter    *string
	PrizeID   *string
	Mode      *models.DrawMode
	BatchSize *int
}

// Apply changes scope and filter, then prize, then mode. Every step is checked
// against a copy of the round; on error the round is left untouched.
func (r *Round) Apply(catalog *Catalog, sel Selection) error {
	next := *r
	if sel.Scope != nil || sel.Filter != nil {
		scope, filter := next.scope, next.filter
		if sel.Scope != nil {
			scope = *sel.Scope
		}
		if sel.Filter != nil {
			filter = *sel.Filter
		}
		if err := next.Select(scope, filter); err != nil {
			return err
		}
	}
	if sel.PrizeID != nil {
		if err := next.SelectPrize(catalog, *sel.PrizeID); err != nil {
			return err
		}
	}
	if sel.Mode != nil || sel.BatchSize != nil {
		mode, batch := next.mode, next.batch
		if sel.Mode != nil {
			mode = *sel.Mode
		}
		if sel.BatchSize != nil {
			batch = *sel.BatchSize
		}
		if err := next.SetMode(mode, batch); err != nil {
			return err
		}
	}
	*r = next
	return nil
}

// Plan derives the current view of the round from in.
func (r *Round) Plan(in Inputs) Plan {
	p := Plan{
		Scope:     r.scope,
		Filter:    r.filter,
		Context:   ContextValue(r.scope, r.filter),
		Mode:      r.mode,
		BatchSize: r.batch,
	}
	records := in.Ledger.Records()
	p.Winners = r.activeRevealed(records)
	p.Eligible = len(Eligible(in.Roster, records, r.scope, r.filter))

	switch {
	case CheckTarget(r.scope, r.filter) != nil:
		p.Block = ErrNoScopeTarget
	case r.prizeID == "":
		p.Block = ErrNoPrizeSelected
	}

	if p.Block == nil {
		prize, err := r.lookupPrize(in.Catalog, r.prizeID)
		if err != nil {
			p.Block = err
		} else {
			p.Prize = &prize
			p.Remaining = r.engine.Slots.Remaining(prize, records, r.scope, p.Context)
			p.Requested = RequestedCount(r.mode, r.batch, p.Remaining)
			p.DrawCount = min(p.Requested, p.Eligible)
			switch {
			case p.Eligible == 0:
				p.Block = ErrNoEligibleCandidates
			case p.Remaining == 0:
				p.Block = fmt.Errorf("%w：「%s」", ErrPrizeExhausted, prize.Name)
			}
			p.NeedsConfirm = p.Block == nil && p.Requested > p.Eligible
		}
	}

	switch {
	case r.state == StateDrawing:
		p.State = StateDrawing
		p.DrawCount = min(r.pending, p.Remaining, p.Eligible)
		p.NeedsConfirm = false
	case r.state == StateRevealed:
		p.State = StateRevealed
	case p.Block == nil:
		p.State = StateArmed
	default:
		p.State = StateIdle
	}
	return p
}

// Start opens the drawing window. It fails with the first blocking condition,
// or with *InsufficientCandidatesError when more winners are requested than
// are eligible and confirm is false. With confirm the request is downgraded to
// the eligible count. A revealed round may start again for the same prize.
func (r *Round) Start(in Inputs, confirm bool) (Plan, error) {
	if r.state == StateDrawing {
		return r.Plan(in), ErrAlreadyDrawing
	}
	p := r.Plan(in)
	if p.Block != nil {
		return p, p.Block
	}
	count := p.Requested
	if p.Requested > p.Eligible {
		if !confirm {
			return p, &InsufficientCandidatesError{Eligible: p.Eligible, Requested: p.Requested}
		}
		count = p.Eligible
	}
	r.state = StateDrawing
	r.pending = count
	r.revealed = nil
	return r.Plan(in), nil
}

// Stop closes the drawing window: it runs the draw against the current inputs
// and appends the winners to the ledger as one batch. It commits at most once
// per Start; a second Stop returns ErrNotDrawing.
func (r *Round) Stop(in Inputs) ([]models.WinnerRecord, error) {
	if r.state != StateDrawing {
		return nil, ErrNotDrawing
	}
	// The window is closed whatever the outcome below.
	r.state = StateIdle
	pending := r.pending
	r.pending = 0

	prize, err := r.lookupPrize(in.Catalog, r.prizeID)
	if err != nil {
		return nil, err
	}
	context := ContextValue(r.scope, r.filter)
	eligible := Eligible(in.Roster, in.Ledger.Records(), r.scope, r.filter)
	remaining := r.engine.Slots.Remaining(prize, in.Ledger.Records(), r.scope, context)
	switch {
	case len(eligible) == 0:
		return nil, ErrNoEligibleCandidates
	case remaining == 0:
		return nil, fmt.Errorf("%w：「%s」", ErrPrizeExhausted, prize.Name)
	}

	winners := Draw(r.engine.Rand, eligible, min(pending, remaining))
	now := r.engine.Now().UnixMilli()
	records := make([]models.WinnerRecord, 0, len(winners))
	for _, w := range winners {
		records = append(records, models.WinnerRecord{
			ID:              r.engine.NewID(),
			ParticipantID:   w.ID,
			ParticipantName: w.Name,
			ParticipantClub: w.Club,
			ParticipantZone: w.Zone,
			Scope:           r.scope,
			PrizeID:         prize.ID,
			PrizeName:       prize.Name,
			PrizeItem:       prize.Item,
			Context:         context,
			Timestamp:       now,
		})
	}
	if err := in.Ledger.Append(records...); err != nil {
		return nil, fmt.Errorf("commit draw: %w", err)
	}
	r.state = StateRevealed
	r.revealed = records
	return append([]models.WinnerRecord(nil), records...), nil
}

// Abort closes the drawing window without touching the ledger.
func (r *Round) Abort() error {
	if r.state != StateDrawing {
		return ErrNotDrawing
	}
	r.state = StateIdle
	r.pending = 0
	return nil
}

// State reports the stored lifecycle state. ARMED is only derived by Plan.
func (r *Round) State() State { return r.state }

// activeRevealed drops revealed winners whose records were since deleted.
func (r *Round) activeRevealed(records []models.WinnerRecord) []models.WinnerRecord {
	if len(r.revealed) == 0 {
		return nil
	}
	active := make(map[string]struct{}, len(records))
	for _, rec := range records {
		active[rec.ID] = struct{}{}
	}
	var out []models.WinnerRecord
	for _, w := range r.revealed {
		if _, ok := active[w.ID]; ok {
			out = append(out, w)
		}
	}
	return out
}

func (r *Round) reset(prizeID string) {
	r.prizeID = prizeID
	r.state = StateIdle
	r.pending = 0
	r.revealed = nil
}

func (r *Round) lookupPrize(catalog *Catalog, id string) (models.Prize, error) {
	p, err := catalog.Find(id)
	if err != nil {
		return models.Prize{}, err
	}
	if p.Scope != r.scope || (r.scope.Filtered() && p.Context != r.filter) {
		return models.Prize{}, fmt.Errorf("%w: %s", ErrPrizeNotFound, id)
	}
	return p, nil
}
