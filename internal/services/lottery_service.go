package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"districtlottery/internal/engine"
	"districtlottery/internal/models"
	"districtlottery/internal/random"
	"districtlottery/internal/seed"

	"github.com/google/logger"
)

// Options configures how new sessions are built.
type Options struct {
	// SeedDefaults starts new sessions with the default roster and prizes.
	SeedDefaults bool
	// Slots selects the prize/record matching rules.
	Slots engine.SlotCalculator
	// RandomSeed fixes every session's draw sequence when non-zero.
	RandomSeed uint64
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
	// NewID overrides winner record ids; nil means UUIDs.
	NewID func() string
}

// LotterySession holds the data for a single tenant. mu serializes every
// read-check-commit sequence so two draws can never count the same slots.
type LotterySession struct {
	mu           sync.Mutex
	Participants []models.Participant
	Catalog      *engine.Catalog
	Ledger       *engine.Ledger
	Round        *engine.Round
	LastActivity time.Time
}

func (s *LotterySession) inputs() engine.Inputs {
	return engine.Inputs{Roster: s.Participants, Catalog: s.Catalog, Ledger: s.Ledger}
}

// LotteryService manages multiple lottery sessions.
type LotteryService struct {
	mu       sync.RWMutex
	sessions map[string]*LotterySession // Key: tenantID
	opts     Options
}

// NewLotteryService creates and initializes a new LotteryService.
func NewLotteryService(opts Options) *LotteryService {
	return &LotteryService{
		sessions: make(map[string]*LotterySession),
		opts:     opts,
	}
}

// session returns the locked session for a tenant, creating one if it
// doesn't exist. Callers must unlock it.
func (s *LotteryService) session(tenantID string) (*LotterySession, error) {
	s.mu.Lock()
	session, exists := s.sessions[tenantID]
	if !exists {
		var err error
		session, err = s.newSession()
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.sessions[tenantID] = session
		logger.Infof("Created session for tenant: %s", tenantID)
	}
	s.mu.Unlock()

	session.mu.Lock()
	session.LastActivity = time.Now()
	return session, nil
}

func (s *LotteryService) newSession() (*LotterySession, error) {
	rng, err := random.New(s.opts.RandomSeed)
	if err != nil {
		return nil, err
	}
	e := engine.New(rng, s.opts.Slots)
	if s.opts.Now != nil {
		e.Now = s.opts.Now
	}
	if s.opts.NewID != nil {
		e.NewID = s.opts.NewID
	}

	var roster []models.Participant
	var prizes []models.Prize
	if s.opts.SeedDefaults {
		roster = seed.Roster()
		prizes = seed.Prizes()
	}
	catalog, err := engine.NewCatalog(prizes)
	if err != nil {
		return nil, fmt.Errorf("default prizes: %w", err)
	}
	ledger, err := engine.NewLedger()
	if err != nil {
		return nil, fmt.Errorf("new ledger: %w", err)
	}
	return &LotterySession{
		Participants: roster,
		Catalog:      catalog,
		Ledger:       ledger,
		Round:        e.NewRound(),
	}, nil
}

// GetParticipants returns the roster for a specific tenant.
func (s *LotteryService) GetParticipants(tenantID string) ([]models.Participant, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return append([]models.Participant(nil), session.Participants...), nil
}

// ReplaceParticipants swaps the whole roster. Existing winner records would
// point at ids of the old roster, so the swap is refused while the ledger is
// non-empty unless clearWinners is set, in which case the ledger is cleared
// in the same step.
func (s *LotteryService) ReplaceParticipants(tenantID string, roster []models.Participant, clearWinners bool) error {
	roster = trimRoster(roster)
	if err := engine.ValidateRoster(roster); err != nil {
		return err
	}
	session, err := s.session(tenantID)
	if err != nil {
		return err
	}
	defer session.mu.Unlock()

	if session.Round.State() == engine.StateDrawing {
		return engine.ErrAlreadyDrawing
	}
	if session.Ledger.Len() > 0 {
		if !clearWinners {
			return engine.ErrLedgerNotEmpty
		}
		n := session.Ledger.Clear()
		logger.Infof("Cleared %d winner records for tenant %s before roster replacement", n, tenantID)
	}
	session.Participants = roster
	logger.Infof("Replaced roster for tenant %s: %d participants", tenantID, len(roster))
	return nil
}

func trimRoster(roster []models.Participant) []models.Participant {
	out := make([]models.Participant, len(roster))
	for i, p := range roster {
		out[i] = models.Participant{
			ID:    strings.TrimSpace(p.ID),
			Name:  strings.TrimSpace(p.Name),
			Club:  strings.TrimSpace(p.Club),
			Zone:  strings.TrimSpace(p.Zone),
			Title: strings.TrimSpace(p.Title),
		}
	}
	return out
}

// Zones returns the distinct zones of the tenant's roster.
func (s *LotteryService) Zones(tenantID string) ([]string, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return engine.Zones(session.Participants), nil
}

// ZoneClubs maps every zone of the tenant's roster to its clubs.
func (s *LotteryService) ZoneClubs(tenantID string) (map[string][]string, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return engine.ZoneClubs(session.Participants), nil
}

// Clubs returns the clubs of the tenant's roster, limited to zone when set.
func (s *LotteryService) Clubs(tenantID, zone string) ([]string, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	if zone = strings.TrimSpace(zone); zone != "" {
		return engine.ClubsByZone(session.Participants, zone), nil
	}
	return engine.Clubs(session.Participants), nil
}

// PrizeState is a prize with its derived remaining-slot count.
type PrizeState struct {
	models.Prize
	Remaining int `json:"remaining"`
}

// GetPrizes returns the prizes of one scope context with remaining slots.
func (s *LotteryService) GetPrizes(tenantID string, scope models.Scope, context string) ([]PrizeState, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownScope, scope)
	}
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return s.prizeStates(session, scope, context), nil
}

func (s *LotteryService) prizeStates(session *LotterySession, scope models.Scope, context string) []PrizeState {
	records := session.Ledger.Records()
	contextValue := engine.ContextValue(scope, context)
	prizes := session.Catalog.ForContext(scope, context)
	out := make([]PrizeState, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, PrizeState{
			Prize:     p,
			Remaining: s.opts.Slots.Remaining(p, records, scope, contextValue),
		})
	}
	return out
}

// AllPrizes returns every prize of the tenant's catalog with remaining slots.
func (s *LotteryService) AllPrizes(tenantID string) ([]PrizeState, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	records := session.Ledger.Records()
	prizes := session.Catalog.All()
	out := make([]PrizeState, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, PrizeState{
			Prize:     p,
			Remaining: s.opts.Slots.Remaining(p, records, p.Scope, engine.ContextValue(p.Scope, p.Context)),
		})
	}
	return out, nil
}

// ReplacePrizes swaps the prizes of one scope context.
func (s *LotteryService) ReplacePrizes(tenantID string, scope models.Scope, context string, prizes []models.Prize) ([]PrizeState, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if session.Round.State() == engine.StateDrawing {
		return nil, engine.ErrAlreadyDrawing
	}
	if err := session.Catalog.Replace(scope, context, prizes); err != nil {
		return nil, err
	}
	logger.Infof("Replaced %s prizes for tenant %s (context %q): %d prizes", scope, tenantID, context, len(prizes))
	return s.prizeStates(session, scope, context), nil
}

// AddBonus increases a prize's total slots by one.
func (s *LotteryService) AddBonus(tenantID, prizeID string) (models.Prize, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return models.Prize{}, err
	}
	defer session.mu.Unlock()

	prize, err := session.Catalog.AddSlots(prizeID, 1)
	if err != nil {
		return models.Prize{}, err
	}
	logger.Infof("Bonus slot for tenant %s: prize %s now has %d slots", tenantID, prize.ID, prize.TotalSlots)
	return prize, nil
}

// PrizeSummary totals the tenant's catalog per scope.
func (s *LotteryService) PrizeSummary(tenantID string) (engine.Summary, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return engine.Summary{}, err
	}
	defer session.mu.Unlock()
	return session.Catalog.Summary(), nil
}

// Eligibility is the candidate set of one scope/filter.
type Eligibility struct {
	// TargetSelected is false when a ZONE or CLUB scope has no filter; the
	// candidate list is then empty without meaning nobody is eligible.
	TargetSelected bool                 `json:"targetSelected"`
	Participants   []models.Participant `json:"participants"`
}

// GetEligibleParticipants returns the participants that may be drawn at scope.
func (s *LotteryService) GetEligibleParticipants(tenantID string, scope models.Scope, filter string) (Eligibility, error) {
	if !scope.Valid() {
		return Eligibility{}, fmt.Errorf("%w: %s", engine.ErrUnknownScope, scope)
	}
	session, err := s.session(tenantID)
	if err != nil {
		return Eligibility{}, err
	}
	defer session.mu.Unlock()
	return Eligibility{
		TargetSelected: engine.CheckTarget(scope, filter) == nil,
		Participants:   engine.Eligible(session.Participants, session.Ledger.Records(), scope, filter),
	}, nil
}

// RoundSelection changes what the tenant's round will draw. Nil fields are
// left unchanged.
type RoundSelection = engine.Selection

// GetRound returns the current plan of the tenant's round.
func (s *LotteryService) GetRound(tenantID string) (engine.Plan, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return engine.Plan{}, err
	}
	defer session.mu.Unlock()
	return session.Round.Plan(session.inputs()), nil
}

// SelectRound applies sel to the tenant's round. Scope and filter are applied
// before the prize so a single call can switch context and pick its prize. A
// rejected selection leaves the round as it was.
func (s *LotteryService) SelectRound(tenantID string, sel RoundSelection) (engine.Plan, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return engine.Plan{}, err
	}
	defer session.mu.Unlock()

	err = session.Round.Apply(session.Catalog, sel)
	return session.Round.Plan(session.inputs()), err
}

// StartDraw opens the drawing window of the tenant's round.
func (s *LotteryService) StartDraw(tenantID string, confirm bool) (engine.Plan, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return engine.Plan{}, err
	}
	defer session.mu.Unlock()
	return session.Round.Start(session.inputs(), confirm)
}

// StopDraw reveals and commits the winners of the tenant's open draw.
func (s *LotteryService) StopDraw(tenantID string) ([]models.WinnerRecord, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	records, err := session.Round.Stop(session.inputs())
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		logger.Infof("Committed draw for tenant %s: scope %s, context %q, prize %s, %d winners",
			tenantID, records[0].Scope, records[0].Context, records[0].PrizeID, len(records))
	}
	return records, nil
}

// AbortDraw closes the tenant's open draw without recording anything.
func (s *LotteryService) AbortDraw(tenantID string) error {
	session, err := s.session(tenantID)
	if err != nil {
		return err
	}
	defer session.mu.Unlock()
	return session.Round.Abort()
}

// GetWinners returns the tenant's winner records newest first, limited to
// scope when it is non-empty.
func (s *LotteryService) GetWinners(tenantID string, scope models.Scope) ([]models.WinnerRecord, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return session.Ledger.Newest(scope), nil
}

// DeleteWinner removes one winner record, returning its slot.
func (s *LotteryService) DeleteWinner(tenantID, recordID string) (models.WinnerRecord, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return models.WinnerRecord{}, err
	}
	defer session.mu.Unlock()

	record, err := session.Ledger.Delete(recordID)
	if err != nil {
		return models.WinnerRecord{}, err
	}
	logger.Infof("Deleted winner record %s for tenant %s (participant %s, prize %s)",
		record.ID, tenantID, record.ParticipantID, record.PrizeID)
	return record, nil
}

// ClearWinners removes every record of scope, or every record when scope is
// empty, and reports how many were removed.
func (s *LotteryService) ClearWinners(tenantID string, scope models.Scope) (int, error) {
	session, err := s.session(tenantID)
	if err != nil {
		return 0, err
	}
	defer session.mu.Unlock()

	var n int
	if scope == "" {
		n = session.Ledger.Clear()
	} else {
		n = session.Ledger.ClearScope(scope)
	}
	logger.Infof("Cleared %d winner records for tenant %s (scope %q)", n, tenantID, scope)
	return n, nil
}

// CleanUpInactiveSessions removes sessions that have been inactive for longer than ttl.
func (s *LotteryService) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tenantID, session := range s.sessions {
		session.mu.Lock()
		idle := time.Since(session.LastActivity)
		session.mu.Unlock()
		if idle > ttl {
			logger.Infof("Removing inactive session for tenant: %s (idle %v)", tenantID, idle.Round(time.Second))
			delete(s.sessions, tenantID)
			removed++
		}
	}
	return removed
}

// ClearSession removes all data associated with a specific tenant.
func (s *LotteryService) ClearSession(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tenantID)
	logger.Infof("Cleared session for tenant: %s", tenantID)
}
