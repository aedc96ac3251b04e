package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"districtlottery/internal/models"
)

func testEngine() *Engine {
	n := 0
	return &Engine{
		Rand: rand.New(rand.NewPCG(1, 2)),
		Now:  func() time.Time { return time.UnixMilli(1700000000000) },
		NewID: func() string {
			n++
			return fmt.Sprintf("w%d", n)
		},
	}
}

func testInputs(t *testing.T, prizes ...models.Prize) Inputs {
	t.Helper()
	catalog, err := NewCatalog(prizes)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	ledger, _ := NewLedger()
	return Inputs{Roster: testRoster(), Catalog: catalog, Ledger: ledger}
}

var presidentPrize = models.Prize{ID: "club-x", Name: "社長獎", TotalSlots: 1, Scope: models.ScopeClub, Context: "ClubX"}

func TestRoundClubScenario(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()

	if err := r.Select(models.ScopeClub, "ClubX"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := r.SelectPrize(in.Catalog, "club-x"); err != nil {
		t.Fatalf("select prize: %v", err)
	}
	plan := r.Plan(in)
	if plan.State != StateArmed || plan.Eligible != 2 || plan.Remaining != 1 || plan.DrawCount != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	if _, err := r.Start(in, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	winners, err := r.Stop(in)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(winners))
	}
	w := winners[0]
	if w.ParticipantID != "A" && w.ParticipantID != "B" {
		t.Fatalf("winner %s is not from ClubX", w.ParticipantID)
	}
	if w.Scope != models.ScopeClub || w.Context != "ClubX" || w.PrizeID != "club-x" || w.Timestamp != 1700000000000 {
		t.Fatalf("unexpected record: %+v", w)
	}

	plan = r.Plan(in)
	if plan.State != StateRevealed || plan.Remaining != 0 || plan.Eligible != 1 {
		t.Fatalf("unexpected plan after commit: %+v", plan)
	}
	if !errors.Is(plan.Block, ErrPrizeExhausted) {
		t.Fatalf("expected exhausted block, got %v", plan.Block)
	}

	if _, err := in.Ledger.Delete(w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	plan = r.Plan(in)
	if plan.Remaining != 1 || plan.Eligible != 2 || plan.Block != nil {
		t.Fatalf("delete should restore slot and candidate: %+v", plan)
	}
}

func TestRoundBlockingConditions(t *testing.T) {
	zero := models.Prize{ID: "zero", Name: "銀河", Scope: models.ScopeClub, Context: "ClubX"}
	zonePrize := models.Prize{ID: "zone-2", Name: "分區獎", TotalSlots: 1, Scope: models.ScopeZone, Context: "Zone2"}

	t.Run("no target", func(t *testing.T) {
		in := testInputs(t, presidentPrize)
		r := testEngine().NewRound()
		_ = r.Select(models.ScopeClub, "")
		if _, err := r.Start(in, false); !errors.Is(err, ErrNoScopeTarget) {
			t.Fatalf("expected ErrNoScopeTarget, got %v", err)
		}
		if r.Plan(in).State != StateIdle {
			t.Fatal("blocked round must stay idle")
		}
	})

	t.Run("no prize", func(t *testing.T) {
		in := testInputs(t, presidentPrize)
		r := testEngine().NewRound()
		_ = r.Select(models.ScopeClub, "ClubX")
		if _, err := r.Start(in, false); !errors.Is(err, ErrNoPrizeSelected) {
			t.Fatalf("expected ErrNoPrizeSelected, got %v", err)
		}
	})

	t.Run("prize of another context", func(t *testing.T) {
		in := testInputs(t, presidentPrize)
		r := testEngine().NewRound()
		_ = r.Select(models.ScopeClub, "ClubY")
		if err := r.SelectPrize(in.Catalog, "club-x"); !errors.Is(err, ErrPrizeNotFound) {
			t.Fatalf("expected ErrPrizeNotFound, got %v", err)
		}
	})

	t.Run("zero slots", func(t *testing.T) {
		in := testInputs(t, zero)
		r := testEngine().NewRound()
		_ = r.Select(models.ScopeClub, "ClubX")
		_ = r.SelectPrize(in.Catalog, "zero")
		_, err := r.Start(in, false)
		if !errors.Is(err, ErrPrizeExhausted) {
			t.Fatalf("expected ErrPrizeExhausted, got %v", err)
		}
		if in.Ledger.Len() != 0 {
			t.Fatal("blocked start must not touch the ledger")
		}
	})

	t.Run("nobody eligible", func(t *testing.T) {
		in := testInputs(t, zonePrize)
		_ = in.Ledger.Append(win("r1", "D", models.ScopeZone))
		r := testEngine().NewRound()
		_ = r.Select(models.ScopeZone, "Zone2")
		_ = r.SelectPrize(in.Catalog, "zone-2")
		if _, err := r.Start(in, false); !errors.Is(err, ErrNoEligibleCandidates) {
			t.Fatalf("expected ErrNoEligibleCandidates, got %v", err)
		}
	})
}

func TestRoundInsufficientCandidates(t *testing.T) {
	big := models.Prize{ID: "big", Name: "大獎", TotalSlots: 5, Scope: models.ScopeClub, Context: "ClubX"}
	in := testInputs(t, big)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeClub, "ClubX")
	_ = r.SelectPrize(in.Catalog, "big")
	if err := r.SetMode(models.DrawAll, 0); err != nil {
		t.Fatalf("set mode: %v", err)
	}

	plan := r.Plan(in)
	if !plan.NeedsConfirm || plan.Requested != 5 || plan.DrawCount != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	_, err := r.Start(in, false)
	var insufficient *InsufficientCandidatesError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *InsufficientCandidatesError, got %v", err)
	}
	if insufficient.Eligible != 2 || insufficient.Requested != 5 {
		t.Fatalf("unexpected counts: %+v", insufficient)
	}
	if !errors.Is(err, ErrInsufficientCandidates) || Code(err) != "INSUFFICIENT_CANDIDATES" {
		t.Fatalf("error should match ErrInsufficientCandidates, got %v", err)
	}
	if r.State() != StateIdle {
		t.Fatalf("declined round must stay idle, got %s", r.State())
	}

	if _, err := r.Start(in, true); err != nil {
		t.Fatalf("confirmed start: %v", err)
	}
	winners, err := r.Stop(in)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(winners))
	}
	equalIDs(t, []models.Participant{{ID: winners[0].ParticipantID}, {ID: winners[1].ParticipantID}}, "A", "B")
}

func TestRoundCustomBatch(t *testing.T) {
	prize := models.Prize{ID: "dist", Name: "總監獎", TotalSlots: 3, Scope: models.ScopeDistrict}
	in := testInputs(t, prize)
	r := testEngine().NewRound()
	_ = r.SelectPrize(in.Catalog, "dist")

	if err := r.SetMode(models.DrawCustom, 0); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if err := r.SetMode(models.DrawMode("MANY"), 2); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if err := r.SetMode(models.DrawCustom, 2); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if _, err := r.Start(in, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	winners, err := r.Stop(in)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(winners) != 2 || winners[0].Context != models.DistrictContext {
		t.Fatalf("unexpected winners: %+v", winners)
	}
	if got := r.Plan(in); got.Remaining != 1 || got.Requested != 1 {
		t.Fatalf("expected the batch clamped to the last slot: %+v", got)
	}
}

func TestRoundStopCommitsOnce(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeClub, "ClubX")
	_ = r.SelectPrize(in.Catalog, "club-x")

	if _, err := r.Stop(in); !errors.Is(err, ErrNotDrawing) {
		t.Fatalf("stop before start: expected ErrNotDrawing, got %v", err)
	}
	if _, err := r.Start(in, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.Start(in, false); !errors.Is(err, ErrAlreadyDrawing) {
		t.Fatalf("second start: expected ErrAlreadyDrawing, got %v", err)
	}
	if _, err := r.Stop(in); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := r.Stop(in); !errors.Is(err, ErrNotDrawing) {
		t.Fatalf("second stop: expected ErrNotDrawing, got %v", err)
	}
	if in.Ledger.Len() != 1 {
		t.Fatalf("expected exactly one commit, ledger has %d", in.Ledger.Len())
	}
}

func TestRoundLocksSelectionWhileDrawing(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeClub, "ClubX")
	_ = r.SelectPrize(in.Catalog, "club-x")
	_, _ = r.Start(in, false)

	if err := r.Select(models.ScopeZone, "Zone1"); !errors.Is(err, ErrAlreadyDrawing) {
		t.Errorf("select: expected ErrAlreadyDrawing, got %v", err)
	}
	if err := r.SelectPrize(in.Catalog, ""); !errors.Is(err, ErrAlreadyDrawing) {
		t.Errorf("select prize: expected ErrAlreadyDrawing, got %v", err)
	}
	if err := r.SetMode(models.DrawAll, 0); !errors.Is(err, ErrAlreadyDrawing) {
		t.Errorf("set mode: expected ErrAlreadyDrawing, got %v", err)
	}
	if p := r.Plan(in); p.State != StateDrawing || p.DrawCount != 1 {
		t.Errorf("unexpected drawing plan: %+v", p)
	}
}

func TestRoundAbort(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeClub, "ClubX")
	_ = r.SelectPrize(in.Catalog, "club-x")

	if err := r.Abort(); !errors.Is(err, ErrNotDrawing) {
		t.Fatalf("expected ErrNotDrawing, got %v", err)
	}
	_, _ = r.Start(in, false)
	if err := r.Abort(); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if in.Ledger.Len() != 0 {
		t.Fatal("abort must not commit")
	}
	if p := r.Plan(in); p.State != StateArmed {
		t.Fatalf("expected armed after abort, got %s", p.State)
	}
}

func TestRoundSelectionResets(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeClub, "ClubX")
	_ = r.SelectPrize(in.Catalog, "club-x")
	_, _ = r.Start(in, false)
	_, _ = r.Stop(in)

	// Same selection keeps the revealed result.
	_ = r.Select(models.ScopeClub, "ClubX")
	if r.State() != StateRevealed {
		t.Fatalf("expected revealed, got %s", r.State())
	}

	_ = r.Select(models.ScopeClub, "ClubY")
	p := r.Plan(in)
	if p.State != StateIdle || p.Prize != nil || len(p.Winners) != 0 {
		t.Fatalf("scope change should clear prize and result: %+v", p)
	}
	if !errors.Is(p.Block, ErrNoPrizeSelected) {
		t.Fatalf("expected ErrNoPrizeSelected, got %v", p.Block)
	}
}

func TestRoundStopRecomputesAgainstLedger(t *testing.T) {
	prize := models.Prize{ID: "z", Name: "分區獎", TotalSlots: 2, Scope: models.ScopeZone, Context: "Zone1"}
	in := testInputs(t, prize)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeZone, "Zone1")
	_ = r.SelectPrize(in.Catalog, "z")
	_ = r.SetMode(models.DrawAll, 0)
	if _, err := r.Start(in, false); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A slot is taken between Start and Stop.
	if err := in.Ledger.Append(models.WinnerRecord{ID: "manual", ParticipantID: "A", Scope: models.ScopeZone, PrizeID: "z", Context: "Zone1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	winners, err := r.Stop(in)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(winners) != 1 || winners[0].ParticipantID == "A" {
		t.Fatalf("expected one winner other than A, got %+v", winners)
	}
}

func TestRoundApplyIsAtomic(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()
	club, filter, missing := models.ScopeClub, "ClubX", "missing"

	err := r.Apply(in.Catalog, Selection{Scope: &club, Filter: &filter, PrizeID: &missing})
	if !errors.Is(err, ErrPrizeNotFound) {
		t.Fatalf("expected ErrPrizeNotFound, got %v", err)
	}
	if p := r.Plan(in); p.Scope != models.ScopeDistrict || p.Filter != "" {
		t.Fatalf("rejected selection changed the round: %+v", p)
	}

	prizeID, custom, zero := "club-x", models.DrawCustom, 0
	err = r.Apply(in.Catalog, Selection{Scope: &club, Filter: &filter, PrizeID: &prizeID, Mode: &custom, BatchSize: &zero})
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if p := r.Plan(in); p.Scope != models.ScopeDistrict || p.Prize != nil {
		t.Fatalf("rejected mode changed the round: %+v", p)
	}

	if err := r.Apply(in.Catalog, Selection{Scope: &club, Filter: &filter, PrizeID: &prizeID}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p := r.Plan(in); p.State != StateArmed || p.Prize == nil || p.Prize.ID != "club-x" {
		t.Fatalf("expected armed round for club-x: %+v", p)
	}
}

func TestRoundSelectTrimsFilter(t *testing.T) {
	in := testInputs(t, presidentPrize)
	r := testEngine().NewRound()
	if err := r.Select(models.ScopeClub, "  ClubX "); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := r.SelectPrize(in.Catalog, "club-x"); err != nil {
		t.Fatalf("select prize: %v", err)
	}
	p := r.Plan(in)
	if p.Filter != "ClubX" || p.Context != "ClubX" || p.Eligible != 2 {
		t.Fatalf("expected trimmed filter: %+v", p)
	}
}

func TestRoundRevealedDropsDeletedRecords(t *testing.T) {
	prize := models.Prize{ID: "z", Name: "分區獎", TotalSlots: 2, Scope: models.ScopeZone, Context: "Zone1"}
	in := testInputs(t, prize)
	r := testEngine().NewRound()
	_ = r.Select(models.ScopeZone, "Zone1")
	_ = r.SelectPrize(in.Catalog, "z")
	_ = r.SetMode(models.DrawAll, 0)
	_, _ = r.Start(in, false)
	winners, err := r.Stop(in)
	if err != nil || len(winners) != 2 {
		t.Fatalf("stop: %v (%d winners)", err, len(winners))
	}

	if _, err := in.Ledger.Delete(winners[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p := r.Plan(in)
	if len(p.Winners) != 1 || p.Winners[0].ID != winners[1].ID {
		t.Fatalf("expected only the surviving winner, got %+v", p.Winners)
	}

	in.Ledger.ClearScope(models.ScopeZone)
	if p := r.Plan(in); len(p.Winners) != 0 || p.State != StateRevealed {
		t.Fatalf("expected no revealed winners after clearing: %+v", p)
	}
}
