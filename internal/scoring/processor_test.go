package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/merev/ds-scoring-engine/internal/checkout"
	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
)

func newTestProcessor(policy BustPolicy) *Processor {
	return NewProcessor(checkout.Default(), policy)
}

func stateWith(remaining int) PlayerLegState {
	s := NewPlayerLegState(501)
	s.RemainingScore = remaining
	return s
}

func turn(score int) Throw {
	return Throw{Score: score, DartsInTurn: 3}
}

func double(score int) Throw {
	return Throw{Score: score, DartsInTurn: 3, IsDoubleAttempt: true, DoubleHit: true}
}

func TestApplyNormal(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	start := NewPlayerLegState(501)

	out, err := p.Apply(start, turn(180))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Kind != OutcomeNormal {
		t.Fatalf("expected normal, got %s", out.Kind)
	}
	if out.State.RemainingScore != 321 || out.State.DartsThrownThisLeg != 3 {
		t.Fatalf("unexpected state %+v", out.State)
	}
	if !reflect.DeepEqual(out.State.OneEightyTurns, []int{0}) {
		t.Fatalf("expected 180 at turn 0, got %v", out.State.OneEightyTurns)
	}
	if start.RemainingScore != 501 || len(start.ThrowHistory) != 0 {
		t.Fatal("input state must not be modified")
	}
}

func TestApplyRejectsOutOfRange(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	for _, th := range []Throw{{Score: -1, DartsInTurn: 3}, {Score: 181, DartsInTurn: 3}, {Score: 60, DartsInTurn: 0}, {Score: 60, DartsInTurn: 4}} {
		if _, err := p.Apply(NewPlayerLegState(501), th); !errors.Is(err, apperrors.ErrInvalidInputRange) {
			t.Fatalf("%+v: expected invalid input range, got %v", th, err)
		}
	}
}

func TestApplyBusts(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)

	tests := []struct {
		name      string
		remaining int
		throw     Throw
	}{
		{"below zero", 40, turn(60)},
		{"leaves one", 41, turn(40)},
		{"zero without double", 40, turn(40)},
		{"double attempt missed", 40, Throw{Score: 40, DartsInTurn: 3, IsDoubleAttempt: true}},
		{"stuck on one", 1, double(1)},
		{"no finish from bogey", 169, double(169)},
		{"above max checkout", 180, double(180)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := p.Apply(stateWith(tc.remaining), tc.throw)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if out.Kind != OutcomeBust {
				t.Fatalf("expected bust, got %s", out.Kind)
			}
			if out.State.RemainingScore != tc.remaining {
				t.Fatalf("remaining changed to %d", out.State.RemainingScore)
			}
			last := out.State.ThrowHistory[len(out.State.ThrowHistory)-1]
			if !last.Bust || last.Score != 0 || last.DartsInTurn != 3 {
				t.Fatalf("expected zero-value bust entry, got %+v", last)
			}
			if out.State.DartsThrownThisLeg != 3 {
				t.Fatalf("expected bust darts counted, got %d", out.State.DartsThrownThisLeg)
			}
		})
	}
}

func TestApplyBustExcluded(t *testing.T) {
	p := newTestProcessor(BustExcluded)
	out, err := p.Apply(stateWith(40), turn(60))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Kind != OutcomeBust {
		t.Fatalf("expected bust, got %s", out.Kind)
	}
	if len(out.State.ThrowHistory) != 0 || out.State.DartsThrownThisLeg != 0 {
		t.Fatalf("excluded bust must leave no trace: %+v", out.State)
	}
}

func TestApplyCheckoutEveryFinish(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	table := checkout.Default()

	for score := 2; score <= checkout.MaxCheckout; score++ {
		if _, ok := table.Suggestion(score); !ok {
			continue
		}
		hit, err := p.Apply(stateWith(score), double(score))
		if err != nil {
			t.Fatalf("%d: %v", score, err)
		}
		if hit.Kind != OutcomeCheckout || hit.State.RemainingScore != 0 || hit.CheckoutScore != score {
			t.Fatalf("%d: expected checkout, got %s", score, hit.Kind)
		}

		miss := double(score)
		miss.DoubleHit = false
		out, err := p.Apply(stateWith(score), miss)
		if err != nil {
			t.Fatalf("%d: %v", score, err)
		}
		if out.Kind != OutcomeBust {
			t.Fatalf("%d: expected bust without double, got %s", score, out.Kind)
		}
	}
}

func TestApplyCheckout170(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	out, err := p.Apply(stateWith(170), double(170))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Kind != OutcomeCheckout {
		t.Fatalf("expected checkout, got %s", out.Kind)
	}
	if out.State.HighestCheckout != 170 || out.State.SuccessfulCheckouts != 1 || out.State.CheckoutAttempts != 1 {
		t.Fatalf("unexpected checkout stats %+v", out.State)
	}
}

func TestApplyHundredsThenOne(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	state := NewPlayerLegState(501)

	for i := 0; i < 4; i++ {
		out, err := p.Apply(state, turn(100))
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		state = out.State
	}
	if state.RemainingScore != 101 {
		t.Fatalf("expected 101, got %d", state.RemainingScore)
	}

	out, err := p.Apply(state, turn(100))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Kind != OutcomeBust || out.State.RemainingScore != 101 {
		t.Fatalf("leaving 1 must bust, got %s at %d", out.Kind, out.State.RemainingScore)
	}

	out, err = p.Apply(stateWith(1), turn(1))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Kind != OutcomeBust || out.State.RemainingScore != 1 {
		t.Fatalf("a single 1 from 1 must bust, got %s at %d", out.Kind, out.State.RemainingScore)
	}
}

func TestReplayMatchesApply(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	state := NewPlayerLegState(501)
	for _, th := range []Throw{turn(180), turn(140), turn(100), double(81)} {
		out, err := p.Apply(state, th)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		state = out.State
	}
	if state.RemainingScore != 0 {
		t.Fatalf("expected checkout, remaining %d", state.RemainingScore)
	}

	replayed, err := p.Replay(501, state.ThrowHistory)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !reflect.DeepEqual(replayed, state) {
		t.Fatalf("replay diverged:\n got %+v\nwant %+v", replayed, state)
	}
}

func TestReplayWithBustEntries(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	state := NewPlayerLegState(501)
	for _, th := range []Throw{turn(180), turn(180), turn(140), turn(60)} {
		out, err := p.Apply(state, th)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		state = out.State
	}
	if state.RemainingScore != 81 {
		t.Fatalf("expected 81 left, got %d", state.RemainingScore)
	}
	if n := len(state.ThrowHistory); n != 4 || !state.ThrowHistory[2].Bust {
		t.Fatalf("expected bust entry at turn 2, got %+v", state.ThrowHistory)
	}
	replayed, err := p.Replay(501, state.ThrowHistory)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !reflect.DeepEqual(replayed, state) {
		t.Fatalf("replay diverged:\n got %+v\nwant %+v", replayed, state)
	}
}

func TestReplayRejects(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)

	_, err := p.Replay(501, []Throw{turn(180), turn(180), turn(180)})
	if !errors.Is(err, apperrors.ErrNegativeScoreEdit) {
		t.Fatalf("expected negative score rejection, got %v", err)
	}

	_, err = p.Replay(100, []Throw{double(100), turn(0)})
	if !errors.Is(err, apperrors.ErrNegativeScoreEdit) {
		t.Fatalf("a turn after the checkout must be rejected, got %v", err)
	}
}

func TestReplayRebustsTurns(t *testing.T) {
	for _, policy := range []BustPolicy{BustCountsAsZero, BustExcluded} {
		p := newTestProcessor(policy)

		// 101 left, and the last turn now leaves one.
		got, err := p.Replay(501, []Throw{turn(100), turn(100), turn(100), turn(100), turn(100)})
		if err != nil {
			t.Fatalf("%s: replay: %v", policy, err)
		}
		if got.RemainingScore != 101 {
			t.Fatalf("%s: remaining = %d, want 101", policy, got.RemainingScore)
		}
		wantThrows := 5
		if policy == BustExcluded {
			wantThrows = 4
		}
		if len(got.ThrowHistory) != wantThrows {
			t.Fatalf("%s: throws = %+v", policy, got.ThrowHistory)
		}
		if policy == BustCountsAsZero {
			last := got.ThrowHistory[4]
			if !last.Bust || last.Score != 0 || got.DartsThrownThisLeg != 15 {
				t.Fatalf("expected the last turn re-recorded as a bust, got %+v", got)
			}
		}

		// Zero without a double finish busts as it does live.
		got, err = p.Replay(100, []Throw{turn(100)})
		if err != nil {
			t.Fatalf("%s: replay: %v", policy, err)
		}
		if got.RemainingScore != 100 || got.SuccessfulCheckouts != 0 {
			t.Fatalf("%s: zero without a double must bust, got %+v", policy, got)
		}
	}
}

func TestReplayTurnLeavesInputUntouched(t *testing.T) {
	p := newTestProcessor(BustCountsAsZero)
	start := stateWith(40)
	next, err := p.ReplayTurn(start, double(40))
	if err != nil {
		t.Fatalf("replay turn: %v", err)
	}
	if next.RemainingScore != 0 || next.HighestCheckout != 40 {
		t.Fatalf("expected checkout of 40, got %+v", next)
	}
	if start.RemainingScore != 40 || len(start.ThrowHistory) != 0 {
		t.Fatalf("input state modified: %+v", start)
	}
}

func TestParseBustPolicy(t *testing.T) {
	if p, err := ParseBustPolicy("exclude"); err != nil || p != BustExcluded {
		t.Fatalf("got %v, %v", p, err)
	}
	if p, err := ParseBustPolicy(""); err != nil || p != BustCountsAsZero {
		t.Fatalf("got %v, %v", p, err)
	}
	if _, err := ParseBustPolicy("ignore"); err == nil {
		t.Fatal("expected error")
	}
}
