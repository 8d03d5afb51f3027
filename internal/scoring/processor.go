package scoring

import (
	"fmt"
	"strings"

	"github.com/merev/ds-scoring-engine/internal/checkout"
	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
)

// BustPolicy decides what a busted turn leaves behind in the throw history.
type BustPolicy int

const (
	// BustCountsAsZero records a bust as a zero-score turn whose darts count
	// toward the average.
	BustCountsAsZero BustPolicy = iota
	// BustExcluded drops busted turns from history and statistics entirely.
	BustExcluded
)

func (p BustPolicy) String() string {
	if p == BustExcluded {
		return "exclude"
	}
	return "zero"
}

// ParseBustPolicy accepts "zero" or "exclude".
func ParseBustPolicy(s string) (BustPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return BustCountsAsZero, nil
	case "exclude":
		return BustExcluded, nil
	}
	return BustCountsAsZero, fmt.Errorf("unknown bust policy %q", s)
}

// OutcomeKind classifies the result of applying a turn.
type OutcomeKind int

const (
	OutcomeNormal OutcomeKind = iota
	OutcomeBust
	OutcomeCheckout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeBust:
		return "bust"
	case OutcomeCheckout:
		return "checkout"
	default:
		return "normal"
	}
}

// Outcome is the player's state after a turn. CheckoutScore is the score
// taken out when Kind is OutcomeCheckout.
type Outcome struct {
	Kind          OutcomeKind
	State         PlayerLegState
	CheckoutScore int
}

// Processor applies turns to a player's leg state.
type Processor struct {
	table  *checkout.Table
	policy BustPolicy
}

// NewProcessor returns a processor validating finishes against table.
func NewProcessor(table *checkout.Table, policy BustPolicy) *Processor {
	return &Processor{table: table, policy: policy}
}

// Table returns the checkout table used for validation.
func (p *Processor) Table() *checkout.Table {
	return p.table
}

// Policy returns the configured bust policy.
func (p *Processor) Policy() BustPolicy {
	return p.policy
}

// ValidateThrow rejects scores outside 0..180 and dart counts outside 1..3.
func ValidateThrow(t Throw) error {
	if t.Score < 0 || t.Score > MaxTurnScore {
		return apperrors.New(apperrors.CodeInvalidInputRange,
			fmt.Sprintf("score %d outside 0..%d", t.Score, MaxTurnScore))
	}
	if t.DartsInTurn < 1 || t.DartsInTurn > DartsPerTurn {
		return apperrors.New(apperrors.CodeInvalidInputRange,
			fmt.Sprintf("darts in turn %d outside 1..%d", t.DartsInTurn, DartsPerTurn))
	}
	return nil
}

// Apply decides whether t is a normal turn, a bust or a checkout. current is
// not modified.
func (p *Processor) Apply(current PlayerLegState, t Throw) (Outcome, error) {
	if err := ValidateThrow(t); err != nil {
		return Outcome{}, err
	}
	if t.DoubleHit {
		t.IsDoubleAttempt = true
	}
	t.Bust = false

	before := current.RemainingScore
	candidate := before - t.Score
	next := current.Clone()

	finished := candidate == 0 && t.DoubleHit && p.table.CanFinish(before)
	if candidate < 0 || candidate == 1 || (candidate == 0 && !finished) {
		p.recordBust(&next, before, t)
		return Outcome{Kind: OutcomeBust, State: next}, nil
	}

	p.commit(&next, before, t)
	if candidate == 0 {
		return Outcome{Kind: OutcomeCheckout, State: next, CheckoutScore: before}, nil
	}
	return Outcome{Kind: OutcomeNormal, State: next}, nil
}

// Replay rebuilds a leg state from startingScore by running throws through
// ReplayTurn in order.
func (p *Processor) Replay(startingScore int, throws []Throw) (PlayerLegState, error) {
	state := NewPlayerLegState(startingScore)
	for i, t := range throws {
		next, err := p.ReplayTurn(state, t)
		if err != nil {
			return PlayerLegState{}, fmt.Errorf("throw %d: %w", i, err)
		}
		state = next
	}
	return state, nil
}

// ReplayTurn re-applies one historical throw to current. Recorded busts are
// re-recorded without effect on the score. Otherwise the rules of Apply
// hold: a throw that would leave 1, or reach zero without a valid double
// finish, is re-recorded as a bust. A throw that would drop below zero, or
// any throw after the score reached zero, fails with
// NEGATIVE_SCORE_EDIT_REJECTED.
func (p *Processor) ReplayTurn(current PlayerLegState, t Throw) (PlayerLegState, error) {
	if err := ValidateThrow(t); err != nil {
		return PlayerLegState{}, err
	}
	before := current.RemainingScore
	next := current.Clone()
	if before == 0 {
		return PlayerLegState{}, apperrors.New(apperrors.CodeNegativeScoreEdit,
			"turn follows a checkout")
	}
	if t.Bust {
		p.recordBust(&next, before, t)
		return next, nil
	}

	candidate := before - t.Score
	if candidate < 0 {
		return PlayerLegState{}, apperrors.New(apperrors.CodeNegativeScoreEdit,
			fmt.Sprintf("%d takes %d below zero", t.Score, before))
	}
	finished := candidate == 0 && t.DoubleHit && p.table.CanFinish(before)
	if candidate == 1 || (candidate == 0 && !finished) {
		p.recordBust(&next, before, t)
		return next, nil
	}
	p.commit(&next, before, t)
	return next, nil
}

func (p *Processor) countAttempt(s *PlayerLegState, before int, t Throw) {
	if t.IsDoubleAttempt && p.table.CanFinish(before) {
		s.CheckoutAttempts++
	}
}

func (p *Processor) recordBust(s *PlayerLegState, before int, t Throw) {
	if p.policy == BustExcluded {
		return
	}
	p.countAttempt(s, before, t)
	s.DartsThrownThisLeg += t.DartsInTurn
	s.ThrowHistory = append(s.ThrowHistory, Throw{
		Score:           0,
		DartsInTurn:     t.DartsInTurn,
		IsDoubleAttempt: t.IsDoubleAttempt,
		Bust:            true,
	})
}

func (p *Processor) commit(s *PlayerLegState, before int, t Throw) {
	p.countAttempt(s, before, t)
	if t.Score == MaxTurnScore {
		s.OneEightyTurns = append(s.OneEightyTurns, len(s.ThrowHistory))
	}
	s.DartsThrownThisLeg += t.DartsInTurn
	s.ThrowHistory = append(s.ThrowHistory, t)
	s.RemainingScore = before - t.Score
	if s.RemainingScore == 0 {
		s.SuccessfulCheckouts++
		if before > s.HighestCheckout {
			s.HighestCheckout = before
		}
	}
}
