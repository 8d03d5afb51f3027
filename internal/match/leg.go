package match

import (
	"fmt"
	"slices"
	"time"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

func submitTurn(proc *scoring.Processor, s *State, c SubmitTurn) ([]Event, error) {
	if err := guardTurn(s); err != nil {
		return nil, err
	}
	if len(s.PendingDarts) > 0 {
		return nil, apperrors.New(apperrors.CodeTurnInProgress,
			fmt.Sprintf("%d darts already entered for this turn", len(s.PendingDarts)))
	}
	acc := scoring.Passthrough{Darts: c.DartsInTurn, DoubleAttempt: c.IsDoubleAttempt}
	turn, _, err := acc.Feed(scoring.Dart{Score: c.Score, Double: c.DoubleHit},
		s.Player(s.CurrentPlayer).RemainingScore)
	if err != nil {
		return nil, err
	}
	return commitTurn(proc, s, turn.Throw())
}

func submitDart(proc *scoring.Processor, s *State, c SubmitDart) ([]Event, error) {
	if err := guardTurn(s); err != nil {
		return nil, err
	}
	remaining := s.Player(s.CurrentPlayer).RemainingScore
	buf := scoring.NewBuffered(s.PendingDarts)
	turn, done, err := buf.Feed(c.Dart, remaining)
	if err != nil {
		return nil, err
	}
	s.PendingDarts = buf.Darts()
	if !done {
		d := c.Dart
		return []Event{{
			Type:      EventDartBuffered,
			Player:    s.CurrentPlayer,
			Dart:      &d,
			Remaining: remaining - buf.Sum(),
		}}, nil
	}
	return commitTurn(proc, s, turn.Throw())
}

func endTurn(proc *scoring.Processor, s *State) ([]Event, error) {
	if err := guardTurn(s); err != nil {
		return nil, err
	}
	buf := scoring.NewBuffered(s.PendingDarts)
	turn, ok := buf.Flush()
	if !ok {
		return nil, nil
	}
	s.PendingDarts = buf.Darts()
	return commitTurn(proc, s, turn.Throw())
}

func guardTurn(s *State) error {
	if err := guardInPlay(s); err != nil {
		return err
	}
	if s.Phase == PhaseCheckoutPending {
		return apperrors.New(apperrors.CodeCheckoutPending, "confirm the checkout before the next throw")
	}
	return nil
}

// commitTurn runs the processor for the current player and moves the leg
// state machine: the turn passes on a normal or bust outcome and the leg
// waits for confirmation on a checkout.
func commitTurn(proc *scoring.Processor, s *State, t scoring.Throw) ([]Event, error) {
	actor := s.CurrentPlayer
	prev := s.Player(actor)
	out, err := proc.Apply(prev, t)
	if err != nil {
		return nil, err
	}

	recorded := len(out.State.ThrowHistory) > len(prev.ThrowHistory)
	entry := HistoryEntry{Actor: actor, Recorded: recorded, Previous: prev.Clone()}
	if recorded {
		entry.Throw = out.State.ThrowHistory[len(out.State.ThrowHistory)-1]
	} else {
		entry.Throw = bustEntry(t)
	}
	s.History = append(s.History, entry)
	s.Players[actor.Index()] = out.State
	if s.Status == StatusPending {
		s.Status = StatusPlaying
	}

	committed := entry.Throw
	events := []Event{{
		Type:      EventTurnCommitted,
		Player:    actor,
		Outcome:   out.Kind.String(),
		Throw:     &committed,
		Remaining: out.State.RemainingScore,
		LegNumber: s.CurrentLegNumber,
	}}

	if out.Kind == scoring.OutcomeCheckout {
		s.Phase = PhaseCheckoutPending
		return append(events, Event{
			Type:      EventCheckoutPending,
			Player:    actor,
			Remaining: out.CheckoutScore,
			LegNumber: s.CurrentLegNumber,
		}), nil
	}
	s.CurrentPlayer = actor.Other()
	return events, nil
}

func confirmCheckout(proc *scoring.Processor, s *State, c ConfirmCheckout, now time.Time) ([]Event, error) {
	if s.Phase != PhaseCheckoutPending {
		return nil, apperrors.New(apperrors.CodeCheckoutNotPending, fmt.Sprintf("match is %s", s.Phase))
	}
	if c.CheckoutDarts < 1 || c.CheckoutDarts > 3 {
		return nil, apperrors.New(apperrors.CodeInvalidCheckoutAttempt,
			fmt.Sprintf("checkout darts %d outside 1..3", c.CheckoutDarts))
	}
	if c.DoubleAttempts < 1 || c.DoubleAttempts > 3 {
		return nil, apperrors.New(apperrors.CodeInvalidCheckoutAttempt,
			fmt.Sprintf("double attempts %d outside 1..3", c.DoubleAttempts))
	}
	if c.DoubleAttempts > c.CheckoutDarts {
		return nil, apperrors.New(apperrors.CodeInvalidCheckoutAttempt,
			fmt.Sprintf("%d double attempts with %d checkout darts", c.DoubleAttempts, c.CheckoutDarts))
	}

	winner := s.CurrentPlayer
	last := s.History[len(s.History)-1]
	checkoutScore := last.Previous.RemainingScore
	if !slices.Contains(proc.Table().PossibleDarts(checkoutScore), c.CheckoutDarts) {
		return nil, apperrors.New(apperrors.CodeInvalidCheckoutAttempt,
			fmt.Sprintf("%d cannot be finished with %d darts", checkoutScore, c.CheckoutDarts))
	}

	// The finishing turn counts only the darts actually thrown.
	ps := &s.Players[winner.Index()]
	final := &ps.ThrowHistory[len(ps.ThrowHistory)-1]
	ps.DartsThrownThisLeg += c.CheckoutDarts - final.DartsInTurn
	final.DartsInTurn = c.CheckoutDarts
	s.History[len(s.History)-1].Throw.DartsInTurn = c.CheckoutDarts

	leg := Leg{
		Number:         s.CurrentLegNumber,
		Player1Throws:  append([]scoring.Throw{}, s.Players[0].ThrowHistory...),
		Player2Throws:  append([]scoring.Throw{}, s.Players[1].ThrowHistory...),
		StartingPlayer: s.LegStartingPlayer,
		Winner:         winner,
		CheckoutDarts:  c.CheckoutDarts,
		DoubleAttempts: c.DoubleAttempts,
		HighestCheckout: scoring.Checkout{
			Score:    checkoutScore,
			Darts:    c.CheckoutDarts,
			PlayerID: winner,
		},
		CreatedAt: now.UTC(),
	}
	won := leg.clone()
	events := []Event{{
		Type:      EventLegWon,
		Player:    winner,
		LegNumber: leg.Number,
		Leg:       &won,
	}}
	return append(events, onLegWon(s, leg)...), nil
}
