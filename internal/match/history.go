package match

import (
	"fmt"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// undoLast removes the last buffered dart, or else pops the last history
// entry and restores the actor's snapshot as it was.
func undoLast(s *State) ([]Event, error) {
	if err := guardInPlay(s); err != nil {
		return nil, err
	}

	buf := scoring.NewBuffered(s.PendingDarts)
	if d, ok := buf.Pop(); ok {
		s.PendingDarts = buf.Darts()
		return []Event{{
			Type:      EventDartUndone,
			Player:    s.CurrentPlayer,
			Dart:      &d,
			Remaining: s.Player(s.CurrentPlayer).RemainingScore - buf.Sum(),
		}}, nil
	}

	if len(s.History) == 0 {
		return nil, apperrors.New(apperrors.CodeHistoryUnderflow,
			fmt.Sprintf("no turns to undo in leg %d", s.CurrentLegNumber))
	}
	entry := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	s.Players[entry.Actor.Index()] = entry.Previous.Clone()
	s.CurrentPlayer = entry.Actor
	s.Phase = PhaseAwaitingThrow

	undone := entry.Throw
	return []Event{{
		Type:      EventTurnUndone,
		Player:    entry.Actor,
		Throw:     &undone,
		Remaining: entry.Previous.RemainingScore,
		LegNumber: s.CurrentLegNumber,
	}}, nil
}

// editThrow replaces one throw's score and replays the player's leg from
// the starting score. Everything downstream is re-derived: a player whose
// replay now ends on a valid double finish is put on checkout, and a player
// who no longer reaches zero is back in play. A completed leg whose outcome
// changes is reopened when it is the last one and nothing has been thrown
// since; otherwise the edit is refused.
func editThrow(proc *scoring.Processor, s *State, c EditThrow) ([]Event, error) {
	if s.Phase == PhaseFinished {
		return nil, apperrors.New(apperrors.CodeMatchNotInPlay, "match is finished")
	}
	if c.NewScore < 0 || c.NewScore > scoring.MaxTurnScore {
		return nil, apperrors.New(apperrors.CodeInvalidInputRange,
			fmt.Sprintf("score %d outside 0..%d", c.NewScore, scoring.MaxTurnScore))
	}
	if !c.Player.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidEditTarget, "unknown player")
	}

	var (
		throws []scoring.Throw
		leg    *Leg
	)
	switch {
	case c.LegIndex >= 0 && c.LegIndex < len(s.Legs):
		leg = &s.Legs[c.LegIndex]
		throws = leg.Throws(c.Player)
	case c.LegIndex == len(s.Legs) && s.Phase != PhaseFinishPending:
		if len(s.PendingDarts) > 0 {
			return nil, apperrors.New(apperrors.CodeTurnInProgress, "finish the current turn before editing")
		}
		throws = s.Player(c.Player).ThrowHistory
	default:
		return nil, apperrors.New(apperrors.CodeInvalidEditTarget, fmt.Sprintf("no leg %d", c.LegIndex))
	}
	if c.ThrowIndex < 0 || c.ThrowIndex >= len(throws) {
		return nil, apperrors.New(apperrors.CodeInvalidEditTarget,
			fmt.Sprintf("%s has no throw %d in leg %d", c.Player, c.ThrowIndex, c.LegIndex))
	}

	edited := append([]scoring.Throw{}, throws...)
	if t := &edited[c.ThrowIndex]; t.Score != c.NewScore {
		t.Score = c.NewScore
		t.Bust = false
	}

	replayed, err := proc.Replay(s.Config.StartingScore, edited)
	if err != nil {
		return nil, err
	}
	changed := editedEvent(proc, s, c, edited, replayed.RemainingScore)

	var events []Event
	if leg != nil {
		winner := leg.Winner
		out := replayed.RemainingScore == 0
		if out == (winner == c.Player) {
			leg.setThrows(c.Player, replayed.ThrowHistory)
			if out {
				final := replayed.ThrowHistory[len(replayed.ThrowHistory)-1]
				leg.HighestCheckout.Score = final.Score
			}
			return []Event{changed}, nil
		}
		if err := reopenLastLeg(proc, s, c.LegIndex); err != nil {
			return nil, err
		}
		events = append(events, Event{
			Type:      EventLegReopened,
			Player:    winner,
			LegNumber: s.CurrentLegNumber,
		})
	}
	events = append(events, changed)
	return append(events, settleEdit(proc, s, c.Player, edited, replayed)...), nil
}

// editedEvent reports the edited throw as it stands after the replay.
func editedEvent(proc *scoring.Processor, s *State, c EditThrow, edited []scoring.Throw, remaining int) Event {
	// A prefix of a valid replay is itself valid.
	before, _ := proc.Replay(s.Config.StartingScore, edited[:c.ThrowIndex])
	after, _ := proc.ReplayTurn(before, edited[c.ThrowIndex])
	t := bustEntry(edited[c.ThrowIndex])
	if len(after.ThrowHistory) > len(before.ThrowHistory) {
		t = after.ThrowHistory[len(after.ThrowHistory)-1]
	}
	return Event{
		Type:      EventThrowEdited,
		Player:    c.Player,
		Throw:     &t,
		Remaining: remaining,
		LegNumber: c.LegIndex + 1,
	}
}

// settleEdit stores p's replayed leg in the leg in play and re-derives whose
// turn it is. Turns thrown after a checkout the edit created are dropped.
func settleEdit(proc *scoring.Processor, s *State, p scoring.PlayerID, edited []scoring.Throw, replayed scoring.PlayerLegState) []Event {
	s.Players[p.Index()] = replayed
	rebuildHistory(proc, s, p, edited)

	pending := s.Phase == PhaseCheckoutPending && s.CurrentPlayer == p
	if replayed.RemainingScore == 0 {
		dropTurnsAfter(s, lastRecorded(s, p))
		s.Phase = PhaseCheckoutPending
		s.CurrentPlayer = p
		if pending {
			return nil
		}
		final := replayed.ThrowHistory[len(replayed.ThrowHistory)-1]
		return []Event{{
			Type:      EventCheckoutPending,
			Player:    p,
			Remaining: final.Score,
			LegNumber: s.CurrentLegNumber,
		}}
	}
	if pending {
		s.Phase = PhaseAwaitingThrow
		s.CurrentPlayer = p.Other()
	}
	return nil
}

// reopenLastLeg puts the completed leg at index back in play as it stood
// while its checkout awaited confirmation.
func reopenLastLeg(proc *scoring.Processor, s *State, index int) error {
	idle := s.Phase == PhaseFinishPending || (len(s.History) == 0 && len(s.PendingDarts) == 0)
	if index != len(s.Legs)-1 || !idle {
		return apperrors.New(apperrors.CodeEditOutcomeConflict,
			fmt.Sprintf("leg %d changes winner but play has moved on", index+1))
	}

	leg := popLastLeg(s)
	s.resetLeg()

	// Turns alternate from the starting player; the winning throw is last.
	order := [2]scoring.PlayerID{leg.StartingPlayer, leg.StartingPlayer.Other()}
	lists := [2][]scoring.Throw{leg.Throws(order[0]), leg.Throws(order[1])}
	w := 0
	if order[1] == leg.Winner {
		w = 1
	}
	final := lists[w][len(lists[w])-1]
	lists[w] = lists[w][:len(lists[w])-1]

	push := func(p scoring.PlayerID, t scoring.Throw) error {
		prev := s.Player(p)
		next, err := proc.ReplayTurn(prev, t)
		if err != nil {
			return err
		}
		recorded := len(next.ThrowHistory) > len(prev.ThrowHistory)
		entry := HistoryEntry{Actor: p, Recorded: recorded, Previous: prev, Throw: bustEntry(t)}
		if recorded {
			entry.Throw = next.ThrowHistory[len(next.ThrowHistory)-1]
		}
		s.History = append(s.History, entry)
		s.Players[p.Index()] = next
		return nil
	}
	for i := 0; i < len(lists[0]) || i < len(lists[1]); i++ {
		for k, p := range order {
			if i < len(lists[k]) {
				if err := push(p, lists[k][i]); err != nil {
					return err
				}
			}
		}
	}
	if err := push(leg.Winner, final); err != nil {
		return err
	}
	s.Phase = PhaseCheckoutPending
	s.CurrentPlayer = leg.Winner
	return nil
}

// rebuildHistory re-derives p's history entries from the edited throws so a
// later undo restores the corrected state. A throw the replay turned into an
// excluded bust stays in the log as an unrecorded entry.
func rebuildHistory(proc *scoring.Processor, s *State, p scoring.PlayerID, throws []scoring.Throw) {
	state := scoring.NewPlayerLegState(s.Config.StartingScore)
	next := 0
	for i := range s.History {
		e := &s.History[i]
		if e.Actor != p {
			continue
		}
		e.Previous = state.Clone()
		if !e.Recorded {
			continue
		}
		t := throws[next]
		next++
		after, _ := proc.ReplayTurn(state, t)
		if len(after.ThrowHistory) > len(state.ThrowHistory) {
			e.Throw = after.ThrowHistory[len(after.ThrowHistory)-1]
		} else {
			e.Recorded = false
			e.Throw = bustEntry(t)
		}
		state = after
	}
}

// dropTurnsAfter discards the turns committed after History[h]; each player
// goes back to the state before their first dropped turn.
func dropTurnsAfter(s *State, h int) {
	for i := len(s.History) - 1; i > h; i-- {
		e := s.History[i]
		s.Players[e.Actor.Index()] = e.Previous.Clone()
	}
	s.History = s.History[:h+1]
}

func lastRecorded(s *State, p scoring.PlayerID) int {
	for i := len(s.History) - 1; i >= 0; i-- {
		if e := s.History[i]; e.Actor == p && e.Recorded {
			return i
		}
	}
	return -1
}

func bustEntry(t scoring.Throw) scoring.Throw {
	return scoring.Throw{DartsInTurn: t.DartsInTurn, IsDoubleAttempt: t.IsDoubleAttempt, Bust: true}
}
