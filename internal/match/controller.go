package match

import (
	"fmt"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// onLegWon books a won leg and either starts the next leg or holds the
// match for finish confirmation.
func onLegWon(s *State, leg Leg) []Event {
	w := leg.Winner
	s.Legs = append(s.Legs, leg)
	s.LegsWon[w.Index()]++

	if s.LegsWon[w.Index()] >= s.LegsToWin() {
		s.Status = StatusFinished
		s.Winner = w
		s.resetLeg()
		s.Phase = PhaseFinishPending
		s.CurrentPlayer = w
		return []Event{{
			Type:      EventMatchFinished,
			Player:    w,
			LegNumber: leg.Number,
		}}
	}

	// The next leg is started by the other player regardless of who won.
	s.LegStartingPlayer = s.LegStartingPlayer.Other()
	s.CurrentPlayer = s.LegStartingPlayer
	s.CurrentLegNumber++
	s.resetLeg()
	return []Event{{
		Type:      EventNextLeg,
		Player:    s.LegStartingPlayer,
		LegNumber: s.CurrentLegNumber,
		Remaining: s.Config.StartingScore,
	}}
}

func confirmFinish(s *State, c ConfirmFinish) ([]Event, error) {
	if s.Phase != PhaseFinishPending {
		return nil, apperrors.New(apperrors.CodeFinishNotPending, fmt.Sprintf("match is %s", s.Phase))
	}

	if c.Confirm {
		result := s.Result()
		s.Phase = PhaseFinished
		return []Event{{
			Type:   EventFinishConfirmed,
			Player: s.Winner,
			Result: &result,
		}}, nil
	}

	// Revert the deciding leg: it is replayed from its start.
	leg := popLastLeg(s)
	s.CurrentPlayer = leg.StartingPlayer
	s.resetLeg()
	return []Event{{
		Type:      EventFinishReverted,
		Player:    leg.Winner,
		LegNumber: leg.Number,
		Remaining: s.Config.StartingScore,
	}}, nil
}

// popLastLeg takes the last completed leg off the books and makes its
// number and starting player current again.
func popLastLeg(s *State) Leg {
	leg := s.Legs[len(s.Legs)-1]
	s.Legs = s.Legs[:len(s.Legs)-1]
	s.LegsWon[leg.Winner.Index()]--
	s.Status = StatusPlaying
	s.Winner = scoring.NoPlayer
	s.LegStartingPlayer = leg.StartingPlayer
	s.CurrentLegNumber = leg.Number
	return leg
}
