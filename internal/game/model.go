package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/merev/ds-scoring-engine/internal/match"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// CreateMatchRequest is the body we expect on POST /api/matches.
type CreateMatchRequest struct {
	MatchType      string `json:"matchType"`                // "bo3", "bo5" or "bo7"
	StartingScore  int    `json:"startingScore,omitempty"` // defaults to STARTING_SCORE
	StartingPlayer int    `json:"startingPlayer,omitempty"` // 1 or 2, defaults to 1
}

// TurnRequest is a whole turn entered by the scorer.
type TurnRequest struct {
	Score           int  `json:"score"`
	DartsInTurn     int  `json:"dartsInTurn,omitempty"`
	IsDoubleAttempt bool `json:"isDoubleAttempt"`
	DoubleHit       bool `json:"doubleHit"`
}

// DartRequest is a single dart, either in board notation ("T20") or as a
// score with a double flag.
type DartRequest struct {
	Dart   string `json:"dart,omitempty"`
	Score  *int   `json:"score,omitempty"`
	Double bool   `json:"double,omitempty"`
}

type CheckoutRequest struct {
	CheckoutDarts  int `json:"checkoutDarts"`
	DoubleAttempts int `json:"doubleAttempts"`
}

type EditRequest struct {
	LegIndex   int `json:"legIndex"`
	PlayerID   int `json:"playerId"`
	ThrowIndex int `json:"throwIndex"`
	NewScore   int `json:"newScore"`
}

type FinishRequest struct {
	Confirm bool `json:"confirm"`
}

// PlayerView is one player's current leg plus match totals.
type PlayerView struct {
	scoring.PlayerLegState
	Match match.PlayerSummary `json:"match"`
}

// MatchView is returned by every endpoint. Live fields are empty for a
// match that is only known from storage.
type MatchView struct {
	ID               string              `json:"id"`
	Config           match.Config        `json:"config"`
	Status           match.Status        `json:"status"`
	Phase            match.Phase         `json:"phase,omitempty"`
	CurrentPlayer    scoring.PlayerID    `json:"currentPlayer,omitempty"`
	CurrentLegNumber int                 `json:"currentLegNumber"`
	Winner           scoring.PlayerID    `json:"winner,omitempty"`
	Player1          *PlayerView         `json:"player1,omitempty"`
	Player2          *PlayerView         `json:"player2,omitempty"`
	PendingDarts     []scoring.Dart      `json:"pendingDarts,omitempty"`
	Suggestion       string              `json:"suggestion,omitempty"`
	Snapshot         *match.Snapshot     `json:"snapshot,omitempty"`
	Result           *match.FinishResult `json:"result,omitempty"`
	Events           []match.Event       `json:"events,omitempty"`
	PersistError     string              `json:"persistError,omitempty"`
}

// Record is a match as held by the persistence port.
type Record struct {
	ID        string
	Config    match.Config
	Status    match.Status
	Snapshot  *match.Snapshot
	Result    *match.FinishResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DecodeJSON fills Snapshot and Result from their stored JSON documents.
// Empty documents leave the field nil.
func (r *Record) DecodeJSON(snapshot, result []byte) error {
	if len(snapshot) > 0 {
		var snap match.Snapshot
		if err := json.Unmarshal(snapshot, &snap); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		r.Snapshot = &snap
	}
	if len(result) > 0 {
		var res match.FinishResult
		if err := json.Unmarshal(result, &res); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		r.Result = &res
	}
	return nil
}

func newView(id string, e *match.Engine, events []match.Event) MatchView {
	s := e.State()
	snap := s.Snapshot()
	v := MatchView{
		ID:               id,
		Config:           s.Config,
		Status:           s.Status,
		Phase:            s.Phase,
		CurrentPlayer:    s.CurrentPlayer,
		CurrentLegNumber: s.CurrentLegNumber,
		Winner:           s.Winner,
		Player1:          &PlayerView{s.Player(scoring.Player1), snap.Player1},
		Player2:          &PlayerView{s.Player(scoring.Player2), snap.Player2},
		PendingDarts:     s.PendingDarts,
		Snapshot:         &snap,
		Events:           events,
	}
	if sug, ok := e.Suggestion(); ok {
		v.Suggestion = sug
	}
	if s.Phase == match.PhaseFinished {
		res := s.Result()
		v.Result = &res
	}
	return v
}

func recordView(r Record) MatchView {
	v := MatchView{
		ID:       r.ID,
		Config:   r.Config,
		Status:   r.Status,
		Snapshot: r.Snapshot,
		Result:   r.Result,
	}
	if r.Snapshot != nil {
		v.CurrentLegNumber = r.Snapshot.CurrentLegNumber
	}
	if r.Result != nil {
		v.Winner = r.Result.WinnerID
	}
	return v
}
