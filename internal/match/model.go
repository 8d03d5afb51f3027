package match

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// DefaultStartingScore is used when a config leaves StartingScore unset.
const DefaultStartingScore = 501

// MatchType is the best-of format of a match.
type MatchType string

const (
	BestOf3 MatchType = "bo3"
	BestOf5 MatchType = "bo5"
	BestOf7 MatchType = "bo7"
)

// LegsToWin returns the number of legs needed to win, or 0 for unknown types.
func (t MatchType) LegsToWin() int {
	switch t {
	case BestOf3:
		return 2
	case BestOf5:
		return 3
	case BestOf7:
		return 4
	default:
		return 0
	}
}

// ParseMatchType accepts "bo3", "bo5" or "bo7" in any case.
func ParseMatchType(s string) (MatchType, error) {
	t := MatchType(strings.ToLower(strings.TrimSpace(s)))
	if t.LegsToWin() == 0 {
		return "", fmt.Errorf("unknown match type %q", s)
	}
	return t, nil
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Phase is the position of the leg state machine.
type Phase string

const (
	PhaseAwaitingThrow   Phase = "awaiting_throw"
	PhaseCheckoutPending Phase = "checkout_pending"
	PhaseFinishPending   Phase = "finish_pending"
	PhaseFinished        Phase = "finished"
)

// Config fixes the format of a match.
type Config struct {
	MatchType      MatchType        `json:"matchType"`
	StartingScore  int              `json:"startingScore"`
	StartingPlayer scoring.PlayerID `json:"startingPlayer"`
}

func (c Config) withDefaults() Config {
	if c.MatchType == "" {
		c.MatchType = BestOf3
	}
	if c.StartingScore == 0 {
		c.StartingScore = DefaultStartingScore
	}
	if c.StartingPlayer == scoring.NoPlayer {
		c.StartingPlayer = scoring.Player1
	}
	return c
}

// Validate checks a config after defaults are applied.
func (c Config) Validate() error {
	if c.MatchType.LegsToWin() == 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("unknown match type %q", c.MatchType))
	}
	if c.StartingScore < 2 || c.StartingScore > 1001 {
		return apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("starting score %d outside 2..1001", c.StartingScore))
	}
	if !c.StartingPlayer.Valid() {
		return apperrors.New(apperrors.CodeInvalidConfig, "starting player must be player1 or player2")
	}
	return nil
}

// Leg is a completed leg. It only changes through EditThrow.
type Leg struct {
	Number          int              `json:"number"`
	Player1Throws   []scoring.Throw  `json:"player1Throws"`
	Player2Throws   []scoring.Throw  `json:"player2Throws"`
	StartingPlayer  scoring.PlayerID `json:"startingPlayer"`
	Winner          scoring.PlayerID `json:"winner"`
	CheckoutDarts   int              `json:"checkoutDarts"`
	DoubleAttempts  int              `json:"doubleAttempts"`
	HighestCheckout scoring.Checkout `json:"highestCheckout"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Throws returns the throws of p in this leg.
func (l Leg) Throws(p scoring.PlayerID) []scoring.Throw {
	if p == scoring.Player2 {
		return l.Player2Throws
	}
	return l.Player1Throws
}

func (l *Leg) setThrows(p scoring.PlayerID, throws []scoring.Throw) {
	if p == scoring.Player2 {
		l.Player2Throws = throws
		return
	}
	l.Player1Throws = throws
}

func (l Leg) clone() Leg {
	c := l
	c.Player1Throws = append([]scoring.Throw{}, l.Player1Throws...)
	c.Player2Throws = append([]scoring.Throw{}, l.Player2Throws...)
	return c
}

// HistoryEntry is one committed turn of the current leg. Previous is the
// actor's state before the turn; Recorded is false for busts that left
// nothing in the throw history.
type HistoryEntry struct {
	Actor    scoring.PlayerID       `json:"actor"`
	Throw    scoring.Throw          `json:"throw"`
	Recorded bool                   `json:"recorded"`
	Previous scoring.PlayerLegState `json:"previous"`
}

// State is the complete, serializable state of one match.
type State struct {
	Config            Config                    `json:"config"`
	Status            Status                    `json:"status"`
	Phase             Phase                     `json:"phase"`
	LegStartingPlayer scoring.PlayerID          `json:"legStartingPlayer"`
	CurrentPlayer     scoring.PlayerID          `json:"currentPlayer"`
	CurrentLegNumber  int                       `json:"currentLegNumber"`
	Players           [2]scoring.PlayerLegState `json:"players"`
	LegsWon           [2]int                    `json:"legsWon"`
	Legs              []Leg                     `json:"legs"`
	History           []HistoryEntry            `json:"history"`
	PendingDarts      []scoring.Dart            `json:"pendingDarts"`
	Winner            scoring.PlayerID          `json:"winner"`
}

// NewState returns the state of a match before its first throw.
func NewState(cfg Config) (State, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	s := State{
		Config:            cfg,
		Status:            StatusPending,
		LegStartingPlayer: cfg.StartingPlayer,
		CurrentLegNumber:  1,
		Legs:              []Leg{},
	}
	s.resetLeg()
	s.CurrentPlayer = cfg.StartingPlayer
	return s, nil
}

// Player returns the current leg state of p.
func (s State) Player(p scoring.PlayerID) scoring.PlayerLegState {
	return s.Players[p.Index()]
}

// LegsToWin is derived from the match type.
func (s State) LegsToWin() int {
	return s.Config.MatchType.LegsToWin()
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	for i := range s.Players {
		c.Players[i] = s.Players[i].Clone()
	}
	c.Legs = make([]Leg, len(s.Legs))
	for i, l := range s.Legs {
		c.Legs[i] = l.clone()
	}
	c.History = make([]HistoryEntry, len(s.History))
	for i, h := range s.History {
		h.Previous = h.Previous.Clone()
		c.History[i] = h
	}
	c.PendingDarts = append([]scoring.Dart{}, s.PendingDarts...)
	return c
}

// resetLeg puts both players back at the starting score with an empty log.
func (s *State) resetLeg() {
	for i := range s.Players {
		s.Players[i] = scoring.NewPlayerLegState(s.Config.StartingScore)
	}
	s.History = []HistoryEntry{}
	s.PendingDarts = []scoring.Dart{}
	s.Phase = PhaseAwaitingThrow
}
