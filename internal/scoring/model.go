// Package scoring implements the 501 double-out rules for a single turn:
// bust and checkout detection, dart-to-turn accumulation and the
// statistics derived from committed throws.
package scoring

import (
	"fmt"
	"strings"
)

const (
	// MaxTurnScore is the highest score three darts can make.
	MaxTurnScore = 180
	// DartsPerTurn is the number of darts in a full turn.
	DartsPerTurn = 3
)

// PlayerID identifies one of the two players of a match. The zero value means none.
type PlayerID int

const (
	NoPlayer PlayerID = iota
	Player1
	Player2
)

// Other returns the opponent of p.
func (p PlayerID) Other() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

// Valid reports whether p is Player1 or Player2.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

// Index returns the zero-based slot of p. It must only be called on valid ids.
func (p PlayerID) Index() int {
	return int(p) - 1
}

func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "none"
	}
}

// ParsePlayerID accepts "player1", "player2", "1" or "2".
func ParsePlayerID(s string) (PlayerID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player1", "1":
		return Player1, nil
	case "player2", "2":
		return Player2, nil
	}
	return NoPlayer, fmt.Errorf("unknown player %q", s)
}

// Throw is one committed turn. Bust turns are stored with Score 0 and Bust set.
type Throw struct {
	Score           int  `json:"score"`
	DartsInTurn     int  `json:"darts"`
	IsDoubleAttempt bool `json:"isDoubleAttempt,omitempty"`
	DoubleHit       bool `json:"doubleHit,omitempty"`
	Bust            bool `json:"bust,omitempty"`
}

// PlayerLegState is one player's state within the current leg.
type PlayerLegState struct {
	RemainingScore      int     `json:"remainingScore"`
	DartsThrownThisLeg  int     `json:"dartsThrown"`
	ThrowHistory        []Throw `json:"throws"`
	CheckoutAttempts    int     `json:"checkoutAttempts"`
	SuccessfulCheckouts int     `json:"successfulCheckouts"`
	OneEightyTurns      []int   `json:"oneEightyTurns"`
	HighestCheckout     int     `json:"highestCheckout"`
}

// NewPlayerLegState returns the state at the start of a leg.
func NewPlayerLegState(startingScore int) PlayerLegState {
	return PlayerLegState{
		RemainingScore: startingScore,
		ThrowHistory:   []Throw{},
		OneEightyTurns: []int{},
	}
}

// Clone returns a deep copy so snapshots never alias live slices.
func (s PlayerLegState) Clone() PlayerLegState {
	c := s
	c.ThrowHistory = append([]Throw{}, s.ThrowHistory...)
	c.OneEightyTurns = append([]int{}, s.OneEightyTurns...)
	return c
}
