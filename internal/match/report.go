package match

import "github.com/merev/ds-scoring-engine/internal/scoring"

// PlayerSummary is the per-player part of snapshots and finish results.
type PlayerSummary struct {
	LegsWon          int     `json:"legsWon"`
	DartsThrown      int     `json:"dartsThrown"`
	Average          float64 `json:"average"`
	FirstNineAverage float64 `json:"firstNineAverage"`
}

// Snapshot is handed to the persistence port after every committed change.
type Snapshot struct {
	Status           Status        `json:"status"`
	CurrentLegNumber int           `json:"currentLegNumber"`
	Player1          PlayerSummary `json:"player1"`
	Player2          PlayerSummary `json:"player2"`
	Legs             []Leg         `json:"legs"`
}

// OneEighties lists a player's maximums by the match dart they started on.
type OneEighties struct {
	Count int   `json:"count"`
	Darts []int `json:"darts"`
}

// FinishResult is the immutable outcome of a confirmed match.
type FinishResult struct {
	WinnerID        scoring.PlayerID `json:"winnerId"`
	Player1Stats    PlayerSummary    `json:"player1Stats"`
	Player2Stats    PlayerSummary    `json:"player2Stats"`
	HighestCheckout struct {
		Player1 int `json:"player1"`
		Player2 int `json:"player2"`
	} `json:"highestCheckout"`
	OneEighties struct {
		Player1 OneEighties `json:"player1"`
		Player2 OneEighties `json:"player2"`
	} `json:"oneEighties"`
}

// legThrows returns p's throws per leg, completed legs first, then the
// current leg when it has any.
func (s State) legThrows(p scoring.PlayerID) [][]scoring.Throw {
	out := make([][]scoring.Throw, 0, len(s.Legs)+1)
	for _, l := range s.Legs {
		out = append(out, l.Throws(p))
	}
	if current := s.Player(p).ThrowHistory; len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// Summary derives p's match statistics from the committed history.
func (s State) Summary(p scoring.PlayerID) PlayerSummary {
	legs := s.legThrows(p)
	darts := 0
	for _, throws := range legs {
		_, d := scoring.Totals(throws)
		darts += d
	}
	return PlayerSummary{
		LegsWon:          s.LegsWon[p.Index()],
		DartsThrown:      darts,
		Average:          scoring.LegsAverage(legs...),
		FirstNineAverage: scoring.FirstNineAverage(legs...),
	}
}

// Snapshot summarizes s.
func (s State) Snapshot() Snapshot {
	legs := make([]Leg, len(s.Legs))
	for i, l := range s.Legs {
		legs[i] = l.clone()
	}
	return Snapshot{
		Status:           s.Status,
		CurrentLegNumber: s.CurrentLegNumber,
		Player1:          s.Summary(scoring.Player1),
		Player2:          s.Summary(scoring.Player2),
		Legs:             legs,
	}
}

// Checkouts lists the checkout of every completed leg.
func (s State) Checkouts() []scoring.Checkout {
	out := make([]scoring.Checkout, 0, len(s.Legs))
	for _, l := range s.Legs {
		out = append(out, l.HighestCheckout)
	}
	return out
}

// Result aggregates the finish result across all legs.
func (s State) Result() FinishResult {
	var r FinishResult
	r.WinnerID = s.Winner
	r.Player1Stats = s.Summary(scoring.Player1)
	r.Player2Stats = s.Summary(scoring.Player2)

	checkouts := s.Checkouts()
	r.HighestCheckout.Player1 = scoring.HighestCheckout(checkouts, scoring.Player1)
	r.HighestCheckout.Player2 = scoring.HighestCheckout(checkouts, scoring.Player2)

	p1 := s.legThrows(scoring.Player1)
	p2 := s.legThrows(scoring.Player2)
	r.OneEighties.Player1 = OneEighties{Count: scoring.OneEightyCount(p1...), Darts: scoring.OneEightyDarts(p1...)}
	r.OneEighties.Player2 = OneEighties{Count: scoring.OneEightyCount(p2...), Darts: scoring.OneEightyDarts(p2...)}
	return r
}
