package scoring

import "math"

// firstNineTurns is the number of turns covered by the first-nine average.
const firstNineTurns = 3

// Checkout records the score a leg was finished from.
type Checkout struct {
	Score    int      `json:"score"`
	Darts    int      `json:"darts"`
	PlayerID PlayerID `json:"playerId"`
}

// Average is the three-dart average, rounded to two decimals.
func Average(totalScore, totalDarts int) float64 {
	if totalDarts <= 0 {
		return 0
	}
	return round2(float64(totalScore) / float64(totalDarts) * 3)
}

// Totals sums the score and darts of throws.
func Totals(throws []Throw) (score, darts int) {
	for _, t := range throws {
		score += t.Score
		darts += t.DartsInTurn
	}
	return score, darts
}

// LegsAverage is the three-dart average over the throws of several legs.
func LegsAverage(legs ...[]Throw) float64 {
	var score, darts int
	for _, throws := range legs {
		s, d := Totals(throws)
		score += s
		darts += d
	}
	return Average(score, darts)
}

// FirstNineAverage is the average over the first three turns of each leg.
func FirstNineAverage(legs ...[]Throw) float64 {
	var score, darts int
	for _, throws := range legs {
		n := min(len(throws), firstNineTurns)
		s, d := Totals(throws[:n])
		score += s
		darts += d
	}
	return Average(score, darts)
}

// OneEightyCount counts maximum turns. Busts are stored as zero and never count.
func OneEightyCount(legs ...[]Throw) int {
	n := 0
	for _, throws := range legs {
		for _, t := range throws {
			if t.Score == MaxTurnScore && !t.Bust {
				n++
			}
		}
	}
	return n
}

// OneEightyDarts returns, for every 180, the match-wide number of the first
// dart of that turn.
func OneEightyDarts(legs ...[]Throw) []int {
	out := []int{}
	thrown := 0
	for _, throws := range legs {
		for _, t := range throws {
			if t.Score == MaxTurnScore && !t.Bust {
				out = append(out, thrown+1)
			}
			thrown += t.DartsInTurn
		}
	}
	return out
}

// HighestCheckout is the best checkout by player across checkouts.
func HighestCheckout(checkouts []Checkout, player PlayerID) int {
	best := 0
	for _, c := range checkouts {
		if c.PlayerID == player && c.Score > best {
			best = c.Score
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
