package scoring

import (
	"fmt"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
)

// Turn is a completed turn ready for the processor.
type Turn struct {
	Score         int
	Darts         int
	DoubleAttempt bool
	DoubleHit     bool
}

// Throw converts the turn into a throw. A hit double always counts as an
// attempt.
func (t Turn) Throw() Throw {
	return Throw{
		Score:           t.Score,
		DartsInTurn:     t.Darts,
		IsDoubleAttempt: t.DoubleAttempt || t.DoubleHit,
		DoubleHit:       t.DoubleHit,
	}
}

// TurnAccumulator turns input into completed turns. remaining is the
// current player's score before the turn.
type TurnAccumulator interface {
	Feed(d Dart, remaining int) (Turn, bool, error)
	Flush() (Turn, bool)
}

// Passthrough is the accumulator for whole turns entered by a scorer. The
// dart fed is the turn total; Darts (3 when zero) and DoubleAttempt carry
// what the scorer reported about the turn.
type Passthrough struct {
	Darts         int
	DoubleAttempt bool
}

// Feed emits d as a completed turn.
func (p Passthrough) Feed(d Dart, _ int) (Turn, bool, error) {
	if d.Score < 0 || d.Score > MaxTurnScore {
		return Turn{}, false, apperrors.New(apperrors.CodeInvalidInputRange,
			fmt.Sprintf("score %d outside 0..%d", d.Score, MaxTurnScore))
	}
	darts := p.Darts
	if darts == 0 {
		darts = DartsPerTurn
	}
	if darts < 1 || darts > DartsPerTurn {
		return Turn{}, false, apperrors.New(apperrors.CodeInvalidInputRange,
			fmt.Sprintf("darts in turn %d outside 1..%d", darts, DartsPerTurn))
	}
	return Turn{Score: d.Score, Darts: darts, DoubleAttempt: p.DoubleAttempt, DoubleHit: d.Double}, true, nil
}

// Flush never has anything buffered.
func (Passthrough) Flush() (Turn, bool) {
	return Turn{}, false
}

// Buffered collects single darts until the turn is over: three darts, a
// score that finishes or busts, or an explicit Flush.
type Buffered struct {
	darts []Dart
}

// NewBuffered resumes a turn with the given darts already thrown.
func NewBuffered(pending []Dart) *Buffered {
	return &Buffered{darts: append([]Dart{}, pending...)}
}

// Feed adds a dart and returns the turn once it is complete.
func (b *Buffered) Feed(d Dart, remaining int) (Turn, bool, error) {
	if err := d.Validate(); err != nil {
		return Turn{}, false, err
	}
	if len(b.darts) >= DartsPerTurn {
		return Turn{}, false, apperrors.New(apperrors.CodeTurnInProgress, "turn already has three darts")
	}
	b.darts = append(b.darts, d)

	left := remaining - b.Sum()
	if len(b.darts) == DartsPerTurn || left <= 1 {
		turn, _ := b.Flush()
		return turn, true, nil
	}
	return Turn{}, false, nil
}

// Flush closes the turn early, e.g. on a checkout with the first or second dart.
func (b *Buffered) Flush() (Turn, bool) {
	if len(b.darts) == 0 {
		return Turn{}, false
	}
	last := b.darts[len(b.darts)-1]
	turn := Turn{
		Score:         b.Sum(),
		Darts:         len(b.darts),
		DoubleAttempt: last.Double,
		DoubleHit:     last.Double,
	}
	b.darts = b.darts[:0]
	return turn, true
}

// Pop removes the last buffered dart.
func (b *Buffered) Pop() (Dart, bool) {
	if len(b.darts) == 0 {
		return Dart{}, false
	}
	d := b.darts[len(b.darts)-1]
	b.darts = b.darts[:len(b.darts)-1]
	return d, true
}

// Sum is the total of the buffered darts.
func (b *Buffered) Sum() int {
	total := 0
	for _, d := range b.darts {
		total += d.Score
	}
	return total
}

// Darts returns a copy of the buffered darts.
func (b *Buffered) Darts() []Dart {
	return append([]Dart{}, b.darts...)
}
