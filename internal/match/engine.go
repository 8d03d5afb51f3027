// Package match drives a two-player 501 match: the leg state machine,
// leg and match progression, and the undo/edit history. Every command is
// applied to a copy of the state, so a failed command leaves no trace.
package match

import (
	"fmt"
	"time"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// Command is an input to the engine.
type Command interface {
	commandName() string
}

// SubmitTurn enters a whole turn. DartsInTurn defaults to 3.
type SubmitTurn struct {
	Score           int
	DartsInTurn     int
	IsDoubleAttempt bool
	DoubleHit       bool
}

// SubmitDart enters a single dart from an auto-scoring board.
type SubmitDart struct {
	Dart scoring.Dart
}

// EndTurn closes a dart-by-dart turn before the third dart.
type EndTurn struct{}

// ConfirmCheckout records how the pending checkout was thrown.
type ConfirmCheckout struct {
	CheckoutDarts  int
	DoubleAttempts int
}

// UndoLast reverts the last dart or turn.
type UndoLast struct{}

// EditThrow corrects the score of a committed throw. LegIndex equal to the
// number of completed legs addresses the current leg.
type EditThrow struct {
	LegIndex   int
	Player     scoring.PlayerID
	ThrowIndex int
	NewScore   int
}

// ConfirmFinish accepts or reverts a won match.
type ConfirmFinish struct {
	Confirm bool
}

func (SubmitTurn) commandName() string      { return "submit_turn" }
func (SubmitDart) commandName() string      { return "submit_dart" }
func (EndTurn) commandName() string         { return "end_turn" }
func (ConfirmCheckout) commandName() string { return "confirm_checkout" }
func (UndoLast) commandName() string        { return "undo_last" }
func (EditThrow) commandName() string       { return "edit_throw" }
func (ConfirmFinish) commandName() string   { return "confirm_finish" }

// CommandName returns a stable name for logging.
func CommandName(c Command) string {
	return c.commandName()
}

// Apply is the pure reducer: it returns the next state and the events the
// command produced. s is never modified.
func Apply(proc *scoring.Processor, s State, cmd Command, now time.Time) (State, []Event, error) {
	next := s.Clone()
	var (
		events []Event
		err    error
	)
	switch c := cmd.(type) {
	case SubmitTurn:
		events, err = submitTurn(proc, &next, c)
	case SubmitDart:
		events, err = submitDart(proc, &next, c)
	case EndTurn:
		events, err = endTurn(proc, &next)
	case ConfirmCheckout:
		events, err = confirmCheckout(proc, &next, c, now)
	case UndoLast:
		events, err = undoLast(&next)
	case EditThrow:
		events, err = editThrow(proc, &next, c)
	case ConfirmFinish:
		events, err = confirmFinish(&next, c)
	default:
		err = apperrors.New(apperrors.CodeInvalidInputRange, fmt.Sprintf("unknown command %T", cmd))
	}
	if err != nil {
		return s, nil, err
	}
	return next, events, nil
}

// Engine holds the state of one match. It is not safe for concurrent use;
// callers serialize commands per match.
type Engine struct {
	proc  *scoring.Processor
	state State
	now   func() time.Time
}

// New starts a match.
func New(cfg Config, proc *scoring.Processor) (*Engine, error) {
	s, err := NewState(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{proc: proc, state: s, now: time.Now}, nil
}

// Restore resumes a match from a saved state.
func Restore(s State, proc *scoring.Processor) (*Engine, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	if !s.CurrentPlayer.Valid() || !s.LegStartingPlayer.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidConfig, "saved state has no current player")
	}
	return &Engine{proc: proc, state: s.Clone(), now: time.Now}, nil
}

// Handle applies cmd. On error the state is unchanged.
func (e *Engine) Handle(cmd Command) ([]Event, error) {
	next, events, err := Apply(e.proc, e.state, cmd, e.now())
	if err != nil {
		return nil, err
	}
	e.state = next
	return events, nil
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state.Clone()
}

// Snapshot summarizes the match for persistence.
func (e *Engine) Snapshot() Snapshot {
	return e.state.Snapshot()
}

// Suggestion returns the checkout suggestion for the player to throw.
func (e *Engine) Suggestion() (string, bool) {
	if e.state.Phase != PhaseAwaitingThrow {
		return "", false
	}
	remaining := e.state.Player(e.state.CurrentPlayer).RemainingScore
	buf := scoring.NewBuffered(e.state.PendingDarts)
	return e.proc.Table().Suggestion(remaining - buf.Sum())
}

func guardInPlay(s *State) error {
	if s.Phase == PhaseFinishPending || s.Phase == PhaseFinished {
		return apperrors.New(apperrors.CodeMatchNotInPlay, fmt.Sprintf("match is %s", s.Phase))
	}
	return nil
}
