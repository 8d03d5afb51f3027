package match

import "github.com/merev/ds-scoring-engine/internal/scoring"

type EventType string

const (
	EventDartBuffered    EventType = "dart_buffered"
	EventDartUndone      EventType = "dart_undone"
	EventTurnCommitted   EventType = "turn_committed"
	EventTurnUndone      EventType = "turn_undone"
	EventThrowEdited     EventType = "throw_edited"
	EventLegReopened     EventType = "leg_reopened"
	EventCheckoutPending EventType = "checkout_pending"
	EventLegWon          EventType = "leg_won"
	EventNextLeg         EventType = "next_leg"
	EventMatchFinished   EventType = "match_finished"
	EventFinishConfirmed EventType = "finish_confirmed"
	EventFinishReverted  EventType = "finish_reverted"
)

// Event describes one transition caused by a command.
type Event struct {
	Type      EventType        `json:"type"`
	Player    scoring.PlayerID `json:"player,omitempty"`
	Outcome   string           `json:"outcome,omitempty"`
	Throw     *scoring.Throw   `json:"throw,omitempty"`
	Dart      *scoring.Dart    `json:"dart,omitempty"`
	Remaining int              `json:"remaining"`
	LegNumber int              `json:"legNumber,omitempty"`
	Leg       *Leg             `json:"leg,omitempty"`
	Result    *FinishResult    `json:"result,omitempty"`
}

// Committed reports whether the event changed committed history, i.e.
// whether a snapshot should be persisted after it.
func (e Event) Committed() bool {
	return e.Type != EventDartBuffered && e.Type != EventDartUndone
}

// HasCommitted reports whether any event in events is committed.
func HasCommitted(events []Event) bool {
	for _, e := range events {
		if e.Committed() {
			return true
		}
	}
	return false
}

// FindResult returns the finish result carried by events, if any.
func FindResult(events []Event) (FinishResult, bool) {
	for _, e := range events {
		if e.Type == EventFinishConfirmed && e.Result != nil {
			return *e.Result, true
		}
	}
	return FinishResult{}, false
}
