package model

import "time"

// EventKind identifies the procedure an Event reconstructs.
type EventKind string

const (
	EventHandover EventKind = "handover"
	EventCall     EventKind = "call"
	EventRRC      EventKind = "rrc"
)

// Outcome is the terminal state of a reconstructed event.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCompleted Outcome = "completed"
	OutcomeDrop      Outcome = "drop"
	// OutcomeUnknown marks events still open at end of input. They are
	// excluded from success/failure totals.
	OutcomeUnknown Outcome = "unknown"
)

// Event is a network procedure reconstructed from sample event markers:
// a handover attempt, a voice call, or an RRC connection transition.
type Event struct {
	Kind       EventKind `json:"kind"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end,omitzero"` // zero when unterminated
	Outcome    Outcome   `json:"outcome"`
	Cause      string    `json:"cause,omitempty"` // failure or drop attribution
	SourceCell string    `json:"source_cell,omitempty"`
	TargetCell string    `json:"target_cell,omitempty"`
	At         *GeoPoint `json:"at,omitempty"` // location of the opening sample
}

// Duration returns End−Start, or zero for unterminated events.
func (e *Event) Duration() time.Duration {
	if e.End.IsZero() {
		return 0
	}
	return e.End.Sub(e.Start)
}
