// Package links holds the logical state of the two Victron links.
// State changes always pass through the relay driver, so the logical
// enabled flags and the physical line levels can never drift apart.
package links

import "time"

// State represents the logical state of a link.
type State string

const (
	StateEnabled  State = "ENABLED"
	StateDisabled State = "DISABLED"
)

// EventType represents a link state transition.
type EventType string

const (
	EventONEnabled  EventType = "ON_ENABLED"
	EventONDisabled EventType = "ON_DISABLED"
	EventCHEnabled  EventType = "CH_ENABLED"
	EventCHDisabled EventType = "CH_DISABLED"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	ONState   State
	CHState   State
}

// EventCounts tracks the number of each transition since startup.
type EventCounts struct {
	ONEnabled  int
	ONDisabled int
	CHEnabled  int
	CHDisabled int
}

// Snapshot is a point-in-time view of both links.
type Snapshot struct {
	ON bool // inverter link enabled
	CH bool // charger link enabled
}

func stateFor(enabled bool) State {
	if enabled {
		return StateEnabled
	}
	return StateDisabled
}
