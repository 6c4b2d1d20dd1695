package links

import (
	"sync"
	"time"

	"github.com/sweeney/victron-relay/internal/relay"
)

// Store owns the logical link states and the relay driver.
//
// Commands are absolute, not relative: setting a link to its current
// state is a successful no-op and emits no event. The mutex is needed
// because the serial console, the web API and the price scheduler all
// mutate the store.
type Store struct {
	mu     sync.Mutex
	driver relay.Driver
	on     bool
	ch     bool
	counts EventCounts
	notify func(Event)
	now    func() time.Time
}

// NewStore creates a Store with both links enabled — the fail-safe
// default, matching the level the driver asserted at claim time.
// notify, if non-nil, is called after every state transition (not for
// idempotent sets); it runs outside the store lock.
func NewStore(driver relay.Driver, notify func(Event)) *Store {
	return &Store{
		driver: driver,
		on:     true,
		ch:     true,
		notify: notify,
		now:    time.Now,
	}
}

// ApplyAll drives both relays to the current logical state. Called once
// at startup to establish the logical/physical invariant; electrically
// a no-op after the driver's claim-time fail-safe.
func (s *Store) ApplyAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.driver.Apply(relay.Inverter, s.on); err != nil {
		return err
	}
	return s.driver.Apply(relay.Charger, s.ch)
}

// SetInverter sets the ON link.
func (s *Store) SetInverter(enabled bool) error {
	return s.set(relay.Inverter, enabled)
}

// SetCharger sets the CH link.
func (s *Store) SetCharger(enabled bool) error {
	return s.set(relay.Charger, enabled)
}

// SetAll sets both links, ON first then CH. On a driver error the
// remaining write is skipped and state is unchanged for that link.
func (s *Store) SetAll(enabled bool) error {
	if err := s.set(relay.Inverter, enabled); err != nil {
		return err
	}
	return s.set(relay.Charger, enabled)
}

func (s *Store) set(link relay.Link, enabled bool) error {
	s.mu.Lock()

	// Drive the relay before mutating, so a failed write leaves the
	// logical state matching the last successful line level.
	if err := s.driver.Apply(link, enabled); err != nil {
		s.mu.Unlock()
		return err
	}

	var ev *Event
	cur := &s.on
	if link == relay.Charger {
		cur = &s.ch
	}
	if *cur != enabled {
		*cur = enabled
		s.count(link, enabled)
		ev = &Event{
			Timestamp: s.now(),
			Type:      eventTypeFor(link, enabled),
			ONState:   stateFor(s.on),
			CHState:   stateFor(s.ch),
		}
	}
	notify := s.notify
	s.mu.Unlock()

	if ev != nil && notify != nil {
		notify(*ev)
	}
	return nil
}

func (s *Store) count(link relay.Link, enabled bool) {
	switch {
	case link == relay.Inverter && enabled:
		s.counts.ONEnabled++
	case link == relay.Inverter && !enabled:
		s.counts.ONDisabled++
	case link == relay.Charger && enabled:
		s.counts.CHEnabled++
	default:
		s.counts.CHDisabled++
	}
}

func eventTypeFor(link relay.Link, enabled bool) EventType {
	if link == relay.Inverter {
		if enabled {
			return EventONEnabled
		}
		return EventONDisabled
	}
	if enabled {
		return EventCHEnabled
	}
	return EventCHDisabled
}

// Snapshot returns a point-in-time copy of both link states.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ON: s.on, CH: s.ch}
}

// Counts returns a copy of the transition counts.
func (s *Store) Counts() EventCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}
