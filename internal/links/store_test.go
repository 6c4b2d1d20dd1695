package links

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/victron-relay/internal/relay"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStoreDefaults(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	s := NewStore(driver, nil)

	snap := s.Snapshot()
	if !snap.ON || !snap.CH {
		t.Errorf("expected both links enabled at start, got %+v", snap)
	}
	if len(driver.Writes) != 0 {
		t.Errorf("expected no writes before ApplyAll, got %d", len(driver.Writes))
	}
}

func TestStoreApplyAll(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	s := NewStore(driver, nil)

	if err := s.ApplyAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(driver.Writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(driver.Writes))
	}
	// Both enabled, active-low: de-energized is high.
	if driver.Levels[relay.Inverter] != 1 || driver.Levels[relay.Charger] != 1 {
		t.Errorf("expected both lines high, got ON=%d CH=%d",
			driver.Levels[relay.Inverter], driver.Levels[relay.Charger])
	}
}

func TestStoreSetInverter(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	s := NewStore(driver, nil)

	if err := s.SetInverter(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := s.Snapshot()
	if snap.ON {
		t.Error("ON should be disabled")
	}
	if !snap.CH {
		t.Error("CH should be unaffected by ON commands")
	}
	// Disabled = energized = low on an active-low board.
	if driver.Levels[relay.Inverter] != 0 {
		t.Errorf("ON level: got %d, want 0", driver.Levels[relay.Inverter])
	}
}

func TestStoreSetChargerIndependent(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	s := NewStore(driver, nil)

	if err := s.SetCharger(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := s.Snapshot()
	if !snap.ON {
		t.Error("ON should be unaffected by CH commands")
	}
	if snap.CH {
		t.Error("CH should be disabled")
	}
}

func TestStoreSetAll(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	s := NewStore(driver, nil)

	if err := s.SetAll(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := s.Snapshot()
	if snap.ON || snap.CH {
		t.Errorf("expected both disabled, got %+v", snap)
	}
	if len(driver.Writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(driver.Writes))
	}
	// ON is applied first.
	if driver.Writes[0].Link != relay.Inverter || driver.Writes[1].Link != relay.Charger {
		t.Errorf("write order: got %v then %v, want ON then CH",
			driver.Writes[0].Link, driver.Writes[1].Link)
	}
}

func TestStoreIdempotentSet(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	var events []Event
	s := NewStore(driver, func(ev Event) { events = append(events, ev) })

	// Already enabled: still succeeds, still writes the line, no event.
	if err := s.SetInverter(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := s.Snapshot()
	if !snap.ON {
		t.Error("ON should remain enabled (absolute semantics, no toggle)")
	}
	if len(events) != 0 {
		t.Errorf("expected no events for idempotent set, got %d", len(events))
	}
	if len(driver.Writes) != 1 {
		t.Errorf("expected the relay write to still happen, got %d writes", len(driver.Writes))
	}
	if c := s.Counts(); c != (EventCounts{}) {
		t.Errorf("expected zero counts, got %+v", c)
	}
}

func TestStoreEvents(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	var events []Event
	s := NewStore(driver, func(ev Event) { events = append(events, ev) })
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = fixedClock(start)

	s.SetCharger(false)
	s.SetCharger(true)
	s.SetAll(false)

	want := []EventType{EventCHDisabled, EventCHEnabled, EventONDisabled, EventCHDisabled}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if events[i].Type != w {
			t.Errorf("event %d: got %s, want %s", i, events[i].Type, w)
		}
		if events[i].Timestamp != start {
			t.Errorf("event %d: timestamp not from injected clock", i)
		}
	}

	// Event carries both resulting states.
	if events[0].ONState != StateEnabled || events[0].CHState != StateDisabled {
		t.Errorf("event 0 states: got ON=%s CH=%s", events[0].ONState, events[0].CHState)
	}

	counts := s.Counts()
	if counts.CHDisabled != 2 || counts.CHEnabled != 1 || counts.ONDisabled != 1 || counts.ONEnabled != 0 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestStoreDriverError(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	driver.ApplyError = errors.New("simulated error")
	var events []Event
	s := NewStore(driver, func(ev Event) { events = append(events, ev) })

	if err := s.SetInverter(false); err == nil {
		t.Fatal("expected error")
	}

	// State unchanged, no event.
	if snap := s.Snapshot(); !snap.ON {
		t.Error("ON should be unchanged after driver error")
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestStoreSetAllStopsOnError(t *testing.T) {
	driver := relay.NewFakeDriver(true)
	driver.ApplyError = errors.New("simulated error")
	s := NewStore(driver, nil)

	if err := s.SetAll(false); err == nil {
		t.Fatal("expected error")
	}
	if len(driver.Writes) != 0 {
		t.Errorf("expected no writes, got %d", len(driver.Writes))
	}
	if snap := s.Snapshot(); !snap.ON || !snap.CH {
		t.Errorf("expected state unchanged, got %+v", snap)
	}
}
