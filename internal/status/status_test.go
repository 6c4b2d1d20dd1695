package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/victron-relay/internal/links"
)

func testConfig() Config {
	return Config{
		SerialPort:      "/dev/ttyACM0",
		Baud:            115200,
		Broker:          "tcp://192.168.1.200:1883",
		HTTPAddr:        ":8080",
		HeartbeatMs:     900000,
		ThresholdEURkWh: 0.20,
		Area:            "lt",
		ActiveLow:       true,
		PinON:           26,
		PinCH:           16,
	}
}

func TestTrackerSnapshot(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	tr.SetLinks(links.Snapshot{ON: true, CH: false}, links.EventCounts{CHDisabled: 1})
	tr.SetMode("force_grid")
	tr.SetPrice(0.185, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	tr.SetScheduleHours(24)
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.ON != links.StateEnabled {
		t.Errorf("ON: got %s, want ENABLED", snap.ON)
	}
	if snap.CH != links.StateDisabled {
		t.Errorf("CH: got %s, want DISABLED", snap.CH)
	}
	if snap.Counts.CHDisabled != 1 {
		t.Errorf("counts: %+v", snap.Counts)
	}
	if snap.Mode != "force_grid" {
		t.Errorf("mode: got %q", snap.Mode)
	}
	if !snap.HasPrice || snap.Price != 0.185 {
		t.Errorf("price: got has=%v price=%v", snap.HasPrice, snap.Price)
	}
	if snap.ScheduleHours != 24 {
		t.Errorf("schedule hours: got %d", snap.ScheduleHours)
	}
	if !snap.MQTTConnected {
		t.Error("mqtt connected not set")
	}
	if snap.StartTime != start {
		t.Errorf("start time: got %v", snap.StartTime)
	}
	if snap.Now.IsZero() {
		t.Error("Now not set by Snapshot()")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if got := snap.Uptime(); got != 90*time.Second {
		t.Errorf("uptime: got %v, want 90s", got)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())
	tr.SetLinks(links.Snapshot{ON: true, CH: true}, links.EventCounts{})
	tr.SetPrice(0.23, start)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.ON != "ENABLED" || parsed.Status.CH != "ENABLED" {
		t.Errorf("link states: got ON=%q CH=%q", parsed.Status.ON, parsed.Status.CH)
	}
	if parsed.Status.Mode != "schedule" {
		t.Errorf("default mode: got %q, want schedule", parsed.Status.Mode)
	}
	if parsed.Status.Price == nil || *parsed.Status.Price != 0.23 {
		t.Errorf("price: got %v", parsed.Status.Price)
	}
	if parsed.Status.Config.Area != "lt" {
		t.Errorf("config area: got %q", parsed.Status.Config.Area)
	}
	if parsed.Status.Event != "" {
		t.Errorf("web JSON should not carry an event, got %q", parsed.Status.Event)
	}
}

func TestFormatJSONUnknownStates(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.ON != "UNKNOWN" || parsed.Status.CH != "UNKNOWN" {
		t.Errorf("unset states: got ON=%q CH=%q, want UNKNOWN", parsed.Status.ON, parsed.Status.CH)
	}
	if parsed.Status.Price != nil {
		t.Errorf("price should be omitted when unset, got %v", *parsed.Status.Price)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	tr.SetLinks(links.Snapshot{ON: false, CH: true}, links.EventCounts{ONDisabled: 1})

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q", parsed.Status.Reason)
	}
	if parsed.Status.ON != "DISABLED" {
		t.Errorf("ON: got %q", parsed.Status.ON)
	}
	if parsed.Status.Counts.ONDisabled != 1 {
		t.Errorf("counts: %+v", parsed.Status.Counts)
	}
}
