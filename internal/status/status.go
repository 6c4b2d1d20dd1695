// Package status provides a thread-safe status tracker for the
// victron-relay daemon. It is read by the HTTP handlers and serialized
// into MQTT system event payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/victron-relay/internal/links"
)

// Config contains daemon configuration for display.
type Config struct {
	SerialPort      string
	Baud            int
	Broker          string
	HTTPAddr        string
	HeartbeatMs     int64
	ThresholdEURkWh float64
	Area            string
	ActiveLow       bool
	PinON           int
	PinCH           int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	ON            links.State
	CH            links.State
	Counts        links.EventCounts
	Mode          string // scheduler override mode
	Price         float64
	PriceHour     time.Time
	HasPrice      bool
	ScheduleHours int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetLinks sets the link states and transition counts.
// Called at startup and from the store's change hook.
func (t *Tracker) SetLinks(snap links.Snapshot, counts links.EventCounts) {
	t.mu.Lock()
	t.snap.ON = linkState(snap.ON)
	t.snap.CH = linkState(snap.CH)
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMode sets the scheduler override mode.
func (t *Tracker) SetMode(mode string) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.mu.Unlock()
}

// SetPrice sets the current hour's price.
func (t *Tracker) SetPrice(price float64, hour time.Time) {
	t.mu.Lock()
	t.snap.Price = price
	t.snap.PriceHour = hour
	t.snap.HasPrice = true
	t.mu.Unlock()
}

// SetScheduleHours sets the number of scheduled hours loaded.
func (t *Tracker) SetScheduleHours(n int) {
	t.mu.Lock()
	t.snap.ScheduleHours = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

func linkState(enabled bool) links.State {
	if enabled {
		return links.StateEnabled
	}
	return links.StateDisabled
}
