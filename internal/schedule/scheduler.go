package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/victron-relay/internal/links"
	"github.com/sweeney/victron-relay/internal/status"
)

// Mode selects how the charger link is driven.
type Mode string

const (
	// ModeSchedule follows the hourly price schedule.
	ModeSchedule Mode = "schedule"
	// ModeForceGrid keeps the charger enabled regardless of price.
	ModeForceGrid Mode = "force_grid"
)

// ErrBadMode is returned by SetMode for an unrecognized mode.
var ErrBadMode = errors.New("mode must be schedule|force_grid")

// tickInterval is the run loop cadence; fetchRetry paces refetch
// attempts after a failed or empty fetch so the price API is not
// hammered.
const (
	tickInterval = 55 * time.Second
	fetchRetry   = 30 * time.Minute
)

// Scheduler refreshes the day's price schedule and applies the current
// hour's action to the charger link at hour boundaries.
type Scheduler struct {
	mu           sync.Mutex
	fetcher      Fetcher
	store        *links.Store
	tracker      *status.Tracker // optional
	threshold    float64
	tz           *time.Location
	sched        Schedule
	mode         Mode
	lastApplied  time.Time // hour start of the last applied action
	lastFetchTry time.Time
	now          func() time.Time
}

// New creates a Scheduler. tracker may be nil.
func New(fetcher Fetcher, store *links.Store, tracker *status.Tracker, threshold float64, tz *time.Location) *Scheduler {
	s := &Scheduler{
		fetcher:   fetcher,
		store:     store,
		tracker:   tracker,
		threshold: threshold,
		tz:        tz,
		mode:      ModeSchedule,
		now:       time.Now,
	}
	if tracker != nil {
		tracker.SetMode(string(ModeSchedule))
	}
	return s
}

// Mode returns the current override mode.
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches between schedule and force_grid and applies the
// resulting action for the current hour immediately.
func (s *Scheduler) SetMode(mode Mode) error {
	if mode != ModeSchedule && mode != ModeForceGrid {
		return ErrBadMode
	}

	s.mu.Lock()
	s.mode = mode
	s.lastApplied = time.Time{} // reapply current hour
	s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.SetMode(string(mode))
	}
	log.Printf("schedule: override mode set to %s", mode)

	s.applyHour(s.now())
	return nil
}

// Schedule returns a copy of the loaded schedule.
func (s *Scheduler) Schedule() Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Schedule, len(s.sched))
	copy(out, s.sched)
	return out
}

// Threshold returns the configured price threshold in EUR/kWh.
func (s *Scheduler) Threshold() float64 {
	return s.threshold
}

// CurrentEntry returns the schedule entry for the current hour.
func (s *Scheduler) CurrentEntry() (Entry, bool) {
	hour := s.hourStart(s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.ForHour(hour)
}

// Reload fetches today's prices and rebuilds the schedule.
// Returns the number of scheduled hours.
func (s *Scheduler) Reload(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	s.lastFetchTry = now
	s.mu.Unlock()

	prices, err := s.fetcher.FetchDay(ctx, now.In(s.tz))
	if err != nil {
		return 0, fmt.Errorf("reload schedule: %w", err)
	}
	sched := Build(prices, s.threshold)

	s.mu.Lock()
	s.sched = sched
	s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.SetScheduleHours(len(sched))
	}

	var expensive []string
	for _, e := range sched {
		if e.Action == ActionChargeOff {
			expensive = append(expensive, e.Hour.Format("15"))
		}
	}
	log.Printf("schedule: loaded %d hours, expensive (> %.2f EUR/kWh): %v",
		len(sched), s.threshold, expensive)

	return len(sched), nil
}

// Tick refreshes the schedule if stale, publishes the current price,
// and applies the hour's action. Called from Run; exported for tests
// and for callers that drive their own cadence.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()

	if s.needsRefresh(now) {
		if _, err := s.Reload(ctx); err != nil {
			log.Printf("schedule: %v", err)
		}
	}

	hour := s.hourStart(now)
	s.mu.Lock()
	entry, ok := s.sched.ForHour(hour)
	s.mu.Unlock()
	if ok && s.tracker != nil {
		s.tracker.SetPrice(entry.Price, entry.Hour)
	}

	s.applyHour(now)
}

// Run drives Tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.Tick(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) hourStart(now time.Time) time.Time {
	local := now.In(s.tz)
	y, m, d := local.Date()
	return time.Date(y, m, d, local.Hour(), 0, 0, 0, s.tz)
}

// needsRefresh reports whether the schedule is missing or from a
// previous day, rate-limited by fetchRetry.
func (s *Scheduler) needsRefresh(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := true
	if day, ok := s.sched.Day(); ok {
		stale = !sameDay(day, now.In(s.tz))
	}
	if !stale {
		return false
	}
	if s.lastFetchTry.IsZero() {
		return true
	}
	return now.Sub(s.lastFetchTry) >= fetchRetry
}

// applyHour applies the action for the hour containing now, once per
// hour boundary (or immediately after a mode switch).
func (s *Scheduler) applyHour(now time.Time) {
	hour := s.hourStart(now)

	s.mu.Lock()
	if s.lastApplied.Equal(hour) {
		s.mu.Unlock()
		return
	}
	s.lastApplied = hour
	mode := s.mode
	entry, ok := s.sched.ForHour(hour)
	s.mu.Unlock()

	if mode == ModeForceGrid {
		if err := s.store.SetCharger(true); err != nil {
			log.Printf("schedule: force_grid apply: %v", err)
			return
		}
		log.Printf("schedule: override=force_grid, CH enabled")
		return
	}

	if !ok {
		log.Printf("schedule: no action for hour %s", hour.Format("15:04"))
		return
	}

	enable := entry.Action == ActionChargeOn
	if err := s.store.SetCharger(enable); err != nil {
		log.Printf("schedule: apply %s: %v", entry.Action, err)
		return
	}
	log.Printf("schedule: %s for hour %s (%.5f EUR/kWh)",
		entry.Action, hour.Format("15:04"), entry.Price)
}
