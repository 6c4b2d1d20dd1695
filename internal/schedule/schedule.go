// Package schedule drives the charger link from Nord Pool day-ahead
// electricity prices: charging is disabled for hours priced above a
// EUR/kWh threshold. The inverter link is never touched by scheduling.
package schedule

import (
	"sort"
	"time"
)

// Action says what the charger link should do for one hour.
type Action string

const (
	ActionChargeOn  Action = "charge_on"
	ActionChargeOff Action = "charge_off"
)

// HourPrice is one hour of the day-ahead price curve.
type HourPrice struct {
	Hour  time.Time // start of the hour, local time
	Price float64   // EUR/kWh
}

// Entry is one scheduled hour.
type Entry struct {
	Hour   time.Time
	Price  float64
	Action Action
}

// Schedule is a day of entries, sorted by hour.
type Schedule []Entry

// Build creates a schedule from a price curve: hours priced strictly
// above threshold switch charging off.
func Build(prices []HourPrice, threshold float64) Schedule {
	sched := make(Schedule, 0, len(prices))
	for _, p := range prices {
		action := ActionChargeOn
		if p.Price > threshold {
			action = ActionChargeOff
		}
		sched = append(sched, Entry{Hour: p.Hour, Price: p.Price, Action: action})
	}
	sort.Slice(sched, func(i, j int) bool { return sched[i].Hour.Before(sched[j].Hour) })
	return sched
}

// ForHour returns the entry whose hour matches the given hour start.
func (s Schedule) ForHour(hour time.Time) (Entry, bool) {
	for _, e := range s {
		if e.Hour.Equal(hour) {
			return e, true
		}
	}
	return Entry{}, false
}

// Day returns the local date the schedule covers.
func (s Schedule) Day() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	y, m, d := s[0].Hour.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s[0].Hour.Location()), true
}
