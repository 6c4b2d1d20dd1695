package relay

// Write records a single line write performed by the fake.
type Write struct {
	Link  Link
	Level int
}

// FakeDriver is a test double that records relay writes.
type FakeDriver struct {
	// ActiveLow is the wiring polarity used for level mapping.
	ActiveLow bool

	// Writes contains every line write in order.
	Writes []Write

	// Levels holds the last level written per link.
	Levels map[Link]int

	// ApplyError, if set, will be returned by Apply()
	ApplyError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeDriver creates a FakeDriver with both lines at the
// de-energized level, mirroring the real driver's claim-time state.
func NewFakeDriver(activeLow bool) *FakeDriver {
	deEnergized := LevelFor(true, activeLow)
	return &FakeDriver{
		ActiveLow: activeLow,
		Levels: map[Link]int{
			Inverter: deEnergized,
			Charger:  deEnergized,
		},
	}
}

// Apply records the write for the given link.
func (f *FakeDriver) Apply(link Link, enabled bool) error {
	if f.ApplyError != nil {
		return f.ApplyError
	}

	level := LevelFor(enabled, f.ActiveLow)
	f.Writes = append(f.Writes, Write{Link: link, Level: level})
	f.Levels[link] = level
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeDriver) Reset() {
	deEnergized := LevelFor(true, f.ActiveLow)
	f.Writes = nil
	f.Levels = map[Link]int{Inverter: deEnergized, Charger: deEnergized}
	f.Closed = false
	f.ApplyError = nil
}
