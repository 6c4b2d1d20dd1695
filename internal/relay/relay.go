// Package relay drives the two Victron remote-control link relays.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
//
// Each link is wired through a Normally-Closed relay contact: a link is
// "enabled" when the relay is de-energized and the NC path is intact.
package relay

// Link identifies one of the two Victron links.
type Link int

const (
	// Inverter is the ON link (inverter enable).
	Inverter Link = iota
	// Charger is the CH link (charger enable).
	Charger
)

// String returns the protocol name of the link ("ON" or "CH").
func (l Link) String() string {
	if l == Inverter {
		return "ON"
	}
	return "CH"
}

// Driver applies logical link state to the relay hardware.
type Driver interface {
	// Apply drives the relay for link so that the NC contact matches
	// enabled: enabled = relay de-energized = link closed.
	Apply(link Link, enabled bool) error

	// Close releases relay resources, leaving both links enabled.
	Close() error
}

// Default pin assignments (BCM numbering)
const (
	DefaultPinON = 26 // Inverter link relay
	DefaultPinCH = 16 // Charger link relay
)

// LevelFor returns the physical line value (0 or 1) that puts the relay
// in the state matching enabled. Two inversions stack: enabled means
// de-energized, and active-low boards energize on the low level, so
// under active-low wiring the level equals the enabled flag.
func LevelFor(enabled, activeLow bool) int {
	if enabled == activeLow {
		return 1
	}
	return 0
}
