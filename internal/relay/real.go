//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives relays on actual hardware using the Linux GPIO
// character device.
type RealDriver struct {
	chip      *gpiocdev.Chip
	onLine    *gpiocdev.Line
	chLine    *gpiocdev.Line
	activeLow bool
}

// NewRealDriver claims the two relay lines on the given chip.
//
// Both lines are requested as outputs with the de-energized level as
// their initial value, so the links are held closed (enabled) from the
// moment the lines are claimed — before any logical state exists.
func NewRealDriver(chipName string, pinON, pinCH int, activeLow bool) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	deEnergized := LevelFor(true, activeLow)

	onLine, err := chip.RequestLine(pinON, gpiocdev.AsOutput(deEnergized))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request ON pin %d: %w", pinON, err)
	}

	chLine, err := chip.RequestLine(pinCH, gpiocdev.AsOutput(deEnergized))
	if err != nil {
		onLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request CH pin %d: %w", pinCH, err)
	}

	return &RealDriver{
		chip:      chip,
		onLine:    onLine,
		chLine:    chLine,
		activeLow: activeLow,
	}, nil
}

// Apply writes the line level matching enabled for the given link.
func (d *RealDriver) Apply(link Link, enabled bool) error {
	line := d.onLine
	if link == Charger {
		line = d.chLine
	}
	if err := line.SetValue(LevelFor(enabled, d.activeLow)); err != nil {
		return fmt.Errorf("set %s pin: %w", link, err)
	}
	return nil
}

// Close drives both lines back to the de-energized level before
// releasing them, so the Victron links stay closed when the daemon
// exits. The kernel holds the last driven value on release.
func (d *RealDriver) Close() error {
	var errs []error

	deEnergized := LevelFor(true, d.activeLow)

	if d.onLine != nil {
		if err := d.onLine.SetValue(deEnergized); err != nil {
			errs = append(errs, fmt.Errorf("park ON pin: %w", err))
		}
		if err := d.onLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ON pin: %w", err))
		}
	}
	if d.chLine != nil {
		if err := d.chLine.SetValue(deEnergized); err != nil {
			errs = append(errs, fmt.Errorf("park CH pin: %w", err))
		}
		if err := d.chLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close CH pin: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
