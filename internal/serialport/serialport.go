// Package serialport opens the serial device the command console is
// served on. The console itself only sees an io.ReadWriteCloser, so
// everything above this package is transport agnostic.
package serialport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	serial "go.bug.st/serial.v1"
)

// ErrNoPortFound is returned when auto-detection finds no usable port.
var ErrNoPortFound = errors.New("serialport: no serial port found")

// DefaultBaud matches the controller's published line rate.
const DefaultBaud = 115200

// idlePause paces polling reads so an idle line does not spin the loop.
const idlePause = 50 * time.Millisecond

// Port is an open serial device. Zero-length reads are paced with a
// short sleep, which gives the console loop its polled cadence.
type Port struct {
	port serial.Port
	name string
}

// Open opens the named device at the given baud rate (8N1).
func Open(name string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &Port{port: p, name: name}, nil
}

// Detect probes the available serial ports and opens the first
// USB-serial candidate (device names containing ACM or USB).
func Detect(baud int) (*Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	var lastErr error
	for _, name := range candidates(names) {
		p, err := Open(name, baud)
		if err != nil {
			lastErr = err
			continue
		}
		return p, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoPortFound
}

// candidates filters port names to USB-serial devices, in list order.
func candidates(names []string) []string {
	var out []string
	for _, name := range names {
		if strings.Contains(name, "ACM") || strings.Contains(name, "USB") {
			out = append(out, name)
		}
	}
	return out
}

// Read reads available bytes. An empty read sleeps briefly before
// returning so callers can poll without busy-waiting.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && err == nil {
		time.Sleep(idlePause)
	}
	return n, err
}

// Write writes b to the port.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the port.
func (p *Port) Close() error {
	return p.port.Close()
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.name
}
