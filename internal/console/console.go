// Package console implements the line-oriented serial command protocol
// for the relay controller. Each input line is parsed and dispatched
// independently; the only state it touches is the link store. The
// transport is any byte stream, so tests run on in-memory pipes.
package console

import (
	"fmt"
	"strings"

	"github.com/sweeney/victron-relay/internal/links"
)

const (
	replyOK      = "OK"
	replyUnknown = "ERR unknown command (type HELP)"
)

var helpLines = []string{
	"Commands:",
	"  ON <v>    set inverter link (v: 1/on/true/enable or 0/off/false/disable)",
	"  CH <v>    set charger link",
	"  ALL <v>   set both links",
	"  STATE?    report current link state",
	"  HELP      show this help",
}

// SnapshotLine formats the state reply: STATE ON=<0|1> CH=<0|1>.
func SnapshotLine(snap links.Snapshot) string {
	return fmt.Sprintf("STATE ON=%d CH=%d", bit(snap.ON), bit(snap.CH))
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Interpreter dispatches protocol commands against a link store.
type Interpreter struct {
	store *links.Store
}

// NewInterpreter creates an Interpreter bound to the given store.
func NewInterpreter(store *links.Store) *Interpreter {
	return &Interpreter{store: store}
}

// handler executes one command and returns the reply lines.
type handler func(it *Interpreter, arg string) []string

// commands is the dispatch table; keys are lowercased keywords.
var commands = map[string]handler{
	"help": func(it *Interpreter, _ string) []string {
		return helpLines
	},
	"state?": func(it *Interpreter, _ string) []string {
		return []string{SnapshotLine(it.store.Snapshot())}
	},
	"on": func(it *Interpreter, arg string) []string {
		return it.setLink("ON", arg, it.store.SetInverter)
	},
	"ch": func(it *Interpreter, arg string) []string {
		return it.setLink("CH", arg, it.store.SetCharger)
	},
	"all": func(it *Interpreter, arg string) []string {
		return it.setLink("ALL", arg, it.store.SetAll)
	},
}

func (it *Interpreter) setLink(name, arg string, set func(bool) error) []string {
	v, err := ParseBool(arg)
	if err != nil {
		return []string{fmt.Sprintf("ERR bad %s value", name)}
	}
	if err := set(v); err != nil {
		return []string{fmt.Sprintf("ERR %s failed", name)}
	}
	return []string{replyOK, SnapshotLine(it.store.Snapshot())}
}

// Exec processes a single input line and returns the reply lines.
// A nil return means no reply at all (blank input).
func (it *Interpreter) Exec(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd, arg := splitLine(line)
	h, ok := commands[cmd]
	if !ok {
		return []string{replyUnknown}
	}
	return h(it, arg)
}

// Banner returns the startup lines: ready message, initial snapshot,
// and the HELP hint, in that order.
func (it *Interpreter) Banner() []string {
	return []string{
		"READY victron-relay",
		SnapshotLine(it.store.Snapshot()),
		"Type HELP for commands",
	}
}
