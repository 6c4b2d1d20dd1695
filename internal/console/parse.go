package console

import (
	"errors"
	"strings"
)

// ErrBadBool is returned for an argument that is not a boolean token.
var ErrBadBool = errors.New("bad boolean value")

// boolTokens are the accepted boolean arguments, lowercased. Only full
// matches count: no prefixes, no numerics besides exactly "0"/"1".
var boolTokens = map[string]bool{
	"1": true, "on": true, "true": true, "enable": true, "enabled": true,
	"0": false, "off": false, "false": false, "disable": false, "disabled": false,
}

// ParseBool parses a command argument as a boolean token.
// Matching is case-insensitive.
func ParseBool(arg string) (bool, error) {
	v, ok := boolTokens[strings.ToLower(strings.TrimSpace(arg))]
	if !ok {
		return false, ErrBadBool
	}
	return v, nil
}

// splitLine splits a trimmed input line on the first space into a
// lowercased command and a trimmed argument. The argument is empty when
// there is no space.
func splitLine(line string) (cmd, arg string) {
	cmd = line
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd = line[:i]
		arg = strings.TrimSpace(line[i+1:])
	}
	return strings.ToLower(cmd), arg
}
