package console

import (
	"bytes"
	"errors"
	"io"
)

// timeoutError matches transport errors that only mean "no bytes yet"
// (net.Conn deadline errors and similar).
type timeoutError interface {
	Timeout() bool
}

// Run serves the protocol on the given byte streams: banner first, then
// one reply per input line until r reaches EOF or fails. Partial input
// is buffered across reads, so a transport read timeout or a slowly
// typed line never truncates a command. A final unterminated line at
// EOF is still executed.
//
// Run returns nil on EOF; malformed input never terminates the loop.
func (it *Interpreter) Run(r io.Reader, w io.Writer) error {
	if err := it.reply(w, it.Banner()); err != nil {
		return err
	}

	var pending []byte
	chunk := make([]byte, 256)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				line := string(pending[:i])
				pending = pending[i+1:]
				if werr := it.reply(w, it.Exec(line)); werr != nil {
					return werr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(pending) > 0 {
					return it.reply(w, it.Exec(string(pending)))
				}
				return nil
			}
			var te timeoutError
			if errors.As(err, &te) && te.Timeout() {
				continue
			}
			return err
		}
	}
}

func (it *Interpreter) reply(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
