// Package sheetrepl implements an interactive formula prompt over an
// engine.Context, grounded on the teacher's repl package (raw-mode TTY
// input with history) and on original_source/drspread_cli.c's own
// read-eval-print loop, which drives exactly the same call —
// evaluate_string — against a line typed at a "> " prompt.
package sheetrepl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/cellengine/cellengine/internal/sheet"
)

type byteEvent struct {
	b   byte
	err error
}

type ttyInput struct {
	in      *os.File
	out     io.Writer
	state   *term.State
	events  chan byteEvent
	history []string
}

func newTTYInput(in io.Reader, out io.Writer) (*ttyInput, bool) {
	inFile, ok := in.(*os.File)
	if !ok {
		return nil, false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return nil, false
	}
	if !term.IsTerminal(int(inFile.Fd())) || !term.IsTerminal(int(outFile.Fd())) {
		return nil, false
	}
	state, err := term.MakeRaw(int(inFile.Fd()))
	if err != nil {
		return nil, false
	}
	t := &ttyInput{in: inFile, out: out, state: state, events: make(chan byteEvent, 128)}
	go t.readBytes()
	return t, true
}

func (t *ttyInput) Close() {
	if t == nil || t.state == nil {
		return
	}
	_ = term.Restore(int(t.in.Fd()), t.state)
}

func (t *ttyInput) readBytes() {
	defer close(t.events)
	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			t.events <- byteEvent{b: buf[0]}
		}
		if err != nil {
			t.events <- byteEvent{err: err}
			return
		}
	}
}

// readLine reads one edited line with backspace and up/down history
// recall; returns (line, ok). ok is false on Ctrl+C, Ctrl+D on an empty
// line, or a read error.
func (t *ttyInput) readLine(prompt string) (string, bool) {
	line := make([]byte, 0, 64)
	historyIdx := len(t.history)
	fmt.Fprint(t.out, prompt)
	for ev := range t.events {
		if ev.err != nil {
			return "", false
		}
		switch ev.b {
		case '\r', '\n':
			fmt.Fprint(t.out, "\r\n")
			entered := string(line)
			t.appendHistory(entered)
			return entered, true
		case 0x03: // Ctrl+C
			fmt.Fprint(t.out, "^C\r\n")
			return "", false
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				fmt.Fprint(t.out, "\r\n")
				return "", false
			}
		case 0x7f, 0x08: // Backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				redraw(t.out, prompt, line)
			}
		case 0x1b: // Escape sequence: only up/down arrow recall is handled.
			next, ok := t.readByteTimeout(10 * time.Millisecond)
			if !ok || next != '[' {
				continue
			}
			code, ok := t.readByteTimeout(10 * time.Millisecond)
			if !ok {
				continue
			}
			switch code {
			case 'A':
				if historyIdx > 0 {
					historyIdx--
					line = []byte(t.history[historyIdx])
					redraw(t.out, prompt, line)
				}
			case 'B':
				if historyIdx < len(t.history)-1 {
					historyIdx++
					line = []byte(t.history[historyIdx])
				} else {
					historyIdx = len(t.history)
					line = line[:0]
				}
				redraw(t.out, prompt, line)
			}
		default:
			if ev.b >= 0x20 {
				line = append(line, ev.b)
				redraw(t.out, prompt, line)
			}
		}
	}
	return "", false
}

func (t *ttyInput) readByteTimeout(d time.Duration) (byte, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case ev, ok := <-t.events:
		if !ok || ev.err != nil {
			return 0, false
		}
		return ev.b, true
	case <-timer.C:
		return 0, false
	}
}

func (t *ttyInput) appendHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(t.history); n > 0 && t.history[n-1] == line {
		return
	}
	t.history = append(t.history, line)
}

func redraw(out io.Writer, prompt string, line []byte) {
	fmt.Fprintf(out, "\r%s%s\x1b[K", prompt, string(line))
}

// Evaluator is the slice of engine.Context the REPL needs.
type Evaluator interface {
	EvaluateString(h sheet.Handle, row, col int32, src string) (kind sheet.CachedKind, num float64, str string)
}

// Run drives an interactive "> " prompt against sht, printing each typed
// formula's result the way original_source/drspread_cli.c's loop does:
// a blank line for an empty result, the number, the quoted string, or
// "err". Falls back to plain buffered line reading (no history recall)
// when stdin or stdout is not a terminal.
func Run(ctx Evaluator, sht sheet.Handle, in io.Reader, out io.Writer) {
	if tty, ok := newTTYInput(in, out); ok {
		defer tty.Close()
		for {
			line, ok := tty.readLine("> ")
			if !ok {
				return
			}
			if line == "q" {
				return
			}
			printResult(out, ctx, sht, line)
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			return
		}
		printResult(out, ctx, sht, line)
	}
}

func printResult(out io.Writer, ctx Evaluator, sht sheet.Handle, line string) {
	if line == "" {
		return
	}
	kind, num, str := ctx.EvaluateString(sht, 0, 0, line)
	switch kind {
	case sheet.CachedNull:
		fmt.Fprintln(out)
	case sheet.CachedNumber:
		fmt.Fprintln(out, formatRepl(num))
	case sheet.CachedString:
		fmt.Fprintf(out, "'%s'\n", str)
	default:
		fmt.Fprintln(out, "err")
	}
}

func formatRepl(v float64) string {
	if float64(int64(v)) == v {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
