// Package repl implements an interactive terminal client for a sheet:
// a line editor that reads "<cell>" queries and "<cell>=<formula>"
// assignments and prints the engine's response.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"cellgraph/coord"
	"cellgraph/engine"
)

const (
	prompt     = "sheet> "
	promptCont = "...    "
)

type scannerResult struct {
	line string
	ok   bool
}

// Start begins an interactive session against state, reading commands
// from in and writing responses to out. It returns when the input
// stream closes or the user issues :quit.
func Start(in io.Reader, out io.Writer, state *engine.State) {
	var (
		scanCh chan scannerResult
		tty    *ttyInput
	)
	if ti, ok := newTTYInput(in, out); ok {
		tty = ti
		defer tty.Close()
	} else {
		scanner := bufio.NewScanner(in)
		scanCh = make(chan scannerResult)
		go scanInput(scanner, scanCh)
	}

	sessionOut := out
	if tty != nil {
		sessionOut = newTTYLineWriter(out)
	}

	fmt.Fprintln(sessionOut, "sheet repl - type A1=<formula> to set a cell, A1 to read it.")
	fmt.Fprintln(sessionOut, "Commands: :help, :quit, :clear, :rm <cell>, :copy <from> <to>, :dump")
	fmt.Fprintln(sessionOut)

	for {
		var (
			line string
			ok   bool
		)
		if tty != nil {
			line, ok = tty.readLine(prompt)
		} else {
			fmt.Fprint(out, prompt)
			res, chOk := <-scanCh
			if !chOk {
				return
			}
			line, ok = res.line, res.ok
		}
		if !ok {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if handleCommand(line, sessionOut, state) {
				return
			}
			continue
		}
		runLine(sessionOut, state, line)
	}
}

func runLine(out io.Writer, state *engine.State, line string) {
	key, rest, hasEquals := splitAssignment(line)
	parsedKey, err := coord.ParseDisplay(key)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if !hasEquals {
		raw, ok := state.GetRaw(parsedKey)
		if !ok {
			fmt.Fprintf(out, "%s: (empty)\n", parsedKey.Display())
			return
		}
		resolved, _ := state.GetResolved(parsedKey)
		fmt.Fprintf(out, "%s: %q => %v\n", parsedKey.Display(), raw, resolved)
		return
	}
	val, err := state.Upsert(parsedKey, rest)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s => %v\n", parsedKey.Display(), val)
}

// splitAssignment splits "A1 = formula" into ("A1", "formula", true),
// or "A1" into ("A1", "", false).
func splitAssignment(line string) (key, rest string, hasEquals bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return strings.TrimSpace(line), "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// handleCommand processes a ":"-prefixed command. Returns true if the
// session should end.
func handleCommand(cmd string, out io.Writer, state *engine.State) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, "goodbye")
		return true

	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  A1            show A1's raw text and resolved value")
		fmt.Fprintln(out, "  A1=<formula>  set A1 and show its resolved value")
		fmt.Fprintln(out, "  :rm <cell>    remove a cell")
		fmt.Fprintln(out, "  :copy <a> <b> copy a's formula to b, translated, without writing it")
		fmt.Fprintln(out, "  :dump         print every non-empty cell")
		fmt.Fprintln(out, "  :clear        clear the screen")
		fmt.Fprintln(out, "  :quit         exit")

	case ":clear":
		clearScreen(out)

	case ":rm":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: :rm <cell>")
			return false
		}
		key, err := coord.ParseDisplay(fields[1])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		if err := state.Remove(key); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

	case ":copy":
		if len(fields) != 3 {
			fmt.Fprintln(out, "usage: :copy <from> <to>")
			return false
		}
		from, err := coord.ParseDisplay(fields[1])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		to, err := coord.ParseDisplay(fields[2])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		text, err := state.CopyCellExpression(from, to)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "%s would become: %s\n", to.Display(), text)

	case ":dump":
		for _, snap := range state.Snapshot() {
			fmt.Fprintf(out, "%s: %q => %v\n", snap.Key.Display(), snap.Raw, snap.Resolved)
		}

	default:
		fmt.Fprintf(out, "unknown command: %s (try :help)\n", fields[0])
	}
	return false
}

func scanInput(scanner *bufio.Scanner, out chan<- scannerResult) {
	defer close(out)
	for scanner.Scan() {
		out <- scannerResult{line: scanner.Text(), ok: true}
	}
}

func clearScreen(out io.Writer) {
	fmt.Fprint(out, "\x1b[H\x1b[2J")
}
