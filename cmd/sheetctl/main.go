// Command sheetctl is the interactive terminal client for a sheet: a
// standalone in-process REPL, or a TCP server/client pair for a
// remote session.
package main

import (
	"fmt"
	"os"

	"cellgraph/builtins"
	"cellgraph/engine"
	"cellgraph/repl"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "-h", "--help", "help":
		usage()
	case "repl":
		state := engine.New(builtins.NewDefaultRegistry(), nil)
		repl.Start(os.Stdin, os.Stdout, state)
	case "serve":
		addr := ":9000"
		if len(os.Args) > 2 {
			addr = os.Args[2]
		}
		state := engine.New(builtins.NewDefaultRegistry(), nil)
		if err := repl.Server(addr, state); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
	case "connect":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		if err := repl.Client(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  sheetctl repl              start a local interactive session")
	fmt.Fprintln(os.Stderr, "  sheetctl serve [addr]      start a TCP session server (default :9000)")
	fmt.Fprintln(os.Stderr, "  sheetctl connect <addr>    connect to a TCP session server")
}
