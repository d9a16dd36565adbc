package repl

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/term"

	"cellgraph/engine"
)

// Server starts a REPL server on addr backed by state. The engine is
// single-owner by design, so only one client session runs at a time;
// a second connection is told the sheet is busy and closed.
func Server(addr string, state *engine.State) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer listener.Close()

	fmt.Printf("sheet repl server listening on %s\n", addr)

	var sessionLock sync.Mutex
	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Fprintf(os.Stderr, "accept failed: %v\n", err)
			continue
		}
		go handleConnection(conn, state, &sessionLock)
	}
}

func handleConnection(conn net.Conn, state *engine.State, sessionLock *sync.Mutex) {
	defer conn.Close()

	if !sessionLock.TryLock() {
		fmt.Fprintln(conn, "sheet is busy with another session, try again later")
		return
	}
	defer sessionLock.Unlock()

	remoteAddr := conn.RemoteAddr().String()
	fmt.Printf("session started from %s\n", remoteAddr)
	fmt.Fprintln(conn, "connected to sheet repl server")

	Start(conn, conn, state)

	fmt.Printf("session ended from %s\n", remoteAddr)
}

// Client connects to a remote REPL server and pipes the local
// terminal through to it.
func Client(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	fmt.Printf("connected to %s, press Ctrl+C to disconnect\n\n", addr)

	restore, rawEnabled := enableClientRawMode(os.Stdin, os.Stdout)
	if rawEnabled {
		defer restore()
	}

	serverOut := io.Writer(os.Stdout)
	if rawEnabled {
		serverOut = newTTYLineWriter(os.Stdout)
	}

	done := make(chan error, 2)
	go func() {
		_, copyErr := io.Copy(serverOut, conn)
		done <- copyErr
	}()
	go func() {
		_, copyErr := io.Copy(conn, os.Stdin)
		done <- copyErr
	}()

	if copyErr := <-done; copyErr != nil && !errors.Is(copyErr, io.EOF) && !errors.Is(copyErr, net.ErrClosed) {
		return fmt.Errorf("repl stream copy failed: %w", copyErr)
	}
	return nil
}

func enableClientRawMode(stdin *os.File, stdout *os.File) (func() error, bool) {
	if stdin == nil || stdout == nil {
		return nil, false
	}
	if !term.IsTerminal(int(stdin.Fd())) || !term.IsTerminal(int(stdout.Fd())) {
		return nil, false
	}
	state, err := term.MakeRaw(int(stdin.Fd()))
	if err != nil {
		return nil, false
	}
	return func() error {
		return term.Restore(int(stdin.Fd()), state)
	}, true
}
