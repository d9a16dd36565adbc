// Command sheetd runs the reactive sheet as a standalone daemon: an
// engine.State wired to a websocket server and an optional zmq4
// publisher, both fed by the same host.FanOutNotifier.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"cellgraph/builtins"
	"cellgraph/engine"
	"cellgraph/host"
	"cellgraph/transport"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP/websocket listen address")
	staticDir := flag.String("static", "assets/sheet", "directory of static client assets to serve")
	zmqAddr := flag.String("zmq", "", "optional zmq4 PUB address, e.g. tcp://127.0.0.1:5556")
	flag.Parse()

	normalized := normalizeAddr(*addr)

	registry := builtins.NewDefaultRegistry()

	state := engine.New(registry, nil)

	wsServer := transport.NewServer(state, *staticDir)
	notifiers := []host.DisplayNotifier{wsServer}

	if *zmqAddr != "" {
		pub, err := transport.NewZmqPublisher(context.Background(), *zmqAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "zmq publisher: %v\n", err)
			os.Exit(1)
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}
	state.SetNotifier(host.FanOutNotifier{Targets: notifiers})

	if err := wsServer.Start(normalized); err != nil {
		fmt.Fprintf(os.Stderr, "sheet server error: %v\n", err)
		os.Exit(1)
	}
}

func normalizeAddr(addr string) string {
	addr = strings.Replace(addr, "localhost", "", 1)
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}
