package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"

	"cellgraph/coord"
	"cellgraph/host"
)

// ZmqPublisher is a host.DisplayNotifier that republishes every
// cell-display-changed event on a PUB socket, for headless
// subscribers that don't want a websocket client.
type ZmqPublisher struct {
	mu   sync.Mutex
	sock zmq4.Socket
}

// NewZmqPublisher binds a PUB socket at addr (e.g. "tcp://127.0.0.1:5556")
// and returns a notifier backed by it.
func NewZmqPublisher(ctx context.Context, addr string) (*ZmqPublisher, error) {
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(addr); err != nil {
		return nil, fmt.Errorf("zmq pub listen %s: %w", addr, err)
	}
	return &ZmqPublisher{sock: sock}, nil
}

// Close releases the underlying socket.
func (p *ZmqPublisher) Close() error {
	return p.sock.Close()
}

type cellEvent struct {
	CellID string      `json:"cellId"`
	Value  host.Value  `json:"value"`
}

// CellDisplayChanged implements host.DisplayNotifier.
func (p *ZmqPublisher) CellDisplayChanged(key coord.Key, value host.Value) error {
	payload, err := json.Marshal(cellEvent{CellID: key.Serialize(), Value: value})
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sock.Send(zmq4.NewMsg(payload))
}
