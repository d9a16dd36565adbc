// Package transport exposes the engine over the wire: a websocket
// server that doubles as a host.DisplayNotifier, and a zmq4 publisher
// for headless subscribers.
package transport

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"cellgraph/coord"
	"cellgraph/engine"
	"cellgraph/host"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dev: allow any origin
	},
}

// Server serves the sheet over HTTP and websockets, and implements
// host.DisplayNotifier so the engine can push live updates to every
// connected client.
type Server struct {
	State   *engine.State
	StaticDir string

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer wraps an already-constructed engine.State. Register the
// returned Server as (one of) the state's display notifiers before
// serving any mutating requests, so display events reach clients.
func NewServer(state *engine.State, staticDir string) *Server {
	return &Server{
		State:     state,
		StaticDir: staticDir,
		clients:   make(map[*websocket.Conn]bool),
	}
}

// CellDisplayChanged implements host.DisplayNotifier by broadcasting
// the change to every connected websocket client.
func (s *Server) CellDisplayChanged(key coord.Key, value host.Value) error {
	raw, _ := s.State.GetRaw(key)
	s.broadcast(cellMessage(key, raw, value, true, nil))
	return nil
}

func (s *Server) broadcast(resp UpdateResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		if err := client.WriteJSON(resp); err != nil {
			log.Printf("broadcast write failed: %v", err)
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}

// UpdateRequest is a client-to-server message: set or clear a cell.
type UpdateRequest struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// UpdateResponse is a server-to-client message describing one cell's
// current raw text and resolved display value.
type UpdateResponse struct {
	Type    string `json:"type"`
	CellID  string `json:"cellId"`
	Raw     string `json:"raw"`
	Display string `json:"display,omitempty"`
	HasValue bool   `json:"hasValue"`
	Error   string `json:"error,omitempty"`
}

func cellMessage(key coord.Key, raw string, value host.Value, hasValue bool, err error) UpdateResponse {
	resp := UpdateResponse{
		Type:     "cell_updated",
		CellID:   key.Serialize(),
		Raw:      raw,
		HasValue: hasValue,
	}
	if hasValue {
		resp.Display = fmt.Sprintf("%v", value)
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// HandleWebSocket upgrades the connection, streams the current sheet,
// then services update_cell/remove_cell requests from the client
// until it disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	s.sendInitialState(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req UpdateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("bad client message:", err)
			continue
		}
		s.handleRequest(conn, req)
	}
}

func (s *Server) sendInitialState(conn *websocket.Conn) {
	for _, snap := range s.State.Snapshot() {
		resp := cellMessage(snap.Key, snap.Raw, snap.Resolved, snap.HasValue, nil)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("initial state write failed: %v", err)
			return
		}
	}
}

func (s *Server) handleRequest(conn *websocket.Conn, req UpdateRequest) {
	key, err := coord.ParseDisplay(req.ID)
	if err != nil {
		s.writeError(conn, req.ID, err)
		return
	}
	switch req.Type {
	case "update_cell":
		value, err := s.State.Upsert(key, req.Value)
		if err != nil {
			s.writeError(conn, req.ID, err)
			return
		}
		s.broadcast(cellMessage(key, req.Value, value, true, nil))
	case "remove_cell":
		if err := s.State.Remove(key); err != nil {
			s.writeError(conn, req.ID, err)
			return
		}
		s.broadcast(UpdateResponse{Type: "cell_removed", CellID: key.Serialize()})
	default:
		log.Printf("unrecognized request type %q", req.Type)
	}
}

func (s *Server) writeError(conn *websocket.Conn, id string, err error) {
	resp := UpdateResponse{Type: "cell_error", CellID: id, Error: err.Error()}
	if writeErr := conn.WriteJSON(resp); writeErr != nil {
		log.Printf("error write failed: %v", writeErr)
	}
}

// Start serves static assets (if StaticDir exists) and the websocket
// endpoint at /ws on addr, blocking until the server stops.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	if _, err := os.Stat(s.StaticDir); os.IsNotExist(err) {
		log.Printf("static directory %s not found, serving /ws only", s.StaticDir)
	} else {
		mux.Handle("/", http.FileServer(http.Dir(s.StaticDir)))
	}
	mux.HandleFunc("/ws", s.HandleWebSocket)

	log.Printf("sheet server listening on http://%s", addr)
	return http.ListenAndServe(addr, mux)
}
