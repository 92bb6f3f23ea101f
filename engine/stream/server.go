// package stream broadcasts rendered frames to browser clients over websockets and accepts live
// control messages back from them.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

const defaultWriteTimeout = 2 * time.Second

// server is the implementation of the Server interface.
type server struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	closed  bool

	upgrader     websocket.Upgrader
	onControl    func(Control)
	writeTimeout time.Duration
}

// Server is an http.Handler that upgrades requests to websockets and streams frames to them.
type Server interface {
	http.Handler

	// Consume encodes a render command once and writes it to every connected client.
	// Clients whose write fails are dropped.
	//
	// Parameters:
	//   - cmd: the frame to broadcast
	//
	// Returns:
	//   - error: error if the frame cannot be encoded
	Consume(cmd presentation.RenderCommand) error

	// Clients returns the number of connected clients.
	Clients() int

	// Close disconnects every client and rejects new connections.
	Close() error
}

var _ Server = &server{}

// NewServer creates a stream Server.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Server: the server
func NewServer(options ...ServerBuilderOption) Server {
	s := &server{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Logger().Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[conn] = &sync.Mutex{}
	n := len(s.clients)
	s.mu.Unlock()

	log := common.Logger().With("remote", r.RemoteAddr)
	log.Info("stream client connected", "clients", n)

	defer func() {
		s.drop(conn)
		log.Info("stream client disconnected")
	}()

	for {
		var ctrl Control
		if err := conn.ReadJSON(&ctrl); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("stream read ended", "error", err)
			}
			return
		}
		if !ctrl.valid() {
			log.Warn("ignoring control message", "type", ctrl.Type)
			continue
		}
		if s.onControl != nil {
			s.onControl(ctrl)
		}
	}
}

func (s *server) Consume(cmd presentation.RenderCommand) error {
	data, err := json.Marshal(newFrameMessage(cmd))
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	msg, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		return fmt.Errorf("failed to prepare frame: %w", err)
	}

	s.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(s.clients))
	for conn, wmu := range s.clients {
		targets[conn] = wmu
	}
	s.mu.RUnlock()

	for conn, wmu := range targets {
		wmu.Lock()
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		err := conn.WritePreparedMessage(msg)
		wmu.Unlock()
		if err != nil {
			common.Logger().Debug("dropping stream client", "remote", conn.RemoteAddr().String(), "error", err)
			s.drop(conn)
		}
	}
	return nil
}

func (s *server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *server) Close() error {
	s.mu.Lock()
	s.closed = true
	clients := s.clients
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
	s.mu.Unlock()

	deadline := time.Now().Add(s.writeTimeout)
	bye := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn, wmu := range clients {
		wmu.Lock()
		conn.WriteControl(websocket.CloseMessage, bye, deadline)
		conn.Close()
		wmu.Unlock()
	}
	return nil
}

// drop removes a client and closes its connection. Safe to call twice.
func (s *server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
}
