// Package legacy serves Socket.IO v1/v2 clients using
// github.com/googollee/go-socket.io.
package legacy

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/biswa/bingo-signal/internal/transport"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	eiotransport "github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

const namespace = "/"

type Transport struct {
	server  *socketio.Server
	actions transport.Actions
	logger  *slog.Logger

	mu    sync.RWMutex
	conns map[string]socketio.Conn
}

func New(actions transport.Actions, origin string, logger *slog.Logger) *Transport {
	allow := originChecker(origin)
	server := socketio.NewServer(&engineio.Options{
		Transports: []eiotransport.Transport{
			&polling.Transport{CheckOrigin: allow},
			&websocket.Transport{CheckOrigin: allow},
		},
	})

	t := &Transport{
		server:  server,
		actions: actions,
		logger:  logger.With("component", "legacy"),
		conns:   make(map[string]socketio.Conn),
	}
	t.setup()
	return t
}

// Serve runs the engine loop. It blocks until Close is called.
func (t *Transport) Serve() error {
	return t.server.Serve()
}

func (t *Transport) Handler() http.Handler {
	return t.server
}

func (t *Transport) Close() error {
	return t.server.Close()
}

func (t *Transport) Emit(connID, event string, payload any) {
	if conn, ok := t.conn(connID); ok {
		conn.Emit(event, payload)
	}
}

func (t *Transport) Broadcast(roomID, event string, payload any) {
	t.server.BroadcastToRoom(namespace, roomID, event, payload)
}

func (t *Transport) Join(connID, roomID string) {
	if conn, ok := t.conn(connID); ok {
		t.server.JoinRoom(namespace, roomID, conn)
	}
}

func (t *Transport) Leave(connID, roomID string) {
	if conn, ok := t.conn(connID); ok {
		t.server.LeaveRoom(namespace, roomID, conn)
	}
}

func (t *Transport) conn(id string) (socketio.Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	conn, ok := t.conns[id]
	return conn, ok
}

func (t *Transport) setup() {
	t.server.OnConnect(namespace, func(conn socketio.Conn) error {
		t.logger.Info("client connected", "conn", conn.ID())
		conn.SetContext("")

		t.mu.Lock()
		t.conns[conn.ID()] = conn
		t.mu.Unlock()
		return nil
	})

	t.server.OnDisconnect(namespace, func(conn socketio.Conn, reason string) {
		t.logger.Info("client disconnected", "conn", conn.ID(), "reason", reason)
		if err := t.actions.Disconnect(conn.ID()); err != nil {
			t.logger.Warn("disconnect not processed", "conn", conn.ID(), "error", err)
		}

		t.mu.Lock()
		delete(t.conns, conn.ID())
		t.mu.Unlock()
	})

	t.server.OnError(namespace, func(conn socketio.Conn, err error) {
		if conn == nil {
			t.logger.Warn("socket error", "error", err)
			return
		}
		t.logger.Warn("socket error", "conn", conn.ID(), "error", err)
	})

	for _, event := range transport.AckEvents {
		t.server.OnEvent(namespace, event, t.ackHandler(event))
	}
	for _, event := range transport.FireEvents {
		t.server.OnEvent(namespace, event, t.fireHandler(event))
	}
}

// ackHandler returns a handler whose return value the library sends back
// as the acknowledgement.
func (t *Transport) ackHandler(event string) func(socketio.Conn, map[string]interface{}) interface{} {
	return func(conn socketio.Conn, payload map[string]interface{}) interface{} {
		reply, err := transport.Dispatch(t.actions, conn.ID(), event, payload, t.logger)
		if err != nil {
			t.logger.Warn("event not processed", "conn", conn.ID(), "event", event, "error", err)
			return nil
		}
		return reply
	}
}

func (t *Transport) fireHandler(event string) func(socketio.Conn, map[string]interface{}) {
	return func(conn socketio.Conn, payload map[string]interface{}) {
		if _, err := transport.Dispatch(t.actions, conn.ID(), event, payload, t.logger); err != nil {
			t.logger.Warn("event not processed", "conn", conn.ID(), "event", event, "error", err)
		}
	}
}

func originChecker(origin string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if origin == "*" {
			return true
		}
		got := r.Header.Get("Origin")
		return got == "" || got == origin
	}
}
