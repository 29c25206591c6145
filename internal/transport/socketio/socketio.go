// Package socketio serves Socket.IO v3/v4 clients (Engine.IO 3 and 4)
// using github.com/zishang520/socket.io.
package socketio

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/biswa/bingo-signal/internal/transport"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type Transport struct {
	io      *socket.Server
	opts    *socket.ServerOptions
	actions transport.Actions
	logger  *slog.Logger
}

// New creates the Socket.IO server. origin is the CORS origin allowed to
// connect; "*" allows any.
func New(actions transport.Actions, origin string, logger *slog.Logger) *Transport {
	opts := socket.DefaultServerOptions()
	opts.SetCors(&types.Cors{
		Origin:      origin,
		Credentials: true,
	})
	opts.SetAllowEIO3(true)

	t := &Transport{
		io:      socket.NewServer(nil, opts),
		opts:    opts,
		actions: actions,
		logger:  logger.With("component", "socketio"),
	}
	t.io.On("connection", t.onConnection)
	return t
}

// Handler serves the /socket.io/ endpoint.
func (t *Transport) Handler() http.Handler {
	return t.io.ServeHandler(t.opts)
}

func (t *Transport) Close() error {
	t.io.Close(nil)
	return nil
}

func (t *Transport) Emit(connID, event string, payload any) {
	if err := t.io.To(socket.Room(connID)).Emit(event, payload); err != nil {
		t.logger.Warn("emit failed", "conn", connID, "event", event, "error", err)
	}
}

func (t *Transport) Broadcast(roomID, event string, payload any) {
	if err := t.io.To(socket.Room(roomID)).Emit(event, payload); err != nil {
		t.logger.Warn("broadcast failed", "room", roomID, "event", event, "error", err)
	}
}

// Join subscribes the connection to the room channel. Every socket is a
// member of the room named after its own id, which is how it is found here.
func (t *Transport) Join(connID, roomID string) {
	t.io.In(socket.Room(connID)).SocketsJoin(socket.Room(roomID))
}

func (t *Transport) Leave(connID, roomID string) {
	t.io.In(socket.Room(connID)).SocketsLeave(socket.Room(roomID))
}

func (t *Transport) onConnection(clients ...any) {
	client := clients[0].(*socket.Socket)
	connID := string(client.Id())
	t.logger.Info("client connected", "conn", connID)

	for _, event := range transport.AckEvents {
		t.register(client, connID, event)
	}
	for _, event := range transport.FireEvents {
		t.register(client, connID, event)
	}

	client.On("disconnect", func(args ...any) {
		reason := ""
		if len(args) > 0 {
			reason = fmt.Sprintf("%v", args[0])
		}
		t.logger.Info("client disconnected", "conn", connID, "reason", reason)
		if err := t.actions.Disconnect(connID); err != nil {
			t.logger.Warn("disconnect not processed", "conn", connID, "error", err)
		}
	})
}

func (t *Transport) register(client *socket.Socket, connID, event string) {
	client.On(event, func(args ...any) {
		t.handle(connID, event, args)
	})
}

func (t *Transport) handle(connID, event string, args []any) {
	payload, ack := splitArgs(args)

	reply, err := transport.Dispatch(t.actions, connID, event, payload, t.logger)
	if err != nil {
		t.logger.Warn("event not processed", "conn", connID, "event", event, "error", err)
		return
	}
	if ack != nil && reply != nil {
		ack([]any{reply}, nil)
	}
}

// splitArgs separates the event payload from the trailing acknowledgement
// callback the library appends when the client asked for one.
func splitArgs(args []any) (payload any, ack func([]any, error)) {
	if n := len(args); n > 0 {
		if fn, ok := args[n-1].(func([]any, error)); ok {
			ack = fn
			args = args[:n-1]
		}
	}
	if len(args) > 0 {
		payload = args[0]
	}
	return payload, ack
}
