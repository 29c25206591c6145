// Package transport holds what the Socket.IO adapters share: the set of
// actions they dispatch to, payload decoding and event routing.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/biswa/bingo-signal/internal/events"
)

// Actions is implemented by *handlers.Handler.
type Actions interface {
	CreateRoom(connID string, req events.CreateRoomRequest) (events.CreateRoomReply, error)
	JoinRoom(connID string, req events.RoomRequest) (events.JoinRoomReply, error)
	SubmitBoard(connID string, req events.SubmitBoardRequest) (events.SubmitBoardReply, error)
	StartGame(connID string, req events.RoomRequest) error
	CallNumber(connID string, req events.CallNumberRequest) error
	LeaveRoom(connID string, req events.RoomRequest) error
	Disconnect(connID string) error
}

var ErrUnknownEvent = errors.New("unknown event")

// AckEvents reply to the caller through the Socket.IO acknowledgement.
var AckEvents = []string{events.CreateRoom, events.JoinRoom, events.SubmitBoard}

// FireEvents produce no acknowledgement.
var FireEvents = []string{events.StartGame, events.CallNumber, events.LeaveRoom}

// Dispatch decodes payload for event and runs the matching action. A
// payload that only partly decodes is still dispatched; the action
// rejects whatever is missing.
func Dispatch(a Actions, connID, event string, payload any, logger *slog.Logger) (reply any, err error) {
	decode := func(v any) {
		if err := Decode(payload, v); err != nil {
			logger.Warn("malformed payload", "conn", connID, "event", event, "error", err)
		}
	}

	switch event {
	case events.CreateRoom:
		var req events.CreateRoomRequest
		decode(&req)
		return a.CreateRoom(connID, req)
	case events.JoinRoom:
		var req events.RoomRequest
		decode(&req)
		return a.JoinRoom(connID, req)
	case events.SubmitBoard:
		var req events.SubmitBoardRequest
		decode(&req)
		return a.SubmitBoard(connID, req)
	case events.StartGame:
		var req events.RoomRequest
		decode(&req)
		return nil, a.StartGame(connID, req)
	case events.CallNumber:
		var req events.CallNumberRequest
		decode(&req)
		return nil, a.CallNumber(connID, req)
	case events.LeaveRoom:
		var req events.RoomRequest
		decode(&req)
		return nil, a.LeaveRoom(connID, req)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

// Decode converts a raw event argument into v. Socket.IO libraries hand
// over JSON objects as generic maps, so anything that is not already a
// JSON string is round-tripped through encoding/json.
func Decode(data any, v any) error {
	var raw []byte
	switch d := data.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(d)
	case []byte:
		raw = d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
