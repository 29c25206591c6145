package socketio

import (
	"io"
	"log/slog"
	"testing"

	"github.com/biswa/bingo-signal/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActions struct {
	started []string
	stopped error
}

func (s *stubActions) CreateRoom(string, events.CreateRoomRequest) (events.CreateRoomReply, error) {
	return events.CreateRoomReply{RoomID: "room-1"}, s.stopped
}

func (s *stubActions) JoinRoom(string, events.RoomRequest) (events.JoinRoomReply, error) {
	return events.JoinRoomReply{Success: true}, s.stopped
}

func (s *stubActions) SubmitBoard(string, events.SubmitBoardRequest) (events.SubmitBoardReply, error) {
	return events.SubmitBoardReply{OK: true}, s.stopped
}

func (s *stubActions) StartGame(connID string, req events.RoomRequest) error {
	s.started = append(s.started, connID+"@"+req.RoomID)
	return s.stopped
}

func (s *stubActions) CallNumber(string, events.CallNumberRequest) error { return s.stopped }
func (s *stubActions) LeaveRoom(string, events.RoomRequest) error        { return s.stopped }
func (s *stubActions) Disconnect(string) error                           { return s.stopped }

func newTestTransport(actions *stubActions) *Transport {
	return &Transport{
		actions: actions,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSplitArgs(t *testing.T) {
	var acked []any
	ack := func(args []any, _ error) { acked = args }

	payload, got := splitArgs([]any{map[string]any{"roomId": "r"}, ack})
	assert.Equal(t, map[string]any{"roomId": "r"}, payload)
	require.NotNil(t, got)
	got([]any{"x"}, nil)
	assert.Equal(t, []any{"x"}, acked)

	payload, got = splitArgs([]any{ack})
	assert.Nil(t, payload)
	assert.NotNil(t, got)

	payload, got = splitArgs([]any{"plain"})
	assert.Equal(t, "plain", payload)
	assert.Nil(t, got)

	payload, got = splitArgs(nil)
	assert.Nil(t, payload)
	assert.Nil(t, got)
}

func TestTransport_HandleAcks(t *testing.T) {
	tr := newTestTransport(&stubActions{})

	var acked []any
	tr.handle("c1", events.CreateRoom, []any{map[string]any{}, func(args []any, _ error) { acked = args }})

	assert.Equal(t, []any{events.CreateRoomReply{RoomID: "room-1"}}, acked)
}

func TestTransport_HandleFireAndForget(t *testing.T) {
	actions := &stubActions{}
	tr := newTestTransport(actions)

	acks := 0
	tr.handle("c1", events.StartGame, []any{map[string]any{"roomId": "r"}, func([]any, error) { acks++ }})

	assert.Equal(t, []string{"c1@r"}, actions.started)
	assert.Zero(t, acks)
}

func TestTransport_HandleStopped(t *testing.T) {
	tr := newTestTransport(&stubActions{stopped: assert.AnError})

	acks := 0
	tr.handle("c1", events.JoinRoom, []any{map[string]any{"roomId": "r"}, func([]any, error) { acks++ }})

	assert.Zero(t, acks)
}
