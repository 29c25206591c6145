package legacy

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biswa/bingo-signal/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopActions struct{}

func (nopActions) CreateRoom(string, events.CreateRoomRequest) (events.CreateRoomReply, error) {
	return events.CreateRoomReply{}, nil
}

func (nopActions) JoinRoom(string, events.RoomRequest) (events.JoinRoomReply, error) {
	return events.JoinRoomReply{}, nil
}

func (nopActions) SubmitBoard(string, events.SubmitBoardRequest) (events.SubmitBoardReply, error) {
	return events.SubmitBoardReply{}, nil
}

func (nopActions) StartGame(string, events.RoomRequest) error        { return nil }
func (nopActions) CallNumber(string, events.CallNumberRequest) error { return nil }
func (nopActions) LeaveRoom(string, events.RoomRequest) error        { return nil }
func (nopActions) Disconnect(string) error                           { return nil }

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    bool
	}{
		{"wildcard", "*", "http://evil.example", true},
		{"match", "http://localhost:5173", "http://localhost:5173", true},
		{"mismatch", "http://localhost:5173", "http://evil.example", false},
		{"no origin header", "http://localhost:5173", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/socket.io/", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(r))
		})
	}
}

func TestTransport_UnknownConnIsIgnored(t *testing.T) {
	tr := New(nopActions{}, "*", slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer tr.Close()

	assert.NotPanics(t, func() {
		tr.Emit("ghost", events.GameError, events.GameErrorPayload{Message: "x"})
		tr.Join("ghost", "room")
		tr.Leave("ghost", "room")
		tr.Broadcast("room", events.RoomUpdated, nil)
	})
}

func TestTransport_PollingHandshake(t *testing.T) {
	tr := New(nopActions{}, "*", slog.New(slog.NewTextHandler(io.Discard, nil)))
	go tr.Serve()
	defer tr.Close()

	srv := httptest.NewServer(tr.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/socket.io/?EIO=3&transport=polling")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "sid")
}
