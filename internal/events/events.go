// Package events defines the Socket.IO event names and payloads exchanged
// with Bingo clients.
package events

import "github.com/biswa/bingo-signal/internal/models"

// Inbound actions.
const (
	CreateRoom  = "create_room"
	JoinRoom    = "join_room"
	LeaveRoom   = "leave_room"
	SubmitBoard = "submit_board"
	StartGame   = "start_game"
	CallNumber  = "call_number"
)

// Outbound events.
const (
	RoomUpdated  = "room_updated"
	PlayerLeft   = "player_left"
	HostChanged  = "host_changed"
	TurnChanged  = "turn_changed"
	GameStarted  = "game_started"
	NumberCalled = "number_called"
	GameFinished = "game_finished"
	GameError    = "game_error"
)

const ReasonNotEnoughPlayers = "Not enough players"

type CreateRoomRequest struct {
	GameType string `json:"gameType"`
}

type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type SubmitBoardRequest struct {
	RoomID string `json:"roomId"`
	Board  []any  `json:"board"`
}

type CallNumberRequest struct {
	RoomID string `json:"roomId"`
	Number any    `json:"number"`
}

type CreateRoomReply struct {
	RoomID string          `json:"roomId"`
	Room   models.RoomView `json:"room"`
}

type JoinRoomReply struct {
	Success bool             `json:"success"`
	Room    *models.RoomView `json:"room,omitempty"`
	Message string           `json:"message,omitempty"`
}

type SubmitBoardReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type RoomUpdatedPayload struct {
	Room models.RoomView `json:"room"`
}

type PlayerLeftPayload struct {
	Players      []string `json:"players"`
	LeftSocketID string   `json:"leftSocketId"`
}

type HostChangedPayload struct {
	NewHost string `json:"newHost"`
}

type TurnChangedPayload struct {
	CurrentTurn string `json:"currentTurn"`
}

type GameStartedPayload struct {
	Players     []string `json:"players"`
	CurrentTurn string   `json:"currentTurn"`
}

type NumberCalledPayload struct {
	Number        int    `json:"number"`
	CalledNumbers []int  `json:"calledNumbers"`
	CurrentTurn   string `json:"currentTurn"`
}

// GameFinishedPayload carries CalledNumbers on a win and Reason when the game
// ended for lack of players.
type GameFinishedPayload struct {
	Winner        *string `json:"winner"`
	CalledNumbers []int   `json:"calledNumbers,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

type GameErrorPayload struct {
	Message string `json:"message"`
}
