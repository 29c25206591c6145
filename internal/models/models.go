package models

import (
	"slices"
	"time"

	"github.com/biswa/bingo-signal/internal/bingo"
	"github.com/gofrs/uuid"
)

type GameStatus string

const (
	StatusSetup    GameStatus = "setup"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

const DefaultGameType = "BINGO"

// RoomManager owns every Room. It is not safe for concurrent use; the
// handler loop is its only caller.
type RoomManager struct {
	rooms map[string]*Room
	order []string
}

type Room struct {
	ID          string
	Host        string
	Players     []string
	GameType    string
	Status      GameStatus
	Boards      map[string]bingo.Board
	Marked      map[string]bingo.NumberSet
	Winner      string
	CurrentTurn string
	CreatedAt   time.Time

	called      bingo.NumberSet
	calledOrder []int
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
	}
}

func (rm *RoomManager) CreateRoom(hostID, gameType string) *Room {
	if gameType == "" {
		gameType = DefaultGameType
	}
	room := &Room{
		ID:          uuid.Must(uuid.NewV4()).String(),
		Host:        hostID,
		Players:     []string{hostID},
		GameType:    gameType,
		Status:      StatusSetup,
		Boards:      make(map[string]bingo.Board),
		Marked:      make(map[string]bingo.NumberSet),
		CurrentTurn: hostID,
		CreatedAt:   time.Now(),
		called:      bingo.NumberSet{},
	}
	rm.rooms[room.ID] = room
	rm.order = append(rm.order, room.ID)
	return room
}

func (rm *RoomManager) GetRoom(id string) (*Room, bool) {
	room, exists := rm.rooms[id]
	return room, exists
}

// JoinRoom appends playerID to the room unless it is already a member.
func (rm *RoomManager) JoinRoom(id, playerID string) (*Room, bool) {
	room, exists := rm.rooms[id]
	if !exists {
		return nil, false
	}
	if !room.HasPlayer(playerID) {
		room.Players = append(room.Players, playerID)
	}
	return room, true
}

// RemovePlayer takes playerID out of a single room. The bool is false when
// the room does not exist or playerID was not a member.
func (rm *RoomManager) RemovePlayer(id, playerID string) (*Room, bool) {
	room, exists := rm.rooms[id]
	if !exists || !room.removePlayer(playerID) {
		return nil, false
	}
	return room, true
}

// RemovePlayerFromAllRooms returns the rooms playerID was removed from, in
// creation order.
func (rm *RoomManager) RemovePlayerFromAllRooms(playerID string) []*Room {
	var affected []*Room
	for _, id := range rm.order {
		if room := rm.rooms[id]; room.removePlayer(playerID) {
			affected = append(affected, room)
		}
	}
	return affected
}

func (rm *RoomManager) DeleteRoom(id string) {
	if _, exists := rm.rooms[id]; !exists {
		return
	}
	delete(rm.rooms, id)
	rm.order = slices.DeleteFunc(rm.order, func(o string) bool { return o == id })
}

// GetAllRooms returns the live rooms in creation order.
func (rm *RoomManager) GetAllRooms() []*Room {
	out := make([]*Room, 0, len(rm.order))
	for _, id := range rm.order {
		out = append(out, rm.rooms[id])
	}
	return out
}

func (rm *RoomManager) Count() int {
	return len(rm.rooms)
}

func (r *Room) HasPlayer(playerID string) bool {
	return slices.Contains(r.Players, playerID)
}

func (r *Room) removePlayer(playerID string) bool {
	idx := slices.Index(r.Players, playerID)
	if idx < 0 {
		return false
	}
	r.Players = slices.Delete(r.Players, idx, idx+1)
	delete(r.Boards, playerID)
	delete(r.Marked, playerID)
	return true
}

// ResetCalls clears the called numbers and every player's marks.
func (r *Room) ResetCalls() {
	r.called = bingo.NumberSet{}
	r.calledOrder = nil
	for id := range r.Marked {
		r.Marked[id] = bingo.NumberSet{}
	}
}

// CallNumber records n as called. It returns false if n was already called.
func (r *Room) CallNumber(n int) bool {
	if r.called == nil {
		r.called = bingo.NumberSet{}
	}
	if r.called.Has(n) {
		return false
	}
	r.called.Add(n)
	r.calledOrder = append(r.calledOrder, n)
	return true
}

func (r *Room) IsCalled(n int) bool {
	return r.called.Has(n)
}

// CalledNumbers returns the called numbers in the order they were called.
func (r *Room) CalledNumbers() []int {
	return append([]int{}, r.calledOrder...)
}

// NextPlayer returns the player after playerID in join order, wrapping around.
// An unknown playerID yields the first player.
func (r *Room) NextPlayer(playerID string) string {
	if len(r.Players) == 0 {
		return ""
	}
	idx := slices.Index(r.Players, playerID)
	return r.Players[(idx+1)%len(r.Players)]
}

// MissingBoards lists the players that have not submitted a board.
func (r *Room) MissingBoards() []string {
	var missing []string
	for _, p := range r.Players {
		if _, ok := r.Boards[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
