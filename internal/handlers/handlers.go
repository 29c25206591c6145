package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/biswa/bingo-signal/internal/bingo"
	"github.com/biswa/bingo-signal/internal/events"
	"github.com/biswa/bingo-signal/internal/models"
)

// Notifier delivers outbound events. Transports implement it.
type Notifier interface {
	// Emit sends an event to a single connection.
	Emit(connID, event string, payload any)
	// Broadcast sends an event to every connection subscribed to roomID.
	Broadcast(roomID, event string, payload any)
	Join(connID, roomID string)
	Leave(connID, roomID string)
}

// Handler coordinates rooms. All room state is owned by the goroutine
// running Run; the exported actions hand their work to it and wait.
type Handler struct {
	rooms    *models.RoomManager
	notifier Notifier
	logger   *slog.Logger
	actions  chan func()
	done     chan struct{}
}

func New(rooms *models.RoomManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		rooms:    rooms,
		notifier: nopNotifier{},
		logger:   logger.With("component", "handlers"),
		actions:  make(chan func()),
		done:     make(chan struct{}),
	}
}

// SetNotifier must be called before Run.
func (h *Handler) SetNotifier(n Notifier) {
	h.notifier = n
}

// Run processes actions one at a time until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("handler loop stopped", "rooms", h.rooms.Count())
			return
		case fn := <-h.actions:
			h.run(fn)
		}
	}
}

func (h *Handler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("action panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// do runs fn on the loop and blocks until it has finished.
func (h *Handler) do(fn func()) error {
	finished := make(chan struct{})
	select {
	case h.actions <- func() {
		defer close(finished)
		fn()
	}:
	case <-h.done:
		return ErrStopped
	}
	<-finished
	return nil
}

func (h *Handler) CreateRoom(connID string, req events.CreateRoomRequest) (reply events.CreateRoomReply, err error) {
	err = h.do(func() { reply = h.createRoom(connID, req) })
	return reply, err
}

func (h *Handler) JoinRoom(connID string, req events.RoomRequest) (reply events.JoinRoomReply, err error) {
	err = h.do(func() { reply = h.joinRoom(connID, req) })
	return reply, err
}

func (h *Handler) SubmitBoard(connID string, req events.SubmitBoardRequest) (reply events.SubmitBoardReply, err error) {
	err = h.do(func() { reply = h.submitBoard(connID, req) })
	return reply, err
}

func (h *Handler) StartGame(connID string, req events.RoomRequest) error {
	return h.do(func() { h.startGame(connID, req) })
}

func (h *Handler) CallNumber(connID string, req events.CallNumberRequest) error {
	return h.do(func() { h.callNumber(connID, req) })
}

func (h *Handler) LeaveRoom(connID string, req events.RoomRequest) error {
	return h.do(func() { h.leaveRoom(connID, req) })
}

func (h *Handler) Disconnect(connID string) error {
	return h.do(func() { h.disconnect(connID) })
}

// Room returns a snapshot of a single room.
func (h *Handler) Room(id string) (view models.RoomView, found bool, err error) {
	err = h.do(func() {
		if room, ok := h.rooms.GetRoom(id); ok {
			view, found = room.View(), true
		}
	})
	return view, found, err
}

// Rooms returns a snapshot of every live room in creation order.
func (h *Handler) Rooms() (views []models.RoomView, err error) {
	err = h.do(func() {
		for _, room := range h.rooms.GetAllRooms() {
			views = append(views, room.View())
		}
	})
	return views, err
}

func (h *Handler) createRoom(connID string, req events.CreateRoomRequest) events.CreateRoomReply {
	room := h.rooms.CreateRoom(connID, req.GameType)
	h.notifier.Join(connID, room.ID)

	h.logger.Info("room created", "room", room.ID, "host", connID, "gameType", room.GameType)
	return events.CreateRoomReply{RoomID: room.ID, Room: room.View()}
}

func (h *Handler) joinRoom(connID string, req events.RoomRequest) events.JoinRoomReply {
	room, ok := h.rooms.JoinRoom(req.RoomID, connID)
	if !ok {
		h.logger.Info("join failed", "room", req.RoomID, "conn", connID)
		return events.JoinRoomReply{Success: false, Message: ErrRoomNotFound.Error()}
	}
	h.notifier.Join(connID, room.ID)

	view := room.View()
	h.notifier.Broadcast(room.ID, events.RoomUpdated, events.RoomUpdatedPayload{Room: view})

	h.logger.Info("player joined", "room", room.ID, "conn", connID, "players", len(room.Players))
	return events.JoinRoomReply{Success: true, Room: &view}
}

func (h *Handler) submitBoard(connID string, req events.SubmitBoardRequest) events.SubmitBoardReply {
	room, ok := h.rooms.GetRoom(req.RoomID)
	if !ok {
		return events.SubmitBoardReply{OK: false, Error: ErrRoomNotFound.Error()}
	}
	if room.Status != models.StatusSetup {
		h.emitError(connID, lateSubmission)
		return events.SubmitBoardReply{OK: false, Error: ErrGameAlreadyStarted.Error()}
	}
	if !room.HasPlayer(connID) {
		return events.SubmitBoardReply{OK: false, Error: ErrNotInRoom.Error()}
	}

	board, err := bingo.ParseBoard(req.Board)
	if err != nil {
		h.logger.Debug("board rejected", "room", room.ID, "conn", connID, "error", err)
		return events.SubmitBoardReply{OK: false, Error: err.Error()}
	}

	room.Boards[connID] = board
	room.Marked[connID] = bingo.NumberSet{}

	h.logger.Info("board submitted", "room", room.ID, "conn", connID)
	return events.SubmitBoardReply{OK: true}
}

func (h *Handler) startGame(connID string, req events.RoomRequest) {
	room, ok := h.rooms.GetRoom(req.RoomID)
	if !ok {
		return
	}
	if room.Host != connID {
		h.emitError(connID, ErrNotHost.Error())
		return
	}
	if room.Status != models.StatusSetup {
		h.emitError(connID, ErrGameAlreadyStarted.Error())
		return
	}
	if missing := room.MissingBoards(); len(missing) > 0 {
		h.logger.Info("start refused", "room", room.ID, "missing", missing)
		h.notifier.Broadcast(room.ID, events.GameError, events.GameErrorPayload{Message: ErrIncompleteSubmissions.Error()})
		return
	}

	room.Status = models.StatusPlaying
	room.ResetCalls()
	room.Winner = ""
	room.CurrentTurn = room.Players[0]

	h.logger.Info("game started", "room", room.ID, "players", len(room.Players))
	h.notifier.Broadcast(room.ID, events.GameStarted, events.GameStartedPayload{
		Players:     slices.Clone(room.Players),
		CurrentTurn: room.CurrentTurn,
	})
}

func (h *Handler) callNumber(connID string, req events.CallNumberRequest) {
	room, ok := h.rooms.GetRoom(req.RoomID)
	if !ok {
		return
	}
	if room.CurrentTurn != connID {
		h.emitError(connID, ErrNotYourTurn.Error())
		return
	}
	if room.Status != models.StatusPlaying {
		h.emitError(connID, ErrInvalidGameState.Error())
		return
	}
	n, ok := bingo.ParseNumber(req.Number)
	if !ok || !bingo.InRange(n) {
		h.emitError(connID, ErrInvalidNumber.Error())
		return
	}
	if !room.CallNumber(n) {
		return
	}

	winner := ""
	for _, playerID := range room.Players {
		board, ok := room.Boards[playerID]
		if !ok {
			continue
		}
		marked, ok := room.Marked[playerID]
		if !ok {
			marked = bingo.NumberSet{}
			room.Marked[playerID] = marked
		}
		marked.Add(n)

		if bingo.HasWon(board, marked) {
			winner = playerID
			break
		}
	}

	if winner != "" {
		room.Winner = winner
		room.Status = models.StatusFinished

		h.logger.Info("game won", "room", room.ID, "winner", winner, "calls", len(room.CalledNumbers()))
		h.notifier.Broadcast(room.ID, events.GameFinished, events.GameFinishedPayload{
			Winner:        room.WinnerRef(),
			CalledNumbers: room.CalledNumbers(),
		})
		return
	}

	room.CurrentTurn = room.NextPlayer(room.CurrentTurn)
	h.notifier.Broadcast(room.ID, events.NumberCalled, events.NumberCalledPayload{
		Number:        n,
		CalledNumbers: room.CalledNumbers(),
		CurrentTurn:   room.CurrentTurn,
	})
}

func (h *Handler) leaveRoom(connID string, req events.RoomRequest) {
	room, ok := h.rooms.GetRoom(req.RoomID)
	if !ok {
		return
	}
	pos := slices.Index(room.Players, connID)
	if _, ok := h.rooms.RemovePlayer(room.ID, connID); !ok {
		return
	}
	h.notifier.Leave(connID, room.ID)

	h.logger.Info("player left", "room", room.ID, "conn", connID)
	h.afterDeparture(room, connID, pos)
}

func (h *Handler) disconnect(connID string) {
	positions := make(map[string]int)
	for _, room := range h.rooms.GetAllRooms() {
		if pos := slices.Index(room.Players, connID); pos >= 0 {
			positions[room.ID] = pos
		}
	}

	for _, room := range h.rooms.RemovePlayerFromAllRooms(connID) {
		h.logger.Info("player disconnected", "room", room.ID, "conn", connID)
		h.afterDeparture(room, connID, positions[room.ID])
	}
}

// afterDeparture repairs room state once leftID, formerly at index pos of
// the player list, is gone.
func (h *Handler) afterDeparture(room *models.Room, leftID string, pos int) {
	h.notifier.Broadcast(room.ID, events.PlayerLeft, events.PlayerLeftPayload{
		Players:      slices.Clone(room.Players),
		LeftSocketID: leftID,
	})

	if len(room.Players) == 0 {
		h.rooms.DeleteRoom(room.ID)
		h.logger.Info("room deleted", "room", room.ID)
		return
	}

	if room.Host == leftID {
		room.Host = room.Players[0]
		h.notifier.Broadcast(room.ID, events.HostChanged, events.HostChangedPayload{NewHost: room.Host})
	}

	switch room.Status {
	case models.StatusPlaying:
		if len(room.Players) < 2 {
			room.Status = models.StatusFinished
			h.logger.Info("game ended early", "room", room.ID, "reason", events.ReasonNotEnoughPlayers)
			h.notifier.Broadcast(room.ID, events.GameFinished, events.GameFinishedPayload{
				Winner: room.WinnerRef(),
				Reason: events.ReasonNotEnoughPlayers,
			})
			return
		}
		if room.CurrentTurn == leftID {
			room.CurrentTurn = room.Players[pos%len(room.Players)]
			h.notifier.Broadcast(room.ID, events.TurnChanged, events.TurnChangedPayload{CurrentTurn: room.CurrentTurn})
		}
	case models.StatusSetup:
		if room.CurrentTurn == leftID {
			room.CurrentTurn = room.Host
		}
	}
}

func (h *Handler) emitError(connID, message string) {
	h.notifier.Emit(connID, events.GameError, events.GameErrorPayload{Message: message})
}

type nopNotifier struct{}

func (nopNotifier) Emit(string, string, any)      {}
func (nopNotifier) Broadcast(string, string, any) {}
func (nopNotifier) Join(string, string)           {}
func (nopNotifier) Leave(string, string)          {}
