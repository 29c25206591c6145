package handlers

import "errors"

// Errors reported to clients. The text is the message clients display.
var (
	ErrRoomNotFound          = errors.New("Room not found")
	ErrNotHost               = errors.New("Only host can start")
	ErrNotYourTurn           = errors.New("Not your turn")
	ErrInvalidGameState      = errors.New("Game not in playing state")
	ErrGameAlreadyStarted    = errors.New("Game already started")
	ErrIncompleteSubmissions = errors.New("Not all players submitted boards")
	ErrNotInRoom             = errors.New("You are not in this room")
	ErrInvalidNumber         = errors.New("Number must be between 1 and 25")
)

// ErrStopped is returned for actions submitted after the handler loop exited.
var ErrStopped = errors.New("handler stopped")

// lateSubmission is emitted as a game_error alongside the ErrGameAlreadyStarted reply.
const lateSubmission = "Cannot submit board after game has started"
