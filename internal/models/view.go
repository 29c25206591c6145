package models

import "time"

// RoomView is the client-facing form of a Room. It shares no memory with
// the Room it was built from.
type RoomView struct {
	ID            string              `json:"id"`
	Host          string              `json:"host"`
	Players       []string            `json:"players"`
	GameType      string              `json:"gameType"`
	GameStatus    GameStatus          `json:"gameStatus"`
	Boards        map[string][]string `json:"boards"`
	Marked        map[string][]int    `json:"marked"`
	CalledNumbers []int               `json:"calledNumbers"`
	Winner        *string             `json:"winner"`
	CurrentTurn   string              `json:"currentTurn"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func (r *Room) View() RoomView {
	v := RoomView{
		ID:            r.ID,
		Host:          r.Host,
		Players:       append([]string{}, r.Players...),
		GameType:      r.GameType,
		GameStatus:    r.Status,
		Boards:        make(map[string][]string, len(r.Boards)),
		Marked:        make(map[string][]int, len(r.Marked)),
		CalledNumbers: r.CalledNumbers(),
		Winner:        r.WinnerRef(),
		CurrentTurn:   r.CurrentTurn,
		CreatedAt:     r.CreatedAt,
	}
	for id, b := range r.Boards {
		v.Boards[id] = b.Strings()
	}
	for id, m := range r.Marked {
		v.Marked[id] = m.Sorted()
	}
	return v
}

// WinnerRef returns nil when no winner is set, so it serializes as null.
func (r *Room) WinnerRef() *string {
	if r.Winner == "" {
		return nil
	}
	w := r.Winner
	return &w
}
