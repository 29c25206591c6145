package bingo

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	GridSize  = 5
	CellCount = GridSize * GridSize
	MinNumber = 1
	MaxNumber = CellCount
)

var (
	ErrInvalidLength = errors.New("Board must have 25 cells")
	ErrOutOfRange    = errors.New("Numbers must be between 1 and 25")
	ErrDuplicate     = errors.New("Numbers must be unique")
)

// Board is a 5x5 grid in row-major order. A zero cell is empty.
type Board [CellCount]int

// Strings renders the board the way clients send it: one decimal string per cell.
func (b Board) Strings() []string {
	out := make([]string, len(b))
	for i, v := range b {
		if v == 0 {
			continue
		}
		out[i] = strconv.Itoa(v)
	}
	return out
}

// ParseBoard validates a submitted board and returns it in canonical form.
// Cells may be JSON numbers or numeric strings.
func ParseBoard(cells []any) (Board, error) {
	var b Board
	if len(cells) != CellCount {
		return b, ErrInvalidLength
	}

	for i, c := range cells {
		n, ok := ParseNumber(c)
		if !ok || !InRange(n) {
			return Board{}, ErrOutOfRange
		}
		b[i] = n
	}

	seen := make(map[int]struct{}, CellCount)
	for _, n := range b {
		if _, dup := seen[n]; dup {
			return Board{}, ErrDuplicate
		}
		seen[n] = struct{}{}
	}
	return b, nil
}

// Validate reports the first structural problem with a submitted board, or nil.
func Validate(cells []any) error {
	_, err := ParseBoard(cells)
	return err
}

// InRange reports whether n is a number that can appear on a board.
func InRange(n int) bool {
	return n >= MinNumber && n <= MaxNumber
}

// ParseNumber converts a decoded JSON value (number or numeric string) to an int.
// Fractional numbers, empty strings and nil are rejected.
func ParseNumber(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, false
		}
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
