package bingo

import "sort"

// WinningLines is the number of fully covered lines a board needs to win.
const WinningLines = 5

// NumberSet holds called numbers.
type NumberSet map[int]struct{}

func (s NumberSet) Add(n int) {
	s[n] = struct{}{}
}

func (s NumberSet) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the members in ascending order.
func (s NumberSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// lines lists the cell indexes of every row, column and both diagonals.
var lines = buildLines()

func buildLines() [][GridSize]int {
	out := make([][GridSize]int, 0, 2*GridSize+2)
	for r := 0; r < GridSize; r++ {
		var row [GridSize]int
		for c := 0; c < GridSize; c++ {
			row[c] = r*GridSize + c
		}
		out = append(out, row)
	}
	for c := 0; c < GridSize; c++ {
		var col [GridSize]int
		for r := 0; r < GridSize; r++ {
			col[r] = r*GridSize + c
		}
		out = append(out, col)
	}
	var diag, anti [GridSize]int
	for i := 0; i < GridSize; i++ {
		diag[i] = i*GridSize + i
		anti[i] = i*GridSize + (GridSize - 1 - i)
	}
	return append(out, diag, anti)
}

// CompletedLines counts the rows, columns and diagonals whose cells are all
// non-empty and marked.
func CompletedLines(b Board, marked NumberSet) int {
	count := 0
	for _, line := range lines {
		covered := true
		for _, idx := range line {
			v := b[idx]
			if v == 0 || !marked.Has(v) {
				covered = false
				break
			}
		}
		if covered {
			count++
		}
	}
	return count
}

// HasWon reports whether at least WinningLines lines of the board are covered.
func HasWon(b Board, marked NumberSet) bool {
	return CompletedLines(b, marked) >= WinningLines
}
