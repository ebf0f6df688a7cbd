package entity

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""

	// BoardCells - the board is a 3x3 grid stored row-major.
	BoardCells = 9

	emptyCellChar = '_'
)

var ErrMalformedBoard = errors.New("malformed board state")

// WinCombos - the 3 rows, 3 columns and 2 diagonals of the grid.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - 9 cells, each empty or holding a player mark.
type Board [BoardCells]string

func NewBoard() Board {
	return Board{}
}

// ParseBoard - restores a board from its canonical 9-character form,
// where '_' stands for an empty cell.
func ParseBoard(state string) (Board, error) {
	var board Board

	if len(state) != BoardCells {
		return board, fmt.Errorf("%w: expected %d characters, got %d", ErrMalformedBoard, BoardCells, len(state))
	}

	for i, char := range state {
		switch char {
		case emptyCellChar:
			board[i] = EmptyCell
		case 'X':
			board[i] = MarkX
		case 'O':
			board[i] = MarkO
		default:
			return Board{}, fmt.Errorf("%w: unexpected character %q", ErrMalformedBoard, char)
		}
	}

	return board, nil
}

// String - canonical 9-character form, '_' for empty cells.
func (that Board) String() string {
	var builder strings.Builder
	builder.Grow(BoardCells)

	for _, cell := range that {
		if cell == EmptyCell {
			builder.WriteByte(emptyCellChar)
			continue
		}
		builder.WriteString(cell)
	}

	return builder.String()
}

func (that Board) Count(mark string) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}
	return count
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// Winner - returns the mark holding a full combo, or an empty string.
// A board reached through legal alternating moves has at most one winner.
func (that Board) Winner() string {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// NextTurn - X moves first, so it is X's turn whenever the counts are equal.
// The turn is derived from the board, not stored.
func (that Board) NextTurn() string {
	if that.Count(MarkX) == that.Count(MarkO) {
		return MarkX
	}
	return MarkO
}
