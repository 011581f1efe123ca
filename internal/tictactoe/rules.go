package tictactoe

import "fmt"

// Cell - the content of one square of the board.
type Cell string

const (
	Empty   Cell = ""
	PlayerX Cell = "X"
	PlayerO Cell = "O"
)

const (
	BoardSize = 9
	rowSize   = 3
)

// Board - nine cells in row-major order. It is an array, so every copy is an independent snapshot.
type Board [BoardSize]Cell

// Line - indices of three cells that win the game when they hold the same mark.
type Line [3]int

// WinCombos - rows top to bottom, columns left to right, then the \ and / diagonals.
var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Winner struct {
	Symbol Cell `json:"symbol"`
	Line   Line `json:"line"`
}

// EvaluateWinner - returns the first winning line of the board in WinCombos order.
func EvaluateWinner(board Board) (Winner, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != Empty && a == b && b == c {
			return Winner{Symbol: a, Line: combo}, true
		}
	}

	return Winner{}, false
}

// IsFull - reports whether no empty cell is left.
func IsFull(board Board) bool {
	for _, cell := range board {
		if cell == Empty {
			return false
		}
	}

	return true
}

func ValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

// CoordinateLabel - maps a cell index to "(col,row)" where row 0 is the bottom row.
// The result for an index outside 0..8 is an empty string.
func CoordinateLabel(cell int) string {
	if !ValidCell(cell) {
		return ""
	}

	col := cell % rowSize
	row := rowSize - 1 - cell/rowSize

	return fmt.Sprintf("(%d,%d)", col, row)
}

func (that Cell) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}
