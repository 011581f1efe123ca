package tictactoe

import (
	"errors"
	"fmt"
	"slices"
)

const (
	StatusDraw         = "It is a draw!"
	statusWinnerPrefix = "Winner: "
	statusNextPrefix   = "Next player: "

	labelGameStart = "Go to game start"
	labelMove      = "Go to move #%d"
)

var (
	ErrEmptyHistory     = errors.New("history is empty")
	ErrStepOutOfRange   = errors.New("step is out of range")
	ErrCorruptedHistory = errors.New("history is corrupted")
)

// State - the whole-game state of a board.
type State string

const (
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateDraw       State = "draw"
)

// HistoryEntry - a board snapshot and the move that produced it.
type HistoryEntry struct {
	Board       Board `json:"board"`
	ChangedCell *int  `json:"changed_cell,omitempty"`
	Highlighted []int `json:"highlighted"`
}

// Game - the history of a game and the position currently shown.
//
// Moves made from a past position discard every later entry before the new
// one is appended. Reads never modify the stored history.
type Game struct {
	History    []HistoryEntry `json:"history"`
	StepNumber int            `json:"step_number"`
	Descending bool           `json:"descending"`
}

// NewGame - creates a game holding only the empty starting board.
func NewGame() *Game {
	return &Game{
		History: []HistoryEntry{
			{Highlighted: []int{}},
		},
		StepNumber: 0,
		Descending: true,
	}
}

// ApplyMove - puts the mark of the player to move into cell.
// Moves into an occupied cell, outside the board or after the game is won are ignored and reported as false.
func (that *Game) ApplyMove(cell int) bool {
	if !ValidCell(cell) {
		return false
	}

	current := that.History[that.StepNumber]
	if _, won := EvaluateWinner(current.Board); won || current.Board[cell] != Empty {
		return false
	}

	board := current.Board
	board[cell] = that.NextPlayer()
	changedCell := cell

	// the capacity limit makes append copy instead of writing over the discarded entries
	history := that.History[: that.StepNumber+1 : that.StepNumber+1]
	that.History = append(history, HistoryEntry{
		Board:       board,
		ChangedCell: &changedCell,
		Highlighted: []int{cell},
	})
	that.StepNumber = len(that.History) - 1

	return true
}

// JumpTo - shows the position after step moves. History is left as is.
// A step outside the history is ignored and reported as false.
func (that *Game) JumpTo(step int) bool {
	if step < 0 || step >= len(that.History) {
		return false
	}

	that.StepNumber = step

	return true
}

func (that *Game) ToggleOrder() {
	that.Descending = !that.Descending
}

// CurrentEntry - returns a copy of the entry at the current step.
func (that *Game) CurrentEntry() HistoryEntry {
	entry := that.History[that.StepNumber]
	entry.Highlighted = slices.Clone(entry.Highlighted)

	return entry
}

// NextPlayer - X moves on even steps, O on odd ones.
func (that *Game) NextPlayer() Cell {
	return playerForStep(that.StepNumber)
}

func (that *Game) Status() string {
	board := that.History[that.StepNumber].Board

	if winner, ok := EvaluateWinner(board); ok {
		return statusWinnerPrefix + string(winner.Symbol)
	}

	if IsFull(board) {
		return StatusDraw
	}

	return statusNextPrefix + string(that.NextPlayer())
}

// Highlighted - the winning line when the current board is won, otherwise the cell changed by the last move.
func (that *Game) Highlighted() []int {
	entry := that.History[that.StepNumber]

	if winner, ok := EvaluateWinner(entry.Board); ok {
		return winner.Line[:]
	}

	if entry.Highlighted == nil {
		return []int{}
	}

	return slices.Clone(entry.Highlighted)
}

func (that *Game) Result() State {
	board := that.History[that.StepNumber].Board

	switch _, won := EvaluateWinner(board); {
	case won:
		return StateWon
	case IsFull(board):
		return StateDraw
	default:
		return StateInProgress
	}
}

// MoveLabel - the caption of the history button leading to step.
func (that *Game) MoveLabel(step int) string {
	if step < 0 || step >= len(that.History) {
		return ""
	}

	if step == 0 {
		return labelGameStart
	}

	label := fmt.Sprintf(labelMove, step)
	if changed := that.History[step].ChangedCell; changed != nil {
		label += CoordinateLabel(*changed)
	}

	return label
}

// MovesCount - the number of accepted moves on the kept history.
func (that *Game) MovesCount() int {
	return len(that.History) - 1
}

// Validate - checks that a game restored from storage still holds a consistent history.
func (that *Game) Validate() error {
	if len(that.History) == 0 {
		return ErrEmptyHistory
	}

	if that.StepNumber < 0 || that.StepNumber >= len(that.History) {
		return fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, that.StepNumber, len(that.History))
	}

	start := that.History[0]
	if start.Board != (Board{}) || start.ChangedCell != nil {
		return fmt.Errorf("%w: game start is not an empty board", ErrCorruptedHistory)
	}

	for step := 1; step < len(that.History); step++ {
		if err := validateStep(that.History[step-1], that.History[step], step); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(prev, next HistoryEntry, step int) error {
	if next.ChangedCell == nil || !ValidCell(*next.ChangedCell) {
		return fmt.Errorf("%w: step %d has no valid changed cell", ErrCorruptedHistory, step)
	}

	if _, won := EvaluateWinner(prev.Board); won {
		return fmt.Errorf("%w: step %d follows a won board", ErrCorruptedHistory, step)
	}

	changed := *next.ChangedCell
	for i := range next.Board {
		if i == changed {
			continue
		}

		if next.Board[i] != prev.Board[i] {
			return fmt.Errorf("%w: step %d changes cell %d", ErrCorruptedHistory, step, i)
		}
	}

	if prev.Board[changed] != Empty || next.Board[changed] != playerForStep(step-1) {
		return fmt.Errorf("%w: step %d is not a move of %s", ErrCorruptedHistory, step, playerForStep(step-1))
	}

	return nil
}

func playerForStep(step int) Cell {
	if step%2 == 0 {
		return PlayerX
	}

	return PlayerO
}
