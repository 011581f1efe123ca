package tictactoe

import "slices"

// Move - one entry of the history list shown to the player.
type Move struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// View - everything a renderer needs to draw the game. It shares no memory with the Game.
type View struct {
	Board       Board  `json:"board"`
	Highlighted []int  `json:"highlighted"`
	Status      string `json:"status"`
	NextPlayer  Cell   `json:"next_player"`
	Result      State  `json:"result"`
	StepNumber  int    `json:"step_number"`
	Descending  bool   `json:"descending"`
	Moves       []Move `json:"moves"`
}

// Moves - the history list, reverse-chronological when the game is in descending order.
func (that *Game) Moves() []Move {
	moves := make([]Move, 0, len(that.History))
	for step := range that.History {
		moves = append(moves, Move{
			Step:    step,
			Label:   that.MoveLabel(step),
			Current: step == that.StepNumber,
		})
	}

	if that.Descending {
		slices.Reverse(moves)
	}

	return moves
}

func (that *Game) View() View {
	return View{
		Board:       that.History[that.StepNumber].Board,
		Highlighted: that.Highlighted(),
		Status:      that.Status(),
		NextPlayer:  that.NextPlayer(),
		Result:      that.Result(),
		StepNumber:  that.StepNumber,
		Descending:  that.Descending,
		Moves:       that.Moves(),
	}
}

// IsHighlighted - reports whether cell is among the highlighted cells.
func (that View) IsHighlighted(cell int) bool {
	return slices.Contains(that.Highlighted, cell)
}
