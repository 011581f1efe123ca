package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	highlightColor = "#ffcc00"
	rowSeparator   = "---+---+---"
)

// Renderer - draws a game view as text. Colours are used only when the output supports them.
type Renderer struct {
	output *termenv.Output
}

func NewRenderer(w io.Writer, opts ...termenv.OutputOption) *Renderer {
	return &Renderer{output: termenv.NewOutput(w, opts...)}
}

// Render - the board, the status line and the history list of view.
// Highlighted cells are bracketed, free cells show their index.
func (that *Renderer) Render(view tictactoe.View) string {
	var sb strings.Builder

	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString(rowSeparator + "\n")
		}

		cells := make([]string, 0, 3)
		for col := 0; col < 3; col++ {
			cells = append(cells, that.cell(view, row*3+col))
		}
		sb.WriteString(strings.Join(cells, "|") + "\n")
	}

	sb.WriteString("\n" + that.output.String(view.Status).Bold().String() + "\n\n")

	order := "oldest first"
	if view.Descending {
		order = "newest first"
	}
	sb.WriteString(fmt.Sprintf("History (%s):\n", order))

	for _, move := range view.Moves {
		marker := "  "
		if move.Current {
			marker = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%2d. %s\n", marker, move.Step, move.Label))
	}

	return sb.String()
}

func (that *Renderer) cell(view tictactoe.View, index int) string {
	mark := string(view.Board[index])

	if mark == "" {
		return " " + that.output.String(strconv.Itoa(index)).Faint().String() + " "
	}

	if view.IsHighlighted(index) {
		style := that.output.String(mark).Bold().Foreground(that.output.Color(highlightColor))
		return "[" + style.String() + "]"
	}

	return " " + mark + " "
}
