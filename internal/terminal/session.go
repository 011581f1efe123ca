package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const helpText = `commands:
  0-8    place a mark on that cell
  j N    go to step N of the history
  t      toggle the history order
  r      start a new game
  h      show this help
  q      quit
`

var (
	errQuit           = errors.New("quit")
	errUnknownCommand = errors.New("unknown command, type h for help")
)

// Session - one local game driven by text commands.
type Session struct {
	game     *tictactoe.Game
	renderer *Renderer
	out      io.Writer
}

func NewSession(renderer *Renderer, out io.Writer) *Session {
	return &Session{
		game:     tictactoe.NewGame(),
		renderer: renderer,
		out:      out,
	}
}

// Run - reads commands from in until it is exhausted or the player quits.
func (that *Session) Run(in io.Reader) error {
	that.draw()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		err := that.Execute(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}

		if err != nil {
			fmt.Fprintln(that.out, err)
			continue
		}

		that.draw()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read command: %w", err)
	}

	return nil
}

// Execute - applies a single command line to the game.
// A move on an occupied cell or after the game is decided changes nothing and is not an error.
func (that *Session) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "q", "quit":
		return errQuit
	case "h", "help":
		fmt.Fprint(that.out, helpText)
		return nil
	case "t", "toggle":
		that.game.ToggleOrder()
		return nil
	case "r", "restart":
		that.game = tictactoe.NewGame()
		return nil
	case "j", "jump":
		if len(fields) != 2 {
			return errUnknownCommand
		}

		step, err := strconv.Atoi(fields[1])
		if err != nil || !that.game.JumpTo(step) {
			return fmt.Errorf("step must be between 0 and %d", that.game.MovesCount())
		}

		return nil
	}

	cell, err := strconv.Atoi(fields[0])
	if err != nil || len(fields) != 1 {
		return errUnknownCommand
	}

	if !tictactoe.ValidCell(cell) {
		return fmt.Errorf("cell must be between 0 and %d", tictactoe.BoardSize-1)
	}

	that.game.ApplyMove(cell)

	return nil
}

// View - the current state of the local game.
func (that *Session) View() tictactoe.View {
	return that.game.View()
}

func (that *Session) draw() {
	fmt.Fprintln(that.out, that.renderer.Render(that.game.View()))
}
