package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/terminal"
)

// main - plays a local game in the terminal, reading commands from stdin.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	renderer := terminal.NewRenderer(os.Stdout, termenv.WithColorCache(true))
	session := terminal.NewSession(renderer, os.Stdout)

	fmt.Fprintln(os.Stdout, "type h for help")

	if err := session.Run(os.Stdin); err != nil {
		logger.Error("terminal session failed", "error", err)
		os.Exit(1)
	}
}
