package main

import (
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/tictactoe-timetravel/internal"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
)

const defaultConfigPath = "config.yml"

func main() {
	configPath := os.Getenv("TTT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	conf := config.MustLoad(configPath)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.Level()}))

	if err := app.RunApp(logger, conf); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
