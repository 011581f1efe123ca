package rest

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

//go:embed static/index.html
var staticFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFiles, "static/index.html"))

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	IndexHandler(w http.ResponseWriter, _ *http.Request)
	SessionViewHandler(w http.ResponseWriter, r *http.Request)
}

type gameUseCase interface {
	GetView(ctx context.Context, sessionID string) (tictactoe.View, error)
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	socketPort  string
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase, socketPort string) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
		socketPort:  socketPort,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// IndexHandler - serves the page that draws the game and talks to the WebSocket server.
func (that *handlers) IndexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := indexTemplate.Execute(w, struct{ SocketPort string }{that.socketPort}); err != nil {
		that.logger.Error("failed to render index", "error", err)
	}
}

// SessionViewHandler - returns the view of a session as JSON.
func (that *handlers) SessionViewHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "SessionViewHandler")

	sessionID := chi.URLParam(r, "id")
	if !pkg.IsSessionID(sessionID) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	view, err := that.gameUseCase.GetView(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(view); err != nil {
		log.Error("failed to encode view", "error", err)
	}
}
