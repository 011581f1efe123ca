package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	sessionCookieName = "user_session"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	shutdownWait   = 5 * time.Second
)

type gameUseCase interface {
	Connect(ctx context.Context, sessionID string) (*entity.Session, error)
	GetView(ctx context.Context, sessionID string) (tictactoe.View, error)

	MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.View, error)
	JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.View, error)
	ToggleOrder(ctx context.Context, sessionID string) (tictactoe.View, error)
	Restart(ctx context.Context, sessionID string) (tictactoe.View, error)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	hub         *Hub
	upgrader    websocket.Upgrader
	sessionTTL  time.Duration

	handlers map[string]func(ctx context.Context, c *client, payload Payload) error
}

func New(logger *slog.Logger, gameUseCase gameUseCase, hub *Hub, sessionTTL time.Duration) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the page is served from the HTTP port, so the origin differs from the socket host
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessionTTL: sessionTTL,

		handlers: make(map[string]func(context.Context, *client, Payload) error),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionToggle] = server.handleToggle
	server.handlers[actionRestart] = server.handleRestart

	return server
}

// Handler - the /ws endpoint. Connections live until the peer leaves or ctx is canceled.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - binds the connection to the page session of the cookie and upgrades it.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	var sessionID string
	if cookie, err := req.Cookie(sessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	session, err := that.gameUseCase.Connect(ctx, sessionID)
	if err != nil {
		log.Error("failed to connect session", "error", err)
		http.Error(writer, "failed to start session", http.StatusInternalServerError)
		return
	}

	// the store extends the session on every read, so the cookie is extended with it
	header := http.Header{}
	if session.ID != sessionID || that.sessionTTL > 0 {
		header.Add("Set-Cookie", that.sessionCookie(session.ID).String())
	}

	if session.ID != sessionID {
		log.Info("session cookie not found, new one created", "session", session.ID)
	}

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(session.ID)
	that.hub.register(c)

	go that.writePump(conn, c)

	view := session.Game.View()
	that.reply(c, actionConnect, Payload{SessionID: session.ID, Game: &view})

	log.Info("WebSocket connection established", "session", session.ID)

	that.readPump(ctx, conn, c)
}

func (that *Server) sessionCookie(sessionID string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if that.sessionTTL > 0 {
		cookie.Expires = time.Now().Add(that.sessionTTL)
	}

	return cookie
}

// readPump - processes messages from the client until the connection breaks.
func (that *Server) readPump(ctx context.Context, conn *websocket.Conn, c *client) {
	log := that.logger.With("method", "readPump", "session", c.sessionID)

	defer func() {
		that.hub.unregister(c)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.replyError(c, "", errInvalidMessage)
			continue
		}

		that.handleMessage(ctx, c, &message)
	}
}

// writePump - the only writer of conn. It also keeps the connection alive with pings.
func (that *Server) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *Server) reply(c *client, action string, payload Payload) {
	message, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode reply", "action", action, "error", err)
		return
	}

	if !c.trySend(message) {
		that.logger.Info("reply dropped", "action", action, "session", c.sessionID)
	}
}

func (that *Server) replyError(c *client, action string, err error) {
	that.reply(c, action, Payload{SessionID: c.sessionID, Error: errorText(err)})
}
