package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const sendBufferSize = 16

// client - one browser connection. Everything written to it goes through send.
type client struct {
	sessionID string
	send      chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(sessionID string) *client {
	return &client{
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
	}
}

// trySend - queues message without blocking. It reports false when the buffer is full or the client is closed.
func (that *client) trySend(message []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- message:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.send)
	}
}

// Hub - the connections of every session. It pushes the new view to all of them when a session changes.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		clients: make(map[string]map[*client]struct{}),
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[c.sessionID] == nil {
		that.clients[c.sessionID] = make(map[*client]struct{})
	}
	that.clients[c.sessionID][c] = struct{}{}
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if clients, ok := that.clients[c.sessionID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(that.clients, c.sessionID)
		}
	}

	c.close()
}

// Publish - sends the view to every connection of the session. Connections that cannot keep up are dropped.
func (that *Hub) Publish(sessionID string, view tictactoe.View) {
	log := that.logger.With("method", "Publish")

	message, err := encodeMessage(actionState, Payload{SessionID: sessionID, Game: &view})
	if err != nil {
		log.Error("failed to encode state", "session", sessionID, "error", err)
		return
	}

	var slow []*client

	that.mu.RLock()
	for c := range that.clients[sessionID] {
		if !c.trySend(message) {
			slow = append(slow, c)
		}
	}
	that.mu.RUnlock()

	for _, c := range slow {
		log.Info("dropping slow connection", "session", sessionID)
		that.unregister(c)
	}
}

func (that *Hub) connections(sessionID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[sessionID])
}
