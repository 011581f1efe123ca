package entity

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// Session - one page session of a browser, holding the game it plays.
type Session struct {
	ID        string          `json:"id"`
	Game      *tictactoe.Game `json:"game"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Game:      tictactoe.NewGame(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Session) Touch(now time.Time) {
	that.UpdatedAt = now
}
