package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// memorySession keeps sessions as JSON so callers never share memory with the store.
type memorySession struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return newMemorySessionRepository(ttl, time.Now)
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *memorySession {
	return &memorySession{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   now,
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.items[session.ID] = memoryItem{data: sessionJSON, expiresAt: that.expiry()}

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	item, ok := that.items[id]
	if !ok || that.expired(item) {
		delete(that.items, id)
		return nil, apperror.ErrSessionNotFound
	}

	item.expiresAt = that.expiry()
	that.items[id] = item

	var existingSession entity.Session
	if err := json.Unmarshal(item.data, &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingSession, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	item, ok := that.items[id]
	delete(that.items, id)

	if !ok || that.expired(item) {
		return apperror.ErrSessionNotFound
	}

	return nil
}

// expiry - zero time when sessions never expire.
func (that *memorySession) expiry() time.Time {
	if that.ttl <= 0 {
		return time.Time{}
	}

	return that.now().Add(that.ttl)
}

func (that *memorySession) expired(item memoryItem) bool {
	return !item.expiresAt.IsZero() && !that.now().Before(item.expiresAt)
}
