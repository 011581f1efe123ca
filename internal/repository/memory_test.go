package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (that *fakeClock) Now() time.Time {
	return that.now
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a copy of the session", func(t *testing.T) {
		// Given: a stored session
		sessionRepo := NewMemorySessionRepository(time.Hour)
		session := newPlayedSession(t)
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: the caller keeps playing without saving
		require.True(t, session.Game.ApplyMove(8))

		// Then: the stored session is unchanged
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, retrieved.Game.History, 4)
		assert.Equal(t, 2, retrieved.Game.StepNumber)
	})

	t.Run("Returns ErrSessionNotFound for unknown sessions", func(t *testing.T) {
		sessionRepo := NewMemorySessionRepository(time.Hour)

		_, err := sessionRepo.GetByID(ctx, "unknown")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)

		err = sessionRepo.DeleteByID(ctx, "unknown")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Expires sessions ttl after the last access", func(t *testing.T) {
		// Given: a session stored at noon with a one hour ttl
		clock := &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
		sessionRepo := newMemorySessionRepository(time.Hour, clock.Now)
		session := newPlayedSession(t)
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: it is read 50 minutes later
		clock.now = clock.now.Add(50 * time.Minute)
		_, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: it is still there and its expiry moved
		require.NoError(t, err)

		clock.now = clock.now.Add(50 * time.Minute)
		_, err = sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)

		// When: an hour passes without access
		clock.now = clock.now.Add(time.Hour)

		// Then: the session is gone
		_, err = sessionRepo.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Deletes sessions", func(t *testing.T) {
		sessionRepo := NewMemorySessionRepository(0)
		session := newPlayedSession(t)
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		require.NoError(t, sessionRepo.DeleteByID(ctx, session.ID))

		_, err := sessionRepo.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
