package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

type mockNotifier struct {
	mock.Mock
}

func (that *mockNotifier) Publish(sessionID string, view tictactoe.View) {
	that.Called(sessionID, view)
}

type mockSessionService struct {
	mock.Mock
}

func (that *mockSessionService) CreateSession(ctx context.Context) (*entity.Session, error) {
	args := that.Called(ctx)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessionService) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessionService) UpdateSession(ctx context.Context, session *entity.Session) error {
	return that.Called(ctx, session).Error(0)
}

func (that *mockSessionService) DeleteSession(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newUseCase - a use case over the in-memory store, publishing into a notifier that accepts everything.
func newUseCase(t *testing.T) (GameUseCase, *mockNotifier) {
	t.Helper()

	notifier := &mockNotifier{}
	notifier.On("Publish", mock.Anything, mock.Anything).Return()

	sessionService := service.NewSessionService(repository.NewMemorySessionRepository(time.Hour))

	return NewGameUseCase(newLogger(), sessionService, notifier), notifier
}

func connect(t *testing.T, useCase GameUseCase) string {
	t.Helper()

	session, err := useCase.Connect(context.Background(), "")
	require.NoError(t, err)

	return session.ID
}

func TestGameUseCase_Connect(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a session when the id is empty", func(t *testing.T) {
		// Given: a use case
		useCase, _ := newUseCase(t)

		// When: connecting without a session id
		session, err := useCase.Connect(ctx, "")

		// Then: a new session with an empty game is returned
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, tictactoe.NewGame(), session.Game)
	})

	t.Run("Returns the existing session", func(t *testing.T) {
		// Given: a session with one move
		useCase, _ := newUseCase(t)
		sessionID := connect(t, useCase)
		_, err := useCase.MakeMove(ctx, sessionID, 4)
		require.NoError(t, err)

		// When: connecting again with its id
		session, err := useCase.Connect(ctx, sessionID)

		// Then: the same game is returned
		require.NoError(t, err)
		assert.Equal(t, sessionID, session.ID)
		assert.Equal(t, 1, session.Game.MovesCount())
	})

	t.Run("Creates a session when the id is unknown", func(t *testing.T) {
		useCase, _ := newUseCase(t)

		session, err := useCase.Connect(ctx, "expired")

		require.NoError(t, err)
		assert.NotEqual(t, "expired", session.ID)
	})

	t.Run("Drops a corrupted session and creates a new one", func(t *testing.T) {
		// Given: a stored session that fails validation
		sessions := &mockSessionService{}
		fresh := entity.NewSession("fresh", time.Now())
		sessions.On("GetSessionByID", ctx, "broken").Return(nil, service.ErrCorruptedSession).Once()
		sessions.On("DeleteSession", ctx, "broken").Return(nil).Once()
		sessions.On("CreateSession", ctx).Return(fresh, nil).Once()
		useCase := NewGameUseCase(newLogger(), sessions, &mockNotifier{})

		// When: connecting with its id
		session, err := useCase.Connect(ctx, "broken")

		// Then: the broken session is deleted and replaced
		require.NoError(t, err)
		assert.Same(t, fresh, session)
		sessions.AssertExpectations(t)
	})

	t.Run("Returns storage errors", func(t *testing.T) {
		sessions := &mockSessionService{}
		sessions.On("GetSessionByID", ctx, "s1").Return(nil, errRedisDown).Once()
		useCase := NewGameUseCase(newLogger(), sessions, &mockNotifier{})

		session, err := useCase.Connect(ctx, "s1")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, session)
	})
}

func TestGameUseCase_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves and publishes an accepted move", func(t *testing.T) {
		// Given: a new session
		useCase, notifier := newUseCase(t)
		sessionID := connect(t, useCase)

		// When: X plays the centre
		view, err := useCase.MakeMove(ctx, sessionID, 4)

		// Then: the view shows the move and it is published
		require.NoError(t, err)
		assert.Equal(t, tictactoe.PlayerX, view.Board[4])
		assert.Equal(t, "Next player: O", view.Status)
		assert.Equal(t, []int{4}, view.Highlighted)
		notifier.AssertCalled(t, "Publish", sessionID, view)

		stored, err := useCase.GetView(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, view, stored)
	})

	t.Run("Silently ignores a move into an occupied cell", func(t *testing.T) {
		// Given: a session where X took the centre
		useCase, notifier := newUseCase(t)
		sessionID := connect(t, useCase)
		before, err := useCase.MakeMove(ctx, sessionID, 4)
		require.NoError(t, err)

		// When: O plays the centre
		view, err := useCase.MakeMove(ctx, sessionID, 4)

		// Then: no error, the view is unchanged and nothing new is published
		require.NoError(t, err)
		assert.Equal(t, before, view)
		notifier.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("Silently ignores moves after a win", func(t *testing.T) {
		useCase, notifier := newUseCase(t)
		sessionID := connect(t, useCase)

		var won tictactoe.View
		for _, cell := range []int{0, 4, 1, 5, 2} {
			var err error
			won, err = useCase.MakeMove(ctx, sessionID, cell)
			require.NoError(t, err)
		}
		require.Equal(t, "Winner: X", won.Status)
		require.Equal(t, []int{0, 1, 2}, won.Highlighted)

		view, err := useCase.MakeMove(ctx, sessionID, 8)

		require.NoError(t, err)
		assert.Equal(t, won, view)
		notifier.AssertNumberOfCalls(t, "Publish", 5)
	})

	t.Run("Rejects cells outside the board", func(t *testing.T) {
		useCase, _ := newUseCase(t)
		sessionID := connect(t, useCase)

		_, err := useCase.MakeMove(ctx, sessionID, 9)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Returns ErrSessionNotFound for unknown sessions", func(t *testing.T) {
		useCase, _ := newUseCase(t)

		_, err := useCase.MakeMove(ctx, "unknown", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Returns the storage error when saving fails", func(t *testing.T) {
		// Given: a session service that cannot save
		session := entity.NewSession("s1", time.Now())
		sessions := &mockSessionService{}
		sessions.On("GetSessionByID", ctx, "s1").Return(session, nil).Once()
		sessions.On("UpdateSession", ctx, session).Return(errRedisDown).Once()
		notifier := &mockNotifier{}
		useCase := NewGameUseCase(newLogger(), sessions, notifier)

		// When: a move is made
		_, err := useCase.MakeMove(ctx, "s1", 0)

		// Then: the error is returned and nothing is published
		require.ErrorIs(t, err, errRedisDown)
		notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestGameUseCase_TimeTravel(t *testing.T) {
	ctx := context.Background()

	// Given: X won after moves 0, 4, 1, 5, 2
	useCase, _ := newUseCase(t)
	sessionID := connect(t, useCase)
	for _, cell := range []int{0, 4, 1, 5, 2} {
		_, err := useCase.MakeMove(ctx, sessionID, cell)
		require.NoError(t, err)
	}

	// When: jumping back to step 2
	view, err := useCase.JumpTo(ctx, sessionID, 2)

	// Then: the earlier position is shown and later moves are kept
	require.NoError(t, err)
	assert.Equal(t, 2, view.StepNumber)
	assert.Equal(t, tictactoe.PlayerX, view.NextPlayer)
	assert.Len(t, view.Moves, 6)

	// When: X plays cell 8 from there
	view, err = useCase.MakeMove(ctx, sessionID, 8)

	// Then: the two later moves are discarded
	require.NoError(t, err)
	assert.Equal(t, 3, view.StepNumber)
	assert.Len(t, view.Moves, 4)
	assert.Equal(t, "Next player: O", view.Status)

	t.Run("Rejects steps outside the history", func(t *testing.T) {
		_, err := useCase.JumpTo(ctx, sessionID, 4)
		require.ErrorIs(t, err, apperror.ErrInvalidStep)

		_, err = useCase.JumpTo(ctx, sessionID, -1)
		require.ErrorIs(t, err, apperror.ErrInvalidStep)
	})
}

func TestGameUseCase_ToggleOrder(t *testing.T) {
	ctx := context.Background()

	// Given: a session with one move, listed newest first
	useCase, _ := newUseCase(t)
	sessionID := connect(t, useCase)
	_, err := useCase.MakeMove(ctx, sessionID, 0)
	require.NoError(t, err)

	// When: the order is toggled
	view, err := useCase.ToggleOrder(ctx, sessionID)

	// Then: the moves are listed oldest first
	require.NoError(t, err)
	assert.False(t, view.Descending)
	assert.Equal(t, []tictactoe.Move{
		{Step: 0, Label: "Go to game start"},
		{Step: 1, Label: "Go to move #1(0,2)", Current: true},
	}, view.Moves)
}

func TestGameUseCase_Restart(t *testing.T) {
	ctx := context.Background()

	// Given: a session with moves
	useCase, _ := newUseCase(t)
	sessionID := connect(t, useCase)
	for _, cell := range []int{0, 4} {
		_, err := useCase.MakeMove(ctx, sessionID, cell)
		require.NoError(t, err)
	}

	// When: the game is restarted
	view, err := useCase.Restart(ctx, sessionID)

	// Then: the session holds a new game
	require.NoError(t, err)
	assert.Equal(t, tictactoe.NewGame().View(), view)
}

func TestGameUseCase_ConcurrentMoves(t *testing.T) {
	ctx := context.Background()

	// Given: a new session
	useCase, _ := newUseCase(t)
	sessionID := connect(t, useCase)

	// When: every cell is played at the same time
	var wg sync.WaitGroup
	for cell := 0; cell < tictactoe.BoardSize; cell++ {
		wg.Add(1)
		go func(cell int) {
			defer wg.Done()
			_, err := useCase.MakeMove(ctx, sessionID, cell)
			assert.NoError(t, err)
		}(cell)
	}
	wg.Wait()

	// Then: no move is lost and the stored history is consistent
	session, err := useCase.Connect(ctx, sessionID)
	require.NoError(t, err)
	require.NoError(t, session.Game.Validate())

	accepted := 0
	for _, cell := range session.Game.CurrentEntry().Board {
		if cell != tictactoe.Empty {
			accepted++
		}
	}
	assert.Equal(t, session.Game.MovesCount(), accepted)
	assert.NotEqual(t, tictactoe.StateInProgress, session.Game.Result())
}
