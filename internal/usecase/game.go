package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// GameUseCase - the operations a renderer forwards for one page session.
//
// Every operation returns the view to draw next. A move into an occupied cell
// or after the game is won is not an error: the unchanged view is returned.
type GameUseCase interface {
	Connect(ctx context.Context, sessionID string) (*entity.Session, error)
	GetView(ctx context.Context, sessionID string) (tictactoe.View, error)

	MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.View, error)
	JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.View, error)
	ToggleOrder(ctx context.Context, sessionID string) (tictactoe.View, error)
	Restart(ctx context.Context, sessionID string) (tictactoe.View, error)
}

type sessionService interface {
	CreateSession(ctx context.Context) (*entity.Session, error)
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	UpdateSession(ctx context.Context, session *entity.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// notifier - receives the new view after every change of a session.
type notifier interface {
	Publish(sessionID string, view tictactoe.View)
}

type gameUseCase struct {
	logger *slog.Logger

	sessionService sessionService
	notifier       notifier
	locks          *sessionLocks
}

func NewGameUseCase(logger *slog.Logger, sessionService sessionService, notifier notifier) GameUseCase {
	return &gameUseCase{
		logger:         logger,
		sessionService: sessionService,
		notifier:       notifier,
		locks:          newSessionLocks(),
	}
}

// Connect - returns the session of sessionID, or a new one when it is empty, unknown or unreadable.
func (that *gameUseCase) Connect(ctx context.Context, sessionID string) (*entity.Session, error) {
	log := that.logger.With("method", "Connect")

	if sessionID == "" {
		return that.createSession(ctx)
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, apperror.ErrSessionNotFound):
		log.Info("session expired, starting a new one", "session", sessionID)
	case errors.Is(err, service.ErrCorruptedSession):
		log.Error("dropping corrupted session", "session", sessionID, "error", err)

		if err = that.sessionService.DeleteSession(ctx, sessionID); err != nil {
			log.Error("failed to delete corrupted session", "session", sessionID, "error", err)
		}
	default:
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return that.createSession(ctx)
}

func (that *gameUseCase) GetView(ctx context.Context, sessionID string) (tictactoe.View, error) {
	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return tictactoe.View{}, fmt.Errorf("failed to get session: %w", err)
	}

	return session.Game.View(), nil
}

func (that *gameUseCase) MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.View, error) {
	if !tictactoe.ValidCell(cell) {
		return tictactoe.View{}, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	return that.update(ctx, sessionID, func(game *tictactoe.Game) (bool, error) {
		return game.ApplyMove(cell), nil
	})
}

func (that *gameUseCase) JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.View, error) {
	return that.update(ctx, sessionID, func(game *tictactoe.Game) (bool, error) {
		if !game.JumpTo(step) {
			return false, fmt.Errorf("%w: %d of %d", apperror.ErrInvalidStep, step, len(game.History))
		}

		return true, nil
	})
}

func (that *gameUseCase) ToggleOrder(ctx context.Context, sessionID string) (tictactoe.View, error) {
	return that.update(ctx, sessionID, func(game *tictactoe.Game) (bool, error) {
		game.ToggleOrder()
		return true, nil
	})
}

// Restart - replaces the game of the session with a new one.
func (that *gameUseCase) Restart(ctx context.Context, sessionID string) (tictactoe.View, error) {
	return that.update(ctx, sessionID, func(game *tictactoe.Game) (bool, error) {
		*game = *tictactoe.NewGame()
		return true, nil
	})
}

// update - applies change to the stored game under the session lock, saves and publishes the result.
// Nothing is saved or published when change reports that the game did not change.
func (that *gameUseCase) update(
	ctx context.Context,
	sessionID string,
	change func(game *tictactoe.Game) (bool, error),
) (tictactoe.View, error) {
	unlock := that.locks.lock(sessionID)
	defer unlock()

	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return tictactoe.View{}, fmt.Errorf("failed to get session: %w", err)
	}

	changed, err := change(session.Game)
	if err != nil {
		return tictactoe.View{}, err
	}

	if !changed {
		return session.Game.View(), nil
	}

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return tictactoe.View{}, fmt.Errorf("failed to update session: %w", err)
	}

	view := session.Game.View()
	that.notifier.Publish(session.ID, view)

	return view, nil
}

func (that *gameUseCase) createSession(ctx context.Context) (*entity.Session, error) {
	session, err := that.sessionService.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "session", session.ID)

	return session, nil
}
