package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

var (
	errInvalidMessage = errors.New("invalid message")
	errMissingCell    = errors.New("cell is required")
	errMissingStep    = errors.New("step is required")
)

func (that *Server) handleMessage(ctx context.Context, c *client, msg *Message) {
	log := that.logger.With("method", "handleMessage", "action", msg.Action, "session", c.sessionID)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Error("error processing message", "error", apperror.ErrUnknownAction)
		that.replyError(c, msg.Action, apperror.ErrUnknownAction)
		return
	}

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		that.replyError(c, msg.Action, errInvalidMessage)
		return
	}

	if err = handler(ctx, c, payload); err != nil {
		log.Error("error processing message", "error", err)
		that.replyError(c, msg.Action, err)
	}
}

// handleConnect - sends the current view again, e.g. after the page was reloaded from cache.
func (that *Server) handleConnect(ctx context.Context, c *client, _ Payload) error {
	view, err := that.gameUseCase.GetView(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("failed to get view: %w", err)
	}

	that.reply(c, actionConnect, Payload{SessionID: c.sessionID, Game: &view})

	return nil
}

// The game handlers answer through the hub: every change is published to all connections of the session.
// A rejected move changes nothing, so nothing is sent.

func (that *Server) handleMove(ctx context.Context, c *client, payload Payload) error {
	if payload.Cell == nil {
		return errMissingCell
	}

	if _, err := that.gameUseCase.MakeMove(ctx, c.sessionID, *payload.Cell); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

func (that *Server) handleJump(ctx context.Context, c *client, payload Payload) error {
	if payload.Step == nil {
		return errMissingStep
	}

	if _, err := that.gameUseCase.JumpTo(ctx, c.sessionID, *payload.Step); err != nil {
		return fmt.Errorf("failed to jump: %w", err)
	}

	return nil
}

func (that *Server) handleToggle(ctx context.Context, c *client, _ Payload) error {
	if _, err := that.gameUseCase.ToggleOrder(ctx, c.sessionID); err != nil {
		return fmt.Errorf("failed to toggle order: %w", err)
	}

	return nil
}

func (that *Server) handleRestart(ctx context.Context, c *client, _ Payload) error {
	if _, err := that.gameUseCase.Restart(ctx, c.sessionID); err != nil {
		return fmt.Errorf("failed to restart game: %w", err)
	}

	return nil
}

// errorText - the message shown to the player. Internal failures are not described.
func errorText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell):
		return "cell must be between 0 and 8"
	case errors.Is(err, apperror.ErrInvalidStep):
		return "step is outside the history"
	case errors.Is(err, apperror.ErrSessionNotFound):
		return "session expired, reload the page"
	case errors.Is(err, apperror.ErrUnknownAction),
		errors.Is(err, errInvalidMessage),
		errors.Is(err, errMissingCell),
		errors.Is(err, errMissingStep):
		return err.Error()
	default:
		return "internal error"
	}
}
