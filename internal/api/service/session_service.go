package service

import (
	"context"
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/room"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/internal/ticket"
	"errors"
	"fmt"
	"net/http"
)

// SessionService defines the session operations exposed over HTTP.
type SessionService interface {
	Play(ctx context.Context, mode session.Mode) (*models.PlayResponse, error)
	State(ctx context.Context, id string) (session.RenderState, error)
	Move(ctx context.Context, id string, cell int) (*models.MoveResponse, error)
	Reset(ctx context.Context, id string) (session.RenderState, error)
	Leave(ctx context.Context, id string) error
	Authorize(id, rawTicket string) error
	Attach(ctx context.Context, id string, conn room.Connection) (*room.Room, error)
}

type sessionService struct {
	hub     *hub.Hub
	tickets *ticket.Issuer
}

// NewSessionService creates a SessionService over the hub.
func NewSessionService(h *hub.Hub, tickets *ticket.Issuer) SessionService {
	return &sessionService{hub: h, tickets: tickets}
}

// Play starts a session and issues the ticket its view must present.
func (s *sessionService) Play(ctx context.Context, mode session.Mode) (*models.PlayResponse, error) {
	sess, err := s.hub.Create(ctx, mode)
	if err != nil {
		return nil, apiError(err)
	}

	id := sess.Controller.ID()
	tk, err := s.tickets.Issue(id)
	if err != nil {
		_ = s.hub.Close(ctx, id)
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	state, err := sess.Controller.State(ctx)
	if err != nil {
		return nil, apiError(err)
	}

	return &models.PlayResponse{SessionID: id, Ticket: tk, State: state}, nil
}

func (s *sessionService) State(ctx context.Context, id string) (session.RenderState, error) {
	sess, err := s.hub.Get(id)
	if err != nil {
		return session.RenderState{}, apiError(err)
	}
	state, err := sess.Controller.State(ctx)
	if err != nil {
		return session.RenderState{}, apiError(err)
	}
	return state, nil
}

func (s *sessionService) Move(ctx context.Context, id string, cell int) (*models.MoveResponse, error) {
	sess, err := s.hub.Get(id)
	if err != nil {
		return nil, apiError(err)
	}
	state, accepted, err := sess.Controller.AttemptMove(ctx, cell)
	if err != nil {
		return nil, apiError(err)
	}
	return &models.MoveResponse{Accepted: accepted, State: state}, nil
}

func (s *sessionService) Reset(ctx context.Context, id string) (session.RenderState, error) {
	sess, err := s.hub.Get(id)
	if err != nil {
		return session.RenderState{}, apiError(err)
	}
	state, err := sess.Controller.Reset(ctx)
	if err != nil {
		return session.RenderState{}, apiError(err)
	}
	return state, nil
}

// Leave tears the session down, as when the view navigates away.
func (s *sessionService) Leave(ctx context.Context, id string) error {
	return apiError(s.hub.Close(ctx, id))
}

// Authorize checks that rawTicket was issued for session id.
func (s *sessionService) Authorize(id, rawTicket string) error {
	return apiError(s.tickets.Verify(rawTicket, id))
}

// Attach adds conn as a view of the session and returns the room to pump
// its messages into.
func (s *sessionService) Attach(ctx context.Context, id string, conn room.Connection) (*room.Room, error) {
	sess, err := s.hub.Get(id)
	if err != nil {
		return nil, apiError(err)
	}
	if err := sess.Room.Attach(ctx, conn); err != nil {
		return nil, apiError(err)
	}
	return sess.Room, nil
}

// apiError attaches an HTTP status to known domain errors.
func apiError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return response.NewError(http.StatusNotFound, "session not found")
	case errors.Is(err, ticket.ErrInvalidTicket):
		return response.NewError(http.StatusUnauthorized, "invalid ticket")
	case errors.Is(err, hub.ErrUnknownMode):
		return response.NewError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
