package models

import "ctchen222/tictactoe/internal/session"

// PlayResponse is returned when a view enters one of the game routes.
type PlayResponse struct {
	SessionID string              `json:"session_id"`
	Ticket    string              `json:"ticket"`
	State     session.RenderState `json:"state"`
}

// MoveRequest is a cell tap sent over HTTP.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"required,min=0,max=8"`
}

// MoveResponse reports whether a tap was accepted and the board after it.
type MoveResponse struct {
	Accepted bool                `json:"accepted"`
	State    session.RenderState `json:"state"`
}
