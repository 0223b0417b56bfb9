package proto

import "ctchen222/tictactoe/internal/session"

// Client message types.
const (
	TypeTap   = "tap"
	TypeReset = "reset"
)

// Server message types.
const (
	TypeUpdate   = "update"
	TypeGameOver = "game_over"
	TypeError    = "error"
)

// ClientToServerMessage represents a message from the view to the server.
// Cell is required for taps; validation of the tap range happens in the
// "cell" rule so out-of-range taps are rejected before they reach a session.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required,oneof=tap reset"`
	Cell *int   `json:"cell,omitempty" validate:"required_if=Type tap,omitempty,cell"`
}

// ServerToClientMessage carries render state to the view, or the reason a
// frame from the view was refused.
type ServerToClientMessage struct {
	Type   string               `json:"type"`
	State  *session.RenderState `json:"state,omitempty"`
	Reason string               `json:"reason,omitempty"`
}

// GameOverMessage is the modal alert raised once when a game ends.
type GameOverMessage struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewGameOverMessage wraps a session notification.
func NewGameOverMessage(n session.Notification) GameOverMessage {
	return GameOverMessage{Type: TypeGameOver, Title: n.Title, Body: n.Body}
}

// NewErrorMessage reports a frame the server could not act on.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
