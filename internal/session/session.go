// Package session runs one game of Tic-Tac-Toe for one view: it accepts cell
// taps, plays the computer opponent and reports render state and the
// game-over notification.
package session

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"errors"
)

type Mode string

const (
	ModeComputer Mode = "computer"
	ModeFriend   Mode = "friend"

	// HumanMark is the human's mark against the computer; the computer plays
	// the other one.
	HumanMark    = game.PlayerO
	ComputerMark = game.PlayerX

	NotificationTitle = "Game Over"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeComputer || m == ModeFriend
}

// Snapshot is everything stored for a live session. Generation increases on
// every reset so work scheduled against an earlier game can detect that it
// is stale.
type Snapshot struct {
	ID         string
	Mode       Mode
	Generation uint64
	Game       game.State
}

// Store keeps live session snapshots.
type Store interface {
	Create(ctx context.Context, snap Snapshot) error
	// Load returns an error wrapping ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (Snapshot, error)
	// Update applies fn to the current snapshot and writes the result when fn
	// reports a change. fn may run more than once if the store retries.
	Update(ctx context.Context, id string, fn func(Snapshot) (Snapshot, bool)) (Snapshot, bool, error)
	Delete(ctx context.Context, id string) error
}

//go:generate mockgen -destination=mock_view_test.go -package=session_test ctchen222/tictactoe/internal/session View

// View is the rendering side of a session.
type View interface {
	Render(ctx context.Context, state RenderState)
	Alert(ctx context.Context, n Notification)
}

// Notification is the one-shot message raised when a game ends.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Cell is one square as a view draws it.
type Cell struct {
	Index       int       `json:"index"`
	Mark        game.Mark `json:"mark"`
	Interactive bool      `json:"interactive"`
}

// RenderState is what a view needs to draw the board.
type RenderState struct {
	SessionID  string               `json:"session_id"`
	Mode       Mode                 `json:"mode"`
	Cells      [game.BoardSize]Cell `json:"cells"`
	StatusText string               `json:"status_text"`
	Status     game.Status          `json:"status"`
	Turn       game.Mark            `json:"turn"`
	Winner     game.Mark            `json:"winner,omitempty"`
	GameOver   bool                 `json:"game_over"`
	Generation uint64               `json:"generation"`
}

// NewSnapshot returns a fresh game for id.
func NewSnapshot(id string, mode Mode) Snapshot {
	return Snapshot{ID: id, Mode: mode, Game: game.New()}
}

// Render derives the view state from a snapshot.
func Render(s Snapshot) RenderState {
	g := s.Game
	winner, _ := g.Winner()
	rs := RenderState{
		SessionID:  s.ID,
		Mode:       s.Mode,
		StatusText: g.StatusText(),
		Status:     g.Status(),
		Turn:       g.Turn(),
		Winner:     winner,
		GameOver:   g.IsOver(),
		Generation: s.Generation,
	}
	humanTurn := s.Mode != ModeComputer || g.Turn() == HumanMark
	for i := range rs.Cells {
		mark := g.Cell(i)
		rs.Cells[i] = Cell{
			Index:       i,
			Mark:        mark,
			Interactive: mark == game.Empty && !g.IsOver() && humanTurn,
		}
	}
	return rs
}

// Board returns the marks of the rendered cells.
func (rs RenderState) Board() game.Board {
	var b game.Board
	for i, c := range rs.Cells {
		b[i] = c.Mark
	}
	return b
}

type nopView struct{}

func (nopView) Render(context.Context, RenderState) {}
func (nopView) Alert(context.Context, Notification) {}
