package game

import (
	"errors"
	"fmt"
)

// Mark is the symbol a player places in a cell, or Empty.
type Mark string

type Status string

const (
	Empty   Mark = ""
	PlayerO Mark = "O"
	PlayerX Mark = "X"

	// FirstPlayer always opens a fresh game.
	FirstPlayer = PlayerO

	InProgress Status = "in_progress"
	Won        Status = "won"
	Draw       Status = "draw"

	BoardSize = 9
)

var ErrCorruptState = errors.New("corrupt game state")

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case PlayerO:
		return PlayerX
	case PlayerX:
		return PlayerO
	}
	return Empty
}

// Valid reports whether m is one of Empty, PlayerO or PlayerX.
func (m Mark) Valid() bool {
	return m == Empty || m == PlayerO || m == PlayerX
}

// Board holds the 9 cells in row-major order.
type Board [BoardSize]Mark

// Full reports whether no cell is Empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// State is an immutable snapshot of one game. Every accepted move produces a
// new State; the zero value is not a valid game, use New.
type State struct {
	board  Board
	logO   MoveLog
	logX   MoveLog
	turn   Mark
	status Status
	winner Mark
}

// New returns the canonical empty game with FirstPlayer to move.
func New() State {
	return State{
		turn:   FirstPlayer,
		status: InProgress,
	}
}

// Apply places the mark of the player to move at index. It returns the
// unchanged state and false when the game is over, the index is off the board
// or the cell is already taken.
func (s State) Apply(index int) (State, bool) {
	if s.status != InProgress {
		return s, false
	}
	if index < 0 || index >= BoardSize || s.board[index] != Empty {
		return s, false
	}

	next := s
	mover := s.turn
	next.board[index] = mover

	var moverLog MoveLog
	if mover == PlayerO {
		next.logO = next.logO.With(index)
		moverLog = next.logO
	} else {
		next.logX = next.logX.With(index)
		moverLog = next.logX
	}

	// Only the mover can have completed a pattern with this move.
	switch {
	case CheckWinner(moverLog):
		next.status = Won
		next.winner = mover
	case next.board.Full():
		next.status = Draw
	default:
		next.turn = mover.Opponent()
	}
	return next, true
}

// Board returns a copy of the cells.
func (s State) Board() Board { return s.board }

// Cell returns the mark at index, Empty when the index is off the board.
func (s State) Cell(index int) Mark {
	if index < 0 || index >= BoardSize {
		return Empty
	}
	return s.board[index]
}

// Turn is the player to move. After a terminal move it stays on the player
// who made that move.
func (s State) Turn() Mark { return s.turn }

func (s State) Status() Status { return s.status }

// Winner returns the winning mark once the status is Won.
func (s State) Winner() (Mark, bool) {
	return s.winner, s.status == Won
}

// IsOver reports whether the game reached Won or Draw.
func (s State) IsOver() bool { return s.status != InProgress }

// MoveLog returns the indices occupied by mark.
func (s State) MoveLog(mark Mark) MoveLog {
	switch mark {
	case PlayerO:
		return s.logO
	case PlayerX:
		return s.logX
	}
	return 0
}

// MovesPlayed counts the accepted moves.
func (s State) MovesPlayed() int {
	return s.logO.Len() + s.logX.Len()
}

// EmptyCells lists the free indices in ascending order.
func (s State) EmptyCells() []int {
	cells := make([]int, 0, BoardSize-s.MovesPlayed())
	for i, c := range s.board {
		if c == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// StatusText is the line shown above the board.
func (s State) StatusText() string {
	switch s.status {
	case Won:
		return fmt.Sprintf("Player %s Wins!", s.winner)
	case Draw:
		return "Game was a Draw."
	}
	return fmt.Sprintf("Player %s's turn", s.turn)
}

// Restore rebuilds a State from a stored board and checks that the stored
// turn, status and winner agree with it.
func Restore(board Board, turn Mark, status Status, winner Mark) (State, error) {
	var s State
	s.board = board
	for i, c := range board {
		if !c.Valid() {
			return State{}, fmt.Errorf("%w: cell %d holds %q", ErrCorruptState, i, c)
		}
		switch c {
		case PlayerO:
			s.logO = s.logO.With(i)
		case PlayerX:
			s.logX = s.logX.With(i)
		}
	}

	countO, countX := s.logO.Len(), s.logX.Len()
	if countO != countX && countO != countX+1 {
		return State{}, fmt.Errorf("%w: %d O marks against %d X marks", ErrCorruptState, countO, countX)
	}

	lastMover := PlayerX
	if countO > countX {
		lastMover = PlayerO
	}
	oWins, xWins := CheckWinner(s.logO), CheckWinner(s.logX)
	switch {
	case oWins && xWins:
		return State{}, fmt.Errorf("%w: both players completed a line", ErrCorruptState)
	case oWins || xWins:
		s.status = Won
		s.winner = PlayerO
		if xWins {
			s.winner = PlayerX
		}
		if s.winner != lastMover {
			return State{}, fmt.Errorf("%w: winner %s did not make the last move", ErrCorruptState, s.winner)
		}
		s.turn = lastMover
	case board.Full():
		s.status = Draw
		s.turn = lastMover
	default:
		s.status = InProgress
		s.turn = lastMover.Opponent()
	}

	if s.turn != turn || s.status != status || s.winner != winner {
		return State{}, fmt.Errorf("%w: stored turn=%q status=%q winner=%q, board says turn=%q status=%q winner=%q",
			ErrCorruptState, turn, status, winner, s.turn, s.status, s.winner)
	}
	return s, nil
}
