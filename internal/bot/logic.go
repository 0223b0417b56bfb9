package bot

import (
	"ctchen222/tictactoe/internal/game"
	"math/rand/v2"
	"sync"
)

// MoveCalculator picks the computer's next cell.
type MoveCalculator interface {
	CalculateNextMove(board game.Board) (index int, ok bool)
}

// RandomMoveCalculator picks uniformly among the empty cells. It makes no
// attempt to win or block.
type RandomMoveCalculator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomMoveCalculator uses src for its choices, or the runtime's global
// source when src is nil.
func NewRandomMoveCalculator(src rand.Source) *RandomMoveCalculator {
	c := &RandomMoveCalculator{}
	if src != nil {
		c.rng = rand.New(src)
	}
	return c
}

// CalculateNextMove returns false when the board is full.
func (c *RandomMoveCalculator) CalculateNextMove(board game.Board) (int, bool) {
	available := make([]int, 0, game.BoardSize)
	for i, cell := range board {
		if cell == game.Empty {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		return -1, false
	}
	return available[c.intN(len(available))], true
}

func (c *RandomMoveCalculator) intN(n int) int {
	if c.rng == nil {
		return rand.IntN(n)
	}
	// rand.Rand is not safe for concurrent use.
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}
