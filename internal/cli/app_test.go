package cli

import (
	"bytes"
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/session"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

// heldScheduler records computer replies without running them.
type heldScheduler struct{ scheduled int }

func (s *heldScheduler) AfterFunc(time.Duration, func()) session.Timer {
	s.scheduled++
	return noopTimer{}
}

// firstEmpty always picks the lowest empty cell.
type firstEmpty struct{}

func (firstEmpty) CalculateNextMove(board game.Board) (int, bool) {
	for i, m := range board {
		if m == game.Empty {
			return i, true
		}
	}
	return -1, false
}

func runApp(t *testing.T, input string, opts Options) (string, repository.SessionRepository) {
	t.Helper()
	store := repository.NewMemorySessionRepository()
	opts.Store = store
	if opts.NewID == nil {
		opts.NewID = func() string { return "cli-test" }
	}
	if opts.Scheduler == nil {
		opts.Scheduler = &heldScheduler{}
	}

	var buf bytes.Buffer
	app := New(strings.NewReader(input), termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii)), opts)
	require.NoError(t, app.Run(context.Background()))
	return buf.String(), store
}

func TestApp_FriendGameWin(t *testing.T) {
	out, _ := runApp(t, "2\n1\n4\n2\n5\n3\nq\nq\n", Options{})

	assert.Contains(t, out, "Play with Computer")
	assert.Contains(t, out, "Play with Friend")
	assert.Contains(t, out, " O | O | O ")
	assert.Contains(t, out, "Player O Wins!")
	assert.Equal(t, 1, strings.Count(out, "Game Over"))
}

func TestApp_FriendGameDraw(t *testing.T) {
	// O: 1 2 6 7 9, X: 3 4 5 8 leaves no line for either.
	out, _ := runApp(t, "2\n1\n3\n2\n4\n6\n5\n7\n8\n9\nq\nq\n", Options{})

	assert.Contains(t, out, "Game was a Draw.")
	assert.Equal(t, 1, strings.Count(out, "Game Over"))
}

func TestApp_IgnoresBadInput(t *testing.T) {
	out, _ := runApp(t, "7\n2\nx\n0\n10\n1\n1\nq\nq\n", Options{})

	assert.Contains(t, out, `Unknown choice "7"`)
	assert.Equal(t, 3, strings.Count(out, "Enter a cell 1-9"))
	// The second tap on cell 1 is ignored, so X is still to move.
	assert.Equal(t, 1, strings.Count(out, "Player X's turn"))
	assert.NotContains(t, out, "Game Over")
}

func TestApp_ResetAfterGameOver(t *testing.T) {
	out, _ := runApp(t, "2\n1\n4\n2\n5\n3\nr\nq\nq\n", Options{})

	i := strings.LastIndex(out, "Player O's turn")
	j := strings.Index(out, "Player O Wins!")
	require.NotEqual(t, -1, j)
	assert.Greater(t, i, j)
	assert.Contains(t, out[i-60:i], " 7 | 8 | 9 ")
}

func TestApp_ComputerGameSchedulesReply(t *testing.T) {
	sched := &heldScheduler{}
	out, _ := runApp(t, "1\n5\n1\nq\nq\n", Options{Scheduler: sched, Calculator: firstEmpty{}})

	assert.Equal(t, 1, sched.scheduled)
	assert.Contains(t, out, "Player X's turn")
	assert.Equal(t, 1, strings.Count(out, "Player X's turn"))
}

func TestApp_ComputerReplies(t *testing.T) {
	out, _ := runApp(t, "1\n5\n", Options{
		Scheduler:     session.TimeScheduler,
		ComputerDelay: time.Millisecond,
		Calculator:    firstEmpty{},
	})

	// Input ends right after the tap, so the reply may or may not land
	// before the session closes; either way the human move is shown.
	assert.Contains(t, out, " O ")
}

func TestApp_BackToMenuClosesSession(t *testing.T) {
	_, store := runApp(t, "2\n1\nq\nq\n", Options{})

	_, err := store.Load(context.Background(), "cli-test")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestApp_EOFMidGame(t *testing.T) {
	out, store := runApp(t, "2\n1\n", Options{})

	assert.Contains(t, out, "Player X's turn")
	_, err := store.Load(context.Background(), "cli-test")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
