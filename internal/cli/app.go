// Package cli is the terminal front-end: a home menu with the two entry
// routes and a board view driven by a session controller.
package cli

import (
	"bufio"
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

const (
	menuComputer = "1"
	menuFriend   = "2"
	cmdReset     = "r"
	cmdBack      = "q"
)

// Options wires the app's collaborators. Zero values get defaults.
type Options struct {
	Store         session.Store
	Calculator    bot.MoveCalculator
	Scheduler     session.Scheduler
	ComputerDelay time.Duration
	NewID         func() string
}

// App runs the terminal game loop.
type App struct {
	in   *bufio.Scanner
	out  *termenv.Output
	opts Options

	mu sync.Mutex
}

// New creates an App reading commands from in and drawing to out.
func New(in io.Reader, out *termenv.Output, opts Options) *App {
	if opts.Store == nil {
		opts.Store = repository.NewMemorySessionRepository()
	}
	if opts.Calculator == nil {
		opts.Calculator = bot.NewRandomMoveCalculator(nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = session.TimeScheduler
	}
	if opts.ComputerDelay <= 0 {
		opts.ComputerDelay = session.DefaultComputerDelay
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &App{in: bufio.NewScanner(in), out: out, opts: opts}
}

// Run shows the home menu until the user quits or input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		a.printf("\n%s\n  1) Play with Computer\n  2) Play with Friend\n  q) Quit\n> ",
			a.out.String("Tic-Tac-Toe").Bold())

		line, ok := a.readLine()
		if !ok {
			return a.in.Err()
		}

		var mode session.Mode
		switch line {
		case menuComputer:
			mode = session.ModeComputer
		case menuFriend:
			mode = session.ModeFriend
		case cmdBack:
			return nil
		default:
			a.printf("Unknown choice %q\n", line)
			continue
		}

		if err := a.play(ctx, mode); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// play runs one session until the user goes back to the menu.
func (a *App) play(ctx context.Context, mode session.Mode) (err error) {
	ctrl := session.NewController(a.opts.NewID(), mode, a.opts.Store, a.opts.Calculator, a.opts.Scheduler, a.opts.ComputerDelay)
	ctrl.SetView(&boardView{app: a})
	defer func() {
		if cerr := ctrl.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := ctrl.Start(ctx); err != nil {
		return err
	}

	for {
		line, ok := a.readLine()
		if !ok {
			if err := a.in.Err(); err != nil {
				return err
			}
			return io.EOF
		}

		switch line {
		case cmdBack:
			return nil
		case cmdReset:
			if _, err := ctrl.Reset(ctx); err != nil {
				return err
			}
			continue
		}

		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > 9 {
			a.printf("Enter a cell 1-9, r for a new game or q to go back.\n> ")
			continue
		}
		if _, _, err := ctrl.AttemptMove(ctx, n-1); err != nil {
			return err
		}
	}
}

func (a *App) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(a.in.Text())), true
}

func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
