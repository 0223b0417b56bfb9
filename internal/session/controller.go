package session

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultComputerDelay lets the human's mark show before the computer answers.
const DefaultComputerDelay = 500 * time.Millisecond

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")

	movesCounter, _    = meter.Int64Counter("session.moves", metric.WithDescription("Accepted moves"))
	finishedCounter, _ = meter.Int64Counter("session.games_finished", metric.WithDescription("Games that reached a win or a draw"))
	droppedCounter, _  = meter.Int64Counter("session.deferred_moves_dropped", metric.WithDescription("Computer moves dropped because their session was reset or closed"))
)

// Controller owns one live session. All operations are serialized; the
// deferred computer move runs on a timer goroutine and takes the same lock.
type Controller struct {
	id    string
	mode  Mode
	store Store
	calc  bot.MoveCalculator
	sched Scheduler
	delay time.Duration

	mu      sync.Mutex
	view    View
	pending *pendingMove
	closed  bool
}

type pendingMove struct {
	timer      Timer
	generation uint64
}

// NewController prepares a controller for id. Call Start to create its game.
func NewController(id string, mode Mode, store Store, calc bot.MoveCalculator, sched Scheduler, delay time.Duration) *Controller {
	if sched == nil {
		sched = TimeScheduler
	}
	if calc == nil {
		calc = bot.NewRandomMoveCalculator(nil)
	}
	return &Controller{
		id:    id,
		mode:  mode,
		store: store,
		calc:  calc,
		sched: sched,
		delay: delay,
		view:  nopView{},
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Mode() Mode { return c.mode }

// SetView replaces the view that receives render updates and notifications.
// View methods run with the controller locked and must not call back into it.
func (c *Controller) SetView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == nil {
		v = nopView{}
	}
	c.view = v
}

// Start stores a fresh game and renders it.
func (c *Controller) Start(ctx context.Context) (RenderState, error) {
	ctx, span := c.startSpan(ctx, "session.Start")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := NewSnapshot(c.id, c.mode)
	if err := c.store.Create(ctx, snap); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return RenderState{}, fmt.Errorf("failed to create session %s: %w", c.id, err)
	}
	slog.InfoContext(ctx, "Session started", "session.id", c.id, "session.mode", c.mode)

	rs := Render(snap)
	c.view.Render(ctx, rs)
	return rs, nil
}

// State returns the current render state.
func (c *Controller) State(ctx context.Context) (RenderState, error) {
	ctx, span := c.startSpan(ctx, "session.State")
	defer span.End()

	snap, err := c.store.Load(ctx, c.id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return RenderState{}, err
	}
	return Render(snap), nil
}

// AttemptMove handles a tap on cell index. It reports false without changing
// anything when the cell is taken, the game is over, the index is off the
// board, or the computer is the one to move. The error is non-nil only when
// the store fails or the session is closed.
func (c *Controller) AttemptMove(ctx context.Context, index int) (RenderState, bool, error) {
	ctx, span := c.startSpan(ctx, "session.AttemptMove", attribute.Int("move.cell", index))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return RenderState{}, false, ErrClosed
	}

	snap, accepted, err := c.store.Update(ctx, c.id, func(s Snapshot) (Snapshot, bool) {
		if s.Mode == ModeComputer && s.Game.Turn() != HumanMark {
			return s, false
		}
		next, ok := s.Game.Apply(index)
		if !ok {
			return s, false
		}
		s.Game = next
		return s, true
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply move")
		return RenderState{}, false, fmt.Errorf("failed to apply move in session %s: %w", c.id, err)
	}
	span.SetAttributes(attribute.Bool("move.accepted", accepted))

	rs := Render(snap)
	if !accepted {
		slog.DebugContext(ctx, "Move ignored", "session.id", c.id, "move.cell", index)
		return rs, false, nil
	}

	c.afterMove(ctx, snap, rs)
	if snap.Mode == ModeComputer && !snap.Game.IsOver() {
		c.scheduleComputerMove(ctx, snap.Generation)
	}
	return rs, true, nil
}

// ComputerMove plays one random move for the computer right away. It is a
// no-op outside computer mode, when it is not the computer's turn, when the
// game is over or when the board is full.
func (c *Controller) ComputerMove(ctx context.Context) (bool, error) {
	ctx, span := c.startSpan(ctx, "session.ComputerMove")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}
	c.stopPending()
	played, _, err := c.computerMoveLocked(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply computer move")
	}
	return played, err
}

// Reset starts a new game in the same session. Any computer move still
// pending for the previous game is cancelled.
func (c *Controller) Reset(ctx context.Context) (RenderState, error) {
	ctx, span := c.startSpan(ctx, "session.Reset")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return RenderState{}, ErrClosed
	}
	c.stopPending()

	snap, _, err := c.store.Update(ctx, c.id, func(s Snapshot) (Snapshot, bool) {
		s.Game = game.New()
		s.Generation++
		return s, true
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to reset session")
		return RenderState{}, fmt.Errorf("failed to reset session %s: %w", c.id, err)
	}
	span.SetAttributes(attribute.Int64("session.generation", int64(snap.Generation)))
	slog.InfoContext(ctx, "Session reset", "session.id", c.id, "session.generation", snap.Generation)

	rs := Render(snap)
	c.view.Render(ctx, rs)
	return rs, nil
}

// Close tears the session down. A computer move still pending is cancelled,
// and one already running finds the session gone and does nothing.
func (c *Controller) Close(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "session.Close")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.stopPending()
	c.view = nopView{}

	if err := c.store.Delete(ctx, c.id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return fmt.Errorf("failed to delete session %s: %w", c.id, err)
	}
	slog.InfoContext(ctx, "Session closed", "session.id", c.id)
	return nil
}

// scheduleComputerMove must be called with c.mu held.
func (c *Controller) scheduleComputerMove(ctx context.Context, generation uint64) {
	c.stopPending()
	link := trace.LinkFromContext(ctx)
	p := &pendingMove{generation: generation}
	p.timer = c.sched.AfterFunc(c.delay, func() {
		c.runDeferred(p, link)
	})
	c.pending = p
}

func (c *Controller) runDeferred(p *pendingMove, link trace.Link) {
	ctx, span := tracer.Start(context.Background(), "session.deferredComputerMove",
		trace.WithLinks(link),
		trace.WithAttributes(
			attribute.String("session.id", c.id),
			attribute.Int64("session.generation", int64(p.generation)),
		))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == p {
		c.pending = nil
	}
	if c.closed {
		c.dropDeferred(ctx, p, "closed")
		return
	}

	played, stale, err := c.computerMoveLocked(ctx, &p.generation)
	switch {
	case errors.Is(err, ErrNotFound):
		c.dropDeferred(ctx, p, "gone")
	case err != nil:
		slog.ErrorContext(ctx, "Deferred computer move failed", "session.id", c.id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Deferred computer move failed")
	case stale:
		c.dropDeferred(ctx, p, "reset")
	default:
		span.SetAttributes(attribute.Bool("move.accepted", played))
	}
}

func (c *Controller) dropDeferred(ctx context.Context, p *pendingMove, reason string) {
	droppedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	slog.DebugContext(ctx, "Dropped stale computer move", "session.id", c.id, "session.generation", p.generation, "reason", reason)
}

// computerMoveLocked applies the computer's pick. When generation is set the
// move only happens if the stored game still carries that generation; stale
// reports a mismatch.
func (c *Controller) computerMoveLocked(ctx context.Context, generation *uint64) (played, stale bool, err error) {
	snap, played, err := c.store.Update(ctx, c.id, func(s Snapshot) (Snapshot, bool) {
		stale = false
		if generation != nil && s.Generation != *generation {
			stale = true
			return s, false
		}
		if s.Mode != ModeComputer || s.Game.IsOver() || s.Game.Turn() != ComputerMark {
			return s, false
		}
		idx, ok := c.calc.CalculateNextMove(s.Game.Board())
		if !ok {
			return s, false
		}
		next, ok := s.Game.Apply(idx)
		if !ok {
			return s, false
		}
		s.Game = next
		return s, true
	})
	if err != nil {
		return false, false, fmt.Errorf("failed to apply computer move in session %s: %w", c.id, err)
	}
	if played {
		c.afterMove(ctx, snap, Render(snap))
	}
	return played, stale, nil
}

// afterMove publishes an accepted move: metrics, render, and the one-shot
// notification when the move ended the game.
func (c *Controller) afterMove(ctx context.Context, snap Snapshot, rs RenderState) {
	mover := lastMover(snap.Game)
	movesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("player", string(mover)),
		attribute.String("session.mode", string(snap.Mode)),
	))
	slog.DebugContext(ctx, "Move accepted", "session.id", c.id, "player", mover, "moves", snap.Game.MovesPlayed())

	c.view.Render(ctx, rs)
	if !snap.Game.IsOver() {
		return
	}

	finishedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(snap.Game))))
	slog.InfoContext(ctx, "Game over", "session.id", c.id, "result", rs.StatusText)
	c.view.Alert(ctx, Notification{Title: NotificationTitle, Body: rs.StatusText})
}

// stopPending must be called with c.mu held.
func (c *Controller) stopPending() {
	if c.pending == nil {
		return
	}
	c.pending.timer.Stop()
	c.pending = nil
}

func (c *Controller) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("session.id", c.id), attribute.String("session.mode", string(c.mode)))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// lastMover is the player who made the most recent move of g.
func lastMover(g game.State) game.Mark {
	if g.IsOver() {
		return g.Turn()
	}
	return g.Turn().Opponent()
}

func outcome(g game.State) string {
	if w, ok := g.Winner(); ok {
		return "won_" + string(w)
	}
	return string(g.Status())
}
