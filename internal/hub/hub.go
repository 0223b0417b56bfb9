package hub

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/room"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// ErrUnknownMode is returned by Create for modes other than computer or friend.
var ErrUnknownMode = errors.New("unknown mode")

// Options configures the sessions a Hub creates.
type Options struct {
	Store         session.Store
	Calculator    bot.MoveCalculator
	Scheduler     session.Scheduler
	ComputerDelay time.Duration
}

// Session pairs a controller with the room its views attach to.
type Session struct {
	Controller *session.Controller
	Room       *room.Room
}

// Hub is the registry of live sessions.
type Hub struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates an empty hub. Zero-valued options fall back to a random
// computer opponent, real timers and the default computer delay.
func NewHub(opts Options) *Hub {
	if opts.Calculator == nil {
		opts.Calculator = bot.NewRandomMoveCalculator(nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = session.TimeScheduler
	}
	if opts.ComputerDelay <= 0 {
		opts.ComputerDelay = session.DefaultComputerDelay
	}
	return &Hub{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session in the given mode. It serves both entry
// routes: play vs computer and play vs friend.
func (h *Hub) Create(ctx context.Context, mode session.Mode) (*Session, error) {
	ctx, span := tracer.Start(ctx, "hub.Create", trace.WithAttributes(
		attribute.String("session.mode", string(mode)),
	))
	defer span.End()

	if !mode.Valid() {
		err := fmt.Errorf("%w: %q", ErrUnknownMode, mode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown mode")
		return nil, err
	}

	id := uuid.New().String()
	span.SetAttributes(attribute.String("session.id", id))

	ctrl := session.NewController(id, mode, h.opts.Store, h.opts.Calculator, h.opts.Scheduler, h.opts.ComputerDelay)
	rm := room.NewRoom(id, ctrl)
	ctrl.SetView(rm)

	if _, err := ctrl.Start(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start session")
		return nil, err
	}
	rm.Start()

	s := &Session{Controller: ctrl, Room: rm}
	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	slog.InfoContext(ctx, "Session registered", "session.id", id, "session.mode", mode)
	return s, nil
}

// Get returns the live session with the given id.
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return s, nil
}

// Close tears down the session with the given id, as when its view
// navigates away.
func (h *Hub) Close(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "hub.Close", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}

	s.Room.Stop()
	if err := s.Controller.Close(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to close session")
		return err
	}
	slog.InfoContext(ctx, "Session unregistered", "session.id", id)
	return nil
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) ids() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown closes every live session.
func (h *Hub) Shutdown(ctx context.Context) {
	for _, id := range h.ids() {
		if err := h.Close(ctx, id); err != nil {
			slog.WarnContext(ctx, "Failed to close session on shutdown", "session.id", id, "error", err)
		}
	}
}
