package hub

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"log/slog"
	"time"
)

// RunJanitor closes sessions whose stored state has expired, every interval,
// until ctx is done.
func (h *Hub) RunJanitor(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "Session janitor started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Session janitor stopped")
			return
		case <-ticker.C:
			h.Sweep(ctx)
		}
	}
}

// Sweep closes every registered session that the store no longer has and
// returns how many were closed.
func (h *Hub) Sweep(ctx context.Context) int {
	ctx, span := tracer.Start(ctx, "hub.Sweep")
	defer span.End()

	swept := 0
	for _, id := range h.ids() {
		s, err := h.Get(id)
		if err != nil {
			continue
		}
		if _, err := s.Controller.State(ctx); !errors.Is(err, session.ErrNotFound) {
			continue
		}
		if err := h.Close(ctx, id); err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.WarnContext(ctx, "Failed to close expired session", "session.id", id, "error", err)
			continue
		}
		swept++
	}
	if swept > 0 {
		slog.InfoContext(ctx, "Expired sessions closed", "count", swept)
	}
	return swept
}
