package room

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Render sends the new board to every attached view.
func (r *Room) Render(ctx context.Context, state session.RenderState) {
	r.Broadcast(ctx, &proto.ServerToClientMessage{Type: proto.TypeUpdate, State: &state})
}

// Alert sends the one-shot game-over message to every attached view.
func (r *Room) Alert(ctx context.Context, n session.Notification) {
	r.Broadcast(ctx, proto.NewGameOverMessage(n))
}

// Broadcast sends a message to all attached connections.
func (r *Room) Broadcast(ctx context.Context, message any) {
	_, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for _, c := range r.snapshot() {
		if err := c.writeUpdate(data); err != nil {
			slog.WarnContext(ctx, "error writing message to view", "session.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to view")
		}
	}
}

// Attach adds conn to the room and sends it the current board. The
// connection is registered before the state is read, so a move landing in
// between reaches it by broadcast and the older initial state is skipped.
// Callers then run ReadPump for the connection.
func (r *Room) Attach(ctx context.Context, conn Connection) error {
	ctx, span := tracer.Start(ctx, "room.Attach", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	c := r.add(conn)

	state, err := r.ctrl.State(ctx)
	if err != nil {
		r.remove(conn)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not load session state")
		return err
	}

	data, err := json.Marshal(&proto.ServerToClientMessage{Type: proto.TypeUpdate, State: &state})
	if err != nil {
		r.remove(conn)
		return err
	}
	sent, err := c.writeInitial(data)
	if err != nil {
		r.remove(conn)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not send initial state")
		return err
	}
	span.SetAttributes(attribute.Bool("attach.initial_sent", sent))
	slog.InfoContext(ctx, "View attached", "session.id", r.ID, "views", r.Len())
	return nil
}

// reply sends message to conn alone. It does not count as a board update.
func (r *Room) reply(ctx context.Context, conn Connection, message any) {
	c := r.lookup(conn)
	if c == nil {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling reply", "error", err)
		return
	}
	if err := c.write(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing reply to view", "session.id", r.ID, "error", err)
	}
}

// ReadPump reads messages from conn and dispatches them until the
// connection fails or is closed.
func (r *Room) ReadPump(conn Connection) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	defer func() {
		r.remove(conn)
		_ = conn.Close()
		slog.InfoContext(ctx, "View detached", "session.id", r.ID, "views", r.Len())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "View connection error", "session.id", r.ID, "error", err)
				span.RecordError(err)
			}
			return
		}
		r.HandleMessage(ctx, conn, msg)
	}
}

func (r *Room) ping() {
	for _, c := range r.snapshot() {
		if err := c.write(websocket.PingMessage, nil); err != nil {
			slog.Warn("Failed to send ping to view, assuming disconnect", "session.id", r.ID, "error", err)
		}
	}
}
