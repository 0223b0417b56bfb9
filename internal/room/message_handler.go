package room

import (
	"context"
	"ctchen222/tictactoe/internal/validator"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage decodes one frame from conn and dispatches it. Malformed
// frames are answered with an error frame; refused moves stay silent.
func (r *Room) HandleMessage(ctx context.Context, conn Connection, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.reply(ctx, conn, proto.NewErrorMessage("malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from view", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.reply(ctx, conn, proto.NewErrorMessage("invalid message"))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeTap:
		r.handleTap(ctx, *message.Cell)
	case proto.TypeReset:
		r.handleReset(ctx)
	}
}

func (r *Room) handleTap(ctx context.Context, cell int) {
	ctx, span := tracer.Start(ctx, "room.handleTap", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.Int("move.cell", cell),
	))
	defer span.End()

	_, accepted, err := r.ctrl.AttemptMove(ctx, cell)
	if err != nil {
		slog.ErrorContext(ctx, "tap failed", "session.id", r.ID, "move.cell", cell, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Tap failed")
		return
	}
	span.SetAttributes(attribute.Bool("move.valid", accepted))
}

func (r *Room) handleReset(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.handleReset", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	if _, err := r.ctrl.Reset(ctx); err != nil {
		slog.ErrorContext(ctx, "reset failed", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Reset failed")
	}
}
