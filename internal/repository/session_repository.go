package repository

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.session")

// Hash fields of a stored session.
const (
	FieldBoard      = "board"
	FieldNextTurn   = "next_turn"
	FieldWinner     = "winner"
	FieldStatus     = "status"
	FieldMovesO     = "moves_o"
	FieldMovesX     = "moves_x"
	FieldMode       = "mode"
	FieldGeneration = "generation"

	maxUpdateRetries = 5
)

// SessionRepository stores live sessions.
type SessionRepository interface {
	session.Store
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepository creates a Redis-based SessionRepository. Every write
// refreshes the key's TTL so abandoned sessions expire; ttl <= 0 keeps them
// until deleted.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create writes a new session.
func (r *redisSessionRepository) Create(ctx context.Context, snap session.Snapshot) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Create", trace.WithAttributes(attribute.String("session.id", snap.ID)))
	defer span.End()

	fields, err := encodeSnapshot(snap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode session")
		return err
	}

	key := sessionKey(snap.ID)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session in redis")
		return fmt.Errorf("failed to create session in redis: %w", err)
	}
	return nil
}

// Load retrieves a session.
func (r *redisSessionRepository) Load(ctx context.Context, id string) (session.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Load", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get session from redis")
		return session.Snapshot{}, fmt.Errorf("failed to get session from redis: %w", err)
	}
	if len(data) == 0 {
		return session.Snapshot{}, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return decodeSnapshot(id, data)
}

// Update runs fn inside an optimistic WATCH/MULTI transaction, retrying when
// another writer touched the session in between.
func (r *redisSessionRepository) Update(ctx context.Context, id string, fn func(session.Snapshot) (session.Snapshot, bool)) (session.Snapshot, bool, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Update", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	key := sessionKey(id)
	var (
		result  session.Snapshot
		changed bool
	)

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("%w: %s", session.ErrNotFound, id)
		}
		current, err := decodeSnapshot(id, data)
		if err != nil {
			return err
		}

		result, changed = fn(current)
		if !changed {
			return nil
		}
		fields, err := encodeSnapshot(result)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			if r.ttl > 0 {
				pipe.Expire(ctx, key, r.ttl)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			span.SetAttributes(attribute.Bool("session.changed", changed), attribute.Int("redis.attempts", attempt+1))
			return result, changed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update session")
		if errors.Is(err, session.ErrNotFound) {
			return session.Snapshot{}, false, err
		}
		return session.Snapshot{}, false, fmt.Errorf("failed to update session in redis: %w", err)
	}

	err := fmt.Errorf("failed to update session %s: gave up after %d conflicting writes", id, maxUpdateRetries)
	span.RecordError(err)
	span.SetStatus(codes.Error, "Too many conflicting writes")
	return session.Snapshot{}, false, err
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session from redis")
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func encodeSnapshot(snap session.Snapshot) (map[string]interface{}, error) {
	board := snap.Game.Board()
	boardJSON, err := json.Marshal(board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	winner, _ := snap.Game.Winner()
	return map[string]interface{}{
		FieldBoard:      boardJSON,
		FieldNextTurn:   string(snap.Game.Turn()),
		FieldWinner:     string(winner),
		FieldStatus:     string(snap.Game.Status()),
		FieldMovesO:     strconv.FormatUint(uint64(snap.Game.MoveLog(game.PlayerO)), 10),
		FieldMovesX:     strconv.FormatUint(uint64(snap.Game.MoveLog(game.PlayerX)), 10),
		FieldMode:       string(snap.Mode),
		FieldGeneration: strconv.FormatUint(snap.Generation, 10),
	}, nil
}

func decodeSnapshot(id string, data map[string]string) (session.Snapshot, error) {
	var board game.Board
	if err := json.Unmarshal([]byte(data[FieldBoard]), &board); err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	g, err := game.Restore(board,
		game.Mark(data[FieldNextTurn]),
		game.Status(data[FieldStatus]),
		game.Mark(data[FieldWinner]),
	)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	for mark, field := range map[game.Mark]string{game.PlayerO: FieldMovesO, game.PlayerX: FieldMovesX} {
		stored, err := strconv.ParseUint(data[field], 10, 16)
		if err != nil {
			return session.Snapshot{}, fmt.Errorf("failed to parse %s: %w", field, err)
		}
		if game.MoveLog(stored) != g.MoveLog(mark) {
			return session.Snapshot{}, fmt.Errorf("failed to restore session %s: %w: %s disagrees with board", id, game.ErrCorruptState, field)
		}
	}

	generation, err := strconv.ParseUint(data[FieldGeneration], 10, 64)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to parse generation: %w", err)
	}

	mode := session.Mode(data[FieldMode])
	if !mode.Valid() {
		return session.Snapshot{}, fmt.Errorf("failed to restore session %s: unknown mode %q", id, mode)
	}

	return session.Snapshot{
		ID:         id,
		Mode:       mode,
		Generation: generation,
		Game:       g,
	}, nil
}
