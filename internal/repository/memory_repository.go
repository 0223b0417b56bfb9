package repository

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"fmt"
	"sync"
)

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]session.Snapshot
}

// NewMemorySessionRepository keeps sessions in process memory.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]session.Snapshot)}
}

func (r *memorySessionRepository) Create(_ context.Context, snap session.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[snap.ID] = snap
	return nil
}

func (r *memorySessionRepository) Load(_ context.Context, id string) (session.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.sessions[id]
	if !ok {
		return session.Snapshot{}, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return snap, nil
}

func (r *memorySessionRepository) Update(_ context.Context, id string, fn func(session.Snapshot) (session.Snapshot, bool)) (session.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.sessions[id]
	if !ok {
		return session.Snapshot{}, false, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	next, changed := fn(snap)
	if !changed {
		return snap, false, nil
	}
	r.sessions[id] = next
	return next, true, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
