package room

import (
	"context"
	"ctchen222/tictactoe/internal/session"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

const heartbeatInterval = 10 * time.Second

var tracer = otel.Tracer("room")

// Controller is the part of a session the room drives.
type Controller interface {
	AttemptMove(ctx context.Context, index int) (session.RenderState, bool, error)
	Reset(ctx context.Context) (session.RenderState, error)
	State(ctx context.Context) (session.RenderState, error)
}

// Connection abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

type client struct {
	conn Connection
	mu   sync.Mutex
	// updated is set once a broadcast update reached the view.
	updated bool
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) writeUpdate(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updated = true
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// writeInitial sends data unless a broadcast update already got there first.
func (c *client) writeInitial(data []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updated {
		return false, nil
	}
	c.updated = true
	return true, c.conn.WriteMessage(websocket.TextMessage, data)
}

// Room is the set of views attached to one session. It implements
// session.View by fanning every update out to all of them.
type Room struct {
	ID   string
	ctrl Controller

	mu      sync.RWMutex
	clients map[Connection]*client

	heartbeat time.Duration
	stopOnce  sync.Once
	Done      chan struct{}
}

// NewRoom creates a room for the session with the given id.
func NewRoom(id string, ctrl Controller) *Room {
	return &Room{
		ID:        id,
		ctrl:      ctrl,
		clients:   make(map[Connection]*client),
		heartbeat: heartbeatInterval,
		Done:      make(chan struct{}),
	}
}

// Start runs the heartbeat until Stop is called.
func (r *Room) Start() {
	go r.run()
}

func (r *Room) run() {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Done:
			slog.Info("Room heartbeat stopping.", "session.id", r.ID)
			return
		case <-ticker.C:
			r.ping()
		}
	}
}

// Stop ends the heartbeat and closes every attached connection.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.Done)
		r.mu.Lock()
		defer r.mu.Unlock()
		for conn := range r.clients {
			_ = conn.Close()
			delete(r.clients, conn)
		}
	})
}

// Len reports the number of attached connections.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Room) add(conn Connection) *client {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &client{conn: conn}
	r.clients[conn] = c
	return c
}

func (r *Room) lookup(conn Connection) *client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[conn]
}

func (r *Room) remove(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, conn)
}

func (r *Room) snapshot() []*client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}
