package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kiwari-pos/register/internal/events"
	"go.uber.org/zap"
)

// Hub maintains the set of connected displays and broadcasts register
// events to all of them. There is one register, so there is one room.
type Hub struct {
	clients map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan events.Event

	// Closed when Run returns; nothing reads register/unregister after that.
	done chan struct{}

	log *zap.Logger

	// Mutex for thread-safe client access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing
// every connected client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("encode ws event", zap.String("type", ev.Type), zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
					h.log.Warn("dropping slow ws client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// join adds c to the room. It reports false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave removes c from the room; after shutdown it is already gone.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues ev for broadcast. It never blocks the caller; when the
// broadcast queue is full the event is dropped.
func (h *Hub) Publish(_ context.Context, ev events.Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("ws broadcast queue full, dropping event",
			zap.String("type", ev.Type), zap.String("subject", ev.Subject))
	}
}

// ClientCount reports how many displays are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
