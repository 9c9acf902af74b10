// Package realtime pushes playhead ticks and session events to websocket
// subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

var ErrHubStopped = errors.New("realtime hub stopped")

type message struct {
	sessionID string
	data      []byte
}

// Hub owns the subscribed clients, grouped by session, and fans out
// messages to them. All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes hub events until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			set, ok := h.clients[c.sessionID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[c.sessionID] = set
			}
			set[c] = true

		case c := <-h.unregister:
			if set, ok := h.clients[c.sessionID]; ok && set[c] {
				h.drop(c)
			}

		case m := <-h.broadcast:
			for c := range h.clients[m.sessionID] {
				select {
				case c.send <- m.data:
				default:
					h.logger.Warn("dropping slow websocket client", "session_id", c.sessionID)
					h.drop(c)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, set := range h.clients {
				n += len(set)
			}
			reply <- n
		}
	}
}

func (h *Hub) drop(c *Client) {
	set := h.clients[c.sessionID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.sessionID)
	}
	close(c.send)
	_ = c.conn.Close()
}

// Publish sends v as JSON to every subscriber of sessionID.
func (h *Hub) Publish(ctx context.Context, sessionID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.broadcast <- message{sessionID: sessionID, data: data}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}
