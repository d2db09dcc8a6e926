// Package ws is the push channel for match-run progress: a
// WebSocket broadcast hub delivering advisory events to every
// connected client. Delivery is at-most-once; events are not part of
// the consistency contract.
package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Hub broadcasts events to all registered clients. Publishing with no
// clients attached is a no-op.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub creates a broadcast hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run pumps registrations and broadcasts until ctx is cancelled. After
// it returns nobody receives on register/unregister; client pumps must
// select against done so shutdown cannot strand them.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("websocket client connected", zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("websocket client disconnected", zap.Int("clients", len(h.clients)))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Publish broadcasts an event to all connected clients, fire and
// forget: no delivery guarantee, no backpressure, no persistence of
// missed events. The payload's JSON fields are flattened alongside the
// event name.
func (h *Hub) Publish(event string, payload any) {
	body := map[string]any{"event": event}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			h.logger.Warn("failed to marshal event payload", zap.String("event", event), zap.Error(err))
			return
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil {
			for k, v := range fields {
				body[k] = v
			}
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		h.logger.Warn("failed to marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// hub saturated, advisory events are droppable
		h.logger.Debug("dropping event, broadcast buffer full", zap.String("event", event))
	}
}
