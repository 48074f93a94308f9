package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"hivedesk/internal/models"
)

// MessageToSend defines the structure for sending a payload to a specific user.
type MessageToSend struct {
	TargetEmail string
	Payload     []byte
}

// Hub maintains the set of active clients and fans new-message events out to
// them. Delivery is best-effort and non-durable; a client that misses a push
// recovers by re-listing its inbox.
type Hub struct {
	// Registered clients. Maps user email to a set of active connections.
	Clients map[string]map[*Client]bool

	// Channel for sending payloads to a specific user's connections.
	Deliver chan *MessageToSend

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Deliver:    make(chan *MessageToSend),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[string]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	slog.Info("websocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.Email]; !ok {
				h.Clients[client.Email] = make(map[*Client]bool)
			}
			h.Clients[client.Email][client] = true
			slog.Debug("websocket client registered", "email", client.Email, "connections", len(h.Clients[client.Email]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.Email]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					close(client.Send)
					if len(userClients) == 0 {
						delete(h.Clients, client.Email)
					}
					slog.Debug("websocket client unregistered", "email", client.Email, "remaining", len(userClients))
				}
			}
			h.mu.Unlock()

		case delivery := <-h.Deliver:
			h.mu.RLock()
			for client := range h.Clients[delivery.TargetEmail] {
				select {
				case client.Send <- delivery.Payload:
				default:
					// Buffer full; the event is dropped for this connection.
					slog.Warn("websocket send buffer full, dropping event", "email", client.Email)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishMessage fans a new-message event out to the receiver's and the
// sender's connections, so every open view of either party picks it up.
func (h *Hub) PublishMessage(ev *models.MessageEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to encode message event", "error", err)
		return
	}

	h.sendToEmail(ev.ReceiverEmail, payload)
	if ev.SenderEmail != ev.ReceiverEmail {
		h.sendToEmail(ev.SenderEmail, payload)
	}
}

// sendToEmail queues a payload for every connection of the given email. Gives
// up after a short wait if the hub loop is blocked.
func (h *Hub) sendToEmail(email string, payload []byte) {
	delivery := &MessageToSend{
		TargetEmail: email,
		Payload:     payload,
	}
	select {
	case h.Deliver <- delivery:
	case <-time.After(1 * time.Second):
		slog.Warn("timeout queuing event in hub", "email", email)
	}
}

// ConnectionCount reports active connections for an email, for the health view.
func (h *Hub) ConnectionCount(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients[email])
}
