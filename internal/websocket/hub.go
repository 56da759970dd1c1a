package websocket

import (
	"encoding/json"
	"sync"

	"github.com/wuwumall/wuwumall-backend/internal/events"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

// Client is one connected browser session
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID string
	Role   string
	Send   chan []byte
}

// Notice is a routed push message. Empty UserID broadcasts to every
// connection; SellerOnly restricts fanout to seller sessions.
type Notice struct {
	UserID     string
	SellerOnly bool
	Data       []byte
}

// Hub tracks connections per user and fans out event notices. Multiple
// devices per account are supported.
type Hub struct {
	clients    map[string][]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Notice
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan *Notice, 256),
	}
}

// Run processes registration and fanout. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":  client.UserID,
				"sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if list, ok := h.clients[client.UserID]; ok {
				kept := make([]*Client, 0, len(list))
				for _, c := range list {
					if c != client {
						kept = append(kept, c)
					}
				}
				if len(kept) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = kept
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case notice := <-h.broadcast:
			h.deliver(notice)
		}
	}
}

func (h *Hub) deliver(notice *Notice) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(c *Client) {
		select {
		case c.Send <- notice.Data:
		default:
			// Slow consumer, drop rather than block the hub
			logger.Warn("Dropping message for slow WebSocket client", map[string]interface{}{
				"user_id": c.UserID,
			})
		}
	}

	if notice.UserID != "" {
		for _, c := range h.clients[notice.UserID] {
			send(c)
		}
		return
	}
	for _, list := range h.clients {
		for _, c := range list {
			if notice.SellerOnly && c.Role != "seller" && c.Role != "admin" {
				continue
			}
			send(c)
		}
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// BindBus routes application events to connected clients. Events
// carrying a userId reach that user's sessions; order creations also
// reach seller dashboards.
func (h *Hub) BindBus(bus *events.Bus) {
	bus.SubscribeAll(func(e events.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			logger.Error("Failed to encode event for push", err, map[string]interface{}{
				"topic": e.Topic,
			})
			return
		}

		userID := ""
		if payload, ok := e.Payload.(map[string]interface{}); ok {
			if v, ok := payload["userId"].(string); ok {
				userID = v
			}
		}

		if userID != "" {
			h.broadcast <- &Notice{UserID: userID, Data: data}
		}
		if e.Topic == events.TopicOrderCreated || e.Topic == events.TopicOrderUpdated {
			h.broadcast <- &Notice{SellerOnly: true, Data: data}
		}
	})
}
