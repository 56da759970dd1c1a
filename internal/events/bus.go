package events

import (
	"sync"

	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

// Event topics published by the application layer
const (
	TopicUserLogin     = "user:login"
	TopicUserLogout    = "user:logout"
	TopicSessionExpire = "session:expired"
	TopicOrderCreated  = "order:created"
	TopicOrderUpdated  = "order:updated"
)

// Event is one published notification
type Event struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload,omitempty"`
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Bus is a minimal in-process publish/subscribe fanout. The websocket
// hub subscribes to push events to connected clients.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

// NewBus creates an event bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for one topic
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// SubscribeAll registers a handler for every topic
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers the event to all matching handlers
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	matched := append([]Handler{}, b.handlers[topic]...)
	matched = append(matched, b.all...)
	b.mu.RUnlock()

	event := Event{Topic: topic, Payload: payload}
	for _, h := range matched {
		h(event)
	}

	logger.Debug("Event published", map[string]interface{}{
		"topic":    topic,
		"handlers": len(matched),
	})
}
