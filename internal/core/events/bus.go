package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event names published across the portal.
const (
	EventLeadCreated = "lead.created"
	EventMessageSent = "message.sent"
)

// Event is an immutable record handed to every subscriber of its name.
type Event struct {
	ID         string
	Name       string
	OccurredAt time.Time
	Payload    interface{}
}

// Handler processes one event. Handlers run on the publisher's goroutine
// fan-out worker; a slow handler delays only its own event name.
type Handler func(ctx context.Context, evt Event)

// Bus is an in-process publish/subscribe dispatcher. Subscriptions are
// expected at startup; Publish is safe for concurrent use.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      *slog.Logger
	wg          sync.WaitGroup
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = append(b.subscribers[name], h)
}

// Publish delivers the payload to every subscriber of name. Delivery is
// asynchronous; publishers never block on handler work.
func (b *Bus) Publish(ctx context.Context, name string, payload interface{}) {
	evt := Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now(),
		Payload:    payload,
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[name]))
	copy(handlers, b.subscribers[name])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("event handler panic", "event", name, "panic", r)
			}
		}()
		for _, h := range handlers {
			h(ctx, evt)
		}
	}()
}

// Wait blocks until all in-flight deliveries finish. Used during shutdown.
func (b *Bus) Wait() {
	b.wg.Wait()
}
