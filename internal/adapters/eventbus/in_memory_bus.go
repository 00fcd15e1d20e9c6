package eventbus

import (
	"NestVault/internal/core/ports"
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Handler consumes recorded-entry events delivered in-process.
type Handler func(ctx context.Context, event ports.EntryRecordedEvent)

// InMemoryBus fans recorded-entry events out to in-process subscribers.
// It stands in for Kafka in dev and single-instance deployments.
type InMemoryBus struct {
	log      zerolog.Logger
	handlers []Handler
	mu       sync.RWMutex
}

var _ ports.EventPublisher = (*InMemoryBus)(nil) // Ensure compliance

func NewInMemoryBus(baseLogger *zerolog.Logger) *InMemoryBus {
	return &InMemoryBus{
		log: baseLogger.With().Str("component", "in_memory_bus").Logger(),
	}
}

// PublishEntryRecorded delivers the event to every subscriber. Each
// handler runs in its own goroutine so one slow handler doesn't block
// the others, with a fresh context so the publisher's cancellation
// doesn't cut deliveries short.
func (b *InMemoryBus) PublishEntryRecorded(ctx context.Context, event ports.EntryRecordedEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, handler := range b.handlers {
		go func(h Handler) {
			h(context.Background(), event)
		}(handler)
	}

	b.log.Debug().
		Str("signature", event.Signature).
		Int("handlers", len(b.handlers)).
		Msg("Entry event published")
	return nil
}

// Subscribe registers a handler for recorded-entry events.
func (b *InMemoryBus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}
