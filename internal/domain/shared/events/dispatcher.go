package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// SyncDispatcher delivers on the caller's goroutine so the caller learns
// whether every handler succeeded before acknowledging the event.
type SyncDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewSyncDispatcher creates an empty dispatcher.
func NewSyncDispatcher() *SyncDispatcher {
	return &SyncDispatcher{handlers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for an event type, or AllEvents.
func (d *SyncDispatcher) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	return nil
}

// Dispatch runs every matching handler, even after one fails, and joins the errors.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	d.mu.RLock()
	handlers := make([]EventHandler, 0, len(d.handlers[event.GetEventType()])+len(d.handlers[AllEvents]))
	handlers = append(handlers, d.handlers[AllEvents]...)
	handlers = append(handlers, d.handlers[event.GetEventType()]...)
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("handle %s: %w", event.GetEventType(), err))
		}
	}
	return errors.Join(errs...)
}
