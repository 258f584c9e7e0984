package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving order events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, orderID, eventType string, payload []byte, metadata map[string]string) error

	// GetByOrderID retrieves all events for a specific order, oldest first.
	GetByOrderID(ctx context.Context, orderID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
