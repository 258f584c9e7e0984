package eventstore

import "context"

// StoreSink persists emitted events into a Store.
type StoreSink struct {
	store Store
}

// NewStoreSink returns a sink appending to store.
func NewStoreSink(store Store) *StoreSink {
	return &StoreSink{store: store}
}

// Emit appends e to the underlying store.
func (s *StoreSink) Emit(ctx context.Context, e Event) error {
	return s.store.Append(ctx, e.OrderID(), e.Type(), e.Payload(), e.Metadata())
}
