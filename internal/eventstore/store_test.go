package eventstore

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

const testOrderID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(MemoryPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	payload := []byte(`{"client_id":"client_001"}`)
	if err := store.Append(ctx, testOrderID, TypeOrderReceived, payload, map[string]string{"key": "value"}); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := store.GetByOrderID(ctx, testOrderID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.ID() == 0 {
		t.Error("expected a store-assigned id")
	}
	if event.OrderID() != testOrderID {
		t.Errorf("expected order_id %s, got %s", testOrderID, event.OrderID())
	}
	if event.Type() != TypeOrderReceived {
		t.Errorf("expected event_type %s, got %s", TypeOrderReceived, event.Type())
	}
	if !bytes.Equal(event.Payload(), payload) {
		t.Errorf("expected payload %s, got %s", payload, event.Payload())
	}
	if event.Metadata()["key"] != "value" {
		t.Errorf("expected metadata key=value, got %v", event.Metadata())
	}
}

func TestEventStoreGetRange(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		store.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		if err := store.Append(ctx, "order-1", "Event", []byte("{}"), nil); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	events, err := store.GetRange(ctx, base, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
	if !events[0].Timestamp().Equal(base) {
		t.Errorf("expected first timestamp %v, got %v", base, events[0].Timestamp())
	}
}

func TestEventStoreMultipleOrders(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	_ = store.Append(ctx, "order-1", "Event1", []byte("{}"), nil)
	_ = store.Append(ctx, "order-2", "Event2", []byte("{}"), nil)
	_ = store.Append(ctx, "order-1", "Event3", []byte("{}"), nil)

	events, err := store.GetByOrderID(ctx, "order-1")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for order-1, got %d", len(events))
	}
	if events[0].Type() != "Event1" || events[1].Type() != "Event3" {
		t.Errorf("unexpected order: %s, %s", events[0].Type(), events[1].Type())
	}

	events, err = store.GetByOrderID(ctx, "missing")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestEventStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "events.db")
	ctx := t.Context()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Append(ctx, testOrderID, TypeOrderCompleted, []byte("{}"), nil); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	events, err := reopened.GetByOrderID(ctx, testOrderID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 persisted event, got %d", len(events))
	}
}

func TestEventStoreClosedReturnsClassifiedError(t *testing.T) {
	store, err := NewSQLiteStore(MemoryPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	_ = store.Close()

	err = store.Append(t.Context(), testOrderID, "Event", nil, nil)
	if !errors.HasCategory(err, errors.CategoryEventStore) {
		t.Fatalf("expected eventstore error, got %v", err)
	}
}

func TestStoreSink(t *testing.T) {
	store := newMemoryStore(t)
	sink := NewStoreSink(store)

	event, err := NewInvoiceCreated(testOrderID, "abc", 800, "EUR")
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	if err := sink.Emit(t.Context(), event); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	events, err := store.GetByOrderID(t.Context(), testOrderID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 || events[0].Type() != TypeInvoiceCreated {
		t.Fatalf("unexpected events: %v", events)
	}
	if !bytes.Equal(events[0].Payload(), event.Payload()) {
		t.Errorf("payload mismatch: %s vs %s", events[0].Payload(), event.Payload())
	}
}
