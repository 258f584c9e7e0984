// Package eventstore provides event sourcing primitives for order tracking.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Order summary states.
const (
	OrderStatusRunning   = "running"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// OrderSummary is a read model of one order reconstructed from its events.
type OrderSummary struct {
	OrderID      string        `json:"order_id"`
	ClientID     string        `json:"client_id,omitempty"`
	ProjectType  string        `json:"type,omitempty"`
	Status       string        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Workspace    string        `json:"workspace,omitempty"`
	PagePath     string        `json:"page_path,omitempty"`
	InvoiceID    string        `json:"invoice_id,omitempty"`
	Amount       float64       `json:"amount,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// OrderHistoryProjection maintains an in-memory view of recent orders,
// reconstructed from events stored in the event store.
type OrderHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	orders   map[string]*OrderSummary
	history  []*OrderSummary // finished orders, newest first
	maxSize  int
	lastSync time.Time
}

// NewOrderHistoryProjection creates a new projection backed by the given store.
func NewOrderHistoryProjection(store Store, maxHistorySize int) *OrderHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &OrderHistoryProjection{
		store:   store,
		orders:  make(map[string]*OrderSummary),
		history: make([]*OrderSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *OrderHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.orders = make(map[string]*OrderSummary)
	p.history = make([]*OrderSummary, 0, p.maxSize)
	for _, event := range events {
		p.applyEventLocked(event)
	}

	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *OrderHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

// Emit lets the projection receive live events next to other sinks.
func (p *OrderHistoryProjection) Emit(_ context.Context, event Event) error {
	p.Apply(event)
	return nil
}

func (p *OrderHistoryProjection) applyEventLocked(event Event) {
	orderID := event.OrderID()
	if orderID == "" {
		return
	}

	summary, exists := p.orders[orderID]
	if !exists {
		summary = &OrderSummary{
			OrderID:   orderID,
			Status:    OrderStatusRunning,
			StartedAt: event.Timestamp(),
		}
		p.orders[orderID] = summary
	}

	switch event.Type() {
	case TypeOrderReceived:
		var payload struct {
			ClientID    string `json:"client_id"`
			ProjectType string `json:"type"`
		}
		summary.StartedAt = event.Timestamp()
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ClientID = payload.ClientID
			summary.ProjectType = payload.ProjectType
		}

	case TypeWorkspaceResolved:
		var payload struct {
			Workspace string `json:"workspace"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Workspace = payload.Workspace
		}

	case TypeSiteGenerated:
		var payload struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.PagePath = payload.Path
		}

	case TypeInvoiceCreated:
		var payload struct {
			InvoiceID string  `json:"invoice_id"`
			Amount    float64 `json:"amount"`
			Currency  string  `json:"currency"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.InvoiceID = payload.InvoiceID
			summary.Amount = payload.Amount
			summary.Currency = payload.Currency
		}

	case TypeOrderCompleted:
		p.finishLocked(summary, event.Timestamp(), OrderStatusCompleted)

	case TypeOrderFailed:
		var payload struct {
			Stage string `json:"stage"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
		p.finishLocked(summary, event.Timestamp(), OrderStatusFailed)
	}
}

func (p *OrderHistoryProjection) finishLocked(summary *OrderSummary, at time.Time, status string) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	summary.Status = status

	for _, h := range p.history {
		if h.OrderID == summary.OrderID {
			return
		}
	}
	p.history = append([]*OrderSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneLocked()
}

// pruneLocked drops finished orders that fell out of the bounded history.
// Caller must hold p.mu (write lock).
func (p *OrderHistoryProjection) pruneLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.OrderID] = struct{}{}
	}
	for id, summary := range p.orders {
		if summary.Status == OrderStatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.orders, id)
		}
	}
}

// History returns finished orders, newest first.
func (p *OrderHistoryProjection) History() []OrderSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]OrderSummary, len(p.history))
	for i, h := range p.history {
		out[i] = *h
	}
	return out
}

// Order returns the summary of one order.
func (p *OrderHistoryProjection) Order(orderID string) (OrderSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, ok := p.orders[orderID]
	if !ok {
		return OrderSummary{}, false
	}
	return *summary, true
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *OrderHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
