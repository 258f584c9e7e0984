package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// Event type names.
const (
	TypeOrderReceived     = "OrderReceived"
	TypeWorkspaceResolved = "WorkspaceResolved"
	TypeSiteGenerated     = "SiteGenerated"
	TypeInvoiceCreated    = "InvoiceCreated"
	TypeOrderCompleted    = "OrderCompleted"
	TypeOrderFailed       = "OrderFailed"
)

func newBase(orderID, eventType string, payload any) (BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return BaseEvent{}, errors.EventStoreError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("order_id", orderID).
			Build()
	}
	return BaseEvent{
		EventOrderID:   orderID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// OrderReceived is emitted when an order has been accepted for processing.
// Specifications are carried sealed; they never reach a sink in clear text.
type OrderReceived struct {
	BaseEvent `json:"-"`
	ClientID             string  `json:"client_id"`
	ProjectType          string  `json:"type"`
	SealedSpecifications string  `json:"sealed_specifications"`
	Budget               float64 `json:"budget"`
}

// NewOrderReceived creates an OrderReceived event.
func NewOrderReceived(orderID, clientID, projectType, sealedSpecs string, budget float64) (*OrderReceived, error) {
	e := &OrderReceived{
		ClientID:             clientID,
		ProjectType:          projectType,
		SealedSpecifications: sealedSpecs,
		Budget:               budget,
	}
	base, err := newBase(orderID, TypeOrderReceived, e)
	if err != nil {
		return nil, err
	}
	e.BaseEvent = base
	return e, nil
}

// WorkspaceResolved is emitted once the client directory exists.
type WorkspaceResolved struct {
	BaseEvent `json:"-"`
	ClientID  string        `json:"client_id"`
	Workspace string        `json:"workspace"`
	Duration  time.Duration `json:"-"`
}

// NewWorkspaceResolved creates a WorkspaceResolved event.
func NewWorkspaceResolved(orderID, clientID, workspace string, duration time.Duration) (*WorkspaceResolved, error) {
	base, err := newBase(orderID, TypeWorkspaceResolved, map[string]any{
		"client_id":   clientID,
		"workspace":   workspace,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return nil, err
	}
	return &WorkspaceResolved{BaseEvent: base, ClientID: clientID, Workspace: workspace, Duration: duration}, nil
}

// SiteGenerated is emitted when the page has been written.
type SiteGenerated struct {
	BaseEvent `json:"-"`
	Path     string        `json:"path"`
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"-"`
}

// NewSiteGenerated creates a SiteGenerated event.
func NewSiteGenerated(orderID, path string, size int, duration time.Duration) (*SiteGenerated, error) {
	base, err := newBase(orderID, TypeSiteGenerated, map[string]any{
		"path":        path,
		"bytes":       size,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return nil, err
	}
	return &SiteGenerated{BaseEvent: base, Path: path, Bytes: size, Duration: duration}, nil
}

// InvoiceCreated is emitted when billing recorded the invoice.
type InvoiceCreated struct {
	BaseEvent `json:"-"`
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// NewInvoiceCreated creates an InvoiceCreated event.
func NewInvoiceCreated(orderID, invoiceID string, amount float64, currency string) (*InvoiceCreated, error) {
	e := &InvoiceCreated{InvoiceID: invoiceID, Amount: amount, Currency: currency}
	base, err := newBase(orderID, TypeInvoiceCreated, e)
	if err != nil {
		return nil, err
	}
	e.BaseEvent = base
	return e, nil
}

// OrderCompleted is emitted when every stage succeeded.
type OrderCompleted struct {
	BaseEvent `json:"-"`
	Workspace string        `json:"workspace"`
	InvoiceID string        `json:"invoice_id"`
	Duration  time.Duration `json:"-"`
}

// NewOrderCompleted creates an OrderCompleted event.
func NewOrderCompleted(orderID, workspace, invoiceID string, duration time.Duration) (*OrderCompleted, error) {
	base, err := newBase(orderID, TypeOrderCompleted, map[string]any{
		"workspace":   workspace,
		"invoice_id":  invoiceID,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return nil, err
	}
	return &OrderCompleted{BaseEvent: base, Workspace: workspace, InvoiceID: invoiceID, Duration: duration}, nil
}

// OrderFailed is emitted when a stage aborted the order.
type OrderFailed struct {
	BaseEvent `json:"-"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// NewOrderFailed creates an OrderFailed event.
func NewOrderFailed(orderID, stage string, cause error) (*OrderFailed, error) {
	e := &OrderFailed{Stage: stage}
	if cause != nil {
		e.Error = cause.Error()
		e.Category = string(errors.GetCategory(cause))
	}
	base, err := newBase(orderID, TypeOrderFailed, e)
	if err != nil {
		return nil, err
	}
	e.BaseEvent = base
	return e, nil
}
