// Package client keeps one record per ordering client: where its workspace
// lives and what it has been billed.
package client

import (
	"sort"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// Client is the registry record of one client.
type Client struct {
	ID            string    `json:"client_id"`
	Workspace     string    `json:"workspace"`
	Orders        int       `json:"orders"`
	TotalBilled   float64   `json:"total_billed"`
	Currency      string    `json:"currency"`
	LastInvoiceID string    `json:"last_invoice_id"`
	FirstOrderAt  time.Time `json:"first_order_at"`
	LastOrderAt   time.Time `json:"last_order_at"`
}

// CompletedOrder is what the registry learns from one finished order.
type CompletedOrder struct {
	ClientID  string
	Workspace string
	InvoiceID string
	Amount    float64
	Currency  string
	At        time.Time
}

var (
	// ErrNotFound is returned when no record exists for a client id.
	ErrNotFound = errors.NotFoundError("client not found").Build()

	// ErrInvalidID is returned for an empty or blank client id.
	ErrInvalidID = errors.ValidationError("invalid client id").Build()

	// ErrExists is returned when creating a record that already exists.
	ErrExists = errors.ValidationError("client already exists").Build()
)

// Store manages client records.
type Store interface {
	GetClient(id string) (*Client, error)
	CreateClient(c *Client) error
	UpdateClient(c *Client) error
	DeleteClient(id string) error
	ListClients() ([]*Client, error)
	// RecordOrder creates or updates the record of o.ClientID atomically.
	RecordOrder(o CompletedOrder) (*Client, error)
}

// MemoryStore is an in-memory Store. Returned records are copies.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients: make(map[string]*Client),
	}
}

func validID(id string) bool {
	return strings.TrimSpace(id) != ""
}

// GetClient retrieves a client by ID.
func (m *MemoryStore) GetClient(id string) (*Client, error) {
	if !validID(id) {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// CreateClient stores a new record.
func (m *MemoryStore) CreateClient(c *Client) error {
	if c == nil || !validID(c.ID) {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; ok {
		return ErrExists
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

// UpdateClient replaces an existing record.
func (m *MemoryStore) UpdateClient(c *Client) error {
	if c == nil || !validID(c.ID) {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

// DeleteClient removes a record. Deleting an unknown client is not an error.
func (m *MemoryStore) DeleteClient(id string) error {
	if !validID(id) {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, id)
	return nil
}

// ListClients returns all records sorted by client id.
func (m *MemoryStore) ListClients() ([]*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RecordOrder adds o to the record of its client, creating it on first order.
// Amounts in a currency other than the record's are counted as orders but
// not added to TotalBilled.
func (m *MemoryStore) RecordOrder(o CompletedOrder) (*Client, error) {
	if !validID(o.ClientID) {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[o.ClientID]
	if !ok {
		c = &Client{ID: o.ClientID, Currency: o.Currency, FirstOrderAt: o.At}
		m.clients[o.ClientID] = c
	}
	c.Orders++
	if c.Currency == o.Currency {
		c.TotalBilled += o.Amount
	}
	if o.Workspace != "" {
		c.Workspace = o.Workspace
	}
	c.LastInvoiceID = o.InvoiceID
	if o.At.After(c.LastOrderAt) {
		c.LastOrderAt = o.At
	}
	cp := *c
	return &cp, nil
}
