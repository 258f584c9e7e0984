// Package billing creates invoice records for completed orders.
//
// No payment provider is contacted. Invoices are kept in memory for the
// lifetime of the Biller and start in the PENDING state.
package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/logfields"
)

const (
	// DefaultCurrency is the ISO 4217 code used when none is configured.
	DefaultCurrency = "EUR"
	// StatusPending is the state of every newly created invoice.
	StatusPending = "PENDING"
	// MockSecretKey marks a Biller running without a real payment key.
	MockSecretKey = "MOCK_KEY"

	invoiceIDLength = 16
)

// Invoice is a billing record for one order.
type Invoice struct {
	InvoiceID   string  `json:"invoice_id" yaml:"invoice_id"`
	ClientID    string  `json:"client_id" yaml:"client_id"`
	Amount      float64 `json:"amount" yaml:"amount"`
	Currency    string  `json:"currency" yaml:"currency"`
	Description string  `json:"description" yaml:"description"`
	Status      string  `json:"status" yaml:"status"`
	CreatedAt   string  `json:"created_at" yaml:"created_at"`
}

// Biller issues invoices.
type Biller struct {
	currency  string
	secretKey string
	now       func() time.Time

	mu       sync.RWMutex
	invoices map[string]Invoice
}

// NewBiller returns a Biller billing in currency. An empty secretKey is
// treated as MockSecretKey.
func NewBiller(currency, secretKey string) *Biller {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if secretKey == "" {
		secretKey = MockSecretKey
	}
	b := &Biller{
		currency:  currency,
		secretKey: secretKey,
		now:       time.Now,
		invoices:  make(map[string]Invoice),
	}
	slog.Info("Payment module initialized", slog.String("currency", currency), slog.Bool("mock", b.Mock()))
	return b
}

// Mock reports whether the Biller runs without a real payment key.
func (b *Biller) Mock() bool {
	return b.secretKey == MockSecretKey
}

// Currency returns the billing currency.
func (b *Biller) Currency() string {
	return b.currency
}

// CreateInvoice records a PENDING invoice. The id is derived from the client
// id and the creation time.
func (b *Biller) CreateInvoice(clientID string, amount float64, description string) (*Invoice, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.ValidationError("client id must not be empty").Build()
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, errors.ValidationError("invoice amount must be a non-negative number").
			WithContext("amount", amount).
			Build()
	}

	created := b.now()
	sum := sha256.Sum256([]byte(clientID + created.Format(time.RFC3339Nano)))
	inv := Invoice{
		InvoiceID:   hex.EncodeToString(sum[:])[:invoiceIDLength],
		ClientID:    clientID,
		Amount:      amount,
		Currency:    b.currency,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   created.Format(time.RFC3339),
	}

	b.mu.Lock()
	if _, dup := b.invoices[inv.InvoiceID]; dup {
		b.mu.Unlock()
		return nil, errors.BillingError("duplicate invoice id").
			Retryable().
			WithContext("invoice_id", inv.InvoiceID).
			Build()
	}
	b.invoices[inv.InvoiceID] = inv
	b.mu.Unlock()

	slog.Info("Invoice created",
		logfields.InvoiceID(inv.InvoiceID),
		logfields.ClientTag(clientID),
		logfields.Amount(amount),
		slog.String("currency", inv.Currency))
	return &inv, nil
}

// Get returns a previously created invoice.
func (b *Biller) Get(invoiceID string) (Invoice, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	inv, ok := b.invoices[invoiceID]
	return inv, ok
}

// Invoices returns all invoices ordered by creation time, then id.
func (b *Biller) Invoices() []Invoice {
	b.mu.RLock()
	out := make([]Invoice, 0, len(b.invoices))
	for _, inv := range b.invoices {
		out = append(out, inv)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].InvoiceID < out[j].InvoiceID
	})
	return out
}
