// Package notify fans order events out to NATS subscribers.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/logfields"
	"git.home.luguber.info/inful/webforge/internal/retry"
)

// DefaultSubject is the subject prefix events are published under.
const DefaultSubject = "webforge.orders"

const connectTimeout = 5 * time.Second

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// Message is the JSON envelope published for every event.
type Message struct {
	OrderID   string            `json:"order_id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Publisher publishes events to "<subject>.<EventType>".
type Publisher struct {
	conn    Conn
	subject string
	policy  retry.Policy
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRetryPolicy retries failed publishes according to p.
func WithRetryPolicy(p retry.Policy) Option {
	return func(pub *Publisher) { pub.policy = p }
}

// NewPublisher wraps an existing connection. Without WithRetryPolicy a
// failed publish is not retried.
func NewPublisher(conn Conn, subject string, opts ...Option) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	p := &Publisher{conn: conn, subject: subject, policy: retry.NoRetry()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect dials the NATS server at url.
func Connect(url, subject string, opts ...Option) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("webforge"),
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, errors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	p := NewPublisher(conn, subject, opts...)
	slog.Info("NATS publisher connected", slog.String("url", url), logfields.Subject(p.subject))
	return p, nil
}

// Subject returns the subject e is published under.
func (p *Publisher) Subject(e eventstore.Event) string {
	return p.subject + "." + e.Type()
}

// Emit publishes e.
func (p *Publisher) Emit(ctx context.Context, e eventstore.Event) error {
	if err := ctx.Err(); err != nil {
		return errors.NotifyError("publish cancelled").WithCause(err).Build()
	}

	payload := e.Payload()
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	data, err := json.Marshal(Message{
		OrderID:   e.OrderID(),
		Type:      e.Type(),
		Timestamp: e.Timestamp().UTC(),
		Payload:   payload,
		Metadata:  e.Metadata(),
	})
	if err != nil {
		return errors.NotifyError("failed to marshal event").WithCause(err).Build()
	}

	subject := p.Subject(e)
	attempts := 0
	err = p.policy.Do(ctx, func() error {
		attempts++
		return p.conn.Publish(subject, data)
	})
	if err != nil {
		return errors.NotifyError("failed to publish event").
			WithCause(err).
			WithContext("subject", subject).
			WithContext("attempts", attempts).
			Build()
	}

	slog.Debug("Published order event",
		logfields.Subject(subject),
		logfields.OrderID(e.OrderID()),
		logfields.EventType(e.Type()))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return errors.NotifyError("failed to drain NATS connection").WithCause(err).Build()
	}
	return nil
}
