// Package agent processes client orders: it provisions the client workspace,
// generates the site into it and issues an invoice.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/webforge/internal/billing"
	"git.home.luguber.info/inful/webforge/internal/client"
	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/logfields"
	"git.home.luguber.info/inful/webforge/internal/metrics"
	"git.home.luguber.info/inful/webforge/internal/observability"
	"git.home.luguber.info/inful/webforge/internal/site"
)

// Stage names used in logs, metrics and OrderFailed events.
const (
	StageIntake     = "intake"
	StageWorkspace  = "workspace"
	StageGeneration = "generation"
	StageBilling    = "billing"
)

// WorkspaceResolver provisions the directory of a client.
type WorkspaceResolver interface {
	Resolve(clientID string) (string, error)
}

// Biller issues invoices.
type Biller interface {
	CreateInvoice(clientID string, amount float64, description string) (*billing.Invoice, error)
}

// Sealer encrypts client text before it leaves the agent.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
}

// Sink receives order events. Delivery failures are logged, never fatal.
type Sink interface {
	Emit(ctx context.Context, e eventstore.Event) error
}

type namedSink struct {
	name string
	sink Sink
}

// Agent processes orders synchronously. It is safe for concurrent use when
// its collaborators are.
type Agent struct {
	workspaces WorkspaceResolver
	generator  site.Generator
	biller     Biller
	sealer     Sealer
	sinks      []namedSink
	clients    client.Store
	recorder   metrics.Recorder
	now        func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithSink adds an event sink. name labels delivery failures.
func WithSink(name string, s Sink) Option {
	return func(a *Agent) {
		if s != nil {
			a.sinks = append(a.sinks, namedSink{name: name, sink: s})
		}
	}
}

// WithClientStore records every completed order in s. Registry failures are
// logged, never fatal.
func WithClientStore(s client.Store) Option {
	return func(a *Agent) {
		a.clients = s
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(a *Agent) {
		if r != nil {
			a.recorder = r
		}
	}
}

// New wires an Agent.
func New(workspaces WorkspaceResolver, generator site.Generator, biller Biller, sealer Sealer, opts ...Option) *Agent {
	a := &Agent{
		workspaces: workspaces,
		generator:  generator,
		biller:     biller,
		sealer:     sealer,
		recorder:   metrics.NoopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	slog.Info("Agent ready to receive orders", slog.Int("sinks", len(a.sinks)))
	return a
}

// ProcessOrder runs an order to completion. Any failing stage aborts the
// order; the caller then gets an error and no result.
func (a *Agent) ProcessOrder(ctx context.Context, order Order) (*OrderResult, error) {
	start := a.now()
	order = order.WithDefaults()
	if err := order.Validate(); err != nil {
		a.recorder.IncOrderOutcome(metrics.OrderOutcomeRejected)
		return nil, err
	}

	orderID := uuid.NewString()
	ctx = observability.WithOrderID(ctx, orderID)
	ctx = observability.WithClientID(ctx, order.ClientID)
	budget := order.BudgetValue()

	observability.InfoContext(ctx, "New order",
		logfields.ProjectType(order.ProjectType),
		logfields.Amount(budget))

	var sealed string
	err := a.runStage(ctx, orderID, StageIntake, func(context.Context) error {
		var err error
		sealed, err = a.sealer.Encrypt(order.Specifications)
		return err
	})
	if err != nil {
		return nil, err
	}
	received, err := eventstore.NewOrderReceived(orderID, order.ClientID, order.ProjectType, sealed, budget)
	a.emit(ctx, received, err)

	var workspace string
	var wsElapsed time.Duration
	err = a.runStage(ctx, orderID, StageWorkspace, func(context.Context) error {
		t0 := a.now()
		var err error
		workspace, err = a.workspaces.Resolve(order.ClientID)
		wsElapsed = a.now().Sub(t0)
		return err
	})
	if err != nil {
		return nil, err
	}
	resolved, err := eventstore.NewWorkspaceResolved(orderID, order.ClientID, workspace, wsElapsed)
	a.emit(ctx, resolved, err)

	var artifact *site.Artifact
	var genElapsed time.Duration
	err = a.runStage(ctx, orderID, StageGeneration, func(ctx context.Context) error {
		t0 := a.now()
		var err error
		artifact, err = a.generator.Generate(ctx, site.Request{
			ClientID:       order.ClientID,
			Specifications: order.Specifications,
			Workspace:      workspace,
		})
		genElapsed = a.now().Sub(t0)
		if err != nil && !errors.HasCategory(err, errors.CategoryGeneration) {
			return errors.GenerationError("website generation failed").WithCause(err).Build()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	generated, err := eventstore.NewSiteGenerated(orderID, artifact.Path, artifact.Bytes, genElapsed)
	a.emit(ctx, generated, err)
	observability.InfoContext(ctx, "Site generated", logfields.Workspace(workspace))

	var invoice *billing.Invoice
	err = a.runStage(ctx, orderID, StageBilling, func(context.Context) error {
		var err error
		invoice, err = a.biller.CreateInvoice(order.ClientID, budget, order.Description())
		return err
	})
	if err != nil {
		return nil, err
	}
	invoiced, err := eventstore.NewInvoiceCreated(orderID, invoice.InvoiceID, invoice.Amount, invoice.Currency)
	a.emit(ctx, invoiced, err)

	elapsed := a.now().Sub(start)
	completed, err := eventstore.NewOrderCompleted(orderID, workspace, invoice.InvoiceID, elapsed)
	a.emit(ctx, completed, err)

	a.recordClient(ctx, client.CompletedOrder{
		ClientID:  order.ClientID,
		Workspace: workspace,
		InvoiceID: invoice.InvoiceID,
		Amount:    invoice.Amount,
		Currency:  invoice.Currency,
		At:        a.now(),
	})

	a.recorder.ObserveOrderDuration(elapsed)
	a.recorder.IncOrderOutcome(metrics.OrderOutcomeCompleted)
	observability.InfoContext(ctx, "Order completed",
		logfields.InvoiceID(invoice.InvoiceID),
		logfields.DurationMS(float64(elapsed.Milliseconds())))

	return &OrderResult{
		OrderID: orderID,
		Project: ProjectResult{
			Status:    ProjectStatusSuccess,
			Workspace: workspace,
			Page:      artifact.Path,
		},
		Invoice: *invoice,
		Status:  StatusCompleted,
	}, nil
}

func (a *Agent) runStage(ctx context.Context, orderID, stage string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, stage)
	t0 := a.now()
	err := fn(ctx)
	a.recorder.ObserveStageDuration(stage, a.now().Sub(t0))

	if err == nil {
		a.recorder.IncStageResult(stage, metrics.ResultSuccess)
		return nil
	}

	result := metrics.ResultFailed
	if ctx.Err() != nil {
		result = metrics.ResultCanceled
	}
	a.recorder.IncStageResult(stage, result)
	a.recorder.IncOrderOutcome(metrics.OrderOutcomeFailed)
	observability.ErrorContext(ctx, "Order failed", logfields.Error(err))

	failed, ferr := eventstore.NewOrderFailed(orderID, stage, err)
	a.emit(ctx, failed, ferr)
	return err
}

func (a *Agent) emit(ctx context.Context, e eventstore.Event, buildErr error) {
	if buildErr != nil {
		observability.WarnContext(ctx, "Failed to build event", logfields.Error(buildErr))
		return
	}
	for _, s := range a.sinks {
		if err := s.sink.Emit(ctx, e); err != nil {
			a.recorder.IncSinkError(s.name)
			observability.WarnContext(ctx, "Event sink failed",
				slog.String("sink", s.name),
				logfields.EventType(e.Type()),
				logfields.Error(err))
		}
	}
}

func (a *Agent) recordClient(ctx context.Context, o client.CompletedOrder) {
	if a.clients == nil {
		return
	}
	if _, err := a.clients.RecordOrder(o); err != nil {
		observability.WarnContext(ctx, "Failed to update client record", logfields.Error(err))
	}
}
