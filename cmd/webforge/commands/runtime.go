package commands

import (
	"context"
	stderrors "errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/webforge/internal/agent"
	"git.home.luguber.info/inful/webforge/internal/billing"
	"git.home.luguber.info/inful/webforge/internal/client"
	"git.home.luguber.info/inful/webforge/internal/config"
	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/logfields"
	"git.home.luguber.info/inful/webforge/internal/metrics"
	"git.home.luguber.info/inful/webforge/internal/notify"
	"git.home.luguber.info/inful/webforge/internal/retry"
	"git.home.luguber.info/inful/webforge/internal/secure"
	"git.home.luguber.info/inful/webforge/internal/site"
	"git.home.luguber.info/inful/webforge/internal/workspace"
)

const historySize = 500

// Runtime is the fully wired agent plus the optional collaborators selected
// by configuration.
type Runtime struct {
	Config     *config.Config
	Agent      *agent.Agent
	Workspaces *workspace.Manager
	Generator  *site.HTMLGenerator
	Biller     *billing.Biller
	History    *eventstore.OrderHistoryProjection
	Clients    *client.MemoryStore
	Registry   *prom.Registry
	Recorder   *metrics.PrometheusRecorder

	// Store is nil when events.path is empty.
	Store *eventstore.SQLiteStore
	// Publisher is nil when notify.nats_url is empty or unreachable.
	Publisher *notify.Publisher
}

// NewRuntime builds the agent and its collaborators from cfg.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	channel, err := secure.New()
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:     cfg,
		Workspaces: workspace.NewManager(cfg.Workspace.Root, cfg.Workspace.DigestLength),
		Generator:  site.NewHTMLGenerator(cfg.Site.Title, cfg.Site.Filename),
		Biller:     billing.NewBiller(cfg.Billing.Currency, cfg.Credentials.StripeSecretKey),
		Clients:    client.NewMemoryStore(),
		Registry:   prom.NewRegistry(),
	}
	rt.Recorder = metrics.NewPrometheusRecorder(rt.Registry)

	opts := []agent.Option{agent.WithRecorder(rt.Recorder), agent.WithClientStore(rt.Clients)}

	if cfg.Events.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Events.Path)
		if err != nil {
			return nil, err
		}
		rt.Store = store
		opts = append(opts, agent.WithSink("eventstore", eventstore.NewStoreSink(store)))
	}

	var store eventstore.Store
	if rt.Store != nil {
		store = rt.Store
	}
	rt.History = eventstore.NewOrderHistoryProjection(store, historySize)
	if store != nil {
		if err := rt.History.Rebuild(ctx); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	opts = append(opts, agent.WithSink("projection", rt.History))

	if cfg.Notify.NATSURL != "" {
		policy, err := retry.FromConfig(cfg.Notify)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		pub, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject, notify.WithRetryPolicy(policy))
		if err != nil {
			// Notification is best effort; orders are still processed without it.
			logger.Warn("NATS notifications disabled", logfields.Error(err))
		} else {
			rt.Publisher = pub
			opts = append(opts, agent.WithSink("nats", pub))
		}
	}

	if cfg.BackendConfigured() {
		logger.Info("Backend credentials configured")
	} else {
		logger.Debug("Backend credentials not configured")
	}

	rt.Agent = agent.New(rt.Workspaces, rt.Generator, rt.Biller, channel, opts...)
	return rt, nil
}

// Close releases the event store and NATS connection.
func (r *Runtime) Close() error {
	var errs []error
	if r.Publisher != nil {
		errs = append(errs, r.Publisher.Close())
		r.Publisher = nil
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
		r.Store = nil
	}
	return stderrors.Join(errs...)
}
