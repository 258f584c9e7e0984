package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// EventsCmd implements the 'events' command.
type EventsCmd struct {
	OrderID string `arg:"" name:"order-id" help:"Order identifier"`
	JSON    bool   `name:"json" help:"Print events as JSON"`
}

type eventView struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   string            `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (e *EventsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Events.Path == "" {
		return errors.ConfigError("event log is disabled (set events.path)").Build()
	}
	if _, err := os.Stat(cfg.Events.Path); os.IsNotExist(err) {
		return errors.NotFoundError("event log does not exist").
			WithContext("path", cfg.Events.Path).
			Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.Events.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	events, err := store.GetByOrderID(context.Background(), e.OrderID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return errors.NotFoundError("no events recorded for order").
			WithContext("order_id", e.OrderID).
			Build()
	}

	if e.JSON {
		views := make([]eventView, 0, len(events))
		for _, ev := range events {
			views = append(views, eventView{
				ID:        ev.ID(),
				Type:      ev.Type(),
				Timestamp: ev.Timestamp(),
				Payload:   string(ev.Payload()),
				Metadata:  ev.Metadata(),
			})
		}
		return printJSON(g.out(), views)
	}

	tw := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tTYPE\tPAYLOAD")
	for _, ev := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", ev.Timestamp().Format(time.RFC3339), ev.Type(), ev.Payload())
	}
	return tw.Flush()
}
