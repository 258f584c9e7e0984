package commands

import (
	"context"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webforge/internal/agent"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// OrderCmd implements the 'order' command.
type OrderCmd struct {
	File           string `short:"f" help:"Read the order from a YAML or JSON file" type:"existingfile"`
	ClientID       string `name:"client-id" help:"Client identifier"`
	Type           string `name:"type" help:"Project type (default: website)"`
	Specifications string `short:"s" help:"Free-form project specifications"`
	Budget         string `short:"b" help:"Project budget (default: 500)"`
}

func (o *OrderCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	order, err := o.order()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := NewRuntime(ctx, cfg, g.logger())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	result, err := rt.Agent.ProcessOrder(ctx, order)
	if err != nil {
		return err
	}
	return printJSON(g.out(), result)
}

// order assembles the order from --file and flags. Flags override file values.
func (o *OrderCmd) order() (agent.Order, error) {
	var order agent.Order
	if o.File != "" {
		data, err := os.ReadFile(o.File)
		if err != nil {
			return order, errors.ValidationError("failed to read order file").
				WithCause(err).
				WithContext("path", o.File).
				Build()
		}
		if err := yaml.Unmarshal(data, &order); err != nil {
			return order, errors.ValidationError("invalid order file").
				WithCause(err).
				WithContext("path", o.File).
				Build()
		}
	}

	if o.ClientID != "" {
		order.ClientID = o.ClientID
	}
	if o.Type != "" {
		order.ProjectType = o.Type
	}
	if o.Specifications != "" {
		order.Specifications = o.Specifications
	}
	if raw := strings.TrimSpace(o.Budget); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return order, errors.ValidationError("budget must be a number").
				WithCause(err).
				WithContext("budget", o.Budget).
				Build()
		}
		order.Budget = agent.Budget(v)
	}
	return order, nil
}
