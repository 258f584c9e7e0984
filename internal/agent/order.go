package agent

import (
	"fmt"
	"math"
	"strings"

	"git.home.luguber.info/inful/webforge/internal/billing"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// Order defaults applied to absent fields.
const (
	DefaultClientID       = "UNKNOWN"
	DefaultProjectType    = "website"
	DefaultSpecifications = "standard website"
	DefaultBudget         = 500.0
)

// Result status values.
const (
	StatusCompleted      = "COMPLETED"
	ProjectStatusSuccess = "SUCCESS"
)

// Order is a client request to build a project. Empty string fields and a
// nil Budget take the package defaults; an explicit zero budget is kept.
type Order struct {
	ClientID       string   `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ProjectType    string   `json:"type,omitempty" yaml:"type,omitempty"`
	Specifications string   `json:"specifications,omitempty" yaml:"specifications,omitempty"`
	Budget         *float64 `json:"budget,omitempty" yaml:"budget,omitempty"`
}

// Budget returns a pointer suitable for Order.Budget.
func Budget(v float64) *float64 {
	return &v
}

// WithDefaults returns a copy of o with absent fields filled in.
func (o Order) WithDefaults() Order {
	if o.ClientID == "" {
		o.ClientID = DefaultClientID
	}
	if o.ProjectType == "" {
		o.ProjectType = DefaultProjectType
	}
	if o.Specifications == "" {
		o.Specifications = DefaultSpecifications
	}
	if o.Budget == nil {
		o.Budget = Budget(DefaultBudget)
	}
	return o
}

// BudgetValue returns the budget, or DefaultBudget when absent.
func (o Order) BudgetValue() float64 {
	if o.Budget == nil {
		return DefaultBudget
	}
	return *o.Budget
}

// Validate checks an order after defaults have been applied. Client id
// validity is left to the workspace manager.
func (o Order) Validate() error {
	b := o.BudgetValue()
	if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
		return errors.ValidationError("budget must be a non-negative number").
			WithContext("budget", b).
			Build()
	}
	if strings.TrimSpace(o.ProjectType) == "" {
		return errors.ValidationError("project type must not be blank").Build()
	}
	return nil
}

// Description is the invoice line for the order.
func (o Order) Description() string {
	return fmt.Sprintf("%s - %s", o.ProjectType, o.Specifications)
}

// ProjectResult reports where the deliverable was written.
type ProjectResult struct {
	Status    string `json:"status"`
	Workspace string `json:"workspace"`
	Page      string `json:"page,omitempty"`
}

// OrderResult is returned for a fully processed order.
type OrderResult struct {
	OrderID string          `json:"order_id"`
	Project ProjectResult   `json:"project"`
	Invoice billing.Invoice `json:"invoice"`
	Status  string          `json:"status"`
}
