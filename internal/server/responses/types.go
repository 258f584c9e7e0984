// Package responses defines API response types used by the WebForge HTTP intake.
package responses

import (
	"time"

	"git.home.luguber.info/inful/webforge/internal/client"
	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/site"
)

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// WorkspaceResponse describes the workspace of one client.
type WorkspaceResponse struct {
	ClientID string        `json:"client_id"`
	Path     string        `json:"path"`
	Exists   bool          `json:"exists"`
	Page     *site.Summary `json:"page,omitempty"`
}

// OrderListResponse lists recently finished orders, newest first.
type OrderListResponse struct {
	Orders []eventstore.OrderSummary `json:"orders"`
	Count  int                       `json:"count"`
}

// ClientListResponse lists client records sorted by client id.
type ClientListResponse struct {
	Clients []*client.Client `json:"clients"`
	Count   int              `json:"count"`
}
