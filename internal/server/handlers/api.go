package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/webforge/internal/agent"
	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/server/responses"
	"git.home.luguber.info/inful/webforge/internal/site"
)

const maxOrderBody = 1 << 20

// OrderProcessor runs an order to completion.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, order agent.Order) (*agent.OrderResult, error)
}

// WorkspaceLocator derives client workspace paths.
type WorkspaceLocator interface {
	DerivePath(clientID string) (string, error)
}

// OrderHistory is the read model of processed orders.
type OrderHistory interface {
	History() []eventstore.OrderSummary
	Order(orderID string) (eventstore.OrderSummary, bool)
}

// APIHandlers serves the order and workspace endpoints.
type APIHandlers struct {
	orders       OrderProcessor
	workspaces   WorkspaceLocator
	history      OrderHistory
	pageFilename string
	errorAdapter *errors.HTTPErrorAdapter
}

// NewAPIHandlers creates the API handlers. history may be nil when no event
// store is configured.
func NewAPIHandlers(orders OrderProcessor, workspaces WorkspaceLocator, history OrderHistory, pageFilename string, adapter *errors.HTTPErrorAdapter) *APIHandlers {
	if pageFilename == "" {
		pageFilename = site.DefaultFilename
	}
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(nil)
	}
	return &APIHandlers{
		orders:       orders,
		workspaces:   workspaces,
		history:      history,
		pageFilename: pageFilename,
		errorAdapter: adapter,
	}
}

// HandleCreateOrder accepts a JSON order and processes it synchronously.
func (h *APIHandlers) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var order agent.Order
	dec := json.NewDecoder(io.LimitReader(r.Body, maxOrderBody))
	dec.DisallowUnknownFields()
	err := dec.Decode(&order)
	if err == nil {
		// Exactly one JSON value per request.
		if extra := dec.Decode(&struct{}{}); extra != io.EOF {
			err = errors.ValidationError("unexpected data after order object").Build()
		}
	}
	if err != nil && err != io.EOF {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.ValidationError("invalid order body").WithCause(err).Build())
		return
	}

	result, err := h.orders.ProcessOrder(r.Context(), order)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := writeJSONPretty(w, r, http.StatusCreated, result); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.InternalError("failed to encode result").WithCause(err).Build())
	}
}

// HandleGetWorkspace reports the derived workspace of a client and, when it
// exists, a summary of the generated page.
func (h *APIHandlers) HandleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client")
	path, err := h.workspaces.DerivePath(clientID)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := responses.WorkspaceResponse{ClientID: clientID, Path: path}
	if st, serr := os.Stat(path); serr == nil && st.IsDir() {
		resp.Exists = true
		if summary, ierr := site.Inspect(filepath.Join(path, h.pageFilename)); ierr == nil {
			resp.Page = summary
		}
	}
	_ = writeJSONPretty(w, r, http.StatusOK, resp)
}

// HandleListOrders lists recently finished orders.
func (h *APIHandlers) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("order history is disabled").Build())
		return
	}
	orders := h.history.History()
	_ = writeJSONPretty(w, r, http.StatusOK, responses.OrderListResponse{Orders: orders, Count: len(orders)})
}

// HandleGetOrder returns the summary of one order.
func (h *APIHandlers) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("order history is disabled").Build())
		return
	}
	id := r.PathValue("id")
	summary, ok := h.history.Order(id)
	if !ok {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.NotFoundError("order not found").WithContext("order_id", id).Build())
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, summary)
}
