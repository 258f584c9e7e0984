package handlers

import (
	"net/http"

	"git.home.luguber.info/inful/webforge/internal/client"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/server/responses"
)

// ClientDirectory is the read side of the client registry.
type ClientDirectory interface {
	GetClient(id string) (*client.Client, error)
	ListClients() ([]*client.Client, error)
}

// ClientHandlers serves the client registry endpoints.
type ClientHandlers struct {
	clients      ClientDirectory
	errorAdapter *errors.HTTPErrorAdapter
}

// NewClientHandlers creates client handlers. A nil adapter uses the default logger.
func NewClientHandlers(clients ClientDirectory, adapter *errors.HTTPErrorAdapter) *ClientHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(nil)
	}
	return &ClientHandlers{clients: clients, errorAdapter: adapter}
}

// HandleListClients lists every client that completed an order.
func (h *ClientHandlers) HandleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients()
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, responses.ClientListResponse{Clients: clients, Count: len(clients)})
}

// HandleGetClient returns one client record.
func (h *ClientHandlers) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("client")
	c, err := h.clients.GetClient(id)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			err = classified.WithContext("client_id", id)
		}
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, c)
}
