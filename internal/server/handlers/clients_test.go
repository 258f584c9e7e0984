package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webforge/internal/client"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/server/responses"
)

func newClientMux(h *ClientHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clients", h.HandleListClients)
	mux.HandleFunc("GET /api/clients/{client}", h.HandleGetClient)
	return mux
}

func TestClientHandlers(t *testing.T) {
	store := client.NewMemoryStore()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"client_002", "client_001"} {
		_, err := store.RecordOrder(client.CompletedOrder{ClientID: id, InvoiceID: "inv-" + id, Amount: 800, Currency: "EUR", At: at})
		require.NoError(t, err)
	}
	mux := newClientMux(NewClientHandlers(store, nil))

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp responses.ClientListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, "client_001", resp.Clients[0].ID)
		assert.Equal(t, "client_002", resp.Clients[1].ID)
	})

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients/client_001", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var c client.Client
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, 1, c.Orders)
		assert.InDelta(t, 800.0, c.TotalBilled, 0)
		assert.Equal(t, "inv-client_001", c.LastInvoiceID)
	})

	t.Run("unknown client", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients/nobody", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)

		var payload errors.HTTPErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "nobody", payload.Details["client_id"])
	})
}
