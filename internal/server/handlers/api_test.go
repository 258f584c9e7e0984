package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webforge/internal/agent"
	"git.home.luguber.info/inful/webforge/internal/billing"
	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/server/responses"
	"git.home.luguber.info/inful/webforge/internal/workspace"
)

type stubProcessor struct {
	got agent.Order
	err error
}

func (s *stubProcessor) ProcessOrder(_ context.Context, o agent.Order) (*agent.OrderResult, error) {
	s.got = o
	if s.err != nil {
		return nil, s.err
	}
	o = o.WithDefaults()
	return &agent.OrderResult{
		OrderID: "order-1",
		Project: agent.ProjectResult{Status: agent.ProjectStatusSuccess, Workspace: "clients/x"},
		Invoice: billing.Invoice{ClientID: o.ClientID, Amount: o.BudgetValue(), Currency: "EUR", Status: billing.StatusPending},
		Status:  agent.StatusCompleted,
	}, nil
}

type stubHistory struct{}

func (stubHistory) History() []eventstore.OrderSummary {
	return []eventstore.OrderSummary{{OrderID: "order-1", Status: eventstore.OrderStatusCompleted}}
}

func (stubHistory) Order(id string) (eventstore.OrderSummary, bool) {
	if id != "order-1" {
		return eventstore.OrderSummary{}, false
	}
	return eventstore.OrderSummary{OrderID: id, Status: eventstore.OrderStatusCompleted}, true
}

func newMux(h *APIHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", h.HandleCreateOrder)
	mux.HandleFunc("GET /api/orders", h.HandleListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.HandleGetOrder)
	mux.HandleFunc("GET /api/workspaces/{client}", h.HandleGetWorkspace)
	return mux
}

func TestHandleCreateOrder(t *testing.T) {
	proc := &stubProcessor{}
	mux := newMux(NewAPIHandlers(proc, workspace.NewManager(t.TempDir(), 0), nil, "", nil))

	body := `{"client_id":"client_001","type":"website","specifications":"Site vitrine pour restaurant","budget":800}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
	assert.Equal(t, "client_001", proc.got.ClientID)
	require.NotNil(t, proc.got.Budget)
	assert.InDelta(t, 800.0, *proc.got.Budget, 0)

	var result agent.OrderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, agent.StatusCompleted, result.Status)
	assert.InDelta(t, 800.0, result.Invoice.Amount, 0)
}

func TestHandleCreateOrder_EmptyBodyUsesDefaults(t *testing.T) {
	proc := &stubProcessor{}
	mux := newMux(NewAPIHandlers(proc, workspace.NewManager(t.TempDir(), 0), nil, "", nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, agent.Order{}, proc.got)
}

func TestHandleCreateOrder_TrailingWhitespace(t *testing.T) {
	proc := &stubProcessor{}
	mux := newMux(NewAPIHandlers(proc, workspace.NewManager(t.TempDir(), 0), nil, "", nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{\"client_id\":\"a\"}\n\t ")))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a", proc.got.ClientID)
}

func TestHandleCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"client_id":`, nil, http.StatusBadRequest},
		{"unknown field", `{"colour":"red"}`, nil, http.StatusBadRequest},
		{"trailing garbage", `{"client_id":"a"} garbage`, nil, http.StatusBadRequest},
		{"two objects", `{"client_id":"a"}{"client_id":"b"}`, nil, http.StatusBadRequest},
		{"validation", `{}`, workspace.ErrEmptyClientID, http.StatusBadRequest},
		{"storage", `{}`, errors.StorageError("disk full").Build(), http.StatusInternalServerError},
		{"generation", `{}`, errors.GenerationError("template").Build(), http.StatusUnprocessableEntity},
		{"generation caused by storage", `{}`, errors.GenerationError("write").WithCause(errors.StorageError("disk full").Build()).Build(), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMux(NewAPIHandlers(&stubProcessor{err: tt.err}, workspace.NewManager(t.TempDir(), 0), nil, "", nil))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)

			var payload errors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload.Error)
		})
	}
}

func TestHandleGetWorkspace(t *testing.T) {
	root := t.TempDir()
	mgr := workspace.NewManager(root, 0)
	mux := newMux(NewAPIHandlers(&stubProcessor{}, mgr, nil, "", nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspaces/client_001", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.WorkspaceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, filepath.Join(root, "c18a9b5a35e73b07"), resp.Path)
	assert.False(t, resp.Exists)
	assert.Nil(t, resp.Page)

	path, err := mgr.Resolve("client_001")
	require.NoError(t, err)
	page := `<html><head><title>T</title></head><body><h1>Project for client_001</h1></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(path, "index.html"), []byte(page), 0o600))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspaces/client_001?pretty=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Exists)
	require.NotNil(t, resp.Page)
	assert.Equal(t, "Project for client_001", resp.Page.Heading)
	assert.Contains(t, rec.Body.String(), "\n  ")
}

func TestHandleGetWorkspace_BlankClient(t *testing.T) {
	mux := newMux(NewAPIHandlers(&stubProcessor{}, workspace.NewManager(t.TempDir(), 0), nil, "", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspaces/%20", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOrders(t *testing.T) {
	mux := newMux(NewAPIHandlers(&stubProcessor{}, workspace.NewManager(t.TempDir(), 0), stubHistory{}, "", nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list responses.OrderListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/order-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleOrders_HistoryDisabled(t *testing.T) {
	mux := newMux(NewAPIHandlers(&stubProcessor{}, workspace.NewManager(t.TempDir(), 0), nil, "", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealthCheck(t *testing.T) {
	h := NewMonitoringHandlers(time.Now().Add(-time.Minute))
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp responses.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.GreaterOrEqual(t, resp.Uptime, 60.0)
}
