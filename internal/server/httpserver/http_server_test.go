package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webforge/internal/agent"
	"git.home.luguber.info/inful/webforge/internal/billing"
	"git.home.luguber.info/inful/webforge/internal/client"
	"git.home.luguber.info/inful/webforge/internal/eventstore"
	"git.home.luguber.info/inful/webforge/internal/metrics"
	"git.home.luguber.info/inful/webforge/internal/secure"
	"git.home.luguber.info/inful/webforge/internal/site"
	"git.home.luguber.info/inful/webforge/internal/workspace"
)

func newTestServer(t *testing.T) (*Server, *workspace.Manager) {
	t.Helper()

	ch, err := secure.New()
	require.NoError(t, err)
	store, err := eventstore.NewSQLiteStore(eventstore.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	projection := eventstore.NewOrderHistoryProjection(store, 10)
	mgr := workspace.NewManager(filepath.Join(t.TempDir(), "clients"), 0)
	clients := client.NewMemoryStore()

	a := agent.New(mgr, site.NewHTMLGenerator("", ""), billing.NewBiller("EUR", ""), ch,
		agent.WithClientStore(clients),
		agent.WithSink("eventstore", eventstore.NewStoreSink(store)),
		agent.WithSink("projection", projection),
		agent.WithRecorder(recorder))

	return New(Options{
		MetricsPath:    "/metrics",
		Orders:         a,
		Workspaces:     mgr,
		History:        projection,
		Clients:        clients,
		MetricsHandler: metrics.HTTPHandler(reg),
		Recorder:       recorder,
	}), mgr
}

func TestServer_OrderRoundTrip(t *testing.T) {
	s, mgr := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body := `{"client_id":"client_001","type":"website","specifications":"Site vitrine pour restaurant","budget":800}`
	resp, err := http.Post(ts.URL+"/api/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result agent.OrderResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, agent.StatusCompleted, result.Status)
	assert.Equal(t, agent.ProjectStatusSuccess, result.Project.Status)
	assert.InDelta(t, 800.0, result.Invoice.Amount, 0)
	assert.Equal(t, "EUR", result.Invoice.Currency)
	assert.Equal(t, billing.StatusPending, result.Invoice.Status)

	want, err := mgr.DerivePath("client_001")
	require.NoError(t, err)
	assert.Equal(t, want, result.Project.Workspace)

	orderResp, err := http.Get(ts.URL + "/api/orders/" + result.OrderID)
	require.NoError(t, err)
	defer func() { _ = orderResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, orderResp.StatusCode)

	wsResp, err := http.Get(ts.URL + "/api/workspaces/client_001")
	require.NoError(t, err)
	defer func() { _ = wsResp.Body.Close() }()
	wsBody, _ := io.ReadAll(wsResp.Body)
	assert.Contains(t, string(wsBody), `"exists":true`)
	assert.Contains(t, string(wsBody), "Project for client_001")

	clientResp, err := http.Get(ts.URL + "/api/clients/client_001")
	require.NoError(t, err)
	defer func() { _ = clientResp.Body.Close() }()
	require.Equal(t, http.StatusOK, clientResp.StatusCode)
	var rec client.Client
	require.NoError(t, json.NewDecoder(clientResp.Body).Decode(&rec))
	assert.Equal(t, 1, rec.Orders)
	assert.Equal(t, result.Invoice.InvoiceID, rec.LastInvoiceID)
	assert.Equal(t, want, rec.Workspace)

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = metricsResp.Body.Close() }()
	metricsBody, _ := io.ReadAll(metricsResp.Body)
	assert.Contains(t, string(metricsBody), `webforge_order_outcomes_total{outcome="completed"} 1`)
	assert.Contains(t, string(metricsBody), `webforge_http_requests_total{code="201",route="POST /api/orders"} 1`)
}

func TestServer_RejectsNegativeBudget(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/orders", "application/json", strings.NewReader(`{"client_id":"c","budget":-1}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Healthz(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
