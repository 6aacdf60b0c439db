package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/database"
	"github.com/axisworks/axis/pkg/events"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/pipeline"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/services"
	testdb "github.com/axisworks/axis/test/database"
)

const testAuthToken = "test-gateway-token"

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		Addr:              ":0",
		AuthTokens:        []string{testAuthToken},
		HSTSMaxAgeSeconds: 63072000,
		WSRatePerMinute:   600,
		WSRateBurst:       100,
		WSTokenTTL:        30 * time.Second,
		HeartbeatInterval: time.Minute,
		MissedPongLimit:   2,
	}
}

// apiHarness is a Server on a fresh database schema with no worker pool, so
// tests drive job rows by hand and observe exactly what the handlers did.
type apiHarness struct {
	server    *Server
	dbClient  *database.Client
	jobs      *queue.JobQueue
	convs     *services.ConversationService
	wsTokens  *services.WsTokenService
	approvals *pipeline.ApprovalHub
	hub       *events.Hub
}

func newTestServer(t *testing.T) *apiHarness {
	t.Helper()

	dbClient := testdb.NewTestClient(t)
	jobs := queue.NewJobQueue(dbClient.Client, config.QueueConfig{
		WorkerCount:  1,
		JobTimeout:   time.Minute,
		MaxRetries:   1,
		PollInterval: 50 * time.Millisecond,
	}, nil)
	convs := services.NewConversationService(dbClient.Client)
	wsTokens := services.NewWsTokenService(dbClient.Client)
	approvals := pipeline.NewApprovalHub()
	cfg := testGatewayConfig()
	hub := events.NewHub(nil, cfg, metrics.New())

	return &apiHarness{
		server:    NewServer(cfg, dbClient, jobs, convs, wsTokens, approvals, hub, metrics.New()),
		dbClient:  dbClient,
		jobs:      jobs,
		convs:     convs,
		wsTokens:  wsTokens,
		approvals: approvals,
		hub:       hub,
	}
}

// request performs an authenticated request against the in-process server.
func (h *apiHarness) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newJSONRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+testAuthToken)
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	return rec
}

// requestNoAuth performs a request without credentials.
func (h *apiHarness) requestNoAuth(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, newJSONRequest(t, method, path, body))
	return rec
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out),
		"undecodable body: %s", rec.Body.String())
}

func TestUnknownRouteStillCarriesSecurityHeaders(t *testing.T) {
	h := newTestServer(t)

	rec := h.requestNoAuth(t, http.MethodGet, "/does-not-exist", nil)

	require.NotEqual(t, http.StatusOK, rec.Code)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMetricsEndpointServes(t *testing.T) {
	h := newTestServer(t)

	rec := h.requestNoAuth(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
