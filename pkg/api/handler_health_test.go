package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t)

	// Liveness is deliberately unauthenticated.
	rec := h.requestNoAuth(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	decodeJSON(t, rec, &body)
	assert.Equal(t, healthStatusHealthy, body.Status)
	assert.Equal(t, healthStatusHealthy, body.Checks["database"].Status)
	require.NotNil(t, body.Database)
}

func TestReadyEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := h.requestNoAuth(t, http.MethodGet, "/ready", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body ReadyResponse
	decodeJSON(t, rec, &body)
	assert.True(t, body.Ready)
	assert.Equal(t, healthStatusHealthy, body.Checks["database"].Status)
}
