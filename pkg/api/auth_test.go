package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"standard form", "Bearer abc123", "abc123", true},
		{"lowercase scheme", "bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"scheme without token", "Bearer ", "", false},
		{"bare scheme", "Bearer", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

// newAuthTestEcho builds a bare echo instance with only the auth middleware
// and a probe route, so auth behavior is tested without the database.
func newAuthTestEcho(tokens ...string) *echo.Echo {
	s := &Server{cfg: testGatewayConfig()}
	s.cfg.AuthTokens = tokens
	e := echo.New()
	g := e.Group("/api")
	g.Use(s.requireAuth())
	g.GET("/probe", func(c *echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestRequireAuth(t *testing.T) {
	t.Run("accepts a configured token", func(t *testing.T) {
		e := newAuthTestEcho("tok-one", "tok-two")

		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("Authorization", "Bearer tok-two")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		e := newAuthTestEcho("tok-one")

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/probe", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var body ErrorResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, "ERR_AUTH", body.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		e := newAuthTestEcho("tok-one")

		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("Authorization", "Bearer tok-three")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty configuration rejects everything", func(t *testing.T) {
		e := newAuthTestEcho()

		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestActor(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "prefers forwarded user",
			headers:  map[string]string{"X-Forwarded-User": "alice", "X-Forwarded-Email": "alice@example.com"},
			expected: "alice",
		},
		{
			name:     "falls back to forwarded email",
			headers:  map[string]string{"X-Forwarded-Email": "bob@example.com", "X-Remote-User": "bob"},
			expected: "bob@example.com",
		},
		{
			name:     "falls back to remote user",
			headers:  map[string]string{"X-Remote-User": "carol"},
			expected: "carol",
		},
		{
			name:     "defaults to api-client",
			headers:  nil,
			expected: "api-client",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var actor string
			e.GET("/probe", func(c *echo.Context) error {
				actor = requestActor(c)
				return c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			e.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expected, actor)
		})
	}
}
