package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/pkg/models"
)

// requireAuth checks the Authorization bearer token against the configured
// set. Comparison is constant-time over SHA-256 digests so neither token
// length nor a prefix match leaks through timing. An empty configured set
// rejects everything; the API never runs open.
func (s *Server) requireAuth() echo.MiddlewareFunc {
	// Hash once at setup, not per request.
	accepted := make([][32]byte, len(s.cfg.AuthTokens))
	for i, tok := range s.cfg.AuthTokens {
		accepted[i] = sha256.Sum256([]byte(tok))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if ok && tokenAccepted(token, accepted) {
				return next(c)
			}
			c.Response().Header().Set("WWW-Authenticate", `Bearer realm="axis"`)
			return writeError(c, http.StatusUnauthorized, models.CodeAuth, "missing or invalid bearer token")
		}
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func tokenAccepted(token string, accepted [][32]byte) bool {
	sum := sha256.Sum256([]byte(token))
	// Check every entry unconditionally; bailing out early would leak which
	// slot matched.
	match := 0
	for i := range accepted {
		match |= subtle.ConstantTimeCompare(sum[:], accepted[i][:])
	}
	return match == 1
}

// requestActor resolves who performed an audited action from proxy headers.
// Priority: X-Forwarded-User (oauth2-proxy) > X-Forwarded-Email
// (oauth2-proxy) > X-Remote-User (kube-rbac-proxy) > "api-client".
func requestActor(c *echo.Context) string {
	if user := c.Request().Header.Get("X-Forwarded-User"); user != "" {
		return user
	}
	if email := c.Request().Header.Get("X-Forwarded-Email"); email != "" {
		return email
	}
	if user := c.Request().Header.Get("X-Remote-User"); user != "" {
		return user
	}
	return "api-client"
}
