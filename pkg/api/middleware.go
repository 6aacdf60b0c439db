package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/scrub"
	"github.com/axisworks/axis/pkg/services"
)

// scrubBufferLimit caps how much of a response body gets buffered for
// scrubbing. Larger bodies stream through untouched.
const scrubBufferLimit = 1 << 20

// securityHeaders returns middleware that sets standard security response
// headers on every response. HSTS is included only when the gateway itself
// terminates TLS.
func securityHeaders(cfg config.GatewayConfig) echo.MiddlewareFunc {
	hsts := ""
	if cfg.TLSEnabled() && cfg.HSTSMaxAgeSeconds > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAgeSeconds)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			return next(c)
		}
	}
}

// scrubResponses buffers JSON and text response bodies and redacts credential
// material before it reaches the wire. Prompt-leak markers are logged and
// audited but leave the body untouched. Must not be mounted on routes that
// hijack the connection; buffering breaks the WebSocket upgrade.
func scrubResponses(sc *scrub.Scrubber, audit *services.AuditService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			res := c.Response()
			w := &scrubWriter{inner: res}
			c.SetResponse(w)

			err := next(c)

			c.SetResponse(res)
			w.finish(c, sc, audit)
			return err
		}
	}
}

// scrubWriter holds back the response until the handler finishes, so the
// whole body can be scanned at once. Non-text content types and bodies over
// the buffer limit switch to passthrough.
type scrubWriter struct {
	inner       http.ResponseWriter
	status      int
	buf         bytes.Buffer
	started     bool
	passthrough bool
}

func (w *scrubWriter) Header() http.Header {
	return w.inner.Header()
}

func (w *scrubWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *scrubWriter) Write(b []byte) (int, error) {
	if !w.started {
		w.started = true
		if !scrubbableContentType(w.inner.Header().Get("Content-Type")) {
			w.beginPassthrough()
		}
	}
	if w.passthrough {
		return w.inner.Write(b)
	}
	if w.buf.Len()+len(b) > scrubBufferLimit {
		w.beginPassthrough()
		return w.inner.Write(b)
	}
	return w.buf.Write(b)
}

func (w *scrubWriter) Flush() {
	if w.passthrough {
		if f, ok := w.inner.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// beginPassthrough releases the captured status and any buffered bytes
// unmodified; subsequent writes stream straight through.
func (w *scrubWriter) beginPassthrough() {
	w.passthrough = true
	if w.status != 0 {
		w.inner.WriteHeader(w.status)
	}
	if w.buf.Len() > 0 {
		_, _ = w.inner.Write(w.buf.Bytes())
		w.buf.Reset()
	}
}

// finish scrubs the buffered body and sends it. A writer that saw no output
// stays silent so error responses written later are unaffected.
func (w *scrubWriter) finish(c *echo.Context, sc *scrub.Scrubber, audit *services.AuditService) {
	if w.passthrough {
		return
	}
	if w.status == 0 && w.buf.Len() == 0 {
		return
	}

	body := w.buf.String()
	clean, classes := sc.Redact(body)
	if len(classes) > 0 {
		slog.Warn("Redacted credential material from response",
			"path", c.Request().URL.Path, "classes", classes)
	}
	if markers := sc.DetectLeaks(body); len(markers) > 0 {
		slog.Warn("Prompt leak markers detected in response",
			"path", c.Request().URL.Path, "markers", markers)
		if audit != nil {
			audit.Record(c.Request().Context(), models.AuditRecord{
				Actor:     "gateway",
				Action:    "response.leak_detected",
				RiskLevel: models.RiskHigh,
				Target:    c.Request().URL.Path,
				Details:   map[string]any{"markers": markers},
			})
		}
	}

	w.inner.Header().Set("Content-Length", strconv.Itoa(len(clean)))
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	w.inner.WriteHeader(status)
	if _, err := w.inner.Write([]byte(clean)); err != nil {
		slog.Debug("Failed to write scrubbed response", "error", err)
	}
}

func scrubbableContentType(ct string) bool {
	// An empty content type means the handler let net/http sniff it; our
	// JSON handlers always set it, so treat empty as scrubbable text.
	if ct == "" {
		return true
	}
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "application/json") || strings.HasPrefix(ct, "text/")
}
