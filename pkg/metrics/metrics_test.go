package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("instances are independent", func(t *testing.T) {
		a := New()
		b := New()

		a.JobsEnqueued.WithLabelValues("user").Inc()

		assert.Equal(t, 1.0, testutil.ToFloat64(a.JobsEnqueued.WithLabelValues("user")))
		assert.Equal(t, 0.0, testutil.ToFloat64(b.JobsEnqueued.WithLabelValues("user")))
	})

	t.Run("handler exposes recorded series", func(t *testing.T) {
		m := New()
		m.JobTransitions.WithLabelValues("queued", "planning").Inc()
		m.WSConnections.Set(3)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/metrics", nil)
		m.Handler().ServeHTTP(rec, req)

		require.Equal(t, 200, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `axis_queue_job_transitions_total{from="queued",to="planning"} 1`)
		assert.Contains(t, body, "axis_gateway_ws_connections 3")
		assert.Contains(t, body, "go_goroutines")
	})
}
