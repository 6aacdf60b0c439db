package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/pkg/database"
	"github.com/axisworks/axis/pkg/version"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// healthCheckTimeout bounds the database probe inside health handlers.
const healthCheckTimeout = 5 * time.Second

// healthHandler handles GET /health. Liveness only: checks the runtime's own
// components (database, worker pool), never the LLM provider or gears, so an
// upstream outage cannot make the orchestrator restart the process.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := healthStatusHealthy

	dbHealth, err := database.Health(reqCtx, s.dbClient.DB())
	if err != nil {
		status = healthStatusUnhealthy
		checks["database"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
	} else {
		checks["database"] = HealthCheck{Status: healthStatusHealthy}
	}

	resp := &HealthResponse{Version: version.GitCommit, Database: dbHealth}
	if s.pool != nil {
		poolHealth := s.pool.Health()
		resp.WorkerPool = poolHealth
		if poolHealth != nil && !poolHealth.IsHealthy {
			if status == healthStatusHealthy {
				status = healthStatusDegraded
			}
			msg := healthStatusUnhealthy
			if poolHealth.DBError != "" {
				msg = poolHealth.DBError
			}
			checks["worker_pool"] = HealthCheck{Status: healthStatusDegraded, Message: msg}
		} else {
			checks["worker_pool"] = HealthCheck{Status: healthStatusHealthy}
		}
	}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	resp.Status = status
	resp.Checks = checks
	return c.JSON(httpStatus, resp)
}

// readyHandler handles GET /ready. Readiness means the process can do useful
// work right now: the database answers, the worker pool is running, and the
// NOTIFY listener holds a live connection. Deployments gate traffic on this.
func (s *Server) readyHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]HealthCheck)
	ready := true

	if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
		ready = false
		checks["database"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
	} else {
		checks["database"] = HealthCheck{Status: healthStatusHealthy}
	}

	if s.pool != nil {
		if h := s.pool.Health(); h == nil || !h.IsHealthy {
			ready = false
			checks["worker_pool"] = HealthCheck{Status: healthStatusUnhealthy}
		} else {
			checks["worker_pool"] = HealthCheck{Status: healthStatusHealthy}
		}
	}

	if s.listener != nil {
		if !s.listener.Healthy() {
			ready = false
			checks["notify_listener"] = HealthCheck{Status: healthStatusUnhealthy,
				Message: "no live LISTEN connection"}
		} else {
			checks["notify_listener"] = HealthCheck{Status: healthStatusHealthy}
		}
	}

	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, &ReadyResponse{Ready: ready, Checks: checks})
}
