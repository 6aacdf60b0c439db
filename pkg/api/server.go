// Package api is the HTTP gateway: the only ingress into the runtime.
// It accepts user messages, exposes job status and the approval endpoint,
// mints one-time WebSocket tokens, and upgrades /ws connections into the
// events hub. Everything else in the system is reached through the queue
// and the message bus, never through HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/database"
	"github.com/axisworks/axis/pkg/events"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/pipeline"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/scrub"
	"github.com/axisworks/axis/pkg/services"
)

// readHeaderTimeout bounds how long a client may dribble request headers.
const readHeaderTimeout = 10 * time.Second

// Server is the HTTP API server.
type Server struct {
	cfg  config.GatewayConfig
	echo *echo.Echo
	http *http.Server

	dbClient  *database.Client
	jobs      *queue.JobQueue
	convs     *services.ConversationService
	wsTokens  *services.WsTokenService
	approvals *pipeline.ApprovalHub
	hub       *events.Hub
	metrics   *metrics.Metrics
	scrubber  *scrub.Scrubber

	// Optional collaborators, wired via setters after construction.
	pool     *queue.Pool
	listener *events.NotifyListener
	audit    *services.AuditService
}

// NewServer creates the API server and registers all routes.
func NewServer(
	cfg config.GatewayConfig,
	dbClient *database.Client,
	jobs *queue.JobQueue,
	convs *services.ConversationService,
	wsTokens *services.WsTokenService,
	approvals *pipeline.ApprovalHub,
	hub *events.Hub,
	m *metrics.Metrics,
) *Server {
	s := &Server{
		cfg:       cfg,
		echo:      echo.New(),
		dbClient:  dbClient,
		jobs:      jobs,
		convs:     convs,
		wsTokens:  wsTokens,
		approvals: approvals,
		hub:       hub,
		metrics:   m,
		scrubber:  scrub.New(),
	}
	s.registerRoutes()
	s.http = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// SetPool wires the worker pool, used for readiness checks and for relaying
// cancellation to a claiming worker.
func (s *Server) SetPool(p *queue.Pool) {
	s.pool = p
}

// SetListener wires the NOTIFY listener, used for readiness checks.
func (s *Server) SetListener(l *events.NotifyListener) {
	s.listener = l
}

// SetAudit wires the audit trail. Approval decisions, cancellations, and
// detected prompt leaks are recorded when present.
func (s *Server) SetAudit(a *services.AuditService) {
	s.audit = a
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.Use(securityHeaders(s.cfg))

	// Unauthenticated surface: probes, metrics, and the WebSocket upgrade
	// (which authenticates itself with a one-time token in the first frame).
	e.GET("/health", s.healthHandler)
	e.GET("/ready", s.readyHandler)
	e.GET("/metrics", func(c *echo.Context) error {
		s.metrics.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})
	e.GET("/ws", s.wsHandler)

	// Everything under /api requires a bearer token, and every response body
	// passes through the scrubber before it reaches the wire.
	api := e.Group("/api")
	api.Use(s.requireAuth())
	api.Use(scrubResponses(s.scrubber, s.audit))
	api.POST("/messages", s.createMessageHandler)
	api.GET("/conversations/:id/messages", s.listMessagesHandler)
	api.GET("/jobs/:id", s.getJobHandler)
	api.POST("/jobs/:id/approve", s.approveJobHandler)
	api.POST("/jobs/:id/cancel", s.cancelJobHandler)
	api.POST("/ws/token", s.wsTokenHandler)
}

// ServeHTTP makes the server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start begins serving on addr. Blocks until the listener fails or Shutdown
// is called, matching http.Server semantics (http.ErrServerClosed on clean
// shutdown). TLS is terminated here when both cert and key are configured.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	if s.cfg.TLSEnabled() {
		return s.http.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	}
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
