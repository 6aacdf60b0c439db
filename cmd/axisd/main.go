// Axis runtime server — hosts the gateway, queue workers, pipeline
// orchestrator, safety validator, and plugin sandbox in one process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/axisworks/axis/pkg/api"
	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/cleanup"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/database"
	"github.com/axisworks/axis/pkg/events"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/pipeline"
	"github.com/axisworks/axis/pkg/planner"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/sandbox"
	"github.com/axisworks/axis/pkg/scheduler"
	"github.com/axisworks/axis/pkg/secrets"
	"github.com/axisworks/axis/pkg/services"
	"github.com/axisworks/axis/pkg/signing"
	"github.com/axisworks/axis/pkg/validator"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolveNodeID determines the node identifier for multi-replica
// coordination. Priority: AXIS_NODE_ID env > HOSTNAME env > "local"
func resolveNodeID() string {
	if id := os.Getenv("AXIS_NODE_ID"); id != "" {
		return id
	}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return hostname
	}
	return "local"
}

// setupLogging installs the process-wide slog handler.
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// applyStoredOverrides layers ConfigOverride rows on top of the file and
// environment configuration. This is the highest-precedence layer and the
// only one that needs the database, so it runs right after connecting.
func applyStoredOverrides(ctx context.Context, cfg *config.Config, dbClient *database.Client) error {
	rows, err := dbClient.ConfigOverride.Query().All(ctx)
	if err != nil {
		return fmt.Errorf("load config overrides: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	overrides := make(map[string]string, len(rows))
	for _, row := range rows {
		overrides[row.Key] = row.Value
	}
	if err := config.ApplyOverrides(cfg, overrides); err != nil {
		return fmt.Errorf("apply config overrides: %w", err)
	}
	if err := config.Revalidate(cfg); err != nil {
		return fmt.Errorf("revalidate config: %w", err)
	}

	slog.Info("Applied stored config overrides", "count", len(rows))
	return nil
}

func main() {
	configPath := flag.String("config",
		getEnv("AXIS_CONFIG", config.DefaultPath),
		"Path to axis.toml")
	flag.Parse()

	// Load .env before anything reads the environment
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	nodeID := resolveNodeID()
	ctx := context.Background()

	// 1. Initialize configuration
	cfg, err := config.Initialize(ctx, *configPath)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging)

	slog.Info("Starting Axis",
		"node_id", nodeID,
		"tier", cfg.Tier,
		"config_file", *configPath)

	// 2. Initialize database (migrations run inside NewClient)
	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load database config", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database client", "error", err)
		}
	}()
	slog.Info("Connected to PostgreSQL database")

	if err := applyStoredOverrides(ctx, cfg, dbClient); err != nil {
		slog.Error("Failed to apply stored config overrides", "error", err)
		os.Exit(1)
	}

	// 3. Metrics and audit trail
	m := metrics.New()
	audit := services.NewAuditService(dbClient.Client, nil)
	defer audit.Stop()

	// 4. Job queue + one-time startup orphan recovery
	jobs := queue.NewJobQueue(dbClient.Client, cfg.Queue, m)
	if recovered, err := jobs.RecoverStartupOrphans(ctx, nodeID); err != nil {
		slog.Error("Startup orphan recovery failed", "error", err)
		// Non-fatal: the watchdog runs the same scan periodically
	} else if recovered > 0 {
		slog.Info("Recovered orphaned jobs from previous run", "count", recovered)
	}

	// 5. Domain services
	convs := services.NewConversationService(dbClient.Client)
	wsTokens := services.NewWsTokenService(dbClient.Client)
	eventService := services.NewEventService(dbClient.Client)
	retention := services.NewRetentionService(dbClient.Client)
	approvalStore := services.NewApprovalStore(dbClient.Client)
	slog.Info("Services initialized")

	// 6. Event fanout: persist-and-NOTIFY publisher, WebSocket hub, and the
	// dedicated LISTEN connection feeding the hub
	publisher := events.NewPublisher(dbClient.DB(), m)
	hub := events.NewHub(events.NewEventServiceAdapter(eventService), cfg.Gateway, m)

	listener := events.NewNotifyListener(dbConfig.DSN(), []string{events.JobsChannel}, hub.Broadcast)
	if err := listener.Start(ctx); err != nil {
		slog.Error("Failed to start NOTIFY listener", "error", err)
		os.Exit(1)
	}
	defer listener.Stop(ctx)

	jobs.OnStatusChange(publisher.OnJobTransition)
	slog.Info("Event fanout initialized")

	// 7. Secrets vault and component signing identities
	vault, err := secrets.NewVault(dbClient.Client, cfg.Secrets)
	if err != nil {
		slog.Error("Failed to open secrets vault", "error", err)
		os.Exit(1)
	}

	keyring := signing.NewKeyring()
	for _, component := range []string{
		bus.ComponentPipeline,
		bus.ComponentScout,
		bus.ComponentSentinel,
		bus.ComponentGearRuntime,
	} {
		if err := keyring.Generate(component); err != nil {
			slog.Error("Failed to generate signing key", "component", component, "error", err)
			os.Exit(1)
		}
	}
	signer := signing.NewService(keyring, cfg.Router.ReplayWindow)

	// 8. Message bus, gear registry, sandbox host, and the LLM-backed
	// scout/sentinel components
	registry := bus.NewRegistry()
	router := bus.NewRouter(registry, cfg.Router, signer, audit, m)

	gears := gear.NewRegistry(dbClient.Client, cfg.Sandbox, audit)
	if err := gears.Load(ctx); err != nil {
		slog.Error("Failed to load gear registry", "error", err)
		os.Exit(1)
	}

	host := sandbox.NewHost(cfg.Sandbox, gears, vault, audit, m)
	if err := host.Register(registry); err != nil {
		slog.Error("Failed to register sandbox host", "error", err)
		os.Exit(1)
	}

	var llmClient llm.Client
	switch cfg.LLM.Provider {
	case "anthropic":
		anthropicClient, err := llm.NewAnthropicClient(cfg.LLM, m)
		if err != nil {
			slog.Error("Failed to initialize LLM client", "provider", cfg.LLM.Provider, "error", err)
			os.Exit(1)
		}
		llmClient = llm.NewBreakerClient(anthropicClient, "anthropic")
	default:
		// "scripted" passes config validation for tests; the server
		// binary has no script to feed it.
		slog.Error("Unsupported LLM provider for the server binary", "provider", cfg.LLM.Provider)
		os.Exit(1)
	}
	slog.Info("LLM client initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	scout := planner.New(llmClient, gears)
	if err := scout.Register(registry); err != nil {
		slog.Error("Failed to register scout", "error", err)
		os.Exit(1)
	}

	sentinel, err := validator.New(cfg.Validator, llmClient, gears,
		validator.NewApprovalStoreAdapter(approvalStore), audit, m)
	if err != nil {
		slog.Error("Failed to initialize validator", "error", err)
		os.Exit(1)
	}
	if err := sentinel.Register(registry); err != nil {
		slog.Error("Failed to register sentinel", "error", err)
		os.Exit(1)
	}
	slog.Info("Components registered", "components", registry.Components())

	// 9. Pipeline orchestrator and worker pool
	approvals := pipeline.NewApprovalHub()
	orch := pipeline.New(cfg.Pipeline, jobs, router, convs, publisher, approvals, audit)

	pool := queue.NewPool(nodeID, jobs, cfg.Queue, orch, m)
	if err := pool.Start(ctx); err != nil {
		slog.Error("Failed to start worker pool", "error", err)
		os.Exit(1)
	}

	// 10. Background loops: scheduler, retention cleanup, integrity scanner
	sched := scheduler.NewService(cfg.Scheduler, dbClient.Client, jobs, convs)
	sched.Start(ctx)

	cleaner := cleanup.NewService(cfg.Retention, retention, approvalStore)
	cleaner.Start(ctx)
	defer cleaner.Stop()

	scanner := services.NewIntegrityScanner(dbClient.DB(), audit, m, nil, cfg.Integrity.Interval)
	scanner.Start(ctx)
	defer scanner.Stop()

	// 11. HTTP gateway
	httpServer := api.NewServer(cfg.Gateway, dbClient, jobs, convs, wsTokens, approvals, hub, m)
	httpServer.SetPool(pool)
	httpServer.SetListener(listener)
	httpServer.SetAudit(audit)

	// 12. Start HTTP server (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Gateway.Addr, "tls", cfg.Gateway.TLSEnabled())
		if err := httpServer.Start(cfg.Gateway.Addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Axis started successfully",
		"node_id", nodeID,
		"workers", cfg.Queue.WorkerCount,
		"signing", cfg.Router.SigningEnabled)

	// 13. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 14. Graceful shutdown: close the front door, stop producers, drain
	// workers, then tear down the sandboxes they were using. The deferred
	// stops handle the listener, audit trail, and database after that.
	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	sched.Stop()

	workerShutdownCtx, workerCancel := context.WithTimeout(ctx, cfg.Queue.GracefulShutdownTimeout)
	defer workerCancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Worker pool stopped gracefully")
	case <-workerShutdownCtx.Done():
		slog.Warn("Shutdown timeout exceeded; unfinished jobs will be watchdog-recovered")
	}

	host.Shutdown(ctx)

	slog.Info("Shutdown complete")
}
