// Package e2e boots the full runtime (gateway, queue, pipeline, validator,
// sandbox host) against a real PostgreSQL schema and drives it over HTTP and
// WebSocket the way a client would. The only fake is the LLM: every test
// scripts the planner's responses up front.
package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/api"
	"github.com/axisworks/axis/pkg/bus"
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
	"github.com/axisworks/axis/pkg/secrets"
	"github.com/axisworks/axis/pkg/services"
	"github.com/axisworks/axis/pkg/signing"
	"github.com/axisworks/axis/pkg/validator"
	testdb "github.com/axisworks/axis/test/database"
	"github.com/axisworks/axis/test/util"
)

// testAuthToken is the bearer token the harness wires into the gateway.
const testAuthToken = "e2e-test-token"

// TestApp is one fully wired runtime instance. Tests drive it through
// BaseURL/WSURL and reach into the exported components for setup (installing
// gears, registering builtins) and for assertions the HTTP surface does not
// expose (queue depth, sandbox count, raw rows via DB).
type TestApp struct {
	Config    *config.Config
	DB        *database.Client
	Jobs      *queue.JobQueue
	Pool      *queue.Pool
	Convs     *services.ConversationService
	Gears     *gear.Registry
	Host      *sandbox.Host
	Hub       *events.Hub
	Approvals *pipeline.ApprovalHub
	LLM       *llm.ScriptedClient

	Server    *api.Server
	HTTP      *httptest.Server
	BaseURL   string
	WSURL     string
	AuthToken string
	NodeID    string

	t *testing.T
}

// testAppConfig collects the knobs the options mutate before boot.
type testAppConfig struct {
	mutators  []func(*config.Config)
	llm       *llm.ScriptedClient
	dbClient  *database.Client
	listenDSN string
	nodeID    string
}

// TestAppOption customizes a TestApp before it boots.
type TestAppOption func(*testAppConfig)

// WithConfig applies a mutation to the default test configuration. Multiple
// WithConfig options stack in order.
func WithConfig(mutate func(cfg *config.Config)) TestAppOption {
	return func(tc *testAppConfig) {
		tc.mutators = append(tc.mutators, mutate)
	}
}

// WithScriptedLLM seeds the planner with canned responses, consumed in order.
func WithScriptedLLM(responses ...llm.ScriptedResponse) TestAppOption {
	return func(tc *testAppConfig) {
		tc.llm = llm.NewScriptedClient(responses...)
	}
}

// WithLLMClient installs a pre-built scripted client, for tests that share
// one client across several apps or need it before boot.
func WithLLMClient(client *llm.ScriptedClient) TestAppOption {
	return func(tc *testAppConfig) {
		tc.llm = client
	}
}

// WithWorkerCount overrides the worker pool size. Zero is valid: the app
// still runs its watchdog and serves HTTP, it just never claims jobs.
func WithWorkerCount(n int) TestAppOption {
	return func(tc *testAppConfig) {
		tc.mutators = append(tc.mutators, func(cfg *config.Config) {
			cfg.Queue.WorkerCount = n
		})
	}
}

// WithDBClient points the app at an existing database client instead of a
// private per-test schema. baseDSN feeds the dedicated LISTEN connection.
// Used with SharedTestDB to boot several replicas on one schema.
func WithDBClient(client *database.Client, baseDSN string) TestAppOption {
	return func(tc *testAppConfig) {
		tc.dbClient = client
		tc.listenDSN = baseDSN
	}
}

// WithNodeID overrides the node identity used for worker IDs and orphan
// recovery.
func WithNodeID(id string) TestAppOption {
	return func(tc *testAppConfig) {
		tc.nodeID = id
	}
}

// defaultTestConfig is the desktop-tier configuration tightened for tests:
// fast polling, short dispatch timeouts, sandbox and workspace roots under
// the test's temp dir, and the container tier off so nothing shells out to
// docker. JobTimeout stays generous because it bounds the whole job,
// approval waits included; tests that exercise the watchdog shorten it.
func defaultTestConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig(config.TierDesktop)

	cfg.Queue.WorkerCount = 1
	cfg.Queue.JobTimeout = 30 * time.Second
	cfg.Queue.PollInterval = 50 * time.Millisecond
	cfg.Queue.PollIntervalJitter = 25 * time.Millisecond
	cfg.Queue.GracefulShutdownTimeout = 5 * time.Second

	cfg.Pipeline.PlanTimeout = 10 * time.Second
	cfg.Pipeline.ValidateTimeout = 10 * time.Second
	cfg.Pipeline.StepTimeout = 10 * time.Second

	workspace := t.TempDir()
	cfg.Validator.WorkspaceRoot = workspace

	cfg.Sandbox.GearRoot = t.TempDir()
	cfg.Sandbox.WorkspaceRoot = workspace
	cfg.Sandbox.TmpfsRoot = t.TempDir()
	cfg.Sandbox.EnableContainer = false
	cfg.Sandbox.ShutdownGrace = 1 * time.Second
	cfg.Sandbox.DefaultTimeout = 5 * time.Second

	cfg.Gateway.AuthTokens = []string{testAuthToken}

	cfg.Scheduler.Enabled = false
	cfg.LLM.Provider = "scripted"

	return cfg
}

// NewTestApp boots a complete runtime instance and registers a single
// cleanup that tears it down in reverse creation order.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()
	ctx := context.Background()

	tc := &testAppConfig{}
	for _, opt := range opts {
		opt(tc)
	}

	// ── 1. Configuration ──
	cfg := defaultTestConfig(t)
	for _, mutate := range tc.mutators {
		mutate(cfg)
	}

	nodeID := tc.nodeID
	if nodeID == "" {
		nodeID = fmt.Sprintf("e2e-%s", sanitizeNodeID(t.Name()))
	}

	// ── 2. Database ──
	db := tc.dbClient
	listenDSN := tc.listenDSN
	if db == nil {
		db = testdb.NewTestClient(t)
		listenDSN = util.GetBaseConnectionString(t)
	}

	// ── 3. Metrics and audit trail ──
	m := metrics.New()
	audit := services.NewAuditService(db.Client, nil)

	// ── 4. Job queue and startup orphan recovery ──
	jobs := queue.NewJobQueue(db.Client, cfg.Queue, m)
	_, err := jobs.RecoverStartupOrphans(ctx, nodeID)
	require.NoError(t, err)

	// ── 5. Domain services ──
	convs := services.NewConversationService(db.Client)
	wsTokens := services.NewWsTokenService(db.Client)
	eventService := services.NewEventService(db.Client)
	approvalStore := services.NewApprovalStore(db.Client)

	// ── 6. Event fanout ──
	publisher := events.NewPublisher(db.DB(), m)
	hub := events.NewHub(events.NewEventServiceAdapter(eventService), cfg.Gateway, m)
	listener := events.NewNotifyListener(listenDSN, []string{events.JobsChannel}, hub.Broadcast)
	require.NoError(t, listener.Start(ctx))
	jobs.OnStatusChange(publisher.OnJobTransition)

	// ── 7. Vault and signing identities ──
	if os.Getenv(cfg.Secrets.MasterKeyEnv) == "" {
		key, err := secrets.NewMasterKey()
		require.NoError(t, err)
		t.Setenv(cfg.Secrets.MasterKeyEnv, key)
	}
	vault, err := secrets.NewVault(db.Client, cfg.Secrets)
	require.NoError(t, err)

	keyring := signing.NewKeyring()
	for _, component := range []string{
		bus.ComponentPipeline,
		bus.ComponentScout,
		bus.ComponentSentinel,
		bus.ComponentGearRuntime,
	} {
		require.NoError(t, keyring.Generate(component))
	}
	signer := signing.NewService(keyring, cfg.Router.ReplayWindow)

	// ── 8. Bus, gear registry, sandbox host, scout, sentinel ──
	registry := bus.NewRegistry()
	router := bus.NewRouter(registry, cfg.Router, signer, audit, m)

	gears := gear.NewRegistry(db.Client, cfg.Sandbox, audit)
	require.NoError(t, gears.Load(ctx))

	host := sandbox.NewHost(cfg.Sandbox, gears, vault, audit, m)
	require.NoError(t, host.Register(registry))

	scripted := tc.llm
	if scripted == nil {
		scripted = llm.NewScriptedClient()
	}

	scout := planner.New(scripted, gears)
	require.NoError(t, scout.Register(registry))

	sentinel, err := validator.New(cfg.Validator, scripted, gears,
		validator.NewApprovalStoreAdapter(approvalStore), audit, m)
	require.NoError(t, err)
	require.NoError(t, sentinel.Register(registry))

	// ── 9. Pipeline orchestrator and worker pool ──
	approvals := pipeline.NewApprovalHub()
	orch := pipeline.New(cfg.Pipeline, jobs, router, convs, publisher, approvals, audit)

	pool := queue.NewPool(nodeID, jobs, cfg.Queue, orch, m)
	require.NoError(t, pool.Start(ctx))

	// ── 10. HTTP gateway on an ephemeral port ──
	server := api.NewServer(cfg.Gateway, db, jobs, convs, wsTokens, approvals, hub, m)
	server.SetPool(pool)
	server.SetListener(listener)
	server.SetAudit(audit)

	ts := httptest.NewServer(server)

	app := &TestApp{
		Config:    cfg,
		DB:        db,
		Jobs:      jobs,
		Pool:      pool,
		Convs:     convs,
		Gears:     gears,
		Host:      host,
		Hub:       hub,
		Approvals: approvals,
		LLM:       scripted,
		Server:    server,
		HTTP:      ts,
		BaseURL:   ts.URL,
		WSURL:     "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
		AuthToken: testAuthToken,
		NodeID:    nodeID,
		t:         t,
	}

	t.Cleanup(func() {
		ts.Close()
		pool.Stop()
		host.Shutdown(context.Background())
		listener.Stop(context.Background())
		audit.Stop()
	})

	return app
}

// sanitizeNodeID maps a test name onto the charset worker IDs use.
func sanitizeNodeID(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
}
