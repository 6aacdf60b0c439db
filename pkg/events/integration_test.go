package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/database"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/services"
	testdb "github.com/axisworks/axis/test/database"
	"github.com/axisworks/axis/test/util"
)

// broadcastTestEnv wires real components against a real PostgreSQL database
// (testcontainers locally, service container in CI).
type broadcastTestEnv struct {
	dbClient     *database.Client
	publisher    *Publisher
	eventService *services.EventService
	hub          *Hub
	listener     *NotifyListener
	server       *httptest.Server
}

func setupBroadcastTest(t *testing.T) *broadcastTestEnv {
	t.Helper()

	dbClient := testdb.NewTestClient(t)
	ctx := context.Background()

	publisher := NewPublisher(dbClient.DB(), nil)
	eventService := services.NewEventService(dbClient.Client)
	hub := NewHub(NewEventServiceAdapter(eventService), testGatewayConfig(), nil)

	// The listener needs the base connection string (no schema search_path)
	// because NOTIFY/LISTEN is database-level, not schema-level.
	baseConnStr := util.GetBaseConnectionString(t)
	listener := NewNotifyListener(baseConnStr, []string{JobsChannel}, hub.Broadcast)
	require.NoError(t, listener.Start(ctx))
	t.Cleanup(func() { listener.Stop(context.Background()) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			t.Logf("WebSocket accept error: %v", err)
			return
		}
		hub.HandleConnection(r.Context(), conn, nil)
	}))
	t.Cleanup(func() { server.Close() })

	return &broadcastTestEnv{
		dbClient:     dbClient,
		publisher:    publisher,
		eventService: eventService,
		hub:          hub,
		listener:     listener,
		server:       server,
	}
}

func (env *broadcastTestEnv) connectWS(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + env.server.URL[len("http"):]
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	msg := readJSON(t, conn)
	require.Equal(t, "connected", msg["type"])
	return conn
}

// readUntilJob skims frames until one for the given job arrives. The NOTIFY
// channel is database-level, so a socket may see events published by tests
// running against other schemas in the same container.
func readUntilJob(t *testing.T, conn *websocket.Conn, jobID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Until(deadline))
		_, data, err := conn.Read(ctx)
		cancel()
		require.NoError(t, err)

		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["jobId"] == jobID {
			return msg
		}
	}
	t.Fatalf("no event for job %s arrived in time", jobID)
	return nil
}

func TestIntegration_PublisherPersistsAndNotifies(t *testing.T) {
	env := setupBroadcastTest(t)
	ctx := context.Background()
	jobID := uuid.New().String()

	require.NoError(t, env.publisher.PublishStatus(ctx, jobID, job.StatusPlanning))
	require.NoError(t, env.publisher.PublishStatus(ctx, jobID, job.StatusValidating))

	events, err := env.eventService.ListEventsAfter(ctx, JobsChannel, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, JobsChannel, events[0].Channel)
	assert.Equal(t, EventTypeStatus, events[0].Payload["type"])
	assert.Equal(t, jobID, events[0].Payload["jobId"])
	assert.Equal(t, "planning", events[0].Payload["status"])
	assert.Equal(t, "validating", events[1].Payload["status"])

	// IDs increment with publish order.
	assert.Greater(t, events[1].ID, events[0].ID)

	// The journal row does not carry eventId; that is injected into the
	// NOTIFY payload only.
	assert.NotContains(t, events[0].Payload, "eventId")
}

func TestIntegration_PublishToWebSocket(t *testing.T) {
	env := setupBroadcastTest(t)
	ctx := context.Background()
	conn := env.connectWS(t)

	jobID := uuid.New().String()
	require.NoError(t, env.publisher.PublishStatus(ctx, jobID, job.StatusExecuting))

	msg := readUntilJob(t, conn, jobID)
	assert.Equal(t, EventTypeStatus, msg["type"])
	assert.Equal(t, "executing", msg["status"])
	assert.NotNil(t, msg["eventId"], "NOTIFY payload must carry the journal row id")
}

func TestIntegration_ResultEventDelivery(t *testing.T) {
	env := setupBroadcastTest(t)
	ctx := context.Background()
	conn := env.connectWS(t)

	jobID := uuid.New().String()
	result := &models.JobResult{
		Text: "disk usage normal",
		Steps: []models.StepOutcome{
			{StepID: "s1", Gear: "shell", Action: "run", OK: true},
		},
	}
	require.NoError(t, env.publisher.PublishResult(ctx, jobID, result))

	msg := readUntilJob(t, conn, jobID)
	assert.Equal(t, EventTypeResult, msg["type"])
	resultMap, ok := msg["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "disk usage normal", resultMap["text"])
}

func TestIntegration_ApprovalRequiredCarriesStrippedPlan(t *testing.T) {
	env := setupBroadcastTest(t)
	ctx := context.Background()
	conn := env.connectWS(t)

	jobID := uuid.New().String()
	plan := &models.ExecutionPlan{
		ID:    uuid.New().String(),
		JobID: jobID,
		Steps: []models.PlanStep{
			{
				ID:          "s1",
				Gear:        "shell",
				Action:      "run",
				Parameters:  map[string]any{"cmd": "rm -rf /tmp/cache"},
				RiskLevel:   models.RiskHigh,
				Description: "clear the cache directory",
			},
		},
		Reasoning: "cache cleanup requested",
	}
	require.NoError(t, env.publisher.PublishApprovalRequired(ctx, jobID, plan, "nonce-abc"))

	msg := readUntilJob(t, conn, jobID)
	assert.Equal(t, EventTypeApprovalRequired, msg["type"])
	assert.Equal(t, "high", msg["overallRisk"])

	metadata, ok := msg["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "nonce-abc", metadata["nonce"])

	risks, ok := msg["risks"].([]any)
	require.True(t, ok)
	require.Len(t, risks, 1)
	risk := risks[0].(map[string]any)
	assert.Equal(t, "shell", risk["gear"])
	assert.Equal(t, "high", risk["risk"])
}

func TestIntegration_OversizedPayloadTruncatedOnWireOnly(t *testing.T) {
	env := setupBroadcastTest(t)
	ctx := context.Background()
	conn := env.connectWS(t)

	jobID := uuid.New().String()
	huge := &models.JobResult{Text: strings.Repeat("a", 9000)}
	require.NoError(t, env.publisher.PublishResult(ctx, jobID, huge))

	// The wire frame is the truncation envelope.
	msg := readUntilJob(t, conn, jobID)
	assert.Equal(t, EventTypeResult, msg["type"])
	assert.Equal(t, true, msg["truncated"])
	assert.NotNil(t, msg["eventId"])
	assert.NotContains(t, msg, "result")

	// The journal row holds the full payload for catch-up.
	events, err := env.eventService.ListEventsAfter(ctx, JobsChannel, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	resultMap, ok := events[0].Payload["result"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, resultMap["text"], 9000)
}

func TestIntegration_CatchupFromJournal(t *testing.T) {
	env := setupBroadcastTest(t)
	ctx := context.Background()

	// Publish three events before any client connects.
	jobID := uuid.New().String()
	require.NoError(t, env.publisher.PublishStatus(ctx, jobID, job.StatusPlanning))
	require.NoError(t, env.publisher.PublishStatus(ctx, jobID, job.StatusValidating))
	require.NoError(t, env.publisher.PublishStatus(ctx, jobID, job.StatusExecuting))

	events, err := env.eventService.ListEventsAfter(ctx, JobsChannel, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 3)
	firstID := events[0].ID

	// A reconnecting client resuming after the first event should be served
	// the remaining two from the journal.
	adapter := NewEventServiceAdapter(env.eventService)
	catchup, err := adapter.GetCatchupEvents(ctx, JobsChannel, firstID, catchupLimit)
	require.NoError(t, err)
	require.Len(t, catchup, 2)
	assert.Equal(t, "validating", catchup[0].Payload["status"])
	assert.Equal(t, "executing", catchup[1].Payload["status"])
}

func TestIntegration_ListenerReportsHealthy(t *testing.T) {
	env := setupBroadcastTest(t)
	assert.True(t, env.listener.Healthy())

	env.listener.Stop(context.Background())
	assert.False(t, env.listener.Healthy())
}

func TestIntegration_QueueTransitionFansOutToWebSocket(t *testing.T) {
	// Full path: a queue status listener publishes, NOTIFY fans out, the
	// WebSocket client sees the status frame.
	env := setupBroadcastTest(t)
	conn := env.connectWS(t)

	jobID := uuid.New().String()
	row := &ent.Job{ID: jobID, Status: job.StatusCompleted, Result: map[string]any{"text": "done", "steps": []any{}}}
	env.publisher.OnJobTransition(jobID, job.StatusExecuting, job.StatusCompleted, row)

	// OnJobTransition emits status first, then the result event.
	statusMsg := readUntilJob(t, conn, jobID)
	assert.Equal(t, EventTypeStatus, statusMsg["type"])
	assert.Equal(t, "completed", statusMsg["status"])

	resultMsg := readUntilJob(t, conn, jobID)
	assert.Equal(t, EventTypeResult, resultMsg["type"])
}
