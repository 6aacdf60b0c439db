package e2e

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
)

func TestWatchdogRecoversDeadWorkerJob(t *testing.T) {
	shared := testdb.NewSharedTestDB(t)

	// Replica A serves HTTP and runs the watchdog but claims nothing. Its
	// short JobTimeout is what marks the ghost's claim stale.
	appA := NewTestApp(t,
		WithDBClient(shared.NewClient(t), shared.BaseConnString()),
		WithWorkerCount(0),
		WithNodeID("node-a"),
		WithConfig(func(cfg *config.Config) { cfg.Queue.JobTimeout = 1 * time.Second }),
	)
	ws := NewWSClient(t, appA, nil)

	jobID, _ := submitMessage(t, appA, "summarize my notes")

	// A worker on a node that dies moments later claims the job. No
	// heartbeat will ever refresh it.
	claimed, err := appA.Jobs.Claim(context.Background(), "ghost-worker-1")
	require.NoError(t, err)
	require.Equal(t, jobID, claimed.ID)

	// Replica B joins with a live worker and the scripted plan. Its node id
	// does not match the ghost, so startup recovery leaves the claim to the
	// watchdog.
	NewTestApp(t,
		WithDBClient(shared.NewClient(t), shared.BaseConnString()),
		WithWorkerCount(1),
		WithNodeID("node-b"),
		WithScriptedLLM(fastReply("Here is your summary.")),
	)

	// Watchdog failover, retry re-enqueue, then replica B completes it.
	ws.WaitForJobStatus(jobID, "failed", 30*time.Second)
	errEv := ws.WaitForJobEvent(jobID, "error", 5*time.Second)
	assert.Equal(t, models.CodeWatchdogTimeout, errEv.Parsed["code"])

	ws.WaitForJobStatus(jobID, "completed", 30*time.Second)

	row := getJob(t, appA, jobID)
	assert.Equal(t, "completed", row["status"])
	assert.EqualValues(t, 1, row["retries"])
	resultMap, _ := row["result"].(map[string]any)
	require.NotNil(t, resultMap)
	assert.Equal(t, "Here is your summary.", resultMap["text"])
}

func TestStartupOrphanRecovery(t *testing.T) {
	shared := testdb.NewSharedTestDB(t)

	appA := NewTestApp(t,
		WithDBClient(shared.NewClient(t), shared.BaseConnString()),
		WithWorkerCount(0),
		WithNodeID("node-a"),
	)
	ws := NewWSClient(t, appA, nil)

	jobID, _ := submitMessage(t, appA, "summarize my notes")

	// node-b's worker claimed the job, then node-b crashed.
	_, err := appA.Jobs.Claim(context.Background(), "node-b-worker-1")
	require.NoError(t, err)

	// node-b restarts: its startup pass fails over its own orphan
	// immediately, no watchdog wait involved.
	NewTestApp(t,
		WithDBClient(shared.NewClient(t), shared.BaseConnString()),
		WithWorkerCount(1),
		WithNodeID("node-b"),
		WithScriptedLLM(fastReply("Recovered and done.")),
	)

	ws.WaitForJobStatus(jobID, "completed", 30*time.Second)

	row := getJob(t, appA, jobID)
	assert.Equal(t, "completed", row["status"])
	assert.EqualValues(t, 1, row["retries"])
}

func TestGearTamperingDisablesGear(t *testing.T) {
	var calls atomic.Int32
	app := NewTestApp(t,
		WithConfig(func(cfg *config.Config) { cfg.Queue.MaxRetries = 0 }),
		WithScriptedLLM(fullPlan(
			planStep("s1", "echo", "say", map[string]any{"text": "hello"}, "low"),
		)),
	)
	installBuiltin(t, app, echoGear(), echoBuiltin(&calls))
	ws := NewWSClient(t, app, nil)

	// The entry point changes after install; the pre-spawn integrity gate
	// must catch it before anything runs.
	tamperGearEntry(t, app, "echo")

	jobID, _ := submitMessage(t, app, "echo hello")

	ws.WaitForJobStatus(jobID, "failed", 15*time.Second)
	assert.EqualValues(t, 0, calls.Load())

	errEv := ws.WaitForJobEvent(jobID, "error", 5*time.Second)
	assert.Equal(t, models.CodeChecksumMismatch, errEv.Parsed["code"])

	row := getJob(t, app, jobID)
	errMap, _ := row["error"].(map[string]any)
	require.NotNil(t, errMap)
	assert.Equal(t, models.CodeChecksumMismatch, errMap["code"])

	// The gear is administratively disabled; later calls fail the same way
	// without touching disk.
	inst, ok := app.Gears.Lookup("echo")
	require.True(t, ok)
	assert.False(t, inst.Enabled)
	assert.Equal(t, models.CodeChecksumMismatch, inst.DisabledReason)

	err := app.Gears.VerifyIntegrity(context.Background(), "echo")
	require.Error(t, err)
	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeChecksumMismatch, ae.Code)
}
