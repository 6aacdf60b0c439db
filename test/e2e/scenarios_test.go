package e2e

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
)

// jobStatuses extracts the status announcements for one job, in arrival
// order.
func jobStatuses(ws *WSClient, jobID string) []string {
	var out []string
	for _, ev := range ws.EventsByType("status") {
		if ev.JobID == jobID {
			status, _ := ev.Parsed["status"].(string)
			out = append(out, status)
		}
	}
	return out
}

func TestFastPathReply(t *testing.T) {
	app := NewTestApp(t, WithScriptedLLM(fastReply("4")))
	ws := NewWSClient(t, app, nil)

	jobID, convID := submitMessage(t, app, "what is 2+2?")

	ws.WaitForJobStatus(jobID, "completed", 15*time.Second)
	ev := ws.WaitForJobEvent(jobID, "result", 5*time.Second)
	result, ok := ev.Parsed["result"].(map[string]any)
	require.True(t, ok, "result event carries no result object")
	assert.Equal(t, "4", result["text"])

	// The fast path never validates or executes.
	statuses := jobStatuses(ws, jobID)
	assert.Contains(t, statuses, "planning")
	assert.NotContains(t, statuses, "validating")
	assert.NotContains(t, statuses, "executing")

	row := getJob(t, app, jobID)
	assert.Equal(t, "completed", row["status"])
	assert.EqualValues(t, 0, row["retries"])
	resultMap, _ := row["result"].(map[string]any)
	require.NotNil(t, resultMap)
	assert.Equal(t, "4", resultMap["text"])

	// One planner call, nothing else touched the model.
	assert.Len(t, app.LLM.Calls(), 1)

	// Both sides of the exchange landed in the conversation.
	var msgs struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	getJSON(t, app, "/api/conversations/"+convID+"/messages", 200, &msgs)
	require.Len(t, msgs.Messages, 2)
	roles := []string{msgs.Messages[0].Role, msgs.Messages[1].Role}
	assert.ElementsMatch(t, []string{"user", "assistant"}, roles)
}

func TestFullPathAutoApproved(t *testing.T) {
	var calls atomic.Int32
	app := NewTestApp(t, WithScriptedLLM(fullPlan(
		planStep("s1", "echo", "say", map[string]any{"text": "one"}, "low"),
		planStep("s2", "echo", "say", map[string]any{"text": "two"}, "low"),
	)))
	installBuiltin(t, app, echoGear(), echoBuiltin(&calls))
	ws := NewWSClient(t, app, nil)

	jobID, _ := submitMessage(t, app, "echo one and two")

	ws.WaitForJobStatus(jobID, "completed", 15*time.Second)
	assert.EqualValues(t, 2, calls.Load())

	// Low-risk steps auto-approve: the job walks the full forward path
	// without ever parking.
	statuses := jobStatuses(ws, jobID)
	assert.Equal(t, []string{"queued", "planning", "validating", "executing", "completed"}, statuses)

	ev := ws.WaitForJobEvent(jobID, "result", 5*time.Second)
	result, _ := ev.Parsed["result"].(map[string]any)
	require.NotNil(t, result)
	assert.Equal(t, "Completed 2 steps.\n- echo.say\n- echo.say", result["text"])

	steps, _ := result["steps"].([]any)
	require.Len(t, steps, 2)
	first, _ := steps[0].(map[string]any)
	assert.Equal(t, true, first["ok"])
}

func TestDeferredActionReroute(t *testing.T) {
	t.Run("flagged fast reply replans on the full path", func(t *testing.T) {
		var calls atomic.Int32
		app := NewTestApp(t, WithScriptedLLM(
			fastReply("I've gone ahead and deleted your files."),
			fullPlan(planStep("s1", "echo", "say", map[string]any{"text": "checking first"}, "low")),
		))
		installBuiltin(t, app, echoGear(), echoBuiltin(&calls))
		ws := NewWSClient(t, app, nil)

		jobID, _ := submitMessage(t, app, "delete my files")

		ws.WaitForJobStatus(jobID, "completed", 15*time.Second)

		// Two planner calls: the flagged fast reply, then the forced replan.
		assert.Len(t, app.LLM.Calls(), 2)
		assert.EqualValues(t, 1, calls.Load())

		ev := ws.WaitForJobEvent(jobID, "result", 5*time.Second)
		result, _ := ev.Parsed["result"].(map[string]any)
		require.NotNil(t, result)
		assert.Equal(t, "Completed 1 step.\n- echo.say", result["text"])
	})

	t.Run("second flagged fast reply fails the plan", func(t *testing.T) {
		app := NewTestApp(t,
			WithConfig(func(cfg *config.Config) { cfg.Queue.MaxRetries = 0 }),
			WithScriptedLLM(
				fastReply("I've gone ahead and deleted your files."),
				fastReply("I already removed everything you asked about."),
			),
		)
		ws := NewWSClient(t, app, nil)

		jobID, _ := submitMessage(t, app, "delete my files")

		ws.WaitForJobStatus(jobID, "failed", 15*time.Second)
		ev := ws.WaitForJobEvent(jobID, "error", 5*time.Second)
		assert.Equal(t, models.CodeInvalidPlan, ev.Parsed["code"])

		row := getJob(t, app, jobID)
		errMap, _ := row["error"].(map[string]any)
		require.NotNil(t, errMap)
		assert.Equal(t, models.CodeInvalidPlan, errMap["code"])
	})
}

func TestPlanBudgetExceeded(t *testing.T) {
	var calls atomic.Int32
	app := NewTestApp(t,
		WithConfig(func(cfg *config.Config) { cfg.Pipeline.MaxPlanSteps = 2 }),
		WithScriptedLLM(fullPlan(
			planStep("s1", "echo", "say", map[string]any{"text": "one"}, "low"),
			planStep("s2", "echo", "say", map[string]any{"text": "two"}, "low"),
			planStep("s3", "echo", "say", map[string]any{"text": "three"}, "low"),
		)),
	)
	installBuiltin(t, app, echoGear(), echoBuiltin(&calls))
	ws := NewWSClient(t, app, nil)

	jobID, _ := submitMessage(t, app, "echo three things")

	ws.WaitForJobStatus(jobID, "failed", 15*time.Second)

	ev := ws.WaitForJobEvent(jobID, "error", 5*time.Second)
	assert.Equal(t, models.CodeBudgetExceeded, ev.Parsed["code"])

	// An oversized plan dies in planning: no retry, no validation, nothing
	// ever runs.
	row := getJob(t, app, jobID)
	assert.Equal(t, "failed", row["status"])
	assert.EqualValues(t, 0, row["retries"])
	assert.EqualValues(t, 0, calls.Load())

	statuses := jobStatuses(ws, jobID)
	assert.NotContains(t, statuses, "validating")
	assert.NotContains(t, statuses, "executing")
}

func TestValidatorRejectsProhibitedPlan(t *testing.T) {
	var calls atomic.Int32
	app := NewTestApp(t, WithScriptedLLM(fullPlan(
		planStep("s1", "echo", "say", map[string]any{"text": "impersonate the CEO in an email"}, "low"),
	)))
	installBuiltin(t, app, echoGear(), echoBuiltin(&calls))
	ws := NewWSClient(t, app, nil)

	jobID, _ := submitMessage(t, app, "pretend to be my boss")

	ws.WaitForJobStatus(jobID, "failed", 15*time.Second)

	ev := ws.WaitForJobEvent(jobID, "error", 5*time.Second)
	assert.Equal(t, models.CodePlanRejected, ev.Parsed["code"])

	// Rejection is final: no retry edge, and nothing ever executed.
	row := getJob(t, app, jobID)
	assert.Equal(t, "failed", row["status"])
	assert.EqualValues(t, 0, row["retries"])
	assert.EqualValues(t, 0, calls.Load())

	statuses := jobStatuses(ws, jobID)
	assert.NotContains(t, statuses, "executing")
}
