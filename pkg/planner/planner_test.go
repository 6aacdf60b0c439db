package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
)

// staticCatalog serves a fixed manifest set, or an error.
type staticCatalog struct {
	manifests []*models.GearManifest
	err       error
}

func (c *staticCatalog) EnabledManifests(context.Context) ([]*models.GearManifest, error) {
	return c.manifests, c.err
}

func planRequestMessage(t *testing.T, req bus.PlanRequest) *bus.Message {
	t.Helper()
	payload, err := bus.EncodePayload(req)
	require.NoError(t, err)

	msg := bus.NewMessage(bus.ComponentPipeline, bus.ComponentScout, bus.TypePlanRequest)
	msg.JobID = req.JobID
	msg.Payload = payload
	return msg
}

func decodePlanResponse(t *testing.T, msg *bus.Message) *bus.PlanResponse {
	t.Helper()
	require.Equal(t, bus.TypePlanResponse, msg.Type)

	var resp bus.PlanResponse
	require.NoError(t, bus.DecodePayload(msg.Payload, &resp))
	return &resp
}

func TestPlannerFastPath(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: `{"path":"fast","text":"2+2 is 4"}`},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "what is 2+2?", JobID: "job-1"})

	reply, err := p.Handle(context.Background(), msg)
	require.NoError(t, err)

	resp := decodePlanResponse(t, reply)
	assert.Equal(t, bus.PathFast, resp.Path)
	assert.Equal(t, "2+2 is 4", resp.Text)
	assert.Nil(t, resp.Plan)
	assert.Equal(t, msg.CorrelationID, reply.CorrelationID)
}

func TestPlannerFullPath(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: "```json\n" + `{"path":"full","plan":{"steps":[
			{"id":"list","gear":"file-manager","action":"list_files","parameters":{"path":"."},"riskLevel":"low"}
		]}}` + "\n```"},
	)
	catalog := &staticCatalog{manifests: []*models.GearManifest{fileManagerManifest()}}
	p := New(client, catalog)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "list files", JobID: "job-2"})

	reply, err := p.Handle(context.Background(), msg)
	require.NoError(t, err)

	resp := decodePlanResponse(t, reply)
	assert.Equal(t, bus.PathFull, resp.Path)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, "job-2", resp.Plan.JobID)
	require.Len(t, resp.Plan.Steps, 1)
	assert.Equal(t, "file-manager", resp.Plan.Steps[0].Gear)

	// The catalog went into the system prompt.
	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "file-manager")
	assert.Contains(t, calls[0].System, "`list_files`")
}

func TestPlannerForceFullPathInstruction(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: `{"path":"full","plan":{"steps":[{"id":"s1","gear":"g","action":"a","riskLevel":"low"}]}}`},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{
		UserMessage:   "delete old logs",
		JobID:         "job-3",
		ForceFullPath: true,
	})

	_, err := p.Handle(context.Background(), msg)
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "fast path is disabled")
}

func TestPlannerFormatRetryRecovers(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: "Sure, here is my answer without any JSON."},
		llm.ScriptedResponse{Text: `{"path":"fast","text":"recovered"}`},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "hello", JobID: "job-4"})

	reply, err := p.Handle(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "recovered", decodePlanResponse(t, reply).Text)

	calls := client.Calls()
	require.Len(t, calls, 2)

	// The correction turn carries the failed reply and the reminder.
	second := calls[1].Messages
	require.GreaterOrEqual(t, len(second), 3)
	assert.Equal(t, llm.RoleAssistant, second[len(second)-2].Role)
	assert.Contains(t, second[len(second)-1].Content, "could not be used")
}

func TestPlannerGarbageExhaustsRetries(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: "no json here"},
		llm.ScriptedResponse{Text: "still no json"},
		llm.ScriptedResponse{Text: "none at all"},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "hello", JobID: "job-5"})

	_, err := p.Handle(context.Background(), msg)
	require.Error(t, err)

	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeScoutError, ae.Code)
	assert.False(t, ae.Retriable)
	assert.Equal(t, 0, client.Remaining(), "initial call plus both corrections were spent")
}

func TestPlannerInvalidPlanAfterRetries(t *testing.T) {
	empty := llm.ScriptedResponse{Text: `{"path":"full","plan":{"steps":[]}}`}
	client := llm.NewScriptedClient(empty, empty, empty)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "do the thing", JobID: "job-6"})

	_, err := p.Handle(context.Background(), msg)
	require.Error(t, err)

	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeInvalidPlan, ae.Code)
	assert.True(t, ae.Retriable)
}

func TestPlannerProviderUnavailable(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Err: llm.ErrUnavailable},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "hello", JobID: "job-7"})

	_, err := p.Handle(context.Background(), msg)
	require.Error(t, err)

	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeScoutUnreachable, ae.Code)
	assert.True(t, ae.Retriable)
}

func TestPlannerCatalogFailure(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: `{"path":"fast","text":"never reached"}`},
	)
	p := New(client, &staticCatalog{err: errors.New("database gone")})
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "hello", JobID: "job-8"})

	_, err := p.Handle(context.Background(), msg)
	require.Error(t, err)

	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeScoutUnreachable, ae.Code)
	assert.Equal(t, 1, client.Remaining(), "no chat call is made without a catalog")
}

func TestPlannerRejectsBadRequests(t *testing.T) {
	client := llm.NewScriptedClient()
	p := New(client, nil)

	t.Run("empty user message", func(t *testing.T) {
		msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "   ", JobID: "job-9"})

		_, err := p.Handle(context.Background(), msg)
		ae := models.AsAgentError(err)
		require.NotNil(t, ae)
		assert.Equal(t, models.CodeValidation, ae.Code)
	})

	t.Run("payload that is not a plan request", func(t *testing.T) {
		msg := bus.NewMessage(bus.ComponentPipeline, bus.ComponentScout, bus.TypePlanRequest)
		msg.Payload = map[string]any{"userMessage": map[string]any{"nested": true}}

		_, err := p.Handle(context.Background(), msg)
		ae := models.AsAgentError(err)
		require.NotNil(t, ae)
		assert.Equal(t, models.CodeValidation, ae.Code)
	})
}

func TestPlannerCancelledContextPassesThrough(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Err: context.Canceled},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{UserMessage: "hello", JobID: "job-10"})

	_, err := p.Handle(context.Background(), msg)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, models.AsAgentError(err), "context errors are left for the router to classify")
}

func TestPlannerRegister(t *testing.T) {
	reg := bus.NewRegistry()
	p := New(llm.NewScriptedClient(), nil)

	require.NoError(t, p.Register(reg))
	assert.True(t, reg.Has(bus.ComponentScout))
}

func TestPlannerHistoryRidesAlong(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: `{"path":"fast","text":"72F"}`},
	)
	p := New(client, nil)
	msg := planRequestMessage(t, bus.PlanRequest{
		UserMessage:    "and in fahrenheit?",
		JobID:          "job-11",
		ConversationID: "conv-1",
		ConversationHistory: []models.ConversationMessage{
			{Role: models.RoleUser, Content: "what is the temperature?"},
			{Role: models.RoleAssistant, Content: "22C"},
		},
	})

	_, err := p.Handle(context.Background(), msg)
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 3)
	assert.Equal(t, "what is the temperature?", calls[0].Messages[0].Content)
	assert.Equal(t, "and in fahrenheit?", calls[0].Messages[2].Content)
}
