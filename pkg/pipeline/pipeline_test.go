package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/services"
	testdb "github.com/axisworks/axis/test/database"
)

// approvalRecorder captures approval broadcasts for assertions.
type approvalRecorder struct {
	mu    sync.Mutex
	jobID string
	plan  *models.ExecutionPlan
	nonce string
	count int
}

func (r *approvalRecorder) PublishApprovalRequired(_ context.Context, jobID string, plan *models.ExecutionPlan, nonce string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobID, r.plan, r.nonce = jobID, plan, nonce
	r.count++
	return nil
}

func (r *approvalRecorder) snapshot() (string, *models.ExecutionPlan, string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobID, r.plan, r.nonce, r.count
}

type pipelineHarness struct {
	queue    *queue.JobQueue
	registry *bus.Registry
	convs    *services.ConversationService
	hub      *ApprovalHub
	events   *approvalRecorder
	orch     *Orchestrator
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()
	return newPipelineHarnessWithRetries(t, 0)
}

func newPipelineHarnessWithRetries(t *testing.T, maxRetries int) *pipelineHarness {
	t.Helper()
	dbClient := testdb.NewTestClient(t)

	q := queue.NewJobQueue(dbClient.Client, config.QueueConfig{
		WorkerCount:  1,
		JobTimeout:   time.Minute,
		MaxRetries:   maxRetries,
		PollInterval: 50 * time.Millisecond,
	}, nil)

	registry := bus.NewRegistry()
	router := bus.NewRouter(registry, config.RouterConfig{
		DefaultDispatchTimeout: 5 * time.Second,
	}, nil, nil, metrics.New())

	convs := services.NewConversationService(dbClient.Client)
	hub := NewApprovalHub()
	events := &approvalRecorder{}

	orch := New(config.PipelineConfig{
		HistoryWindow:   10,
		MaxPlanSteps:    5,
		PlanTimeout:     5 * time.Second,
		ValidateTimeout: 5 * time.Second,
		StepTimeout:     5 * time.Second,
	}, q, router, convs, events, hub, nil)

	return &pipelineHarness{
		queue:    q,
		registry: registry,
		convs:    convs,
		hub:      hub,
		events:   events,
		orch:     orch,
	}
}

// seedJob creates a conversation with one user message, enqueues a job for
// it, and claims the job the way a worker would.
func (h *pipelineHarness) seedJob(t *testing.T, content string) *ent.Job {
	t.Helper()
	ctx := context.Background()

	conv, err := h.convs.CreateConversation(ctx, "test conversation")
	require.NoError(t, err)

	row, err := h.queue.Enqueue(ctx, models.NewJob{
		ConversationID: conv.ID,
		Source:         models.SourceUser,
	})
	require.NoError(t, err)

	_, err = h.convs.AddMessage(ctx, models.NewMessage{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        content,
		JobID:          row.ID,
	})
	require.NoError(t, err)

	claimed, err := h.queue.Claim(ctx, "test-worker")
	require.NoError(t, err)
	require.Equal(t, row.ID, claimed.ID)
	require.Equal(t, job.StatusPlanning, claimed.Status)
	return claimed
}

func (h *pipelineHarness) scout(t *testing.T, fn func(bus.PlanRequest) (*bus.PlanResponse, error)) {
	t.Helper()
	err := h.registry.Register(bus.ComponentScout, func(_ context.Context, msg *bus.Message) (*bus.Message, error) {
		var req bus.PlanRequest
		if err := bus.DecodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		resp, err := fn(req)
		if err != nil {
			return nil, err
		}
		payload, err := bus.EncodePayload(resp)
		if err != nil {
			return nil, err
		}
		return msg.Reply(bus.TypePlanResponse, payload), nil
	})
	require.NoError(t, err)
}

func (h *pipelineHarness) sentinel(t *testing.T, fn func(bus.ValidateRequest) (*bus.ValidateResponse, error)) {
	t.Helper()
	err := h.registry.Register(bus.ComponentSentinel, func(_ context.Context, msg *bus.Message) (*bus.Message, error) {
		var req bus.ValidateRequest
		if err := bus.DecodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		resp, err := fn(req)
		if err != nil {
			return nil, err
		}
		payload, err := bus.EncodePayload(resp)
		if err != nil {
			return nil, err
		}
		return msg.Reply(bus.TypeValidateResponse, payload), nil
	})
	require.NoError(t, err)
}

func (h *pipelineHarness) gearRuntime(t *testing.T, fn func(bus.ExecuteRequest) (*bus.ExecuteResponse, error)) {
	t.Helper()
	err := h.registry.Register(bus.ComponentGearRuntime, func(_ context.Context, msg *bus.Message) (*bus.Message, error) {
		var req bus.ExecuteRequest
		if err := bus.DecodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		resp, err := fn(req)
		if err != nil {
			return nil, err
		}
		payload, err := bus.EncodePayload(resp)
		if err != nil {
			return nil, err
		}
		return msg.Reply(bus.TypeExecuteResponse, payload), nil
	})
	require.NoError(t, err)
}

func fullPlanResponse(steps ...models.PlanStep) *bus.PlanResponse {
	return &bus.PlanResponse{
		Path: bus.PathFull,
		Plan: &models.ExecutionPlan{
			ID:        uuid.New().String(),
			Steps:     steps,
			Reasoning: "the user asked for it",
		},
	}
}

func verdictResponse(verdict models.Verdict) *bus.ValidateResponse {
	return &bus.ValidateResponse{
		Validation: &models.ValidationResult{
			ID:          uuid.New().String(),
			Verdict:     verdict,
			OverallRisk: models.RiskLow,
			Reasoning:   "scripted verdict",
		},
	}
}

func echoStep(req bus.ExecuteRequest) (*bus.ExecuteResponse, error) {
	return &bus.ExecuteResponse{
		StepID: req.StepID,
		Result: map[string]any{"gear": req.Gear, "action": req.Action},
	}, nil
}

func listStep() models.PlanStep {
	return models.PlanStep{
		ID:         "s1",
		Gear:       "files",
		Action:     "list",
		Parameters: map[string]any{"path": "/notes"},
		RiskLevel:  models.RiskLow,
	}
}

func appendStep() models.PlanStep {
	return models.PlanStep{
		ID:          "s2",
		Gear:        "notes",
		Action:      "append",
		Parameters:  map[string]any{"text": "done"},
		RiskLevel:   models.RiskLow,
		Description: "record the outcome",
	}
}

func decodeResult(t *testing.T, row *ent.Job) models.JobResult {
	t.Helper()
	require.NotNil(t, row.Result, "job row should carry a result")
	var jr models.JobResult
	require.NoError(t, bus.DecodePayload(row.Result, &jr))
	return jr
}

func TestProcessFastPathCompletes(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "What is the capital of France?")
	h.scout(t, func(req bus.PlanRequest) (*bus.PlanResponse, error) {
		return &bus.PlanResponse{Path: bus.PathFast, Text: "The capital of France is Paris."}, nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusCompleted, out.Status)
	assert.Nil(t, out.Error)

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, final.Status)
	assert.Equal(t, "The capital of France is Paris.", decodeResult(t, final).Text)

	history, err := h.convs.RecentHistory(context.Background(), *final.ConversationID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2, "user message plus assistant reply")
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "The capital of France is Paris.", history[1].Content)
	assert.Equal(t, row.ID, history[1].JobID)
}

func TestProcessFastReplyCarriesHistory(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "And its population?")

	var got bus.PlanRequest
	h.scout(t, func(req bus.PlanRequest) (*bus.PlanResponse, error) {
		got = req
		return &bus.PlanResponse{Path: bus.PathFast, Text: "About two million."}, nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusCompleted, out.Status)

	assert.Equal(t, "And its population?", got.UserMessage)
	assert.Equal(t, row.ID, got.JobID)
	assert.False(t, got.ForceFullPath)
	require.NotEmpty(t, got.ConversationHistory, "the seeded user message should ride along")
	assert.Equal(t, "And its population?", got.ConversationHistory[len(got.ConversationHistory)-1].Content)
}

func TestProcessFlaggedFastReplyForcesFullPath(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "Delete my temp files")

	var mu sync.Mutex
	var requests []bus.PlanRequest
	h.scout(t, func(req bus.PlanRequest) (*bus.PlanResponse, error) {
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()
		if !req.ForceFullPath {
			return &bus.PlanResponse{Path: bus.PathFast, Text: "I've gone ahead and deleted your temp files."}, nil
		}
		return fullPlanResponse(listStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return verdictResponse(models.VerdictApproved), nil
	})
	h.gearRuntime(t, echoStep)

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusCompleted, out.Status)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2, "flagged fast reply should trigger exactly one re-plan")
	assert.False(t, requests[0].ForceFullPath)
	assert.True(t, requests[1].ForceFullPath)
}

func TestProcessFastReplyAfterForceFails(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "Delete my temp files")
	h.scout(t, func(req bus.PlanRequest) (*bus.PlanResponse, error) {
		return &bus.PlanResponse{Path: bus.PathFast, Text: "I've already removed them."}, nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeInvalidPlan, out.Error.Code)

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, final.Status, "retry budget of zero keeps the row failed")
	require.NotNil(t, final.JobError)
	assert.Equal(t, models.CodeInvalidPlan, final.JobError["code"])
}

func TestProcessMissingUserMessage(t *testing.T) {
	h := newPipelineHarness(t)
	ctx := context.Background()

	conv, err := h.convs.CreateConversation(ctx, "empty")
	require.NoError(t, err)
	_, err = h.queue.Enqueue(ctx, models.NewJob{ConversationID: conv.ID, Source: models.SourceUser})
	require.NoError(t, err)
	row, err := h.queue.Claim(ctx, "test-worker")
	require.NoError(t, err)

	out := h.orch.Process(ctx, row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeValidation, out.Error.Code)
	assert.False(t, out.Error.Retriable, "a job with no input can never succeed")
}

func TestProcessPlannerUnreachable(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "hello")
	// No scout registered: dispatch yields ERR_NOT_FOUND.

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeScoutUnreachable, out.Error.Code)
	assert.True(t, out.Error.Retriable)
}

func TestProcessFullPathWithoutPlan(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "do something")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return &bus.PlanResponse{Path: bus.PathFull}, nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeInvalidPlan, out.Error.Code)
}

func TestProcessPlanOverStepBudget(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "do everything at once")

	steps := make([]models.PlanStep, 6)
	for i := range steps {
		steps[i] = models.PlanStep{ID: uuid.New().String(), Gear: "files", Action: "list", RiskLevel: models.RiskLow}
	}
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(steps...), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		t.Error("an oversized plan must never reach the validator")
		return verdictResponse(models.VerdictApproved), nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeBudgetExceeded, out.Error.Code)
	assert.False(t, out.Error.Retriable)
}

func TestProcessValidatorUnreachable(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "tidy my notes")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(listStep()), nil
	})
	// No sentinel registered.

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeSentinelUnreachable, out.Error.Code)
	assert.True(t, out.Error.Retriable)

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.Plan, "the plan persists even when validation never ran")
}

func TestProcessUnusableVerdict(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "tidy my notes")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(listStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return &bus.ValidateResponse{}, nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeInvalidValidation, out.Error.Code)
}

func TestProcessRejectedPlan(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "wipe the disk")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(listStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return verdictResponse(models.VerdictRejected), nil
	})
	h.gearRuntime(t, func(bus.ExecuteRequest) (*bus.ExecuteResponse, error) {
		t.Error("a rejected plan must never execute")
		return nil, nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodePlanRejected, out.Error.Code)
	assert.False(t, out.Error.Retriable, "rejection is final")

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, final.Status)
	require.NotNil(t, final.Validation, "the verdict lands on the row alongside the failure")
	assert.Equal(t, string(models.VerdictRejected), final.Validation["verdict"])
}

func TestProcessNeedsRevisionRequeues(t *testing.T) {
	h := newPipelineHarnessWithRetries(t, 1)
	row := h.seedJob(t, "reorganize my files")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(listStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return verdictResponse(models.VerdictNeedsRevision), nil
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeNeedsRevision, out.Error.Code)
	assert.True(t, out.Error.Retriable)

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, final.Status, "a revisable plan earns another attempt")
	assert.Equal(t, 1, final.Retries)
	require.NotNil(t, final.NotBefore)
	assert.True(t, final.NotBefore.After(time.Now()), "the retry waits out its backoff")
}

func TestProcessApprovedPlanExecutes(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "list my notes and log it")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(listStep(), appendStep()), nil
	})

	var validated bus.ValidateRequest
	h.sentinel(t, func(req bus.ValidateRequest) (*bus.ValidateResponse, error) {
		validated = req
		return verdictResponse(models.VerdictApproved), nil
	})

	var mu sync.Mutex
	var executed []string
	h.gearRuntime(t, func(req bus.ExecuteRequest) (*bus.ExecuteResponse, error) {
		mu.Lock()
		executed = append(executed, req.StepID)
		mu.Unlock()
		return echoStep(req)
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusCompleted, out.Status)

	mu.Lock()
	assert.Equal(t, []string{"s1", "s2"}, executed, "steps run front to back")
	mu.Unlock()

	require.NotNil(t, validated.Plan)
	assert.Equal(t, row.ID, validated.Plan.JobID, "the row is authoritative for plan linkage")
	assert.Equal(t, string(models.SourceUser), validated.Source)

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, final.Status)
	require.NotNil(t, final.Validation)
	assert.Equal(t, string(models.VerdictApproved), final.Validation["verdict"])

	result := decodeResult(t, final)
	assert.Equal(t, "Completed 2 steps.\n- files.list\n- notes.append", result.Text)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].OK)
	assert.True(t, result.Steps[1].OK)
	assert.Equal(t, "list", result.Steps[0].Result["action"])

	history, err := h.convs.RecentHistory(context.Background(), *final.ConversationID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, result.Text, history[1].Content)
}

func TestProcessStepFailureRecordsPartialResult(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "list my notes and log it")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(listStep(), appendStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return verdictResponse(models.VerdictApproved), nil
	})
	h.gearRuntime(t, func(req bus.ExecuteRequest) (*bus.ExecuteResponse, error) {
		if req.StepID == "s2" {
			return nil, models.NewAgentError(models.CodeGearExecutionFailed, "disk full")
		}
		return echoStep(req)
	})

	out := h.orch.Process(context.Background(), row)
	require.Equal(t, job.StatusFailed, out.Status)
	require.NotNil(t, out.Error)
	assert.Equal(t, models.CodeGearExecutionFailed, out.Error.Code)
	assert.True(t, out.Error.Retriable, "the retry replans from scratch")
	assert.Contains(t, out.Error.Message, "step s2 failed")

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	result := decodeResult(t, final)
	require.Len(t, result.Steps, 2, "partial outcomes persist for debugging")
	assert.True(t, result.Steps[0].OK)
	assert.False(t, result.Steps[1].OK)
	require.NotNil(t, result.Steps[1].Error)
	assert.Equal(t, models.CodeGearExecutionFailed, result.Steps[1].Error.Code)
}

func TestProcessApprovalFlow(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "email my landlord about the leak")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(appendStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return verdictResponse(models.VerdictNeedsUserApproval), nil
	})
	h.gearRuntime(t, echoStep)

	done := make(chan queue.Outcome, 1)
	go func() { done <- h.orch.Process(context.Background(), row) }()

	// The job parks in awaiting_approval until the gateway acts.
	ctx := context.Background()
	var parked *ent.Job
	require.Eventually(t, func() bool {
		r, err := h.queue.Get(ctx, row.ID)
		if err != nil || r.Status != job.StatusAwaitingApproval {
			return false
		}
		parked = r
		return true
	}, 5*time.Second, 20*time.Millisecond, "job never parked for approval")

	require.NotNil(t, parked.ApprovalNonce)
	require.NotEmpty(t, *parked.ApprovalNonce)

	// The broadcast follows the transition; give it its own beat.
	require.Eventually(t, func() bool {
		_, _, _, count := h.events.snapshot()
		return count == 1
	}, 5*time.Second, 20*time.Millisecond, "approval broadcast never fired")

	gotJob, gotPlan, gotNonce, count := h.events.snapshot()
	assert.Equal(t, 1, count)
	assert.Equal(t, row.ID, gotJob)
	assert.Equal(t, *parked.ApprovalNonce, gotNonce)
	require.NotNil(t, gotPlan)
	assert.Empty(t, gotPlan.Reasoning, "the broadcast plan is stripped of planner prose")
	require.Len(t, gotPlan.Steps, 1)
	assert.Empty(t, gotPlan.Steps[0].Description)

	// Approve the way the gateway does: CAS first, then wake the waiter.
	ok, err := h.queue.Transition(ctx, row.ID, job.StatusAwaitingApproval, job.StatusExecuting, nil)
	require.NoError(t, err)
	require.True(t, ok)
	h.hub.Resolve(row.ID)

	select {
	case out := <-done:
		require.Equal(t, job.StatusCompleted, out.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not finish after approval")
	}

	final, err := h.queue.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, final.Status)
	require.Len(t, decodeResult(t, final).Steps, 1)
}

func TestProcessCancelDuringApprovalWait(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "email my landlord about the leak")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		return fullPlanResponse(appendStep()), nil
	})
	h.sentinel(t, func(bus.ValidateRequest) (*bus.ValidateResponse, error) {
		return verdictResponse(models.VerdictNeedsUserApproval), nil
	})
	h.gearRuntime(t, func(bus.ExecuteRequest) (*bus.ExecuteResponse, error) {
		t.Error("a cancelled job must never execute")
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan queue.Outcome, 1)
	go func() { done <- h.orch.Process(ctx, row) }()

	require.Eventually(t, func() bool {
		r, err := h.queue.Get(context.Background(), row.ID)
		return err == nil && r.Status == job.StatusAwaitingApproval
	}, 5*time.Second, 20*time.Millisecond, "job never parked for approval")

	cancel()

	select {
	case out := <-done:
		require.Equal(t, job.StatusCancelled, out.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not settle after cancellation")
	}

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCancelled, final.Status)
}

func TestProcessLostTransitionYieldsRowStatus(t *testing.T) {
	h := newPipelineHarness(t)
	row := h.seedJob(t, "tidy my notes")
	h.scout(t, func(bus.PlanRequest) (*bus.PlanResponse, error) {
		// Cancel out from under the worker between plan and persist.
		ok, err := h.queue.Cancel(context.Background(), row.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		return fullPlanResponse(listStep()), nil
	})

	out := h.orch.Process(context.Background(), row)
	assert.Equal(t, job.StatusCancelled, out.Status, "the winner of the race owns the outcome")

	final, err := h.queue.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCancelled, final.Status)
}
