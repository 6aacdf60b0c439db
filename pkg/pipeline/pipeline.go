// Package pipeline drives a claimed job through the request lifecycle:
// ingest → plan → validate → (approve) → execute → respond. The orchestrator
// owns every state transition after the claim; all of them go through the
// queue's CAS, so races with the watchdog and the gateway's cancel endpoint
// resolve cleanly — whoever writes first wins and the loser backs off.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/services"
)

// Dispatcher sends signed messages through the router and always yields a
// response message (error-typed on failure).
type Dispatcher interface {
	DispatchSigned(ctx context.Context, msg *bus.Message) *bus.Message
}

// JobStore is the queue surface the orchestrator drives transitions through.
type JobStore interface {
	Get(ctx context.Context, id string) (*ent.Job, error)
	Transition(ctx context.Context, jobID string, from, to job.Status, patch *queue.TransitionPatch) (bool, error)
	Requeue(ctx context.Context, jobID string) (bool, error)
}

// MessageStore is the slice of the conversation service the pipeline needs.
type MessageStore interface {
	MessageForJob(ctx context.Context, jobID string) (*ent.Message, error)
	RecentHistory(ctx context.Context, conversationID string, window int) ([]models.ConversationMessage, error)
	AddMessage(ctx context.Context, req models.NewMessage) (*ent.Message, error)
}

// Broadcaster publishes the one event that does not ride a queue
// transition: the approval request with its nonce.
type Broadcaster interface {
	PublishApprovalRequired(ctx context.Context, jobID string, plan *models.ExecutionPlan, nonce string) error
}

// Orchestrator implements queue.Processor.
type Orchestrator struct {
	cfg      config.PipelineConfig
	jobs     JobStore
	router   Dispatcher
	messages MessageStore
	events   Broadcaster
	hub      *ApprovalHub
	audit    bus.AuditSink
}

// New builds the orchestrator. events and audit may be nil (tests, stripped
// deployments); everything else is required.
func New(cfg config.PipelineConfig, jobs JobStore, router Dispatcher, messages MessageStore, events Broadcaster, hub *ApprovalHub, audit bus.AuditSink) *Orchestrator {
	if jobs == nil || router == nil || messages == nil || hub == nil {
		panic("pipeline.New: jobs, router, messages, and hub are required")
	}
	return &Orchestrator{
		cfg:      cfg,
		jobs:     jobs,
		router:   router,
		messages: messages,
		events:   events,
		hub:      hub,
		audit:    audit,
	}
}

// Process runs the pipeline on a claimed job. The row arrives in planning
// (the claim's doing) and leaves in a terminal state unless another writer
// supersedes this worker.
func (o *Orchestrator) Process(ctx context.Context, row *ent.Job) queue.Outcome {
	log := slog.With("job_id", row.ID, "source", row.Source)

	conversationID := ""
	if row.ConversationID != nil {
		conversationID = *row.ConversationID
	}

	// Ingest.
	userMsg, err := o.messages.MessageForJob(ctx, row.ID)
	if err != nil {
		var ae *models.AgentError
		if errors.Is(err, services.ErrNotFound) {
			ae = models.NewAgentError(models.CodeValidation, "job has no user message")
		} else {
			ae = models.NewAgentErrorf(models.CodeDispatch, "failed to load user message: %v", err)
		}
		return o.fail(row.ID, job.StatusPlanning, "ingest", ae, nil)
	}

	var history []models.ConversationMessage
	if conversationID != "" && o.cfg.HistoryWindow > 0 {
		history, err = o.messages.RecentHistory(ctx, conversationID, o.cfg.HistoryWindow)
		if err != nil {
			// History is enrichment; the plan request stands without it.
			log.Warn("Proceeding without conversation history", "error", err)
			history = nil
		}
	}

	// Plan. One reroute is allowed: a flagged fast reply forces the full
	// path; a second fast reply is the planner refusing the contract.
	var plan *models.ExecutionPlan
	force := false
	for {
		resp := o.send(ctx, row.ID, bus.ComponentScout, bus.TypePlanRequest, bus.PlanRequest{
			UserMessage:         userMsg.Content,
			JobID:               row.ID,
			ConversationID:      conversationID,
			ConversationHistory: history,
			ForceFullPath:       force,
		}, o.cfg.PlanTimeout)
		if err := ctx.Err(); err != nil {
			return o.settle(row.ID, job.StatusPlanning, err)
		}
		if ae := bus.ErrorFromMessage(resp); ae != nil {
			return o.fail(row.ID, job.StatusPlanning, "plan", planFailure(ae), nil)
		}

		var pr bus.PlanResponse
		if err := bus.DecodePayload(resp.Payload, &pr); err != nil {
			return o.fail(row.ID, job.StatusPlanning, "plan",
				models.NewAgentErrorf(models.CodeInvalidPlan, "malformed plan response: %v", err), nil)
		}

		if pr.Path == bus.PathFast {
			hits := VerifyFastReply(pr.Text)
			if len(hits) == 0 {
				return o.completeFast(ctx, row.ID, conversationID, pr.Text)
			}
			if force {
				return o.fail(row.ID, job.StatusPlanning, "plan",
					models.NewAgentError(models.CodeInvalidPlan,
						"planner returned a fast reply after the full path was forced"), nil)
			}
			log.Warn("Fast reply flagged for deferred-action language",
				"fragments", strings.Join(hits, "; "))
			force = true
			continue
		}

		if pr.Plan == nil || len(pr.Plan.Steps) == 0 {
			return o.fail(row.ID, job.StatusPlanning, "plan",
				models.NewAgentError(models.CodeInvalidPlan, "full-path response carried no plan"), nil)
		}
		plan = pr.Plan
		break
	}

	// The row, not the planner, is authoritative for linkage.
	plan.JobID = row.ID
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}

	if o.cfg.MaxPlanSteps > 0 && len(plan.Steps) > o.cfg.MaxPlanSteps {
		return o.fail(row.ID, job.StatusPlanning, "plan",
			models.NewAgentErrorf(models.CodeBudgetExceeded,
				"plan has %d steps, budget is %d", len(plan.Steps), o.cfg.MaxPlanSteps), nil)
	}

	// Validate.
	planMap, err := bus.EncodePayload(plan)
	if err != nil {
		return o.fail(row.ID, job.StatusPlanning, "validate",
			models.NewAgentErrorf(models.CodeInvalidPlan, "plan does not serialize: %v", err), nil)
	}
	ok, err := o.jobs.Transition(ctx, row.ID, job.StatusPlanning, job.StatusValidating,
		&queue.TransitionPatch{Plan: planMap})
	if err != nil {
		return o.fail(row.ID, job.StatusPlanning, "validate",
			models.NewAgentErrorf(models.CodeDispatch, "failed to persist plan: %v", err), nil)
	}
	if !ok {
		return o.bail(row.ID)
	}

	resp := o.send(ctx, row.ID, bus.ComponentSentinel, bus.TypeValidateRequest, bus.ValidateRequest{
		Plan:   plan,
		Source: string(row.Source),
	}, o.cfg.ValidateTimeout)
	if err := ctx.Err(); err != nil {
		return o.settle(row.ID, job.StatusValidating, err)
	}
	if ae := bus.ErrorFromMessage(resp); ae != nil {
		return o.fail(row.ID, job.StatusValidating, "validate", validateFailure(ae), nil)
	}

	var vr bus.ValidateResponse
	if err := bus.DecodePayload(resp.Payload, &vr); err != nil || vr.Validation == nil || !vr.Validation.Verdict.Valid() {
		return o.fail(row.ID, job.StatusValidating, "validate",
			models.NewAgentError(models.CodeInvalidValidation, "validator returned no usable verdict"), nil)
	}
	verdict := vr.Validation
	vmap, err := bus.EncodePayload(verdict)
	if err != nil {
		log.Warn("Verdict does not serialize; proceeding without the patch", "error", err)
		vmap = nil
	}
	log.Info("Plan validated", "verdict", verdict.Verdict, "risk", verdict.OverallRisk)

	switch verdict.Verdict {
	case models.VerdictRejected:
		return o.fail(row.ID, job.StatusValidating, "validate",
			models.NewAgentErrorf(models.CodePlanRejected, "plan rejected: %s", verdict.Reasoning),
			&queue.TransitionPatch{Validation: vmap})

	case models.VerdictNeedsRevision:
		return o.fail(row.ID, job.StatusValidating, "validate",
			models.NewAgentErrorf(models.CodeNeedsRevision, "plan needs revision: %s", verdict.Reasoning),
			&queue.TransitionPatch{Validation: vmap})

	case models.VerdictNeedsUserApproval:
		nonce := uuid.New().String()
		ok, err := o.jobs.Transition(ctx, row.ID, job.StatusValidating, job.StatusAwaitingApproval,
			&queue.TransitionPatch{Validation: vmap, ApprovalNonce: nonce})
		if err != nil {
			return o.fail(row.ID, job.StatusValidating, "approve",
				models.NewAgentErrorf(models.CodeDispatch, "failed to park job for approval: %v", err), nil)
		}
		if !ok {
			return o.bail(row.ID)
		}
		log.Info("Job parked for user approval", "risk", verdict.OverallRisk)
		if o.events != nil {
			// The broadcast carries the stripped plan: the client reviews
			// what will run, not the planner's pitch for it.
			if err := o.events.PublishApprovalRequired(ctx, row.ID, plan.Stripped(), nonce); err != nil {
				log.Error("Failed to broadcast approval request", "error", err)
			}
		}
		if err := o.hub.Await(ctx, row.ID); err != nil {
			return o.settle(row.ID, job.StatusAwaitingApproval, err)
		}
		// The approve endpoint's CAS moved the row to executing before it
		// resolved the hub; denial arrives as a cancelled context instead.

	case models.VerdictApproved:
		ok, err := o.jobs.Transition(ctx, row.ID, job.StatusValidating, job.StatusExecuting,
			&queue.TransitionPatch{Validation: vmap})
		if err != nil {
			return o.fail(row.ID, job.StatusValidating, "approve",
				models.NewAgentErrorf(models.CodeDispatch, "failed to start execution: %v", err), nil)
		}
		if !ok {
			return o.bail(row.ID)
		}
	}

	// Execute.
	outcomes := make([]models.StepOutcome, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return o.settle(row.ID, job.StatusExecuting, err)
		}

		resp := o.send(ctx, row.ID, bus.ComponentGearRuntime, bus.TypeExecuteRequest, bus.ExecuteRequest{
			Gear:       step.Gear,
			Action:     step.Action,
			Parameters: step.Parameters,
			StepID:     step.ID,
		}, o.cfg.StepTimeout)
		if err := ctx.Err(); err != nil {
			return o.settle(row.ID, job.StatusExecuting, err)
		}

		if ae := bus.ErrorFromMessage(resp); ae != nil {
			outcomes = append(outcomes, models.StepOutcome{
				StepID: step.ID, Gear: step.Gear, Action: step.Action, OK: false, Error: ae,
			})
			// Step failures are retriable at the job level: the retry
			// replans from scratch, so even a non-retriable step error can
			// resolve differently next time.
			stepErr := &models.AgentError{
				Code:      ae.Code,
				Message:   fmt.Sprintf("step %s failed: %s", step.ID, ae.Message),
				Retriable: true,
			}
			return o.fail(row.ID, job.StatusExecuting, "execute", stepErr,
				&queue.TransitionPatch{Result: resultPatch(models.JobResult{Steps: outcomes})})
		}

		var er bus.ExecuteResponse
		if err := bus.DecodePayload(resp.Payload, &er); err != nil {
			outcomes = append(outcomes, models.StepOutcome{
				StepID: step.ID, Gear: step.Gear, Action: step.Action, OK: false,
				Error: models.NewAgentError(models.CodeGearExecutionFailed, "malformed step response"),
			})
			stepErr := &models.AgentError{
				Code:      models.CodeGearExecutionFailed,
				Message:   fmt.Sprintf("step %s returned a malformed response: %v", step.ID, err),
				Retriable: true,
			}
			return o.fail(row.ID, job.StatusExecuting, "execute", stepErr,
				&queue.TransitionPatch{Result: resultPatch(models.JobResult{Steps: outcomes})})
		}

		outcomes = append(outcomes, models.StepOutcome{
			StepID: step.ID, Gear: step.Gear, Action: step.Action, OK: true, Result: er.Result,
		})
		log.Info("Plan step completed", "step_id", step.ID, "gear", step.Gear, "action", step.Action)
	}

	// Respond.
	summary := summarize(outcomes)
	o.persistAssistantMessage(ctx, row.ID, conversationID, summary)

	result := resultPatch(models.JobResult{Text: summary, Steps: outcomes})
	ok, err = o.jobs.Transition(context.Background(), row.ID, job.StatusExecuting, job.StatusCompleted,
		&queue.TransitionPatch{Result: result})
	if err != nil {
		slog.Error("Failed to record job completion", "job_id", row.ID, "error", err)
		return queue.Outcome{Status: job.StatusCompleted}
	}
	if !ok {
		return o.bail(row.ID)
	}
	return queue.Outcome{Status: job.StatusCompleted}
}

// completeFast lands a clean fast-path reply: assistant message, then
// planning → completed with the text as the result. The result broadcast
// rides the transition listener.
func (o *Orchestrator) completeFast(ctx context.Context, jobID, conversationID, text string) queue.Outcome {
	o.persistAssistantMessage(ctx, jobID, conversationID, text)

	result := resultPatch(models.JobResult{Text: text})
	ok, err := o.jobs.Transition(context.Background(), jobID, job.StatusPlanning, job.StatusCompleted,
		&queue.TransitionPatch{Result: result})
	if err != nil {
		slog.Error("Failed to record fast-path completion", "job_id", jobID, "error", err)
		return queue.Outcome{Status: job.StatusCompleted}
	}
	if !ok {
		return o.bail(jobID)
	}
	return queue.Outcome{Status: job.StatusCompleted}
}

// persistAssistantMessage stores the user-facing reply. Failures are logged,
// not fatal: the result also lands on the job row and in the broadcast, so a
// missed conversation message must not burn a retry.
func (o *Orchestrator) persistAssistantMessage(ctx context.Context, jobID, conversationID, content string) {
	if conversationID == "" || content == "" {
		return
	}
	_, err := o.messages.AddMessage(ctx, models.NewMessage{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        content,
		JobID:          jobID,
	})
	if err != nil {
		slog.Error("Failed to persist assistant message", "job_id", jobID, "error", err)
	}
}

// send dispatches one pipeline message and returns whatever the router
// yields. A payload that refuses to encode returns nil, which callers fold
// into the dispatch-error path.
func (o *Orchestrator) send(ctx context.Context, jobID, to, typ string, payload any, timeout time.Duration) *bus.Message {
	msg := bus.NewMessage(bus.ComponentPipeline, to, typ)
	msg.JobID = jobID
	body, err := bus.EncodePayload(payload)
	if err != nil {
		slog.Error("Failed to encode dispatch payload", "job_id", jobID, "type", typ, "error", err)
		return nil
	}
	msg.Payload = body
	if timeout > 0 {
		msg.SetTimeout(timeout)
	}
	return o.router.DispatchSigned(ctx, msg)
}

// fail lands the job in failed with the structured error plus any patch,
// takes the retry edge when the classification allows it, and audits the
// failure. Terminal writes use a background context: the job context may be
// the thing that just died.
func (o *Orchestrator) fail(jobID string, from job.Status, stage string, ae *models.AgentError, patch *queue.TransitionPatch) queue.Outcome {
	ctx := context.Background()
	if patch == nil {
		patch = &queue.TransitionPatch{}
	}
	patch.Error = ae

	slog.Error("Pipeline stage failed",
		"job_id", jobID, "stage", stage, "code", ae.Code, "retriable", ae.Retriable, "error", ae.Message)

	ok, err := o.jobs.Transition(ctx, jobID, from, job.StatusFailed, patch)
	if err != nil {
		slog.Error("Failed to record job failure", "job_id", jobID, "error", err)
	}
	if ok && ae.Retriable {
		if _, err := o.jobs.Requeue(ctx, jobID); err != nil {
			slog.Error("Failed to re-enqueue retriable job", "job_id", jobID, "error", err)
		}
	}
	if o.audit != nil {
		o.audit.Record(ctx, models.AuditRecord{
			Actor:     "pipeline",
			Action:    "job_failed",
			RiskLevel: models.RiskLow,
			Target:    stage,
			JobID:     jobID,
			Details:   map[string]any{"code": ae.Code, "message": ae.Message, "retriable": ae.Retriable},
		})
	}
	return queue.Outcome{Status: job.StatusFailed, Error: ae}
}

// settle maps a context failure at a suspension point onto the row: user or
// gateway cancellation lands cancelled, the job deadline lands failed with
// ERR_TIMEOUT.
func (o *Orchestrator) settle(jobID string, from job.Status, cause error) queue.Outcome {
	if errors.Is(cause, context.DeadlineExceeded) {
		return o.fail(jobID, from, "deadline",
			models.NewAgentError(models.CodeTimeout, "job deadline exceeded"), nil)
	}

	ok, err := o.jobs.Transition(context.Background(), jobID, from, job.StatusCancelled, nil)
	if err != nil {
		slog.Error("Failed to record cancellation", "job_id", jobID, "error", err)
	} else if !ok {
		// The gateway's cancel endpoint usually wins this CAS; losing it
		// just means the row is already where we wanted it.
		slog.Debug("Cancellation already recorded", "job_id", jobID)
	}
	slog.Info("Job cancelled", "job_id", jobID, "stage", from)
	return queue.Outcome{Status: job.StatusCancelled}
}

// bail re-reads the row after a lost CAS: the cancel endpoint or the
// watchdog moved the job while this worker was working, and whatever they
// wrote is the outcome.
func (o *Orchestrator) bail(jobID string) queue.Outcome {
	row, err := o.jobs.Get(context.Background(), jobID)
	if err != nil {
		slog.Error("Failed to read job after lost transition", "job_id", jobID, "error", err)
		return queue.Outcome{Status: job.StatusCancelled}
	}
	slog.Info("Pipeline superseded", "job_id", jobID, "status", row.Status)
	out := queue.Outcome{Status: row.Status}
	if row.JobError != nil {
		out.Error = models.AgentErrorFromMap(row.JobError)
	}
	return out
}

// resultPatch shapes a JobResult for the row's result column.
func resultPatch(result models.JobResult) map[string]any {
	m, err := bus.EncodePayload(result)
	if err != nil {
		slog.Error("Job result does not serialize", "error", err)
		return map[string]any{"text": result.Text}
	}
	return m
}

// planFailure normalizes an error-typed plan response: transport-class codes
// collapse to SCOUT_UNREACHABLE so the retry policy stays uniform; content
// classifications pass through untouched.
func planFailure(ae *models.AgentError) *models.AgentError {
	switch ae.Code {
	case models.CodeTimeout, models.CodeDispatch, models.CodeNotFound:
		return models.NewAgentErrorf(models.CodeScoutUnreachable, "planner unreachable: %s", ae.Message)
	}
	return ae
}

// validateFailure is planFailure's twin for the sentinel dispatch.
func validateFailure(ae *models.AgentError) *models.AgentError {
	switch ae.Code {
	case models.CodeTimeout, models.CodeDispatch, models.CodeNotFound:
		return models.NewAgentErrorf(models.CodeSentinelUnreachable, "validator unreachable: %s", ae.Message)
	}
	return ae
}

// summarize renders the assistant-visible completion text for a full-path
// job: what ran, in order.
func summarize(outcomes []models.StepOutcome) string {
	var b strings.Builder
	if len(outcomes) == 1 {
		b.WriteString("Completed 1 step.")
	} else {
		fmt.Fprintf(&b, "Completed %d steps.", len(outcomes))
	}
	for _, so := range outcomes {
		fmt.Fprintf(&b, "\n- %s.%s", so.Gear, so.Action)
	}
	return b.String()
}
