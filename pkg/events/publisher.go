package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
)

// listenerPublishTimeout bounds the journal write made from a queue status
// listener, which runs inside the queue's serialized notify section.
const listenerPublishTimeout = 5 * time.Second

// Publisher writes job events to the journal and broadcasts them via NOTIFY.
// Both happen in one transaction (pg_notify is transactional, held until
// COMMIT), so a notification is never delivered for a row that did not land.
type Publisher struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// NewPublisher creates an event publisher on the raw database handle
// (database.Client.DB()).
func NewPublisher(db *sql.DB, m *metrics.Metrics) *Publisher {
	return &Publisher{db: db, metrics: m}
}

// PublishStatus persists and broadcasts a status event.
func (p *Publisher) PublishStatus(ctx context.Context, jobID string, status job.Status) error {
	return p.publish(ctx, StatusPayload{
		Type:      EventTypeStatus,
		JobID:     jobID,
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}

// PublishApprovalRequired persists and broadcasts an approval_required
// event. The plan must already be stripped; the nonce is what the approve
// endpoint expects back.
func (p *Publisher) PublishApprovalRequired(ctx context.Context, jobID string, plan *models.ExecutionPlan, nonce string) error {
	risks := make([]StepRisk, len(plan.Steps))
	for i, s := range plan.Steps {
		risks[i] = StepRisk{StepID: s.ID, Gear: s.Gear, Action: s.Action, Risk: s.RiskLevel}
	}
	return p.publish(ctx, ApprovalRequiredPayload{
		Type:        EventTypeApprovalRequired,
		JobID:       jobID,
		Plan:        plan,
		Risks:       risks,
		OverallRisk: plan.OverallRisk(),
		Metadata:    map[string]any{"nonce": nonce},
		Timestamp:   time.Now().Format(time.RFC3339Nano),
	})
}

// PublishResult persists and broadcasts a result event.
func (p *Publisher) PublishResult(ctx context.Context, jobID string, result *models.JobResult) error {
	return p.publish(ctx, ResultPayload{
		Type:      EventTypeResult,
		JobID:     jobID,
		Result:    result,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}

// PublishError persists and broadcasts an error event.
func (p *Publisher) PublishError(ctx context.Context, jobID string, ae *models.AgentError) error {
	return p.publish(ctx, ErrorPayload{
		Type:      EventTypeError,
		JobID:     jobID,
		Code:      ae.Code,
		Message:   ae.Message,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}

// OnJobTransition is a queue status listener: it turns committed transitions
// into broadcast events. Status is published for every edge; terminal edges
// additionally publish the result or error. Failures are logged, never
// propagated — a broadcast must not fail a transition.
func (p *Publisher) OnJobTransition(jobID string, from, to job.Status, row *ent.Job) {
	// The transition's own context may already be cancelled (terminal writes
	// during shutdown), so the journal write gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), listenerPublishTimeout)
	defer cancel()

	if err := p.PublishStatus(ctx, jobID, to); err != nil {
		slog.Warn("Failed to publish status event", "job_id", jobID, "status", to, "error", err)
	}

	switch to {
	case job.StatusCompleted:
		if row == nil || row.Result == nil {
			return
		}
		var result models.JobResult
		if err := remarshal(row.Result, &result); err != nil {
			slog.Warn("Failed to decode job result for broadcast", "job_id", jobID, "error", err)
			return
		}
		if err := p.PublishResult(ctx, jobID, &result); err != nil {
			slog.Warn("Failed to publish result event", "job_id", jobID, "error", err)
		}
	case job.StatusFailed:
		if row == nil || row.JobError == nil {
			return
		}
		ae := models.AgentErrorFromMap(row.JobError)
		if err := p.PublishError(ctx, jobID, ae); err != nil {
			slog.Warn("Failed to publish error event", "job_id", jobID, "error", err)
		}
	}
}

// publish marshals the payload and runs the journal+NOTIFY transaction.
func (p *Publisher) publish(ctx context.Context, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return p.persistAndNotify(ctx, JobsChannel, payloadJSON)
}

// persistAndNotify persists a pre-marshaled event to the journal and
// broadcasts via NOTIFY in a single transaction.
func (p *Publisher) persistAndNotify(ctx context.Context, channel string, payloadJSON []byte) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var eventID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO events (channel, payload, created_at) VALUES ($1, $2, $3) RETURNING id`,
		channel, payloadJSON, time.Now(),
	).Scan(&eventID)
	if err != nil {
		return fmt.Errorf("failed to persist event: %w", err)
	}

	// Build the NOTIFY payload with eventId for catch-up tracking.
	notifyPayload, err := injectEventIDAndTruncate(payloadJSON, eventID)
	if err != nil {
		return err
	}

	// pg_notify within the same transaction — held until COMMIT.
	_, err = tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", channel, notifyPayload)
	if err != nil {
		return fmt.Errorf("pg_notify failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event transaction: %w", err)
	}

	if p.metrics != nil {
		p.metrics.EventsPublished.Inc()
	}
	return nil
}

// injectEventIDAndTruncate adds eventId to the JSON payload for NOTIFY
// delivery and applies truncation if the result exceeds PostgreSQL's limit.
func injectEventIDAndTruncate(payloadJSON []byte, eventID int64) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(payloadJSON, &m); err != nil {
		return "", fmt.Errorf("failed to unmarshal payload for eventId injection: %w", err)
	}
	m["eventId"] = eventID

	enriched, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal enriched NOTIFY payload: %w", err)
	}

	if len(enriched) <= notifyPayloadLimit {
		return string(enriched), nil
	}
	return buildTruncatedPayload(enriched)
}

// notifyPayloadLimit leaves headroom under PostgreSQL's 8000-byte NOTIFY
// payload cap.
const notifyPayloadLimit = 7900

// buildTruncatedPayload creates a minimal truncation envelope from the full
// JSON payload bytes, keeping only the routing fields the client needs to
// fetch the complete event through catch-up.
func buildTruncatedPayload(payloadBytes []byte) (string, error) {
	var routing struct {
		Type    string `json:"type"`
		JobID   string `json:"jobId"`
		EventID *int64 `json:"eventId"`
	}
	if err := json.Unmarshal(payloadBytes, &routing); err != nil {
		return "", fmt.Errorf("failed to extract routing fields for truncation: %w", err)
	}

	truncated := map[string]any{
		"type":      routing.Type,
		"jobId":     routing.JobID,
		"truncated": true,
	}
	if routing.EventID != nil {
		truncated["eventId"] = *routing.EventID
	}

	truncBytes, err := json.Marshal(truncated)
	if err != nil {
		return "", fmt.Errorf("failed to marshal truncated payload: %w", err)
	}
	return string(truncBytes), nil
}

// remarshal round-trips a JSON column map into a typed struct.
func remarshal(m map[string]any, out any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
