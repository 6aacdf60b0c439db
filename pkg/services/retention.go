package services

import (
	"context"
	"fmt"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/auditentry"
	"github.com/axisworks/axis/ent/event"
	"github.com/axisworks/axis/ent/job"
)

// RetentionService owns the sanctioned delete paths for aged rows. The
// cleanup loop drives it on an interval; every method is idempotent and safe
// to run concurrently across replicas.
type RetentionService struct {
	client *ent.Client
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(client *ent.Client) *RetentionService {
	return &RetentionService{client: client}
}

// DeleteTerminalJobsBefore removes completed/failed/cancelled jobs whose
// completed_at is before the cutoff. Live jobs are never touched.
func (s *RetentionService) DeleteTerminalJobsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.client.Job.Delete().
		Where(
			job.StatusIn(job.StatusCompleted, job.StatusFailed, job.StatusCancelled),
			job.CompletedAtLT(cutoff),
		).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	return n, nil
}

// DeleteAuditEntriesBefore removes audit entries older than the cutoff.
// This is the single delete path into the append-only audit log.
func (s *RetentionService) DeleteAuditEntriesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.client.AuditEntry.Delete().
		Where(auditentry.TimestampLT(cutoff)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit entries: %w", err)
	}
	return n, nil
}

// DeleteEventsBefore removes broadcast journal rows older than the cutoff.
// WebSocket catch-up only ever reads a short horizon, so events age out fast.
func (s *RetentionService) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.client.Event.Delete().
		Where(event.CreatedAtLT(cutoff)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old events: %w", err)
	}
	return n, nil
}
