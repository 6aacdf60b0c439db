// Package cleanup enforces the data retention policy.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/services"
)

// Service periodically enforces retention policies:
//   - Deletes terminal jobs older than the job horizon
//   - Deletes audit entries older than the audit horizon
//   - Deletes event rows past the catch-up horizon
//   - Purges expired approval-cache decisions
//
// All operations are idempotent and safe to run from multiple nodes. A
// horizon of zero days disables that sweep.
type Service struct {
	config    config.RetentionConfig
	retention *services.RetentionService
	approvals *services.ApprovalStore

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(cfg config.RetentionConfig, retention *services.RetentionService, approvals *services.ApprovalStore) *Service {
	return &Service{
		config:    cfg,
		retention: retention,
		approvals: approvals,
	}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"job_days", s.config.JobDays,
		"audit_days", s.config.AuditDays,
		"event_days", s.config.EventDays,
		"interval", s.config.Interval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.deleteOldJobs(ctx)
	s.deleteOldAuditEntries(ctx)
	s.deleteOldEvents(ctx)
	s.purgeExpiredApprovals(ctx)
}

// The individual sweeps run on a background context: a sweep caught mid-run
// by shutdown finishes its statement instead of erroring out halfway.

func (s *Service) deleteOldJobs(_ context.Context) {
	if s.config.JobDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.config.JobDays)
	count, err := s.retention.DeleteTerminalJobsBefore(context.Background(), cutoff)
	if err != nil {
		slog.Error("Retention: job cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: deleted old terminal jobs", "count", count)
	}
}

func (s *Service) deleteOldAuditEntries(_ context.Context) {
	if s.config.AuditDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.config.AuditDays)
	count, err := s.retention.DeleteAuditEntriesBefore(context.Background(), cutoff)
	if err != nil {
		slog.Error("Retention: audit cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: deleted old audit entries", "count", count)
	}
}

func (s *Service) deleteOldEvents(_ context.Context) {
	if s.config.EventDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.config.EventDays)
	count, err := s.retention.DeleteEventsBefore(context.Background(), cutoff)
	if err != nil {
		slog.Error("Retention: event cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: deleted old events", "count", count)
	}
}

func (s *Service) purgeExpiredApprovals(_ context.Context) {
	count, err := s.approvals.PurgeExpired(context.Background())
	if err != nil {
		slog.Error("Retention: approval cache purge failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: purged expired approval decisions", "count", count)
	}
}
