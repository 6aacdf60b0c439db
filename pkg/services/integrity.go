package services

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
)

// The logical stores carry no cross-store foreign keys, so referential
// integrity is verified out of band. Each probe counts rows whose reference
// points at nothing.
const (
	probeAuditJobs = `
		SELECT count(*)
		FROM audit_entries a
		LEFT JOIN jobs j ON a.job_id = j.id
		WHERE a.job_id IS NOT NULL AND j.id IS NULL`

	probeMessageConversations = `
		SELECT count(*)
		FROM messages m
		LEFT JOIN conversations c ON m.conversation_id = c.id
		WHERE c.id IS NULL`

	probeSubjobParents = `
		SELECT count(*)
		FROM jobs s
		LEFT JOIN jobs p ON s.parent_job_id = p.id
		WHERE s.parent_job_id IS NOT NULL AND p.id IS NULL`
)

// IntegrityReport is the outcome of one scan.
type IntegrityReport struct {
	OrphanedAuditEntries int `json:"orphanedAuditEntries"`
	OrphanedMessages     int `json:"orphanedMessages"`
	OrphanedSubjobs      int `json:"orphanedSubjobs"`
}

// Total is the sum across probes.
func (r IntegrityReport) Total() int {
	return r.OrphanedAuditEntries + r.OrphanedMessages + r.OrphanedSubjobs
}

// IntegrityScanner periodically probes for cross-store orphans. Report-only:
// it logs, audits, and sets gauges, but never mutates rows.
type IntegrityScanner struct {
	db       *stdsql.DB
	audit    *AuditService
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewIntegrityScanner creates a new IntegrityScanner. audit and m may be nil
// in tests.
func NewIntegrityScanner(db *stdsql.DB, audit *AuditService, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *IntegrityScanner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &IntegrityScanner{
		db:       db,
		audit:    audit,
		metrics:  m,
		logger:   logger,
		interval: interval,
	}
}

// Start launches the background scan loop.
func (s *IntegrityScanner) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Integrity scanner started", "interval", s.interval)
}

// Stop signals the scan loop to exit and waits for it to finish.
func (s *IntegrityScanner) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Integrity scanner stopped")
}

func (s *IntegrityScanner) run(ctx context.Context) {
	defer close(s.done)

	s.scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *IntegrityScanner) scan(ctx context.Context) {
	report, err := s.ScanOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("integrity scan failed", "error", err)
		}
		return
	}
	if report.Total() == 0 {
		s.logger.Debug("integrity scan clean")
		return
	}
	s.logger.Warn("integrity scan found orphans",
		"orphaned_audit_entries", report.OrphanedAuditEntries,
		"orphaned_messages", report.OrphanedMessages,
		"orphaned_subjobs", report.OrphanedSubjobs)
	if s.audit != nil {
		s.audit.Record(ctx, models.AuditRecord{
			Actor:     "integrity",
			Action:    "integrity:orphans",
			RiskLevel: models.RiskMedium,
			Details: map[string]any{
				"orphanedAuditEntries": report.OrphanedAuditEntries,
				"orphanedMessages":     report.OrphanedMessages,
				"orphanedSubjobs":      report.OrphanedSubjobs,
			},
		})
	}
}

// ScanOnce runs the three probes and returns their counts.
func (s *IntegrityScanner) ScanOnce(ctx context.Context) (IntegrityReport, error) {
	var report IntegrityReport

	probes := []struct {
		name  string
		query string
		dest  *int
	}{
		{"audit_jobs", probeAuditJobs, &report.OrphanedAuditEntries},
		{"message_conversations", probeMessageConversations, &report.OrphanedMessages},
		{"subjob_parents", probeSubjobParents, &report.OrphanedSubjobs},
	}

	for _, p := range probes {
		if err := s.db.QueryRowContext(ctx, p.query).Scan(p.dest); err != nil {
			return report, fmt.Errorf("integrity probe %s: %w", p.name, err)
		}
		if s.metrics != nil {
			s.metrics.IntegrityOrphans.WithLabelValues(p.name).Set(float64(*p.dest))
		}
	}
	return report, nil
}
