package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/auditentry"
	"github.com/axisworks/axis/pkg/models"
	"github.com/google/uuid"
)

const (
	// auditQueueSize bounds the in-flight record buffer. The router audits
	// every dispatch, so bursts are normal; sustained overflow drops records
	// with a warning instead of stalling dispatch.
	auditQueueSize = 1024

	// auditWriteTimeout bounds each insert so a slow database can't wedge
	// the consumer.
	auditWriteTimeout = 5 * time.Second
)

// AuditService persists audit records append-only. Writes are serialized
// through a single consumer goroutine; Record never blocks the caller.
// Implements the router's AuditSink.
type AuditService struct {
	client *ent.Client
	logger *slog.Logger

	queue    chan models.AuditRecord
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	dropped  atomic.Int64
}

// NewAuditService creates an AuditService and starts its consumer goroutine.
func NewAuditService(client *ent.Client, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuditService{
		client: client,
		logger: logger,
		queue:  make(chan models.AuditRecord, auditQueueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.consume()
	return s
}

// Record enqueues an audit record for asynchronous persistence. Safe to call
// from any goroutine; when the buffer is full the record is dropped and
// counted rather than blocking the hot path.
func (s *AuditService) Record(_ context.Context, rec models.AuditRecord) {
	select {
	case s.queue <- rec:
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			s.logger.Warn("audit queue full, dropping records",
				"dropped_total", n,
				"action", rec.Action)
		}
	}
}

// Stop drains buffered records and stops the consumer. Records submitted
// after Stop are dropped.
func (s *AuditService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.done
}

// Dropped reports how many records overflowed the buffer since startup.
func (s *AuditService) Dropped() int64 {
	return s.dropped.Load()
}

func (s *AuditService) consume() {
	defer close(s.done)
	for {
		select {
		case rec := <-s.queue:
			s.write(rec)
		case <-s.stopCh:
			// Drain whatever is already buffered, then exit.
			for {
				select {
				case rec := <-s.queue:
					s.write(rec)
				default:
					return
				}
			}
		}
	}
}

// write persists one record on a background context so caller cancellation
// never loses audit history.
func (s *AuditService) write(rec models.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.RiskLevel == "" {
		rec.RiskLevel = models.RiskLow
	}

	create := s.client.AuditEntry.Create().
		SetID(rec.ID).
		SetTimestamp(rec.Timestamp).
		SetActor(rec.Actor).
		SetAction(rec.Action).
		SetRiskLevel(string(rec.RiskLevel))
	if rec.Target != "" {
		create = create.SetTarget(rec.Target)
	}
	if rec.JobID != "" {
		create = create.SetJobID(rec.JobID)
	}
	if len(rec.Details) > 0 {
		create = create.SetDetails(rec.Details)
	}

	if _, err := create.Save(ctx); err != nil {
		s.logger.Error("failed to persist audit record",
			"error", err,
			"actor", rec.Actor,
			"action", rec.Action)
	}
}

// AuditFilter narrows List results. Zero values mean "any".
type AuditFilter struct {
	Actor  string
	Action string
	JobID  string
	Limit  int
	Offset int
}

// List returns audit entries newest-first. Limit is clamped to [1, 500]
// with a default of 100.
func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]*ent.AuditEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := s.client.AuditEntry.Query()
	if f.Actor != "" {
		q = q.Where(auditentry.ActorEQ(f.Actor))
	}
	if f.Action != "" {
		q = q.Where(auditentry.ActionEQ(f.Action))
	}
	if f.JobID != "" {
		q = q.Where(auditentry.JobIDEQ(f.JobID))
	}

	entries, err := q.
		Order(ent.Desc(auditentry.FieldTimestamp)).
		Limit(limit).
		Offset(offset).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
