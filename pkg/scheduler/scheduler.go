// Package scheduler turns cron schedules into queued jobs. Each enabled
// Schedule row carries an expression and a message body; when its next run
// comes due, the loop creates a conversation, enqueues a source=schedule
// job, and stores the body as the job's user message, so scheduled work
// enters the pipeline exactly the way a user request does.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/schedule"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/services"
)

// Service is the background loop that fires due schedules.
type Service struct {
	cfg    config.SchedulerConfig
	client *ent.Client
	queue  *queue.JobQueue
	convs  *services.ConversationService

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a scheduler over the given stores.
func NewService(cfg config.SchedulerConfig, client *ent.Client, q *queue.JobQueue, convs *services.ConversationService) *Service {
	return &Service{
		cfg:    cfg,
		client: client,
		queue:  q,
		convs:  convs,
	}
}

// Start launches the dispatch loop. Disabled schedulers stay stopped.
func (s *Service) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		slog.Info("Scheduler disabled")
		return
	}
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Scheduler started", "tick_interval", s.cfg.TickInterval)
}

// Stop signals the loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Scheduler stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.dispatchDue(ctx)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue(ctx)
		}
	}
}

// Create validates the expression, computes the first run, and stores the
// schedule enabled.
func (s *Service) Create(ctx context.Context, name, expr, content string) (*ent.Schedule, error) {
	if name == "" {
		return nil, services.NewValidationError("name", "required")
	}
	if content == "" {
		return nil, services.NewValidationError("content", "required")
	}
	spec, err := ParseSpec(expr)
	if err != nil {
		return nil, err
	}
	next, err := spec.Next(time.Now())
	if err != nil {
		return nil, err
	}

	row, err := s.client.Schedule.Create().
		SetID(uuid.New().String()).
		SetName(name).
		SetCronExpr(expr).
		SetContent(content).
		SetNextRunAt(next).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	slog.Info("Schedule created", "schedule_id", row.ID, "name", name, "cron", expr, "next_run_at", next)
	return row, nil
}

// SetEnabled flips a schedule on or off. Re-enabling recomputes the next
// run so a long-disabled schedule does not fire immediately for every
// missed slot.
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) error {
	update := s.client.Schedule.UpdateOneID(id).SetEnabled(enabled)
	if enabled {
		row, err := s.client.Schedule.Get(ctx, id)
		if err != nil {
			if ent.IsNotFound(err) {
				return fmt.Errorf("schedule %s: %w", id, services.ErrNotFound)
			}
			return fmt.Errorf("failed to load schedule: %w", err)
		}
		spec, err := ParseSpec(row.CronExpr)
		if err != nil {
			return err
		}
		next, err := spec.Next(time.Now())
		if err != nil {
			return err
		}
		update = update.SetNextRunAt(next)
	}
	if err := update.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return fmt.Errorf("schedule %s: %w", id, services.ErrNotFound)
		}
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

// dispatchDue fires every enabled schedule whose next run has arrived.
func (s *Service) dispatchDue(ctx context.Context) {
	now := time.Now()
	rows, err := s.client.Schedule.Query().
		Where(
			schedule.Enabled(true),
			schedule.NextRunAtLTE(now),
		).
		All(ctx)
	if err != nil {
		slog.Error("Scheduler: failed to load due schedules", "error", err)
		return
	}
	for _, row := range rows {
		s.fire(ctx, row, now)
	}
}

// fire runs one due schedule. Advancing next_run_at is a conditional write
// on the value this replica read, so exactly one process owns each run;
// missed slots collapse into the single run that fires once the loop is
// back.
func (s *Service) fire(ctx context.Context, row *ent.Schedule, now time.Time) {
	spec, err := ParseSpec(row.CronExpr)
	var next time.Time
	if err == nil {
		next, err = spec.Next(now)
	}
	if err != nil {
		slog.Error("Scheduler: disabling unsatisfiable schedule",
			"schedule_id", row.ID, "name", row.Name, "error", err)
		if derr := s.client.Schedule.UpdateOneID(row.ID).SetEnabled(false).Exec(ctx); derr != nil {
			slog.Error("Scheduler: failed to disable schedule", "schedule_id", row.ID, "error", derr)
		}
		return
	}

	n, err := s.client.Schedule.Update().
		Where(
			schedule.IDEQ(row.ID),
			schedule.NextRunAtEQ(row.NextRunAt),
		).
		SetNextRunAt(next).
		SetLastRunAt(now).
		Save(ctx)
	if err != nil {
		slog.Error("Scheduler: failed to advance schedule", "schedule_id", row.ID, "error", err)
		return
	}
	if n == 0 {
		// Another replica won this run.
		return
	}

	conv, err := s.convs.CreateConversation(ctx, row.Name)
	if err != nil {
		slog.Error("Scheduler: failed to create conversation", "schedule_id", row.ID, "error", err)
		return
	}
	jobRow, err := s.queue.Enqueue(ctx, models.NewJob{
		ConversationID: conv.ID,
		Source:         models.SourceSchedule,
	})
	if err != nil {
		slog.Error("Scheduler: failed to enqueue job", "schedule_id", row.ID, "error", err)
		return
	}
	if _, err := s.convs.AddMessage(ctx, models.NewMessage{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        row.Content,
		JobID:          jobRow.ID,
	}); err != nil {
		// The job will fail at ingest; the retry path handles cleanup.
		slog.Error("Scheduler: failed to store schedule message",
			"schedule_id", row.ID, "job_id", jobRow.ID, "error", err)
		return
	}

	slog.Info("Schedule fired",
		"schedule_id", row.ID, "name", row.Name, "job_id", jobRow.ID, "next_run_at", next)
}
