package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
)

// Worker status values reported through WorkerHealth.
const (
	WorkerStatusIdle    = "idle"
	WorkerStatusWorking = "working"
)

// JobRegistry is the subset of Pool used by Worker to expose the running
// job's cancel function for API-triggered cancellation.
type JobRegistry interface {
	RegisterJob(jobID string, cancel context.CancelFunc)
	UnregisterJob(jobID string)
}

// Worker is a single queue worker that claims jobs and hands them to the
// processor. The processor drives all post-claim transitions; the worker
// supplies the claim, the heartbeat, cancellation plumbing, and a terminal
// safety net.
type Worker struct {
	id        string
	queue     *JobQueue
	cfg       config.QueueConfig
	processor Processor
	pool      JobRegistry
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	// Health tracking
	mu            sync.RWMutex
	status        string
	currentJobID  string
	jobsProcessed int
	lastActivity  time.Time
}

// NewWorker creates a queue worker. The worker id doubles as the claimed
// job's worker_id column, so it must be unique across live replicas.
func NewWorker(id string, q *JobQueue, cfg config.QueueConfig, processor Processor, pool JobRegistry) *Worker {
	return &Worker{
		id:           id,
		queue:        q,
		cfg:          cfg,
		processor:    processor,
		pool:         pool,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call Stop multiple times.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the current worker health status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:            w.id,
		Status:        w.status,
		CurrentJobID:  w.currentJobID,
		JobsProcessed: w.jobsProcessed,
		LastActivity:  w.lastActivity,
	}
}

// run is the main worker loop.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id)
	log.Info("Worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("Worker shutting down")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, ErrNoJobsAvailable) {
					w.idle(w.pollInterval())
					continue
				}
				log.Error("Error processing job", "error", err)
				w.idle(time.Second) // Brief backoff on error
			}
		}
	}
}

// idle waits for the given duration, a wake signal from Enqueue, or stop.
func (w *Worker) idle(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.stopCh:
	case <-w.queue.Wake():
	case <-timer.C:
	}
}

// pollAndProcess claims the next job and runs the processor on it.
func (w *Worker) pollAndProcess(ctx context.Context) error {
	claimed, err := w.queue.Claim(ctx, w.id)
	if err != nil {
		return err
	}

	log := slog.With("job_id", claimed.ID, "worker_id", w.id)
	log.Info("Job claimed", "source", claimed.Source, "retries", claimed.Retries)

	w.setStatus(WorkerStatusWorking, claimed.ID)
	defer w.setStatus(WorkerStatusIdle, "")

	// Job context with timeout. The registry exposes the cancel function so
	// the gateway's cancel endpoint can interrupt a running pipeline.
	jobCtx, cancelJob := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancelJob()
	w.pool.RegisterJob(claimed.ID, cancelJob)
	defer w.pool.UnregisterJob(claimed.ID)

	// Heartbeat keeps updated_at fresh so the watchdog leaves this job
	// alone while the pipeline runs (including approval waits).
	heartbeatCtx, cancelHeartbeat := context.WithCancel(jobCtx)
	go w.runHeartbeat(heartbeatCtx, claimed.ID)

	outcome := w.processor.Process(jobCtx, claimed)

	cancelHeartbeat()

	// Terminal writes use a background context: jobCtx may already be
	// cancelled or past its deadline.
	w.ensureTerminal(context.Background(), jobCtx, claimed.ID, outcome)

	w.mu.Lock()
	w.jobsProcessed++
	w.mu.Unlock()

	log.Info("Job processing complete", "status", outcome.Status)
	return nil
}

// ensureTerminal is the safety net run after every Process call: if the row
// is still in a live state, force it to a terminal one so no job can leak a
// claim. In the normal path the processor already landed the job and this is
// a single read.
func (w *Worker) ensureTerminal(ctx context.Context, jobCtx context.Context, jobID string, outcome Outcome) {
	row, err := w.queue.Get(ctx, jobID)
	if err != nil {
		slog.Error("Failed to verify terminal status", "job_id", jobID, "error", err)
		return
	}
	if IsTerminal(row.Status) {
		return
	}

	ae := outcome.Error
	switch {
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		ae = models.NewAgentError(models.CodeTimeout,
			fmt.Sprintf("job timed out after %v", w.cfg.JobTimeout))
	case errors.Is(jobCtx.Err(), context.Canceled):
		// Worker shutdown mid-job. User cancellations land the row in
		// cancelled before the context fires, so they never reach here.
		ae = models.NewAgentError(models.CodeDispatch, "worker stopped before job finished")
	case ae == nil:
		ae = models.NewAgentError(models.CodeDispatch,
			"pipeline returned without reaching a terminal state")
	}

	slog.Warn("Forcing job to terminal state",
		"job_id", jobID, "stuck_in", row.Status, "code", ae.Code)

	ok, err := w.queue.Fail(ctx, jobID, row.Status, ae)
	if err != nil {
		slog.Error("Safety-net fail transition errored", "job_id", jobID, "error", err)
		return
	}
	if !ok {
		// Lost the CAS: the watchdog or a cancel got there first.
		slog.Info("Safety-net transition superseded", "job_id", jobID)
	}
}

// runHeartbeat periodically refreshes updated_at for watchdog liveness.
func (w *Worker) runHeartbeat(ctx context.Context, jobID string) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.queue.Heartbeat(ctx, jobID); err != nil {
				slog.Warn("Heartbeat update failed", "job_id", jobID, "error", err)
			}
		}
	}
}

// pollInterval returns the poll duration with jitter.
func (w *Worker) pollInterval() time.Duration {
	base := w.cfg.PollInterval
	jitter := w.cfg.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	// Range: [base - jitter, base + jitter]
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

// setStatus updates the worker's health tracking state.
func (w *Worker) setStatus(status string, jobID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentJobID = jobID
	w.lastActivity = time.Now()
}
