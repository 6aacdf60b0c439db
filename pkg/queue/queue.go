package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
)

// retryBackoffBase and retryBackoffMax bound the re-enqueue delay:
// base × 2^retries, capped, with ±10% jitter.
const (
	retryBackoffBase = time.Second
	retryBackoffMax  = 5 * time.Minute
)

// JobQueue persists jobs and enforces the state machine. Every status change
// is an optimistic CAS on (id, status, version) inside a transaction, so a
// worker and the watchdog can never both win the same transition.
type JobQueue struct {
	client  *ent.Client
	cfg     config.QueueConfig
	metrics *metrics.Metrics

	// wake is signaled on enqueue so idle workers skip the rest of their
	// poll interval. Buffered: a signal with no one listening is kept for
	// the next sleeper, extra signals are dropped.
	wake chan struct{}

	// notifyMu serializes the commit-and-notify section of every transition
	// so status listeners observe transitions in commit order.
	notifyMu  sync.Mutex
	listeners []StatusListener
}

// NewJobQueue creates a job queue on the given ent client.
func NewJobQueue(client *ent.Client, cfg config.QueueConfig, m *metrics.Metrics) *JobQueue {
	return &JobQueue{
		client:  client,
		cfg:     cfg,
		metrics: m,
		wake:    make(chan struct{}, 1),
	}
}

// OnStatusChange subscribes a listener to committed transitions. Call during
// wiring, before workers start; the listener list is not guarded afterwards.
func (q *JobQueue) OnStatusChange(l StatusListener) {
	q.listeners = append(q.listeners, l)
}

// Wake returns the channel idle workers select on.
func (q *JobQueue) Wake() <-chan struct{} {
	return q.wake
}

// Signal nudges one idle worker. Never blocks.
func (q *JobQueue) Signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Enqueue inserts a new job in state queued with version 0 and wakes a
// worker. Listeners receive the creation with an empty `from` status, in
// commit order with every other notification.
func (q *JobQueue) Enqueue(ctx context.Context, req models.NewJob) (*ent.Job, error) {
	if req.Source == "" {
		req.Source = models.SourceUser
	}

	tx, err := q.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start enqueue transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	create := tx.Job.Create().
		SetID(uuid.New().String()).
		SetSource(job.Source(req.Source)).
		SetStatus(job.StatusQueued).
		SetVersion(0)
	if req.ConversationID != "" {
		create = create.SetConversationID(req.ConversationID)
	}
	if req.ParentJobID != "" {
		create = create.SetParentJobID(req.ParentJobID)
	}

	row, err := create.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	q.notifyMu.Lock()
	if err := tx.Commit(); err != nil {
		q.notifyMu.Unlock()
		return nil, fmt.Errorf("failed to commit enqueue: %w", err)
	}
	q.notify(row.ID, "", job.StatusQueued, row)
	q.notifyMu.Unlock()

	if q.metrics != nil {
		q.metrics.JobsEnqueued.WithLabelValues(string(req.Source)).Inc()
	}
	q.Signal()

	slog.Info("Job enqueued", "job_id", row.ID, "source", req.Source)
	return row, nil
}

// Get returns a job row by id.
func (q *JobQueue) Get(ctx context.Context, id string) (*ent.Job, error) {
	row, err := q.client.Job.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("job %s: %w", id, ErrJobNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return row, nil
}

// Claim atomically takes the oldest ready queued job for workerID: the
// transition queued → planning plus worker_id, claimed_at, and a version
// bump, all in one transaction. Rows whose not_before gate is still in the
// future are skipped (retry backoff). Returns ErrNoJobsAvailable when the
// queue is empty.
func (q *JobQueue) Claim(ctx context.Context, workerID string) (*ent.Job, error) {
	tx, err := q.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// SELECT ... FOR UPDATE SKIP LOCKED, oldest first. Concurrent claimers
	// each lock a different row, so exactly one worker wins each job.
	now := time.Now()
	row, err := tx.Job.Query().
		Where(
			job.StatusEQ(job.StatusQueued),
			job.Or(job.NotBeforeIsNil(), job.NotBeforeLTE(now)),
		).
		Order(ent.Asc(job.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNoJobsAvailable
		}
		return nil, fmt.Errorf("failed to query queued jobs: %w", err)
	}

	// Conditional update on (id, status, version): belt and braces on top
	// of the row lock. Zero rows affected means another writer got there
	// first despite SKIP LOCKED — treat it as an empty queue this round.
	n, err := tx.Job.Update().
		Where(
			job.IDEQ(row.ID),
			job.StatusEQ(job.StatusQueued),
			job.VersionEQ(row.Version),
		).
		SetStatus(job.StatusPlanning).
		SetWorkerID(workerID).
		SetClaimedAt(now).
		SetUpdatedAt(now).
		ClearNotBefore().
		AddVersion(1).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job %s: %w", row.ID, err)
	}
	if n == 0 {
		return nil, ErrNoJobsAvailable
	}

	claimed, err := tx.Job.Get(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload claimed job: %w", err)
	}

	q.notifyMu.Lock()
	if err := tx.Commit(); err != nil {
		q.notifyMu.Unlock()
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	q.notify(claimed.ID, job.StatusQueued, job.StatusPlanning, claimed)
	q.notifyMu.Unlock()

	return claimed, nil
}

// Transition applies from → to with an optional patch. Returns (true, nil)
// when the CAS won, (false, nil) when the job was not in `from`, the edge is
// illegal, or another writer got there first; errors are reserved for
// infrastructure faults. Listeners fire after commit, in commit order.
func (q *JobQueue) Transition(ctx context.Context, jobID string, from, to job.Status, patch *TransitionPatch) (bool, error) {
	if !CanTransition(from, to) {
		slog.Debug("Illegal transition rejected", "job_id", jobID, "from", from, "to", to)
		return false, nil
	}

	tx, err := q.client.Tx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to start transition transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row, err := tx.Job.Query().
		Where(job.IDEQ(jobID)).
		ForUpdate().
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return false, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return false, fmt.Errorf("failed to load job for transition: %w", err)
	}
	if row.Status != from {
		return false, nil
	}

	now := time.Now()
	update := tx.Job.Update().
		Where(
			job.IDEQ(jobID),
			job.StatusEQ(from),
			job.VersionEQ(row.Version),
		).
		SetStatus(to).
		SetUpdatedAt(now).
		AddVersion(1)

	if patch != nil {
		update = applyPatch(update, patch)
	}
	if IsTerminal(to) {
		update = update.SetCompletedAt(now)
	}
	// claimed_at and worker_id are non-null exactly while a worker owns the
	// job; both clear on the way out of the claimed states.
	if IsClaimed(from) && !IsClaimed(to) {
		update = update.ClearWorkerID().ClearClaimedAt()
	}

	n, err := update.Save(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to apply transition %s → %s: %w", from, to, err)
	}
	if n == 0 {
		return false, nil
	}

	updated, err := tx.Job.Get(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to reload job after transition: %w", err)
	}

	q.notifyMu.Lock()
	if err := tx.Commit(); err != nil {
		q.notifyMu.Unlock()
		return false, fmt.Errorf("failed to commit transition: %w", err)
	}
	q.notify(jobID, from, to, updated)
	q.notifyMu.Unlock()

	if q.metrics != nil {
		q.metrics.JobTransitions.WithLabelValues(string(from), string(to)).Inc()
		if IsTerminal(to) {
			q.metrics.JobDuration.WithLabelValues(string(to)).Observe(now.Sub(updated.CreatedAt).Seconds())
		}
	}

	slog.Info("Job transitioned", "job_id", jobID, "from", from, "to", to, "version", updated.Version)
	return true, nil
}

// Fail transitions from → failed with the structured error, then re-enqueues
// when the error is retriable and retry budget remains. Returns whether the
// failed transition won.
func (q *JobQueue) Fail(ctx context.Context, jobID string, from job.Status, ae *models.AgentError) (bool, error) {
	if ae == nil {
		ae = models.NewAgentError(models.CodeDispatch, "unspecified failure")
	}

	ok, err := q.Transition(ctx, jobID, from, job.StatusFailed, &TransitionPatch{Error: ae})
	if err != nil || !ok {
		return ok, err
	}

	if ae.Retriable {
		if _, err := q.Requeue(ctx, jobID); err != nil {
			slog.Error("Failed to re-enqueue retriable job", "job_id", jobID, "error", err)
		}
	}
	return true, nil
}

// Requeue takes the retry edge failed → queued: retries+1, worker cleared,
// and a not_before backoff gate. Jobs out of retry budget stay failed and
// (false, nil) is returned.
func (q *JobQueue) Requeue(ctx context.Context, jobID string) (bool, error) {
	tx, err := q.client.Tx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to start requeue transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row, err := tx.Job.Query().
		Where(job.IDEQ(jobID)).
		ForUpdate().
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return false, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return false, fmt.Errorf("failed to load job for requeue: %w", err)
	}
	if row.Status != job.StatusFailed || row.Retries >= q.cfg.MaxRetries {
		return false, nil
	}

	now := time.Now()
	n, err := tx.Job.Update().
		Where(
			job.IDEQ(jobID),
			job.StatusEQ(job.StatusFailed),
			job.VersionEQ(row.Version),
		).
		SetStatus(job.StatusQueued).
		AddRetries(1).
		SetNotBefore(now.Add(retryBackoff(row.Retries))).
		SetUpdatedAt(now).
		AddVersion(1).
		ClearCompletedAt().
		Save(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to requeue job: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	updated, err := tx.Job.Get(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to reload requeued job: %w", err)
	}

	q.notifyMu.Lock()
	if err := tx.Commit(); err != nil {
		q.notifyMu.Unlock()
		return false, fmt.Errorf("failed to commit requeue: %w", err)
	}
	q.notify(jobID, job.StatusFailed, job.StatusQueued, updated)
	q.notifyMu.Unlock()

	if q.metrics != nil {
		q.metrics.JobTransitions.WithLabelValues(string(job.StatusFailed), string(job.StatusQueued)).Inc()
	}
	q.Signal()

	slog.Info("Job re-enqueued for retry",
		"job_id", jobID, "retries", updated.Retries, "not_before", updated.NotBefore)
	return true, nil
}

// Cancel attempts <current> → cancelled. Terminal jobs return (false, nil).
// Relaying the cancellation to a claiming worker is the pool's job; callers
// holding a pool should use Pool.CancelJob after a successful Cancel.
func (q *JobQueue) Cancel(ctx context.Context, jobID string) (bool, error) {
	row, err := q.Get(ctx, jobID)
	if err != nil {
		return false, err
	}
	if IsTerminal(row.Status) {
		return false, nil
	}
	return q.Transition(ctx, jobID, row.Status, job.StatusCancelled, nil)
}

// Heartbeat refreshes updated_at (and bumps version — every write does) so
// the watchdog knows the claiming worker is alive. Jobs already in a
// terminal state are left alone.
func (q *JobQueue) Heartbeat(ctx context.Context, jobID string) error {
	_, err := q.client.Job.Update().
		Where(
			job.IDEQ(jobID),
			job.StatusIn(claimedStatuses...),
		).
		SetUpdatedAt(time.Now()).
		AddVersion(1).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to heartbeat job: %w", err)
	}
	return nil
}

// Depth counts claimable jobs.
func (q *JobQueue) Depth(ctx context.Context) (int, error) {
	n, err := q.client.Job.Query().
		Where(job.StatusEQ(job.StatusQueued)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count queued jobs: %w", err)
	}
	return n, nil
}

// notify invokes listeners synchronously. Callers hold notifyMu across
// commit + notify, which is what yields commit-order delivery.
func (q *JobQueue) notify(jobID string, from, to job.Status, row *ent.Job) {
	for _, l := range q.listeners {
		l(jobID, from, to, row)
	}
}

// applyPatch folds the optional row updates into the transition.
func applyPatch(u *ent.JobUpdate, patch *TransitionPatch) *ent.JobUpdate {
	if patch.Plan != nil {
		u = u.SetPlan(patch.Plan)
	}
	if patch.Validation != nil {
		u = u.SetValidation(patch.Validation)
	}
	if patch.Result != nil {
		u = u.SetResult(patch.Result)
	}
	if patch.Error != nil {
		u = u.SetJobError(patch.Error.Map())
	}
	if patch.ApprovalNonce != "" {
		u = u.SetApprovalNonce(patch.ApprovalNonce)
	}
	return u
}

// retryBackoff is 1s × 2^retries capped at 5m, with ±10% jitter.
func retryBackoff(retries int) time.Duration {
	d := retryBackoffBase << uint(retries)
	if d > retryBackoffMax || d <= 0 {
		d = retryBackoffMax
	}
	jitter := time.Duration(float64(d) * 0.1)
	if jitter <= 0 {
		return d
	}
	return d - jitter + time.Duration(rand.Int64N(int64(2*jitter)))
}

// MarshalJSONMap round-trips a typed value into the map shape the JSON job
// columns store.
func MarshalJSONMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal into map: %w", err)
	}
	return out, nil
}
