package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
)

// intTestQueueConfig returns a queue config suitable for integration tests.
func intTestQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		WorkerCount:             2,
		JobTimeout:              30 * time.Second,
		MaxRetries:              3,
		PollInterval:            100 * time.Millisecond,
		PollIntervalJitter:      0,
		GracefulShutdownTimeout: 10 * time.Second,
	}
}

func newTestQueue(t *testing.T) (*JobQueue, *ent.Client) {
	t.Helper()
	dbClient := testdb.NewTestClient(t)
	return NewJobQueue(dbClient.Client, intTestQueueConfig(), nil), dbClient.Client
}

// awaitCondition polls until condition returns true or the timeout elapses.
func awaitCondition(t *testing.T, timeout, interval time.Duration, msg string, condition func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out: %s", msg)
		default:
			if condition() {
				return
			}
			time.Sleep(interval)
		}
	}
}

func TestEnqueueAndClaim(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{Source: models.SourceUser})
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, row.Status)
	assert.Equal(t, 0, row.Version)
	assert.Nil(t, row.WorkerID)

	claimed, err := q.Claim(ctx, "node-worker-0")
	require.NoError(t, err)
	assert.Equal(t, row.ID, claimed.ID)
	assert.Equal(t, job.StatusPlanning, claimed.Status)
	assert.Equal(t, 1, claimed.Version)
	require.NotNil(t, claimed.WorkerID)
	assert.Equal(t, "node-worker-0", *claimed.WorkerID)
	assert.NotNil(t, claimed.ClaimedAt)

	// Queue is now empty for claimers.
	_, err = q.Claim(ctx, "node-worker-1")
	assert.ErrorIs(t, err, ErrNoJobsAvailable)
}

func TestClaimIsOldestFirst(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)

	claimed, err := q.Claim(ctx, "w0")
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID, "oldest job should be claimed first")
}

func TestClaimHonorsNotBefore(t *testing.T) {
	q, client := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)

	// Push the job behind a future backoff gate.
	err = client.Job.UpdateOneID(row.ID).
		SetNotBefore(time.Now().Add(time.Hour)).
		Exec(ctx)
	require.NoError(t, err)

	_, err = q.Claim(ctx, "w0")
	assert.ErrorIs(t, err, ErrNoJobsAvailable, "gated job must not be claimable")

	err = client.Job.UpdateOneID(row.ID).
		SetNotBefore(time.Now().Add(-time.Second)).
		Exec(ctx)
	require.NoError(t, err)

	claimed, err := q.Claim(ctx, "w0")
	require.NoError(t, err)
	assert.Equal(t, row.ID, claimed.ID)
}

func TestConcurrentClaimsDistinctJobs(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	const jobs = 5
	for i := 0; i < jobs; i++ {
		_, err := q.Enqueue(ctx, models.NewJob{})
		require.NoError(t, err)
	}

	var mu sync.Mutex
	claimed := make(map[string]string, jobs) // job id → worker id
	var wg sync.WaitGroup
	errCh := make(chan error, jobs)

	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			row, err := q.Claim(ctx, fmt.Sprintf("w%d", n))
			if err != nil {
				errCh <- err
				return
			}
			mu.Lock()
			claimed[row.ID] = fmt.Sprintf("w%d", n)
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.Len(t, claimed, jobs, "every claim should win a distinct job")

	_, err := q.Claim(ctx, "w-extra")
	assert.ErrorIs(t, err, ErrNoJobsAvailable)
}

func TestTransitionCAS(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)

	ok, err := q.Transition(ctx, row.ID, job.StatusPlanning, job.StatusValidating, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same edge again: the job already moved on, so the CAS loses.
	ok, err = q.Transition(ctx, row.ID, job.StatusPlanning, job.StatusValidating, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Illegal edge: rejected before touching the database.
	ok, err = q.Transition(ctx, row.ID, job.StatusValidating, job.StatusQueued, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusValidating, current.Status)
	assert.Equal(t, 2, current.Version, "claim and transition each bump the version")
}

func TestTransitionTerminalClearsClaim(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)

	ok, err := q.Transition(ctx, row.ID, job.StatusPlanning, job.StatusCompleted, &TransitionPatch{
		Result: map[string]any{"text": "done"},
	})
	require.NoError(t, err)
	require.True(t, ok)

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, final.Status)
	assert.Nil(t, final.WorkerID, "terminal jobs must not hold a claim")
	assert.Nil(t, final.ClaimedAt)
	assert.NotNil(t, final.CompletedAt)
	assert.Equal(t, "done", final.Result["text"])
}

func TestFailRetriableRequeues(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)

	before := time.Now()
	ok, err := q.Fail(ctx, row.ID, job.StatusPlanning,
		models.NewAgentError(models.CodeScoutUnreachable, "planner offline"))
	require.NoError(t, err)
	require.True(t, ok)

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, final.Status, "retriable failure should re-enqueue")
	assert.Equal(t, 1, final.Retries)
	assert.Nil(t, final.WorkerID)
	assert.Nil(t, final.ClaimedAt)
	require.NotNil(t, final.NotBefore, "requeued job must carry a backoff gate")
	// First retry backs off ~1s ± 10%.
	assert.WithinDuration(t, before.Add(time.Second), *final.NotBefore, 500*time.Millisecond)
	require.NotNil(t, final.JobError)
	assert.Equal(t, models.CodeScoutUnreachable, final.JobError["code"])
}

func TestFailNonRetriableStaysFailed(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)

	ok, err := q.Fail(ctx, row.ID, job.StatusPlanning,
		models.NewAgentError(models.CodePlanRejected, "sentinel rejected the plan"))
	require.NoError(t, err)
	require.True(t, ok)

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, final.Status)
	assert.Equal(t, 0, final.Retries)
	assert.NotNil(t, final.CompletedAt)
	assert.Equal(t, models.CodePlanRejected, final.JobError["code"])
	assert.Equal(t, false, final.JobError["retriable"])
}

func TestFailExhaustedRetryBudgetStaysFailed(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	cfg := intTestQueueConfig()
	cfg.MaxRetries = 1
	q := NewJobQueue(dbClient.Client, cfg, nil)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)

	// First failure: requeued with retries=1.
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)
	ok, err := q.Fail(ctx, row.ID, job.StatusPlanning,
		models.NewAgentError(models.CodeTimeout, "slow gear"))
	require.NoError(t, err)
	require.True(t, ok)

	mid, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	require.Equal(t, job.StatusQueued, mid.Status)
	require.Equal(t, 1, mid.Retries)

	// Clear the backoff gate so the next claim sees it immediately.
	err = dbClient.Client.Job.UpdateOneID(row.ID).ClearNotBefore().Exec(ctx)
	require.NoError(t, err)

	// Second failure: budget exhausted, stays failed.
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)
	ok, err = q.Fail(ctx, row.ID, job.StatusPlanning,
		models.NewAgentError(models.CodeTimeout, "slow gear"))
	require.NoError(t, err)
	require.True(t, ok)

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, final.Status)
	assert.Equal(t, 1, final.Retries)
}

func TestCancelQueuedJob(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)

	ok, err := q.Cancel(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCancelled, final.Status)
	assert.NotNil(t, final.CompletedAt)

	// Cancelling a terminal job is a no-op.
	ok, err = q.Cancel(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancelClaimedJobClearsWorker(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)

	ok, err := q.Cancel(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCancelled, final.Status)
	assert.Nil(t, final.WorkerID)
	assert.Nil(t, final.ClaimedAt)
}

func TestHeartbeatBumpsVersion(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	claimed, err := q.Claim(ctx, "w0")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Heartbeat(ctx, row.ID))

	after, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, claimed.Version+1, after.Version, "heartbeat is a write, writes bump the version")
	assert.True(t, after.UpdatedAt.After(claimed.UpdatedAt))

	// Terminal jobs are not touched.
	ok, err := q.Transition(ctx, row.ID, job.StatusPlanning, job.StatusCompleted, nil)
	require.NoError(t, err)
	require.True(t, ok)
	done, err := q.Get(ctx, row.ID)
	require.NoError(t, err)

	require.NoError(t, q.Heartbeat(ctx, row.ID))
	same, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, done.Version, same.Version)
}

func TestStatusListenerObservesCommitOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	var mu sync.Mutex
	var edges []string
	q.OnStatusChange(func(jobID string, from, to job.Status, row *ent.Job) {
		mu.Lock()
		edges = append(edges, fmt.Sprintf("%s→%s", from, to))
		mu.Unlock()
	})

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "w0")
	require.NoError(t, err)
	for _, step := range []struct{ from, to job.Status }{
		{job.StatusPlanning, job.StatusValidating},
		{job.StatusValidating, job.StatusExecuting},
		{job.StatusExecuting, job.StatusCompleted},
	} {
		ok, err := q.Transition(ctx, row.ID, step.from, step.to, nil)
		require.NoError(t, err)
		require.True(t, ok)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"→queued",
		"queued→planning",
		"planning→validating",
		"validating→executing",
		"executing→completed",
	}, edges)
}

func TestWatchdogRecoversStaleJob(t *testing.T) {
	q, client := newTestQueue(t)
	ctx := context.Background()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "dead-node-worker-0")
	require.NoError(t, err)

	// Backdate the heartbeat past the job timeout.
	err = client.Job.UpdateOneID(row.ID).
		SetUpdatedAt(time.Now().Add(-time.Minute)).
		Exec(ctx)
	require.NoError(t, err)

	pool := NewPool("live-node", q, intTestQueueConfig(), nil, nil)
	require.NoError(t, pool.scanStaleJobs(ctx))

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, final.Status, "watchdog failure is retriable, job re-enqueues")
	assert.Equal(t, 1, final.Retries)
	assert.Nil(t, final.WorkerID)
	assert.Equal(t, models.CodeWatchdogTimeout, final.JobError["code"])

	health := pool.Health()
	assert.Equal(t, 1, health.JobsRecovered)
	assert.False(t, health.LastWatchdog.IsZero())
}

func TestWatchdogSkipsLiveLocalWorkers(t *testing.T) {
	q, client := newTestQueue(t)
	ctx := context.Background()
	cfg := intTestQueueConfig()

	pool := NewPool("live-node", q, cfg, nil, nil)
	pool.workers = append(pool.workers, NewWorker("live-node-worker-0", q, cfg, nil, pool))

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "live-node-worker-0")
	require.NoError(t, err)

	// Heartbeat lag alone must not reclaim a live local worker's job.
	err = client.Job.UpdateOneID(row.ID).
		SetUpdatedAt(time.Now().Add(-time.Minute)).
		Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, pool.scanStaleJobs(ctx))

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPlanning, final.Status)
	require.NotNil(t, final.WorkerID)
	assert.Equal(t, "live-node-worker-0", *final.WorkerID)
}

func TestRecoverStartupOrphans(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	mine, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "node-a-worker-0")
	require.NoError(t, err)

	theirs, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)
	_, err = q.Claim(ctx, "node-b-worker-0")
	require.NoError(t, err)

	n, err := q.RecoverStartupOrphans(ctx, "node-a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recovered, err := q.Get(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, recovered.Status)
	assert.Equal(t, 1, recovered.Retries)

	untouched, err := q.Get(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPlanning, untouched.Status, "other replicas keep their claims")
}

// scriptedProcessor drives each claimed job with the supplied function.
type scriptedProcessor struct {
	fn func(ctx context.Context, j *ent.Job) Outcome
}

func (p *scriptedProcessor) Process(ctx context.Context, j *ent.Job) Outcome {
	return p.fn(ctx, j)
}

func TestPoolWorkersProcessJobs(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	proc := &scriptedProcessor{fn: func(ctx context.Context, j *ent.Job) Outcome {
		for _, step := range []struct{ from, to job.Status }{
			{job.StatusPlanning, job.StatusValidating},
			{job.StatusValidating, job.StatusExecuting},
			{job.StatusExecuting, job.StatusCompleted},
		} {
			ok, err := q.Transition(ctx, j.ID, step.from, step.to, nil)
			if err != nil || !ok {
				return Outcome{Status: job.StatusFailed}
			}
		}
		return Outcome{Status: job.StatusCompleted}
	}}

	pool := NewPool("it-node", q, intTestQueueConfig(), proc, nil)
	require.NoError(t, pool.Start(ctx))
	defer pool.Stop()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		row, err := q.Enqueue(ctx, models.NewJob{})
		require.NoError(t, err)
		ids = append(ids, row.ID)
	}

	awaitCondition(t, 10*time.Second, 50*time.Millisecond, "jobs should complete", func() bool {
		for _, id := range ids {
			row, err := q.Get(ctx, id)
			if err != nil || row.Status != job.StatusCompleted {
				return false
			}
		}
		return true
	})
}

func TestWorkerSafetyNetFailsStuckJob(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	cfg := intTestQueueConfig()
	cfg.MaxRetries = 0 // keep the safety-net failure terminal for assertion
	q := NewJobQueue(dbClient.Client, cfg, nil)
	ctx := context.Background()

	// Processor that breaks its contract: returns with the job still live.
	proc := &scriptedProcessor{fn: func(ctx context.Context, j *ent.Job) Outcome {
		return Outcome{}
	}}

	pool := NewPool("it-node", q, cfg, proc, nil)
	require.NoError(t, pool.Start(ctx))
	defer pool.Stop()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)

	awaitCondition(t, 10*time.Second, 50*time.Millisecond, "safety net should fail the job", func() bool {
		current, err := q.Get(ctx, row.ID)
		return err == nil && current.Status == job.StatusFailed
	})

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CodeDispatch, final.JobError["code"])
	assert.Nil(t, final.WorkerID)
}

func TestCancelInterruptsRunningJob(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	started := make(chan string, 1)
	proc := &scriptedProcessor{fn: func(ctx context.Context, j *ent.Job) Outcome {
		started <- j.ID
		<-ctx.Done()
		return Outcome{Status: job.StatusCancelled}
	}}

	pool := NewPool("it-node", q, intTestQueueConfig(), proc, nil)
	require.NoError(t, pool.Start(ctx))
	defer pool.Stop()

	row, err := q.Enqueue(ctx, models.NewJob{})
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatal("job was never claimed")
	}

	// Gateway cancel path: status first, then interrupt the pipeline.
	ok, err := q.Cancel(ctx, row.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, pool.CancelJob(row.ID), "job should be running on this node")

	awaitCondition(t, 10*time.Second, 50*time.Millisecond, "worker should release the job", func() bool {
		h := pool.Health()
		return h.ActiveWorkers == 0
	})

	final, err := q.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCancelled, final.Status)
	assert.Nil(t, final.WorkerID)
}
