// Package queue provides the durable job queue, its state machine, and the
// worker pool that drives claimed jobs through the pipeline.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/models"
)

// Sentinel errors for queue operations.
var (
	// ErrNoJobsAvailable indicates no claimable jobs are in the queue.
	ErrNoJobsAvailable = errors.New("no jobs available")

	// ErrJobNotFound indicates the referenced job row does not exist.
	ErrJobNotFound = errors.New("job not found")
)

// Processor runs the pipeline on a claimed job.
//
// The processor owns every state transition after the claim: it moves the
// job through planning → validating → (awaiting_approval) → executing and
// into a terminal state, all through the queue's CAS interface. The worker
// only handles claiming, the heartbeat, cancellation plumbing, and a
// safety-net terminal write if the processor ever returns with the job
// still live.
type Processor interface {
	Process(ctx context.Context, j *ent.Job) Outcome
}

// Outcome is the processor's report of where the job ended up.
type Outcome struct {
	// Status is the terminal status the processor transitioned the job to.
	Status job.Status

	// Error carries the structured failure when Status is failed.
	Error *models.AgentError
}

// StatusListener receives one notification per committed transition, in
// commit order. The initial enqueue is delivered with an empty `from`.
// Listeners run synchronously on the transitioning goroutine; slow work
// must be handed off.
type StatusListener func(jobID string, from, to job.Status, row *ent.Job)

// TransitionPatch carries the optional row updates applied together with a
// status change. Nil maps and empty strings leave the column untouched.
type TransitionPatch struct {
	Plan          map[string]any
	Validation    map[string]any
	Result        map[string]any
	Error         *models.AgentError
	ApprovalNonce string
}

// PoolHealth contains health information for the entire worker pool.
type PoolHealth struct {
	IsHealthy     bool           `json:"is_healthy"`
	DBReachable   bool           `json:"db_reachable"`
	DBError       string         `json:"db_error,omitempty"`
	NodeID        string         `json:"node_id"`
	ActiveWorkers int            `json:"active_workers"`
	TotalWorkers  int            `json:"total_workers"`
	QueueDepth    int            `json:"queue_depth"`
	WorkerStats   []WorkerHealth `json:"worker_stats"`
	LastWatchdog  time.Time      `json:"last_watchdog_scan"`
	JobsRecovered int            `json:"jobs_recovered"`
}

// WorkerHealth contains health information for a single worker.
type WorkerHealth struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"` // "idle" or "working"
	CurrentJobID  string    `json:"current_job_id,omitempty"`
	JobsProcessed int       `json:"jobs_processed"`
	LastActivity  time.Time `json:"last_activity"`
}
