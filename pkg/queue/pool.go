package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
)

// Pool manages the queue workers and the watchdog on one node.
type Pool struct {
	nodeID    string
	queue     *JobQueue
	cfg       config.QueueConfig
	processor Processor
	metrics   *metrics.Metrics
	workers   []*Worker
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	// Job cancel registry: job_id → cancel function
	activeJobs map[string]context.CancelFunc
	mu         sync.RWMutex
	started    bool

	// Watchdog state
	watchdog watchdogState
}

// NewPool creates a worker pool. nodeID must be stable across restarts of
// the same node (hostname works); worker IDs derive from it.
func NewPool(nodeID string, q *JobQueue, cfg config.QueueConfig, processor Processor, m *metrics.Metrics) *Pool {
	return &Pool{
		nodeID:     nodeID,
		queue:      q,
		cfg:        cfg,
		processor:  processor,
		metrics:    m,
		workers:    make([]*Worker, 0, cfg.WorkerCount),
		stopCh:     make(chan struct{}),
		activeJobs: make(map[string]context.CancelFunc),
	}
}

// Start spawns worker goroutines and the watchdog background task.
// It is safe to call multiple times; subsequent calls are no-ops.
func (p *Pool) Start(ctx context.Context) error {
	if p.started {
		slog.Warn("Worker pool already started, ignoring duplicate Start call", "node_id", p.nodeID)
		return nil
	}
	p.started = true

	slog.Info("Starting worker pool", "node_id", p.nodeID, "worker_count", p.cfg.WorkerCount)

	for i := 0; i < p.cfg.WorkerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", p.nodeID, i)
		worker := NewWorker(workerID, p.queue, p.cfg, p.processor, p)
		p.workers = append(p.workers, worker)
		worker.Start(ctx)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runWatchdog(ctx)
	}()

	slog.Info("Worker pool started")
	return nil
}

// Stop shuts the pool down in two phases: workers stop claiming and get
// GracefulShutdownTimeout to finish in-flight jobs, then any still-running
// job contexts are cancelled and their jobs re-enqueued through the
// worker safety net.
func (p *Pool) Stop() {
	slog.Info("Stopping worker pool gracefully")

	active := p.activeJobIDs()
	if len(active) > 0 {
		slog.Info("Waiting for in-flight jobs to complete",
			"count", len(active),
			"job_ids", active,
			"timeout", p.cfg.GracefulShutdownTimeout)
	}

	done := make(chan struct{})
	go func() {
		for _, worker := range p.workers {
			worker.Stop()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(p.cfg.GracefulShutdownTimeout):
		// Phase 2: give up waiting and cancel what is still running. The
		// workers' safety nets fail the jobs as retriable, so they re-enter
		// the queue for another node or the next boot.
		remaining := p.activeJobIDs()
		slog.Warn("Graceful shutdown timeout exceeded, cancelling in-flight jobs",
			"count", len(remaining), "job_ids", remaining)
		p.mu.RLock()
		for _, cancel := range p.activeJobs {
			cancel()
		}
		p.mu.RUnlock()
		<-done
	}

	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	slog.Info("Worker pool stopped")
}

// RegisterJob stores a cancel function for manual cancellation.
func (p *Pool) RegisterJob(jobID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activeJobs[jobID] = cancel
}

// UnregisterJob removes the cancel function when processing ends.
func (p *Pool) UnregisterJob(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.activeJobs, jobID)
}

// CancelJob triggers context cancellation for a job running on this node.
// Returns true if the job was found here. The caller is responsible for the
// status transition; this only interrupts the pipeline.
func (p *Pool) CancelJob(jobID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cancel, ok := p.activeJobs[jobID]; ok {
		cancel()
		return true
	}
	return false
}

// LiveWorkers returns the worker IDs owned by this pool. The watchdog never
// reclaims jobs held by a live local worker even when heartbeats lag.
func (p *Pool) LiveWorkers() []string {
	ids := make([]string, len(p.workers))
	for i, w := range p.workers {
		ids[i] = w.id
	}
	return ids
}

// Health returns the current health status of the pool.
func (p *Pool) Health() *PoolHealth {
	ctx := context.Background()

	queueDepth, errQ := p.queue.Depth(ctx)
	if errQ != nil {
		slog.Error("Failed to query queue depth for health check",
			"node_id", p.nodeID, "error", errQ)
	}

	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, worker := range p.workers {
		stats := worker.Health()
		workerStats[i] = stats
		if stats.Status == WorkerStatusWorking {
			activeWorkers++
		}
	}

	dbHealthy := errQ == nil
	isHealthy := len(p.workers) > 0 && dbHealthy

	p.watchdog.mu.Lock()
	lastScan := p.watchdog.lastScan
	recovered := p.watchdog.recovered
	p.watchdog.mu.Unlock()

	var dbError string
	if errQ != nil {
		dbError = fmt.Sprintf("queue depth query failed: %v", errQ)
	}

	return &PoolHealth{
		IsHealthy:     isHealthy,
		DBReachable:   dbHealthy,
		DBError:       dbError,
		NodeID:        p.nodeID,
		ActiveWorkers: activeWorkers,
		TotalWorkers:  len(p.workers),
		QueueDepth:    queueDepth,
		WorkerStats:   workerStats,
		LastWatchdog:  lastScan,
		JobsRecovered: recovered,
	}
}

// activeJobIDs returns IDs of currently processing jobs (for logging).
func (p *Pool) activeJobIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.activeJobs))
	for id := range p.activeJobs {
		ids = append(ids, id)
	}
	return ids
}
