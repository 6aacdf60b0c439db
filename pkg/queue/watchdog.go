package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/models"
)

// watchdogState tracks watchdog scan metrics (thread-safe).
type watchdogState struct {
	mu        sync.Mutex
	lastScan  time.Time
	recovered int
}

// runWatchdog periodically scans for jobs whose worker stopped heartbeating.
// All nodes run this independently — recovery goes through the same CAS
// transitions as everything else, so concurrent scans are harmless.
func (p *Pool) runWatchdog(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.WatchdogInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.scanStaleJobs(ctx); err != nil {
				slog.Error("Watchdog scan failed", "error", err)
			}
		}
	}
}

// scanStaleJobs fails over claimed jobs with stale heartbeats. Jobs held by
// this pool's own live workers are skipped: a lagging heartbeat on a live
// worker is a slow database, not a dead node.
func (p *Pool) scanStaleJobs(ctx context.Context) error {
	threshold := time.Now().Add(-p.cfg.JobTimeout)

	stale, err := p.queue.StaleJobs(ctx, threshold)
	if err != nil {
		return err
	}

	if depth, err := p.queue.Depth(ctx); err == nil && p.metrics != nil {
		p.metrics.QueueDepth.Set(float64(depth))
	}

	live := make(map[string]struct{}, len(p.workers))
	for _, id := range p.LiveWorkers() {
		live[id] = struct{}{}
	}

	recovered := 0
	for _, row := range stale {
		workerID := ""
		if row.WorkerID != nil {
			workerID = *row.WorkerID
		}
		if _, ok := live[workerID]; ok {
			continue
		}

		ae := models.NewAgentError(models.CodeWatchdogTimeout,
			fmt.Sprintf("no heartbeat from worker %s since %s",
				workerID, row.UpdatedAt.Format(time.RFC3339)))

		ok, err := p.queue.Fail(ctx, row.ID, row.Status, ae)
		if err != nil {
			slog.Error("Failed to recover stale job", "job_id", row.ID, "error", err)
			continue
		}
		if !ok {
			// The owning worker resurfaced or another node's scan won.
			continue
		}

		slog.Warn("Stale job recovered",
			"job_id", row.ID, "worker_id", workerID, "stuck_in", row.Status)
		recovered++
		if p.metrics != nil {
			p.metrics.JobsRecovered.Inc()
		}
	}

	p.watchdog.mu.Lock()
	p.watchdog.lastScan = time.Now()
	p.watchdog.recovered += recovered
	p.watchdog.mu.Unlock()

	return nil
}

// StaleJobs returns claimed jobs whose updated_at predates olderThan.
func (q *JobQueue) StaleJobs(ctx context.Context, olderThan time.Time) ([]*ent.Job, error) {
	rows, err := q.client.Job.Query().
		Where(
			job.StatusIn(claimedStatuses...),
			job.UpdatedAtLT(olderThan),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale jobs: %w", err)
	}
	return rows, nil
}

// RecoverStartupOrphans fails over jobs this node abandoned in a previous
// run. Called once during startup, before the pool begins claiming; only
// rows whose worker_id carries this node's prefix are touched, so healthy
// replicas keep their claims.
func (q *JobQueue) RecoverStartupOrphans(ctx context.Context, nodeID string) (int, error) {
	orphans, err := q.client.Job.Query().
		Where(
			job.StatusIn(claimedStatuses...),
			job.WorkerIDHasPrefix(nodeID+"-worker-"),
		).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query startup orphans: %w", err)
	}

	if len(orphans) == 0 {
		return 0, nil
	}

	slog.Warn("Found startup orphans from previous run",
		"node_id", nodeID, "count", len(orphans))

	recovered := 0
	for _, row := range orphans {
		ae := models.NewAgentError(models.CodeWatchdogTimeout,
			fmt.Sprintf("node %s restarted while job was in flight", nodeID))

		ok, err := q.Fail(ctx, row.ID, row.Status, ae)
		if err != nil {
			slog.Error("Failed to recover startup orphan", "job_id", row.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		slog.Info("Startup orphan recovered", "job_id", row.ID, "stuck_in", row.Status)
		recovered++
		if q.metrics != nil {
			q.metrics.JobsRecovered.Inc()
		}
	}

	return recovered, nil
}
