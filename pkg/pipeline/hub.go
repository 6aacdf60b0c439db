package pipeline

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// pendingResolutionTTL bounds how long an early Resolve is held for a worker
// that has not reached its Await yet. The approve endpoint only resolves
// after its CAS on a row this worker wrote moments ago, so the window is
// tiny; the TTL just keeps abandoned entries from accumulating.
const pendingResolutionTTL = time.Minute

// ApprovalHub hands the gateway's approval signal to the worker parked on
// the job. The queue row is the durable source of truth (the approve
// endpoint moves it awaiting_approval → executing before resolving); the hub
// only wakes the in-process waiter so it can continue without polling.
type ApprovalHub struct {
	mu      sync.Mutex
	waiters map[string]chan struct{}
	pending *gocache.Cache
}

// NewApprovalHub creates an empty hub.
func NewApprovalHub() *ApprovalHub {
	return &ApprovalHub{
		waiters: make(map[string]chan struct{}),
		pending: gocache.New(pendingResolutionTTL, 5*time.Minute),
	}
}

// Await blocks until the job's approval is resolved or ctx ends. A
// resolution that arrived before the call returns immediately.
func (h *ApprovalHub) Await(ctx context.Context, jobID string) error {
	h.mu.Lock()
	if _, ok := h.pending.Get(jobID); ok {
		h.pending.Delete(jobID)
		h.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	h.waiters[jobID] = ch
	h.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		h.mu.Lock()
		delete(h.waiters, jobID)
		h.mu.Unlock()
		return ctx.Err()
	}
}

// Resolve wakes the waiter parked on jobID and reports whether one was
// present. Without a waiter the resolution is held briefly for a worker
// still between its awaiting_approval write and its Await.
func (h *ApprovalHub) Resolve(jobID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.waiters[jobID]; ok {
		close(ch)
		delete(h.waiters, jobID)
		return true
	}
	h.pending.SetDefault(jobID, time.Now())
	return false
}

// Waiting returns how many jobs are currently parked on the hub.
func (h *ApprovalHub) Waiting() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.waiters)
}
