package queue

import (
	"github.com/axisworks/axis/ent/job"
)

// legalEdges is the job state machine. A transition is allowed iff its edge
// appears here; everything else fails the CAS with ERR_INVALID_TRANSITION
// semantics (Transition returns false).
//
// Two edges extend the forward pipeline: queued → cancelled lets the gateway
// cancel work nobody has claimed yet, and failed → queued is the retry edge
// taken when a retriable failure still has budget. There are no self-loops:
// transition(s, s) is always rejected.
var legalEdges = map[job.Status][]job.Status{
	job.StatusQueued: {
		job.StatusPlanning,
		job.StatusCancelled,
	},
	job.StatusPlanning: {
		job.StatusValidating,
		job.StatusCompleted,
		job.StatusFailed,
		job.StatusCancelled,
	},
	job.StatusValidating: {
		job.StatusExecuting,
		job.StatusAwaitingApproval,
		job.StatusFailed,
		job.StatusCancelled,
	},
	job.StatusAwaitingApproval: {
		job.StatusExecuting,
		job.StatusCancelled,
		job.StatusFailed,
	},
	job.StatusExecuting: {
		job.StatusCompleted,
		job.StatusFailed,
		job.StatusCancelled,
	},
	job.StatusFailed: {
		job.StatusQueued, // retry re-enqueue only
	},
	job.StatusCompleted: nil,
	job.StatusCancelled: nil,
}

// claimedStatuses are the states during which a worker owns the job; exactly
// these states carry a non-null worker_id and claimed_at.
var claimedStatuses = []job.Status{
	job.StatusPlanning,
	job.StatusValidating,
	job.StatusAwaitingApproval,
	job.StatusExecuting,
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to job.Status) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends the pipeline. Failed counts as
// terminal here; retriable failures leave it again through the retry edge.
func IsTerminal(s job.Status) bool {
	switch s {
	case job.StatusCompleted, job.StatusFailed, job.StatusCancelled:
		return true
	}
	return false
}

// IsClaimed reports whether a status implies a claiming worker.
func IsClaimed(s job.Status) bool {
	for _, c := range claimedStatuses {
		if c == s {
			return true
		}
	}
	return false
}
