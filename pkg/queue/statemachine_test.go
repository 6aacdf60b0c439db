package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axisworks/axis/ent/job"
)

func TestCanTransitionLegalEdges(t *testing.T) {
	legal := []struct{ from, to job.Status }{
		{job.StatusQueued, job.StatusPlanning},
		{job.StatusQueued, job.StatusCancelled},
		{job.StatusPlanning, job.StatusValidating},
		{job.StatusPlanning, job.StatusCompleted},
		{job.StatusPlanning, job.StatusFailed},
		{job.StatusPlanning, job.StatusCancelled},
		{job.StatusValidating, job.StatusExecuting},
		{job.StatusValidating, job.StatusAwaitingApproval},
		{job.StatusValidating, job.StatusFailed},
		{job.StatusValidating, job.StatusCancelled},
		{job.StatusAwaitingApproval, job.StatusExecuting},
		{job.StatusAwaitingApproval, job.StatusCancelled},
		{job.StatusAwaitingApproval, job.StatusFailed},
		{job.StatusExecuting, job.StatusCompleted},
		{job.StatusExecuting, job.StatusFailed},
		{job.StatusExecuting, job.StatusCancelled},
		{job.StatusFailed, job.StatusQueued},
	}
	for _, e := range legal {
		assert.True(t, CanTransition(e.from, e.to), "%s → %s should be legal", e.from, e.to)
	}
}

func TestCanTransitionRejectsIllegalEdges(t *testing.T) {
	illegal := []struct{ from, to job.Status }{
		{job.StatusQueued, job.StatusExecuting},
		{job.StatusQueued, job.StatusValidating},
		{job.StatusQueued, job.StatusCompleted},
		{job.StatusPlanning, job.StatusQueued},
		{job.StatusPlanning, job.StatusExecuting},
		{job.StatusPlanning, job.StatusAwaitingApproval},
		{job.StatusValidating, job.StatusPlanning},
		{job.StatusValidating, job.StatusCompleted},
		{job.StatusAwaitingApproval, job.StatusCompleted},
		{job.StatusExecuting, job.StatusQueued},
		{job.StatusExecuting, job.StatusAwaitingApproval},
		{job.StatusCompleted, job.StatusQueued},
		{job.StatusCompleted, job.StatusFailed},
		{job.StatusCancelled, job.StatusQueued},
		{job.StatusFailed, job.StatusPlanning},
	}
	for _, e := range illegal {
		assert.False(t, CanTransition(e.from, e.to), "%s → %s should be illegal", e.from, e.to)
	}
}

func TestCanTransitionRejectsSelfLoops(t *testing.T) {
	all := []job.Status{
		job.StatusQueued, job.StatusPlanning, job.StatusValidating,
		job.StatusAwaitingApproval, job.StatusExecuting,
		job.StatusCompleted, job.StatusFailed, job.StatusCancelled,
	}
	for _, s := range all {
		assert.False(t, CanTransition(s, s), "%s → %s self-loop should be illegal", s, s)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(job.StatusCompleted))
	assert.True(t, IsTerminal(job.StatusFailed))
	assert.True(t, IsTerminal(job.StatusCancelled))

	assert.False(t, IsTerminal(job.StatusQueued))
	assert.False(t, IsTerminal(job.StatusPlanning))
	assert.False(t, IsTerminal(job.StatusValidating))
	assert.False(t, IsTerminal(job.StatusAwaitingApproval))
	assert.False(t, IsTerminal(job.StatusExecuting))
}

func TestIsClaimed(t *testing.T) {
	assert.True(t, IsClaimed(job.StatusPlanning))
	assert.True(t, IsClaimed(job.StatusValidating))
	assert.True(t, IsClaimed(job.StatusAwaitingApproval))
	assert.True(t, IsClaimed(job.StatusExecuting))

	assert.False(t, IsClaimed(job.StatusQueued))
	assert.False(t, IsClaimed(job.StatusCompleted))
	assert.False(t, IsClaimed(job.StatusFailed))
	assert.False(t, IsClaimed(job.StatusCancelled))
}
