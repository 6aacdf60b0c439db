package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalHubResolveWakesWaiter(t *testing.T) {
	hub := NewApprovalHub()

	done := make(chan error, 1)
	go func() {
		done <- hub.Await(context.Background(), "job-1")
	}()

	// Let the waiter register before resolving.
	assert.Eventually(t, func() bool { return hub.Waiting() == 1 },
		time.Second, 5*time.Millisecond)

	assert.True(t, hub.Resolve("job-1"), "a registered waiter should be woken")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Await did not return after Resolve")
	}
	assert.Equal(t, 0, hub.Waiting())
}

func TestApprovalHubResolveBeforeAwait(t *testing.T) {
	hub := NewApprovalHub()

	// The gateway can land its CAS and resolve before the worker reaches
	// Await; the resolution is buffered so the waiter returns immediately.
	assert.False(t, hub.Resolve("job-1"), "no waiter registered yet")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, hub.Await(ctx, "job-1"))
}

func TestApprovalHubBufferedResolutionIsSingleUse(t *testing.T) {
	hub := NewApprovalHub()
	hub.Resolve("job-1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, hub.Await(ctx, "job-1"))

	// The buffered resolution is consumed; a second Await must block.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	assert.ErrorIs(t, hub.Await(ctx2, "job-1"), context.DeadlineExceeded)
}

func TestApprovalHubAwaitHonorsContext(t *testing.T) {
	hub := NewApprovalHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- hub.Await(ctx, "job-1")
	}()

	assert.Eventually(t, func() bool { return hub.Waiting() == 1 },
		time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Await did not return after cancellation")
	}
	assert.Equal(t, 0, hub.Waiting(), "a cancelled waiter must deregister")
}

func TestApprovalHubIndependentJobs(t *testing.T) {
	hub := NewApprovalHub()

	first := make(chan error, 1)
	second := make(chan error, 1)
	go func() { first <- hub.Await(context.Background(), "job-1") }()
	go func() { second <- hub.Await(context.Background(), "job-2") }()

	assert.Eventually(t, func() bool { return hub.Waiting() == 2 },
		time.Second, 5*time.Millisecond)

	hub.Resolve("job-2")
	select {
	case err := <-second:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job-2 waiter did not wake")
	}

	select {
	case <-first:
		t.Fatal("job-1 waiter woke without a resolution")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, hub.Waiting())

	hub.Resolve("job-1")
	select {
	case err := <-first:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job-1 waiter did not wake")
	}
}
