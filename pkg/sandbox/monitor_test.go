package sandbox

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/axisworks/axis/pkg/models"
)

func TestWatchResourcesKillsOnMemoryBreach(t *testing.T) {
	// The test binary itself is comfortably over one megabyte of RSS.
	killed := make(chan string, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go watchResources(ctx, os.Getpid(), models.GearResources{MaxMemoryMb: 1}, func(reason string) {
		killed <- reason
	})

	select {
	case reason := <-killed:
		assert.Equal(t, "memory", reason)
	case <-ctx.Done():
		t.Fatal("watchdog never fired on a breached memory limit")
	}
}

func TestWatchResourcesStopsOnContextCancel(t *testing.T) {
	killed := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Generous limit: never breached.
		watchResources(ctx, os.Getpid(), models.GearResources{MaxMemoryMb: 1 << 20}, func(reason string) {
			killed <- reason
		})
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop on cancel")
	}
	assert.Empty(t, killed)
}

func TestWatchResourcesIgnoresUnknownPid(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchResources(context.Background(), -1, models.GearResources{MaxMemoryMb: 1}, func(string) {
			t.Error("killed a process that does not exist")
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not return for an unknown pid")
	}
}
