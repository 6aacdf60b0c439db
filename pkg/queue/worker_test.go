package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/axisworks/axis/pkg/config"
)

func testQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		WorkerCount:             2,
		JobTimeout:              15 * time.Minute,
		MaxRetries:              3,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		GracefulShutdownTimeout: 10 * time.Second,
	}
}

func TestWorkerPollInterval(t *testing.T) {
	w := NewWorker("test-worker", nil, testQueueConfig(), nil, nil)

	// Poll interval should be within [base - jitter, base + jitter]
	for i := 0; i < 100; i++ {
		d := w.pollInterval()
		assert.GreaterOrEqual(t, d, 500*time.Millisecond, "poll interval below minimum")
		assert.LessOrEqual(t, d, 1500*time.Millisecond, "poll interval above maximum")
	}
}

func TestWorkerPollIntervalNoJitter(t *testing.T) {
	cfg := testQueueConfig()
	cfg.PollIntervalJitter = 0
	w := NewWorker("test-worker", nil, cfg, nil, nil)

	for i := 0; i < 10; i++ {
		assert.Equal(t, 1*time.Second, w.pollInterval(),
			"poll interval should equal base when jitter is 0")
	}
}

func TestWorkerHealth(t *testing.T) {
	w := NewWorker("worker-1", nil, testQueueConfig(), nil, nil)

	h := w.Health()
	assert.Equal(t, "worker-1", h.ID)
	assert.Equal(t, WorkerStatusIdle, h.Status)
	assert.Equal(t, "", h.CurrentJobID)
	assert.Equal(t, 0, h.JobsProcessed)

	// Simulate working state
	w.setStatus(WorkerStatusWorking, "job-abc")
	h = w.Health()
	assert.Equal(t, WorkerStatusWorking, h.Status)
	assert.Equal(t, "job-abc", h.CurrentJobID)

	// Back to idle
	w.setStatus(WorkerStatusIdle, "")
	h = w.Health()
	assert.Equal(t, WorkerStatusIdle, h.Status)
	assert.Equal(t, "", h.CurrentJobID)
}

func TestRetryBackoffDoublesWithJitter(t *testing.T) {
	cases := []struct {
		retries int
		base    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{8, 256 * time.Second},
	}
	for _, tc := range cases {
		for i := 0; i < 50; i++ {
			d := retryBackoff(tc.retries)
			assert.GreaterOrEqual(t, d, time.Duration(float64(tc.base)*0.9),
				"retries=%d below jitter floor", tc.retries)
			assert.LessOrEqual(t, d, time.Duration(float64(tc.base)*1.1),
				"retries=%d above jitter ceiling", tc.retries)
		}
	}
}

func TestRetryBackoffCaps(t *testing.T) {
	// 2^9 s = 512s exceeds the 5m cap; huge shift counts must not overflow.
	for _, retries := range []int{9, 20, 40, 63} {
		d := retryBackoff(retries)
		assert.GreaterOrEqual(t, d, time.Duration(float64(retryBackoffMax)*0.9), "retries=%d", retries)
		assert.LessOrEqual(t, d, time.Duration(float64(retryBackoffMax)*1.1), "retries=%d", retries)
	}
}
