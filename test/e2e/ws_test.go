package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventID extracts the journal id stamped on a frame.
func eventID(t *testing.T, ev WSEvent) int64 {
	t.Helper()
	id, ok := ev.Parsed["eventId"].(float64)
	require.True(t, ok, "frame carries no eventId: %s", ev.Raw)
	return int64(id)
}

func TestWebSocketCatchupAfterReconnect(t *testing.T) {
	app := NewTestApp(t, WithScriptedLLM(fastReply("4")))

	live := NewWSClient(t, app, nil)
	jobID, _ := submitMessage(t, app, "what is 2+2?")
	live.WaitForJobStatus(jobID, "completed", 15*time.Second)
	live.WaitForJobEvent(jobID, "result", 5*time.Second)

	// Resume from the first frame this job produced: everything after it
	// must replay from the journal.
	first := live.WaitForJobEvent(jobID, "status", time.Second)
	since := eventID(t, first)
	live.Close()

	replay := NewWSClient(t, app, &since)
	completed := replay.WaitForJobStatus(jobID, "completed", 10*time.Second)
	assert.Greater(t, eventID(t, completed), since)

	resultEv := replay.WaitForJobEvent(jobID, "result", 10*time.Second)
	result, _ := resultEv.Parsed["result"].(map[string]any)
	require.NotNil(t, result)
	assert.Equal(t, "4", result["text"])

	// Replay is ordered by journal id.
	var last int64
	for _, ev := range replay.Events() {
		if ev.JobID != jobID {
			continue
		}
		id := eventID(t, ev)
		assert.Greater(t, id, since)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestWebSocketFreshConnectionSkipsHistory(t *testing.T) {
	app := NewTestApp(t, WithScriptedLLM(fastReply("done")))

	// The job runs with nobody listening.
	jobID, _ := submitMessage(t, app, "do the thing")
	require.Eventually(t, func() bool {
		return getJob(t, app, jobID)["status"] == "completed"
	}, 15*time.Second, 100*time.Millisecond)

	// A live-only connection gets no replay of the finished job.
	ws := NewWSClient(t, app, nil)
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ws.EventsByType("result"))

	// Resuming from zero replays the whole journal instead.
	zero := int64(0)
	replay := NewWSClient(t, app, &zero)
	replay.WaitForJobStatus(jobID, "completed", 10*time.Second)
	replay.WaitForJobEvent(jobID, "result", 10*time.Second)
}
