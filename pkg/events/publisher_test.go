package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent/job"
)

func TestInjectEventIDAndTruncate(t *testing.T) {
	t.Run("injects eventId into normal payload", func(t *testing.T) {
		payload, _ := json.Marshal(StatusPayload{
			Type:      EventTypeStatus,
			JobID:     "job-1",
			Status:    job.StatusPlanning,
			Timestamp: time.Now().Format(time.RFC3339Nano),
		})

		result, err := injectEventIDAndTruncate(payload, 42)
		require.NoError(t, err)
		assert.Contains(t, result, `"eventId":42`)
		assert.Contains(t, result, "job-1")
		assert.Contains(t, result, "planning")
		assert.NotContains(t, result, "truncated")
	})

	t.Run("truncates oversized payload", func(t *testing.T) {
		payload, _ := json.Marshal(ErrorPayload{
			Type:    EventTypeError,
			JobID:   "job-2",
			Code:    "ERR_GEAR",
			Message: strings.Repeat("a", 8000),
		})

		result, err := injectEventIDAndTruncate(payload, 7)
		require.NoError(t, err)
		assert.Contains(t, result, `"truncated":true`)
		assert.Less(t, len(result), notifyPayloadLimit)
	})

	t.Run("truncated payload keeps routing fields", func(t *testing.T) {
		payload, _ := json.Marshal(ErrorPayload{
			Type:    EventTypeError,
			JobID:   "job-3",
			Code:    "ERR_GEAR",
			Message: strings.Repeat("x", 8000),
		})

		result, err := injectEventIDAndTruncate(payload, 99)
		require.NoError(t, err)

		var envelope map[string]any
		require.NoError(t, json.Unmarshal([]byte(result), &envelope))
		assert.Equal(t, EventTypeError, envelope["type"])
		assert.Equal(t, "job-3", envelope["jobId"])
		assert.Equal(t, true, envelope["truncated"])
		assert.Equal(t, float64(99), envelope["eventId"])
		assert.NotContains(t, result, "xxxx")
	})

	t.Run("boundary: payload just under limit is not truncated", func(t *testing.T) {
		// Measure the fixed overhead first so the message lands just under
		// the limit, with a margin for the injected eventId.
		base, _ := json.Marshal(ErrorPayload{Type: "t"})
		messageSize := notifyPayloadLimit - len(base) - 20
		payload, _ := json.Marshal(ErrorPayload{
			Type:    "t",
			Message: strings.Repeat("b", messageSize),
		})
		require.LessOrEqual(t, len(payload), notifyPayloadLimit, "test payload should be under limit")

		result, err := injectEventIDAndTruncate(payload, 1)
		require.NoError(t, err)
		assert.NotContains(t, result, "truncated")
	})

	t.Run("empty JSON object", func(t *testing.T) {
		result, err := injectEventIDAndTruncate([]byte("{}"), 5)
		require.NoError(t, err)
		assert.Equal(t, `{"eventId":5}`, result)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		_, err := injectEventIDAndTruncate([]byte("not json"), 1)
		assert.Error(t, err)
	})
}

func TestNewPublisher(t *testing.T) {
	publisher := NewPublisher(nil, nil)
	assert.NotNil(t, publisher)
	assert.Nil(t, publisher.db)
}

func TestStatusPayload_JSON(t *testing.T) {
	payload := StatusPayload{
		Type:      EventTypeStatus,
		JobID:     "job-123",
		Status:    job.StatusExecuting,
		Timestamp: "2026-08-20T12:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded StatusPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, EventTypeStatus, decoded.Type)
	assert.Equal(t, "job-123", decoded.JobID)
	assert.Equal(t, job.StatusExecuting, decoded.Status)
	assert.Equal(t, "2026-08-20T12:00:00Z", decoded.Timestamp)
}
