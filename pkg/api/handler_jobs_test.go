package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entjob "github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/queue"
)

// seedQueuedJob creates a conversation with one queued job, the state POST
// /api/messages leaves behind.
func seedQueuedJob(t *testing.T, h *apiHarness) string {
	t.Helper()
	ctx := context.Background()

	conv, err := h.convs.CreateConversation(ctx, "job fixture")
	require.NoError(t, err)
	row, err := h.jobs.Enqueue(ctx, models.NewJob{
		ConversationID: conv.ID,
		Source:         models.SourceUser,
	})
	require.NoError(t, err)
	return row.ID
}

// seedParkedJob walks a job to awaiting_approval the way a worker would:
// claim, then CAS through planning and validating, parking with a nonce.
func seedParkedJob(t *testing.T, h *apiHarness) (jobID, nonce string) {
	t.Helper()
	ctx := context.Background()

	jobID = seedQueuedJob(t, h)
	claimed, err := h.jobs.Claim(ctx, "worker-test")
	require.NoError(t, err)
	require.Equal(t, jobID, claimed.ID)

	ok, err := h.jobs.Transition(ctx, jobID, entjob.StatusPlanning, entjob.StatusValidating, nil)
	require.NoError(t, err)
	require.True(t, ok)

	nonce = uuid.New().String()
	ok, err = h.jobs.Transition(ctx, jobID, entjob.StatusValidating, entjob.StatusAwaitingApproval,
		&queue.TransitionPatch{ApprovalNonce: nonce})
	require.NoError(t, err)
	require.True(t, ok)
	return jobID, nonce
}

func TestGetJob(t *testing.T) {
	h := newTestServer(t)

	t.Run("returns the row without the approval nonce", func(t *testing.T) {
		jobID, nonce := seedParkedJob(t, h)

		rec := h.request(t, http.MethodGet, "/api/jobs/"+jobID, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), nonce,
			"the nonce must only travel on the approval_required broadcast")

		var body JobResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, jobID, body.ID)
		assert.Equal(t, string(entjob.StatusAwaitingApproval), body.Status)
		assert.Equal(t, "worker-test", body.WorkerID)
	})

	t.Run("unknown job", func(t *testing.T) {
		rec := h.request(t, http.MethodGet, "/api/jobs/job-missing", nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
		var body ErrorResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, models.CodeNotFound, body.Code)
	})
}

func TestApproveJobWakesParkedWorker(t *testing.T) {
	h := newTestServer(t)
	jobID, nonce := seedParkedJob(t, h)

	// Stand in for the worker parked in the pipeline.
	awaitErr := make(chan error, 1)
	go func() {
		awaitErr <- h.approvals.Await(context.Background(), jobID)
	}()
	require.Eventually(t, func() bool { return h.approvals.Waiting() == 1 },
		2*time.Second, 10*time.Millisecond)

	rec := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/approve",
		ApproveJobRequest{Nonce: nonce})

	require.Equal(t, http.StatusOK, rec.Code)
	var body ApproveResponse
	decodeJSON(t, rec, &body)
	assert.Equal(t, string(entjob.StatusExecuting), body.Status)

	select {
	case err := <-awaitErr:
		require.NoError(t, err, "the parked worker should resume cleanly")
	case <-time.After(5 * time.Second):
		t.Fatal("approval never woke the parked worker")
	}

	row, err := h.jobs.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, entjob.StatusExecuting, row.Status)
}

func TestApproveJobRejections(t *testing.T) {
	h := newTestServer(t)

	t.Run("wrong nonce", func(t *testing.T) {
		jobID, _ := seedParkedJob(t, h)

		rec := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/approve",
			ApproveJobRequest{Nonce: "not-the-nonce"})

		require.Equal(t, http.StatusConflict, rec.Code)
		var body ErrorResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, models.CodeConflict, body.Code)

		row, err := h.jobs.Get(context.Background(), jobID)
		require.NoError(t, err)
		assert.Equal(t, entjob.StatusAwaitingApproval, row.Status,
			"a rejected approve must leave the row parked")
	})

	t.Run("reused nonce", func(t *testing.T) {
		jobID, nonce := seedParkedJob(t, h)

		first := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/approve",
			ApproveJobRequest{Nonce: nonce})
		require.Equal(t, http.StatusOK, first.Code)

		second := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/approve",
			ApproveJobRequest{Nonce: nonce})
		require.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("missing nonce", func(t *testing.T) {
		jobID, _ := seedParkedJob(t, h)

		rec := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/approve",
			ApproveJobRequest{})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, models.CodeValidation, body.Code)
	})

	t.Run("job not awaiting approval", func(t *testing.T) {
		jobID := seedQueuedJob(t, h)

		rec := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/approve",
			ApproveJobRequest{Nonce: "whatever"})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/api/jobs/job-missing/approve",
			ApproveJobRequest{Nonce: "whatever"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCancelJob(t *testing.T) {
	h := newTestServer(t)

	t.Run("cancels a queued job", func(t *testing.T) {
		jobID := seedQueuedJob(t, h)

		rec := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/cancel", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body CancelResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, string(entjob.StatusCancelled), body.Status)

		row, err := h.jobs.Get(context.Background(), jobID)
		require.NoError(t, err)
		assert.Equal(t, entjob.StatusCancelled, row.Status)
	})

	t.Run("terminal jobs conflict", func(t *testing.T) {
		jobID := seedQueuedJob(t, h)

		first := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/cancel", nil)
		require.Equal(t, http.StatusOK, first.Code)

		second := h.request(t, http.MethodPost, "/api/jobs/"+jobID+"/cancel", nil)
		require.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/api/jobs/job-missing/cancel", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
