package e2e

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

// approvalApp boots a runtime whose scripted plan trips the file-deletion
// approval floor, and returns the invocation counter for the gear.
func approvalApp(t *testing.T) (*TestApp, *atomic.Int32) {
	t.Helper()
	var deletes atomic.Int32
	app := NewTestApp(t, WithScriptedLLM(fullPlan(
		planStep("s1", "file-manager", "delete_file", map[string]any{"path": "old-notes.txt"}, "medium"),
	)))
	installBuiltin(t, app, fileManagerGear(), func(_ context.Context, _ string, params map[string]any) (map[string]any, error) {
		deletes.Add(1)
		return map[string]any{"deleted": params["path"]}, nil
	})
	return app, &deletes
}

func TestApprovalGatedExecution(t *testing.T) {
	app, deletes := approvalApp(t)
	ws := NewWSClient(t, app, nil)

	jobID, _ := submitMessage(t, app, "clean up my old notes")

	ev := ws.WaitForJobEvent(jobID, "approval_required", 15*time.Second)
	meta, _ := ev.Parsed["metadata"].(map[string]any)
	require.NotNil(t, meta)
	nonce, _ := meta["nonce"].(string)
	require.NotEmpty(t, nonce)

	// The broadcast carries the plan under review and its per-step risks.
	risks, _ := ev.Parsed["risks"].([]any)
	require.Len(t, risks, 1)
	risk, _ := risks[0].(map[string]any)
	assert.Equal(t, "file-manager", risk["gear"])
	assert.Equal(t, "delete_file", risk["action"])

	assert.Equal(t, "awaiting_approval", getJob(t, app, jobID)["status"])

	// A wrong nonce conflicts and leaves the job parked.
	var errResp apiError
	postJSON(t, app, "/api/jobs/"+jobID+"/approve", map[string]any{"nonce": "not-the-nonce"},
		http.StatusConflict, &errResp)
	assert.Equal(t, models.CodeConflict, errResp.Code)
	assert.Equal(t, "awaiting_approval", getJob(t, app, jobID)["status"])
	assert.EqualValues(t, 0, deletes.Load())

	// The real nonce moves the row and wakes the parked worker.
	var approveResp struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	postJSON(t, app, "/api/jobs/"+jobID+"/approve", map[string]any{"nonce": nonce},
		http.StatusOK, &approveResp)
	assert.Equal(t, "executing", approveResp.Status)

	ws.WaitForJobStatus(jobID, "completed", 15*time.Second)
	assert.EqualValues(t, 1, deletes.Load())

	// The nonce spent on the CAS: replaying it conflicts.
	postJSON(t, app, "/api/jobs/"+jobID+"/approve", map[string]any{"nonce": nonce},
		http.StatusConflict, &errResp)
	assert.Equal(t, models.CodeConflict, errResp.Code)
}

func TestApprovalDenied(t *testing.T) {
	app, deletes := approvalApp(t)
	ws := NewWSClient(t, app, nil)

	jobID, _ := submitMessage(t, app, "clean up my old notes")

	ws.WaitForJobEvent(jobID, "approval_required", 15*time.Second)

	// Cancelling a parked job is how a user denies the plan.
	var cancelResp struct {
		Status string `json:"status"`
	}
	postJSON(t, app, "/api/jobs/"+jobID+"/cancel", map[string]any{}, http.StatusOK, &cancelResp)
	assert.Equal(t, "cancelled", cancelResp.Status)

	ws.WaitForJobStatus(jobID, "cancelled", 15*time.Second)
	assert.Equal(t, "cancelled", getJob(t, app, jobID)["status"])
	assert.EqualValues(t, 0, deletes.Load())

	// Approving a denied job conflicts.
	var errResp apiError
	postJSON(t, app, "/api/jobs/"+jobID+"/approve", map[string]any{"nonce": "whatever"},
		http.StatusConflict, &errResp)
	assert.Equal(t, models.CodeConflict, errResp.Code)
}
