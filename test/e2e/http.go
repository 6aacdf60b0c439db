package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// doJSON issues one authenticated request against the app, requires the
// expected status, and decodes the body into out when out is non-nil.
func doJSON(t *testing.T, app *TestApp, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, app.BaseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+app.AuthToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.HTTP.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s returned %d: %s", method, path, resp.StatusCode, raw)

	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), "%s %s body: %s", method, path, raw)
	}
}

func postJSON(t *testing.T, app *TestApp, path string, body any, wantStatus int, out any) {
	t.Helper()
	doJSON(t, app, http.MethodPost, path, body, wantStatus, out)
}

func getJSON(t *testing.T, app *TestApp, path string, wantStatus int, out any) {
	t.Helper()
	doJSON(t, app, http.MethodGet, path, nil, wantStatus, out)
}

// submitMessage posts a user message and returns the accepted job and
// conversation ids.
func submitMessage(t *testing.T, app *TestApp, content string) (jobID, conversationID string) {
	t.Helper()
	var resp struct {
		JobID          string `json:"jobId"`
		ConversationID string `json:"conversationId"`
	}
	postJSON(t, app, "/api/messages", map[string]any{"content": content}, http.StatusAccepted, &resp)
	require.NotEmpty(t, resp.JobID)
	require.NotEmpty(t, resp.ConversationID)
	return resp.JobID, resp.ConversationID
}

// getJob fetches the external view of a job row as a loose map, so tests can
// assert on exactly the fields they care about.
func getJob(t *testing.T, app *TestApp, jobID string) map[string]any {
	t.Helper()
	var out map[string]any
	getJSON(t, app, "/api/jobs/"+jobID, http.StatusOK, &out)
	return out
}

// apiError is the {error, code} body every non-2xx response carries.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
