package api

import (
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/pkg/database"
	"github.com/axisworks/axis/pkg/queue"
)

// MessageAcceptedResponse is returned by POST /api/messages. The job runs
// asynchronously; clients follow it over the WebSocket or by polling.
type MessageAcceptedResponse struct {
	JobID          string `json:"jobId"`
	ConversationID string `json:"conversationId"`
}

// JobResponse is the external view of a job row. The approval nonce never
// appears here; it travels only on the approval_required broadcast.
type JobResponse struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversationId,omitempty"`
	ParentJobID    string         `json:"parentJobId,omitempty"`
	Source         string         `json:"source"`
	Status         string         `json:"status"`
	Retries        int            `json:"retries"`
	WorkerID       string         `json:"workerId,omitempty"`
	Plan           map[string]any `json:"plan,omitempty"`
	Validation     map[string]any `json:"validation,omitempty"`
	Result         map[string]any `json:"result,omitempty"`
	Error          map[string]any `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

func toJobResponse(row *ent.Job) *JobResponse {
	return &JobResponse{
		ID:             row.ID,
		ConversationID: strDeref(row.ConversationID),
		ParentJobID:    strDeref(row.ParentJobID),
		Source:         string(row.Source),
		Status:         string(row.Status),
		Retries:        row.Retries,
		WorkerID:       strDeref(row.WorkerID),
		Plan:           row.Plan,
		Validation:     row.Validation,
		Result:         row.Result,
		Error:          row.JobError,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		CompletedAt:    row.CompletedAt,
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ApproveResponse is returned by POST /api/jobs/:id/approve.
type ApproveResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// CancelResponse is returned by POST /api/jobs/:id/cancel.
type CancelResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// MessageView is one conversation message in a list response.
type MessageView struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	JobID          string    `json:"jobId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MessagesResponse is returned by GET /api/conversations/:id/messages.
type MessagesResponse struct {
	ConversationID string        `json:"conversationId"`
	Messages       []MessageView `json:"messages"`
	Limit          int           `json:"limit"`
	Offset         int           `json:"offset"`
}

func toMessageView(row *ent.Message) MessageView {
	return MessageView{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		Role:           string(row.Role),
		Content:        row.Content,
		JobID:          strDeref(row.JobID),
		CreatedAt:      row.CreatedAt,
	}
}

// WsTokenResponse is returned by POST /api/ws/token. The token is the only
// copy; the server stores its hash.
type WsTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// HealthCheck is one component's slice of the health report.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string                 `json:"status"`
	Version    string                 `json:"version"`
	Database   *database.HealthStatus `json:"database,omitempty"`
	WorkerPool *queue.PoolHealth      `json:"worker_pool,omitempty"`
	Checks     map[string]HealthCheck `json:"checks"`
}

// ReadyResponse is returned by GET /ready.
type ReadyResponse struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]HealthCheck `json:"checks"`
}
