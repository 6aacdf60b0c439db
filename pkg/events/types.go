// Package events provides real-time event delivery via WebSocket and
// PostgreSQL NOTIFY/LISTEN for cross-replica distribution.
//
// Every job lifecycle broadcast is persisted to the events journal and
// NOTIFYed in the same transaction, so a WebSocket client on any replica
// sees the same stream, and a reconnecting client can replay what it missed
// by sending the last event id it saw.
//
// NOTIFY payloads above PostgreSQL's ~8000-byte limit are replaced with a
// truncation envelope carrying only routing fields; the client fetches the
// full payload through catch-up, which reads the journal row.
package events

import (
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/models"
)

// Event types delivered to WebSocket clients. All four are persistent:
// journal row + NOTIFY.
const (
	EventTypeStatus           = "status"
	EventTypeApprovalRequired = "approval_required"
	EventTypeResult           = "result"
	EventTypeError            = "error"
)

// JobsChannel is the single NOTIFY channel job events flow through. Every
// replica LISTENs on it and fans out to its local WebSocket connections.
const JobsChannel = "axis_jobs"

// StatusPayload is the payload for status events, published on every job
// state transition (and once on enqueue).
type StatusPayload struct {
	Type      string     `json:"type"` // always EventTypeStatus
	JobID     string     `json:"jobId"`
	Status    job.Status `json:"status"`
	Timestamp string     `json:"timestamp"` // RFC3339Nano
}

// StepRisk summarizes one plan step for the approval prompt.
type StepRisk struct {
	StepID string           `json:"stepId"`
	Gear   string           `json:"gear"`
	Action string           `json:"action"`
	Risk   models.RiskLevel `json:"risk"`
}

// ApprovalRequiredPayload is the payload for approval_required events,
// published when a job parks in awaiting_approval. Plan is the stripped
// form; the nonce rides in metadata and is what the approve endpoint wants
// back.
type ApprovalRequiredPayload struct {
	Type        string                `json:"type"` // always EventTypeApprovalRequired
	JobID       string                `json:"jobId"`
	Plan        *models.ExecutionPlan `json:"plan"`
	Risks       []StepRisk            `json:"risks"`
	OverallRisk models.RiskLevel      `json:"overallRisk"`
	Metadata    map[string]any        `json:"metadata"` // carries "nonce"
	Timestamp   string                `json:"timestamp"`
}

// ResultPayload is the payload for result events on completed jobs.
type ResultPayload struct {
	Type      string            `json:"type"` // always EventTypeResult
	JobID     string            `json:"jobId"`
	Result    *models.JobResult `json:"result"`
	Timestamp string            `json:"timestamp"`
}

// ErrorPayload is the payload for error events on failed jobs.
type ErrorPayload struct {
	Type      string `json:"type"` // always EventTypeError
	JobID     string `json:"jobId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// clientFrame is the JSON structure for client → server WebSocket messages.
// After the token handshake the client may only send ping and pong.
type clientFrame struct {
	Type string `json:"type"` // "ping" or "pong"
}
