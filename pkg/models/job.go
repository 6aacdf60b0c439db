package models

// JobSource records what created a job.
type JobSource string

const (
	SourceUser     JobSource = "user"
	SourceSchedule JobSource = "schedule"
	SourceWebhook  JobSource = "webhook"
	SourceSubJob   JobSource = "subjob"
)

// NewJob carries the fields the gateway (or scheduler) supplies when
// enqueueing work.
type NewJob struct {
	ConversationID string         `json:"conversationId,omitempty"`
	ParentJobID    string         `json:"parentJobId,omitempty"`
	Source         JobSource      `json:"source"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// StepOutcome records one executed plan step inside a job result.
type StepOutcome struct {
	StepID string         `json:"stepId"`
	Gear   string         `json:"gear"`
	Action string         `json:"action"`
	OK     bool           `json:"ok"`
	Result map[string]any `json:"result,omitempty"`
	Error  *AgentError    `json:"error,omitempty"`
}

// JobResult is the JSON persisted on a completed job row.
type JobResult struct {
	Text  string        `json:"text,omitempty"`
	Steps []StepOutcome `json:"steps,omitempty"`
}
