package bus

import (
	"github.com/axisworks/axis/pkg/models"
)

// Planner path markers carried in plan.response payloads.
const (
	PathFast = "fast"
	PathFull = "full"
)

// PlanRequest asks the planner for a response to a user message.
// ForceFullPath is set on the re-plan after the fast-path verifier flags a
// text reply: the planner must then return an execution plan, never text.
type PlanRequest struct {
	UserMessage         string                       `json:"userMessage"`
	JobID               string                       `json:"jobId"`
	ConversationID      string                       `json:"conversationId"`
	ConversationHistory []models.ConversationMessage `json:"conversationHistory,omitempty"`
	ForceFullPath       bool                         `json:"forceFullPath,omitempty"`
}

// PlanResponse is the planner's answer: either a fast-path text reply or a
// full execution plan.
type PlanResponse struct {
	Path string                `json:"path"`
	Text string                `json:"text,omitempty"`
	Plan *models.ExecutionPlan `json:"plan,omitempty"`
}

// ValidateRequest carries exclusively the plan to the safety validator
// (plus the job source, which changes approval policy for schedules). The
// information barrier depends on nothing else ever riding along.
type ValidateRequest struct {
	Plan   *models.ExecutionPlan `json:"plan"`
	Source string                `json:"source,omitempty"`
}

// ValidateResponse returns the validator's verdict.
type ValidateResponse struct {
	Validation *models.ValidationResult `json:"validation"`
}

// ExecuteRequest runs a single plan step on the gear runtime.
type ExecuteRequest struct {
	Gear       string         `json:"gear"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	StepID     string         `json:"stepId"`
}

// ExecuteResponse is the gear runtime's per-step result.
type ExecuteResponse struct {
	StepID string         `json:"stepId"`
	Result map[string]any `json:"result,omitempty"`
}

// ErrorPayload is the payload shape of error-typed messages.
type ErrorPayload struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	Retriable         bool   `json:"retriable"`
	OriginalMessageID string `json:"originalMessageId,omitempty"`
}

// ErrorFromMessage extracts the structured error from an error-typed
// response. Non-error messages yield nil; malformed error payloads collapse
// to ERR_DISPATCH so callers always get a usable code.
func ErrorFromMessage(msg *Message) *models.AgentError {
	if msg == nil {
		return models.NewAgentError(models.CodeDispatch, "no response message")
	}
	if !msg.IsError() {
		return nil
	}

	var p ErrorPayload
	if err := DecodePayload(msg.Payload, &p); err != nil || p.Code == "" {
		return models.NewAgentError(models.CodeDispatch, "malformed error response")
	}
	return &models.AgentError{Code: p.Code, Message: p.Message, Retriable: p.Retriable}
}
