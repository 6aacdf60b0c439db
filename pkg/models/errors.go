package models

import (
	"errors"
	"fmt"
)

// Error codes shared across the runtime. Transport-level codes mirror HTTP
// semantics; domain codes describe pipeline outcomes.
const (
	CodeValidation        = "ERR_VALIDATION"
	CodeAuth              = "ERR_AUTH"
	CodeAuthz             = "ERR_AUTHZ"
	CodeNotFound          = "ERR_NOT_FOUND"
	CodeConflict          = "ERR_CONFLICT"
	CodeRateLimit         = "ERR_RATE_LIMIT"
	CodeTimeout           = "ERR_TIMEOUT"
	CodeDispatch          = "ERR_DISPATCH"
	CodeInvalidTransition = "ERR_INVALID_TRANSITION"

	CodeScoutUnreachable    = "SCOUT_UNREACHABLE"
	CodeScoutError          = "SCOUT_ERROR"
	CodeInvalidPlan         = "INVALID_PLAN"
	CodeSentinelUnreachable = "SENTINEL_UNREACHABLE"
	CodeInvalidValidation   = "INVALID_VALIDATION"
	CodePlanRejected        = "PLAN_REJECTED"
	CodeNeedsRevision       = "NEEDS_REVISION"
	CodeGearExecutionFailed = "GEAR_EXECUTION_FAILED"
	CodeChecksumMismatch    = "CHECKSUM_MISMATCH"
	CodeWatchdogTimeout     = "WATCHDOG_TIMEOUT"
	CodeBudgetExceeded      = "BUDGET_EXCEEDED"
)

// retriableByCode is the default retry classification for each code.
// Codes absent from the map are non-retriable.
var retriableByCode = map[string]bool{
	CodeTimeout:             true,
	CodeDispatch:            true,
	CodeScoutUnreachable:    true,
	CodeInvalidPlan:         true,
	CodeSentinelUnreachable: true,
	CodeNeedsRevision:       true,
	CodeGearExecutionFailed: true,
	CodeWatchdogTimeout:     true,
	CodeRateLimit:           true,
}

// AgentError is the structured error carried on job rows, router error
// responses, and plugin results. Code is one of the constants above.
type AgentError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retriable bool   `json:"retriable"`
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAgentError builds an AgentError with the default retry classification
// for the given code.
func NewAgentError(code, message string) *AgentError {
	return &AgentError{Code: code, Message: message, Retriable: retriableByCode[code]}
}

// NewAgentErrorf is NewAgentError with a format string.
func NewAgentErrorf(code, format string, args ...any) *AgentError {
	return NewAgentError(code, fmt.Sprintf(format, args...))
}

// Map returns the JSON column shape persisted on job rows.
func (e *AgentError) Map() map[string]any {
	return map[string]any{
		"code":      e.Code,
		"message":   e.Message,
		"retriable": e.Retriable,
	}
}

// AgentErrorFromMap rebuilds an AgentError from a job_error JSON column.
// Returns nil for a nil map.
func AgentErrorFromMap(m map[string]any) *AgentError {
	if m == nil {
		return nil
	}
	ae := &AgentError{}
	if v, ok := m["code"].(string); ok {
		ae.Code = v
	}
	if v, ok := m["message"].(string); ok {
		ae.Message = v
	}
	if v, ok := m["retriable"].(bool); ok {
		ae.Retriable = v
	}
	return ae
}

// AsAgentError extracts an *AgentError from an error chain. Returns nil when
// the chain contains none.
func AsAgentError(err error) *AgentError {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// ErrorCode returns the structured code of err, or ERR_DISPATCH when err
// carries no AgentError.
func ErrorCode(err error) string {
	if ae := AsAgentError(err); ae != nil {
		return ae.Code
	}
	return CodeDispatch
}

// IsRetriable reports whether err should be retried. Unclassified errors are
// treated as retriable infrastructure faults.
func IsRetriable(err error) bool {
	if ae := AsAgentError(err); ae != nil {
		return ae.Retriable
	}
	return true
}

// DefaultRetriable reports the default retry classification for a code.
func DefaultRetriable(code string) bool {
	return retriableByCode[code]
}
