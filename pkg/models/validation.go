package models

// Verdict is the safety validator's decision on a plan or a single step.
type Verdict string

const (
	VerdictApproved          Verdict = "approved"
	VerdictNeedsUserApproval Verdict = "needs_user_approval"
	VerdictNeedsRevision     Verdict = "needs_revision"
	VerdictRejected          Verdict = "rejected"
)

// Valid reports whether v is one of the four declared verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictApproved, VerdictNeedsUserApproval, VerdictNeedsRevision, VerdictRejected:
		return true
	}
	return false
}

// StepResult is the validator's per-step outcome.
type StepResult struct {
	StepID    string    `json:"stepId"`
	Verdict   Verdict   `json:"verdict"`
	Risk      RiskLevel `json:"risk"`
	Reasoning string    `json:"reasoning,omitempty"`
	Category  string    `json:"category,omitempty"`
}

// ValidationResult is the validator's full verdict on a plan.
type ValidationResult struct {
	ID                 string         `json:"id"`
	PlanID             string         `json:"planId"`
	Verdict            Verdict        `json:"verdict"`
	OverallRisk        RiskLevel      `json:"overallRisk"`
	Reasoning          string         `json:"reasoning"`
	StepResults        []StepResult   `json:"stepResults"`
	SuggestedRevisions []string       `json:"suggestedRevisions,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}
