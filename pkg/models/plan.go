package models

// RiskLevel classifies a plan step's blast radius.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Rank returns the ordinal of the risk level (low=0 .. critical=3), or -1 for
// unknown values.
func (r RiskLevel) Rank() int {
	if rank, ok := riskRank[r]; ok {
		return rank
	}
	return -1
}

// Valid reports whether r is one of the four declared levels.
func (r RiskLevel) Valid() bool {
	_, ok := riskRank[r]
	return ok
}

// MaxRisk returns the higher of two levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// RiskDivergence is the absolute rank distance between two levels. Unknown
// levels diverge maximally.
func RiskDivergence(a, b RiskLevel) int {
	ra, rb := a.Rank(), b.Rank()
	if ra < 0 || rb < 0 {
		return len(riskRank)
	}
	if ra > rb {
		return ra - rb
	}
	return rb - ra
}

// PlanStep is one ordered unit of work inside an ExecutionPlan.
type PlanStep struct {
	ID          string         `json:"id"`
	Gear        string         `json:"gear"`
	Action      string         `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	RiskLevel   RiskLevel      `json:"riskLevel"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ExecutionPlan is the planner's full-path output: an ordered list of steps
// executed front to back.
type ExecutionPlan struct {
	ID        string         `json:"id"`
	JobID     string         `json:"jobId"`
	Steps     []PlanStep     `json:"steps"`
	Reasoning string         `json:"reasoning,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// OverallRisk is the highest declared step risk, or low for an empty plan.
func (p *ExecutionPlan) OverallRisk() RiskLevel {
	risk := RiskLow
	for _, s := range p.Steps {
		risk = MaxRisk(risk, s.RiskLevel)
	}
	return risk
}

// Stripped returns a deep copy with all free-form narrative removed: plan
// reasoning, step descriptions, and every metadata map. The stripped form is
// what the safety validator's LLM sees and what the approval cache hashes, so
// a compromised planner cannot smuggle persuasive prose past the barrier.
func (p *ExecutionPlan) Stripped() *ExecutionPlan {
	out := &ExecutionPlan{
		ID:    p.ID,
		JobID: p.JobID,
		Steps: make([]PlanStep, len(p.Steps)),
	}
	for i, s := range p.Steps {
		out.Steps[i] = PlanStep{
			ID:         s.ID,
			Gear:       s.Gear,
			Action:     s.Action,
			Parameters: s.Parameters,
			RiskLevel:  s.RiskLevel,
		}
	}
	return out
}
