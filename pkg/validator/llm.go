package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
)

// errInvalidVerdict marks model replies that never became a usable verdict.
// The caller falls back to the rule engine on it.
var errInvalidVerdict = errors.New("invalid validation verdict")

// validatorSystemPrompt frames the independent safety review. The model sees
// only the stripped plan: no user message, no planner prose, no gear
// documentation — nothing a compromised planner could use to argue its case.
const validatorSystemPrompt = `## Safety Review Instructions

You are the independent safety validator of a self-hosted assistant platform.
You review execution plans produced by a separate planning component. You see
only the plan itself: gear ids, action names, parameters, and declared risk
levels. Judge what the plan DOES. There is deliberately no surrounding
context; do not assume benign intent.

Evaluate every step across these categories: security, privacy, financial,
policy_compliance, composite_risk, ethical, legal.

Verdicts:
- "approved": safe to run unattended.
- "needs_user_approval": legitimate but consequential; a human must confirm.
- "needs_revision": the plan should be rebuilt (wrong tool, bad parameters,
  unnecessary risk for the apparent goal).
- "rejected": must not run in any form.

Destructive operations (deletion, shell execution, financial transactions,
system configuration changes) are never "approved" outright.

## Output Format

Respond with ONLY a JSON object:
{"verdict": "approved", "overallRisk": "low", "reasoning": "<one paragraph>", "stepResults": [{"stepId": "<id>", "verdict": "approved", "risk": "low", "reasoning": "<short>", "category": "<category>"}], "suggestedRevisions": []}`

// llmVerdict mirrors ValidationResult for strict decoding of model output.
type llmVerdict struct {
	Verdict            models.Verdict      `json:"verdict"`
	OverallRisk        models.RiskLevel    `json:"overallRisk"`
	Reasoning          string              `json:"reasoning"`
	StepResults        []models.StepResult `json:"stepResults"`
	SuggestedRevisions []string            `json:"suggestedRevisions"`
}

// llmEvaluate submits the stripped plan for review and strictly parses the
// verdict. Provider failures return llm.ErrUnavailable-wrapped errors and
// unusable replies return errInvalidVerdict; the caller falls back to rules
// on either.
func llmEvaluate(ctx context.Context, client llm.Client, stripped *models.ExecutionPlan) (*models.ValidationResult, error) {
	planJSON, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan for review: %w", err)
	}

	resp, err := client.Chat(ctx, llm.Request{
		System: validatorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Review this execution plan:\n\n" + string(planJSON)},
		},
	})
	if err != nil {
		return nil, err
	}

	verdict, err := parseVerdict(resp.Text)
	if err != nil {
		return nil, err
	}

	reportRiskDivergence(stripped, verdict.StepResults)

	res := &models.ValidationResult{
		ID:                 uuid.NewString(),
		PlanID:             stripped.ID,
		Verdict:            verdict.Verdict,
		OverallRisk:        verdict.OverallRisk,
		Reasoning:          verdict.Reasoning,
		StepResults:        keepKnownSteps(stripped, verdict.StepResults),
		SuggestedRevisions: verdict.SuggestedRevisions,
		Metadata:           map[string]any{"mode": ModeLLM},
	}
	return res, nil
}

// verdictFencePattern matches a fenced code block around the verdict JSON.
var verdictFencePattern = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// parseVerdict decodes and validates the model's verdict reply.
func parseVerdict(text string) (*llmVerdict, error) {
	jsonStr := text
	if matches := verdictFencePattern.FindStringSubmatch(text); len(matches) > 1 {
		jsonStr = matches[1]
	} else if start := strings.Index(text, "{"); start >= 0 {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&raw); err == nil {
			jsonStr = string(raw)
		}
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonStr)), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidVerdict, err)
	}
	if !v.Verdict.Valid() {
		return nil, fmt.Errorf("%w: unknown verdict %q", errInvalidVerdict, v.Verdict)
	}
	if !v.OverallRisk.Valid() {
		return nil, fmt.Errorf("%w: unknown risk %q", errInvalidVerdict, v.OverallRisk)
	}
	for i, sr := range v.StepResults {
		if !sr.Verdict.Valid() {
			return nil, fmt.Errorf("%w: step %d has unknown verdict %q", errInvalidVerdict, i+1, sr.Verdict)
		}
		if !sr.Risk.Valid() {
			return nil, fmt.Errorf("%w: step %d has unknown risk %q", errInvalidVerdict, i+1, sr.Risk)
		}
	}
	return &v, nil
}

// reportRiskDivergence warns when the model's per-step risk disagrees with
// the planner's declaration by more than one level. A divergence is signal
// about the planner, never a validation failure.
func reportRiskDivergence(plan *models.ExecutionPlan, results []models.StepResult) {
	declared := make(map[string]models.RiskLevel, len(plan.Steps))
	for _, s := range plan.Steps {
		declared[s.ID] = s.RiskLevel
	}
	for _, sr := range results {
		d, ok := declared[sr.StepID]
		if !ok {
			continue
		}
		if models.RiskDivergence(d, sr.Risk) > 1 {
			slog.Warn("Validator risk diverges from planner declaration",
				"plan_id", plan.ID, "step_id", sr.StepID,
				"declared", d, "assessed", sr.Risk)
		}
	}
}

// keepKnownSteps drops step results whose ids do not exist in the plan. The
// model cannot be allowed to invent steps in the recorded verdict.
func keepKnownSteps(plan *models.ExecutionPlan, results []models.StepResult) []models.StepResult {
	known := make(map[string]bool, len(plan.Steps))
	for _, s := range plan.Steps {
		known[s.ID] = true
	}
	kept := make([]models.StepResult, 0, len(results))
	for _, sr := range results {
		if known[sr.StepID] {
			kept = append(kept, sr)
		} else {
			slog.Debug("Dropping verdict for unknown step", "plan_id", plan.ID, "step_id", sr.StepID)
		}
	}
	return kept
}
