package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/models"
)

// Parse failures split into two classes for error mapping after the format
// retries are exhausted: errMalformedReply means the text never decoded into
// the reply shape at all; errInvalidPlan means the JSON was fine but the plan
// it described is unusable.
var (
	errMalformedReply = errors.New("malformed planner reply")
	errInvalidPlan    = errors.New("invalid plan")
)

// planEnvelope is the raw reply shape before validation.
type planEnvelope struct {
	Path string                `json:"path"`
	Text string                `json:"text"`
	Plan *models.ExecutionPlan `json:"plan"`
}

// codeBlockPattern matches a fenced code block, with or without a language tag.
var codeBlockPattern = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// extractJSON pulls the JSON object out of a model reply that may wrap it in
// markdown fences or surrounding prose. Returns "" when no decodable object
// is found.
func extractJSON(content string) string {
	if matches := codeBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Fall back to the first raw object. json.Decoder finds the closing
	// brace correctly even when string values contain braces.
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	decoder := json.NewDecoder(strings.NewReader(content[start:]))
	var raw json.RawMessage
	if err := decoder.Decode(&raw); err == nil {
		return string(raw)
	}

	return ""
}

// parsePlanResponse turns raw model output into a validated PlanResponse.
// The job id is always stamped from the request: correlation is never
// trusted to the model.
func parsePlanResponse(text, jobID string) (*bus.PlanResponse, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: no JSON object found", errMalformedReply)
	}

	var env planEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
	}

	switch env.Path {
	case bus.PathFast:
		if strings.TrimSpace(env.Text) == "" {
			return nil, fmt.Errorf("%w: fast path with empty text", errMalformedReply)
		}
		return &bus.PlanResponse{Path: bus.PathFast, Text: env.Text}, nil

	case bus.PathFull:
		if env.Plan == nil {
			return nil, fmt.Errorf("%w: full path with no plan", errMalformedReply)
		}
		if err := normalizePlan(env.Plan, jobID); err != nil {
			return nil, err
		}
		return &bus.PlanResponse{Path: bus.PathFull, Plan: env.Plan}, nil

	default:
		return nil, fmt.Errorf("%w: unknown path %q", errMalformedReply, env.Path)
	}
}

// normalizePlan validates plan structure and fills the fields the model is
// not trusted with: plan id, job id, and missing step ids.
func normalizePlan(plan *models.ExecutionPlan, jobID string) error {
	if len(plan.Steps) == 0 {
		return fmt.Errorf("%w: plan has no steps", errInvalidPlan)
	}

	plan.JobID = jobID
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}

	seen := make(map[string]bool, len(plan.Steps))
	for i := range plan.Steps {
		step := &plan.Steps[i]

		if step.Gear == "" {
			return fmt.Errorf("%w: step %d missing gear", errInvalidPlan, i+1)
		}
		if step.Action == "" {
			return fmt.Errorf("%w: step %d (%s) missing action", errInvalidPlan, i+1, step.Gear)
		}
		if !step.RiskLevel.Valid() {
			return fmt.Errorf("%w: step %d (%s.%s) has unknown risk level %q",
				errInvalidPlan, i+1, step.Gear, step.Action, step.RiskLevel)
		}

		if step.ID == "" {
			step.ID = fmt.Sprintf("step-%d", i+1)
		}
		if seen[step.ID] {
			return fmt.Errorf("%w: duplicate step id %q", errInvalidPlan, step.ID)
		}
		seen[step.ID] = true

		if step.Parameters == nil {
			step.Parameters = map[string]any{}
		}
	}

	return nil
}

// formatCorrectionPrompt tells the model its previous reply failed to parse
// and restates the accepted shapes.
func formatCorrectionPrompt(err error) string {
	return fmt.Sprintf(`Your previous response could not be used: %s

Respond again with ONLY a valid JSON object in one of these two shapes:

{"path": "fast", "text": "<your reply>"}

{"path": "full", "plan": {"steps": [{"id": "step-1", "gear": "<gear id>", "action": "<action>", "parameters": {}, "riskLevel": "low"}]}}`,
		err.Error())
}
