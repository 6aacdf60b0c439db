package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
)

const reviewVerdictJSON = `{
  "verdict": "needs_user_approval",
  "overallRisk": "high",
  "reasoning": "the second step destroys data",
  "stepResults": [
    {"stepId": "s1", "verdict": "approved", "risk": "low", "reasoning": "read only"},
    {"stepId": "s2", "verdict": "needs_user_approval", "risk": "high", "reasoning": "destructive", "category": "security"},
    {"stepId": "s9", "verdict": "approved", "risk": "low", "reasoning": "not a real step"}
  ],
  "suggestedRevisions": ["confirm the file is disposable first"]
}`

func reviewPlan() *models.ExecutionPlan {
	return &models.ExecutionPlan{
		ID:    "plan-1",
		JobID: "job-1",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "files", Action: "read_file",
				Parameters: map[string]any{"path": "old/report.txt"}, RiskLevel: models.RiskLow},
			{ID: "s2", Gear: "files", Action: "delete_file",
				Parameters: map[string]any{"path": "old/report.txt"}, RiskLevel: models.RiskHigh},
		},
	}
}

func TestLLMEvaluate(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{Text: "```json\n" + reviewVerdictJSON + "\n```"},
	)

	res, err := llmEvaluate(context.Background(), client, reviewPlan().Stripped())
	require.NoError(t, err)

	assert.Equal(t, "plan-1", res.PlanID)
	assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
	assert.Equal(t, models.RiskHigh, res.OverallRisk)
	assert.Equal(t, ModeLLM, res.Metadata["mode"])
	assert.Equal(t, []string{"confirm the file is disposable first"}, res.SuggestedRevisions)

	// The invented step id s9 must not survive into the recorded verdict.
	require.Len(t, res.StepResults, 2)
	assert.Equal(t, "s1", res.StepResults[0].StepID)
	assert.Equal(t, "s2", res.StepResults[1].StepID)
	assert.Equal(t, "security", res.StepResults[1].Category)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "Safety Review Instructions")
	require.Len(t, calls[0].Messages, 1)
	assert.Equal(t, llm.RoleUser, calls[0].Messages[0].Role)
	assert.Contains(t, calls[0].Messages[0].Content, `"action": "delete_file"`)
	assert.NotContains(t, calls[0].Messages[0].Content, "reasoning",
		"the review request carries the stripped plan only")
}

func TestLLMEvaluateProviderFailure(t *testing.T) {
	client := llm.NewScriptedClient(llm.ScriptedResponse{Err: llm.ErrUnavailable})

	_, err := llmEvaluate(context.Background(), client, reviewPlan().Stripped())
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestLLMEvaluateGarbageReply(t *testing.T) {
	client := llm.NewScriptedClient(llm.ScriptedResponse{Text: "looks fine to me!"})

	_, err := llmEvaluate(context.Background(), client, reviewPlan().Stripped())
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidVerdict)
}

func TestParseVerdict(t *testing.T) {
	minimal := `{"verdict": "approved", "overallRisk": "low", "reasoning": "ok", "stepResults": []}`

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"bare json", minimal, false},
		{"fenced with tag", "```json\n" + minimal + "\n```", false},
		{"fenced without tag", "```\n" + minimal + "\n```", false},
		{"prose around json", "My assessment follows.\n" + minimal + "\nLet me know.", false},
		{"full shape", reviewVerdictJSON, false},
		{"no json at all", "everything is approved", true},
		{"empty reply", "", true},
		{"unknown verdict", `{"verdict": "maybe", "overallRisk": "low", "reasoning": "?"}`, true},
		{"missing risk", `{"verdict": "approved", "reasoning": "ok"}`, true},
		{"unknown step verdict", `{"verdict": "approved", "overallRisk": "low", "reasoning": "ok",
			"stepResults": [{"stepId": "s1", "verdict": "fine", "risk": "low"}]}`, true},
		{"unknown step risk", `{"verdict": "approved", "overallRisk": "low", "reasoning": "ok",
			"stepResults": [{"stepId": "s1", "verdict": "approved", "risk": "enormous"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseVerdict(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errInvalidVerdict)
				return
			}
			require.NoError(t, err)
			assert.True(t, v.Verdict.Valid())
			assert.True(t, v.OverallRisk.Valid())
		})
	}
}
