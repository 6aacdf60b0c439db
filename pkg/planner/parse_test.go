package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"path":"fast","text":"4"}`,
			want:    `{"path":"fast","text":"4"}`,
		},
		{
			name:    "fenced with language tag",
			content: "Here you go:\n```json\n{\"path\":\"fast\",\"text\":\"4\"}\n```",
			want:    `{"path":"fast","text":"4"}`,
		},
		{
			name:    "fenced without language tag",
			content: "```\n{\"path\":\"fast\",\"text\":\"4\"}\n```",
			want:    `{"path":"fast","text":"4"}`,
		},
		{
			name:    "object embedded in prose",
			content: `Sure! {"path":"fast","text":"done"} Hope that helps.`,
			want:    `{"path":"fast","text":"done"}`,
		},
		{
			name:    "braces inside string values",
			content: `{"path":"fast","text":"use {curly} braces"}`,
			want:    `{"path":"fast","text":"use {curly} braces"}`,
		},
		{
			name:    "no JSON at all",
			content: "I cannot help with that.",
			want:    "",
		},
		{
			name:    "unterminated object",
			content: `{"path":"fast","text":`,
			want:    "",
		},
		{
			name:    "empty input",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}

func TestParsePlanResponse_FastPath(t *testing.T) {
	resp, err := parsePlanResponse(`{"path":"fast","text":"2+2 is 4"}`, "job-1")
	require.NoError(t, err)
	assert.Equal(t, bus.PathFast, resp.Path)
	assert.Equal(t, "2+2 is 4", resp.Text)
	assert.Nil(t, resp.Plan)
}

func TestParsePlanResponse_FullPath(t *testing.T) {
	raw := `{"path":"full","plan":{"steps":[
		{"id":"list","gear":"file-manager","action":"list_files","parameters":{"path":"."},"riskLevel":"low"},
		{"gear":"file-manager","action":"read_file","parameters":{"path":"notes.txt"},"riskLevel":"low"}
	],"reasoning":"list then read"}}`

	resp, err := parsePlanResponse(raw, "job-7")
	require.NoError(t, err)
	assert.Equal(t, bus.PathFull, resp.Path)
	require.NotNil(t, resp.Plan)

	assert.Equal(t, "job-7", resp.Plan.JobID, "job id comes from the request, not the model")
	assert.NotEmpty(t, resp.Plan.ID)
	require.Len(t, resp.Plan.Steps, 2)
	assert.Equal(t, "list", resp.Plan.Steps[0].ID)
	assert.Equal(t, "step-2", resp.Plan.Steps[1].ID, "missing step ids are assigned positionally")
	assert.Equal(t, "list then read", resp.Plan.Reasoning)
}

func TestParsePlanResponse_OverridesModelJobID(t *testing.T) {
	raw := `{"path":"full","plan":{"jobId":"forged","steps":[
		{"id":"s1","gear":"g","action":"a","riskLevel":"low"}
	]}}`

	resp, err := parsePlanResponse(raw, "job-real")
	require.NoError(t, err)
	assert.Equal(t, "job-real", resp.Plan.JobID)
	assert.NotNil(t, resp.Plan.Steps[0].Parameters, "nil parameters normalize to an empty map")
}

func TestParsePlanResponse_MalformedReplies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON", "sorry, I don't know"},
		{"invalid JSON", "```json\n{\"path\": \n```"},
		{"unknown path", `{"path":"sideways","text":"hi"}`},
		{"fast with empty text", `{"path":"fast","text":"  "}`},
		{"full with no plan", `{"path":"full"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePlanResponse(tt.raw, "job-1")
			require.ErrorIs(t, err, errMalformedReply)
		})
	}
}

func TestParsePlanResponse_InvalidPlans(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no steps", `{"path":"full","plan":{"steps":[]}}`},
		{"missing gear", `{"path":"full","plan":{"steps":[{"id":"s1","action":"a","riskLevel":"low"}]}}`},
		{"missing action", `{"path":"full","plan":{"steps":[{"id":"s1","gear":"g","riskLevel":"low"}]}}`},
		{"unknown risk level", `{"path":"full","plan":{"steps":[{"id":"s1","gear":"g","action":"a","riskLevel":"extreme"}]}}`},
		{"duplicate step ids", `{"path":"full","plan":{"steps":[
			{"id":"s1","gear":"g","action":"a","riskLevel":"low"},
			{"id":"s1","gear":"g","action":"b","riskLevel":"low"}
		]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePlanResponse(tt.raw, "job-1")
			require.ErrorIs(t, err, errInvalidPlan)
		})
	}
}

func TestNormalizePlan_KeepsDeclaredRisk(t *testing.T) {
	plan := &models.ExecutionPlan{
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "shell", Action: "run", RiskLevel: models.RiskCritical},
		},
	}

	require.NoError(t, normalizePlan(plan, "job-9"))
	assert.Equal(t, models.RiskCritical, plan.Steps[0].RiskLevel)
	assert.Equal(t, models.RiskCritical, plan.OverallRisk())
}

func TestFormatCorrectionPrompt(t *testing.T) {
	msg := formatCorrectionPrompt(errMalformedReply)
	assert.Contains(t, msg, "could not be used")
	assert.Contains(t, msg, `"path": "fast"`)
	assert.Contains(t, msg, `"path": "full"`)
	assert.Contains(t, msg, errMalformedReply.Error())
}
