package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
)

func fileManagerManifest() *models.GearManifest {
	return &models.GearManifest{
		ID:          "file-manager",
		Name:        "File Manager",
		Version:     "1.2.0",
		Description: "Reads and writes workspace files.",
		Actions: []models.GearAction{
			{
				Name:        "list_files",
				Description: "List files under a workspace path.",
				RiskLevel:   models.RiskLow,
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{
							"type":        "string",
							"description": "Directory relative to the workspace root.",
							"default":     ".",
						},
					},
				},
			},
			{
				Name:        "delete_file",
				Description: "Delete a workspace file.",
				RiskLevel:   models.RiskHigh,
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{"type": "string"},
					},
					"required": []any{"path"},
				},
			},
		},
	}
}

func TestBuildPlanRequest_SystemPrompt(t *testing.T) {
	req := bus.PlanRequest{UserMessage: "list my files", JobID: "job-1"}

	llmReq := buildPlanRequest(req, FormatGearCatalog([]*models.GearManifest{fileManagerManifest()}))

	assert.Contains(t, llmReq.System, "Planning Instructions")
	assert.Contains(t, llmReq.System, "Output Format")
	assert.Contains(t, llmReq.System, "Gear Catalog")
	assert.Contains(t, llmReq.System, "file-manager")
	assert.NotContains(t, llmReq.System, "Path Restriction")

	require.Len(t, llmReq.Messages, 1)
	assert.Equal(t, llm.RoleUser, llmReq.Messages[0].Role)
	assert.Equal(t, "list my files", llmReq.Messages[0].Content)
}

func TestBuildPlanRequest_ForceFullPath(t *testing.T) {
	req := bus.PlanRequest{UserMessage: "delete old logs", JobID: "job-2", ForceFullPath: true}

	llmReq := buildPlanRequest(req, "")

	assert.Contains(t, llmReq.System, "Path Restriction")
	assert.Contains(t, llmReq.System, "fast path is disabled")
}

func TestBuildPlanRequest_EmptyCatalog(t *testing.T) {
	req := bus.PlanRequest{UserMessage: "hello", JobID: "job-3"}

	llmReq := buildPlanRequest(req, "")

	assert.Contains(t, llmReq.System, "No gears are installed")
}

func TestBuildPlanRequest_History(t *testing.T) {
	req := bus.PlanRequest{
		UserMessage: "and in fahrenheit?",
		JobID:       "job-4",
		ConversationHistory: []models.ConversationMessage{
			{Role: models.RoleUser, Content: "what is the temperature?"},
			{Role: models.RoleAssistant, Content: "21 degrees celsius."},
			{Role: models.RoleSystem, Content: "internal annotation"},
		},
	}

	llmReq := buildPlanRequest(req, "")

	require.Len(t, llmReq.Messages, 3, "system-role history rows are dropped")
	assert.Equal(t, llm.RoleUser, llmReq.Messages[0].Role)
	assert.Equal(t, "what is the temperature?", llmReq.Messages[0].Content)
	assert.Equal(t, llm.RoleAssistant, llmReq.Messages[1].Role)
	assert.Equal(t, llm.RoleUser, llmReq.Messages[2].Role)
	assert.Equal(t, "and in fahrenheit?", llmReq.Messages[2].Content)
	assert.NotContains(t, llmReq.System, "internal annotation")
}

func TestFormatGearCatalog(t *testing.T) {
	out := FormatGearCatalog([]*models.GearManifest{fileManagerManifest()})

	assert.Contains(t, out, "1. **file-manager** (v1.2.0): Reads and writes workspace files.")
	assert.Contains(t, out, "`list_files` [low risk]")
	assert.Contains(t, out, "`delete_file` [high risk]")
	assert.Contains(t, out, "path (optional, string): Directory relative to the workspace root. [default: .]")
	assert.Contains(t, out, "path (required, string)")
}

func TestFormatGearCatalog_Empty(t *testing.T) {
	assert.Empty(t, FormatGearCatalog(nil))
	assert.Empty(t, FormatGearCatalog([]*models.GearManifest{}))
}

func TestExtractParameters_SortedAndTyped(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"zeta": map[string]any{"type": "integer"},
			"alpha": map[string]any{
				"type": "string",
				"enum": []any{"a", "b"},
			},
		},
		"required": []any{"zeta"},
	}

	params := extractParameters(schema)
	require.Len(t, params, 2)
	assert.Contains(t, params[0], "alpha (optional, string)")
	assert.Contains(t, params[0], `choices: ["a", "b"]`)
	assert.Contains(t, params[1], "zeta (required, integer)")
}

func TestExtractParameters_NoSchema(t *testing.T) {
	assert.Nil(t, extractParameters(nil))
	assert.Nil(t, extractParameters(map[string]any{"type": "object"}))
}
