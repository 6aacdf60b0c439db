package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/sandbox"
)

// fastReply scripts a clean fast-path planner response.
func fastReply(text string) llm.ScriptedResponse {
	raw, _ := json.Marshal(map[string]any{"path": "fast", "text": text})
	return llm.ScriptedResponse{Text: string(raw)}
}

// fullPlan scripts a full-path planner response carrying the given steps.
func fullPlan(steps ...map[string]any) llm.ScriptedResponse {
	raw, _ := json.Marshal(map[string]any{
		"path": "full",
		"plan": map[string]any{"steps": steps},
	})
	return llm.ScriptedResponse{Text: string(raw)}
}

// planStep builds one step for fullPlan.
func planStep(id, gearID, action string, params map[string]any, risk string) map[string]any {
	return map[string]any{
		"id":         id,
		"gear":       gearID,
		"action":     action,
		"parameters": params,
		"riskLevel":  risk,
	}
}

// installBuiltin writes a stub entry point under the app's gear root,
// installs the manifest, and registers fn as the in-process implementation.
// With no filesystem or network permissions declared the host runs it in the
// isolate tier, so nothing is spawned.
func installBuiltin(t *testing.T, app *TestApp, m *models.GearManifest, fn sandbox.BuiltinFunc) {
	t.Helper()

	entry := filepath.Join(m.ID, "main.py")
	path := filepath.Join(app.Config.Sandbox.GearRoot, entry)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# "+m.ID+" builtin stub v1\n"), 0o755))

	_, err := app.Gears.Install(context.Background(), m, entry)
	require.NoError(t, err)
	app.Host.RegisterBuiltin(m.ID, fn)
}

// tamperGearEntry overwrites an installed gear's entry point so the next
// integrity check sees a checksum mismatch.
func tamperGearEntry(t *testing.T, app *TestApp, gearID string) {
	t.Helper()
	path := filepath.Join(app.Config.Sandbox.GearRoot, gearID, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("# tampered\n"), 0o755))
}

// echoGear is a harmless low-risk builtin used by the happy paths.
func echoGear() *models.GearManifest {
	return &models.GearManifest{
		ID:          "echo",
		Name:        "Echo",
		Version:     "1.0.0",
		Description: "Echoes text back.",
		Author:      "axis",
		Origin:      models.OriginBuiltin,
		Actions: []models.GearAction{
			{
				Name:        "say",
				Description: "Echo the given text.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{"type": "string"},
					},
					"required":             []any{"text"},
					"additionalProperties": false,
				},
				RiskLevel: "low",
			},
		},
	}
}

// echoBuiltin counts invocations and echoes the text parameter back.
func echoBuiltin(calls *atomic.Int32) sandbox.BuiltinFunc {
	return func(_ context.Context, action string, params map[string]any) (map[string]any, error) {
		calls.Add(1)
		if action != "say" {
			return nil, fmt.Errorf("unknown action %q", action)
		}
		return map[string]any{"echoed": params["text"]}, nil
	}
}

// fileManagerGear declares a delete action that trips the approval floor.
func fileManagerGear() *models.GearManifest {
	return &models.GearManifest{
		ID:          "file-manager",
		Name:        "File Manager",
		Version:     "1.0.0",
		Description: "Manages workspace files.",
		Author:      "axis",
		Origin:      models.OriginBuiltin,
		Actions: []models.GearAction{
			{
				Name:        "delete_file",
				Description: "Delete a file from the workspace.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{"type": "string"},
					},
					"required":             []any{"path"},
					"additionalProperties": false,
				},
				RiskLevel: "medium",
			},
		},
	}
}
