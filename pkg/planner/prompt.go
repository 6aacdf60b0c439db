package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
)

// plannerInstructions is the role framing for every plan request.
const plannerInstructions = `## Planning Instructions

You are the planning component of a self-hosted personal assistant. For every
user request you decide between two paths:

- **fast**: the request needs no tools. Answer it directly in text.
- **full**: the request needs work performed through gears (installed tools).
  Produce an ordered execution plan.

Choose the fast path only when you can fully answer from the conversation
alone. Never claim an action was performed on the fast path: anything that
reads, writes, sends, schedules, or deletes must go through a plan so it can
be reviewed before it runs.`

// outputSchema tells the model the exact reply shapes the parser accepts.
const outputSchema = `## Output Format

Respond with ONLY a JSON object. No prose before or after it.

Fast path:
{"path": "fast", "text": "<your reply to the user>"}

Full path:
{"path": "full", "plan": {"steps": [{"id": "step-1", "gear": "<gear id>", "action": "<action name>", "parameters": {}, "riskLevel": "low", "description": "<what this step does>"}], "reasoning": "<why this plan>"}}

Rules:
- Use only gears and actions listed in the catalog below, with their declared
  parameter names.
- riskLevel is one of: low, medium, high, critical. Declare the honest blast
  radius of each step, not the level most likely to be approved.
- Order steps so earlier results satisfy later dependencies.
- Give every step a unique id.`

// forceFullInstruction is appended when the fast path has been disabled for
// this request (the verifier flagged a previous text reply).
const forceFullInstruction = `## Path Restriction

The fast path is disabled for this request. Respond with {"path": "full", ...}
and an execution plan, even if the work seems trivial. If the request truly
requires no gear, plan the single closest read-only action.`

// emptyCatalogNotice replaces the gear catalog when nothing is installed.
const emptyCatalogNotice = `No gears are installed. Every request must be answered on the fast path.`

// buildPlanRequest composes the provider-neutral chat request for one plan
// request: system prompt (instructions + output schema + gear catalog),
// conversation history, then the user message.
func buildPlanRequest(req bus.PlanRequest, catalog string) llm.Request {
	var system strings.Builder
	system.WriteString(plannerInstructions)
	system.WriteString("\n\n")
	system.WriteString(outputSchema)
	if req.ForceFullPath {
		system.WriteString("\n\n")
		system.WriteString(forceFullInstruction)
	}
	system.WriteString("\n\n## Gear Catalog\n\n")
	if catalog == "" {
		system.WriteString(emptyCatalogNotice)
	} else {
		system.WriteString(catalog)
	}

	messages := make([]llm.Message, 0, len(req.ConversationHistory)+1)
	for _, m := range req.ConversationHistory {
		// System-role rows (internal annotations) never reach the provider.
		switch m.Role {
		case models.RoleUser:
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case models.RoleAssistant:
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.UserMessage})

	return llm.Request{
		System:   system.String(),
		Messages: messages,
	}
}

// FormatGearCatalog renders enabled gear manifests for prompt injection,
// including per-action parameter detail extracted from the declared
// JSON-Schema documents.
func FormatGearCatalog(manifests []*models.GearManifest) string {
	if len(manifests) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, m := range manifests {
		sb.WriteString(fmt.Sprintf("%d. **%s** (v%s): %s\n", i+1, m.ID, m.Version, m.Description))

		for _, a := range m.Actions {
			sb.WriteString(fmt.Sprintf("   - `%s` [%s risk]: %s\n", a.Name, a.RiskLevel, a.Description))
			for _, p := range extractParameters(a.Parameters) {
				sb.WriteString("     - ")
				sb.WriteString(p)
				sb.WriteString("\n")
			}
		}

		if i < len(manifests)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// extractParameters flattens a JSON-Schema document into one description
// line per property, sorted for deterministic output.
func extractParameters(schema map[string]any) []string {
	if schema == nil {
		return nil
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	required := make(map[string]bool)
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var params []string
	for _, name := range keys {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}

		reqLabel := "optional"
		if required[name] {
			reqLabel = "required"
		}
		typeSuffix := ""
		if t, ok := prop["type"].(string); ok {
			typeSuffix = ", " + t
		}

		var parts []string
		parts = append(parts, name, fmt.Sprintf(" (%s%s)", reqLabel, typeSuffix))

		if desc, ok := prop["description"].(string); ok && desc != "" {
			parts = append(parts, ": "+desc)
		}

		var hints []string
		if def, ok := prop["default"]; ok {
			hints = append(hints, fmt.Sprintf("default: %v", def))
		}
		if enum, ok := prop["enum"].([]any); ok {
			vals := make([]string, 0, len(enum))
			for _, v := range enum {
				vals = append(vals, fmt.Sprintf("%q", v))
			}
			hints = append(hints, "choices: ["+strings.Join(vals, ", ")+"]")
		}
		if len(hints) > 0 {
			parts = append(parts, " ["+strings.Join(hints, "; ")+"]")
		}

		params = append(params, strings.Join(parts, ""))
	}

	return params
}
