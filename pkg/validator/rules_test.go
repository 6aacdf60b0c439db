package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

const testWorkspace = "/workspace"

// fakePerms serves gear capabilities from a map.
type fakePerms map[string]*models.GearPermissions

func (f fakePerms) GearPermissions(_ context.Context, gearID string) (*models.GearPermissions, bool) {
	p, ok := f[gearID]
	return p, ok
}

func newEngine(t *testing.T, perms PermissionSource) *RuleEngine {
	t.Helper()
	e, err := NewRuleEngine(testWorkspace, perms)
	require.NoError(t, err)
	return e
}

func planOf(steps ...models.PlanStep) *models.ExecutionPlan {
	return &models.ExecutionPlan{ID: "plan-1", JobID: "job-1", Steps: steps}
}

func TestRuleEngineApprovesBenignPlan(t *testing.T) {
	e := newEngine(t, nil)

	res := e.Evaluate(context.Background(), planOf(
		models.PlanStep{
			ID: "s1", Gear: "files", Action: "read_file",
			Parameters: map[string]any{"path": "docs/notes.txt"},
			RiskLevel:  models.RiskLow,
		},
		models.PlanStep{
			ID: "s2", Gear: "journal", Action: "append_entry",
			Parameters: map[string]any{"text": "met with the garden club"},
			RiskLevel:  models.RiskLow,
		},
	))

	assert.Equal(t, models.VerdictApproved, res.Verdict)
	assert.Equal(t, models.RiskLow, res.OverallRisk)
	assert.Equal(t, "no rule violations", res.Reasoning)
	assert.Equal(t, "plan-1", res.PlanID)
	assert.Equal(t, ModeRules, res.Metadata["mode"])
	require.Len(t, res.StepResults, 2)
	for _, sr := range res.StepResults {
		assert.Equal(t, models.VerdictApproved, sr.Verdict)
	}
}

func TestRuleEngineWorkspaceContainment(t *testing.T) {
	e := newEngine(t, nil)

	tests := []struct {
		name    string
		path    string
		verdict models.Verdict
		reason  string
	}{
		{"dot-dot relative", "notes/../../etc/passwd", models.VerdictRejected, "dot-dot segment"},
		{"dot-dot absolute", "/workspace/../opt/x", models.VerdictRejected, "dot-dot segment"},
		{"dot-dot backslash", `notes\..\x`, models.VerdictRejected, "dot-dot segment"},
		{"absolute outside", "/home/user/x.txt", models.VerdictRejected, "outside the workspace root"},
		{"sibling prefix", "/workspaces/x.txt", models.VerdictRejected, "outside the workspace root"},
		{"absolute inside", "/workspace/docs/x.txt", models.VerdictApproved, ""},
		{"relative inside", "docs/x.txt", models.VerdictApproved, ""},
		{"workspace root itself", "/workspace", models.VerdictApproved, ""},
		{"dots in a name", "docs/a..b.txt", models.VerdictApproved, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(context.Background(), planOf(models.PlanStep{
				ID: "s1", Gear: "files", Action: "read_file",
				Parameters: map[string]any{"path": tt.path},
				RiskLevel:  models.RiskLow,
			}))

			assert.Equal(t, tt.verdict, res.Verdict)
			if tt.reason != "" {
				assert.Contains(t, res.Reasoning, tt.reason)
				assert.Equal(t, models.RiskCritical, res.OverallRisk)
				assert.Equal(t, "security", res.StepResults[0].Category)
			}
		})
	}
}

func TestRuleEngineNetworkTargets(t *testing.T) {
	e := newEngine(t, nil)

	tests := []struct {
		name    string
		url     string
		verdict models.Verdict
	}{
		{"rfc1918 ten", "http://10.0.0.8/admin", models.VerdictRejected},
		{"rfc1918 private", "http://192.168.1.1/", models.VerdictRejected},
		{"loopback v4", "http://127.0.0.1:8080/", models.VerdictRejected},
		{"link local", "http://169.254.0.5/latest/meta-data", models.VerdictRejected},
		{"this-network block", "http://0.0.0.9/", models.VerdictRejected},
		{"loopback v6", "::1", models.VerdictRejected},
		{"unspecified", "http://0.0.0.0/", models.VerdictRejected},
		{"localhost url", "http://localhost:3000/api", models.VerdictRejected},
		{"bare localhost", "localhost", models.VerdictRejected},
		{"public ip", "http://93.184.216.34/", models.VerdictApproved},
		{"public v6 with port", "[2001:db8::1]:443", models.VerdictApproved},
		{"public domain", "https://example.com/page", models.VerdictApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(context.Background(), planOf(models.PlanStep{
				ID: "s1", Gear: "web", Action: "fetch",
				Parameters: map[string]any{"url": tt.url},
				RiskLevel:  models.RiskLow,
			}))

			assert.Equal(t, tt.verdict, res.Verdict)
			if tt.verdict == models.VerdictRejected {
				assert.Equal(t, models.RiskCritical, res.OverallRisk)
				assert.Equal(t, "security", res.StepResults[0].Category)
			}
		})
	}
}

func TestRuleEngineDomainAllowlist(t *testing.T) {
	perms := fakePerms{
		"web": {Network: models.NetworkPermissions{
			Domains: []string{"api.example.com", "*.example.org"},
		}},
	}
	e := newEngine(t, perms)

	step := func(gear, url string) models.PlanStep {
		return models.PlanStep{
			ID: "s1", Gear: gear, Action: "fetch",
			Parameters: map[string]any{"url": url},
			RiskLevel:  models.RiskLow,
		}
	}

	t.Run("exact domain allowed", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(step("web", "https://api.example.com/v1")))
		assert.Equal(t, models.VerdictApproved, res.Verdict)
	})

	t.Run("glob domain allowed", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(step("web", "https://cdn.example.org/asset.css")))
		assert.Equal(t, models.VerdictApproved, res.Verdict)
	})

	t.Run("domain outside allowlist needs revision", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(step("web", "https://example.net/")))
		assert.Equal(t, models.VerdictNeedsRevision, res.Verdict)
		assert.Contains(t, res.Reasoning, "allowlist")
		require.NotEmpty(t, res.SuggestedRevisions)
		assert.Contains(t, res.SuggestedRevisions[0], "api.example.com")
	})

	t.Run("unknown gear needs revision", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(step("ghost", "https://example.net/")))
		assert.Equal(t, models.VerdictNeedsRevision, res.Verdict)
		assert.Contains(t, res.Reasoning, "not installed")
		assert.NotEmpty(t, res.SuggestedRevisions)
	})

	t.Run("private range rejected even when allowlisted gear", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(step("web", "http://10.1.2.3/")))
		assert.Equal(t, models.VerdictRejected, res.Verdict)
	})
}

func TestRuleEngineHardFloors(t *testing.T) {
	e := newEngine(t, nil)

	tests := []struct {
		name   string
		gear   string
		action string
		reason string
	}{
		{"file deletion", "files", "delete_file", "file deletion requires user approval"},
		{"shell gear", "shell", "list_sessions", "shell execution requires user approval"},
		{"shell action", "devtools", "run_command", "shell execution requires user approval"},
		{"money movement", "banker", "transfer_funds", "financial transactions require user approval"},
		{"package install", "system", "install_package", "system configuration changes require user approval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(context.Background(), planOf(models.PlanStep{
				ID: "s1", Gear: tt.gear, Action: tt.action,
				Parameters: map[string]any{},
				RiskLevel:  models.RiskLow,
			}))

			assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
			assert.GreaterOrEqual(t, res.OverallRisk.Rank(), models.RiskHigh.Rank())
			assert.Contains(t, res.Reasoning, tt.reason)
		})
	}
}

func TestRuleEngineCategories(t *testing.T) {
	e := newEngine(t, nil)

	t.Run("security action glob", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(models.PlanStep{
			ID: "s1", Gear: "files", Action: "delete_file",
			Parameters: map[string]any{"path": "old/report.txt"},
			RiskLevel:  models.RiskLow,
		}))

		assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
		assert.Equal(t, models.RiskHigh, res.OverallRisk)
		assert.Equal(t, "security", res.StepResults[0].Category)
		assert.Contains(t, res.Reasoning, "matched security rules")
	})

	t.Run("privacy phrase in parameters", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(models.PlanStep{
			ID: "s1", Gear: "notes", Action: "search_notes",
			Parameters: map[string]any{"query": "where did I write my Credit Card number"},
			RiskLevel:  models.RiskLow,
		}))

		assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
		assert.Equal(t, "privacy", res.StepResults[0].Category)
	})

	t.Run("policy phrase needs revision", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(models.PlanStep{
			ID: "s1", Gear: "notes", Action: "append_entry",
			Parameters: map[string]any{"text": "bypass the weekly review"},
			RiskLevel:  models.RiskLow,
		}))

		assert.Equal(t, models.VerdictNeedsRevision, res.Verdict)
		assert.Equal(t, "policy_compliance", res.StepResults[0].Category)
	})

	t.Run("ethical phrase rejected", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(models.PlanStep{
			ID: "s1", Gear: "mail", Action: "draft_email",
			Parameters: map[string]any{"body": "impersonate the building manager"},
			RiskLevel:  models.RiskLow,
		}))

		assert.Equal(t, models.VerdictRejected, res.Verdict)
		assert.Equal(t, models.RiskCritical, res.OverallRisk)
		assert.Equal(t, "ethical", res.StepResults[0].Category)
	})

	t.Run("phrase match is case insensitive and nested", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(models.PlanStep{
			ID: "s1", Gear: "notes", Action: "append_entry",
			Parameters: map[string]any{
				"entry": map[string]any{"body": "remind me to run RM -RF on the cache"},
			},
			RiskLevel: models.RiskLow,
		}))

		assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
		assert.Equal(t, "security", res.StepResults[0].Category)
	})
}

func TestRuleEngineUndeclaredRisk(t *testing.T) {
	e := newEngine(t, nil)

	res := e.Evaluate(context.Background(), planOf(models.PlanStep{
		ID: "s1", Gear: "files", Action: "read_file",
		Parameters: map[string]any{"path": "docs/x.txt"},
		RiskLevel:  models.RiskLevel("extreme"),
	}))

	assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
	assert.Equal(t, models.RiskCritical, res.OverallRisk)
	assert.Contains(t, res.Reasoning, "undeclared risk level")
}

func TestRuleEngineCompositeRisk(t *testing.T) {
	e := newEngine(t, nil)

	mediumStep := func(id string) models.PlanStep {
		return models.PlanStep{
			ID: id, Gear: "files", Action: "write_file",
			Parameters: map[string]any{"path": "out/" + id + ".txt"},
			RiskLevel:  models.RiskMedium,
		}
	}

	t.Run("three elevated steps compound", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(
			mediumStep("s1"), mediumStep("s2"), mediumStep("s3"),
		))

		assert.Equal(t, models.VerdictNeedsUserApproval, res.Verdict)
		assert.Equal(t, models.RiskHigh, res.OverallRisk)
		assert.Equal(t, true, res.Metadata["composite_risk"])
		assert.Contains(t, res.Reasoning, "compound the blast radius")
	})

	t.Run("two elevated steps do not", func(t *testing.T) {
		res := e.Evaluate(context.Background(), planOf(
			mediumStep("s1"), mediumStep("s2"),
		))

		assert.Equal(t, models.VerdictApproved, res.Verdict)
		assert.Equal(t, models.RiskMedium, res.OverallRisk)
		assert.Nil(t, res.Metadata["composite_risk"])
	})
}

func TestMoreSevere(t *testing.T) {
	assert.Equal(t, models.VerdictRejected, moreSevere(models.VerdictApproved, models.VerdictRejected))
	assert.Equal(t, models.VerdictRejected, moreSevere(models.VerdictRejected, models.VerdictApproved))
	assert.Equal(t, models.VerdictNeedsRevision, moreSevere(models.VerdictNeedsUserApproval, models.VerdictNeedsRevision))
	assert.Equal(t, models.VerdictApproved, moreSevere(models.VerdictApproved, models.VerdictApproved))
}

func TestBumpRisk(t *testing.T) {
	assert.Equal(t, models.RiskMedium, bumpRisk(models.RiskLow))
	assert.Equal(t, models.RiskHigh, bumpRisk(models.RiskMedium))
	assert.Equal(t, models.RiskCritical, bumpRisk(models.RiskHigh))
	assert.Equal(t, models.RiskCritical, bumpRisk(models.RiskCritical))
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://API.Example.com/v1/items", "api.example.com"},
		{"http://10.0.0.8:9090/metrics", "10.0.0.8"},
		{"example.com:8080", "example.com"},
		{"example.com/path/page", "example.com"},
		{"[::1]:8080", "::1"},
		{"  example.com  ", "example.com"},
		{"localhost", "localhost"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractHost(tt.raw), "raw %q", tt.raw)
	}
}

func TestHasDotDot(t *testing.T) {
	assert.True(t, hasDotDot("a/../b"))
	assert.True(t, hasDotDot(".."))
	assert.True(t, hasDotDot(`win\..\sys`))
	assert.False(t, hasDotDot("a..b/c"))
	assert.False(t, hasDotDot("docs/notes.txt"))
	assert.False(t, hasDotDot("a/.../b"))
}

func TestDomainAllowed(t *testing.T) {
	allow := []string{"API.example.com", "*.example.org"}

	assert.True(t, domainAllowed("api.example.com", allow))
	assert.True(t, domainAllowed("cdn.example.org", allow))
	assert.False(t, domainAllowed("example.org", allow))
	assert.False(t, domainAllowed("evil.net", allow))
	assert.False(t, domainAllowed("api.example.com", nil))
}
