package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

func hashOf(t *testing.T, plan *models.ExecutionPlan) string {
	t.Helper()
	h, err := PlanHash(plan)
	require.NoError(t, err)
	require.Len(t, h, 64)
	return h
}

func TestPlanHashIgnoresIdentityFields(t *testing.T) {
	a := &models.ExecutionPlan{
		ID:        "plan-a",
		JobID:     "job-a",
		Reasoning: "tuesday run",
		Steps: []models.PlanStep{
			{
				ID: "s1", Gear: "files", Action: "write_file",
				Parameters:  map[string]any{"path": "report.txt", "append": true},
				RiskLevel:   models.RiskMedium,
				Description: "write the weekly report",
			},
		},
	}
	b := &models.ExecutionPlan{
		ID:    "plan-b",
		JobID: "job-b",
		Steps: []models.PlanStep{
			{
				ID: "step-one", Gear: "files", Action: "write_file",
				Parameters: map[string]any{"append": true, "path": "report.txt"},
				RiskLevel:  models.RiskMedium,
			},
		},
	}

	assert.Equal(t, hashOf(t, a), hashOf(t, b),
		"same executable content must hash identically across runs")
}

func TestPlanHashCoversExecutableContent(t *testing.T) {
	base := func() *models.ExecutionPlan {
		return &models.ExecutionPlan{
			ID: "p", JobID: "j",
			Steps: []models.PlanStep{
				{ID: "s1", Gear: "files", Action: "read_file",
					Parameters: map[string]any{"path": "a.txt"}, RiskLevel: models.RiskLow},
				{ID: "s2", Gear: "web", Action: "fetch",
					Parameters: map[string]any{"url": "https://example.com"}, RiskLevel: models.RiskLow},
			},
		}
	}
	want := hashOf(t, base())

	t.Run("gear changes the hash", func(t *testing.T) {
		p := base()
		p.Steps[0].Gear = "notes"
		assert.NotEqual(t, want, hashOf(t, p))
	})

	t.Run("action changes the hash", func(t *testing.T) {
		p := base()
		p.Steps[0].Action = "delete_file"
		assert.NotEqual(t, want, hashOf(t, p))
	})

	t.Run("parameter value changes the hash", func(t *testing.T) {
		p := base()
		p.Steps[0].Parameters["path"] = "b.txt"
		assert.NotEqual(t, want, hashOf(t, p))
	})

	t.Run("declared risk changes the hash", func(t *testing.T) {
		p := base()
		p.Steps[1].RiskLevel = models.RiskHigh
		assert.NotEqual(t, want, hashOf(t, p))
	})

	t.Run("step order changes the hash", func(t *testing.T) {
		p := base()
		p.Steps[0], p.Steps[1] = p.Steps[1], p.Steps[0]
		assert.NotEqual(t, want, hashOf(t, p))
	})
}

func TestPlanHashNumberForms(t *testing.T) {
	intPlan := &models.ExecutionPlan{
		ID: "p", JobID: "j",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "timer", Action: "set_timer",
				Parameters: map[string]any{"minutes": 5}, RiskLevel: models.RiskLow},
		},
	}
	floatPlan := &models.ExecutionPlan{
		ID: "p", JobID: "j",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "timer", Action: "set_timer",
				Parameters: map[string]any{"minutes": 5.0}, RiskLevel: models.RiskLow},
		},
	}

	assert.Equal(t, hashOf(t, intPlan), hashOf(t, floatPlan),
		"5 and 5.0 are the same parameter after a JSON round trip")
}

func TestPlanHashUnicodeNormalization(t *testing.T) {
	// "é" composed (U+00E9) versus decomposed (U+0065 U+0301).
	composed := &models.ExecutionPlan{
		ID: "p", JobID: "j",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "notes", Action: "append_entry",
				Parameters: map[string]any{"text": "café"}, RiskLevel: models.RiskLow},
		},
	}
	decomposed := &models.ExecutionPlan{
		ID: "p", JobID: "j",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "notes", Action: "append_entry",
				Parameters: map[string]any{"text": "café"}, RiskLevel: models.RiskLow},
		},
	}

	assert.Equal(t, hashOf(t, composed), hashOf(t, decomposed))
}

func TestPlanHashNilParameters(t *testing.T) {
	withNil := &models.ExecutionPlan{
		ID: "p", JobID: "j",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "clock", Action: "current_time", RiskLevel: models.RiskLow},
		},
	}
	withEmpty := &models.ExecutionPlan{
		ID: "p", JobID: "j",
		Steps: []models.PlanStep{
			{ID: "s1", Gear: "clock", Action: "current_time",
				Parameters: map[string]any{}, RiskLevel: models.RiskLow},
		},
	}

	assert.Equal(t, hashOf(t, withNil), hashOf(t, withEmpty))
}
