package validator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/services"
	testdb "github.com/axisworks/axis/test/database"
)

func TestApprovalStoreAdapter(t *testing.T) {
	client := testdb.NewTestClient(t)
	adapter := NewApprovalStoreAdapter(services.NewApprovalStore(client.Client))
	ctx := context.Background()

	t.Run("round-trips a decision", func(t *testing.T) {
		res := models.ValidationResult{
			Verdict:     models.VerdictApproved,
			OverallRisk: models.RiskLow,
			Reasoning:   "all steps within policy",
		}
		require.NoError(t, adapter.Put(ctx, "hash-a", res, models.SourceSchedule, time.Hour))

		dec, err := adapter.Fetch(ctx, "hash-a")
		require.NoError(t, err)
		require.NotNil(t, dec)
		assert.Equal(t, models.VerdictApproved, dec.Verdict)
		assert.Equal(t, models.RiskLow, dec.OverallRisk)
		assert.Equal(t, "all steps within policy", dec.Reasoning)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		dec, err := adapter.Fetch(ctx, "hash-missing")
		require.NoError(t, err)
		assert.Nil(t, dec)
	})

	t.Run("expired decision is a miss", func(t *testing.T) {
		res := models.ValidationResult{
			Verdict:     models.VerdictApproved,
			OverallRisk: models.RiskLow,
			Reasoning:   "short-lived",
		}
		require.NoError(t, adapter.Put(ctx, "hash-exp", res, models.SourceSchedule, time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		dec, err := adapter.Fetch(ctx, "hash-exp")
		require.NoError(t, err)
		assert.Nil(t, dec)
	})
}
