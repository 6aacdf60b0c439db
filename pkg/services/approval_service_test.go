package services

import (
	"context"
	"testing"
	"time"

	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedResult() models.ValidationResult {
	return models.ValidationResult{
		Verdict:     models.VerdictApproved,
		OverallRisk: models.RiskLow,
		Reasoning:   "all steps within policy",
	}
}

func TestApprovalStore_PutAndGet(t *testing.T) {
	client := testdb.NewTestClient(t)
	store := NewApprovalStore(client.Client)
	ctx := context.Background()

	t.Run("stores and retrieves a decision", func(t *testing.T) {
		err := store.Put(ctx, "hash-a", approvedResult(), models.SourceSchedule, time.Hour)
		require.NoError(t, err)

		dec, err := store.Get(ctx, "hash-a")
		require.NoError(t, err)
		assert.Equal(t, "approved", dec.Verdict)
		assert.Equal(t, "low", dec.OverallRisk)
		assert.Equal(t, "schedule", dec.Source)
	})

	t.Run("replaces the decision for the same hash", func(t *testing.T) {
		res := approvedResult()
		res.Verdict = models.VerdictNeedsUserApproval
		res.OverallRisk = models.RiskHigh
		err := store.Put(ctx, "hash-a", res, models.SourceSchedule, time.Hour)
		require.NoError(t, err)

		dec, err := store.Get(ctx, "hash-a")
		require.NoError(t, err)
		assert.Equal(t, "needs_user_approval", dec.Verdict)

		n, err := client.ApprovalDecision.Query().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unknown hash returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "hash-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired decision is treated as missing", func(t *testing.T) {
		err := store.Put(ctx, "hash-exp", approvedResult(), models.SourceSchedule, time.Millisecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		_, err = store.Get(ctx, "hash-exp")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestApprovalStore_PurgeExpired(t *testing.T) {
	client := testdb.NewTestClient(t)
	store := NewApprovalStore(client.Client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "hash-old", approvedResult(), models.SourceSchedule, time.Millisecond))
	require.NoError(t, store.Put(ctx, "hash-live", approvedResult(), models.SourceSchedule, time.Hour))
	time.Sleep(5 * time.Millisecond)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Get(ctx, "hash-live")
	assert.NoError(t, err)
}
