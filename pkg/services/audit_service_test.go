package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_Record(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	t.Run("persists records asynchronously", func(t *testing.T) {
		svc := NewAuditService(client.Client, slog.Default())
		defer svc.Stop()

		svc.Record(ctx, models.AuditRecord{
			Actor:     "gateway",
			Action:    "dispatch:plan.request",
			RiskLevel: models.RiskLow,
			JobID:     "job-1",
			Details:   map[string]any{"to": "scout"},
		})

		require.Eventually(t, func() bool {
			n, err := client.AuditEntry.Query().Count(ctx)
			return err == nil && n == 1
		}, 2*time.Second, 20*time.Millisecond)

		entries, err := svc.List(ctx, AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "gateway", entries[0].Actor)
		assert.Equal(t, "dispatch:plan.request", entries[0].Action)
		assert.Equal(t, "low", entries[0].RiskLevel)
		require.NotNil(t, entries[0].JobID)
		assert.Equal(t, "job-1", *entries[0].JobID)
		assert.Equal(t, "scout", entries[0].Details["to"])
	})

	t.Run("fills id, timestamp and risk defaults", func(t *testing.T) {
		svc := NewAuditService(client.Client, slog.Default())

		svc.Record(ctx, models.AuditRecord{Actor: "pipeline", Action: "job:start"})
		svc.Stop() // drains the queue

		entries, err := svc.List(ctx, AuditFilter{Action: "job:start"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotEmpty(t, entries[0].ID)
		assert.False(t, entries[0].Timestamp.IsZero())
		assert.Equal(t, "low", entries[0].RiskLevel)
	})
}

func TestAuditService_StopDrainsQueue(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	svc := NewAuditService(client.Client, slog.Default())

	for i := 0; i < 50; i++ {
		svc.Record(ctx, models.AuditRecord{Actor: "worker-1", Action: "job:transition"})
	}
	svc.Stop()

	n, err := client.AuditEntry.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Zero(t, svc.Dropped())
}

func TestAuditService_List(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	svc := NewAuditService(client.Client, slog.Default())

	records := []models.AuditRecord{
		{Actor: "gateway", Action: "dispatch:plan.request", JobID: "job-a"},
		{Actor: "gateway", Action: "dispatch:validate.request", JobID: "job-a"},
		{Actor: "sentinel", Action: "verdict:approved", JobID: "job-b", RiskLevel: models.RiskMedium},
	}
	for _, rec := range records {
		svc.Record(ctx, rec)
	}
	svc.Stop()

	t.Run("filters by actor", func(t *testing.T) {
		entries, err := svc.List(ctx, AuditFilter{Actor: "gateway"})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("filters by action", func(t *testing.T) {
		entries, err := svc.List(ctx, AuditFilter{Action: "verdict:approved"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "sentinel", entries[0].Actor)
	})

	t.Run("filters by job id", func(t *testing.T) {
		entries, err := svc.List(ctx, AuditFilter{JobID: "job-a"})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("paginates", func(t *testing.T) {
		page1, err := svc.List(ctx, AuditFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page1, 2)

		page2, err := svc.List(ctx, AuditFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, page2, 1)
	})
}
