package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/services"
	testdb "github.com/axisworks/axis/test/database"
)

func retentionConfig() config.RetentionConfig {
	return config.RetentionConfig{
		JobDays:   30,
		AuditDays: 90,
		EventDays: 1,
		Interval:  time.Hour,
	}
}

func seedJob(t *testing.T, client *ent.Client, status job.Status, completedAt *time.Time) string {
	t.Helper()
	create := client.Job.Create().
		SetID(uuid.New().String()).
		SetStatus(status)
	if completedAt != nil {
		create = create.SetCompletedAt(*completedAt)
	}
	row, err := create.Save(context.Background())
	require.NoError(t, err)
	return row.ID
}

func remainingJobIDs(t *testing.T, client *ent.Client) []string {
	t.Helper()
	rows, err := client.Job.Query().All(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func TestService_RunAll(t *testing.T) {
	client := testdb.NewTestClient(t)
	retention := services.NewRetentionService(client.Client)
	approvals := services.NewApprovalStore(client.Client)
	svc := NewService(retentionConfig(), retention, approvals)
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -60)
	recent := time.Now().Add(-time.Hour)

	oldJob := seedJob(t, client.Client, job.StatusCompleted, &old)
	recentJob := seedJob(t, client.Client, job.StatusCompleted, &recent)
	liveJob := seedJob(t, client.Client, job.StatusQueued, nil)

	_, err := client.AuditEntry.Create().
		SetID(uuid.New().String()).
		SetActor("test").
		SetAction("job.created").
		SetRiskLevel("low").
		SetTimestamp(time.Now().AddDate(0, 0, -120)).
		Save(ctx)
	require.NoError(t, err)
	_, err = client.AuditEntry.Create().
		SetID(uuid.New().String()).
		SetActor("test").
		SetAction("job.created").
		SetRiskLevel("low").
		Save(ctx)
	require.NoError(t, err)

	_, err = client.Event.Create().
		SetChannel("axis_jobs").
		SetPayload(map[string]any{"type": "status"}).
		SetCreatedAt(time.Now().AddDate(0, 0, -2)).
		Save(ctx)
	require.NoError(t, err)
	_, err = client.Event.Create().
		SetChannel("axis_jobs").
		SetPayload(map[string]any{"type": "status"}).
		Save(ctx)
	require.NoError(t, err)

	res := models.ValidationResult{
		Verdict:     models.VerdictApproved,
		OverallRisk: models.RiskLow,
		Reasoning:   "within policy",
	}
	require.NoError(t, approvals.Put(ctx, "hash-old", res, models.SourceSchedule, time.Millisecond))
	require.NoError(t, approvals.Put(ctx, "hash-live", res, models.SourceSchedule, time.Hour))
	time.Sleep(5 * time.Millisecond)

	svc.runAll(ctx)

	t.Run("deletes terminal jobs past the horizon", func(t *testing.T) {
		ids := remainingJobIDs(t, client.Client)
		assert.NotContains(t, ids, oldJob)
		assert.Contains(t, ids, recentJob)
	})

	t.Run("leaves non-terminal jobs alone", func(t *testing.T) {
		assert.Contains(t, remainingJobIDs(t, client.Client), liveJob)
	})

	t.Run("deletes audit entries past the horizon", func(t *testing.T) {
		n, err := client.AuditEntry.Query().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("deletes events past the catch-up horizon", func(t *testing.T) {
		n, err := client.Event.Query().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("purges expired approval decisions", func(t *testing.T) {
		n, err := client.ApprovalDecision.Query().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = approvals.Get(ctx, "hash-live")
		assert.NoError(t, err)
	})
}

func TestService_ZeroHorizonsDisableSweeps(t *testing.T) {
	client := testdb.NewTestClient(t)
	retention := services.NewRetentionService(client.Client)
	approvals := services.NewApprovalStore(client.Client)
	svc := NewService(config.RetentionConfig{Interval: time.Hour}, retention, approvals)
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -400)
	seedJob(t, client.Client, job.StatusCompleted, &old)
	_, err := client.AuditEntry.Create().
		SetID(uuid.New().String()).
		SetActor("test").
		SetAction("job.created").
		SetRiskLevel("low").
		SetTimestamp(old).
		Save(ctx)
	require.NoError(t, err)

	svc.runAll(ctx)

	jobs, err := client.Job.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, jobs)

	entries, err := client.AuditEntry.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, entries)
}

func TestService_StartStop(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewService(retentionConfig(),
		services.NewRetentionService(client.Client),
		services.NewApprovalStore(client.Client))

	svc.Start(context.Background())
	svc.Start(context.Background()) // second start is a no-op
	svc.Stop()
}
