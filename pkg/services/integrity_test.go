package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/ent/message"
	"github.com/axisworks/axis/pkg/metrics"
	testdb "github.com/axisworks/axis/test/database"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrityScanner_ScanOnce(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	t.Run("clean database reports zero orphans", func(t *testing.T) {
		scanner := NewIntegrityScanner(client.DB(), nil, nil, slog.Default(), time.Hour)
		report, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, report.Total())
	})

	t.Run("counts orphans per probe", func(t *testing.T) {
		// Healthy rows: a conversation with a message, a job with an audit
		// entry, a subjob with a live parent.
		conv, err := client.Conversation.Create().SetID(uuid.New().String()).SetTitle("ok").Save(ctx)
		require.NoError(t, err)
		_, err = client.Message.Create().
			SetID(uuid.New().String()).
			SetConversationID(conv.ID).
			SetRole(message.RoleUser).
			SetContent("hello").
			Save(ctx)
		require.NoError(t, err)

		parent, err := client.Job.Create().SetID(uuid.New().String()).Save(ctx)
		require.NoError(t, err)
		_, err = client.Job.Create().
			SetID(uuid.New().String()).
			SetParentJobID(parent.ID).
			SetSource(job.SourceSubjob).
			Save(ctx)
		require.NoError(t, err)
		_, err = client.AuditEntry.Create().
			SetID(uuid.New().String()).
			SetActor("pipeline").
			SetAction("job:start").
			SetRiskLevel("low").
			SetJobID(parent.ID).
			Save(ctx)
		require.NoError(t, err)

		// Orphans: dangling conversation, job and parent references.
		_, err = client.Message.Create().
			SetID(uuid.New().String()).
			SetConversationID(uuid.New().String()).
			SetRole(message.RoleUser).
			SetContent("orphan").
			Save(ctx)
		require.NoError(t, err)
		_, err = client.AuditEntry.Create().
			SetID(uuid.New().String()).
			SetActor("pipeline").
			SetAction("job:finish").
			SetRiskLevel("low").
			SetJobID(uuid.New().String()).
			Save(ctx)
		require.NoError(t, err)
		_, err = client.Job.Create().
			SetID(uuid.New().String()).
			SetParentJobID(uuid.New().String()).
			SetSource(job.SourceSubjob).
			Save(ctx)
		require.NoError(t, err)

		m := metrics.New()
		scanner := NewIntegrityScanner(client.DB(), nil, m, slog.Default(), time.Hour)
		report, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, report.OrphanedAuditEntries)
		assert.Equal(t, 1, report.OrphanedMessages)
		assert.Equal(t, 1, report.OrphanedSubjobs)
		assert.Equal(t, 3, report.Total())

		assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrityOrphans.WithLabelValues("audit_jobs")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrityOrphans.WithLabelValues("message_conversations")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrityOrphans.WithLabelValues("subjob_parents")))
	})
}

func TestIntegrityScanner_RecordsAudit(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	// One orphaned message is enough to trip the report.
	_, err := client.Message.Create().
		SetID(uuid.New().String()).
		SetConversationID(uuid.New().String()).
		SetRole(message.RoleUser).
		SetContent("orphan").
		Save(ctx)
	require.NoError(t, err)

	audit := NewAuditService(client.Client, slog.Default())
	scanner := NewIntegrityScanner(client.DB(), audit, nil, slog.Default(), time.Hour)

	scanner.scan(ctx)
	audit.Stop()

	entries, err := audit.List(ctx, AuditFilter{Action: "integrity:orphans"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "integrity", entries[0].Actor)
	assert.Equal(t, float64(1), entries[0].Details["orphanedMessages"])
}
