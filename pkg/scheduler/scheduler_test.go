package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent"
	entjob "github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/queue"
	"github.com/axisworks/axis/pkg/services"
	testdb "github.com/axisworks/axis/test/database"
)

func newTestScheduler(t *testing.T) (*Service, *ent.Client) {
	t.Helper()
	dbClient := testdb.NewTestClient(t)

	q := queue.NewJobQueue(dbClient.Client, config.QueueConfig{
		WorkerCount:  1,
		JobTimeout:   time.Minute,
		MaxRetries:   0,
		PollInterval: 50 * time.Millisecond,
	}, nil)
	convs := services.NewConversationService(dbClient.Client)

	s := NewService(config.SchedulerConfig{
		Enabled:      true,
		TickInterval: 50 * time.Millisecond,
	}, dbClient.Client, q, convs)
	return s, dbClient.Client
}

// backdate forces a schedule due by moving its next run into the past. The
// value is truncated to what the timestamp column stores so conditional
// writes against it compare equal.
func backdate(t *testing.T, client *ent.Client, id string, by time.Duration) *ent.Schedule {
	t.Helper()
	row, err := client.Schedule.UpdateOneID(id).
		SetNextRunAt(time.Now().Add(-by).Truncate(time.Microsecond)).
		Save(context.Background())
	require.NoError(t, err)
	return row
}

func TestCreateScheduleComputesFirstRun(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	before := time.Now()
	row, err := s.Create(ctx, "morning briefing", "0 9 * * *", "Summarize my calendar for today")
	require.NoError(t, err)

	assert.Equal(t, "morning briefing", row.Name)
	assert.Equal(t, "0 9 * * *", row.CronExpr)
	assert.True(t, row.Enabled)
	assert.True(t, row.NextRunAt.After(before), "first run must be in the future")
	assert.Nil(t, row.LastRunAt)
}

func TestCreateScheduleRejectsBadInput(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "", "0 9 * * *", "content")
	assert.True(t, services.IsValidationError(err))

	_, err = s.Create(ctx, "name", "0 9 * * *", "")
	assert.True(t, services.IsValidationError(err))

	_, err = s.Create(ctx, "name", "not a cron line", "content")
	assert.ErrorContains(t, err, "invalid cron expression")

	_, err = s.Create(ctx, "name", "0 0 30 2 *", "content")
	assert.ErrorContains(t, err, "no run within four years")
}

func TestDispatchDueEnqueuesJob(t *testing.T) {
	s, client := newTestScheduler(t)
	ctx := context.Background()

	row, err := s.Create(ctx, "nightly tidy", "0 3 * * *", "Archive yesterday's notes")
	require.NoError(t, err)
	backdate(t, client, row.ID, time.Minute)

	s.dispatchDue(ctx)

	jobs, err := client.Job.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	jobRow := jobs[0]
	assert.Equal(t, entjob.StatusQueued, jobRow.Status)
	assert.Equal(t, entjob.SourceSchedule, jobRow.Source)
	require.NotNil(t, jobRow.ConversationID)

	// The schedule's content is the job's user message.
	convs := services.NewConversationService(client)
	msg, err := convs.MessageForJob(ctx, jobRow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Archive yesterday's notes", msg.Content)
	assert.Equal(t, *jobRow.ConversationID, msg.ConversationID)

	conv, err := client.Conversation.Get(ctx, *jobRow.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "nightly tidy", conv.Title)

	// The row advanced past now and recorded the run.
	after, err := client.Schedule.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, after.NextRunAt.After(time.Now()))
	require.NotNil(t, after.LastRunAt)
}

func TestDispatchDueSkipsDisabledAndFuture(t *testing.T) {
	s, client := newTestScheduler(t)
	ctx := context.Background()

	future, err := s.Create(ctx, "later", "0 3 * * *", "not yet")
	require.NoError(t, err)

	disabled, err := s.Create(ctx, "off", "0 3 * * *", "never")
	require.NoError(t, err)
	backdate(t, client, disabled.ID, time.Minute)
	require.NoError(t, client.Schedule.UpdateOneID(disabled.ID).SetEnabled(false).Exec(ctx))

	s.dispatchDue(ctx)

	n, err := client.Job.Query().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "neither schedule should fire")

	unchanged, err := client.Schedule.Get(ctx, future.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.LastRunAt)
}

func TestFireLosesRaceExactlyOnce(t *testing.T) {
	s, client := newTestScheduler(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "contended", "0 3 * * *", "only one job")
	require.NoError(t, err)
	stale := backdate(t, client, created.ID, time.Minute)

	// Two replicas read the same row; only the first conditional advance
	// wins the run.
	s.fire(ctx, stale, time.Now())
	s.fire(ctx, stale, time.Now())

	n, err := client.Job.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "the lost race must not enqueue a second job")
}

func TestDispatchDueDisablesUnsatisfiableSchedule(t *testing.T) {
	s, client := newTestScheduler(t)
	ctx := context.Background()

	// Bypass Create to plant an expression that no longer parses, the way
	// a row outlives a parser tightening.
	row, err := client.Schedule.Create().
		SetID("sched-broken").
		SetName("broken").
		SetCronExpr("not a cron line").
		SetContent("unused").
		SetNextRunAt(time.Now().Add(-time.Minute)).
		Save(ctx)
	require.NoError(t, err)

	s.dispatchDue(ctx)

	after, err := client.Schedule.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, after.Enabled, "a schedule that cannot compute its next run must not spin")

	n, err := client.Job.Query().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetEnabledRecomputesNextRun(t *testing.T) {
	s, client := newTestScheduler(t)
	ctx := context.Background()

	row, err := s.Create(ctx, "paused", "0 3 * * *", "content")
	require.NoError(t, err)
	backdate(t, client, row.ID, 48*time.Hour)

	require.NoError(t, s.SetEnabled(ctx, row.ID, false))
	off, err := client.Schedule.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, off.Enabled)

	require.NoError(t, s.SetEnabled(ctx, row.ID, true))
	on, err := client.Schedule.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, on.Enabled)
	assert.True(t, on.NextRunAt.After(time.Now()), "re-enabling must not fire every missed slot")

	err = s.SetEnabled(ctx, "sched-missing", true)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestStartFiresDueSchedules(t *testing.T) {
	s, client := newTestScheduler(t)
	ctx := context.Background()

	row, err := s.Create(ctx, "ticking", "0 3 * * *", "run me")
	require.NoError(t, err)
	backdate(t, client, row.ID, time.Minute)

	s.Start(ctx)
	defer s.Stop()

	require.Eventually(t, func() bool {
		n, err := client.Job.Query().Count(ctx)
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond, "the loop never fired the due schedule")
}

func TestStartDisabledIsInert(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	q := queue.NewJobQueue(dbClient.Client, config.QueueConfig{
		WorkerCount: 1, JobTimeout: time.Minute, PollInterval: 50 * time.Millisecond,
	}, nil)
	convs := services.NewConversationService(dbClient.Client)

	s := NewService(config.SchedulerConfig{Enabled: false, TickInterval: 50 * time.Millisecond},
		dbClient.Client, q, convs)

	s.Start(context.Background())
	s.Stop() // must not hang on a loop that never started
}
