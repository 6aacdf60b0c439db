package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationService_CreateAndGet(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewConversationService(client.Client)
	ctx := context.Background()

	t.Run("creates conversation with title", func(t *testing.T) {
		conv, err := svc.CreateConversation(ctx, "morning checkin")
		require.NoError(t, err)
		assert.NotEmpty(t, conv.ID)
		assert.Equal(t, "morning checkin", conv.Title)
		assert.False(t, conv.CreatedAt.IsZero())
	})

	t.Run("gets existing conversation", func(t *testing.T) {
		created, err := svc.CreateConversation(ctx, "t")
		require.NoError(t, err)

		got, err := svc.GetConversation(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := svc.GetConversation(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConversationService_EnsureConversation(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewConversationService(client.Client)
	ctx := context.Background()

	t.Run("creates new conversation when id is empty", func(t *testing.T) {
		conv, err := svc.EnsureConversation(ctx, "", "what is the weather today?")
		require.NoError(t, err)
		assert.NotEmpty(t, conv.ID)
		assert.Equal(t, "what is the weather today?", conv.Title)
	})

	t.Run("truncates long titles", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "weather "
		}
		conv, err := svc.EnsureConversation(ctx, "", long)
		require.NoError(t, err)
		assert.Len(t, []rune(conv.Title), 80)
	})

	t.Run("resolves existing conversation by id", func(t *testing.T) {
		created, err := svc.CreateConversation(ctx, "existing")
		require.NoError(t, err)

		conv, err := svc.EnsureConversation(ctx, created.ID, "ignored")
		require.NoError(t, err)
		assert.Equal(t, created.ID, conv.ID)
		assert.Equal(t, "existing", conv.Title)
	})

	t.Run("unknown id is not created implicitly", func(t *testing.T) {
		_, err := svc.EnsureConversation(ctx, uuid.New().String(), "hello")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConversationService_AddMessage(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewConversationService(client.Client)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "chat")
	require.NoError(t, err)

	t.Run("persists message and touches conversation", func(t *testing.T) {
		before, err := svc.GetConversation(ctx, conv.ID)
		require.NoError(t, err)

		msg, err := svc.AddMessage(ctx, models.NewMessage{
			ConversationID: conv.ID,
			Role:           models.RoleUser,
			Content:        "list files in workspace",
			JobID:          "job-1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, conv.ID, msg.ConversationID)
		require.NotNil(t, msg.JobID)
		assert.Equal(t, "job-1", *msg.JobID)

		after, err := svc.GetConversation(ctx, conv.ID)
		require.NoError(t, err)
		assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	})

	t.Run("rejects missing conversation id", func(t *testing.T) {
		_, err := svc.AddMessage(ctx, models.NewMessage{Role: models.RoleUser, Content: "x"})
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := svc.AddMessage(ctx, models.NewMessage{ConversationID: conv.ID, Role: models.RoleUser})
		assert.True(t, IsValidationError(err))
	})
}

func TestConversationService_ListMessages(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewConversationService(client.Client)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "paged")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := svc.AddMessage(ctx, models.NewMessage{
			ConversationID: conv.ID,
			Role:           models.RoleUser,
			Content:        fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	t.Run("returns messages in chronological order", func(t *testing.T) {
		msgs, err := svc.ListMessages(ctx, conv.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 5)
		assert.Equal(t, "message 0", msgs[0].Content)
		assert.Equal(t, "message 4", msgs[4].Content)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		msgs, err := svc.ListMessages(ctx, conv.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "message 2", msgs[0].Content)
		assert.Equal(t, "message 3", msgs[1].Content)
	})

	t.Run("empty page beyond the end", func(t *testing.T) {
		msgs, err := svc.ListMessages(ctx, conv.ID, 10, 50)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestConversationService_RecentHistory(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewConversationService(client.Client)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "history")
	require.NoError(t, err)
	roles := []models.MessageRole{models.RoleUser, models.RoleAssistant, models.RoleUser, models.RoleAssistant}
	for i, role := range roles {
		_, err := svc.AddMessage(ctx, models.NewMessage{
			ConversationID: conv.ID,
			Role:           role,
			Content:        fmt.Sprintf("turn %d", i),
		})
		require.NoError(t, err)
	}

	t.Run("returns last N messages oldest first", func(t *testing.T) {
		history, err := svc.RecentHistory(ctx, conv.ID, 3)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "turn 1", history[0].Content)
		assert.Equal(t, "turn 3", history[2].Content)
		assert.Equal(t, models.RoleAssistant, history[2].Role)
	})

	t.Run("window larger than conversation returns everything", func(t *testing.T) {
		history, err := svc.RecentHistory(ctx, conv.ID, 100)
		require.NoError(t, err)
		assert.Len(t, history, 4)
	})

	t.Run("zero window returns nothing", func(t *testing.T) {
		history, err := svc.RecentHistory(ctx, conv.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestConversationService_MessageForJob(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewConversationService(client.Client)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "jobs")
	require.NoError(t, err)

	jobID := uuid.New().String()
	_, err = svc.AddMessage(ctx, models.NewMessage{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        "do the thing",
		JobID:          jobID,
	})
	require.NoError(t, err)

	// Assistant replies on the same job must not shadow the trigger.
	_, err = svc.AddMessage(ctx, models.NewMessage{
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Content:        "done",
		JobID:          jobID,
	})
	require.NoError(t, err)

	t.Run("finds the triggering user message", func(t *testing.T) {
		msg, err := svc.MessageForJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, "do the thing", msg.Content)
	})

	t.Run("unknown job returns ErrNotFound", func(t *testing.T) {
		_, err := svc.MessageForJob(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
