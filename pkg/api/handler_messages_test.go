package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entjob "github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/models"
)

func TestCreateMessageEnqueuesJob(t *testing.T) {
	h := newTestServer(t)
	ctx := context.Background()

	rec := h.request(t, http.MethodPost, "/api/messages",
		CreateMessageRequest{Content: "list the files in my notes folder"})

	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted MessageAcceptedResponse
	decodeJSON(t, rec, &accepted)
	require.NotEmpty(t, accepted.JobID)
	require.NotEmpty(t, accepted.ConversationID)

	row, err := h.jobs.Get(ctx, accepted.JobID)
	require.NoError(t, err)
	assert.Equal(t, entjob.StatusQueued, row.Status)
	assert.Equal(t, entjob.SourceUser, row.Source)
	require.NotNil(t, row.ConversationID)
	assert.Equal(t, accepted.ConversationID, *row.ConversationID)

	msg, err := h.convs.MessageForJob(ctx, accepted.JobID)
	require.NoError(t, err)
	assert.Equal(t, "list the files in my notes folder", msg.Content)

	conv, err := h.convs.GetConversation(ctx, accepted.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "list the files in my notes folder", conv.Title)
}

func TestCreateMessageAppendsToExistingConversation(t *testing.T) {
	h := newTestServer(t)
	ctx := context.Background()

	conv, err := h.convs.CreateConversation(ctx, "ongoing thread")
	require.NoError(t, err)

	rec := h.request(t, http.MethodPost, "/api/messages",
		CreateMessageRequest{Content: "and another thing", ConversationID: conv.ID})

	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted MessageAcceptedResponse
	decodeJSON(t, rec, &accepted)
	assert.Equal(t, conv.ID, accepted.ConversationID)

	// The existing title stays; only brand new conversations derive one.
	reloaded, err := h.convs.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "ongoing thread", reloaded.Title)
}

func TestCreateMessageValidation(t *testing.T) {
	h := newTestServer(t)

	t.Run("empty content", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/api/messages", CreateMessageRequest{})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, models.CodeValidation, body.Code)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/api/messages",
			CreateMessageRequest{Content: "hello", ConversationID: "conv-missing"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		rec := h.requestNoAuth(t, http.MethodPost, "/api/messages",
			CreateMessageRequest{Content: "hello"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListMessagesPaginates(t *testing.T) {
	h := newTestServer(t)
	ctx := context.Background()

	conv, err := h.convs.CreateConversation(ctx, "paged")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := h.convs.AddMessage(ctx, models.NewMessage{
			ConversationID: conv.ID,
			Role:           models.RoleUser,
			Content:        fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	rec := h.request(t, http.MethodGet,
		"/api/conversations/"+conv.ID+"/messages?limit=2&offset=1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var page MessagesResponse
	decodeJSON(t, rec, &page)
	assert.Equal(t, conv.ID, page.ConversationID)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "message 1", page.Messages[0].Content)
	assert.Equal(t, "message 2", page.Messages[1].Content)
}

func TestListMessagesUnknownConversation(t *testing.T) {
	h := newTestServer(t)

	rec := h.request(t, http.MethodGet, "/api/conversations/conv-missing/messages", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	decodeJSON(t, rec, &body)
	assert.Equal(t, models.CodeNotFound, body.Code)
}
