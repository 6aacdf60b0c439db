package api

import (
	"fmt"
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/pkg/models"
)

// maxMessageBytes bounds a single inbound message body.
const maxMessageBytes = 64 << 10

// createMessageHandler handles POST /api/messages. The message is persisted,
// a job is enqueued, and 202 returns immediately; processing happens on the
// worker pool.
func (s *Server) createMessageHandler(c *echo.Context) error {
	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, "malformed request body")
	}
	if req.Content == "" {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, "content is required")
	}
	if len(req.Content) > maxMessageBytes {
		return writeError(c, http.StatusRequestEntityTooLarge, models.CodeValidation,
			fmt.Sprintf("content exceeds maximum size of %d bytes", maxMessageBytes))
	}

	ctx := c.Request().Context()

	conv, err := s.convs.EnsureConversation(ctx, req.ConversationID, req.Content)
	if err != nil {
		return writeServiceError(c, err)
	}

	row, err := s.jobs.Enqueue(ctx, models.NewJob{
		ConversationID: conv.ID,
		Source:         models.SourceUser,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	// The message row links to the job so workers can find the request text.
	// If this write fails the queued job would spin on a missing message, so
	// the job is cancelled before reporting the error.
	if _, err := s.convs.AddMessage(ctx, models.NewMessage{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        req.Content,
		JobID:          row.ID,
	}); err != nil {
		if _, cancelErr := s.jobs.Cancel(ctx, row.ID); cancelErr != nil {
			return writeServiceError(c, fmt.Errorf("persist message: %w (job %s left queued)", err, row.ID))
		}
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusAccepted, &MessageAcceptedResponse{
		JobID:          row.ID,
		ConversationID: conv.ID,
	})
}

// listMessagesHandler handles GET /api/conversations/:id/messages with
// limit/offset pagination.
func (s *Server) listMessagesHandler(c *echo.Context) error {
	conversationID := c.Param("id")

	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	ctx := c.Request().Context()

	// 404 for a conversation that never existed; an empty page is reserved
	// for conversations that exist but have no messages there.
	if _, err := s.convs.GetConversation(ctx, conversationID); err != nil {
		return writeServiceError(c, err)
	}

	rows, err := s.convs.ListMessages(ctx, conversationID, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}

	views := make([]MessageView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toMessageView(row))
	}
	return c.JSON(http.StatusOK, &MessagesResponse{
		ConversationID: conversationID,
		Messages:       views,
		Limit:          limit,
		Offset:         offset,
	})
}
