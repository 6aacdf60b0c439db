package services

import (
	"context"
	"fmt"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/conversation"
	"github.com/axisworks/axis/ent/message"
	"github.com/axisworks/axis/pkg/models"
	"github.com/google/uuid"
)

// ConversationService manages conversations and the messages inside them.
// The gateway creates conversations and user messages; the pipeline appends
// assistant messages and reads history windows for plan requests.
type ConversationService struct {
	client *ent.Client
}

// NewConversationService creates a new ConversationService
func NewConversationService(client *ent.Client) *ConversationService {
	return &ConversationService{client: client}
}

// CreateConversation creates an empty conversation. Title may be blank; the
// gateway derives one from the first user message.
func (s *ConversationService) CreateConversation(ctx context.Context, title string) (*ent.Conversation, error) {
	conv, err := s.client.Conversation.Create().
		SetID(uuid.New().String()).
		SetTitle(title).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation retrieves a conversation by ID
func (s *ConversationService) GetConversation(ctx context.Context, id string) (*ent.Conversation, error) {
	conv, err := s.client.Conversation.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// EnsureConversation resolves the conversation a new message belongs to.
// An empty id creates a fresh conversation titled from the message content;
// a non-empty id must reference an existing row.
func (s *ConversationService) EnsureConversation(ctx context.Context, id, content string) (*ent.Conversation, error) {
	if id != "" {
		return s.GetConversation(ctx, id)
	}
	return s.CreateConversation(ctx, deriveTitle(content))
}

// deriveTitle produces a short conversation title from the first message.
func deriveTitle(content string) string {
	const maxTitle = 80
	runes := []rune(content)
	if len(runes) > maxTitle {
		return string(runes[:maxTitle])
	}
	return content
}

// AddMessage appends a message to a conversation and bumps the
// conversation's updated_at inside one transaction.
func (s *ConversationService) AddMessage(ctx context.Context, req models.NewMessage) (*ent.Message, error) {
	if req.ConversationID == "" {
		return nil, NewValidationError("conversation_id", "required")
	}
	if req.Role == "" {
		return nil, NewValidationError("role", "required")
	}
	if req.Content == "" {
		return nil, NewValidationError("content", "required")
	}

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	create := tx.Message.Create().
		SetID(uuid.New().String()).
		SetConversationID(req.ConversationID).
		SetRole(message.Role(req.Role)).
		SetContent(req.Content)
	if req.JobID != "" {
		create = create.SetJobID(req.JobID)
	}
	msg, err := create.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	_, err = tx.Conversation.Update().
		Where(conversation.IDEQ(req.ConversationID)).
		SetUpdatedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a page of a conversation's messages in chronological
// order. Limit is clamped to [1, 500] with a default of 50.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*ent.Message, error) {
	if conversationID == "" {
		return nil, NewValidationError("conversation_id", "required")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.client.Message.Query().
		Where(message.ConversationIDEQ(conversationID)).
		Order(ent.Asc(message.FieldCreatedAt)).
		Limit(limit).
		Offset(offset).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// RecentHistory returns the last `window` messages of a conversation in
// chronological order, shaped for a plan request.
func (s *ConversationService) RecentHistory(ctx context.Context, conversationID string, window int) ([]models.ConversationMessage, error) {
	if window <= 0 {
		return nil, nil
	}

	rows, err := s.client.Message.Query().
		Where(message.ConversationIDEQ(conversationID)).
		Order(ent.Desc(message.FieldCreatedAt)).
		Limit(window).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	// Query is newest-first; history reads oldest-first.
	history := make([]models.ConversationMessage, len(rows))
	for i, row := range rows {
		history[len(rows)-1-i] = toConversationMessage(row)
	}
	return history, nil
}

// MessageForJob returns the user message that triggered a job.
func (s *ConversationService) MessageForJob(ctx context.Context, jobID string) (*ent.Message, error) {
	if jobID == "" {
		return nil, NewValidationError("job_id", "required")
	}
	msg, err := s.client.Message.Query().
		Where(
			message.JobIDEQ(jobID),
			message.RoleEQ(message.RoleUser),
		).
		Order(ent.Asc(message.FieldCreatedAt)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("message for job %s: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job message: %w", err)
	}
	return msg, nil
}

func toConversationMessage(row *ent.Message) models.ConversationMessage {
	m := models.ConversationMessage{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		Role:           models.MessageRole(row.Role),
		Content:        row.Content,
		CreatedAt:      row.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if row.JobID != nil {
		m.JobID = *row.JobID
	}
	return m
}
