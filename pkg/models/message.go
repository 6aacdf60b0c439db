package models

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// NewMessage carries the fields needed to persist a conversation message.
type NewMessage struct {
	ConversationID string      `json:"conversationId"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	JobID          string      `json:"jobId,omitempty"`
}

// ConversationMessage is the wire shape of a persisted message, used by the
// gateway and as conversation history in plan requests.
type ConversationMessage struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	JobID          string      `json:"jobId,omitempty"`
	CreatedAt      string      `json:"createdAt"`
}
