package api

// CreateMessageRequest is the HTTP request body for POST /api/messages.
// ConversationID is optional; when absent a new conversation is created.
type CreateMessageRequest struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ApproveJobRequest is the HTTP request body for POST /api/jobs/:id/approve.
// The nonce was minted when the job parked for approval and broadcast with
// the approval_required event; it spends exactly once.
type ApproveJobRequest struct {
	Nonce string `json:"nonce"`
}

// WsTokenRequest is the HTTP request body for POST /api/ws/token. SessionID
// is optional; a fresh one is minted when absent.
type WsTokenRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}
