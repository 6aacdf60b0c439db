// Package bus is the in-process message fabric: a component registry plus a
// middleware-wrapped router. Components talk to each other exclusively
// through Dispatch, which is what lets the runtime audit, size-gate, and
// authenticate every hop between planner, validator, and gear runtime.
package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Component identifiers. Plugin components register as gear:<id> at install
// time; only the shared runtime host occupies the registry by default.
const (
	ComponentGateway     = "gateway"
	ComponentPipeline    = "pipeline"
	ComponentScout       = "scout"
	ComponentSentinel    = "sentinel"
	ComponentGearRuntime = "gear:runtime"
	ComponentScheduler   = "scheduler"
)

// Message types.
const (
	TypePlanRequest      = "plan.request"
	TypePlanResponse     = "plan.response"
	TypeValidateRequest  = "validate.request"
	TypeValidateResponse = "validate.response"
	TypeExecuteRequest   = "execute.request"
	TypeExecuteResponse  = "execute.response"
	TypeError            = "error"
)

// Metadata keys.
const (
	// MetaSignedEnvelope carries the signing.Envelope for the message.
	MetaSignedEnvelope = "_signedEnvelope"

	// MetaTimeoutMs bounds the dispatch; see Router.Dispatch.
	MetaTimeoutMs = "timeoutMs"
)

// Message is the unit of communication between components.
type Message struct {
	ID            string         `json:"id"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Type          string         `json:"type"`
	Payload       map[string]any `json:"payload,omitempty"`
	JobID         string         `json:"jobId,omitempty"`
	ReplyTo       string         `json:"replyTo,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewMessage builds a message with a fresh id and timestamp. The id doubles
// as the correlation id until a reply overrides it.
func NewMessage(from, to, typ string) *Message {
	id := uuid.NewString()
	return &Message{
		ID:            id,
		CorrelationID: id,
		Timestamp:     time.Now().UTC(),
		From:          from,
		To:            to,
		Type:          typ,
	}
}

// Reply builds a response to m, flowing back to the sender with the same
// correlation id and job id.
func (m *Message) Reply(typ string, payload map[string]any) *Message {
	return &Message{
		ID:            uuid.NewString(),
		CorrelationID: m.CorrelationID,
		Timestamp:     time.Now().UTC(),
		From:          m.To,
		To:            m.From,
		Type:          typ,
		Payload:       payload,
		JobID:         m.JobID,
	}
}

// SetTimeout stores a dispatch deadline hint in metadata.
func (m *Message) SetTimeout(d time.Duration) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[MetaTimeoutMs] = d.Milliseconds()
}

// Timeout returns the metadata deadline hint, or zero when absent or
// malformed.
func (m *Message) Timeout() time.Duration {
	if m.Metadata == nil {
		return 0
	}
	switch v := m.Metadata[MetaTimeoutMs].(type) {
	case int64:
		return time.Duration(v) * time.Millisecond
	case int:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return 0
		}
		return time.Duration(ms) * time.Millisecond
	default:
		return 0
	}
}

// IsError reports whether m is a router- or handler-generated error response.
func (m *Message) IsError() bool {
	return m.Type == TypeError
}

// EncodePayload converts a typed payload struct into the free-form payload
// map via its JSON shape.
func EncodePayload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}

// DecodePayload converts a free-form payload map into a typed struct via its
// JSON shape.
func DecodePayload(payload map[string]any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
