package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// WsToken holds the schema definition for the WsToken entity: one-time
// WebSocket connection tokens. Only the SHA-256 of the token is stored;
// consumption is a conditional update on consumed_at so a token can be spent
// exactly once.
type WsToken struct {
	ent.Schema
}

// Fields of the WsToken.
func (WsToken) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("session_id").
			Immutable(),
		field.String("token_hash").
			Unique().
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("consumed_at").
			Optional().
			Nillable(),
		field.Time("expires_at").
			Immutable(),
	}
}

// Indexes of the WsToken.
func (WsToken) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("expires_at"),
	}
}
