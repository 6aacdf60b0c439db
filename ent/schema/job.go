package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Job holds the schema definition for the Job entity. Jobs reference
// conversations and parent jobs by plain string columns: the logical stores
// carry no cross-store foreign keys, and the integrity scanner reports
// orphans instead.
type Job struct {
	ent.Schema
}

// Fields of the Job.
func (Job) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("conversation_id").
			Optional().
			Nillable(),
		field.String("parent_job_id").
			Optional().
			Nillable().
			Comment("Set for source=subjob"),
		field.Enum("source").
			Values("user", "schedule", "webhook", "subjob").
			Default("user"),
		field.Enum("status").
			Values("queued", "planning", "validating", "awaiting_approval", "executing", "completed", "failed", "cancelled").
			Default("queued"),
		field.Int("version").
			Default(0).
			Comment("Optimistic CAS token; every write increments"),
		field.Int("retries").
			Default(0),
		field.JSON("plan", map[string]interface{}{}).
			Optional(),
		field.JSON("validation", map[string]interface{}{}).
			Optional(),
		field.JSON("result", map[string]interface{}{}).
			Optional(),
		field.JSON("job_error", map[string]interface{}{}).
			Optional().
			Comment("Structured {code, message, retriable}"),
		field.String("worker_id").
			Optional().
			Nillable(),
		field.String("approval_nonce").
			Optional().
			Nillable().
			Comment("Single-use token for the approve endpoint"),
		field.Time("not_before").
			Optional().
			Nillable().
			Comment("Retry backoff gate; claim skips rows still in the future"),
		field.Time("claimed_at").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the Job.
func (Job) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("conversation_id"),

		// Claim scan: oldest ready job first.
		index.Fields("status", "not_before", "created_at"),
		// Watchdog scan: stale non-terminal jobs.
		index.Fields("status", "updated_at"),
	}
}
