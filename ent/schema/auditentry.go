package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AuditEntry holds the schema definition for the AuditEntry entity. The audit
// log is append-only: the service layer exposes no update or delete paths,
// only inserts and paginated reads. Retention cleanup is the single sanctioned
// deleter.
type AuditEntry struct {
	ent.Schema
}

// Fields of the AuditEntry.
func (AuditEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Time("timestamp").
			Default(time.Now).
			Immutable(),
		field.String("actor").
			Immutable().
			Comment("Component or principal that acted"),
		field.String("action").
			Immutable().
			Comment("e.g. dispatch:plan.request, gear:install"),
		field.String("risk_level").
			Immutable(),
		field.String("target").
			Optional().
			Nillable().
			Immutable(),
		field.String("job_id").
			Optional().
			Nillable().
			Immutable(),
		field.JSON("details", map[string]interface{}{}).
			Optional().
			Immutable(),
	}
}

// Indexes of the AuditEntry.
func (AuditEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
		index.Fields("actor"),
		index.Fields("job_id"),
		index.Fields("action", "timestamp"),
	}
}
