package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ApprovalDecision holds the schema definition for the ApprovalDecision
// entity: the validator's durable approval cache. Rows are keyed by the
// canonical hash of a stripped plan so identical scheduled plans skip
// re-validation until the entry expires.
type ApprovalDecision struct {
	ent.Schema
}

// Fields of the ApprovalDecision.
func (ApprovalDecision) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("plan_hash").
			Unique().
			Comment("SHA-256 hex of the canonical stripped plan"),
		field.String("verdict"),
		field.String("overall_risk"),
		field.String("source").
			Comment("Job source that produced the decision"),
		field.Text("reasoning").
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("expires_at"),
	}
}

// Indexes of the ApprovalDecision.
func (ApprovalDecision) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("expires_at"),
	}
}
