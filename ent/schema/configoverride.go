package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// ConfigOverride holds the schema definition for the ConfigOverride entity:
// the highest-precedence configuration layer, applied after the store
// connects.
type ConfigOverride struct {
	ent.Schema
}

// Fields of the ConfigOverride.
func (ConfigOverride) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("key").
			Unique().
			Comment("Dotted config path, e.g. queue.worker_count"),
		field.String("value"),
		field.Time("updated_at").
			Default(time.Now),
	}
}
