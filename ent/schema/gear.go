package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Gear holds the schema definition for the Gear entity: the installed-plugin
// registry. The row id is the manifest id; the manifest JSON is the frozen
// declaration validated at install time.
type Gear struct {
	ent.Schema
}

// Fields of the Gear.
func (Gear) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name"),
		field.String("version"),
		field.Enum("origin").
			Values("builtin", "user", "journal").
			Default("user"),
		field.JSON("manifest", map[string]interface{}{}).
			Comment("Full GearManifest as installed"),
		field.String("checksum").
			Comment("SHA-256 hex of the entry point at install time"),
		field.String("entry_point").
			Comment("Path to the executable entry, relative to the gear root"),
		field.Bool("enabled").
			Default(true),
		field.String("disabled_reason").
			Optional().
			Nillable().
			Comment("Set on administrative disable, e.g. CHECKSUM_MISMATCH"),
		field.Time("installed_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now),
	}
}

// Indexes of the Gear.
func (Gear) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("enabled"),
		index.Fields("origin"),
	}
}
