package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Secret holds the schema definition for the Secret entity: the encrypted
// vault rows backing gear secret materialization. Values are AES-256-GCM
// sealed with the vault master key; plaintext never touches the database.
type Secret struct {
	ent.Schema
}

// Fields of the Secret.
func (Secret) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name").
			Unique(),
		field.Bytes("ciphertext"),
		field.Bytes("nonce"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now),
	}
}
