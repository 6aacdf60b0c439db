// Code generated by ent, DO NOT EDIT.

package predicate

import (
	"entgo.io/ent/dialect/sql"
)

// ApprovalDecision is the predicate function for approvaldecision builders.
type ApprovalDecision func(*sql.Selector)

// AuditEntry is the predicate function for auditentry builders.
type AuditEntry func(*sql.Selector)

// ConfigOverride is the predicate function for configoverride builders.
type ConfigOverride func(*sql.Selector)

// Conversation is the predicate function for conversation builders.
type Conversation func(*sql.Selector)

// Event is the predicate function for event builders.
type Event func(*sql.Selector)

// Gear is the predicate function for gear builders.
type Gear func(*sql.Selector)

// Job is the predicate function for job builders.
type Job func(*sql.Selector)

// Message is the predicate function for message builders.
type Message func(*sql.Selector)

// Schedule is the predicate function for schedule builders.
type Schedule func(*sql.Selector)

// Secret is the predicate function for secret builders.
type Secret func(*sql.Selector)

// WsToken is the predicate function for wstoken builders.
type WsToken func(*sql.Selector)
