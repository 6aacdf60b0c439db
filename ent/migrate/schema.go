// Code generated by ent, DO NOT EDIT.

package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ApprovalDecisionsColumns holds the columns for the "approval_decisions" table.
	ApprovalDecisionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "plan_hash", Type: field.TypeString, Unique: true},
		{Name: "verdict", Type: field.TypeString},
		{Name: "overall_risk", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
		{Name: "reasoning", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "expires_at", Type: field.TypeTime},
	}
	// ApprovalDecisionsTable holds the schema information for the "approval_decisions" table.
	ApprovalDecisionsTable = &schema.Table{
		Name:       "approval_decisions",
		Columns:    ApprovalDecisionsColumns,
		PrimaryKey: []*schema.Column{ApprovalDecisionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "approvaldecision_expires_at",
				Unique:  false,
				Columns: []*schema.Column{ApprovalDecisionsColumns[7]},
			},
		},
	}
	// AuditEntriesColumns holds the columns for the "audit_entries" table.
	AuditEntriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "actor", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "risk_level", Type: field.TypeString},
		{Name: "target", Type: field.TypeString, Nullable: true},
		{Name: "job_id", Type: field.TypeString, Nullable: true},
		{Name: "details", Type: field.TypeJSON, Nullable: true},
	}
	// AuditEntriesTable holds the schema information for the "audit_entries" table.
	AuditEntriesTable = &schema.Table{
		Name:       "audit_entries",
		Columns:    AuditEntriesColumns,
		PrimaryKey: []*schema.Column{AuditEntriesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "auditentry_timestamp",
				Unique:  false,
				Columns: []*schema.Column{AuditEntriesColumns[1]},
			},
			{
				Name:    "auditentry_actor",
				Unique:  false,
				Columns: []*schema.Column{AuditEntriesColumns[2]},
			},
			{
				Name:    "auditentry_job_id",
				Unique:  false,
				Columns: []*schema.Column{AuditEntriesColumns[6]},
			},
			{
				Name:    "auditentry_action_timestamp",
				Unique:  false,
				Columns: []*schema.Column{AuditEntriesColumns[3], AuditEntriesColumns[1]},
			},
		},
	}
	// ConfigOverridesColumns holds the columns for the "config_overrides" table.
	ConfigOverridesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ConfigOverridesTable holds the schema information for the "config_overrides" table.
	ConfigOverridesTable = &schema.Table{
		Name:       "config_overrides",
		Columns:    ConfigOverridesColumns,
		PrimaryKey: []*schema.Column{ConfigOverridesColumns[0]},
	}
	// ConversationsColumns holds the columns for the "conversations" table.
	ConversationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ConversationsTable holds the schema information for the "conversations" table.
	ConversationsTable = &schema.Table{
		Name:       "conversations",
		Columns:    ConversationsColumns,
		PrimaryKey: []*schema.Column{ConversationsColumns[0]},
	}
	// EventsColumns holds the columns for the "events" table.
	EventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true, SchemaType: map[string]string{"postgres": "bigserial"}},
		{Name: "channel", Type: field.TypeString},
		{Name: "payload", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	// EventsTable holds the schema information for the "events" table.
	EventsTable = &schema.Table{
		Name:       "events",
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "event_channel_id",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[1], EventsColumns[0]},
			},
			{
				Name:    "event_created_at",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[3]},
			},
		},
	}
	// GearsColumns holds the columns for the "gears" table.
	GearsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "version", Type: field.TypeString},
		{Name: "origin", Type: field.TypeEnum, Enums: []string{"builtin", "user", "journal"}, Default: "user"},
		{Name: "manifest", Type: field.TypeJSON},
		{Name: "checksum", Type: field.TypeString},
		{Name: "entry_point", Type: field.TypeString},
		{Name: "enabled", Type: field.TypeBool, Default: true},
		{Name: "disabled_reason", Type: field.TypeString, Nullable: true},
		{Name: "installed_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// GearsTable holds the schema information for the "gears" table.
	GearsTable = &schema.Table{
		Name:       "gears",
		Columns:    GearsColumns,
		PrimaryKey: []*schema.Column{GearsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "gear_enabled",
				Unique:  false,
				Columns: []*schema.Column{GearsColumns[7]},
			},
			{
				Name:    "gear_origin",
				Unique:  false,
				Columns: []*schema.Column{GearsColumns[3]},
			},
		},
	}
	// JobsColumns holds the columns for the "jobs" table.
	JobsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "conversation_id", Type: field.TypeString, Nullable: true},
		{Name: "parent_job_id", Type: field.TypeString, Nullable: true},
		{Name: "source", Type: field.TypeEnum, Enums: []string{"user", "schedule", "webhook", "subjob"}, Default: "user"},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"queued", "planning", "validating", "awaiting_approval", "executing", "completed", "failed", "cancelled"}, Default: "queued"},
		{Name: "version", Type: field.TypeInt, Default: 0},
		{Name: "retries", Type: field.TypeInt, Default: 0},
		{Name: "plan", Type: field.TypeJSON, Nullable: true},
		{Name: "validation", Type: field.TypeJSON, Nullable: true},
		{Name: "result", Type: field.TypeJSON, Nullable: true},
		{Name: "job_error", Type: field.TypeJSON, Nullable: true},
		{Name: "worker_id", Type: field.TypeString, Nullable: true},
		{Name: "approval_nonce", Type: field.TypeString, Nullable: true},
		{Name: "not_before", Type: field.TypeTime, Nullable: true},
		{Name: "claimed_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	// JobsTable holds the schema information for the "jobs" table.
	JobsTable = &schema.Table{
		Name:       "jobs",
		Columns:    JobsColumns,
		PrimaryKey: []*schema.Column{JobsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "job_status",
				Unique:  false,
				Columns: []*schema.Column{JobsColumns[4]},
			},
			{
				Name:    "job_conversation_id",
				Unique:  false,
				Columns: []*schema.Column{JobsColumns[1]},
			},
			{
				Name:    "job_status_not_before_created_at",
				Unique:  false,
				Columns: []*schema.Column{JobsColumns[4], JobsColumns[13], JobsColumns[15]},
			},
			{
				Name:    "job_status_updated_at",
				Unique:  false,
				Columns: []*schema.Column{JobsColumns[4], JobsColumns[16]},
			},
		},
	}
	// MessagesColumns holds the columns for the "messages" table.
	MessagesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "conversation_id", Type: field.TypeString},
		{Name: "role", Type: field.TypeEnum, Enums: []string{"user", "assistant", "system"}},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "job_id", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// MessagesTable holds the schema information for the "messages" table.
	MessagesTable = &schema.Table{
		Name:       "messages",
		Columns:    MessagesColumns,
		PrimaryKey: []*schema.Column{MessagesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "message_conversation_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{MessagesColumns[1], MessagesColumns[5]},
			},
			{
				Name:    "message_job_id",
				Unique:  false,
				Columns: []*schema.Column{MessagesColumns[4]},
			},
		},
	}
	// SchedulesColumns holds the columns for the "schedules" table.
	SchedulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "cron_expr", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "enabled", Type: field.TypeBool, Default: true},
		{Name: "last_run_at", Type: field.TypeTime, Nullable: true},
		{Name: "next_run_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SchedulesTable holds the schema information for the "schedules" table.
	SchedulesTable = &schema.Table{
		Name:       "schedules",
		Columns:    SchedulesColumns,
		PrimaryKey: []*schema.Column{SchedulesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "schedule_enabled_next_run_at",
				Unique:  false,
				Columns: []*schema.Column{SchedulesColumns[4], SchedulesColumns[6]},
			},
		},
	}
	// SecretsColumns holds the columns for the "secrets" table.
	SecretsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "ciphertext", Type: field.TypeBytes},
		{Name: "nonce", Type: field.TypeBytes},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// SecretsTable holds the schema information for the "secrets" table.
	SecretsTable = &schema.Table{
		Name:       "secrets",
		Columns:    SecretsColumns,
		PrimaryKey: []*schema.Column{SecretsColumns[0]},
	}
	// WsTokensColumns holds the columns for the "ws_tokens" table.
	WsTokensColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "token_hash", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "consumed_at", Type: field.TypeTime, Nullable: true},
		{Name: "expires_at", Type: field.TypeTime},
	}
	// WsTokensTable holds the schema information for the "ws_tokens" table.
	WsTokensTable = &schema.Table{
		Name:       "ws_tokens",
		Columns:    WsTokensColumns,
		PrimaryKey: []*schema.Column{WsTokensColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "wstoken_expires_at",
				Unique:  false,
				Columns: []*schema.Column{WsTokensColumns[5]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ApprovalDecisionsTable,
		AuditEntriesTable,
		ConfigOverridesTable,
		ConversationsTable,
		EventsTable,
		GearsTable,
		JobsTable,
		MessagesTable,
		SchedulesTable,
		SecretsTable,
		WsTokensTable,
	}
)

func init() {
}
