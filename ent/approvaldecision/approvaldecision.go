// Code generated by ent, DO NOT EDIT.

package approvaldecision

import (
	"time"

	"entgo.io/ent/dialect/sql"
)

const (
	// Label holds the string label denoting the approvaldecision type in the database.
	Label = "approval_decision"
	// FieldID holds the string denoting the id field in the database.
	FieldID = "id"
	// FieldPlanHash holds the string denoting the plan_hash field in the database.
	FieldPlanHash = "plan_hash"
	// FieldVerdict holds the string denoting the verdict field in the database.
	FieldVerdict = "verdict"
	// FieldOverallRisk holds the string denoting the overall_risk field in the database.
	FieldOverallRisk = "overall_risk"
	// FieldSource holds the string denoting the source field in the database.
	FieldSource = "source"
	// FieldReasoning holds the string denoting the reasoning field in the database.
	FieldReasoning = "reasoning"
	// FieldCreatedAt holds the string denoting the created_at field in the database.
	FieldCreatedAt = "created_at"
	// FieldExpiresAt holds the string denoting the expires_at field in the database.
	FieldExpiresAt = "expires_at"
	// Table holds the table name of the approvaldecision in the database.
	Table = "approval_decisions"
)

// Columns holds all SQL columns for approvaldecision fields.
var Columns = []string{
	FieldID,
	FieldPlanHash,
	FieldVerdict,
	FieldOverallRisk,
	FieldSource,
	FieldReasoning,
	FieldCreatedAt,
	FieldExpiresAt,
}

// ValidColumn reports if the column name is valid (part of the table columns).
func ValidColumn(column string) bool {
	for i := range Columns {
		if column == Columns[i] {
			return true
		}
	}
	return false
}

var (
	// DefaultCreatedAt holds the default value on creation for the "created_at" field.
	DefaultCreatedAt func() time.Time
)

// OrderOption defines the ordering options for the ApprovalDecision queries.
type OrderOption func(*sql.Selector)

// ByID orders the results by the id field.
func ByID(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldID, opts...).ToFunc()
}

// ByPlanHash orders the results by the plan_hash field.
func ByPlanHash(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldPlanHash, opts...).ToFunc()
}

// ByVerdict orders the results by the verdict field.
func ByVerdict(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldVerdict, opts...).ToFunc()
}

// ByOverallRisk orders the results by the overall_risk field.
func ByOverallRisk(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldOverallRisk, opts...).ToFunc()
}

// BySource orders the results by the source field.
func BySource(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldSource, opts...).ToFunc()
}

// ByReasoning orders the results by the reasoning field.
func ByReasoning(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldReasoning, opts...).ToFunc()
}

// ByCreatedAt orders the results by the created_at field.
func ByCreatedAt(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldCreatedAt, opts...).ToFunc()
}

// ByExpiresAt orders the results by the expires_at field.
func ByExpiresAt(opts ...sql.OrderTermOption) OrderOption {
	return sql.OrderByField(FieldExpiresAt, opts...).ToFunc()
}
