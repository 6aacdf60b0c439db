// Code generated by ent, DO NOT EDIT.

package approvaldecision

import (
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/axisworks/axis/ent/predicate"
)

// ID filters vertices based on their ID field.
func ID(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldID, id))
}

// IDEQ applies the EQ predicate on the ID field.
func IDEQ(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldID, id))
}

// IDNEQ applies the NEQ predicate on the ID field.
func IDNEQ(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldID, id))
}

// IDIn applies the In predicate on the ID field.
func IDIn(ids ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldID, ids...))
}

// IDNotIn applies the NotIn predicate on the ID field.
func IDNotIn(ids ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldID, ids...))
}

// IDGT applies the GT predicate on the ID field.
func IDGT(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldID, id))
}

// IDGTE applies the GTE predicate on the ID field.
func IDGTE(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldID, id))
}

// IDLT applies the LT predicate on the ID field.
func IDLT(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldID, id))
}

// IDLTE applies the LTE predicate on the ID field.
func IDLTE(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldID, id))
}

// IDEqualFold applies the EqualFold predicate on the ID field.
func IDEqualFold(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEqualFold(FieldID, id))
}

// IDContainsFold applies the ContainsFold predicate on the ID field.
func IDContainsFold(id string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContainsFold(FieldID, id))
}

// PlanHash applies equality check predicate on the "plan_hash" field. It's identical to PlanHashEQ.
func PlanHash(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldPlanHash, v))
}

// Verdict applies equality check predicate on the "verdict" field. It's identical to VerdictEQ.
func Verdict(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldVerdict, v))
}

// OverallRisk applies equality check predicate on the "overall_risk" field. It's identical to OverallRiskEQ.
func OverallRisk(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldOverallRisk, v))
}

// Source applies equality check predicate on the "source" field. It's identical to SourceEQ.
func Source(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldSource, v))
}

// Reasoning applies equality check predicate on the "reasoning" field. It's identical to ReasoningEQ.
func Reasoning(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldReasoning, v))
}

// CreatedAt applies equality check predicate on the "created_at" field. It's identical to CreatedAtEQ.
func CreatedAt(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldCreatedAt, v))
}

// ExpiresAt applies equality check predicate on the "expires_at" field. It's identical to ExpiresAtEQ.
func ExpiresAt(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldExpiresAt, v))
}

// PlanHashEQ applies the EQ predicate on the "plan_hash" field.
func PlanHashEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldPlanHash, v))
}

// PlanHashNEQ applies the NEQ predicate on the "plan_hash" field.
func PlanHashNEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldPlanHash, v))
}

// PlanHashIn applies the In predicate on the "plan_hash" field.
func PlanHashIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldPlanHash, vs...))
}

// PlanHashNotIn applies the NotIn predicate on the "plan_hash" field.
func PlanHashNotIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldPlanHash, vs...))
}

// PlanHashGT applies the GT predicate on the "plan_hash" field.
func PlanHashGT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldPlanHash, v))
}

// PlanHashGTE applies the GTE predicate on the "plan_hash" field.
func PlanHashGTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldPlanHash, v))
}

// PlanHashLT applies the LT predicate on the "plan_hash" field.
func PlanHashLT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldPlanHash, v))
}

// PlanHashLTE applies the LTE predicate on the "plan_hash" field.
func PlanHashLTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldPlanHash, v))
}

// PlanHashContains applies the Contains predicate on the "plan_hash" field.
func PlanHashContains(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContains(FieldPlanHash, v))
}

// PlanHashHasPrefix applies the HasPrefix predicate on the "plan_hash" field.
func PlanHashHasPrefix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasPrefix(FieldPlanHash, v))
}

// PlanHashHasSuffix applies the HasSuffix predicate on the "plan_hash" field.
func PlanHashHasSuffix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasSuffix(FieldPlanHash, v))
}

// PlanHashEqualFold applies the EqualFold predicate on the "plan_hash" field.
func PlanHashEqualFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEqualFold(FieldPlanHash, v))
}

// PlanHashContainsFold applies the ContainsFold predicate on the "plan_hash" field.
func PlanHashContainsFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContainsFold(FieldPlanHash, v))
}

// VerdictEQ applies the EQ predicate on the "verdict" field.
func VerdictEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldVerdict, v))
}

// VerdictNEQ applies the NEQ predicate on the "verdict" field.
func VerdictNEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldVerdict, v))
}

// VerdictIn applies the In predicate on the "verdict" field.
func VerdictIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldVerdict, vs...))
}

// VerdictNotIn applies the NotIn predicate on the "verdict" field.
func VerdictNotIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldVerdict, vs...))
}

// VerdictGT applies the GT predicate on the "verdict" field.
func VerdictGT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldVerdict, v))
}

// VerdictGTE applies the GTE predicate on the "verdict" field.
func VerdictGTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldVerdict, v))
}

// VerdictLT applies the LT predicate on the "verdict" field.
func VerdictLT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldVerdict, v))
}

// VerdictLTE applies the LTE predicate on the "verdict" field.
func VerdictLTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldVerdict, v))
}

// VerdictContains applies the Contains predicate on the "verdict" field.
func VerdictContains(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContains(FieldVerdict, v))
}

// VerdictHasPrefix applies the HasPrefix predicate on the "verdict" field.
func VerdictHasPrefix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasPrefix(FieldVerdict, v))
}

// VerdictHasSuffix applies the HasSuffix predicate on the "verdict" field.
func VerdictHasSuffix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasSuffix(FieldVerdict, v))
}

// VerdictEqualFold applies the EqualFold predicate on the "verdict" field.
func VerdictEqualFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEqualFold(FieldVerdict, v))
}

// VerdictContainsFold applies the ContainsFold predicate on the "verdict" field.
func VerdictContainsFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContainsFold(FieldVerdict, v))
}

// OverallRiskEQ applies the EQ predicate on the "overall_risk" field.
func OverallRiskEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldOverallRisk, v))
}

// OverallRiskNEQ applies the NEQ predicate on the "overall_risk" field.
func OverallRiskNEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldOverallRisk, v))
}

// OverallRiskIn applies the In predicate on the "overall_risk" field.
func OverallRiskIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldOverallRisk, vs...))
}

// OverallRiskNotIn applies the NotIn predicate on the "overall_risk" field.
func OverallRiskNotIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldOverallRisk, vs...))
}

// OverallRiskGT applies the GT predicate on the "overall_risk" field.
func OverallRiskGT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldOverallRisk, v))
}

// OverallRiskGTE applies the GTE predicate on the "overall_risk" field.
func OverallRiskGTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldOverallRisk, v))
}

// OverallRiskLT applies the LT predicate on the "overall_risk" field.
func OverallRiskLT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldOverallRisk, v))
}

// OverallRiskLTE applies the LTE predicate on the "overall_risk" field.
func OverallRiskLTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldOverallRisk, v))
}

// OverallRiskContains applies the Contains predicate on the "overall_risk" field.
func OverallRiskContains(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContains(FieldOverallRisk, v))
}

// OverallRiskHasPrefix applies the HasPrefix predicate on the "overall_risk" field.
func OverallRiskHasPrefix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasPrefix(FieldOverallRisk, v))
}

// OverallRiskHasSuffix applies the HasSuffix predicate on the "overall_risk" field.
func OverallRiskHasSuffix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasSuffix(FieldOverallRisk, v))
}

// OverallRiskEqualFold applies the EqualFold predicate on the "overall_risk" field.
func OverallRiskEqualFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEqualFold(FieldOverallRisk, v))
}

// OverallRiskContainsFold applies the ContainsFold predicate on the "overall_risk" field.
func OverallRiskContainsFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContainsFold(FieldOverallRisk, v))
}

// SourceEQ applies the EQ predicate on the "source" field.
func SourceEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldSource, v))
}

// SourceNEQ applies the NEQ predicate on the "source" field.
func SourceNEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldSource, v))
}

// SourceIn applies the In predicate on the "source" field.
func SourceIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldSource, vs...))
}

// SourceNotIn applies the NotIn predicate on the "source" field.
func SourceNotIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldSource, vs...))
}

// SourceGT applies the GT predicate on the "source" field.
func SourceGT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldSource, v))
}

// SourceGTE applies the GTE predicate on the "source" field.
func SourceGTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldSource, v))
}

// SourceLT applies the LT predicate on the "source" field.
func SourceLT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldSource, v))
}

// SourceLTE applies the LTE predicate on the "source" field.
func SourceLTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldSource, v))
}

// SourceContains applies the Contains predicate on the "source" field.
func SourceContains(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContains(FieldSource, v))
}

// SourceHasPrefix applies the HasPrefix predicate on the "source" field.
func SourceHasPrefix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasPrefix(FieldSource, v))
}

// SourceHasSuffix applies the HasSuffix predicate on the "source" field.
func SourceHasSuffix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasSuffix(FieldSource, v))
}

// SourceEqualFold applies the EqualFold predicate on the "source" field.
func SourceEqualFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEqualFold(FieldSource, v))
}

// SourceContainsFold applies the ContainsFold predicate on the "source" field.
func SourceContainsFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContainsFold(FieldSource, v))
}

// ReasoningEQ applies the EQ predicate on the "reasoning" field.
func ReasoningEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldReasoning, v))
}

// ReasoningNEQ applies the NEQ predicate on the "reasoning" field.
func ReasoningNEQ(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldReasoning, v))
}

// ReasoningIn applies the In predicate on the "reasoning" field.
func ReasoningIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldReasoning, vs...))
}

// ReasoningNotIn applies the NotIn predicate on the "reasoning" field.
func ReasoningNotIn(vs ...string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldReasoning, vs...))
}

// ReasoningGT applies the GT predicate on the "reasoning" field.
func ReasoningGT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldReasoning, v))
}

// ReasoningGTE applies the GTE predicate on the "reasoning" field.
func ReasoningGTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldReasoning, v))
}

// ReasoningLT applies the LT predicate on the "reasoning" field.
func ReasoningLT(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldReasoning, v))
}

// ReasoningLTE applies the LTE predicate on the "reasoning" field.
func ReasoningLTE(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldReasoning, v))
}

// ReasoningContains applies the Contains predicate on the "reasoning" field.
func ReasoningContains(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContains(FieldReasoning, v))
}

// ReasoningHasPrefix applies the HasPrefix predicate on the "reasoning" field.
func ReasoningHasPrefix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasPrefix(FieldReasoning, v))
}

// ReasoningHasSuffix applies the HasSuffix predicate on the "reasoning" field.
func ReasoningHasSuffix(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldHasSuffix(FieldReasoning, v))
}

// ReasoningIsNil applies the IsNil predicate on the "reasoning" field.
func ReasoningIsNil() predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIsNull(FieldReasoning))
}

// ReasoningNotNil applies the NotNil predicate on the "reasoning" field.
func ReasoningNotNil() predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotNull(FieldReasoning))
}

// ReasoningEqualFold applies the EqualFold predicate on the "reasoning" field.
func ReasoningEqualFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEqualFold(FieldReasoning, v))
}

// ReasoningContainsFold applies the ContainsFold predicate on the "reasoning" field.
func ReasoningContainsFold(v string) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldContainsFold(FieldReasoning, v))
}

// CreatedAtEQ applies the EQ predicate on the "created_at" field.
func CreatedAtEQ(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldCreatedAt, v))
}

// CreatedAtNEQ applies the NEQ predicate on the "created_at" field.
func CreatedAtNEQ(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldCreatedAt, v))
}

// CreatedAtIn applies the In predicate on the "created_at" field.
func CreatedAtIn(vs ...time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldCreatedAt, vs...))
}

// CreatedAtNotIn applies the NotIn predicate on the "created_at" field.
func CreatedAtNotIn(vs ...time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldCreatedAt, vs...))
}

// CreatedAtGT applies the GT predicate on the "created_at" field.
func CreatedAtGT(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldCreatedAt, v))
}

// CreatedAtGTE applies the GTE predicate on the "created_at" field.
func CreatedAtGTE(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldCreatedAt, v))
}

// CreatedAtLT applies the LT predicate on the "created_at" field.
func CreatedAtLT(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldCreatedAt, v))
}

// CreatedAtLTE applies the LTE predicate on the "created_at" field.
func CreatedAtLTE(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldCreatedAt, v))
}

// ExpiresAtEQ applies the EQ predicate on the "expires_at" field.
func ExpiresAtEQ(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldEQ(FieldExpiresAt, v))
}

// ExpiresAtNEQ applies the NEQ predicate on the "expires_at" field.
func ExpiresAtNEQ(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNEQ(FieldExpiresAt, v))
}

// ExpiresAtIn applies the In predicate on the "expires_at" field.
func ExpiresAtIn(vs ...time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldIn(FieldExpiresAt, vs...))
}

// ExpiresAtNotIn applies the NotIn predicate on the "expires_at" field.
func ExpiresAtNotIn(vs ...time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldNotIn(FieldExpiresAt, vs...))
}

// ExpiresAtGT applies the GT predicate on the "expires_at" field.
func ExpiresAtGT(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGT(FieldExpiresAt, v))
}

// ExpiresAtGTE applies the GTE predicate on the "expires_at" field.
func ExpiresAtGTE(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldGTE(FieldExpiresAt, v))
}

// ExpiresAtLT applies the LT predicate on the "expires_at" field.
func ExpiresAtLT(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLT(FieldExpiresAt, v))
}

// ExpiresAtLTE applies the LTE predicate on the "expires_at" field.
func ExpiresAtLTE(v time.Time) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.FieldLTE(FieldExpiresAt, v))
}

// And groups predicates with the AND operator between them.
func And(predicates ...predicate.ApprovalDecision) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.AndPredicates(predicates...))
}

// Or groups predicates with the OR operator between them.
func Or(predicates ...predicate.ApprovalDecision) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.OrPredicates(predicates...))
}

// Not applies the not operator on the given predicate.
func Not(p predicate.ApprovalDecision) predicate.ApprovalDecision {
	return predicate.ApprovalDecision(sql.NotPredicates(p))
}
