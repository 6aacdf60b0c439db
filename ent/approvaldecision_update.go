// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/axisworks/axis/ent/approvaldecision"
	"github.com/axisworks/axis/ent/predicate"
)

// ApprovalDecisionUpdate is the builder for updating ApprovalDecision entities.
type ApprovalDecisionUpdate struct {
	config
	hooks    []Hook
	mutation *ApprovalDecisionMutation
}

// Where appends a list predicates to the ApprovalDecisionUpdate builder.
func (_u *ApprovalDecisionUpdate) Where(ps ...predicate.ApprovalDecision) *ApprovalDecisionUpdate {
	_u.mutation.Where(ps...)
	return _u
}

// SetPlanHash sets the "plan_hash" field.
func (_u *ApprovalDecisionUpdate) SetPlanHash(v string) *ApprovalDecisionUpdate {
	_u.mutation.SetPlanHash(v)
	return _u
}

// SetNillablePlanHash sets the "plan_hash" field if the given value is not nil.
func (_u *ApprovalDecisionUpdate) SetNillablePlanHash(v *string) *ApprovalDecisionUpdate {
	if v != nil {
		_u.SetPlanHash(*v)
	}
	return _u
}

// SetVerdict sets the "verdict" field.
func (_u *ApprovalDecisionUpdate) SetVerdict(v string) *ApprovalDecisionUpdate {
	_u.mutation.SetVerdict(v)
	return _u
}

// SetNillableVerdict sets the "verdict" field if the given value is not nil.
func (_u *ApprovalDecisionUpdate) SetNillableVerdict(v *string) *ApprovalDecisionUpdate {
	if v != nil {
		_u.SetVerdict(*v)
	}
	return _u
}

// SetOverallRisk sets the "overall_risk" field.
func (_u *ApprovalDecisionUpdate) SetOverallRisk(v string) *ApprovalDecisionUpdate {
	_u.mutation.SetOverallRisk(v)
	return _u
}

// SetNillableOverallRisk sets the "overall_risk" field if the given value is not nil.
func (_u *ApprovalDecisionUpdate) SetNillableOverallRisk(v *string) *ApprovalDecisionUpdate {
	if v != nil {
		_u.SetOverallRisk(*v)
	}
	return _u
}

// SetSource sets the "source" field.
func (_u *ApprovalDecisionUpdate) SetSource(v string) *ApprovalDecisionUpdate {
	_u.mutation.SetSource(v)
	return _u
}

// SetNillableSource sets the "source" field if the given value is not nil.
func (_u *ApprovalDecisionUpdate) SetNillableSource(v *string) *ApprovalDecisionUpdate {
	if v != nil {
		_u.SetSource(*v)
	}
	return _u
}

// SetReasoning sets the "reasoning" field.
func (_u *ApprovalDecisionUpdate) SetReasoning(v string) *ApprovalDecisionUpdate {
	_u.mutation.SetReasoning(v)
	return _u
}

// SetNillableReasoning sets the "reasoning" field if the given value is not nil.
func (_u *ApprovalDecisionUpdate) SetNillableReasoning(v *string) *ApprovalDecisionUpdate {
	if v != nil {
		_u.SetReasoning(*v)
	}
	return _u
}

// ClearReasoning clears the value of the "reasoning" field.
func (_u *ApprovalDecisionUpdate) ClearReasoning() *ApprovalDecisionUpdate {
	_u.mutation.ClearReasoning()
	return _u
}

// SetExpiresAt sets the "expires_at" field.
func (_u *ApprovalDecisionUpdate) SetExpiresAt(v time.Time) *ApprovalDecisionUpdate {
	_u.mutation.SetExpiresAt(v)
	return _u
}

// SetNillableExpiresAt sets the "expires_at" field if the given value is not nil.
func (_u *ApprovalDecisionUpdate) SetNillableExpiresAt(v *time.Time) *ApprovalDecisionUpdate {
	if v != nil {
		_u.SetExpiresAt(*v)
	}
	return _u
}

// Mutation returns the ApprovalDecisionMutation object of the builder.
func (_u *ApprovalDecisionUpdate) Mutation() *ApprovalDecisionMutation {
	return _u.mutation
}

// Save executes the query and returns the number of nodes affected by the update operation.
func (_u *ApprovalDecisionUpdate) Save(ctx context.Context) (int, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *ApprovalDecisionUpdate) SaveX(ctx context.Context) int {
	affected, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return affected
}

// Exec executes the query.
func (_u *ApprovalDecisionUpdate) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *ApprovalDecisionUpdate) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

func (_u *ApprovalDecisionUpdate) sqlSave(ctx context.Context) (_node int, err error) {
	_spec := sqlgraph.NewUpdateSpec(approvaldecision.Table, approvaldecision.Columns, sqlgraph.NewFieldSpec(approvaldecision.FieldID, field.TypeString))
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.PlanHash(); ok {
		_spec.SetField(approvaldecision.FieldPlanHash, field.TypeString, value)
	}
	if value, ok := _u.mutation.Verdict(); ok {
		_spec.SetField(approvaldecision.FieldVerdict, field.TypeString, value)
	}
	if value, ok := _u.mutation.OverallRisk(); ok {
		_spec.SetField(approvaldecision.FieldOverallRisk, field.TypeString, value)
	}
	if value, ok := _u.mutation.Source(); ok {
		_spec.SetField(approvaldecision.FieldSource, field.TypeString, value)
	}
	if value, ok := _u.mutation.Reasoning(); ok {
		_spec.SetField(approvaldecision.FieldReasoning, field.TypeString, value)
	}
	if _u.mutation.ReasoningCleared() {
		_spec.ClearField(approvaldecision.FieldReasoning, field.TypeString)
	}
	if value, ok := _u.mutation.ExpiresAt(); ok {
		_spec.SetField(approvaldecision.FieldExpiresAt, field.TypeTime, value)
	}
	if _node, err = sqlgraph.UpdateNodes(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{approvaldecision.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return 0, err
	}
	_u.mutation.done = true
	return _node, nil
}

// ApprovalDecisionUpdateOne is the builder for updating a single ApprovalDecision entity.
type ApprovalDecisionUpdateOne struct {
	config
	fields   []string
	hooks    []Hook
	mutation *ApprovalDecisionMutation
}

// SetPlanHash sets the "plan_hash" field.
func (_u *ApprovalDecisionUpdateOne) SetPlanHash(v string) *ApprovalDecisionUpdateOne {
	_u.mutation.SetPlanHash(v)
	return _u
}

// SetNillablePlanHash sets the "plan_hash" field if the given value is not nil.
func (_u *ApprovalDecisionUpdateOne) SetNillablePlanHash(v *string) *ApprovalDecisionUpdateOne {
	if v != nil {
		_u.SetPlanHash(*v)
	}
	return _u
}

// SetVerdict sets the "verdict" field.
func (_u *ApprovalDecisionUpdateOne) SetVerdict(v string) *ApprovalDecisionUpdateOne {
	_u.mutation.SetVerdict(v)
	return _u
}

// SetNillableVerdict sets the "verdict" field if the given value is not nil.
func (_u *ApprovalDecisionUpdateOne) SetNillableVerdict(v *string) *ApprovalDecisionUpdateOne {
	if v != nil {
		_u.SetVerdict(*v)
	}
	return _u
}

// SetOverallRisk sets the "overall_risk" field.
func (_u *ApprovalDecisionUpdateOne) SetOverallRisk(v string) *ApprovalDecisionUpdateOne {
	_u.mutation.SetOverallRisk(v)
	return _u
}

// SetNillableOverallRisk sets the "overall_risk" field if the given value is not nil.
func (_u *ApprovalDecisionUpdateOne) SetNillableOverallRisk(v *string) *ApprovalDecisionUpdateOne {
	if v != nil {
		_u.SetOverallRisk(*v)
	}
	return _u
}

// SetSource sets the "source" field.
func (_u *ApprovalDecisionUpdateOne) SetSource(v string) *ApprovalDecisionUpdateOne {
	_u.mutation.SetSource(v)
	return _u
}

// SetNillableSource sets the "source" field if the given value is not nil.
func (_u *ApprovalDecisionUpdateOne) SetNillableSource(v *string) *ApprovalDecisionUpdateOne {
	if v != nil {
		_u.SetSource(*v)
	}
	return _u
}

// SetReasoning sets the "reasoning" field.
func (_u *ApprovalDecisionUpdateOne) SetReasoning(v string) *ApprovalDecisionUpdateOne {
	_u.mutation.SetReasoning(v)
	return _u
}

// SetNillableReasoning sets the "reasoning" field if the given value is not nil.
func (_u *ApprovalDecisionUpdateOne) SetNillableReasoning(v *string) *ApprovalDecisionUpdateOne {
	if v != nil {
		_u.SetReasoning(*v)
	}
	return _u
}

// ClearReasoning clears the value of the "reasoning" field.
func (_u *ApprovalDecisionUpdateOne) ClearReasoning() *ApprovalDecisionUpdateOne {
	_u.mutation.ClearReasoning()
	return _u
}

// SetExpiresAt sets the "expires_at" field.
func (_u *ApprovalDecisionUpdateOne) SetExpiresAt(v time.Time) *ApprovalDecisionUpdateOne {
	_u.mutation.SetExpiresAt(v)
	return _u
}

// SetNillableExpiresAt sets the "expires_at" field if the given value is not nil.
func (_u *ApprovalDecisionUpdateOne) SetNillableExpiresAt(v *time.Time) *ApprovalDecisionUpdateOne {
	if v != nil {
		_u.SetExpiresAt(*v)
	}
	return _u
}

// Mutation returns the ApprovalDecisionMutation object of the builder.
func (_u *ApprovalDecisionUpdateOne) Mutation() *ApprovalDecisionMutation {
	return _u.mutation
}

// Where appends a list predicates to the ApprovalDecisionUpdate builder.
func (_u *ApprovalDecisionUpdateOne) Where(ps ...predicate.ApprovalDecision) *ApprovalDecisionUpdateOne {
	_u.mutation.Where(ps...)
	return _u
}

// Select allows selecting one or more fields (columns) of the returned entity.
// The default is selecting all fields defined in the entity schema.
func (_u *ApprovalDecisionUpdateOne) Select(field string, fields ...string) *ApprovalDecisionUpdateOne {
	_u.fields = append([]string{field}, fields...)
	return _u
}

// Save executes the query and returns the updated ApprovalDecision entity.
func (_u *ApprovalDecisionUpdateOne) Save(ctx context.Context) (*ApprovalDecision, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *ApprovalDecisionUpdateOne) SaveX(ctx context.Context) *ApprovalDecision {
	node, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return node
}

// Exec executes the query on the entity.
func (_u *ApprovalDecisionUpdateOne) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *ApprovalDecisionUpdateOne) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

func (_u *ApprovalDecisionUpdateOne) sqlSave(ctx context.Context) (_node *ApprovalDecision, err error) {
	_spec := sqlgraph.NewUpdateSpec(approvaldecision.Table, approvaldecision.Columns, sqlgraph.NewFieldSpec(approvaldecision.FieldID, field.TypeString))
	id, ok := _u.mutation.ID()
	if !ok {
		return nil, &ValidationError{Name: "id", err: errors.New(`ent: missing "ApprovalDecision.id" for update`)}
	}
	_spec.Node.ID.Value = id
	if fields := _u.fields; len(fields) > 0 {
		_spec.Node.Columns = make([]string, 0, len(fields))
		_spec.Node.Columns = append(_spec.Node.Columns, approvaldecision.FieldID)
		for _, f := range fields {
			if !approvaldecision.ValidColumn(f) {
				return nil, &ValidationError{Name: f, err: fmt.Errorf("ent: invalid field %q for query", f)}
			}
			if f != approvaldecision.FieldID {
				_spec.Node.Columns = append(_spec.Node.Columns, f)
			}
		}
	}
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.PlanHash(); ok {
		_spec.SetField(approvaldecision.FieldPlanHash, field.TypeString, value)
	}
	if value, ok := _u.mutation.Verdict(); ok {
		_spec.SetField(approvaldecision.FieldVerdict, field.TypeString, value)
	}
	if value, ok := _u.mutation.OverallRisk(); ok {
		_spec.SetField(approvaldecision.FieldOverallRisk, field.TypeString, value)
	}
	if value, ok := _u.mutation.Source(); ok {
		_spec.SetField(approvaldecision.FieldSource, field.TypeString, value)
	}
	if value, ok := _u.mutation.Reasoning(); ok {
		_spec.SetField(approvaldecision.FieldReasoning, field.TypeString, value)
	}
	if _u.mutation.ReasoningCleared() {
		_spec.ClearField(approvaldecision.FieldReasoning, field.TypeString)
	}
	if value, ok := _u.mutation.ExpiresAt(); ok {
		_spec.SetField(approvaldecision.FieldExpiresAt, field.TypeTime, value)
	}
	_node = &ApprovalDecision{config: _u.config}
	_spec.Assign = _node.assignValues
	_spec.ScanValues = _node.scanValues
	if err = sqlgraph.UpdateNode(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{approvaldecision.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	_u.mutation.done = true
	return _node, nil
}
