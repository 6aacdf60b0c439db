// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/axisworks/axis/ent/approvaldecision"
	"github.com/axisworks/axis/ent/predicate"
)

// ApprovalDecisionDelete is the builder for deleting a ApprovalDecision entity.
type ApprovalDecisionDelete struct {
	config
	hooks    []Hook
	mutation *ApprovalDecisionMutation
}

// Where appends a list predicates to the ApprovalDecisionDelete builder.
func (_d *ApprovalDecisionDelete) Where(ps ...predicate.ApprovalDecision) *ApprovalDecisionDelete {
	_d.mutation.Where(ps...)
	return _d
}

// Exec executes the deletion query and returns how many vertices were deleted.
func (_d *ApprovalDecisionDelete) Exec(ctx context.Context) (int, error) {
	return withHooks(ctx, _d.sqlExec, _d.mutation, _d.hooks)
}

// ExecX is like Exec, but panics if an error occurs.
func (_d *ApprovalDecisionDelete) ExecX(ctx context.Context) int {
	n, err := _d.Exec(ctx)
	if err != nil {
		panic(err)
	}
	return n
}

func (_d *ApprovalDecisionDelete) sqlExec(ctx context.Context) (int, error) {
	_spec := sqlgraph.NewDeleteSpec(approvaldecision.Table, sqlgraph.NewFieldSpec(approvaldecision.FieldID, field.TypeString))
	if ps := _d.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	affected, err := sqlgraph.DeleteNodes(ctx, _d.driver, _spec)
	if err != nil && sqlgraph.IsConstraintError(err) {
		err = &ConstraintError{msg: err.Error(), wrap: err}
	}
	_d.mutation.done = true
	return affected, err
}

// ApprovalDecisionDeleteOne is the builder for deleting a single ApprovalDecision entity.
type ApprovalDecisionDeleteOne struct {
	_d *ApprovalDecisionDelete
}

// Where appends a list predicates to the ApprovalDecisionDelete builder.
func (_d *ApprovalDecisionDeleteOne) Where(ps ...predicate.ApprovalDecision) *ApprovalDecisionDeleteOne {
	_d._d.mutation.Where(ps...)
	return _d
}

// Exec executes the deletion query.
func (_d *ApprovalDecisionDeleteOne) Exec(ctx context.Context) error {
	n, err := _d._d.Exec(ctx)
	switch {
	case err != nil:
		return err
	case n == 0:
		return &NotFoundError{approvaldecision.Label}
	default:
		return nil
	}
}

// ExecX is like Exec, but panics if an error occurs.
func (_d *ApprovalDecisionDeleteOne) ExecX(ctx context.Context) {
	if err := _d.Exec(ctx); err != nil {
		panic(err)
	}
}
