// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/axisworks/axis/ent/approvaldecision"
)

// ApprovalDecisionCreate is the builder for creating a ApprovalDecision entity.
type ApprovalDecisionCreate struct {
	config
	mutation *ApprovalDecisionMutation
	hooks    []Hook
}

// SetPlanHash sets the "plan_hash" field.
func (_c *ApprovalDecisionCreate) SetPlanHash(v string) *ApprovalDecisionCreate {
	_c.mutation.SetPlanHash(v)
	return _c
}

// SetVerdict sets the "verdict" field.
func (_c *ApprovalDecisionCreate) SetVerdict(v string) *ApprovalDecisionCreate {
	_c.mutation.SetVerdict(v)
	return _c
}

// SetOverallRisk sets the "overall_risk" field.
func (_c *ApprovalDecisionCreate) SetOverallRisk(v string) *ApprovalDecisionCreate {
	_c.mutation.SetOverallRisk(v)
	return _c
}

// SetSource sets the "source" field.
func (_c *ApprovalDecisionCreate) SetSource(v string) *ApprovalDecisionCreate {
	_c.mutation.SetSource(v)
	return _c
}

// SetReasoning sets the "reasoning" field.
func (_c *ApprovalDecisionCreate) SetReasoning(v string) *ApprovalDecisionCreate {
	_c.mutation.SetReasoning(v)
	return _c
}

// SetNillableReasoning sets the "reasoning" field if the given value is not nil.
func (_c *ApprovalDecisionCreate) SetNillableReasoning(v *string) *ApprovalDecisionCreate {
	if v != nil {
		_c.SetReasoning(*v)
	}
	return _c
}

// SetCreatedAt sets the "created_at" field.
func (_c *ApprovalDecisionCreate) SetCreatedAt(v time.Time) *ApprovalDecisionCreate {
	_c.mutation.SetCreatedAt(v)
	return _c
}

// SetNillableCreatedAt sets the "created_at" field if the given value is not nil.
func (_c *ApprovalDecisionCreate) SetNillableCreatedAt(v *time.Time) *ApprovalDecisionCreate {
	if v != nil {
		_c.SetCreatedAt(*v)
	}
	return _c
}

// SetExpiresAt sets the "expires_at" field.
func (_c *ApprovalDecisionCreate) SetExpiresAt(v time.Time) *ApprovalDecisionCreate {
	_c.mutation.SetExpiresAt(v)
	return _c
}

// SetID sets the "id" field.
func (_c *ApprovalDecisionCreate) SetID(v string) *ApprovalDecisionCreate {
	_c.mutation.SetID(v)
	return _c
}

// Mutation returns the ApprovalDecisionMutation object of the builder.
func (_c *ApprovalDecisionCreate) Mutation() *ApprovalDecisionMutation {
	return _c.mutation
}

// Save creates the ApprovalDecision in the database.
func (_c *ApprovalDecisionCreate) Save(ctx context.Context) (*ApprovalDecision, error) {
	_c.defaults()
	return withHooks(ctx, _c.sqlSave, _c.mutation, _c.hooks)
}

// SaveX calls Save and panics if Save returns an error.
func (_c *ApprovalDecisionCreate) SaveX(ctx context.Context) *ApprovalDecision {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *ApprovalDecisionCreate) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *ApprovalDecisionCreate) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}

// defaults sets the default values of the builder before save.
func (_c *ApprovalDecisionCreate) defaults() {
	if _, ok := _c.mutation.CreatedAt(); !ok {
		v := approvaldecision.DefaultCreatedAt()
		_c.mutation.SetCreatedAt(v)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_c *ApprovalDecisionCreate) check() error {
	if _, ok := _c.mutation.PlanHash(); !ok {
		return &ValidationError{Name: "plan_hash", err: errors.New(`ent: missing required field "ApprovalDecision.plan_hash"`)}
	}
	if _, ok := _c.mutation.Verdict(); !ok {
		return &ValidationError{Name: "verdict", err: errors.New(`ent: missing required field "ApprovalDecision.verdict"`)}
	}
	if _, ok := _c.mutation.OverallRisk(); !ok {
		return &ValidationError{Name: "overall_risk", err: errors.New(`ent: missing required field "ApprovalDecision.overall_risk"`)}
	}
	if _, ok := _c.mutation.Source(); !ok {
		return &ValidationError{Name: "source", err: errors.New(`ent: missing required field "ApprovalDecision.source"`)}
	}
	if _, ok := _c.mutation.CreatedAt(); !ok {
		return &ValidationError{Name: "created_at", err: errors.New(`ent: missing required field "ApprovalDecision.created_at"`)}
	}
	if _, ok := _c.mutation.ExpiresAt(); !ok {
		return &ValidationError{Name: "expires_at", err: errors.New(`ent: missing required field "ApprovalDecision.expires_at"`)}
	}
	return nil
}

func (_c *ApprovalDecisionCreate) sqlSave(ctx context.Context) (*ApprovalDecision, error) {
	if err := _c.check(); err != nil {
		return nil, err
	}
	_node, _spec := _c.createSpec()
	if err := sqlgraph.CreateNode(ctx, _c.driver, _spec); err != nil {
		if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	if _spec.ID.Value != nil {
		if id, ok := _spec.ID.Value.(string); ok {
			_node.ID = id
		} else {
			return nil, fmt.Errorf("unexpected ApprovalDecision.ID type: %T", _spec.ID.Value)
		}
	}
	_c.mutation.id = &_node.ID
	_c.mutation.done = true
	return _node, nil
}

func (_c *ApprovalDecisionCreate) createSpec() (*ApprovalDecision, *sqlgraph.CreateSpec) {
	var (
		_node = &ApprovalDecision{config: _c.config}
		_spec = sqlgraph.NewCreateSpec(approvaldecision.Table, sqlgraph.NewFieldSpec(approvaldecision.FieldID, field.TypeString))
	)
	if id, ok := _c.mutation.ID(); ok {
		_node.ID = id
		_spec.ID.Value = id
	}
	if value, ok := _c.mutation.PlanHash(); ok {
		_spec.SetField(approvaldecision.FieldPlanHash, field.TypeString, value)
		_node.PlanHash = value
	}
	if value, ok := _c.mutation.Verdict(); ok {
		_spec.SetField(approvaldecision.FieldVerdict, field.TypeString, value)
		_node.Verdict = value
	}
	if value, ok := _c.mutation.OverallRisk(); ok {
		_spec.SetField(approvaldecision.FieldOverallRisk, field.TypeString, value)
		_node.OverallRisk = value
	}
	if value, ok := _c.mutation.Source(); ok {
		_spec.SetField(approvaldecision.FieldSource, field.TypeString, value)
		_node.Source = value
	}
	if value, ok := _c.mutation.Reasoning(); ok {
		_spec.SetField(approvaldecision.FieldReasoning, field.TypeString, value)
		_node.Reasoning = value
	}
	if value, ok := _c.mutation.CreatedAt(); ok {
		_spec.SetField(approvaldecision.FieldCreatedAt, field.TypeTime, value)
		_node.CreatedAt = value
	}
	if value, ok := _c.mutation.ExpiresAt(); ok {
		_spec.SetField(approvaldecision.FieldExpiresAt, field.TypeTime, value)
		_node.ExpiresAt = value
	}
	return _node, _spec
}

// ApprovalDecisionCreateBulk is the builder for creating many ApprovalDecision entities in bulk.
type ApprovalDecisionCreateBulk struct {
	config
	err      error
	builders []*ApprovalDecisionCreate
}

// Save creates the ApprovalDecision entities in the database.
func (_c *ApprovalDecisionCreateBulk) Save(ctx context.Context) ([]*ApprovalDecision, error) {
	if _c.err != nil {
		return nil, _c.err
	}
	specs := make([]*sqlgraph.CreateSpec, len(_c.builders))
	nodes := make([]*ApprovalDecision, len(_c.builders))
	mutators := make([]Mutator, len(_c.builders))
	for i := range _c.builders {
		func(i int, root context.Context) {
			builder := _c.builders[i]
			builder.defaults()
			var mut Mutator = MutateFunc(func(ctx context.Context, m Mutation) (Value, error) {
				mutation, ok := m.(*ApprovalDecisionMutation)
				if !ok {
					return nil, fmt.Errorf("unexpected mutation type %T", m)
				}
				if err := builder.check(); err != nil {
					return nil, err
				}
				builder.mutation = mutation
				var err error
				nodes[i], specs[i] = builder.createSpec()
				if i < len(mutators)-1 {
					_, err = mutators[i+1].Mutate(root, _c.builders[i+1].mutation)
				} else {
					spec := &sqlgraph.BatchCreateSpec{Nodes: specs}
					// Invoke the actual operation on the latest mutation in the chain.
					if err = sqlgraph.BatchCreate(ctx, _c.driver, spec); err != nil {
						if sqlgraph.IsConstraintError(err) {
							err = &ConstraintError{msg: err.Error(), wrap: err}
						}
					}
				}
				if err != nil {
					return nil, err
				}
				mutation.id = &nodes[i].ID
				mutation.done = true
				return nodes[i], nil
			})
			for i := len(builder.hooks) - 1; i >= 0; i-- {
				mut = builder.hooks[i](mut)
			}
			mutators[i] = mut
		}(i, ctx)
	}
	if len(mutators) > 0 {
		if _, err := mutators[0].Mutate(ctx, _c.builders[0].mutation); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// SaveX is like Save, but panics if an error occurs.
func (_c *ApprovalDecisionCreateBulk) SaveX(ctx context.Context) []*ApprovalDecision {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *ApprovalDecisionCreateBulk) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *ApprovalDecisionCreateBulk) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}
