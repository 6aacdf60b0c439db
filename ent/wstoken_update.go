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
	"github.com/axisworks/axis/ent/predicate"
	"github.com/axisworks/axis/ent/wstoken"
)

// WsTokenUpdate is the builder for updating WsToken entities.
type WsTokenUpdate struct {
	config
	hooks    []Hook
	mutation *WsTokenMutation
}

// Where appends a list predicates to the WsTokenUpdate builder.
func (_u *WsTokenUpdate) Where(ps ...predicate.WsToken) *WsTokenUpdate {
	_u.mutation.Where(ps...)
	return _u
}

// SetConsumedAt sets the "consumed_at" field.
func (_u *WsTokenUpdate) SetConsumedAt(v time.Time) *WsTokenUpdate {
	_u.mutation.SetConsumedAt(v)
	return _u
}

// SetNillableConsumedAt sets the "consumed_at" field if the given value is not nil.
func (_u *WsTokenUpdate) SetNillableConsumedAt(v *time.Time) *WsTokenUpdate {
	if v != nil {
		_u.SetConsumedAt(*v)
	}
	return _u
}

// ClearConsumedAt clears the value of the "consumed_at" field.
func (_u *WsTokenUpdate) ClearConsumedAt() *WsTokenUpdate {
	_u.mutation.ClearConsumedAt()
	return _u
}

// Mutation returns the WsTokenMutation object of the builder.
func (_u *WsTokenUpdate) Mutation() *WsTokenMutation {
	return _u.mutation
}

// Save executes the query and returns the number of nodes affected by the update operation.
func (_u *WsTokenUpdate) Save(ctx context.Context) (int, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *WsTokenUpdate) SaveX(ctx context.Context) int {
	affected, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return affected
}

// Exec executes the query.
func (_u *WsTokenUpdate) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *WsTokenUpdate) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

func (_u *WsTokenUpdate) sqlSave(ctx context.Context) (_node int, err error) {
	_spec := sqlgraph.NewUpdateSpec(wstoken.Table, wstoken.Columns, sqlgraph.NewFieldSpec(wstoken.FieldID, field.TypeString))
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.ConsumedAt(); ok {
		_spec.SetField(wstoken.FieldConsumedAt, field.TypeTime, value)
	}
	if _u.mutation.ConsumedAtCleared() {
		_spec.ClearField(wstoken.FieldConsumedAt, field.TypeTime)
	}
	if _node, err = sqlgraph.UpdateNodes(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{wstoken.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return 0, err
	}
	_u.mutation.done = true
	return _node, nil
}

// WsTokenUpdateOne is the builder for updating a single WsToken entity.
type WsTokenUpdateOne struct {
	config
	fields   []string
	hooks    []Hook
	mutation *WsTokenMutation
}

// SetConsumedAt sets the "consumed_at" field.
func (_u *WsTokenUpdateOne) SetConsumedAt(v time.Time) *WsTokenUpdateOne {
	_u.mutation.SetConsumedAt(v)
	return _u
}

// SetNillableConsumedAt sets the "consumed_at" field if the given value is not nil.
func (_u *WsTokenUpdateOne) SetNillableConsumedAt(v *time.Time) *WsTokenUpdateOne {
	if v != nil {
		_u.SetConsumedAt(*v)
	}
	return _u
}

// ClearConsumedAt clears the value of the "consumed_at" field.
func (_u *WsTokenUpdateOne) ClearConsumedAt() *WsTokenUpdateOne {
	_u.mutation.ClearConsumedAt()
	return _u
}

// Mutation returns the WsTokenMutation object of the builder.
func (_u *WsTokenUpdateOne) Mutation() *WsTokenMutation {
	return _u.mutation
}

// Where appends a list predicates to the WsTokenUpdate builder.
func (_u *WsTokenUpdateOne) Where(ps ...predicate.WsToken) *WsTokenUpdateOne {
	_u.mutation.Where(ps...)
	return _u
}

// Select allows selecting one or more fields (columns) of the returned entity.
// The default is selecting all fields defined in the entity schema.
func (_u *WsTokenUpdateOne) Select(field string, fields ...string) *WsTokenUpdateOne {
	_u.fields = append([]string{field}, fields...)
	return _u
}

// Save executes the query and returns the updated WsToken entity.
func (_u *WsTokenUpdateOne) Save(ctx context.Context) (*WsToken, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *WsTokenUpdateOne) SaveX(ctx context.Context) *WsToken {
	node, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return node
}

// Exec executes the query on the entity.
func (_u *WsTokenUpdateOne) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *WsTokenUpdateOne) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

func (_u *WsTokenUpdateOne) sqlSave(ctx context.Context) (_node *WsToken, err error) {
	_spec := sqlgraph.NewUpdateSpec(wstoken.Table, wstoken.Columns, sqlgraph.NewFieldSpec(wstoken.FieldID, field.TypeString))
	id, ok := _u.mutation.ID()
	if !ok {
		return nil, &ValidationError{Name: "id", err: errors.New(`ent: missing "WsToken.id" for update`)}
	}
	_spec.Node.ID.Value = id
	if fields := _u.fields; len(fields) > 0 {
		_spec.Node.Columns = make([]string, 0, len(fields))
		_spec.Node.Columns = append(_spec.Node.Columns, wstoken.FieldID)
		for _, f := range fields {
			if !wstoken.ValidColumn(f) {
				return nil, &ValidationError{Name: f, err: fmt.Errorf("ent: invalid field %q for query", f)}
			}
			if f != wstoken.FieldID {
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
	if value, ok := _u.mutation.ConsumedAt(); ok {
		_spec.SetField(wstoken.FieldConsumedAt, field.TypeTime, value)
	}
	if _u.mutation.ConsumedAtCleared() {
		_spec.ClearField(wstoken.FieldConsumedAt, field.TypeTime)
	}
	_node = &WsToken{config: _u.config}
	_spec.Assign = _node.assignValues
	_spec.ScanValues = _node.scanValues
	if err = sqlgraph.UpdateNode(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{wstoken.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	_u.mutation.done = true
	return _node, nil
}
