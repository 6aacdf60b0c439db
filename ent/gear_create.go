// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/axisworks/axis/ent/gear"
)

// GearCreate is the builder for creating a Gear entity.
type GearCreate struct {
	config
	mutation *GearMutation
	hooks    []Hook
}

// SetName sets the "name" field.
func (_c *GearCreate) SetName(v string) *GearCreate {
	_c.mutation.SetName(v)
	return _c
}

// SetVersion sets the "version" field.
func (_c *GearCreate) SetVersion(v string) *GearCreate {
	_c.mutation.SetVersion(v)
	return _c
}

// SetOrigin sets the "origin" field.
func (_c *GearCreate) SetOrigin(v gear.Origin) *GearCreate {
	_c.mutation.SetOrigin(v)
	return _c
}

// SetNillableOrigin sets the "origin" field if the given value is not nil.
func (_c *GearCreate) SetNillableOrigin(v *gear.Origin) *GearCreate {
	if v != nil {
		_c.SetOrigin(*v)
	}
	return _c
}

// SetManifest sets the "manifest" field.
func (_c *GearCreate) SetManifest(v map[string]interface{}) *GearCreate {
	_c.mutation.SetManifest(v)
	return _c
}

// SetChecksum sets the "checksum" field.
func (_c *GearCreate) SetChecksum(v string) *GearCreate {
	_c.mutation.SetChecksum(v)
	return _c
}

// SetEntryPoint sets the "entry_point" field.
func (_c *GearCreate) SetEntryPoint(v string) *GearCreate {
	_c.mutation.SetEntryPoint(v)
	return _c
}

// SetEnabled sets the "enabled" field.
func (_c *GearCreate) SetEnabled(v bool) *GearCreate {
	_c.mutation.SetEnabled(v)
	return _c
}

// SetNillableEnabled sets the "enabled" field if the given value is not nil.
func (_c *GearCreate) SetNillableEnabled(v *bool) *GearCreate {
	if v != nil {
		_c.SetEnabled(*v)
	}
	return _c
}

// SetDisabledReason sets the "disabled_reason" field.
func (_c *GearCreate) SetDisabledReason(v string) *GearCreate {
	_c.mutation.SetDisabledReason(v)
	return _c
}

// SetNillableDisabledReason sets the "disabled_reason" field if the given value is not nil.
func (_c *GearCreate) SetNillableDisabledReason(v *string) *GearCreate {
	if v != nil {
		_c.SetDisabledReason(*v)
	}
	return _c
}

// SetInstalledAt sets the "installed_at" field.
func (_c *GearCreate) SetInstalledAt(v time.Time) *GearCreate {
	_c.mutation.SetInstalledAt(v)
	return _c
}

// SetNillableInstalledAt sets the "installed_at" field if the given value is not nil.
func (_c *GearCreate) SetNillableInstalledAt(v *time.Time) *GearCreate {
	if v != nil {
		_c.SetInstalledAt(*v)
	}
	return _c
}

// SetUpdatedAt sets the "updated_at" field.
func (_c *GearCreate) SetUpdatedAt(v time.Time) *GearCreate {
	_c.mutation.SetUpdatedAt(v)
	return _c
}

// SetNillableUpdatedAt sets the "updated_at" field if the given value is not nil.
func (_c *GearCreate) SetNillableUpdatedAt(v *time.Time) *GearCreate {
	if v != nil {
		_c.SetUpdatedAt(*v)
	}
	return _c
}

// SetID sets the "id" field.
func (_c *GearCreate) SetID(v string) *GearCreate {
	_c.mutation.SetID(v)
	return _c
}

// Mutation returns the GearMutation object of the builder.
func (_c *GearCreate) Mutation() *GearMutation {
	return _c.mutation
}

// Save creates the Gear in the database.
func (_c *GearCreate) Save(ctx context.Context) (*Gear, error) {
	_c.defaults()
	return withHooks(ctx, _c.sqlSave, _c.mutation, _c.hooks)
}

// SaveX calls Save and panics if Save returns an error.
func (_c *GearCreate) SaveX(ctx context.Context) *Gear {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *GearCreate) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *GearCreate) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}

// defaults sets the default values of the builder before save.
func (_c *GearCreate) defaults() {
	if _, ok := _c.mutation.Origin(); !ok {
		v := gear.DefaultOrigin
		_c.mutation.SetOrigin(v)
	}
	if _, ok := _c.mutation.Enabled(); !ok {
		v := gear.DefaultEnabled
		_c.mutation.SetEnabled(v)
	}
	if _, ok := _c.mutation.InstalledAt(); !ok {
		v := gear.DefaultInstalledAt()
		_c.mutation.SetInstalledAt(v)
	}
	if _, ok := _c.mutation.UpdatedAt(); !ok {
		v := gear.DefaultUpdatedAt()
		_c.mutation.SetUpdatedAt(v)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_c *GearCreate) check() error {
	if _, ok := _c.mutation.Name(); !ok {
		return &ValidationError{Name: "name", err: errors.New(`ent: missing required field "Gear.name"`)}
	}
	if _, ok := _c.mutation.Version(); !ok {
		return &ValidationError{Name: "version", err: errors.New(`ent: missing required field "Gear.version"`)}
	}
	if _, ok := _c.mutation.Origin(); !ok {
		return &ValidationError{Name: "origin", err: errors.New(`ent: missing required field "Gear.origin"`)}
	}
	if v, ok := _c.mutation.Origin(); ok {
		if err := gear.OriginValidator(v); err != nil {
			return &ValidationError{Name: "origin", err: fmt.Errorf(`ent: validator failed for field "Gear.origin": %w`, err)}
		}
	}
	if _, ok := _c.mutation.Manifest(); !ok {
		return &ValidationError{Name: "manifest", err: errors.New(`ent: missing required field "Gear.manifest"`)}
	}
	if _, ok := _c.mutation.Checksum(); !ok {
		return &ValidationError{Name: "checksum", err: errors.New(`ent: missing required field "Gear.checksum"`)}
	}
	if _, ok := _c.mutation.EntryPoint(); !ok {
		return &ValidationError{Name: "entry_point", err: errors.New(`ent: missing required field "Gear.entry_point"`)}
	}
	if _, ok := _c.mutation.Enabled(); !ok {
		return &ValidationError{Name: "enabled", err: errors.New(`ent: missing required field "Gear.enabled"`)}
	}
	if _, ok := _c.mutation.InstalledAt(); !ok {
		return &ValidationError{Name: "installed_at", err: errors.New(`ent: missing required field "Gear.installed_at"`)}
	}
	if _, ok := _c.mutation.UpdatedAt(); !ok {
		return &ValidationError{Name: "updated_at", err: errors.New(`ent: missing required field "Gear.updated_at"`)}
	}
	return nil
}

func (_c *GearCreate) sqlSave(ctx context.Context) (*Gear, error) {
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
			return nil, fmt.Errorf("unexpected Gear.ID type: %T", _spec.ID.Value)
		}
	}
	_c.mutation.id = &_node.ID
	_c.mutation.done = true
	return _node, nil
}

func (_c *GearCreate) createSpec() (*Gear, *sqlgraph.CreateSpec) {
	var (
		_node = &Gear{config: _c.config}
		_spec = sqlgraph.NewCreateSpec(gear.Table, sqlgraph.NewFieldSpec(gear.FieldID, field.TypeString))
	)
	if id, ok := _c.mutation.ID(); ok {
		_node.ID = id
		_spec.ID.Value = id
	}
	if value, ok := _c.mutation.Name(); ok {
		_spec.SetField(gear.FieldName, field.TypeString, value)
		_node.Name = value
	}
	if value, ok := _c.mutation.Version(); ok {
		_spec.SetField(gear.FieldVersion, field.TypeString, value)
		_node.Version = value
	}
	if value, ok := _c.mutation.Origin(); ok {
		_spec.SetField(gear.FieldOrigin, field.TypeEnum, value)
		_node.Origin = value
	}
	if value, ok := _c.mutation.Manifest(); ok {
		_spec.SetField(gear.FieldManifest, field.TypeJSON, value)
		_node.Manifest = value
	}
	if value, ok := _c.mutation.Checksum(); ok {
		_spec.SetField(gear.FieldChecksum, field.TypeString, value)
		_node.Checksum = value
	}
	if value, ok := _c.mutation.EntryPoint(); ok {
		_spec.SetField(gear.FieldEntryPoint, field.TypeString, value)
		_node.EntryPoint = value
	}
	if value, ok := _c.mutation.Enabled(); ok {
		_spec.SetField(gear.FieldEnabled, field.TypeBool, value)
		_node.Enabled = value
	}
	if value, ok := _c.mutation.DisabledReason(); ok {
		_spec.SetField(gear.FieldDisabledReason, field.TypeString, value)
		_node.DisabledReason = &value
	}
	if value, ok := _c.mutation.InstalledAt(); ok {
		_spec.SetField(gear.FieldInstalledAt, field.TypeTime, value)
		_node.InstalledAt = value
	}
	if value, ok := _c.mutation.UpdatedAt(); ok {
		_spec.SetField(gear.FieldUpdatedAt, field.TypeTime, value)
		_node.UpdatedAt = value
	}
	return _node, _spec
}

// GearCreateBulk is the builder for creating many Gear entities in bulk.
type GearCreateBulk struct {
	config
	err      error
	builders []*GearCreate
}

// Save creates the Gear entities in the database.
func (_c *GearCreateBulk) Save(ctx context.Context) ([]*Gear, error) {
	if _c.err != nil {
		return nil, _c.err
	}
	specs := make([]*sqlgraph.CreateSpec, len(_c.builders))
	nodes := make([]*Gear, len(_c.builders))
	mutators := make([]Mutator, len(_c.builders))
	for i := range _c.builders {
		func(i int, root context.Context) {
			builder := _c.builders[i]
			builder.defaults()
			var mut Mutator = MutateFunc(func(ctx context.Context, m Mutation) (Value, error) {
				mutation, ok := m.(*GearMutation)
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
func (_c *GearCreateBulk) SaveX(ctx context.Context) []*Gear {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *GearCreateBulk) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *GearCreateBulk) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}
