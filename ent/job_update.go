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
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/ent/predicate"
)

// JobUpdate is the builder for updating Job entities.
type JobUpdate struct {
	config
	hooks    []Hook
	mutation *JobMutation
}

// Where appends a list predicates to the JobUpdate builder.
func (_u *JobUpdate) Where(ps ...predicate.Job) *JobUpdate {
	_u.mutation.Where(ps...)
	return _u
}

// SetConversationID sets the "conversation_id" field.
func (_u *JobUpdate) SetConversationID(v string) *JobUpdate {
	_u.mutation.SetConversationID(v)
	return _u
}

// SetNillableConversationID sets the "conversation_id" field if the given value is not nil.
func (_u *JobUpdate) SetNillableConversationID(v *string) *JobUpdate {
	if v != nil {
		_u.SetConversationID(*v)
	}
	return _u
}

// ClearConversationID clears the value of the "conversation_id" field.
func (_u *JobUpdate) ClearConversationID() *JobUpdate {
	_u.mutation.ClearConversationID()
	return _u
}

// SetParentJobID sets the "parent_job_id" field.
func (_u *JobUpdate) SetParentJobID(v string) *JobUpdate {
	_u.mutation.SetParentJobID(v)
	return _u
}

// SetNillableParentJobID sets the "parent_job_id" field if the given value is not nil.
func (_u *JobUpdate) SetNillableParentJobID(v *string) *JobUpdate {
	if v != nil {
		_u.SetParentJobID(*v)
	}
	return _u
}

// ClearParentJobID clears the value of the "parent_job_id" field.
func (_u *JobUpdate) ClearParentJobID() *JobUpdate {
	_u.mutation.ClearParentJobID()
	return _u
}

// SetSource sets the "source" field.
func (_u *JobUpdate) SetSource(v job.Source) *JobUpdate {
	_u.mutation.SetSource(v)
	return _u
}

// SetNillableSource sets the "source" field if the given value is not nil.
func (_u *JobUpdate) SetNillableSource(v *job.Source) *JobUpdate {
	if v != nil {
		_u.SetSource(*v)
	}
	return _u
}

// SetStatus sets the "status" field.
func (_u *JobUpdate) SetStatus(v job.Status) *JobUpdate {
	_u.mutation.SetStatus(v)
	return _u
}

// SetNillableStatus sets the "status" field if the given value is not nil.
func (_u *JobUpdate) SetNillableStatus(v *job.Status) *JobUpdate {
	if v != nil {
		_u.SetStatus(*v)
	}
	return _u
}

// SetVersion sets the "version" field.
func (_u *JobUpdate) SetVersion(v int) *JobUpdate {
	_u.mutation.ResetVersion()
	_u.mutation.SetVersion(v)
	return _u
}

// SetNillableVersion sets the "version" field if the given value is not nil.
func (_u *JobUpdate) SetNillableVersion(v *int) *JobUpdate {
	if v != nil {
		_u.SetVersion(*v)
	}
	return _u
}

// AddVersion adds value to the "version" field.
func (_u *JobUpdate) AddVersion(v int) *JobUpdate {
	_u.mutation.AddVersion(v)
	return _u
}

// SetRetries sets the "retries" field.
func (_u *JobUpdate) SetRetries(v int) *JobUpdate {
	_u.mutation.ResetRetries()
	_u.mutation.SetRetries(v)
	return _u
}

// SetNillableRetries sets the "retries" field if the given value is not nil.
func (_u *JobUpdate) SetNillableRetries(v *int) *JobUpdate {
	if v != nil {
		_u.SetRetries(*v)
	}
	return _u
}

// AddRetries adds value to the "retries" field.
func (_u *JobUpdate) AddRetries(v int) *JobUpdate {
	_u.mutation.AddRetries(v)
	return _u
}

// SetPlan sets the "plan" field.
func (_u *JobUpdate) SetPlan(v map[string]interface{}) *JobUpdate {
	_u.mutation.SetPlan(v)
	return _u
}

// ClearPlan clears the value of the "plan" field.
func (_u *JobUpdate) ClearPlan() *JobUpdate {
	_u.mutation.ClearPlan()
	return _u
}

// SetValidation sets the "validation" field.
func (_u *JobUpdate) SetValidation(v map[string]interface{}) *JobUpdate {
	_u.mutation.SetValidation(v)
	return _u
}

// ClearValidation clears the value of the "validation" field.
func (_u *JobUpdate) ClearValidation() *JobUpdate {
	_u.mutation.ClearValidation()
	return _u
}

// SetResult sets the "result" field.
func (_u *JobUpdate) SetResult(v map[string]interface{}) *JobUpdate {
	_u.mutation.SetResult(v)
	return _u
}

// ClearResult clears the value of the "result" field.
func (_u *JobUpdate) ClearResult() *JobUpdate {
	_u.mutation.ClearResult()
	return _u
}

// SetJobError sets the "job_error" field.
func (_u *JobUpdate) SetJobError(v map[string]interface{}) *JobUpdate {
	_u.mutation.SetJobError(v)
	return _u
}

// ClearJobError clears the value of the "job_error" field.
func (_u *JobUpdate) ClearJobError() *JobUpdate {
	_u.mutation.ClearJobError()
	return _u
}

// SetWorkerID sets the "worker_id" field.
func (_u *JobUpdate) SetWorkerID(v string) *JobUpdate {
	_u.mutation.SetWorkerID(v)
	return _u
}

// SetNillableWorkerID sets the "worker_id" field if the given value is not nil.
func (_u *JobUpdate) SetNillableWorkerID(v *string) *JobUpdate {
	if v != nil {
		_u.SetWorkerID(*v)
	}
	return _u
}

// ClearWorkerID clears the value of the "worker_id" field.
func (_u *JobUpdate) ClearWorkerID() *JobUpdate {
	_u.mutation.ClearWorkerID()
	return _u
}

// SetApprovalNonce sets the "approval_nonce" field.
func (_u *JobUpdate) SetApprovalNonce(v string) *JobUpdate {
	_u.mutation.SetApprovalNonce(v)
	return _u
}

// SetNillableApprovalNonce sets the "approval_nonce" field if the given value is not nil.
func (_u *JobUpdate) SetNillableApprovalNonce(v *string) *JobUpdate {
	if v != nil {
		_u.SetApprovalNonce(*v)
	}
	return _u
}

// ClearApprovalNonce clears the value of the "approval_nonce" field.
func (_u *JobUpdate) ClearApprovalNonce() *JobUpdate {
	_u.mutation.ClearApprovalNonce()
	return _u
}

// SetNotBefore sets the "not_before" field.
func (_u *JobUpdate) SetNotBefore(v time.Time) *JobUpdate {
	_u.mutation.SetNotBefore(v)
	return _u
}

// SetNillableNotBefore sets the "not_before" field if the given value is not nil.
func (_u *JobUpdate) SetNillableNotBefore(v *time.Time) *JobUpdate {
	if v != nil {
		_u.SetNotBefore(*v)
	}
	return _u
}

// ClearNotBefore clears the value of the "not_before" field.
func (_u *JobUpdate) ClearNotBefore() *JobUpdate {
	_u.mutation.ClearNotBefore()
	return _u
}

// SetClaimedAt sets the "claimed_at" field.
func (_u *JobUpdate) SetClaimedAt(v time.Time) *JobUpdate {
	_u.mutation.SetClaimedAt(v)
	return _u
}

// SetNillableClaimedAt sets the "claimed_at" field if the given value is not nil.
func (_u *JobUpdate) SetNillableClaimedAt(v *time.Time) *JobUpdate {
	if v != nil {
		_u.SetClaimedAt(*v)
	}
	return _u
}

// ClearClaimedAt clears the value of the "claimed_at" field.
func (_u *JobUpdate) ClearClaimedAt() *JobUpdate {
	_u.mutation.ClearClaimedAt()
	return _u
}

// SetUpdatedAt sets the "updated_at" field.
func (_u *JobUpdate) SetUpdatedAt(v time.Time) *JobUpdate {
	_u.mutation.SetUpdatedAt(v)
	return _u
}

// SetNillableUpdatedAt sets the "updated_at" field if the given value is not nil.
func (_u *JobUpdate) SetNillableUpdatedAt(v *time.Time) *JobUpdate {
	if v != nil {
		_u.SetUpdatedAt(*v)
	}
	return _u
}

// SetCompletedAt sets the "completed_at" field.
func (_u *JobUpdate) SetCompletedAt(v time.Time) *JobUpdate {
	_u.mutation.SetCompletedAt(v)
	return _u
}

// SetNillableCompletedAt sets the "completed_at" field if the given value is not nil.
func (_u *JobUpdate) SetNillableCompletedAt(v *time.Time) *JobUpdate {
	if v != nil {
		_u.SetCompletedAt(*v)
	}
	return _u
}

// ClearCompletedAt clears the value of the "completed_at" field.
func (_u *JobUpdate) ClearCompletedAt() *JobUpdate {
	_u.mutation.ClearCompletedAt()
	return _u
}

// Mutation returns the JobMutation object of the builder.
func (_u *JobUpdate) Mutation() *JobMutation {
	return _u.mutation
}

// Save executes the query and returns the number of nodes affected by the update operation.
func (_u *JobUpdate) Save(ctx context.Context) (int, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *JobUpdate) SaveX(ctx context.Context) int {
	affected, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return affected
}

// Exec executes the query.
func (_u *JobUpdate) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *JobUpdate) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_u *JobUpdate) check() error {
	if v, ok := _u.mutation.Source(); ok {
		if err := job.SourceValidator(v); err != nil {
			return &ValidationError{Name: "source", err: fmt.Errorf(`ent: validator failed for field "Job.source": %w`, err)}
		}
	}
	if v, ok := _u.mutation.Status(); ok {
		if err := job.StatusValidator(v); err != nil {
			return &ValidationError{Name: "status", err: fmt.Errorf(`ent: validator failed for field "Job.status": %w`, err)}
		}
	}
	return nil
}

func (_u *JobUpdate) sqlSave(ctx context.Context) (_node int, err error) {
	if err := _u.check(); err != nil {
		return _node, err
	}
	_spec := sqlgraph.NewUpdateSpec(job.Table, job.Columns, sqlgraph.NewFieldSpec(job.FieldID, field.TypeString))
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.ConversationID(); ok {
		_spec.SetField(job.FieldConversationID, field.TypeString, value)
	}
	if _u.mutation.ConversationIDCleared() {
		_spec.ClearField(job.FieldConversationID, field.TypeString)
	}
	if value, ok := _u.mutation.ParentJobID(); ok {
		_spec.SetField(job.FieldParentJobID, field.TypeString, value)
	}
	if _u.mutation.ParentJobIDCleared() {
		_spec.ClearField(job.FieldParentJobID, field.TypeString)
	}
	if value, ok := _u.mutation.Source(); ok {
		_spec.SetField(job.FieldSource, field.TypeEnum, value)
	}
	if value, ok := _u.mutation.Status(); ok {
		_spec.SetField(job.FieldStatus, field.TypeEnum, value)
	}
	if value, ok := _u.mutation.Version(); ok {
		_spec.SetField(job.FieldVersion, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedVersion(); ok {
		_spec.AddField(job.FieldVersion, field.TypeInt, value)
	}
	if value, ok := _u.mutation.Retries(); ok {
		_spec.SetField(job.FieldRetries, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedRetries(); ok {
		_spec.AddField(job.FieldRetries, field.TypeInt, value)
	}
	if value, ok := _u.mutation.Plan(); ok {
		_spec.SetField(job.FieldPlan, field.TypeJSON, value)
	}
	if _u.mutation.PlanCleared() {
		_spec.ClearField(job.FieldPlan, field.TypeJSON)
	}
	if value, ok := _u.mutation.Validation(); ok {
		_spec.SetField(job.FieldValidation, field.TypeJSON, value)
	}
	if _u.mutation.ValidationCleared() {
		_spec.ClearField(job.FieldValidation, field.TypeJSON)
	}
	if value, ok := _u.mutation.Result(); ok {
		_spec.SetField(job.FieldResult, field.TypeJSON, value)
	}
	if _u.mutation.ResultCleared() {
		_spec.ClearField(job.FieldResult, field.TypeJSON)
	}
	if value, ok := _u.mutation.JobError(); ok {
		_spec.SetField(job.FieldJobError, field.TypeJSON, value)
	}
	if _u.mutation.JobErrorCleared() {
		_spec.ClearField(job.FieldJobError, field.TypeJSON)
	}
	if value, ok := _u.mutation.WorkerID(); ok {
		_spec.SetField(job.FieldWorkerID, field.TypeString, value)
	}
	if _u.mutation.WorkerIDCleared() {
		_spec.ClearField(job.FieldWorkerID, field.TypeString)
	}
	if value, ok := _u.mutation.ApprovalNonce(); ok {
		_spec.SetField(job.FieldApprovalNonce, field.TypeString, value)
	}
	if _u.mutation.ApprovalNonceCleared() {
		_spec.ClearField(job.FieldApprovalNonce, field.TypeString)
	}
	if value, ok := _u.mutation.NotBefore(); ok {
		_spec.SetField(job.FieldNotBefore, field.TypeTime, value)
	}
	if _u.mutation.NotBeforeCleared() {
		_spec.ClearField(job.FieldNotBefore, field.TypeTime)
	}
	if value, ok := _u.mutation.ClaimedAt(); ok {
		_spec.SetField(job.FieldClaimedAt, field.TypeTime, value)
	}
	if _u.mutation.ClaimedAtCleared() {
		_spec.ClearField(job.FieldClaimedAt, field.TypeTime)
	}
	if value, ok := _u.mutation.UpdatedAt(); ok {
		_spec.SetField(job.FieldUpdatedAt, field.TypeTime, value)
	}
	if value, ok := _u.mutation.CompletedAt(); ok {
		_spec.SetField(job.FieldCompletedAt, field.TypeTime, value)
	}
	if _u.mutation.CompletedAtCleared() {
		_spec.ClearField(job.FieldCompletedAt, field.TypeTime)
	}
	if _node, err = sqlgraph.UpdateNodes(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{job.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return 0, err
	}
	_u.mutation.done = true
	return _node, nil
}

// JobUpdateOne is the builder for updating a single Job entity.
type JobUpdateOne struct {
	config
	fields   []string
	hooks    []Hook
	mutation *JobMutation
}

// SetConversationID sets the "conversation_id" field.
func (_u *JobUpdateOne) SetConversationID(v string) *JobUpdateOne {
	_u.mutation.SetConversationID(v)
	return _u
}

// SetNillableConversationID sets the "conversation_id" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableConversationID(v *string) *JobUpdateOne {
	if v != nil {
		_u.SetConversationID(*v)
	}
	return _u
}

// ClearConversationID clears the value of the "conversation_id" field.
func (_u *JobUpdateOne) ClearConversationID() *JobUpdateOne {
	_u.mutation.ClearConversationID()
	return _u
}

// SetParentJobID sets the "parent_job_id" field.
func (_u *JobUpdateOne) SetParentJobID(v string) *JobUpdateOne {
	_u.mutation.SetParentJobID(v)
	return _u
}

// SetNillableParentJobID sets the "parent_job_id" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableParentJobID(v *string) *JobUpdateOne {
	if v != nil {
		_u.SetParentJobID(*v)
	}
	return _u
}

// ClearParentJobID clears the value of the "parent_job_id" field.
func (_u *JobUpdateOne) ClearParentJobID() *JobUpdateOne {
	_u.mutation.ClearParentJobID()
	return _u
}

// SetSource sets the "source" field.
func (_u *JobUpdateOne) SetSource(v job.Source) *JobUpdateOne {
	_u.mutation.SetSource(v)
	return _u
}

// SetNillableSource sets the "source" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableSource(v *job.Source) *JobUpdateOne {
	if v != nil {
		_u.SetSource(*v)
	}
	return _u
}

// SetStatus sets the "status" field.
func (_u *JobUpdateOne) SetStatus(v job.Status) *JobUpdateOne {
	_u.mutation.SetStatus(v)
	return _u
}

// SetNillableStatus sets the "status" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableStatus(v *job.Status) *JobUpdateOne {
	if v != nil {
		_u.SetStatus(*v)
	}
	return _u
}

// SetVersion sets the "version" field.
func (_u *JobUpdateOne) SetVersion(v int) *JobUpdateOne {
	_u.mutation.ResetVersion()
	_u.mutation.SetVersion(v)
	return _u
}

// SetNillableVersion sets the "version" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableVersion(v *int) *JobUpdateOne {
	if v != nil {
		_u.SetVersion(*v)
	}
	return _u
}

// AddVersion adds value to the "version" field.
func (_u *JobUpdateOne) AddVersion(v int) *JobUpdateOne {
	_u.mutation.AddVersion(v)
	return _u
}

// SetRetries sets the "retries" field.
func (_u *JobUpdateOne) SetRetries(v int) *JobUpdateOne {
	_u.mutation.ResetRetries()
	_u.mutation.SetRetries(v)
	return _u
}

// SetNillableRetries sets the "retries" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableRetries(v *int) *JobUpdateOne {
	if v != nil {
		_u.SetRetries(*v)
	}
	return _u
}

// AddRetries adds value to the "retries" field.
func (_u *JobUpdateOne) AddRetries(v int) *JobUpdateOne {
	_u.mutation.AddRetries(v)
	return _u
}

// SetPlan sets the "plan" field.
func (_u *JobUpdateOne) SetPlan(v map[string]interface{}) *JobUpdateOne {
	_u.mutation.SetPlan(v)
	return _u
}

// ClearPlan clears the value of the "plan" field.
func (_u *JobUpdateOne) ClearPlan() *JobUpdateOne {
	_u.mutation.ClearPlan()
	return _u
}

// SetValidation sets the "validation" field.
func (_u *JobUpdateOne) SetValidation(v map[string]interface{}) *JobUpdateOne {
	_u.mutation.SetValidation(v)
	return _u
}

// ClearValidation clears the value of the "validation" field.
func (_u *JobUpdateOne) ClearValidation() *JobUpdateOne {
	_u.mutation.ClearValidation()
	return _u
}

// SetResult sets the "result" field.
func (_u *JobUpdateOne) SetResult(v map[string]interface{}) *JobUpdateOne {
	_u.mutation.SetResult(v)
	return _u
}

// ClearResult clears the value of the "result" field.
func (_u *JobUpdateOne) ClearResult() *JobUpdateOne {
	_u.mutation.ClearResult()
	return _u
}

// SetJobError sets the "job_error" field.
func (_u *JobUpdateOne) SetJobError(v map[string]interface{}) *JobUpdateOne {
	_u.mutation.SetJobError(v)
	return _u
}

// ClearJobError clears the value of the "job_error" field.
func (_u *JobUpdateOne) ClearJobError() *JobUpdateOne {
	_u.mutation.ClearJobError()
	return _u
}

// SetWorkerID sets the "worker_id" field.
func (_u *JobUpdateOne) SetWorkerID(v string) *JobUpdateOne {
	_u.mutation.SetWorkerID(v)
	return _u
}

// SetNillableWorkerID sets the "worker_id" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableWorkerID(v *string) *JobUpdateOne {
	if v != nil {
		_u.SetWorkerID(*v)
	}
	return _u
}

// ClearWorkerID clears the value of the "worker_id" field.
func (_u *JobUpdateOne) ClearWorkerID() *JobUpdateOne {
	_u.mutation.ClearWorkerID()
	return _u
}

// SetApprovalNonce sets the "approval_nonce" field.
func (_u *JobUpdateOne) SetApprovalNonce(v string) *JobUpdateOne {
	_u.mutation.SetApprovalNonce(v)
	return _u
}

// SetNillableApprovalNonce sets the "approval_nonce" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableApprovalNonce(v *string) *JobUpdateOne {
	if v != nil {
		_u.SetApprovalNonce(*v)
	}
	return _u
}

// ClearApprovalNonce clears the value of the "approval_nonce" field.
func (_u *JobUpdateOne) ClearApprovalNonce() *JobUpdateOne {
	_u.mutation.ClearApprovalNonce()
	return _u
}

// SetNotBefore sets the "not_before" field.
func (_u *JobUpdateOne) SetNotBefore(v time.Time) *JobUpdateOne {
	_u.mutation.SetNotBefore(v)
	return _u
}

// SetNillableNotBefore sets the "not_before" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableNotBefore(v *time.Time) *JobUpdateOne {
	if v != nil {
		_u.SetNotBefore(*v)
	}
	return _u
}

// ClearNotBefore clears the value of the "not_before" field.
func (_u *JobUpdateOne) ClearNotBefore() *JobUpdateOne {
	_u.mutation.ClearNotBefore()
	return _u
}

// SetClaimedAt sets the "claimed_at" field.
func (_u *JobUpdateOne) SetClaimedAt(v time.Time) *JobUpdateOne {
	_u.mutation.SetClaimedAt(v)
	return _u
}

// SetNillableClaimedAt sets the "claimed_at" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableClaimedAt(v *time.Time) *JobUpdateOne {
	if v != nil {
		_u.SetClaimedAt(*v)
	}
	return _u
}

// ClearClaimedAt clears the value of the "claimed_at" field.
func (_u *JobUpdateOne) ClearClaimedAt() *JobUpdateOne {
	_u.mutation.ClearClaimedAt()
	return _u
}

// SetUpdatedAt sets the "updated_at" field.
func (_u *JobUpdateOne) SetUpdatedAt(v time.Time) *JobUpdateOne {
	_u.mutation.SetUpdatedAt(v)
	return _u
}

// SetNillableUpdatedAt sets the "updated_at" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableUpdatedAt(v *time.Time) *JobUpdateOne {
	if v != nil {
		_u.SetUpdatedAt(*v)
	}
	return _u
}

// SetCompletedAt sets the "completed_at" field.
func (_u *JobUpdateOne) SetCompletedAt(v time.Time) *JobUpdateOne {
	_u.mutation.SetCompletedAt(v)
	return _u
}

// SetNillableCompletedAt sets the "completed_at" field if the given value is not nil.
func (_u *JobUpdateOne) SetNillableCompletedAt(v *time.Time) *JobUpdateOne {
	if v != nil {
		_u.SetCompletedAt(*v)
	}
	return _u
}

// ClearCompletedAt clears the value of the "completed_at" field.
func (_u *JobUpdateOne) ClearCompletedAt() *JobUpdateOne {
	_u.mutation.ClearCompletedAt()
	return _u
}

// Mutation returns the JobMutation object of the builder.
func (_u *JobUpdateOne) Mutation() *JobMutation {
	return _u.mutation
}

// Where appends a list predicates to the JobUpdate builder.
func (_u *JobUpdateOne) Where(ps ...predicate.Job) *JobUpdateOne {
	_u.mutation.Where(ps...)
	return _u
}

// Select allows selecting one or more fields (columns) of the returned entity.
// The default is selecting all fields defined in the entity schema.
func (_u *JobUpdateOne) Select(field string, fields ...string) *JobUpdateOne {
	_u.fields = append([]string{field}, fields...)
	return _u
}

// Save executes the query and returns the updated Job entity.
func (_u *JobUpdateOne) Save(ctx context.Context) (*Job, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *JobUpdateOne) SaveX(ctx context.Context) *Job {
	node, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return node
}

// Exec executes the query on the entity.
func (_u *JobUpdateOne) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *JobUpdateOne) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_u *JobUpdateOne) check() error {
	if v, ok := _u.mutation.Source(); ok {
		if err := job.SourceValidator(v); err != nil {
			return &ValidationError{Name: "source", err: fmt.Errorf(`ent: validator failed for field "Job.source": %w`, err)}
		}
	}
	if v, ok := _u.mutation.Status(); ok {
		if err := job.StatusValidator(v); err != nil {
			return &ValidationError{Name: "status", err: fmt.Errorf(`ent: validator failed for field "Job.status": %w`, err)}
		}
	}
	return nil
}

func (_u *JobUpdateOne) sqlSave(ctx context.Context) (_node *Job, err error) {
	if err := _u.check(); err != nil {
		return _node, err
	}
	_spec := sqlgraph.NewUpdateSpec(job.Table, job.Columns, sqlgraph.NewFieldSpec(job.FieldID, field.TypeString))
	id, ok := _u.mutation.ID()
	if !ok {
		return nil, &ValidationError{Name: "id", err: errors.New(`ent: missing "Job.id" for update`)}
	}
	_spec.Node.ID.Value = id
	if fields := _u.fields; len(fields) > 0 {
		_spec.Node.Columns = make([]string, 0, len(fields))
		_spec.Node.Columns = append(_spec.Node.Columns, job.FieldID)
		for _, f := range fields {
			if !job.ValidColumn(f) {
				return nil, &ValidationError{Name: f, err: fmt.Errorf("ent: invalid field %q for query", f)}
			}
			if f != job.FieldID {
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
	if value, ok := _u.mutation.ConversationID(); ok {
		_spec.SetField(job.FieldConversationID, field.TypeString, value)
	}
	if _u.mutation.ConversationIDCleared() {
		_spec.ClearField(job.FieldConversationID, field.TypeString)
	}
	if value, ok := _u.mutation.ParentJobID(); ok {
		_spec.SetField(job.FieldParentJobID, field.TypeString, value)
	}
	if _u.mutation.ParentJobIDCleared() {
		_spec.ClearField(job.FieldParentJobID, field.TypeString)
	}
	if value, ok := _u.mutation.Source(); ok {
		_spec.SetField(job.FieldSource, field.TypeEnum, value)
	}
	if value, ok := _u.mutation.Status(); ok {
		_spec.SetField(job.FieldStatus, field.TypeEnum, value)
	}
	if value, ok := _u.mutation.Version(); ok {
		_spec.SetField(job.FieldVersion, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedVersion(); ok {
		_spec.AddField(job.FieldVersion, field.TypeInt, value)
	}
	if value, ok := _u.mutation.Retries(); ok {
		_spec.SetField(job.FieldRetries, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedRetries(); ok {
		_spec.AddField(job.FieldRetries, field.TypeInt, value)
	}
	if value, ok := _u.mutation.Plan(); ok {
		_spec.SetField(job.FieldPlan, field.TypeJSON, value)
	}
	if _u.mutation.PlanCleared() {
		_spec.ClearField(job.FieldPlan, field.TypeJSON)
	}
	if value, ok := _u.mutation.Validation(); ok {
		_spec.SetField(job.FieldValidation, field.TypeJSON, value)
	}
	if _u.mutation.ValidationCleared() {
		_spec.ClearField(job.FieldValidation, field.TypeJSON)
	}
	if value, ok := _u.mutation.Result(); ok {
		_spec.SetField(job.FieldResult, field.TypeJSON, value)
	}
	if _u.mutation.ResultCleared() {
		_spec.ClearField(job.FieldResult, field.TypeJSON)
	}
	if value, ok := _u.mutation.JobError(); ok {
		_spec.SetField(job.FieldJobError, field.TypeJSON, value)
	}
	if _u.mutation.JobErrorCleared() {
		_spec.ClearField(job.FieldJobError, field.TypeJSON)
	}
	if value, ok := _u.mutation.WorkerID(); ok {
		_spec.SetField(job.FieldWorkerID, field.TypeString, value)
	}
	if _u.mutation.WorkerIDCleared() {
		_spec.ClearField(job.FieldWorkerID, field.TypeString)
	}
	if value, ok := _u.mutation.ApprovalNonce(); ok {
		_spec.SetField(job.FieldApprovalNonce, field.TypeString, value)
	}
	if _u.mutation.ApprovalNonceCleared() {
		_spec.ClearField(job.FieldApprovalNonce, field.TypeString)
	}
	if value, ok := _u.mutation.NotBefore(); ok {
		_spec.SetField(job.FieldNotBefore, field.TypeTime, value)
	}
	if _u.mutation.NotBeforeCleared() {
		_spec.ClearField(job.FieldNotBefore, field.TypeTime)
	}
	if value, ok := _u.mutation.ClaimedAt(); ok {
		_spec.SetField(job.FieldClaimedAt, field.TypeTime, value)
	}
	if _u.mutation.ClaimedAtCleared() {
		_spec.ClearField(job.FieldClaimedAt, field.TypeTime)
	}
	if value, ok := _u.mutation.UpdatedAt(); ok {
		_spec.SetField(job.FieldUpdatedAt, field.TypeTime, value)
	}
	if value, ok := _u.mutation.CompletedAt(); ok {
		_spec.SetField(job.FieldCompletedAt, field.TypeTime, value)
	}
	if _u.mutation.CompletedAtCleared() {
		_spec.ClearField(job.FieldCompletedAt, field.TypeTime)
	}
	_node = &Job{config: _u.config}
	_spec.Assign = _node.assignValues
	_spec.ScanValues = _node.scanValues
	if err = sqlgraph.UpdateNode(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{job.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	_u.mutation.done = true
	return _node, nil
}
