// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/axisworks/axis/ent/approvaldecision"
	"github.com/axisworks/axis/ent/auditentry"
	"github.com/axisworks/axis/ent/configoverride"
	"github.com/axisworks/axis/ent/conversation"
	"github.com/axisworks/axis/ent/event"
	"github.com/axisworks/axis/ent/gear"
	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/ent/message"
	"github.com/axisworks/axis/ent/schedule"
	"github.com/axisworks/axis/ent/schema"
	"github.com/axisworks/axis/ent/secret"
	"github.com/axisworks/axis/ent/wstoken"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	approvaldecisionFields := schema.ApprovalDecision{}.Fields()
	_ = approvaldecisionFields
	// approvaldecisionDescCreatedAt is the schema descriptor for created_at field.
	approvaldecisionDescCreatedAt := approvaldecisionFields[6].Descriptor()
	// approvaldecision.DefaultCreatedAt holds the default value on creation for the created_at field.
	approvaldecision.DefaultCreatedAt = approvaldecisionDescCreatedAt.Default.(func() time.Time)
	auditentryFields := schema.AuditEntry{}.Fields()
	_ = auditentryFields
	// auditentryDescTimestamp is the schema descriptor for timestamp field.
	auditentryDescTimestamp := auditentryFields[1].Descriptor()
	// auditentry.DefaultTimestamp holds the default value on creation for the timestamp field.
	auditentry.DefaultTimestamp = auditentryDescTimestamp.Default.(func() time.Time)
	configoverrideFields := schema.ConfigOverride{}.Fields()
	_ = configoverrideFields
	// configoverrideDescUpdatedAt is the schema descriptor for updated_at field.
	configoverrideDescUpdatedAt := configoverrideFields[3].Descriptor()
	// configoverride.DefaultUpdatedAt holds the default value on creation for the updated_at field.
	configoverride.DefaultUpdatedAt = configoverrideDescUpdatedAt.Default.(func() time.Time)
	conversationFields := schema.Conversation{}.Fields()
	_ = conversationFields
	// conversationDescCreatedAt is the schema descriptor for created_at field.
	conversationDescCreatedAt := conversationFields[2].Descriptor()
	// conversation.DefaultCreatedAt holds the default value on creation for the created_at field.
	conversation.DefaultCreatedAt = conversationDescCreatedAt.Default.(func() time.Time)
	// conversationDescUpdatedAt is the schema descriptor for updated_at field.
	conversationDescUpdatedAt := conversationFields[3].Descriptor()
	// conversation.DefaultUpdatedAt holds the default value on creation for the updated_at field.
	conversation.DefaultUpdatedAt = conversationDescUpdatedAt.Default.(func() time.Time)
	eventFields := schema.Event{}.Fields()
	_ = eventFields
	// eventDescCreatedAt is the schema descriptor for created_at field.
	eventDescCreatedAt := eventFields[3].Descriptor()
	// event.DefaultCreatedAt holds the default value on creation for the created_at field.
	event.DefaultCreatedAt = eventDescCreatedAt.Default.(func() time.Time)
	gearFields := schema.Gear{}.Fields()
	_ = gearFields
	// gearDescEnabled is the schema descriptor for enabled field.
	gearDescEnabled := gearFields[7].Descriptor()
	// gear.DefaultEnabled holds the default value on creation for the enabled field.
	gear.DefaultEnabled = gearDescEnabled.Default.(bool)
	// gearDescInstalledAt is the schema descriptor for installed_at field.
	gearDescInstalledAt := gearFields[9].Descriptor()
	// gear.DefaultInstalledAt holds the default value on creation for the installed_at field.
	gear.DefaultInstalledAt = gearDescInstalledAt.Default.(func() time.Time)
	// gearDescUpdatedAt is the schema descriptor for updated_at field.
	gearDescUpdatedAt := gearFields[10].Descriptor()
	// gear.DefaultUpdatedAt holds the default value on creation for the updated_at field.
	gear.DefaultUpdatedAt = gearDescUpdatedAt.Default.(func() time.Time)
	jobFields := schema.Job{}.Fields()
	_ = jobFields
	// jobDescVersion is the schema descriptor for version field.
	jobDescVersion := jobFields[5].Descriptor()
	// job.DefaultVersion holds the default value on creation for the version field.
	job.DefaultVersion = jobDescVersion.Default.(int)
	// jobDescRetries is the schema descriptor for retries field.
	jobDescRetries := jobFields[6].Descriptor()
	// job.DefaultRetries holds the default value on creation for the retries field.
	job.DefaultRetries = jobDescRetries.Default.(int)
	// jobDescCreatedAt is the schema descriptor for created_at field.
	jobDescCreatedAt := jobFields[15].Descriptor()
	// job.DefaultCreatedAt holds the default value on creation for the created_at field.
	job.DefaultCreatedAt = jobDescCreatedAt.Default.(func() time.Time)
	// jobDescUpdatedAt is the schema descriptor for updated_at field.
	jobDescUpdatedAt := jobFields[16].Descriptor()
	// job.DefaultUpdatedAt holds the default value on creation for the updated_at field.
	job.DefaultUpdatedAt = jobDescUpdatedAt.Default.(func() time.Time)
	messageFields := schema.Message{}.Fields()
	_ = messageFields
	// messageDescCreatedAt is the schema descriptor for created_at field.
	messageDescCreatedAt := messageFields[5].Descriptor()
	// message.DefaultCreatedAt holds the default value on creation for the created_at field.
	message.DefaultCreatedAt = messageDescCreatedAt.Default.(func() time.Time)
	scheduleFields := schema.Schedule{}.Fields()
	_ = scheduleFields
	// scheduleDescEnabled is the schema descriptor for enabled field.
	scheduleDescEnabled := scheduleFields[4].Descriptor()
	// schedule.DefaultEnabled holds the default value on creation for the enabled field.
	schedule.DefaultEnabled = scheduleDescEnabled.Default.(bool)
	// scheduleDescCreatedAt is the schema descriptor for created_at field.
	scheduleDescCreatedAt := scheduleFields[7].Descriptor()
	// schedule.DefaultCreatedAt holds the default value on creation for the created_at field.
	schedule.DefaultCreatedAt = scheduleDescCreatedAt.Default.(func() time.Time)
	secretFields := schema.Secret{}.Fields()
	_ = secretFields
	// secretDescCreatedAt is the schema descriptor for created_at field.
	secretDescCreatedAt := secretFields[4].Descriptor()
	// secret.DefaultCreatedAt holds the default value on creation for the created_at field.
	secret.DefaultCreatedAt = secretDescCreatedAt.Default.(func() time.Time)
	// secretDescUpdatedAt is the schema descriptor for updated_at field.
	secretDescUpdatedAt := secretFields[5].Descriptor()
	// secret.DefaultUpdatedAt holds the default value on creation for the updated_at field.
	secret.DefaultUpdatedAt = secretDescUpdatedAt.Default.(func() time.Time)
	wstokenFields := schema.WsToken{}.Fields()
	_ = wstokenFields
	// wstokenDescCreatedAt is the schema descriptor for created_at field.
	wstokenDescCreatedAt := wstokenFields[3].Descriptor()
	// wstoken.DefaultCreatedAt holds the default value on creation for the created_at field.
	wstoken.DefaultCreatedAt = wstokenDescCreatedAt.Default.(func() time.Time)
}
