package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotifyListener(t *testing.T) {
	listener := NewNotifyListener("host=localhost dbname=test", []string{JobsChannel}, func(string, []byte) {})

	assert.NotNil(t, listener)
	assert.Equal(t, "host=localhost dbname=test", listener.connString)
	assert.Equal(t, []string{JobsChannel}, listener.channels)
}

func TestNotifyListener_NotHealthyBeforeStart(t *testing.T) {
	listener := NewNotifyListener("host=localhost", []string{JobsChannel}, func(string, []byte) {})
	assert.False(t, listener.Healthy())
}
