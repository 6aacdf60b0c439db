package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedClientReplaysInOrder(t *testing.T) {
	c := NewScriptedClient(
		ScriptedResponse{Text: "first"},
		ScriptedResponse{Text: "second"},
	)

	resp, err := c.Chat(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "a"}}})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = c.Chat(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "b"}}})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text)

	_, err = c.Chat(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "c"}}})
	assert.ErrorContains(t, err, "exhausted")
}

func TestScriptedClientReturnsScriptedErrors(t *testing.T) {
	boom := errors.New("scripted outage")
	c := NewScriptedClient(ScriptedResponse{Err: boom})

	_, err := c.Chat(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "a"}}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Remaining())
}

func TestScriptedClientStream(t *testing.T) {
	c := NewScriptedClient(ScriptedResponse{Text: "streamed"})

	chunks, err := c.Stream(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "a"}}})
	require.NoError(t, err)

	var text string
	var sawUsage bool
	for chunk := range chunks {
		require.NoError(t, chunk.Err)
		text += chunk.Text
		if chunk.Usage != nil {
			sawUsage = true
		}
	}
	assert.Equal(t, "streamed", text)
	assert.True(t, sawUsage)
}

func TestScriptedClientRecordsCalls(t *testing.T) {
	c := NewScriptedClient(
		ScriptedResponse{Text: "x"},
		ScriptedResponse{Text: "y"},
	)

	_, err := c.Chat(context.Background(), Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "one"}}})
	require.NoError(t, err)
	_, err = c.Stream(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "two"}}})
	require.NoError(t, err)

	calls := c.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "sys", calls[0].System)
	assert.Equal(t, "one", calls[0].Messages[0].Content)
	assert.Equal(t, "two", calls[1].Messages[0].Content)
}
