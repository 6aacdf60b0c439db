package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerPassesSuccessThrough(t *testing.T) {
	inner := NewScriptedClient(ScriptedResponse{Text: "fine"})
	b := NewBreakerClient(inner, "test")

	resp, err := b.Chat(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Text)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("provider down")
	inner := NewScriptedClient(
		ScriptedResponse{Err: boom},
		ScriptedResponse{Err: boom},
		ScriptedResponse{Err: boom},
		ScriptedResponse{Err: boom},
		ScriptedResponse{Err: boom},
	)
	b := NewBreakerClient(inner, "test")

	req := Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	for range 5 {
		_, err := b.Chat(context.Background(), req)
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// The sixth call fails fast without reaching the provider.
	_, err := b.Chat(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, inner.Calls(), 5, "open circuit must not forward calls")
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	responses := make([]ScriptedResponse, 0, 8)
	for range 7 {
		responses = append(responses, ScriptedResponse{Err: context.Canceled})
	}
	responses = append(responses, ScriptedResponse{Text: "still here"})
	inner := NewScriptedClient(responses...)
	b := NewBreakerClient(inner, "test")

	req := Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	for range 7 {
		_, err := b.Chat(context.Background(), req)
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State(), "cancelled jobs are not provider failures")

	resp, err := b.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "still here", resp.Text)
}

func TestBreakerStreamOpenCircuit(t *testing.T) {
	boom := errors.New("provider down")
	responses := make([]ScriptedResponse, 5)
	for i := range responses {
		responses[i] = ScriptedResponse{Err: boom}
	}
	inner := NewScriptedClient(responses...)
	b := NewBreakerClient(inner, "test")

	req := Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	for range 5 {
		_, err := b.Stream(context.Background(), req)
		require.ErrorIs(t, err, boom)
	}

	_, err := b.Stream(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnavailable)
}
