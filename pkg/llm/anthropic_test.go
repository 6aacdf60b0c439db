package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
)

// stubMessages implements MessagesAPI with canned return values.
type stubMessages struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error
	stream     *ssestream.Stream[sdk.MessageStreamEventUnion]
}

func (s *stubMessages) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func (s *stubMessages) NewStreaming(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion] {
	s.lastParams = body
	if s.stream == nil {
		s.stream = ssestream.NewStream[sdk.MessageStreamEventUnion](&eventDecoder{}, nil)
	}
	return s.stream
}

// eventDecoder feeds a fixed sequence of SSE events to the stream.
type eventDecoder struct {
	events []ssestream.Event
	i      int
	err    error
}

func (d *eventDecoder) Event() ssestream.Event { return d.events[d.i-1] }

func (d *eventDecoder) Next() bool {
	if d.i >= len(d.events) {
		return false
	}
	d.i++
	return true
}

func (d *eventDecoder) Close() error { return nil }
func (d *eventDecoder) Err() error {
	if d.i >= len(d.events) {
		return d.err
	}
	return nil
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   1024,
		Temperature: 0.2,
	}
}

func sseEvent(t *testing.T, raw string) ssestream.Event {
	t.Helper()
	var union sdk.MessageStreamEventUnion
	require.NoError(t, json.Unmarshal([]byte(raw), &union))
	data, err := json.Marshal(union)
	require.NoError(t, err)
	return ssestream.Event{Type: union.Type, Data: data}
}

func TestAnthropicChat_FlattensTextBlocks(t *testing.T) {
	stub := &stubMessages{
		resp: &sdk.Message{
			Content: []sdk.ContentBlockUnion{
				{Type: "text", Text: "disk is "},
				{Type: "text", Text: "89% full"},
			},
			Usage: sdk.Usage{InputTokens: 12, OutputTokens: 7},
		},
	}
	c := newAnthropicClient(stub, testLLMConfig(), nil)

	resp, err := c.Chat(context.Background(), Request{
		System:   "you are a planner",
		Messages: []Message{{Role: RoleUser, Content: "check the disk"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "disk is 89% full", resp.Text)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 7, resp.Usage.OutputTokens)
}

func TestAnthropicChat_BuildsParams(t *testing.T) {
	stub := &stubMessages{resp: &sdk.Message{}}
	c := newAnthropicClient(stub, testLLMConfig(), nil)

	_, err := c.Chat(context.Background(), Request{
		System: "rules",
		Messages: []Message{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "second"},
			{Role: RoleUser, Content: "third"},
		},
	})
	require.NoError(t, err)

	params := stub.lastParams
	assert.Equal(t, sdk.Model("claude-sonnet-4-20250514"), params.Model)
	assert.Equal(t, int64(1024), params.MaxTokens, "config default applies when request omits max_tokens")
	require.Len(t, params.System, 1)
	assert.Equal(t, "rules", params.System[0].Text)
	assert.Len(t, params.Messages, 3)
	assert.InDelta(t, 0.2, params.Temperature.Value, 1e-9)
}

func TestAnthropicChat_RequestOverridesDefaults(t *testing.T) {
	stub := &stubMessages{resp: &sdk.Message{}}
	c := newAnthropicClient(stub, testLLMConfig(), nil)

	_, err := c.Chat(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens:   64,
		Temperature: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(64), stub.lastParams.MaxTokens)
	assert.InDelta(t, 0.9, stub.lastParams.Temperature.Value, 1e-9)
}

func TestAnthropicChat_RejectsBadRequests(t *testing.T) {
	c := newAnthropicClient(&stubMessages{}, testLLMConfig(), nil)

	_, err := c.Chat(context.Background(), Request{})
	assert.ErrorContains(t, err, "at least one message")

	_, err = c.Chat(context.Background(), Request{
		Messages: []Message{{Role: Role("system"), Content: "no"}},
	})
	assert.ErrorContains(t, err, "unsupported message role")
}

func TestAnthropicChat_TransportErrorIsUnavailable(t *testing.T) {
	stub := &stubMessages{err: errors.New("connection refused")}
	c := newAnthropicClient(stub, testLLMConfig(), nil)

	_, err := c.Chat(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAnthropicStream_TextDeltasAndUsage(t *testing.T) {
	events := []ssestream.Event{
		sseEvent(t, `{"type":"message_start","message":{"usage":{"input_tokens":40}}}`),
		sseEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hello "}}`),
		sseEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"world"}}`),
		sseEvent(t, `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":9}}`),
		sseEvent(t, `{"type":"message_stop"}`),
	}
	stub := &stubMessages{
		stream: ssestream.NewStream[sdk.MessageStreamEventUnion](&eventDecoder{events: events}, nil),
	}
	c := newAnthropicClient(stub, testLLMConfig(), nil)

	chunks, err := c.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	var text string
	var usage *Usage
	for chunk := range chunks {
		require.NoError(t, chunk.Err)
		text += chunk.Text
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}
	assert.Equal(t, "hello world", text)
	require.NotNil(t, usage, "stream must end with a usage chunk")
	assert.Equal(t, 40, usage.InputTokens)
	assert.Equal(t, 9, usage.OutputTokens)
}

func TestAnthropicStream_MidStreamErrorSurfacesAsChunk(t *testing.T) {
	events := []ssestream.Event{
		sseEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`),
	}
	stub := &stubMessages{
		stream: ssestream.NewStream[sdk.MessageStreamEventUnion](
			&eventDecoder{events: events, err: errors.New("connection reset")}, nil),
	}
	c := newAnthropicClient(stub, testLLMConfig(), nil)

	chunks, err := c.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	var sawText, sawErr bool
	for chunk := range chunks {
		if chunk.Text != "" {
			sawText = true
		}
		if chunk.Err != nil {
			sawErr = true
			assert.ErrorIs(t, chunk.Err, ErrUnavailable)
		}
	}
	assert.True(t, sawText, "text before the failure should be delivered")
	assert.True(t, sawErr, "failure must arrive as a final Err chunk")
}
