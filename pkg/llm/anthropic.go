package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
)

const anthropicProvider = "anthropic"

// MessagesAPI captures the subset of the Anthropic SDK the adapter uses.
// Satisfied by *sdk.MessageService; tests substitute a stub.
type MessagesAPI interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
	NewStreaming(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion]
}

// AnthropicClient implements Client on the Claude Messages API.
type AnthropicClient struct {
	msg         MessagesAPI
	model       string
	maxTokens   int
	temperature float64
	metrics     *metrics.Metrics
}

// NewAnthropicClient builds the adapter from config, reading the API key
// from the environment variable the config names.
func NewAnthropicClient(cfg config.LLMConfig, m *metrics.Metrics) (*AnthropicClient, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key environment variable %s is empty", cfg.APIKeyEnv)
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return newAnthropicClient(&ac.Messages, cfg, m), nil
}

func newAnthropicClient(msg MessagesAPI, cfg config.LLMConfig, m *metrics.Metrics) *AnthropicClient {
	return &AnthropicClient{
		msg:         msg,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		metrics:     m,
	}
}

// Chat performs a blocking Messages.New completion and flattens the text
// blocks of the response.
func (c *AnthropicClient) Chat(ctx context.Context, req Request) (*Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	msg, err := c.msg.New(ctx, *params)
	c.observe(start, err)
	if err != nil {
		return nil, classifyProviderError("messages.new", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &Response{
		Text: text.String(),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// Stream performs a Messages.NewStreaming completion, forwarding text deltas
// as they arrive. Usage is emitted as the final chunk.
func (c *AnthropicClient) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stream := c.msg.NewStreaming(ctx, *params)
	if err := stream.Err(); err != nil {
		c.observe(start, err)
		return nil, classifyProviderError("messages.new stream", err)
	}

	out := make(chan Chunk, 32)
	go func() {
		defer close(out)
		defer func() { _ = stream.Close() }()

		var usage Usage
		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case sdk.ContentBlockDeltaEvent:
				delta, ok := ev.Delta.AsAny().(sdk.TextDelta)
				if !ok || delta.Text == "" {
					continue
				}
				select {
				case out <- Chunk{Text: delta.Text}:
				case <-ctx.Done():
					return
				}
			case sdk.MessageStartEvent:
				usage.InputTokens = int(ev.Message.Usage.InputTokens)
			case sdk.MessageDeltaEvent:
				// message_delta usage is cumulative, not incremental.
				usage.OutputTokens = int(ev.Usage.OutputTokens)
				if ev.Usage.InputTokens > 0 {
					usage.InputTokens = int(ev.Usage.InputTokens)
				}
			}
		}

		if err := stream.Err(); err != nil {
			c.observe(start, err)
			select {
			case out <- Chunk{Err: classifyProviderError("messages stream", err)}:
			case <-ctx.Done():
			}
			return
		}

		c.observe(start, nil)
		select {
		case out <- Chunk{Usage: &usage}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func (c *AnthropicClient) buildParams(req Request) (*sdk.MessageNewParams, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("chat request requires at least one message")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens <= 0 {
		return nil, errors.New("chat request requires a positive max_tokens")
	}

	msgs := make([]sdk.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		case RoleAssistant:
			msgs = append(msgs, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		params.Temperature = sdk.Float(temperature)
	}
	return &params, nil
}

func (c *AnthropicClient) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.LLMRequests.WithLabelValues(anthropicProvider, outcome).Inc()
	c.metrics.LLMRequestSeconds.WithLabelValues(anthropicProvider).Observe(time.Since(start).Seconds())
}

// classifyProviderError wraps transport and server-side failures as
// ErrUnavailable so callers can retry; request-shape errors pass through.
func classifyProviderError(op string, err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 || apiErr.StatusCode >= 500 {
			return fmt.Errorf("%w: anthropic %s: %v", ErrUnavailable, op, err)
		}
		return fmt.Errorf("anthropic %s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("anthropic %s: %w", op, err)
	}
	// No structured API error means the request never got a response.
	return fmt.Errorf("%w: anthropic %s: %v", ErrUnavailable, op, err)
}
