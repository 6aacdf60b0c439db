package bus

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/signing"
)

// newTestRouter builds a router with signing disabled and short timeouts.
// mutate adjusts the config before construction.
func newTestRouter(t *testing.T, registry *Registry, mutate func(*config.RouterConfig)) *Router {
	t.Helper()
	cfg := config.DefaultRouterConfig()
	cfg.SigningEnabled = false
	cfg.DefaultDispatchTimeout = 2 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(registry, cfg, nil, nil, metrics.New())
}

func requireErrorReply(t *testing.T, resp *Message, code string) {
	t.Helper()
	require.NotNil(t, resp)
	require.True(t, resp.IsError(), "expected error-typed reply, got %q", resp.Type)
	assert.Equal(t, code, resp.Payload["code"])
}

func TestRouterDispatch(t *testing.T) {
	t.Run("round trip preserves correlation", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentScout, echoHandler))
		rt := newTestRouter(t, registry, nil)

		msg := NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest)
		msg.Payload = map[string]any{"text": "hello"}

		resp := rt.Dispatch(context.Background(), msg)
		require.NotNil(t, resp)
		assert.False(t, resp.IsError())
		assert.Equal(t, TypePlanRequest+".response", resp.Type)
		assert.Equal(t, msg.CorrelationID, resp.CorrelationID)
		assert.Equal(t, "hello", resp.Payload["text"])
	})

	t.Run("unknown destination yields not found", func(t *testing.T) {
		rt := newTestRouter(t, NewRegistry(), nil)

		msg := NewMessage(ComponentPipeline, "gear:ghost", TypeExecuteRequest)
		resp := rt.Dispatch(context.Background(), msg)
		requireErrorReply(t, resp, models.CodeNotFound)
		assert.Equal(t, msg.ID, resp.Payload["originalMessageId"])
	})
}

func TestRouterSizeGate(t *testing.T) {
	const (
		maxBytes  = 4096
		warnBytes = 1024
	)
	limits := func(cfg *config.RouterConfig) {
		cfg.MaxMessageBytes = maxBytes
		cfg.WarnMessageBytes = warnBytes
	}

	t.Run("oversized request never reaches the handler", func(t *testing.T) {
		registry := NewRegistry()
		invoked := false
		require.NoError(t, registry.Register(ComponentScout, func(_ context.Context, msg *Message) (*Message, error) {
			invoked = true
			return msg.Reply(TypePlanResponse, nil), nil
		}))
		rt := newTestRouter(t, registry, limits)

		msg := NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest)
		msg.Payload = map[string]any{"text": strings.Repeat("x", maxBytes+1)}

		resp := rt.Dispatch(context.Background(), msg)
		requireErrorReply(t, resp, models.CodeValidation)
		assert.Contains(t, resp.Payload["message"], "exceeds limit")
		assert.False(t, invoked)
	})

	t.Run("oversized reply becomes an error response", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentScout, func(_ context.Context, msg *Message) (*Message, error) {
			return msg.Reply(TypePlanResponse, map[string]any{
				"text": strings.Repeat("x", maxBytes+1),
			}), nil
		}))
		rt := newTestRouter(t, registry, limits)

		msg := NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest)
		resp := rt.Dispatch(context.Background(), msg)
		requireErrorReply(t, resp, models.CodeValidation)
	})

	t.Run("message at the exact limit passes", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentScout, echoHandler))

		msg := NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest)
		msg.Payload = map[string]any{"text": strings.Repeat("x", 2000)}
		raw, err := json.Marshal(msg)
		require.NoError(t, err)

		rt := newTestRouter(t, registry, func(cfg *config.RouterConfig) {
			cfg.MaxMessageBytes = len(raw)
			cfg.WarnMessageBytes = len(raw)
		})

		resp := rt.Dispatch(context.Background(), msg)
		require.NotNil(t, resp)
		assert.False(t, resp.IsError())
	})
}

func TestRouterTimeout(t *testing.T) {
	t.Run("handler past the metadata deadline yields timeout", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentGearRuntime, func(_ context.Context, msg *Message) (*Message, error) {
			// Ignores its context on purpose.
			time.Sleep(500 * time.Millisecond)
			return msg.Reply(TypeExecuteResponse, nil), nil
		}))
		rt := newTestRouter(t, registry, nil)

		msg := NewMessage(ComponentPipeline, ComponentGearRuntime, TypeExecuteRequest)
		msg.SetTimeout(50 * time.Millisecond)

		start := time.Now()
		resp := rt.Dispatch(context.Background(), msg)
		requireErrorReply(t, resp, models.CodeTimeout)
		assert.Equal(t, true, resp.Payload["retriable"])
		assert.Less(t, time.Since(start), 400*time.Millisecond, "dispatch must not wait out the handler")
	})

	t.Run("cancelled dispatch yields dispatch error", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentGearRuntime, func(ctx context.Context, msg *Message) (*Message, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}))
		rt := newTestRouter(t, registry, nil)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		msg := NewMessage(ComponentPipeline, ComponentGearRuntime, TypeExecuteRequest)
		resp := rt.Dispatch(ctx, msg)
		requireErrorReply(t, resp, models.CodeDispatch)
	})
}

func TestRouterPanicIsolation(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(ComponentSentinel, func(_ context.Context, _ *Message) (*Message, error) {
		panic("validator blew up")
	}))
	rt := newTestRouter(t, registry, nil)

	require.NoError(t, registry.Register(ComponentScout, echoHandler))

	msg := NewMessage(ComponentPipeline, ComponentSentinel, TypeValidateRequest)
	resp := rt.Dispatch(context.Background(), msg)
	requireErrorReply(t, resp, models.CodeDispatch)
	assert.Equal(t, "internal handler failure", resp.Payload["message"])

	// The router survives the panic; a later dispatch still works.
	resp = rt.Dispatch(context.Background(), NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest))
	require.NotNil(t, resp)
	assert.False(t, resp.IsError())
}

func TestRouterSigning(t *testing.T) {
	newSignedRouter := func(t *testing.T, registry *Registry) *Router {
		t.Helper()
		keyring := signing.NewKeyring()
		require.NoError(t, keyring.Generate(ComponentPipeline))
		signer := signing.NewService(keyring, time.Minute)

		cfg := config.DefaultRouterConfig()
		cfg.DefaultDispatchTimeout = 2 * time.Second
		return NewRouter(registry, cfg, signer, nil, metrics.New())
	}

	t.Run("unsigned message is rejected", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentScout, echoHandler))
		rt := newSignedRouter(t, registry)

		resp := rt.Dispatch(context.Background(), NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest))
		requireErrorReply(t, resp, models.CodeAuth)
	})

	t.Run("signed dispatch passes verification", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentScout, echoHandler))
		rt := newSignedRouter(t, registry)

		msg := NewMessage(ComponentPipeline, ComponentScout, TypePlanRequest)
		msg.Payload = map[string]any{"text": "plan this"}
		resp := rt.DispatchSigned(context.Background(), msg)
		require.NotNil(t, resp)
		assert.False(t, resp.IsError())
	})

	t.Run("unknown signer cannot sign", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentScout, echoHandler))
		rt := newSignedRouter(t, registry)

		msg := NewMessage(ComponentScheduler, ComponentScout, TypePlanRequest)
		resp := rt.DispatchSigned(context.Background(), msg)
		requireErrorReply(t, resp, models.CodeDispatch)
	})
}

func TestRouterHandlerErrors(t *testing.T) {
	t.Run("handler error becomes typed reply", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentSentinel, func(_ context.Context, _ *Message) (*Message, error) {
			return nil, models.NewAgentError(models.CodePlanRejected, "plan touches a hard floor")
		}))
		rt := newTestRouter(t, registry, nil)

		resp := rt.Dispatch(context.Background(), NewMessage(ComponentPipeline, ComponentSentinel, TypeValidateRequest))
		requireErrorReply(t, resp, models.CodePlanRejected)
		assert.Equal(t, false, resp.Payload["retriable"])
	})

	t.Run("nil response without error becomes dispatch error", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ComponentSentinel, func(_ context.Context, _ *Message) (*Message, error) {
			return nil, nil
		}))
		rt := newTestRouter(t, registry, nil)

		resp := rt.Dispatch(context.Background(), NewMessage(ComponentPipeline, ComponentSentinel, TypeValidateRequest))
		requireErrorReply(t, resp, models.CodeDispatch)
		assert.Contains(t, resp.Payload["message"], "returned no response")
	})
}
