package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/signing"
)

// Middleware wraps a handler. The router composes built-ins outermost-first:
// error wrap, audit, latency, size gate, signature verification, then any
// user middleware, then the handler itself.
type Middleware func(next Handler) Handler

// AuditSink receives one record per dispatch. Implementations must not
// block dispatch on persistence.
type AuditSink interface {
	Record(ctx context.Context, rec models.AuditRecord)
}

// Router dispatches messages to registered components through the
// middleware chain. Dispatch never returns an error: every failure mode
// becomes an error-typed response message, so callers handle exactly one
// shape.
type Router struct {
	registry *Registry
	cfg      config.RouterConfig
	signer   *signing.Service
	audit    AuditSink
	metrics  *metrics.Metrics
	userMW   []Middleware
}

// NewRouter builds a router. signer may be nil only when signing is
// disabled in cfg.
func NewRouter(registry *Registry, cfg config.RouterConfig, signer *signing.Service, audit AuditSink, m *metrics.Metrics) *Router {
	return &Router{
		registry: registry,
		cfg:      cfg,
		signer:   signer,
		audit:    audit,
		metrics:  m,
	}
}

// Use appends user middleware. Not safe to call once dispatching has begun.
func (rt *Router) Use(mw Middleware) {
	rt.userMW = append(rt.userMW, mw)
}

// SignMessage attaches a signed envelope for msg.From. No-op when signing
// is disabled.
func (rt *Router) SignMessage(msg *Message) error {
	if !rt.cfg.SigningEnabled {
		return nil
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("sign message: %w", err)
	}
	env, err := rt.signer.Sign(msg.From, raw)
	if err != nil {
		return fmt.Errorf("sign message: %w", err)
	}

	if msg.Metadata == nil {
		msg.Metadata = make(map[string]any)
	}
	msg.Metadata[MetaSignedEnvelope] = env
	return nil
}

// DispatchSigned signs msg as its From component and dispatches it. This is
// the normal send path for runtime components.
func (rt *Router) DispatchSigned(ctx context.Context, msg *Message) *Message {
	if err := rt.SignMessage(msg); err != nil {
		slog.Error("Failed to sign outbound message",
			"message_id", msg.ID, "from", msg.From, "type", msg.Type, "error", err)
		return rt.errorResponse(msg, models.NewAgentError(models.CodeDispatch, "failed to sign message"))
	}
	return rt.Dispatch(ctx, msg)
}

// Dispatch routes msg to its destination handler and returns the response.
// The dispatch deadline comes from metadata timeoutMs, falling back to the
// configured default; when it fires, the caller gets an ERR_TIMEOUT error
// response even if the handler is still running.
func (rt *Router) Dispatch(ctx context.Context, msg *Message) *Message {
	handler := rt.buildChain()

	timeout := msg.Timeout()
	if timeout <= 0 {
		timeout = rt.cfg.DefaultDispatchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The chain runs in its own goroutine so a handler that ignores its
	// context cannot stall the dispatcher past the deadline. The buffered
	// channel lets an abandoned handler finish and exit.
	done := make(chan *Message, 1)
	go func() {
		resp, _ := handler(ctx, msg) // error wrap leaves err always nil
		done <- resp
	}()

	select {
	case resp := <-done:
		return resp
	case <-ctx.Done():
		code := models.CodeDispatch
		text := "dispatch cancelled"
		if ctx.Err() == context.DeadlineExceeded {
			code = models.CodeTimeout
			text = fmt.Sprintf("no response from %q within %s", msg.To, timeout)
		}
		slog.Warn("Dispatch abandoned",
			"message_id", msg.ID, "type", msg.Type, "to", msg.To, "reason", ctx.Err())
		return rt.errorResponse(msg, models.NewAgentError(code, text))
	}
}

// buildChain composes the middleware stack around handler resolution.
func (rt *Router) buildChain() Handler {
	h := rt.invoke
	for i := len(rt.userMW) - 1; i >= 0; i-- {
		h = rt.userMW[i](h)
	}
	if rt.cfg.SigningEnabled {
		h = rt.verifySignature(h)
	}
	h = rt.sizeGate(h)
	h = rt.latency(h)
	h = rt.auditDispatch(h)
	h = rt.errorWrap(h)
	return h
}

// invoke is the innermost operation: resolve the destination and run it.
func (rt *Router) invoke(ctx context.Context, msg *Message) (*Message, error) {
	handler, ok := rt.registry.Handler(msg.To)
	if !ok {
		return nil, models.NewAgentErrorf(models.CodeNotFound, "no component registered as %q", msg.To)
	}
	return handler(ctx, msg)
}

// errorResponse builds the error-typed reply for a failed dispatch.
func (rt *Router) errorResponse(req *Message, ae *models.AgentError) *Message {
	return req.Reply(TypeError, map[string]any{
		"code":              ae.Code,
		"message":           ae.Message,
		"retriable":         ae.Retriable,
		"originalMessageId": req.ID,
	})
}
