package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/signing"
)

// slowDispatchThreshold is where the latency middleware starts warning.
const slowDispatchThreshold = time.Second

// errorWrap is the outermost middleware: it converts handler errors and
// panics into error-typed responses so Dispatch always yields a message.
func (rt *Router) errorWrap(next Handler) Handler {
	return func(ctx context.Context, msg *Message) (resp *Message, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Handler panicked",
					"message_id", msg.ID, "type", msg.Type, "to", msg.To, "panic", r)
				rt.metrics.Dispatches.WithLabelValues(msg.Type, "error").Inc()
				resp = rt.errorResponse(msg, models.NewAgentError(models.CodeDispatch, "internal handler failure"))
				err = nil
			}
		}()

		resp, err = next(ctx, msg)
		if err != nil {
			ae := classifyError(err)
			slog.Warn("Dispatch failed",
				"message_id", msg.ID, "type", msg.Type, "to", msg.To,
				"code", ae.Code, "error", err)
			rt.metrics.Dispatches.WithLabelValues(msg.Type, "error").Inc()
			return rt.errorResponse(msg, ae), nil
		}
		if resp == nil {
			rt.metrics.Dispatches.WithLabelValues(msg.Type, "error").Inc()
			return rt.errorResponse(msg, models.NewAgentErrorf(models.CodeDispatch, "component %q returned no response", msg.To)), nil
		}

		result := "ok"
		if resp.IsError() {
			result = "error"
		}
		rt.metrics.Dispatches.WithLabelValues(msg.Type, result).Inc()
		return resp, nil
	}
}

// classifyError maps a handler error to its structured form.
func classifyError(err error) *models.AgentError {
	if ae := models.AsAgentError(err); ae != nil {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewAgentError(models.CodeTimeout, "handler deadline exceeded")
	}
	if errors.Is(err, context.Canceled) {
		return models.NewAgentError(models.CodeDispatch, "dispatch cancelled")
	}
	return models.NewAgentError(models.CodeDispatch, err.Error())
}

// auditDispatch records every dispatch attempt as a low-risk audit entry.
func (rt *Router) auditDispatch(next Handler) Handler {
	return func(ctx context.Context, msg *Message) (*Message, error) {
		if rt.audit != nil {
			rt.audit.Record(ctx, models.AuditRecord{
				Actor:     msg.From,
				Action:    "dispatch:" + msg.Type,
				RiskLevel: models.RiskLow,
				Target:    msg.To,
				JobID:     msg.JobID,
				Details: map[string]any{
					"messageId":     msg.ID,
					"correlationId": msg.CorrelationID,
				},
			})
		}
		return next(ctx, msg)
	}
}

// latency measures handler duration and warns on slow dispatches.
func (rt *Router) latency(next Handler) Handler {
	return func(ctx context.Context, msg *Message) (*Message, error) {
		start := time.Now()
		resp, err := next(ctx, msg)
		elapsed := time.Since(start)

		rt.metrics.DispatchSeconds.WithLabelValues(msg.Type).Observe(elapsed.Seconds())
		if elapsed > slowDispatchThreshold {
			slog.Warn("Slow dispatch",
				"message_id", msg.ID, "type", msg.Type, "to", msg.To,
				"duration_ms", elapsed.Milliseconds())
		}
		return resp, err
	}
}

// sizeGate enforces the message size limits in both directions: oversized
// requests are rejected before they reach a handler, oversized replies are
// replaced with an error response before they reach the sender. Merely heavy
// messages get a warning.
func (rt *Router) sizeGate(next Handler) Handler {
	return func(ctx context.Context, msg *Message) (*Message, error) {
		if err := rt.checkSize(msg); err != nil {
			return nil, err
		}

		resp, err := next(ctx, msg)
		if err != nil || resp == nil {
			return resp, err
		}
		if err := rt.checkSize(resp); err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// checkSize serializes one message and applies the reject/warn thresholds.
func (rt *Router) checkSize(msg *Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return models.NewAgentErrorf(models.CodeValidation, "message not serializable: %v", err)
	}

	if len(raw) > rt.cfg.MaxMessageBytes {
		rt.metrics.BusRejected.WithLabelValues("size").Inc()
		return models.NewAgentErrorf(models.CodeValidation,
			"message size %d exceeds limit %d", len(raw), rt.cfg.MaxMessageBytes)
	}
	if len(raw) > rt.cfg.WarnMessageBytes {
		slog.Warn("Large message on the bus",
			"message_id", msg.ID, "type", msg.Type, "size_bytes", len(raw))
	}
	return nil
}

// verifySignature enforces the signed-envelope contract. Verification detail
// goes to the log; senders only ever see a generic ERR_AUTH.
func (rt *Router) verifySignature(next Handler) Handler {
	return func(ctx context.Context, msg *Message) (*Message, error) {
		env, ok := envelopeFromMetadata(msg)
		if !ok {
			rt.metrics.BusRejected.WithLabelValues("unsigned").Inc()
			return nil, models.NewAgentError(models.CodeAuth, "message is not signed")
		}
		if env.Signer != msg.From {
			rt.metrics.BusRejected.WithLabelValues("signer_mismatch").Inc()
			slog.Warn("Envelope signer does not match message sender",
				"message_id", msg.ID, "from", msg.From, "signer", env.Signer)
			return nil, models.NewAgentError(models.CodeAuth, "signature verification failed")
		}

		raw, err := json.Marshal(msg)
		if err != nil {
			return nil, models.NewAgentErrorf(models.CodeValidation, "message not serializable: %v", err)
		}
		if err := rt.signer.Verify(env, raw); err != nil {
			rt.metrics.BusRejected.WithLabelValues("signature").Inc()
			slog.Warn("Signature verification failed",
				"message_id", msg.ID, "from", msg.From, "reason", err)
			return nil, models.NewAgentError(models.CodeAuth, "signature verification failed")
		}
		return next(ctx, msg)
	}
}

// envelopeFromMetadata extracts the signed envelope, tolerating both the
// in-process typed form and a decoded JSON map.
func envelopeFromMetadata(msg *Message) (*signing.Envelope, bool) {
	if msg.Metadata == nil {
		return nil, false
	}
	switch e := msg.Metadata[MetaSignedEnvelope].(type) {
	case *signing.Envelope:
		return e, true
	case signing.Envelope:
		return &e, true
	case map[string]any:
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, false
		}
		var env signing.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, false
		}
		return &env, true
	default:
		return nil, false
	}
}
