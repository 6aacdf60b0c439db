// Package planner implements the scout component: the LLM-backed adapter
// that answers plan requests with either a fast text reply or a structured
// execution plan. It owns prompt construction, reply parsing, and the
// error taxonomy split between provider failures (retriable) and unusable
// model output (not).
package planner

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/models"
)

// maxFormatRetries bounds the correction round-trips after an unparseable
// reply. Parsing depends on the model's context window, not elapsed time,
// so a couple of targeted corrections either fix it or never will.
const maxFormatRetries = 2

// CatalogSource lists the gears the planner may compose into plans. Only
// enabled gears appear; a disabled gear is invisible to planning.
type CatalogSource interface {
	EnabledManifests(ctx context.Context) ([]*models.GearManifest, error)
}

// Planner is the scout component. Stateless between requests: all state
// arrives in the plan request and the catalog snapshot.
type Planner struct {
	client  llm.Client
	catalog CatalogSource
}

// New builds a planner over the given chat client and gear catalog. A nil
// catalog is allowed and behaves as an empty one (fast path only).
func New(client llm.Client, catalog CatalogSource) *Planner {
	if client == nil {
		panic("planner.New: client must not be nil")
	}
	return &Planner{client: client, catalog: catalog}
}

// Register attaches the planner to the router registry as the scout.
func (p *Planner) Register(reg *bus.Registry) error {
	return reg.Register(bus.ComponentScout, p.Handle)
}

// Handle serves one plan.request. The reply is always plan.response on
// success; failures surface as typed errors the router turns into error
// replies.
func (p *Planner) Handle(ctx context.Context, msg *bus.Message) (*bus.Message, error) {
	var req bus.PlanRequest
	if err := bus.DecodePayload(msg.Payload, &req); err != nil {
		return nil, models.NewAgentErrorf(models.CodeValidation, "malformed plan request: %v", err)
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, models.NewAgentError(models.CodeValidation, "plan request has no user message")
	}

	catalog, err := p.loadCatalog(ctx)
	if err != nil {
		return nil, models.NewAgentErrorf(models.CodeScoutUnreachable, "gear catalog unavailable: %v", err)
	}

	llmReq := buildPlanRequest(req, catalog)
	resp, err := p.client.Chat(ctx, llmReq)
	if err != nil {
		return nil, classifyChatError(err)
	}

	parsed, perr := parsePlanResponse(resp.Text, req.JobID)
	for attempt := 1; perr != nil && attempt <= maxFormatRetries; attempt++ {
		slog.Warn("Planner reply failed to parse, requesting correction",
			"job_id", req.JobID, "attempt", attempt, "error", perr)

		llmReq.Messages = append(llmReq.Messages,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Text},
			llm.Message{Role: llm.RoleUser, Content: formatCorrectionPrompt(perr)},
		)
		resp, err = p.client.Chat(ctx, llmReq)
		if err != nil {
			return nil, classifyChatError(err)
		}
		parsed, perr = parsePlanResponse(resp.Text, req.JobID)
	}
	if perr != nil {
		if errors.Is(perr, errInvalidPlan) {
			return nil, models.NewAgentErrorf(models.CodeInvalidPlan, "planner produced an unusable plan: %v", perr)
		}
		return nil, models.NewAgentErrorf(models.CodeScoutError,
			"planner reply unusable after %d corrections: %v", maxFormatRetries, perr)
	}

	slog.Debug("Plan request resolved",
		"job_id", req.JobID, "path", parsed.Path,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)

	payload, err := bus.EncodePayload(parsed)
	if err != nil {
		return nil, models.NewAgentErrorf(models.CodeDispatch, "failed to encode plan response: %v", err)
	}
	return msg.Reply(bus.TypePlanResponse, payload), nil
}

// loadCatalog renders the enabled-gear catalog section, tolerating a nil
// source.
func (p *Planner) loadCatalog(ctx context.Context) (string, error) {
	if p.catalog == nil {
		return "", nil
	}
	manifests, err := p.catalog.EnabledManifests(ctx)
	if err != nil {
		return "", err
	}
	return FormatGearCatalog(manifests), nil
}

// classifyChatError maps chat failures onto the error taxonomy: provider
// unavailability is retriable, everything else is a planner content error.
// Context errors pass through for the router's own timeout classification.
func classifyChatError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, llm.ErrUnavailable) {
		return models.NewAgentErrorf(models.CodeScoutUnreachable, "llm provider unavailable: %v", err)
	}
	return models.NewAgentErrorf(models.CodeScoutError, "llm request failed: %v", err)
}
