// Package validator implements the sentinel component: independent safety
// verdicts on execution plans. It sits behind an information barrier — the
// only input it accepts is the plan itself (plus the job source), and the
// package deliberately has no reference to conversation or planner code, so
// nothing a user typed can argue a plan past review.
package validator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/llm"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
)

// Evaluation modes as recorded in verdict metadata and metrics.
const (
	ModeRules = "rules"
	ModeLLM   = "llm"

	modeFallback = "fallback"
	modeCache    = "cache"
)

// forbiddenKeys must never appear in a validate.request payload. Their
// presence means something upstream tried to smuggle context past the
// barrier; the keys are logged, audited, and ignored.
var forbiddenKeys = []string{
	"userMessage",
	"conversationHistory",
	"journalData",
	"journalMemories",
	"relevantMemories",
	"gearCatalog",
	"gearManifests",
	"originalMessage",
}

// StoredDecision is a durable approval-cache row in the shape the validator
// consumes.
type StoredDecision struct {
	Verdict     models.Verdict
	OverallRisk models.RiskLevel
	Reasoning   string
}

// DecisionStore is the write-through layer under the in-memory approval
// cache, surviving restarts. Fetch returns (nil, nil) on a miss.
type DecisionStore interface {
	Put(ctx context.Context, planHash string, res models.ValidationResult, source models.JobSource, ttl time.Duration) error
	Fetch(ctx context.Context, planHash string) (*StoredDecision, error)
}

// Validator is the sentinel component.
type Validator struct {
	engine   *RuleEngine
	client   llm.Client
	useLLM   bool
	store    DecisionStore
	memory   *cache.Cache
	cacheTTL time.Duration
	audit    bus.AuditSink
	metrics  *metrics.Metrics
}

// New builds the validator. client may be nil (rules mode); perms may be nil
// (no manifest allowlist checks); store and audit may be nil; m may be nil
// in tests.
func New(cfg config.ValidatorConfig, client llm.Client, perms PermissionSource, store DecisionStore, audit bus.AuditSink, m *metrics.Metrics) (*Validator, error) {
	engine, err := NewRuleEngine(cfg.WorkspaceRoot, perms)
	if err != nil {
		return nil, err
	}

	useLLM := cfg.Mode == ModeLLM
	if useLLM && client == nil {
		slog.Warn("Validator configured for llm mode without a client, using rules")
		useLLM = false
	}

	ttl := cfg.ApprovalCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Validator{
		engine:   engine,
		client:   client,
		useLLM:   useLLM,
		store:    store,
		memory:   cache.New(ttl, 2*ttl),
		cacheTTL: ttl,
		audit:    audit,
		metrics:  m,
	}, nil
}

// Register attaches the validator to the router registry as the sentinel.
func (v *Validator) Register(reg *bus.Registry) error {
	return reg.Register(bus.ComponentSentinel, v.Handle)
}

// Handle serves one validate.request: barrier enforcement, approval-cache
// lookup for scheduled plans, then rule or LLM evaluation.
func (v *Validator) Handle(ctx context.Context, msg *bus.Message) (*bus.Message, error) {
	payload := v.enforceBarrier(ctx, msg)

	var req bus.ValidateRequest
	if err := bus.DecodePayload(payload, &req); err != nil {
		return nil, models.NewAgentErrorf(models.CodeValidation, "malformed validate request: %v", err)
	}
	if req.Plan == nil || len(req.Plan.Steps) == 0 {
		return nil, models.NewAgentError(models.CodeValidation, "validate request has no plan")
	}

	source := models.JobSource(req.Source)
	stripped := req.Plan.Stripped()

	// Approval cache: scheduled plans only. User-originated plans always get
	// a fresh verdict.
	var planHash string
	if source == models.SourceSchedule {
		var err error
		planHash, err = PlanHash(req.Plan)
		if err != nil {
			slog.Warn("Failed to hash plan for approval cache", "plan_id", req.Plan.ID, "error", err)
		} else if res := v.cachedVerdict(ctx, planHash, req.Plan.ID); res != nil {
			return v.reply(ctx, msg, res, modeCache)
		}
	}

	res, mode := v.evaluate(ctx, stripped)

	if planHash != "" && res.Verdict == models.VerdictApproved {
		v.cacheVerdict(ctx, planHash, res, source)
	}

	return v.reply(ctx, msg, res, mode)
}

// evaluate runs the configured mode. Rules always run: in LLM mode they are
// the floor the model cannot lower, and the fallback when it fails.
func (v *Validator) evaluate(ctx context.Context, stripped *models.ExecutionPlan) (*models.ValidationResult, string) {
	rules := v.engine.Evaluate(ctx, stripped)
	if !v.useLLM {
		return rules, ModeRules
	}
	if rules.Verdict == models.VerdictRejected {
		// No model opinion needed on a plan the rules already killed.
		return rules, ModeRules
	}

	assessed, err := llmEvaluate(ctx, v.client, stripped)
	if err != nil {
		slog.Warn("LLM validation failed, falling back to rules",
			"plan_id", stripped.ID, "error", err)
		rules.Metadata["fallback"] = "rules"
		rules.Metadata["fallbackReason"] = err.Error()
		return rules, modeFallback
	}

	return combineVerdicts(rules, assessed), ModeLLM
}

// combineVerdicts merges rule and model assessments, keeping whichever is
// stricter at both plan and step level. Hard floors survive a lenient model;
// model reasoning survives because it is richer than rule hit lists.
func combineVerdicts(rules, assessed *models.ValidationResult) *models.ValidationResult {
	out := &models.ValidationResult{
		ID:          assessed.ID,
		PlanID:      assessed.PlanID,
		Verdict:     moreSevere(assessed.Verdict, rules.Verdict),
		OverallRisk: models.MaxRisk(assessed.OverallRisk, rules.OverallRisk),
		Reasoning:   assessed.Reasoning,
		Metadata:    map[string]any{"mode": ModeLLM},
	}
	if out.Verdict != assessed.Verdict {
		out.Reasoning = assessed.Reasoning + " [escalated by rule policy: " + rules.Reasoning + "]"
	}

	modelByID := make(map[string]models.StepResult, len(assessed.StepResults))
	for _, sr := range assessed.StepResults {
		modelByID[sr.StepID] = sr
	}
	merged := make([]models.StepResult, 0, len(rules.StepResults))
	for _, rr := range rules.StepResults {
		if mr, ok := modelByID[rr.StepID]; ok {
			rr.Verdict = moreSevere(rr.Verdict, mr.Verdict)
			rr.Risk = models.MaxRisk(rr.Risk, mr.Risk)
			if mr.Reasoning != "" {
				rr.Reasoning = mr.Reasoning
			}
			if rr.Category == "" {
				rr.Category = mr.Category
			}
		}
		merged = append(merged, rr)
	}
	out.StepResults = merged

	out.SuggestedRevisions = append(out.SuggestedRevisions, assessed.SuggestedRevisions...)
	out.SuggestedRevisions = append(out.SuggestedRevisions, rules.SuggestedRevisions...)
	return out
}

// enforceBarrier strips forbidden keys from the payload before decoding.
// Violations are logged and audited; the request proceeds with the
// offending keys ignored.
func (v *Validator) enforceBarrier(ctx context.Context, msg *bus.Message) map[string]any {
	if msg.Payload == nil {
		return nil
	}

	var violations []string
	for _, k := range forbiddenKeys {
		if _, ok := msg.Payload[k]; ok {
			violations = append(violations, k)
		}
	}
	if len(violations) == 0 {
		return msg.Payload
	}

	slog.Warn("Information barrier violation in validate request",
		"from", msg.From, "job_id", msg.JobID, "keys", violations)
	if v.audit != nil {
		v.audit.Record(ctx, models.AuditRecord{
			Actor:     bus.ComponentSentinel,
			Action:    "barrier_violation",
			RiskLevel: models.RiskHigh,
			Target:    msg.From,
			JobID:     msg.JobID,
			Details:   map[string]any{"keys": violations, "messageId": msg.ID},
		})
	}

	sanitized := make(map[string]any, len(msg.Payload))
	for k, val := range msg.Payload {
		sanitized[k] = val
	}
	for _, k := range violations {
		delete(sanitized, k)
	}
	return sanitized
}

// cachedVerdict checks the memory cache, then the durable store. Stored
// decisions only ever hold approvals, so a hit short-circuits evaluation.
func (v *Validator) cachedVerdict(ctx context.Context, planHash, planID string) *models.ValidationResult {
	if hit, ok := v.memory.Get(planHash); ok {
		if d, ok := hit.(StoredDecision); ok {
			return resultFromDecision(d, planID, "memory")
		}
	}

	if v.store == nil {
		return nil
	}
	d, err := v.store.Fetch(ctx, planHash)
	if err != nil {
		slog.Warn("Approval store lookup failed", "plan_hash", planHash, "error", err)
		return nil
	}
	if d == nil {
		return nil
	}

	v.memory.Set(planHash, *d, v.cacheTTL)
	return resultFromDecision(*d, planID, "store")
}

func resultFromDecision(d StoredDecision, planID, layer string) *models.ValidationResult {
	return &models.ValidationResult{
		ID:          uuid.NewString(),
		PlanID:      planID,
		Verdict:     d.Verdict,
		OverallRisk: d.OverallRisk,
		Reasoning:   d.Reasoning,
		Metadata:    map[string]any{"mode": modeCache, "cacheLayer": layer},
	}
}

// cacheVerdict writes an approved verdict through both cache layers.
func (v *Validator) cacheVerdict(ctx context.Context, planHash string, res *models.ValidationResult, source models.JobSource) {
	v.memory.Set(planHash, StoredDecision{
		Verdict:     res.Verdict,
		OverallRisk: res.OverallRisk,
		Reasoning:   res.Reasoning,
	}, v.cacheTTL)

	if v.store == nil {
		return
	}
	if err := v.store.Put(ctx, planHash, *res, source, v.cacheTTL); err != nil {
		slog.Warn("Failed to persist approval decision", "plan_hash", planHash, "error", err)
	}
}

// reply records the verdict in metrics and the audit log, then encodes the
// validate.response.
func (v *Validator) reply(ctx context.Context, msg *bus.Message, res *models.ValidationResult, mode string) (*bus.Message, error) {
	if v.metrics != nil {
		v.metrics.ValidatorVerdicts.WithLabelValues(string(res.Verdict), mode).Inc()
	}
	if v.audit != nil {
		v.audit.Record(ctx, models.AuditRecord{
			Actor:     bus.ComponentSentinel,
			Action:    "verdict:" + string(res.Verdict),
			RiskLevel: res.OverallRisk,
			Target:    res.PlanID,
			JobID:     msg.JobID,
			Details:   map[string]any{"mode": mode, "reasoning": res.Reasoning},
		})
	}
	slog.Info("Plan validated",
		"plan_id", res.PlanID, "job_id", msg.JobID,
		"verdict", res.Verdict, "risk", res.OverallRisk, "mode", mode)

	payload, err := bus.EncodePayload(bus.ValidateResponse{Validation: res})
	if err != nil {
		return nil, models.NewAgentErrorf(models.CodeDispatch, "failed to encode validation: %v", err)
	}
	return msg.Reply(bus.TypeValidateResponse, payload), nil
}
