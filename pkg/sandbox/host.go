package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
)

// Host executes gear actions. It owns the whole lifecycle of a call: the
// integrity gate, parameter and permission checks, tier selection, sandbox
// spawn, the framed wire, resource watching, and provenance stamping of the
// result. Every sandbox is spawned for exactly one call and torn down when
// the call ends.
type Host struct {
	cfg      config.SandboxConfig
	registry *gear.Registry
	secrets  SecretSource
	audit    bus.AuditSink
	metrics  *metrics.Metrics

	mu       sync.Mutex
	active   map[string]*activeEntry
	builtins map[string]BuiltinFunc

	dockerOnce  sync.Once
	dockerFound bool

	schemaMu sync.Mutex
	schemas  map[string]*jsonschema.Schema

	closed atomic.Bool
}

type activeEntry struct {
	gearID string
	stop   func()
	kill   func()
	done   <-chan struct{}
}

// NewHost builds the sandbox host. The secret source and audit sink may be
// nil; metrics may be nil in tests.
func NewHost(cfg config.SandboxConfig, registry *gear.Registry, secrets SecretSource, audit bus.AuditSink, m *metrics.Metrics) *Host {
	if registry == nil {
		panic("sandbox.NewHost: registry is required")
	}
	return &Host{
		cfg:      cfg,
		registry: registry,
		secrets:  secrets,
		audit:    audit,
		metrics:  m,
		active:   make(map[string]*activeEntry),
		builtins: make(map[string]BuiltinFunc),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Register puts the host on the bus as the gear runtime component.
func (h *Host) Register(reg *bus.Registry) error {
	return reg.Register(bus.ComponentGearRuntime, h.Handle)
}

// RegisterBuiltin makes a built-in gear eligible for the isolate tier. The
// gear still needs an installed manifest; the builtin supplies its behavior.
func (h *Host) RegisterBuiltin(gearID string, fn BuiltinFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builtins[gearID] = fn
}

// Handle runs one execute request end to end.
func (h *Host) Handle(ctx context.Context, msg *bus.Message) (*bus.Message, error) {
	var req bus.ExecuteRequest
	if err := bus.DecodePayload(msg.Payload, &req); err != nil {
		return nil, models.NewAgentErrorf(models.CodeValidation, "malformed execute request: %v", err)
	}
	if req.Gear == "" || req.Action == "" {
		return nil, models.NewAgentError(models.CodeValidation, "execute request needs gear and action")
	}
	if h.closed.Load() {
		return nil, models.NewAgentError(models.CodeDispatch, "sandbox host is shutting down")
	}

	// The integrity gate runs before every spawn: a gear whose entry point
	// no longer hashes to its installed checksum never executes.
	if err := h.registry.VerifyIntegrity(ctx, req.Gear); err != nil {
		return nil, err
	}
	inst, ok := h.registry.Lookup(req.Gear)
	if !ok {
		return nil, models.NewAgentErrorf(models.CodeNotFound, "gear %q is not installed", req.Gear)
	}
	action, ok := inst.Manifest.Action(req.Action)
	if !ok {
		return nil, models.NewAgentErrorf(models.CodeValidation, "gear %q declares no action %q", req.Gear, req.Action)
	}

	params := req.Parameters
	if params == nil {
		params = map[string]any{}
	}
	if err := h.checkParameters(ctx, inst, action, params); err != nil {
		return nil, err
	}

	tier := h.selectTier(inst)
	slog.Info("Gear execution started",
		"gear", req.Gear,
		"action", req.Action,
		"tier", tier,
		"job_id", msg.JobID)

	start := time.Now()
	result, err := h.run(ctx, tier, inst, action, params)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if h.metrics != nil {
		h.metrics.SandboxExecutions.WithLabelValues(string(tier), outcome).Inc()
	}

	if err != nil {
		slog.Warn("Gear execution failed",
			"gear", req.Gear,
			"action", req.Action,
			"tier", tier,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, err
	}

	slog.Info("Gear execution finished",
		"gear", req.Gear,
		"action", req.Action,
		"tier", tier,
		"duration_ms", time.Since(start).Milliseconds())

	payload, err := bus.EncodePayload(bus.ExecuteResponse{StepID: req.StepID, Result: result})
	if err != nil {
		return nil, models.NewAgentErrorf(models.CodeDispatch, "failed to encode execute response: %v", err)
	}
	return msg.Reply(bus.TypeExecuteResponse, payload), nil
}

// checkParameters validates the call against the action's declared parameter
// schema and pre-checks path- and host-typed parameters against the gear's
// permission allowlists.
func (h *Host) checkParameters(ctx context.Context, inst *gear.Installed, action models.GearAction, params map[string]any) error {
	if action.Parameters != nil {
		schema, err := h.actionSchema(inst.Manifest.ID, action)
		if err != nil {
			return models.NewAgentErrorf(models.CodeValidation,
				"gear %q declares an invalid parameter schema for %q: %v", inst.Manifest.ID, action.Name, err)
		}
		doc := anyDocument(params)
		if err := schema.Validate(doc); err != nil {
			return models.NewAgentErrorf(models.CodeValidation,
				"parameters for %s.%s are invalid: %v", inst.Manifest.ID, action.Name, err)
		}
	}

	perms := inst.Manifest.Permissions
	if perms.NeedsFilesystem() {
		shim := NewFSShim(h.cfg.WorkspaceRoot, perms.Filesystem)
		if err := shim.CheckParams(params); err != nil {
			return models.NewAgentErrorf(models.CodeValidation, "%v", err)
		}
	}
	if perms.NeedsNetwork() {
		shim := NewNetShim(perms.Network.Domains)
		if err := shim.CheckParams(ctx, params); err != nil {
			return models.NewAgentErrorf(models.CodeValidation, "%v", err)
		}
	}
	return nil
}

// actionSchema compiles and caches the parameter schema for one action.
// Manifests are frozen at install, so cached schemas never go stale.
func (h *Host) actionSchema(gearID string, action models.GearAction) (*jsonschema.Schema, error) {
	key := gearID + "/" + action.Name

	h.schemaMu.Lock()
	defer h.schemaMu.Unlock()
	if s, ok := h.schemas[key]; ok {
		return s, nil
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(key+".json", anyDocument(action.Parameters)); err != nil {
		return nil, err
	}
	schema, err := c.Compile(key + ".json")
	if err != nil {
		return nil, err
	}
	h.schemas[key] = schema
	return schema, nil
}

// anyDocument re-encodes a value through JSON so the schema library sees the
// plain document form it expects.
func anyDocument(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return v
	}
	return doc
}

// run spawns the sandbox, drives the wire for a single request, and
// classifies the outcome.
func (h *Host) run(ctx context.Context, tier Tier, inst *gear.Installed, action models.GearAction, params map[string]any) (map[string]any, error) {
	gearID := inst.Manifest.ID
	res := inst.Manifest.Resources

	timeout := h.cfg.DefaultTimeout
	if res.TimeoutMs > 0 {
		timeout = time.Duration(res.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	key, err := newHMACKey()
	if err != nil {
		return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed, "failed to generate frame key: %v", err)
	}

	// The container tier always needs the secrets directory: the frame key
	// rides in it as /secrets/hmac.
	var secretsDir string
	var secretPaths map[string]string
	if len(inst.Manifest.Permissions.Secrets) > 0 || tier == TierContainer {
		var err error
		secretsDir, secretPaths, err = h.materializeSecrets(ctx, inst)
		if err != nil {
			if agentErr := models.AsAgentError(err); agentErr != nil {
				return nil, agentErr
			}
			return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed, "failed to stage secrets: %v", err)
		}
		defer os.RemoveAll(secretsDir)
	}

	var bgt *budget
	var proxyAddr string
	if inst.Manifest.Permissions.NeedsNetwork() && tier != TierIsolate {
		bgt = newBudget(res.MaxNetworkBytesPerCall)
		proxy, err := startEgressProxy(NewNetShim(inst.Manifest.Permissions.Network.Domains), bgt, gearID)
		if err != nil {
			return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed, "failed to start egress proxy: %v", err)
		}
		defer proxy.close()
		proxyAddr = proxy.addr()
	}

	var sb runner
	switch tier {
	case TierIsolate:
		h.mu.Lock()
		fn := h.builtins[gearID]
		h.mu.Unlock()
		sb = spawnIsolate(ctx, fn, key, h.cfg.FrameRatePerMinute, h.cfg.FrameRateBurst)
	case TierContainer:
		sb, err = spawnContainer(ctx, h.cfg, inst, key, secretsDir, proxyAddr)
	default:
		sb, err = spawnProcess(ctx, h.cfg, inst, key, spawnEnv{secretsDir: secretsDir, proxyAddr: proxyAddr})
	}
	if err != nil {
		return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed, "failed to spawn %s sandbox: %v", tier, err)
	}

	handle := uuid.NewString()
	h.track(handle, gearID, sb)
	defer h.untrack(handle)

	var killReason atomic.Value
	if tier == TierProcess && sb.pid() > 0 && (res.MaxMemoryMb > 0 || res.MaxCpuPercent > 0) {
		go watchResources(ctx, sb.pid(), res, func(reason string) {
			killReason.Store(reason)
			sb.kill()
			h.recordKill(gearID, reason)
		})
	}

	corrID := uuid.NewString()
	wireParams := params
	if len(secretPaths) > 0 {
		wireParams = make(map[string]any, len(params)+1)
		for k, v := range params {
			wireParams[k] = v
		}
		secretsField := make(map[string]any, len(secretPaths))
		for name, path := range secretPaths {
			if tier == TierContainer {
				path = "/secrets/" + name
			}
			secretsField[name] = path
		}
		wireParams["_secrets"] = secretsField
	}

	var result map[string]any
	sendErr := sb.conn().send(&requestFrame{CorrelationID: corrID, Action: action.Name, Parameters: wireParams})
	if sendErr != nil {
		err = models.NewAgentErrorf(models.CodeGearExecutionFailed, "failed to send request to gear %q: %v", gearID, sendErr)
	} else {
		result, err = h.awaitResponse(ctx, sb, gearID, corrID)
	}

	// Graceful teardown first; the per-call context kills whatever is left
	// when run returns.
	sb.stop()
	select {
	case <-sb.done():
	case <-time.After(h.cfg.ShutdownGrace):
		sb.kill()
	}

	// Classify the outcome. A tripped budget or a host kill is authoritative
	// over whatever the wire reported.
	if bgt != nil && bgt.exceeded() {
		err = models.NewAgentErrorf(models.CodeBudgetExceeded,
			"gear %q exceeded its network byte budget of %d", gearID, res.MaxNetworkBytesPerCall)
	} else if reason, ok := killReason.Load().(string); ok {
		err = models.NewAgentErrorf(models.CodeGearExecutionFailed,
			"gear %q killed: %s limit exceeded", gearID, reason)
	} else if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = models.NewAgentErrorf(models.CodeGearExecutionFailed,
			"gear %q timed out after %s", gearID, timeout)
	}
	if err != nil {
		return nil, err
	}

	return wrapProvenance(result, gearID, action.Name, corrID), nil
}

// awaitResponse reads frames until the request resolves. Progress frames are
// logged and skipped; anything else that isn't the signed response for our
// correlation id fails the call.
func (h *Host) awaitResponse(ctx context.Context, sb runner, gearID, corrID string) (map[string]any, error) {
	type frameOrErr struct {
		frame *pluginFrame
		err   error
	}
	frames := make(chan frameOrErr)
	go func() {
		for {
			f, err := sb.conn().next()
			select {
			case frames <- frameOrErr{f, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			sb.kill()
			return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed, "gear %q timed out", gearID)
		case fe := <-frames:
			switch {
			case errors.Is(fe.err, errBadSignature):
				sb.kill()
				return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed,
					"gear %q sent an unsigned or mis-signed response frame", gearID)
			case errors.Is(fe.err, errFrameRate):
				sb.kill()
				h.recordKill(gearID, "frame_rate")
				return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed,
					"gear %q exceeded the inbound frame rate", gearID)
			case errors.Is(fe.err, io.EOF):
				return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed,
					"gear %q exited without responding", gearID)
			case fe.err != nil:
				return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed,
					"failed to read response from gear %q: %v", gearID, fe.err)
			case fe.frame.isProgress():
				slog.Info("Gear progress",
					"gear", gearID,
					"percent", fe.frame.Percent,
					"message", fe.frame.Message)
			case fe.frame.CorrelationID != corrID:
				sb.kill()
				return nil, models.NewAgentErrorf(models.CodeGearExecutionFailed,
					"gear %q answered with a mismatched correlation id", gearID)
			case fe.frame.Error != nil:
				code := fe.frame.Error.Code
				if code == "" {
					code = models.CodeGearExecutionFailed
				}
				return nil, models.NewAgentError(code, fe.frame.Error.Message)
			default:
				return fe.frame.Result, nil
			}
		}
	}
}

// wrapProvenance stamps the result with where it came from. A _provenance
// field supplied by the plugin is overwritten: plugins do not get to claim
// an origin.
func wrapProvenance(result map[string]any, gearID, action, corrID string) map[string]any {
	if result == nil {
		result = map[string]any{}
	}
	result["_provenance"] = map[string]any{
		"source":        "gear:" + gearID,
		"action":        action,
		"correlationId": corrID,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
	return result
}

func (h *Host) track(handle, gearID string, sb runner) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active[handle] = &activeEntry{gearID: gearID, stop: sb.stop, kill: sb.kill, done: sb.done()}
}

func (h *Host) untrack(handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.active, handle)
}

// ActiveSandboxes reports how many sandboxes are currently running.
func (h *Host) ActiveSandboxes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active)
}

func (h *Host) recordKill(gearID, reason string) {
	if h.metrics != nil {
		h.metrics.SandboxKills.WithLabelValues(reason).Inc()
	}
	if h.audit != nil {
		h.audit.Record(context.Background(), models.AuditRecord{
			Actor:     "sandbox",
			Action:    "sandbox_killed",
			RiskLevel: models.RiskHigh,
			Target:    gearID,
			Details:   map[string]any{"reason": reason},
		})
	}
}

// Shutdown refuses new executions, asks running sandboxes to stop, and kills
// whatever is still alive after the grace period.
func (h *Host) Shutdown(ctx context.Context) {
	h.closed.Store(true)

	h.mu.Lock()
	entries := make([]*activeEntry, 0, len(h.active))
	for _, e := range h.active {
		entries = append(entries, e)
	}
	h.mu.Unlock()

	for _, e := range entries {
		e.stop()
	}

	grace, cancel := context.WithTimeout(ctx, h.cfg.ShutdownGrace)
	defer cancel()
	killed := 0
	for _, e := range entries {
		select {
		case <-e.done:
		case <-grace.Done():
			e.kill()
			h.recordKill(e.gearID, "shutdown")
			killed++
		}
	}
	slog.Info("Sandbox host stopped", "stopped", len(entries)-killed, "killed", killed)
}
