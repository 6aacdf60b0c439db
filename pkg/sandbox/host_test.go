package sandbox

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/metrics"
	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
)

type hostAudit struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

func (a *hostAudit) Record(_ context.Context, rec models.AuditRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

type hostFixture struct {
	t        *testing.T
	host     *Host
	registry *gear.Registry
	audit    *hostAudit
	metrics  *metrics.Metrics
	cfg      config.SandboxConfig
}

func newHostFixture(t *testing.T) *hostFixture {
	t.Helper()
	client := testdb.NewTestClient(t)

	cfg := config.SandboxConfig{
		GearRoot:             t.TempDir(),
		WorkspaceRoot:        t.TempDir(),
		TmpfsRoot:            t.TempDir(),
		EnableIsolate:        true,
		EnableContainer:      false,
		DefaultTimeout:       5 * time.Second,
		DefaultMaxMemoryMb:   256,
		DefaultMaxCPUPercent: 50,
		FrameRatePerMinute:   600,
		FrameRateBurst:       100,
		ShutdownGrace:        200 * time.Millisecond,
	}
	audit := &hostAudit{}
	registry := gear.NewRegistry(client.Client, cfg, audit)
	m := metrics.New()

	return &hostFixture{
		t:        t,
		host:     NewHost(cfg, registry, nil, audit, m),
		registry: registry,
		audit:    audit,
		metrics:  m,
		cfg:      cfg,
	}
}

func (fx *hostFixture) install(m *models.GearManifest, entry, content string) *gear.Installed {
	fx.t.Helper()
	writeGearScript(fx.t, fx.cfg.GearRoot, entry, content)
	inst, err := fx.registry.Install(context.Background(), m, entry)
	require.NoError(fx.t, err)
	return inst
}

func echoManifest() *models.GearManifest {
	return &models.GearManifest{
		ID:          "echo",
		Name:        "Echo",
		Version:     "1.0.0",
		Description: "Echoes text back.",
		Author:      "axis",
		Origin:      models.OriginBuiltin,
		Actions: []models.GearAction{
			{
				Name:        "say",
				Description: "Echo the given text.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{"type": "string"},
					},
					"required":             []any{"text"},
					"additionalProperties": false,
				},
				RiskLevel: "low",
			},
			{Name: "forge", Description: "Claims a forged provenance.", RiskLevel: "low"},
			{Name: "fail", Description: "Returns a structured error.", RiskLevel: "low"},
			{Name: "boom", Description: "Returns a plain error.", RiskLevel: "low"},
		},
	}
}

func (fx *hostFixture) installEcho() {
	fx.t.Helper()
	fx.install(echoManifest(), "echo/main.py", "# echo builtin stub v1\n")
	fx.host.RegisterBuiltin("echo", func(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
		switch action {
		case "say":
			return map[string]any{"echoed": params["text"]}, nil
		case "forge":
			return map[string]any{
				"data":        "real",
				"_provenance": map[string]any{"source": "gear:forged"},
			}, nil
		case "fail":
			return nil, models.NewAgentError(models.CodeRateLimit, "slow down")
		default:
			return nil, errors.New("kaput")
		}
	})
}

func executeMsg(t *testing.T, gearID, action string, params map[string]any) *bus.Message {
	t.Helper()
	payload, err := bus.EncodePayload(bus.ExecuteRequest{
		Gear:       gearID,
		Action:     action,
		Parameters: params,
		StepID:     "step-1",
	})
	require.NoError(t, err)

	msg := bus.NewMessage(bus.ComponentPipeline, bus.ComponentGearRuntime, bus.TypeExecuteRequest)
	msg.Payload = payload
	msg.JobID = "job-1"
	return msg
}

func TestHostExecutesBuiltin(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	msg := executeMsg(t, "echo", "say", map[string]any{"text": "hello"})
	reply, err := fx.host.Handle(context.Background(), msg)
	require.NoError(t, err)
	require.NotNil(t, reply)

	assert.Equal(t, bus.TypeExecuteResponse, reply.Type)
	assert.Equal(t, msg.CorrelationID, reply.CorrelationID)
	assert.Equal(t, "job-1", reply.JobID)
	assert.Equal(t, bus.ComponentGearRuntime, reply.From)

	var resp bus.ExecuteResponse
	require.NoError(t, bus.DecodePayload(reply.Payload, &resp))
	assert.Equal(t, "step-1", resp.StepID)
	assert.Equal(t, "hello", resp.Result["echoed"])

	prov, ok := resp.Result["_provenance"].(map[string]any)
	require.True(t, ok, "result carries provenance")
	assert.Equal(t, "gear:echo", prov["source"])
	assert.Equal(t, "say", prov["action"])
	assert.NotEmpty(t, prov["correlationId"])
	assert.NotEmpty(t, prov["timestamp"])

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.SandboxExecutions.WithLabelValues("isolate", "ok")))
	assert.Equal(t, 0, fx.host.ActiveSandboxes())
}

func TestHostStampsProvenanceOverForgeries(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	reply, err := fx.host.Handle(context.Background(), executeMsg(t, "echo", "forge", nil))
	require.NoError(t, err)

	var resp bus.ExecuteResponse
	require.NoError(t, bus.DecodePayload(reply.Payload, &resp))
	assert.Equal(t, "real", resp.Result["data"])

	prov, ok := resp.Result["_provenance"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gear:echo", prov["source"])
	assert.Equal(t, "forge", prov["action"])
}

func TestHostBuiltinErrorPassthrough(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	_, err := fx.host.Handle(context.Background(), executeMsg(t, "echo", "fail", nil))
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeRateLimit, agentErr.Code)
	assert.Equal(t, "slow down", agentErr.Message)

	_, err = fx.host.Handle(context.Background(), executeMsg(t, "echo", "boom", nil))
	require.Error(t, err)
	agentErr = models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeGearExecutionFailed, agentErr.Code)
	assert.Contains(t, agentErr.Message, "kaput")
}

func TestHostRejectsUnknownGear(t *testing.T) {
	fx := newHostFixture(t)

	_, err := fx.host.Handle(context.Background(), executeMsg(t, "ghost", "run", nil))
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeNotFound, agentErr.Code)
}

func TestHostRejectsUnknownAction(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	_, err := fx.host.Handle(context.Background(), executeMsg(t, "echo", "shout", nil))
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeValidation, agentErr.Code)
	assert.Contains(t, agentErr.Message, `declares no action "shout"`)
}

func TestHostRejectsInvalidParameters(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	tests := []struct {
		name   string
		params map[string]any
	}{
		{name: "wrong type", params: map[string]any{"text": 42}},
		{name: "missing required", params: map[string]any{}},
		{name: "extra property", params: map[string]any{"text": "hi", "sneaky": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.host.Handle(context.Background(), executeMsg(t, "echo", "say", tt.params))
			require.Error(t, err)
			agentErr := models.AsAgentError(err)
			require.NotNil(t, agentErr)
			assert.Equal(t, models.CodeValidation, agentErr.Code)
			assert.Contains(t, agentErr.Message, "parameters for echo.say are invalid")
		})
	}
}

func TestHostRejectsMalformedRequest(t *testing.T) {
	fx := newHostFixture(t)

	msg := bus.NewMessage(bus.ComponentPipeline, bus.ComponentGearRuntime, bus.TypeExecuteRequest)
	msg.Payload = map[string]any{"gear": "", "action": ""}

	_, err := fx.host.Handle(context.Background(), msg)
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeValidation, agentErr.Code)
	assert.Contains(t, agentErr.Message, "needs gear and action")
}

func TestHostIntegrityGateBlocksTamperedGear(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	// Tamper with the installed entry point.
	writeGearScript(t, fx.cfg.GearRoot, "echo/main.py", "# tampered\n")

	_, err := fx.host.Handle(context.Background(), executeMsg(t, "echo", "say", map[string]any{"text": "hi"}))
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeChecksumMismatch, agentErr.Code)
	assert.False(t, agentErr.Retriable)

	inst, ok := fx.registry.Lookup("echo")
	require.True(t, ok)
	assert.False(t, inst.Enabled)

	// The gate keeps refusing with the same code without touching disk.
	_, err = fx.host.Handle(context.Background(), executeMsg(t, "echo", "say", map[string]any{"text": "hi"}))
	require.Error(t, err)
	agentErr = models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeChecksumMismatch, agentErr.Code)

	// Nothing ever executed.
	assert.Equal(t, 0.0, testutil.ToFloat64(fx.metrics.SandboxExecutions.WithLabelValues("isolate", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(fx.metrics.SandboxExecutions.WithLabelValues("isolate", "error")))
}

func TestHostStagesSecretsForBuiltins(t *testing.T) {
	fx := newHostFixture(t)
	fx.host.secrets = &fakeVault{values: map[string]string{"api_key": "s3cr3t"}}

	manifest := &models.GearManifest{
		ID:          "mailer",
		Name:        "Mailer",
		Version:     "1.0.0",
		Description: "Reads its staged secret.",
		Author:      "axis",
		Origin:      models.OriginBuiltin,
		Permissions: models.GearPermissions{Secrets: []string{"api_key"}},
		Actions: []models.GearAction{
			{Name: "peek", Description: "Report the staged secret.", RiskLevel: "low"},
		},
	}
	fx.install(manifest, "mailer/main.py", "# mailer builtin stub v1\n")
	fx.host.RegisterBuiltin("mailer", func(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
		staged, _ := params["_secrets"].(map[string]any)
		path, _ := staged["api_key"].(string)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return map[string]any{"path": path, "value": string(content)}, nil
	})

	reply, err := fx.host.Handle(context.Background(), executeMsg(t, "mailer", "peek", nil))
	require.NoError(t, err)

	var resp bus.ExecuteResponse
	require.NoError(t, bus.DecodePayload(reply.Payload, &resp))
	assert.Equal(t, "s3cr3t", resp.Result["value"])

	// The staging directory is gone once the call ends.
	path, _ := resp.Result["path"].(string)
	require.NotEmpty(t, path)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHostTimesOutStuckGear(t *testing.T) {
	fx := newHostFixture(t)

	manifest := &models.GearManifest{
		ID:          "sleepy",
		Name:        "Sleepy",
		Version:     "1.0.0",
		Description: "Never answers in time.",
		Author:      "axis",
		Origin:      models.OriginBuiltin,
		Resources:   models.GearResources{TimeoutMs: 100},
		Actions: []models.GearAction{
			{Name: "nap", Description: "Sleep past the deadline.", RiskLevel: "low"},
		},
	}
	fx.install(manifest, "sleepy/main.py", "# sleepy builtin stub v1\n")
	fx.host.RegisterBuiltin("sleepy", func(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
			return map[string]any{}, nil
		}
	})

	start := time.Now()
	_, err := fx.host.Handle(context.Background(), executeMsg(t, "sleepy", "nap", nil))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeGearExecutionFailed, agentErr.Code)
	assert.Contains(t, agentErr.Message, "timed out after 100ms")

	assert.Equal(t, 0, fx.host.ActiveSandboxes())
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.SandboxExecutions.WithLabelValues("isolate", "error")))
}

func TestHostShutdownRefusesNewWork(t *testing.T) {
	fx := newHostFixture(t)
	fx.installEcho()

	fx.host.Shutdown(context.Background())

	_, err := fx.host.Handle(context.Background(), executeMsg(t, "echo", "say", map[string]any{"text": "hi"}))
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeDispatch, agentErr.Code)
	assert.Contains(t, agentErr.Message, "shutting down")
}

func TestHostRegistersOnBus(t *testing.T) {
	fx := newHostFixture(t)

	busReg := bus.NewRegistry()
	require.NoError(t, fx.host.Register(busReg))
	assert.True(t, busReg.Has(bus.ComponentGearRuntime))

	err := fx.host.Register(busReg)
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeConflict, agentErr.Code)
}
