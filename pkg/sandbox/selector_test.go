package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/models"
)

func installedWith(id string, perms models.GearPermissions) *gear.Installed {
	return &gear.Installed{
		Manifest: &models.GearManifest{ID: id, Permissions: perms},
		Enabled:  true,
	}
}

func selectorHost(cfg config.SandboxConfig, builtinIDs ...string) *Host {
	h := &Host{cfg: cfg, builtins: make(map[string]BuiltinFunc)}
	for _, id := range builtinIDs {
		h.builtins[id] = func(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
			return nil, nil
		}
	}
	return h
}

func TestSelectTierPrefersIsolateForBuiltins(t *testing.T) {
	h := selectorHost(config.SandboxConfig{
		EnableIsolate:   true,
		EnableContainer: true,
		DockerBinary:    "sh",
	}, "echo")

	assert.Equal(t, TierIsolate, h.selectTier(installedWith("echo", models.GearPermissions{})))
}

func TestSelectTierRefusesIsolateWithCapabilities(t *testing.T) {
	h := selectorHost(config.SandboxConfig{
		EnableIsolate: true,
		DockerBinary:  "axis-test-no-such-binary",
	}, "files")

	inst := installedWith("files", models.GearPermissions{
		Filesystem: models.FilesystemPermissions{Read: []string{"**"}},
	})
	assert.Equal(t, TierProcess, h.selectTier(inst))

	netInst := installedWith("files", models.GearPermissions{
		Network: models.NetworkPermissions{Domains: []string{"api.example.com"}},
	})
	assert.Equal(t, TierProcess, h.selectTier(netInst))
}

func TestSelectTierContainerWhenRuntimePresent(t *testing.T) {
	// Anything on PATH works as the runtime probe target.
	h := selectorHost(config.SandboxConfig{
		EnableContainer: true,
		DockerBinary:    "sh",
	})

	assert.Equal(t, TierContainer, h.selectTier(installedWith("web", models.GearPermissions{})))
}

func TestSelectTierFallsBackToProcess(t *testing.T) {
	h := selectorHost(config.SandboxConfig{
		EnableContainer: true,
		DockerBinary:    "axis-test-no-such-binary",
	})
	assert.Equal(t, TierProcess, h.selectTier(installedWith("web", models.GearPermissions{})))

	disabled := selectorHost(config.SandboxConfig{EnableContainer: false, DockerBinary: "sh"})
	assert.Equal(t, TierProcess, disabled.selectTier(installedWith("web", models.GearPermissions{})))
}

func TestSelectTierIsolateNeedsRegisteredBuiltin(t *testing.T) {
	h := selectorHost(config.SandboxConfig{EnableIsolate: true})
	assert.Equal(t, TierProcess, h.selectTier(installedWith("ghost", models.GearPermissions{})))
}

func TestSelectTierIsolateDisabled(t *testing.T) {
	h := selectorHost(config.SandboxConfig{EnableIsolate: false}, "echo")
	assert.Equal(t, TierProcess, h.selectTier(installedWith("echo", models.GearPermissions{})))
}
