package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/models"
)

func containerTestConfig() config.SandboxConfig {
	return config.SandboxConfig{
		WorkspaceRoot:  "/srv/workspace",
		GearRoot:       "/srv/gears",
		DockerBinary:   "docker",
		ContainerImage: "axisworks/gear-runtime:latest",
	}
}

func joinedArgs(args []string) string {
	return " " + strings.Join(args, " ") + " "
}

func TestContainerArgsLockdown(t *testing.T) {
	inst := &gear.Installed{
		Manifest: &models.GearManifest{
			ID: "files",
			Resources: models.GearResources{
				MaxMemoryMb:   128,
				MaxCpuPercent: 50,
			},
		},
		EntryPoint: "files/main.py",
	}

	args := containerArgs(containerTestConfig(), inst, "axis-gear-test", "/run/axis/secrets-1", "")
	joined := joinedArgs(args)

	assert.Contains(t, joined, " --name axis-gear-test ")
	assert.Contains(t, joined, " --read-only ")
	assert.Contains(t, joined, " --security-opt no-new-privileges ")
	assert.Contains(t, joined, " --cap-drop ALL ")
	assert.Contains(t, joined, " --pids-limit 256 ")
	assert.Contains(t, joined, " --tmpfs /tmp:rw,noexec,nosuid,size=64m ")
	assert.Contains(t, joined, " -v /srv/workspace:/workspace:ro ")
	assert.Contains(t, joined, " -v /srv/gears:/gears:ro ")
	assert.Contains(t, joined, " -v /run/axis/secrets-1:/secrets:ro ")
	assert.Contains(t, joined, " -e AXIS_HMAC_KEY_FILE=/secrets/hmac ")
	assert.Contains(t, joined, " --memory 128m ")
	assert.Contains(t, joined, " --cpus 0.50 ")
	assert.Contains(t, joined, " --network none ")
	assert.NotContains(t, joined, "--add-host")

	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, "axisworks/gear-runtime:latest", args[len(args)-2])
	assert.Equal(t, "/gears/files/main.py", args[len(args)-1])
}

func TestContainerArgsNetworked(t *testing.T) {
	inst := &gear.Installed{
		Manifest: &models.GearManifest{
			ID: "web",
			Permissions: models.GearPermissions{
				Network: models.NetworkPermissions{Domains: []string{"api.example.com"}},
			},
		},
		EntryPoint: "web/fetch.py",
	}

	args := containerArgs(containerTestConfig(), inst, "axis-gear-net", "/run/axis/secrets-2", "127.0.0.1:39111")
	joined := joinedArgs(args)

	assert.Contains(t, joined, " --add-host host.docker.internal:host-gateway ")
	assert.Contains(t, joined, " -e HTTP_PROXY=http://host.docker.internal:39111 ")
	assert.Contains(t, joined, " -e HTTPS_PROXY=http://host.docker.internal:39111 ")
	assert.Contains(t, joined, " -e NO_PROXY= ")
	assert.NotContains(t, joined, " --network none ")
}

func TestContainerArgsNoResourceLimits(t *testing.T) {
	inst := &gear.Installed{
		Manifest:   &models.GearManifest{ID: "tiny"},
		EntryPoint: "tiny/run.sh",
	}

	args := containerArgs(containerTestConfig(), inst, "axis-gear-tiny", "/run/axis/secrets-3", "")
	joined := joinedArgs(args)

	assert.NotContains(t, joined, "--memory")
	assert.NotContains(t, joined, "--cpus")
}

func TestContainerArgsNetworkedWithoutProxyIsOffline(t *testing.T) {
	// A networked manifest with no running proxy still gets no raw network.
	inst := &gear.Installed{
		Manifest: &models.GearManifest{
			ID: "web",
			Permissions: models.GearPermissions{
				Network: models.NetworkPermissions{Domains: []string{"api.example.com"}},
			},
		},
		EntryPoint: "web/fetch.py",
	}

	args := containerArgs(containerTestConfig(), inst, "axis-gear-off", "/run/axis/secrets-4", "")
	assert.Contains(t, joinedArgs(args), " --network none ")
}
