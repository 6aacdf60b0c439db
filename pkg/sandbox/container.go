package sandbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
)

// containerSandbox drives the container runtime CLI for tier 3. Killing the
// attached CLI can orphan the container, so kill goes through the runtime
// first.
type containerSandbox struct {
	*procSandbox
	docker string
	name   string
}

func (s *containerSandbox) kill() {
	_ = exec.Command(s.docker, "kill", s.name).Run()
	s.procSandbox.kill()
}

// spawnContainer starts a tier-3 gear inside the configured runtime image:
// read-only root, workspace and gear code as read-only binds, tmpfs /tmp,
// no privilege escalation, and no network unless the manifest declares
// domains — in which case traffic routes through the host's egress proxy.
// The frame key is staged at /secrets/hmac.
func spawnContainer(ctx context.Context, cfg config.SandboxConfig, inst *gear.Installed, key []byte, secretsDir, proxyAddr string) (*containerSandbox, error) {
	encoded := []byte(base64.StdEncoding.EncodeToString(key))
	if err := os.WriteFile(filepath.Join(secretsDir, "hmac"), encoded, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage frame key: %w", err)
	}

	name := "axis-gear-" + uuid.NewString()
	args := containerArgs(cfg, inst, name, secretsDir, proxyAddr)
	cmd := exec.CommandContext(ctx, cfg.DockerBinary, args...)

	s, err := startCommand(cmd, key, inst.Manifest.ID, cfg.FrameRatePerMinute, cfg.FrameRateBurst)
	if err != nil {
		return nil, err
	}
	return &containerSandbox{procSandbox: s, docker: cfg.DockerBinary, name: name}, nil
}

func containerArgs(cfg config.SandboxConfig, inst *gear.Installed, name, secretsDir, proxyAddr string) []string {
	res := inst.Manifest.Resources
	args := []string{
		"run", "--rm", "-i",
		"--name", name,
		"--read-only",
		"--security-opt", "no-new-privileges",
		"--cap-drop", "ALL",
		"--pids-limit", "256",
		"--tmpfs", "/tmp:rw,noexec,nosuid,size=64m",
		"-v", cfg.WorkspaceRoot + ":/workspace:ro",
		"-v", cfg.GearRoot + ":/gears:ro",
		"-v", secretsDir + ":/secrets:ro",
		"-w", "/workspace",
		"-e", "AXIS_HMAC_KEY_FILE=/secrets/hmac",
		"-e", "AXIS_SECRETS_DIR=/secrets",
	}
	if res.MaxMemoryMb > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dm", res.MaxMemoryMb))
	}
	if res.MaxCpuPercent > 0 {
		args = append(args, "--cpus", fmt.Sprintf("%.2f", float64(res.MaxCpuPercent)/100))
	}

	if inst.Manifest.Permissions.NeedsNetwork() && proxyAddr != "" {
		proxy := proxyAddr
		if _, port, err := net.SplitHostPort(proxyAddr); err == nil {
			proxy = "host.docker.internal:" + port
		}
		args = append(args,
			"--add-host", "host.docker.internal:host-gateway",
			"-e", "HTTP_PROXY=http://"+proxy,
			"-e", "HTTPS_PROXY=http://"+proxy,
			"-e", "NO_PROXY=",
		)
	} else {
		args = append(args, "--network", "none")
	}

	return append(args, cfg.ContainerImage, "/gears/"+path.Clean(inst.EntryPoint))
}
