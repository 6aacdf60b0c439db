package sandbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
)

// spawnEnv carries the per-call values a sandbox environment exposes.
type spawnEnv struct {
	secretsDir string
	proxyAddr  string
}

// spawnProcess starts a tier-1 child: the gear entry point executed directly
// with a scrubbed environment. The frame key crosses on fd 3, never in env.
func spawnProcess(ctx context.Context, cfg config.SandboxConfig, inst *gear.Installed, key []byte, env spawnEnv) (*procSandbox, error) {
	entry := filepath.Join(cfg.GearRoot, filepath.FromSlash(inst.EntryPoint))
	cmd := exec.CommandContext(ctx, entry)
	cmd.Dir = cfg.WorkspaceRoot
	cmd.Env = scrubbedEnv(cfg.WorkspaceRoot, env)

	keyR, keyW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create key pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{keyR} // fd 3 in the child

	s, err := startCommand(cmd, key, inst.Manifest.ID, cfg.FrameRatePerMinute, cfg.FrameRateBurst)
	_ = keyR.Close() // the child holds its own copy now
	if err != nil {
		_ = keyW.Close()
		return nil, err
	}

	go func() {
		defer keyW.Close()
		_, _ = keyW.Write(append([]byte(base64.StdEncoding.EncodeToString(key)), '\n'))
	}()
	return s, nil
}

// scrubbedEnv is the entire tier-1 environment: nothing from the host
// leaks through, and secrets never ride in variables — only the directory
// that holds their files.
func scrubbedEnv(workDir string, env spawnEnv) []string {
	out := []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=" + workDir,
		"TMPDIR=/tmp",
		"LANG=C.UTF-8",
		"AXIS_HMAC_KEY_FD=3",
	}
	if env.secretsDir != "" {
		out = append(out, "AXIS_SECRETS_DIR="+env.secretsDir)
	}
	if env.proxyAddr != "" {
		proxy := "http://" + env.proxyAddr
		out = append(out,
			"HTTP_PROXY="+proxy,
			"HTTPS_PROXY="+proxy,
			"http_proxy="+proxy,
			"https_proxy="+proxy,
			"NO_PROXY=",
			"no_proxy=",
		)
	}
	return out
}
