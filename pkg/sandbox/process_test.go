package sandbox

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/models"
)

func TestScrubbedEnvBase(t *testing.T) {
	env := scrubbedEnv("/srv/workspace", spawnEnv{})
	assert.Equal(t, []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=/srv/workspace",
		"TMPDIR=/tmp",
		"LANG=C.UTF-8",
		"AXIS_HMAC_KEY_FD=3",
	}, env)
}

func TestScrubbedEnvWithSecretsAndProxy(t *testing.T) {
	env := scrubbedEnv("/srv/workspace", spawnEnv{
		secretsDir: "/run/axis/secrets-1",
		proxyAddr:  "127.0.0.1:39111",
	})

	assert.Contains(t, env, "AXIS_SECRETS_DIR=/run/axis/secrets-1")
	assert.Contains(t, env, "HTTP_PROXY=http://127.0.0.1:39111")
	assert.Contains(t, env, "HTTPS_PROXY=http://127.0.0.1:39111")
	assert.Contains(t, env, "http_proxy=http://127.0.0.1:39111")
	assert.Contains(t, env, "NO_PROXY=")
	assert.Len(t, env, 12)
}

func writeGearScript(t *testing.T, gearRoot, rel, body string) {
	t.Helper()
	path := filepath.Join(gearRoot, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
}

func processTestConfig(t *testing.T) config.SandboxConfig {
	t.Helper()
	return config.SandboxConfig{
		GearRoot:      t.TempDir(),
		WorkspaceRoot: t.TempDir(),
	}
}

func scriptInstalled(id, entry string) *gear.Installed {
	return &gear.Installed{
		Manifest:   &models.GearManifest{ID: id},
		EntryPoint: entry,
		Enabled:    true,
	}
}

func TestSpawnProcessDeliversKeyOverFd3(t *testing.T) {
	cfg := processTestConfig(t)
	writeGearScript(t, cfg.GearRoot, "echo/run.sh",
		"#!/bin/sh\nread k <&3\nprintf '{\"type\":\"progress\",\"percent\":1,\"message\":\"%s\"}\\n' \"$k\"\n")

	key := testKey(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := spawnProcess(ctx, cfg, scriptInstalled("echo", "echo/run.sh"), key, spawnEnv{})
	require.NoError(t, err)
	defer s.kill()

	frame, err := s.conn().next()
	require.NoError(t, err)
	require.True(t, frame.isProgress())
	assert.Equal(t, base64.StdEncoding.EncodeToString(key), frame.Message)

	_, err = s.conn().next()
	assert.ErrorIs(t, err, io.EOF)

	select {
	case <-s.done():
	case <-time.After(5 * time.Second):
		t.Fatal("sandbox did not exit")
	}
}

func TestSpawnProcessScrubsEnvironment(t *testing.T) {
	t.Setenv("AXIS_TEST_LEAK", "leaky")

	cfg := processTestConfig(t)
	writeGearScript(t, cfg.GearRoot, "env/run.sh",
		"#!/bin/sh\nread k <&3\nprintf '{\"type\":\"progress\",\"message\":\"%s|%s\"}\\n' \"$HOME\" \"$AXIS_TEST_LEAK\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := spawnProcess(ctx, cfg, scriptInstalled("env", "env/run.sh"), testKey(t), spawnEnv{})
	require.NoError(t, err)
	defer s.kill()

	frame, err := s.conn().next()
	require.NoError(t, err)
	assert.Equal(t, cfg.WorkspaceRoot+"|", frame.Message)
}

func TestProcessSandboxStopTerminates(t *testing.T) {
	cfg := processTestConfig(t)
	writeGearScript(t, cfg.GearRoot, "sleepy/run.sh", "#!/bin/sh\nexec sleep 30\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := spawnProcess(ctx, cfg, scriptInstalled("sleepy", "sleepy/run.sh"), testKey(t), spawnEnv{})
	require.NoError(t, err)

	s.stop()
	select {
	case <-s.done():
	case <-time.After(5 * time.Second):
		s.kill()
		t.Fatal("sandbox ignored stop")
	}
}

func TestSpawnProcessMissingEntryPoint(t *testing.T) {
	cfg := processTestConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := spawnProcess(ctx, cfg, scriptInstalled("ghost", "ghost/run.sh"), testKey(t), spawnEnv{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start sandbox")
}
