package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "axis.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInitialize(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")

		cfg, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)

		assert.Equal(t, TierDesktop, cfg.Tier)
		assert.Equal(t, 2, cfg.Queue.WorkerCount)
		assert.True(t, cfg.Router.SigningEnabled)
		assert.Equal(t, "rules", cfg.Validator.Mode)
	})

	t.Run("file values override tier defaults", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		path := writeConfigFile(t, `
[queue]
worker_count = 3
job_timeout = "10m"

[router]
signing_enabled = false

[gateway]
addr = "127.0.0.1:9000"
auth_tokens = ["tok-a", "tok-b"]
`)

		cfg, err := Initialize(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, 3, cfg.Queue.WorkerCount)
		assert.Equal(t, 10*time.Minute, cfg.Queue.JobTimeout)
		assert.False(t, cfg.Router.SigningEnabled)
		assert.Equal(t, "127.0.0.1:9000", cfg.Gateway.Addr)
		assert.Equal(t, []string{"tok-a", "tok-b"}, cfg.Gateway.AuthTokens)

		// Untouched sections keep their defaults.
		assert.Equal(t, 3, cfg.Queue.MaxRetries)
		assert.Equal(t, 1<<20, cfg.Router.MaxMessageBytes)
	})

	t.Run("tier in file selects defaults", func(t *testing.T) {
		path := writeConfigFile(t, `tier = "pi"`)

		cfg, err := Initialize(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, TierPi, cfg.Tier)
		assert.Equal(t, 1, cfg.Queue.WorkerCount)
		assert.False(t, cfg.Sandbox.EnableContainer)
	})

	t.Run("AXIS_TIER wins over file tier", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "vps")
		path := writeConfigFile(t, `tier = "pi"`)

		cfg, err := Initialize(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, TierVPS, cfg.Tier)
		assert.Equal(t, 4, cfg.Queue.WorkerCount)
	})

	t.Run("environment variables override file values", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		t.Setenv("AXIS_QUEUE_WORKER_COUNT", "7")
		t.Setenv("AXIS_VALIDATOR_MODE", "llm")
		path := writeConfigFile(t, `
[queue]
worker_count = 3
`)

		cfg, err := Initialize(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, 7, cfg.Queue.WorkerCount)
		assert.Equal(t, "llm", cfg.Validator.Mode)
	})

	t.Run("env template expansion in file content", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		t.Setenv("AXIS_TEST_GEAR_ROOT", "/opt/axis/gears")
		path := writeConfigFile(t, `
[sandbox]
gear_root = "{{.AXIS_TEST_GEAR_ROOT}}"
`)

		cfg, err := Initialize(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "/opt/axis/gears", cfg.Sandbox.GearRoot)
	})

	t.Run("unknown tier rejected", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "mainframe")

		_, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("unknown toml key rejected", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		path := writeConfigFile(t, `
[queue]
wroker_count = 3
`)

		_, err := Initialize(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "axis.toml")
	})

	t.Run("invalid duration rejected with field name", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		path := writeConfigFile(t, `
[queue]
job_timeout = "five minutes"
`)

		_, err := Initialize(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue.job_timeout")
	})

	t.Run("unknown AXIS_ variable rejected", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		t.Setenv("AXIS_QUEUE_WROKER_COUNT", "3")

		_, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownKey)
	})

	t.Run("validation failure surfaces", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		path := writeConfigFile(t, `
[queue]
worker_count = 99
`)

		_, err := Initialize(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker_count")
	})
}

func TestExpandEnv(t *testing.T) {
	t.Run("expands set variables", func(t *testing.T) {
		t.Setenv("AXIS_TEST_VALUE", "hello")
		out := expandEnv([]byte(`key = "{{.AXIS_TEST_VALUE}}"`))
		assert.Equal(t, `key = "hello"`, string(out))
	})

	t.Run("missing variables expand to empty", func(t *testing.T) {
		out := expandEnv([]byte(`key = "{{.AXIS_TEST_DEFINITELY_UNSET}}"`))
		assert.Equal(t, `key = ""`, string(out))
	})

	t.Run("dollar signs pass through untouched", func(t *testing.T) {
		in := []byte(`pattern = "^secret.*$"`)
		assert.Equal(t, in, expandEnv(in))
	})

	t.Run("malformed template passes through raw", func(t *testing.T) {
		in := []byte(`key = "{{.broken"`)
		assert.Equal(t, in, expandEnv(in))
	})

	t.Run("end to end through a config file", func(t *testing.T) {
		t.Setenv("AXIS_TIER", "desktop")
		t.Setenv("AXIS_TEST_GEAR_ROOT", "/srv/axis/gears")
		path := writeConfigFile(t, `
[sandbox]
gear_root = "{{.AXIS_TEST_GEAR_ROOT}}"
`)

		cfg, err := Initialize(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/axis/gears", cfg.Sandbox.GearRoot)
	})
}
