package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverride(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name:  "integer field",
			key:   "queue.worker_count",
			value: "5",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5, cfg.Queue.WorkerCount)
			},
		},
		{
			name:  "duration field",
			key:   "router.replay_window",
			value: "90s",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90*time.Second, cfg.Router.ReplayWindow)
			},
		},
		{
			name:  "boolean field",
			key:   "sandbox.enable_container",
			value: "false",
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Sandbox.EnableContainer)
			},
		},
		{
			name:  "string slice field",
			key:   "gateway.auth_tokens",
			value: "alpha, beta,gamma",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Gateway.AuthTokens)
			},
		},
		{
			name:  "float field",
			key:   "llm.temperature",
			value: "0.7",
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
			},
		},
		{
			name:    "unknown key",
			key:     "queue.wroker_count",
			value:   "5",
			wantErr: "unknown configuration key",
		},
		{
			name:    "tier is not overridable",
			key:     "tier",
			value:   "vps",
			wantErr: "unknown configuration key",
		},
		{
			name:    "bad integer",
			key:     "queue.worker_count",
			value:   "many",
			wantErr: "not an integer",
		},
		{
			name:    "bad duration",
			key:     "queue.job_timeout",
			value:   "soon",
			wantErr: "not a duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(TierDesktop)
			err := ApplyOverride(cfg, tt.key, tt.value)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Run("applies all valid keys and joins failures", func(t *testing.T) {
		cfg := DefaultConfig(TierDesktop)

		err := ApplyOverrides(cfg, map[string]string{
			"queue.worker_count": "6",
			"llm.model":          "claude-haiku-4",
			"queue.job_timeout":  "bogus",
			"no.such_key":        "x",
		})

		// Bad rows are reported but do not block the good ones.
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownKey)
		assert.Contains(t, err.Error(), "queue.job_timeout")
		assert.Equal(t, 6, cfg.Queue.WorkerCount)
		assert.Equal(t, "claude-haiku-4", cfg.LLM.Model)
	})

	t.Run("empty map is a no-op", func(t *testing.T) {
		cfg := DefaultConfig(TierDesktop)
		require.NoError(t, ApplyOverrides(cfg, nil))
		assert.Equal(t, 2, cfg.Queue.WorkerCount)
	})
}

func TestOverridableKeys(t *testing.T) {
	keys := OverridableKeys()

	require.NotEmpty(t, keys)
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "queue.worker_count")
	assert.Contains(t, keys, "gateway.auth_tokens")
	assert.NotContains(t, keys, "tier")
}

func TestEnvKeyToPath(t *testing.T) {
	assert.Equal(t, "queue.worker_count", envKeyToPath("AXIS_QUEUE_WORKER_COUNT"))
	assert.Equal(t, "llm.api_key_env", envKeyToPath("AXIS_LLM_API_KEY_ENV"))
	assert.Equal(t, "gateway.ws_token_ttl", envKeyToPath("AXIS_GATEWAY_WS_TOKEN_TTL"))
}
