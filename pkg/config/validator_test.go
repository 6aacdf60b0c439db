package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "verbose" },
			wantErr: true,
			errMsg:  "logging: field 'level'",
		},
		{
			name:    "worker count too low",
			mutate:  func(cfg *Config) { cfg.Queue.WorkerCount = 0 },
			wantErr: true,
			errMsg:  "worker_count must be between 1 and 32",
		},
		{
			name:    "worker count too high",
			mutate:  func(cfg *Config) { cfg.Queue.WorkerCount = 33 },
			wantErr: true,
			errMsg:  "worker_count must be between 1 and 32",
		},
		{
			name:    "jitter not below poll interval",
			mutate:  func(cfg *Config) { cfg.Queue.PollIntervalJitter = cfg.Queue.PollInterval },
			wantErr: true,
			errMsg:  "poll_interval_jitter",
		},
		{
			name:    "zero jitter is valid",
			mutate:  func(cfg *Config) { cfg.Queue.PollIntervalJitter = 0 },
			wantErr: false,
		},
		{
			name:    "negative retries",
			mutate:  func(cfg *Config) { cfg.Queue.MaxRetries = -1 },
			wantErr: true,
			errMsg:  "max_retries",
		},
		{
			name:    "tiny max message size",
			mutate:  func(cfg *Config) { cfg.Router.MaxMessageBytes = 100 },
			wantErr: true,
			errMsg:  "max_message_bytes",
		},
		{
			name: "warn threshold above max",
			mutate: func(cfg *Config) {
				cfg.Router.WarnMessageBytes = cfg.Router.MaxMessageBytes + 1
			},
			wantErr: true,
			errMsg:  "warn_message_bytes",
		},
		{
			name:    "unknown validator mode",
			mutate:  func(cfg *Config) { cfg.Validator.Mode = "vibes" },
			wantErr: true,
			errMsg:  "validator: field 'mode'",
		},
		{
			name:    "relative workspace root",
			mutate:  func(cfg *Config) { cfg.Validator.WorkspaceRoot = "workspace" },
			wantErr: true,
			errMsg:  "workspace_root",
		},
		{
			name: "container sandbox without docker binary",
			mutate: func(cfg *Config) {
				cfg.Sandbox.EnableContainer = true
				cfg.Sandbox.DockerBinary = ""
			},
			wantErr: true,
			errMsg:  "docker_binary",
		},
		{
			name:    "cpu percent out of range",
			mutate:  func(cfg *Config) { cfg.Sandbox.DefaultMaxCPUPercent = 150 },
			wantErr: true,
			errMsg:  "default_max_cpu_percent",
		},
		{
			name:    "bad gateway addr",
			mutate:  func(cfg *Config) { cfg.Gateway.Addr = "meh" },
			wantErr: true,
			errMsg:  "invalid listen address",
		},
		{
			name: "tls cert without key",
			mutate: func(cfg *Config) {
				cfg.Gateway.TLSCertFile = "/etc/axis/cert.pem"
			},
			wantErr: true,
			errMsg:  "must be set together",
		},
		{
			name: "audit retention below job retention",
			mutate: func(cfg *Config) {
				cfg.Retention.JobDays = 30
				cfg.Retention.AuditDays = 7
			},
			wantErr: true,
			errMsg:  "audit_days",
		},
		{
			name:    "unknown llm provider",
			mutate:  func(cfg *Config) { cfg.LLM.Provider = "markov" },
			wantErr: true,
			errMsg:  "llm: field 'provider'",
		},
		{
			name: "scripted provider needs no model",
			mutate: func(cfg *Config) {
				cfg.LLM.Provider = "scripted"
				cfg.LLM.Model = ""
				cfg.LLM.APIKeyEnv = ""
			},
			wantErr: false,
		},
		{
			name:    "temperature out of range",
			mutate:  func(cfg *Config) { cfg.LLM.Temperature = 1.5 },
			wantErr: true,
			errMsg:  "temperature",
		},
		{
			name: "scheduler disabled skips tick check",
			mutate: func(cfg *Config) {
				cfg.Scheduler.Enabled = false
				cfg.Scheduler.TickInterval = 0
			},
			wantErr: false,
		},
		{
			name:    "job timeout zero",
			mutate:  func(cfg *Config) { cfg.Queue.JobTimeout = 0 },
			wantErr: true,
			errMsg:  "job_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(TierDesktop)
			tt.mutate(cfg)

			err := NewValidator(cfg).ValidateAll()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestQueueDerivedIntervals(t *testing.T) {
	q := QueueConfig{JobTimeout: 5 * time.Minute}

	assert.Equal(t, 100*time.Second, q.HeartbeatInterval())
	assert.Equal(t, time.Minute, q.WatchdogInterval())

	q.JobTimeout = 10 * time.Second
	assert.Equal(t, 5*time.Second, q.WatchdogInterval(), "clamped to 5s floor")
}
