package config

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig is the axis.toml shape. Sections are pointers so an absent
// section leaves the tier defaults untouched, durations are strings parsed
// with time.ParseDuration, and booleans (plus integers where zero is a
// meaningful setting) are pointers so "present" and "zero" stay distinct.
type fileConfig struct {
	Tier      string               `toml:"tier"`
	Logging   *fileLoggingConfig   `toml:"logging"`
	Queue     *fileQueueConfig     `toml:"queue"`
	Router    *fileRouterConfig    `toml:"router"`
	Pipeline  *filePipelineConfig  `toml:"pipeline"`
	Validator *fileValidatorConfig `toml:"validator"`
	Sandbox   *fileSandboxConfig   `toml:"sandbox"`
	Gateway   *fileGatewayConfig   `toml:"gateway"`
	Scheduler *fileSchedulerConfig `toml:"scheduler"`
	Retention *fileRetentionConfig `toml:"retention"`
	Integrity *fileIntegrityConfig `toml:"integrity"`
	LLM       *fileLLMConfig       `toml:"llm"`
	Secrets   *fileSecretsConfig   `toml:"secrets"`
}

type fileLoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type fileQueueConfig struct {
	WorkerCount             int    `toml:"worker_count"`
	JobTimeout              string `toml:"job_timeout"`
	MaxRetries              *int   `toml:"max_retries"`
	PollInterval            string `toml:"poll_interval"`
	PollIntervalJitter      string `toml:"poll_interval_jitter"`
	GracefulShutdownTimeout string `toml:"graceful_shutdown_timeout"`
}

type fileRouterConfig struct {
	SigningEnabled         *bool  `toml:"signing_enabled"`
	ReplayWindow           string `toml:"replay_window"`
	MaxMessageBytes        int    `toml:"max_message_bytes"`
	WarnMessageBytes       int    `toml:"warn_message_bytes"`
	DefaultDispatchTimeout string `toml:"default_dispatch_timeout"`
}

type filePipelineConfig struct {
	HistoryWindow   *int   `toml:"history_window"`
	MaxPlanSteps    int    `toml:"max_plan_steps"`
	PlanTimeout     string `toml:"plan_timeout"`
	ValidateTimeout string `toml:"validate_timeout"`
	StepTimeout     string `toml:"step_timeout"`
}

type fileValidatorConfig struct {
	Mode             string `toml:"mode"`
	WorkspaceRoot    string `toml:"workspace_root"`
	ApprovalCacheTTL string `toml:"approval_cache_ttl"`
}

type fileSandboxConfig struct {
	GearRoot             string `toml:"gear_root"`
	WorkspaceRoot        string `toml:"workspace_root"`
	TmpfsRoot            string `toml:"tmpfs_root"`
	EnableIsolate        *bool  `toml:"enable_isolate"`
	EnableContainer      *bool  `toml:"enable_container"`
	DockerBinary         string `toml:"docker_binary"`
	ContainerImage       string `toml:"container_image"`
	ShutdownGrace        string `toml:"shutdown_grace"`
	DefaultTimeout       string `toml:"default_timeout"`
	DefaultMaxMemoryMb   int    `toml:"default_max_memory_mb"`
	DefaultMaxCPUPercent int    `toml:"default_max_cpu_percent"`
	FrameRatePerMinute   int    `toml:"frame_rate_per_minute"`
	FrameRateBurst       int    `toml:"frame_rate_burst"`
}

type fileGatewayConfig struct {
	Addr              string   `toml:"addr"`
	AuthTokens        []string `toml:"auth_tokens"`
	TLSCertFile       string   `toml:"tls_cert_file"`
	TLSKeyFile        string   `toml:"tls_key_file"`
	HSTSMaxAgeSeconds *int     `toml:"hsts_max_age_seconds"`
	WSRatePerMinute   int      `toml:"ws_rate_per_minute"`
	WSRateBurst       int      `toml:"ws_rate_burst"`
	WSTokenTTL        string   `toml:"ws_token_ttl"`
	HeartbeatInterval string   `toml:"heartbeat_interval"`
	MissedPongLimit   int      `toml:"missed_pong_limit"`
}

type fileSchedulerConfig struct {
	Enabled      *bool  `toml:"enabled"`
	TickInterval string `toml:"tick_interval"`
}

type fileRetentionConfig struct {
	JobDays   int    `toml:"job_days"`
	AuditDays int    `toml:"audit_days"`
	EventDays int    `toml:"event_days"`
	Interval  string `toml:"interval"`
}

type fileIntegrityConfig struct {
	Interval string `toml:"interval"`
}

type fileSecretsConfig struct {
	MasterKeyEnv string `toml:"master_key_env"`
}

type fileLLMConfig struct {
	Provider    string   `toml:"provider"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature *float64 `toml:"temperature"`
}

// parseFile decodes TOML content (after env expansion) in strict mode so
// misspelled keys fail loudly instead of silently keeping the default.
func parseFile(data []byte) (*fileConfig, error) {
	var f fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return &f, nil
}

// resolver applies file values onto a defaults-populated Config, collecting
// every bad duration instead of stopping at the first.
type resolver struct {
	errs []error
}

func (r *resolver) duration(field, raw string, dst *time.Duration) {
	if raw == "" {
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", field, raw))
		return
	}
	*dst = d
}

// applyTo overlays the file's present values onto cfg. Defaults survive for
// everything the file leaves out.
func (f *fileConfig) applyTo(cfg *Config) error {
	r := &resolver{}

	if f.Logging != nil {
		if f.Logging.Level != "" {
			cfg.Logging.Level = f.Logging.Level
		}
		if f.Logging.Format != "" {
			cfg.Logging.Format = f.Logging.Format
		}
	}

	if q := f.Queue; q != nil {
		if q.WorkerCount != 0 {
			cfg.Queue.WorkerCount = q.WorkerCount
		}
		if q.MaxRetries != nil {
			cfg.Queue.MaxRetries = *q.MaxRetries
		}
		r.duration("queue.job_timeout", q.JobTimeout, &cfg.Queue.JobTimeout)
		r.duration("queue.poll_interval", q.PollInterval, &cfg.Queue.PollInterval)
		r.duration("queue.poll_interval_jitter", q.PollIntervalJitter, &cfg.Queue.PollIntervalJitter)
		r.duration("queue.graceful_shutdown_timeout", q.GracefulShutdownTimeout, &cfg.Queue.GracefulShutdownTimeout)
	}

	if rt := f.Router; rt != nil {
		if rt.SigningEnabled != nil {
			cfg.Router.SigningEnabled = *rt.SigningEnabled
		}
		if rt.MaxMessageBytes != 0 {
			cfg.Router.MaxMessageBytes = rt.MaxMessageBytes
		}
		if rt.WarnMessageBytes != 0 {
			cfg.Router.WarnMessageBytes = rt.WarnMessageBytes
		}
		r.duration("router.replay_window", rt.ReplayWindow, &cfg.Router.ReplayWindow)
		r.duration("router.default_dispatch_timeout", rt.DefaultDispatchTimeout, &cfg.Router.DefaultDispatchTimeout)
	}

	if p := f.Pipeline; p != nil {
		if p.HistoryWindow != nil {
			cfg.Pipeline.HistoryWindow = *p.HistoryWindow
		}
		if p.MaxPlanSteps != 0 {
			cfg.Pipeline.MaxPlanSteps = p.MaxPlanSteps
		}
		r.duration("pipeline.plan_timeout", p.PlanTimeout, &cfg.Pipeline.PlanTimeout)
		r.duration("pipeline.validate_timeout", p.ValidateTimeout, &cfg.Pipeline.ValidateTimeout)
		r.duration("pipeline.step_timeout", p.StepTimeout, &cfg.Pipeline.StepTimeout)
	}

	if v := f.Validator; v != nil {
		if v.Mode != "" {
			cfg.Validator.Mode = v.Mode
		}
		if v.WorkspaceRoot != "" {
			cfg.Validator.WorkspaceRoot = v.WorkspaceRoot
		}
		r.duration("validator.approval_cache_ttl", v.ApprovalCacheTTL, &cfg.Validator.ApprovalCacheTTL)
	}

	if s := f.Sandbox; s != nil {
		if s.GearRoot != "" {
			cfg.Sandbox.GearRoot = s.GearRoot
		}
		if s.WorkspaceRoot != "" {
			cfg.Sandbox.WorkspaceRoot = s.WorkspaceRoot
		}
		if s.TmpfsRoot != "" {
			cfg.Sandbox.TmpfsRoot = s.TmpfsRoot
		}
		if s.EnableIsolate != nil {
			cfg.Sandbox.EnableIsolate = *s.EnableIsolate
		}
		if s.EnableContainer != nil {
			cfg.Sandbox.EnableContainer = *s.EnableContainer
		}
		if s.DockerBinary != "" {
			cfg.Sandbox.DockerBinary = s.DockerBinary
		}
		if s.ContainerImage != "" {
			cfg.Sandbox.ContainerImage = s.ContainerImage
		}
		if s.DefaultMaxMemoryMb != 0 {
			cfg.Sandbox.DefaultMaxMemoryMb = s.DefaultMaxMemoryMb
		}
		if s.DefaultMaxCPUPercent != 0 {
			cfg.Sandbox.DefaultMaxCPUPercent = s.DefaultMaxCPUPercent
		}
		if s.FrameRatePerMinute != 0 {
			cfg.Sandbox.FrameRatePerMinute = s.FrameRatePerMinute
		}
		if s.FrameRateBurst != 0 {
			cfg.Sandbox.FrameRateBurst = s.FrameRateBurst
		}
		r.duration("sandbox.shutdown_grace", s.ShutdownGrace, &cfg.Sandbox.ShutdownGrace)
		r.duration("sandbox.default_timeout", s.DefaultTimeout, &cfg.Sandbox.DefaultTimeout)
	}

	if g := f.Gateway; g != nil {
		if g.Addr != "" {
			cfg.Gateway.Addr = g.Addr
		}
		if len(g.AuthTokens) > 0 {
			cfg.Gateway.AuthTokens = g.AuthTokens
		}
		if g.TLSCertFile != "" {
			cfg.Gateway.TLSCertFile = g.TLSCertFile
		}
		if g.TLSKeyFile != "" {
			cfg.Gateway.TLSKeyFile = g.TLSKeyFile
		}
		if g.HSTSMaxAgeSeconds != nil {
			cfg.Gateway.HSTSMaxAgeSeconds = *g.HSTSMaxAgeSeconds
		}
		if g.WSRatePerMinute != 0 {
			cfg.Gateway.WSRatePerMinute = g.WSRatePerMinute
		}
		if g.WSRateBurst != 0 {
			cfg.Gateway.WSRateBurst = g.WSRateBurst
		}
		if g.MissedPongLimit != 0 {
			cfg.Gateway.MissedPongLimit = g.MissedPongLimit
		}
		r.duration("gateway.ws_token_ttl", g.WSTokenTTL, &cfg.Gateway.WSTokenTTL)
		r.duration("gateway.heartbeat_interval", g.HeartbeatInterval, &cfg.Gateway.HeartbeatInterval)
	}

	if s := f.Scheduler; s != nil {
		if s.Enabled != nil {
			cfg.Scheduler.Enabled = *s.Enabled
		}
		r.duration("scheduler.tick_interval", s.TickInterval, &cfg.Scheduler.TickInterval)
	}

	if rc := f.Retention; rc != nil {
		if rc.JobDays != 0 {
			cfg.Retention.JobDays = rc.JobDays
		}
		if rc.AuditDays != 0 {
			cfg.Retention.AuditDays = rc.AuditDays
		}
		if rc.EventDays != 0 {
			cfg.Retention.EventDays = rc.EventDays
		}
		r.duration("retention.interval", rc.Interval, &cfg.Retention.Interval)
	}

	if ic := f.Integrity; ic != nil {
		r.duration("integrity.interval", ic.Interval, &cfg.Integrity.Interval)
	}

	if l := f.LLM; l != nil {
		if l.Provider != "" {
			cfg.LLM.Provider = l.Provider
		}
		if l.APIKeyEnv != "" {
			cfg.LLM.APIKeyEnv = l.APIKeyEnv
		}
		if l.Model != "" {
			cfg.LLM.Model = l.Model
		}
		if l.MaxTokens != 0 {
			cfg.LLM.MaxTokens = l.MaxTokens
		}
		if l.Temperature != nil {
			cfg.LLM.Temperature = *l.Temperature
		}
	}

	if sc := f.Secrets; sc != nil {
		if sc.MasterKeyEnv != "" {
			cfg.Secrets.MasterKeyEnv = sc.MasterKeyEnv
		}
	}

	return errors.Join(r.errs...)
}
