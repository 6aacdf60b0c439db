package config

import (
	"fmt"
	"net"
	"path/filepath"
)

// ConfigValidator validates configuration comprehensively with clear error
// messages.
type ConfigValidator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast, stops at the
// first bad section).
func (v *ConfigValidator) ValidateAll() error {
	checks := []func() error{
		v.validateLogging,
		v.validateQueue,
		v.validateRouter,
		v.validatePipeline,
		v.validateValidator,
		v.validateSandbox,
		v.validateGateway,
		v.validateScheduler,
		v.validateRetention,
		v.validateLLM,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *ConfigValidator) validateLogging() error {
	switch v.cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return NewValidationError("logging", "level", fmt.Errorf("%w: %q", ErrInvalidValue, v.cfg.Logging.Level))
	}
	switch v.cfg.Logging.Format {
	case "text", "json":
	default:
		return NewValidationError("logging", "format", fmt.Errorf("%w: %q", ErrInvalidValue, v.cfg.Logging.Format))
	}
	return nil
}

func (v *ConfigValidator) validateQueue() error {
	q := v.cfg.Queue
	if q.WorkerCount < 1 || q.WorkerCount > 32 {
		return NewValidationError("queue", "worker_count", fmt.Errorf("must be between 1 and 32, got %d", q.WorkerCount))
	}
	if q.JobTimeout <= 0 {
		return NewValidationError("queue", "job_timeout", fmt.Errorf("must be positive"))
	}
	if q.MaxRetries < 0 {
		return NewValidationError("queue", "max_retries", fmt.Errorf("must be non-negative"))
	}
	if q.PollInterval <= 0 {
		return NewValidationError("queue", "poll_interval", fmt.Errorf("must be positive"))
	}
	if q.PollIntervalJitter < 0 {
		return NewValidationError("queue", "poll_interval_jitter", fmt.Errorf("must be non-negative"))
	}
	if q.PollIntervalJitter >= q.PollInterval {
		return NewValidationError("queue", "poll_interval_jitter", fmt.Errorf("must be less than poll_interval"))
	}
	if q.GracefulShutdownTimeout <= 0 {
		return NewValidationError("queue", "graceful_shutdown_timeout", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *ConfigValidator) validateRouter() error {
	r := v.cfg.Router
	if r.ReplayWindow <= 0 {
		return NewValidationError("router", "replay_window", fmt.Errorf("must be positive"))
	}
	if r.MaxMessageBytes < 1024 {
		return NewValidationError("router", "max_message_bytes", fmt.Errorf("must be at least 1024, got %d", r.MaxMessageBytes))
	}
	if r.WarnMessageBytes <= 0 || r.WarnMessageBytes > r.MaxMessageBytes {
		return NewValidationError("router", "warn_message_bytes", fmt.Errorf("must be positive and at most max_message_bytes"))
	}
	if r.DefaultDispatchTimeout <= 0 {
		return NewValidationError("router", "default_dispatch_timeout", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *ConfigValidator) validatePipeline() error {
	p := v.cfg.Pipeline
	if p.HistoryWindow < 0 {
		return NewValidationError("pipeline", "history_window", fmt.Errorf("must be non-negative"))
	}
	if p.MaxPlanSteps < 1 {
		return NewValidationError("pipeline", "max_plan_steps", fmt.Errorf("must be at least 1"))
	}
	if p.PlanTimeout <= 0 {
		return NewValidationError("pipeline", "plan_timeout", fmt.Errorf("must be positive"))
	}
	if p.ValidateTimeout <= 0 {
		return NewValidationError("pipeline", "validate_timeout", fmt.Errorf("must be positive"))
	}
	if p.StepTimeout <= 0 {
		return NewValidationError("pipeline", "step_timeout", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *ConfigValidator) validateValidator() error {
	val := v.cfg.Validator
	switch val.Mode {
	case "rules", "llm":
	default:
		return NewValidationError("validator", "mode", fmt.Errorf("%w: %q (want rules or llm)", ErrInvalidValue, val.Mode))
	}
	if val.WorkspaceRoot == "" || !filepath.IsAbs(val.WorkspaceRoot) {
		return NewValidationError("validator", "workspace_root", fmt.Errorf("must be an absolute path"))
	}
	if val.ApprovalCacheTTL <= 0 {
		return NewValidationError("validator", "approval_cache_ttl", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *ConfigValidator) validateSandbox() error {
	s := v.cfg.Sandbox
	if s.GearRoot == "" || !filepath.IsAbs(s.GearRoot) {
		return NewValidationError("sandbox", "gear_root", fmt.Errorf("must be an absolute path"))
	}
	if s.WorkspaceRoot == "" || !filepath.IsAbs(s.WorkspaceRoot) {
		return NewValidationError("sandbox", "workspace_root", fmt.Errorf("must be an absolute path"))
	}
	if s.TmpfsRoot == "" || !filepath.IsAbs(s.TmpfsRoot) {
		return NewValidationError("sandbox", "tmpfs_root", fmt.Errorf("must be an absolute path"))
	}
	if s.EnableContainer && s.DockerBinary == "" {
		return NewValidationError("sandbox", "docker_binary", fmt.Errorf("required when enable_container is true"))
	}
	if s.ShutdownGrace <= 0 {
		return NewValidationError("sandbox", "shutdown_grace", fmt.Errorf("must be positive"))
	}
	if s.DefaultTimeout <= 0 {
		return NewValidationError("sandbox", "default_timeout", fmt.Errorf("must be positive"))
	}
	if s.DefaultMaxMemoryMb < 16 {
		return NewValidationError("sandbox", "default_max_memory_mb", fmt.Errorf("must be at least 16, got %d", s.DefaultMaxMemoryMb))
	}
	if s.DefaultMaxCPUPercent < 1 || s.DefaultMaxCPUPercent > 100 {
		return NewValidationError("sandbox", "default_max_cpu_percent", fmt.Errorf("must be between 1 and 100, got %d", s.DefaultMaxCPUPercent))
	}
	if s.FrameRatePerMinute < 1 {
		return NewValidationError("sandbox", "frame_rate_per_minute", fmt.Errorf("must be at least 1"))
	}
	if s.FrameRateBurst < 1 {
		return NewValidationError("sandbox", "frame_rate_burst", fmt.Errorf("must be at least 1"))
	}
	return nil
}

func (v *ConfigValidator) validateGateway() error {
	g := v.cfg.Gateway
	if _, _, err := net.SplitHostPort(g.Addr); err != nil {
		return NewValidationError("gateway", "addr", fmt.Errorf("invalid listen address %q: %v", g.Addr, err))
	}
	if (g.TLSCertFile == "") != (g.TLSKeyFile == "") {
		return NewValidationError("gateway", "tls_cert_file", fmt.Errorf("tls_cert_file and tls_key_file must be set together"))
	}
	if g.HSTSMaxAgeSeconds < 0 {
		return NewValidationError("gateway", "hsts_max_age_seconds", fmt.Errorf("must be non-negative"))
	}
	if g.WSRatePerMinute < 1 {
		return NewValidationError("gateway", "ws_rate_per_minute", fmt.Errorf("must be at least 1"))
	}
	if g.WSRateBurst < 1 {
		return NewValidationError("gateway", "ws_rate_burst", fmt.Errorf("must be at least 1"))
	}
	if g.WSTokenTTL <= 0 {
		return NewValidationError("gateway", "ws_token_ttl", fmt.Errorf("must be positive"))
	}
	if g.HeartbeatInterval <= 0 {
		return NewValidationError("gateway", "heartbeat_interval", fmt.Errorf("must be positive"))
	}
	if g.MissedPongLimit < 1 {
		return NewValidationError("gateway", "missed_pong_limit", fmt.Errorf("must be at least 1"))
	}
	return nil
}

func (v *ConfigValidator) validateScheduler() error {
	if v.cfg.Scheduler.Enabled && v.cfg.Scheduler.TickInterval <= 0 {
		return NewValidationError("scheduler", "tick_interval", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *ConfigValidator) validateRetention() error {
	r := v.cfg.Retention
	if r.JobDays < 1 {
		return NewValidationError("retention", "job_days", fmt.Errorf("must be at least 1"))
	}
	if r.AuditDays < r.JobDays {
		return NewValidationError("retention", "audit_days", fmt.Errorf("must be at least job_days: audit outlives the jobs it describes"))
	}
	if r.EventDays < 1 {
		return NewValidationError("retention", "event_days", fmt.Errorf("must be at least 1"))
	}
	if r.Interval <= 0 {
		return NewValidationError("retention", "interval", fmt.Errorf("must be positive"))
	}
	if v.cfg.Integrity.Interval <= 0 {
		return NewValidationError("integrity", "interval", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *ConfigValidator) validateLLM() error {
	l := v.cfg.LLM
	switch l.Provider {
	case "anthropic", "scripted":
	default:
		return NewValidationError("llm", "provider", fmt.Errorf("%w: %q (want anthropic or scripted)", ErrInvalidValue, l.Provider))
	}
	if l.Provider == "anthropic" {
		if l.APIKeyEnv == "" {
			return NewValidationError("llm", "api_key_env", fmt.Errorf("required for the anthropic provider"))
		}
		if l.Model == "" {
			return NewValidationError("llm", "model", fmt.Errorf("model required"))
		}
	}
	if l.MaxTokens < 1 {
		return NewValidationError("llm", "max_tokens", fmt.Errorf("must be at least 1"))
	}
	if l.Temperature < 0 || l.Temperature > 1 {
		return NewValidationError("llm", "temperature", fmt.Errorf("must be between 0 and 1"))
	}
	return nil
}
