package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix marks environment variables that override config fields.
// AXIS_QUEUE_WORKER_COUNT=4 sets queue.worker_count.
const EnvPrefix = "AXIS_"

// setter parses a string value and applies it to its config field.
type setter func(cfg *Config, value string) error

func stringSetter(get func(*Config) *string) setter {
	return func(cfg *Config, value string) error {
		*get(cfg) = value
		return nil
	}
}

func stringsSetter(get func(*Config) *[]string) setter {
	return func(cfg *Config, value string) error {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*get(cfg) = out
		return nil
	}
}

func intSetter(get func(*Config) *int) setter {
	return func(cfg *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not an integer: %q", value)
		}
		*get(cfg) = n
		return nil
	}
}

func boolSetter(get func(*Config) *bool) setter {
	return func(cfg *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", value)
		}
		*get(cfg) = b
		return nil
	}
}

func floatSetter(get func(*Config) *float64) setter {
	return func(cfg *Config, value string) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", value)
		}
		*get(cfg) = f
		return nil
	}
}

func durationSetter(get func(*Config) *time.Duration) setter {
	return func(cfg *Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("not a duration: %q", value)
		}
		*get(cfg) = d
		return nil
	}
}

// overrideSetters maps dotted config paths to their appliers. The same table
// serves AXIS_ environment variables and config_overrides database rows, so
// both surfaces accept exactly the same keys. Tier is deliberately absent:
// it selects the defaults and is only meaningful before they are built.
var overrideSetters = map[string]setter{
	"logging.level":  stringSetter(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format": stringSetter(func(c *Config) *string { return &c.Logging.Format }),

	"queue.worker_count":              intSetter(func(c *Config) *int { return &c.Queue.WorkerCount }),
	"queue.job_timeout":               durationSetter(func(c *Config) *time.Duration { return &c.Queue.JobTimeout }),
	"queue.max_retries":               intSetter(func(c *Config) *int { return &c.Queue.MaxRetries }),
	"queue.poll_interval":             durationSetter(func(c *Config) *time.Duration { return &c.Queue.PollInterval }),
	"queue.poll_interval_jitter":      durationSetter(func(c *Config) *time.Duration { return &c.Queue.PollIntervalJitter }),
	"queue.graceful_shutdown_timeout": durationSetter(func(c *Config) *time.Duration { return &c.Queue.GracefulShutdownTimeout }),

	"router.signing_enabled":          boolSetter(func(c *Config) *bool { return &c.Router.SigningEnabled }),
	"router.replay_window":            durationSetter(func(c *Config) *time.Duration { return &c.Router.ReplayWindow }),
	"router.max_message_bytes":        intSetter(func(c *Config) *int { return &c.Router.MaxMessageBytes }),
	"router.warn_message_bytes":       intSetter(func(c *Config) *int { return &c.Router.WarnMessageBytes }),
	"router.default_dispatch_timeout": durationSetter(func(c *Config) *time.Duration { return &c.Router.DefaultDispatchTimeout }),

	"pipeline.history_window":   intSetter(func(c *Config) *int { return &c.Pipeline.HistoryWindow }),
	"pipeline.max_plan_steps":   intSetter(func(c *Config) *int { return &c.Pipeline.MaxPlanSteps }),
	"pipeline.plan_timeout":     durationSetter(func(c *Config) *time.Duration { return &c.Pipeline.PlanTimeout }),
	"pipeline.validate_timeout": durationSetter(func(c *Config) *time.Duration { return &c.Pipeline.ValidateTimeout }),
	"pipeline.step_timeout":     durationSetter(func(c *Config) *time.Duration { return &c.Pipeline.StepTimeout }),

	"validator.mode":               stringSetter(func(c *Config) *string { return &c.Validator.Mode }),
	"validator.workspace_root":     stringSetter(func(c *Config) *string { return &c.Validator.WorkspaceRoot }),
	"validator.approval_cache_ttl": durationSetter(func(c *Config) *time.Duration { return &c.Validator.ApprovalCacheTTL }),

	"sandbox.gear_root":               stringSetter(func(c *Config) *string { return &c.Sandbox.GearRoot }),
	"sandbox.workspace_root":          stringSetter(func(c *Config) *string { return &c.Sandbox.WorkspaceRoot }),
	"sandbox.tmpfs_root":              stringSetter(func(c *Config) *string { return &c.Sandbox.TmpfsRoot }),
	"sandbox.enable_isolate":          boolSetter(func(c *Config) *bool { return &c.Sandbox.EnableIsolate }),
	"sandbox.enable_container":        boolSetter(func(c *Config) *bool { return &c.Sandbox.EnableContainer }),
	"sandbox.docker_binary":           stringSetter(func(c *Config) *string { return &c.Sandbox.DockerBinary }),
	"sandbox.container_image":         stringSetter(func(c *Config) *string { return &c.Sandbox.ContainerImage }),
	"sandbox.shutdown_grace":          durationSetter(func(c *Config) *time.Duration { return &c.Sandbox.ShutdownGrace }),
	"sandbox.default_timeout":         durationSetter(func(c *Config) *time.Duration { return &c.Sandbox.DefaultTimeout }),
	"sandbox.default_max_memory_mb":   intSetter(func(c *Config) *int { return &c.Sandbox.DefaultMaxMemoryMb }),
	"sandbox.default_max_cpu_percent": intSetter(func(c *Config) *int { return &c.Sandbox.DefaultMaxCPUPercent }),
	"sandbox.frame_rate_per_minute":   intSetter(func(c *Config) *int { return &c.Sandbox.FrameRatePerMinute }),
	"sandbox.frame_rate_burst":        intSetter(func(c *Config) *int { return &c.Sandbox.FrameRateBurst }),

	"gateway.addr":                 stringSetter(func(c *Config) *string { return &c.Gateway.Addr }),
	"gateway.auth_tokens":          stringsSetter(func(c *Config) *[]string { return &c.Gateway.AuthTokens }),
	"gateway.tls_cert_file":        stringSetter(func(c *Config) *string { return &c.Gateway.TLSCertFile }),
	"gateway.tls_key_file":         stringSetter(func(c *Config) *string { return &c.Gateway.TLSKeyFile }),
	"gateway.hsts_max_age_seconds": intSetter(func(c *Config) *int { return &c.Gateway.HSTSMaxAgeSeconds }),
	"gateway.ws_rate_per_minute":   intSetter(func(c *Config) *int { return &c.Gateway.WSRatePerMinute }),
	"gateway.ws_rate_burst":        intSetter(func(c *Config) *int { return &c.Gateway.WSRateBurst }),
	"gateway.ws_token_ttl":         durationSetter(func(c *Config) *time.Duration { return &c.Gateway.WSTokenTTL }),
	"gateway.heartbeat_interval":   durationSetter(func(c *Config) *time.Duration { return &c.Gateway.HeartbeatInterval }),
	"gateway.missed_pong_limit":    intSetter(func(c *Config) *int { return &c.Gateway.MissedPongLimit }),

	"scheduler.enabled":       boolSetter(func(c *Config) *bool { return &c.Scheduler.Enabled }),
	"scheduler.tick_interval": durationSetter(func(c *Config) *time.Duration { return &c.Scheduler.TickInterval }),

	"retention.job_days":   intSetter(func(c *Config) *int { return &c.Retention.JobDays }),
	"retention.audit_days": intSetter(func(c *Config) *int { return &c.Retention.AuditDays }),
	"retention.event_days": intSetter(func(c *Config) *int { return &c.Retention.EventDays }),
	"retention.interval":   durationSetter(func(c *Config) *time.Duration { return &c.Retention.Interval }),

	"integrity.interval": durationSetter(func(c *Config) *time.Duration { return &c.Integrity.Interval }),

	"llm.provider":    stringSetter(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.api_key_env": stringSetter(func(c *Config) *string { return &c.LLM.APIKeyEnv }),
	"llm.model":       stringSetter(func(c *Config) *string { return &c.LLM.Model }),
	"llm.max_tokens":  intSetter(func(c *Config) *int { return &c.LLM.MaxTokens }),
	"llm.temperature": floatSetter(func(c *Config) *float64 { return &c.LLM.Temperature }),

	"secrets.master_key_env": stringSetter(func(c *Config) *string { return &c.Secrets.MasterKeyEnv }),
}

// OverridableKeys returns the sorted list of keys accepted by ApplyOverride.
// The gateway exposes it so clients can discover what is tunable at runtime.
func OverridableKeys() []string {
	keys := make([]string, 0, len(overrideSetters))
	for k := range overrideSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyOverride sets a single dotted-path key on cfg.
func ApplyOverride(cfg *Config, key, value string) error {
	set, ok := overrideSetters[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := set(cfg, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// ApplyOverrides applies a key→value map (typically config_overrides rows)
// in sorted key order. All failures are collected and joined so one stale
// row cannot mask the rest; the caller decides whether to treat them as
// fatal.
func ApplyOverrides(cfg *Config, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := ApplyOverride(cfg, k, overrides[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// applyEnvOverrides applies every AXIS_-prefixed environment variable.
// Unknown keys are errors so typos surface at boot instead of silently
// keeping the default. AXIS_TIER is consumed earlier by Initialize.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if name == "AXIS_TIER" {
			continue
		}
		if err := ApplyOverride(cfg, envKeyToPath(name), value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// envKeyToPath converts AXIS_QUEUE_WORKER_COUNT to queue.worker_count.
// Sections are single words, so only the first underscore becomes a dot.
func envKeyToPath(name string) string {
	rest := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.Replace(rest, "_", ".", 1)
}
