// Package config loads and validates runtime configuration.
//
// Precedence, lowest to highest: built-in tier defaults (pi/desktop/vps,
// auto-detected when unset), the axis.toml file, AXIS_-prefixed environment
// variables, and finally config_overrides rows applied once the database is
// reachable.
package config

import "time"

// Config is the fully resolved runtime configuration.
type Config struct {
	// Tier selects the built-in defaults. Empty means auto-detect from the
	// host architecture and total memory.
	Tier string

	Logging   LoggingConfig
	Queue     QueueConfig
	Router    RouterConfig
	Pipeline  PipelineConfig
	Validator ValidatorConfig
	Sandbox   SandboxConfig
	Gateway   GatewayConfig
	Scheduler SchedulerConfig
	Retention RetentionConfig
	Integrity IntegrityConfig
	LLM       LLMConfig
	Secrets   SecretsConfig
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// QueueConfig controls the job queue and worker pool.
type QueueConfig struct {
	// WorkerCount is the number of worker goroutines claiming jobs.
	WorkerCount int

	// JobTimeout is how long a claimed job can go without a heartbeat
	// before the watchdog considers its worker dead.
	JobTimeout time.Duration

	// MaxRetries caps automatic re-enqueues of retriable failures.
	MaxRetries int

	// PollInterval is the base claim polling cadence; the wake signal from
	// Enqueue usually preempts it.
	PollInterval time.Duration

	// PollIntervalJitter spreads worker wakeups.
	// Actual interval: PollInterval ± PollIntervalJitter.
	PollIntervalJitter time.Duration

	// GracefulShutdownTimeout is the max time to wait for in-flight jobs
	// during shutdown.
	GracefulShutdownTimeout time.Duration
}

// HeartbeatInterval is how often an active job's updated_at is refreshed.
// Derived rather than configured so it always stays well inside JobTimeout.
func (q QueueConfig) HeartbeatInterval() time.Duration {
	return q.JobTimeout / 3
}

// WatchdogInterval is the stale-job scan cadence: JobTimeout/4 clamped
// to [5s, 60s].
func (q QueueConfig) WatchdogInterval() time.Duration {
	d := q.JobTimeout / 4
	if d < 5*time.Second {
		return 5 * time.Second
	}
	if d > time.Minute {
		return time.Minute
	}
	return d
}

// RouterConfig controls the in-process message router.
type RouterConfig struct {
	// SigningEnabled requires a valid signed envelope on every dispatch.
	SigningEnabled bool

	// ReplayWindow is the tolerated envelope timestamp skew and the
	// lifetime of nonce replay-cache entries.
	ReplayWindow time.Duration

	// MaxMessageBytes rejects serialized payloads above this size.
	MaxMessageBytes int

	// WarnMessageBytes logs a warning for serialized payloads above this size.
	WarnMessageBytes int

	// DefaultDispatchTimeout applies when a message carries no timeout hint.
	DefaultDispatchTimeout time.Duration
}

// PipelineConfig controls per-job orchestration.
type PipelineConfig struct {
	// HistoryWindow is how many recent conversation messages ride along
	// with a plan request.
	HistoryWindow int

	// MaxPlanSteps rejects plans above this step count.
	MaxPlanSteps int

	// Timeouts for the three pipeline dispatches.
	PlanTimeout     time.Duration
	ValidateTimeout time.Duration
	StepTimeout     time.Duration
}

// ValidatorConfig controls the safety validator.
type ValidatorConfig struct {
	// Mode selects the evaluation strategy: "rules" or "llm". Rules remain
	// the fallback when the LLM is unreachable or returns garbage.
	Mode string

	// WorkspaceRoot is the directory all filesystem plan parameters must
	// resolve inside.
	WorkspaceRoot string

	// ApprovalCacheTTL bounds how long an approved scheduled plan skips
	// re-validation.
	ApprovalCacheTTL time.Duration
}

// SandboxConfig controls the plugin sandbox host.
type SandboxConfig struct {
	// GearRoot is the directory installed gears live under.
	GearRoot string

	// WorkspaceRoot backs the tier-1 filesystem shim and is bind-mounted
	// read-only into tier-3 containers.
	WorkspaceRoot string

	// TmpfsRoot is where per-sandbox secret directories are materialized.
	TmpfsRoot string

	// EnableIsolate permits tier-2 in-process execution for builtin gears
	// with no filesystem or network permissions.
	EnableIsolate bool

	// EnableContainer permits tier-3 container execution when the docker
	// binary is available.
	EnableContainer bool

	// DockerBinary is the container runtime CLI used for tier 3.
	DockerBinary string

	// ContainerImage is the image tier-3 gears run in. It carries the gear
	// interpreters; the gear code itself is bind-mounted read-only.
	ContainerImage string

	// ShutdownGrace is how long live sandboxes get between the shutdown
	// signal and the kill.
	ShutdownGrace time.Duration

	// DefaultTimeout applies to actions whose manifest declares no timeoutMs.
	DefaultTimeout time.Duration

	// DefaultMaxMemoryMb and DefaultMaxCPUPercent apply when a manifest
	// declares no resource bounds.
	DefaultMaxMemoryMb   int
	DefaultMaxCPUPercent int

	// FrameRatePerMinute bounds inbound wire frames per sandbox; frames
	// that fail to parse count against the window.
	FrameRatePerMinute int
	FrameRateBurst     int
}

// GatewayConfig controls the HTTP/WebSocket surface.
type GatewayConfig struct {
	Addr string

	// AuthTokens are the accepted bearer tokens. Empty means every request
	// is rejected; the API never runs open.
	AuthTokens []string

	// TLSCertFile/TLSKeyFile enable TLS termination when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// HSTSMaxAgeSeconds is emitted in Strict-Transport-Security when TLS
	// is active.
	HSTSMaxAgeSeconds int

	// WSRatePerMinute / WSRateBurst bound inbound client frames per
	// connection.
	WSRatePerMinute int
	WSRateBurst     int

	// WSTokenTTL is the lifetime of a one-time WebSocket connection token.
	WSTokenTTL time.Duration

	// HeartbeatInterval is the server ping cadence; MissedPongLimit
	// unanswered pings close the socket.
	HeartbeatInterval time.Duration
	MissedPongLimit   int
}

// TLSEnabled reports whether the gateway terminates TLS itself.
func (g GatewayConfig) TLSEnabled() bool {
	return g.TLSCertFile != "" && g.TLSKeyFile != ""
}

// SchedulerConfig controls cron-driven job creation.
type SchedulerConfig struct {
	Enabled      bool
	TickInterval time.Duration
}

// RetentionConfig controls periodic cleanup of aged rows.
type RetentionConfig struct {
	// JobDays is how many days terminal jobs are kept.
	JobDays int

	// AuditDays is how many days audit entries are kept.
	AuditDays int

	// EventDays is the maximum age of event rows; WebSocket catch-up only
	// needs a short horizon.
	EventDays int

	// Interval is how often the cleanup loop runs.
	Interval time.Duration
}

// IntegrityConfig controls the cross-table referential scanner.
type IntegrityConfig struct {
	Interval time.Duration
}

// LLMConfig selects the planner/validator language model provider.
type LLMConfig struct {
	// Provider is "anthropic" or "scripted" (deterministic test provider).
	Provider string

	// APIKeyEnv names the environment variable holding the provider key.
	// The key itself never appears in config files.
	APIKeyEnv string

	Model       string
	MaxTokens   int
	Temperature float64
}

// SecretsConfig controls the encrypted secrets vault.
type SecretsConfig struct {
	// MasterKeyEnv names the environment variable holding the base64
	// AES-256 master key. The key itself never appears in config files.
	MasterKeyEnv string
}
