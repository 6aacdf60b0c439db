package config

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
)

// Deployment tiers. The tier picks conservative defaults for the hardware
// class; everything it sets can still be overridden individually.
const (
	// TierPi targets small ARM boards: one worker, no container sandbox.
	TierPi = "pi"

	// TierDesktop targets workstations: two workers, full sandbox.
	TierDesktop = "desktop"

	// TierVPS targets headless servers with headroom: four workers.
	TierVPS = "vps"
)

// ValidTier reports whether s names a known deployment tier.
func ValidTier(s string) bool {
	switch s {
	case TierPi, TierDesktop, TierVPS:
		return true
	}
	return false
}

// DetectTier guesses the deployment tier from the host architecture and
// total memory. Small ARM boards map to pi, hosts with 8 GiB or more to
// vps, everything else to desktop. Detection failures fall back to desktop,
// the middle ground.
func DetectTier() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		slog.Warn("Tier detection failed, assuming desktop", "error", err)
		return TierDesktop
	}

	const gib = 1 << 30
	arm := runtime.GOARCH == "arm" || runtime.GOARCH == "arm64"

	switch {
	case arm && vm.Total <= 2*gib:
		return TierPi
	case vm.Total >= 8*gib:
		return TierVPS
	default:
		return TierDesktop
	}
}

// DefaultConfig returns the complete built-in configuration for a tier.
func DefaultConfig(tier string) *Config {
	return &Config{
		Tier: tier,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Queue:     DefaultQueueConfig(tier),
		Router:    DefaultRouterConfig(),
		Pipeline:  DefaultPipelineConfig(),
		Validator: DefaultValidatorConfig(),
		Sandbox:   DefaultSandboxConfig(tier),
		Gateway:   DefaultGatewayConfig(),
		Scheduler: SchedulerConfig{
			Enabled:      true,
			TickInterval: 30 * time.Second,
		},
		Retention: RetentionConfig{
			JobDays:   90,
			AuditDays: 365,
			EventDays: 7,
			Interval:  12 * time.Hour,
		},
		Integrity: IntegrityConfig{
			Interval: 6 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:    "anthropic",
			APIKeyEnv:   "ANTHROPIC_API_KEY",
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Temperature: 0.2,
		},
		Secrets: SecretsConfig{
			MasterKeyEnv: "AXIS_VAULT_KEY",
		},
	}
}

// DefaultQueueConfig returns the built-in queue defaults for a tier.
func DefaultQueueConfig(tier string) QueueConfig {
	workers := 2
	switch tier {
	case TierPi:
		workers = 1
	case TierVPS:
		workers = 4
	}

	return QueueConfig{
		WorkerCount:             workers,
		JobTimeout:              5 * time.Minute,
		MaxRetries:              3,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// DefaultRouterConfig returns the built-in router defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		SigningEnabled:         true,
		ReplayWindow:           60 * time.Second,
		MaxMessageBytes:        1 << 20, // 1 MiB
		WarnMessageBytes:       100 << 10,
		DefaultDispatchTimeout: 30 * time.Second,
	}
}

// DefaultPipelineConfig returns the built-in pipeline defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		HistoryWindow:   20,
		MaxPlanSteps:    16,
		PlanTimeout:     60 * time.Second,
		ValidateTimeout: 30 * time.Second,
		StepTimeout:     60 * time.Second,
	}
}

// DefaultValidatorConfig returns the built-in validator defaults.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		Mode:             "rules",
		WorkspaceRoot:    "/var/lib/axis/workspace",
		ApprovalCacheTTL: 30 * time.Minute,
	}
}

// DefaultSandboxConfig returns the built-in sandbox defaults for a tier.
// The pi tier disables containers: the docker daemon alone would eat most
// of the board's memory.
func DefaultSandboxConfig(tier string) SandboxConfig {
	return SandboxConfig{
		GearRoot:             "/var/lib/axis/gears",
		WorkspaceRoot:        "/var/lib/axis/workspace",
		TmpfsRoot:            "/run/axis",
		EnableIsolate:        true,
		EnableContainer:      tier != TierPi,
		DockerBinary:         "docker",
		ContainerImage:       "axisworks/gear-runtime:latest",
		ShutdownGrace:        5 * time.Second,
		DefaultTimeout:       30 * time.Second,
		DefaultMaxMemoryMb:   256,
		DefaultMaxCPUPercent: 50,
		FrameRatePerMinute:   600,
		FrameRateBurst:       100,
	}
}

// DefaultGatewayConfig returns the built-in gateway defaults.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Addr:              ":8420",
		HSTSMaxAgeSeconds: 31536000,
		WSRatePerMinute:   60,
		WSRateBurst:       10,
		WSTokenTTL:        30 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MissedPongLimit:   2,
	}
}
