package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"text/template"
)

// DefaultPath is where Initialize looks for axis.toml when no explicit
// path is given.
const DefaultPath = "/etc/axis/axis.toml"

// Initialize loads, resolves, and validates the runtime configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Read axis.toml (a missing file is fine: defaults cover everything)
//  2. Expand {{.VAR}} environment references in the raw content
//  3. Parse TOML (strict: unknown keys are errors)
//  4. Resolve the tier (AXIS_TIER > file > auto-detect) and build defaults
//  5. Overlay file values, then AXIS_ environment overrides
//  6. Validate the result
//
// Database-stored overrides are applied later via ApplyOverrides, once the
// store is reachable; Revalidate guards that second pass.
func Initialize(_ context.Context, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	log := slog.With("config_file", path)

	// 1-3. Read, expand, parse.
	var file *fileConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("No config file found, using built-in defaults")
		file = &fileConfig{}
	case err != nil:
		return nil, NewLoadError(path, err)
	default:
		file, err = parseFile(expandEnv(data))
		if err != nil {
			return nil, NewLoadError(path, err)
		}
	}

	// 4. Resolve tier and build defaults.
	tier := os.Getenv("AXIS_TIER")
	if tier == "" {
		tier = file.Tier
	}
	if tier == "" {
		tier = DetectTier()
		log.Info("Auto-detected deployment tier", "tier", tier)
	}
	if !ValidTier(tier) {
		return nil, NewValidationError("tier", "", fmt.Errorf("%w: %q (want pi, desktop, or vps)", ErrInvalidValue, tier))
	}
	cfg := DefaultConfig(tier)

	// 5. Overlay file values, then environment overrides.
	if err := file.applyTo(cfg); err != nil {
		return nil, NewLoadError(path, err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	// 6. Validate.
	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized",
		"tier", cfg.Tier,
		"workers", cfg.Queue.WorkerCount,
		"validator_mode", cfg.Validator.Mode,
		"signing", cfg.Router.SigningEnabled,
		"llm_provider", cfg.LLM.Provider)

	return cfg, nil
}

// Revalidate re-runs full validation. Called after database overrides are
// applied on top of an already-validated config.
func Revalidate(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}

// expandEnv renders {{.VAR}} environment references in raw file content.
// Template syntax instead of $VAR substitution keeps literal dollar signs
// in values intact: scrub patterns, passwords, shell fragments inside gear
// arguments. Unset variables render empty and are left for validation to
// catch; content that does not parse as a template passes through raw.
func expandEnv(data []byte) []byte {
	tmpl, err := template.New("axis.toml").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}

	environ := os.Environ()
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, env); err != nil {
		return data
	}
	return out.Bytes()
}
