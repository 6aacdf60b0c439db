package scrub

import "regexp"

// rule is one compiled redaction pattern. Replacements reference capture
// groups where the surrounding syntax should survive (password=..., Bearer
// ...) and replace the whole match where the match itself is the secret.
type rule struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

// builtinRules returns the redaction set in application order: provider
// token shapes first (the value alone identifies the class), then keyed
// assignments (the key identifies the class, the value is arbitrary).
func builtinRules() []rule {
	return []rule{
		{
			name:        "anthropic_key",
			re:          regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_-]{16,}`),
			replacement: "[REDACTED:api_key]",
		},
		{
			name:        "openai_key",
			re:          regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}`),
			replacement: "[REDACTED:api_key]",
		},
		{
			name:        "github_token",
			re:          regexp.MustCompile(`\bgh[opsur]_[A-Za-z0-9]{36,}`),
			replacement: "[REDACTED:api_key]",
		},
		{
			name:        "slack_token",
			re:          regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}`),
			replacement: "[REDACTED:api_key]",
		},
		{
			name:        "aws_access_key",
			re:          regexp.MustCompile(`\bAKIA[A-Z0-9]{16}\b`),
			replacement: "[REDACTED:aws_key]",
		},
		{
			name:        "bearer_token",
			re:          regexp.MustCompile(`(?i)\b(bearer\s+)[A-Za-z0-9._~+/-]{16,}=*`),
			replacement: "${1}[REDACTED:bearer]",
		},
		{
			name:        "api_key_assignment",
			re:          regexp.MustCompile(`(?i)((?:api[_-]?key|apikey)["']?\s*[:=]\s*["']?)[^"'\s&]{20,}`),
			replacement: "${1}[REDACTED:api_key]",
		},
		{
			name:        "password_assignment",
			re:          regexp.MustCompile(`(?i)((?:password|passwd|pwd)["']?\s*[:=]\s*["']?)[^"'\s&]{6,}`),
			replacement: "${1}[REDACTED:password]",
		},
	}
}

// marker is a distinctive fragment of an internal system prompt. Outbound
// bodies are scanned for these; a hit means a prompt escaped the process.
type marker struct {
	name     string
	fragment string
}

// leakMarkers mirrors the role-framing lines of the planner and validator
// prompts. Keep the fragments in sync with pkg/planner and pkg/validator
// when those prompts change.
func leakMarkers() []marker {
	return []marker{
		{name: "planner_prompt", fragment: "You are the planning component of a self-hosted personal assistant"},
		{name: "planner_prompt_header", fragment: "## Planning Instructions"},
		{name: "validator_prompt", fragment: "You are the independent safety validator"},
		{name: "validator_prompt_header", fragment: "## Safety Review Instructions"},
		{name: "path_restriction", fragment: "## Path Restriction"},
	}
}
