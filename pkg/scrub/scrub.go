// Package scrub redacts credential-shaped substrings from outbound response
// bodies and detects fragments of internal system prompts that must never
// reach a client. The gateway runs every buffered JSON/text response through
// a Scrubber before it leaves the process.
package scrub

import "strings"

// Scrubber holds the compiled redaction rules and leak markers. Compile once
// at startup and share; all methods are safe for concurrent use.
type Scrubber struct {
	rules   []rule
	markers []marker
}

// New returns a scrubber with the builtin rule set.
func New() *Scrubber {
	return &Scrubber{
		rules:   builtinRules(),
		markers: leakMarkers(),
	}
}

// Redact replaces credential-shaped substrings with [REDACTED:<class>] and
// reports the names of the rules that fired. Bodies with no findings come
// back unchanged.
func (s *Scrubber) Redact(body string) (string, []string) {
	if body == "" {
		return body, nil
	}
	var fired []string
	for _, r := range s.rules {
		if !r.re.MatchString(body) {
			continue
		}
		body = r.re.ReplaceAllString(body, r.replacement)
		fired = append(fired, r.name)
	}
	return body, fired
}

// DetectLeaks reports which internal prompt markers appear in body. The body
// is never modified here: rewriting a leak would hide the incident, and the
// caller's job is to log and audit it.
func (s *Scrubber) DetectLeaks(body string) []string {
	var found []string
	for _, m := range s.markers {
		if strings.Contains(body, m.fragment) {
			found = append(found, m.name)
		}
	}
	return found
}
