// Package sandbox is the gear execution host. Every action runs behind one
// of three isolation tiers — child process, in-process builtin, or container
// — and talks to the host over a newline-delimited JSON wire where every
// frame that resolves a request carries an HMAC keyed per sandbox instance.
// The host gates execution on the registry's checksum, pre-validates
// path- and host-typed parameters against the manifest's capability
// declarations, meters network bytes through a per-call egress proxy, and
// stamps authoritative provenance on every result.
package sandbox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/axisworks/axis/pkg/signing"
)

const (
	frameTypeProgress = "progress"

	// hmacKeyBytes sizes the per-instance frame key.
	hmacKeyBytes = 32

	// maxFrameBytes bounds one wire line. Larger payloads belong in the
	// workspace, not on stdout.
	maxFrameBytes = 1 << 20
)

// requestFrame is one host-to-plugin action invocation.
type requestFrame struct {
	CorrelationID string         `json:"correlationId"`
	Action        string         `json:"action"`
	Parameters    map[string]any `json:"parameters"`
	HMAC          string         `json:"hmac,omitempty"`
}

// pluginFrame is anything a plugin writes back: the response that resolves
// the pending request, or an unsolicited progress frame.
type pluginFrame struct {
	Type          string         `json:"type,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Result        map[string]any `json:"result,omitempty"`
	Error         *frameError    `json:"error,omitempty"`
	Percent       float64        `json:"percent,omitempty"`
	Message       string         `json:"message,omitempty"`
	HMAC          string         `json:"hmac,omitempty"`
}

func (f *pluginFrame) isProgress() bool { return f.Type == frameTypeProgress }

// frameError is the structured failure a plugin may return in place of a
// result.
type frameError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// newHMACKey generates a fresh per-instance frame key.
func newHMACKey() ([]byte, error) {
	key := make([]byte, hmacKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate frame key: %w", err)
	}
	return key, nil
}

// objectDigest is the base64 HMAC-SHA256 over the canonical JSON of a frame
// object. Callers strip the hmac field first: the signature covers exactly
// the fields the other side sent, canonicalized, so byte-level formatting
// differences never matter.
func objectDigest(key []byte, obj map[string]any) (string, error) {
	canonical, err := signing.CanonicalJSON(obj)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize frame: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// marshalSigned renders a frame as one wire line (no trailing newline) with
// its hmac field filled in.
func marshalSigned(key []byte, frame any) ([]byte, error) {
	raw, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	delete(obj, "hmac")

	sig, err := objectDigest(key, obj)
	if err != nil {
		return nil, err
	}
	obj["hmac"] = sig

	line, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return line, nil
}

// verifyObject checks the signature of a decoded inbound frame.
func verifyObject(key []byte, obj map[string]any, sig string) bool {
	if sig == "" {
		return false
	}
	cp := make(map[string]any, len(obj))
	for k, v := range obj {
		cp[k] = v
	}
	delete(cp, "hmac")

	want, err := objectDigest(key, cp)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(want), []byte(sig))
}
