package validator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/axisworks/axis/pkg/models"
)

// PlanHash returns the hex SHA-256 of the canonical JSON of a plan's
// executable content: the ordered steps' gear, action, parameters, and risk
// level. Identity fields (plan id, job id, step ids) and all free-form prose
// are excluded, so the same scheduled work hashes identically run after run.
func PlanHash(plan *models.ExecutionPlan) (string, error) {
	stripped := plan.Stripped()

	steps := make([]any, len(stripped.Steps))
	for i, s := range stripped.Steps {
		params := s.Parameters
		if params == nil {
			params = map[string]any{}
		}
		steps[i] = map[string]any{
			"gear":       s.Gear,
			"action":     s.Action,
			"parameters": params,
			"riskLevel":  string(s.RiskLevel),
		}
	}

	canonical, err := canonicalJSON(map[string]any{"steps": steps})
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize plan: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON renders a value deterministically: object keys sorted
// bytewise, strings NFC-normalized, and every number pushed through a single
// float64 round trip so 1 and 1.0 hash identically regardless of which
// decoder produced the value.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case float64:
		num, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("canonical json: %w", err)
		}
		buf.Write(num)
	case string:
		return writeCanonicalString(buf, t)
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canonical json: unexpected type %T", v)
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	escaped, err := json.Marshal(norm.NFC.String(s))
	if err != nil {
		return fmt.Errorf("canonical json: %w", err)
	}
	buf.Write(escaped)
	return nil
}
