package models

import "time"

// AuditRecord is one append-only entry in the audit log. Every router
// dispatch, verdict, plugin execution, and administrative action produces one.
type AuditRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	RiskLevel RiskLevel      `json:"riskLevel"`
	Target    string         `json:"target,omitempty"`
	JobID     string         `json:"jobId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
