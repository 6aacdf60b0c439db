package services

import (
	"context"
	"fmt"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/approvaldecision"
	"github.com/axisworks/axis/pkg/models"
	"github.com/google/uuid"
)

// ApprovalStore is the validator's durable approval cache: verdicts for
// scheduled plans keyed by the canonical hash of the stripped plan. The
// validator pairs it with an in-memory TTL cache; this store is the
// write-through layer that survives restarts.
type ApprovalStore struct {
	client *ent.Client
}

// NewApprovalStore creates a new ApprovalStore
func NewApprovalStore(client *ent.Client) *ApprovalStore {
	return &ApprovalStore{client: client}
}

// Put records a verdict for a plan hash, replacing any previous decision for
// the same hash.
func (s *ApprovalStore) Put(ctx context.Context, planHash string, res models.ValidationResult, source models.JobSource, ttl time.Duration) error {
	if planHash == "" {
		return NewValidationError("plan_hash", "required")
	}
	if ttl <= 0 {
		return NewValidationError("ttl", "must be positive")
	}

	expires := time.Now().Add(ttl)
	n, err := s.client.ApprovalDecision.Update().
		Where(approvaldecision.PlanHashEQ(planHash)).
		SetVerdict(string(res.Verdict)).
		SetOverallRisk(string(res.OverallRisk)).
		SetSource(string(source)).
		SetReasoning(res.Reasoning).
		SetExpiresAt(expires).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to update approval decision: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err = s.client.ApprovalDecision.Create().
		SetID(uuid.New().String()).
		SetPlanHash(planHash).
		SetVerdict(string(res.Verdict)).
		SetOverallRisk(string(res.OverallRisk)).
		SetSource(string(source)).
		SetReasoning(res.Reasoning).
		SetExpiresAt(expires).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			// Lost a create race on the unique hash; the other writer's
			// decision stands.
			return nil
		}
		return fmt.Errorf("failed to store approval decision: %w", err)
	}
	return nil
}

// Get returns the unexpired decision for a plan hash, or ErrNotFound.
func (s *ApprovalStore) Get(ctx context.Context, planHash string) (*ent.ApprovalDecision, error) {
	if planHash == "" {
		return nil, NewValidationError("plan_hash", "required")
	}

	row, err := s.client.ApprovalDecision.Query().
		Where(approvaldecision.PlanHashEQ(planHash)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("approval decision: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get approval decision: %w", err)
	}
	if time.Now().After(row.ExpiresAt) {
		return nil, fmt.Errorf("approval decision expired: %w", ErrNotFound)
	}
	return row, nil
}

// PurgeExpired deletes decisions past their expiry.
func (s *ApprovalStore) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.client.ApprovalDecision.Delete().
		Where(approvaldecision.ExpiresAtLT(time.Now())).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge approval decisions: %w", err)
	}
	return n, nil
}
