package validator

import (
	"context"
	"errors"
	"time"

	"github.com/axisworks/axis/pkg/models"
	"github.com/axisworks/axis/pkg/services"
)

// ApprovalStoreAdapter wraps services.ApprovalStore to implement
// DecisionStore. The store speaks in ent rows and ErrNotFound; the validator
// wants StoredDecision and a nil miss.
type ApprovalStoreAdapter struct {
	store *services.ApprovalStore
}

// NewApprovalStoreAdapter creates a DecisionStore from an ApprovalStore.
func NewApprovalStoreAdapter(store *services.ApprovalStore) *ApprovalStoreAdapter {
	return &ApprovalStoreAdapter{store: store}
}

// Put records a verdict for a plan hash.
func (a *ApprovalStoreAdapter) Put(ctx context.Context, planHash string, res models.ValidationResult, source models.JobSource, ttl time.Duration) error {
	return a.store.Put(ctx, planHash, res, source, ttl)
}

// Fetch returns the stored decision for a plan hash, or (nil, nil) when no
// unexpired decision exists.
func (a *ApprovalStoreAdapter) Fetch(ctx context.Context, planHash string) (*StoredDecision, error) {
	row, err := a.store.Get(ctx, planHash)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &StoredDecision{
		Verdict:     models.Verdict(row.Verdict),
		OverallRisk: models.RiskLevel(row.OverallRisk),
		Reasoning:   row.Reasoning,
	}, nil
}
