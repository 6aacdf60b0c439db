package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/wstoken"
	"github.com/google/uuid"
)

// WsTokenService issues and consumes one-time WebSocket connection tokens.
// Browsers can't set Authorization headers on WebSocket upgrades, so the
// client first trades its bearer token for a short-lived connection token
// over HTTPS, then presents it as the first WebSocket frame. Only the
// SHA-256 of the token is stored.
type WsTokenService struct {
	client *ent.Client
}

// NewWsTokenService creates a new WsTokenService
func NewWsTokenService(client *ent.Client) *WsTokenService {
	return &WsTokenService{client: client}
}

// Issue mints a one-time token bound to a session id. The returned token is
// the only copy; the database keeps its hash.
func (s *WsTokenService) Issue(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	if sessionID == "" {
		return "", NewValidationError("session_id", "required")
	}
	if ttl <= 0 {
		return "", NewValidationError("ttl", "must be positive")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	_, err := s.client.WsToken.Create().
		SetID(uuid.New().String()).
		SetSessionID(sessionID).
		SetTokenHash(hashToken(token)).
		SetExpiresAt(time.Now().Add(ttl)).
		Save(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Consume spends a token exactly once and returns its session id.
// Unknown or expired tokens return ErrNotFound; a token already spent
// returns ErrConcurrentModification. The consume is a conditional update on
// consumed_at, so two racing connections can't both win.
func (s *WsTokenService) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", NewValidationError("token", "required")
	}

	row, err := s.client.WsToken.Query().
		Where(wstoken.TokenHashEQ(hashToken(token))).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return "", fmt.Errorf("ws token: %w", ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up token: %w", err)
	}
	if row.ConsumedAt != nil {
		return "", fmt.Errorf("ws token already consumed: %w", ErrConcurrentModification)
	}
	if time.Now().After(row.ExpiresAt) {
		return "", fmt.Errorf("ws token expired: %w", ErrNotFound)
	}

	n, err := s.client.WsToken.Update().
		Where(
			wstoken.IDEQ(row.ID),
			wstoken.ConsumedAtIsNil(),
		).
		SetConsumedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to consume token: %w", err)
	}
	if n == 0 {
		// Another connection spent it between the read and the update.
		return "", fmt.Errorf("ws token already consumed: %w", ErrConcurrentModification)
	}
	return row.SessionID, nil
}

// PurgeExpired deletes tokens past their expiry. Consumed rows are kept for
// the same horizon so reuse attempts stay distinguishable from unknown
// tokens while they age out.
func (s *WsTokenService) PurgeExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	n, err := s.client.WsToken.Delete().
		Where(wstoken.ExpiresAtLT(time.Now().Add(-olderThan))).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	return n, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
