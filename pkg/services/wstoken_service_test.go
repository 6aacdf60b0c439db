package services

import (
	"context"
	"testing"
	"time"

	testdb "github.com/axisworks/axis/test/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWsTokenService_IssueAndConsume(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewWsTokenService(client.Client)
	ctx := context.Background()

	t.Run("issued token consumes exactly once", func(t *testing.T) {
		token, err := svc.Issue(ctx, "session-1", 30*time.Second)
		require.NoError(t, err)
		assert.Len(t, token, 64) // 32 bytes hex

		sessionID, err := svc.Consume(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "session-1", sessionID)

		_, err = svc.Consume(ctx, token)
		assert.ErrorIs(t, err, ErrConcurrentModification)
	})

	t.Run("never stores the raw token", func(t *testing.T) {
		token, err := svc.Issue(ctx, "session-2", 30*time.Second)
		require.NoError(t, err)

		rows, err := client.WsToken.Query().All(ctx)
		require.NoError(t, err)
		for _, row := range rows {
			assert.NotEqual(t, token, row.TokenHash)
		}
	})

	t.Run("unknown token returns ErrNotFound", func(t *testing.T) {
		_, err := svc.Consume(ctx, "deadbeef")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired token returns ErrNotFound", func(t *testing.T) {
		token, err := svc.Issue(ctx, "session-3", time.Millisecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		_, err = svc.Consume(ctx, token)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects empty inputs", func(t *testing.T) {
		_, err := svc.Issue(ctx, "", time.Second)
		assert.True(t, IsValidationError(err))

		_, err = svc.Consume(ctx, "")
		assert.True(t, IsValidationError(err))
	})
}

func TestWsTokenService_PurgeExpired(t *testing.T) {
	client := testdb.NewTestClient(t)
	svc := NewWsTokenService(client.Client)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "session-old", time.Millisecond)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "session-live", time.Hour)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	n, err := svc.PurgeExpired(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := client.WsToken.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}
