package secrets

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/ent/secret"
	"github.com/axisworks/axis/pkg/config"
	testdb "github.com/axisworks/axis/test/database"
)

func setMasterKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)
	t.Setenv("AXIS_VAULT_KEY", encoded)
	return encoded
}

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	setMasterKey(t)
	client := testdb.NewTestClient(t)
	v, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
	require.NoError(t, err)
	return v
}

func TestVaultSetGetRoundTrip(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Set(ctx, "api_key", []byte("s3cr3t")))

	got, err := v.Get(ctx, "api_key")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cr3t"), got)
}

func TestVaultSetReplacesValue(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Set(ctx, "api_key", []byte("old")))
	require.NoError(t, v.Set(ctx, "api_key", []byte("new")))

	got, err := v.Get(ctx, "api_key")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)

	names, err := v.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"api_key"}, names)
}

func TestVaultStoresOnlyCiphertext(t *testing.T) {
	setMasterKey(t)
	client := testdb.NewTestClient(t)
	v, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
	require.NoError(t, err)
	ctx := context.Background()

	plaintext := []byte("hunter2-hunter2-hunter2")
	require.NoError(t, v.Set(ctx, "password", plaintext))

	row, err := client.Secret.Query().Where(secret.Name("password")).Only(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(row.Ciphertext), "hunter2")
	assert.NotEqual(t, plaintext, row.Ciphertext)
	assert.Len(t, row.Nonce, 12)
}

func TestVaultGetMissing(t *testing.T) {
	v := newTestVault(t)

	_, err := v.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `secret "ghost" is not stored`)
}

func TestVaultRejectsCrossNameReplay(t *testing.T) {
	setMasterKey(t)
	client := testdb.NewTestClient(t)
	v, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, v.Set(ctx, "prod_key", []byte("prod-value")))
	require.NoError(t, v.Set(ctx, "dev_key", []byte("dev-value")))

	// Splice prod's sealed bytes under dev's name.
	prod, err := client.Secret.Query().Where(secret.Name("prod_key")).Only(ctx)
	require.NoError(t, err)
	_, err = client.Secret.Update().
		Where(secret.Name("dev_key")).
		SetCiphertext(prod.Ciphertext).
		SetNonce(prod.Nonce).
		Save(ctx)
	require.NoError(t, err)

	_, err = v.Get(ctx, "dev_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt")
}

func TestVaultWrongMasterKeyFailsDecryption(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	setMasterKey(t)
	v1, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
	require.NoError(t, err)
	require.NoError(t, v1.Set(ctx, "api_key", []byte("s3cr3t")))

	// Reopen under a different key.
	setMasterKey(t)
	v2, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
	require.NoError(t, err)

	_, err = v2.Get(ctx, "api_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt")
}

func TestVaultDelete(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Set(ctx, "api_key", []byte("x")))
	require.NoError(t, v.Delete(ctx, "api_key"))

	_, err := v.Get(ctx, "api_key")
	assert.Error(t, err)

	err = v.Delete(ctx, "api_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not stored")
}

func TestVaultNamesSorted(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.Set(ctx, "zeta", []byte("z")))
	require.NoError(t, v.Set(ctx, "alpha", []byte("a")))
	require.NoError(t, v.Set(ctx, "mid", []byte("m")))

	names, err := v.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestNewVaultKeyValidation(t *testing.T) {
	client := testdb.NewTestClient(t)

	t.Run("missing", func(t *testing.T) {
		t.Setenv("AXIS_VAULT_KEY", "")
		_, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "master key is not set")
	})

	t.Run("not base64", func(t *testing.T) {
		t.Setenv("AXIS_VAULT_KEY", "%%%not-base64%%%")
		_, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode")
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Setenv("AXIS_VAULT_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		_, err := NewVault(client.Client, config.SecretsConfig{MasterKeyEnv: "AXIS_VAULT_KEY"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be 32 bytes")
	})

	t.Run("default env name", func(t *testing.T) {
		setMasterKey(t)
		_, err := NewVault(client.Client, config.SecretsConfig{})
		assert.NoError(t, err)
	})
}

func TestNewMasterKey(t *testing.T) {
	encoded, err := NewMasterKey()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	second, err := NewMasterKey()
	require.NoError(t, err)
	assert.NotEqual(t, encoded, second)
}
