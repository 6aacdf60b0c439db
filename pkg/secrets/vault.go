// Package secrets is the encrypted vault behind gear secret staging. Values
// are sealed with AES-256-GCM under a master key supplied through the
// environment; the database only ever sees ciphertext.
package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/secret"
	"github.com/axisworks/axis/pkg/config"
)

const masterKeyBytes = 32

// Vault stores and resolves named secrets. It satisfies the sandbox host's
// secret source: Get returns a fresh plaintext buffer the caller owns.
type Vault struct {
	client *ent.Client
	aead   cipher.AEAD
}

// NewVault opens the vault with the master key named by the config. The key
// is base64 in the environment and never appears in config files.
func NewVault(client *ent.Client, cfg config.SecretsConfig) (*Vault, error) {
	if client == nil {
		panic("secrets.NewVault: client is required")
	}

	envName := cfg.MasterKeyEnv
	if envName == "" {
		envName = "AXIS_VAULT_KEY"
	}
	encoded := os.Getenv(envName)
	if encoded == "" {
		return nil, fmt.Errorf("vault master key is not set: export %s with a base64 %d-byte key", envName, masterKeyBytes)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vault master key from %s: %w", envName, err)
	}
	if len(key) != masterKeyBytes {
		return nil, fmt.Errorf("vault master key must be %d bytes, got %d", masterKeyBytes, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault cipher: %w", err)
	}
	return &Vault{client: client, aead: aead}, nil
}

// NewMasterKey mints a fresh base64 master key, for operators bootstrapping
// a deployment.
func NewMasterKey() (string, error) {
	key := make([]byte, masterKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Set stores or replaces a named secret. The name is bound into the seal as
// additional data, so one row's ciphertext cannot be replayed under another
// name.
func (v *Vault) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return fmt.Errorf("secret name is required")
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := v.aead.Seal(nil, nonce, value, []byte(name))

	n, err := v.client.Secret.Update().
		Where(secret.Name(name)).
		SetCiphertext(ciphertext).
		SetNonce(nonce).
		SetUpdatedAt(time.Now().UTC()).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to update secret %q: %w", name, err)
	}
	if n > 0 {
		return nil
	}

	_, err = v.client.Secret.Create().
		SetID(uuid.NewString()).
		SetName(name).
		SetCiphertext(ciphertext).
		SetNonce(nonce).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to store secret %q: %w", name, err)
	}
	return nil
}

// Get decrypts a named secret into a fresh buffer.
func (v *Vault) Get(ctx context.Context, name string) ([]byte, error) {
	row, err := v.client.Secret.Query().
		Where(secret.Name(name)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("secret %q is not stored", name)
		}
		return nil, fmt.Errorf("failed to load secret %q: %w", name, err)
	}

	plaintext, err := v.aead.Open(nil, row.Nonce, row.Ciphertext, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret %q: %w", name, err)
	}
	return plaintext, nil
}

// Delete removes a named secret.
func (v *Vault) Delete(ctx context.Context, name string) error {
	n, err := v.client.Secret.Delete().
		Where(secret.Name(name)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete secret %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("secret %q is not stored", name)
	}
	return nil
}

// Names lists the stored secret names, sorted.
func (v *Vault) Names(ctx context.Context) ([]string, error) {
	names, err := v.client.Secret.Query().
		Order(ent.Asc(secret.FieldName)).
		Select(secret.FieldName).
		Strings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	return names, nil
}
