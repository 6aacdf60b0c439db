package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/models"
)

// fakeVault hands out a fresh buffer per read, like a real vault decrypting
// on demand.
type fakeVault struct {
	values map[string]string
}

func (f *fakeVault) Get(_ context.Context, name string) ([]byte, error) {
	v, ok := f.values[name]
	if !ok {
		return nil, fmt.Errorf("no secret named %q", name)
	}
	return []byte(v), nil
}

func secretsHost(t *testing.T, vault SecretSource) *Host {
	t.Helper()
	return &Host{
		cfg:     config.SandboxConfig{TmpfsRoot: t.TempDir()},
		secrets: vault,
	}
}

func withSecrets(names ...string) *gear.Installed {
	return &gear.Installed{
		Manifest: &models.GearManifest{
			ID:          "mailer",
			Permissions: models.GearPermissions{Secrets: names},
		},
	}
}

func TestMaterializeSecrets(t *testing.T) {
	h := secretsHost(t, &fakeVault{values: map[string]string{
		"api_key": "s3cr3t",
		"token":   "t0k",
	}})

	dir, paths, err := h.materializeSecrets(context.Background(), withSecrets("api_key", "token"))
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	assert.True(t, strings.HasPrefix(filepath.Base(dir), "axis-secrets-"))
	assert.Equal(t, h.cfg.TmpfsRoot, filepath.Dir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	require.Len(t, paths, 2)
	for name, want := range map[string]string{"api_key": "s3cr3t", "token": "t0k"} {
		path := paths[name]
		require.Equal(t, filepath.Join(dir, name), path)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	}
}

func TestMaterializeSecretsMissingSecret(t *testing.T) {
	h := secretsHost(t, &fakeVault{values: map[string]string{"api_key": "x"}})

	_, _, err := h.materializeSecrets(context.Background(), withSecrets("api_key", "ghost"))
	require.Error(t, err)

	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeValidation, agentErr.Code)
	assert.Contains(t, agentErr.Message, `secret "ghost" is not provisioned`)

	// Nothing staged survives a failure.
	entries, err := os.ReadDir(h.cfg.TmpfsRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterializeSecretsWithoutVault(t *testing.T) {
	h := secretsHost(t, nil)

	_, _, err := h.materializeSecrets(context.Background(), withSecrets("api_key"))
	require.Error(t, err)

	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeValidation, agentErr.Code)
	assert.Contains(t, agentErr.Message, "no vault is configured")
}

func TestMaterializeSecretsEmptyDeclaration(t *testing.T) {
	// The container tier stages its frame key here even when the gear
	// declares no secrets, so an empty declaration still yields a directory.
	h := secretsHost(t, nil)

	dir, paths, err := h.materializeSecrets(context.Background(), withSecrets())
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	assert.DirExists(t, dir)
	assert.Empty(t, paths)
}
