package sandbox

import (
	"context"
	"os"
	"path/filepath"

	"github.com/axisworks/axis/pkg/gear"
	"github.com/axisworks/axis/pkg/models"
)

// SecretSource resolves a named secret to its plaintext value. The sandbox
// host never holds plaintext longer than it takes to write the file.
type SecretSource interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// materializeSecrets writes each secret the manifest declares into a private
// directory, one file per name, so sandboxes read secrets from disk instead
// of inheriting them through the environment. The caller removes the
// directory when the call ends.
func (h *Host) materializeSecrets(ctx context.Context, inst *gear.Installed) (string, map[string]string, error) {
	names := inst.Manifest.Permissions.Secrets
	if len(names) > 0 && h.secrets == nil {
		return "", nil, models.NewAgentErrorf(models.CodeValidation,
			"gear %q declares secrets but no vault is configured", inst.Manifest.ID)
	}

	base := h.cfg.TmpfsRoot
	if base == "" {
		base = os.TempDir()
	}
	dir, err := os.MkdirTemp(base, "axis-secrets-")
	if err != nil {
		return "", nil, err
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		os.RemoveAll(dir)
		return "", nil, err
	}

	paths := make(map[string]string, len(names))
	for _, name := range names {
		value, err := h.secrets.Get(ctx, name)
		if err != nil {
			os.RemoveAll(dir)
			return "", nil, models.NewAgentErrorf(models.CodeValidation,
				"secret %q is not provisioned: %v", name, err)
		}
		path := filepath.Join(dir, name)
		werr := os.WriteFile(path, value, 0o600)
		zero(value)
		if werr != nil {
			os.RemoveAll(dir)
			return "", nil, werr
		}
		paths[name] = path
	}
	return dir, paths, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
