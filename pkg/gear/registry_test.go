package gear

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
	testdb "github.com/axisworks/axis/test/database"
)

type fakeAudit struct {
	records []models.AuditRecord
}

func (f *fakeAudit) Record(_ context.Context, rec models.AuditRecord) {
	f.records = append(f.records, rec)
}

func (f *fakeAudit) byAction(action string) []models.AuditRecord {
	var out []models.AuditRecord
	for _, rec := range f.records {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

func testSandboxConfig(root string) config.SandboxConfig {
	return config.SandboxConfig{
		GearRoot:             root,
		DefaultTimeout:       30 * time.Second,
		DefaultMaxMemoryMb:   256,
		DefaultMaxCPUPercent: 50,
	}
}

func manifestFor(id string) *models.GearManifest {
	m := validManifest()
	m.ID = id
	return m
}

func writeEntry(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryInstall(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	writeEntry(t, root, "files/main.py", "print('hi')")

	m := manifestFor("files")
	inst, err := reg.Install(ctx, m, "files/main.py")
	require.NoError(t, err)

	assert.Len(t, inst.Checksum, 64)
	assert.True(t, inst.Enabled)
	assert.Equal(t, "files/main.py", inst.EntryPoint)
	assert.Equal(t, inst.Checksum, inst.Manifest.Checksum)

	// Declared resources win, unset ones fall back to host defaults.
	assert.Equal(t, 128, inst.Manifest.Resources.MaxMemoryMb)
	assert.Equal(t, 10000, inst.Manifest.Resources.TimeoutMs)
	assert.Equal(t, 50, inst.Manifest.Resources.MaxCpuPercent)
	assert.Zero(t, inst.Manifest.Resources.MaxNetworkBytesPerCall)

	// The caller's manifest is untouched.
	assert.Empty(t, m.Checksum)
	assert.Zero(t, m.Resources.MaxCpuPercent)

	row, err := client.Gear.Get(ctx, "files")
	require.NoError(t, err)
	assert.Equal(t, inst.Checksum, row.Checksum)
	assert.True(t, row.Enabled)
	assert.Equal(t, "files/main.py", row.EntryPoint)

	got, ok := reg.Lookup("files")
	require.True(t, ok)
	assert.Equal(t, inst.Checksum, got.Checksum)

	_, ok = reg.Lookup("ghost")
	assert.False(t, ok)
}

func TestRegistryInstallDefaultsAllResources(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	writeEntry(t, root, "bare/main.py", "pass")
	m := manifestFor("bare")
	m.Resources = models.GearResources{}

	inst, err := reg.Install(ctx, m, "bare/main.py")
	require.NoError(t, err)
	assert.Equal(t, 256, inst.Manifest.Resources.MaxMemoryMb)
	assert.Equal(t, 50, inst.Manifest.Resources.MaxCpuPercent)
	assert.Equal(t, 30000, inst.Manifest.Resources.TimeoutMs)
}

func TestRegistryInstallDuplicate(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	writeEntry(t, root, "dup/main.py", "pass")
	_, err := reg.Install(ctx, manifestFor("dup"), "dup/main.py")
	require.NoError(t, err)

	_, err = reg.Install(ctx, manifestFor("dup"), "dup/main.py")
	require.ErrorIs(t, err, ErrAlreadyInstalled)
}

func TestRegistryInstallRejectsInvalidManifest(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	m := manifestFor("broken")
	m.Version = "not-semver"
	_, err := reg.Install(ctx, m, "broken/main.py")
	require.Error(t, err)
	assert.ErrorContains(t, err, "is invalid")

	n, err := client.Gear.Query().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistryInstallChecksumDeclaration(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	t.Run("matching declared checksum", func(t *testing.T) {
		path := writeEntry(t, root, "pinned/main.py", "pinned content")
		sum, err := ComputeChecksum(path)
		require.NoError(t, err)

		m := manifestFor("pinned")
		m.Checksum = sum
		inst, err := reg.Install(ctx, m, "pinned/main.py")
		require.NoError(t, err)
		assert.Equal(t, sum, inst.Checksum)
	})

	t.Run("forged declared checksum", func(t *testing.T) {
		writeEntry(t, root, "forged/main.py", "other content")

		m := manifestFor("forged")
		m.Checksum = strings.Repeat("a", 64)
		_, err := reg.Install(ctx, m, "forged/main.py")
		require.Error(t, err)
		assert.ErrorContains(t, err, "declares checksum")
	})
}

func TestRegistryInstallRejectsEscapingEntryPoints(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	_, err := reg.Install(ctx, manifestFor("sneaky"), "../outside.py")
	require.Error(t, err)
	assert.ErrorContains(t, err, "dot-dot")

	_, err = reg.Install(ctx, manifestFor("sneaky"), "/etc/passwd")
	require.Error(t, err)
	assert.ErrorContains(t, err, "must be relative")
}

func TestRegistryDisableEnable(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	writeEntry(t, root, "files/main.py", "pass")
	_, err := reg.Install(ctx, manifestFor("files"), "files/main.py")
	require.NoError(t, err)

	require.NoError(t, reg.Disable(ctx, "files", "maintenance window"))

	inst, ok := reg.Lookup("files")
	require.True(t, ok)
	assert.False(t, inst.Enabled)
	assert.Equal(t, "maintenance window", inst.DisabledReason)

	manifests, err := reg.EnabledManifests(ctx)
	require.NoError(t, err)
	assert.Empty(t, manifests)

	_, ok = reg.GearPermissions(ctx, "files")
	assert.False(t, ok)

	row, err := client.Gear.Get(ctx, "files")
	require.NoError(t, err)
	assert.False(t, row.Enabled)
	require.NotNil(t, row.DisabledReason)
	assert.Equal(t, "maintenance window", *row.DisabledReason)

	require.NoError(t, reg.Enable(ctx, "files"))

	inst, ok = reg.Lookup("files")
	require.True(t, ok)
	assert.True(t, inst.Enabled)
	assert.Empty(t, inst.DisabledReason)

	row, err = client.Gear.Get(ctx, "files")
	require.NoError(t, err)
	assert.True(t, row.Enabled)
	assert.Nil(t, row.DisabledReason)

	assert.ErrorIs(t, reg.Disable(ctx, "ghost", "whatever"), ErrNotInstalled)
	assert.ErrorIs(t, reg.Enable(ctx, "ghost"), ErrNotInstalled)
}

func TestRegistryLoad(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	cfg := testSandboxConfig(root)

	seed := NewRegistry(client.Client, cfg, nil)
	writeEntry(t, root, "alpha/main.py", "a")
	writeEntry(t, root, "beta/main.py", "b")
	_, err := seed.Install(ctx, manifestFor("alpha"), "alpha/main.py")
	require.NoError(t, err)
	_, err = seed.Install(ctx, manifestFor("beta"), "beta/main.py")
	require.NoError(t, err)
	require.NoError(t, seed.Disable(ctx, "beta", "maintenance"))

	reg := NewRegistry(client.Client, cfg, nil)
	require.NoError(t, reg.Load(ctx))

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Manifest.ID)
	assert.True(t, list[0].Enabled)
	assert.Equal(t, "beta", list[1].Manifest.ID)
	assert.False(t, list[1].Enabled)
	assert.Equal(t, "maintenance", list[1].DisabledReason)

	// Resource defaults applied at install time survive the round trip.
	assert.Equal(t, 50, list[0].Manifest.Resources.MaxCpuPercent)

	manifests, err := reg.EnabledManifests(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "alpha", manifests[0].ID)
}

func TestRegistryCatalogAndPermissions(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	for _, id := range []string{"web", "files", "journal"} {
		writeEntry(t, root, id+"/main.py", id)
		m := manifestFor(id)
		if id == "web" {
			m.Permissions.Network.Domains = []string{"api.example.com", "*.example.org"}
		}
		_, err := reg.Install(ctx, m, id+"/main.py")
		require.NoError(t, err)
	}

	manifests, err := reg.EnabledManifests(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 3)
	assert.Equal(t, "files", manifests[0].ID)
	assert.Equal(t, "journal", manifests[1].ID)
	assert.Equal(t, "web", manifests[2].ID)

	perms, ok := reg.GearPermissions(ctx, "web")
	require.True(t, ok)
	assert.Equal(t, []string{"api.example.com", "*.example.org"}, perms.Network.Domains)

	_, ok = reg.GearPermissions(ctx, "ghost")
	assert.False(t, ok)

	require.NoError(t, reg.Disable(ctx, "web", "abuse report"))
	_, ok = reg.GearPermissions(ctx, "web")
	assert.False(t, ok)
}

func TestRegistryVerifyIntegrity(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	audit := &fakeAudit{}
	reg := NewRegistry(client.Client, testSandboxConfig(root), audit)

	entry := writeEntry(t, root, "files/main.py", "original")
	_, err := reg.Install(ctx, manifestFor("files"), "files/main.py")
	require.NoError(t, err)

	require.NoError(t, reg.VerifyIntegrity(ctx, "files"))

	require.NoError(t, os.WriteFile(entry, []byte("tampered"), 0o644))
	err = reg.VerifyIntegrity(ctx, "files")
	require.Error(t, err)

	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeChecksumMismatch, ae.Code)
	assert.False(t, ae.Retriable)

	inst, ok := reg.Lookup("files")
	require.True(t, ok)
	assert.False(t, inst.Enabled)
	assert.Equal(t, models.CodeChecksumMismatch, inst.DisabledReason)

	row, err := client.Gear.Get(ctx, "files")
	require.NoError(t, err)
	assert.False(t, row.Enabled)
	require.NotNil(t, row.DisabledReason)
	assert.Equal(t, models.CodeChecksumMismatch, *row.DisabledReason)

	recs := audit.byAction("gear_disabled")
	require.Len(t, recs, 1)
	assert.Equal(t, models.RiskCritical, recs[0].RiskLevel)
	assert.Equal(t, "files", recs[0].Target)

	// Restoring the original bytes does not re-enable the gear: later calls
	// fail with the same code without rehashing anything.
	require.NoError(t, os.WriteFile(entry, []byte("original"), 0o644))
	err = reg.VerifyIntegrity(ctx, "files")
	ae = models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeChecksumMismatch, ae.Code)
	assert.Len(t, audit.byAction("gear_disabled"), 1)
}

func TestRegistryVerifyIntegrityMissingEntryPoint(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	entry := writeEntry(t, root, "files/main.py", "original")
	_, err := reg.Install(ctx, manifestFor("files"), "files/main.py")
	require.NoError(t, err)

	require.NoError(t, os.Remove(entry))

	err = reg.VerifyIntegrity(ctx, "files")
	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeChecksumMismatch, ae.Code)

	inst, ok := reg.Lookup("files")
	require.True(t, ok)
	assert.False(t, inst.Enabled)
}

func TestRegistryVerifyIntegrityUnknownGear(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	err := reg.VerifyIntegrity(ctx, "ghost")
	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeNotFound, ae.Code)
}

func TestRegistryVerifyIntegrityAdministrativeDisable(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	reg := NewRegistry(client.Client, testSandboxConfig(root), nil)

	writeEntry(t, root, "files/main.py", "pass")
	_, err := reg.Install(ctx, manifestFor("files"), "files/main.py")
	require.NoError(t, err)
	require.NoError(t, reg.Disable(ctx, "files", "maintenance window"))

	err = reg.VerifyIntegrity(ctx, "files")
	ae := models.AsAgentError(err)
	require.NotNil(t, ae)
	assert.Equal(t, models.CodeValidation, ae.Code)
	assert.Contains(t, ae.Message, "maintenance window")
}

func TestRegistryInstallAudit(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	client := testdb.NewTestClient(t)
	audit := &fakeAudit{}
	reg := NewRegistry(client.Client, testSandboxConfig(root), audit)

	writeEntry(t, root, "files/main.py", "pass")
	inst, err := reg.Install(ctx, manifestFor("files"), "files/main.py")
	require.NoError(t, err)

	recs := audit.byAction("gear_install")
	require.Len(t, recs, 1)
	assert.Equal(t, "registry", recs[0].Actor)
	assert.Equal(t, "files", recs[0].Target)
	assert.Equal(t, inst.Checksum, recs[0].Details["checksum"])
}
