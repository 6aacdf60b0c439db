package gear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

func validManifest() *models.GearManifest {
	return &models.GearManifest{
		ID:          "files",
		Name:        "Files",
		Version:     "1.2.0",
		Description: "Workspace file operations.",
		Author:      "Axis Works",
		Origin:      models.OriginBuiltin,
		Actions: []models.GearAction{
			{
				Name:        "read_file",
				Description: "Read a file from the workspace.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{"type": "string"},
					},
					"required": []any{"path"},
				},
				Returns:   map[string]any{"type": "object"},
				RiskLevel: models.RiskLow,
			},
			{
				Name:        "write_file",
				Description: "Write a file into the workspace.",
				RiskLevel:   models.RiskMedium,
			},
		},
		Permissions: models.GearPermissions{
			Filesystem: models.FilesystemPermissions{
				Read:  []string{"**"},
				Write: []string{"docs/**"},
			},
		},
		Resources: models.GearResources{MaxMemoryMb: 128, TimeoutMs: 10000},
	}
}

func TestValidateManifestAcceptsWellFormed(t *testing.T) {
	require.NoError(t, ValidateManifest(validManifest()))
}

func TestValidateManifestAcceptsMinimalManifest(t *testing.T) {
	m := &models.GearManifest{
		ID:          "echo",
		Name:        "Echo",
		Version:     "0.1.0",
		Description: "Returns its input.",
		Author:      "Axis Works",
		Origin:      models.OriginUser,
		Actions: []models.GearAction{
			{Name: "echo", Description: "Echo the parameters back.", RiskLevel: models.RiskLow},
		},
	}
	require.NoError(t, ValidateManifest(m))
}

func TestValidateManifestAcceptsSemverForms(t *testing.T) {
	for _, v := range []string{"0.1.0", "1.0.0-rc.1", "2.3.4+build.7", "1.0.0-alpha.1+exp.sha.5114f85"} {
		m := validManifest()
		m.Version = v
		assert.NoError(t, ValidateManifest(m), v)
	}
}

func TestValidateManifestNil(t *testing.T) {
	require.Error(t, ValidateManifest(nil))
}

func TestValidateManifestRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *models.GearManifest)
		wantErr string
	}{
		{
			name:    "uppercase id",
			mutate:  func(m *models.GearManifest) { m.ID = "Files" },
			wantErr: "is invalid",
		},
		{
			name:    "id with path separator",
			mutate:  func(m *models.GearManifest) { m.ID = "files/evil" },
			wantErr: "is invalid",
		},
		{
			name:    "incomplete version",
			mutate:  func(m *models.GearManifest) { m.Version = "1.2" },
			wantErr: "is invalid",
		},
		{
			name:    "version with v prefix",
			mutate:  func(m *models.GearManifest) { m.Version = "v1.2.0" },
			wantErr: "is invalid",
		},
		{
			name:    "empty description",
			mutate:  func(m *models.GearManifest) { m.Description = "" },
			wantErr: "is invalid",
		},
		{
			name:    "unknown origin",
			mutate:  func(m *models.GearManifest) { m.Origin = "vendor" },
			wantErr: "is invalid",
		},
		{
			name:    "no actions",
			mutate:  func(m *models.GearManifest) { m.Actions = nil },
			wantErr: "is invalid",
		},
		{
			name:    "action name with dash",
			mutate:  func(m *models.GearManifest) { m.Actions[0].Name = "read-file" },
			wantErr: "is invalid",
		},
		{
			name:    "undeclared risk level",
			mutate:  func(m *models.GearManifest) { m.Actions[0].RiskLevel = "extreme" },
			wantErr: "is invalid",
		},
		{
			name:    "cpu above 100",
			mutate:  func(m *models.GearManifest) { m.Resources.MaxCpuPercent = 150 },
			wantErr: "is invalid",
		},
		{
			name:    "negative memory",
			mutate:  func(m *models.GearManifest) { m.Resources.MaxMemoryMb = -1 },
			wantErr: "is invalid",
		},
		{
			name:    "malformed checksum",
			mutate:  func(m *models.GearManifest) { m.Checksum = "zz-not-hex" },
			wantErr: "is invalid",
		},
		{
			name:    "lowercase environment variable",
			mutate:  func(m *models.GearManifest) { m.Permissions.Environment = []string{"path"} },
			wantErr: "is invalid",
		},
		{
			name:    "secret name starting with digit",
			mutate:  func(m *models.GearManifest) { m.Permissions.Secrets = []string{"9LIVES"} },
			wantErr: "is invalid",
		},
		{
			name: "duplicate action names",
			mutate: func(m *models.GearManifest) {
				dup := m.Actions[0]
				dup.Description = "Read it again."
				m.Actions = append(m.Actions, dup)
			},
			wantErr: "twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)
			err := ValidateManifest(m)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
