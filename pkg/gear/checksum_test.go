package gear

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	content := []byte("print('ok')\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	sum, err := ComputeChecksum(path)
	require.NoError(t, err)

	want := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(want[:]), sum)
}

func TestComputeChecksumMissingFile(t *testing.T) {
	_, err := ComputeChecksum(filepath.Join(t.TempDir(), "missing.py"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to open entry point")
}

func TestEntryPath(t *testing.T) {
	root := "/var/lib/axis/gears"

	tests := []struct {
		name    string
		entry   string
		want    string
		wantErr string
	}{
		{name: "simple", entry: "files/main.py", want: "/var/lib/axis/gears/files/main.py"},
		{name: "nested", entry: "web/v2/entry.js", want: "/var/lib/axis/gears/web/v2/entry.js"},
		{name: "dots in file name", entry: "files/main..py", want: "/var/lib/axis/gears/files/main..py"},
		{name: "empty", entry: "", wantErr: "entry point is required"},
		{name: "absolute", entry: "/etc/passwd", wantErr: "must be relative"},
		{name: "leading dot-dot", entry: "../outside/main.py", wantErr: "dot-dot segment"},
		{name: "buried dot-dot", entry: "files/../../main.py", wantErr: "dot-dot segment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entryPath(root, tt.entry)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
