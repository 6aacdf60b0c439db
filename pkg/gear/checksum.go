package gear

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ComputeChecksum returns the hex SHA-256 of the file at path, streaming so
// large entry points do not load into memory.
func ComputeChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open entry point: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash entry point: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// entryPath resolves an entry point declared relative to the gear root.
// Absolute paths and dot-dot segments are refused outright: a manifest must
// not be able to point the checksum gate at a file outside the root.
func entryPath(gearRoot, entry string) (string, error) {
	if entry == "" {
		return "", fmt.Errorf("entry point is required")
	}
	if filepath.IsAbs(entry) {
		return "", fmt.Errorf("entry point %q must be relative to the gear root", entry)
	}
	for _, seg := range strings.Split(filepath.ToSlash(entry), "/") {
		if seg == ".." {
			return "", fmt.Errorf("entry point %q contains a dot-dot segment", entry)
		}
	}

	resolved := filepath.Clean(filepath.Join(gearRoot, entry))
	root := filepath.Clean(gearRoot)
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", fmt.Errorf("entry point %q escapes the gear root", entry)
	}
	return resolved, nil
}
