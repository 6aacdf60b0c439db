package sandbox

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

func TestFSShimResolve(t *testing.T) {
	shim := NewFSShim("/workspace", models.FilesystemPermissions{})

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{name: "relative", path: "docs/a.txt", want: "/workspace/docs/a.txt"},
		{name: "absolute inside root", path: "/workspace/docs/a.txt", want: "/workspace/docs/a.txt"},
		{name: "dots in name", path: "notes..md", want: "/workspace/notes..md"},
		{name: "empty", path: "", wantErr: "path is empty"},
		{name: "bare dot-dot", path: "..", wantErr: "dot-dot segment"},
		{name: "leading dot-dot", path: "../opt/x", wantErr: "dot-dot segment"},
		{name: "buried dot-dot", path: "docs/../../opt/x", wantErr: "dot-dot segment"},
		{name: "dot-dot that would normalize inside", path: "docs/../a.txt", wantErr: "dot-dot segment"},
		{name: "absolute escape", path: "/opt/x", wantErr: "escapes the sandbox root"},
		{name: "sibling prefix", path: "/workspace-other/x", wantErr: "escapes the sandbox root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shim.Resolve(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFSShimReadAndWriteAllowlists(t *testing.T) {
	shim := NewFSShim("/workspace", models.FilesystemPermissions{
		Read:  []string{"docs/**"},
		Write: []string{"out/**"},
	})

	_, err := shim.CheckRead("docs/a.txt")
	assert.NoError(t, err)

	// Write access implies read on the same patterns.
	_, err = shim.CheckRead("out/report.csv")
	assert.NoError(t, err)

	_, err = shim.CheckRead("private/key.pem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read allowlist")

	_, err = shim.CheckWrite("out/report.csv")
	assert.NoError(t, err)

	_, err = shim.CheckWrite("docs/a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write allowlist")
}

func TestFSShimCheckParams(t *testing.T) {
	shim := NewFSShim("/workspace", models.FilesystemPermissions{
		Read:  []string{"docs/**"},
		Write: []string{"out/**"},
	})

	assert.NoError(t, shim.CheckParams(map[string]any{
		"path":   "docs/a.txt",
		"output": "out/b.txt",
	}))

	// output is write-flavored: a read-only location fails it.
	err := shim.CheckParams(map[string]any{"output": "docs/a.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write allowlist")

	err = shim.CheckParams(map[string]any{"path": "../opt/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot-dot")

	// Non-string and absent values pass through untouched.
	assert.NoError(t, shim.CheckParams(map[string]any{"path": 42, "limit": "10"}))
	assert.NoError(t, shim.CheckParams(map[string]any{}))
}

func staticNetShim(domains []string, addrs []netip.Addr, lookupErr error) *NetShim {
	shim := NewNetShim(domains)
	shim.lookup = func(context.Context, string) ([]netip.Addr, error) {
		return addrs, lookupErr
	}
	return shim
}

func TestNetShimResolveHost(t *testing.T) {
	public := []netip.Addr{netip.MustParseAddr("93.184.216.34")}

	t.Run("allowed exact domain", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"}, public, nil)
		addrs, err := shim.ResolveHost(context.Background(), "api.example.com")
		require.NoError(t, err)
		assert.Equal(t, public, addrs)
	})

	t.Run("case and trailing dot normalized", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"}, public, nil)
		_, err := shim.ResolveHost(context.Background(), "API.Example.COM.")
		assert.NoError(t, err)
	})

	t.Run("glob domain", func(t *testing.T) {
		shim := staticNetShim([]string{"*.trusted.io"}, public, nil)
		_, err := shim.ResolveHost(context.Background(), "files.trusted.io")
		assert.NoError(t, err)
	})

	t.Run("outside allowlist", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"}, public, nil)
		_, err := shim.ResolveHost(context.Background(), "evil.example.net")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "domain allowlist")
	})

	t.Run("private address denied", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"},
			[]netip.Addr{netip.MustParseAddr("10.0.0.5")}, nil)
		_, err := shim.ResolveHost(context.Background(), "api.example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "private address")
	})

	t.Run("mixed addresses denied", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"},
			[]netip.Addr{netip.MustParseAddr("93.184.216.34"), netip.MustParseAddr("127.0.0.1")}, nil)
		_, err := shim.ResolveHost(context.Background(), "api.example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "private address")
	})

	t.Run("resolution failure", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"}, nil, errors.New("no such host"))
		_, err := shim.ResolveHost(context.Background(), "api.example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to resolve")
	})

	t.Run("no addresses", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"}, []netip.Addr{}, nil)
		_, err := shim.ResolveHost(context.Background(), "api.example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no addresses")
	})

	t.Run("empty host", func(t *testing.T) {
		shim := staticNetShim([]string{"api.example.com"}, public, nil)
		_, err := shim.ResolveHost(context.Background(), "")
		assert.Error(t, err)
	})
}

func TestNetShimCheckParams(t *testing.T) {
	public := []netip.Addr{netip.MustParseAddr("93.184.216.34")}
	shim := staticNetShim([]string{"api.example.com"}, public, nil)

	assert.NoError(t, shim.CheckParams(context.Background(), map[string]any{
		"url": "https://api.example.com/v1/things?q=1",
	}))

	err := shim.CheckParams(context.Background(), map[string]any{
		"url": "https://evil.example.net/steal",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain allowlist")

	// Host-typed keys other than url get the same gate.
	err = shim.CheckParams(context.Background(), map[string]any{"host": "evil.example.net"})
	assert.Error(t, err)

	assert.NoError(t, shim.CheckParams(context.Background(), map[string]any{"text": "no hosts here"}))
}

func TestExtractHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.example.com/path?q=1", "api.example.com"},
		{"http://api.example.com:8080/x", "api.example.com"},
		{"api.example.com:8080", "api.example.com"},
		{"HTTP://Example.COM", "example.com"},
		{"example.com", "example.com"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"  spaced.example.com  ", "spaced.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractHostname(tt.in), "input %q", tt.in)
	}
}

func TestIsForbiddenAddr(t *testing.T) {
	forbidden := []string{
		"127.0.0.1", "10.1.2.3", "192.168.1.1", "172.16.0.1",
		"169.254.1.1", "0.0.0.0", "0.1.2.3", "::1", "fe80::1",
	}
	for _, s := range forbidden {
		assert.True(t, isForbiddenAddr(netip.MustParseAddr(s)), "addr %s", s)
	}

	allowed := []string{"93.184.216.34", "8.8.8.8", "2606:4700::6810:84e5"}
	for _, s := range allowed {
		assert.False(t, isForbiddenAddr(netip.MustParseAddr(s)), "addr %s", s)
	}
}

func TestBudgetCharging(t *testing.T) {
	b := newBudget(10)
	assert.NoError(t, b.charge(5))
	assert.NoError(t, b.charge(5)) // exactly at the cap
	assert.False(t, b.exceeded())

	err := b.charge(1)
	require.Error(t, err)
	agentErr := models.AsAgentError(err)
	require.NotNil(t, agentErr)
	assert.Equal(t, models.CodeBudgetExceeded, agentErr.Code)
	assert.True(t, b.exceeded())
}

func TestBudgetUnlimited(t *testing.T) {
	b := newBudget(0)
	assert.NoError(t, b.charge(1<<30))
	assert.False(t, b.exceeded())
}

func TestBudgetNilIsUnlimited(t *testing.T) {
	var b *budget
	assert.NoError(t, b.charge(1<<30))
	assert.False(t, b.exceeded())
}
