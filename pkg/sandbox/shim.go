package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/axisworks/axis/pkg/models"
)

// pathParamKeys are the parameter names the pre-dispatch gate treats as
// filesystem paths; writeParamKeys is the subset held to the write
// allowlist. hostParamKeys get the network gate. The safety validator uses
// the same heuristics on plans; the host re-checks at the door because
// plans are not the only path here (schedules replay cached approvals).
var (
	pathParamKeys = []string{
		"path", "file", "filename", "filepath", "dir", "directory",
		"src", "source", "dest", "destination", "target", "output", "input",
	}
	writeParamKeys = map[string]bool{
		"dest": true, "destination": true, "target": true, "output": true,
	}
	hostParamKeys = []string{
		"url", "uri", "domain", "host", "hostname", "endpoint", "server", "address",
	}
)

// FSShim gates gear-supplied paths against a manifest's filesystem
// allowlists. A dot-dot at any segment is refused before normalization, the
// normalized path must stay inside the sandbox root, and the root-relative
// form must match a declared glob.
type FSShim struct {
	root  string
	read  []string
	write []string
}

func NewFSShim(root string, perms models.FilesystemPermissions) *FSShim {
	return &FSShim{root: filepath.Clean(root), read: perms.Read, write: perms.Write}
}

// Resolve normalizes a gear-supplied path against the sandbox root without
// consulting the allowlists.
func (s *FSShim) Resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("path is empty")
	}
	for _, seg := range strings.FieldsFunc(filepath.ToSlash(p), func(r rune) bool { return r == '/' }) {
		if seg == ".." {
			return "", fmt.Errorf("path %q contains a dot-dot segment", p)
		}
	}

	abs := p
	if !filepath.IsAbs(p) {
		abs = filepath.Join(s.root, p)
	}
	abs = filepath.Clean(abs)
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the sandbox root", p)
	}
	return abs, nil
}

// CheckRead resolves p and requires it to match a read or write glob (write
// access implies read on the same patterns).
func (s *FSShim) CheckRead(p string) (string, error) {
	abs, err := s.Resolve(p)
	if err != nil {
		return "", err
	}
	rel := s.relativize(abs)
	if matchAnyGlob(s.read, rel) || matchAnyGlob(s.write, rel) {
		return abs, nil
	}
	return "", fmt.Errorf("path %q is outside the gear's read allowlist", p)
}

// CheckWrite resolves p and requires it to match a write glob.
func (s *FSShim) CheckWrite(p string) (string, error) {
	abs, err := s.Resolve(p)
	if err != nil {
		return "", err
	}
	if matchAnyGlob(s.write, s.relativize(abs)) {
		return abs, nil
	}
	return "", fmt.Errorf("path %q is outside the gear's write allowlist", p)
}

// CheckParams runs every path-typed parameter through the gate.
// Write-flavored keys are held to the write allowlist, the rest to
// read-or-write.
func (s *FSShim) CheckParams(params map[string]any) error {
	for _, key := range pathParamKeys {
		raw, ok := params[key]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok || str == "" {
			continue
		}
		var err error
		if writeParamKeys[key] {
			_, err = s.CheckWrite(str)
		} else {
			_, err = s.CheckRead(str)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *FSShim) relativize(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func matchAnyGlob(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// NetShim gates outbound hostnames: the name must match the manifest's
// domain allowlist and every resolved address must land outside the private
// ranges, unconditionally. Resolution happens here so the verified
// addresses — not a second lookup — are what gets dialed.
type NetShim struct {
	domains []string

	// overridable in tests; lookup defaults to the system resolver and
	// denyAddr to the private-range policy.
	lookup   func(ctx context.Context, host string) ([]netip.Addr, error)
	denyAddr func(addr netip.Addr) bool
}

func NewNetShim(domains []string) *NetShim {
	return &NetShim{
		domains: domains,
		lookup: func(ctx context.Context, host string) ([]netip.Addr, error) {
			return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		},
		denyAddr: isForbiddenAddr,
	}
}

// ResolveHost checks host against the allowlist, resolves it, and returns
// the addresses that may be dialed.
func (s *NetShim) ResolveHost(ctx context.Context, host string) ([]netip.Addr, error) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return nil, errors.New("host is empty")
	}
	if !domainAllowed(s.domains, host) {
		return nil, fmt.Errorf("host %q is outside the gear's domain allowlist", host)
	}

	addrs, err := s.lookup(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
	}
	for _, addr := range addrs {
		if s.denyAddr(addr.Unmap()) {
			return nil, fmt.Errorf("host %q resolves to a private address", host)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("host %q resolved to no addresses", host)
	}
	return addrs, nil
}

// CheckParams runs every host-typed parameter through the gate.
func (s *NetShim) CheckParams(ctx context.Context, params map[string]any) error {
	for _, key := range hostParamKeys {
		raw, ok := params[key]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok || str == "" {
			continue
		}
		host := extractHostname(str)
		if host == "" {
			continue
		}
		if _, err := s.ResolveHost(ctx, host); err != nil {
			return err
		}
	}
	return nil
}

// extractHostname pulls a bare hostname out of a URL, host:port pair, or
// plain name.
func extractHostname(value string) string {
	v := strings.TrimSpace(value)
	if i := strings.Index(v, "://"); i >= 0 {
		v = v[i+3:]
	}
	if i := strings.IndexAny(v, "/?#"); i >= 0 {
		v = v[:i]
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		v = host
	}
	return strings.ToLower(strings.Trim(v, "[]"))
}

func domainAllowed(allowed []string, host string) bool {
	for _, pattern := range allowed {
		p := strings.ToLower(pattern)
		if p == host {
			return true
		}
		if ok, err := doublestar.Match(p, host); err == nil && ok {
			return true
		}
	}
	return false
}

// isForbiddenAddr refuses loopback, RFC1918, link-local, unspecified, and
// the 0.0.0.0/8 block.
func isForbiddenAddr(addr netip.Addr) bool {
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return true
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return true
	}
	if addr.Is4() && addr.As4()[0] == 0 {
		return true
	}
	return false
}

// budget meters one call's network bytes. The first breach latches.
type budget struct {
	max     int64
	used    atomic.Int64
	tripped atomic.Bool
}

func newBudget(maxBytes int64) *budget {
	return &budget{max: maxBytes}
}

// charge records n transferred bytes and errors once the cap is crossed.
func (b *budget) charge(n int64) error {
	if b == nil || b.max <= 0 {
		return nil
	}
	if b.used.Add(n) > b.max {
		b.tripped.Store(true)
		return models.NewAgentErrorf(models.CodeBudgetExceeded,
			"network byte budget of %d exceeded", b.max)
	}
	return nil
}

func (b *budget) exceeded() bool {
	return b != nil && b.tripped.Load()
}
