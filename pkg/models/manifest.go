package models

// GearOrigin records how a gear entered the system.
type GearOrigin string

const (
	OriginBuiltin GearOrigin = "builtin"
	OriginUser    GearOrigin = "user"
	OriginJournal GearOrigin = "journal"
)

// GearAction declares one invocable action of a gear. Parameters and Returns
// are JSON-Schema documents.
type GearAction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Returns     map[string]any `json:"returns"`
	RiskLevel   RiskLevel      `json:"riskLevel"`
}

// FilesystemPermissions lists glob patterns the gear may read or write,
// relative to its sandbox root.
type FilesystemPermissions struct {
	Read  []string `json:"read,omitempty"`
	Write []string `json:"write,omitempty"`
}

// NetworkPermissions lists the domains and protocols the gear may reach.
type NetworkPermissions struct {
	Domains   []string `json:"domains,omitempty"`
	Protocols []string `json:"protocols,omitempty"`
}

// GearPermissions is the full capability declaration of a manifest.
type GearPermissions struct {
	Filesystem  FilesystemPermissions `json:"filesystem"`
	Network     NetworkPermissions    `json:"network"`
	Secrets     []string              `json:"secrets,omitempty"`
	Shell       bool                  `json:"shell,omitempty"`
	Environment []string              `json:"environment,omitempty"`
}

// NeedsFilesystem reports whether any filesystem capability is requested.
func (p GearPermissions) NeedsFilesystem() bool {
	return len(p.Filesystem.Read) > 0 || len(p.Filesystem.Write) > 0
}

// NeedsNetwork reports whether any network capability is requested.
func (p GearPermissions) NeedsNetwork() bool {
	return len(p.Network.Domains) > 0
}

// GearResources bounds a gear's runtime footprint. Zero values fall back to
// host defaults.
type GearResources struct {
	MaxMemoryMb            int   `json:"maxMemoryMb,omitempty"`
	MaxCpuPercent          int   `json:"maxCpuPercent,omitempty"`
	TimeoutMs              int   `json:"timeoutMs,omitempty"`
	MaxNetworkBytesPerCall int64 `json:"maxNetworkBytesPerCall,omitempty"`
}

// GearManifest is the immutable declaration of an installed plugin. It is
// validated against a JSON-Schema at install time, checksummed over the entry
// point, and frozen; a mutated package is caught by the checksum gate on its
// next execution.
type GearManifest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Author      string          `json:"author"`
	License     string          `json:"license,omitempty"`
	Origin      GearOrigin      `json:"origin"`
	Actions     []GearAction    `json:"actions"`
	Permissions GearPermissions `json:"permissions"`
	Resources   GearResources   `json:"resources"`
	Checksum    string          `json:"checksum"`
	Signature   string          `json:"signature,omitempty"`
}

// Action returns the named action declaration, if present.
func (m *GearManifest) Action(name string) (GearAction, bool) {
	for _, a := range m.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return GearAction{}, false
}
