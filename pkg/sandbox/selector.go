package sandbox

import (
	"os/exec"

	"github.com/axisworks/axis/pkg/gear"
)

// Tier names an isolation level a gear can run behind.
type Tier string

const (
	// TierProcess runs the gear as a child process with a scrubbed
	// environment.
	TierProcess Tier = "process"
	// TierIsolate runs a registered builtin in-process, with no filesystem
	// or network reach at all.
	TierIsolate Tier = "isolate"
	// TierContainer runs the gear inside a locked-down container.
	TierContainer Tier = "container"
)

// selectTier picks the strongest isolation the host can offer this gear.
// Builtins with no filesystem or network permissions go to the isolate: they
// have no on-disk payload to containerize, only a stub entry point whose hash
// pins the behavior version. Everything else prefers a container when the
// runtime is available and falls back to a child process.
func (h *Host) selectTier(inst *gear.Installed) Tier {
	perms := inst.Manifest.Permissions
	if h.cfg.EnableIsolate && !perms.NeedsFilesystem() && !perms.NeedsNetwork() {
		h.mu.Lock()
		_, builtin := h.builtins[inst.Manifest.ID]
		h.mu.Unlock()
		if builtin {
			return TierIsolate
		}
	}
	if h.cfg.EnableContainer && h.dockerOK() {
		return TierContainer
	}
	return TierProcess
}

func (h *Host) dockerOK() bool {
	h.dockerOnce.Do(func() {
		_, err := exec.LookPath(h.cfg.DockerBinary)
		h.dockerFound = err == nil
	})
	return h.dockerFound
}
