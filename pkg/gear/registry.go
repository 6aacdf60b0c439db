package gear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"dario.cat/mergo"

	"github.com/axisworks/axis/ent"
	entgear "github.com/axisworks/axis/ent/gear"
	"github.com/axisworks/axis/pkg/bus"
	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/models"
)

var (
	// ErrAlreadyInstalled is returned when installing over an existing gear id.
	ErrAlreadyInstalled = errors.New("gear already installed")

	// ErrNotInstalled is returned for lifecycle operations on unknown gears.
	ErrNotInstalled = errors.New("gear not installed")
)

// Installed is one registry row as the rest of the runtime consumes it.
type Installed struct {
	Manifest       *models.GearManifest
	EntryPoint     string // relative to the gear root
	Checksum       string
	Enabled        bool
	DisabledReason string
}

// Registry is the installed-gear store: Postgres rows as the source of truth
// with an in-memory mirror for the hot read paths (catalog rendering,
// permission checks, spawn gating). Mutations go through the database first
// and update the mirror on success.
type Registry struct {
	client   *ent.Client
	root     string
	defaults models.GearResources
	audit    bus.AuditSink

	mu        sync.RWMutex
	installed map[string]*Installed
}

// NewRegistry builds the registry. audit may be nil.
func NewRegistry(client *ent.Client, cfg config.SandboxConfig, audit bus.AuditSink) *Registry {
	if client == nil {
		panic("gear.NewRegistry: nil ent client")
	}
	return &Registry{
		client: client,
		root:   cfg.GearRoot,
		defaults: models.GearResources{
			MaxMemoryMb:   cfg.DefaultMaxMemoryMb,
			MaxCpuPercent: cfg.DefaultMaxCPUPercent,
			TimeoutMs:     int(cfg.DefaultTimeout.Milliseconds()),
		},
		audit:     audit,
		installed: make(map[string]*Installed),
	}
}

// Load hydrates the in-memory mirror from the database. Rows whose manifest
// no longer decodes are logged and skipped; the gear is simply absent until
// an operator repairs or reinstalls it.
func (r *Registry) Load(ctx context.Context) error {
	rows, err := r.client.Gear.Query().All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load gear registry: %w", err)
	}

	installed := make(map[string]*Installed, len(rows))
	for _, row := range rows {
		m, err := manifestFromMap(row.Manifest)
		if err != nil {
			slog.Error("Skipping gear with undecodable manifest", "gear_id", row.ID, "error", err)
			continue
		}
		installed[row.ID] = &Installed{
			Manifest:       m,
			EntryPoint:     row.EntryPoint,
			Checksum:       row.Checksum,
			Enabled:        row.Enabled,
			DisabledReason: derefString(row.DisabledReason),
		}
	}

	r.mu.Lock()
	r.installed = installed
	r.mu.Unlock()

	slog.Info("Gear registry loaded", "gears", len(installed))
	return nil
}

// Install validates a manifest, checksums its entry point, applies resource
// defaults, and freezes the result into the registry. The entry point is a
// path relative to the gear root and must already be on disk.
func (r *Registry) Install(ctx context.Context, m *models.GearManifest, entry string) (*Installed, error) {
	if err := ValidateManifest(m); err != nil {
		return nil, err
	}

	path, err := entryPath(r.root, entry)
	if err != nil {
		return nil, err
	}
	sum, err := ComputeChecksum(path)
	if err != nil {
		return nil, err
	}
	if m.Checksum != "" && m.Checksum != sum {
		return nil, fmt.Errorf("manifest %q declares checksum %s but the entry point hashes to %s",
			m.ID, m.Checksum, sum)
	}

	frozen := *m
	frozen.Checksum = sum
	if err := mergo.Merge(&frozen.Resources, r.defaults); err != nil {
		return nil, fmt.Errorf("failed to apply resource defaults: %w", err)
	}

	manifestMap, err := manifestToMap(&frozen)
	if err != nil {
		return nil, err
	}

	_, err = r.client.Gear.Create().
		SetID(frozen.ID).
		SetName(frozen.Name).
		SetVersion(frozen.Version).
		SetOrigin(entgear.Origin(frozen.Origin)).
		SetManifest(manifestMap).
		SetChecksum(sum).
		SetEntryPoint(entry).
		SetEnabled(true).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, frozen.ID)
		}
		return nil, fmt.Errorf("failed to store gear %q: %w", frozen.ID, err)
	}

	inst := &Installed{
		Manifest:   &frozen,
		EntryPoint: entry,
		Checksum:   sum,
		Enabled:    true,
	}
	r.mu.Lock()
	r.installed[frozen.ID] = inst
	r.mu.Unlock()

	slog.Info("Gear installed",
		"gear_id", frozen.ID, "version", frozen.Version,
		"origin", frozen.Origin, "actions", len(frozen.Actions))
	r.recordAudit(ctx, "gear_install", models.RiskMedium, frozen.ID, map[string]any{
		"version":  frozen.Version,
		"origin":   string(frozen.Origin),
		"checksum": sum,
	})

	return snapshot(inst), nil
}

// Disable administratively disables a gear. The row and mirror entry stay so
// the reason remains visible; execution refuses disabled gears.
func (r *Registry) Disable(ctx context.Context, id, reason string) error {
	if err := r.setEnabled(ctx, id, false, reason); err != nil {
		return err
	}
	slog.Warn("Gear disabled", "gear_id", id, "reason", reason)
	r.recordAudit(ctx, "gear_disabled", models.RiskMedium, id, map[string]any{"reason": reason})
	return nil
}

// Enable re-enables a disabled gear. The checksum gate still runs on the
// next execution, so re-enabling a tampered gear only lasts until then.
func (r *Registry) Enable(ctx context.Context, id string) error {
	if err := r.setEnabled(ctx, id, true, ""); err != nil {
		return err
	}
	slog.Info("Gear enabled", "gear_id", id)
	r.recordAudit(ctx, "gear_enabled", models.RiskMedium, id, nil)
	return nil
}

func (r *Registry) setEnabled(ctx context.Context, id string, enabled bool, reason string) error {
	upd := r.client.Gear.UpdateOneID(id).
		SetEnabled(enabled).
		SetUpdatedAt(time.Now().UTC())
	if enabled {
		upd.ClearDisabledReason()
	} else {
		upd.SetDisabledReason(reason)
	}
	if _, err := upd.Save(ctx); err != nil {
		if ent.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotInstalled, id)
		}
		return fmt.Errorf("failed to update gear %q: %w", id, err)
	}

	r.mu.Lock()
	if inst, ok := r.installed[id]; ok {
		inst.Enabled = enabled
		inst.DisabledReason = reason
	}
	r.mu.Unlock()
	return nil
}

// Lookup returns the registry entry for a gear id, enabled or not.
func (r *Registry) Lookup(id string) (*Installed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.installed[id]
	if !ok {
		return nil, false
	}
	return snapshot(inst), true
}

// List returns every installed gear sorted by id.
func (r *Registry) List() []*Installed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Installed, 0, len(r.installed))
	for _, inst := range r.installed {
		out = append(out, snapshot(inst))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Manifest.ID < out[j].Manifest.ID })
	return out
}

// EnabledManifests returns the manifests of every enabled gear sorted by id:
// the planner's catalog source.
func (r *Registry) EnabledManifests(ctx context.Context) ([]*models.GearManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.GearManifest, 0, len(r.installed))
	for _, inst := range r.installed {
		if inst.Enabled {
			out = append(out, inst.Manifest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GearPermissions returns the declared capabilities of an enabled gear: the
// validator's permission source. Disabled gears read as unknown so plans
// referencing them come back for revision instead of executing.
func (r *Registry) GearPermissions(ctx context.Context, gearID string) (*models.GearPermissions, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.installed[gearID]
	if !ok || !inst.Enabled {
		return nil, false
	}
	perms := inst.Manifest.Permissions
	return &perms, true
}

// VerifyIntegrity is the pre-spawn checksum gate: it recomputes the entry
// point hash and compares it to the frozen checksum. A mismatch (or an entry
// point that cannot be read) disables the gear and fails with
// CHECKSUM_MISMATCH; later calls fail the same way without touching disk.
func (r *Registry) VerifyIntegrity(ctx context.Context, id string) error {
	inst, ok := r.Lookup(id)
	if !ok {
		return models.NewAgentErrorf(models.CodeNotFound, "gear %q is not installed", id)
	}
	if !inst.Enabled {
		if inst.DisabledReason == models.CodeChecksumMismatch {
			return models.NewAgentErrorf(models.CodeChecksumMismatch,
				"gear %q is disabled: entry point checksum mismatch", id)
		}
		return models.NewAgentErrorf(models.CodeValidation,
			"gear %q is disabled: %s", id, inst.DisabledReason)
	}

	path, err := entryPath(r.root, inst.EntryPoint)
	if err != nil {
		return models.NewAgentErrorf(models.CodeValidation, "gear %q: %v", id, err)
	}

	sum, err := ComputeChecksum(path)
	if err != nil {
		return r.failIntegrity(ctx, id, inst.Checksum, "", err)
	}
	if sum != inst.Checksum {
		return r.failIntegrity(ctx, id, inst.Checksum, sum, nil)
	}
	return nil
}

func (r *Registry) failIntegrity(ctx context.Context, id, expected, actual string, cause error) error {
	slog.Error("Gear failed the integrity gate",
		"gear_id", id, "expected", expected, "actual", actual, "error", cause)

	if err := r.setEnabled(ctx, id, false, models.CodeChecksumMismatch); err != nil {
		slog.Error("Failed to disable tampered gear", "gear_id", id, "error", err)
	}
	r.recordAudit(ctx, "gear_disabled", models.RiskCritical, id, map[string]any{
		"reason":   models.CodeChecksumMismatch,
		"expected": expected,
		"actual":   actual,
	})

	return models.NewAgentErrorf(models.CodeChecksumMismatch,
		"gear %q entry point does not match its installed checksum", id)
}

func (r *Registry) recordAudit(ctx context.Context, action string, risk models.RiskLevel, target string, details map[string]any) {
	if r.audit == nil {
		return
	}
	r.audit.Record(ctx, models.AuditRecord{
		Actor:     "registry",
		Action:    action,
		RiskLevel: risk,
		Target:    target,
		Details:   details,
	})
}

// snapshot copies an entry so callers cannot race mutations of the mirror.
// The manifest pointer is shared: manifests are frozen at install time.
func snapshot(inst *Installed) *Installed {
	cp := *inst
	return &cp
}

func manifestToMap(m *models.GearManifest) (map[string]interface{}, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return out, nil
}

func manifestFromMap(m map[string]interface{}) (*models.GearManifest, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	var out models.GearManifest
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &out, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
