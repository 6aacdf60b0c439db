package validator

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/axisworks/axis/pkg/models"
)

//go:embed rules.yaml
var rulesYAML []byte

// PermissionSource exposes the declared capabilities of installed gears.
// Capability lookups read trusted registry state, unlike anything arriving
// in a validate.request payload, so they do not breach the information
// barrier.
type PermissionSource interface {
	GearPermissions(ctx context.Context, gearID string) (*models.GearPermissions, bool)
}

// ruleDoc is the YAML shape of the embedded rule definitions.
type ruleDoc struct {
	Categories []categoryRule `yaml:"categories"`
	HardFloors []floorRule    `yaml:"hard_floors"`
	Filesystem struct {
		PathKeys []string `yaml:"path_keys"`
	} `yaml:"filesystem"`
	Network struct {
		HostKeys []string `yaml:"host_keys"`
	} `yaml:"network"`
	Composite struct {
		MinSteps int    `yaml:"min_steps"`
		MinRisk  string `yaml:"min_risk"`
	} `yaml:"composite"`
}

type categoryRule struct {
	Name    string   `yaml:"name"`
	Risk    string   `yaml:"risk"`
	Verdict string   `yaml:"verdict"`
	Actions []string `yaml:"actions"`
	Phrases []string `yaml:"phrases"`
}

type floorRule struct {
	Name    string   `yaml:"name"`
	Reason  string   `yaml:"reason"`
	Gears   []string `yaml:"gears"`
	Actions []string `yaml:"actions"`
}

// compiledCategory is a categoryRule with validated enums, validated globs,
// and pre-lowercased phrases.
type compiledCategory struct {
	name    string
	risk    models.RiskLevel
	verdict models.Verdict
	actions []string
	phrases []string
}

// RuleEngine is the always-available evaluation mode: deterministic per-step
// category checks, hard approval floors, workspace containment, and network
// gating against manifest allowlists.
type RuleEngine struct {
	categories []compiledCategory
	floors     []floorRule
	pathKeys   map[string]bool
	hostKeys   map[string]bool

	compositeMinSteps int
	compositeMinRisk  models.RiskLevel

	workspaceRoot string
	perms         PermissionSource
}

// NewRuleEngine parses the embedded rule document. perms may be nil, which
// disables the manifest-allowlist network check (private-range denial still
// applies).
func NewRuleEngine(workspaceRoot string, perms PermissionSource) (*RuleEngine, error) {
	var doc ruleDoc
	if err := yaml.Unmarshal(rulesYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded rules: %w", err)
	}

	e := &RuleEngine{
		floors:            doc.HardFloors,
		pathKeys:          make(map[string]bool, len(doc.Filesystem.PathKeys)),
		hostKeys:          make(map[string]bool, len(doc.Network.HostKeys)),
		compositeMinSteps: doc.Composite.MinSteps,
		compositeMinRisk:  models.RiskLevel(doc.Composite.MinRisk),
		workspaceRoot:     filepath.Clean(workspaceRoot),
		perms:             perms,
	}
	if !e.compositeMinRisk.Valid() {
		e.compositeMinRisk = models.RiskMedium
	}

	for _, k := range doc.Filesystem.PathKeys {
		e.pathKeys[strings.ToLower(k)] = true
	}
	for _, k := range doc.Network.HostKeys {
		e.hostKeys[strings.ToLower(k)] = true
	}

	for _, c := range doc.Categories {
		risk := models.RiskLevel(c.Risk)
		verdict := models.Verdict(c.Verdict)
		if !risk.Valid() || !verdict.Valid() {
			slog.Error("Skipping rule category with invalid risk or verdict",
				"category", c.Name, "risk", c.Risk, "verdict", c.Verdict)
			continue
		}
		cc := compiledCategory{name: c.Name, risk: risk, verdict: verdict}
		for _, a := range c.Actions {
			if !doublestar.ValidatePattern(a) {
				slog.Error("Skipping invalid action pattern", "category", c.Name, "pattern", a)
				continue
			}
			cc.actions = append(cc.actions, a)
		}
		for _, p := range c.Phrases {
			cc.phrases = append(cc.phrases, strings.ToLower(p))
		}
		e.categories = append(e.categories, cc)
	}

	return e, nil
}

// Evaluate applies the rule set to a plan. It never errors: rules are
// deterministic and the plan shape was already validated upstream.
func (e *RuleEngine) Evaluate(ctx context.Context, plan *models.ExecutionPlan) *models.ValidationResult {
	res := &models.ValidationResult{
		ID:          uuid.NewString(),
		PlanID:      plan.ID,
		Verdict:     models.VerdictApproved,
		OverallRisk: models.RiskLow,
		StepResults: make([]models.StepResult, 0, len(plan.Steps)),
		Metadata:    map[string]any{"mode": ModeRules},
	}

	var reasons []string
	var revisions []string
	elevated := 0

	for _, step := range plan.Steps {
		sr := e.evaluateStep(ctx, step, &revisions)
		res.StepResults = append(res.StepResults, sr)
		res.OverallRisk = models.MaxRisk(res.OverallRisk, sr.Risk)
		res.Verdict = moreSevere(res.Verdict, sr.Verdict)

		if sr.Verdict != models.VerdictApproved && sr.Reasoning != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", sr.StepID, sr.Reasoning))
		}
		if sr.Risk.Rank() >= e.compositeMinRisk.Rank() {
			elevated++
		}
	}

	if e.compositeMinSteps > 0 && elevated >= e.compositeMinSteps {
		res.Verdict = moreSevere(res.Verdict, models.VerdictNeedsUserApproval)
		res.OverallRisk = bumpRisk(res.OverallRisk)
		res.Metadata["composite_risk"] = true
		reasons = append(reasons, fmt.Sprintf(
			"composite_risk: %d steps at %s or above compound the blast radius", elevated, e.compositeMinRisk))
	}

	if len(reasons) == 0 {
		res.Reasoning = "no rule violations"
	} else {
		res.Reasoning = strings.Join(reasons, "; ")
	}
	res.SuggestedRevisions = revisions
	return res
}

// evaluateStep runs category, floor, containment, and network checks on one
// step. Revision suggestions accumulate into revisions.
func (e *RuleEngine) evaluateStep(ctx context.Context, step models.PlanStep, revisions *[]string) models.StepResult {
	sr := models.StepResult{
		StepID:  step.ID,
		Verdict: models.VerdictApproved,
		Risk:    step.RiskLevel,
	}
	var reasons []string

	// A plan that reaches us with an undeclared risk was forged past the
	// planner's normalization. Treat as critical, never trust it.
	if !step.RiskLevel.Valid() {
		sr.Risk = models.RiskCritical
		sr.Verdict = models.VerdictNeedsUserApproval
		reasons = append(reasons, fmt.Sprintf("undeclared risk level %q", step.RiskLevel))
	}

	corpus := stepCorpus(step)
	for _, cat := range e.categories {
		if !cat.matches(step.Action, corpus) {
			continue
		}
		sr.Risk = models.MaxRisk(sr.Risk, cat.risk)
		if moreSevere(sr.Verdict, cat.verdict) != sr.Verdict {
			sr.Verdict = cat.verdict
			sr.Category = cat.name
		}
		reasons = append(reasons, fmt.Sprintf("matched %s rules", cat.name))
	}

	for _, f := range e.floors {
		if !floorMatches(f, step) {
			continue
		}
		if moreSevere(sr.Verdict, models.VerdictNeedsUserApproval) != sr.Verdict {
			sr.Verdict = models.VerdictNeedsUserApproval
		}
		sr.Risk = models.MaxRisk(sr.Risk, models.RiskHigh)
		reasons = append(reasons, f.Reason)
	}

	e.checkFilesystem(step, &sr, &reasons)
	e.checkNetwork(ctx, step, &sr, &reasons, revisions)

	sr.Reasoning = strings.Join(reasons, "; ")
	return sr
}

// checkFilesystem enforces workspace containment on every path-like
// parameter: dot-dot segments are rejected before normalization, and the
// cleaned path must stay under the workspace root.
func (e *RuleEngine) checkFilesystem(step models.PlanStep, sr *models.StepResult, reasons *[]string) {
	for key, val := range step.Parameters {
		if !e.pathKeys[strings.ToLower(key)] {
			continue
		}
		raw, ok := val.(string)
		if !ok || raw == "" {
			continue
		}

		if hasDotDot(raw) {
			sr.Verdict = models.VerdictRejected
			sr.Risk = models.MaxRisk(sr.Risk, models.RiskCritical)
			sr.Category = "security"
			*reasons = append(*reasons, fmt.Sprintf("parameter %q contains a dot-dot segment", key))
			continue
		}

		resolved := raw
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(e.workspaceRoot, resolved)
		}
		resolved = filepath.Clean(resolved)
		if resolved != e.workspaceRoot && !strings.HasPrefix(resolved, e.workspaceRoot+string(filepath.Separator)) {
			sr.Verdict = models.VerdictRejected
			sr.Risk = models.MaxRisk(sr.Risk, models.RiskCritical)
			sr.Category = "security"
			*reasons = append(*reasons, fmt.Sprintf("parameter %q resolves outside the workspace root", key))
		}
	}
}

// checkNetwork denies private address ranges unconditionally and, when a
// permission source is wired, requires every destination to match the
// gear's declared domain allowlist.
func (e *RuleEngine) checkNetwork(ctx context.Context, step models.PlanStep, sr *models.StepResult, reasons *[]string, revisions *[]string) {
	for key, val := range step.Parameters {
		if !e.hostKeys[strings.ToLower(key)] {
			continue
		}
		raw, ok := val.(string)
		if !ok || raw == "" {
			continue
		}

		host := extractHost(raw)
		if host == "" {
			continue
		}

		if addr, err := netip.ParseAddr(host); err == nil {
			if isForbiddenAddr(addr) {
				sr.Verdict = models.VerdictRejected
				sr.Risk = models.MaxRisk(sr.Risk, models.RiskCritical)
				sr.Category = "security"
				*reasons = append(*reasons, fmt.Sprintf("parameter %q targets a private address range", key))
			}
			continue
		}
		if strings.EqualFold(host, "localhost") {
			sr.Verdict = models.VerdictRejected
			sr.Risk = models.MaxRisk(sr.Risk, models.RiskCritical)
			sr.Category = "security"
			*reasons = append(*reasons, fmt.Sprintf("parameter %q targets localhost", key))
			continue
		}

		if e.perms == nil {
			continue
		}
		perms, ok := e.perms.GearPermissions(ctx, step.Gear)
		if !ok {
			sr.Verdict = moreSevere(sr.Verdict, models.VerdictNeedsRevision)
			*reasons = append(*reasons, fmt.Sprintf("gear %q is not installed", step.Gear))
			*revisions = append(*revisions, fmt.Sprintf("replace step %s: gear %q is unknown", step.ID, step.Gear))
			continue
		}
		if !domainAllowed(host, perms.Network.Domains) {
			sr.Verdict = moreSevere(sr.Verdict, models.VerdictNeedsRevision)
			*reasons = append(*reasons, fmt.Sprintf("domain %q is outside gear %q's allowlist", host, step.Gear))
			*revisions = append(*revisions, fmt.Sprintf("step %s: use a domain from %v", step.ID, perms.Network.Domains))
		}
	}
}

func (c compiledCategory) matches(action, corpus string) bool {
	for _, pattern := range c.actions {
		if ok, _ := doublestar.Match(pattern, action); ok {
			return true
		}
	}
	for _, phrase := range c.phrases {
		if strings.Contains(corpus, phrase) {
			return true
		}
	}
	return false
}

func floorMatches(f floorRule, step models.PlanStep) bool {
	for _, g := range f.Gears {
		if strings.EqualFold(g, step.Gear) {
			return true
		}
	}
	for _, pattern := range f.Actions {
		if ok, _ := doublestar.Match(pattern, step.Action); ok {
			return true
		}
	}
	return false
}

// stepCorpus flattens a step into a lowercase haystack for phrase matching:
// gear, action, and every parameter key and string value, nested included.
func stepCorpus(step models.PlanStep) string {
	var sb strings.Builder
	sb.WriteString(step.Gear)
	sb.WriteByte(' ')
	sb.WriteString(step.Action)
	flattenParams(&sb, step.Parameters)
	return strings.ToLower(sb.String())
}

func flattenParams(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case string:
		sb.WriteByte(' ')
		sb.WriteString(t)
	case map[string]any:
		for k, inner := range t {
			sb.WriteByte(' ')
			sb.WriteString(k)
			flattenParams(sb, inner)
		}
	case []any:
		for _, inner := range t {
			flattenParams(sb, inner)
		}
	}
}

// hasDotDot reports whether the raw path contains a ".." segment. Checked
// before any normalization so "a/../../b" cannot be cleaned into innocence.
func hasDotDot(raw string) bool {
	for _, seg := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// extractHost pulls the hostname out of a URL, host:port pair, or bare host.
func extractHost(raw string) string {
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return strings.ToLower(strings.TrimSpace(raw))
		}
		return strings.ToLower(u.Hostname())
	}
	host := strings.TrimSpace(raw)
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	return strings.ToLower(host)
}

// isForbiddenAddr covers loopback, RFC1918, link-local, unspecified, and
// the 0.0.0.0/8 "this network" block.
func isForbiddenAddr(addr netip.Addr) bool {
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
		return true
	}
	if addr.Is4() && addr.As4()[0] == 0 {
		return true
	}
	return false
}

// domainAllowed matches a hostname against manifest allowlist entries,
// which may be exact names or globs like *.example.com.
func domainAllowed(host string, allowlist []string) bool {
	for _, entry := range allowlist {
		entry = strings.ToLower(entry)
		if entry == host {
			return true
		}
		if ok, _ := doublestar.Match(entry, host); ok {
			return true
		}
	}
	return false
}

// verdictSeverity orders verdicts from most to least permissive.
var verdictSeverity = map[models.Verdict]int{
	models.VerdictApproved:          0,
	models.VerdictNeedsUserApproval: 1,
	models.VerdictNeedsRevision:     2,
	models.VerdictRejected:          3,
}

// moreSevere returns whichever verdict is stricter.
func moreSevere(a, b models.Verdict) models.Verdict {
	if verdictSeverity[b] > verdictSeverity[a] {
		return b
	}
	return a
}

// bumpRisk raises a risk level one notch, saturating at critical.
func bumpRisk(r models.RiskLevel) models.RiskLevel {
	switch r {
	case models.RiskLow:
		return models.RiskMedium
	case models.RiskMedium:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}
