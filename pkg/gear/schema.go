// Package gear is the installed-plugin registry: manifest validation,
// entry-point checksums, and the install/disable lifecycle. It is the source
// every other component reads gears from — the planner renders its catalog
// from here, the validator checks declared permissions here, and the sandbox
// host gates every spawn on the checksum it stores here.
package gear

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/axisworks/axis/pkg/models"
)

//go:embed manifest_schema.json
var manifestSchemaJSON []byte

var compileManifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal(manifestSchemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded manifest schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("manifest_schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add manifest schema resource: %w", err)
	}
	schema, err := c.Compile("manifest_schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	return schema, nil
})

// ValidateManifest checks a manifest against the embedded JSON-Schema plus
// the constraints the schema cannot express (action name uniqueness).
func ValidateManifest(m *models.GearManifest) error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}

	schema, err := compileManifestSchema()
	if err != nil {
		return err
	}

	// Validate the manifest's JSON form, which is also what gets frozen
	// into the registry row.
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("manifest %q is invalid: %w", m.ID, err)
	}

	seen := make(map[string]bool, len(m.Actions))
	for _, a := range m.Actions {
		if seen[a.Name] {
			return fmt.Errorf("manifest %q declares action %q twice", m.ID, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}
