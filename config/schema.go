package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the base JSON Schema for the agentwatch configuration.
// It reflects the Config struct from types.go but excludes the 'Extensions' field,
// which is free-form by design of the extension mechanism.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		// Expand struct references instead of using $ref for cleaner base schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// A temporary struct that omits the Extensions field so it is not
	// included in the base schema.
	type BaseConfig struct {
		Name    string        `yaml:"name,omitempty" jsonschema:"description=Name of this agentwatch deployment"`
		Version string        `yaml:"version" jsonschema:"required,description=Configuration version (e.g. '1.0')"`
		Watch   *WatchConfig  `yaml:"watch,omitempty" jsonschema:"description=Watcher paths and timing"`
		Daemon  *DaemonConfig `yaml:"daemon,omitempty" jsonschema:"description=Daemon socket and pidfile settings"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Agentwatch Configuration"
	schema.Description = "Base schema for agentwatch.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
