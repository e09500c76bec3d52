package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the core vivid configuration.
// It reflects the Config struct from types.go but excludes the 'Extensions'
// field, which holds free-form tool sections.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown top-level keys are extension sections, so they stay allowed.
		AllowAdditionalProperties: true,
		// Expand struct references instead of using $ref for a cleaner schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// A mirror of Config without the Extensions field so it is not reflected.
	type BaseConfig struct {
		Version  string         `yaml:"version" jsonschema:"required,description=Configuration format version"`
		Theme    string         `yaml:"theme,omitempty" jsonschema:"description=Color theme name (kanagawa, gruvbox, ...)"`
		Runtime  RuntimeConfig  `yaml:"runtime,omitempty" jsonschema:"description=Runtime bridge settings"`
		Editor   EditorConfig   `yaml:"editor,omitempty" jsonschema:"description=Editor panel settings"`
		Terminal TerminalConfig `yaml:"terminal,omitempty" jsonschema:"description=Terminal panel settings"`
		Watcher  WatcherConfig  `yaml:"watcher,omitempty" jsonschema:"description=Hot-reload watcher settings"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Vivid IDE Configuration"
	schema.Description = "Schema for core vivid.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
