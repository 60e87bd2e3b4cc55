package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// GenerateSchema builds the JSON schema describing the configuration file.
func GenerateSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/vitrebrowser/vitre/config.schema.json"
	schema.Title = "Vitre Browser Configuration"
	schema.Description = "Configuration schema for vitre, a multi-window WebKit browser shell"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// GenerateSchemaFile writes the JSON schema next to the config file.
// Called when a default config is created.
func GenerateSchemaFile(dirs *Dirs) error {
	data, err := GenerateSchema()
	if err != nil {
		return err
	}

	schemaFile := filepath.Join(dirs.ConfigHome, "config.schema.json")
	if err := os.WriteFile(schemaFile, data, filePerm); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
