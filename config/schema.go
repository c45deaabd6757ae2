package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON schema of Config. Property names are the TOML keys.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "cdk-mmr config"
	return json.MarshalIndent(schema, "", "  ")
}
