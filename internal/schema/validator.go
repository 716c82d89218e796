// Package schema validates apkpatch configuration against embedded
// JSON-Schema definitions.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed embedded_schemas/*.yaml
var embeddedSchemas embed.FS

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// registry holds pre-compiled schemas by name (e.g. "apkpatch-config-v1.0.0").
var registry = make(map[string]*gojsonschema.Schema)

// init populates the registry with the embedded schemas.
func init() {
	known := map[string]string{
		"apkpatch-config-v1.0.0": "embedded_schemas/apkpatch-config-v1.0.0.yaml",
	}
	for name, path := range known {
		schemaBytes, err := embeddedSchemas.ReadFile(path)
		if err != nil {
			continue
		}

		// Convert YAML to JSON for gojsonschema
		var schemaData interface{}
		if err := yaml.Unmarshal(schemaBytes, &schemaData); err != nil {
			continue
		}
		jsonBytes, err := json.Marshal(schemaData)
		if err != nil {
			continue
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
		if err != nil {
			continue
		}
		registry[name] = schema
	}
}

// Validate validates data against the named schema.
func Validate(data interface{}, schemaName string) (*Result, error) {
	schema, ok := registry[schemaName]
	if !ok {
		return nil, fmt.Errorf("schema %s not found in registry", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	res := &Result{Valid: result.Valid()}
	if !result.Valid() {
		for _, verr := range result.Errors() {
			field := verr.Field()
			if field == "" {
				field = "root"
			}
			res.Errors = append(res.Errors, ValidationError{
				Path:    field,
				Message: verr.Description(),
			})
		}
	}
	return res, nil
}
