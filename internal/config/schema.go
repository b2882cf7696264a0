package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// GetSchemaJSON returns the JSON Schema for Nacre configuration
func GetSchemaJSON() string {
	return schemaJSON
}

// ValidateWithSchema validates config content against the JSON Schema. The
// path's extension selects the syntax the content is decoded with before
// the structural check.
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true, Errors: []ValidationError{}}

	var data interface{}
	switch {
	case strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml"):
		if err := yaml.Unmarshal(content, &data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "syntax",
				Message: fmt.Sprintf("Invalid YAML syntax: %v", err),
			})
			return result, nil
		}
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(content, &data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "syntax",
				Message: fmt.Sprintf("Invalid JSON syntax: %v", err),
			})
			return result, nil
		}
	case strings.HasSuffix(path, ".toml"):
		// TOML goes through the loader, whose koanf parser yields the same
		// map shape the schema expects
		cfg, err := New().LoadBytes(content, "toml")
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "syntax",
				Message: fmt.Sprintf("Invalid TOML syntax: %v", err),
			})
			return result, nil
		}
		data = schemaShape(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(normalizeKeys(data))
	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !res.Valid() {
		result.Valid = false
		for _, desc := range res.Errors() {
			result.Errors = append(result.Errors, ValidationError{
				Field:   desc.Field(),
				Message: desc.Description(),
			})
		}
	}
	return result, nil
}

// schemaShape rebuilds the generic map form of a parsed config so TOML
// input can run through the same schema.
func schemaShape(cfg *Config) map[string]interface{} {
	completers := make(map[string]interface{}, len(cfg.Completers))
	for key, comp := range cfg.Completers {
		values := comp.Values
		if values == nil {
			values = []string{}
		}
		completers[key] = map[string]interface{}{
			"values":      values,
			"description": comp.Description,
		}
	}
	return map[string]interface{}{
		"completion": map[string]interface{}{
			"literal_paths":        cfg.Completion.LiteralPaths,
			"ignore_hidden_shares": cfg.Completion.IgnoreHiddenShares,
			"max_results":          cfg.Completion.MaxResults,
		},
		"types": map[string]interface{}{
			"aliases": cfg.Types.Aliases,
			"names":   cfg.Types.Names,
		},
		"completers": completers,
	}
}

// normalizeKeys converts yaml's map[interface{}]interface{} values to the
// string-keyed maps gojsonschema expects.
func normalizeKeys(v interface{}) interface{} {
	switch m := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = normalizeKeys(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = normalizeKeys(val)
		}
		return out
	case []interface{}:
		for i := range m {
			m[i] = normalizeKeys(m[i])
		}
		return m
	}
	return v
}
