package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult contains the results of config validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validate validates a config file: schema first, then the semantic rules
// the schema cannot express.
func Validate(path string) (*ValidationResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	result, err := ValidateWithSchema(path, content)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	cfg, err := New().Load(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "syntax",
			Message: fmt.Sprintf("Failed to parse config: %v", err),
		})
		return result, nil
	}

	for key, comp := range cfg.Completers {
		if strings.Count(key, "/") > 1 {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "completers/" + key,
				Message: "completer key must be 'command/parameter' or 'parameter'",
			})
		}
		if len(comp.Values) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "completers/" + key,
				Message: "completer has no values",
			})
		}
	}

	for alias, full := range cfg.Types.Aliases {
		if alias == "" || full == "" {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "types/aliases/" + alias,
				Message: "alias and target name must both be non-empty",
			})
		}
	}
	return result, nil
}
