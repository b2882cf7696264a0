package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nacre-sh/nacre/internal/config"
)

// Validate checks a Nacre configuration file against the JSON Schema and the
// semantic rules. With an empty path it looks for a config in the current
// directory.
func Validate(configPath string) error {
	if configPath == "" {
		currentDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		for _, name := range config.SupportedConfigNames {
			path := filepath.Join(currentDir, name)
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
		if configPath == "" {
			return fmt.Errorf("no config file found in current directory")
		}
	}

	fmt.Printf("Validating: %s\n\n", configPath)

	result, err := config.Validate(configPath)
	if err != nil {
		return err
	}

	if result.Valid {
		fmt.Println("✅ Configuration is valid!")
		return nil
	}

	fmt.Println("❌ Configuration has errors:")
	for i, validationErr := range result.Errors {
		fmt.Printf("%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}
	fmt.Printf("\nFound %d error(s)\n", len(result.Errors))
	return fmt.Errorf("validation failed")
}
