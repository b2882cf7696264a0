package cli

import (
	"fmt"
	"os"

	"github.com/nacre-sh/nacre/internal/config"
)

// Schema displays or exports the JSON Schema for Nacre configuration files.
func Schema(outputPath string) error {
	schemaJSON := config.GetSchemaJSON()

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(schemaJSON), 0o644); err != nil {
			return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
		}
		fmt.Printf("JSON Schema written to: %s\n", outputPath)
		return nil
	}

	fmt.Println(schemaJSON)
	return nil
}
