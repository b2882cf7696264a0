package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `completion:
  max_results: 25
types:
  aliases:
    procinfo: System.Diagnostics.Process
completers:
  deploy/Environment:
    values: [dev, staging, prod]
    description: Deployment target
`

func TestSchema_PrintToStdout(t *testing.T) {
	err := Schema("")
	require.NoError(t, err)
}

func TestSchema_WriteToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "schema.json")

	err := Schema(outputFile)
	require.NoError(t, err)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	schemaStr := string(content)
	assert.Contains(t, schemaStr, `"$schema": "http://json-schema.org/draft-07/schema#"`)
	assert.Contains(t, schemaStr, `"title": "Nacre configuration"`)
	assert.Contains(t, schemaStr, `"completers"`)
}

func TestSchema_WriteToFile_InvalidPath(t *testing.T) {
	err := Schema("/nonexistent/directory/schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write schema")
}

func TestValidate_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".nacre.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0o644))

	err := Validate(configPath)
	require.NoError(t, err)
}

func TestValidate_UnknownKeyFailsSchema(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".nacre.yml")
	content := validConfig + "bogus_section:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	err := Validate(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_NoConfigInDirectory(t *testing.T) {
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(t.TempDir()))

	err = Validate("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config file found")
}

func TestComplete_RunsWithoutConfig(t *testing.T) {
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(t.TempDir()))

	err = Complete(CompleteParams{Line: "Get-Pro", Cursor: -1, Plain: true})
	require.NoError(t, err)
}

func TestComplete_WithConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".nacre.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0o644))

	err := Complete(CompleteParams{Line: "deploy -Environment d", Plain: true, ConfigPath: configPath})
	require.NoError(t, err)
}

func TestTypes_Pattern(t *testing.T) {
	require.NoError(t, Types("System.*"))
	require.NoError(t, Types("no-such-type-zzz"))
}

func TestLoadConfig_MissingIsNotAnError(t *testing.T) {
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
