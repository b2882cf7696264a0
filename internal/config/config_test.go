package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/derrors"
	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/suggest"
)

const sampleYAML = `
completion:
  literal_paths: true
  max_results: 25
types:
  aliases:
    procinfo: System.Diagnostics.Process
  names:
    - Nacre.Widget
completers:
  deploy/Environment:
    values: [dev, staging, prod]
    description: Deployment target
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, ".nacre.yml", sampleYAML)
	cfg, err := New().Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Completion.LiteralPaths)
	assert.Equal(t, 25, cfg.Completion.MaxResults)
	assert.Nil(t, cfg.Completion.RelativePaths)
	assert.Equal(t, "System.Diagnostics.Process", cfg.Types.Aliases["procinfo"])
	assert.Equal(t, []string{"dev", "staging", "prod"}, cfg.Completers["deploy/Environment"].Values)
	assert.Equal(t, filepath.Dir(path), cfg.ConfigDir)
}

func TestLoad_TOML(t *testing.T) {
	content := `
[completion]
max_results = 5

[completers."deploy/Environment"]
values = ["dev"]
`
	path := writeConfig(t, ".nacre.toml", content)
	cfg, err := New().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Completion.MaxResults)
	assert.Equal(t, []string{"dev"}, cfg.Completers["deploy/Environment"].Values)
}

func TestLoad_JSON(t *testing.T) {
	content := `{"completion": {"ignore_hidden_shares": true}}`
	path := writeConfig(t, ".nacre.json", content)
	cfg, err := New().Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Completion.IgnoreHiddenShares)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.ini", "x=1")
	_, err := New().Load(path)
	require.Error(t, err)
	var cfgErr *derrors.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_NegativeMaxResults(t *testing.T) {
	path := writeConfig(t, ".nacre.yml", "completion:\n  max_results: -1\n")
	_, err := New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_results")
}

func TestLoadBytes(t *testing.T) {
	cfg, err := New().LoadBytes([]byte("completion:\n  max_results: 3\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Completion.MaxResults)
}

func TestFindLocal(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindLocal(dir))
	assert.False(t, HasLocalConfig(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nacre.toml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nacre.yml"), []byte(""), 0o644))
	// preference order picks yml over toml
	assert.Equal(t, filepath.Join(dir, ".nacre.yml"), FindLocal(dir))
	assert.True(t, HasLocalConfig(dir))
}

func TestExpandedValues_Templates(t *testing.T) {
	cfg := &Config{ConfigDir: "/etc/nacre"}
	comp := CompleterConfig{Values: []string{
		"plain",
		"{{ .NACRE_DIR }}/bin",
		`{{ upper "dev" }}`,
		"{{ invalid",
	}}
	got := cfg.ExpandedValues(comp)
	assert.Equal(t, "plain", got[0])
	assert.Equal(t, "/etc/nacre/bin", got[1])
	assert.Equal(t, "DEV", got[2])
	assert.Equal(t, "{{ invalid", got[3], "a broken template degrades to the literal value")
}

func TestEngineOptions(t *testing.T) {
	rel := false
	cfg := &Config{Completion: CompletionOptions{
		LiteralPaths:  true,
		RelativePaths: &rel,
		MaxResults:    10,
	}}
	opts := cfg.EngineOptions()
	assert.True(t, opts.LiteralPaths)
	require.NotNil(t, opts.RelativePaths)
	assert.False(t, *opts.RelativePaths)
	assert.Equal(t, 10, opts.MaxResults)
}

func TestSplitCompleterKey(t *testing.T) {
	cmd, param := splitCompleterKey("deploy/Environment")
	assert.Equal(t, "deploy", cmd)
	assert.Equal(t, "Environment", param)

	cmd, param = splitCompleterKey("Environment")
	assert.Empty(t, cmd)
	assert.Equal(t, "Environment", param)
}

func TestApply_RegistersCompletersAndTypes(t *testing.T) {
	path := writeConfig(t, ".nacre.yml", sampleYAML)
	cfg, err := New().Load(path)
	require.NoError(t, err)

	s := session.New()
	engine := suggest.NewEngine(suggest.Config{Host: s})
	cfg.Apply(engine)

	line := "deploy -Environment d"
	results := engine.CompleteInput(line, len(line))
	require.Len(t, results, 1)
	assert.Equal(t, "dev", results[0].CompletionText)
	assert.Equal(t, "Deployment target", results[0].ToolTip)

	line = "[procinfo"
	results = engine.CompleteInput(line, len(line))
	found := false
	for _, r := range results {
		if r.ListItemText == "procinfo" {
			found = true
		}
	}
	assert.True(t, found, "configured alias should complete in brackets")
}
