// Package config handles loading and parsing of Nacre configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/nacre-sh/nacre/internal/derrors"
)

// SupportedConfigNames contains supported configuration file names (in order of preference)
var SupportedConfigNames = []string{
	".nacre.yml",
	".nacre.yaml",
	".nacre.toml",
	".nacre.json",
}

// CompletionOptions tunes how suggestions are produced and presented.
type CompletionOptions struct {
	LiteralPaths       bool  `koanf:"literal_paths"`
	RelativePaths      *bool `koanf:"relative_paths"`
	IgnoreHiddenShares bool  `koanf:"ignore_hidden_shares"`
	MaxResults         int   `koanf:"max_results"`
}

// TypesConfig seeds the type catalog with user supplied names and
// accelerators.
type TypesConfig struct {
	Aliases map[string]string `koanf:"aliases"`
	Names   []string          `koanf:"names"`
}

// CompleterConfig is a declarative argument completer: a list of candidate
// values, each expanded as a template before use.
type CompleterConfig struct {
	Values      []string `koanf:"values"`
	Description string   `koanf:"description"`
}

// Config represents a nacre configuration
type Config struct {
	Completion CompletionOptions          `koanf:"completion"`
	Types      TypesConfig                `koanf:"types"`
	Completers map[string]CompleterConfig `koanf:"completers"`

	// ConfigDir is the directory the config was loaded from, used as the
	// template expansion root.
	ConfigDir string
}

// Loader loads configuration files
type Loader struct{}

// New creates a new config loader
func New() *Loader {
	return &Loader{}
}

// HasLocalConfig checks if a directory has a local configuration file
func HasLocalConfig(dir string) bool {
	for _, name := range SupportedConfigNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindLocal returns the path of the first supported config file in dir, or
// empty when none exists.
func FindLocal(dir string) string {
	for _, name := range SupportedConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultPath returns the user-level config file path.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "nacre", "config.yml")
}

// Load loads a configuration file, choosing the parser from the extension.
func (l *Loader) Load(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, derrors.NewConfigurationError(path, fmt.Sprintf("failed to load config: %v", err), err)
	}
	return l.unmarshal(k, filepath.Dir(path), path)
}

// LoadBytes parses configuration content directly, with format being one of
// yaml, toml or json. Used for validation and tests.
func (l *Loader) LoadBytes(content []byte, format string) (*Config, error) {
	parser, err := parserFor("." + format)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return nil, derrors.NewConfigurationError("", fmt.Sprintf("failed to parse config: %v", err), err)
	}
	return l.unmarshal(k, "", "")
}

func (l *Loader) unmarshal(k *koanf.Koanf, dir, path string) (*Config, error) {
	cfg := &Config{ConfigDir: dir}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, derrors.NewConfigurationError(path, fmt.Sprintf("invalid config structure: %v", err), err)
	}
	if cfg.Completion.MaxResults < 0 {
		return nil, derrors.NewConfigurationError(path, "completion.max_results must not be negative", nil)
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, derrors.NewConfigurationError(path, "unsupported config format", nil)
	}
}

// ExpandedValues returns a completer's candidate values with templates
// expanded against the config directory.
func (c *Config) ExpandedValues(comp CompleterConfig) []string {
	out := make([]string, 0, len(comp.Values))
	for _, v := range comp.Values {
		out = append(out, c.expandTemplate(v))
	}
	return out
}
