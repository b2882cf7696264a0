package config

import (
	"strings"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/suggest"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// EngineOptions converts the completion section to engine options.
func (c *Config) EngineOptions() suggest.Options {
	return suggest.Options{
		LiteralPaths:       c.Completion.LiteralPaths,
		RelativePaths:      c.Completion.RelativePaths,
		IgnoreHiddenShares: c.Completion.IgnoreHiddenShares,
		MaxResults:         c.Completion.MaxResults,
	}
}

// Apply registers the config's type names and declarative completers on an
// engine. Completer values are expanded once per completion request, so
// templates see the working directory of the request, not of startup.
func (c *Config) Apply(engine *suggest.Engine) {
	for alias, full := range c.Types.Aliases {
		engine.Catalog().RegisterAlias(alias, full)
	}
	if len(c.Types.Names) > 0 {
		engine.Catalog().RegisterNames(c.Types.Names...)
	}

	for key, comp := range c.Completers {
		command, parameter := splitCompleterKey(key)
		if parameter == "" {
			continue
		}
		cfg := comp
		engine.Custom().Register(command, parameter, func(cmd, param, word string, ast *syntax.Command, bound map[string]interface{}) []binding.Candidate {
			values := c.ExpandedValues(cfg)
			out := make([]binding.Candidate, 0, len(values))
			for _, v := range values {
				out = append(out, binding.Candidate{Text: v, ListItem: v, ToolTip: cfg.Description})
			}
			return out
		})
	}
}

// splitCompleterKey splits "command/parameter" keys; a bare "parameter"
// key applies to every command.
func splitCompleterKey(key string) (command, parameter string) {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
