package config

import (
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateData is the variable set available to completer value templates.
type templateData struct {
	NACRE_DIR        string
	USER_WORKING_DIR string
	HOME             string
}

// expandTemplate expands template variables and sprig functions in a
// completer value. An invalid template or a render failure returns the
// value unchanged so a typo degrades to a literal candidate instead of an
// error.
func (c *Config) expandTemplate(value string) string {
	if !strings.Contains(value, "{{") {
		return value
	}
	tmpl, err := template.New("value").Funcs(sprig.FuncMap()).Parse(value)
	if err != nil {
		return value
	}
	cwd, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	var b strings.Builder
	data := templateData{
		NACRE_DIR:        c.ConfigDir,
		USER_WORKING_DIR: cwd,
		HOME:             home,
	}
	if err := tmpl.Execute(&b, data); err != nil {
		return value
	}
	return b.String()
}
