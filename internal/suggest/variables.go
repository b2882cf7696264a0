package suggest

import (
	"sort"
	"strings"

	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// automaticVariables always exist even when the session has never assigned
// them.
var automaticVariables = []string{
	"_", "PSItem", "args", "input", "this", "Error", "Matches",
	"MyInvocation", "PSBoundParameters", "PSCmdlet", "PSScriptRoot",
	"PSCommandPath", "LASTEXITCODE", "PROFILE", "PSHOME", "Host",
	"ExecutionContext", "true", "false", "null",
}

// scopePrefixes qualify a variable reference; a typed prefix restricts
// completion to that scope and is preserved in the completion text.
var scopePrefixes = []string{"global", "local", "script", "private", "using", "env", "variable"}

// CompleteVariable completes $name references. Candidates merge variables
// assigned anywhere in the parsed input, the live session's variables,
// environment entries behind the env: scope and the automatic variables.
func (e *Engine) CompleteVariable(ctx *Context) []Result {
	word := strings.TrimPrefix(ctx.WordToComplete, "$")
	braced := strings.HasPrefix(word, "{")
	word = strings.TrimPrefix(word, "{")
	word = strings.TrimSuffix(word, "}")

	scope := ""
	if i := strings.IndexByte(word, ':'); i >= 0 {
		scope = strings.ToLower(word[:i])
		word = word[i+1:]
	}

	names := map[string]string{} // lowercase -> display
	type candidate struct {
		name string
		tip  string
	}
	var ordered []candidate
	record := func(name, tip string) {
		key := strings.ToLower(name)
		if _, dup := names[key]; dup || name == "" {
			return
		}
		names[key] = name
		ordered = append(ordered, candidate{name, tip})
	}

	switch scope {
	case "env":
		for _, obj := range e.runHelper("get-environment", nil) {
			if v, ok := obj.(*session.Variable); ok {
				record(v.Name, variableToolTip(v))
			}
		}
	case "", "global", "local", "script", "private", "using", "variable":
		e.collectScriptVariables(ctx, record)
		for _, obj := range e.runHelper("get-variable", nil) {
			if v, ok := obj.(*session.Variable); ok {
				record(v.Name, variableToolTip(v))
			}
		}
		for _, name := range automaticVariables {
			record(name, name)
		}
	default:
		return []Result{}
	}

	pattern := word + "*"
	var results []Result
	for _, c := range ordered {
		if !matchWildcard(pattern, c.name) {
			continue
		}
		results = append(results, NewResult(renderVariable(c.name, scope, braced), c.name, KindVariable, c.tip))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ListItemText < results[j].ListItemText })
	return orderValues(results, word)
}

// variableBindingParams are the common-parameter names whose string argument
// introduces a new variable on a sibling command.
var variableBindingParams = map[string]bool{
	"pipelinevariable":    true,
	"pv":                  true,
	"outvariable":         true,
	"ov":                  true,
	"errorvariable":       true,
	"ev":                  true,
	"warningvariable":     true,
	"wv":                  true,
	"informationvariable": true,
	"iv":                  true,
}

// collectScriptVariables walks the parsed input for assignment targets,
// references and variable-binding common parameters, so variables created
// earlier on the line complete before the session has ever seen them. The
// walk does not descend into function or script-block definitions other
// than the ones the cursor sits in.
func (e *Engine) collectScriptVariables(ctx *Context, record func(name, tip string)) {
	if ctx.parse == nil || ctx.parse.Root == nil {
		return
	}
	syntax.Walk(ctx.parse.Root, func(n syntax.Node) bool {
		switch v := n.(type) {
		case *syntax.FunctionDef:
			return v.Span().Contains(ctx.CursorPos)
		case *syntax.ScriptBlock:
			if v != ctx.parse.Root && !v.Span().Contains(ctx.CursorPos) {
				return false
			}
		case *syntax.Command:
			for i, arg := range v.Args {
				cp, ok := arg.(*syntax.CommandParameter)
				if !ok || !variableBindingParams[strings.ToLower(cp.Name)] {
					continue
				}
				val := cp.Argument
				if val == nil && i+1 < len(v.Args) {
					if _, isParam := v.Args[i+1].(*syntax.CommandParameter); !isParam {
						val = v.Args[i+1]
					}
				}
				if name := syntax.StringValue(val); name != "" {
					record(name, "$"+name)
				}
			}
		case *syntax.AssignmentStmt:
			target := v.Target
			if conv, ok := target.(*syntax.ConvertExpr); ok {
				target = conv.Operand
			}
			if tv, ok := target.(*syntax.VariableExpr); ok {
				record(stripScope(tv.Name), "$"+tv.Name)
			}
		case *syntax.VariableExpr:
			// skip the reference being completed
			if !v.Span().Contains(ctx.CursorPos) {
				record(stripScope(v.Name), "$"+v.Name)
			}
		case *syntax.Parameter:
			if v.Name != "" {
				record(v.Name, "$"+v.Name)
			}
		}
		return true
	})
}

func stripScope(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		prefix := strings.ToLower(name[:i])
		for _, s := range scopePrefixes {
			if prefix == s {
				return name[i+1:]
			}
		}
	}
	return name
}

// renderVariable rebuilds the completion text with the typed scope prefix
// and braces when the name needs them.
func renderVariable(name, scope string, braced bool) string {
	full := name
	if scope != "" {
		full = scope + ":" + name
	}
	if braced || needsBraces(full) {
		return "${" + full + "}"
	}
	return "$" + full
}

func needsBraces(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == ':':
		default:
			return true
		}
	}
	return false
}
