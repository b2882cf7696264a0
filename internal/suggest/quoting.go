package suggest

import (
	"strings"

	"github.com/nacre-sh/nacre/internal/syntax"
)

// needsQuoting reports whether a completion must be quoted to survive
// re-tokenization.
func needsQuoting(text string) bool {
	if text == "" {
		return false
	}
	return strings.ContainsAny(text, " \t'\"`$;|&(){}@#,")
}

// quoteIfNeeded quotes a completion, reusing the quote style the user
// already opened. Single quotes are the default: they need no escaping
// beyond doubling and never trigger interpolation.
func quoteIfNeeded(ctx *Context, text string) string {
	quote := ctx.quote
	if quote == 0 && !needsQuoting(text) {
		return text
	}
	if quote == '"' {
		escaped := strings.ReplaceAll(text, "`", "``")
		escaped = strings.ReplaceAll(escaped, `"`, "`\"")
		escaped = strings.ReplaceAll(escaped, "$", "`$")
		return `"` + escaped + `"`
	}
	return "'" + strings.ReplaceAll(text, "'", "''") + "'"
}

// quoteCommandName quotes a command name and, when quoting makes the word
// stop parsing as a command, prefixes the call operator unless one is
// already present.
func quoteCommandName(ctx *Context, name string) string {
	if ctx.quote == 0 && !needsQuoting(name) && !isReservedWord(name) {
		return name
	}
	quoted := quoteIfNeeded(ctx, name)
	if quoted == name {
		quoted = "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	if hasCallOperator(ctx) {
		return quoted
	}
	return "& " + quoted
}

func isReservedWord(name string) bool {
	_, ok := syntax.Keywords[strings.ToLower(name)]
	return ok
}

func hasCallOperator(ctx *Context) bool {
	if cmd := ctx.EnclosingCommand(); cmd != nil && cmd.CallOperator {
		return true
	}
	prev := ctx.TokenBeforeCursor
	if tok := ctx.TokenAtCursor; tok != nil {
		prev = tokenPreceding(ctx, tok.Pos.Start)
	}
	return prev != nil && (prev.Kind == syntax.TokAmpersand || prev.Kind == syntax.TokDot)
}
