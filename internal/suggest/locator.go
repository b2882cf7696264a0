package suggest

import (
	"strings"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// ArgumentLocation describes where in a command's argument list the cursor
// sits and which declared parameter, if any, the value belongs to.
type ArgumentLocation struct {
	Info          *binding.Info
	Parameter     *binding.Parameter // nil when the command is unknown
	ParameterName string             // as typed (named) or resolved (positional)
	Positional    bool
	Position      int // zero-based positional index; -1 for named
}

// locateArgument classifies the cursor position inside the enclosing
// command. The caller gets back the binding info even when no parameter
// could be resolved, so value completion can still fall back to paths.
func (e *Engine) locateArgument(ctx *Context) *ArgumentLocation {
	cmd := ctx.EnclosingCommand()
	if cmd == nil {
		return nil
	}
	info := e.bind(ctx, cmd, binding.PurposeArgumentValue)
	if info == nil {
		info = binding.Bind(cmd, func(string) *binding.CommandInfo { return nil }, binding.PurposeArgumentValue)
		ctx.Binding = info
	}
	loc := &ArgumentLocation{Info: info, Position: -1}

	// value attached to a named parameter the cursor sits in
	for i, pair := range info.Pairs {
		if pair.Argument == nil || !pair.Argument.Span().Contains(ctx.CursorPos) {
			continue
		}
		loc.ParameterName = pair.ParameterName
		loc.Positional = pair.Positional
		loc.Parameter = pair.Declared
		if loc.Positional {
			// an unresolvable command cannot tell a value from a positional,
			// so a dangling -Name right before the cursor claims it
			if info.Command == nil && i > 0 {
				prev := info.Pairs[i-1]
				if prev.Parameter != nil && prev.Argument == nil {
					loc.Positional = false
					loc.ParameterName = prev.ParameterName
					return loc
				}
			}
			loc.Position = positionalIndexOf(info, pair)
			// a positional the binder already resolved locates itself; only
			// an open slot consults the declaration order
			if loc.Parameter == nil {
				loc.Parameter = info.FindPositional(loc.Position)
			}
			if loc.Parameter != nil {
				loc.ParameterName = loc.Parameter.Name
			}
		}
		return loc
	}

	// cursor on whitespace right after -Parameter, or after "-Parameter:"
	if name, ok := pendingNamedParameter(ctx, cmd); ok {
		loc.ParameterName = name
		if info.Command != nil {
			loc.Parameter, _ = info.Command.FindParameter(name)
		}
		return loc
	}

	// fresh positional slot: index is the count of positionals before cursor
	loc.Positional = true
	loc.Position = nextPositionalIndex(info, ctx.CursorPos)
	loc.Parameter = info.FindPositional(loc.Position)
	if loc.Parameter != nil {
		loc.ParameterName = loc.Parameter.Name
	}
	return loc
}

// pendingNamedParameter reports whether the cursor is positioned where the
// value of a just-typed named parameter goes.
func pendingNamedParameter(ctx *Context, cmd *syntax.Command) (string, bool) {
	prev := ctx.TokenBeforeCursor
	if prev == nil || prev.Kind != syntax.TokParameter {
		return "", false
	}
	if !cmd.Span().Contains(prev.Pos.Start) {
		return "", false
	}
	name := strings.TrimPrefix(prev.Text, "-")
	name = strings.TrimSuffix(name, ":")
	return name, name != ""
}

func positionalIndexOf(info *binding.Info, target *binding.ArgumentPair) int {
	idx := 0
	for _, pair := range info.Pairs {
		if !pair.Positional {
			continue
		}
		if pair.Argument == target.Argument {
			return idx
		}
		idx++
	}
	return idx
}

func nextPositionalIndex(info *binding.Info, cursor int) int {
	idx := 0
	for _, pair := range info.Pairs {
		if pair.Positional && pair.Argument != nil && pair.Argument.Span().End < cursor {
			idx++
		}
	}
	return idx
}
