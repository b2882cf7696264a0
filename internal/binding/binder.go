package binding

import (
	"strings"

	"github.com/nacre-sh/nacre/internal/syntax"
)

// Resolver maps a command (or alias) name to its declaration metadata.
// A nil result means the command is unknown.
type Resolver func(name string) *CommandInfo

// Bind simulates parameter binding for the command without executing it.
// The result is always usable: an unknown command or an ambiguous parameter
// is a classification on the Info, never an error.
func Bind(cmd *syntax.Command, resolve Resolver, purpose Purpose) *Info {
	info := &Info{
		CommandName: cmd.Name,
		Purpose:     purpose,
		Bound:       map[string]*Parameter{},
		BoundArgs:   map[string]syntax.Node{},
	}
	if resolve != nil {
		info.Command = resolve(cmd.Name)
	}
	if info.Command == nil {
		info.Failure = FailureCommandNotFound
	} else {
		info.DefaultSet = info.Command.DefaultSet
	}

	pairArguments(cmd, info)
	recordBound(info)
	restrictSets(info)
	bindPositionals(info)
	return info
}

// pairArguments walks the command's argument list once, attaching each
// expression to the -Name token that precedes it when that parameter takes
// a value.
func pairArguments(cmd *syntax.Command, info *Info) {
	args := cmd.Args
	for idx := 0; idx < len(args); idx++ {
		switch node := args[idx].(type) {
		case *syntax.CommandParameter:
			pair := &ArgumentPair{
				Parameter:     node,
				ParameterName: node.Name,
				Argument:      node.Argument,
			}
			if info.Command != nil {
				decl, ambiguous := info.Command.FindParameter(node.Name)
				if ambiguous {
					info.Failure = FailureAmbiguousParameter
				}
				pair.Declared = decl
				if decl != nil && pair.Argument == nil && !decl.IsSwitch() && idx+1 < len(args) {
					if _, isParam := args[idx+1].(*syntax.CommandParameter); !isParam && !isDashFragment(args[idx+1]) {
						pair.Argument = args[idx+1]
						idx++
					}
				}
			}
			info.Pairs = append(info.Pairs, pair)
		default:
			if isDashFragment(node) {
				// a bare "-" is a parameter name in the making, not a value
				continue
			}
			info.Pairs = append(info.Pairs, &ArgumentPair{
				Argument:   node,
				Positional: true,
			})
		}
	}
}

// isDashFragment reports whether the node is a lone "-" with nothing after it.
func isDashFragment(n syntax.Node) bool {
	u, ok := n.(*syntax.UnaryExpr)
	if !ok || u.Op != "-" {
		return false
	}
	_, incomplete := u.Operand.(*syntax.ErrorExpr)
	return incomplete
}

func recordBound(info *Info) {
	for _, pair := range info.Pairs {
		if pair.Declared == nil {
			continue
		}
		key := strings.ToLower(pair.Declared.Name)
		if pair.Argument == nil && !pair.Declared.IsSwitch() {
			// a named parameter still waiting on its value is not bound
			continue
		}
		if _, dup := info.Bound[key]; dup {
			info.Failure = FailureDuplicateParameter
			info.Duplicates = append(info.Duplicates, pair.Declared.Name)
			continue
		}
		info.Bound[key] = pair.Declared
		if pair.Argument != nil {
			info.BoundArgs[pair.Declared.Name] = pair.Argument
		}
	}
}

// restrictSets narrows the valid parameter sets to those every bound
// set-restricted parameter participates in. When nothing survives the
// restriction is dropped rather than declared ambiguous.
func restrictSets(info *Info) {
	if info.Command == nil {
		return
	}
	all := info.Command.SetNames()
	if len(all) == 0 {
		return
	}
	valid := all
	for _, p := range info.Bound {
		if len(p.Sets) == 0 {
			continue
		}
		var next []string
		for _, set := range valid {
			if _, ok := p.InSet(set); ok {
				next = append(next, set)
			}
		}
		if len(next) == 0 {
			return
		}
		valid = next
	}
	if len(valid) < len(all) {
		info.ValidSets = valid
	}
}

// bindPositionals assigns already-present positional arguments to parameter
// declarations in order, so a later locator pass can tell bound positionals
// from open slots.
func bindPositionals(info *Info) {
	if info.Command == nil {
		return
	}
	index := 0
	for _, pair := range info.Pairs {
		if !pair.Positional || pair.Argument == nil {
			continue
		}
		decl := info.FindPositional(index)
		if decl != nil {
			pair.Declared = decl
			key := strings.ToLower(decl.Name)
			if _, dup := info.Bound[key]; !dup {
				info.Bound[key] = decl
				info.BoundArgs[decl.Name] = pair.Argument
			}
		}
		index++
	}
}
