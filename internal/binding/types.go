// Package binding defines the pseudo-binding contract between the shell's
// simulated parameter binder and the suggestion engine, plus a reference
// binder over registered command metadata. Pseudo binding resolves which
// declared parameters an argument list would bind to without executing the
// command.
package binding

import (
	"reflect"
	"strings"

	"github.com/nacre-sh/nacre/internal/syntax"
)

// Purpose distinguishes why a binding result was requested.
type Purpose int

// Binding purposes.
const (
	PurposeParameterName Purpose = iota
	PurposeArgumentValue
)

// AllParameterSets names the implicit set a parameter belongs to when its
// declaration does not restrict it.
const AllParameterSets = "__AllParameterSets"

// SetMembership describes how a parameter participates in one parameter set.
type SetMembership struct {
	Position           int // -1 when the parameter is named-only in this set
	Mandatory          bool
	ValueFromRemaining bool
	ValueFromPipeline  bool
}

// Candidate is a completion candidate produced by a registered custom
// completer attached to a parameter declaration.
type Candidate struct {
	Text     string
	ListItem string
	ToolTip  string
}

// CompleterFunc is the signature of a custom argument completer. boundArgs
// holds already-bound argument values reduced to safely-evaluable literals.
type CompleterFunc func(command, parameter, word string, ast *syntax.Command, boundArgs map[string]interface{}) []Candidate

// Parameter is the declaration metadata of one command parameter.
type Parameter struct {
	Name        string
	Aliases     []string
	Type        reflect.Type
	ValidValues []string                 // allowed-value-set attribute
	Sets        map[string]SetMembership // empty means all sets, named-only
	Completer   CompleterFunc
	HelpMessage string
}

// IsSwitch reports whether the parameter is a presence flag.
func (p *Parameter) IsSwitch() bool {
	return p.Type != nil && p.Type.Kind() == reflect.Bool
}

// InSet reports whether the parameter participates in the given set, and its
// membership when it does. A parameter with no explicit sets is in every set.
func (p *Parameter) InSet(set string) (SetMembership, bool) {
	if len(p.Sets) == 0 {
		return SetMembership{Position: -1}, true
	}
	if m, ok := p.Sets[set]; ok {
		return m, true
	}
	if m, ok := p.Sets[AllParameterSets]; ok {
		return m, true
	}
	return SetMembership{}, false
}

// Matches reports whether name is the parameter's name, one of its aliases,
// or an unambiguous prefix of its name.
func (p *Parameter) Matches(name string) bool {
	if strings.EqualFold(p.Name, name) {
		return true
	}
	for _, a := range p.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// CommandType classifies a resolved command.
type CommandType int

// Command types.
const (
	CommandCmdlet CommandType = iota
	CommandFunction
	CommandAlias
	CommandNative
)

// CommandInfo is the declaration metadata of a resolvable command.
type CommandInfo struct {
	Name        string
	Module      string
	Type        CommandType
	DefaultSet  string
	OutputTypes []string
	Parameters  []*Parameter
	Description string
}

// FindParameter resolves a (possibly abbreviated) parameter name against the
// command's declarations. The second return is true when the prefix is
// ambiguous.
func (c *CommandInfo) FindParameter(name string) (*Parameter, bool) {
	if c == nil || name == "" {
		return nil, false
	}
	var prefixMatches []*Parameter
	for _, p := range c.Parameters {
		if p.Matches(name) {
			return p, false
		}
		if len(name) < len(p.Name) && strings.EqualFold(p.Name[:len(name)], name) {
			prefixMatches = append(prefixMatches, p)
		}
	}
	switch len(prefixMatches) {
	case 0:
		return nil, false
	case 1:
		return prefixMatches[0], false
	default:
		return nil, true
	}
}

// SetNames returns every parameter-set name the command's parameters
// mention, or nil when no parameter is set-restricted.
func (c *CommandInfo) SetNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range c.Parameters {
		for set := range p.Sets {
			if set == AllParameterSets || seen[set] {
				continue
			}
			seen[set] = true
			names = append(names, set)
		}
	}
	return names
}

// FailureKind classifies why pseudo binding could not fully resolve.
// A failure is not an error: it selects a broader completion strategy.
type FailureKind int

// Failure classification buckets.
const (
	FailureNone FailureKind = iota
	FailureCommandNotFound
	FailureAmbiguousParameter
	FailureDuplicateParameter
)

// ArgumentPair is one parameter/argument element of the parsed command, in
// source order.
type ArgumentPair struct {
	Parameter     *syntax.CommandParameter // nil for positional arguments
	ParameterName string
	Argument      syntax.Node
	Declared      *Parameter // resolved declaration, nil when unknown
	Positional    bool
}

// Info is the result of a pseudo-binding pass.
type Info struct {
	CommandName string
	Command     *CommandInfo
	Purpose     Purpose
	Pairs       []*ArgumentPair
	Bound       map[string]*Parameter   // parameter name -> declaration
	BoundArgs   map[string]syntax.Node  // parameter name -> argument ast
	ValidSets   []string                // nil means every set is still valid
	DefaultSet  string
	Failure     FailureKind
	Duplicates  []string
}

// BoundArg looks up a bound argument's ast by parameter name. The map keys
// carry declared casing, so lookups go through a fold-insensitive scan.
func (i *Info) BoundArg(name string) (syntax.Node, bool) {
	if node, ok := i.BoundArgs[name]; ok {
		return node, true
	}
	for key, node := range i.BoundArgs {
		if strings.EqualFold(key, name) {
			return node, true
		}
	}
	return nil, false
}

// SetValid reports whether a parameter set survived what is already bound.
func (i *Info) SetValid(set string) bool {
	if len(i.ValidSets) == 0 {
		return true
	}
	for _, s := range i.ValidSets {
		if strings.EqualFold(s, set) {
			return true
		}
	}
	return false
}

// UnboundParameters returns declared parameters not yet bound, restricted to
// the parameter sets still valid.
func (i *Info) UnboundParameters() []*Parameter {
	if i.Command == nil {
		return nil
	}
	var out []*Parameter
	for _, p := range i.Command.Parameters {
		if _, bound := i.Bound[strings.ToLower(p.Name)]; bound {
			continue
		}
		if !i.parameterInValidSet(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (i *Info) parameterInValidSet(p *Parameter) bool {
	if len(p.Sets) == 0 || len(i.ValidSets) == 0 {
		return true
	}
	for _, set := range i.ValidSets {
		if _, ok := p.InSet(set); ok {
			return true
		}
	}
	return false
}

// FindPositional resolves which unbound parameter the positional argument at
// the given index would bind to. The search runs two literal passes: first
// parameters with a declared position (default parameter set preferred, then
// any still-valid set), then parameters accepting remaining arguments. The
// passes stay separate because merging them changes which parameter wins
// under multi-set ambiguity.
func (i *Info) FindPositional(index int) *Parameter {
	if i.Command == nil {
		return nil
	}
	unbound := i.UnboundParameters()

	// pass 1: explicit declared positions, default set first
	if i.DefaultSet != "" && i.SetValid(i.DefaultSet) {
		for _, p := range unbound {
			if m, ok := p.InSet(i.DefaultSet); ok && m.Position == index {
				return p
			}
		}
	}
	sets := i.ValidSets
	if len(sets) == 0 {
		sets = i.Command.SetNames()
		sets = append(sets, AllParameterSets)
	}
	for _, set := range sets {
		for _, p := range unbound {
			if m, ok := p.InSet(set); ok && m.Position == index {
				return p
			}
		}
	}
	// parameters with no set restriction carry positions too
	for _, p := range unbound {
		if len(p.Sets) == 0 {
			continue
		}
		if m, ok := p.Sets[AllParameterSets]; ok && m.Position == index {
			return p
		}
	}

	// pass 2: fall through to remaining-argument parameters
	if i.DefaultSet != "" && i.SetValid(i.DefaultSet) {
		for _, p := range unbound {
			if m, ok := p.InSet(i.DefaultSet); ok && m.ValueFromRemaining {
				return p
			}
		}
	}
	for _, set := range sets {
		for _, p := range unbound {
			if m, ok := p.InSet(set); ok && m.ValueFromRemaining {
				return p
			}
		}
	}
	return nil
}
