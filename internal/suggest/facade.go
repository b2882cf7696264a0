package suggest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// commonParameters are accepted by every cmdlet and advanced function and
// offered after the declared parameters.
var commonParameters = []string{
	"Verbose", "Debug", "ErrorAction", "WarningAction", "InformationAction",
	"ErrorVariable", "WarningVariable", "InformationVariable",
	"OutVariable", "OutBuffer", "PipelineVariable",
}

// CompleteCommand completes a command name from the session's command and
// alias tables. A bare fragment also matches any verb-noun command whose
// noun part starts with it.
func (e *Engine) CompleteCommand(ctx *Context) []Result {
	word := ctx.WordToComplete
	pattern := word + "*"
	var nounPattern string
	if word != "" && !strings.ContainsAny(word, "-*?\\/") {
		nounPattern = "*-" + word + "*"
	}

	seen := map[string]bool{}
	var results []Result
	add := func(name, tooltip string) {
		if ctx.cancelled() {
			return
		}
		if !matchWildcard(pattern, name) && (nounPattern == "" || !matchWildcard(nounPattern, name)) {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		text := quoteCommandName(ctx, name)
		results = append(results, NewResult(text, name, KindCommand, tooltip))
	}

	for _, obj := range e.runHelper("get-command", nil) {
		if cmd, ok := obj.(*binding.CommandInfo); ok {
			tip := cmd.Description
			if tip == "" {
				tip = cmd.Name
			}
			add(cmd.Name, tip)
		}
	}
	for _, obj := range e.runHelper("get-alias", nil) {
		if alias, ok := obj.(*session.Alias); ok {
			add(alias.Name, fmt.Sprintf("%s -> %s", alias.Name, alias.Definition))
		}
	}

	sortResults(results)
	return orderValues(results, word)
}

// CompleteModule completes module names for Import-Module and friends.
func (e *Engine) CompleteModule(ctx *Context) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-module", map[string]interface{}{"ListAvailable": true}) {
		mod, ok := obj.(*session.Module)
		if !ok || !matchWildcard(pattern, mod.Name) {
			continue
		}
		tip := mod.Name
		if mod.Version != "" {
			tip = fmt.Sprintf("%s %s", mod.Name, mod.Version)
		}
		results = append(results, NewResult(mod.Name, mod.Name, KindCommand, tip))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

// CompleteParameter completes -Parameter names for the enclosing command.
// Parameters already used on the line are excluded, and once earlier
// arguments pin the parameter set only parameters reachable from a still
// valid set are offered.
func (e *Engine) CompleteParameter(ctx *Context) []Result {
	cmd := ctx.EnclosingCommand()
	if cmd == nil {
		return []Result{}
	}
	info := e.bind(ctx, cmd, binding.PurposeParameterName)
	if info == nil || info.Command == nil {
		return []Result{}
	}
	word := strings.TrimPrefix(ctx.WordToComplete, "-")
	pattern := word + "*"

	var results []Result
	for _, p := range info.UnboundParameters() {
		if !matchWildcard(pattern, p.Name) {
			continue
		}
		results = append(results, NewResult("-"+p.Name, p.Name, KindParameterName, parameterToolTip(info, p)))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ListItemText < results[j].ListItemText })

	if info.Command.Type == binding.CommandCmdlet || info.Command.Type == binding.CommandFunction {
		var common []Result
		for _, name := range commonParameters {
			if info.Bound[strings.ToLower(name)] != nil || !matchWildcard(pattern, name) {
				continue
			}
			common = append(common, NewResult("-"+name, name, KindParameterName, "[common] "+name))
		}
		results = append(results, common...)
	}
	return results
}

func parameterToolTip(info *binding.Info, p *binding.Parameter) string {
	typeName := "switch"
	if !p.IsSwitch() && p.Type != nil {
		typeName = p.Type.String()
	}
	tip := fmt.Sprintf("[%s] %s", typeName, p.Name)
	if p.HelpMessage != "" {
		tip += " - " + p.HelpMessage
	}
	for set, m := range p.Sets {
		if set != binding.AllParameterSets && m.Mandatory {
			tip += fmt.Sprintf(" (mandatory in %s)", set)
			break
		}
	}
	return tip
}

// hashtableKeyContexts maps command/parameter pairs to the well known keys
// of the hashtables those parameters accept.
var hashtableKeyContexts = map[string][]string{
	"select-object/property": {"Name", "Expression"},
	"sort-object/property":   {"Expression", "Ascending", "Descending"},
	"format-table/property":  {"Name", "Expression", "Width", "Alignment", "FormatString"},
	"format-list/property":   {"Name", "Expression", "FormatString"},
	"group-object/property":  {"Expression"},
	"new-object/property":    nil, // filled from the constructed type below
}

// CompleteHashtableKey completes keys inside a hashtable literal. Keys
// already present in the literal are excluded. For calculated-property
// hashtables the key set comes from the hashtableKeyContexts table; for a
// hashtable cast to a type the settable properties of that type are used.
func (e *Engine) CompleteHashtableKey(ctx *Context) []Result {
	var ht *syntax.HashtableLit
	for _, node := range ctx.RelatedAsts {
		if h, ok := node.(*syntax.HashtableLit); ok {
			ht = h
			break
		}
	}
	if ht == nil {
		return []Result{}
	}

	used := map[string]bool{}
	for _, entry := range ht.Entries {
		if key := syntax.StringValue(entry.Key); key != "" {
			used[strings.ToLower(key)] = true
		}
	}

	keys := e.hashtableKeysFor(ctx, ht)
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, key := range keys {
		if used[strings.ToLower(key)] || !matchWildcard(pattern, key) {
			continue
		}
		results = append(results, NewResult(key, key, KindProperty, key))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) hashtableKeysFor(ctx *Context, ht *syntax.HashtableLit) []string {
	// hashtable cast to a type: offer the type's settable properties
	for _, node := range ctx.RelatedAsts {
		if conv, ok := node.(*syntax.ConvertExpr); ok && conv.Operand == ht {
			if t := e.catalog.ResolveType(conv.Type.Name); t != nil {
				return settablePropertyNames(t)
			}
		}
	}

	cmd := ctx.EnclosingCommand()
	if cmd == nil {
		return nil
	}
	info := e.bind(ctx, cmd, binding.PurposeArgumentValue)
	if info == nil {
		return nil
	}
	paramName := ""
	for _, pair := range info.Pairs {
		if pair.Argument != nil && containsNode(pair.Argument, ht) {
			paramName = strings.ToLower(pair.ParameterName)
			break
		}
	}
	if paramName == "" {
		return nil
	}
	name := info.CommandName
	if info.Command != nil {
		name = info.Command.Name
	}
	key := strings.ToLower(name) + "/" + paramName
	if keys, ok := hashtableKeyContexts[key]; ok && keys != nil {
		return keys
	}
	return nil
}

// settablePropertyNames lists the exported fields of a struct type.
func settablePropertyNames(t reflect.Type) []string {
	t = derefType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

func containsNode(root, target syntax.Node) bool {
	found := false
	syntax.Walk(root, func(n syntax.Node) bool {
		if n == target {
			found = true
		}
		return !found
	})
	return found
}

// bind resolves the command and pairs its arguments, caching nothing: the
// line changes on every keystroke so a fresh pseudo-bind is cheaper than
// invalidation.
func (e *Engine) bind(ctx *Context, cmd *syntax.Command, purpose binding.Purpose) *binding.Info {
	if e.resolver == nil {
		return nil
	}
	info := binding.Bind(cmd, e.resolver, purpose)
	ctx.Binding = info
	if info != nil && info.Failure == binding.FailureCommandNotFound {
		e.log.Debug().Str("command", info.CommandName).Msg("command not resolvable during bind")
	}
	return info
}
