package suggest

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// valueStrategy is one link in the argument-value chain. handled=true means
// the strategy owned the decision even when it produced nothing, so later
// strategies and the path fallback are skipped.
type valueStrategy func(e *Engine, ctx *Context, loc *ArgumentLocation) (results []Result, handled bool)

var valueStrategies = []valueStrategy{
	customValueStrategy,
	declaredCompleterStrategy,
	typedValueStrategy,
	validValuesStrategy,
	builtinValueStrategy,
}

// CompleteArgument completes the value of a command argument. Strategies
// run in order from most specific (registered custom completers) to most
// generic; when none takes ownership the result falls back to filesystem
// paths, matching interactive expectations for arbitrary arguments.
func (e *Engine) CompleteArgument(ctx *Context) []Result {
	loc := e.locateArgument(ctx)
	if loc == nil {
		return []Result{}
	}
	for _, strat := range valueStrategies {
		if ctx.cancelled() {
			return []Result{}
		}
		if results, handled := strat(e, ctx, loc); handled {
			if results == nil {
				results = []Result{}
			}
			return results
		}
	}
	return e.fallbackArgumentValues(ctx, loc)
}

// fallbackArgumentValues is the last resort: filesystem paths, with
// wildcard expansion off for native executables whose arguments the shell
// cannot expand, plus command names when the word is shaped like one.
func (e *Engine) fallbackArgumentValues(ctx *Context, loc *ArgumentLocation) []Result {
	if loc.Info != nil && loc.Info.Command != nil && loc.Info.Command.Type == binding.CommandNative {
		saved := ctx.Options.LiteralPaths
		ctx.Options.LiteralPaths = true
		defer func() { ctx.Options.LiteralPaths = saved }()
	}
	results := e.CompletePath(ctx)
	if strings.Contains(ctx.WordToComplete, "-") {
		results = append(results, e.CompleteCommand(ctx)...)
	}
	return results
}

func customValueStrategy(e *Engine, ctx *Context, loc *ArgumentLocation) ([]Result, bool) {
	fn := e.custom.Lookup(loc.Info.CommandName, loc.ParameterName)
	if fn == nil {
		return nil, false
	}
	candidates := fn(loc.Info.CommandName, loc.ParameterName, ctx.WordToComplete, ctx.EnclosingCommand(), boundArgValues(loc.Info))
	return candidateResults(ctx, candidates), true
}

func declaredCompleterStrategy(e *Engine, ctx *Context, loc *ArgumentLocation) ([]Result, bool) {
	if loc.Parameter == nil || loc.Parameter.Completer == nil {
		return nil, false
	}
	candidates := loc.Parameter.Completer(loc.Info.CommandName, loc.ParameterName, ctx.WordToComplete, ctx.EnclosingCommand(), boundArgValues(loc.Info))
	return candidateResults(ctx, candidates), true
}

func validValuesStrategy(e *Engine, ctx *Context, loc *ArgumentLocation) ([]Result, bool) {
	if loc.Parameter == nil || len(loc.Parameter.ValidValues) == 0 {
		return nil, false
	}
	var results []Result
	for _, v := range loc.Parameter.ValidValues {
		if matchesWord(ctx.WordToComplete, v) {
			results = append(results, NewResult(quoteIfNeeded(ctx, v), v, KindParameterValue, v))
		}
	}
	return orderValues(results, ctx.WordToComplete), true
}

func builtinValueStrategy(e *Engine, ctx *Context, loc *ArgumentLocation) ([]Result, bool) {
	if loc.ParameterName == "" {
		return nil, false
	}
	// the table is keyed by declared names, so aliases go through their target
	name := loc.Info.CommandName
	if loc.Info.Command != nil {
		name = loc.Info.Command.Name
	}
	key := strings.ToLower(name) + "/" + strings.ToLower(loc.ParameterName)
	fn, ok := builtinValues[key]
	if !ok {
		return nil, false
	}
	return fn(e, ctx, loc), true
}

// typedValueStrategy offers literal values implied by the parameter type.
func typedValueStrategy(e *Engine, ctx *Context, loc *ArgumentLocation) ([]Result, bool) {
	if loc.Parameter == nil || loc.Parameter.Type == nil {
		return nil, false
	}
	if loc.Parameter.IsSwitch() || loc.Parameter.Type.Kind() == reflect.Bool {
		var results []Result
		for _, v := range []string{"$true", "$false"} {
			if matchesWord(strings.TrimPrefix(ctx.WordToComplete, "$"), strings.TrimPrefix(v, "$")) {
				results = append(results, NewResult(v, v, KindParameterValue, v))
			}
		}
		return results, true
	}
	return nil, false
}

// builtinValues maps "command/parameter" in lowercase to value producers
// for well-known commands. Positional arguments resolve to the same keys
// once the locator has mapped them to a declared parameter.
var builtinValues = map[string]func(*Engine, *Context, *ArgumentLocation) []Result{
	"get-command/name":     (*Engine).commandNameValues,
	"get-help/name":        (*Engine).commandNameValues,
	"get-command/module":   (*Engine).moduleNameValues,
	"get-command/verb":     (*Engine).verbValues,
	"get-command/noun":     (*Engine).nounValues,
	"import-module/name":   (*Engine).moduleNameValues,
	"get-module/name":      (*Engine).moduleNameValues,
	"remove-module/name":   (*Engine).moduleNameValues,
	"get-process/name":     (*Engine).processNameValues,
	"stop-process/name":    (*Engine).processNameValues,
	"stop-process/id":      (*Engine).processIDValues,
	"get-process/id":       (*Engine).processIDValues,
	"wait-process/name":    (*Engine).processNameValues,
	"get-service/name":     (*Engine).serviceNameValues,
	"start-service/name":   (*Engine).serviceNameValues,
	"stop-service/name":    (*Engine).serviceNameValues,
	"restart-service/name": (*Engine).serviceNameValues,
	"get-variable/name":    (*Engine).variableNameValues,
	"set-variable/name":    (*Engine).variableNameValues,
	"clear-variable/name":  (*Engine).variableNameValues,
	"remove-variable/name": (*Engine).variableNameValues,
	"get-alias/name":       (*Engine).aliasNameValues,
	"get-psdrive/name":     (*Engine).driveNameValues,

	"select-object/property":        (*Engine).pipelinePropertyValues,
	"select-object/excludeproperty": (*Engine).pipelinePropertyValues,
	"select-object/expandproperty":  (*Engine).pipelinePropertyValues,
	"sort-object/property":          (*Engine).pipelinePropertyValues,
	"group-object/property":         (*Engine).pipelinePropertyValues,
	"format-table/property":         (*Engine).pipelinePropertyValues,
	"format-table/groupby":          (*Engine).pipelinePropertyValues,
	"where-object/property":         (*Engine).pipelinePropertyValues,

	"get-psdrive/psprovider":      (*Engine).providerNameValues,
	"get-psprovider/psprovider":   (*Engine).providerNameValues,
	"new-item/itemtype":           (*Engine).itemTypeValues,
	"get-job/name":                (*Engine).jobNameValues,
	"receive-job/name":            (*Engine).jobNameValues,
	"remove-job/name":             (*Engine).jobNameValues,
	"get-scheduledjob/name":       (*Engine).scheduledJobNameValues,
	"get-tracesource/name":        (*Engine).traceSourceValues,
	"set-tracesource/name":        (*Engine).traceSourceValues,
	"get-history/id":              (*Engine).historyIDValues,
	"invoke-history/id":           (*Engine).historyIDValues,
	"get-cimclass/classname":      (*Engine).cimClassNameValues,
	"get-ciminstance/classname":   (*Engine).cimClassNameValues,
	"new-ciminstance/classname":   (*Engine).cimClassNameValues,
	"get-cimclass/namespace":      (*Engine).cimNamespaceValues,
	"get-ciminstance/namespace":   (*Engine).cimNamespaceValues,
	"invoke-cimmethod/classname":  (*Engine).cimClassNameValues,
	"invoke-cimmethod/namespace":  (*Engine).cimNamespaceValues,
	"invoke-cimmethod/methodname": (*Engine).cimMethodNameValues,

	"get-cimassociatedinstance/resultclassname": (*Engine).cimAssociatorValues,
}

// itemTypeValues is the fixed -ItemType vocabulary of the item provider.
func (e *Engine) itemTypeValues(ctx *Context, loc *ArgumentLocation) []Result {
	var results []Result
	for _, v := range []string{"Directory", "File", "HardLink", "Junction", "SymbolicLink"} {
		if matchesWord(ctx.WordToComplete, v) {
			results = append(results, NewResult(v, v, KindParameterValue, v))
		}
	}
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) commandNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	return e.CompleteCommand(ctx)
}

func (e *Engine) moduleNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	return e.CompleteModule(ctx)
}

func (e *Engine) verbValues(ctx *Context, loc *ArgumentLocation) []Result {
	return e.commandNameParts(ctx, 0)
}

func (e *Engine) nounValues(ctx *Context, loc *ArgumentLocation) []Result {
	return e.commandNameParts(ctx, 1)
}

// commandNameParts extracts deduplicated verb (part 0) or noun (part 1)
// halves of every verb-noun command name.
func (e *Engine) commandNameParts(ctx *Context, part int) []Result {
	pattern := ctx.WordToComplete + "*"
	seen := map[string]bool{}
	var results []Result
	for _, obj := range e.runHelper("get-command", nil) {
		cmd, ok := obj.(*binding.CommandInfo)
		if !ok {
			continue
		}
		halves := strings.SplitN(cmd.Name, "-", 2)
		if len(halves) != 2 {
			continue
		}
		value := halves[part]
		key := strings.ToLower(value)
		if seen[key] || !matchWildcard(pattern, value) {
			continue
		}
		seen[key] = true
		results = append(results, NewResult(value, value, KindParameterValue, value))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) processNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	seen := map[string]bool{}
	var results []Result
	for _, obj := range e.runHelper("get-process", nil) {
		p, ok := obj.(*session.Process)
		if !ok || !matchWildcard(pattern, p.Name) {
			continue
		}
		if seen[strings.ToLower(p.Name)] {
			continue
		}
		seen[strings.ToLower(p.Name)] = true
		results = append(results, NewResult(quoteIfNeeded(ctx, p.Name), p.Name, KindParameterValue, fmt.Sprintf("%s (%d)", p.Name, p.ID)))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) processIDValues(ctx *Context, loc *ArgumentLocation) []Result {
	var results []Result
	for _, obj := range e.runHelper("get-process", nil) {
		p, ok := obj.(*session.Process)
		if !ok {
			continue
		}
		id := strconv.Itoa(p.ID)
		if !strings.HasPrefix(id, ctx.WordToComplete) {
			continue
		}
		results = append(results, NewResult(id, fmt.Sprintf("%d %s", p.ID, p.Name), KindParameterValue, p.Name))
	}
	sort.Slice(results, func(i, j int) bool {
		a, _ := strconv.Atoi(results[i].CompletionText)
		b, _ := strconv.Atoi(results[j].CompletionText)
		return a < b
	})
	return results
}

func (e *Engine) serviceNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-service", nil) {
		s, ok := obj.(*session.Service)
		if !ok || !matchWildcard(pattern, s.Name) {
			continue
		}
		tip := s.DisplayName
		if tip == "" {
			tip = s.Name
		}
		results = append(results, NewResult(quoteIfNeeded(ctx, s.Name), s.Name, KindParameterValue, tip))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

// variableNameValues completes variable names without the dollar sign, the
// shape Get-Variable and Set-Variable expect.
func (e *Engine) variableNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := strings.TrimPrefix(ctx.WordToComplete, "$") + "*"
	var results []Result
	for _, obj := range e.runHelper("get-variable", nil) {
		v, ok := obj.(*session.Variable)
		if !ok || !matchWildcard(pattern, v.Name) {
			continue
		}
		results = append(results, NewResult(v.Name, v.Name, KindVariable, variableToolTip(v)))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) aliasNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-alias", nil) {
		a, ok := obj.(*session.Alias)
		if !ok || !matchWildcard(pattern, a.Name) {
			continue
		}
		results = append(results, NewResult(a.Name, a.Name, KindParameterValue, a.Name+" -> "+a.Definition))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) driveNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-psdrive", nil) {
		d, ok := obj.(*session.Drive)
		if !ok || !matchWildcard(pattern, d.Name) {
			continue
		}
		results = append(results, NewResult(d.Name, d.Name, KindParameterValue, fmt.Sprintf("%s (%s)", d.Name, d.Provider)))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) providerNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-psprovider", nil) {
		p, ok := obj.(*session.Provider)
		if !ok || !matchWildcard(pattern, p.Name) {
			continue
		}
		results = append(results, NewResult(p.Name, p.Name, KindParameterValue, p.Name))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) jobNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-job", nil) {
		j, ok := obj.(*session.Job)
		if !ok || !matchWildcard(pattern, j.Name) {
			continue
		}
		results = append(results, NewResult(quoteIfNeeded(ctx, j.Name), j.Name, KindParameterValue, fmt.Sprintf("%s [%s]", j.Name, j.State)))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) scheduledJobNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-scheduledjob", nil) {
		name, ok := obj.(string)
		if !ok || !matchWildcard(pattern, name) {
			continue
		}
		results = append(results, NewResult(quoteIfNeeded(ctx, name), name, KindParameterValue, name))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) traceSourceValues(ctx *Context, loc *ArgumentLocation) []Result {
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, obj := range e.runHelper("get-tracesource", nil) {
		t, ok := obj.(*session.TraceSource)
		if !ok || !matchWildcard(pattern, t.Name) {
			continue
		}
		results = append(results, NewResult(t.Name, t.Name, KindParameterValue, t.Name))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

// pipelinePropertyValues completes property names of the objects the
// previous pipeline stage emits, so Select-Object and friends offer the
// actual columns of their input.
func (e *Engine) pipelinePropertyValues(ctx *Context, loc *ArgumentLocation) []Result {
	cmd := ctx.EnclosingCommand()
	pipeline := ctx.EnclosingPipeline()
	if cmd == nil || pipeline == nil {
		return nil
	}
	var prev *syntax.Command
	for i, el := range pipeline.Elements {
		if c, ok := el.(*syntax.Command); ok && c == cmd && i > 0 {
			prev, _ = pipeline.Elements[i-1].(*syntax.Command)
			break
		}
	}
	if prev == nil {
		return nil
	}
	pattern := ctx.WordToComplete + "*"
	seen := map[string]bool{}
	var results []Result
	for _, t := range e.inferCommandOutput(prev) {
		for _, c := range e.typeMembers(t) {
			if c.Kind != KindProperty || !matchWildcard(pattern, c.Name) {
				continue
			}
			key := strings.ToLower(c.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, NewResult(c.Name, c.Name, KindProperty, c.ToolTip))
		}
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

func (e *Engine) historyIDValues(ctx *Context, loc *ArgumentLocation) []Result {
	var results []Result
	for _, obj := range e.runHelper("get-history", nil) {
		h, ok := obj.(*session.HistoryEntry)
		if !ok {
			continue
		}
		id := strconv.Itoa(h.ID)
		if !strings.HasPrefix(id, ctx.WordToComplete) {
			continue
		}
		results = append(results, NewResult(id, fmt.Sprintf("%s: %s", id, h.CommandLine), KindHistory, h.CommandLine))
	}
	return results
}

// boundArgValues flattens already bound arguments to literal values, the
// shape custom completers receive so they can filter on earlier arguments.
func boundArgValues(info *binding.Info) map[string]interface{} {
	out := make(map[string]interface{}, len(info.BoundArgs))
	for name, node := range info.BoundArgs {
		if node == nil {
			out[name] = true // switch presence
			continue
		}
		out[name] = literalValue(node)
	}
	return out
}

func candidateResults(ctx *Context, candidates []binding.Candidate) []Result {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if !matchesWord(ctx.WordToComplete, c.ListItem) && !matchesWord(ctx.WordToComplete, c.Text) {
			continue
		}
		list := c.ListItem
		if list == "" {
			list = c.Text
		}
		results = append(results, NewResult(c.Text, list, KindParameterValue, c.ToolTip))
	}
	return orderValues(results, ctx.WordToComplete)
}

func variableToolTip(v *session.Variable) string {
	if v.Description != "" {
		return v.Description
	}
	if v.Value == nil {
		return v.Name
	}
	return fmt.Sprintf("%v", v.Value)
}
