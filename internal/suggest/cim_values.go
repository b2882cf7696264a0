package suggest

import (
	"strings"

	"github.com/nacre-sh/nacre/internal/cim"
	"github.com/nacre-sh/nacre/internal/syntax"
)

const defaultCimNamespace = "root/cimv2"

// boundCimNamespace finds an already typed -Namespace argument so class
// completion queries the namespace the user is actually targeting.
func boundCimNamespace(loc *ArgumentLocation) string {
	if node, ok := loc.Info.BoundArg("Namespace"); ok && node != nil {
		if ns := syntax.StringValue(node); ns != "" {
			return ns
		}
	}
	return defaultCimNamespace
}

func (e *Engine) cimClassNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	if e.cim == nil {
		return []Result{}
	}
	ns := boundCimNamespace(loc)
	names := e.cimCache.ClassNames(e.cim, ns, ctx.cancelled)
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, name := range names {
		if !matchWildcard(pattern, name) {
			continue
		}
		results = append(results, NewResult(name, name, KindType, ns+":"+name))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

// cimNamespaceValues completes child namespaces of the typed prefix. The
// word "root/cim" enumerates children of "root" and filters on "cim".
func (e *Engine) cimNamespaceValues(ctx *Context, loc *ArgumentLocation) []Result {
	if e.cim == nil {
		return []Result{}
	}
	word := ctx.WordToComplete
	parent := "root"
	leaf := word
	if i := strings.LastIndexAny(word, "/\\"); i >= 0 {
		parent = word[:i]
		leaf = word[i+1:]
	}
	children := cim.Namespaces(e.cim, parent, ctx.cancelled)
	if len(children) == 0 {
		e.log.Debug().Str("namespace", parent).Msg("no cim child namespaces")
		return []Result{}
	}
	pattern := leaf + "*"
	var results []Result
	for _, child := range children {
		if !matchWildcard(pattern, child) {
			continue
		}
		full := parent + "/" + child
		results = append(results, NewResult(full, child, KindNamespace, full))
	}
	sortResults(results)
	return orderValues(results, leaf)
}

// boundCimClass finds the class name bound to -ClassName or -InputObject.
func boundCimClass(loc *ArgumentLocation) string {
	for _, key := range []string{"ClassName", "InputObject"} {
		if node, ok := loc.Info.BoundArg(key); ok && node != nil {
			if v := syntax.StringValue(node); v != "" {
				return v
			}
		}
	}
	return ""
}

// cimAssociatorValues completes -ResultClassName from the association
// targets of the class bound to -InputObject or -ClassName.
func (e *Engine) cimAssociatorValues(ctx *Context, loc *ArgumentLocation) []Result {
	if e.cim == nil {
		return []Result{}
	}
	source := boundCimClass(loc)
	if source == "" {
		return []Result{}
	}
	ns := boundCimNamespace(loc)
	names := e.cimCache.AssociatorClassNames(e.cim, ns, source, ctx.cancelled)
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, name := range names {
		if !matchWildcard(pattern, name) {
			continue
		}
		results = append(results, NewResult(name, name, KindType, name))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}

// cimMethodNameValues completes -MethodName from the methods of the class
// bound to -ClassName or -InputObject.
func (e *Engine) cimMethodNameValues(ctx *Context, loc *ArgumentLocation) []Result {
	if e.cim == nil {
		return []Result{}
	}
	source := boundCimClass(loc)
	if source == "" {
		return []Result{}
	}
	ns := boundCimNamespace(loc)
	cls := e.cimCache.GetClass(e.cim, ns, source)
	if cls == nil {
		return []Result{}
	}
	pattern := ctx.WordToComplete + "*"
	var results []Result
	for _, m := range cls.Methods {
		if !matchWildcard(pattern, m.Name) {
			continue
		}
		results = append(results, NewResult(m.Name, m.Name, KindMethod, cls.Name+"."+m.Name))
	}
	sortResults(results)
	return orderValues(results, ctx.WordToComplete)
}
