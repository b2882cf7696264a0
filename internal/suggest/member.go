package suggest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/nacre-sh/nacre/internal/syntax"
)

// MemberCandidate is one completable member of a type or value.
type MemberCandidate struct {
	Name    string
	Kind    Kind
	ToolTip string
}

// memberAugmentations holds extra members attached to type names, covering
// what reflection cannot see: extension members and the surface of types
// that only exist by name.
type memberAugmentations struct {
	mu     sync.RWMutex
	byType map[string][]MemberCandidate
}

func newMemberAugmentations() *memberAugmentations {
	a := &memberAugmentations{byType: map[string][]MemberCandidate{}}
	for name, members := range defaultAugmentations {
		a.byType[strings.ToLower(name)] = members
	}
	return a
}

func (a *memberAugmentations) add(typeName string, members ...MemberCandidate) {
	key := strings.ToLower(typeName)
	a.mu.Lock()
	a.byType[key] = append(a.byType[key], members...)
	a.mu.Unlock()
}

func (a *memberAugmentations) lookup(typeName string) []MemberCandidate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.byType[strings.ToLower(typeName)]
}

func method(name, tip string) MemberCandidate {
	return MemberCandidate{Name: name, Kind: KindMethod, ToolTip: tip}
}

func property(name, tip string) MemberCandidate {
	return MemberCandidate{Name: name, Kind: KindProperty, ToolTip: tip}
}

var defaultAugmentations = map[string][]MemberCandidate{
	"string": {
		property("Length", "int Length"),
		method("Contains", "bool Contains(string value)"),
		method("EndsWith", "bool EndsWith(string value)"),
		method("IndexOf", "int IndexOf(string value)"),
		method("PadLeft", "string PadLeft(int totalWidth)"),
		method("PadRight", "string PadRight(int totalWidth)"),
		method("Replace", "string Replace(string old, string new)"),
		method("Split", "string[] Split(string separator)"),
		method("StartsWith", "bool StartsWith(string value)"),
		method("Substring", "string Substring(int start, int length)"),
		method("ToLower", "string ToLower()"),
		method("ToUpper", "string ToUpper()"),
		method("Trim", "string Trim()"),
		method("ToString", "string ToString()"),
	},
	"int": {
		method("ToString", "string ToString()"),
		method("CompareTo", "int CompareTo(int value)"),
	},
	"float64": {
		method("ToString", "string ToString()"),
	},
	"bool": {
		method("ToString", "string ToString()"),
	},
	"System.Math": {
		method("Abs", "static double Abs(double value)"),
		method("Ceiling", "static double Ceiling(double value)"),
		method("Floor", "static double Floor(double value)"),
		method("Max", "static double Max(double a, double b)"),
		method("Min", "static double Min(double a, double b)"),
		method("Pow", "static double Pow(double x, double y)"),
		method("Round", "static double Round(double value, int digits)"),
		method("Sqrt", "static double Sqrt(double value)"),
		property("PI", "static double PI"),
		property("E", "static double E"),
	},
	"System.String": {
		method("Format", "static string Format(string format, params object[] args)"),
		method("IsNullOrEmpty", "static bool IsNullOrEmpty(string value)"),
		method("IsNullOrWhiteSpace", "static bool IsNullOrWhiteSpace(string value)"),
		method("Join", "static string Join(string separator, string[] values)"),
		method("Concat", "static string Concat(params object[] args)"),
	},
	"System.DateTime": {
		property("Now", "static datetime Now"),
		property("Today", "static datetime Today"),
		property("UtcNow", "static datetime UtcNow"),
		method("Parse", "static datetime Parse(string value)"),
		method("TryParse", "static bool TryParse(string value, out datetime result)"),
	},
	"System.Guid": {
		method("NewGuid", "static guid NewGuid()"),
		method("Parse", "static guid Parse(string value)"),
		property("Empty", "static guid Empty"),
	},
	"System.Environment": {
		property("MachineName", "static string MachineName"),
		property("UserName", "static string UserName"),
		property("CurrentDirectory", "static string CurrentDirectory"),
		method("GetEnvironmentVariable", "static string GetEnvironmentVariable(string name)"),
	},
}

// collectionMembers are synthesized on arrays and collections, matching the
// intrinsic members every enumerable value carries.
var collectionMembers = []MemberCandidate{
	property("Count", "int Count"),
	property("Length", "int Length"),
	method("Where", "object[] Where(scriptblock predicate)"),
	method("ForEach", "object[] ForEach(scriptblock body)"),
}

var hashtableMembers = []MemberCandidate{
	property("Count", "int Count"),
	property("Keys", "ICollection Keys"),
	property("Values", "ICollection Values"),
	method("ContainsKey", "bool ContainsKey(object key)"),
	method("ContainsValue", "bool ContainsValue(object value)"),
	method("Remove", "void Remove(object key)"),
	method("GetEnumerator", "IDictionaryEnumerator GetEnumerator()"),
}

// CompleteMember completes after a . or :: operator. A live value from the
// safe evaluator wins; otherwise members come from statically inferred
// types, CIM class metadata for by-name output types, and the augmentation
// table.
func (e *Engine) CompleteMember(ctx *Context) []Result {
	var member *syntax.MemberExpr
	for _, node := range ctx.RelatedAsts {
		if m, ok := node.(*syntax.MemberExpr); ok {
			member = m
			break
		}
	}
	if member == nil {
		return []Result{}
	}
	word := ctx.WordToComplete
	if ctx.TokenAtCursor != nil && (ctx.TokenAtCursor.Kind == syntax.TokDot || ctx.TokenAtCursor.Kind == syntax.TokStaticOp) {
		word = ""
	}

	var candidates []MemberCandidate
	if member.Static {
		candidates = e.staticMembers(member)
	} else {
		candidates = e.instanceMembers(ctx, member)
	}

	pattern := word + "*"
	seen := map[string]bool{}
	var results []Result
	for _, c := range candidates {
		if !matchWildcard(pattern, c.Name) {
			continue
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		text := c.Name
		if c.Kind == KindMethod {
			text += "("
		} else if needsQuoting(text) {
			// a hashtable key with special characters only parses quoted
			text = "'" + strings.ReplaceAll(text, "'", "''") + "'"
		}
		results = append(results, NewResult(text, c.Name, c.Kind, c.ToolTip))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Kind != results[j].Kind {
			return results[i].Kind < results[j].Kind
		}
		return strings.ToLower(results[i].ListItemText) < strings.ToLower(results[j].ListItemText)
	})
	return pinExactMatch(results, word)
}

func (e *Engine) staticMembers(m *syntax.MemberExpr) []MemberCandidate {
	typeName := staticTargetName(m.Target)
	if typeName == "" {
		return nil
	}
	full := typeName
	if matches := e.catalog.Lookup(typeName); len(matches) > 0 {
		for _, entry := range matches[0].Entries {
			if strings.EqualFold(entry.Key, typeName) || entry.Alias {
				full = entry.FullName
				break
			}
		}
	}
	candidates := append([]MemberCandidate{}, e.augment.lookup(full)...)
	if len(candidates) == 0 && full != typeName {
		candidates = append(candidates, e.augment.lookup(typeName)...)
	}
	candidates = append(candidates, method("new", fmt.Sprintf("%s new()", full)))
	return candidates
}

func staticTargetName(target syntax.Node) string {
	switch t := target.(type) {
	case *syntax.TypeLit:
		return t.Type.Name
	case *syntax.TypeName:
		return t.Name
	case *syntax.StringLit:
		return t.Value
	}
	return ""
}

func (e *Engine) instanceMembers(ctx *Context, m *syntax.MemberExpr) []MemberCandidate {
	if value, ok := e.safeEvaluate(ctx, m.Target); ok && value != nil {
		return e.valueMembers(value)
	}
	var candidates []MemberCandidate
	for _, t := range e.inferTypes(ctx, m.Target) {
		candidates = append(candidates, e.typeMembers(t)...)
	}
	if len(candidates) > 0 {
		return candidates
	}
	return e.namedTypeMembers(ctx, m)
}

func (e *Engine) valueMembers(value interface{}) []MemberCandidate {
	switch v := value.(type) {
	case map[string]interface{}:
		candidates := make([]MemberCandidate, 0, len(v)+len(hashtableMembers))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			candidates = append(candidates, property(k, fmt.Sprintf("%v", v[k])))
		}
		return append(candidates, hashtableMembers...)
	case []interface{}:
		candidates := append([]MemberCandidate{}, collectionMembers...)
		// member access on a collection falls through to its elements
		if len(v) > 0 {
			candidates = append(candidates, e.valueMembers(v[0])...)
		}
		return candidates
	default:
		return e.typeMembers(reflect.TypeOf(value))
	}
}

// typeMembers reflects the exported surface of a Go type: fields become
// properties, methods keep their signature as the tooltip.
func (e *Engine) typeMembers(t reflect.Type) []MemberCandidate {
	if t == nil {
		return nil
	}
	base := derefType(t)
	var candidates []MemberCandidate
	if base.Kind() == reflect.Struct {
		for i := 0; i < base.NumField(); i++ {
			f := base.Field(i)
			if f.PkgPath != "" {
				continue
			}
			candidates = append(candidates, property(f.Name, fmt.Sprintf("%s %s", f.Type.String(), f.Name)))
		}
	}
	ptr := t
	if ptr.Kind() != reflect.Ptr {
		ptr = reflect.PtrTo(base)
	}
	for i := 0; i < ptr.NumMethod(); i++ {
		meth := ptr.Method(i)
		if meth.PkgPath != "" {
			continue
		}
		candidates = append(candidates, method(meth.Name, methodSignature(meth)))
	}
	if base.Kind() == reflect.Slice || base.Kind() == reflect.Array {
		candidates = append(candidates, collectionMembers...)
	}
	candidates = append(candidates, e.augment.lookup(base.String())...)
	return candidates
}

func methodSignature(m reflect.Method) string {
	mt := m.Type
	params := make([]string, 0, mt.NumIn()-1)
	for i := 1; i < mt.NumIn(); i++ {
		params = append(params, mt.In(i).String())
	}
	ret := "void"
	if mt.NumOut() > 0 {
		ret = mt.Out(0).String()
	}
	return fmt.Sprintf("%s %s(%s)", ret, m.Name, strings.Join(params, ", "))
}

// namedTypeMembers consults CIM metadata when the previous pipeline stage
// declares output types that exist only as class names.
func (e *Engine) namedTypeMembers(ctx *Context, m *syntax.MemberExpr) []MemberCandidate {
	v, ok := m.Target.(*syntax.VariableExpr)
	if !ok || e.cim == nil {
		return nil
	}
	name := strings.ToLower(v.Name)
	if name != "_" && name != "psitem" {
		return nil
	}
	pipeline := ctx.EnclosingPipeline()
	if pipeline == nil {
		return nil
	}
	var candidates []MemberCandidate
	for _, el := range pipeline.Elements {
		cmd, ok := el.(*syntax.Command)
		if !ok {
			continue
		}
		for _, typeName := range e.outputTypeNames(cmd) {
			ns, class, ok := splitCimTypeName(typeName)
			if !ok {
				continue
			}
			cls := e.cimCache.GetClass(e.cim, ns, class)
			if cls == nil {
				continue
			}
			for _, p := range cls.Properties {
				candidates = append(candidates, property(p.Name, fmt.Sprintf("%s %s", p.Type, p.Name)))
			}
			for _, meth := range cls.Methods {
				params := make([]string, 0, len(meth.Parameters))
				for _, p := range meth.Parameters {
					params = append(params, p.Type+" "+p.Name)
				}
				candidates = append(candidates, method(meth.Name, fmt.Sprintf("%s(%s)", meth.Name, strings.Join(params, ", "))))
			}
		}
	}
	return candidates
}

// splitCimTypeName recognizes "Microsoft.Management.Infrastructure.CimInstance#root/cimv2/Win32_Process"
// style names and plain "root/cimv2:Win32_Process" pairs.
func splitCimTypeName(name string) (namespace, class string, ok bool) {
	if i := strings.IndexByte(name, '#'); i >= 0 {
		rest := name[i+1:]
		if j := strings.LastIndexByte(rest, '/'); j >= 0 {
			return rest[:j], rest[j+1:], true
		}
		return defaultCimNamespace, rest, true
	}
	if i := strings.IndexByte(name, ':'); i >= 0 && strings.Contains(name[:i], "/") {
		return name[:i], name[i+1:], true
	}
	return "", "", false
}
