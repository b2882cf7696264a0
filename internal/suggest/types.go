package suggest

import (
	"sort"
	"strings"

	"github.com/nacre-sh/nacre/internal/syntax"
	"github.com/nacre-sh/nacre/internal/typecat"
)

// CompleteType completes a type name inside [ ] brackets. Matches come
// from the catalog: accelerators, short names, fully qualified names and
// namespace prefixes, each bucketed by dot count so a dotted fragment only
// competes with names of the same depth. An active using namespace
// statement widens the search to that namespace, with the qualifying
// prefix stripped from the emitted text.
func (e *Engine) CompleteType(ctx *Context) []Result {
	word := e.typeWord(ctx)
	var results []Result
	for _, match := range e.catalog.Lookup(word) {
		for _, entry := range match.Entries {
			results = append(results, typeResult(entry.Key, entry))
		}
	}
	for _, ns := range activeUsings(ctx) {
		for _, match := range e.catalog.Lookup(ns + "." + word) {
			for _, entry := range match.Entries {
				if entry.Kind == typecat.KindNamespace {
					continue
				}
				short := entry.Key
				if len(short) > len(ns) && strings.EqualFold(short[:len(ns)], ns) {
					short = short[len(ns)+1:]
				}
				results = append(results, typeResult(short, entry))
			}
		}
	}
	results = dedupeExact(results)
	sort.Slice(results, func(i, j int) bool { return results[i].ListItemText < results[j].ListItemText })
	return orderValues(results, word)
}

// CompleteNamespace completes namespace names for using namespace
// statements.
func (e *Engine) CompleteNamespace(ctx *Context) []Result {
	word := e.typeWord(ctx)
	var results []Result
	for _, match := range e.catalog.Lookup(word) {
		for _, entry := range match.Entries {
			if entry.Kind != typecat.KindNamespace {
				continue
			}
			results = append(results, typeResult(entry.Key, entry))
		}
	}
	results = dedupeExact(results)
	sort.Slice(results, func(i, j int) bool { return results[i].ListItemText < results[j].ListItemText })
	return orderValues(results, word)
}

// typeWord extracts the fragment typed so far from the enclosing type
// name node, which spans dots the tokenizer splits.
func (e *Engine) typeWord(ctx *Context) string {
	for _, n := range ctx.RelatedAsts {
		tn, ok := n.(*syntax.TypeName)
		if !ok {
			continue
		}
		start := tn.Pos.Start
		if start < 0 || start > ctx.CursorPos || ctx.CursorPos > len(ctx.Line) {
			break
		}
		word := ctx.Line[start:ctx.CursorPos]
		word = strings.TrimLeft(word, "[")
		ctx.ReplacementIndex = ctx.CursorPos - len(word)
		ctx.ReplacementLength = len(word)
		return word
	}
	return strings.TrimLeft(ctx.WordToComplete, "[")
}

// activeUsings collects the namespaces the parsed input imports with
// using namespace statements, including those of enclosing script blocks.
func activeUsings(ctx *Context) []string {
	if ctx.parse == nil || ctx.parse.Root == nil {
		return nil
	}
	var out []string
	syntax.Walk(ctx.parse.Root, func(n syntax.Node) bool {
		if u, ok := n.(*syntax.UsingNamespace); ok && u.Namespace != "" {
			out = append(out, u.Namespace)
		}
		return true
	})
	return out
}

func typeResult(key string, entry *typecat.Entry) Result {
	switch entry.Kind {
	case typecat.KindNamespace:
		return NewResult(key+".", key, KindNamespace, entry.FullName)
	case typecat.KindGeneric:
		return NewResult(key+"[", key, KindType, entry.ToolTip())
	default:
		return NewResult(key, key, KindType, entry.ToolTip())
	}
}
