// Package typecat maintains the process-wide type and namespace catalog the
// suggestion engine completes type names from. The catalog is built lazily
// from three sources: a fixed accelerator table, types registered by the
// embedding shell, and fully qualified names known by string alone. Entries
// are partitioned into buckets by the dot count of their key, each bucket
// backed by a patricia trie, so a prefix search only visits the bucket the
// word being completed can match.
package typecat

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tchap/go-patricia/v2/patricia"
)

// EntryKind classifies a catalog entry.
type EntryKind int

// Entry kinds.
const (
	KindType EntryKind = iota
	KindGeneric
	KindNamespace
	KindNameOnly // known by string only, no live reflection data
)

// Entry is one completion descriptor attached to a catalog key. A key can
// carry several descriptors: an accelerator and the type it abbreviates both
// surface as separate completions.
type Entry struct {
	Key       string // name fragment as registered, original case
	FullName  string
	Namespace string
	Kind      EntryKind
	Arity     int          // type-parameter count for generics
	Alias     bool         // entry is an accelerator for FullName
	Type      reflect.Type // nil for name-only entries
}

// ToolTip renders the descriptor's hover text. Generic definitions list
// placeholder type-parameter names.
func (e *Entry) ToolTip() string {
	switch e.Kind {
	case KindNamespace:
		return "Namespace " + e.FullName
	case KindGeneric:
		params := make([]string, e.Arity)
		for i := range params {
			params[i] = "T" + strconv.Itoa(i+1)
		}
		return fmt.Sprintf("%s[%s]", e.FullName, strings.Join(params, ", "))
	default:
		return e.FullName
	}
}

type bucket struct {
	trie *patricia.Trie
}

type snapshot struct {
	buckets []*bucket
}

// Catalog is the swap-on-invalidate catalog. Readers capture one snapshot
// per operation and never observe a partial rebuild.
type Catalog struct {
	snap atomic.Pointer[snapshot]

	mu      sync.Mutex
	aliases map[string]string
	names   []string
	types   map[string]reflect.Type
}

// accelerators is the fixed short-name table.
var accelerators = map[string]string{
	"array":       "System.Array",
	"bool":        "System.Boolean",
	"byte":        "System.Byte",
	"char":        "System.Char",
	"datetime":    "System.DateTime",
	"decimal":     "System.Decimal",
	"double":      "System.Double",
	"float":       "System.Single",
	"guid":        "System.Guid",
	"hashtable":   "System.Collections.Hashtable",
	"int":         "System.Int32",
	"long":        "System.Int64",
	"object":      "System.Object",
	"regex":       "System.Text.RegularExpressions.Regex",
	"scriptblock": "System.Management.Automation.ScriptBlock",
	"short":       "System.Int16",
	"string":      "System.String",
	"switch":      "System.Management.Automation.SwitchParameter",
	"timespan":    "System.TimeSpan",
	"uri":         "System.Uri",
	"version":     "System.Version",
	"xml":         "System.Xml.XmlDocument",
}

// wellKnownTypeNames is the flat catalog used where reflection over all
// loaded types is unavailable.
var wellKnownTypeNames = []string{
	"System.Array",
	"System.Boolean",
	"System.Byte",
	"System.Char",
	"System.Collections.ArrayList",
	"System.Collections.Generic.Dictionary`2",
	"System.Collections.Generic.HashSet`1",
	"System.Collections.Generic.List`1",
	"System.Collections.Generic.Queue`1",
	"System.Collections.Generic.Stack`1",
	"System.Collections.Hashtable",
	"System.ConsoleColor",
	"System.Convert",
	"System.DateTime",
	"System.Decimal",
	"System.Diagnostics.Process",
	"System.Diagnostics.Stopwatch",
	"System.Double",
	"System.Environment",
	"System.Exception",
	"System.Guid",
	"System.IO.Directory",
	"System.IO.DirectoryInfo",
	"System.IO.File",
	"System.IO.FileInfo",
	"System.IO.Path",
	"System.IO.StreamReader",
	"System.IO.StreamWriter",
	"System.Int16",
	"System.Int32",
	"System.Int64",
	"System.Management.Automation.ScriptBlock",
	"System.Management.Automation.SwitchParameter",
	"System.Math",
	"System.Net.Http.HttpClient",
	"System.Net.IPAddress",
	"System.Object",
	"System.Random",
	"System.Single",
	"System.String",
	"System.Text.Encoding",
	"System.Text.RegularExpressions.Regex",
	"System.Text.StringBuilder",
	"System.TimeSpan",
	"System.Uri",
	"System.Version",
	"System.Xml.XmlDocument",
}

// New creates a catalog seeded with the accelerator table and the well-known
// name list. The first lookup builds the snapshot.
func New() *Catalog {
	c := &Catalog{aliases: map[string]string{}, types: map[string]reflect.Type{}}
	for k, v := range accelerators {
		c.aliases[k] = v
	}
	c.names = append(c.names, wellKnownTypeNames...)
	return c
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the process-wide catalog.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = New()
	})
	return defaultCatalog
}

// RegisterNames adds fully qualified type names to the catalog and
// invalidates the current snapshot.
func (c *Catalog) RegisterNames(names ...string) {
	c.mu.Lock()
	c.names = append(c.names, names...)
	c.mu.Unlock()
	c.Invalidate()
}

// RegisterType adds a live reflected type under a fully qualified name and
// invalidates the current snapshot.
func (c *Catalog) RegisterType(fullName string, t reflect.Type) {
	c.mu.Lock()
	c.types[fullName] = t
	c.mu.Unlock()
	c.Invalidate()
}

// ReflectedType returns the live type registered under a full name, if any.
func (c *Catalog) ReflectedType(fullName string) (reflect.Type, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.types[fullName]
	return t, ok
}

// ResolveType maps a type name, accelerator or fully qualified and in any
// case, to a registered reflected type. Returns nil for unknown or
// name-only entries.
func (c *Catalog) ResolveType(name string) reflect.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	if full, ok := c.aliases[strings.ToLower(name)]; ok {
		name = full
	}
	if t, ok := c.types[name]; ok {
		return t
	}
	lower := strings.ToLower(name)
	for full, t := range c.types {
		if strings.ToLower(full) == lower {
			return t
		}
	}
	return nil
}

// RegisterAlias adds an accelerator and invalidates the current snapshot.
func (c *Catalog) RegisterAlias(alias, fullName string) {
	c.mu.Lock()
	c.aliases[strings.ToLower(alias)] = fullName
	c.mu.Unlock()
	c.Invalidate()
}

// Invalidate drops the current snapshot. Readers holding the old snapshot
// keep using it; the next lookup builds a fresh one off to the side and
// publishes it with a single atomic store.
func (c *Catalog) Invalidate() {
	c.snap.Store(nil)
}

func (c *Catalog) snapshot() *snapshot {
	if s := c.snap.Load(); s != nil {
		return s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.snap.Load(); s != nil {
		return s
	}
	s := c.build()
	c.snap.Store(s)
	return s
}

func (c *Catalog) build() *snapshot {
	s := &snapshot{}
	add := func(key string, e *Entry) {
		dots := strings.Count(key, ".")
		for len(s.buckets) <= dots {
			s.buckets = append(s.buckets, &bucket{trie: patricia.NewTrie()})
		}
		b := s.buckets[dots]
		lower := patricia.Prefix(strings.ToLower(key))
		if item := b.trie.Get(lower); item != nil {
			entries := item.([]*Entry)
			b.trie.Set(lower, append(entries, e))
			return
		}
		b.trie.Insert(lower, []*Entry{e})
	}

	namespaces := map[string]bool{}
	registerType := func(fullName string, t reflect.Type) {
		name, arity := splitGenericArity(fullName)
		kind := KindType
		if t == nil {
			kind = KindNameOnly
		}
		if arity > 0 {
			kind = KindGeneric
		}
		ns := ""
		short := name
		if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
			ns = name[:dot]
			short = name[dot+1:]
		}
		add(name, &Entry{Key: name, FullName: name, Namespace: ns, Kind: kind, Arity: arity, Type: t})
		// nested types keep only their full key
		if short != "" && !strings.Contains(name, "+") {
			add(short, &Entry{Key: short, FullName: name, Namespace: ns, Kind: kind, Arity: arity, Type: t})
		}
		for ns != "" {
			namespaces[ns] = true
			dot := strings.LastIndexByte(ns, '.')
			if dot < 0 {
				break
			}
			ns = ns[:dot]
		}
	}

	for _, n := range c.names {
		if _, ok := c.types[n]; ok {
			continue
		}
		registerType(n, nil)
	}
	for n, t := range c.types {
		registerType(n, t)
	}
	for alias, target := range c.aliases {
		add(alias, &Entry{Key: alias, FullName: target, Kind: KindType, Alias: true})
	}
	for ns := range namespaces {
		add(ns, &Entry{Key: ns, FullName: ns, Namespace: ns, Kind: KindNamespace})
	}
	return s
}

// splitGenericArity strips a back-tick arity suffix and returns the arity.
func splitGenericArity(name string) (string, int) {
	tick := strings.LastIndexByte(name, '`')
	if tick < 0 {
		return name, 0
	}
	arity, err := strconv.Atoi(name[tick+1:])
	if err != nil || arity <= 0 {
		return name, 0
	}
	return name[:tick], arity
}

// Match is one catalog hit: the key that matched and its descriptors.
type Match struct {
	Key     string
	Entries []*Entry
}

// Lookup returns every entry whose key matches the wildcard pattern,
// consulting only the bucket whose index equals the pattern's dot count.
// Results are sorted by key.
func (c *Catalog) Lookup(pattern string) []Match {
	s := c.snapshot()
	dots := strings.Count(pattern, ".")
	if dots >= len(s.buckets) {
		return nil
	}
	b := s.buckets[dots]
	lowerPattern := strings.ToLower(pattern)
	prefix := literalPrefix(lowerPattern)

	var matches []Match
	_ = b.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		key := string(p)
		if !matchPattern(lowerPattern+"*", key) {
			return nil
		}
		// a node can hold keys that differ only in case, for example the
		// accelerator "string" next to the short name "String"; each key
		// surfaces as its own match
		index := map[string]int{}
		for _, e := range item.([]*Entry) {
			i, ok := index[e.Key]
			if !ok {
				i = len(matches)
				index[e.Key] = i
				matches = append(matches, Match{Key: e.Key})
			}
			matches[i].Entries = append(matches[i].Entries, e)
		}
		return nil
	})
	sort.Slice(matches, func(a, b int) bool { return matches[a].Key < matches[b].Key })
	return matches
}

// literalPrefix returns the pattern text before the first wildcard char.
func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, "*?"); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// matchPattern matches a lowered * / ? pattern against a lowered key.
func matchPattern(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = strings.TrimLeft(pattern, "*")
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchPattern(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if s == "" {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		default:
			if s == "" || pattern[0] != s[0] {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		}
	}
	return s == ""
}

// BucketCount returns how many dot-count buckets the current snapshot has.
func (c *Catalog) BucketCount() int {
	return len(c.snapshot().buckets)
}

// BucketKeys lists every key in one bucket, for diagnostics.
func (c *Catalog) BucketKeys(index int) []string {
	s := c.snapshot()
	if index < 0 || index >= len(s.buckets) {
		return nil
	}
	var keys []string
	_ = s.buckets[index].trie.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	})
	sort.Strings(keys)
	return keys
}
