package suggest

import (
	"sort"
	"strings"

	"github.com/nacre-sh/nacre/internal/syntax"
)

func tokenPreceding(ctx *Context, pos int) *syntax.Token {
	if ctx.parse == nil {
		return nil
	}
	return syntax.TokenBefore(ctx.parse.Tokens, pos)
}

type operatorEntry struct {
	name string
	tip  string
}

// comparisonOperators are offered where a dash starts an operator rather
// than a parameter, which the tokenizer decides from adjacency.
var comparisonOperators = []operatorEntry{
	{"eq", "Equal"},
	{"ne", "Not equal"},
	{"gt", "Greater than"},
	{"ge", "Greater than or equal"},
	{"lt", "Less than"},
	{"le", "Less than or equal"},
	{"like", "Wildcard match"},
	{"notlike", "Negated wildcard match"},
	{"match", "Regular expression match"},
	{"notmatch", "Negated regular expression match"},
	{"contains", "Collection contains value"},
	{"notcontains", "Collection does not contain value"},
	{"in", "Value in collection"},
	{"notin", "Value not in collection"},
	{"replace", "Regular expression replace"},
	{"split", "Split on pattern"},
	{"join", "Join with separator"},
	{"is", "Type test"},
	{"isnot", "Negated type test"},
	{"as", "Type conversion"},
	{"and", "Logical and"},
	{"or", "Logical or"},
	{"xor", "Logical exclusive or"},
	{"not", "Logical negation"},
	{"band", "Bitwise and"},
	{"bor", "Bitwise or"},
	{"bxor", "Bitwise exclusive or"},
	{"bnot", "Bitwise negation"},
	{"shl", "Shift left"},
	{"shr", "Shift right"},
	{"f", "Format operator"},
}

// caseVariants exist for the string comparison operators.
var caseSensitivePrefixes = map[string]bool{
	"eq": true, "ne": true, "gt": true, "ge": true, "lt": true, "le": true,
	"like": true, "notlike": true, "match": true, "notmatch": true,
	"contains": true, "notcontains": true, "in": true, "notin": true,
	"replace": true, "split": true,
}

// statementFlags are the flags of flow-control statements, completed after
// a dash following the statement keyword.
var statementFlags = map[string][]operatorEntry{
	"switch": {
		{"CaseSensitive", "Case sensitive matching"},
		{"Exact", "Exact string matching"},
		{"File", "Read input from a file"},
		{"Regex", "Regular expression matching"},
		{"Wildcard", "Wildcard matching"},
	},
	"foreach": {
		{"Parallel", "Run iterations in parallel"},
	},
}

// CompleteOperator completes a dash word in expression position. When the
// dash directly follows a statement keyword the statement's flags are
// offered instead of the comparison operators.
func (e *Engine) CompleteOperator(ctx *Context) []Result {
	word := strings.TrimPrefix(ctx.WordToComplete, "-")

	if flags := e.statementFlagsAt(ctx); flags != nil {
		return renderOperators(flags, word)
	}

	entries := make([]operatorEntry, 0, len(comparisonOperators)*2)
	entries = append(entries, comparisonOperators...)
	for _, op := range comparisonOperators {
		if caseSensitivePrefixes[op.name] {
			entries = append(entries, operatorEntry{"c" + op.name, op.tip + " (case sensitive)"})
			entries = append(entries, operatorEntry{"i" + op.name, op.tip + " (case insensitive)"})
		}
	}
	return renderOperators(entries, word)
}

// CompleteStatementFlag completes the -flags of switch and foreach.
func (e *Engine) CompleteStatementFlag(ctx *Context, statement string) []Result {
	word := strings.TrimPrefix(ctx.WordToComplete, "-")
	flags, ok := statementFlags[strings.ToLower(statement)]
	if !ok {
		return []Result{}
	}
	return renderOperators(flags, word)
}

func (e *Engine) statementFlagsAt(ctx *Context) []operatorEntry {
	prev := ctx.TokenBeforeCursor
	if tok := ctx.TokenAtCursor; tok != nil && ctx.parse != nil {
		prev = tokenPreceding(ctx, tok.Pos.Start)
	}
	if prev == nil {
		return nil
	}
	flags, ok := statementFlags[strings.ToLower(prev.Text)]
	if !ok {
		return nil
	}
	return flags
}

func renderOperators(entries []operatorEntry, word string) []Result {
	pattern := word + "*"
	var results []Result
	for _, op := range entries {
		if !matchWildcard(pattern, op.name) {
			continue
		}
		results = append(results, NewResult("-"+op.name, "-"+op.name, KindParameterName, op.tip))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ListItemText < results[j].ListItemText })
	return results
}
