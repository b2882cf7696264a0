// Package suggest implements the suggestion engine of the Nacre interactive
// shell: given a partially typed line and the cursor position it produces an
// ordered list of candidate completions for commands, parameters, argument
// values, members, variables, types, namespaces, paths and history.
package suggest

import (
	"sort"
	"strings"
)

// Kind classifies a completion result for the rendering UI.
type Kind int

// Result kinds.
const (
	KindText Kind = iota
	KindCommand
	KindParameterName
	KindParameterValue
	KindMethod
	KindProperty
	KindVariable
	KindType
	KindNamespace
	KindProviderItem
	KindProviderContainer
	KindHistory
)

var kindNames = map[Kind]string{
	KindText:              "Text",
	KindCommand:           "Command",
	KindParameterName:     "ParameterName",
	KindParameterValue:    "ParameterValue",
	KindMethod:            "Method",
	KindProperty:          "Property",
	KindVariable:          "Variable",
	KindType:              "Type",
	KindNamespace:         "Namespace",
	KindProviderItem:      "ProviderItem",
	KindProviderContainer: "ProviderContainer",
	KindHistory:           "History",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Text"
}

// Result is a single completion candidate. Ordering in a returned slice is
// significant: exact matches come first, then alphabetical, except where a
// command-specific ordering is defined.
type Result struct {
	CompletionText string
	ListItemText   string
	Kind           Kind
	ToolTip        string
}

// NewResult builds a result, defaulting the list text and tooltip to the
// completion text.
func NewResult(completion, listItem string, kind Kind, toolTip string) Result {
	if listItem == "" {
		listItem = completion
	}
	if toolTip == "" {
		toolTip = completion
	}
	return Result{CompletionText: completion, ListItemText: listItem, Kind: kind, ToolTip: toolTip}
}

// matchesWord reports whether a candidate matches wordToComplete + "*",
// case-insensitively.
func matchesWord(word, candidate string) bool {
	if word == "" {
		return true
	}
	return matchWildcard(word+"*", candidate)
}

// matchWildcard matches a * / ? pattern against a string, case-insensitively.
func matchWildcard(pattern, s string) bool {
	return matchWildcardLowered(strings.ToLower(pattern), strings.ToLower(s))
}

func matchWildcardLowered(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = strings.TrimLeft(pattern, "*")
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchWildcardLowered(pattern, s[i:]) {
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

// orderValues applies the shared value-completion ordering policy: the
// results sort alphabetically by list text, except a case-insensitive exact
// match of the word is pinned first.
func orderValues(results []Result, word string) []Result {
	sort.SliceStable(results, func(a, b int) bool {
		return strings.ToLower(results[a].ListItemText) < strings.ToLower(results[b].ListItemText)
	})
	return pinExactMatch(results, word)
}

// pinExactMatch moves the case-insensitive exact match of the word, when
// present, to the front without disturbing the rest of the order.
func pinExactMatch(results []Result, word string) []Result {
	if word == "" {
		return results
	}
	for i, r := range results {
		if strings.EqualFold(r.ListItemText, word) {
			pinned := results[i]
			copy(results[1:i+1], results[:i])
			results[0] = pinned
			break
		}
	}
	return results
}

// sortResults orders results alphabetically by list text.
func sortResults(results []Result) {
	sort.SliceStable(results, func(a, b int) bool {
		return strings.ToLower(results[a].ListItemText) < strings.ToLower(results[b].ListItemText)
	})
}

// dedupeByCompletion keeps the first result for each completion text.
func dedupeByCompletion(results []Result) []Result {
	seen := map[string]bool{}
	out := results[:0]
	for _, r := range results {
		key := strings.ToLower(r.CompletionText)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// dedupeExact keeps the first result for each completion text, case
// preserved, so an accelerator and the short name it shadows both survive.
func dedupeExact(results []Result) []Result {
	seen := map[string]bool{}
	out := results[:0]
	for _, r := range results {
		if seen[r.CompletionText] {
			continue
		}
		seen[r.CompletionText] = true
		out = append(out, r)
	}
	return out
}
