package suggest

import (
	"strconv"
	"strings"

	"github.com/nacre-sh/nacre/internal/session"
)

// CompleteHistory completes a #-prefixed word against the command history.
// #12 recalls the entry with that id, #word matches entries containing the
// word, and a bare # offers everything, most recent first.
func (e *Engine) CompleteHistory(ctx *Context) []Result {
	word := strings.TrimPrefix(ctx.WordToComplete, "#")
	var entries []*session.HistoryEntry
	for _, obj := range e.runHelper("get-history", nil) {
		if h, ok := obj.(*session.HistoryEntry); ok {
			entries = append(entries, h)
		}
	}

	var results []Result
	if id, err := strconv.Atoi(word); err == nil && word != "" {
		for _, h := range entries {
			if h.ID == id {
				results = append(results, historyResult(h))
			}
		}
		return results
	}

	lower := strings.ToLower(word)
	for i := len(entries) - 1; i >= 0; i-- {
		h := entries[i]
		if lower != "" && !strings.Contains(strings.ToLower(h.CommandLine), lower) {
			continue
		}
		results = append(results, historyResult(h))
	}
	return dedupeByCompletion(results)
}

func historyResult(h *session.HistoryEntry) Result {
	return NewResult(h.CommandLine, h.CommandLine, KindHistory, "#"+strconv.Itoa(h.ID)+": "+h.CommandLine)
}
