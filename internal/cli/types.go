package cli

import (
	"fmt"

	"github.com/nacre-sh/nacre/internal/typecat"
)

// Types prints the type-catalog entries matching a wildcard pattern.
func Types(pattern string) error {
	if pattern == "" {
		pattern = "*"
	}
	matches := typecat.Default().Lookup(pattern)
	if len(matches) == 0 {
		fmt.Printf("no types match %q\n", pattern)
		return nil
	}
	for _, match := range matches {
		for _, entry := range match.Entries {
			fmt.Printf("%-30s %s\n", match.Key, entry.ToolTip())
		}
	}
	return nil
}
