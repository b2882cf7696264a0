// Package render formats suggestion lists for terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nacre-sh/nacre/internal/suggest"
)

var (
	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	commandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	parameterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	memberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

// Results renders a suggestion list, one entry per line, with the kind in a
// dim column and the tooltip trailing when it adds information.
func Results(results []suggest.Result) string {
	if len(results) == 0 {
		return emptyStyle.Render("no suggestions") + "\n"
	}
	width := 0
	for _, r := range results {
		if len(r.CompletionText) > width {
			width = len(r.CompletionText)
		}
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString(kindStyle.Render(fmt.Sprintf("%-10s", r.Kind.String())))
		b.WriteString(" ")
		b.WriteString(styleFor(r.Kind).Render(pad(r.CompletionText, width)))
		if r.ToolTip != "" && r.ToolTip != r.CompletionText && r.ToolTip != r.ListItemText {
			b.WriteString("  ")
			b.WriteString(tipStyle.Render(r.ToolTip))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Plain renders completion texts only, one per line, the shape shell
// integration consumes.
func Plain(results []suggest.Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.CompletionText)
		b.WriteString("\n")
	}
	return b.String()
}

func styleFor(kind suggest.Kind) lipgloss.Style {
	switch kind {
	case suggest.KindCommand:
		return commandStyle
	case suggest.KindParameterName:
		return parameterStyle
	case suggest.KindMethod, suggest.KindProperty:
		return memberStyle
	default:
		return valueStyle
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
