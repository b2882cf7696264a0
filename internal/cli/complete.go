package cli

import (
	"fmt"

	"github.com/nacre-sh/nacre/internal/render"
)

// CompleteParams carries the inputs of the complete command.
type CompleteParams struct {
	Line       string
	Cursor     int
	Plain      bool
	ConfigPath string
	LogLevel   string
}

// Complete runs one completion request against a fresh engine and prints the
// results.
func Complete(params CompleteParams) error {
	engine, err := newEngine(params.ConfigPath, params.LogLevel)
	if err != nil {
		return err
	}

	cursor := params.Cursor
	if cursor < 0 || cursor > len(params.Line) {
		cursor = len(params.Line)
	}

	results := engine.CompleteInput(params.Line, cursor)
	if params.Plain {
		fmt.Print(render.Plain(results))
		return nil
	}
	fmt.Print(render.Results(results))
	return nil
}
