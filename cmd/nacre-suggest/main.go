// Package main is the entry point for the nacre-suggest CLI application.
package main

import (
	"context"
	"fmt"
	"os"

	shellquote "github.com/kballard/go-shellquote"
	nacrecli "github.com/nacre-sh/nacre/internal/cli"
	"github.com/nacre-sh/nacre/internal/trace"
	"github.com/nacre-sh/nacre/pkg/version"
	"github.com/urfave/cli/v3"
)

func main() {
	stopTrace := trace.Init()
	defer stopTrace()

	app := &cli.Command{
		Name:                  "nacre-suggest",
		Usage:                 "Tab-completion engine for the Nacre shell",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("NACRE_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a Nacre configuration file",
				Sources: cli.EnvVars("NACRE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "complete",
				Usage:     "Complete an input line at a cursor position",
				ArgsUsage: "[line-words...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "line",
						Usage: "Input line to complete (overrides positional words)",
					},
					&cli.IntFlag{
						Name:    "cursor",
						Aliases: []string{"c"},
						Value:   -1,
						Usage:   "Cursor position in bytes (default: end of line)",
					},
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "Print completion texts only, one per line",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					line := cmd.String("line")
					if line == "" && cmd.Args().Len() > 0 {
						line = shellquote.Join(cmd.Args().Slice()...)
					}
					return nacrecli.Complete(nacrecli.CompleteParams{
						Line:       line,
						Cursor:     int(cmd.Int("cursor")),
						Plain:      cmd.Bool("plain"),
						ConfigPath: cmd.String("config"),
						LogLevel:   cmd.String("log-level"),
					})
				},
			},
			{
				Name:      "types",
				Usage:     "List type-catalog entries matching a wildcard pattern",
				ArgsUsage: "[pattern]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					pattern := ""
					if cmd.Args().Len() > 0 {
						pattern = cmd.Args().Get(0)
					}
					return nacrecli.Types(pattern)
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a Nacre configuration file",
				ArgsUsage: "[config-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					configPath := cmd.String("config")
					if cmd.Args().Len() > 0 {
						configPath = cmd.Args().Get(0)
					}
					return nacrecli.Validate(configPath)
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for Nacre configuration files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return nacrecli.Schema(outputPath)
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
