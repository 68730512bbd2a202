package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/sentinel/internal/lspserver"
)

func lspCommand() *cli.Command {
	return &cli.Command{
		Name:  "lsp",
		Usage: "Start the Language Server Protocol server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Use stdin/stdout for communication (required)",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("stdio") {
				return fail(ExitConfigError, "only --stdio transport is supported")
			}

			// stdout carries the protocol; logs go to stderr.
			server := lspserver.New(newLogger(cmd).WithField("component", "lsp"))
			return server.RunStdio(ctx)
		},
	}
}
