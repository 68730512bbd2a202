package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/sentinel/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "sentinel",
		Usage:   "A linter for roblox-ts sources",
		Version: version.Version(),
		Description: `sentinel checks roblox-ts TypeScript sources for patterns that
compile to surprising Luau, such as truthiness checks on .size().

Examples:
  sentinel lint src
  sentinel lint --fix src/**/*.ts
  sentinel watch src
  sentinel rules --format json
  sentinel lsp --stdio`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output to stderr",
				Sources: cli.EnvVars("SENTINEL_VERBOSE"),
			},
		},
		Commands: []*cli.Command{
			lintCommand(),
			watchCommand(),
			rulesCommand(),
			lspCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

// newLogger returns the stderr logger configured by --verbose.
func newLogger(cmd *cli.Command) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if cmd.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
