package cmd

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/sentinel/internal/discovery"
	"github.com/wharflab/sentinel/internal/watch"
)

func watchCommand() *cli.Command {
	flags := slices.DeleteFunc(lintFlags(), func(f cli.Flag) bool {
		// Fail levels only matter for exit codes.
		return slices.Contains(f.Names(), "fail-level")
	})
	flags = append(flags, &cli.DurationFlag{
		Name:    "debounce",
		Usage:   "Quiet period after a change before re-linting",
		Value:   watch.DefaultDebounce,
		Sources: cli.EnvVars("SENTINEL_WATCH_DEBOUNCE"),
	})

	return &cli.Command{
		Name:      "watch",
		Usage:     "Lint files, then re-lint them whenever they change",
		ArgsUsage: "[PATH...]",
		Flags:     flags,
		Action:    runWatch,
	}
}

func runWatch(ctx stdcontext.Context, cmd *cli.Command) error {
	log := newLogger(cmd)

	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Directories and globs are re-expanded on every change so new files are
	// picked up; explicit files stay as given.
	lintOnce := func(ctx stdcontext.Context) error {
		discovered, code := discoverFiles(cmd, inputs)
		if code == ExitNoFiles {
			return nil
		}
		if code != ExitSuccess {
			return cli.Exit("", code)
		}
		res, err := lintFiles(ctx, cmd, log, paths(discovered))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return nil
		}
		if cmd.Bool("fix") {
			reportFixes(os.Stderr, res.fixes)
		}
		return ignoreExit(writeReport(cmd, res, len(discovered)))
	}

	if err := lintOnce(ctx); err != nil {
		return err
	}

	w, err := watch.New(watchRoots(inputs), watch.Options{
		Debounce: cmd.Duration("debounce"),
		Filter:   discovery.HasSourceExt,
		Log:      log,
	})
	if err != nil {
		return fail(ExitConfigError, "failed to watch: %v", err)
	}
	defer w.Close()

	fmt.Fprintf(os.Stderr, "Watching %d directories for changes (Ctrl+C to stop)\n", len(w.Dirs()))
	err = w.Run(ctx, func(ctx stdcontext.Context, changed []string) error {
		log.WithField("files", len(changed)).Debug("re-linting")
		fmt.Fprintf(os.Stderr, "\n[%s] %d file(s) changed\n", time.Now().Format(time.TimeOnly), len(changed))
		return lintOnce(ctx)
	})
	if errors.Is(err, stdcontext.Canceled) {
		return nil
	}
	return err
}

// watchRoots returns the existing paths among inputs, or the current
// directory for globs.
func watchRoots(inputs []string) []string {
	var roots []string
	for _, input := range inputs {
		if discovery.ContainsGlobChars(input) {
			roots = append(roots, ".")
			continue
		}
		if _, err := os.Stat(input); err == nil {
			roots = append(roots, input)
		}
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return slices.Compact(slices.Sorted(slices.Values(roots)))
}

// ignoreExit drops the exit code of a report. Its cause was already printed
// and a watch session keeps running.
func ignoreExit(err error) error {
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return nil
	}
	return err
}
