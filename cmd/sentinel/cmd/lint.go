package cmd

import (
	"cmp"
	stdcontext "context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/gkampitakis/ciinfo"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wharflab/sentinel/internal/config"
	"github.com/wharflab/sentinel/internal/discovery"
	"github.com/wharflab/sentinel/internal/fix"
	"github.com/wharflab/sentinel/internal/linter"
	"github.com/wharflab/sentinel/internal/reporter"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/version"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitViolations  = 1 // at or above the fail level
	ExitConfigError = 2 // bad config, flags or unparseable source
	ExitNoFiles     = 3 // missing file, empty glob or empty directory
)

const sizeCheckRule = "sentinel/explicit-size-check"

// fail prints an error line to stderr and exits with code.
func fail(code int, format string, args ...any) error {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return cli.Exit("", code)
}

const (
	catOutput     = "Output"
	catRules      = "Rules"
	catDirectives = "Inline directives"
	catFix        = "Fixes"
)

func stringFlag(cat, name, usage string, env ...string) *cli.StringFlag {
	return &cli.StringFlag{Name: name, Category: cat, Usage: usage, Sources: cli.EnvVars(env...)}
}

func boolFlag(cat, name, usage string, env ...string) *cli.BoolFlag {
	return &cli.BoolFlag{Name: name, Category: cat, Usage: usage, Sources: cli.EnvVars(env...)}
}

func listFlag(cat, name, usage string, env ...string) *cli.StringSliceFlag {
	return &cli.StringSliceFlag{Name: name, Category: cat, Usage: usage, Sources: cli.EnvVars(env...)}
}

func aliased(f *cli.StringFlag, alias string) *cli.StringFlag {
	f.Aliases = []string{alias}
	return f
}

func lintFlags() []cli.Flag {
	showSource := boolFlag(catOutput, "show-source", "Show source code snippets (default: true)", "SENTINEL_OUTPUT_SHOW_SOURCE")
	showSource.Value = true
	return []cli.Flag{
		aliased(stringFlag("", "config", "Path to config file (default: auto-discover)"), "c"),
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Files linted in parallel (default: number of CPUs)",
			Sources: cli.EnvVars("SENTINEL_JOBS"),
		},

		aliased(stringFlag(catOutput, "format", "Output format: text, json, sarif, github-actions, markdown, compact",
			"SENTINEL_FORMAT", "SENTINEL_OUTPUT_FORMAT"), "f"),
		aliased(stringFlag(catOutput, "output", "Output path: stdout, stderr, or file path", "SENTINEL_OUTPUT_PATH"), "o"),
		boolFlag(catOutput, "no-color", "Disable colored output", "NO_COLOR"),
		showSource,
		boolFlag(catOutput, "hide-source", "Hide source code snippets"),
		stringFlag(catOutput, "fail-level", "Minimum severity to cause non-zero exit: error, warning, info, style, none",
			"SENTINEL_OUTPUT_FAIL_LEVEL"),

		listFlag(catRules, "select", "Enable specific rules (pattern: rule-code, namespace/*, *)", "SENTINEL_RULES_SELECT"),
		listFlag(catRules, "ignore", "Disable specific rules (pattern: rule-code, namespace/*, *)", "SENTINEL_RULES_IGNORE"),
		listFlag(catRules, "exclude", "Glob pattern to exclude files (can be repeated)", "SENTINEL_EXCLUDE"),
		stringFlag(catRules, "non-zero", "Comparison required for non-empty size checks: greater-than, not-equal",
			"SENTINEL_RULES_SENTINEL_EXPLICIT_SIZE_CHECK_NON_ZERO"),

		boolFlag(catDirectives, "no-inline-directives", "Disable processing of inline disable directives", "SENTINEL_NO_INLINE_DIRECTIVES"),
		boolFlag(catDirectives, "warn-unused-directives", "Warn about unused disable directives", "SENTINEL_INLINE_DIRECTIVES_WARN_UNUSED"),
		boolFlag(catDirectives, "require-reason", "Warn about disable directives without a -- reason", "SENTINEL_INLINE_DIRECTIVES_REQUIRE_REASON"),

		boolFlag(catFix, "fix", "Apply all safe fixes automatically", "SENTINEL_FIX"),
		boolFlag(catFix, "fix-unsafe", "Also apply suggestions (requires --fix)", "SENTINEL_FIX_UNSAFE"),
		listFlag(catFix, "fix-rule", "Only fix specific rules (can be repeated)", "SENTINEL_FIX_RULE"),
	}
}

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Lint TypeScript files for issues",
		ArgsUsage: "[PATH...]",
		Flags:     lintFlags(),
		Action:    runLint,
	}
}

// lintResults holds the aggregated results of linting all discovered files.
type lintResults struct {
	violations  []rules.Violation
	fileSources map[string][]byte
	fileConfigs map[string]*config.Config
	firstCfg    *config.Config
	parseErrors int
	fixes       []*linter.FixResult
}

// fileOutcome is what one worker produces for one file.
type fileOutcome struct {
	path   string
	cfg    *config.Config
	result *linter.Result
	fixed  *linter.FixResult
}

func runLint(ctx stdcontext.Context, cmd *cli.Command) error {
	log := newLogger(cmd)

	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	discovered, code := discoverFiles(cmd, inputs)
	if code != ExitSuccess {
		return cli.Exit("", code)
	}

	if cmd.Bool("fix-unsafe") && !cmd.Bool("fix") {
		fmt.Fprintf(os.Stderr, "Warning: --fix-unsafe has no effect without --fix\n")
	}

	stop := startProgress(len(discovered), cmd.Bool("verbose"))
	res, err := lintFiles(ctx, cmd, log, paths(discovered))
	stop()
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}

	if cmd.Bool("fix") {
		reportFixes(os.Stderr, res.fixes)
	}

	return writeReport(cmd, res, len(discovered))
}

// discoverFiles expands inputs into files, returning a non-zero exit code
// when discovery fails or finds nothing.
func discoverFiles(cmd *cli.Command, inputs []string) ([]discovery.DiscoveredFile, int) {
	cfg, err := loadConfigForFile(cmd, inputs[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitConfigError
	}

	opts := discovery.Options{
		Patterns:        cfg.Files.Include,
		ExcludePatterns: slices.Concat(cfg.Files.Exclude, cmd.StringSlice("exclude")),
	}
	discovered, err := discovery.Discover(inputs, opts)
	if err != nil {
		var notFound *discovery.FileNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", notFound)
			return nil, ExitNoFiles
		}
		fmt.Fprintf(os.Stderr, "Error: failed to discover files: %v\n", err)
		return nil, ExitConfigError
	}

	if len(discovered) == 0 {
		reportNoFilesFound(inputs)
		return nil, ExitNoFiles
	}
	return discovered, ExitSuccess
}

func paths(discovered []discovery.DiscoveredFile) []string {
	out := make([]string, len(discovered))
	for i, df := range discovered {
		out[i] = df.Path
	}
	return out
}

// jobs returns the worker count for n files.
func jobs(cmd *cli.Command, n int) int {
	j := cmd.Int("jobs")
	if j <= 0 {
		j = runtime.GOMAXPROCS(0)
	}
	return max(1, min(j, n))
}

// lintFiles runs the lint pipeline on each file in parallel and aggregates
// results in input order.
func lintFiles(ctx stdcontext.Context, cmd *cli.Command, log logrus.FieldLogger, files []string) (*lintResults, error) {
	fixing := cmd.Bool("fix")
	fixOpts := linter.FixOptions{
		SafetyThreshold: fix.FixSafe,
		RuleFilter:      cmd.StringSlice("fix-rule"),
	}
	if cmd.Bool("fix-unsafe") {
		fixOpts.SafetyThreshold = fix.FixUnsafe
	}

	outcomes := make([]*fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs(cmd, len(files)))

	for i, file := range files {
		g.Go(func() error {
			cfg, err := loadConfigForFile(cmd, file)
			if err != nil {
				return fmt.Errorf("failed to load config for %s: %w", file, err)
			}
			input := linter.Input{FilePath: file, Config: cfg, Log: log}
			out := &fileOutcome{path: file, cfg: cfg}

			if fixing {
				out.fixed, err = linter.FixFile(gctx, input, fixOpts)
			} else {
				out.result, err = linter.LintFile(input)
			}
			if err != nil {
				return fmt.Errorf("failed to lint %s: %w", file, err)
			}
			if fixing {
				if err := writeFixed(out.fixed); err != nil {
					return err
				}
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeOutcomes(outcomes), nil
}

// mergeOutcomes combines per-file outcomes. Plain lint results are processed
// as one batch; fix results were already processed against their final content.
func mergeOutcomes(outcomes []*fileOutcome) *lintResults {
	res := &lintResults{
		fileSources: make(map[string][]byte),
		fileConfigs: make(map[string]*config.Config),
	}
	var raw []rules.Violation
	results := make(map[string]*linter.Result)

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if res.firstCfg == nil {
			res.firstCfg = o.cfg
		}
		res.fileConfigs[o.path] = o.cfg

		switch {
		case o.fixed != nil:
			res.fileSources[o.path] = o.fixed.Content
			res.violations = append(res.violations, o.fixed.Violations...)
			res.fixes = append(res.fixes, o.fixed)
			if o.fixed.ParseError {
				res.parseErrors++
			}
		case o.result != nil:
			res.fileSources[o.path] = o.result.Source
			results[o.path] = o.result
			raw = append(raw, o.result.Violations...)
			if o.result.Failed() {
				res.parseErrors++
			}
		}
	}

	if len(results) > 0 {
		res.violations = append(res.violations, linter.Process(raw, linter.Batch{
			Configs: res.fileConfigs,
			Sources: res.fileSources,
			Default: res.firstCfg,
			Results: results,
		})...)
	}
	res.violations = reporter.SortViolations(res.violations)
	return res
}

// writeFixed writes a fixed file back, preserving its permissions.
func writeFixed(fr *linter.FixResult) error {
	if !fr.Changed() {
		return nil
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(fr.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(fr.Path, fr.Content, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", fr.Path, err)
	}
	return nil
}

// reportFixes prints a summary of applied and skipped fixes.
func reportFixes(w io.Writer, fixes []*linter.FixResult) {
	applied, files, skipped := 0, 0, 0
	for _, fr := range fixes {
		applied += len(fr.Applied)
		skipped += len(fr.Skipped)
		if fr.Changed() {
			files++
		}
	}
	if applied > 0 {
		fmt.Fprintf(w, "Fixed %d issues in %d files\n", applied, files)
	}
	if skipped > 0 {
		fmt.Fprintf(w, "Skipped %d fixes\n", skipped)
		reportSkippedFixes(w, fixes)
	}
}

// reportSkippedFixes prints why fixes were skipped, for reasons the user can act on.
func reportSkippedFixes(w io.Writer, fixes []*linter.FixResult) {
	const maxSamples = 5
	samples := 0
	for _, fr := range fixes {
		for _, s := range fr.Skipped {
			if s.Reason == fix.SkipSafety || s.Reason == fix.SkipRuleFilter {
				continue
			}
			if samples == maxSamples {
				return
			}
			samples++
			msg := s.Reason.String()
			if s.Error != "" {
				msg += ": " + s.Error
			}
			fmt.Fprintf(w, "note: skipped fix %s (%s:%d): %s\n", s.RuleCode, fr.Path, s.Location.Start.Line, msg)
		}
	}
}

// writeReport renders res and turns it into the process exit status.
func writeReport(cmd *cli.Command, res *lintResults, filesScanned int) error {
	out := getOutputConfig(cmd, res.firstCfg)

	closeOutput, rep, err := openReporter(cmd, out)
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}
	defer func() {
		if err := closeOutput(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", out.path, err)
		}
	}()

	meta := reporter.ReportMetadata{
		FilesScanned: filesScanned,
		RulesEnabled: len(linter.EnabledRuleCodes(res.firstCfg)),
	}
	if err := rep.Report(res.violations, res.fileSources, meta); err != nil {
		return fail(ExitConfigError, "failed to write output: %v", err)
	}

	code := determineExitCode(res.violations, out.failLevel)
	if res.parseErrors > 0 {
		code = ExitConfigError
	}
	if code == ExitSuccess {
		return nil
	}
	return cli.Exit("", code)
}

// openReporter opens the output destination and the reporter writing to it.
func openReporter(cmd *cli.Command, out outputConfig) (func() error, reporter.Reporter, error) {
	format, err := reporter.ParseFormat(out.format)
	if err != nil {
		return nil, nil, err
	}
	w, closeOutput, err := reporter.GetWriter(out.path)
	if err != nil {
		return nil, nil, err
	}

	opts := reporter.Options{
		Format:      format,
		Writer:      w,
		ShowSource:  out.showSource,
		ToolName:    "sentinel",
		ToolVersion: version.Version(),
		ToolURI:     "https://github.com/wharflab/sentinel",
	}
	if cmd.Bool("no-color") {
		opts.Color = new(bool)
	}
	rep, err := reporter.New(opts)
	if err != nil {
		_ = closeOutput()
		return nil, nil, fmt.Errorf("failed to create reporter: %w", err)
	}
	return closeOutput, rep, nil
}

// loadConfigForFile loads the configuration for targetPath with the CLI flags
// layered on top. --select and --ignore extend the configured patterns.
func loadConfigForFile(cmd *cli.Command, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(targetPath, cmd.String("config"), flagOverrides(cmd))
	if err != nil {
		return nil, err
	}
	cfg.Rules.Include = append(cfg.Rules.Include, cmd.StringSlice("select")...)
	cfg.Rules.Exclude = append(cfg.Rules.Exclude, cmd.StringSlice("ignore")...)
	return cfg, nil
}

// flagOverrides maps explicitly set flags onto config keys.
func flagOverrides(cmd *cli.Command) map[string]any {
	overrides := map[string]any{}

	inline := map[string]any{}
	if cmd.IsSet("no-inline-directives") {
		inline["enabled"] = !cmd.Bool("no-inline-directives")
	}
	if cmd.IsSet("warn-unused-directives") {
		inline["warn-unused"] = cmd.Bool("warn-unused-directives")
	}
	if cmd.IsSet("require-reason") {
		inline["require-reason"] = cmd.Bool("require-reason")
	}
	if len(inline) > 0 {
		overrides["inline-directives"] = inline
	}

	if cmd.IsSet("non-zero") {
		_, rule, _ := strings.Cut(sizeCheckRule, "/")
		overrides["rules"] = map[string]any{
			"sentinel": map[string]any{rule: map[string]any{"non-zero": cmd.String("non-zero")}},
		}
	}
	return overrides
}

type outputConfig struct {
	format     string
	path       string
	showSource bool
	failLevel  string
}

// getOutputConfig layers output flags over cfg. Inside GitHub Actions the
// text format is swapped for workflow annotations unless --format is given.
func getOutputConfig(cmd *cli.Command, cfg *config.Config) outputConfig {
	if cfg == nil {
		cfg = config.Default()
	}
	oc := outputConfig{
		format:     cmp.Or(cfg.Output.Format, "text"),
		path:       cmp.Or(cfg.Output.Path, "stdout"),
		showSource: cfg.Output.ShowSource,
		failLevel:  cmp.Or(cfg.Output.FailLevel, "style"),
	}

	switch {
	case cmd.IsSet("format"):
		oc.format = cmd.String("format")
	case oc.format == "text" && ciinfo.IsVendor("GITHUB_ACTIONS"):
		oc.format = "github-actions"
	}
	if cmd.IsSet("output") {
		oc.path = cmd.String("output")
	}
	if cmd.IsSet("show-source") {
		oc.showSource = cmd.Bool("show-source")
	}
	if cmd.Bool("hide-source") {
		oc.showSource = false
	}
	if cmd.IsSet("fail-level") {
		oc.failLevel = cmd.String("fail-level")
	}
	return oc
}

// determineExitCode compares violations against failLevel. "none" never
// fails; an unknown level is a config error even without violations.
func determineExitCode(violations []rules.Violation, failLevel string) int {
	if failLevel == "none" {
		return ExitSuccess
	}
	threshold := rules.SeverityStyle
	if failLevel != "" {
		level, err := rules.ParseSeverity(failLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --fail-level %q\n", failLevel)
			return ExitConfigError
		}
		threshold = level
	}

	if slices.ContainsFunc(violations, func(v rules.Violation) bool { return v.Severity.IsAtLeast(threshold) }) {
		return ExitViolations
	}
	return ExitSuccess
}

// reportNoFilesFound explains an empty discovery, naming the first glob
// input, or else the first input as an absolute directory.
func reportNoFilesFound(inputs []string) {
	if i := slices.IndexFunc(inputs, discovery.ContainsGlobChars); i >= 0 {
		fmt.Fprintf(os.Stderr, "Error: no TypeScript files matched pattern: %s\n", inputs[i])
		return
	}
	for _, input := range inputs {
		if abs, err := filepath.Abs(input); err == nil {
			fmt.Fprintf(os.Stderr, "Error: no TypeScript files found in %s\n", abs)
			return
		}
	}
}
