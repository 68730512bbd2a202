package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/sentinel/internal/testutil"
)

// run is one finished invocation of the binary.
type run struct {
	stdout, stderr string
	code           int
}

// sentinel runs the built binary. CI variables are dropped so output
// defaults to text.
func sentinel(t *testing.T, env []string, args ...string) run {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = slices.DeleteFunc(os.Environ(), func(kv string) bool {
		return strings.HasPrefix(kv, "CI=") || strings.HasPrefix(kv, "GITHUB_ACTIONS=")
	})
	cmd.Env = append(cmd.Env, "GOCOVERDIR="+coverageDir)
	cmd.Env = append(cmd.Env, env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	r := run{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr, "start %s", binaryPath)
		r.code = exitErr.ExitCode()
	}
	r.stdout, r.stderr = stdout.String(), stderr.String()
	return r
}

// lintCase lints testdata/<dir>/main.ts, or the whole directory when
// wholeDir is set, and snapshots stdout.
type lintCase struct {
	name     string
	dir      string
	wholeDir bool
	args     []string
	env      []string
	wantExit int
}

// format returns the --format value among the case's arguments.
func (tc lintCase) format() string {
	if i := slices.Index(tc.args, "--format"); i >= 0 && i+1 < len(tc.args) {
		return tc.args[i+1]
	}
	return "text"
}

func (tc lintCase) run(t *testing.T) {
	t.Helper()
	target := filepath.Join("testdata", tc.dir)
	if !tc.wholeDir {
		target = filepath.Join(target, "main.ts")
	}
	args := append(append([]string{"lint"}, tc.args...), target)

	r := sentinel(t, tc.env, args...)
	assert.Equal(t, tc.wantExit, r.code, "stdout: %s\nstderr: %s", r.stdout, r.stderr)
	matchOutput(t, tc.format(), normalize(r.stdout))
}

// normalize strips CRLF and the working directory so snapshots are
// machine independent.
func normalize(out string) string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	if wd, err := os.Getwd(); err == nil {
		out = strings.NewReplacer(filepath.ToSlash(wd)+"/", "", wd+string(filepath.Separator), "").Replace(out)
	}
	return out
}

func matchOutput(t *testing.T, format, out string) {
	t.Helper()
	jsonSnap := snaps.JSON(snaps.JSONConfig{SortKeys: true, Indent: "  "})
	switch format {
	case "json":
		snaps.WithConfig(jsonSnap).MatchStandaloneJSON(t, out)
	case "sarif":
		snaps.WithConfig(jsonSnap, snaps.Ext(".sarif")).MatchStandaloneJSON(t, out)
	case "markdown":
		snaps.WithConfig(snaps.Ext(".md")).MatchStandaloneSnapshot(t, out)
	default:
		snaps.WithConfig(snaps.Ext(".txt")).MatchStandaloneSnapshot(t, out)
	}
}

// fixCase writes input as main.ts next to a .sentinel.toml holding config,
// runs lint with args and snapshots the rewritten file.
type fixCase struct {
	name        string
	input       string
	args        []string
	config      string
	wantApplied int
}

var fixedSummary = regexp.MustCompile(`(?m)^Fixed (\d+) issues? in \d+ files?$`)

func (tc fixCase) run(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(source, []byte(tc.input), 0o644))
	// the config also stops discovery at dir
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sentinel.toml"), []byte(tc.config), 0o644))

	args := append(append([]string{"lint", "--format", "json"}, tc.args...), source)
	r := sentinel(t, nil, args...)

	applied := 0
	if m := fixedSummary.FindStringSubmatch(r.stderr); m != nil {
		applied, _ = strconv.Atoi(m[1])
	}
	assert.Equal(t, tc.wantApplied, applied, "stderr: %s", r.stderr)

	fixed, err := os.ReadFile(source)
	require.NoError(t, err)
	testutil.MatchSourceSnapshot(t, string(fixed))
}

