package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gkampitakis/ciinfo"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// MatchSourceSnapshot compares fixed TypeScript source against
// __snapshots__/<TestName>_1.snap.ts next to the calling test file, the name
// go-snaps uses for standalone snapshots.
//
// go-snaps pretty-prints standalone snapshots, which expands tabs; fixed
// sources must match byte for byte, so this helper stores content verbatim.
// A missing snapshot is written on first run outside CI; UPDATE_SNAPS=true
// rewrites existing ones. Mismatches are reported as a go-diff patch.
func MatchSourceSnapshot(tb testing.TB, content string) {
	tb.Helper()

	_, caller, _, ok := runtime.Caller(1)
	if !ok {
		tb.Fatal("MatchSourceSnapshot: unable to determine caller")
	}
	name := strings.ReplaceAll(tb.Name(), "/", "_") + "_1.snap.ts"
	path := filepath.Join(filepath.Dir(caller), "__snapshots__", name)

	prev, err := os.ReadFile(path)
	missing := errors.Is(err, fs.ErrNotExist)
	switch {
	case os.Getenv("UPDATE_SNAPS") == "true", missing && !ciinfo.IsCI:
		writeSnapshot(tb, path, content)
		return
	case missing:
		tb.Fatalf("snapshot %s not found; run with UPDATE_SNAPS=true to create it", path)
	case err != nil:
		tb.Fatalf("read snapshot: %v", err)
	}

	if string(prev) == content {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemanticLossless(dmp.DiffMain(string(prev), content, true))
	tb.Errorf("snapshot mismatch: %s\n%s", path, dmp.PatchToText(dmp.PatchMake(string(prev), diffs)))
}

func writeSnapshot(tb testing.TB, path, content string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("create snapshot dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // snapshot fixture
		tb.Fatalf("write snapshot: %v", err)
	}
}
