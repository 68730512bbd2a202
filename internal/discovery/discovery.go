// Package discovery expands CLI inputs (files, directories and doublestar
// globs) into the list of TypeScript files to lint.
package discovery

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoveredFile is one file selected for linting.
type DiscoveredFile struct {
	// Path is the input as given for explicit files, and absolute for files
	// found by walking a directory or expanding a glob.
	Path string

	// ConfigRoot is the directory config discovery starts from.
	ConfigRoot string
}

type Options struct {
	// Patterns select files inside directories, relative to the directory.
	// Empty means DefaultPatterns.
	Patterns []string

	// ExcludePatterns drop matching files from every kind of input.
	ExcludePatterns []string
}

// FileNotFoundError reports an explicit input that does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return "file not found: " + e.Path
}

func DefaultPatterns() []string {
	return []string{"**/*.ts", "**/*.tsx"}
}

// DefaultExcludePatterns skips dependencies and declaration files.
func DefaultExcludePatterns() []string {
	return []string{"**/node_modules/**", "**/*.d.ts"}
}

// Discover expands inputs into files sorted by path, each file at most once.
//
// An explicit file is linted whatever its extension. A directory is walked
// with opts.Patterns and anything containing glob characters is expanded
// with doublestar.
func Discover(inputs []string, opts Options) ([]DiscoveredFile, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns()
	}
	c := collector{opts: opts, seen: make(map[string]bool)}

	for _, input := range inputs {
		if err := c.add(input); err != nil {
			return nil, err
		}
	}
	slices.SortFunc(c.files, func(a, b DiscoveredFile) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return c.files, nil
}

type collector struct {
	opts  Options
	seen  map[string]bool // absolute paths
	files []DiscoveredFile
}

func (c *collector) add(input string) error {
	// Stat before globbing fails on Windows for names containing '*'.
	if ContainsGlobChars(input) {
		matches, err := doublestar.FilepathGlob(input, doublestar.WithFilesOnly())
		if err != nil {
			return err
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				return err
			}
			c.keep(abs, abs)
		}
		return nil
	}

	info, err := os.Stat(input)
	switch {
	case os.IsNotExist(err):
		return &FileNotFoundError{Path: input}
	case err != nil:
		return err
	case info.IsDir():
		return c.walk(input)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	c.keep(input, abs)
	return nil
}

func (c *collector) walk(dir string) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	fsys := os.DirFS(root)
	for _, pattern := range c.opts.Patterns {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			abs := filepath.Join(root, filepath.FromSlash(m))
			c.keep(abs, abs)
		}
	}
	return nil
}

// keep records path unless its absolute form was already seen or excluded.
func (c *collector) keep(path, abs string) {
	if c.seen[abs] || excluded(abs, c.opts.ExcludePatterns) {
		return
	}
	c.seen[abs] = true
	c.files = append(c.files, DiscoveredFile{Path: path, ConfigRoot: filepath.Dir(abs)})
}

// excluded reports whether a pattern matches the absolute path, its base
// name, or any trailing run of its segments. The last form lets relative
// patterns such as "vendor/*" match wherever the directory sits.
func excluded(abs string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	parts := splitPath(abs)
	candidates := make([]string, 0, len(parts)+2)
	candidates = append(candidates, filepath.ToSlash(abs), filepath.Base(abs))
	for i := range parts {
		candidates = append(candidates, strings.Join(parts[i:], "/"))
	}

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		for _, name := range candidates {
			if ok, err := doublestar.Match(pattern, name); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// splitPath returns the non-empty segments of a cleaned path without its
// volume name: "/home/user/src/game.ts" gives [home user src game.ts].
func splitPath(path string) []string {
	path = filepath.Clean(path)
	path = filepath.ToSlash(strings.TrimPrefix(path, filepath.VolumeName(path)))
	return slices.DeleteFunc(strings.Split(path, "/"), func(s string) bool { return s == "" || s == "." })
}

// ContainsGlobChars reports whether path contains doublestar metacharacters.
func ContainsGlobChars(path string) bool {
	return strings.ContainsAny(path, "*?[]{}")
}

// HasSourceExt reports whether path ends in .ts or .tsx, ignoring case.
func HasSourceExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ts" || ext == ".tsx"
}
