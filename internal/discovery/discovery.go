// Package discovery finds the data files of a measurement directory and
// sorts them into arms (interferogram, sample, reference).
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Ptrskay3/pysprint-cli/internal/config"
)

// DiscoveryError is returned when the measurement directory cannot be read.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to read directory %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discover lists root (non-recursively) and returns the absolute paths of the
// regular files selected by opts, sorted lexicographically.
func Discover(root string, opts config.LoadOptions) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if opts.SkipFiles.Contains(name) {
			continue
		}
		path := filepath.Join(abs, name)
		if !HasExtension(path, opts.Extensions) {
			continue
		}
		if Excluded(path, opts.ExcludePatterns) {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// HasExtension reports whether path carries one of exts. Extensions are
// configured without the leading dot.
func HasExtension(path string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.TrimPrefix(e, ".") == ext {
			return true
		}
	}
	return false
}

// Excluded reports whether path matches any of the exclude patterns.
func Excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if WildMatch(p, path) {
			return true
		}
	}
	return false
}

// WildMatch matches s against pattern in full. '*' matches any run of
// characters (path separators included) and '?' exactly one character.
// Matching is case-sensitive.
func WildMatch(pattern, s string) bool {
	p, str := []rune(pattern), []rune(s)
	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(str) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, si
			pi++
		case pi < len(p) && (p[pi] == '?' || p[pi] == str[si]):
			pi++
			si++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
