// Package store manages the lifecycle of the result store file. Entries
// are written by the runtime; this package only makes sure the file exists.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileName is the result store used when none is given.
const DefaultFileName = "results.json"

const emptyDocument = "{ }"

// Resolve returns path made absolute against root when it is relative.
func Resolve(root, path string) string {
	if path == "" {
		path = DefaultFileName
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Prepare creates an empty store at path when none exists. With override
// an existing store is replaced by an empty one. It reports whether a new
// file was written.
func Prepare(path string, override bool) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return false, fmt.Errorf("result store %s is a directory", path)
	case err == nil && !override:
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("failed to stat result store: %w", err)
	}

	if err := os.WriteFile(path, []byte(emptyDocument), 0644); err != nil {
		return false, fmt.Errorf("failed to create result store: %w", err)
	}
	return true, nil
}
