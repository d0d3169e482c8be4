package codegen

import (
	"fmt"
	"os"
	"path/filepath"
)

// PersistedName returns the file name a script called name is saved as.
func PersistedName(name string) string {
	return name + "_ps.py"
}

// Persist writes the preamble followed by text to dir/<name>_ps.py and
// returns the path. The file is written to a temporary name first and
// renamed into place so a reader never sees a partial script.
func Persist(name, text, dir string) (string, error) {
	path := filepath.Join(dir, PersistedName(name))

	tmp, err := os.CreateTemp(dir, "."+name+"_*.tmp")
	if err != nil {
		return path, fmt.Errorf("failed to create script file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(Preamble + text + "\n"); err != nil {
		tmp.Close()
		return path, fmt.Errorf("failed to write script file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return path, fmt.Errorf("failed to write script file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return path, fmt.Errorf("failed to persist script file: %w", err)
	}
	return path, nil
}
