package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the directory for uploads and report artifacts.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin joins only the base component of name onto root, so an object
// location can never point outside the store directory.
func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}
