// Package filex resolves per-user application directories for durable client
// state (the local database and cached metadata).
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDir returns the papertrail data directory under the user's home,
// creating it if needed.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}

	dir := filepath.Join(home, ".papertrail")

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DatabasePath returns the full path of the local sqlite database file,
// ensuring the containing directory exists.
func DatabasePath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "papertrail.db"), nil
}
