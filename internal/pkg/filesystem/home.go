// Package filesystem holds path helpers shared by the config loader and the
// local action catalog.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir returns the current user's home directory, or "." when it
// cannot be determined.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.apex.
func AppDir() string {
	return filepath.Join(UserHomeDir(), ".apex")
}

// ExpandPath resolves a leading ~ against home and expands environment
// variables. An empty home uses UserHomeDir.
func ExpandPath(path, home string) string {
	if home == "" {
		home = UserHomeDir()
	}
	path = os.ExpandEnv(path)
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	case path == "" || filepath.IsAbs(path):
		return path
	default:
		return filepath.Clean(path)
	}
}
