package filesystem

import (
	"os"
	"path/filepath"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// StateDir returns ~/.promptline, or $PROMPTLINE_HOME when set.
func StateDir() string {
	if custom := os.Getenv("PROMPTLINE_HOME"); custom != "" {
		return custom
	}
	return filepath.Join(UserHomeDir(), ".promptline")
}

// ExpandPath resolves "~/" prefixes against the home directory.
func ExpandPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}
