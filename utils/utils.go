package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// GetDefaultDatabasePath returns the default corpus store path for the given
// store driver, next to the executable.
func GetDefaultDatabasePath(driver string) string {
	name := "imagesearch.json"
	if driver == "sqlite" {
		name = "imagesearch.db"
	}

	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return name
	}

	return filepath.Join(filepath.Dir(exePath), name)
}

// FormatFilepath converts Windows separators to forward slashes so stored
// paths compare equal across platforms.
func FormatFilepath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
