// Package cache provides cache directory resolution for pushnotification.
//
// Priority order: --cache-dir flag > PUSHNOTIFICATION_CACHE_DIR env >
// ~/.pushnotification default.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar overrides the cache root when no flag is given.
const EnvVar = "PUSHNOTIFICATION_CACHE_DIR"

var global struct {
	cacheDir string
}

// SetCacheDir sets an override for the cache directory.
// This is typically called when parsing the --cache-dir flag.
func SetCacheDir(dir string) {
	global.cacheDir = strings.TrimSpace(dir)
}

// Root returns the cache root directory.
func Root() (string, error) {
	if global.cacheDir != "" {
		return global.cacheDir, nil
	}

	if envDir := strings.TrimSpace(os.Getenv(EnvVar)); envDir != "" {
		return envDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".pushnotification"), nil
}

// AppDir returns the per-app cache directory.
// Returns: <cache_root>/apps/<app_id>
func AppDir(appID string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	slug := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(appID)
	if slug == "" {
		return "", fmt.Errorf("app ID is empty")
	}
	return filepath.Join(root, "apps", slug), nil
}
