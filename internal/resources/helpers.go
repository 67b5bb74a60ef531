package resources

import (
	"fmt"
	"os"
	"path/filepath"
)

// findRoot walks up from cwd looking for a specmerge/ workspace directory.
// Shared utility for resource handlers.
func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, "specmerge")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Join(dir, "specmerge"), nil
		}
		current = parent
	}
}
