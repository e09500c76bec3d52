// Package pathutil provides path expansion helpers for user-supplied paths
// in config files and command arguments.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Expand expands a leading ~ and environment variables in a path and
// returns it absolute.
func Expand(path string) (string, error) {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path = os.ExpandEnv(path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not make path absolute: %w", err)
	}
	return abs, nil
}

// Canonical resolves symlinks in a path that exists on disk, falling back
// to the expanded path when resolution fails.
func Canonical(path string) (string, error) {
	expanded, err := Expand(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		return expanded, nil
	}
	return resolved, nil
}
