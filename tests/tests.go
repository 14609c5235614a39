// Package tests provides shared helpers for the end-to-end and integration
// test suites.
package tests

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrProjectRootNotFound = errors.New("project root not found")

// FindProjectRoot walks up from the working directory until it finds the
// directory containing go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrProjectRootNotFound
		}

		dir = parent
	}
}
