package sysfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoMatch is returned by FindEntry when no child of the directory contains
// the requested fragment.
var ErrNoMatch = errors.New("sysfs: no matching entry")

// FindEntry returns dir joined with the first child entry (file, directory or
// symlink) whose name contains fragment.
//
// Entries are considered in lexicographic order, so when several children
// match, the lexicographically first one wins.
func FindEntry(dir, fragment string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("sysfs: read %s: %w", dir, err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), fragment) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrNoMatch, fragment, dir)
}
