// Package source locates the JSON export files a load reads from.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotFound is returned when neither the expected file nor any fallback
// match exists. Callers treat it as "this category is absent".
var ErrNotFound = errors.New("source: file not found")

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Path        string
	Expected    string
	Substituted bool // Path came from the fallback pattern, not Expected
}

// Resolver finds input files, tolerating renamed exports.
type Resolver struct {
	// Dir is searched with the fallback pattern when the expected path is absent.
	Dir string
}

// NewResolver returns a Resolver searching dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{Dir: dir}
}

// Resolve returns expected if it names an existing regular file. Otherwise it
// globs pattern inside r.Dir and returns the lexicographically first regular
// file, so the choice does not depend on directory enumeration order.
func (r *Resolver) Resolve(expected, pattern string) (Resolution, error) {
	if isFile(expected) {
		return Resolution{Path: expected, Expected: expected}, nil
	}
	if pattern != "" {
		matches, err := filepath.Glob(filepath.Join(r.Dir, pattern))
		if err != nil {
			return Resolution{}, fmt.Errorf("source: bad pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if isFile(m) {
				return Resolution{Path: m, Expected: expected, Substituted: true}, nil
			}
		}
	}
	return Resolution{}, fmt.Errorf("%w: %s (fallback %s)", ErrNotFound, expected, filepath.Join(r.Dir, pattern))
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
