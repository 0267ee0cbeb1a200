package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern selects schedule files in a directory.
const DefaultPattern = "*.csv"

// List returns a source for every regular file directly inside dir whose name
// matches pattern (doublestar syntax, e.g. "*.csv" or "*.{csv,txt}"). Files
// are returned in directory-listing order, which os.ReadDir sorts by name.
// Subdirectories are not descended into.
//
// A missing or unreadable directory is an error; an empty match set is not.
func List(dir, pattern string) ([]*Local, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid file pattern %q", pattern)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var out []*Local
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			out = append(out, NewLocal(filepath.Join(dir, e.Name())))
		}
	}
	return out, nil
}
