// pattern: Imperative Shell

// Package walk enumerates directories below a root down to a fixed depth.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dirs calls fn for root and for every directory below it, at most maxDepth
// levels deep (root itself is depth 0). A symlinked root is followed and
// paths are reported below root as given. Symlinks to directories below root
// are reported but not descended into. Unreadable subdirectories are skipped.
// The only error returned is the one from resolving root.
func Dirs(root string, maxDepth int, fn func(path string)) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "walk", Path: root, Err: fs.ErrInvalid}
	}

	root = filepath.Clean(root)
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	report := func(path string) {
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return
		}
		fn(filepath.Join(root, rel))
	}

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != resolved {
				return filepath.SkipDir
			}
			return nil
		}

		depth := Depth(resolved, path)
		if d.Type()&fs.ModeSymlink != 0 {
			if depth <= maxDepth && isDir(path) {
				report(path)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if depth > maxDepth {
			return filepath.SkipDir
		}
		report(path)
		return nil
	})
}

// Depth returns how many path elements path lies below root.
func Depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
