// Package filesync mirrors directory trees into deploy locations and empties
// destination directories before they are refilled.
//
// All operations are best-effort per item: a file that cannot be copied or removed
// is recorded as a Failure and the walk carries on. Only preconditions (a missing
// source, a destination that is not a directory, a malformed glob) abort the call.
package filesync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"flet-build/internal/logger"
)

var (
	// ErrNotDirectory is returned when a path that must be a directory is something else.
	ErrNotDirectory = errors.New("not a directory")
	// ErrDestInsideSource is returned when a copy would walk into its own output.
	ErrDestInsideSource = errors.New("destination is inside the source directory")
)

// Failure is one item that could not be processed.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Result summarizes a Sync call.
type Result struct {
	Copied   int       // files written to the destination
	Skipped  int       // files matched by an exclusion pattern
	Failures []Failure // files or directories that could not be copied
}

// Sync copies the contents of sourceDir into destDir, keeping the relative layout.
// Files whose base name matches any of the exclusion globs are skipped. Existing
// destination files are always overwritten, so a second Sync copies everything again.
func Sync(sourceDir, destDir string, exclusions []string) (Result, error) {
	var res Result

	info, err := os.Stat(sourceDir)
	if err != nil {
		return res, fmt.Errorf("source directory %s does not exist: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("source %s: %w", sourceDir, ErrNotDirectory)
	}
	if err := ValidatePatterns(exclusions); err != nil {
		return res, err
	}

	// WalkDir does not descend into a symlinked root
	root := resolve(sourceDir)
	if within(root, resolve(destDir)) {
		return res, fmt.Errorf("sync %s -> %s: %w", sourceDir, destDir, ErrDestInsideSource)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create destination %s: %w", destDir, err)
	}

	logger.Debug("[DEBUG] Syncing %s -> %s (exclusions %v)\n", root, destDir, exclusions)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: record it and keep walking the rest of the tree
			res.fail(path, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			res.fail(path, err)
			return nil
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				res.fail(path, err)
				return filepath.SkipDir
			}
			return nil
		}

		if Excluded(d.Name(), exclusions) {
			logger.Debug("[DEBUG] Skipping excluded file %s\n", path)
			res.Skipped++
			return nil
		}

		// Symlinks are followed for files; a link to a directory is not descended into
		if d.Type()&fs.ModeSymlink != 0 {
			st, err := os.Stat(path)
			if err != nil {
				res.fail(path, err)
				return nil
			}
			if st.IsDir() {
				logger.Debug("[DEBUG] Not following directory symlink %s\n", path)
				return nil
			}
		}

		if err := copyFile(path, target); err != nil {
			res.fail(path, err)
			return nil
		}
		res.Copied++
		return nil
	})
	if walkErr != nil {
		return res, walkErr
	}
	return res, nil
}

// SyncNested copies sourceDir into destRoot/<base name of sourceDir>, so
// Sync("…/src/flet", "site-packages") yields "site-packages/flet/…".
func SyncNested(sourceDir, destRoot string, exclusions []string) (Result, error) {
	return Sync(sourceDir, filepath.Join(destRoot, filepath.Base(filepath.Clean(sourceDir))), exclusions)
}

// resolve returns the absolute, symlink-free form of p. A p that does not exist
// yet is resolved through its parent.
func resolve(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		return r
	}
	if r, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(r, filepath.Base(abs))
	}
	return abs
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (r *Result) fail(path string, err error) {
	logger.Warn("[WARN] Failed to copy %s: %v\n", path, err)
	r.Failures = append(r.Failures, Failure{Path: path, Err: err})
}
