package filesync

import (
	"fmt"
	"os"
	"path/filepath"

	"flet-build/internal/logger"
)

// ClearResult summarizes a Clear call.
type ClearResult struct {
	Removed  int // direct children removed
	Failures []Failure
}

// Clear removes every direct child of dir (files, symlinks, whole subtrees) and
// leaves dir itself in place. A dir that does not exist is not an error.
func Clear(dir string) (ClearResult, error) {
	var res ClearResult

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		logger.Debug("[DEBUG] Nothing to clear, %s does not exist\n", dir)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("clear %s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", dir, err)
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		var rmErr error
		if e.IsDir() {
			// ReadDir reports symlinks as non-directories, so this never follows a link
			rmErr = os.RemoveAll(path)
		} else {
			rmErr = os.Remove(path)
		}
		if rmErr != nil {
			logger.Warn("[WARN] Error removing %s: %v\n", path, rmErr)
			res.Failures = append(res.Failures, Failure{Path: path, Err: rmErr})
			continue
		}
		res.Removed++
	}

	logger.Debug("[DEBUG] Cleared %s (%d items)\n", dir, res.Removed)
	return res, nil
}
