package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"flet-build/internal/logger"
)

// ErrNotFound is returned when no executable matches on PATH.
var ErrNotFound = errors.New("executable not found in PATH")

// wrapperExts are script wrappers preferred over other matches (flutter ships
// both "flutter" and "flutter.bat" in the same bin directory).
var wrapperExts = []string{".bat", ".cmd"}

// FindAll returns every PATH match for name, in PATH order.
// On Windows each PATHEXT extension is tried as well as the bare name.
func FindAll(name string) []string {
	var matches []string
	seen := map[string]bool{}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		for _, candidate := range candidates(name) {
			p := filepath.Join(dir, candidate)
			if seen[p] || !isExecutable(p) {
				continue
			}
			seen[p] = true
			matches = append(matches, p)
		}
	}
	return matches
}

// FindExecutable resolves name to a single executable path.
// A name containing a path separator is checked directly instead of searching PATH.
// Among several PATH matches a script wrapper wins, otherwise the first match.
func FindExecutable(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	matches := FindAll(name)
	logger.Debug("[DEBUG] PATH matches for %s: %v\n", name, matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return preferWrapper(matches), nil
}

// preferWrapper returns the first script wrapper in matches, or matches[0].
func preferWrapper(matches []string) string {
	for _, m := range matches {
		for _, ext := range wrapperExts {
			if strings.EqualFold(filepath.Ext(m), ext) {
				return m
			}
		}
	}
	return matches[0]
}

func candidates(name string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(name) != "" {
		return []string{name}
	}
	exts := os.Getenv("PATHEXT")
	if exts == "" {
		exts = ".COM;.EXE;.BAT;.CMD"
	}
	out := []string{name}
	for _, ext := range strings.Split(exts, ";") {
		if ext = strings.TrimSpace(ext); ext != "" {
			out = append(out, name+strings.ToLower(ext))
		}
	}
	return out
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
