package paths

import (
	"os"
	"path/filepath"
	"slices"
)

// Component names in the Path Set.
const (
	Flet        = "flet"
	FletCLI     = "flet_cli"
	FletDesktop = "flet_desktop"
	FletWeb     = "flet_web"
	DesktopApp  = "desktop_app"
)

// packagesDir is where the Python packages live under the source root.
var packagesDir = []string{"sdk", "python", "packages"}

// componentDirs maps each library component to its source tree below packagesDir.
var componentDirs = map[string][]string{
	Flet:        {"flet", "src", "flet"},
	FletCLI:     {"flet-cli", "src", "flet_cli"},
	FletDesktop: {"flet-desktop", "src", "flet_desktop"},
	FletWeb:     {"flet-web", "src", "flet_web"},
}

// binaryDirs maps a build target to the directory flutter writes the desktop bundle to,
// relative to the client directory.
var binaryDirs = map[string][]string{
	"windows": {"build", "windows", "x64", "runner", "Release"},
	"linux":   {"build", "linux", "x64", "release", "bundle"},
	"macos":   {"build", "macos", "Build", "Products", "Release"},
}

// order fixes iteration order for display and verification.
var order = []string{Flet, FletCLI, FletDesktop, FletWeb, DesktopApp}

// Set is the resolved mapping from component name to absolute path.
// It is built once per run and never changes; use Get and Names to read it.
type Set struct {
	entries map[string]string
}

// Resolve builds the Path Set for baseDir. clientDir is the Flutter client directory
// (normally "client") and target selects the binary layout; an unknown target falls back
// to the windows layout.
func Resolve(baseDir, clientDir, target string) Set {
	entries := make(map[string]string, len(order))
	for name, rel := range componentDirs {
		parts := append([]string{baseDir}, packagesDir...)
		entries[name] = filepath.Join(append(parts, rel...)...)
	}

	rel, ok := binaryDirs[target]
	if !ok {
		rel = binaryDirs["windows"]
	}
	entries[DesktopApp] = filepath.Join(append([]string{baseDir, clientDir}, rel...)...)

	return Set{entries: entries}
}

// Get returns the path for a component name.
func (s Set) Get(name string) (string, bool) {
	p, ok := s.entries[name]
	return p, ok
}

// Names returns every component name in display order.
func (s Set) Names() []string {
	return slices.Clone(order)
}

// Components returns the library component names, i.e. everything except the desktop binary.
func (s Set) Components() []string {
	return slices.Clone(order[:len(order)-1])
}

// DesktopApp returns the compiled desktop bundle directory.
func (s Set) DesktopApp() string {
	return s.entries[DesktopApp]
}

// Missing describes a Path Set entry that does not exist on disk.
type Missing struct {
	Name string
	Path string
}

// Verify returns every entry of the set that does not exist, in display order.
// An empty result means the run can proceed.
func Verify(s Set) []Missing {
	var missing []Missing
	for _, name := range order {
		p := s.entries[name]
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, Missing{Name: name, Path: p})
		}
	}
	return missing
}
