// Package pipeline sequences one deploy run: build the desktop client, verify every
// source path, then clear and refill each output directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"flet-build/internal/archive"
	"flet-build/internal/filesync"
	"flet-build/internal/logger"
	"flet-build/internal/paths"
)

var (
	// ErrBuildFailed halts the run before any path is checked.
	ErrBuildFailed = errors.New("flutter build failed")
	// ErrMissingPaths halts the run before anything is copied.
	ErrMissingPaths = errors.New("some paths do not exist")
)

// DesktopAppDest is where the compiled bundle goes inside each output directory.
var DesktopAppDest = filepath.Join("flet_desktop", "app", "flet")

// Builder produces the desktop bundle for a source root.
type Builder interface {
	Run(ctx context.Context, sourceRoot string) bool
}

// Installer optionally installs an extra package into an output directory and
// returns how many packages it installed.
type Installer interface {
	Install(ctx context.Context, targetDir string) int
}

// Pipeline holds everything one run needs. Paths is read-only once the run starts,
// which is what allows output directories to be processed in parallel.
type Pipeline struct {
	SourceRoot string
	Paths      paths.Set
	OutputDirs []string
	Exclusions []string

	Builder       Builder   // nil skips the build step
	ClientArchive string    // when set, staged instead of running Builder
	Installer     Installer // nil skips the install step
	Parallel      bool      // process output directories concurrently

	// Stage places a prebuilt bundle at the binary root; defaults to archive.Stage.
	Stage func(ctx context.Context, ref, binaryRoot string) error
}

// DirResult is the outcome for one output directory.
type DirResult struct {
	Dir        string
	Components map[string]int // files copied per library component
	Binary     int            // files copied from the desktop bundle
	Installed  int            // extra packages installed (0 or 1)
	Failures   []filesync.Failure
	Errs       []error // steps that could not run at all
}

// Total is the number of files and packages delivered to the directory.
func (d DirResult) Total() int {
	n := d.Binary + d.Installed
	for _, c := range d.Components {
		n += c
	}
	return n
}

// OK reports whether every step for the directory completed without failures.
func (d DirResult) OK() bool {
	return len(d.Failures) == 0 && len(d.Errs) == 0
}

// Report collects every output directory's result, in OutputDirs order.
type Report struct {
	Dirs []DirResult
}

// Run executes the pipeline. It returns an error only for global preconditions
// (ErrBuildFailed, ErrMissingPaths); per-directory problems are reported in the
// Report and never stop other directories.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if err := p.build(ctx); err != nil {
		return Report{}, err
	}
	if err := p.verify(); err != nil {
		return Report{}, err
	}
	if err := filesync.ValidatePatterns(p.Exclusions); err != nil {
		return Report{}, err
	}

	report := Report{Dirs: make([]DirResult, len(p.OutputDirs))}
	if !p.Parallel {
		for i, out := range p.OutputDirs {
			report.Dirs[i] = p.deploy(ctx, out)
		}
		return report, nil
	}

	// Each goroutine owns one slot of report.Dirs
	var wg sync.WaitGroup
	for i, out := range p.OutputDirs {
		wg.Add(1)
		go func(i int, out string) {
			defer wg.Done()
			report.Dirs[i] = p.deploy(ctx, out)
		}(i, out)
	}
	wg.Wait()
	return report, nil
}

func (p *Pipeline) build(ctx context.Context) error {
	if p.ClientArchive != "" {
		stage := p.Stage
		if stage == nil {
			stage = archive.Stage
		}
		if err := stage(ctx, p.ClientArchive, p.Paths.DesktopApp()); err != nil {
			return fmt.Errorf("%w: %v", ErrBuildFailed, err)
		}
		return nil
	}
	if p.Builder == nil {
		logger.Debug("[DEBUG] Build step skipped\n")
		return nil
	}
	if !p.Builder.Run(ctx, p.SourceRoot) {
		return ErrBuildFailed
	}
	return nil
}

func (p *Pipeline) verify() error {
	missing := paths.Verify(p.Paths)
	for _, m := range missing {
		logger.Error("[ERROR] %s: %s does not exist\n", m.Name, m.Path)
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Name)
		}
		return fmt.Errorf("%w: %s", ErrMissingPaths, strings.Join(names, ", "))
	}
	logger.Info("[INFO] All paths exist. Ready to proceed.\n")
	return nil
}

// deploy runs CLEAR_COMPONENTS, COPY_COMPONENTS, COPY_BINARY and MAYBE_INSTALL for out.
func (p *Pipeline) deploy(ctx context.Context, out string) DirResult {
	res := DirResult{Dir: out, Components: map[string]int{}}
	logger.Step("\nProcessing output directory: %s\n", out)

	logger.Step("━━━ Copying Flet Components ━━━\n")
	components := p.Paths.Components()
	for _, name := range components {
		src, _ := p.Paths.Get(name)
		dst := filepath.Join(out, filepath.Base(src))
		cleared, err := filesync.Clear(dst)
		if err != nil {
			res.Errs = append(res.Errs, err)
			continue
		}
		res.Failures = append(res.Failures, cleared.Failures...)
	}
	for _, name := range components {
		src, _ := p.Paths.Get(name)
		copied, err := filesync.SyncNested(src, out, p.Exclusions)
		res.Failures = append(res.Failures, copied.Failures...)
		if err != nil {
			logger.Error("[ERROR] %s: %v\n", name, err)
			res.Errs = append(res.Errs, err)
			continue
		}
		res.Components[name] = copied.Copied
		logger.Success("✓ %s (%d files)\n", filepath.Base(src), copied.Copied)
	}

	logger.Step("━━━ Copying Desktop Application ━━━\n")
	bin, err := filesync.Sync(p.Paths.DesktopApp(), filepath.Join(out, DesktopAppDest), p.Exclusions)
	res.Failures = append(res.Failures, bin.Failures...)
	if err != nil {
		logger.Error("[ERROR] Desktop app: %v\n", err)
		res.Errs = append(res.Errs, err)
	} else {
		res.Binary = bin.Copied
		logger.Success("✓ Desktop app (%d files)\n", bin.Copied)
	}

	if p.Installer != nil {
		res.Installed = p.Installer.Install(ctx, out)
	}
	return res
}
