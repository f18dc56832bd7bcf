package installer

import (
	"context"
	"strings"

	"flet-build/internal/logger"
	"flet-build/internal/runner"
)

// TargetFunc decides whether a directory should receive the package.
type TargetFunc func(dir string) bool

// MarkerPredicate treats any directory whose path contains marker as an
// environment-managed package directory (e.g. "site-packages").
func MarkerPredicate(marker string) TargetFunc {
	return func(dir string) bool {
		return marker != "" && strings.Contains(dir, marker)
	}
}

// Installer installs one package into output directories with a pip-compatible tool.
type Installer struct {
	Tool     string            // package manager, "pip" by default
	Package  string            // package to install, e.g. "msgpack"
	IsTarget TargetFunc        // gate; nil means MarkerPredicate("site-packages")
	Status   runner.StatusFunc // shows live installer output, may be nil
}

// Args returns the package manager arguments for targetDir.
func (in Installer) Args(targetDir string) []string {
	return []string{"install", in.Package, "--target", targetDir, "--upgrade", "--no-dependencies"}
}

// Install installs the package into targetDir and returns the number of packages
// installed: 1 on success, 0 when targetDir is not a package directory or on any failure.
func (in Installer) Install(ctx context.Context, targetDir string) int {
	isTarget := in.IsTarget
	if isTarget == nil {
		isTarget = MarkerPredicate("site-packages")
	}
	if !isTarget(targetDir) {
		logger.Debug("[DEBUG] %s is not a package directory, skipping %s install\n", targetDir, in.Package)
		return 0
	}

	logger.Step("\n━━━ Installing %s Package ━━━\n", in.Package)

	exe, err := runner.FindExecutable(in.Tool)
	if err != nil {
		logger.Error("[ERROR] Error installing %s: %v\n", in.Package, err)
		return 0
	}

	args := in.Args(targetDir)
	logger.Info("[INFO] Running command: %s %s\n", in.Tool, strings.Join(args, " "))

	update, done := in.Status.Start("Installing " + in.Package + "...")
	res := runner.Stream(ctx, runner.Command{Path: exe, Args: args}, update)
	done()
	switch {
	case res.Code == -1:
		logger.Error("[ERROR] Error installing %s: %v\n", in.Package, res.Err)
		return 0
	case res.Code != 0:
		logger.Error("[ERROR] Failed to install %s with exit code %d\n", in.Package, res.Code)
		return 0
	}

	logger.Success("✓ %s installed to %s\n", in.Package, targetDir)
	return 1
}
