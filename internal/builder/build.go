package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"flet-build/internal/logger"
	"flet-build/internal/runner"
)

// Builder runs the Flutter desktop build for the client directory of a source checkout.
type Builder struct {
	Tool      string            // executable name looked up on PATH, or an explicit path
	Args      []string          // e.g. ["build", "windows"]
	ClientDir string            // directory below the source root to build in
	Status    runner.StatusFunc // shows live build output, may be nil
}

// Run builds sourceRoot/ClientDir and reports whether the build succeeded.
// Every failure (missing client directory, tool not on PATH, spawn error, non-zero
// exit) is logged and returned as false; Run never panics on process errors.
func (b Builder) Run(ctx context.Context, sourceRoot string) bool {
	clientPath := filepath.Join(sourceRoot, b.ClientDir)
	if info, err := os.Stat(clientPath); err != nil || !info.IsDir() {
		logger.Error("[ERROR] Client directory not found at %s\n", clientPath)
		return false
	}

	logger.Step("\nStarting %s build in %s\n", b.Tool, clientPath)

	exe, err := runner.FindExecutable(b.Tool)
	if err != nil {
		logger.Error("[ERROR] %s not found in PATH. Please install it or add it to PATH: %v\n", b.Tool, err)
		return false
	}
	logger.Info("[INFO] Found %s: %s\n", b.Tool, exe)

	cmd := runner.Command{Path: exe, Args: b.Args, Dir: clientPath}
	logger.Info("[INFO] Running command: %s %s\n", exe, strings.Join(b.Args, " "))

	update, done := b.Status.Start("Building Flutter application...")
	res := runner.Stream(ctx, cmd, update)
	done()
	if res.Code == -1 {
		logger.Error("[ERROR] Error running %s build: %v\n", b.Tool, res.Err)
		return false
	}
	if res.Code != 0 {
		logger.Error("[ERROR] %s build failed with exit code %d\n", b.Tool, res.Code)
		return false
	}

	logger.Success("%s build completed successfully!\n", b.Tool)
	return true
}
