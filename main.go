package main

import (
	"flet-build/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// flet-build rebuilds a Flet checkout and deploys it into Python environments:
//   - Runs `flutter build windows` (or linux/macos) in the client directory, or unpacks
//     a prebuilt desktop bundle given with --client-archive
//   - Checks that every Flet package root and the compiled bundle exist before copying
//   - Empties and refills flet, flet_cli, flet_desktop and flet_web in each output
//     directory, skipping files that match the exclusion globs
//   - Copies the desktop bundle into flet_desktop/app/flet
//   - Installs msgpack with pip into output directories that look like site-packages
//
// Error handling strategy:
//   - A failed build or a missing source path stops the run with exit status 1
//   - Copy and delete failures are logged and listed in the summary; the remaining
//     files and output directories are still processed
func main() {
	cmd.Execute()
}
