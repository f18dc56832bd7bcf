package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"flet-build/internal/filesync"
)

// Load reads a YAML config file on top of the built-in defaults.
// Keys missing from the file keep their default value. An empty path returns Default().
//
// Example:
//
//	source_root: /src/flet
//	output_dirs:
//	  - /home/me/.venv/lib/python3.12/site-packages
//	build:
//	  target: linux
func Load(configFile string) (Config, error) {
	cfg := Default()
	if configFile == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", configFile, err)
	}

	// Slices are replaced, not merged: listing output_dirs in the file drops the default one.
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal %s: %w", configFile, err)
	}
	return cfg, nil
}

// Validate reports the first problem that would make a run meaningless.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SourceRoot) == "" {
		return errors.New("source_root is empty")
	}
	if strings.TrimSpace(c.Build.Tool) == "" {
		return errors.New("build.tool is empty")
	}
	if !slices.Contains(Targets, c.Build.Target) {
		return fmt.Errorf("unknown build target %q (want one of %s)", c.Build.Target, strings.Join(Targets, ", "))
	}
	if c.Install.Enabled && (c.Install.Tool == "" || c.Install.Package == "") {
		return errors.New("install.tool and install.package are required when install is enabled")
	}
	// Checked here so a bad glob fails before the build starts
	if err := filesync.ValidatePatterns(c.Exclusions); err != nil {
		return err
	}
	return nil
}
