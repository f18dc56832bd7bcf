package cmd

import (
	"github.com/spf13/cobra"

	"flet-build/internal/builder"
	"flet-build/internal/config"
	"flet-build/internal/installer"
	"flet-build/internal/logger"
	"flet-build/internal/paths"
	"flet-build/internal/pipeline"
	"flet-build/internal/ui"
)

// runOptions holds the `run` flags. Only flags the user actually set override the config.
var runOptions struct {
	source        string
	outputs       []string
	exclusions    []string
	target        string
	clientArchive string
	skipBuild     bool
	noInstall     bool
	parallel      bool
}

// runCmd builds the client and deploys into every output directory.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the desktop client and deploy Flet into every output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger.Step("Flet Custom Build\n")
		p := newPipeline(cfg)
		report, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		printSummary(report)
		return nil
	},
}

// applyRunFlags overrides cfg with every flag that was set on the command line.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceRoot = runOptions.source
	}
	if flags.Changed("output") {
		cfg.OutputDirs = runOptions.outputs
	}
	if flags.Changed("exclude") {
		cfg.Exclusions = runOptions.exclusions
	}
	if flags.Changed("target") {
		cfg.Build.Target = runOptions.target
	}
	if flags.Changed("client-archive") {
		cfg.ClientArchive = runOptions.clientArchive
	}
	if flags.Changed("no-install") {
		cfg.Install.Enabled = !runOptions.noInstall
	}
	if flags.Changed("parallel") {
		cfg.Parallel = runOptions.parallel
	}
}

// newPipeline wires the build and install steps for cfg.
func newPipeline(cfg config.Config) *pipeline.Pipeline {
	p := &pipeline.Pipeline{
		SourceRoot:    cfg.SourceRoot,
		Paths:         paths.Resolve(cfg.SourceRoot, cfg.Build.ClientDir, cfg.Build.Target),
		OutputDirs:    cfg.OutputDirs,
		Exclusions:    cfg.Exclusions,
		ClientArchive: cfg.ClientArchive,
		Parallel:      cfg.Parallel,
	}

	if !runOptions.skipBuild {
		p.Builder = builder.Builder{
			Tool:      cfg.Build.Tool,
			Args:      cfg.BuildArgs(),
			ClientDir: cfg.Build.ClientDir,
			Status:    statusFor(cfg),
		}
	}
	if cfg.Install.Enabled {
		p.Installer = installer.Installer{
			Tool:     cfg.Install.Tool,
			Package:  cfg.Install.Package,
			IsTarget: installer.MarkerPredicate(cfg.Install.Marker),
			Status:   statusFor(cfg),
		}
	}
	return p
}

// statusFor picks the live display. Concurrent spinners would fight over the
// terminal line, so parallel runs only stream output to the debug log.
func statusFor(cfg config.Config) func(string) (func(string), func()) {
	if cfg.Parallel {
		return func(string) (func(string), func()) {
			return func(line string) { logger.Debug("[DEBUG] %s\n", line) }, func() {}
		}
	}
	return ui.Start
}

// printSummary lists the totals for every output directory and any failures.
func printSummary(report pipeline.Report) {
	logger.Step("\n━━━ Summary ━━━\n")
	for _, d := range report.Dirs {
		if d.OK() {
			logger.Success("✓ %s: %d files\n", d.Dir, d.Total())
			continue
		}
		logger.Warn("[WARN] %s: %d files, %d failures\n", d.Dir, d.Total(), len(d.Failures)+len(d.Errs))
		for _, f := range d.Failures {
			logger.Warn("  %s\n", f)
		}
		for _, err := range d.Errs {
			logger.Warn("  %v\n", err)
		}
	}
	logger.Success("Build and copy completed!\n")
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOptions.source, "source", "", "Flet source checkout (overrides source_root)")
	f.StringArrayVar(&runOptions.outputs, "output", nil, "Output directory, repeat for several (overrides output_dirs)")
	f.StringArrayVar(&runOptions.exclusions, "exclude", nil, "Glob matched against file names, repeat for several (overrides exclusions)")
	f.StringVar(&runOptions.target, "target", "", "Desktop build target: windows, linux or macos")
	f.StringVar(&runOptions.clientArchive, "client-archive", "", "Prebuilt desktop bundle to deploy instead of running the build")
	f.BoolVar(&runOptions.skipBuild, "skip-build", false, "Deploy the existing build output without building")
	f.BoolVar(&runOptions.noInstall, "no-install", false, "Skip installing the extra package")
	f.BoolVar(&runOptions.parallel, "parallel", false, "Process output directories concurrently")

	rootCmd.AddCommand(runCmd)
}
