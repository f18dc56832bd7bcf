package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flet-build/internal/logger"
	"flet-build/internal/paths"
)

var pathsSource, pathsTarget string

// pathsCmd prints the resolved source paths and whether each one exists.
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the source paths a run would use and check that they exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("source") {
			cfg.SourceRoot = pathsSource
		}
		if cmd.Flags().Changed("target") {
			cfg.Build.Target = pathsTarget
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		set := paths.Resolve(cfg.SourceRoot, cfg.Build.ClientDir, cfg.Build.Target)
		missing := map[string]bool{}
		for _, m := range paths.Verify(set) {
			missing[m.Name] = true
		}

		ok := color.New(color.FgGreen).SprintFunc()
		bad := color.New(color.FgRed).SprintFunc()
		for _, name := range set.Names() {
			p, _ := set.Get(name)
			mark := ok("✓")
			if missing[name] {
				mark = bad("✗")
			}
			fmt.Printf("%s %-13s %s\n", mark, name, p)
		}

		if len(missing) > 0 {
			return fmt.Errorf("%d of %d paths do not exist", len(missing), len(set.Names()))
		}
		logger.Info("[INFO] All paths exist. Ready to proceed.\n")
		return nil
	},
}

func init() {
	pathsCmd.Flags().StringVar(&pathsSource, "source", "", "Flet source checkout (overrides source_root)")
	pathsCmd.Flags().StringVar(&pathsTarget, "target", "", "Desktop build target: windows, linux or macos")
	rootCmd.AddCommand(pathsCmd)
}
