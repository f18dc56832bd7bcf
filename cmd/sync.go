package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flet-build/internal/filesync"
	"flet-build/internal/logger"
)

var (
	syncNested     bool
	syncExclusions []string
)

// syncCmd copies one directory tree, skipping excluded file names.
var syncCmd = &cobra.Command{
	Use:   "sync <src> <dest>",
	Short: "Copy a directory tree into another, skipping excluded file names",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dest := args[0], args[1]

		exclusions := syncExclusions
		if !cmd.Flags().Changed("exclude") {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			exclusions = cfg.Exclusions
		}

		sync := filesync.Sync
		if syncNested {
			sync = filesync.SyncNested
		}
		res, err := sync(src, dest, exclusions)
		if err != nil {
			return err
		}

		logger.Success("✓ %d files copied, %d skipped\n", res.Copied, res.Skipped)
		if len(res.Failures) > 0 {
			return fmt.Errorf("%d files could not be copied", len(res.Failures))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncNested, "nested", false, "Copy into <dest>/<name of src> instead of <dest>")
	syncCmd.Flags().StringArrayVar(&syncExclusions, "exclude", nil, "Glob matched against file names, repeat for several (default from config)")
	rootCmd.AddCommand(syncCmd)
}
