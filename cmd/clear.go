package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flet-build/internal/filesync"
	"flet-build/internal/logger"
)

// clearCmd empties directories without removing them.
var clearCmd = &cobra.Command{
	Use:   "clear <dir>...",
	Short: "Remove everything inside the given directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, dir := range args {
			res, err := filesync.Clear(dir)
			if err != nil {
				logger.Error("[ERROR] %v\n", err)
				failed++
				continue
			}
			failed += len(res.Failures)
			logger.Info("[INFO] %s: removed %d entries\n", dir, res.Removed)
		}
		if failed > 0 {
			return fmt.Errorf("%d entries could not be cleared", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
