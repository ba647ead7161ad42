package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coursetrack",
	Short: "coursetrack - course catalog with per-user lesson progress",
	Long: `coursetrack serves a small course catalog in the browser. Visitors can sign in
under a display name and tick off lessons; progress is kept per user in the
storage driver chosen by STORAGE_DRIVER.`,
	Version: "dev",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version string shown by --version.
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
