// Package cli provides the sliceofpie command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/SliceOfPie/internal/cli/commands"
	"github.com/JonMunkholm/SliceOfPie/internal/logging"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "sliceofpie",
		Short: "Inspect and chart CSV/XLSX files",
		Long: `sliceofpie classifies the columns of a CSV or XLSX file, works out which
chart types the data supports and renders charts to PNG or PDF.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Logs go to stderr so stdout stays clean for command output.
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, "text")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
