// Package cli provides the command-line interface for vitre.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitrebrowser/vitre/internal/bootstrap"
)

// NewRootCmd creates the root command. Running it without a subcommand
// launches the browser with one window per URL argument.
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	var opts bootstrap.Options

	rootCmd := &cobra.Command{
		Use:   "vitre [urls...]",
		Short: "A multi-window WebKit browser shell",
		Long: `Vitre opens one window per URL argument (or a single blank window)
and remembers the open set across crashes.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(_ *cobra.Command, args []string) {
			opts.URLs = args
			os.Exit(bootstrap.Run(context.Background(), opts))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "root directory for config, data, and state (replaces XDG paths)")
	rootCmd.Flags().BoolVar(&opts.Private, "private", false, "open the launch windows in private mode")

	rootCmd.AddCommand(newVersionCmd(version, commit, buildDate))
	rootCmd.AddCommand(newConfigCmd(&opts))

	return rootCmd
}

func newVersionCmd(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("vitre %s\n", version)
			fmt.Printf("commit: %s\n", commit)
			fmt.Printf("built: %s\n", buildDate)
		},
	}
}
