package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitrebrowser/vitre/internal/bootstrap"
	"github.com/vitrebrowser/vitre/internal/config"
)

func newConfigCmd(opts *bootstrap.Options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the configuration",
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the path of the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dirs, err := config.ResolveDirs(opts.ConfigDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dirs.ConfigFile())
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			dirs, err := config.ResolveDirs(opts.ConfigDir)
			if err != nil {
				return err
			}
			manager := config.NewManager(dirs)
			if err := manager.Load(); err != nil {
				return err
			}
			if err := manager.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("set %s: %w", args[0], err)
			}
			fmt.Fprintf(os.Stdout, "%s = %s\n", args[0], args[1])
			return nil
		},
	}

	configCmd.AddCommand(schemaCmd, pathCmd, setCmd)
	return configCmd
}
