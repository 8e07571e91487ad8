// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swiftsetup/cmd/swiftsetup/handlers"
)

// Root returns the root command for the swiftsetup CLI.
//
// The root command owns the flags shared by every subcommand and loads .env
// files before any subcommand runs.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "swiftsetup",
		Short:         "Bootstrap a Swift object storage cluster over SSH",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return handlers.LoadEnv(opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the configuration file (default: <base-dir>/"+handlers.DefaultConfigFile+")")
	flags.StringVarP(&opts.BaseDir, "base-dir", "d", ".", "Directory holding templates/ and hosts/")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (default: $SWIFTSETUP_LOG_LEVEL or info)")
	flags.BoolVar(&opts.LogJSON, "log-json", false, "Emit logs as JSON")

	cmd.AddCommand(Template(opts))
	cmd.AddCommand(Deploy(opts))
	cmd.AddCommand(Hosts(opts))
	cmd.AddCommand(Status(opts))
	cmd.AddCommand(Version())

	return cmd
}
