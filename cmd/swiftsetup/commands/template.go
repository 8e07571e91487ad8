package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swiftsetup/cmd/swiftsetup/handlers"
)

// Template returns the command that renders the configuration templates.
func Template(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Render the configuration templates",
		Long: `Substitute configuration values into every file of the template catalog
under <base-dir>/templates and mark the tree as ready for deployment.

Deployments refuse to run until this command has succeeded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Template(cmd.Context(), opts)
		},
	}
}
