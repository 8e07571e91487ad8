package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swiftsetup/cmd/swiftsetup/handlers"
)

// Status returns the command that shows the local deployment readiness.
func Status(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show template readiness and host groups",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Status(opts)
		},
	}
}
