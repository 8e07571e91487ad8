package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swiftsetup/cmd/swiftsetup/handlers"
)

// Hosts returns the command that lists host groups or the hosts of a group.
func Hosts(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts [group]",
		Short: "List host groups, or the hosts of one group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			group := ""
			if len(args) == 1 {
				group = args[0]
			}
			return handlers.Hosts(opts, group)
		},
	}
}
