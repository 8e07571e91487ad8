package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/swiftsetup/cmd/swiftsetup/handlers"
	"github.com/imamik/swiftsetup/internal/orchestration"
)

// Deploy returns the command that provisions a host group with a role.
//
// Optional flags:
//
//	--group, -g: Host group file under hosts/ (default: the role name)
//	--yes, -y: Skip the admin bootstrap confirmation
//	--dry-run: Print the stages without contacting any host
//	--output, -o: Report format, text or yaml
//	--metrics-file: Write run metrics in textfile collector format
func Deploy(opts *handlers.Options) *cobra.Command {
	var dopts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy <role>",
		Short: "Deploy a role to a group of hosts",
		Long: `Deploy a role to every host listed in hosts/<group>.

Roles: ` + strings.Join(orchestration.RoleNames(), ", ") + `

Every role first runs the common setup (package index refresh, upgrade,
keyrings and general tools). The admin role then publishes the rendered
templates as the canonical configuration repository and reboots the host;
it refuses to run against a host where the repository already exists.
The other roles fetch the canonical tree from the admin host and install
their packages and services.

Examples:
  # Bootstrap the admin host listed in hosts/admin
  swiftsetup deploy admin

  # Deploy storage nodes from a custom group
  swiftsetup deploy storage -g rack1

  # Show what a proxy deployment would run
  swiftsetup deploy proxy --dry-run`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: orchestration.RoleNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			dopts.Role = args[0]
			return handlers.Deploy(cmd.Context(), opts, dopts)
		},
	}

	cmd.Flags().StringVarP(&dopts.Group, "group", "g", "", "Host group file under hosts/ (default: the role name)")
	cmd.Flags().BoolVarP(&dopts.Yes, "yes", "y", false, "Skip the admin bootstrap confirmation")
	cmd.Flags().BoolVar(&dopts.DryRun, "dry-run", false, "Print the stages without contacting any host")
	cmd.Flags().StringVarP(&dopts.Output, "output", "o", handlers.OutputText, "Report format: text or yaml")
	cmd.Flags().StringVar(&dopts.MetricsFile, "metrics-file", "", "Write run metrics to this file")

	return cmd
}
