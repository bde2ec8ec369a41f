// Package cli implements the igwn-auth command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/igwn/authutils/internal/logging"
)

// Execute runs the igwn-auth command with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "igwn-auth",
		Short: "Find credentials for IGWN services",
		Long: `igwn-auth locates a SciToken or X.509 credential usable for authenticating to
IGWN services, searching the environment and the standard default locations,
and can fetch a new token with htgettoken.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newTokenCmd(), newX509Cmd(), newGetCmd())
	return root
}
