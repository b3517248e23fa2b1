package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobctl",
	Short: "jobctl runs maintenance tasks for the job portal",
	Long: `jobctl is the operator tool for the job portal service.

It reads the same environment as the API server. migrate and sweep need
POSTGRES_DSN; only token needs AUTH_JWT_SECRET.

Common workflows:

  Apply database migrations:
    jobctl migrate

  Archive every job whose deadline has passed:
    jobctl sweep

  Keep sweeping every minute:
    jobctl sweep --interval 1m

  Issue a bearer token for local testing:
    jobctl token --subject admin-1 --role admin`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
