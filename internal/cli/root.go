// Package cli wires the picklepass command tree: the HTTP server, the
// booking event consumer and an offline schedule browser.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRoot returns the top-level picklepass command.
func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "picklepass",
		Short:         "Pickleball session schedule and guest booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServerCmd())
	cmd.AddCommand(NewConsumerCmd())
	cmd.AddCommand(NewScheduleCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}
