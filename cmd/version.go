package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version, overridable at build time via
// -ldflags "-X github.com/xkilldash9x/formflood/cmd.Version=...".
var Version = "0.1.0"

// newVersionCmd prints the build version and exits.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the formflood version",
		// The root's PersistentPreRunE would pull in config and logging,
		// which version must not require.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "formflood version %s\n", Version)
		},
	}
}
