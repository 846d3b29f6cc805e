// Package cmd holds the cobra command tree of the coverage admin binary.
package cmd

import "github.com/spf13/cobra"

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coverage-admin",
		Short:         "Clients, bookings and booking exceptions admin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		ServeCmd(),
		DashboardCmd(),
		MigrateCmd(),
	)
	return rootCmd
}
