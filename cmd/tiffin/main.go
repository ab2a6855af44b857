package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tastyaana/tiffin/internal/interfaces/cli/migrate"
	"github.com/tastyaana/tiffin/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tiffin",
		Short: "Tiffin - meal subscription and delivery tracking service",
		Long:  `Tiffin manages fixed-quantity meal subscriptions, their delivery schedules and the tracking records behind delivery dashboards.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
