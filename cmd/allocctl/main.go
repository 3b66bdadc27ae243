// Package main implements the allocctl CLI for manual operations
// against the allocd HTTP server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the allocd HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "allocctl",
	Short: "CLI for allocd HTTP server operations",
	Long: `allocctl is a command-line interface for interacting with the allocd
HTTP server. It manages resources and tasks, generates allocation
alternatives, records selections and drives model training.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "allocd server URL")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(clearCmd)
}
