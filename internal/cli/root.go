// Package cli implements the newsctl command line client for the newsd
// HTTP API.
package cli

import (
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "newsctl",
	Short: "Polyfloat News CLI",
	Long: `newsctl is the command-line interface for the Polyfloat news service.

Browse ingested news, inspect pipeline stats, and manage per-user
subscription filters from your terminal.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "newsd base URL")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")

	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}
