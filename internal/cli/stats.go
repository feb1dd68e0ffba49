package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pipeline stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(serverURL)
		stats, err := client.stats()
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return printJSON(stats)
		}

		fmt.Printf("Version:            %s\n", stats.Version)
		fmt.Printf("Uptime:             %.0fs\n", stats.UptimeSeconds)
		fmt.Printf("Total news items:   %d\n", stats.TotalNewsItems)
		fmt.Printf("Items last 24h:     %d\n", stats.ItemsLast24h)
		fmt.Printf("Average impact:     %.1f\n", stats.AverageImpact)
		fmt.Printf("Active connections: %d\n", stats.ActiveConnections)

		if len(stats.TrendingKeywords) > 0 {
			fmt.Printf("Trending keywords:  %s\n", strings.Join(stats.TrendingKeywords, ", "))
		}

		if len(stats.Endpoints) > 0 {
			fmt.Println("\nTimeline endpoints:")
			for endpoint, healthy := range stats.Endpoints {
				status := "healthy"
				if !healthy {
					status = "unhealthy"
				}
				fmt.Printf("  %s: %s\n", endpoint, status)
			}
		}
		return nil
	},
}
