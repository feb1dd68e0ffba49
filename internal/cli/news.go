package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Browse ingested news items",
}

var newsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List news items",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		source, _ := cmd.Flags().GetString("source")
		minImpact, _ := cmd.Flags().GetFloat64("min-impact")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		client := newAPIClient(serverURL)
		resp, err := client.listNews(newsListParams{
			Category:  category,
			Source:    source,
			MinImpact: minImpact,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return fmt.Errorf("failed to list news: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return printJSON(resp.Items)
		}

		if len(resp.Items) == 0 {
			fmt.Println("No news items found")
			return nil
		}

		t := newTable("ID", "Impact", "Category", "Source", "Published", "Title")
		for _, item := range resp.Items {
			published := time.Unix(int64(item.PublishedAt), 0).UTC().Format("2006-01-02 15:04")
			t.addRow(
				item.ID,
				fmt.Sprintf("%.1f", item.ImpactScore),
				string(item.Category),
				string(item.Source),
				published,
				truncate(item.Title, 60),
			)
		}
		t.render()

		fmt.Printf("\nShowing %d of %d total items\n", len(resp.Items), resp.Total)
		return nil
	},
}

var newsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete news items older than the given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		client := newAPIClient(serverURL)
		deleted, err := client.purgeNews(olderThan)
		if err != nil {
			return fmt.Errorf("failed to purge news: %w", err)
		}

		fmt.Printf("Deleted %d items older than %s\n", deleted, olderThan)
		return nil
	},
}

func init() {
	newsListCmd.Flags().String("category", "", "filter by category")
	newsListCmd.Flags().String("source", "", "filter by source type (timeline, feed)")
	newsListCmd.Flags().Float64("min-impact", 0, "minimum impact score")
	newsListCmd.Flags().Int("limit", 50, "maximum items to return")
	newsListCmd.Flags().Int("offset", 0, "pagination offset")

	newsPurgeCmd.Flags().Duration("older-than", 168*time.Hour, "delete items older than this age")

	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsPurgeCmd)
}
