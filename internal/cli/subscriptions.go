package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage per-user subscription filters",
}

var subscriptionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscription filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(serverURL)
		filters, err := client.listSubscriptions()
		if err != nil {
			return fmt.Errorf("failed to list subscriptions: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return printJSON(filters)
		}

		if len(filters) == 0 {
			fmt.Println("No subscriptions found")
			return nil
		}

		t := newTable("User", "Threshold", "Categories", "Keywords", "Channels")
		for _, f := range filters {
			t.addRow(
				f.UserID,
				fmt.Sprintf("%d", f.ImpactThreshold),
				strings.Join(f.Categories, ","),
				truncate(strings.Join(f.Keywords, ","), 40),
				strings.Join(f.AlertChannels, ","),
			)
		}
		t.render()
		return nil
	},
}

var subscriptionsGetCmd = &cobra.Command{
	Use:   "get [user-id]",
	Short: "Get one subscription filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(serverURL)
		filter, err := client.getSubscription(args[0])
		if err != nil {
			return fmt.Errorf("failed to get subscription: %w", err)
		}
		return printJSON(filter)
	},
}

var subscriptionsSetCmd = &cobra.Command{
	Use:   "set [user-id]",
	Short: "Create or replace a subscription filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, _ := cmd.Flags().GetStringSlice("categories")
		keywords, _ := cmd.Flags().GetStringSlice("keywords")
		accounts, _ := cmd.Flags().GetStringSlice("accounts")
		feeds, _ := cmd.Flags().GetStringSlice("feeds")
		channels, _ := cmd.Flags().GetStringSlice("channels")
		threshold, _ := cmd.Flags().GetInt("threshold")

		client := newAPIClient(serverURL)
		saved, err := client.upsertSubscription(&models.SubscriptionFilter{
			UserID:           args[0],
			TimelineAccounts: accounts,
			FeedSources:      feeds,
			Categories:       categories,
			Keywords:         keywords,
			ImpactThreshold:  threshold,
			AlertChannels:    channels,
		})
		if err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		fmt.Printf("Saved subscription for %s (threshold %d)\n", saved.UserID, saved.ImpactThreshold)
		return nil
	},
}

var subscriptionsRmCmd = &cobra.Command{
	Use:     "rm [user-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a subscription filter",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(serverURL)
		if err := client.deleteSubscription(args[0]); err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		fmt.Printf("Deleted subscription for %s\n", args[0])
		return nil
	},
}

func init() {
	subscriptionsSetCmd.Flags().StringSlice("categories", nil, "categories to match")
	subscriptionsSetCmd.Flags().StringSlice("keywords", nil, "keywords or tickers to match")
	subscriptionsSetCmd.Flags().StringSlice("accounts", nil, "timeline accounts to match")
	subscriptionsSetCmd.Flags().StringSlice("feeds", nil, "feed sources to match")
	subscriptionsSetCmd.Flags().StringSlice("channels", []string{"terminal"}, "alert channels")
	subscriptionsSetCmd.Flags().Int("threshold", models.DefaultImpactThreshold, "minimum impact score")

	subscriptionsCmd.AddCommand(subscriptionsListCmd)
	subscriptionsCmd.AddCommand(subscriptionsGetCmd)
	subscriptionsCmd.AddCommand(subscriptionsSetCmd)
	subscriptionsCmd.AddCommand(subscriptionsRmCmd)
}
