package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
)

var itemsLimit int

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect stored items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored items, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		return listItems(ctx, a.items, cmd.OutOrStdout(), itemsLimit)
	}),
}

var itemsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print a stored item",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		got, err := a.items.Get(ctx, &items.GetInput{ID: args[0]})
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}
		return render(cmd.OutOrStdout(), format, got.Record.Item)
	}),
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored item",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if _, err := a.items.Delete(ctx, &items.DeleteInput{ID: args[0]}); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	}),
}

func init() {
	itemsListCmd.Flags().IntVar(&itemsLimit, "limit", 20, "Maximum items to list (0 for all)")

	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsGetCmd)
	itemsCmd.AddCommand(itemsDeleteCmd)
}

func listItems(ctx context.Context, repo items.Repository, out io.Writer, limit int) error {
	listed, err := repo.List(ctx, &items.ListInput{Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if len(listed.Records) == 0 {
		fmt.Fprintln(out, "No items stored")
		return nil
	}

	for _, r := range listed.Records {
		fmt.Fprintf(out, "%s  %-30s %-12s %s\n",
			r.ID, r.Item.Name, r.Item.Type, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
