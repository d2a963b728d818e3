package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse"
)

var (
	parseFile     string
	parseStrategy string
	parseMode     string
	parsePersist  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [text|-]",
	Short: "Parse one item",
	Long: `Parse one item write-up and print the tabletop item record. Examples:

  parse "Longsword. Weapon (longsword), common. 1d8 slashing, versatile (1d10)."
  parse --file venomfang.txt --mode SMALL_SCHEMA_IN_CHUNKS
  cat dagger.txt | parse - --persist`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseItem,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFile, "file", "f", "", "Read the item text from a file")
	parseCmd.Flags().StringVar(&parseStrategy, "strategy", "", "BASIC_ITEM_EXTRACTION or DIRECT_PARSING (defaults to parsing.strategy)")
	parseCmd.Flags().StringVar(&parseMode, "mode", "", "Parsing mode (defaults to parsing.default_mode)")
	parseCmd.Flags().BoolVar(&parsePersist, "persist", false, "Store the parsed item")
}

func parseItem(cmd *cobra.Command, args []string) error {
	text, err := readText(args, parseFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startParser(ctx); err != nil {
		return err
	}

	return runParse(ctx, a.parser, cmd.OutOrStdout(), cmd.ErrOrStderr(), &itemparse.ParseInput{
		RawText:     text,
		Strategy:    itemparse.Strategy(parseStrategy),
		ParsingMode: itemparse.Mode(parseMode),
		Persist:     parsePersist,
	})
}

func runParse(ctx context.Context, parser itemparse.Service, out, status io.Writer, input *itemparse.ParseInput) error {
	result, err := parser.ParseAndFormat(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to parse item: %w", err)
	}

	if result.ID != "" {
		fmt.Fprintf(status, "Stored %s as %s\n", result.Item.Name, result.ID)
	}
	return render(out, format, result.Item)
}
