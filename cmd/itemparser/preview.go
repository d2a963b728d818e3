package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
)

var (
	previewID   string
	previewFile string
	previewMod  int
)

var previewCmd = &cobra.Command{
	Use:   "preview [text|-]",
	Short: "Roll an item's damage",
	Long: `Roll every damage part of an item so the parse can be sanity checked.
The item is parsed from text, or loaded with --id from the item store. Examples:

  preview --id item_6f1c... --mod 3
  preview --file venomfang.txt --mod 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: preview,
}

func init() {
	previewCmd.Flags().StringVar(&previewID, "id", "", "Preview a stored item instead of parsing")
	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "Read the item text from a file")
	previewCmd.Flags().IntVar(&previewMod, "mod", 0, "Ability modifier substituted for @mod")
}

func preview(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var it *vtt.Item
	if previewID != "" {
		got, err := a.items.Get(ctx, &items.GetInput{ID: previewID})
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}
		it = got.Record.Item
	} else {
		text, err := readText(args, previewFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := a.startParser(ctx); err != nil {
			return err
		}
		parsed, err := a.parser.ParseAndFormat(ctx, &itemparse.ParseInput{RawText: text})
		if err != nil {
			return fmt.Errorf("failed to parse item: %w", err)
		}
		it = parsed.Item
	}

	return runPreview(ctx, a.dice, cmd.OutOrStdout(), it, previewMod)
}

func runPreview(ctx context.Context, roller dice.Service, out io.Writer, it *vtt.Item, modifier int) error {
	rolled, err := roller.RollDamage(ctx, &dice.RollDamageInput{Item: it, Modifier: modifier})
	if err != nil {
		return fmt.Errorf("failed to roll damage: %w", err)
	}
	if len(rolled.Rolls) == 0 {
		return errors.InvalidArgumentf("%s has no damage to roll", it.Name)
	}

	fmt.Fprintf(out, "🎲 %s (modifier %+d)\n", it.Name, modifier)
	fmt.Fprintf(out, "===================\n")

	for i, roll := range rolled.Rolls {
		fmt.Fprintf(out, "\nRoll %d:\n", i+1)
		fmt.Fprintf(out, "  Source: %s\n", roll.Source)
		fmt.Fprintf(out, "  Formula: %s\n", roll.Formula)
		if roll.DamageType != "" {
			fmt.Fprintf(out, "  Damage Type: %s\n", roll.DamageType)
		}
		fmt.Fprintf(out, "  Individual Dice: %v\n", roll.Dice)
		if roll.Bonus != 0 {
			fmt.Fprintf(out, "  Bonus: %+d\n", roll.Bonus)
		}
		fmt.Fprintf(out, "  Total: %d\n", roll.Total)
	}

	return nil
}
