package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-item-parser/internal/config"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change stored settings",
	Long: `Stored settings override the config file and are overridden by ITEMPARSER_*
environment variables. They only outlive the process when redis is enabled.`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		value, err := config.Get(a.cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Validate and store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.setSetting(ctx, args[0], args[1]); err != nil {
			return err
		}
		value, _ := config.Get(a.cfg, args[0]) // nolint:errcheck // key was just validated
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], value)
		return nil
	}),
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a stored setting so the config file value applies again",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if _, err := a.settings.Delete(ctx, &settings.DeleteInput{Key: args[0]}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s unset\n", args[0])
		return nil
	}),
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		return listSettings(ctx, a, cmd.OutOrStdout())
	}),
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsListCmd)
}

// listSettings prints every key; stored overrides are marked with *
func listSettings(ctx context.Context, a *app, out io.Writer) error {
	stored, err := a.settings.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list stored settings")
	}

	for _, key := range config.Keys() {
		value, err := config.Get(a.cfg, key)
		if err != nil {
			return err
		}
		marker := " "
		if _, ok := stored.Values[key]; ok {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s = %s\n", marker, key, value)
	}
	return nil
}

// withApp opens the app for a command that needs no model client
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return run(ctx, a, cmd, args)
	}
}
