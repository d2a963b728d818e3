// Package main is the entry point for the item parser CLI
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-item-parser/internal/config"
)

var (
	// Global flags
	configPath string
	debug      bool
	format     string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "itemparser",
	Short: "Convert tabletop item text into VTT item records",
	Long: `itemparser asks a language model to read a magic item or weapon write-up
and turns the answer into an item record ready to import into a virtual tabletop.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", formatYAML, "Output format (yaml|json)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall command timeout")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(parseBatchCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(itemsCmd)
}

// setupLogging installs a text handler on stderr
func setupLogging(enabled bool) {
	level := slog.LevelInfo
	if enabled {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// commandContext is cancelled by SIGINT, SIGTERM or the --timeout flag
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
