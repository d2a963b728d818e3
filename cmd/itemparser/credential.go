package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/services/credential"
)

var credentialProvider string

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Store and check provider API keys",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set [api-key|-]",
	Short: "Store the API key for a provider",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		key, err := readText(args, "", cmd.InOrStdin())
		if err != nil {
			return errors.InvalidArgument("api key is required")
		}
		provider := providerOrDefault(a)
		if err := a.credentials.SetCredential(ctx, provider, key); err != nil {
			return fmt.Errorf("failed to store credential: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for %s\n", provider)
		return nil
	}),
}

var credentialValidateCmd = &cobra.Command{
	Use:   "validate [api-key]",
	Short: "Check that a key can reach the provider's model family",
	Long: `Lists the models the key can use. Prints VALID, NO_MODEL_ACCESS or
INVALID_KEY. Without an argument the stored key is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		input := &credential.ValidateInput{Provider: providerOrDefault(a)}
		if len(args) == 1 {
			input.APIKey = args[0]
		}
		return runValidate(ctx, a.credentials, cmd.OutOrStdout(), input)
	}),
}

func init() {
	credentialCmd.PersistentFlags().StringVar(&credentialProvider, "provider", "", "openai or anthropic (defaults to provider.name)")

	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialValidateCmd)
}

// validator is the part of the credential service the validate command uses
type validator interface {
	Validate(ctx context.Context, input *credential.ValidateInput) (*credential.ValidateOutput, error)
}

func runValidate(ctx context.Context, v validator, out io.Writer, input *credential.ValidateInput) error {
	result, err := v.Validate(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to validate credential: %w", err)
	}

	fmt.Fprintf(out, "%s: %s\n", input.Provider, result.Status)
	switch result.Status {
	case credential.StatusValid:
		fmt.Fprintf(out, "  %d models available\n", len(result.Models))
	case credential.StatusNoModelAccess:
		fmt.Fprintf(out, "  no %s model among %d available\n", result.Family, len(result.Models))
	}

	if result.Status != credential.StatusValid {
		return errors.FailedPrecondition(fmt.Sprintf("credential for %s is not usable", input.Provider))
	}
	return nil
}

func providerOrDefault(a *app) string {
	if p := strings.TrimSpace(credentialProvider); p != "" {
		return strings.ToLower(p)
	}
	return a.cfg.Provider.Name
}
