package llm

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/pagination"
	"github.com/openai/openai-go/shared"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

type openaiCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type openaiModels interface {
	ListAutoPaging(ctx context.Context, opts ...option.RequestOption) *pagination.PageAutoPager[openai.Model]
}

// OpenAI completes prompts with the chat completions API
type OpenAI struct {
	completions openaiCompletions
	models      openaiModels
	model       string
	maxTokens   int
}

// NewOpenAI creates an OpenAI client. SDK level retries are turned off; the
// retry coordinator owns retrying.
func NewOpenAI(cfg *Config) (*OpenAI, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(opts...)
	return &OpenAI{
		completions: &client.Chat.Completions,
		models:      &client.Models,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Provider returns the provider name
func (c *OpenAI) Provider() string {
	return ProviderOpenAI
}

// Complete sends a single user message
func (c *OpenAI) Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error) {
	if input == nil || strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.InvalidArgument("prompt is required")
	}

	completion, err := c.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(c.model),
		MaxCompletionTokens: openai.Int(maxTokens(input, c.maxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(input.Prompt),
		},
	})
	if err != nil {
		return nil, openaiError(err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, errors.Unavailable("openai returned no choices")
	}

	return &CompleteOutput{
		Text:  completion.Choices[0].Message.Content,
		Model: completion.Model,
	}, nil
}

// ListModels returns the ids of every model the key can use
func (c *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	iter := c.models.ListAutoPaging(ctx)
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, openaiError(err)
	}
	return ids, nil
}

func openaiError(err error) error {
	var apiErr *openai.Error
	if !stderrors.As(err, &apiErr) {
		return errors.Provider(ProviderOpenAI, 0, err)
	}

	pe := errors.Provider(ProviderOpenAI, apiErr.StatusCode, err)
	if errType := firstNonEmpty(apiErr.Type, apiErr.Code); errType != "" {
		pe.WithMeta(errors.MetaErrorType, errType)
	}
	if apiErr.Response != nil {
		if ra := apiErr.Response.Header.Get("Retry-After"); ra != "" {
			pe.WithMeta(errors.MetaRetryAfter, ra)
		}
	}
	return pe
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
