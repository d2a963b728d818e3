package llm

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/pagination"
	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

type anthropicMessages interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type anthropicModels interface {
	ListAutoPaging(ctx context.Context, query anthropic.ModelListParams, opts ...option.RequestOption) *pagination.PageAutoPager[anthropic.ModelInfo]
}

// modelPageSize is the largest page the models endpoint allows
const modelPageSize = 1000

// Anthropic completes prompts with the messages API
type Anthropic struct {
	messages  anthropicMessages
	models    anthropicModels
	model     string
	maxTokens int
}

// NewAnthropic creates an Anthropic client with SDK retries turned off
func NewAnthropic(cfg *Config) (*Anthropic, error) {
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

	client := anthropic.NewClient(opts...)
	return &Anthropic{
		messages:  &client.Messages,
		models:    &client.Models,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Provider returns the provider name
func (c *Anthropic) Provider() string {
	return ProviderAnthropic
}

// Complete sends a single user message and joins the text blocks of the reply
func (c *Anthropic) Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error) {
	if input == nil || strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.InvalidArgument("prompt is required")
	}

	msg, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens(input, c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input.Prompt)),
		},
	})
	if err != nil {
		return nil, anthropicError(err)
	}
	if msg == nil {
		return nil, errors.Unavailable("anthropic returned no message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return nil, errors.Unavailable("anthropic returned no text")
	}

	return &CompleteOutput{
		Text:  b.String(),
		Model: string(msg.Model),
	}, nil
}

// ListModels returns the ids of every model the key can use, following the
// cursor across pages
func (c *Anthropic) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	iter := c.models.ListAutoPaging(ctx, anthropic.ModelListParams{Limit: anthropic.Int(modelPageSize)})
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, anthropicError(err)
	}
	return ids, nil
}

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if !stderrors.As(err, &apiErr) {
		return errors.Provider(ProviderAnthropic, 0, err)
	}

	pe := errors.Provider(ProviderAnthropic, apiErr.StatusCode, err)
	// the body is {"type": "error", "error": {"type": "rate_limit_error", ...}}
	if errType := gjson.Get(apiErr.RawJSON(), "error.type").String(); errType != "" {
		pe.WithMeta(errors.MetaErrorType, errType)
	}
	if apiErr.Response != nil {
		if ra := apiErr.Response.Header.Get("Retry-After"); ra != "" {
			pe.WithMeta(errors.MetaRetryAfter, ra)
		}
	}
	return pe
}
