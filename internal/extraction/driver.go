// Package extraction asks the model for data in a given shape.
package extraction

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-item-parser/internal/clients/llm"
	"github.com/KirkDiggler/rpg-item-parser/internal/diagnosis"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/flight"
	"github.com/KirkDiggler/rpg-item-parser/internal/ratelimit"
	"github.com/KirkDiggler/rpg-item-parser/internal/retry"
)

//go:generate mockgen -destination=mock/mock_asker.go -package=extractionmock github.com/KirkDiggler/rpg-item-parser/internal/extraction Asker

// Asker runs structured extractions
type Asker interface {
	// Ask sends the prompt with format instructions for in.Shape and
	// returns the validated result
	Ask(ctx context.Context, input *AskInput) (*AskOutput, error)

	// AskRaw sends the prompt as is and returns the model text unvalidated
	AskRaw(ctx context.Context, input *RawInput) (string, error)
}

// Config configures a Driver
type Config struct {
	Completer llm.Completer
	Limiter   *ratelimit.Limiter
	Retry     *retry.Coordinator
	// Reporter is optional
	Reporter *diagnosis.Reporter
	// LogPrompts logs every prompt and response at debug level
	LogPrompts bool
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Completer == nil {
		vb.RequiredField("completer")
	}
	if c.Limiter == nil {
		vb.RequiredField("limiter")
	}
	if c.Retry == nil {
		vb.RequiredField("retry")
	}
	return vb.Build()
}

// Driver composes the limiter, retry and completion endpoint
type Driver struct {
	completer  llm.Completer
	limiter    *ratelimit.Limiter
	retry      *retry.Coordinator
	reporter   *diagnosis.Reporter
	logPrompts bool
	inflight   *flight.Group[*AskOutput]
}

// New creates a Driver
func New(cfg *Config) (*Driver, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Driver{
		completer:  cfg.Completer,
		limiter:    cfg.Limiter,
		retry:      cfg.Retry,
		reporter:   cfg.Reporter,
		logPrompts: cfg.LogPrompts,
		inflight:   flight.New[*AskOutput](nil),
	}, nil
}

// Ask runs one structured extraction. Identical concurrent asks share a single
// completion call. A response that does not match the shape fails with a
// *shape.ValidationError and is not retried.
func (d *Driver) Ask(ctx context.Context, input *AskInput) (*AskOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.InvalidArgument("prompt is required")
	}

	label := input.label()
	prompt := Interpolate(input.Prompt, input.Inputs) + "\n\n" + input.Shape.FormatInstructions()
	key := input.Shape.Name + "\x00" + prompt

	// only the caller that runs the call reports a failure
	out, shared, err := d.inflight.Do(ctx, key, func(ctx context.Context) (*AskOutput, error) {
		raw, err := d.complete(ctx, prompt, label)
		if err != nil {
			d.fail(ctx, err, label)
			return nil, err
		}

		res := input.Shape.Parse(raw)
		if !res.OK() {
			err := res.Err()
			d.fail(ctx, err, label)
			return nil, err
		}
		return &AskOutput{Value: res.Value, Raw: raw}, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "Shared in-flight extraction", "label", label)
	}

	return &AskOutput{
		Value:  Apply(out.Value, input.Overrides, input.Deletions),
		Raw:    out.Raw,
		Shared: shared,
	}, nil
}

// AskRaw sends a prompt without format instructions or validation. Failures
// are logged but not shown to the user; callers decide how to recover.
func (d *Driver) AskRaw(ctx context.Context, input *RawInput) (string, error) {
	if input == nil || strings.TrimSpace(input.Prompt) == "" {
		return "", errors.InvalidArgument("prompt is required")
	}

	label := input.Label
	if label == "" {
		label = "raw"
	}

	raw, err := d.complete(ctx, Interpolate(input.Prompt, input.Inputs), label)
	if err != nil {
		slog.WarnContext(ctx, "Raw completion failed", "label", label, "error", err)
		return "", err
	}
	return raw, nil
}

// Report shows a diagnosis for err. Used by callers that recover from
// failures themselves and only give up later.
func (d *Driver) Report(ctx context.Context, err error, label string) {
	d.fail(ctx, err, label)
}

// complete retries the call and sends every attempt through the limiter, so
// each request that reaches the provider is counted against the windows.
func (d *Driver) complete(ctx context.Context, prompt, label string) (string, error) {
	if d.logPrompts {
		slog.DebugContext(ctx, "Sending prompt", "label", label, "prompt", prompt)
	}

	out, err := retry.Do(ctx, d.retry, label, func(ctx context.Context) (*llm.CompleteOutput, error) {
		return ratelimit.Do(ctx, d.limiter, func(ctx context.Context) (*llm.CompleteOutput, error) {
			return d.completer.Complete(ctx, &llm.CompleteInput{Prompt: prompt})
		})
	})
	if err != nil {
		return "", err
	}

	if d.logPrompts {
		slog.DebugContext(ctx, "Received response", "label", label, "model", out.Model, "response", out.Text)
	}
	return out.Text, nil
}

func (d *Driver) fail(ctx context.Context, err error, label string) {
	slog.ErrorContext(ctx, "Extraction failed",
		"label", label,
		"error", err,
		"limiter", d.limiter.Stats())

	d.reporter.Display(ctx, diagnosis.Analyze(err), label)
}
